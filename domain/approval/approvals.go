package approval

import (
	"fmt"
	"math"
	"taskflow/bizerror"
	"taskflow/domain"
	"taskflow/domain/calendar"
	"taskflow/domain/flow"
	"taskflow/domain/schedule"
	"taskflow/domain/task"
	"taskflow/event"
	"taskflow/idgen"
	"taskflow/persistence"
	"taskflow/session"
	"time"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sirupsen/logrus"
)

var (
	idWorker = idgen.NewWorker()

	SubmitEstimateFunc     = SubmitEstimate
	PerformStepActionFunc  = PerformStepAction
	FinalApproveFunc       = FinalApprove
	GetWorkflowSummaryFunc = GetWorkflowSummary
)

// SubmitEstimate records the estimate of a task and (re)starts its approval from the first step.
func SubmitEstimate(taskID types.ID, c *EstimateSubmission, sec *session.Session) (*domain.WorkflowInstance, error) {
	if err := validateSubmission(c); err != nil {
		return nil, err
	}

	var inst *domain.WorkflowInstance
	var out *outcome
	db := persistence.ActiveDataSourceManager.GormDB(sec.Ctx())
	err := db.Transaction(func(tx *gorm.DB) error {
		now := currentTime()
		t, err := task.FindTask(tx, taskID)
		if err != nil {
			return err
		}

		inst, err = findInstance(tx, taskID)
		if err != nil && err != bizerror.ErrWorkflowNotStarted {
			return err
		}
		if inst != nil {
			if inst.Status == domain.InstanceCompleted {
				return bizerror.ErrWorkflowCompleted
			}
			version := inst.Version
			restart(inst)
			if err := saveInstance(tx, inst, version, now); err != nil {
				return err
			}
		} else {
			project, err := task.FindProject(tx, t.ProjectID)
			if err != nil {
				return err
			}
			def, err := flow.ResolveDefinitionForProject(tx, project)
			if err != nil {
				return err
			}
			if inst, err = createInstance(tx, def, taskID, now); err != nil {
				return err
			}
		}

		estimation := domain.Estimation{Quantity: c.Quantity, Unit: c.Unit, Notes: c.Notes, Confidence: c.Confidence,
			SubmittedBy: sec.Identity.ID, SubmittedAt: now, Status: domain.EstimationUnderReview, UpdatedAt: now}
		if err := task.UpdateTask(tx, taskID, &task.TaskUpdating{Estimation: &estimation, WorkflowInstanceID: &inst.ID}); err != nil {
			return err
		}
		t.Estimation = &estimation

		record, err := event.CreateEvent(inst, &inst.Steps[0], domain.ActionSubmit, c.Notes,
			domain.Metadata{"quantity": c.Quantity, "unit": c.Unit, "confidence": c.Confidence}, sec, now, tx)
		if err != nil {
			return err
		}
		out = &outcome{record: record}
		out.notifyResponsible(t, inst.Steps[0])
		return nil
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{"taskId": taskID, "instanceId": inst.ID, "actor": sec.Identity.ID}).Info("estimate submitted")
	out.dispatch(sec.Ctx())
	return inst, nil
}

func validateSubmission(c *EstimateSubmission) error {
	if !(c.Quantity > 0) || math.IsInf(c.Quantity, 1) {
		return bizerror.ErrInvalidQuantity
	}
	if c.Unit != domain.UnitHours && c.Unit != domain.UnitDays {
		return fmt.Errorf("%w: '%s'", bizerror.ErrInvalidUnit, c.Unit)
	}
	if !c.Confidence.Valid() {
		return fmt.Errorf("%w: '%s'", bizerror.ErrInvalidConfidence, c.Confidence)
	}
	return nil
}

// PerformStepAction applies APPROVE, REJECT, SEND_BACK or REQUEST_CHANGE on the active step of
// the task's workflow instance.
func PerformStepAction(taskID types.ID, c *StepActionRequest, sec *session.Session) (*domain.WorkflowInstance, error) {
	action, ok := domain.ParseStepAction(c.Action)
	if !ok {
		return nil, fmt.Errorf("%w: '%s'", bizerror.ErrUnsupportedAction, c.Action)
	}

	var inst *domain.WorkflowInstance
	var out *outcome
	db := persistence.ActiveDataSourceManager.GormDB(sec.Ctx())
	err := db.Transaction(func(tx *gorm.DB) error {
		now := currentTime()
		t, err := task.FindTask(tx, taskID)
		if err != nil {
			return err
		}
		if inst, err = findInstance(tx, taskID); err != nil {
			return err
		}
		idx, err := checkStepAction(inst, sec.Role, action, c.Comment)
		if err != nil {
			return err
		}

		version := inst.Version
		estimationStatus, err := applyStepAction(inst, idx, action, sec.Identity.ID, now, c.Comment)
		if err != nil {
			return err
		}
		if err := saveInstance(tx, inst, version, now); err != nil {
			return err
		}
		if estimationStatus != "" && t.Estimation != nil {
			t.Estimation.Status = estimationStatus
			t.Estimation.UpdatedAt = now
			if err := task.UpdateTask(tx, taskID, &task.TaskUpdating{Estimation: t.Estimation}); err != nil {
				return err
			}
		}

		metadata := domain.Metadata{"fromStep": inst.Steps[idx].Name}
		if active := inst.ActiveIndex(); active >= 0 {
			metadata["toStep"] = inst.Steps[active].Name
		}
		record, err := event.CreateEvent(inst, &inst.Steps[idx], action, c.Comment, metadata, sec, now, tx)
		if err != nil {
			return err
		}
		out = &outcome{record: record}

		switch {
		case action == domain.ActionReject:
			out.notifySubmitter(t, notificationRejected(t, c.Comment))
		case inst.Status == domain.InstanceChangesRequested:
			out.notifySubmitter(t, notificationChangesRequested(t, c.Comment))
		default:
			out.notifyResponsible(t, inst.Steps[inst.ActiveIndex()])
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{"taskId": taskID, "instanceId": inst.ID, "action": action, "actor": sec.Identity.ID}).
		Infof("workflow step action applied, instance %s", inst.Status)
	out.dispatch(sec.Ctx())
	return inst, nil
}

// FinalApprove approves the last step, schedules the task on the calendar of its effective
// assignee and completes the instance.
func FinalApprove(taskID types.ID, c *FinalApprovalRequest, sec *session.Session) (*domain.Task, error) {
	if !sec.HasRole(domain.FinalApproverRole) {
		return nil, bizerror.ErrNotFinalApprover
	}

	var t *domain.Task
	var out *outcome
	db := persistence.ActiveDataSourceManager.GormDB(sec.Ctx())
	err := db.Transaction(func(tx *gorm.DB) error {
		now := currentTime()
		var err error
		if t, err = task.FindTask(tx, taskID); err != nil {
			return err
		}
		inst, err := findInstance(tx, taskID)
		if err != nil {
			return err
		}
		switch inst.Status {
		case domain.InstanceInProgress:
		case domain.InstanceCompleted:
			return bizerror.ErrWorkflowCompleted
		default:
			return bizerror.ErrWorkflowNotInProgress
		}
		if t.Estimation == nil || t.Estimation.Status == domain.EstimationRejected {
			return bizerror.ErrEstimationRejected
		}
		idx := inst.ActiveIndex()
		if idx < 0 || idx != len(inst.Steps)-1 {
			return bizerror.ErrFinalStepNotReached
		}

		assignee, err := task.FindEffectiveAssignee(tx, t)
		if err != nil {
			return err
		}
		cal, err := calendar.LoadCalendar(tx, assignee)
		if err != nil {
			return err
		}
		start, err := schedule.ParseInstant(c.PlannedStartDate, cal.Location)
		if err != nil {
			return err
		}
		if !schedule.IsInstantWithinSchedule(start, cal.Slots, cal.Location) {
			logrus.WithFields(logrus.Fields{"taskId": taskID, "assignee": assignee.ID}).
				Infof("planned start %s is outside the working hours of the assignee", start.Format(time.RFC3339))
		}
		completion, err := schedule.Advance(start, t.Estimation.Quantity, t.Estimation.Unit, cal.Location, cal.Slots, cal.Holidays, cal.Leaves)
		if err != nil {
			return err
		}

		version := inst.Version
		finalize(inst, idx, sec.Identity.ID, now, c.Note)
		if err := saveInstance(tx, inst, version, now); err != nil {
			return err
		}

		start = start.UTC()
		status := domain.TaskStatusScheduled
		t.Estimation.Status = domain.EstimationApproved
		t.Estimation.UpdatedAt = now
		if err := task.UpdateTask(tx, taskID, &task.TaskUpdating{Estimation: t.Estimation, Status: &status,
			PlannedStartDate: &start, ExpectedCompletionDate: &completion}); err != nil {
			return err
		}
		t.Status = status
		t.PlannedStartDate = &start
		t.ExpectedCompletionDate = &completion

		record, err := event.CreateEvent(inst, &inst.Steps[idx], domain.ActionFinalApprove, c.Note, domain.Metadata{
			"plannedStartDate":       start.Format(time.RFC3339Nano),
			"expectedCompletionDate": completion.Format(time.RFC3339Nano),
			"assigneeId":             assignee.ID.String(),
		}, sec, now, tx)
		if err != nil {
			return err
		}
		out = &outcome{record: record}
		out.notify([]types.ID{t.Estimation.SubmittedBy, t.CreatorID}, notificationApproved(t, completion))
		return nil
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{"taskId": taskID, "actor": sec.Identity.ID}).
		Infof("task scheduled to complete at %s", t.ExpectedCompletionDate.Format(time.RFC3339))
	out.dispatch(sec.Ctx())
	return t, nil
}

// GetWorkflowSummary returns nil when no estimate was ever submitted for the task.
func GetWorkflowSummary(taskID types.ID, sec *session.Session) (*domain.WorkflowSummary, error) {
	db := persistence.ActiveDataSourceManager.GormDB(sec.Ctx())
	if _, err := task.FindTask(db, taskID); err != nil {
		return nil, err
	}
	inst, err := findInstance(db, taskID)
	if err == bizerror.ErrWorkflowNotStarted {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	def, err := flow.FindDefinitionDetail(db, inst.DefinitionID)
	if err != nil {
		return nil, err
	}
	actions, err := event.QueryActions(db, inst.ID)
	if err != nil {
		return nil, err
	}
	return &domain.WorkflowSummary{Definition: def, Instance: inst, Actions: actions}, nil
}

func createInstance(tx *gorm.DB, def *domain.WorkflowDefinitionDetail, taskID types.ID, now time.Time) (*domain.WorkflowInstance, error) {
	if len(def.Steps) == 0 {
		return nil, fmt.Errorf("%w: definition %d has no step", bizerror.ErrWorkflowNotConfigured, def.ID)
	}
	inst := &domain.WorkflowInstance{
		ID:           idgen.NextID(idWorker),
		DefinitionID: def.ID,
		EntityType:   domain.EntityTypeTask,
		EntityID:     taskID,
		Status:       domain.InstanceInProgress,
		Steps:        newInstanceSteps(def),
		Version:      1,
		CreateTime:   now,
		UpdateTime:   now,
	}
	first := inst.Steps[0].StepID
	inst.CurrentStepID = &first
	if err := tx.Create(inst).Error; err != nil {
		return nil, err
	}
	return inst, nil
}

func findInstance(db *gorm.DB, taskID types.ID) (*domain.WorkflowInstance, error) {
	inst := domain.WorkflowInstance{}
	if err := db.Where("entity_type = ? AND entity_id = ?", domain.EntityTypeTask, taskID).First(&inst).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return nil, bizerror.ErrWorkflowNotStarted
		}
		return nil, err
	}
	return &inst, nil
}

// saveInstance writes inst only if nobody changed it since version was read.
func saveInstance(tx *gorm.DB, inst *domain.WorkflowInstance, version int, now time.Time) error {
	result := tx.Model(&domain.WorkflowInstance{}).Where("id = ? AND version = ?", inst.ID, version).
		UpdateColumns(map[string]interface{}{
			"status":          inst.Status,
			"current_step_id": inst.CurrentStepID,
			"steps":           inst.Steps,
			"version":         version + 1,
			"update_time":     now,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected != 1 {
		return bizerror.ErrConcurrentModification
	}
	inst.Version = version + 1
	inst.UpdateTime = now
	return nil
}

func currentTime() time.Time {
	return time.Now().UTC().Round(time.Millisecond)
}
