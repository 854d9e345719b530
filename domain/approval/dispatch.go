package approval

import (
	"context"
	"fmt"
	"taskflow/account"
	"taskflow/bizerror"
	"taskflow/domain"
	"taskflow/domain/task"
	"taskflow/event"
	"taskflow/notification"
	"taskflow/persistence"
	"time"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sirupsen/logrus"
)

type notice struct {
	userIDs  []types.ID
	message  string
	kind     string
	metadata domain.Metadata

	// recipients are the people responsible for step when set
	step *domain.WorkflowStepInstance
}

// outcome is what a committed transition still has to tell the outside world.
type outcome struct {
	record  *event.EventRecord
	task    domain.Task
	notices []notice
}

func (o *outcome) notify(userIDs []types.ID, n notice) {
	n.userIDs = userIDs
	o.notices = append(o.notices, n)
}

func (o *outcome) notifySubmitter(t *domain.Task, n notice) {
	if t.Estimation != nil {
		o.notify([]types.ID{t.Estimation.SubmittedBy}, n)
	}
}

func (o *outcome) notifyResponsible(t *domain.Task, step domain.WorkflowStepInstance) {
	o.task = *t
	o.notices = append(o.notices, notice{
		message:  fmt.Sprintf("estimate of task '%s' is waiting for your review at step '%s'", t.Name, step.Name),
		kind:     notification.TypeStepAssigned,
		metadata: domain.Metadata{"taskId": t.ID.String(), "stepId": step.StepID.String()},
		step:     &step,
	})
}

// dispatch runs after commit, failures are logged and never undo the transition.
func (o *outcome) dispatch(ctx context.Context) {
	if o == nil {
		return
	}
	for _, n := range o.notices {
		ids := n.userIDs
		if n.step != nil {
			resolved, err := responsibleUsers(persistence.ActiveDataSourceManager.GormDB(ctx), &o.task, n.step)
			if err != nil {
				logrus.WithError(err).Errorf("failed to resolve the users responsible for step %d", n.step.StepID)
				continue
			}
			ids = resolved
		}
		if err := notification.NotifyFunc(ctx, ids, n.message, n.kind, n.metadata); err != nil {
			logrus.WithError(err).Errorf("failed to notify %v of %s", ids, n.kind)
		}
	}
	if o.record != nil {
		event.InvokeHandlersFunc(ctx, o.record)
	}
}

// responsibleUsers returns the assigned developer for ASSIGNED_DEVELOPER steps when one can be
// resolved, otherwise every holder of the step role.
func responsibleUsers(db *gorm.DB, t *domain.Task, step *domain.WorkflowStepInstance) ([]types.ID, error) {
	if step.ApproverType == domain.ApproverTypeDynamic && step.DynamicApproverType == domain.DynamicAssignedDeveloper {
		assignee, err := task.FindEffectiveAssignee(db, t)
		if err == nil && assignee.Role == step.AssigneeRole {
			return []types.ID{assignee.ID}, nil
		}
		if err != nil && err != bizerror.ErrAssigneeNotResolved {
			return nil, err
		}
	}
	users, err := account.ListUsersByRoleFunc(db, step.AssigneeRole)
	if err != nil {
		return nil, err
	}
	ids := make([]types.ID, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	return ids, nil
}

func notificationRejected(t *domain.Task, comment string) notice {
	return notice{
		message:  withComment(fmt.Sprintf("estimate of task '%s' was rejected", t.Name), comment),
		kind:     notification.TypeEstimateRejected,
		metadata: domain.Metadata{"taskId": t.ID.String()},
	}
}

func notificationChangesRequested(t *domain.Task, comment string) notice {
	return notice{
		message:  withComment(fmt.Sprintf("changes were requested on the estimate of task '%s'", t.Name), comment),
		kind:     notification.TypeChangesRequested,
		metadata: domain.Metadata{"taskId": t.ID.String()},
	}
}

func notificationApproved(t *domain.Task, completion time.Time) notice {
	return notice{
		message:  fmt.Sprintf("estimate of task '%s' was approved, expected completion %s", t.Name, completion.Format(time.RFC3339)),
		kind:     notification.TypeEstimateApproved,
		metadata: domain.Metadata{"taskId": t.ID.String(), "expectedCompletionDate": completion.Format(time.RFC3339Nano)},
	}
}

func withComment(message, comment string) string {
	if comment == "" {
		return message
	}
	return message + ": " + comment
}
