package approval

import (
	"strings"
	"taskflow/bizerror"
	"taskflow/domain"
	"time"

	"github.com/fundwit/go-commons/types"
)

// restartAttempt as the origin of a rewind starts a fresh approval attempt.
const restartAttempt = -1

// newInstanceSteps copies the step metadata of def by value, the first step starts active.
func newInstanceSteps(def *domain.WorkflowDefinitionDetail) domain.StepInstances {
	steps := make(domain.StepInstances, 0, len(def.Steps))
	for _, s := range def.Steps {
		steps = append(steps, domain.WorkflowStepInstance{
			StepID:                    s.ID,
			Name:                      s.Name,
			Order:                     s.Order,
			ApproverType:              s.ApproverType,
			ApproverRole:              s.ApproverRole,
			DynamicApproverType:       s.DynamicApproverType,
			AssigneeRole:              s.AssigneeRole,
			RequiresCommentOnReject:   s.RequiresCommentOnReject,
			RequiresCommentOnSendBack: s.RequiresCommentOnSendBack,
			Actions:                   append(domain.StepActions(nil), s.Actions...),
			Status:                    domain.StepPending,
		})
	}
	if len(steps) > 0 {
		steps[0].Status = domain.StepActive
	}
	return steps
}

func activateStep(inst *domain.WorkflowInstance, idx int) {
	inst.Steps[idx].Reset(domain.StepActive)
	id := inst.Steps[idx].StepID
	inst.CurrentStepID = &id
}

// restart resets every step of the snapshot, activates the first one and puts the instance back
// in progress.
func restart(inst *domain.WorkflowInstance) {
	for idx := range inst.Steps {
		inst.Steps[idx].Reset(domain.StepPending)
	}
	inst.Status = domain.InstanceInProgress
	inst.CurrentStepID = nil
	if len(inst.Steps) > 0 {
		activateStep(inst, 0)
	}
}

func approve(inst *domain.WorkflowInstance, idx int, actorID types.ID, at time.Time, comment string) error {
	if idx >= len(inst.Steps)-1 {
		return bizerror.ErrFinalStepRequiresApproval
	}
	inst.Steps[idx].Acted(domain.StepApproved, domain.ActionApprove, actorID, at, comment)
	activateStep(inst, idx+1)
	for later := idx + 2; later < len(inst.Steps); later++ {
		inst.Steps[later].Reset(domain.StepPending)
	}
	inst.Status = domain.InstanceInProgress
	return nil
}

func reject(inst *domain.WorkflowInstance, idx int, actorID types.ID, at time.Time, comment string) {
	for other := range inst.Steps {
		if other != idx {
			inst.Steps[other].Reset(domain.StepPending)
		}
	}
	inst.Steps[idx].Acted(domain.StepRejected, domain.ActionReject, actorID, at, comment)
	inst.Status = domain.InstanceRejected
	inst.CurrentStepID = nil
}

// rewind makes target the active step again. With from set to restartAttempt the whole snapshot
// is rebuilt and the instance waits for a new estimate, otherwise step from is marked SENT_BACK
// and the instance stays in progress.
func rewind(inst *domain.WorkflowInstance, target, from int, actorID types.ID, at time.Time, comment string) {
	if from == restartAttempt {
		restart(inst)
		inst.Status = domain.InstanceChangesRequested
		return
	}
	for later := target + 1; later < len(inst.Steps); later++ {
		inst.Steps[later].Reset(domain.StepPending)
	}
	inst.Steps[from].Acted(domain.StepSentBack, domain.ActionSendBack, actorID, at, comment)
	activateStep(inst, target)
	inst.Status = domain.InstanceInProgress
}

func sendBack(inst *domain.WorkflowInstance, idx int, actorID types.ID, at time.Time, comment string) {
	if idx == 0 {
		rewind(inst, 0, restartAttempt, actorID, at, comment)
		return
	}
	rewind(inst, idx-1, idx, actorID, at, comment)
}

func requestChange(inst *domain.WorkflowInstance, actorID types.ID, at time.Time, comment string) {
	rewind(inst, 0, restartAttempt, actorID, at, comment)
}

// finalize approves the last step and completes the instance.
func finalize(inst *domain.WorkflowInstance, idx int, actorID types.ID, at time.Time, note string) {
	inst.Steps[idx].Acted(domain.StepApproved, domain.ActionFinalApprove, actorID, at, note)
	inst.Status = domain.InstanceCompleted
	inst.CurrentStepID = nil
}

// checkStepAction verifies the preconditions of a plain step action and returns the index of the
// active step.
func checkStepAction(inst *domain.WorkflowInstance, role domain.Role, action domain.StepAction, comment string) (int, error) {
	switch inst.Status {
	case domain.InstanceInProgress:
	case domain.InstanceCompleted:
		return -1, bizerror.ErrWorkflowCompleted
	default:
		return -1, bizerror.ErrWorkflowNotInProgress
	}
	idx := inst.ActiveIndex()
	if idx < 0 {
		return -1, bizerror.ErrWorkflowNotInProgress
	}
	if action == domain.ActionApprove && idx == len(inst.Steps)-1 {
		return -1, bizerror.ErrFinalStepRequiresApproval
	}

	step := &inst.Steps[idx]
	if role != step.AssigneeRole {
		return -1, bizerror.ErrStepRoleMismatch
	}
	if !step.Actions.Contains(action) {
		return -1, bizerror.ErrActionNotAllowed
	}
	blank := strings.TrimSpace(comment) == ""
	if blank && ((action == domain.ActionReject && step.RequiresCommentOnReject) ||
		(action == domain.ActionSendBack && step.RequiresCommentOnSendBack)) {
		return -1, bizerror.ErrCommentRequired
	}
	return idx, nil
}

// applyStepAction runs the transition of action on step idx and returns the estimation status it
// implies, empty when the estimation stays under review.
func applyStepAction(inst *domain.WorkflowInstance, idx int, action domain.StepAction, actorID types.ID, at time.Time, comment string) (domain.EstimationStatus, error) {
	switch action {
	case domain.ActionApprove:
		return "", approve(inst, idx, actorID, at, comment)
	case domain.ActionReject:
		reject(inst, idx, actorID, at, comment)
		return domain.EstimationRejected, nil
	case domain.ActionSendBack:
		sendBack(inst, idx, actorID, at, comment)
		if inst.Status == domain.InstanceChangesRequested {
			return domain.EstimationChangesRequested, nil
		}
		return "", nil
	case domain.ActionRequestChange:
		requestChange(inst, actorID, at, comment)
		return domain.EstimationChangesRequested, nil
	}
	return "", bizerror.ErrUnsupportedAction
}
