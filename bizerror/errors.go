package bizerror

import (
	"errors"
	"net/http"
)

// authentication and authorization
var (
	ErrUnauthenticated  = errors.New("unauthenticated")
	ErrForbidden        = errors.New("forbidden")
	ErrStepRoleMismatch = errors.New("actor role does not match the active step")
	ErrNotFinalApprover = errors.New("actor is not allowed to perform final approval")
)

// validation
var (
	ErrInvalidQuantity           = errors.New("estimation quantity must be greater than zero")
	ErrInvalidUnit               = errors.New("unsupported estimation unit")
	ErrInvalidConfidence         = errors.New("unsupported estimation confidence")
	ErrUnsupportedAction         = errors.New("unsupported workflow action")
	ErrActionNotAllowed          = errors.New("action is not allowed on the active step")
	ErrCommentRequired           = errors.New("a comment is required for this action")
	ErrInvalidWorkflowDefinition = errors.New("invalid workflow definition")
	ErrInvalidInstant            = errors.New("invalid instant")
	ErrInvalidSchedule           = errors.New("invalid schedule")
)

// state
var (
	ErrNotFound                  = errors.New("record not found")
	ErrWorkflowNotStarted        = errors.New("no estimate has been submitted for this task")
	ErrWorkflowNotInProgress     = errors.New("workflow instance is not in progress")
	ErrWorkflowCompleted         = errors.New("workflow instance is already completed")
	ErrFinalStepRequiresApproval = errors.New("the last step can only be approved through final approval")
	ErrFinalStepNotReached       = errors.New("the active step is not the last step")
	ErrEstimationRejected        = errors.New("task has no approvable estimation")
	ErrConcurrentModification    = errors.New("workflow instance was modified concurrently")
	ErrWorkflowIsReferenced      = errors.New("workflow definition is referenced")
	ErrLeaveDecided              = errors.New("leave request is already decided")
)

// configuration
var (
	ErrWorkflowNotConfigured = errors.New("no active workflow definition for the task")
	ErrAssigneeNotResolved   = errors.New("task has no developer to schedule")
	ErrInvalidTimeZone       = errors.New("invalid time zone")
	ErrScheduleExhausted     = errors.New("schedule has no working time left to consume")
)

type BizError interface {
	Respond() *BizErrorDetail
}

type BizErrorDetail struct {
	Status  int
	Code    string
	Message string

	Data  interface{}
	Cause error
}

type ErrBadParam struct {
	Cause error
}

func (e *ErrBadParam) Unwrap() error {
	return e.Cause
}
func (e *ErrBadParam) Error() string {
	if e.Cause != nil {
		return e.Cause.Error()
	}
	return "common.bad_param"
}
func (e *ErrBadParam) Respond() *BizErrorDetail {
	message := "common.bad_param"
	if e.Cause != nil {
		message = e.Cause.Error()
	}
	return &BizErrorDetail{Status: http.StatusBadRequest, Code: "common.bad_param", Message: message, Data: nil}
}

type errorResponse struct {
	err    error
	status int
	code   string
}

var knownErrors = []errorResponse{
	{ErrUnauthenticated, http.StatusUnauthorized, "common.unauthenticated"},
	{ErrForbidden, http.StatusForbidden, "security.forbidden"},
	{ErrStepRoleMismatch, http.StatusForbidden, "workflow.step_role_mismatch"},
	{ErrNotFinalApprover, http.StatusForbidden, "workflow.not_final_approver"},

	{ErrInvalidQuantity, http.StatusBadRequest, "estimation.invalid_quantity"},
	{ErrInvalidUnit, http.StatusBadRequest, "estimation.invalid_unit"},
	{ErrInvalidConfidence, http.StatusBadRequest, "estimation.invalid_confidence"},
	{ErrUnsupportedAction, http.StatusBadRequest, "workflow.unsupported_action"},
	{ErrActionNotAllowed, http.StatusBadRequest, "workflow.action_not_allowed"},
	{ErrCommentRequired, http.StatusBadRequest, "workflow.comment_required"},
	{ErrInvalidWorkflowDefinition, http.StatusBadRequest, "workflow.invalid_definition"},
	{ErrInvalidInstant, http.StatusBadRequest, "common.invalid_instant"},
	{ErrInvalidSchedule, http.StatusBadRequest, "schedule.invalid"},

	{ErrNotFound, http.StatusNotFound, "common.record_not_found"},
	{ErrWorkflowNotStarted, http.StatusConflict, "workflow.not_started"},
	{ErrWorkflowNotInProgress, http.StatusConflict, "workflow.not_in_progress"},
	{ErrWorkflowCompleted, http.StatusConflict, "workflow.completed"},
	{ErrFinalStepRequiresApproval, http.StatusConflict, "workflow.final_approval_required"},
	{ErrFinalStepNotReached, http.StatusConflict, "workflow.final_step_not_reached"},
	{ErrEstimationRejected, http.StatusConflict, "estimation.not_approvable"},
	{ErrConcurrentModification, http.StatusConflict, "workflow.concurrent_modification"},
	{ErrWorkflowIsReferenced, http.StatusConflict, "workflow.referenced"},
	{ErrLeaveDecided, http.StatusConflict, "leave.decided"},

	{ErrWorkflowNotConfigured, http.StatusUnprocessableEntity, "workflow.not_configured"},
	{ErrAssigneeNotResolved, http.StatusUnprocessableEntity, "task.assignee_not_resolved"},
	{ErrInvalidTimeZone, http.StatusUnprocessableEntity, "schedule.invalid_time_zone"},
	{ErrScheduleExhausted, http.StatusUnprocessableEntity, "schedule.exhausted"},
}
