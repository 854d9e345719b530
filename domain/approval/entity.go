package approval

import (
	"taskflow/domain"
)

type EstimateSubmission struct {
	Quantity   float64               `json:"quantity"`
	Unit       domain.EstimationUnit `json:"unit" binding:"required"`
	Notes      string                `json:"notes" binding:"lte=2000"`
	Confidence domain.Confidence     `json:"confidence"`
}

type StepActionRequest struct {
	Action  string `json:"action" binding:"required"`
	Comment string `json:"comment" binding:"lte=2000"`
}

type FinalApprovalRequest struct {
	// RFC3339, or wall clock time of the assignee when no offset is given
	PlannedStartDate string `json:"plannedStartDate" binding:"required"`
	Note             string `json:"note" binding:"lte=2000"`
}
