package task

import (
	"taskflow/domain"
	"time"

	"github.com/fundwit/go-commons/types"
)

type ProjectCreation struct {
	Name                 string   `json:"name" binding:"required,lte=64"`
	CompanyID            types.ID `json:"companyId"`
	VendorID             types.ID `json:"vendorId"`
	WorkflowDefinitionID types.ID `json:"workflowDefinitionId"`
}

type TaskCreation struct {
	Name      string   `json:"name" binding:"required,lte=256"`
	ProjectID types.ID `json:"projectId" binding:"required"`
}

type AssignmentCreation struct {
	UserID types.ID `json:"userId" binding:"required"`
}

// TaskUpdating is a partial update, nil fields are left untouched.
type TaskUpdating struct {
	Estimation             *domain.Estimation
	Status                 *domain.TaskStatus
	PlannedStartDate       *time.Time
	ExpectedCompletionDate *time.Time
	WorkflowInstanceID     *types.ID
}
