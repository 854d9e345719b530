package flow

import (
	"taskflow/domain"
)

// StepInput describes one step of a definition being created. Order is optional, zero means the
// position in the list.
type StepInput struct {
	Name  string `json:"name" binding:"required"`
	Order int    `json:"order"`

	ApproverType        domain.ApproverType        `json:"approverType" binding:"required"`
	ApproverRole        domain.Role                `json:"approverRole"`
	DynamicApproverType domain.DynamicApproverType `json:"dynamicApproverType"`

	RequiresCommentOnReject   bool     `json:"requiresCommentOnReject"`
	RequiresCommentOnSendBack bool     `json:"requiresCommentOnSendBack"`
	Actions                   []string `json:"actions"`
}

type WorkflowDefinitionCreation struct {
	EntityType domain.EntityType `json:"entityType"`
	Name       string            `json:"name" binding:"required,lte=128"`
	Activate   bool              `json:"activate"`

	Steps []StepInput `json:"steps" binding:"required,dive"`
}
