package event

import (
	"taskflow/domain"

	"github.com/fundwit/go-commons/types"
)

// EventRecord is a persisted workflow action enriched for post-commit handlers.
type EventRecord struct {
	domain.WorkflowAction

	EntityType     domain.EntityType     `json:"entityType"`
	EntityID       types.ID              `json:"entityId"`
	StepName       string                `json:"stepName"`
	ActorName      string                `json:"actorName"`
	InstanceStatus domain.InstanceStatus `json:"instanceStatus"`
}
