package domain

import (
	"database/sql/driver"
	"time"

	"github.com/fundwit/go-commons/types"
)

type InstanceStatus string

const (
	InstanceNotStarted       InstanceStatus = "NOT_STARTED"
	InstanceInProgress       InstanceStatus = "IN_PROGRESS"
	InstanceChangesRequested InstanceStatus = "CHANGES_REQUESTED"
	InstanceRejected         InstanceStatus = "REJECTED"
	InstanceCompleted        InstanceStatus = "COMPLETED"
)

type StepStatus string

const (
	StepPending  StepStatus = "PENDING"
	StepActive   StepStatus = "ACTIVE"
	StepApproved StepStatus = "APPROVED"
	StepRejected StepStatus = "REJECTED"
	StepSentBack StepStatus = "SENT_BACK"
)

// WorkflowStepInstance is a value copy of a step definition plus the state of one attempt.
type WorkflowStepInstance struct {
	StepID types.ID `json:"stepId"`
	Name   string   `json:"name"`
	Order  int      `json:"order"`

	ApproverType        ApproverType        `json:"approverType"`
	ApproverRole        Role                `json:"approverRole,omitempty"`
	DynamicApproverType DynamicApproverType `json:"dynamicApproverType,omitempty"`
	AssigneeRole        Role                `json:"assigneeRole"`

	RequiresCommentOnReject   bool        `json:"requiresCommentOnReject"`
	RequiresCommentOnSendBack bool        `json:"requiresCommentOnSendBack"`
	Actions                   StepActions `json:"actions"`

	Status    StepStatus `json:"status"`
	ActedByID types.ID   `json:"actedById,omitempty"`
	ActedAt   *time.Time `json:"actedAt,omitempty"`
	Action    StepAction `json:"action,omitempty"`
	Comment   string     `json:"comment,omitempty"`
}

// Reset clears the state of the attempt and keeps the snapshot metadata.
func (s *WorkflowStepInstance) Reset(status StepStatus) {
	s.Status = status
	s.ActedByID = 0
	s.ActedAt = nil
	s.Action = ""
	s.Comment = ""
}

func (s *WorkflowStepInstance) Acted(status StepStatus, action StepAction, actorID types.ID, at time.Time, comment string) {
	actedAt := at
	s.Status = status
	s.ActedByID = actorID
	s.ActedAt = &actedAt
	s.Action = action
	s.Comment = comment
}

type StepInstances []WorkflowStepInstance

func (steps StepInstances) Value() (driver.Value, error) {
	return jsonValue(steps)
}

func (steps *StepInstances) Scan(v interface{}) error {
	return jsonScan(v, steps)
}

func (steps StepInstances) IndexOf(stepID types.ID) int {
	for idx, s := range steps {
		if s.StepID == stepID {
			return idx
		}
	}
	return -1
}

func (steps StepInstances) Clone() StepInstances {
	if steps == nil {
		return nil
	}
	cloned := make(StepInstances, len(steps))
	for idx, s := range steps {
		c := s
		c.Actions = append(StepActions(nil), s.Actions...)
		if s.ActedAt != nil {
			at := *s.ActedAt
			c.ActedAt = &at
		}
		cloned[idx] = c
	}
	return cloned
}

type WorkflowInstance struct {
	ID           types.ID   `json:"id" gorm:"primary_key" sql:"type:BIGINT UNSIGNED NOT NULL"`
	DefinitionID types.ID   `json:"definitionId"`
	EntityType   EntityType `json:"entityType" gorm:"unique_index:idx_instance_entity"`
	EntityID     types.ID   `json:"entityId" gorm:"unique_index:idx_instance_entity"`

	Status        InstanceStatus `json:"status"`
	CurrentStepID *types.ID      `json:"currentStepId"`
	Steps         StepInstances  `json:"steps" sql:"type:TEXT"`

	Version    int       `json:"version"`
	CreateTime time.Time `json:"createTime"`
	UpdateTime time.Time `json:"updateTime"`
}

// ActiveIndex is the index of the current step, -1 when no step is current.
func (i *WorkflowInstance) ActiveIndex() int {
	if i.CurrentStepID == nil {
		return -1
	}
	return i.Steps.IndexOf(*i.CurrentStepID)
}

type WorkflowAction struct {
	ID         types.ID   `json:"id" gorm:"primary_key" sql:"type:BIGINT UNSIGNED NOT NULL"`
	InstanceID types.ID   `json:"instanceId" gorm:"index:idx_action_instance"`
	StepID     types.ID   `json:"stepId"`
	ActorID    types.ID   `json:"actorId"`
	ActorRole  Role       `json:"actorRole"`
	Action     StepAction `json:"action"`
	Comment    string     `json:"comment" sql:"type:TEXT"`
	Metadata   Metadata   `json:"metadata" sql:"type:TEXT"`
	Timestamp  time.Time  `json:"timestamp"`
}

type Metadata map[string]interface{}

func (m Metadata) Value() (driver.Value, error) {
	return jsonValue(m)
}

func (m *Metadata) Scan(v interface{}) error {
	return jsonScan(v, m)
}

type WorkflowSummary struct {
	Definition *WorkflowDefinitionDetail `json:"definition"`
	Instance   *WorkflowInstance         `json:"instance"`
	Actions    []WorkflowAction          `json:"actions"`
}
