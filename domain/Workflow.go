package domain

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/fundwit/go-commons/types"
)

type EntityType string

const EntityTypeTask EntityType = "TASK"

func (t EntityType) Valid() bool {
	return t == EntityTypeTask
}

type ApproverType string

const (
	ApproverTypeRole    ApproverType = "ROLE"
	ApproverTypeDynamic ApproverType = "DYNAMIC"
)

type StepAction string

const (
	ActionApprove       StepAction = "APPROVE"
	ActionReject        StepAction = "REJECT"
	ActionSendBack      StepAction = "SEND_BACK"
	ActionRequestChange StepAction = "REQUEST_CHANGE"

	// audit only, never configurable on a step
	ActionSubmit       StepAction = "SUBMIT"
	ActionFinalApprove StepAction = "FINAL_APPROVE"
)

var configurableActions = []StepAction{ActionApprove, ActionReject, ActionSendBack, ActionRequestChange}

func ParseStepAction(value string) (StepAction, bool) {
	for _, a := range configurableActions {
		if string(a) == value {
			return a, true
		}
	}
	return "", false
}

type StepActions []StepAction

func (actions StepActions) Contains(action StepAction) bool {
	for _, a := range actions {
		if a == action {
			return true
		}
	}
	return false
}

func (actions StepActions) Value() (driver.Value, error) {
	return jsonValue(actions)
}

func (actions *StepActions) Scan(v interface{}) error {
	return jsonScan(v, actions)
}

type WorkflowDefinition struct {
	ID         types.ID   `json:"id" gorm:"primary_key" sql:"type:BIGINT UNSIGNED NOT NULL"`
	EntityType EntityType `json:"entityType" gorm:"index:idx_definition_entity_type"`
	Name       string     `json:"name"`
	Version    int        `json:"version"`
	IsActive   bool       `json:"isActive"`

	CreatorID  types.ID  `json:"creatorId"`
	CreateTime time.Time `json:"createTime"`
}

type WorkflowStepDefinition struct {
	ID           types.ID `json:"id" gorm:"primary_key" sql:"type:BIGINT UNSIGNED NOT NULL"`
	DefinitionID types.ID `json:"definitionId" gorm:"index:idx_step_definition"`
	Name         string   `json:"name"`
	Order        int      `json:"order" gorm:"column:step_order"`

	ApproverType        ApproverType        `json:"approverType"`
	ApproverRole        Role                `json:"approverRole,omitempty"`
	DynamicApproverType DynamicApproverType `json:"dynamicApproverType,omitempty"`
	AssigneeRole        Role                `json:"assigneeRole"`

	RequiresCommentOnReject   bool        `json:"requiresCommentOnReject"`
	RequiresCommentOnSendBack bool        `json:"requiresCommentOnSendBack"`
	Actions                   StepActions `json:"actions" sql:"type:TEXT"`
}

type WorkflowDefinitionDetail struct {
	WorkflowDefinition

	Steps []WorkflowStepDefinition `json:"steps"`
}

type WorkflowDefinitionQuery struct {
	EntityType EntityType `form:"entityType"`
	ActiveOnly bool       `form:"activeOnly"`
}

func (d *WorkflowDefinitionDetail) String() string {
	return fmt.Sprintf("%s v%d (%d steps)", d.Name, d.Version, len(d.Steps))
}

func (d *WorkflowDefinitionDetail) LastStep() *WorkflowStepDefinition {
	if len(d.Steps) == 0 {
		return nil
	}
	return &d.Steps[len(d.Steps)-1]
}
