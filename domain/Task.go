package domain

import (
	"database/sql/driver"
	"taskflow/domain/schedule"
	"time"

	"github.com/fundwit/go-commons/types"
)

type Project struct {
	ID   types.ID `json:"id" gorm:"primary_key" sql:"type:BIGINT UNSIGNED NOT NULL"`
	Name string   `json:"name"`

	CompanyID            types.ID `json:"companyId"`
	VendorID             types.ID `json:"vendorId"`
	WorkflowDefinitionID types.ID `json:"workflowDefinitionId"`

	CreatorID  types.ID  `json:"creatorId"`
	CreateTime time.Time `json:"createTime"`
}

type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "TODO"
	TaskStatusScheduled  TaskStatus = "SCHEDULED"
	TaskStatusInProgress TaskStatus = "IN_PROGRESS"
	TaskStatusDone       TaskStatus = "DONE"
)

type EstimationUnit = schedule.Unit

const (
	UnitHours = schedule.UnitHours
	UnitDays  = schedule.UnitDays
)

type EstimationStatus string

const (
	EstimationUnderReview      EstimationStatus = "UNDER_REVIEW"
	EstimationApproved         EstimationStatus = "APPROVED"
	EstimationRejected         EstimationStatus = "REJECTED"
	EstimationChangesRequested EstimationStatus = "CHANGES_REQUESTED"
)

type Confidence string

const (
	ConfidenceLow    Confidence = "LOW"
	ConfidenceMedium Confidence = "MEDIUM"
	ConfidenceHigh   Confidence = "HIGH"
)

func (c Confidence) Valid() bool {
	return c == "" || c == ConfidenceLow || c == ConfidenceMedium || c == ConfidenceHigh
}

type Estimation struct {
	Quantity    float64          `json:"quantity"`
	Unit        EstimationUnit   `json:"unit"`
	Notes       string           `json:"notes,omitempty"`
	Confidence  Confidence       `json:"confidence,omitempty"`
	SubmittedBy types.ID         `json:"submittedById"`
	SubmittedAt time.Time        `json:"submittedAt"`
	Status      EstimationStatus `json:"status"`
	UpdatedAt   time.Time        `json:"updatedAt"`
}

func (e Estimation) Value() (driver.Value, error) {
	return jsonValue(e)
}

func (e *Estimation) Scan(v interface{}) error {
	return jsonScan(v, e)
}

type Task struct {
	ID        types.ID   `json:"id" gorm:"primary_key" sql:"type:BIGINT UNSIGNED NOT NULL"`
	ProjectID types.ID   `json:"projectId" gorm:"index:idx_task_project"`
	Name      string     `json:"name"`
	Status    TaskStatus `json:"status"`
	CreatorID types.ID   `json:"creatorId"`

	Estimation             *Estimation `json:"estimation" sql:"type:TEXT"`
	PlannedStartDate       *time.Time  `json:"plannedStartDate"`
	ExpectedCompletionDate *time.Time  `json:"expectedCompletionDate"`
	WorkflowInstanceID     types.ID    `json:"workflowInstanceId"`

	CreateTime time.Time `json:"createTime"`
	UpdateTime time.Time `json:"updateTime"`
}

type AssignmentStatus string

const (
	AssignmentPending  AssignmentStatus = "PENDING"
	AssignmentActive   AssignmentStatus = "ACTIVE"
	AssignmentApproved AssignmentStatus = "APPROVED"
	AssignmentRevoked  AssignmentStatus = "REVOKED"
)

type TaskAssignment struct {
	ID         types.ID         `json:"id" gorm:"primary_key" sql:"type:BIGINT UNSIGNED NOT NULL"`
	TaskID     types.ID         `json:"taskId" gorm:"index:idx_assignment_task"`
	UserID     types.ID         `json:"userId"`
	Status     AssignmentStatus `json:"status"`
	CreateTime time.Time        `json:"createTime"`
}
