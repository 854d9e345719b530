package event

import (
	"taskflow/domain"
	"taskflow/idgen"
	"taskflow/session"
	"time"

	"github.com/jinzhu/gorm"
)

var idWorker = idgen.NewWorker()

// CreateEvent appends the audit record of one transition on inst, step is the step acted on.
func CreateEvent(inst *domain.WorkflowInstance, step *domain.WorkflowStepInstance, action domain.StepAction,
	comment string, metadata domain.Metadata, sec *session.Session, at time.Time, db *gorm.DB) (*EventRecord, error) {

	record := EventRecord{
		WorkflowAction: domain.WorkflowAction{
			ID:         idgen.NextID(idWorker),
			InstanceID: inst.ID,
			StepID:     step.StepID,
			ActorID:    sec.Identity.ID,
			ActorRole:  sec.Role,
			Action:     action,
			Comment:    comment,
			Metadata:   metadata,
			Timestamp:  at,
		},
		EntityType:     inst.EntityType,
		EntityID:       inst.EntityID,
		StepName:       step.Name,
		ActorName:      sec.Identity.Name,
		InstanceStatus: inst.Status,
	}
	if err := EventPersistCreateFunc(&record.WorkflowAction, db); err != nil {
		return nil, err
	}
	return &record, nil
}
