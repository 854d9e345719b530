package event

import (
	"taskflow/account"
	"taskflow/domain"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
)

var (
	EventPersistCreateFunc = DefaultEventPersistCreate
)

func DefaultEventPersistCreate(record *domain.WorkflowAction, db *gorm.DB) error {
	return db.Create(record).Error
}

// QueryActions lists the audit trail of an instance, oldest first.
func QueryActions(db *gorm.DB, instanceID types.ID) ([]domain.WorkflowAction, error) {
	actions := []domain.WorkflowAction{}
	if err := db.Where("instance_id = ?", instanceID).Order("timestamp ASC, id ASC").Find(&actions).Error; err != nil {
		return nil, err
	}
	return actions, nil
}

// LoadActions pages through every stored action, oldest first. page starts at 1.
func LoadActions(db *gorm.DB, page, size int) ([]domain.WorkflowAction, error) {
	offset := (page - 1) * size
	if offset < 0 {
		offset = 0
	}
	actions := []domain.WorkflowAction{}
	if err := db.Order("timestamp ASC, id ASC").Offset(offset).Limit(size).Find(&actions).Error; err != nil {
		return nil, err
	}
	return actions, nil
}

// EnrichActions rebuilds the handler view of stored actions. Instance status and actor names
// are the current ones, not the ones at the time of the action.
func EnrichActions(db *gorm.DB, actions []domain.WorkflowAction) ([]EventRecord, error) {
	instanceIDs := make([]types.ID, 0, len(actions))
	actorIDs := make([]types.ID, 0, len(actions))
	for _, a := range actions {
		instanceIDs = append(instanceIDs, a.InstanceID)
		actorIDs = append(actorIDs, a.ActorID)
	}

	instances := map[types.ID]domain.WorkflowInstance{}
	if len(instanceIDs) > 0 {
		var records []domain.WorkflowInstance
		if err := db.Where("id IN (?)", instanceIDs).Find(&records).Error; err != nil {
			return nil, err
		}
		for _, r := range records {
			instances[r.ID] = r
		}
	}
	names, err := account.QueryAccountNames(db, actorIDs)
	if err != nil {
		return nil, err
	}

	result := make([]EventRecord, 0, len(actions))
	for _, a := range actions {
		record := EventRecord{WorkflowAction: a, ActorName: names[a.ActorID]}
		if inst, found := instances[a.InstanceID]; found {
			record.EntityType = inst.EntityType
			record.EntityID = inst.EntityID
			record.InstanceStatus = inst.Status
			if idx := inst.Steps.IndexOf(a.StepID); idx >= 0 {
				record.StepName = inst.Steps[idx].Name
			}
		}
		result = append(result, record)
	}
	return result, nil
}
