package notification

import (
	"context"
	"taskflow/domain"
	"taskflow/idgen"
	"taskflow/persistence"
	"taskflow/session"
	"time"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
)

const (
	TypeStepAssigned     = "WORKFLOW_STEP_ASSIGNED"
	TypeEstimateRejected = "ESTIMATE_REJECTED"
	TypeChangesRequested = "ESTIMATE_CHANGES_REQUESTED"
	TypeEstimateApproved = "ESTIMATE_APPROVED"
)

var (
	idWorker = idgen.NewWorker()

	NotifyFunc             = Notify
	QueryNotificationsFunc = QueryNotifications
)

// Notify stores one notification per distinct user.
func Notify(ctx context.Context, userIds []types.ID, message, notificationType string, metadata domain.Metadata) error {
	if len(userIds) == 0 {
		return nil
	}
	now := time.Now().UTC().Round(time.Millisecond)
	db := persistence.ActiveDataSourceManager.GormDB(ctx)
	return db.Transaction(func(tx *gorm.DB) error {
		for _, uid := range Distinct(userIds) {
			n := domain.Notification{ID: idgen.NextID(idWorker), UserID: uid, Type: notificationType, Message: message,
				Metadata: metadata, CreateTime: now}
			if err := tx.Create(&n).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// QueryNotifications lists the notifications of the session user, newest first.
func QueryNotifications(sec *session.Session) ([]domain.Notification, error) {
	notifications := []domain.Notification{}
	if err := persistence.ActiveDataSourceManager.GormDB(sec.Ctx()).Where("user_id = ?", sec.Identity.ID).
		Order("create_time DESC, id DESC").Find(&notifications).Error; err != nil {
		return nil, err
	}
	return notifications, nil
}

// Distinct drops zero ids and duplicates, keeping the first occurrence order.
func Distinct(ids []types.ID) []types.ID {
	seen := map[types.ID]bool{}
	result := make([]types.ID, 0, len(ids))
	for _, id := range ids {
		if id == 0 || seen[id] {
			continue
		}
		seen[id] = true
		result = append(result, id)
	}
	return result
}
