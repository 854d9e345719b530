package indices

import (
	"context"
	"fmt"
	"sync"
	"taskflow/bizerror"
	"taskflow/client/es"
	"taskflow/domain"
	"taskflow/event"
	"taskflow/persistence"
	"taskflow/session"

	"github.com/sirupsen/logrus"
)

var (
	lock    sync.Mutex
	running bool

	SyncBatchSize = 500

	IndicesFullSyncFunc    = IndicesFullSync
	ScheduleNewSyncRunFunc = ScheduleNewSyncRun
)

// ScheduleNewSyncRun starts a full rebuild in the background, false means one is already running.
func ScheduleNewSyncRun(sec *session.Session) (bool, error) {
	if !sec.HasRole(domain.RoleAdmin) {
		return false, bizerror.ErrForbidden
	}

	lock.Lock()
	if running {
		lock.Unlock()
		return false, nil
	}
	running = true
	lock.Unlock()

	go func() {
		defer func() {
			lock.Lock()
			running = false
			lock.Unlock()
		}()
		if err := IndicesFullSyncFunc(context.Background()); err != nil {
			logrus.Errorf("indices fully sync: %v", err)
		}
	}()
	return true, nil
}

// IndicesFullSync drops the action index and indexes every stored action again.
func IndicesFullSync(ctx context.Context) (err error) {
	defer func() {
		if ret := recover(); ret != nil {
			e, ok := ret.(error)
			if ok {
				err = e
			} else {
				err = fmt.Errorf("error on indices full sync: %v", ret)
			}
		}
	}()

	if err := es.DropIndexFunc(ctx, ActionIndexName); err != nil {
		return err
	}

	db := persistence.ActiveDataSourceManager.GormDB(ctx)
	for page := 1; ; page++ {
		actions, err := event.LoadActions(db, page, SyncBatchSize)
		if err != nil {
			return fmt.Errorf("load actions (page = %d, pageSize = %d): %w", page, SyncBatchSize, err)
		}
		if len(actions) == 0 {
			logrus.Infof("indices fully sync: there are no more actions to index")
			return nil
		}

		records, err := event.EnrichActions(db, actions)
		if err != nil {
			return fmt.Errorf("enrich actions (page = %d): %w", page, err)
		}
		if err := IndexActions(ctx, records); err != nil {
			logrus.Warnf("indices fully sync: error on index actions(page = %d, pageSize = %d): %v", page, SyncBatchSize, err)
		}
	}
}
