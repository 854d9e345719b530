package indices

import (
	"context"
	"fmt"
	"taskflow/client/es"
	"taskflow/event"

	"github.com/fundwit/go-commons/types"
	"github.com/sirupsen/logrus"
)

var (
	ActionIndexName = "workflow_actions"
)

const ActionIndexEventHandlerName = "workflowActionIndexer"

type BatchActionError map[types.ID]error

func (e BatchActionError) Error() string {
	return fmt.Sprintf("%v", map[types.ID]error(e))
}

// IndexActions indexes every record and reports the ones that failed.
func IndexActions(ctx context.Context, records []event.EventRecord) error {
	errs := BatchActionError{}
	for _, record := range records {
		if err := es.IndexFunc(ctx, ActionIndexName, record.ID, record); err != nil {
			errs[record.ID] = err
			logrus.Warnf("index workflow action %d of instance %d: %v", record.ID, record.InstanceID, err)
		} else {
			logrus.Debugf("index workflow action %d of instance %d successfully", record.ID, record.InstanceID)
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// IndexActionEventHandle is registered as an event handler when a cluster is configured.
func IndexActionEventHandle(ctx context.Context, e *event.EventRecord) *event.EventHandleResult {
	if err := IndexActions(ctx, []event.EventRecord{*e}); err != nil {
		return &event.EventHandleResult{
			Message:           fmt.Sprintf("index workflow action %d, %v", e.ID, err),
			HandlerIdentifier: ActionIndexEventHandlerName,
		}
	}
	return &event.EventHandleResult{Success: true, HandlerIdentifier: ActionIndexEventHandlerName}
}
