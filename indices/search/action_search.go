package search

import (
	"encoding/json"
	"fmt"
	"net/http"
	"taskflow/client/es"
	"taskflow/domain"
	"taskflow/event"
	"taskflow/indices"
	"taskflow/session"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

var (
	PathWorkflowActions = "/v1/workflow-actions"

	SearchActionsFunc = SearchActions
)

const maxSearchSize = 1000

type ActionQuery struct {
	TaskID  types.ID            `json:"taskId" form:"taskId"`
	ActorID types.ID            `json:"actorId" form:"actorId"`
	Actions []domain.StepAction `json:"actions" form:"action"`
	Comment string              `json:"comment" form:"comment"`
}

// SearchActions looks up audit records in the action index, newest first.
func SearchActions(q ActionQuery, s *session.Session) ([]event.EventRecord, error) {
	filters := make([]es.H, 0, 4)
	if q.TaskID != 0 {
		filters = append(filters, es.H{"term": es.H{"entityType": domain.EntityTypeTask}})
		filters = append(filters, es.H{"term": es.H{"entityId": q.TaskID}})
	}
	if q.ActorID != 0 {
		filters = append(filters, es.H{"term": es.H{"actorId": q.ActorID}})
	}
	if len(q.Actions) > 0 {
		filters = append(filters, es.H{"terms": es.H{"action.keyword": q.Actions}})
	}
	if q.Comment != "" {
		filters = append(filters, es.H{"match": es.H{"comment": es.H{"query": q.Comment, "operator": "AND"}}})
	}

	root := es.H{"bool": es.H{"filter": filters}}
	sorts := []es.H{{"timestamp": es.H{"order": "desc"}}}
	r, err := es.SearchFunc(s.Ctx(), indices.ActionIndexName, es.H{"size": maxSearchSize, "query": root, "sort": sorts})
	if err != nil {
		return nil, err
	}

	records := make([]event.EventRecord, 0, len(r.Hits.Hits))
	for _, hit := range r.Hits.Hits {
		record := event.EventRecord{}
		if err := json.Unmarshal([]byte(hit.Source), &record); err != nil {
			return nil, fmt.Errorf("decode workflow action %s: %w", hit.Id, err)
		}
		records = append(records, record)
	}
	return records, nil
}

func RegisterActionSearchRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group(PathWorkflowActions, middleWares...)
	g.GET("", handleSearchActions)
}

func handleSearchActions(c *gin.Context) {
	q := ActionQuery{}
	if err := c.ShouldBindWith(&q, binding.Query); err != nil {
		panic(err)
	}
	records, err := SearchActionsFunc(q, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, records)
}
