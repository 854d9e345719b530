package servehttp

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"taskflow/bizerror"
	"taskflow/domain"
	"taskflow/domain/flow"
	"taskflow/session"
	"taskflow/testinfra"
	"testing"

	"github.com/fundwit/go-commons/types"
	. "github.com/onsi/gomega"
)

func TestWorkflowDefinitionRestAPI(t *testing.T) {
	RegisterTestingT(t)
	defer func() {
		flow.CreateWorkflowDefinitionFunc = flow.CreateWorkflowDefinition
		flow.QueryWorkflowDefinitionsFunc = flow.QueryWorkflowDefinitions
		flow.DetailWorkflowDefinitionFunc = flow.DetailWorkflowDefinition
		flow.DeleteWorkflowDefinitionFunc = flow.DeleteWorkflowDefinition
		flow.ActivateWorkflowDefinitionFunc = flow.ActivateWorkflowDefinition
		flow.DeactivateWorkflowDefinitionFunc = flow.DeactivateWorkflowDefinition
	}()

	router := BuildEngine(EngineConfig{TrustGatewayHeaders: true})

	t.Run("create definition", func(t *testing.T) {
		var captured *flow.WorkflowDefinitionCreation
		flow.CreateWorkflowDefinitionFunc = func(c *flow.WorkflowDefinitionCreation, sec *session.Session) (*domain.WorkflowDefinitionDetail, error) {
			captured = c
			return &domain.WorkflowDefinitionDetail{
				WorkflowDefinition: domain.WorkflowDefinition{ID: 30, Name: c.Name, Version: 1, IsActive: c.Activate},
			}, nil
		}
		req := asUser(httptest.NewRequest(http.MethodPost, "/v1/workflow-definitions", bytes.NewReader([]byte(`{
			"name":"estimate review","activate":true,
			"steps":[{"name":"admin sign off","approverType":"ROLE","approverRole":"ADMIN","actions":["APPROVE","REJECT"]}]}`))),
			"2", domain.RoleAdmin)
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusCreated))
		Expect(body).To(ContainSubstring(`"id":"30"`))
		Expect(body).To(ContainSubstring(`"isActive":true`))
		Expect(captured.Activate).To(BeTrue())
		Expect(captured.Steps).To(Equal([]flow.StepInput{{Name: "admin sign off", ApproverType: domain.ApproverTypeRole,
			ApproverRole: domain.RoleAdmin, Actions: []string{"APPROVE", "REJECT"}}}))
	})

	t.Run("steps are validated one by one", func(t *testing.T) {
		flow.CreateWorkflowDefinitionFunc = func(c *flow.WorkflowDefinitionCreation, sec *session.Session) (*domain.WorkflowDefinitionDetail, error) {
			t.Fatal("should not be called")
			return nil, nil
		}
		req := asUser(httptest.NewRequest(http.MethodPost, "/v1/workflow-definitions",
			bytes.NewReader([]byte(`{"name":"estimate review","steps":[{"approverType":"ROLE"}]}`))), "2", domain.RoleAdmin)
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusBadRequest))
		Expect(body).To(ContainSubstring(`"code":"common.bad_param"`))
	})

	t.Run("query definitions", func(t *testing.T) {
		var captured *domain.WorkflowDefinitionQuery
		flow.QueryWorkflowDefinitionsFunc = func(q *domain.WorkflowDefinitionQuery, sec *session.Session) ([]domain.WorkflowDefinition, error) {
			captured = q
			return []domain.WorkflowDefinition{{ID: 30, Name: "estimate review"}}, nil
		}
		req := asUser(httptest.NewRequest(http.MethodGet, "/v1/workflow-definitions?entityType=TASK&activeOnly=true", nil), "1", domain.RoleProjectManager)
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusOK))
		Expect(body).To(ContainSubstring(`"name":"estimate review"`))
		Expect(*captured).To(Equal(domain.WorkflowDefinitionQuery{EntityType: "TASK", ActiveOnly: true}))
	})

	t.Run("detail definition", func(t *testing.T) {
		flow.DetailWorkflowDefinitionFunc = func(id types.ID, sec *session.Session) (*domain.WorkflowDefinitionDetail, error) {
			return nil, bizerror.ErrNotFound
		}
		req := asUser(httptest.NewRequest(http.MethodGet, "/v1/workflow-definitions/31", nil), "1", domain.RoleProjectManager)
		status, _, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusNotFound))
	})

	t.Run("delete and activation toggles answer no content", func(t *testing.T) {
		var calls []string
		flow.DeleteWorkflowDefinitionFunc = func(id types.ID, sec *session.Session) error {
			calls = append(calls, "delete "+id.String())
			return nil
		}
		flow.ActivateWorkflowDefinitionFunc = func(id types.ID, sec *session.Session) error {
			calls = append(calls, "activate "+id.String())
			return nil
		}
		flow.DeactivateWorkflowDefinitionFunc = func(id types.ID, sec *session.Session) error {
			calls = append(calls, "deactivate "+id.String())
			return nil
		}
		for _, r := range []struct{ method, path string }{
			{http.MethodPut, "/v1/workflow-definitions/30/activation"},
			{http.MethodDelete, "/v1/workflow-definitions/30/activation"},
			{http.MethodDelete, "/v1/workflow-definitions/30"},
		} {
			req := asUser(httptest.NewRequest(r.method, r.path, nil), "2", domain.RoleAdmin)
			status, body, _ := testinfra.ExecuteRequest(req, router)
			Expect(status).To(Equal(http.StatusNoContent))
			Expect(body).To(BeEmpty())
		}
		Expect(calls).To(Equal([]string{"activate 30", "deactivate 30", "delete 30"}))
	})

	t.Run("referenced definitions can not be deleted", func(t *testing.T) {
		flow.DeleteWorkflowDefinitionFunc = func(id types.ID, sec *session.Session) error {
			return bizerror.ErrWorkflowIsReferenced
		}
		req := asUser(httptest.NewRequest(http.MethodDelete, "/v1/workflow-definitions/30", nil), "2", domain.RoleAdmin)
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusConflict))
		Expect(body).To(ContainSubstring(`"code":"workflow.referenced"`))
	})
}
