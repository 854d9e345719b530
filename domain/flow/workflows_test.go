package flow_test

import (
	"context"
	"taskflow/bizerror"
	"taskflow/domain"
	"taskflow/domain/flow"
	"taskflow/testinfra"
	"testing"

	"github.com/fundwit/go-commons/types"
	. "github.com/onsi/gomega"
)

func twoStepCreation(name string, activate bool) *flow.WorkflowDefinitionCreation {
	return &flow.WorkflowDefinitionCreation{Name: name, Activate: activate, Steps: []flow.StepInput{
		{Name: "manager review", ApproverType: domain.ApproverTypeRole, ApproverRole: domain.RoleProjectManager,
			RequiresCommentOnSendBack: true, Actions: []string{"APPROVE", "REJECT", "SEND_BACK", "REQUEST_CHANGE"}},
		{Name: "admin sign off", ApproverType: domain.ApproverTypeRole, ApproverRole: domain.RoleAdmin,
			Actions: []string{"APPROVE", "REJECT", "SEND_BACK"}},
	}}
}

func TestCreateWorkflowDefinition(t *testing.T) {
	RegisterTestingT(t)

	t.Run("only admin is able to manage definitions", func(t *testing.T) {
		testDatabase := testinfra.StartTestDatabase("taskflow")
		defer testinfra.StopTestDatabase(testDatabase)

		pm := testinfra.BuildSession(1, domain.RoleProjectManager)
		_, err := flow.CreateWorkflowDefinition(twoStepCreation("a", false), pm)
		Expect(err).To(Equal(bizerror.ErrForbidden))
		Expect(flow.ActivateWorkflowDefinition(1, pm)).To(Equal(bizerror.ErrForbidden))
		Expect(flow.DeactivateWorkflowDefinition(1, pm)).To(Equal(bizerror.ErrForbidden))
		Expect(flow.DeleteWorkflowDefinition(1, pm)).To(Equal(bizerror.ErrForbidden))
	})

	t.Run("should refuse malformed definitions", func(t *testing.T) {
		testDatabase := testinfra.StartTestDatabase("taskflow")
		defer testinfra.StopTestDatabase(testDatabase)

		admin := testinfra.BuildSession(1, domain.RoleAdmin)
		c := twoStepCreation("a", false)
		c.EntityType = "PROJECT"
		_, err := flow.CreateWorkflowDefinition(c, admin)
		Expect(err).To(MatchError(bizerror.ErrInvalidWorkflowDefinition))

		_, err = flow.CreateWorkflowDefinition(&flow.WorkflowDefinitionCreation{Name: "empty"}, admin)
		Expect(err).To(MatchError(bizerror.ErrInvalidWorkflowDefinition))
	})

	t.Run("should persist definition with increasing versions", func(t *testing.T) {
		testDatabase := testinfra.StartTestDatabase("taskflow")
		defer testinfra.StopTestDatabase(testDatabase)

		admin := testinfra.BuildSession(1, domain.RoleAdmin)
		first, err := flow.CreateWorkflowDefinition(twoStepCreation("a", false), admin)
		Expect(err).To(BeNil())
		Expect(first.Version).To(Equal(1))
		Expect(first.EntityType).To(Equal(domain.EntityTypeTask))
		Expect(first.IsActive).To(BeFalse())
		Expect(first.CreatorID).To(Equal(types.ID(1)))

		second, err := flow.CreateWorkflowDefinition(twoStepCreation("b", true), admin)
		Expect(err).To(BeNil())
		Expect(second.Version).To(Equal(2))
		Expect(second.IsActive).To(BeTrue())

		detail, err := flow.DetailWorkflowDefinition(first.ID, admin)
		Expect(err).To(BeNil())
		Expect(detail.Name).To(Equal("a"))
		Expect(len(detail.Steps)).To(Equal(2))
		Expect(detail.Steps[0].Order).To(Equal(1))
		Expect(detail.Steps[0].AssigneeRole).To(Equal(domain.RoleProjectManager))
		Expect(detail.Steps[0].RequiresCommentOnSendBack).To(BeTrue())
		Expect(detail.Steps[0].Actions).To(Equal(domain.StepActions{domain.ActionApprove, domain.ActionReject, domain.ActionSendBack, domain.ActionRequestChange}))
		Expect(detail.Steps[1].AssigneeRole).To(Equal(domain.RoleAdmin))
		Expect(detail.LastStep().ID).To(Equal(first.Steps[1].ID))

		_, err = flow.DetailWorkflowDefinition(404, admin)
		Expect(err).To(Equal(bizerror.ErrNotFound))
	})
}

func TestActivateWorkflowDefinition(t *testing.T) {
	RegisterTestingT(t)

	t.Run("activating a definition deactivates every sibling", func(t *testing.T) {
		testDatabase := testinfra.StartTestDatabase("taskflow")
		defer testinfra.StopTestDatabase(testDatabase)

		admin := testinfra.BuildSession(1, domain.RoleAdmin)
		a, err := flow.CreateWorkflowDefinition(twoStepCreation("a", true), admin)
		Expect(err).To(BeNil())
		b, err := flow.CreateWorkflowDefinition(twoStepCreation("b", false), admin)
		Expect(err).To(BeNil())
		c, err := flow.CreateWorkflowDefinition(twoStepCreation("c", false), admin)
		Expect(err).To(BeNil())
		db := testDatabase.DS.GormDB(context.Background())
		// simulate a stale second active row
		Expect(db.Model(&domain.WorkflowDefinition{}).Where("id = ?", b.ID).UpdateColumn("is_active", true).Error).To(BeNil())

		Expect(flow.ActivateWorkflowDefinition(c.ID, admin)).To(BeNil())

		active, err := flow.QueryWorkflowDefinitions(&domain.WorkflowDefinitionQuery{EntityType: domain.EntityTypeTask, ActiveOnly: true}, admin)
		Expect(err).To(BeNil())
		Expect(len(active)).To(Equal(1))
		Expect(active[0].ID).To(Equal(c.ID))

		found, err := flow.FindActiveDefinition(db, domain.EntityTypeTask)
		Expect(err).To(BeNil())
		Expect(found.ID).To(Equal(c.ID))
		Expect(len(found.Steps)).To(Equal(2))

		all, err := flow.QueryWorkflowDefinitions(&domain.WorkflowDefinitionQuery{}, admin)
		Expect(err).To(BeNil())
		Expect(len(all)).To(Equal(3))
		Expect(all[0].ID).To(Equal(c.ID))
		Expect(all[2].ID).To(Equal(a.ID))

		Expect(flow.ActivateWorkflowDefinition(404, admin)).To(Equal(bizerror.ErrNotFound))
	})

	t.Run("deactivation leaves the entity type unconfigured", func(t *testing.T) {
		testDatabase := testinfra.StartTestDatabase("taskflow")
		defer testinfra.StopTestDatabase(testDatabase)

		admin := testinfra.BuildSession(1, domain.RoleAdmin)
		a, err := flow.CreateWorkflowDefinition(twoStepCreation("a", true), admin)
		Expect(err).To(BeNil())
		Expect(flow.DeactivateWorkflowDefinition(a.ID, admin)).To(BeNil())

		_, err = flow.FindActiveDefinition(testDatabase.DS.GormDB(context.Background()), domain.EntityTypeTask)
		Expect(err).To(Equal(bizerror.ErrWorkflowNotConfigured))
	})
}

func TestResolveDefinitionForProject(t *testing.T) {
	RegisterTestingT(t)

	t.Run("should honor the pinned definition only while it is active", func(t *testing.T) {
		testDatabase := testinfra.StartTestDatabase("taskflow")
		defer testinfra.StopTestDatabase(testDatabase)

		admin := testinfra.BuildSession(1, domain.RoleAdmin)
		db := testDatabase.DS.GormDB(context.Background())

		_, err := flow.ResolveDefinitionForProject(db, &domain.Project{ID: 1})
		Expect(err).To(Equal(bizerror.ErrWorkflowNotConfigured))

		a, err := flow.CreateWorkflowDefinition(twoStepCreation("a", true), admin)
		Expect(err).To(BeNil())
		detail, err := flow.ResolveDefinitionForProject(db, &domain.Project{ID: 1})
		Expect(err).To(BeNil())
		Expect(detail.ID).To(Equal(a.ID))

		detail, err = flow.ResolveDefinitionForProject(db, &domain.Project{ID: 1, WorkflowDefinitionID: a.ID})
		Expect(err).To(BeNil())
		Expect(detail.ID).To(Equal(a.ID))

		b, err := flow.CreateWorkflowDefinition(twoStepCreation("b", true), admin)
		Expect(err).To(BeNil())
		_, err = flow.ResolveDefinitionForProject(db, &domain.Project{ID: 1, WorkflowDefinitionID: a.ID})
		Expect(err).To(Equal(bizerror.ErrWorkflowNotConfigured))
		_, err = flow.ResolveDefinitionForProject(db, &domain.Project{ID: 1, WorkflowDefinitionID: 404})
		Expect(err).To(Equal(bizerror.ErrWorkflowNotConfigured))
		detail, err = flow.ResolveDefinitionForProject(db, &domain.Project{ID: 1})
		Expect(err).To(BeNil())
		Expect(detail.ID).To(Equal(b.ID))
	})
}

func TestDeleteWorkflowDefinition(t *testing.T) {
	RegisterTestingT(t)

	t.Run("should refuse referenced definitions", func(t *testing.T) {
		testDatabase := testinfra.StartTestDatabase("taskflow")
		defer testinfra.StopTestDatabase(testDatabase)

		admin := testinfra.BuildSession(1, domain.RoleAdmin)
		a, err := flow.CreateWorkflowDefinition(twoStepCreation("a", true), admin)
		Expect(err).To(BeNil())
		b, err := flow.CreateWorkflowDefinition(twoStepCreation("b", false), admin)
		Expect(err).To(BeNil())
		testinfra.Persist(testDatabase,
			&domain.WorkflowInstance{ID: 9, DefinitionID: a.ID, EntityType: domain.EntityTypeTask, EntityID: 1, Status: domain.InstanceInProgress},
			&domain.Project{ID: 3, Name: "p", WorkflowDefinitionID: b.ID})

		Expect(flow.DeleteWorkflowDefinition(a.ID, admin)).To(Equal(bizerror.ErrWorkflowIsReferenced))
		Expect(flow.DeleteWorkflowDefinition(b.ID, admin)).To(Equal(bizerror.ErrWorkflowIsReferenced))
		Expect(flow.DeleteWorkflowDefinition(404, admin)).To(Equal(bizerror.ErrNotFound))
	})

	t.Run("should delete definition and its steps", func(t *testing.T) {
		testDatabase := testinfra.StartTestDatabase("taskflow")
		defer testinfra.StopTestDatabase(testDatabase)

		admin := testinfra.BuildSession(1, domain.RoleAdmin)
		a, err := flow.CreateWorkflowDefinition(twoStepCreation("a", false), admin)
		Expect(err).To(BeNil())
		_, err = flow.DetailWorkflowDefinition(a.ID, admin)
		Expect(err).To(BeNil())

		Expect(flow.DeleteWorkflowDefinition(a.ID, admin)).To(BeNil())
		_, err = flow.DetailWorkflowDefinition(a.ID, admin)
		Expect(err).To(Equal(bizerror.ErrNotFound))

		var count int
		Expect(testDatabase.DS.GormDB(context.Background()).Model(&domain.WorkflowStepDefinition{}).
			Where("definition_id = ?", a.ID).Count(&count).Error).To(BeNil())
		Expect(count).To(BeZero())
	})
}
