package flow

import (
	"fmt"
	"taskflow/bizerror"
	"taskflow/domain"
	"taskflow/idgen"
	"taskflow/persistence"
	"taskflow/session"
	"time"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
)

var (
	idWorker = idgen.NewWorker()

	// step definitions never change once created, keyed by definition id
	stepsCache = cache.New(30*time.Minute, 10*time.Minute)

	CreateWorkflowDefinitionFunc     = CreateWorkflowDefinition
	ActivateWorkflowDefinitionFunc   = ActivateWorkflowDefinition
	DeactivateWorkflowDefinitionFunc = DeactivateWorkflowDefinition
	DetailWorkflowDefinitionFunc     = DetailWorkflowDefinition
	QueryWorkflowDefinitionsFunc     = QueryWorkflowDefinitions
	DeleteWorkflowDefinitionFunc     = DeleteWorkflowDefinition
)

func CreateWorkflowDefinition(c *WorkflowDefinitionCreation, sec *session.Session) (*domain.WorkflowDefinitionDetail, error) {
	if !sec.HasRole(domain.RoleAdmin) {
		return nil, bizerror.ErrForbidden
	}
	entityType := c.EntityType
	if entityType == "" {
		entityType = domain.EntityTypeTask
	}
	if !entityType.Valid() {
		return nil, fmt.Errorf("%w: unknown entityType '%s'", bizerror.ErrInvalidWorkflowDefinition, entityType)
	}
	steps, err := NormalizeSteps(c.Steps)
	if err != nil {
		return nil, err
	}

	detail := &domain.WorkflowDefinitionDetail{
		WorkflowDefinition: domain.WorkflowDefinition{
			ID:         idgen.NextID(idWorker),
			EntityType: entityType,
			Name:       c.Name,
			CreatorID:  sec.Identity.ID,
			CreateTime: time.Now().UTC().Round(time.Millisecond),
		},
	}
	for idx := range steps {
		steps[idx].ID = idgen.NextID(idWorker)
		steps[idx].DefinitionID = detail.ID
	}
	detail.Steps = steps

	db := persistence.ActiveDataSourceManager.GormDB(sec.Ctx())
	err = db.Transaction(func(tx *gorm.DB) error {
		var maxVersion int
		if err := tx.Model(&domain.WorkflowDefinition{}).Where("entity_type = ?", entityType).
			Select("COALESCE(MAX(version), 0)").Row().Scan(&maxVersion); err != nil {
			return err
		}
		detail.Version = maxVersion + 1
		if err := tx.Create(&detail.WorkflowDefinition).Error; err != nil {
			return err
		}
		for idx := range detail.Steps {
			if err := tx.Create(&detail.Steps[idx]).Error; err != nil {
				return err
			}
		}
		if c.Activate {
			detail.IsActive = true
			return activate(tx, &detail.WorkflowDefinition)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	logrus.Infof("workflow definition %s created by %d", detail, sec.Identity.ID)
	return detail, nil
}

// ActivateWorkflowDefinition makes the definition the only active one of its entity type.
func ActivateWorkflowDefinition(id types.ID, sec *session.Session) error {
	if !sec.HasRole(domain.RoleAdmin) {
		return bizerror.ErrForbidden
	}
	db := persistence.ActiveDataSourceManager.GormDB(sec.Ctx())
	return db.Transaction(func(tx *gorm.DB) error {
		def, err := findDefinition(tx, id)
		if err != nil {
			return err
		}
		return activate(tx, def)
	})
}

// activate flips every sibling of def within one statement, no two definitions of an entity
// type are ever active together.
func activate(tx *gorm.DB, def *domain.WorkflowDefinition) error {
	return tx.Model(&domain.WorkflowDefinition{}).Where("entity_type = ?", def.EntityType).
		UpdateColumn("is_active", gorm.Expr("CASE WHEN id = ? THEN ? ELSE ? END", def.ID, true, false)).Error
}

func DeactivateWorkflowDefinition(id types.ID, sec *session.Session) error {
	if !sec.HasRole(domain.RoleAdmin) {
		return bizerror.ErrForbidden
	}
	db := persistence.ActiveDataSourceManager.GormDB(sec.Ctx())
	return db.Transaction(func(tx *gorm.DB) error {
		if _, err := findDefinition(tx, id); err != nil {
			return err
		}
		return tx.Model(&domain.WorkflowDefinition{}).Where("id = ?", id).UpdateColumn("is_active", false).Error
	})
}

func DetailWorkflowDefinition(id types.ID, sec *session.Session) (*domain.WorkflowDefinitionDetail, error) {
	return FindDefinitionDetail(persistence.ActiveDataSourceManager.GormDB(sec.Ctx()), id)
}

func FindDefinitionDetail(db *gorm.DB, id types.ID) (*domain.WorkflowDefinitionDetail, error) {
	def, err := findDefinition(db, id)
	if err != nil {
		return nil, err
	}
	return withSteps(db, def)
}

func QueryWorkflowDefinitions(query *domain.WorkflowDefinitionQuery, sec *session.Session) ([]domain.WorkflowDefinition, error) {
	q := persistence.ActiveDataSourceManager.GormDB(sec.Ctx()).Model(&domain.WorkflowDefinition{})
	if query.EntityType != "" {
		q = q.Where("entity_type = ?", query.EntityType)
	}
	if query.ActiveOnly {
		q = q.Where("is_active = ?", true)
	}
	definitions := []domain.WorkflowDefinition{}
	if err := q.Order("entity_type ASC, version DESC").Find(&definitions).Error; err != nil {
		return nil, err
	}
	return definitions, nil
}

// FindActiveDefinition returns the active definition of entityType with its steps.
func FindActiveDefinition(db *gorm.DB, entityType domain.EntityType) (*domain.WorkflowDefinitionDetail, error) {
	def := domain.WorkflowDefinition{}
	if err := db.Where("entity_type = ? AND is_active = ?", entityType, true).First(&def).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return nil, bizerror.ErrWorkflowNotConfigured
		}
		return nil, err
	}
	return withSteps(db, &def)
}

// ResolveDefinitionForProject returns the definition pinned by the project, which must still be
// active, or the active task definition when the project pins none.
func ResolveDefinitionForProject(db *gorm.DB, project *domain.Project) (*domain.WorkflowDefinitionDetail, error) {
	if project == nil || project.WorkflowDefinitionID == 0 {
		return FindActiveDefinition(db, domain.EntityTypeTask)
	}
	detail, err := FindDefinitionDetail(db, project.WorkflowDefinitionID)
	if err == bizerror.ErrNotFound {
		return nil, bizerror.ErrWorkflowNotConfigured
	}
	if err != nil {
		return nil, err
	}
	if !detail.IsActive || detail.EntityType != domain.EntityTypeTask {
		return nil, bizerror.ErrWorkflowNotConfigured
	}
	return detail, nil
}

func DeleteWorkflowDefinition(id types.ID, sec *session.Session) error {
	if !sec.HasRole(domain.RoleAdmin) {
		return bizerror.ErrForbidden
	}
	db := persistence.ActiveDataSourceManager.GormDB(sec.Ctx())
	err := db.Transaction(func(tx *gorm.DB) error {
		if _, err := findDefinition(tx, id); err != nil {
			return err
		}
		if err := isDefinitionReferenced(tx, id); err != nil {
			return err
		}
		if err := tx.Where("definition_id = ?", id).Delete(&domain.WorkflowStepDefinition{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&domain.WorkflowDefinition{}).Error
	})
	if err != nil {
		return err
	}
	stepsCache.Delete(id.String())
	return nil
}

func isDefinitionReferenced(tx *gorm.DB, id types.ID) error {
	var count int
	if err := tx.Model(&domain.WorkflowInstance{}).Where("definition_id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return bizerror.ErrWorkflowIsReferenced
	}
	if err := tx.Model(&domain.Project{}).Where("workflow_definition_id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return bizerror.ErrWorkflowIsReferenced
	}
	return nil
}

func findDefinition(db *gorm.DB, id types.ID) (*domain.WorkflowDefinition, error) {
	def := domain.WorkflowDefinition{}
	if err := db.Where(&domain.WorkflowDefinition{ID: id}).First(&def).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return nil, bizerror.ErrNotFound
		}
		return nil, err
	}
	return &def, nil
}

func withSteps(db *gorm.DB, def *domain.WorkflowDefinition) (*domain.WorkflowDefinitionDetail, error) {
	detail := &domain.WorkflowDefinitionDetail{WorkflowDefinition: *def}
	if cached, found := stepsCache.Get(def.ID.String()); found {
		detail.Steps = copySteps(cached.([]domain.WorkflowStepDefinition))
		return detail, nil
	}
	var steps []domain.WorkflowStepDefinition
	if err := db.Where("definition_id = ?", def.ID).Order("step_order ASC").Find(&steps).Error; err != nil {
		return nil, err
	}
	stepsCache.Set(def.ID.String(), copySteps(steps), cache.DefaultExpiration)
	detail.Steps = steps
	return detail, nil
}

func copySteps(steps []domain.WorkflowStepDefinition) []domain.WorkflowStepDefinition {
	copied := make([]domain.WorkflowStepDefinition, len(steps))
	for idx, s := range steps {
		s.Actions = append(domain.StepActions(nil), s.Actions...)
		copied[idx] = s
	}
	return copied
}
