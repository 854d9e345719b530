package task

import (
	"taskflow/bizerror"
	"taskflow/domain"
	"taskflow/idgen"
	"taskflow/persistence"
	"taskflow/session"
	"time"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
)

var (
	idWorker = idgen.NewWorker()

	CreateProjectFunc = CreateProject
	CreateTaskFunc    = CreateTask
	AssignTaskFunc    = AssignTask
	DetailTaskFunc    = DetailTask
)

func CreateProject(c *ProjectCreation, sec *session.Session) (*domain.Project, error) {
	if !sec.HasRole(domain.RoleAdmin) && !sec.HasRole(domain.RoleProjectManager) {
		return nil, bizerror.ErrForbidden
	}
	project := domain.Project{ID: idgen.NextID(idWorker), Name: c.Name, CompanyID: c.CompanyID, VendorID: c.VendorID,
		WorkflowDefinitionID: c.WorkflowDefinitionID, CreatorID: sec.Identity.ID, CreateTime: now()}

	db := persistence.ActiveDataSourceManager.GormDB(sec.Ctx())
	err := db.Transaction(func(tx *gorm.DB) error {
		if c.WorkflowDefinitionID != 0 {
			if err := tx.Where(&domain.WorkflowDefinition{ID: c.WorkflowDefinitionID}).First(&domain.WorkflowDefinition{}).Error; err != nil {
				if gorm.IsRecordNotFoundError(err) {
					return bizerror.ErrWorkflowNotConfigured
				}
				return err
			}
		}
		return tx.Create(&project).Error
	})
	if err != nil {
		return nil, err
	}
	return &project, nil
}

func CreateTask(c *TaskCreation, sec *session.Session) (*domain.Task, error) {
	t := domain.Task{ID: idgen.NextID(idWorker), ProjectID: c.ProjectID, Name: c.Name, Status: domain.TaskStatusTodo,
		CreatorID: sec.Identity.ID}
	t.CreateTime = now()
	t.UpdateTime = t.CreateTime

	db := persistence.ActiveDataSourceManager.GormDB(sec.Ctx())
	err := db.Transaction(func(tx *gorm.DB) error {
		if _, err := FindProject(tx, c.ProjectID); err != nil {
			return err
		}
		return tx.Create(&t).Error
	})
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// AssignTask makes userID the active assignee of the task and revokes earlier active assignments.
func AssignTask(taskID types.ID, c *AssignmentCreation, sec *session.Session) (*domain.TaskAssignment, error) {
	if !sec.HasRole(domain.RoleAdmin) && !sec.HasRole(domain.RoleProjectManager) && !sec.HasRole(domain.RoleTeamLead) {
		return nil, bizerror.ErrForbidden
	}
	assignment := domain.TaskAssignment{ID: idgen.NextID(idWorker), TaskID: taskID, UserID: c.UserID,
		Status: domain.AssignmentActive, CreateTime: now()}

	db := persistence.ActiveDataSourceManager.GormDB(sec.Ctx())
	err := db.Transaction(func(tx *gorm.DB) error {
		if _, err := FindTask(tx, taskID); err != nil {
			return err
		}
		if err := tx.Where(&domain.User{ID: c.UserID}).First(&domain.User{}).Error; err != nil {
			if gorm.IsRecordNotFoundError(err) {
				return bizerror.ErrNotFound
			}
			return err
		}
		if err := tx.Model(&domain.TaskAssignment{}).Where("task_id = ? AND status = ?", taskID, domain.AssignmentActive).
			Update("status", domain.AssignmentRevoked).Error; err != nil {
			return err
		}
		return tx.Create(&assignment).Error
	})
	if err != nil {
		return nil, err
	}
	return &assignment, nil
}

func DetailTask(id types.ID, sec *session.Session) (*domain.Task, error) {
	return FindTask(persistence.ActiveDataSourceManager.GormDB(sec.Ctx()), id)
}

func FindTask(db *gorm.DB, id types.ID) (*domain.Task, error) {
	t := domain.Task{}
	if err := db.Where(&domain.Task{ID: id}).First(&t).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return nil, bizerror.ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

func FindProject(db *gorm.DB, id types.ID) (*domain.Project, error) {
	p := domain.Project{}
	if err := db.Where(&domain.Project{ID: id}).First(&p).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return nil, bizerror.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// UpdateTask merges the non nil fields of partial into the task in one statement.
func UpdateTask(db *gorm.DB, id types.ID, partial *TaskUpdating) error {
	changes := map[string]interface{}{"update_time": now()}
	if partial.Estimation != nil {
		changes["estimation"] = *partial.Estimation
	}
	if partial.Status != nil {
		changes["status"] = *partial.Status
	}
	if partial.PlannedStartDate != nil {
		changes["planned_start_date"] = partial.PlannedStartDate.UTC()
	}
	if partial.ExpectedCompletionDate != nil {
		changes["expected_completion_date"] = partial.ExpectedCompletionDate.UTC()
	}
	if partial.WorkflowInstanceID != nil {
		changes["workflow_instance_id"] = *partial.WorkflowInstanceID
	}
	result := db.Model(&domain.Task{}).Where("id = ?", id).Updates(changes)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return bizerror.ErrNotFound
	}
	return nil
}

// FindEffectiveAssignee resolves the developer whose calendar drives the task schedule: the most
// recent active or approved assignee holding a developer-class role, else the estimate submitter
// when that user holds one.
func FindEffectiveAssignee(db *gorm.DB, t *domain.Task) (*domain.User, error) {
	var assignments []domain.TaskAssignment
	if err := db.Where("task_id = ? AND status IN (?)", t.ID, []domain.AssignmentStatus{domain.AssignmentActive, domain.AssignmentApproved}).
		Order("create_time DESC, id DESC").Find(&assignments).Error; err != nil {
		return nil, err
	}

	candidates := make([]types.ID, 0, len(assignments)+1)
	for _, a := range assignments {
		candidates = append(candidates, a.UserID)
	}
	if t.Estimation != nil && t.Estimation.SubmittedBy != 0 {
		candidates = append(candidates, t.Estimation.SubmittedBy)
	}

	for _, id := range candidates {
		user := domain.User{}
		err := db.Where(&domain.User{ID: id}).First(&user).Error
		if gorm.IsRecordNotFoundError(err) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if user.Role.IsDeveloper() {
			return &user, nil
		}
	}
	return nil, bizerror.ErrAssigneeNotResolved
}

func now() time.Time {
	return time.Now().UTC().Round(time.Millisecond)
}
