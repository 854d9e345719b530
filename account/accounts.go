package account

import (
	"fmt"
	"taskflow/bizerror"
	"taskflow/domain"
	"taskflow/domain/schedule"
	"taskflow/idgen"
	"taskflow/persistence"
	"taskflow/session"
	"time"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
)

var (
	userIdWorker = idgen.NewWorker()

	CreateUserFunc      = CreateUser
	DetailUserFunc      = DetailUser
	QueryUserFunc       = QueryUser
	ListUsersByRoleFunc = ListUsersByRole
)

func CreateUser(c *UserCreation, sec *session.Session) (*domain.User, error) {
	if !sec.HasRole(domain.RoleAdmin) {
		return nil, bizerror.ErrForbidden
	}
	if !c.Role.Valid() {
		return nil, &bizerror.ErrBadParam{Cause: fmt.Errorf("unknown role '%s'", c.Role)}
	}
	if _, err := schedule.LoadZone(c.TimeZone); err != nil {
		return nil, err
	}

	user := domain.User{ID: idgen.NextID(userIdWorker), Name: c.Name, Nickname: c.Nickname, Role: c.Role,
		TimeZone: c.TimeZone, CompanyID: c.CompanyID, VendorID: c.VendorID, CreateTime: time.Now().UTC().Round(time.Millisecond)}
	if err := persistence.ActiveDataSourceManager.GormDB(sec.Ctx()).Save(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func QueryUser(id types.ID, sec *session.Session) (*UserInfo, error) {
	user, err := DetailUserFunc(persistence.ActiveDataSourceManager.GormDB(sec.Ctx()), id)
	if err != nil {
		return nil, err
	}
	info := infoOf(user)
	return &info, nil
}

// DetailUser loads a user through db, which may be an open transaction.
func DetailUser(db *gorm.DB, id types.ID) (*domain.User, error) {
	user := domain.User{}
	if err := db.Where(&domain.User{ID: id}).First(&user).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return nil, bizerror.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// ListUsersByRole returns every holder of role ordered by id.
func ListUsersByRole(db *gorm.DB, role domain.Role) ([]domain.User, error) {
	var users []domain.User
	if err := db.Where(&domain.User{Role: role}).Order("id ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func QueryAccountNames(db *gorm.DB, ids []types.ID) (map[types.ID]string, error) {
	if len(ids) == 0 {
		return map[types.ID]string{}, nil
	}
	var records []domain.User
	if err := db.Where("id IN (?)", ids).Find(&records).Error; err != nil {
		return nil, err
	}
	result := map[types.ID]string{}
	for _, r := range records {
		result[r.ID] = infoOf(&r).DisplayName()
	}
	return result, nil
}
