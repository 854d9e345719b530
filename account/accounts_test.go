package account_test

import (
	"context"
	"taskflow/account"
	"taskflow/bizerror"
	"taskflow/domain"
	"taskflow/testinfra"
	"testing"

	"github.com/fundwit/go-commons/types"
	. "github.com/onsi/gomega"
)

func TestCreateUser(t *testing.T) {
	RegisterTestingT(t)

	t.Run("only admin is able to create users", func(t *testing.T) {
		testDatabase := testinfra.StartTestDatabase("taskflow")
		defer testinfra.StopTestDatabase(testDatabase)

		u, err := account.CreateUser(&account.UserCreation{Name: "ann", Role: domain.RoleDeveloper},
			testinfra.BuildSession(1, domain.RoleProjectManager))
		Expect(u).To(BeNil())
		Expect(err).To(Equal(bizerror.ErrForbidden))
	})

	t.Run("should validate role and time zone", func(t *testing.T) {
		testDatabase := testinfra.StartTestDatabase("taskflow")
		defer testinfra.StopTestDatabase(testDatabase)

		sec := testinfra.BuildSession(1, domain.RoleAdmin)
		_, err := account.CreateUser(&account.UserCreation{Name: "ann", Role: "ROOT"}, sec)
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(Equal("unknown role 'ROOT'"))

		_, err = account.CreateUser(&account.UserCreation{Name: "ann", Role: domain.RoleQA, TimeZone: "Mars/Olympus"}, sec)
		Expect(err).To(MatchError(bizerror.ErrInvalidTimeZone))
	})

	t.Run("should persist created user", func(t *testing.T) {
		testDatabase := testinfra.StartTestDatabase("taskflow")
		defer testinfra.StopTestDatabase(testDatabase)

		u, err := account.CreateUser(&account.UserCreation{Name: "ann", Nickname: "Ann", Role: domain.RoleDeveloper,
			TimeZone: "Asia/Kolkata", CompanyID: 7}, testinfra.BuildSession(1, domain.RoleAdmin))
		Expect(err).To(BeNil())

		db := testDatabase.DS.GormDB(context.Background())
		found, err := account.DetailUser(db, u.ID)
		Expect(err).To(BeNil())
		Expect(found.Name).To(Equal("ann"))
		Expect(found.Role).To(Equal(domain.RoleDeveloper))
		Expect(found.TimeZone).To(Equal("Asia/Kolkata"))
		Expect(found.CompanyID).To(Equal(types.ID(7)))
	})
}

func TestDetailUser(t *testing.T) {
	RegisterTestingT(t)

	t.Run("should return not found for unknown users", func(t *testing.T) {
		testDatabase := testinfra.StartTestDatabase("taskflow")
		defer testinfra.StopTestDatabase(testDatabase)

		u, err := account.DetailUser(testDatabase.DS.GormDB(context.Background()), 404)
		Expect(u).To(BeNil())
		Expect(err).To(Equal(bizerror.ErrNotFound))
	})

	t.Run("query user exposes the public profile", func(t *testing.T) {
		testDatabase := testinfra.StartTestDatabase("taskflow")
		defer testinfra.StopTestDatabase(testDatabase)
		testinfra.Persist(testDatabase, &domain.User{ID: 3, Name: "dev", Role: domain.RoleDeveloper, TimeZone: "Asia/Kolkata", CompanyID: 9})

		info, err := account.QueryUser(3, testinfra.BuildSession(1, domain.RoleQA))
		Expect(err).To(BeNil())
		Expect(*info).To(Equal(account.UserInfo{ID: 3, Name: "dev", Role: domain.RoleDeveloper, TimeZone: "Asia/Kolkata"}))
		Expect(info.DisplayName()).To(Equal("dev"))

		_, err = account.QueryUser(4, testinfra.BuildSession(1, domain.RoleQA))
		Expect(err).To(Equal(bizerror.ErrNotFound))
	})
}

func TestListUsersByRole(t *testing.T) {
	RegisterTestingT(t)

	t.Run("should list holders of the role only", func(t *testing.T) {
		testDatabase := testinfra.StartTestDatabase("taskflow")
		defer testinfra.StopTestDatabase(testDatabase)

		testinfra.Persist(testDatabase,
			&domain.User{ID: 3, Name: "pm2", Role: domain.RoleProjectManager},
			&domain.User{ID: 1, Name: "pm1", Role: domain.RoleProjectManager},
			&domain.User{ID: 2, Name: "dev", Role: domain.RoleDeveloper})

		db := testDatabase.DS.GormDB(context.Background())
		users, err := account.ListUsersByRole(db, domain.RoleProjectManager)
		Expect(err).To(BeNil())
		Expect(len(users)).To(Equal(2))
		Expect(users[0].ID).To(Equal(types.ID(1)))
		Expect(users[1].ID).To(Equal(types.ID(3)))

		users, err = account.ListUsersByRole(db, domain.RoleQA)
		Expect(err).To(BeNil())
		Expect(users).To(BeEmpty())
	})
}

func TestQueryAccountNames(t *testing.T) {
	RegisterTestingT(t)

	t.Run("should prefer nickname", func(t *testing.T) {
		testDatabase := testinfra.StartTestDatabase("taskflow")
		defer testinfra.StopTestDatabase(testDatabase)

		testinfra.Persist(testDatabase,
			&domain.User{ID: 1, Name: "ann", Nickname: "Ann", Role: domain.RoleQA},
			&domain.User{ID: 2, Name: "bob", Role: domain.RoleQA})

		names, err := account.QueryAccountNames(testDatabase.DS.GormDB(context.Background()), []types.ID{1, 2, 3})
		Expect(err).To(BeNil())
		Expect(names).To(Equal(map[types.ID]string{1: "Ann", 2: "bob"}))

		names, err = account.QueryAccountNames(testDatabase.DS.GormDB(context.Background()), nil)
		Expect(err).To(BeNil())
		Expect(names).To(BeEmpty())
	})
}
