package account

import (
	"taskflow/domain"

	"github.com/fundwit/go-commons/types"
)

type UserInfo struct {
	ID       types.ID    `json:"id"`
	Name     string      `json:"name"`
	Nickname string      `json:"nickname"`
	Role     domain.Role `json:"role"`
	TimeZone string      `json:"timeZone"`
}

type UserCreation struct {
	Name      string      `json:"name" binding:"required,lte=32"`
	Nickname  string      `json:"nickname" binding:"omitempty,gte=1,lte=32"`
	Role      domain.Role `json:"role" binding:"required"`
	TimeZone  string      `json:"timeZone"`
	CompanyID types.ID    `json:"companyId"`
	VendorID  types.ID    `json:"vendorId"`
}

func (u UserInfo) DisplayName() string {
	if u.Nickname != "" {
		return u.Nickname
	}
	return u.Name
}

func infoOf(u *domain.User) UserInfo {
	return UserInfo{ID: u.ID, Name: u.Name, Nickname: u.Nickname, Role: u.Role, TimeZone: u.TimeZone}
}
