package domain

import (
	"time"

	"github.com/fundwit/go-commons/types"
)

type User struct {
	ID       types.ID `json:"id" gorm:"primary_key" sql:"type:BIGINT UNSIGNED NOT NULL"`
	Name     string   `json:"name" gorm:"unique_index:idx_user_name"`
	Nickname string   `json:"nickname"`
	Role     Role     `json:"role" gorm:"index:idx_user_role"`

	// IANA zone name, empty means UTC
	TimeZone  string   `json:"timeZone"`
	CompanyID types.ID `json:"companyId"`
	VendorID  types.ID `json:"vendorId"`

	CreateTime time.Time `json:"createTime"`
}

type Notification struct {
	ID       types.ID `json:"id" gorm:"primary_key" sql:"type:BIGINT UNSIGNED NOT NULL"`
	UserID   types.ID `json:"userId" gorm:"index:idx_notification_user"`
	Type     string   `json:"type"`
	Message  string   `json:"message" sql:"type:TEXT"`
	Metadata Metadata `json:"metadata" sql:"type:TEXT"`
	Seen     bool     `json:"seen"`

	CreateTime time.Time `json:"createTime"`
}
