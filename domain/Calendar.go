package domain

import (
	"taskflow/domain/schedule"
	"time"

	"github.com/fundwit/go-commons/types"
)

// WorkSchedule is the recurring weekly availability of a user, optionally scoped to a company.
type WorkSchedule struct {
	ID        types.ID       `json:"id" gorm:"primary_key" sql:"type:BIGINT UNSIGNED NOT NULL"`
	UserID    types.ID       `json:"userId" gorm:"unique_index:idx_schedule_owner"`
	CompanyID types.ID       `json:"companyId" gorm:"unique_index:idx_schedule_owner"`
	Slots     schedule.Slots `json:"slots" sql:"type:TEXT"`

	UpdateTime time.Time `json:"updateTime"`
}

// Holiday applies to everybody when both CompanyID and VendorID are zero.
type Holiday struct {
	ID        types.ID `json:"id" gorm:"primary_key" sql:"type:BIGINT UNSIGNED NOT NULL"`
	Name      string   `json:"name"`
	Date      string   `json:"date" gorm:"index:idx_holiday_date"`
	CompanyID types.ID `json:"companyId"`
	VendorID  types.ID `json:"vendorId"`
}

type HolidayFilter struct {
	CompanyID types.ID `form:"companyId"`
	VendorID  types.ID `form:"vendorId"`
}

type LeaveStatus string

const (
	LeavePending  LeaveStatus = "PENDING"
	LeaveApproved LeaveStatus = "APPROVED"
	LeaveRejected LeaveStatus = "REJECTED"
)

// LeaveRequest covers StartDate to EndDate inclusive, both YYYY-MM-DD.
type LeaveRequest struct {
	ID        types.ID    `json:"id" gorm:"primary_key" sql:"type:BIGINT UNSIGNED NOT NULL"`
	UserID    types.ID    `json:"userId" gorm:"index:idx_leave_user"`
	StartDate string      `json:"startDate"`
	EndDate   string      `json:"endDate"`
	Reason    string      `json:"reason"`
	Status    LeaveStatus `json:"status"`

	CreateTime time.Time `json:"createTime"`
}
