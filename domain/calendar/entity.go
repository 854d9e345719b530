package calendar

import (
	"taskflow/domain/schedule"
	"time"

	"github.com/fundwit/go-commons/types"
)

type ScheduleSaving struct {
	CompanyID types.ID        `json:"companyId"`
	Slots     []schedule.Slot `json:"slots" binding:"required"`
}

type HolidayCreation struct {
	Name      string   `json:"name" binding:"required,lte=64"`
	Date      string   `json:"date" binding:"required"`
	CompanyID types.ID `json:"companyId"`
	VendorID  types.ID `json:"vendorId"`
}

type LeaveCreation struct {
	StartDate string `json:"startDate" binding:"required"`
	EndDate   string `json:"endDate" binding:"required"`
	Reason    string `json:"reason" binding:"lte=256"`
}

// Calendar is everything needed to walk the working time of one user.
type Calendar struct {
	Location *time.Location
	Slots    []schedule.Slot
	Holidays schedule.DateSet
	Leaves   schedule.DateSet
}

type Availability struct {
	UserID         types.ID  `json:"userId"`
	At             time.Time `json:"at"`
	TimeZone       string    `json:"timeZone"`
	WithinSchedule bool      `json:"withinSchedule"`
	Holiday        bool      `json:"holiday"`
	OnLeave        bool      `json:"onLeave"`
	Available      bool      `json:"available"`
}
