package calendar

import (
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

const dateLayout = "2006-01-02"

var (
	idWorker = idgen.NewWorker()

	SaveScheduleFunc      = SaveSchedule
	CreateHolidayFunc     = CreateHoliday
	QueryHolidaysFunc     = QueryHolidays
	CreateLeaveFunc       = CreateLeave
	DecideLeaveFunc       = DecideLeave
	CheckAvailabilityFunc = CheckAvailability
)

// FindScheduleForUser prefers the schedule the user keeps for companyID and falls back to the
// user's default schedule. Nil slots mean nothing is configured.
func FindScheduleForUser(db *gorm.DB, userID, companyID types.ID) ([]schedule.Slot, error) {
	candidates := []types.ID{0}
	if companyID != 0 {
		candidates = []types.ID{companyID, 0}
	}
	for _, c := range candidates {
		record := domain.WorkSchedule{}
		err := db.Where("user_id = ? AND company_id = ?", userID, c).First(&record).Error
		if gorm.IsRecordNotFoundError(err) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return record.Slots, nil
	}
	return nil, nil
}

func SaveSchedule(userID types.ID, c *ScheduleSaving, sec *session.Session) (*domain.WorkSchedule, error) {
	if sec.Identity.ID != userID && !sec.HasRole(domain.RoleAdmin) {
		return nil, bizerror.ErrForbidden
	}
	if err := schedule.ValidateSlots(c.Slots); err != nil {
		return nil, err
	}

	record := domain.WorkSchedule{}
	db := persistence.ActiveDataSourceManager.GormDB(sec.Ctx())
	err := db.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("user_id = ? AND company_id = ?", userID, c.CompanyID).First(&record).Error
		if err != nil && !gorm.IsRecordNotFoundError(err) {
			return err
		}
		if err != nil {
			record = domain.WorkSchedule{ID: idgen.NextID(idWorker), UserID: userID, CompanyID: c.CompanyID}
		}
		record.Slots = schedule.ResolveSlots(c.Slots)
		record.UpdateTime = time.Now().UTC().Round(time.Millisecond)
		return tx.Save(&record).Error
	})
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// ListHolidays returns global holidays plus those of the company and vendor in filter.
func ListHolidays(db *gorm.DB, filter domain.HolidayFilter) ([]domain.Holiday, error) {
	q := db.Where("company_id = 0 AND vendor_id = 0")
	if filter.CompanyID != 0 {
		q = q.Or("company_id = ?", filter.CompanyID)
	}
	if filter.VendorID != 0 {
		q = q.Or("vendor_id = ?", filter.VendorID)
	}
	var holidays []domain.Holiday
	if err := q.Order("date ASC").Find(&holidays).Error; err != nil {
		return nil, err
	}
	return holidays, nil
}

func QueryHolidays(filter domain.HolidayFilter, sec *session.Session) ([]domain.Holiday, error) {
	return ListHolidays(persistence.ActiveDataSourceManager.GormDB(sec.Ctx()), filter)
}

func HolidayDates(holidays []domain.Holiday) schedule.DateSet {
	set := schedule.NewDateSet()
	for _, h := range holidays {
		set.Add(h.Date)
	}
	return set
}

func CreateHoliday(c *HolidayCreation, sec *session.Session) (*domain.Holiday, error) {
	if !sec.HasRole(domain.RoleAdmin) {
		return nil, bizerror.ErrForbidden
	}
	if _, err := time.Parse(dateLayout, c.Date); err != nil {
		return nil, &bizerror.ErrBadParam{Cause: bizerror.ErrInvalidInstant}
	}
	holiday := domain.Holiday{ID: idgen.NextID(idWorker), Name: c.Name, Date: c.Date, CompanyID: c.CompanyID, VendorID: c.VendorID}
	if err := persistence.ActiveDataSourceManager.GormDB(sec.Ctx()).Create(&holiday).Error; err != nil {
		return nil, err
	}
	return &holiday, nil
}

// ListApprovedLeave expands every approved leave request of the user into calendar dates.
func ListApprovedLeave(db *gorm.DB, userID types.ID) (schedule.DateSet, error) {
	var leaves []domain.LeaveRequest
	if err := db.Where(&domain.LeaveRequest{UserID: userID, Status: domain.LeaveApproved}).Find(&leaves).Error; err != nil {
		return nil, err
	}
	set := schedule.NewDateSet()
	for _, l := range leaves {
		if err := set.AddRange(l.StartDate, l.EndDate); err != nil {
			return nil, err
		}
	}
	return set, nil
}

func CreateLeave(c *LeaveCreation, sec *session.Session) (*domain.LeaveRequest, error) {
	from, err := time.Parse(dateLayout, c.StartDate)
	if err != nil {
		return nil, &bizerror.ErrBadParam{Cause: bizerror.ErrInvalidInstant}
	}
	to, err := time.Parse(dateLayout, c.EndDate)
	if err != nil || to.Before(from) {
		return nil, &bizerror.ErrBadParam{Cause: bizerror.ErrInvalidInstant}
	}
	leave := domain.LeaveRequest{ID: idgen.NextID(idWorker), UserID: sec.Identity.ID, StartDate: c.StartDate, EndDate: c.EndDate,
		Reason: c.Reason, Status: domain.LeavePending, CreateTime: time.Now().UTC().Round(time.Millisecond)}
	if err := persistence.ActiveDataSourceManager.GormDB(sec.Ctx()).Create(&leave).Error; err != nil {
		return nil, err
	}
	return &leave, nil
}

// DecideLeave approves or rejects a pending leave request.
func DecideLeave(id types.ID, approve bool, sec *session.Session) (*domain.LeaveRequest, error) {
	if !sec.HasRole(domain.RoleAdmin) && !sec.HasRole(domain.RoleProjectManager) {
		return nil, bizerror.ErrForbidden
	}
	leave := domain.LeaveRequest{}
	db := persistence.ActiveDataSourceManager.GormDB(sec.Ctx())
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where(&domain.LeaveRequest{ID: id}).First(&leave).Error; err != nil {
			if gorm.IsRecordNotFoundError(err) {
				return bizerror.ErrNotFound
			}
			return err
		}
		if leave.Status != domain.LeavePending {
			return bizerror.ErrLeaveDecided
		}
		leave.Status = domain.LeaveRejected
		if approve {
			leave.Status = domain.LeaveApproved
		}
		return tx.Model(&domain.LeaveRequest{}).Where("id = ?", id).Update("status", leave.Status).Error
	})
	if err != nil {
		return nil, err
	}
	return &leave, nil
}

// LoadCalendar gathers the zone, weekly slots, holidays and approved leave of user.
func LoadCalendar(db *gorm.DB, user *domain.User) (*Calendar, error) {
	loc, err := schedule.LoadZone(user.TimeZone)
	if err != nil {
		return nil, err
	}
	slots, err := FindScheduleForUser(db, user.ID, user.CompanyID)
	if err != nil {
		return nil, err
	}
	holidays, err := ListHolidays(db, domain.HolidayFilter{CompanyID: user.CompanyID, VendorID: user.VendorID})
	if err != nil {
		return nil, err
	}
	leaves, err := ListApprovedLeave(db, user.ID)
	if err != nil {
		return nil, err
	}
	return &Calendar{Location: loc, Slots: schedule.ResolveSlots(slots), Holidays: HolidayDates(holidays), Leaves: leaves}, nil
}

// CheckAvailability tells whether the user is expected to work at the given instant.
func CheckAvailability(userID types.ID, at string, sec *session.Session) (*Availability, error) {
	db := persistence.ActiveDataSourceManager.GormDB(sec.Ctx())
	user := domain.User{}
	if err := db.Where(&domain.User{ID: userID}).First(&user).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return nil, bizerror.ErrNotFound
		}
		return nil, err
	}
	cal, err := LoadCalendar(db, &user)
	if err != nil {
		return nil, err
	}

	instant := time.Now()
	if at != "" {
		if instant, err = schedule.ParseInstant(at, cal.Location); err != nil {
			return nil, err
		}
	}
	local := instant.In(cal.Location)
	a := &Availability{
		UserID:         userID,
		At:             instant.UTC(),
		TimeZone:       cal.Location.String(),
		WithinSchedule: schedule.IsInstantWithinSchedule(instant, cal.Slots, cal.Location),
		Holiday:        cal.Holidays.Contains(local),
		OnLeave:        cal.Leaves.Contains(local),
	}
	a.Available = a.WithinSchedule && !a.Holiday && !a.OnLeave
	return a, nil
}
