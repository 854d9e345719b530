package servehttp

import (
	"net/http"
	"taskflow/account"
	"taskflow/bizerror"
	"taskflow/domain"
	"taskflow/domain/calendar"
	"taskflow/notification"
	"taskflow/session"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

type LeaveDecision struct {
	Approve *bool `json:"approve" binding:"required"`
}

func RegisterDirectoryHandler(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	users := r.Group("/v1/users", middleWares...)
	users.POST("", handleCreateUser)
	users.GET(":userId", handleDetailUser)
	users.PUT(":userId/schedule", handleSaveSchedule)
	users.GET(":userId/availability", handleCheckAvailability)

	holidays := r.Group("/v1/holidays", middleWares...)
	holidays.POST("", handleCreateHoliday)
	holidays.GET("", handleQueryHolidays)

	leaves := r.Group("/v1/leaves", middleWares...)
	leaves.POST("", handleCreateLeave)
	leaves.PUT(":id/decision", handleDecideLeave)

	r.Group("/v1/notifications", middleWares...).GET("", handleQueryNotifications)
}

func handleCreateUser(c *gin.Context) {
	creation := account.UserCreation{}
	bindJSON(c, &creation)
	user, err := account.CreateUserFunc(&creation, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, user)
}

func handleDetailUser(c *gin.Context) {
	user, err := account.QueryUserFunc(pathID(c, "userId"), session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, user)
}

func handleSaveSchedule(c *gin.Context) {
	userID := pathID(c, "userId")
	saving := calendar.ScheduleSaving{}
	bindJSON(c, &saving)
	saved, err := calendar.SaveScheduleFunc(userID, &saving, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, saved)
}

// handleCheckAvailability reads the instant from ?at=, values without offset are wall clock
// time of the user.
func handleCheckAvailability(c *gin.Context) {
	userID := pathID(c, "userId")
	availability, err := calendar.CheckAvailabilityFunc(userID, c.Query("at"), session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, availability)
}

func handleCreateHoliday(c *gin.Context) {
	creation := calendar.HolidayCreation{}
	bindJSON(c, &creation)
	holiday, err := calendar.CreateHolidayFunc(&creation, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, holiday)
}

func handleQueryHolidays(c *gin.Context) {
	filter := domain.HolidayFilter{}
	if err := c.ShouldBindWith(&filter, binding.Query); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	holidays, err := calendar.QueryHolidaysFunc(filter, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, holidays)
}

func handleCreateLeave(c *gin.Context) {
	creation := calendar.LeaveCreation{}
	bindJSON(c, &creation)
	leave, err := calendar.CreateLeaveFunc(&creation, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, leave)
}

func handleDecideLeave(c *gin.Context) {
	id := pathID(c, "id")
	decision := LeaveDecision{}
	bindJSON(c, &decision)
	leave, err := calendar.DecideLeaveFunc(id, *decision.Approve, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, leave)
}

func handleQueryNotifications(c *gin.Context) {
	notifications, err := notification.QueryNotificationsFunc(session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, notifications)
}
