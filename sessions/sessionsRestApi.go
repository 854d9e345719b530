package sessions

import (
	"net/http"
	"taskflow/account"
	"taskflow/bizerror"
	"taskflow/domain"
	"taskflow/session"
	"time"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

var PathSessions = "/v1/sessions"

// TokenIssuing asks for a token acting as UserID, credentials are verified upstream.
type TokenIssuing struct {
	UserID types.ID `json:"userId" binding:"required"`
}

// RegisterSessionsHandler mounts token issuing behind auth, logout only needs the cookie.
func RegisterSessionsHandler(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	r.DELETE(PathSessions, SimpleLogoutHandler)
	g := r.Group(PathSessions, middleWares...)
	g.POST("", IssueTokenHandler)
	g.GET("", CurrentSessionHandler)
}

func SimpleLogoutHandler(c *gin.Context) {
	token, _ := c.Cookie(session.KeySecToken)
	if token != "" {
		session.TokenCache.Delete(token)
	}
	c.SetCookie(session.KeySecToken, "", -1, "/", "", false, false)
	c.AbortWithStatus(http.StatusNoContent)
}

// IssueTokenHandler lets an admin open a session for any user, the session carries the user's
// current role.
func IssueTokenHandler(c *gin.Context) {
	sec := session.ExtractSessionFromGinContext(c)
	if !sec.HasRole(domain.RoleAdmin) {
		panic(bizerror.ErrForbidden)
	}
	issuing := TokenIssuing{}
	if err := c.ShouldBindBodyWith(&issuing, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	user, err := account.QueryUserFunc(issuing.UserID, sec)
	if err != nil {
		panic(err)
	}

	issued := &session.Session{Identity: session.Identity{ID: user.ID, Name: user.Name, Nickname: user.Nickname}, Role: user.Role}
	issued.Token = session.Issue(issued)
	c.SetCookie(session.KeySecToken, issued.Token, int(session.TokenExpiration/time.Second), "/", "", false, false)
	c.JSON(http.StatusCreated, issued)
}

func CurrentSessionHandler(c *gin.Context) {
	c.JSON(http.StatusOK, session.ExtractSessionFromGinContext(c))
}
