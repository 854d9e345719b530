package session

import (
	"context"
	"taskflow/domain"

	"github.com/fundwit/go-commons/types"
)

// Session is the authenticated actor of a request, authorization is role based.
type Session struct {
	Context context.Context `json:"-"`

	Token    string      `json:"token"`
	Identity Identity    `json:"identity"`
	Role     domain.Role `json:"role"`
}

type Identity struct {
	ID       types.ID `json:"id"`
	Name     string   `json:"name"`
	Nickname string   `json:"nickname"`
}

func (s *Session) Clone() Session {
	return Session{Context: s.Context, Token: s.Token, Identity: s.Identity, Role: s.Role}
}

func (s *Session) HasRole(role domain.Role) bool {
	return s != nil && s.Role == role
}

func (s *Session) Ctx() context.Context {
	if s == nil || s.Context == nil {
		return context.Background()
	}
	return s.Context
}
