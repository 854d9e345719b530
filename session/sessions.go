package session

import (
	"strings"
	"taskflow/bizerror"
	"taskflow/domain"
	"time"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

const TokenExpiration = 24 * time.Hour

var TokenCache = cache.New(TokenExpiration, 1*time.Minute)

const KeySecCtx = "SecCtx"
const KeySecToken = "sec_token"

const (
	HeaderUserID   = "X-User-Id"
	HeaderUserName = "X-User-Name"
	HeaderUserRole = "X-User-Role"
)

// Issue stores s in the token cache under a new token, the authentication service calls it
// after verifying credentials.
func Issue(s *Session) string {
	token := uuid.New().String()
	issued := s.Clone()
	issued.Token = token
	issued.Context = nil
	TokenCache.Set(token, &issued, cache.DefaultExpiration)
	return token
}

func ExtractSessionFromGinContext(ctx *gin.Context) *Session {
	value, found := ctx.Get(KeySecCtx)
	if !found {
		return &Session{Context: ctx.Request.Context()}
	}
	s0, ok := value.(*Session)
	if !ok || s0.Token == "" {
		return &Session{Context: ctx.Request.Context()}
	}
	s := s0.Clone()
	s.Context = ctx.Request.Context() // trace context
	return &s
}

// SimpleAuthFilter resolves the session from the token cookie or bearer token. With
// trustGatewayHeaders the identity asserted by an upstream gateway is accepted as well.
func SimpleAuthFilter(trustGatewayHeaders bool) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if s := sessionFromToken(ctx); s != nil {
			InjectSessionIntoGinContext(ctx, s)
			ctx.Next()
			return
		}
		if trustGatewayHeaders {
			if s := sessionFromGatewayHeaders(ctx); s != nil {
				InjectSessionIntoGinContext(ctx, s)
				ctx.Next()
				return
			}
		}
		panic(bizerror.ErrUnauthenticated)
	}
}

func InjectSessionIntoGinContext(ctx *gin.Context, secCtx *Session) {
	if secCtx != nil && secCtx.Token != "" {
		ctx.Set(KeySecCtx, secCtx)
	}
}

func sessionFromToken(ctx *gin.Context) *Session {
	token, err := ctx.Cookie(KeySecToken)
	if err != nil || token == "" {
		token = strings.TrimPrefix(ctx.GetHeader("Authorization"), "Bearer ")
	}
	if token == "" {
		return nil
	}
	value, found := TokenCache.Get(token)
	if !found {
		return nil
	}
	s, ok := value.(*Session)
	if !ok {
		return nil
	}
	return s
}

func sessionFromGatewayHeaders(ctx *gin.Context) *Session {
	id, err := types.ParseID(ctx.GetHeader(HeaderUserID))
	if err != nil || id == 0 {
		return nil
	}
	role, err := domain.ParseRole(ctx.GetHeader(HeaderUserRole))
	if err != nil {
		return nil
	}
	name := ctx.GetHeader(HeaderUserName)
	return &Session{Token: "gateway:" + id.String(), Identity: Identity{ID: id, Name: name, Nickname: name}, Role: role}
}
