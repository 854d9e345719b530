package testinfra

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"taskflow/domain"
	"taskflow/session"

	"github.com/fundwit/go-commons/types"
	. "github.com/onsi/gomega"
)

// ExecuteRequest serves req by handler and returns the status, body and header of the response.
func ExecuteRequest(req *http.Request, handler http.Handler) (int, string, http.Header) {
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	resp := w.Result()
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(body), resp.Header
}

// BuildSession builds an authenticated session of user uid acting with role.
func BuildSession(uid types.ID, role domain.Role) *session.Session {
	return &session.Session{
		Context:  context.Background(),
		Token:    "test-token-" + uid.String(),
		Identity: session.Identity{ID: uid, Name: "user" + uid.String()},
		Role:     role,
	}
}

// Persist inserts records into the test database in the given order.
func Persist(testDatabase *TestDatabase, records ...interface{}) {
	db := testDatabase.DS.GormDB(context.Background())
	for _, r := range records {
		Expect(db.Create(r).Error).To(BeNil())
	}
}
