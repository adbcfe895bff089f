package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"melodex-backend/internal/api/middleware"
	"melodex-backend/internal/api/models"
	melodexEnv "melodex-backend/internal/env"
	melodextesting "melodex-backend/internal/testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
)

func serve(store *melodextesting.FakeStore, token string) *httptest.ResponseRecorder {
	router := mux.NewRouter()
	middleware.AddRoutes(router, melodexEnv.New(nil, store))

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func TestAuthenticate(t *testing.T) {
	t.Run("Missing token", func(t *testing.T) {
		store := melodextesting.NewFakeStore()
		rr := serve(store, "")
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("Unknown token", func(t *testing.T) {
		store := melodextesting.NewFakeStore()
		rr := serve(store, "no-such-session")
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("Expired session", func(t *testing.T) {
		store := storeWithExpiredSession(t)
		rr := serve(store, "stale")
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("Live session", func(t *testing.T) {
		store := melodextesting.NewFakeStore()
		_, token := store.SeedUser("alice", "alice@example.com", models.RoleUser)
		rr := serve(store, token)
		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("Session for deleted user", func(t *testing.T) {
		store := melodextesting.NewFakeStore()
		userID, token := store.SeedUser("alice", "alice@example.com", models.RoleUser)
		delete(store.Users, userID)
		rr := serve(store, token)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}

// Store holding one expired session under the token "stale".
func storeWithExpiredSession(t *testing.T) *melodextesting.FakeStore {
	t.Helper()
	store := melodextesting.NewFakeStore()
	userID, _ := store.SeedUser("alice", "alice@example.com", models.RoleUser)
	store.InsertSession(context.Background(), models.Session{
		Token:     "stale",
		UserID:    userID,
		CreatedAt: time.Now().Add(-48 * time.Hour),
		ExpiresAt: time.Now().Add(-time.Hour),
	})
	return store
}
