package handlers_test

import (
	"net/http"
	"testing"

	"melodex-backend/internal/api/models"
	melodextesting "melodex-backend/internal/testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndMe(t *testing.T) {
	store := melodextesting.NewFakeStore()
	router := newServer(store)

	rr := doRequest(t, router, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": "alice",
		"email":    "alice@example.com",
		"password": "correct-horse",
	})
	requireStatus(t, rr, http.StatusCreated)

	var registered struct {
		Token string            `json:"token"`
		User  models.PublicUser `json:"user"`
	}
	decodeBody(t, rr, &registered)
	require.NotEmpty(t, registered.Token)
	assert.Equal(t, "alice", registered.User.Username)
	assert.Equal(t, models.RoleUser, registered.User.Role)

	rr = doRequest(t, router, http.MethodGet, "/api/auth/me", registered.Token, nil)
	requireStatus(t, rr, http.StatusOK)
	var me models.PublicUser
	decodeBody(t, rr, &me)
	assert.Equal(t, "alice@example.com", me.Email)
}

func TestRegisterValidation(t *testing.T) {
	store := melodextesting.NewFakeStore()
	router := newServer(store)

	tests := []struct {
		name string
		body map[string]string
	}{
		{
			"Missing email",
			map[string]string{"username": "alice", "password": "correct-horse"},
		},
		{
			"Malformed email",
			map[string]string{"username": "alice", "email": "nope", "password": "correct-horse"},
		},
		{
			"Short password",
			map[string]string{"username": "alice", "email": "alice@example.com", "password": "short"},
		},
		{
			"Short username",
			map[string]string{"username": "al", "email": "alice@example.com", "password": "correct-horse"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := doRequest(t, router, http.MethodPost, "/api/auth/register", "", tt.body)
			requireStatus(t, rr, http.StatusBadRequest)
			requireErrorBody(t, rr)
		})
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	store := melodextesting.NewFakeStore()
	store.SeedUser("alice", "alice@example.com", models.RoleUser)
	router := newServer(store)

	rr := doRequest(t, router, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": "alice2",
		"email":    "alice@example.com",
		"password": "correct-horse",
	})
	requireStatus(t, rr, http.StatusBadRequest)
}

func TestLogin(t *testing.T) {
	store := melodextesting.NewFakeStore()
	router := newServer(store)

	rr := doRequest(t, router, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": "bob",
		"email":    "bob@example.com",
		"password": "correct-horse",
	})
	requireStatus(t, rr, http.StatusCreated)

	t.Run("Valid credentials", func(t *testing.T) {
		rr := doRequest(t, router, http.MethodPost, "/api/auth/login", "", map[string]string{
			"email":    "bob@example.com",
			"password": "correct-horse",
		})
		requireStatus(t, rr, http.StatusOK)
		var logged struct {
			Token string `json:"token"`
		}
		decodeBody(t, rr, &logged)
		assert.NotEmpty(t, logged.Token)
	})

	t.Run("Wrong password", func(t *testing.T) {
		rr := doRequest(t, router, http.MethodPost, "/api/auth/login", "", map[string]string{
			"email":    "bob@example.com",
			"password": "wrong-password",
		})
		requireStatus(t, rr, http.StatusUnauthorized)
	})

	t.Run("Unknown email", func(t *testing.T) {
		rr := doRequest(t, router, http.MethodPost, "/api/auth/login", "", map[string]string{
			"email":    "nobody@example.com",
			"password": "correct-horse",
		})
		requireStatus(t, rr, http.StatusUnauthorized)
	})
}

func TestLogout(t *testing.T) {
	store := melodextesting.NewFakeStore()
	_, token := store.SeedUser("carol", "carol@example.com", models.RoleUser)
	router := newServer(store)

	rr := doRequest(t, router, http.MethodPost, "/api/auth/logout", token, nil)
	requireStatus(t, rr, http.StatusNoContent)

	rr = doRequest(t, router, http.MethodGet, "/api/auth/me", token, nil)
	requireStatus(t, rr, http.StatusUnauthorized)
}

func TestAuthenticatedRoutesRejectMissingToken(t *testing.T) {
	store := melodextesting.NewFakeStore()
	router := newServer(store)

	rr := doRequest(t, router, http.MethodGet, "/api/playlists", "", nil)
	requireStatus(t, rr, http.StatusUnauthorized)
	requireErrorBody(t, rr)
}
