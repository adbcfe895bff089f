package handlers_test

import (
	"context"
	"net/http"
	"testing"

	"melodex-backend/internal/api/handlers"
	"melodex-backend/internal/api/models"
	melodextesting "melodex-backend/internal/testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const superAdminEmail = "super@melodex.local"

func TestSuperAdminEmail(t *testing.T) {
	t.Setenv("SUPER_ADMIN_EMAIL", "")
	assert.Equal(t, handlers.DefaultSuperAdminEmail, handlers.SuperAdminEmail())

	t.Setenv("SUPER_ADMIN_EMAIL", superAdminEmail)
	assert.Equal(t, superAdminEmail, handlers.SuperAdminEmail())
}

func TestAdminRoutesRequireAdminRole(t *testing.T) {
	store := melodextesting.NewFakeStore()
	_, token := store.SeedUser("alice", "alice@example.com", models.RoleUser)
	router := newServer(store)

	paths := []string{"/api/admin/stats", "/api/admin/users", "/api/admin/playlists"}
	for _, path := range paths {
		rr := doRequest(t, router, http.MethodGet, path, token, nil)
		requireStatus(t, rr, http.StatusForbidden)
		requireErrorBody(t, rr)
	}
}

func TestGetStats(t *testing.T) {
	store := melodextesting.NewFakeStore()
	_, token := store.SeedUser("root", "root@example.com", models.RoleAdmin)
	userID, _ := store.SeedUser("alice", "alice@example.com", models.RoleUser)
	seedTrack(store, "Shape of You", "Ed Sheeran")
	seedTrack(store, "All of Me", "John Legend")
	store.InsertPlaylist(context.Background(), models.Playlist{Name: "Road Trip", UserID: userID})
	router := newServer(store)

	rr := doRequest(t, router, http.MethodGet, "/api/admin/stats", token, nil)
	requireStatus(t, rr, http.StatusOK)

	var stats struct {
		Users     int64 `json:"users"`
		Tracks    int64 `json:"tracks"`
		Playlists int64 `json:"playlists"`
	}
	decodeBody(t, rr, &stats)
	assert.Equal(t, int64(2), stats.Users)
	assert.Equal(t, int64(2), stats.Tracks)
	assert.Equal(t, int64(1), stats.Playlists)
}

func TestListUsersOmitsPasswords(t *testing.T) {
	store := melodextesting.NewFakeStore()
	_, token := store.SeedUser("root", "root@example.com", models.RoleAdmin)
	store.SeedUser("alice", "alice@example.com", models.RoleUser)
	router := newServer(store)

	rr := doRequest(t, router, http.MethodGet, "/api/admin/users", token, nil)
	requireStatus(t, rr, http.StatusOK)
	assert.NotContains(t, rr.Body.String(), "password")

	var body struct {
		Users []models.PublicUser `json:"users"`
	}
	decodeBody(t, rr, &body)
	assert.Len(t, body.Users, 2)
}

func TestUpdateUserRole(t *testing.T) {
	t.Setenv("SUPER_ADMIN_EMAIL", superAdminEmail)

	store := melodextesting.NewFakeStore()
	adminID, token := store.SeedUser("root", "root@example.com", models.RoleAdmin)
	targetID, _ := store.SeedUser("alice", "alice@example.com", models.RoleUser)
	superID, _ := store.SeedUser("super", superAdminEmail, models.RoleAdmin)
	router := newServer(store)

	t.Run("Promote user", func(t *testing.T) {
		rr := doRequest(t, router, http.MethodPatch, "/api/admin/users/"+targetID+"/role", token, map[string]string{
			"role": "admin",
		})
		requireStatus(t, rr, http.StatusOK)
		var updated models.PublicUser
		decodeBody(t, rr, &updated)
		assert.Equal(t, models.RoleAdmin, updated.Role)
	})

	t.Run("Invalid role", func(t *testing.T) {
		rr := doRequest(t, router, http.MethodPatch, "/api/admin/users/"+targetID+"/role", token, map[string]string{
			"role": "root",
		})
		requireStatus(t, rr, http.StatusBadRequest)
	})

	t.Run("Self-demotion rejected", func(t *testing.T) {
		rr := doRequest(t, router, http.MethodPatch, "/api/admin/users/"+adminID+"/role", token, map[string]string{
			"role": "user",
		})
		requireStatus(t, rr, http.StatusBadRequest)
	})

	t.Run("Super admin demotion rejected", func(t *testing.T) {
		rr := doRequest(t, router, http.MethodPatch, "/api/admin/users/"+superID+"/role", token, map[string]string{
			"role": "user",
		})
		requireStatus(t, rr, http.StatusForbidden)

		id, err := primitive.ObjectIDFromHex(superID)
		require.NoError(t, err)
		stored, err := store.GetUser(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, models.RoleAdmin, stored.Role)
	})

	t.Run("Unknown user", func(t *testing.T) {
		rr := doRequest(t, router, http.MethodPatch, "/api/admin/users/"+primitive.NewObjectID().Hex()+"/role", token, map[string]string{
			"role": "user",
		})
		requireStatus(t, rr, http.StatusNotFound)
	})

	t.Run("Malformed id", func(t *testing.T) {
		rr := doRequest(t, router, http.MethodPatch, "/api/admin/users/abc/role", token, map[string]string{
			"role": "user",
		})
		requireStatus(t, rr, http.StatusBadRequest)
	})
}

func TestDeleteUser(t *testing.T) {
	t.Setenv("SUPER_ADMIN_EMAIL", superAdminEmail)

	store := melodextesting.NewFakeStore()
	adminID, token := store.SeedUser("root", "root@example.com", models.RoleAdmin)
	targetID, _ := store.SeedUser("alice", "alice@example.com", models.RoleUser)
	superID, _ := store.SeedUser("super", superAdminEmail, models.RoleAdmin)
	router := newServer(store)

	t.Run("Self-deletion rejected", func(t *testing.T) {
		rr := doRequest(t, router, http.MethodDelete, "/api/admin/users/"+adminID, token, nil)
		requireStatus(t, rr, http.StatusBadRequest)
	})

	t.Run("Super admin deletion rejected", func(t *testing.T) {
		rr := doRequest(t, router, http.MethodDelete, "/api/admin/users/"+superID, token, nil)
		requireStatus(t, rr, http.StatusForbidden)
	})

	t.Run("Delete user", func(t *testing.T) {
		rr := doRequest(t, router, http.MethodDelete, "/api/admin/users/"+targetID, token, nil)
		requireStatus(t, rr, http.StatusNoContent)

		rr = doRequest(t, router, http.MethodDelete, "/api/admin/users/"+targetID, token, nil)
		requireStatus(t, rr, http.StatusNotFound)
	})
}

func TestAdminListPlaylists(t *testing.T) {
	store := melodextesting.NewFakeStore()
	_, token := store.SeedUser("root", "root@example.com", models.RoleAdmin)
	userID, _ := store.SeedUser("alice", "alice@example.com", models.RoleUser)
	store.InsertPlaylist(context.Background(), models.Playlist{Name: "Road Trip", UserID: userID})
	router := newServer(store)

	rr := doRequest(t, router, http.MethodGet, "/api/admin/playlists", token, nil)
	requireStatus(t, rr, http.StatusOK)

	var body struct {
		Playlists []playlistBody `json:"playlists"`
	}
	decodeBody(t, rr, &body)
	require.Len(t, body.Playlists, 1)
	require.NotNil(t, body.Playlists[0].Owner)
	owner := *body.Playlists[0].Owner
	assert.Equal(t, "alice", owner["username"])
	assert.Equal(t, "alice@example.com", owner["email"])
}
