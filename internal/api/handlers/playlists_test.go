package handlers_test

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"melodex-backend/internal/api/models"
	melodextesting "melodex-backend/internal/testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type playlistBody struct {
	models.Playlist
	IsOwner bool                    `json:"isOwner"`
	Items   []models.Track          `json:"items"`
	Owner   *map[string]interface{} `json:"owner"`
}

func TestCreatePlaylist(t *testing.T) {
	store := melodextesting.NewFakeStore()
	userID, token := store.SeedUser("alice", "alice@example.com", models.RoleUser)
	router := newServer(store)

	rr := doRequest(t, router, http.MethodPost, "/api/playlists", token, map[string]string{
		"name":        "  Road Trip  ",
		"description": " tunes for the drive ",
	})
	requireStatus(t, rr, http.StatusCreated)

	var playlist models.Playlist
	decodeBody(t, rr, &playlist)
	assert.Equal(t, "Road Trip", playlist.Name)
	assert.Equal(t, "tunes for the drive", playlist.Description)
	assert.Equal(t, userID, playlist.UserID)
	require.NotNil(t, playlist.Tracks)
	assert.Empty(t, playlist.Tracks)
}

func TestCreatePlaylistValidation(t *testing.T) {
	store := melodextesting.NewFakeStore()
	_, token := store.SeedUser("alice", "alice@example.com", models.RoleUser)
	router := newServer(store)

	tests := []struct {
		name string
		body map[string]string
	}{
		{"Missing name", map[string]string{"description": "x"}},
		{"Whitespace name", map[string]string{"name": "   "}},
		{"Name too long", map[string]string{"name": strings.Repeat("a", 101)}},
		{"Multibyte name too long", map[string]string{"name": strings.Repeat("é", 101)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := doRequest(t, router, http.MethodPost, "/api/playlists", token, tt.body)
			requireStatus(t, rr, http.StatusBadRequest)
			requireErrorBody(t, rr)
		})
	}
}

func TestCreatePlaylistMultibyteName(t *testing.T) {
	store := melodextesting.NewFakeStore()
	_, token := store.SeedUser("alice", "alice@example.com", models.RoleUser)
	router := newServer(store)

	// 100 characters but twice as many bytes.
	name := strings.Repeat("é", 100)
	rr := doRequest(t, router, http.MethodPost, "/api/playlists", token, map[string]string{"name": name})
	requireStatus(t, rr, http.StatusCreated)

	var playlist models.Playlist
	decodeBody(t, rr, &playlist)
	assert.Equal(t, name, playlist.Name)
}

func TestGetPlaylistOwnership(t *testing.T) {
	store := melodextesting.NewFakeStore()
	_, tokenA := store.SeedUser("alice", "alice@example.com", models.RoleUser)
	_, tokenB := store.SeedUser("bob", "bob@example.com", models.RoleUser)
	_, tokenAdmin := store.SeedUser("root", "root@example.com", models.RoleAdmin)
	router := newServer(store)

	rr := doRequest(t, router, http.MethodPost, "/api/playlists", tokenA, map[string]string{"name": "Road Trip"})
	requireStatus(t, rr, http.StatusCreated)
	var created models.Playlist
	decodeBody(t, rr, &created)
	path := "/api/playlists/" + created.ID.Hex()

	t.Run("Owner sees playlist with isOwner", func(t *testing.T) {
		rr := doRequest(t, router, http.MethodGet, path, tokenA, nil)
		requireStatus(t, rr, http.StatusOK)
		var got playlistBody
		decodeBody(t, rr, &got)
		assert.True(t, got.IsOwner)
		require.NotNil(t, got.Items)
		assert.Empty(t, got.Items)
	})

	t.Run("Other user gets not found", func(t *testing.T) {
		rr := doRequest(t, router, http.MethodGet, path, tokenB, nil)
		requireStatus(t, rr, http.StatusNotFound)
	})

	t.Run("Admin sees any playlist", func(t *testing.T) {
		rr := doRequest(t, router, http.MethodGet, path, tokenAdmin, nil)
		requireStatus(t, rr, http.StatusOK)
		var got playlistBody
		decodeBody(t, rr, &got)
		assert.False(t, got.IsOwner)
	})

	t.Run("Malformed id", func(t *testing.T) {
		rr := doRequest(t, router, http.MethodGet, "/api/playlists/xyz", tokenA, nil)
		requireStatus(t, rr, http.StatusBadRequest)
	})
}

func TestListPlaylistsScoping(t *testing.T) {
	store := melodextesting.NewFakeStore()
	idA, tokenA := store.SeedUser("alice", "alice@example.com", models.RoleUser)
	_, tokenB := store.SeedUser("bob", "bob@example.com", models.RoleUser)
	_, tokenAdmin := store.SeedUser("root", "root@example.com", models.RoleAdmin)
	router := newServer(store)

	rr := doRequest(t, router, http.MethodPost, "/api/playlists", tokenA, map[string]string{"name": "Road Trip"})
	requireStatus(t, rr, http.StatusCreated)

	t.Run("Non-admin sees only own playlists", func(t *testing.T) {
		rr := doRequest(t, router, http.MethodGet, "/api/playlists", tokenB, nil)
		requireStatus(t, rr, http.StatusOK)
		var body struct {
			Playlists []playlistBody `json:"playlists"`
		}
		decodeBody(t, rr, &body)
		assert.Empty(t, body.Playlists)

		rr = doRequest(t, router, http.MethodGet, "/api/playlists", tokenA, nil)
		requireStatus(t, rr, http.StatusOK)
		decodeBody(t, rr, &body)
		require.Len(t, body.Playlists, 1)
		for _, playlist := range body.Playlists {
			assert.Equal(t, idA, playlist.UserID)
		}
	})

	t.Run("Admin sees all playlists with owners resolved", func(t *testing.T) {
		rr := doRequest(t, router, http.MethodGet, "/api/playlists", tokenAdmin, nil)
		requireStatus(t, rr, http.StatusOK)
		var body struct {
			Playlists []playlistBody `json:"playlists"`
		}
		decodeBody(t, rr, &body)
		require.Len(t, body.Playlists, 1)
		require.NotNil(t, body.Playlists[0].Owner)
		assert.Equal(t, "alice", (*body.Playlists[0].Owner)["username"])
	})
}

func TestUpdatePlaylist(t *testing.T) {
	store := melodextesting.NewFakeStore()
	_, tokenA := store.SeedUser("alice", "alice@example.com", models.RoleUser)
	_, tokenB := store.SeedUser("bob", "bob@example.com", models.RoleUser)
	router := newServer(store)

	rr := doRequest(t, router, http.MethodPost, "/api/playlists", tokenA, map[string]string{"name": "Road Trip"})
	requireStatus(t, rr, http.StatusCreated)
	var created models.Playlist
	decodeBody(t, rr, &created)
	path := "/api/playlists/" + created.ID.Hex()

	t.Run("Partial merge", func(t *testing.T) {
		rr := doRequest(t, router, http.MethodPut, path, tokenA, map[string]string{"description": "new"})
		requireStatus(t, rr, http.StatusOK)
		var updated models.Playlist
		decodeBody(t, rr, &updated)
		assert.Equal(t, "Road Trip", updated.Name)
		assert.Equal(t, "new", updated.Description)
	})

	t.Run("Empty name rejected", func(t *testing.T) {
		rr := doRequest(t, router, http.MethodPut, path, tokenA, map[string]string{"name": "  "})
		requireStatus(t, rr, http.StatusBadRequest)
	})

	t.Run("Non-owner gets not found", func(t *testing.T) {
		rr := doRequest(t, router, http.MethodPut, path, tokenB, map[string]string{"name": "Hijacked"})
		requireStatus(t, rr, http.StatusNotFound)
	})
}

func TestDeletePlaylist(t *testing.T) {
	store := melodextesting.NewFakeStore()
	_, tokenA := store.SeedUser("alice", "alice@example.com", models.RoleUser)
	_, tokenB := store.SeedUser("bob", "bob@example.com", models.RoleUser)
	router := newServer(store)

	rr := doRequest(t, router, http.MethodPost, "/api/playlists", tokenA, map[string]string{"name": "Road Trip"})
	requireStatus(t, rr, http.StatusCreated)
	var created models.Playlist
	decodeBody(t, rr, &created)
	path := "/api/playlists/" + created.ID.Hex()

	rr = doRequest(t, router, http.MethodDelete, path, tokenB, nil)
	requireStatus(t, rr, http.StatusNotFound)

	rr = doRequest(t, router, http.MethodDelete, path, tokenA, nil)
	requireStatus(t, rr, http.StatusNoContent)

	rr = doRequest(t, router, http.MethodGet, path, tokenA, nil)
	requireStatus(t, rr, http.StatusNotFound)
}

func TestAddPlaylistTrack(t *testing.T) {
	store := melodextesting.NewFakeStore()
	_, token := store.SeedUser("alice", "alice@example.com", models.RoleUser)
	track := seedTrack(store, "Shape of You", "Ed Sheeran")
	router := newServer(store)

	rr := doRequest(t, router, http.MethodPost, "/api/playlists", token, map[string]string{"name": "Road Trip"})
	requireStatus(t, rr, http.StatusCreated)
	var created models.Playlist
	decodeBody(t, rr, &created)
	path := "/api/playlists/" + created.ID.Hex() + "/tracks"

	t.Run("Duplicate add keeps set semantics", func(t *testing.T) {
		for range 2 {
			rr := doRequest(t, router, http.MethodPost, path, token, map[string]string{"trackId": track.ID.Hex()})
			requireStatus(t, rr, http.StatusOK)
		}

		stored, err := store.GetPlaylist(context.Background(), created.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{track.ID.Hex()}, stored.Tracks)
	})

	t.Run("Nonexistent track leaves membership unchanged", func(t *testing.T) {
		rr := doRequest(t, router, http.MethodPost, path, token, map[string]string{
			"trackId": primitive.NewObjectID().Hex(),
		})
		requireStatus(t, rr, http.StatusNotFound)

		stored, err := store.GetPlaylist(context.Background(), created.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{track.ID.Hex()}, stored.Tracks)
	})

	t.Run("Malformed track id", func(t *testing.T) {
		rr := doRequest(t, router, http.MethodPost, path, token, map[string]string{"trackId": "zzz"})
		requireStatus(t, rr, http.StatusBadRequest)
	})
}

func TestRemovePlaylistTrack(t *testing.T) {
	store := melodextesting.NewFakeStore()
	_, token := store.SeedUser("alice", "alice@example.com", models.RoleUser)
	first := seedTrack(store, "Shape of You", "Ed Sheeran")
	second := seedTrack(store, "Castle on the Hill", "Ed Sheeran")
	router := newServer(store)

	rr := doRequest(t, router, http.MethodPost, "/api/playlists", token, map[string]string{"name": "Road Trip"})
	requireStatus(t, rr, http.StatusCreated)
	var created models.Playlist
	decodeBody(t, rr, &created)
	base := "/api/playlists/" + created.ID.Hex() + "/tracks"

	for _, track := range []models.Track{first, second} {
		rr := doRequest(t, router, http.MethodPost, base, token, map[string]string{"trackId": track.ID.Hex()})
		requireStatus(t, rr, http.StatusOK)
	}

	t.Run("Removing a non-member is a no-op", func(t *testing.T) {
		rr := doRequest(t, router, http.MethodDelete, base+"/"+primitive.NewObjectID().Hex(), token, nil)
		requireStatus(t, rr, http.StatusOK)

		stored, err := store.GetPlaylist(context.Background(), created.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{first.ID.Hex(), second.ID.Hex()}, stored.Tracks)
	})

	t.Run("Removing a member", func(t *testing.T) {
		rr := doRequest(t, router, http.MethodDelete, base+"/"+first.ID.Hex(), token, nil)
		requireStatus(t, rr, http.StatusOK)

		stored, err := store.GetPlaylist(context.Background(), created.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{second.ID.Hex()}, stored.Tracks)
	})

	t.Run("Malformed track id", func(t *testing.T) {
		rr := doRequest(t, router, http.MethodDelete, base+"/nope", token, nil)
		requireStatus(t, rr, http.StatusBadRequest)
	})
}

func TestGetPlaylistResolvesTracks(t *testing.T) {
	store := melodextesting.NewFakeStore()
	_, token := store.SeedUser("alice", "alice@example.com", models.RoleUser)
	track := seedTrack(store, "Shape of You", "Ed Sheeran")
	router := newServer(store)

	rr := doRequest(t, router, http.MethodPost, "/api/playlists", token, map[string]string{"name": "Road Trip"})
	requireStatus(t, rr, http.StatusCreated)
	var created models.Playlist
	decodeBody(t, rr, &created)

	rr = doRequest(t, router, http.MethodPost, "/api/playlists/"+created.ID.Hex()+"/tracks", token, map[string]string{
		"trackId": track.ID.Hex(),
	})
	requireStatus(t, rr, http.StatusOK)

	rr = doRequest(t, router, http.MethodGet, "/api/playlists/"+created.ID.Hex(), token, nil)
	requireStatus(t, rr, http.StatusOK)
	var got playlistBody
	decodeBody(t, rr, &got)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "Shape of You", got.Items[0].Title)
}
