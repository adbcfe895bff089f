// Package for handler response structs

package responses

import (
	"melodex-backend/internal/api/models"
)

type Login struct {
	Token string            `json:"token"`
	User  models.PublicUser `json:"user"`
}

type Register struct {
	Token string            `json:"token"`
	User  models.PublicUser `json:"user"`
}

// Playlist as returned from list endpoints. Owner is only populated for
// admin callers.
type Playlist struct {
	models.Playlist
	Owner *PlaylistOwner `json:"owner,omitempty"`
}

type PlaylistOwner struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
}

type ListPlaylists struct {
	Playlists []Playlist `json:"playlists"`
}

// Playlist detail with the membership list resolved to full track
// records.
type GetPlaylist struct {
	models.Playlist
	IsOwner bool           `json:"isOwner"`
	Items   []models.Track `json:"items"`
}

// Track list documents are maps because the caller controls the
// projected field set.
type ListTracks struct {
	Tracks []map[string]interface{} `json:"tracks"`
}

type ListUsers struct {
	Users []models.PublicUser `json:"users"`
}

type Stats struct {
	Users     int64 `json:"users"`
	Tracks    int64 `json:"tracks"`
	Playlists int64 `json:"playlists"`
}
