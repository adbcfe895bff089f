// package testing contains shared testing utilities

package testing

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"melodex-backend/internal/api/models"
	"melodex-backend/internal/database"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// FakeStore is an in-memory test double for [database.Store]. It
// mirrors the store's contract, including ErrNoDocuments for absent
// records and owner-scoped playlist filters.
type FakeStore struct {
	mu        sync.Mutex
	Tracks    map[string]models.Track
	Users     map[string]models.User
	Playlists map[string]models.Playlist
	Sessions  map[string]models.Session
}

var _ database.Store = (*FakeStore)(nil)

func NewFakeStore() *FakeStore {
	return &FakeStore{
		Tracks:    make(map[string]models.Track),
		Users:     make(map[string]models.User),
		Playlists: make(map[string]models.Playlist),
		Sessions:  make(map[string]models.Session),
	}
}

// Inserts a user and a live session for them, returning the user id and
// session token.
func (s *FakeStore) SeedUser(username, email string, role models.Role) (string, string) {
	user, _ := s.InsertUser(context.Background(), models.User{
		Username: username,
		Email:    email,
		Password: "x",
		Role:     role,
	})
	session := models.Session{
		Token:     primitive.NewObjectID().Hex(),
		UserID:    user.ID.Hex(),
		CreatedAt: time.Now().UTC(),
		ExpiresAt: time.Now().UTC().Add(time.Hour),
	}
	s.InsertSession(context.Background(), session)
	return user.ID.Hex(), session.Token
}

func (s *FakeStore) ListTracks(ctx context.Context, params database.ListTracksParams) ([]map[string]interface{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tracks := make([]models.Track, 0, len(s.Tracks))
	for _, track := range s.Tracks {
		if params.Artist != "" && !strings.Contains(strings.ToLower(track.Artist), strings.ToLower(params.Artist)) {
			continue
		}
		if params.Title != "" && !strings.Contains(strings.ToLower(track.Title), strings.ToLower(params.Title)) {
			continue
		}
		tracks = append(tracks, track)
	}

	switch params.SortBy {
	case database.SortTracksByTitle:
		slices.SortFunc(tracks, func(a, b models.Track) int {
			return strings.Compare(a.Title, b.Title)
		})
	case database.SortTracksByDate:
		slices.SortFunc(tracks, func(a, b models.Track) int {
			return b.CreatedAt.Compare(a.CreatedAt)
		})
	}

	fields := database.NormalizeTrackFields(params.Fields)
	docs := make([]map[string]interface{}, 0, len(tracks))
	for _, track := range tracks {
		docs = append(docs, database.TrackDoc(track, fields))
	}
	return docs, nil
}

func (s *FakeStore) GetTrack(ctx context.Context, id primitive.ObjectID) (models.Track, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	track, ok := s.Tracks[id.Hex()]
	if !ok {
		return models.Track{}, mongo.ErrNoDocuments
	}
	return track, nil
}

func (s *FakeStore) GetTracksByIDs(ctx context.Context, ids []string) ([]models.Track, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tracks := make([]models.Track, 0, len(ids))
	for _, id := range ids {
		if track, ok := s.Tracks[id]; ok {
			tracks = append(tracks, track)
		}
	}
	return tracks, nil
}

func (s *FakeStore) InsertTrack(ctx context.Context, track models.Track) (models.Track, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	track.ID = primitive.NewObjectID()
	track.CreatedAt = time.Now().UTC()
	s.Tracks[track.ID.Hex()] = track
	return track, nil
}

func (s *FakeStore) UpdateTrack(ctx context.Context, params database.UpdateTrackParams) (models.Track, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	track, ok := s.Tracks[params.ID.Hex()]
	if !ok {
		return models.Track{}, mongo.ErrNoDocuments
	}
	if params.Title != nil {
		track.Title = *params.Title
	}
	if params.Artist != nil {
		track.Artist = *params.Artist
	}
	if params.Album != nil {
		track.Album = *params.Album
	}
	if params.Duration != nil {
		track.Duration = *params.Duration
	}
	s.Tracks[params.ID.Hex()] = track
	return track, nil
}

func (s *FakeStore) DeleteTrack(ctx context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.Tracks[id.Hex()]; !ok {
		return mongo.ErrNoDocuments
	}
	delete(s.Tracks, id.Hex())
	return nil
}

func (s *FakeStore) CountTracks(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.Tracks)), nil
}

func (s *FakeStore) GetUser(ctx context.Context, id primitive.ObjectID) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.Users[id.Hex()]
	if !ok {
		return models.User{}, mongo.ErrNoDocuments
	}
	return user, nil
}

func (s *FakeStore) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, user := range s.Users {
		if user.Email == email {
			return user, nil
		}
	}
	return models.User{}, mongo.ErrNoDocuments
}

func (s *FakeStore) GetUsersByIDs(ctx context.Context, ids []string) (map[string]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users := make(map[string]models.User)
	for _, id := range ids {
		if user, ok := s.Users[id]; ok {
			users[id] = user
		}
	}
	return users, nil
}

func (s *FakeStore) InsertUser(ctx context.Context, user models.User) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	s.Users[user.ID.Hex()] = user
	return user, nil
}

func (s *FakeStore) ListUsers(ctx context.Context) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users := make([]models.User, 0, len(s.Users))
	for _, user := range s.Users {
		users = append(users, user)
	}
	slices.SortFunc(users, func(a, b models.User) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return users, nil
}

func (s *FakeStore) UpdateUserRole(ctx context.Context, params database.UpdateUserRoleParams) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.Users[params.ID.Hex()]
	if !ok {
		return models.User{}, mongo.ErrNoDocuments
	}
	user.Role = params.Role
	user.UpdatedAt = time.Now().UTC()
	s.Users[params.ID.Hex()] = user
	return user, nil
}

func (s *FakeStore) DeleteUser(ctx context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.Users[id.Hex()]; !ok {
		return mongo.ErrNoDocuments
	}
	delete(s.Users, id.Hex())
	return nil
}

func (s *FakeStore) CountUsers(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.Users)), nil
}

func (s *FakeStore) ListPlaylists(ctx context.Context) ([]models.Playlist, error) {
	return s.listPlaylists(func(models.Playlist) bool { return true }), nil
}

func (s *FakeStore) ListUserPlaylists(ctx context.Context, userID string) ([]models.Playlist, error) {
	return s.listPlaylists(func(p models.Playlist) bool { return p.UserID == userID }), nil
}

func (s *FakeStore) listPlaylists(keep func(models.Playlist) bool) []models.Playlist {
	s.mu.Lock()
	defer s.mu.Unlock()

	playlists := make([]models.Playlist, 0, len(s.Playlists))
	for _, playlist := range s.Playlists {
		if keep(playlist) {
			playlists = append(playlists, playlist)
		}
	}
	slices.SortFunc(playlists, func(a, b models.Playlist) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return playlists
}

func (s *FakeStore) GetPlaylist(ctx context.Context, id primitive.ObjectID) (models.Playlist, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	playlist, ok := s.Playlists[id.Hex()]
	if !ok {
		return models.Playlist{}, mongo.ErrNoDocuments
	}
	return playlist, nil
}

func (s *FakeStore) InsertPlaylist(ctx context.Context, playlist models.Playlist) (models.Playlist, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	playlist.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	playlist.CreatedAt = now
	playlist.UpdatedAt = now
	if playlist.Tracks == nil {
		playlist.Tracks = make([]string, 0)
	}
	s.Playlists[playlist.ID.Hex()] = playlist
	return playlist, nil
}

func (s *FakeStore) UpdatePlaylist(ctx context.Context, params database.UpdatePlaylistParams) (models.Playlist, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	playlist, ok := s.Playlists[params.ID.Hex()]
	if !ok || playlist.UserID != params.UserID {
		return models.Playlist{}, mongo.ErrNoDocuments
	}
	if params.Name != nil {
		playlist.Name = *params.Name
	}
	if params.Description != nil {
		playlist.Description = *params.Description
	}
	if params.Cover != nil {
		playlist.Cover = *params.Cover
	}
	playlist.UpdatedAt = time.Now().UTC()
	s.Playlists[params.ID.Hex()] = playlist
	return playlist, nil
}

func (s *FakeStore) SetPlaylistTracks(ctx context.Context, params database.SetPlaylistTracksParams) (models.Playlist, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	playlist, ok := s.Playlists[params.ID.Hex()]
	if !ok || playlist.UserID != params.UserID {
		return models.Playlist{}, mongo.ErrNoDocuments
	}
	playlist.Tracks = params.Tracks
	playlist.UpdatedAt = time.Now().UTC()
	s.Playlists[params.ID.Hex()] = playlist
	return playlist, nil
}

func (s *FakeStore) DeletePlaylist(ctx context.Context, params database.DeletePlaylistParams) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	playlist, ok := s.Playlists[params.ID.Hex()]
	if !ok || playlist.UserID != params.UserID {
		return mongo.ErrNoDocuments
	}
	delete(s.Playlists, params.ID.Hex())
	return nil
}

func (s *FakeStore) CountPlaylists(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.Playlists)), nil
}

func (s *FakeStore) InsertSession(ctx context.Context, session models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Sessions[session.Token] = session
	return nil
}

func (s *FakeStore) GetSession(ctx context.Context, token string) (models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.Sessions[token]
	if !ok {
		return models.Session{}, mongo.ErrNoDocuments
	}
	return session, nil
}

func (s *FakeStore) DeleteSession(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.Sessions, token)
	return nil
}
