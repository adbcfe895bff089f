// Package database wraps the shared MongoDB connection and the queries
// the services run against it.

package database

import (
	"context"

	"melodex-backend/internal/api/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Store is the query surface the handlers depend on. The mongo-backed
// Database implements it for production; tests substitute an in-memory
// fake.
type Store interface {
	// Tracks
	ListTracks(ctx context.Context, params ListTracksParams) ([]map[string]interface{}, error)
	GetTrack(ctx context.Context, id primitive.ObjectID) (models.Track, error)
	GetTracksByIDs(ctx context.Context, ids []string) ([]models.Track, error)
	InsertTrack(ctx context.Context, track models.Track) (models.Track, error)
	UpdateTrack(ctx context.Context, params UpdateTrackParams) (models.Track, error)
	DeleteTrack(ctx context.Context, id primitive.ObjectID) error
	CountTracks(ctx context.Context) (int64, error)

	// Users
	GetUser(ctx context.Context, id primitive.ObjectID) (models.User, error)
	GetUserByEmail(ctx context.Context, email string) (models.User, error)
	GetUsersByIDs(ctx context.Context, ids []string) (map[string]models.User, error)
	InsertUser(ctx context.Context, user models.User) (models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	UpdateUserRole(ctx context.Context, params UpdateUserRoleParams) (models.User, error)
	DeleteUser(ctx context.Context, id primitive.ObjectID) error
	CountUsers(ctx context.Context) (int64, error)

	// Playlists
	ListPlaylists(ctx context.Context) ([]models.Playlist, error)
	ListUserPlaylists(ctx context.Context, userID string) ([]models.Playlist, error)
	GetPlaylist(ctx context.Context, id primitive.ObjectID) (models.Playlist, error)
	InsertPlaylist(ctx context.Context, playlist models.Playlist) (models.Playlist, error)
	UpdatePlaylist(ctx context.Context, params UpdatePlaylistParams) (models.Playlist, error)
	SetPlaylistTracks(ctx context.Context, params SetPlaylistTracksParams) (models.Playlist, error)
	DeletePlaylist(ctx context.Context, params DeletePlaylistParams) error
	CountPlaylists(ctx context.Context) (int64, error)

	// Sessions
	InsertSession(ctx context.Context, session models.Session) error
	GetSession(ctx context.Context, token string) (models.Session, error)
	DeleteSession(ctx context.Context, token string) error
}

type Database struct {
	client *mongo.Client
	db     *mongo.Database
}

// Connects to MongoDB and verifies the connection with a ping. The
// returned handle is shared by every request for the process lifetime.
func NewDatabase(ctx context.Context, uri, dbName string) (*Database, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, err
	}

	return &Database{
		client: client,
		db:     client.Database(dbName),
	}, nil
}

func (db *Database) Close() error {
	if db == nil {
		return nil
	}

	return db.client.Disconnect(context.Background())
}

func (db *Database) tracks() *mongo.Collection {
	return db.db.Collection("tracks")
}

func (db *Database) users() *mongo.Collection {
	return db.db.Collection("users")
}

func (db *Database) playlists() *mongo.Collection {
	return db.db.Collection("playlists")
}

func (db *Database) sessions() *mongo.Collection {
	return db.db.Collection("sessions")
}
