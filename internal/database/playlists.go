package database

import (
	"context"
	"time"

	"melodex-backend/internal/api/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type UpdatePlaylistParams struct {
	ID          primitive.ObjectID
	UserID      string
	Name        *string
	Description *string
	Cover       *string
}

type SetPlaylistTracksParams struct {
	ID     primitive.ObjectID
	UserID string
	Tracks []string
}

type DeletePlaylistParams struct {
	ID     primitive.ObjectID
	UserID string
}

var newestFirst = bson.D{{Key: "createdAt", Value: -1}}

func (db *Database) ListPlaylists(ctx context.Context) ([]models.Playlist, error) {
	return db.findPlaylists(ctx, bson.M{})
}

func (db *Database) ListUserPlaylists(ctx context.Context, userID string) ([]models.Playlist, error) {
	return db.findPlaylists(ctx, bson.M{"userId": userID})
}

func (db *Database) findPlaylists(ctx context.Context, filter bson.M) ([]models.Playlist, error) {
	opts := options.Find().SetSort(newestFirst)
	cursor, err := db.playlists().Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	playlists := make([]models.Playlist, 0)
	for cursor.Next(ctx) {
		var playlist models.Playlist
		if err := cursor.Decode(&playlist); err != nil {
			return nil, err
		}
		playlists = append(playlists, playlist)
	}
	return playlists, cursor.Err()
}

func (db *Database) GetPlaylist(ctx context.Context, id primitive.ObjectID) (models.Playlist, error) {
	var playlist models.Playlist
	err := db.playlists().FindOne(ctx, bson.M{"_id": id}).Decode(&playlist)
	return playlist, err
}

func (db *Database) InsertPlaylist(ctx context.Context, playlist models.Playlist) (models.Playlist, error) {
	now := time.Now().UTC()
	playlist.CreatedAt = now
	playlist.UpdatedAt = now
	if playlist.Tracks == nil {
		playlist.Tracks = make([]string, 0)
	}
	res, err := db.playlists().InsertOne(ctx, playlist)
	if err != nil {
		return models.Playlist{}, err
	}
	playlist.ID = res.InsertedID.(primitive.ObjectID)
	return playlist, nil
}

// Owner id is part of the filter: a caller updating someone else's
// playlist gets ErrNoDocuments, indistinguishable from a missing one.
func (db *Database) UpdatePlaylist(ctx context.Context, params UpdatePlaylistParams) (models.Playlist, error) {
	set := bson.M{"updatedAt": time.Now().UTC()}
	if params.Name != nil {
		set["name"] = *params.Name
	}
	if params.Description != nil {
		set["description"] = *params.Description
	}
	if params.Cover != nil {
		set["cover"] = *params.Cover
	}

	var playlist models.Playlist
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := db.playlists().
		FindOneAndUpdate(
			ctx,
			bson.M{"_id": params.ID, "userId": params.UserID},
			bson.M{"$set": set},
			opts,
		).
		Decode(&playlist)
	return playlist, err
}

func (db *Database) SetPlaylistTracks(ctx context.Context, params SetPlaylistTracksParams) (models.Playlist, error) {
	var playlist models.Playlist
	update := bson.M{"$set": bson.M{
		"tracks":    params.Tracks,
		"updatedAt": time.Now().UTC(),
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := db.playlists().
		FindOneAndUpdate(
			ctx,
			bson.M{"_id": params.ID, "userId": params.UserID},
			update,
			opts,
		).
		Decode(&playlist)
	return playlist, err
}

func (db *Database) DeletePlaylist(ctx context.Context, params DeletePlaylistParams) error {
	res, err := db.playlists().DeleteOne(ctx, bson.M{"_id": params.ID, "userId": params.UserID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (db *Database) CountPlaylists(ctx context.Context) (int64, error) {
	return db.playlists().CountDocuments(ctx, bson.M{})
}
