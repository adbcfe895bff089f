package database

import (
	"context"
	"regexp"
	"slices"
	"time"

	"melodex-backend/internal/api/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	SortTracksByTitle = "title"
	SortTracksByDate  = "date"
)

// Fields a caller may project on the track list endpoint. Unknown names
// are ignored.
var trackFields = []string{"title", "artist", "album", "duration", "createdAt"}

type ListTracksParams struct {
	Artist string
	Title  string
	SortBy string
	Fields []string
}

type UpdateTrackParams struct {
	ID       primitive.ObjectID
	Title    *string
	Artist   *string
	Album    *string
	Duration *int
}

// Drops unknown field names from a requested projection. An empty
// result means no projection.
func NormalizeTrackFields(fields []string) []string {
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if slices.Contains(trackFields, f) && !slices.Contains(out, f) {
			out = append(out, f)
		}
	}
	return out
}

// Renders a track as a response document restricted to the projected
// fields. The id is always included.
func TrackDoc(track models.Track, fields []string) map[string]interface{} {
	all := map[string]interface{}{
		"title":     track.Title,
		"artist":    track.Artist,
		"album":     track.Album,
		"duration":  track.Duration,
		"createdAt": track.CreatedAt,
	}

	doc := map[string]interface{}{"id": track.ID}
	if len(fields) == 0 {
		fields = trackFields
	}
	for _, f := range fields {
		doc[f] = all[f]
	}
	return doc
}

// Case-insensitive substring match.
func containsRegex(value string) primitive.Regex {
	return primitive.Regex{Pattern: regexp.QuoteMeta(value), Options: "i"}
}

func (db *Database) ListTracks(ctx context.Context, params ListTracksParams) ([]map[string]interface{}, error) {
	filter := bson.M{}
	if params.Artist != "" {
		filter["artist"] = containsRegex(params.Artist)
	}
	if params.Title != "" {
		filter["title"] = containsRegex(params.Title)
	}

	opts := options.Find()
	switch params.SortBy {
	case SortTracksByTitle:
		opts.SetSort(bson.D{{Key: "title", Value: 1}})
	case SortTracksByDate:
		opts.SetSort(bson.D{{Key: "createdAt", Value: -1}})
	}

	fields := NormalizeTrackFields(params.Fields)
	if len(fields) > 0 {
		projection := bson.M{}
		for _, f := range fields {
			projection[f] = 1
		}
		opts.SetProjection(projection)
	}

	cursor, err := db.tracks().Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	docs := make([]map[string]interface{}, 0)
	for cursor.Next(ctx) {
		var track models.Track
		if err := cursor.Decode(&track); err != nil {
			return nil, err
		}
		docs = append(docs, TrackDoc(track, fields))
	}
	return docs, cursor.Err()
}

func (db *Database) GetTrack(ctx context.Context, id primitive.ObjectID) (models.Track, error) {
	var track models.Track
	err := db.tracks().FindOne(ctx, bson.M{"_id": id}).Decode(&track)
	return track, err
}

// Resolves track ids to full records, preserving the order of ids.
// Ids without a matching record are skipped.
func (db *Database) GetTracksByIDs(ctx context.Context, ids []string) ([]models.Track, error) {
	objectIDs := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		objectID, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			continue
		}
		objectIDs = append(objectIDs, objectID)
	}

	tracks := make([]models.Track, 0, len(ids))
	if len(objectIDs) == 0 {
		return tracks, nil
	}

	cursor, err := db.tracks().Find(ctx, bson.M{"_id": bson.M{"$in": objectIDs}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	byID := make(map[string]models.Track, len(ids))
	for cursor.Next(ctx) {
		var track models.Track
		if err := cursor.Decode(&track); err != nil {
			return nil, err
		}
		byID[track.ID.Hex()] = track
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}

	for _, id := range ids {
		if track, ok := byID[id]; ok {
			tracks = append(tracks, track)
		}
	}
	return tracks, nil
}

func (db *Database) InsertTrack(ctx context.Context, track models.Track) (models.Track, error) {
	track.CreatedAt = time.Now().UTC()
	res, err := db.tracks().InsertOne(ctx, track)
	if err != nil {
		return models.Track{}, err
	}
	track.ID = res.InsertedID.(primitive.ObjectID)
	return track, nil
}

func (db *Database) UpdateTrack(ctx context.Context, params UpdateTrackParams) (models.Track, error) {
	set := bson.M{}
	if params.Title != nil {
		set["title"] = *params.Title
	}
	if params.Artist != nil {
		set["artist"] = *params.Artist
	}
	if params.Album != nil {
		set["album"] = *params.Album
	}
	if params.Duration != nil {
		set["duration"] = *params.Duration
	}

	var track models.Track
	if len(set) == 0 {
		err := db.tracks().FindOne(ctx, bson.M{"_id": params.ID}).Decode(&track)
		return track, err
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := db.tracks().
		FindOneAndUpdate(ctx, bson.M{"_id": params.ID}, bson.M{"$set": set}, opts).
		Decode(&track)
	return track, err
}

func (db *Database) DeleteTrack(ctx context.Context, id primitive.ObjectID) error {
	res, err := db.tracks().DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (db *Database) CountTracks(ctx context.Context) (int64, error) {
	return db.tracks().CountDocuments(ctx, bson.M{})
}
