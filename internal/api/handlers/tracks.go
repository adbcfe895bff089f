package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"melodex-backend/internal/api/models"
	"melodex-backend/internal/api/models/requests"
	"melodex-backend/internal/api/models/responses"
	"melodex-backend/internal/database"
	melodexEnv "melodex-backend/internal/env"
	melodexHttp "melodex-backend/internal/http"
	melodexJson "melodex-backend/internal/json"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func ListTracks(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	env, ok := r.Context().Value(melodexEnv.Key).(*melodexEnv.Env)
	if !ok {
		env = melodexEnv.Null()
	}

	// Retrieve query parameters
	env.Logger.DebugContext(ctx, "Retrieving query parameters")
	query := r.URL.Query()
	params := database.ListTracksParams{
		Artist: query.Get("artist"),
		Title:  query.Get("title"),
		SortBy: query.Get("sortBy"),
	}
	if fields := query.Get("fields"); fields != "" {
		for _, f := range strings.Split(fields, ",") {
			if f = strings.TrimSpace(f); f != "" {
				params.Fields = append(params.Fields, f)
			}
		}
	}

	// Validate parameters
	switch params.SortBy {
	case "", database.SortTracksByTitle, database.SortTracksByDate:
	default:
		env.Logger.ErrorContext(ctx, "Invalid sortBy parameter", slog.String("sortBy", params.SortBy))
		melodexHttp.Error(w, "Invalid sortBy parameter", http.StatusBadRequest)
		return
	}

	// List tracks
	env.Logger.DebugContext(ctx, "Listing tracks")
	tracks, err := env.Database.ListTracks(ctx, params)
	if err != nil {
		env.Logger.ErrorContext(ctx, "Unable to list tracks", slog.Any("error", err))
		melodexHttp.Error(w, "Unable to list tracks", http.StatusInternalServerError)
		return
	}

	// Encode response
	env.Logger.DebugContext(ctx, "Encoding response")
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(responses.ListTracks{Tracks: tracks}); err != nil {
		env.Logger.ErrorContext(ctx, "Unable to encode response", slog.Any("error", err))
		return
	}
}

func GetTrack(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	env, ok := r.Context().Value(melodexEnv.Key).(*melodexEnv.Env)
	if !ok {
		env = melodexEnv.Null()
	}

	// Validate parameters
	env.Logger.DebugContext(ctx, "Validating parameters")
	trackID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		env.Logger.ErrorContext(ctx, "Invalid track ID", slog.Any("error", err))
		melodexHttp.Error(w, "Invalid track ID", http.StatusBadRequest)
		return
	}

	// Retrieve track
	env.Logger.DebugContext(ctx, "Retrieving track")
	track, err := env.Database.GetTrack(ctx, trackID)
	if errors.Is(err, mongo.ErrNoDocuments) {
		env.Logger.ErrorContext(ctx, "Track not found", slog.Any("error", err))
		melodexHttp.Error(w, "Track not found", http.StatusNotFound)
		return
	} else if err != nil {
		env.Logger.ErrorContext(ctx, "Unsuccessful query", slog.Any("error", err))
		melodexHttp.Error(w, "Unable to retrieve track", http.StatusInternalServerError)
		return
	}

	// Encode response
	env.Logger.DebugContext(ctx, "Encoding response")
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(track); err != nil {
		env.Logger.ErrorContext(ctx, "Unable to encode response", slog.Any("error", err))
		return
	}
}

func CreateTrack(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	env, ok := r.Context().Value(melodexEnv.Key).(*melodexEnv.Env)
	if !ok {
		env = melodexEnv.Null()
	}

	// Decode request payload
	env.Logger.DebugContext(ctx, "Decoding request body")
	var createRequest requests.CreateTrack
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	defer r.Body.Close()
	err := melodexJson.DecodeJson(&createRequest, decoder)
	if err != nil {
		env.Logger.ErrorContext(ctx, "Unable to decode request", slog.Any("error", err))
		melodexHttp.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	// Validate payload
	env.Logger.DebugContext(ctx, "Validating request body")
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(createRequest); err != nil {
		env.Logger.ErrorContext(ctx, "Failed to validate request body", slog.Any("error", err))
		melodexHttp.Error(w, "Title and artist are required", http.StatusBadRequest)
		return
	}

	// Insert track
	env.Logger.DebugContext(ctx, "Inserting track")
	track, err := env.Database.InsertTrack(ctx, models.Track{
		Title:    createRequest.Title,
		Artist:   createRequest.Artist,
		Album:    createRequest.Album,
		Duration: createRequest.Duration,
	})
	if err != nil {
		env.Logger.ErrorContext(ctx, "Unable to insert track", slog.Any("error", err))
		melodexHttp.Error(w, "Unable to create track", http.StatusInternalServerError)
		return
	}

	// Encode response
	env.Logger.DebugContext(ctx, "Encoding response")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(track); err != nil {
		env.Logger.ErrorContext(ctx, "Unable to encode response", slog.Any("error", err))
		return
	}
}

func UpdateTrack(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	env, ok := r.Context().Value(melodexEnv.Key).(*melodexEnv.Env)
	if !ok {
		env = melodexEnv.Null()
	}

	// Validate parameters
	env.Logger.DebugContext(ctx, "Validating parameters")
	trackID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		env.Logger.ErrorContext(ctx, "Invalid track ID", slog.Any("error", err))
		melodexHttp.Error(w, "Invalid track ID", http.StatusBadRequest)
		return
	}

	// Decode request payload
	env.Logger.DebugContext(ctx, "Decoding request body")
	var updateRequest requests.UpdateTrack
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	defer r.Body.Close()
	if err := melodexJson.DecodeJson(&updateRequest, decoder); err != nil {
		env.Logger.ErrorContext(ctx, "Unable to decode request", slog.Any("error", err))
		melodexHttp.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	// Validate payload
	env.Logger.DebugContext(ctx, "Validating request body")
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(updateRequest); err != nil {
		env.Logger.ErrorContext(ctx, "Failed to validate request body", slog.Any("error", err))
		melodexHttp.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	// Update track
	env.Logger.DebugContext(ctx, "Updating track")
	track, err := env.Database.UpdateTrack(ctx, database.UpdateTrackParams{
		ID:       trackID,
		Title:    updateRequest.Title,
		Artist:   updateRequest.Artist,
		Album:    updateRequest.Album,
		Duration: updateRequest.Duration,
	})
	if errors.Is(err, mongo.ErrNoDocuments) {
		env.Logger.ErrorContext(ctx, "Track not found", slog.Any("error", err))
		melodexHttp.Error(w, "Track not found", http.StatusNotFound)
		return
	} else if err != nil {
		env.Logger.ErrorContext(ctx, "Unable to update track", slog.Any("error", err))
		melodexHttp.Error(w, "Unable to update track", http.StatusInternalServerError)
		return
	}

	// Encode response
	env.Logger.DebugContext(ctx, "Encoding response")
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(track); err != nil {
		env.Logger.ErrorContext(ctx, "Unable to encode response", slog.Any("error", err))
		return
	}
}

func DeleteTrack(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	env, ok := r.Context().Value(melodexEnv.Key).(*melodexEnv.Env)
	if !ok {
		env = melodexEnv.Null()
	}

	// Validate parameters
	env.Logger.DebugContext(ctx, "Validating parameters")
	trackID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		env.Logger.ErrorContext(ctx, "Invalid track ID", slog.Any("error", err))
		melodexHttp.Error(w, "Invalid track ID", http.StatusBadRequest)
		return
	}

	// Delete track
	env.Logger.DebugContext(ctx, "Deleting track")
	err = env.Database.DeleteTrack(ctx, trackID)
	if errors.Is(err, mongo.ErrNoDocuments) {
		env.Logger.ErrorContext(ctx, "Track not found", slog.Any("error", err))
		melodexHttp.Error(w, "Track not found", http.StatusNotFound)
		return
	} else if err != nil {
		env.Logger.ErrorContext(ctx, "Unable to delete track", slog.Any("error", err))
		melodexHttp.Error(w, "Unable to delete track", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
