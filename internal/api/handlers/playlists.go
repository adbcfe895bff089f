package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"unicode/utf8"

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

func ListPlaylists(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	env, ok := r.Context().Value(melodexEnv.Key).(*melodexEnv.Env)
	if !ok {
		env = melodexEnv.Null()
	}

	user, ok := requestUser(ctx)
	if !ok {
		env.Logger.ErrorContext(ctx, "No request user in context")
		melodexHttp.Error(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	// Admins see everything with owners resolved; everyone else sees
	// only their own playlists.
	if user.IsAdmin() {
		env.Logger.DebugContext(ctx, "Listing all playlists")
		playlists, err := env.Database.ListPlaylists(ctx)
		if err != nil {
			env.Logger.ErrorContext(ctx, "Unable to list playlists", slog.Any("error", err))
			melodexHttp.Error(w, "Unable to list playlists", http.StatusInternalServerError)
			return
		}

		resolved, err := resolveOwners(r, playlists, false)
		if err != nil {
			env.Logger.ErrorContext(ctx, "Unable to resolve owners", slog.Any("error", err))
			melodexHttp.Error(w, "Unable to list playlists", http.StatusInternalServerError)
			return
		}

		env.Logger.DebugContext(ctx, "Encoding response")
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(responses.ListPlaylists{Playlists: resolved}); err != nil {
			env.Logger.ErrorContext(ctx, "Unable to encode response", slog.Any("error", err))
		}
		return
	}

	env.Logger.DebugContext(ctx, "Listing user playlists")
	playlists, err := env.Database.ListUserPlaylists(ctx, user.ID)
	if err != nil {
		env.Logger.ErrorContext(ctx, "Unable to list playlists", slog.Any("error", err))
		melodexHttp.Error(w, "Unable to list playlists", http.StatusInternalServerError)
		return
	}

	own := make([]responses.Playlist, 0, len(playlists))
	for _, playlist := range playlists {
		own = append(own, responses.Playlist{Playlist: playlist})
	}

	env.Logger.DebugContext(ctx, "Encoding response")
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(responses.ListPlaylists{Playlists: own}); err != nil {
		env.Logger.ErrorContext(ctx, "Unable to encode response", slog.Any("error", err))
	}
}

// Fetches a playlist on behalf of its owner. Absence and non-ownership
// are conflated into a single not-found error.
func ownedPlaylist(r *http.Request, playlistID primitive.ObjectID, user models.RequestUser) (models.Playlist, error) {
	ctx := r.Context()
	env, ok := ctx.Value(melodexEnv.Key).(*melodexEnv.Env)
	if !ok {
		env = melodexEnv.Null()
	}

	playlist, err := env.Database.GetPlaylist(ctx, playlistID)
	if errors.Is(err, mongo.ErrNoDocuments) || (err == nil && playlist.UserID != user.ID) {
		env.Logger.ErrorContext(ctx, "Playlist not found for caller")
		return models.Playlist{}, melodexHttp.NewHTTPError(http.StatusNotFound, http.StatusText(http.StatusNotFound), "Playlist not found")
	} else if err != nil {
		env.Logger.ErrorContext(ctx, "Unsuccessful query", slog.Any("error", err))
		return models.Playlist{}, err
	}
	return playlist, nil
}

// Attaches owner identity to each playlist via a read-join on the users
// collection. Emails are only attached for the admin playlist listing.
func resolveOwners(r *http.Request, playlists []models.Playlist, withEmail bool) ([]responses.Playlist, error) {
	ctx := r.Context()
	env, ok := ctx.Value(melodexEnv.Key).(*melodexEnv.Env)
	if !ok {
		env = melodexEnv.Null()
	}

	ownerIDs := make([]string, 0, len(playlists))
	for _, playlist := range playlists {
		ownerIDs = append(ownerIDs, playlist.UserID)
	}
	owners, err := env.Database.GetUsersByIDs(ctx, ownerIDs)
	if err != nil {
		return nil, err
	}

	resolved := make([]responses.Playlist, 0, len(playlists))
	for _, playlist := range playlists {
		entry := responses.Playlist{Playlist: playlist}
		if owner, found := owners[playlist.UserID]; found {
			entry.Owner = &responses.PlaylistOwner{
				ID:       owner.ID.Hex(),
				Username: owner.Username,
			}
			if withEmail {
				entry.Owner.Email = owner.Email
			}
		}
		resolved = append(resolved, entry)
	}
	return resolved, nil
}

func GetPlaylist(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	env, ok := r.Context().Value(melodexEnv.Key).(*melodexEnv.Env)
	if !ok {
		env = melodexEnv.Null()
	}

	user, ok := requestUser(ctx)
	if !ok {
		env.Logger.ErrorContext(ctx, "No request user in context")
		melodexHttp.Error(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	// Validate parameters
	env.Logger.DebugContext(ctx, "Validating parameters")
	playlistID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		env.Logger.ErrorContext(ctx, "Invalid playlist ID", slog.Any("error", err))
		melodexHttp.Error(w, "Invalid playlist ID", http.StatusBadRequest)
		return
	}

	// Retrieve playlist
	env.Logger.DebugContext(ctx, "Retrieving playlist")
	playlist, err := env.Database.GetPlaylist(ctx, playlistID)
	if errors.Is(err, mongo.ErrNoDocuments) {
		env.Logger.ErrorContext(ctx, "Playlist not found", slog.Any("error", err))
		melodexHttp.Error(w, "Playlist not found", http.StatusNotFound)
		return
	} else if err != nil {
		env.Logger.ErrorContext(ctx, "Unsuccessful query", slog.Any("error", err))
		melodexHttp.Error(w, "Unable to retrieve playlist", http.StatusInternalServerError)
		return
	}

	// A playlist the caller cannot see is reported as missing, not
	// forbidden.
	if playlist.UserID != user.ID && !user.IsAdmin() {
		env.Logger.ErrorContext(ctx, "Caller does not own playlist")
		melodexHttp.Error(w, "Playlist not found", http.StatusNotFound)
		return
	}

	// Resolve membership to full track records
	env.Logger.DebugContext(ctx, "Resolving playlist tracks")
	tracks, err := env.Database.GetTracksByIDs(ctx, playlist.Tracks)
	if err != nil {
		env.Logger.ErrorContext(ctx, "Unable to resolve tracks", slog.Any("error", err))
		melodexHttp.Error(w, "Unable to retrieve playlist", http.StatusInternalServerError)
		return
	}

	// Encode response
	env.Logger.DebugContext(ctx, "Encoding response")
	w.Header().Set("Content-Type", "application/json")
	err = json.NewEncoder(w).Encode(responses.GetPlaylist{
		Playlist: playlist,
		IsOwner:  playlist.UserID == user.ID,
		Items:    tracks,
	})
	if err != nil {
		env.Logger.ErrorContext(ctx, "Unable to encode response", slog.Any("error", err))
	}
}

func CreatePlaylist(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	env, ok := r.Context().Value(melodexEnv.Key).(*melodexEnv.Env)
	if !ok {
		env = melodexEnv.Null()
	}

	user, ok := requestUser(ctx)
	if !ok {
		env.Logger.ErrorContext(ctx, "No request user in context")
		melodexHttp.Error(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	// Decode request payload
	env.Logger.DebugContext(ctx, "Decoding request body")
	var createRequest requests.CreatePlaylist
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	defer r.Body.Close()
	if err := melodexJson.DecodeJson(&createRequest, decoder); err != nil {
		env.Logger.ErrorContext(ctx, "Unable to decode request", slog.Any("error", err))
		melodexHttp.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	// Validate payload
	env.Logger.DebugContext(ctx, "Validating request body")
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(createRequest); err != nil {
		env.Logger.ErrorContext(ctx, "Failed to validate request body", slog.Any("error", err))
		melodexHttp.Error(w, "Playlist name must be between 1 and 100 characters", http.StatusBadRequest)
		return
	}
	name := strings.TrimSpace(createRequest.Name)
	if name == "" || utf8.RuneCountInString(name) > 100 {
		env.Logger.ErrorContext(ctx, "Invalid playlist name")
		melodexHttp.Error(w, "Playlist name must be between 1 and 100 characters", http.StatusBadRequest)
		return
	}

	// Insert playlist
	env.Logger.DebugContext(ctx, "Inserting playlist")
	playlist, err := env.Database.InsertPlaylist(ctx, models.Playlist{
		Name:        name,
		Description: strings.TrimSpace(createRequest.Description),
		Cover:       strings.TrimSpace(createRequest.Cover),
		UserID:      user.ID,
		Tracks:      make([]string, 0),
	})
	if err != nil {
		env.Logger.ErrorContext(ctx, "Unable to insert playlist", slog.Any("error", err))
		melodexHttp.Error(w, "Unable to create playlist", http.StatusInternalServerError)
		return
	}

	// Encode response
	env.Logger.DebugContext(ctx, "Encoding response")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(playlist); err != nil {
		env.Logger.ErrorContext(ctx, "Unable to encode response", slog.Any("error", err))
	}
}

func UpdatePlaylist(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	env, ok := r.Context().Value(melodexEnv.Key).(*melodexEnv.Env)
	if !ok {
		env = melodexEnv.Null()
	}

	user, ok := requestUser(ctx)
	if !ok {
		env.Logger.ErrorContext(ctx, "No request user in context")
		melodexHttp.Error(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	// Validate parameters
	env.Logger.DebugContext(ctx, "Validating parameters")
	playlistID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		env.Logger.ErrorContext(ctx, "Invalid playlist ID", slog.Any("error", err))
		melodexHttp.Error(w, "Invalid playlist ID", http.StatusBadRequest)
		return
	}

	// Decode request payload
	env.Logger.DebugContext(ctx, "Decoding request body")
	var updateRequest requests.UpdatePlaylist
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
	if updateRequest.Name != nil {
		name := strings.TrimSpace(*updateRequest.Name)
		if name == "" || utf8.RuneCountInString(name) > 100 {
			env.Logger.ErrorContext(ctx, "Invalid playlist name")
			melodexHttp.Error(w, "Playlist name must be between 1 and 100 characters", http.StatusBadRequest)
			return
		}
		updateRequest.Name = &name
	}
	if updateRequest.Description != nil {
		description := strings.TrimSpace(*updateRequest.Description)
		updateRequest.Description = &description
	}
	if updateRequest.Cover != nil {
		cover := strings.TrimSpace(*updateRequest.Cover)
		updateRequest.Cover = &cover
	}

	// Update playlist
	env.Logger.DebugContext(ctx, "Updating playlist")
	playlist, err := env.Database.UpdatePlaylist(ctx, database.UpdatePlaylistParams{
		ID:          playlistID,
		UserID:      user.ID,
		Name:        updateRequest.Name,
		Description: updateRequest.Description,
		Cover:       updateRequest.Cover,
	})
	if errors.Is(err, mongo.ErrNoDocuments) {
		env.Logger.ErrorContext(ctx, "Playlist not found", slog.Any("error", err))
		melodexHttp.Error(w, "Playlist not found", http.StatusNotFound)
		return
	} else if err != nil {
		env.Logger.ErrorContext(ctx, "Unable to update playlist", slog.Any("error", err))
		melodexHttp.Error(w, "Unable to update playlist", http.StatusInternalServerError)
		return
	}

	// Encode response
	env.Logger.DebugContext(ctx, "Encoding response")
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(playlist); err != nil {
		env.Logger.ErrorContext(ctx, "Unable to encode response", slog.Any("error", err))
	}
}

func DeletePlaylist(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	env, ok := r.Context().Value(melodexEnv.Key).(*melodexEnv.Env)
	if !ok {
		env = melodexEnv.Null()
	}

	user, ok := requestUser(ctx)
	if !ok {
		env.Logger.ErrorContext(ctx, "No request user in context")
		melodexHttp.Error(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	// Validate parameters
	env.Logger.DebugContext(ctx, "Validating parameters")
	playlistID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		env.Logger.ErrorContext(ctx, "Invalid playlist ID", slog.Any("error", err))
		melodexHttp.Error(w, "Invalid playlist ID", http.StatusBadRequest)
		return
	}

	// Delete playlist
	env.Logger.DebugContext(ctx, "Deleting playlist")
	err = env.Database.DeletePlaylist(ctx, database.DeletePlaylistParams{
		ID:     playlistID,
		UserID: user.ID,
	})
	if errors.Is(err, mongo.ErrNoDocuments) {
		env.Logger.ErrorContext(ctx, "Playlist not found", slog.Any("error", err))
		melodexHttp.Error(w, "Playlist not found", http.StatusNotFound)
		return
	} else if err != nil {
		env.Logger.ErrorContext(ctx, "Unable to delete playlist", slog.Any("error", err))
		melodexHttp.Error(w, "Unable to delete playlist", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func AddPlaylistTrack(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	env, ok := r.Context().Value(melodexEnv.Key).(*melodexEnv.Env)
	if !ok {
		env = melodexEnv.Null()
	}

	user, ok := requestUser(ctx)
	if !ok {
		env.Logger.ErrorContext(ctx, "No request user in context")
		melodexHttp.Error(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	// Validate parameters
	env.Logger.DebugContext(ctx, "Validating parameters")
	playlistID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		env.Logger.ErrorContext(ctx, "Invalid playlist ID", slog.Any("error", err))
		melodexHttp.Error(w, "Invalid playlist ID", http.StatusBadRequest)
		return
	}

	// Decode request payload
	env.Logger.DebugContext(ctx, "Decoding request body")
	var addRequest requests.AddPlaylistTrack
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	defer r.Body.Close()
	if err := melodexJson.DecodeJson(&addRequest, decoder); err != nil {
		env.Logger.ErrorContext(ctx, "Unable to decode request", slog.Any("error", err))
		melodexHttp.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	// Validate payload
	env.Logger.DebugContext(ctx, "Validating request body")
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(addRequest); err != nil {
		env.Logger.ErrorContext(ctx, "Failed to validate request body", slog.Any("error", err))
		melodexHttp.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	trackID, err := primitive.ObjectIDFromHex(addRequest.TrackID)
	if err != nil {
		env.Logger.ErrorContext(ctx, "Invalid track ID", slog.Any("error", err))
		melodexHttp.Error(w, "Invalid track ID", http.StatusBadRequest)
		return
	}

	// Verify the track exists
	env.Logger.DebugContext(ctx, "Verifying track exists")
	if _, err := env.Database.GetTrack(ctx, trackID); errors.Is(err, mongo.ErrNoDocuments) {
		env.Logger.ErrorContext(ctx, "Track not found", slog.Any("error", err))
		melodexHttp.Error(w, "Track not found", http.StatusNotFound)
		return
	} else if err != nil {
		env.Logger.ErrorContext(ctx, "Unsuccessful query", slog.Any("error", err))
		melodexHttp.Error(w, "Unable to add track", http.StatusInternalServerError)
		return
	}

	// Retrieve the caller's playlist
	env.Logger.DebugContext(ctx, "Retrieving playlist")
	playlist, err := ownedPlaylist(r, playlistID, user)
	if err != nil {
		var httpErr *melodexHttp.HTTPError
		if errors.As(err, &httpErr) {
			melodexHttp.Error(w, httpErr.Body, httpErr.StatusCode)
			return
		}
		melodexHttp.Error(w, "Unable to add track", http.StatusInternalServerError)
		return
	}

	// Membership has set semantics; re-adding a member only bumps the
	// update timestamp.
	tracks, _ := models.AddTrackID(playlist.Tracks, addRequest.TrackID)
	env.Logger.DebugContext(ctx, "Updating playlist membership")
	updated, err := env.Database.SetPlaylistTracks(ctx, database.SetPlaylistTracksParams{
		ID:     playlistID,
		UserID: user.ID,
		Tracks: tracks,
	})
	if errors.Is(err, mongo.ErrNoDocuments) {
		env.Logger.ErrorContext(ctx, "Playlist not found", slog.Any("error", err))
		melodexHttp.Error(w, "Playlist not found", http.StatusNotFound)
		return
	} else if err != nil {
		env.Logger.ErrorContext(ctx, "Unable to update playlist", slog.Any("error", err))
		melodexHttp.Error(w, "Unable to add track", http.StatusInternalServerError)
		return
	}

	// Encode response
	env.Logger.DebugContext(ctx, "Encoding response")
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(updated); err != nil {
		env.Logger.ErrorContext(ctx, "Unable to encode response", slog.Any("error", err))
	}
}

func RemovePlaylistTrack(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	env, ok := r.Context().Value(melodexEnv.Key).(*melodexEnv.Env)
	if !ok {
		env = melodexEnv.Null()
	}

	user, ok := requestUser(ctx)
	if !ok {
		env.Logger.ErrorContext(ctx, "No request user in context")
		melodexHttp.Error(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	// Validate parameters
	env.Logger.DebugContext(ctx, "Validating parameters")
	vars := mux.Vars(r)
	playlistID, err := primitive.ObjectIDFromHex(vars["id"])
	if err != nil {
		env.Logger.ErrorContext(ctx, "Invalid playlist ID", slog.Any("error", err))
		melodexHttp.Error(w, "Invalid playlist ID", http.StatusBadRequest)
		return
	}
	if _, err := primitive.ObjectIDFromHex(vars["trackId"]); err != nil {
		env.Logger.ErrorContext(ctx, "Invalid track ID", slog.Any("error", err))
		melodexHttp.Error(w, "Invalid track ID", http.StatusBadRequest)
		return
	}

	// Retrieve the caller's playlist
	env.Logger.DebugContext(ctx, "Retrieving playlist")
	playlist, err := ownedPlaylist(r, playlistID, user)
	if err != nil {
		var httpErr *melodexHttp.HTTPError
		if errors.As(err, &httpErr) {
			melodexHttp.Error(w, httpErr.Body, httpErr.StatusCode)
			return
		}
		melodexHttp.Error(w, "Unable to remove track", http.StatusInternalServerError)
		return
	}

	// Set removal: deleting an id that is not a member is a no-op.
	env.Logger.DebugContext(ctx, "Updating playlist membership")
	updated, err := env.Database.SetPlaylistTracks(ctx, database.SetPlaylistTracksParams{
		ID:     playlistID,
		UserID: user.ID,
		Tracks: models.RemoveTrackID(playlist.Tracks, vars["trackId"]),
	})
	if errors.Is(err, mongo.ErrNoDocuments) {
		env.Logger.ErrorContext(ctx, "Playlist not found", slog.Any("error", err))
		melodexHttp.Error(w, "Playlist not found", http.StatusNotFound)
		return
	} else if err != nil {
		env.Logger.ErrorContext(ctx, "Unable to update playlist", slog.Any("error", err))
		melodexHttp.Error(w, "Unable to remove track", http.StatusInternalServerError)
		return
	}

	// Encode response
	env.Logger.DebugContext(ctx, "Encoding response")
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(updated); err != nil {
		env.Logger.ErrorContext(ctx, "Unable to encode response", slog.Any("error", err))
	}
}
