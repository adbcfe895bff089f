package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

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
	"golang.org/x/sync/errgroup"
)

func GetStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	env, ok := r.Context().Value(melodexEnv.Key).(*melodexEnv.Env)
	if !ok {
		env = melodexEnv.Null()
	}

	// The three counts are independent; run them in parallel.
	env.Logger.DebugContext(ctx, "Counting collections")
	var stats responses.Stats
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		count, err := env.Database.CountUsers(groupCtx)
		stats.Users = count
		return err
	})
	group.Go(func() error {
		count, err := env.Database.CountTracks(groupCtx)
		stats.Tracks = count
		return err
	})
	group.Go(func() error {
		count, err := env.Database.CountPlaylists(groupCtx)
		stats.Playlists = count
		return err
	})
	if err := group.Wait(); err != nil {
		env.Logger.ErrorContext(ctx, "Unable to count collections", slog.Any("error", err))
		melodexHttp.Error(w, "Unable to retrieve stats", http.StatusInternalServerError)
		return
	}

	// Encode response
	env.Logger.DebugContext(ctx, "Encoding response")
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(stats); err != nil {
		env.Logger.ErrorContext(ctx, "Unable to encode response", slog.Any("error", err))
	}
}

func ListUsers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	env, ok := r.Context().Value(melodexEnv.Key).(*melodexEnv.Env)
	if !ok {
		env = melodexEnv.Null()
	}

	// List users
	env.Logger.DebugContext(ctx, "Listing users")
	users, err := env.Database.ListUsers(ctx)
	if err != nil {
		env.Logger.ErrorContext(ctx, "Unable to list users", slog.Any("error", err))
		melodexHttp.Error(w, "Unable to list users", http.StatusInternalServerError)
		return
	}

	publicUsers := make([]models.PublicUser, 0, len(users))
	for _, user := range users {
		publicUsers = append(publicUsers, user.Public())
	}

	// Encode response
	env.Logger.DebugContext(ctx, "Encoding response")
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(responses.ListUsers{Users: publicUsers}); err != nil {
		env.Logger.ErrorContext(ctx, "Unable to encode response", slog.Any("error", err))
	}
}

func UpdateUserRole(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	env, ok := r.Context().Value(melodexEnv.Key).(*melodexEnv.Env)
	if !ok {
		env = melodexEnv.Null()
	}

	caller, ok := requestUser(ctx)
	if !ok {
		env.Logger.ErrorContext(ctx, "No request user in context")
		melodexHttp.Error(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	// Validate parameters
	env.Logger.DebugContext(ctx, "Validating parameters")
	targetID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		env.Logger.ErrorContext(ctx, "Invalid user ID", slog.Any("error", err))
		melodexHttp.Error(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	// Decode request payload
	env.Logger.DebugContext(ctx, "Decoding request body")
	var roleRequest requests.UpdateUserRole
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	defer r.Body.Close()
	if err := melodexJson.DecodeJson(&roleRequest, decoder); err != nil {
		env.Logger.ErrorContext(ctx, "Unable to decode request", slog.Any("error", err))
		melodexHttp.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	// Validate payload
	env.Logger.DebugContext(ctx, "Validating request body")
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(roleRequest); err != nil {
		env.Logger.ErrorContext(ctx, "Failed to validate request body", slog.Any("error", err))
		melodexHttp.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	if err := roleRequest.Role.Validate(); err != nil {
		env.Logger.ErrorContext(ctx, "Invalid role", slog.Any("error", err))
		melodexHttp.Error(w, "Role must be user or admin", http.StatusBadRequest)
		return
	}

	// Admins cannot demote themselves.
	if targetID.Hex() == caller.ID && roleRequest.Role != models.RoleAdmin {
		env.Logger.ErrorContext(ctx, "Caller attempted to demote own account")
		melodexHttp.Error(w, "You cannot demote your own account", http.StatusBadRequest)
		return
	}

	// Retrieve target user
	env.Logger.DebugContext(ctx, "Retrieving target user")
	target, err := env.Database.GetUser(ctx, targetID)
	if errors.Is(err, mongo.ErrNoDocuments) {
		env.Logger.ErrorContext(ctx, "User not found", slog.Any("error", err))
		melodexHttp.Error(w, "User not found", http.StatusNotFound)
		return
	} else if err != nil {
		env.Logger.ErrorContext(ctx, "Unsuccessful query", slog.Any("error", err))
		melodexHttp.Error(w, "Unable to update role", http.StatusInternalServerError)
		return
	}

	// The super admin always keeps the admin role.
	if target.Email == SuperAdminEmail() && roleRequest.Role != models.RoleAdmin {
		env.Logger.ErrorContext(ctx, "Attempted to demote super admin")
		melodexHttp.Error(w, "The super admin account cannot be modified", http.StatusForbidden)
		return
	}

	// Update role
	env.Logger.DebugContext(ctx, "Updating role")
	updated, err := env.Database.UpdateUserRole(ctx, database.UpdateUserRoleParams{
		ID:   targetID,
		Role: roleRequest.Role,
	})
	if errors.Is(err, mongo.ErrNoDocuments) {
		env.Logger.ErrorContext(ctx, "User not found", slog.Any("error", err))
		melodexHttp.Error(w, "User not found", http.StatusNotFound)
		return
	} else if err != nil {
		env.Logger.ErrorContext(ctx, "Unable to update role", slog.Any("error", err))
		melodexHttp.Error(w, "Unable to update role", http.StatusInternalServerError)
		return
	}

	// Encode response
	env.Logger.DebugContext(ctx, "Encoding response")
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(updated.Public()); err != nil {
		env.Logger.ErrorContext(ctx, "Unable to encode response", slog.Any("error", err))
	}
}

func DeleteUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	env, ok := r.Context().Value(melodexEnv.Key).(*melodexEnv.Env)
	if !ok {
		env = melodexEnv.Null()
	}

	caller, ok := requestUser(ctx)
	if !ok {
		env.Logger.ErrorContext(ctx, "No request user in context")
		melodexHttp.Error(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	// Validate parameters
	env.Logger.DebugContext(ctx, "Validating parameters")
	targetID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		env.Logger.ErrorContext(ctx, "Invalid user ID", slog.Any("error", err))
		melodexHttp.Error(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	// Admins cannot delete themselves.
	if targetID.Hex() == caller.ID {
		env.Logger.ErrorContext(ctx, "Caller attempted to delete own account")
		melodexHttp.Error(w, "You cannot delete your own account", http.StatusBadRequest)
		return
	}

	// Retrieve target user
	env.Logger.DebugContext(ctx, "Retrieving target user")
	target, err := env.Database.GetUser(ctx, targetID)
	if errors.Is(err, mongo.ErrNoDocuments) {
		env.Logger.ErrorContext(ctx, "User not found", slog.Any("error", err))
		melodexHttp.Error(w, "User not found", http.StatusNotFound)
		return
	} else if err != nil {
		env.Logger.ErrorContext(ctx, "Unsuccessful query", slog.Any("error", err))
		melodexHttp.Error(w, "Unable to delete user", http.StatusInternalServerError)
		return
	}
	if target.Email == SuperAdminEmail() {
		env.Logger.ErrorContext(ctx, "Attempted to delete super admin")
		melodexHttp.Error(w, "The super admin account cannot be deleted", http.StatusForbidden)
		return
	}

	// Delete user
	env.Logger.DebugContext(ctx, "Deleting user")
	err = env.Database.DeleteUser(ctx, targetID)
	if errors.Is(err, mongo.ErrNoDocuments) {
		env.Logger.ErrorContext(ctx, "User not found", slog.Any("error", err))
		melodexHttp.Error(w, "User not found", http.StatusNotFound)
		return
	} else if err != nil {
		env.Logger.ErrorContext(ctx, "Unable to delete user", slog.Any("error", err))
		melodexHttp.Error(w, "Unable to delete user", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func ListAllPlaylists(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	env, ok := r.Context().Value(melodexEnv.Key).(*melodexEnv.Env)
	if !ok {
		env = melodexEnv.Null()
	}

	// List playlists
	env.Logger.DebugContext(ctx, "Listing playlists")
	playlists, err := env.Database.ListPlaylists(ctx)
	if err != nil {
		env.Logger.ErrorContext(ctx, "Unable to list playlists", slog.Any("error", err))
		melodexHttp.Error(w, "Unable to list playlists", http.StatusInternalServerError)
		return
	}

	// Attach owner identity
	resolved, err := resolveOwners(r, playlists, true)
	if err != nil {
		env.Logger.ErrorContext(ctx, "Unable to resolve owners", slog.Any("error", err))
		melodexHttp.Error(w, "Unable to list playlists", http.StatusInternalServerError)
		return
	}

	// Encode response
	env.Logger.DebugContext(ctx, "Encoding response")
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(responses.ListPlaylists{Playlists: resolved}); err != nil {
		env.Logger.ErrorContext(ctx, "Unable to encode response", slog.Any("error", err))
	}
}
