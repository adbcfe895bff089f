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
	melodexEnv "melodex-backend/internal/env"
	melodexHttp "melodex-backend/internal/http"
	melodexJson "melodex-backend/internal/json"
	"melodex-backend/internal/session"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	env, ok := r.Context().Value(melodexEnv.Key).(*melodexEnv.Env)
	if !ok {
		env = melodexEnv.Null()
	}

	// Decode request payload
	env.Logger.DebugContext(ctx, "Decoding request body")
	var registerRequest requests.Register
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	defer r.Body.Close()
	err := melodexJson.DecodeJson(&registerRequest, decoder)
	if err != nil {
		env.Logger.ErrorContext(ctx, "Unable to decode request", slog.Any("error", err))
		melodexHttp.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	// Validate payload
	env.Logger.DebugContext(ctx, "Validating request body")
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(registerRequest); err != nil {
		env.Logger.ErrorContext(ctx, "Failed to validate request body", slog.Any("error", err))
		melodexHttp.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	// Reject taken emails
	env.Logger.DebugContext(ctx, "Checking for existing account")
	_, err = env.Database.GetUserByEmail(ctx, registerRequest.Email)
	if err == nil {
		env.Logger.ErrorContext(ctx, "Email already registered")
		melodexHttp.Error(w, "Email already registered", http.StatusBadRequest)
		return
	} else if !errors.Is(err, mongo.ErrNoDocuments) {
		env.Logger.ErrorContext(ctx, "Unable to look up user", slog.Any("error", err))
		melodexHttp.Error(w, "Unable to register", http.StatusInternalServerError)
		return
	}

	// Hash credentials
	env.Logger.DebugContext(ctx, "Hashing password")
	hash, err := session.HashPassword(registerRequest.Password)
	if err != nil {
		env.Logger.ErrorContext(ctx, "Unable to hash password", slog.Any("error", err))
		melodexHttp.Error(w, "Unable to register", http.StatusInternalServerError)
		return
	}

	// Insert user
	env.Logger.DebugContext(ctx, "Inserting user")
	user, err := env.Database.InsertUser(ctx, models.User{
		Username: registerRequest.Username,
		Email:    registerRequest.Email,
		Password: hash,
		Role:     models.RoleUser,
	})
	if err != nil {
		env.Logger.ErrorContext(ctx, "Unable to insert user", slog.Any("error", err))
		melodexHttp.Error(w, "Unable to register", http.StatusInternalServerError)
		return
	}

	// Mint session
	env.Logger.DebugContext(ctx, "Creating session")
	newSession := session.New(user.ID.Hex())
	if err := env.Database.InsertSession(ctx, newSession); err != nil {
		env.Logger.ErrorContext(ctx, "Unable to insert session", slog.Any("error", err))
		melodexHttp.Error(w, "Unable to register", http.StatusInternalServerError)
		return
	}

	// Encode response
	env.Logger.DebugContext(ctx, "Encoding response")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	err = json.NewEncoder(w).Encode(responses.Register{
		Token: newSession.Token,
		User:  user.Public(),
	})
	if err != nil {
		env.Logger.ErrorContext(ctx, "Unable to encode response", slog.Any("error", err))
		return
	}
}

func Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	env, ok := r.Context().Value(melodexEnv.Key).(*melodexEnv.Env)
	if !ok {
		env = melodexEnv.Null()
	}

	// Decode request payload
	env.Logger.DebugContext(ctx, "Decoding request body")
	var loginRequest requests.Login
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	defer r.Body.Close()
	err := melodexJson.DecodeJson(&loginRequest, decoder)
	if err != nil {
		env.Logger.ErrorContext(ctx, "Unable to decode request", slog.Any("error", err))
		melodexHttp.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	// Validate payload
	env.Logger.DebugContext(ctx, "Validating request body")
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(loginRequest); err != nil {
		env.Logger.ErrorContext(ctx, "Failed to validate request body", slog.Any("error", err))
		melodexHttp.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	// Verify credentials
	env.Logger.DebugContext(ctx, "Retrieving user")
	user, err := env.Database.GetUserByEmail(ctx, loginRequest.Email)
	if errors.Is(err, mongo.ErrNoDocuments) {
		env.Logger.ErrorContext(ctx, "No account for email")
		melodexHttp.Error(w, "Invalid credentials", http.StatusUnauthorized)
		return
	} else if err != nil {
		env.Logger.ErrorContext(ctx, "Unable to look up user", slog.Any("error", err))
		melodexHttp.Error(w, "Unable to login", http.StatusInternalServerError)
		return
	}
	if err := session.CheckPassword(user.Password, loginRequest.Password); err != nil {
		env.Logger.ErrorContext(ctx, "Password mismatch")
		melodexHttp.Error(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}

	// Mint session
	env.Logger.DebugContext(ctx, "Creating session")
	newSession := session.New(user.ID.Hex())
	if err := env.Database.InsertSession(ctx, newSession); err != nil {
		env.Logger.ErrorContext(ctx, "Unable to insert session", slog.Any("error", err))
		melodexHttp.Error(w, "Unable to login", http.StatusInternalServerError)
		return
	}

	// Encode response
	env.Logger.DebugContext(ctx, "Encoding response")
	w.Header().Set("Content-Type", "application/json")
	err = json.NewEncoder(w).Encode(responses.Login{
		Token: newSession.Token,
		User:  user.Public(),
	})
	if err != nil {
		env.Logger.ErrorContext(ctx, "Unable to encode response", slog.Any("error", err))
		return
	}
}

func Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	env, ok := r.Context().Value(melodexEnv.Key).(*melodexEnv.Env)
	if !ok {
		env = melodexEnv.Null()
	}

	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	env.Logger.DebugContext(ctx, "Deleting session")
	if err := env.Database.DeleteSession(ctx, token); err != nil {
		env.Logger.ErrorContext(ctx, "Unable to delete session", slog.Any("error", err))
		melodexHttp.Error(w, "Unable to logout", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func Me(w http.ResponseWriter, r *http.Request) {
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

	userID, err := primitive.ObjectIDFromHex(user.ID)
	if err != nil {
		env.Logger.ErrorContext(ctx, "Invalid user ID", slog.Any("error", err))
		melodexHttp.Error(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	env.Logger.DebugContext(ctx, "Retrieving user")
	dbUser, err := env.Database.GetUser(ctx, userID)
	if errors.Is(err, mongo.ErrNoDocuments) {
		env.Logger.ErrorContext(ctx, "User not found")
		melodexHttp.Error(w, "User not found", http.StatusNotFound)
		return
	} else if err != nil {
		env.Logger.ErrorContext(ctx, "Unable to retrieve user", slog.Any("error", err))
		melodexHttp.Error(w, "Unable to retrieve user", http.StatusInternalServerError)
		return
	}

	env.Logger.DebugContext(ctx, "Encoding response")
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(dbUser.Public()); err != nil {
		env.Logger.ErrorContext(ctx, "Unable to encode response", slog.Any("error", err))
		return
	}
}
