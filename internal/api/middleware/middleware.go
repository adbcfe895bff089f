// Package for API middleware

package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"melodex-backend/internal/api/handlers"
	"melodex-backend/internal/api/models"
	melodexEnv "melodex-backend/internal/env"
	melodexHttp "melodex-backend/internal/http"
	"melodex-backend/internal/logging"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Custom ResponseWriter that captures the status code
type logResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (w *logResponseWriter) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

// Handles panic recovery
func RecoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		environment, ok := r.Context().Value(melodexEnv.Key).(*melodexEnv.Env)
		if !ok {
			environment = melodexEnv.Null()
		}

		defer func() {
			if err := recover(); err != nil {
				environment.Logger.Error("Panic occurred", slog.Any("error", err))
				melodexHttp.Error(w, "Internal Server Error", http.StatusInternalServerError)
			}
		}()

		next.ServeHTTP(w, r)
	})
}

// Injects the environment object
func InjectEnvironment(env *melodexEnv.Env) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if env == nil {
				env = melodexEnv.Null()
			}
			r = r.WithContext(context.WithValue(r.Context(), melodexEnv.Key, env))
			next.ServeHTTP(w, r)
		})
	}
}

func LogRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		environment, ok := r.Context().Value(melodexEnv.Key).(*melodexEnv.Env)
		if !ok {
			environment = melodexEnv.Null()
		}

		r = r.WithContext(logging.AppendCtx(r.Context(), slog.String("method", r.Method)))
		r = r.WithContext(logging.AppendCtx(r.Context(), slog.String("path", r.URL.RequestURI())))
		lrw := &logResponseWriter{w, http.StatusOK}
		environment.Logger.InfoContext(r.Context(), "Request received")
		next.ServeHTTP(lrw, r)
		environment.Logger.LogAttrs(
			r.Context(),
			slog.LevelInfo,
			"Request completed",
			slog.Duration("duration", time.Since(start)),
			slog.Int("status", lrw.statusCode),
		)
	})
}

// Resolves the session token into a request user and stores it in the
// context. Requests without a live session are rejected with 401.
func Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		environment, ok := ctx.Value(melodexEnv.Key).(*melodexEnv.Env)
		if !ok {
			environment = melodexEnv.Null()
		}

		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		if token == "" {
			environment.Logger.ErrorContext(ctx, "Missing session token")
			melodexHttp.Error(w, "Authentication required", http.StatusUnauthorized)
			return
		}

		session, err := environment.Database.GetSession(ctx, token)
		if errors.Is(err, mongo.ErrNoDocuments) {
			environment.Logger.ErrorContext(ctx, "Unknown session token")
			melodexHttp.Error(w, "Invalid session", http.StatusUnauthorized)
			return
		} else if err != nil {
			environment.Logger.ErrorContext(ctx, "Unable to look up session", slog.Any("error", err))
			melodexHttp.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		if session.Expired(time.Now()) {
			environment.Logger.ErrorContext(ctx, "Session expired")
			melodexHttp.Error(w, "Session expired", http.StatusUnauthorized)
			return
		}

		userID, err := primitive.ObjectIDFromHex(session.UserID)
		if err != nil {
			environment.Logger.ErrorContext(ctx, "Malformed user id in session", slog.Any("error", err))
			melodexHttp.Error(w, "Invalid session", http.StatusUnauthorized)
			return
		}
		user, err := environment.Database.GetUser(ctx, userID)
		if errors.Is(err, mongo.ErrNoDocuments) {
			environment.Logger.ErrorContext(ctx, "Session user no longer exists")
			melodexHttp.Error(w, "Invalid session", http.StatusUnauthorized)
			return
		} else if err != nil {
			environment.Logger.ErrorContext(ctx, "Unable to look up user", slog.Any("error", err))
			melodexHttp.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		requestUser := models.RequestUser{
			ID:    user.ID.Hex(),
			Email: user.Email,
			Role:  user.Role,
		}
		r = r.WithContext(context.WithValue(ctx, handlers.UserKey, requestUser))
		r = r.WithContext(logging.AppendCtx(r.Context(), slog.String("user", requestUser.ID)))
		next.ServeHTTP(w, r)
	})
}

// Rejects authenticated users without the admin role.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		environment, ok := ctx.Value(melodexEnv.Key).(*melodexEnv.Env)
		if !ok {
			environment = melodexEnv.Null()
		}

		user, ok := ctx.Value(handlers.UserKey).(models.RequestUser)
		if !ok {
			environment.Logger.ErrorContext(ctx, "No request user in context")
			melodexHttp.Error(w, "Authentication required", http.StatusUnauthorized)
			return
		}
		if !user.IsAdmin() {
			environment.Logger.ErrorContext(ctx, "Admin role required")
			melodexHttp.Error(w, "Admin access required", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func AddRoutes(router *mux.Router, env *melodexEnv.Env) {
	router.Use(InjectEnvironment(env), RecoverMiddleware, LogRequest)

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}).Methods("GET")

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/auth/register", handlers.Register).Methods("POST")
	api.HandleFunc("/auth/login", handlers.Login).Methods("POST")

	api.HandleFunc("/tracks", handlers.ListTracks).Methods("GET")
	api.HandleFunc("/tracks", handlers.CreateTrack).Methods("POST")
	api.HandleFunc("/tracks/{id}", handlers.GetTrack).Methods("GET")
	api.HandleFunc("/tracks/{id}", handlers.UpdateTrack).Methods("PUT")
	api.HandleFunc("/tracks/{id}", handlers.DeleteTrack).Methods("DELETE")

	authed := api.NewRoute().Subrouter()
	authed.Use(Authenticate)
	authed.HandleFunc("/auth/logout", handlers.Logout).Methods("POST")
	authed.HandleFunc("/auth/me", handlers.Me).Methods("GET")
	authed.HandleFunc("/playlists", handlers.ListPlaylists).Methods("GET")
	authed.HandleFunc("/playlists", handlers.CreatePlaylist).Methods("POST")
	authed.HandleFunc("/playlists/{id}", handlers.GetPlaylist).Methods("GET")
	authed.HandleFunc("/playlists/{id}", handlers.UpdatePlaylist).Methods("PUT")
	authed.HandleFunc("/playlists/{id}", handlers.DeletePlaylist).Methods("DELETE")
	authed.HandleFunc("/playlists/{id}/tracks", handlers.AddPlaylistTrack).Methods("POST")
	authed.HandleFunc("/playlists/{id}/tracks/{trackId}", handlers.RemovePlaylistTrack).Methods("DELETE")

	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(Authenticate, RequireAdmin)
	admin.HandleFunc("/stats", handlers.GetStats).Methods("GET")
	admin.HandleFunc("/users", handlers.ListUsers).Methods("GET")
	admin.HandleFunc("/users/{id}/role", handlers.UpdateUserRole).Methods("PATCH")
	admin.HandleFunc("/users/{id}", handlers.DeleteUser).Methods("DELETE")
	admin.HandleFunc("/playlists", handlers.ListAllPlaylists).Methods("GET")
}
