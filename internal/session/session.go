// Package session provides opaque session tokens and credential hashing.

package session

import (
	"time"

	"melodex-backend/internal/api/models"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Sessions older than this are treated as absent.
const TTL = 7 * 24 * time.Hour

// Mints a session for the given user, keyed by a fresh opaque token.
func New(userID string) models.Session {
	now := time.Now().UTC()
	return models.Session{
		Token:     uuid.NewString(),
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(TTL),
	}
}

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func CheckPassword(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}
