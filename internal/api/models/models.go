package models

import (
	"fmt"
	"slices"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

var roles = [2]Role{RoleUser, RoleAdmin}

func (r Role) Validate() error {
	if !slices.Contains(roles[:], r) {
		return fmt.Errorf("Invalid role: %s", r)
	}
	return nil
}

type Track struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title     string             `bson:"title" json:"title"`
	Artist    string             `bson:"artist" json:"artist"`
	Album     string             `bson:"album,omitempty" json:"album,omitempty"`
	Duration  int                `bson:"duration,omitempty" json:"duration,omitempty"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Username  string             `bson:"username" json:"username"`
	Email     string             `bson:"email" json:"email"`
	Password  string             `bson:"password" json:"-"`
	Role      Role               `bson:"role" json:"role"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// User as exposed by admin listings and /auth/me. Never carries the
// password hash.
type PublicUser struct {
	ID        primitive.ObjectID `json:"id"`
	Username  string             `json:"username"`
	Email     string             `json:"email"`
	Role      Role               `json:"role"`
	CreatedAt time.Time          `json:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt"`
}

func (u User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

type Playlist struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Cover       string             `bson:"cover,omitempty" json:"cover,omitempty"`
	UserID      string             `bson:"userId" json:"userId"`
	Tracks      []string           `bson:"tracks" json:"tracks"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

type Session struct {
	Token     string    `bson:"_id" json:"token"`
	UserID    string    `bson:"userId" json:"userId"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	ExpiresAt time.Time `bson:"expiresAt" json:"expiresAt"`
}

func (s Session) Expired(now time.Time) bool {
	return s.ExpiresAt.Before(now)
}

// Identity resolved once per request by the authentication middleware
// and passed into handlers through the request context.
type RequestUser struct {
	ID    string
	Email string
	Role  Role
}

func (u RequestUser) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Appends trackID to the membership set. Returns the (possibly new)
// slice and whether it changed; adding a present id is a no-op.
func AddTrackID(tracks []string, trackID string) ([]string, bool) {
	if slices.Contains(tracks, trackID) {
		return tracks, false
	}
	return append(tracks, trackID), true
}

// Removes every occurrence of trackID from the membership set. Absent
// ids are ignored; remaining members keep their order.
func RemoveTrackID(tracks []string, trackID string) []string {
	out := make([]string, 0, len(tracks))
	for _, id := range tracks {
		if id != trackID {
			out = append(out, id)
		}
	}
	return out
}
