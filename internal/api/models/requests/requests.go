// Package for handler request structs

package requests

import (
	"melodex-backend/internal/api/models"
)

type Register struct {
	Username string `json:"username" validate:"required,min=3,max=30"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type Login struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type CreateTrack struct {
	Title    string `json:"title" validate:"required"`
	Artist   string `json:"artist" validate:"required"`
	Album    string `json:"album"`
	Duration int    `json:"duration" validate:"gte=0"`
}

type UpdateTrack struct {
	Title    *string `json:"title" validate:"omitempty,min=1"`
	Artist   *string `json:"artist" validate:"omitempty,min=1"`
	Album    *string `json:"album"`
	Duration *int    `json:"duration" validate:"omitempty,gte=0"`
}

type CreatePlaylist struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description"`
	Cover       string `json:"cover"`
}

type UpdatePlaylist struct {
	Name        *string `json:"name" validate:"omitempty,max=100"`
	Description *string `json:"description"`
	Cover       *string `json:"cover"`
}

type AddPlaylistTrack struct {
	TrackID string `json:"trackId" validate:"required"`
}

type UpdateUserRole struct {
	Role models.Role `json:"role" validate:"required"`
}
