// Package for API Handlers

package handlers

import (
	"context"
	"os"

	"melodex-backend/internal/api/models"
)

// Context key under which the authentication middleware stores the
// resolved request user.
const UserKey = "melodex-user"

// DefaultSuperAdminEmail is used when SUPER_ADMIN_EMAIL is not set.
const DefaultSuperAdminEmail = "admin@melodex.local"

// SuperAdminEmail identifies the distinguished account that can never
// be demoted or deleted. Both the role guards and the seed step on
// startup resolve it through here.
func SuperAdminEmail() string {
	if email := os.Getenv("SUPER_ADMIN_EMAIL"); email != "" {
		return email
	}
	return DefaultSuperAdminEmail
}

func requestUser(ctx context.Context) (models.RequestUser, bool) {
	user, ok := ctx.Value(UserKey).(models.RequestUser)
	return user, ok
}
