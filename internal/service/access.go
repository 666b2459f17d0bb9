// Package service contains business logic for the application.
package service

import (
	"context"

	"townsquare/internal/models"
)

// AdminChecker resolves whether a user holds the admin role. Services
// receive it as a callback so they stay decoupled from user storage.
type AdminChecker func(ctx context.Context, userID uint) (bool, error)

// requireOwnerOrAdmin is the shared mutation gate: the resource owner
// always passes, everyone else needs the admin role.
func requireOwnerOrAdmin(ctx context.Context, ownerID, userID uint, isAdmin AdminChecker, message string) error {
	if ownerID == userID {
		return nil
	}
	if isAdmin == nil {
		return models.NewForbiddenError(message)
	}
	admin, err := isAdmin(ctx, userID)
	if err != nil {
		return err
	}
	if !admin {
		return models.NewForbiddenError(message)
	}
	return nil
}

// requireAdmin gates admin-only operations.
func requireAdmin(ctx context.Context, userID uint, isAdmin AdminChecker) error {
	if isAdmin == nil {
		return models.NewForbiddenError("Admin access required")
	}
	admin, err := isAdmin(ctx, userID)
	if err != nil {
		return err
	}
	if !admin {
		return models.NewForbiddenError("Admin access required")
	}
	return nil
}
