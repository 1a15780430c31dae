package repository

import (
	"context"

	"docrev/internal/model"
)

// UserRepository reads principals provisioned by the identity provider.
type UserRepository interface {
	// FindByEmails returns the users whose lowercased email is in emails. Unknown emails are skipped.
	FindByEmails(ctx context.Context, emails []string) ([]model.User, error)
}
