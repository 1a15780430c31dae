package repository

import (
	"context"

	"docrev/internal/model"
)

// ShareRepository persists grant edges between revisions and users.
type ShareRepository interface {
	// ListGrantees returns the users currently granted on revisionID, ordered by email.
	ListGrantees(ctx context.Context, revisionID string) ([]model.User, error)

	// GranteesByRevision batches ListGrantees. Revisions without grants are absent from the map.
	GranteesByRevision(ctx context.Context, revisionIDs []string) (map[string][]model.User, error)

	// HasGrant reports whether userID holds a grant on revisionID.
	HasGrant(ctx context.Context, revisionID, userID string) (bool, error)

	// Add inserts a grant. A duplicate (revision, grantee) pair maps to ErrConflict.
	Add(ctx context.Context, grant *model.ShareGrant) error

	// Remove deletes the grant if present.
	Remove(ctx context.Context, revisionID, granteeID string) error
}
