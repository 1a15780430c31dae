package repository

import (
	"context"

	"docrev/internal/model"
)

// RevisionRepository defines data access for revisions using SQL queries only.
// Lookups that match nothing return sql.ErrNoRows.
type RevisionRepository interface {
	// NextVersionNumber returns 0 for an empty family, else max(version_number)+1.
	// Call it inside the transaction that performs the matching Create.
	NextVersionNumber(ctx context.Context, ownerID, url string) (int, error)

	// ExistsWithHash reports whether the family already holds content with this hash.
	ExistsWithHash(ctx context.Context, ownerID, url, hash string) (bool, error)

	// Create inserts a revision. Constraint violations map to ErrDuplicateContent or ErrConflict.
	Create(ctx context.Context, rev *model.Revision) (*model.Revision, error)

	// FindLatest returns the revision with the highest version number in the family.
	FindLatest(ctx context.Context, ownerID, url string) (*model.Revision, error)

	// FindByVersion returns exactly the requested version.
	FindByVersion(ctx context.Context, ownerID, url string, version int) (*model.Revision, error)

	// FindByHash returns every revision carrying hash across all families, newest first.
	FindByHash(ctx context.Context, hash string) ([]model.Revision, error)

	// ListFamilies pages over the owner's distinct URLs, ordered by URL.
	// Total is the number of distinct URLs.
	ListFamilies(ctx context.Context, ownerID string, pq PageQuery) (*PageResult[model.DocumentFamily], error)
}
