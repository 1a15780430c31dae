package postgres

import (
	"context"
	"database/sql"
	"strconv"
	"strings"

	"docrev/internal/model"
	"docrev/internal/repository"
)

// SharePostgres is a PostgreSQL implementation of repository.ShareRepository.
type SharePostgres struct {
	db *sql.DB
}

// NewSharePostgres creates a new SharePostgres repository.
func NewSharePostgres(db *sql.DB) *SharePostgres {
	return &SharePostgres{db: db}
}

var _ repository.ShareRepository = (*SharePostgres)(nil)

// ListGrantees returns the users granted on a revision.
func (r *SharePostgres) ListGrantees(ctx context.Context, revisionID string) ([]model.User, error) {
	const q = `
		SELECT u.id, u.email, u.name, u.created_at
		FROM share_grants g
		JOIN users u ON u.id = g.grantee_id
		WHERE g.revision_id = $1
		ORDER BY u.email
	`
	rows, err := conn(ctx, r.db).QueryContext(ctx, q, revisionID)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()

	users := make([]model.User, 0)
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Email, &u.Name, &u.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, translate(err)
	}
	return users, nil
}

// GranteesByRevision loads the grantees of many revisions in one query.
func (r *SharePostgres) GranteesByRevision(ctx context.Context, revisionIDs []string) (map[string][]model.User, error) {
	out := make(map[string][]model.User)
	if len(revisionIDs) == 0 {
		return out, nil
	}

	marks := make([]string, len(revisionIDs))
	args := make([]any, len(revisionIDs))
	for i, id := range revisionIDs {
		marks[i] = "$" + strconv.Itoa(i+1)
		args[i] = id
	}
	q := `
		SELECT g.revision_id, u.id, u.email, u.name, u.created_at
		FROM share_grants g
		JOIN users u ON u.id = g.grantee_id
		WHERE g.revision_id IN (` + strings.Join(marks, ", ") + `)
		ORDER BY g.revision_id, u.email
	`
	rows, err := conn(ctx, r.db).QueryContext(ctx, q, args...)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			revID string
			u     model.User
		)
		if err := rows.Scan(&revID, &u.ID, &u.Email, &u.Name, &u.CreatedAt); err != nil {
			return nil, err
		}
		out[revID] = append(out[revID], u)
	}
	if err := rows.Err(); err != nil {
		return nil, translate(err)
	}
	return out, nil
}

// HasGrant checks a single (revision, grantee) edge.
func (r *SharePostgres) HasGrant(ctx context.Context, revisionID, userID string) (bool, error) {
	const q = `
		SELECT EXISTS (
			SELECT 1 FROM share_grants WHERE revision_id = $1 AND grantee_id = $2
		)
	`
	var ok bool
	if err := conn(ctx, r.db).QueryRowContext(ctx, q, revisionID, userID).Scan(&ok); err != nil {
		return false, err
	}
	return ok, nil
}

// Add inserts a grant edge.
func (r *SharePostgres) Add(ctx context.Context, grant *model.ShareGrant) error {
	const q = `
		INSERT INTO share_grants (id, revision_id, grantee_id, created_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err := conn(ctx, r.db).ExecContext(ctx, q, grant.ID, grant.RevisionID, grant.GranteeID, grant.CreatedAt)
	return translate(err)
}

// Remove deletes a grant edge. Missing edges are not an error.
func (r *SharePostgres) Remove(ctx context.Context, revisionID, granteeID string) error {
	const q = `DELETE FROM share_grants WHERE revision_id = $1 AND grantee_id = $2`
	_, err := conn(ctx, r.db).ExecContext(ctx, q, revisionID, granteeID)
	return translate(err)
}
