package postgres

import (
	"context"
	"database/sql"

	"docrev/internal/model"
	"docrev/internal/repository"
)

const revisionColumns = `id, owner_id, url, version_number, file_name, content_hash, blob_ref, size, content_type, created_at`

// RevisionPostgres is a PostgreSQL implementation of repository.RevisionRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type RevisionPostgres struct {
	db *sql.DB
}

// NewRevisionPostgres creates a new RevisionPostgres repository.
func NewRevisionPostgres(db *sql.DB) *RevisionPostgres {
	return &RevisionPostgres{db: db}
}

var _ repository.RevisionRepository = (*RevisionPostgres)(nil)

type scanner interface {
	Scan(dest ...any) error
}

func scanRevision(s scanner) (*model.Revision, error) {
	var r model.Revision
	if err := s.Scan(
		&r.ID,
		&r.OwnerID,
		&r.URL,
		&r.VersionNumber,
		&r.FileName,
		&r.ContentHash,
		&r.BlobRef,
		&r.Size,
		&r.ContentType,
		&r.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &r, nil
}

// NextVersionNumber computes max+1 for the family.
func (r *RevisionPostgres) NextVersionNumber(ctx context.Context, ownerID, url string) (int, error) {
	const q = `
		SELECT COALESCE(MAX(version_number) + 1, 0)
		FROM revisions
		WHERE owner_id = $1 AND url = $2
	`
	var next int
	if err := conn(ctx, r.db).QueryRowContext(ctx, q, ownerID, url).Scan(&next); err != nil {
		return 0, translate(err)
	}
	return next, nil
}

// ExistsWithHash reports whether the family already stores content with this hash.
func (r *RevisionPostgres) ExistsWithHash(ctx context.Context, ownerID, url, hash string) (bool, error) {
	const q = `
		SELECT EXISTS (
			SELECT 1 FROM revisions
			WHERE owner_id = $1 AND url = $2 AND content_hash = $3
		)
	`
	var exists bool
	if err := conn(ctx, r.db).QueryRowContext(ctx, q, ownerID, url, hash).Scan(&exists); err != nil {
		return false, translate(err)
	}
	return exists, nil
}

// Create inserts a new revision row and returns the stored record.
func (r *RevisionPostgres) Create(ctx context.Context, rev *model.Revision) (*model.Revision, error) {
	const q = `
		INSERT INTO revisions (` + revisionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING ` + revisionColumns
	row := conn(ctx, r.db).QueryRowContext(ctx, q,
		rev.ID,
		rev.OwnerID,
		rev.URL,
		rev.VersionNumber,
		rev.FileName,
		rev.ContentHash,
		rev.BlobRef,
		rev.Size,
		rev.ContentType,
		rev.CreatedAt,
	)
	out, err := scanRevision(row)
	if err != nil {
		return nil, translate(err)
	}
	return out, nil
}

// FindLatest fetches the highest version of a family.
func (r *RevisionPostgres) FindLatest(ctx context.Context, ownerID, url string) (*model.Revision, error) {
	const q = `
		SELECT ` + revisionColumns + `
		FROM revisions
		WHERE owner_id = $1 AND url = $2
		ORDER BY version_number DESC
		LIMIT 1
	`
	return scanRevision(conn(ctx, r.db).QueryRowContext(ctx, q, ownerID, url))
}

// FindByVersion fetches one exact version of a family.
func (r *RevisionPostgres) FindByVersion(ctx context.Context, ownerID, url string, version int) (*model.Revision, error) {
	const q = `
		SELECT ` + revisionColumns + `
		FROM revisions
		WHERE owner_id = $1 AND url = $2 AND version_number = $3
	`
	return scanRevision(conn(ctx, r.db).QueryRowContext(ctx, q, ownerID, url, version))
}

// FindByHash returns all revisions sharing a content hash, newest first.
func (r *RevisionPostgres) FindByHash(ctx context.Context, hash string) ([]model.Revision, error) {
	const q = `
		SELECT ` + revisionColumns + `
		FROM revisions
		WHERE content_hash = $1
		ORDER BY created_at DESC, id DESC
	`
	rows, err := conn(ctx, r.db).QueryContext(ctx, q, hash)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Revision, 0)
	for rows.Next() {
		rev, err := scanRevision(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *rev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// ListFamilies pages over distinct URLs and returns each URL with all its revisions.
func (r *RevisionPostgres) ListFamilies(ctx context.Context, ownerID string, pq repository.PageQuery) (*repository.PageResult[model.DocumentFamily], error) {
	db := conn(ctx, r.db)

	const qCount = `SELECT COUNT(DISTINCT url) FROM revisions WHERE owner_id = $1`
	var total int
	if err := db.QueryRowContext(ctx, qCount, ownerID).Scan(&total); err != nil {
		return nil, err
	}

	const qList = `
		WITH page AS (
			SELECT url FROM revisions
			WHERE owner_id = $1
			GROUP BY url
			ORDER BY url
			LIMIT $2 OFFSET $3
		)
		SELECT r.id, r.owner_id, r.url, r.version_number, r.file_name, r.content_hash,
			r.blob_ref, r.size, r.content_type, r.created_at
		FROM revisions r
		JOIN page p ON p.url = r.url
		WHERE r.owner_id = $1
		ORDER BY r.url, r.version_number
	`
	rows, err := db.QueryContext(ctx, qList, ownerID, pq.Limit, pq.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.DocumentFamily, 0)
	for rows.Next() {
		rev, err := scanRevision(rows)
		if err != nil {
			return nil, err
		}
		// rows arrive grouped by url
		if n := len(items); n == 0 || items[n-1].URL != rev.URL {
			items = append(items, model.DocumentFamily{URL: rev.URL})
		}
		last := &items[len(items)-1]
		last.Revisions = append(last.Revisions, *rev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &repository.PageResult[model.DocumentFamily]{
		Items: items,
		Total: total,
	}, nil
}
