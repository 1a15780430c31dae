package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"docrev/internal/digest"
	"docrev/internal/logger"
	"docrev/internal/model"
	"docrev/internal/repository"
	"docrev/internal/storage"
)

// UploadInput describes one upload into the family (OwnerID, URL).
// Size may be -1 when the length is not known up front.
type UploadInput struct {
	OwnerID     string
	URL         string
	FileName    string
	ContentType string
	Size        int64
	Reader      io.Reader
}

// Link is a time-limited download URL for a revision's bytes.
type Link struct {
	URL       string `json:"url"`
	ExpiresIn int    `json:"expires_in"`
}

// RevisionService is the revision ledger: it appends immutable revisions to
// document families and resolves them by URL and selector or by content hash.
type RevisionService interface {
	// Upload stores the bytes, then records a new revision with the next version number.
	// Content identical to any revision already in the family is rejected with ErrDuplicateContent
	// and leaves no trace in storage.
	Upload(ctx context.Context, in UploadInput) (*model.Revision, error)

	// Resolve returns the revision of the caller's family picked by sel.
	Resolve(ctx context.Context, ownerID, url string, sel Selector) (*model.Revision, error)

	// ResolveByHash returns a revision with this content that userID may read.
	ResolveByHash(ctx context.Context, userID, hash string) (*model.Revision, error)

	// Open streams the revision's bytes. The caller closes the reader.
	Open(ctx context.Context, rev *model.Revision) (io.ReadCloser, storage.ObjectInfo, error)

	// Link presigns a download URL for the revision ResolveByHash would return.
	Link(ctx context.Context, userID, hash string) (*Link, error)
}

type revisionService struct {
	store   storage.Storage
	tx      repository.Transactor
	revs    repository.RevisionRepository
	access  *AccessControl
	linkTTL time.Duration
	log     zerolog.Logger
}

// NewRevisionService constructs a RevisionService.
func NewRevisionService(
	store storage.Storage,
	tx repository.Transactor,
	revs repository.RevisionRepository,
	access *AccessControl,
	linkTTL time.Duration,
	log zerolog.Logger,
) RevisionService {
	return &revisionService{
		store:   store,
		tx:      tx,
		revs:    revs,
		access:  access,
		linkTTL: linkTTL,
		log:     logger.Component(log, "revision_service"),
	}
}

// hashNamespace is the first URL segment routed to lookups by content hash.
const hashNamespace = "hash"

// normalizeURL strips surrounding slashes so "a/b/" and "/a/b" name the same family.
func normalizeURL(url string) string {
	return strings.Trim(strings.TrimSpace(url), "/")
}

// ReservedURL reports whether url falls under the hash lookup namespace.
// Such a family could be written but never read back by location.
// Routing is case-insensitive, so the check is too.
func ReservedURL(url string) bool {
	first, _, _ := strings.Cut(strings.ToLower(normalizeURL(url)), "/")
	return first == hashNamespace
}

func (s *revisionService) Upload(ctx context.Context, in UploadInput) (*model.Revision, error) {
	if in.Reader == nil {
		return nil, fmt.Errorf("%w: reader is nil", ErrValidation)
	}
	if in.OwnerID == "" {
		return nil, fmt.Errorf("%w: owner is required", ErrValidation)
	}
	url := normalizeURL(in.URL)
	if url == "" {
		return nil, fmt.Errorf("%w: url is required", ErrValidation)
	}
	if ReservedURL(url) {
		return nil, fmt.Errorf("%w: url must not start with %q", ErrValidation, hashNamespace+"/")
	}
	fileName := path.Base(strings.TrimSpace(in.FileName))
	if fileName == "." || fileName == "/" {
		fileName = path.Base(url)
	}

	key := storage.NewKey(fileName)
	d := digest.New()
	objInfo, err := s.store.Put(ctx, key, io.TeeReader(in.Reader, d), storage.PutObjectOptions{
		Size:        in.Size,
		ContentType: in.ContentType,
		Metadata: map[string]string{
			"original-filename": fileName,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("upload to storage: %w", err)
	}

	rev := &model.Revision{
		ID:          uuid.New().String(),
		OwnerID:     in.OwnerID,
		URL:         url,
		FileName:    fileName,
		ContentHash: d.Hex(),
		BlobRef:     objInfo.Key,
		Size:        d.Len(),
		ContentType: in.ContentType,
		CreatedAt:   time.Now().UTC(),
	}

	var stored *model.Revision
	err = withConflictRetry(ctx, s.log, "upload", func() error {
		return s.tx.WithinTx(ctx, func(ctx context.Context) error {
			exists, err := s.revs.ExistsWithHash(ctx, rev.OwnerID, rev.URL, rev.ContentHash)
			if err != nil {
				return err
			}
			if exists {
				return repository.ErrDuplicateContent
			}
			next, err := s.revs.NextVersionNumber(ctx, rev.OwnerID, rev.URL)
			if err != nil {
				return err
			}
			rev.VersionNumber = next
			stored, err = s.revs.Create(ctx, rev)
			if err != nil {
				return err
			}
			// a fresh revision has no grants yet
			stored.SharedUsers = []model.User{}
			return nil
		})
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateContent) {
			err = fmt.Errorf("%w: %s already has a revision with hash %s", ErrDuplicateContent, url, rev.ContentHash)
		} else if !errors.Is(err, ErrConflict) {
			err = fmt.Errorf("db save failed: %w", err)
		}
		// Rollback: delete the object from storage
		if delErr := s.store.Delete(ctx, objInfo.Key); delErr != nil {
			s.log.Error().
				Str("event", "blob_rollback_failed").
				Str("blob_ref", objInfo.Key).
				Err(delErr).
				Msg("")
			return nil, fmt.Errorf("%w; rollback delete failed: %v", err, delErr)
		}
		return nil, err
	}
	return stored, nil
}

func (s *revisionService) Resolve(ctx context.Context, ownerID, url string, sel Selector) (*model.Revision, error) {
	url = normalizeURL(url)
	if url == "" {
		return nil, fmt.Errorf("%w: url is required", ErrValidation)
	}

	var (
		rev *model.Revision
		err error
	)
	if v, exact := sel.Version(); exact {
		rev, err = s.revs.FindByVersion(ctx, ownerID, url, v)
	} else {
		rev, err = s.revs.FindLatest(ctx, ownerID, url)
	}
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s has no revision %s", ErrNotFound, url, sel)
		}
		return nil, err
	}
	return rev, nil
}

func (s *revisionService) ResolveByHash(ctx context.Context, userID, hash string) (*model.Revision, error) {
	hash = digest.Normalize(hash)
	if !digest.Valid(hash) {
		return nil, fmt.Errorf("%w: hash must be %d hex characters", ErrValidation, digest.Size)
	}
	candidates, err := s.revs.FindByHash(ctx, hash)
	if err != nil {
		return nil, err
	}
	return s.access.SelectReadable(ctx, userID, candidates)
}

func (s *revisionService) Open(ctx context.Context, rev *model.Revision) (io.ReadCloser, storage.ObjectInfo, error) {
	rc, info, err := s.store.Get(ctx, rev.BlobRef)
	if err != nil {
		return nil, storage.ObjectInfo{}, fmt.Errorf("open blob: %w", err)
	}
	return rc, info, nil
}

func (s *revisionService) Link(ctx context.Context, userID, hash string) (*Link, error) {
	rev, err := s.ResolveByHash(ctx, userID, hash)
	if err != nil {
		return nil, err
	}
	u, err := s.store.PresignGet(ctx, rev.BlobRef, s.linkTTL)
	if err != nil {
		return nil, fmt.Errorf("presign: %w", err)
	}
	return &Link{URL: u, ExpiresIn: int(s.linkTTL.Seconds())}, nil
}
