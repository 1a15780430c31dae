package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"docrev/internal/digest"
	"docrev/internal/logger"
	"docrev/internal/model"
	"docrev/internal/repository"
)

// SharingService manages who, besides the owner, may read a revision.
type SharingService interface {
	// Reconcile makes the grantees of the caller's revision with this hash
	// exactly the users named by emails. Unknown emails are reported, not granted.
	Reconcile(ctx context.Context, ownerID, hash string, emails []string) (*model.ShareResult, error)

	// Grantees lists the current grantees of the caller's revision with this hash.
	Grantees(ctx context.Context, ownerID, hash string) ([]model.User, error)
}

type sharingService struct {
	tx     repository.Transactor
	revs   repository.RevisionRepository
	shares repository.ShareRepository
	users  repository.UserRepository
	access *AccessControl
	log    zerolog.Logger
}

// NewSharingService constructs a SharingService.
func NewSharingService(
	tx repository.Transactor,
	revs repository.RevisionRepository,
	shares repository.ShareRepository,
	users repository.UserRepository,
	access *AccessControl,
	log zerolog.Logger,
) SharingService {
	return &sharingService{
		tx:     tx,
		revs:   revs,
		shares: shares,
		users:  users,
		access: access,
		log:    logger.Component(log, "sharing_service"),
	}
}

// normalizeEmails trims, lowercases and de-duplicates. Blanks are dropped.
func normalizeEmails(emails []string) []string {
	seen := make(map[string]struct{}, len(emails))
	out := make([]string, 0, len(emails))
	for _, e := range emails {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			continue
		}
		if _, ok := seen[e]; ok {
			continue
		}
		seen[e] = struct{}{}
		out = append(out, e)
	}
	sort.Strings(out)
	return out
}

// target returns the caller's newest revision carrying hash.
func (s *sharingService) target(ctx context.Context, ownerID, hash string) (*model.Revision, error) {
	hash = digest.Normalize(hash)
	if !digest.Valid(hash) {
		return nil, fmt.Errorf("%w: hash must be %d hex characters", ErrValidation, digest.Size)
	}
	candidates, err := s.revs.FindByHash(ctx, hash)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w: no document with this hash", ErrNotFound)
	}
	for i := range candidates {
		if err := s.access.AuthorizeOwner(ownerID, &candidates[i]); err == nil {
			return &candidates[i], nil
		}
	}
	return nil, fmt.Errorf("%w: only the owner may manage sharing", ErrForbidden)
}

func (s *sharingService) Reconcile(ctx context.Context, ownerID, hash string, emails []string) (*model.ShareResult, error) {
	rev, err := s.target(ctx, ownerID, hash)
	if err != nil {
		return nil, err
	}
	desired := normalizeEmails(emails)

	var res *model.ShareResult
	err = withConflictRetry(ctx, s.log, "share_reconcile", func() error {
		return s.tx.WithinTx(ctx, func(ctx context.Context) error {
			r, err := s.reconcile(ctx, rev, desired)
			if err != nil {
				return err
			}
			res = r
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("event", "share_reconciled").
		Str("revision_id", rev.ID).
		Int("added", len(res.Added)).
		Int("removed", len(res.Removed)).
		Int("not_found", len(res.NotFound)).
		Msg("")
	return res, nil
}

// reconcile runs inside the transaction; it may run twice, so it builds a fresh result.
func (s *sharingService) reconcile(ctx context.Context, rev *model.Revision, desired []string) (*model.ShareResult, error) {
	res := &model.ShareResult{
		Added:    []string{},
		Removed:  []string{},
		NotFound: []string{},
	}

	current, err := s.shares.ListGrantees(ctx, rev.ID)
	if err != nil {
		return nil, err
	}
	granted := make(map[string]struct{}, len(current))
	for _, u := range current {
		granted[strings.ToLower(u.Email)] = struct{}{}
	}
	want := make(map[string]struct{}, len(desired))
	var missing []string
	for _, e := range desired {
		want[e] = struct{}{}
		if _, ok := granted[e]; !ok {
			missing = append(missing, e)
		}
	}

	if len(missing) > 0 {
		found, err := s.users.FindByEmails(ctx, missing)
		if err != nil {
			return nil, err
		}
		byEmail := make(map[string]model.User, len(found))
		for _, u := range found {
			byEmail[strings.ToLower(u.Email)] = u
		}
		for _, e := range missing {
			u, ok := byEmail[e]
			switch {
			case !ok:
				res.NotFound = append(res.NotFound, e)
			case u.ID == rev.OwnerID:
				// the owner always reads their own revision
			default:
				if err := s.shares.Add(ctx, &model.ShareGrant{
					ID:         uuid.New().String(),
					RevisionID: rev.ID,
					GranteeID:  u.ID,
					CreatedAt:  time.Now().UTC(),
				}); err != nil {
					return nil, err
				}
				res.Added = append(res.Added, e)
			}
		}
	}

	for _, u := range current {
		e := strings.ToLower(u.Email)
		if _, ok := want[e]; ok {
			continue
		}
		if err := s.shares.Remove(ctx, rev.ID, u.ID); err != nil {
			return nil, err
		}
		res.Removed = append(res.Removed, e)
	}

	sort.Strings(res.Added)
	sort.Strings(res.Removed)
	sort.Strings(res.NotFound)
	return res, nil
}

func (s *sharingService) Grantees(ctx context.Context, ownerID, hash string) ([]model.User, error) {
	rev, err := s.target(ctx, ownerID, hash)
	if err != nil {
		return nil, err
	}
	return s.shares.ListGrantees(ctx, rev.ID)
}
