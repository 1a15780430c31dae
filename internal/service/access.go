package service

import (
	"context"
	"fmt"

	"docrev/internal/model"
	"docrev/internal/repository"
)

// AccessControl decides who may read a revision. A user reads a revision
// they own or one that carries a share grant for them. Nothing else.
type AccessControl struct {
	shares repository.ShareRepository
}

// NewAccessControl constructs an AccessControl backed by the grant table.
func NewAccessControl(shares repository.ShareRepository) *AccessControl {
	return &AccessControl{shares: shares}
}

// CanRead reports whether userID may read rev.
func (a *AccessControl) CanRead(ctx context.Context, userID string, rev *model.Revision) (bool, error) {
	if rev == nil || userID == "" {
		return false, nil
	}
	if rev.OwnerID == userID {
		return true, nil
	}
	ok, err := a.shares.HasGrant(ctx, rev.ID, userID)
	if err != nil {
		return false, fmt.Errorf("check grant: %w", err)
	}
	return ok, nil
}

// Authorize returns ErrForbidden unless userID may read rev.
func (a *AccessControl) Authorize(ctx context.Context, userID string, rev *model.Revision) error {
	ok, err := a.CanRead(ctx, userID, rev)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: revision is not shared with you", ErrForbidden)
	}
	return nil
}

// AuthorizeOwner returns ErrForbidden unless userID owns rev.
func (a *AccessControl) AuthorizeOwner(userID string, rev *model.Revision) error {
	if rev == nil || userID == "" || rev.OwnerID != userID {
		return fmt.Errorf("%w: only the owner may do this", ErrForbidden)
	}
	return nil
}

// SelectReadable picks the revision userID should get among candidates that
// share a content hash. Candidates are expected newest first. Owned
// revisions win over granted ones.
//
// No candidates is ErrNotFound; candidates that exist but none readable is ErrForbidden.
func (a *AccessControl) SelectReadable(ctx context.Context, userID string, candidates []model.Revision) (*model.Revision, error) {
	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w: no document with this hash", ErrNotFound)
	}
	for i := range candidates {
		if candidates[i].OwnerID == userID {
			return &candidates[i], nil
		}
	}
	for i := range candidates {
		ok, err := a.CanRead(ctx, userID, &candidates[i])
		if err != nil {
			return nil, err
		}
		if ok {
			return &candidates[i], nil
		}
	}
	return nil, fmt.Errorf("%w: document is not shared with you", ErrForbidden)
}
