package service

import (
	"context"
	"fmt"

	"docrev/internal/model"
	"docrev/internal/repository"
)

// DefaultPageSize is used when a CatalogService is built with a non-positive page size.
const DefaultPageSize = 10

// CatalogPage is one page of document families.
type CatalogPage struct {
	Count    int                    `json:"count"`
	Page     int                    `json:"page"`
	PageSize int                    `json:"page_size"`
	HasNext  bool                   `json:"has_next"`
	Results  []model.DocumentFamily `json:"results"`
}

// CatalogService lists the document families a user can browse.
type CatalogService interface {
	// ListAccessible returns page (1-based) of the user's families ordered by URL.
	ListAccessible(ctx context.Context, userID string, page int) (*CatalogPage, error)
}

type catalogService struct {
	revs     repository.RevisionRepository
	shares   repository.ShareRepository
	pageSize int
}

// NewCatalogService constructs a CatalogService paging pageSize families at a time.
// Each listed revision carries its grantees.
func NewCatalogService(revs repository.RevisionRepository, shares repository.ShareRepository, pageSize int) CatalogService {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &catalogService{revs: revs, shares: shares, pageSize: pageSize}
}

func (s *catalogService) ListAccessible(ctx context.Context, userID string, page int) (*CatalogPage, error) {
	if page < 1 {
		return nil, fmt.Errorf("%w: page must be >= 1, got %d", ErrValidation, page)
	}
	offset := (page - 1) * s.pageSize
	if offset/s.pageSize != page-1 {
		return nil, fmt.Errorf("%w: page %d is out of range", ErrValidation, page)
	}

	res, err := s.revs.ListFamilies(ctx, userID, repository.PageQuery{Limit: s.pageSize, Offset: offset})
	if err != nil {
		return nil, err
	}
	items := res.Items
	if items == nil {
		items = []model.DocumentFamily{}
	}
	if err := s.attachGrantees(ctx, items); err != nil {
		return nil, err
	}
	return &CatalogPage{
		Count:    res.Total,
		Page:     page,
		PageSize: s.pageSize,
		HasNext:  offset+len(items) < res.Total,
		Results:  items,
	}, nil
}

// attachGrantees fills SharedUsers on every revision of families, never leaving it nil.
func (s *catalogService) attachGrantees(ctx context.Context, families []model.DocumentFamily) error {
	var ids []string
	for _, f := range families {
		for _, rev := range f.Revisions {
			ids = append(ids, rev.ID)
		}
	}
	if len(ids) == 0 {
		return nil
	}

	byRev, err := s.shares.GranteesByRevision(ctx, ids)
	if err != nil {
		return fmt.Errorf("load grantees: %w", err)
	}
	for i := range families {
		revs := families[i].Revisions
		for j := range revs {
			users := byRev[revs[j].ID]
			if users == nil {
				users = []model.User{}
			}
			revs[j].SharedUsers = users
		}
	}
	return nil
}
