package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"docrev/internal/model"
	"docrev/internal/repository"
	repoMocks "docrev/internal/repository/mocks"
)

type sharingMocks struct {
	tx     *repoMocks.MockTransactor
	revs   *repoMocks.MockRevisionRepository
	shares *repoMocks.MockShareRepository
	users  *repoMocks.MockUserRepository
}

func newSharing() (SharingService, sharingMocks) {
	m := sharingMocks{
		tx:     new(repoMocks.MockTransactor),
		revs:   new(repoMocks.MockRevisionRepository),
		shares: new(repoMocks.MockShareRepository),
		users:  new(repoMocks.MockUserRepository),
	}
	svc := NewSharingService(m.tx, m.revs, m.shares, m.users, NewAccessControl(m.shares), zerolog.Nop())
	return svc, m
}

func grantFor(revID, granteeID string) interface{} {
	return mock.MatchedBy(func(g *model.ShareGrant) bool {
		return g.RevisionID == revID && g.GranteeID == granteeID && g.ID != ""
	})
}

func TestSharingService_Reconcile(t *testing.T) {
	ctx := context.Background()
	rev := model.Revision{ID: "r1", OwnerID: "alice", ContentHash: helloHash}
	alice := model.User{ID: "alice", Email: "alice@example.com"}
	bob := model.User{ID: "bob", Email: "bob@example.com"}
	carol := model.User{ID: "carol", Email: "carol@example.com"}

	tests := []struct {
		name       string
		caller     string
		emails     []string
		setupMocks func(m sharingMocks)
		wantErr    error
		want       *model.ShareResult
	}{
		{
			name:   "grant new users and report unknown",
			caller: "alice",
			emails: []string{" Bob@Example.com ", "carol@example.com", "bob@example.com", "", "ghost@example.com"},
			setupMocks: func(m sharingMocks) {
				m.revs.On("FindByHash", ctx, helloHash).Return([]model.Revision{rev}, nil)
				m.tx.On("WithinTx", ctx).Return(nil)
				m.shares.On("ListGrantees", ctx, "r1").Return([]model.User{}, nil)
				m.users.On("FindByEmails", ctx, []string{"bob@example.com", "carol@example.com", "ghost@example.com"}).
					Return([]model.User{bob, carol}, nil)
				m.shares.On("Add", ctx, grantFor("r1", "bob")).Return(nil)
				m.shares.On("Add", ctx, grantFor("r1", "carol")).Return(nil)
			},
			want: &model.ShareResult{
				Added:    []string{"bob@example.com", "carol@example.com"},
				Removed:  []string{},
				NotFound: []string{"ghost@example.com"},
			},
		},
		{
			name:   "replace grantee set",
			caller: "alice",
			emails: []string{"carol@example.com"},
			setupMocks: func(m sharingMocks) {
				m.revs.On("FindByHash", ctx, helloHash).Return([]model.Revision{rev}, nil)
				m.tx.On("WithinTx", ctx).Return(nil)
				m.shares.On("ListGrantees", ctx, "r1").Return([]model.User{bob}, nil)
				m.users.On("FindByEmails", ctx, []string{"carol@example.com"}).Return([]model.User{carol}, nil)
				m.shares.On("Add", ctx, grantFor("r1", "carol")).Return(nil)
				m.shares.On("Remove", ctx, "r1", "bob").Return(nil)
			},
			want: &model.ShareResult{
				Added:    []string{"carol@example.com"},
				Removed:  []string{"bob@example.com"},
				NotFound: []string{},
			},
		},
		{
			name:   "owner email is ignored",
			caller: "alice",
			emails: []string{"alice@example.com"},
			setupMocks: func(m sharingMocks) {
				m.revs.On("FindByHash", ctx, helloHash).Return([]model.Revision{rev}, nil)
				m.tx.On("WithinTx", ctx).Return(nil)
				m.shares.On("ListGrantees", ctx, "r1").Return([]model.User{}, nil)
				m.users.On("FindByEmails", ctx, []string{"alice@example.com"}).Return([]model.User{alice}, nil)
			},
			want: &model.ShareResult{Added: []string{}, Removed: []string{}, NotFound: []string{}},
		},
		{
			name:   "empty set revokes everyone",
			caller: "alice",
			emails: nil,
			setupMocks: func(m sharingMocks) {
				m.revs.On("FindByHash", ctx, helloHash).Return([]model.Revision{rev}, nil)
				m.tx.On("WithinTx", ctx).Return(nil)
				m.shares.On("ListGrantees", ctx, "r1").Return([]model.User{bob, carol}, nil)
				m.shares.On("Remove", ctx, "r1", "bob").Return(nil)
				m.shares.On("Remove", ctx, "r1", "carol").Return(nil)
			},
			want: &model.ShareResult{
				Added:    []string{},
				Removed:  []string{"bob@example.com", "carol@example.com"},
				NotFound: []string{},
			},
		},
		{
			name:   "non-owner is forbidden",
			caller: "bob",
			emails: []string{"carol@example.com"},
			setupMocks: func(m sharingMocks) {
				m.revs.On("FindByHash", ctx, helloHash).Return([]model.Revision{rev}, nil)
			},
			wantErr: ErrForbidden,
		},
		{
			name:   "unknown hash",
			caller: "alice",
			setupMocks: func(m sharingMocks) {
				m.revs.On("FindByHash", ctx, helloHash).Return([]model.Revision{}, nil)
			},
			wantErr: ErrNotFound,
		},
		{
			name:   "conflict twice",
			caller: "alice",
			emails: []string{"bob@example.com"},
			setupMocks: func(m sharingMocks) {
				m.revs.On("FindByHash", ctx, helloHash).Return([]model.Revision{rev}, nil)
				m.tx.On("WithinTx", ctx).Return(repository.ErrConflict).Twice()
			},
			wantErr: ErrConflict,
		},
		{
			name:   "add fails",
			caller: "alice",
			emails: []string{"bob@example.com"},
			setupMocks: func(m sharingMocks) {
				m.revs.On("FindByHash", ctx, helloHash).Return([]model.Revision{rev}, nil)
				m.tx.On("WithinTx", ctx).Return(nil)
				m.shares.On("ListGrantees", ctx, "r1").Return([]model.User{}, nil)
				m.users.On("FindByEmails", ctx, []string{"bob@example.com"}).Return([]model.User{bob}, nil)
				m.shares.On("Add", ctx, mock.Anything).Return(errors.New("db fail"))
			},
			wantErr: errors.New("db fail"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newSharing()
			tt.setupMocks(m)

			res, err := svc.Reconcile(ctx, tt.caller, helloHash, tt.emails)
			if tt.wantErr != nil {
				assert.Error(t, err)
				assert.Nil(t, res)
				if !errors.Is(err, tt.wantErr) {
					assert.EqualError(t, err, tt.wantErr.Error())
				}
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, res)

			m.tx.AssertExpectations(t)
			m.shares.AssertExpectations(t)
			m.users.AssertExpectations(t)
		})
	}
}

func TestSharingService_Grantees(t *testing.T) {
	ctx := context.Background()
	older := model.Revision{ID: "r0", OwnerID: "alice", ContentHash: helloHash}
	newer := model.Revision{ID: "r1", OwnerID: "alice", ContentHash: helloHash}

	t.Run("lists grantees of the newest owned revision", func(t *testing.T) {
		svc, m := newSharing()
		m.revs.On("FindByHash", ctx, helloHash).Return([]model.Revision{newer, older}, nil)
		m.shares.On("ListGrantees", ctx, "r1").Return([]model.User{{ID: "bob", Email: "bob@example.com"}}, nil)

		users, err := svc.Grantees(ctx, "alice", helloHash)
		require.NoError(t, err)
		require.Len(t, users, 1)
		assert.Equal(t, "bob", users[0].ID)
	})

	t.Run("malformed hash", func(t *testing.T) {
		svc, _ := newSharing()
		_, err := svc.Grantees(ctx, "alice", "xyz")
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("grantee cannot list", func(t *testing.T) {
		svc, m := newSharing()
		m.revs.On("FindByHash", ctx, helloHash).Return([]model.Revision{newer}, nil)

		_, err := svc.Grantees(ctx, "bob", helloHash)
		assert.ErrorIs(t, err, ErrForbidden)
	})
}

func TestNormalizeEmails(t *testing.T) {
	got := normalizeEmails([]string{"B@x.io", " a@x.io", "b@X.IO", "", "   "})
	assert.Equal(t, []string{"a@x.io", "b@x.io"}, got)
	assert.Empty(t, normalizeEmails(nil))
}
