package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docrev/internal/model"
	repoMocks "docrev/internal/repository/mocks"
)

func TestAccessControl_CanRead(t *testing.T) {
	ctx := context.Background()
	rev := &model.Revision{ID: "r1", OwnerID: "alice"}

	tests := []struct {
		name       string
		userID     string
		setupMocks func(m *repoMocks.MockShareRepository)
		want       bool
		wantErr    bool
	}{
		{name: "owner", userID: "alice", setupMocks: func(m *repoMocks.MockShareRepository) {}, want: true},
		{name: "anonymous", userID: "", setupMocks: func(m *repoMocks.MockShareRepository) {}, want: false},
		{
			name:   "grantee",
			userID: "bob",
			setupMocks: func(m *repoMocks.MockShareRepository) {
				m.On("HasGrant", ctx, "r1", "bob").Return(true, nil)
			},
			want: true,
		},
		{
			name:   "stranger",
			userID: "carol",
			setupMocks: func(m *repoMocks.MockShareRepository) {
				m.On("HasGrant", ctx, "r1", "carol").Return(false, nil)
			},
			want: false,
		},
		{
			name:   "repository error",
			userID: "carol",
			setupMocks: func(m *repoMocks.MockShareRepository) {
				m.On("HasGrant", ctx, "r1", "carol").Return(false, errors.New("db fail"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shares := new(repoMocks.MockShareRepository)
			tt.setupMocks(shares)
			ac := NewAccessControl(shares)

			got, err := ac.CanRead(ctx, tt.userID, rev)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)

			if tt.want {
				assert.NoError(t, ac.Authorize(ctx, tt.userID, rev))
			}
			shares.AssertExpectations(t)
		})
	}
}

func TestAccessControl_Authorize(t *testing.T) {
	ctx := context.Background()
	shares := new(repoMocks.MockShareRepository)
	shares.On("HasGrant", ctx, "r1", "carol").Return(false, nil)
	ac := NewAccessControl(shares)

	err := ac.Authorize(ctx, "carol", &model.Revision{ID: "r1", OwnerID: "alice"})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestAccessControl_AuthorizeOwner(t *testing.T) {
	ac := NewAccessControl(new(repoMocks.MockShareRepository))
	rev := &model.Revision{ID: "r1", OwnerID: "alice"}

	assert.NoError(t, ac.AuthorizeOwner("alice", rev))
	assert.ErrorIs(t, ac.AuthorizeOwner("bob", rev), ErrForbidden)
	assert.ErrorIs(t, ac.AuthorizeOwner("", rev), ErrForbidden)
	assert.ErrorIs(t, ac.AuthorizeOwner("alice", nil), ErrForbidden)
}

func TestAccessControl_SelectReadable(t *testing.T) {
	ctx := context.Background()
	newest := model.Revision{ID: "r-carol", OwnerID: "carol"}
	shared := model.Revision{ID: "r-alice", OwnerID: "alice"}
	own := model.Revision{ID: "r-bob", OwnerID: "bob"}

	t.Run("no candidates", func(t *testing.T) {
		ac := NewAccessControl(new(repoMocks.MockShareRepository))
		_, err := ac.SelectReadable(ctx, "bob", nil)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("owned wins over newer granted", func(t *testing.T) {
		shares := new(repoMocks.MockShareRepository)
		ac := NewAccessControl(shares)

		got, err := ac.SelectReadable(ctx, "bob", []model.Revision{newest, shared, own})
		require.NoError(t, err)
		assert.Equal(t, "r-bob", got.ID)
		shares.AssertNotCalled(t, "HasGrant")
	})

	t.Run("first granted candidate", func(t *testing.T) {
		shares := new(repoMocks.MockShareRepository)
		shares.On("HasGrant", ctx, "r-carol", "bob").Return(false, nil)
		shares.On("HasGrant", ctx, "r-alice", "bob").Return(true, nil)
		ac := NewAccessControl(shares)

		got, err := ac.SelectReadable(ctx, "bob", []model.Revision{newest, shared})
		require.NoError(t, err)
		assert.Equal(t, "r-alice", got.ID)
	})

	t.Run("exists but unreadable", func(t *testing.T) {
		shares := new(repoMocks.MockShareRepository)
		shares.On("HasGrant", ctx, "r-carol", "bob").Return(false, nil)
		ac := NewAccessControl(shares)

		_, err := ac.SelectReadable(ctx, "bob", []model.Revision{newest})
		assert.ErrorIs(t, err, ErrForbidden)
		assert.NotErrorIs(t, err, ErrNotFound)
	})
}
