package service

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"slices"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"docrev/internal/model"
	"docrev/internal/repository"
	"docrev/internal/storage"
)

// memDB is an in-memory stand-in for Postgres and MinIO. Transactions are
// serialized by txMu and roll back by restoring a snapshot.
//
// With interleave set, transactions run concurrently instead: reads see other
// transactions' commits mid-flight, only the uniqueness checks in Create catch
// collisions, and rollback drops just the rows the transaction inserted.
type memDB struct {
	txMu sync.Mutex

	interleave bool
	// afterVersionRead, when set, runs after NextVersionNumber has read the family.
	afterVersionRead func()
	// conflicts counts Create calls rejected for a taken version number.
	conflicts atomic.Int32

	mu     sync.Mutex
	revs   []model.Revision
	grants []model.ShareGrant
	users  []model.User
	blobs  map[string][]byte
}

type memTxKey struct{}

// memTx records the revisions a transaction inserted.
type memTx struct{ created []string }

func newMemDB(users ...model.User) *memDB {
	return &memDB{users: users, blobs: make(map[string][]byte)}
}

func (db *memDB) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(memTxKey{}) != nil {
		return fn(ctx)
	}
	if db.interleave {
		return db.interleavedTx(ctx, fn)
	}
	db.txMu.Lock()
	defer db.txMu.Unlock()

	db.mu.Lock()
	revs := append([]model.Revision(nil), db.revs...)
	grants := append([]model.ShareGrant(nil), db.grants...)
	db.mu.Unlock()

	if err := fn(context.WithValue(ctx, memTxKey{}, &memTx{})); err != nil {
		db.mu.Lock()
		db.revs, db.grants = revs, grants
		db.mu.Unlock()
		return err
	}
	return nil
}

func (db *memDB) interleavedTx(ctx context.Context, fn func(ctx context.Context) error) error {
	tx := &memTx{}
	err := fn(context.WithValue(ctx, memTxKey{}, tx))
	if err == nil || len(tx.created) == 0 {
		return err
	}

	db.mu.Lock()
	defer db.mu.Unlock()
	kept := db.revs[:0]
	for _, rev := range db.revs {
		if !slices.Contains(tx.created, rev.ID) {
			kept = append(kept, rev)
		}
	}
	db.revs = kept
	return err
}

func (db *memDB) blobCount() int {
	db.mu.Lock()
	defer db.mu.Unlock()
	return len(db.blobs)
}

// revisions

type memRevisions struct{ *memDB }

func (r memRevisions) NextVersionNumber(_ context.Context, ownerID, url string) (int, error) {
	r.mu.Lock()
	next := 0
	for _, rev := range r.revs {
		if rev.OwnerID == ownerID && rev.URL == url && rev.VersionNumber >= next {
			next = rev.VersionNumber + 1
		}
	}
	r.mu.Unlock()

	if r.afterVersionRead != nil {
		r.afterVersionRead()
	}
	return next, nil
}

func (r memRevisions) ExistsWithHash(_ context.Context, ownerID, url, hash string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rev := range r.revs {
		if rev.OwnerID == ownerID && rev.URL == url && rev.ContentHash == hash {
			return true, nil
		}
	}
	return false, nil
}

func (r memRevisions) Create(ctx context.Context, rev *model.Revision) (*model.Revision, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.revs {
		if e.OwnerID != rev.OwnerID || e.URL != rev.URL {
			continue
		}
		if e.ContentHash == rev.ContentHash {
			return nil, repository.ErrDuplicateContent
		}
		if e.VersionNumber == rev.VersionNumber {
			r.conflicts.Add(1)
			return nil, repository.ErrConflict
		}
	}
	r.revs = append(r.revs, *rev)
	if tx, ok := ctx.Value(memTxKey{}).(*memTx); ok {
		tx.created = append(tx.created, rev.ID)
	}
	out := *rev
	return &out, nil
}

func (r memRevisions) find(match func(model.Revision) bool) (*model.Revision, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var best *model.Revision
	for i := range r.revs {
		if match(r.revs[i]) && (best == nil || r.revs[i].VersionNumber > best.VersionNumber) {
			rev := r.revs[i]
			best = &rev
		}
	}
	if best == nil {
		return nil, sql.ErrNoRows
	}
	return best, nil
}

func (r memRevisions) FindLatest(_ context.Context, ownerID, url string) (*model.Revision, error) {
	return r.find(func(rev model.Revision) bool { return rev.OwnerID == ownerID && rev.URL == url })
}

func (r memRevisions) FindByVersion(_ context.Context, ownerID, url string, version int) (*model.Revision, error) {
	return r.find(func(rev model.Revision) bool {
		return rev.OwnerID == ownerID && rev.URL == url && rev.VersionNumber == version
	})
}

func (r memRevisions) FindByHash(_ context.Context, hash string) ([]model.Revision, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []model.Revision{}
	for i := len(r.revs) - 1; i >= 0; i-- {
		if r.revs[i].ContentHash == hash {
			out = append(out, r.revs[i])
		}
	}
	return out, nil
}

func (r memRevisions) ListFamilies(_ context.Context, ownerID string, pq repository.PageQuery) (*repository.PageResult[model.DocumentFamily], error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	byURL := map[string][]model.Revision{}
	for _, rev := range r.revs {
		if rev.OwnerID == ownerID {
			byURL[rev.URL] = append(byURL[rev.URL], rev)
		}
	}
	urls := make([]string, 0, len(byURL))
	for u := range byURL {
		urls = append(urls, u)
	}
	sort.Strings(urls)

	items := []model.DocumentFamily{}
	for i := pq.Offset; i < len(urls) && i < pq.Offset+pq.Limit; i++ {
		revs := byURL[urls[i]]
		sort.Slice(revs, func(a, b int) bool { return revs[a].VersionNumber < revs[b].VersionNumber })
		items = append(items, model.DocumentFamily{URL: urls[i], Revisions: revs})
	}
	return &repository.PageResult[model.DocumentFamily]{Items: items, Total: len(urls)}, nil
}

// grants

type memShares struct{ *memDB }

func (s memShares) ListGrantees(_ context.Context, revisionID string) ([]model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.User{}
	for _, g := range s.grants {
		if g.RevisionID != revisionID {
			continue
		}
		for _, u := range s.users {
			if u.ID == g.GranteeID {
				out = append(out, u)
			}
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Email < out[b].Email })
	return out, nil
}

func (s memShares) GranteesByRevision(ctx context.Context, revisionIDs []string) (map[string][]model.User, error) {
	out := map[string][]model.User{}
	for _, id := range revisionIDs {
		users, _ := s.ListGrantees(ctx, id)
		if len(users) > 0 {
			out[id] = users
		}
	}
	return out, nil
}

func (s memShares) HasGrant(_ context.Context, revisionID, userID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, g := range s.grants {
		if g.RevisionID == revisionID && g.GranteeID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (s memShares) Add(_ context.Context, grant *model.ShareGrant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, g := range s.grants {
		if g.RevisionID == grant.RevisionID && g.GranteeID == grant.GranteeID {
			return repository.ErrConflict
		}
	}
	s.grants = append(s.grants, *grant)
	return nil
}

func (s memShares) Remove(_ context.Context, revisionID, granteeID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.grants[:0]
	for _, g := range s.grants {
		if g.RevisionID != revisionID || g.GranteeID != granteeID {
			kept = append(kept, g)
		}
	}
	s.grants = kept
	return nil
}

// users

type memUsers struct{ *memDB }

func (u memUsers) FindByEmails(_ context.Context, emails []string) ([]model.User, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	out := []model.User{}
	for _, e := range emails {
		for _, usr := range u.users {
			if strings.EqualFold(usr.Email, e) {
				out = append(out, usr)
			}
		}
	}
	return out, nil
}

// blobs

type memBlobs struct{ *memDB }

func (b memBlobs) Put(_ context.Context, key string, r io.Reader, opt storage.PutObjectOptions) (storage.ObjectInfo, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return storage.ObjectInfo{}, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.blobs[key] = data
	return storage.ObjectInfo{Key: key, Size: int64(len(data)), ContentType: opt.ContentType}, nil
}

func (b memBlobs) Get(_ context.Context, key string) (io.ReadCloser, storage.ObjectInfo, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	data, ok := b.blobs[key]
	if !ok {
		return nil, storage.ObjectInfo{}, errors.New("no such key")
	}
	return io.NopCloser(bytes.NewReader(data)), storage.ObjectInfo{Key: key, Size: int64(len(data))}, nil
}

func (b memBlobs) Delete(_ context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.blobs, key)
	return nil
}

func (b memBlobs) PresignGet(_ context.Context, key string, expiry time.Duration) (string, error) {
	return fmt.Sprintf("mem://%s?ttl=%s", key, expiry), nil
}
