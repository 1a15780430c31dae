package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	lru "github.com/hashicorp/golang-lru"
)

var _ Storage = (*cachedStorage)(nil)

type cachedObject struct {
	data []byte
	info ObjectInfo
}

// cachedStorage is a least-recently-used read cache in front of another Storage.
// Blobs are write-once per key, so a cached object can never go stale.
// Writes pass through without populating the cache.
type cachedStorage struct {
	next    Storage
	c       *lru.Cache // key -> cachedObject
	maxSize int64
}

// NewCached wraps next with an LRU cache of up to entries objects.
// Objects larger than maxObjectBytes (or of unknown size) are streamed straight through.
func NewCached(next Storage, entries int, maxObjectBytes int64) (Storage, error) {
	c, err := lru.New(entries)
	if err != nil {
		return nil, fmt.Errorf("create blob cache: %w", err)
	}
	return &cachedStorage{next: next, c: c, maxSize: maxObjectBytes}, nil
}

func (s *cachedStorage) Put(ctx context.Context, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error) {
	return s.next.Put(ctx, key, r, opt)
}

func (s *cachedStorage) Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error) {
	if v, ok := s.c.Get(key); ok {
		obj := v.(cachedObject)
		return io.NopCloser(bytes.NewReader(obj.data)), obj.info, nil
	}

	rc, info, err := s.next.Get(ctx, key)
	if err != nil {
		return nil, ObjectInfo{}, err
	}
	if info.Size < 0 || info.Size > s.maxSize {
		return rc, info, nil
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, s.maxSize+1))
	if err != nil {
		return nil, ObjectInfo{}, fmt.Errorf("read %s: %w", key, err)
	}
	if int64(len(data)) != info.Size {
		return nil, ObjectInfo{}, fmt.Errorf("read %s: got %d bytes, want %d", key, len(data), info.Size)
	}

	s.c.Add(key, cachedObject{data: data, info: info})
	return io.NopCloser(bytes.NewReader(data)), info, nil
}

func (s *cachedStorage) Delete(ctx context.Context, key string) error {
	s.c.Remove(key)
	return s.next.Delete(ctx, key)
}

func (s *cachedStorage) PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error) {
	return s.next.PresignGet(ctx, key, expiry)
}
