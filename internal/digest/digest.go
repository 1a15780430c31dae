// Package digest computes the content addresses used for deduplication and lookup by hash.
package digest

import (
	"encoding/hex"
	"hash"
	"io"
	"strings"

	sha256 "github.com/minio/sha256-simd"
)

// Size is the length of a hex-encoded digest.
const Size = sha256.Size * 2

// Digester accumulates a SHA-256 over everything written to it.
// It is meant to sit behind an io.TeeReader while bytes stream elsewhere.
type Digester struct {
	h hash.Hash
	n int64
}

// New returns an empty Digester.
func New() *Digester {
	return &Digester{h: sha256.New()}
}

// Write never returns an error.
func (d *Digester) Write(p []byte) (int, error) {
	n, err := d.h.Write(p)
	d.n += int64(n)
	return n, err
}

// Hex returns the lowercase hex digest of the bytes written so far.
func (d *Digester) Hex() string {
	return hex.EncodeToString(d.h.Sum(nil))
}

// Len is the number of bytes written so far.
func (d *Digester) Len() int64 {
	return d.n
}

// Sum reads r to EOF and returns its hex digest. Read errors are returned unchanged.
func Sum(r io.Reader) (string, error) {
	d := New()
	if _, err := io.Copy(d, r); err != nil {
		return "", err
	}
	return d.Hex(), nil
}

// Normalize trims and lowercases a client supplied digest.
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Valid reports whether s is a normalized hex digest.
func Valid(s string) bool {
	if len(s) != Size {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
