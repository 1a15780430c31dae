package service

import (
	"fmt"
	"strconv"
	"strings"
)

// Selector picks one revision out of a family.
// The zero value selects the latest revision.
type Selector struct {
	version int
	exact   bool
}

// Latest selects the revision with the highest version number.
func Latest() Selector { return Selector{} }

// Exact selects version n only.
func Exact(n int) Selector { return Selector{version: n, exact: true} }

// Version returns the requested version and whether one was requested.
func (s Selector) Version() (int, bool) { return s.version, s.exact }

func (s Selector) String() string {
	if !s.exact {
		return "latest"
	}
	return strconv.Itoa(s.version)
}

// ParseSelector reads the ?revision= query value. Empty means latest.
func ParseSelector(raw string) (Selector, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Latest(), nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return Selector{}, fmt.Errorf("%w: revision must be a non-negative integer, got %q", ErrValidation, raw)
	}
	return Exact(n), nil
}
