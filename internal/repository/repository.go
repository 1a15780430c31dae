package repository

import (
	"context"
	"errors"
)

// Package repository contains data access layer abstractions.
// Implementations live in subpackages (e.g., postgres) inside this directory.

var (
	// ErrConflict reports a write rejected by a uniqueness constraint or a
	// serialization failure. The whole transaction may be retried.
	ErrConflict = errors.New("repository: write conflict")

	// ErrDuplicateContent reports that the family already holds a revision with the same content hash.
	ErrDuplicateContent = errors.New("repository: duplicate content in family")
)

// Transactor runs fn inside a single serializable transaction.
// Repository calls made with the ctx handed to fn join that transaction.
// The transaction commits when fn returns nil and rolls back otherwise.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// PageQuery holds limit/offset pagination parameters.
type PageQuery struct {
	Limit  int
	Offset int
}

// PageResult is a generic pagination result wrapper.
// T is typically a model type.
type PageResult[T any] struct {
	Items []T
	Total int
}
