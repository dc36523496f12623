package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/thomasjvidal/teste-backend-pleno/internal/repository"
)

// ErrNoTransaction is returned by ReplaceAll when called without a transaction.
var ErrNoTransaction = errors.New("replace requires a transaction")

// ChildReplacer manages a list-valued contact child with full-replacement
// semantics: the stored list is always exactly the last list written.
type ChildReplacer[T any] struct {
	repo repository.ChildRepository[T]
	kind string
}

// NewChildReplacer creates a ChildReplacer. kind names the child in logs and errors.
func NewChildReplacer[T any](repo repository.ChildRepository[T], kind string) *ChildReplacer[T] {
	return &ChildReplacer[T]{repo: repo, kind: kind}
}

// CreateAll inserts one row per item in input order.
func (r *ChildReplacer[T]) CreateAll(ctx context.Context, q repository.Querier, contactID string, items []*T) error {
	if err := r.repo.InsertAll(ctx, q, contactID, items); err != nil {
		return fmt.Errorf("create %s: %w", r.kind, err)
	}
	slog.Info(r.kind+" created", "contact_id", contactID, "count", len(items))
	return nil
}

// ReplaceAll discards the contact's list and stores items in its place. The
// intermediate empty list is only visible inside q, which must be a transaction.
func (r *ChildReplacer[T]) ReplaceAll(ctx context.Context, q repository.Querier, contactID string, items []*T) error {
	if q == nil {
		return fmt.Errorf("replace %s: %w", r.kind, ErrNoTransaction)
	}
	if _, err := r.repo.DeleteAll(ctx, q, contactID); err != nil {
		return fmt.Errorf("replace %s: delete: %w", r.kind, err)
	}
	if err := r.repo.InsertAll(ctx, q, contactID, items); err != nil {
		return fmt.Errorf("replace %s: insert: %w", r.kind, err)
	}
	slog.Info(r.kind+" replaced", "contact_id", contactID, "count", len(items))
	return nil
}

// DeleteAll removes every row of the contact and reports whether any existed.
func (r *ChildReplacer[T]) DeleteAll(ctx context.Context, q repository.Querier, contactID string) (bool, error) {
	n, err := r.repo.DeleteAll(ctx, q, contactID)
	if err != nil {
		return false, fmt.Errorf("delete %s: %w", r.kind, err)
	}
	if n > 0 {
		slog.Info(r.kind+" deleted", "contact_id", contactID, "count", n)
	}
	return n > 0, nil
}
