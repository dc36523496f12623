package service

import (
	"context"
	"fmt"

	"github.com/thomasjvidal/teste-backend-pleno/internal/model"
	"github.com/thomasjvidal/teste-backend-pleno/internal/repository"
)

// ErrContactNotFound は連絡先が存在しない、または論理削除済みの場合に返される
var ErrContactNotFound = fmt.Errorf("contact: %w", repository.ErrNotFound)

// ContactService coordinates writes to the contact aggregate. Every write runs
// in a single transaction and returns the aggregate re-read after commit.
type ContactService interface {
	// List returns the user's visible contacts with their relations, and the total count.
	List(ctx context.Context, userID string) ([]*model.Contact, int, error)

	// Get returns a visible contact with its relations.
	Get(ctx context.Context, id string) (*model.Contact, error)

	// Create stores a new contact together with its address, phones and emails.
	Create(ctx context.Context, userID string, in model.ContactInput) (*model.Contact, error)

	// Update overwrites the contact fields and address, and replaces phones and emails.
	Update(ctx context.Context, id string, in model.ContactInput) (*model.Contact, error)

	// Delete removes the relations and soft-deletes the contact.
	Delete(ctx context.Context, id string) error
}
