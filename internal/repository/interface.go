package repository

import (
	"context"

	"github.com/thomasjvidal/teste-backend-pleno/internal/model"
)

// DB は DB 接続の生存確認を行うインターフェース
type DB interface {
	Ping(ctx context.Context) error
}

// UserRepository はユーザー永続化のインターフェース
type UserRepository interface {
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	Create(ctx context.Context, user *model.User) error
}

// ContactRepository persists the contacts row and reads whole aggregates.
//
// GetVisible excludes soft-deleted contacts; GetAny does not and is only meant
// for reloading an aggregate right after it was written.
type ContactRepository interface {
	ListByUser(ctx context.Context, q Querier, userID string) ([]*model.Contact, error)
	GetVisible(ctx context.Context, q Querier, id string) (*model.Contact, error)
	GetAny(ctx context.Context, q Querier, id string) (*model.Contact, error)
	Insert(ctx context.Context, q Querier, userID string, fields model.ContactFields) (*model.Contact, error)
	ApplyFields(ctx context.Context, q Querier, contact *model.Contact, fields model.ContactFields) (bool, error)
	SoftDelete(ctx context.Context, q Querier, contact *model.Contact) (bool, error)
	CountByUser(ctx context.Context, q Querier, userID string) (int, error)
}

// AddressRepository persists the single address row of a contact.
type AddressRepository interface {
	FindByContactID(ctx context.Context, q Querier, contactID string) (*model.Address, error)
	Insert(ctx context.Context, q Querier, addr *model.Address) error
	Update(ctx context.Context, q Querier, addr *model.Address) error
	DeleteByContactID(ctx context.Context, q Querier, contactID string) (int64, error)
}

// ChildRepository persists a list-valued child of a contact (phones, emails).
type ChildRepository[T any] interface {
	InsertAll(ctx context.Context, q Querier, contactID string, items []*T) error
	DeleteAll(ctx context.Context, q Querier, contactID string) (int64, error)
}
