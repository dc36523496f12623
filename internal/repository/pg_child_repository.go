package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/thomasjvidal/teste-backend-pleno/internal/model"
)

// ChildFields points at the columns every contact child row shares.
type ChildFields struct {
	ID        *string
	ContactID *string
	Value     *string
	SortOrder *int
	CreatedAt *time.Time
	UpdatedAt *time.Time
}

// ChildTable describes where one kind of contact child lives: the table, the
// column holding its value, and how to reach the fields of a row.
type ChildTable[T any] struct {
	Table  string
	Column string
	Fields func(*T) ChildFields
}

// PhoneTable stores model.Phone rows.
var PhoneTable = ChildTable[model.Phone]{
	Table:  "phones",
	Column: "phone",
	Fields: func(p *model.Phone) ChildFields {
		return ChildFields{&p.ID, &p.ContactID, &p.Phone, &p.SortOrder, &p.CreatedAt, &p.UpdatedAt}
	},
}

// EmailTable stores model.Email rows.
var EmailTable = ChildTable[model.Email]{
	Table:  "emails",
	Column: "email",
	Fields: func(e *model.Email) ChildFields {
		return ChildFields{&e.ID, &e.ContactID, &e.Email, &e.SortOrder, &e.CreatedAt, &e.UpdatedAt}
	},
}

// PgChildRepository is the PostgreSQL implementation of ChildRepository.
type PgChildRepository[T any] struct {
	pool  *pgxpool.Pool
	table ChildTable[T]
}

// NewPgChildRepository creates a PgChildRepository for the given table.
func NewPgChildRepository[T any](pool *pgxpool.Pool, table ChildTable[T]) *PgChildRepository[T] {
	return &PgChildRepository[T]{pool: pool, table: table}
}

// NewPgPhoneRepository creates the phones repository.
func NewPgPhoneRepository(pool *pgxpool.Pool) *PgChildRepository[model.Phone] {
	return NewPgChildRepository(pool, PhoneTable)
}

// NewPgEmailRepository creates the emails repository.
func NewPgEmailRepository(pool *pgxpool.Pool) *PgChildRepository[model.Email] {
	return NewPgChildRepository(pool, EmailTable)
}

var (
	_ ChildRepository[model.Phone] = (*PgChildRepository[model.Phone])(nil)
	_ ChildRepository[model.Email] = (*PgChildRepository[model.Email])(nil)
)

// InsertAll inserts one row per item in slice order. sort_order records the
// position so that reads return the list as it was submitted.
func (r *PgChildRepository[T]) InsertAll(ctx context.Context, q Querier, contactID string, items []*T) error {
	db := orPool(q, r.pool)
	query := `INSERT INTO ` + r.table.Table + ` (contact_id, ` + r.table.Column + `, sort_order)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at, updated_at`
	for i, item := range items {
		f := r.table.Fields(item)
		*f.ContactID = contactID
		*f.SortOrder = i
		if err := db.QueryRow(ctx, query, contactID, *f.Value, i).Scan(f.ID, f.CreatedAt, f.UpdatedAt); err != nil {
			return err
		}
	}
	return nil
}

// DeleteAll removes every row of the contact and returns how many were deleted.
func (r *PgChildRepository[T]) DeleteAll(ctx context.Context, q Querier, contactID string) (int64, error) {
	tag, err := orPool(q, r.pool).Exec(ctx,
		`DELETE FROM `+r.table.Table+` WHERE contact_id = $1`, contactID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// ListByContactIDs returns the rows of the given contacts keyed by contact id,
// each list in sort_order.
func (r *PgChildRepository[T]) ListByContactIDs(ctx context.Context, q Querier, contactIDs []string) (map[string][]*T, error) {
	out := make(map[string][]*T, len(contactIDs))
	if len(contactIDs) == 0 {
		return out, nil
	}
	ids, err := uuidArray(contactIDs)
	if err != nil {
		return nil, err
	}

	rows, err := orPool(q, r.pool).Query(ctx,
		`SELECT id, contact_id, `+r.table.Column+`, sort_order, created_at, updated_at
		 FROM `+r.table.Table+` WHERE contact_id = ANY($1)
		 ORDER BY contact_id, sort_order, created_at`,
		ids,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		item := new(T)
		f := r.table.Fields(item)
		if err := rows.Scan(f.ID, f.ContactID, f.Value, f.SortOrder, f.CreatedAt, f.UpdatedAt); err != nil {
			return nil, err
		}
		out[*f.ContactID] = append(out[*f.ContactID], item)
	}
	return out, rows.Err()
}
