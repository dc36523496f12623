package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/thomasjvidal/teste-backend-pleno/internal/model"
)

// PgContactRepository is the PostgreSQL implementation of ContactRepository.
// Reads attach the address, phones and emails of every returned contact.
type PgContactRepository struct {
	pool      *pgxpool.Pool
	addresses *PgAddressRepository
	phones    *PgChildRepository[model.Phone]
	emails    *PgChildRepository[model.Email]
}

// NewPgContactRepository creates a PgContactRepository backed by the given pool.
func NewPgContactRepository(pool *pgxpool.Pool) *PgContactRepository {
	return &PgContactRepository{
		pool:      pool,
		addresses: NewPgAddressRepository(pool),
		phones:    NewPgPhoneRepository(pool),
		emails:    NewPgEmailRepository(pool),
	}
}

// Ensure PgContactRepository implements ContactRepository at compile time.
var _ ContactRepository = (*PgContactRepository)(nil)

const contactSelectCols = `id, user_id, name, description, created_at, updated_at, deleted_at`

func scanContact(scan func(...any) error) (*model.Contact, error) {
	var c model.Contact
	if err := scan(&c.ID, &c.UserID, &c.Name, &c.Description, &c.CreatedAt, &c.UpdatedAt, &c.DeletedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

// ListByUser returns the user's non-deleted contacts, oldest first, with relations.
func (r *PgContactRepository) ListByUser(ctx context.Context, q Querier, userID string) ([]*model.Contact, error) {
	db := orPool(q, r.pool)
	rows, err := db.Query(ctx,
		`SELECT `+contactSelectCols+` FROM contacts
		 WHERE user_id = $1 AND deleted_at IS NULL
		 ORDER BY created_at, id`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var contacts []*model.Contact
	for rows.Next() {
		c, err := scanContact(rows.Scan)
		if err != nil {
			return nil, err
		}
		contacts = append(contacts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.attachRelations(ctx, db, contacts); err != nil {
		return nil, err
	}
	return contacts, nil
}

// GetVisible returns a non-deleted contact with relations, or ErrNotFound.
func (r *PgContactRepository) GetVisible(ctx context.Context, q Querier, id string) (*model.Contact, error) {
	return r.get(ctx, q, `SELECT `+contactSelectCols+` FROM contacts WHERE id = $1 AND deleted_at IS NULL`, id)
}

// GetAny returns a contact with relations regardless of its deletion marker.
func (r *PgContactRepository) GetAny(ctx context.Context, q Querier, id string) (*model.Contact, error) {
	return r.get(ctx, q, `SELECT `+contactSelectCols+` FROM contacts WHERE id = $1`, id)
}

func (r *PgContactRepository) get(ctx context.Context, q Querier, query, id string) (*model.Contact, error) {
	db := orPool(q, r.pool)
	c, err := scanContact(db.QueryRow(ctx, query, id).Scan)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := r.attachRelations(ctx, db, []*model.Contact{c}); err != nil {
		return nil, err
	}
	return c, nil
}

// Insert creates a bare contacts row owned by userID.
func (r *PgContactRepository) Insert(ctx context.Context, q Querier, userID string, fields model.ContactFields) (*model.Contact, error) {
	c := &model.Contact{UserID: userID, Name: fields.Name, Description: fields.Description}
	err := orPool(q, r.pool).QueryRow(ctx,
		`INSERT INTO contacts (user_id, name, description)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at, updated_at`,
		userID, fields.Name, fields.Description,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// ApplyFields updates name and description. It reports false when the
// contact no longer exists or was deleted meanwhile.
func (r *PgContactRepository) ApplyFields(ctx context.Context, q Querier, contact *model.Contact, fields model.ContactFields) (bool, error) {
	err := orPool(q, r.pool).QueryRow(ctx,
		`UPDATE contacts SET name = $1, description = $2, updated_at = NOW()
		 WHERE id = $3 AND deleted_at IS NULL
		 RETURNING updated_at`,
		fields.Name, fields.Description, contact.ID,
	).Scan(&contact.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	contact.Name = fields.Name
	contact.Description = fields.Description
	return true, nil
}

// SoftDelete sets deleted_at; the row itself is kept.
func (r *PgContactRepository) SoftDelete(ctx context.Context, q Querier, contact *model.Contact) (bool, error) {
	err := orPool(q, r.pool).QueryRow(ctx,
		`UPDATE contacts SET deleted_at = NOW(), updated_at = NOW()
		 WHERE id = $1 AND deleted_at IS NULL
		 RETURNING deleted_at, updated_at`,
		contact.ID,
	).Scan(&contact.DeletedAt, &contact.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// CountByUser counts the user's non-deleted contacts.
func (r *PgContactRepository) CountByUser(ctx context.Context, q Querier, userID string) (int, error) {
	var n int
	err := orPool(q, r.pool).QueryRow(ctx,
		`SELECT COUNT(*) FROM contacts WHERE user_id = $1 AND deleted_at IS NULL`, userID,
	).Scan(&n)
	return n, err
}

// attachRelations loads address, phones and emails for all contacts with one
// query per relation.
func (r *PgContactRepository) attachRelations(ctx context.Context, q Querier, contacts []*model.Contact) error {
	if len(contacts) == 0 {
		return nil
	}
	ids := make([]string, len(contacts))
	for i, c := range contacts {
		ids[i] = c.ID
	}

	addresses, err := r.addresses.ListByContactIDs(ctx, q, ids)
	if err != nil {
		return err
	}
	phones, err := r.phones.ListByContactIDs(ctx, q, ids)
	if err != nil {
		return err
	}
	emails, err := r.emails.ListByContactIDs(ctx, q, ids)
	if err != nil {
		return err
	}

	for _, c := range contacts {
		c.Address = addresses[c.ID]
		c.Phones = phones[c.ID]
		c.Emails = emails[c.ID]
	}
	return nil
}
