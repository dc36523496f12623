package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/thomasjvidal/teste-backend-pleno/internal/model"
)

// PgAddressRepository は AddressRepository の PostgreSQL 実装
type PgAddressRepository struct {
	pool *pgxpool.Pool
}

// NewPgAddressRepository は PgAddressRepository を生成する
func NewPgAddressRepository(pool *pgxpool.Pool) *PgAddressRepository {
	return &PgAddressRepository{pool: pool}
}

var _ AddressRepository = (*PgAddressRepository)(nil)

const addressSelectCols = `id, contact_id, zip_code, address_number, country, state, street_address, city, address_line, neighborhood, created_at, updated_at`

func scanAddress(scan func(...any) error) (*model.Address, error) {
	var a model.Address
	if err := scan(&a.ID, &a.ContactID, &a.ZipCode, &a.AddressNumber, &a.Country, &a.State,
		&a.StreetAddress, &a.City, &a.AddressLine, &a.Neighborhood, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	return &a, nil
}

// FindByContactID returns the contact's address, locking the row for the
// rest of the transaction. ErrNotFound if the contact has none.
func (r *PgAddressRepository) FindByContactID(ctx context.Context, q Querier, contactID string) (*model.Address, error) {
	row := orPool(q, r.pool).QueryRow(ctx,
		`SELECT `+addressSelectCols+` FROM addresses WHERE contact_id = $1
		 ORDER BY created_at LIMIT 1 FOR UPDATE`, contactID)
	a, err := scanAddress(row.Scan)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return a, err
}

// Insert creates the address row and fills in id and timestamps.
func (r *PgAddressRepository) Insert(ctx context.Context, q Querier, a *model.Address) error {
	return orPool(q, r.pool).QueryRow(ctx,
		`INSERT INTO addresses (contact_id, zip_code, address_number, country, state, street_address, city, address_line, neighborhood)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING id, created_at, updated_at`,
		a.ContactID, a.ZipCode, a.AddressNumber, a.Country, a.State, a.StreetAddress, a.City, a.AddressLine, a.Neighborhood,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
}

// Update overwrites every column of an existing address row in place.
func (r *PgAddressRepository) Update(ctx context.Context, q Querier, a *model.Address) error {
	err := orPool(q, r.pool).QueryRow(ctx,
		`UPDATE addresses SET zip_code=$1, address_number=$2, country=$3, state=$4, street_address=$5,
		   city=$6, address_line=$7, neighborhood=$8, updated_at=NOW()
		 WHERE id=$9
		 RETURNING updated_at`,
		a.ZipCode, a.AddressNumber, a.Country, a.State, a.StreetAddress, a.City, a.AddressLine, a.Neighborhood, a.ID,
	).Scan(&a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// DeleteByContactID hard-deletes the contact's address rows.
func (r *PgAddressRepository) DeleteByContactID(ctx context.Context, q Querier, contactID string) (int64, error) {
	tag, err := orPool(q, r.pool).Exec(ctx, `DELETE FROM addresses WHERE contact_id = $1`, contactID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// ListByContactIDs returns the first address of each given contact.
func (r *PgAddressRepository) ListByContactIDs(ctx context.Context, q Querier, contactIDs []string) (map[string]*model.Address, error) {
	out := make(map[string]*model.Address, len(contactIDs))
	if len(contactIDs) == 0 {
		return out, nil
	}
	ids, err := uuidArray(contactIDs)
	if err != nil {
		return nil, err
	}

	rows, err := orPool(q, r.pool).Query(ctx,
		`SELECT DISTINCT ON (contact_id) `+addressSelectCols+`
		 FROM addresses WHERE contact_id = ANY($1)
		 ORDER BY contact_id, created_at`,
		ids,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		a, err := scanAddress(rows.Scan)
		if err != nil {
			return nil, err
		}
		out[a.ContactID] = a
	}
	return out, rows.Err()
}
