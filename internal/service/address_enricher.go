package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/thomasjvidal/teste-backend-pleno/internal/model"
	"github.com/thomasjvidal/teste-backend-pleno/internal/repository"
	"github.com/thomasjvidal/teste-backend-pleno/pkg/viacep"
)

// AddressEnricher fills in address fields from a postal-code lookup and keeps
// at most one address row per contact.
type AddressEnricher struct {
	lookup  viacep.Client
	repo    repository.AddressRepository
	timeout time.Duration
}

// NewAddressEnricher creates an AddressEnricher. A nil lookup disables enrichment.
// timeout bounds each lookup; zero or less means viacep.DefaultTimeout.
func NewAddressEnricher(lookup viacep.Client, repo repository.AddressRepository, timeout time.Duration) *AddressEnricher {
	if timeout <= 0 {
		timeout = viacep.DefaultTimeout
	}
	return &AddressEnricher{lookup: lookup, repo: repo, timeout: timeout}
}

// Enrich returns in merged with the lookup result when a postal code is given
// without a street. Lookup fields overwrite caller fields, absent ones with nil.
// Any lookup failure returns in unchanged.
func (e *AddressEnricher) Enrich(ctx context.Context, in model.AddressInput) model.AddressInput {
	if e.lookup == nil || !in.NeedsEnrichment() {
		return in
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	res, err := e.lookup.Lookup(ctx, in.ZipCode)
	if err != nil {
		slog.Warn("postal code lookup failed", "zip_code", in.ZipCode, "error", err)
		return in
	}
	slog.Info("postal code lookup succeeded", "zip_code", in.ZipCode)
	return in.Merge(lookupFields(res))
}

func lookupFields(r *viacep.Result) model.AddressFields {
	country := model.Country
	return model.AddressFields{
		StreetAddress: r.Logradouro,
		Neighborhood:  r.Bairro,
		City:          r.Localidade,
		State:         r.UF,
		Country:       &country,
		AddressLine:   r.Complemento,
	}
}

// SaveAddress overwrites the contact's address in place, or inserts one if
// the contact has none.
func (e *AddressEnricher) SaveAddress(ctx context.Context, q repository.Querier, contactID string, in model.AddressInput) (*model.Address, error) {
	addr, err := e.repo.FindByContactID(ctx, q, contactID)
	switch {
	case err == nil:
		addr.Apply(in)
		if err := e.repo.Update(ctx, q, addr); err != nil {
			return nil, fmt.Errorf("update address: %w", err)
		}
		slog.Info("address updated", "contact_id", contactID)
	case errors.Is(err, repository.ErrNotFound):
		addr = &model.Address{ContactID: contactID}
		addr.Apply(in)
		if err := e.repo.Insert(ctx, q, addr); err != nil {
			return nil, fmt.Errorf("insert address: %w", err)
		}
		slog.Info("address created", "contact_id", contactID)
	default:
		return nil, fmt.Errorf("find address: %w", err)
	}
	return addr, nil
}

// ResolveAddress enriches in and saves it. Callers holding a transaction
// should call Enrich before opening it and SaveAddress inside it instead.
func (e *AddressEnricher) ResolveAddress(ctx context.Context, q repository.Querier, contactID string, in model.AddressInput) (*model.Address, error) {
	return e.SaveAddress(ctx, q, contactID, e.Enrich(ctx, in))
}

// DeleteAddress removes the contact's address. It reports false if there was none.
func (e *AddressEnricher) DeleteAddress(ctx context.Context, q repository.Querier, contactID string) (bool, error) {
	n, err := e.repo.DeleteByContactID(ctx, q, contactID)
	if err != nil {
		return false, fmt.Errorf("delete address: %w", err)
	}
	if n > 0 {
		slog.Info("address deleted", "contact_id", contactID)
	}
	return n > 0, nil
}
