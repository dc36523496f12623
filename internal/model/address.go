package model

import (
	"strings"
	"time"
)

// Country is stored on every address enriched from a postal-code lookup.
const Country = "Brasil"

// Address is the single postal address of a contact.
// Optional columns are pointers so that NULL survives a round trip.
type Address struct {
	ID            string    `json:"id"`
	ContactID     string    `json:"-"`
	ZipCode       string    `json:"zip_code"`
	AddressNumber string    `json:"address_number"`
	Country       *string   `json:"country"`
	State         *string   `json:"state"`
	StreetAddress *string   `json:"street_address"`
	City          *string   `json:"city"`
	AddressLine   *string   `json:"address_line"`
	Neighborhood  *string   `json:"neighborhood"`
	CreatedAt     time.Time `json:"-"`
	UpdatedAt     time.Time `json:"-"`
}

// AddressInput carries caller-supplied address fields.
type AddressInput struct {
	ZipCode       string
	AddressNumber string
	Country       *string
	State         *string
	StreetAddress *string
	City          *string
	AddressLine   *string
	Neighborhood  *string
}

// NeedsEnrichment is true when a postal code is given without a street.
// A blank street counts as not given.
func (in AddressInput) NeedsEnrichment() bool {
	return in.ZipCode != "" && blank(in.StreetAddress)
}

func blank(s *string) bool {
	return s == nil || strings.TrimSpace(*s) == ""
}

// AddressFields is the subset of address columns a postal-code lookup fills in.
type AddressFields struct {
	StreetAddress *string
	Neighborhood  *string
	City          *string
	State         *string
	Country       *string
	AddressLine   *string
}

// Merge overwrites in with every field of f, including nil ones.
func (in AddressInput) Merge(f AddressFields) AddressInput {
	in.StreetAddress = f.StreetAddress
	in.Neighborhood = f.Neighborhood
	in.City = f.City
	in.State = f.State
	in.Country = f.Country
	in.AddressLine = f.AddressLine
	return in
}

// Apply copies the input onto the address row.
func (a *Address) Apply(in AddressInput) {
	a.ZipCode = in.ZipCode
	a.AddressNumber = in.AddressNumber
	a.Country = in.Country
	a.State = in.State
	a.StreetAddress = in.StreetAddress
	a.City = in.City
	a.AddressLine = in.AddressLine
	a.Neighborhood = in.Neighborhood
}
