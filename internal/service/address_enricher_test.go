package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/thomasjvidal/teste-backend-pleno/internal/model"
	"github.com/thomasjvidal/teste-backend-pleno/pkg/viacep"
)

func TestAddressEnricher_Enrich_OverwritesCallerFields(t *testing.T) {
	e := NewAddressEnricher(paulistaLookup(), nil, 0)

	in := model.AddressInput{
		ZipCode:      "01310-100",
		City:         strPtr("Rio de Janeiro"),
		Neighborhood: strPtr("Copacabana"),
	}
	got := e.Enrich(context.Background(), in)

	if *got.City != "São Paulo" {
		t.Errorf("city = %q, want lookup value", *got.City)
	}
	if *got.Neighborhood != "Bela Vista" {
		t.Errorf("neighborhood = %q, want lookup value", *got.Neighborhood)
	}
	if *got.AddressLine != "de 612 a 1510 - lado par" {
		t.Errorf("address_line = %q, want complemento", *got.AddressLine)
	}
	if *got.Country != model.Country {
		t.Errorf("country = %q", *got.Country)
	}
}

func TestAddressEnricher_Enrich_AbsentLookupFieldClearsCallerValue(t *testing.T) {
	lookup := &mockLookup{
		lookupFunc: func(ctx context.Context, postalCode string) (*viacep.Result, error) {
			return &viacep.Result{Logradouro: strPtr("Rua A"), UF: strPtr("MG")}, nil
		},
	}
	e := NewAddressEnricher(lookup, nil, 0)

	got := e.Enrich(context.Background(), model.AddressInput{ZipCode: "30130000", AddressLine: strPtr("apto 1")})
	if got.AddressLine != nil {
		t.Errorf("expected address_line to be cleared, got %q", *got.AddressLine)
	}
	if got.Neighborhood != nil {
		t.Errorf("expected neighborhood nil, got %q", *got.Neighborhood)
	}
}

func TestAddressEnricher_Enrich_NoPostalCode(t *testing.T) {
	lookup := paulistaLookup()
	e := NewAddressEnricher(lookup, nil, 0)

	in := model.AddressInput{AddressNumber: "10"}
	got := e.Enrich(context.Background(), in)
	if lookup.calls != 0 {
		t.Errorf("expected no lookup, got %d", lookup.calls)
	}
	if got != in {
		t.Errorf("expected input unchanged")
	}
}

func TestAddressEnricher_Enrich_LookupErrorReturnsInput(t *testing.T) {
	for _, lookupErr := range []error{viacep.ErrNotFound, viacep.ErrInvalidPostalCode, context.DeadlineExceeded, errors.New("connection refused")} {
		lookup := &mockLookup{
			lookupFunc: func(ctx context.Context, postalCode string) (*viacep.Result, error) {
				return nil, lookupErr
			},
		}
		e := NewAddressEnricher(lookup, nil, 0)
		in := model.AddressInput{ZipCode: "12345678", State: strPtr("RJ")}
		if got := e.Enrich(context.Background(), in); got != in {
			t.Errorf("%v: expected input unchanged, got %+v", lookupErr, got)
		}
	}
}

func TestAddressEnricher_Enrich_BoundsLookupWithTimeout(t *testing.T) {
	lookup := &mockLookup{
		lookupFunc: func(ctx context.Context, postalCode string) (*viacep.Result, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		},
	}
	e := NewAddressEnricher(lookup, nil, 20*time.Millisecond)

	start := time.Now()
	got := e.Enrich(context.Background(), model.AddressInput{ZipCode: "01310100"})
	if time.Since(start) > time.Second {
		t.Error("lookup was not bounded by the timeout")
	}
	if got.StreetAddress != nil {
		t.Error("expected street to stay nil")
	}
}

func TestNewAddressEnricher_Timeout(t *testing.T) {
	tests := []struct {
		name string
		in   time.Duration
		want time.Duration
	}{
		{"configured value kept", 30 * time.Second, 30 * time.Second},
		{"zero falls back", 0, viacep.DefaultTimeout},
		{"negative falls back", -time.Second, viacep.DefaultTimeout},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NewAddressEnricher(nil, nil, tt.in).timeout; got != tt.want {
				t.Errorf("timeout = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAddressEnricher_Enrich_BlankStreetTriggersLookup(t *testing.T) {
	for _, street := range []string{"", "   "} {
		lookup := paulistaLookup()
		e := NewAddressEnricher(lookup, nil, 0)

		got := e.Enrich(context.Background(), model.AddressInput{ZipCode: "01310-100", StreetAddress: strPtr(street)})
		if lookup.calls != 1 {
			t.Errorf("street %q: expected 1 lookup, got %d", street, lookup.calls)
		}
		if got.StreetAddress == nil || *got.StreetAddress != "Avenida Paulista" {
			t.Errorf("street %q: expected lookup street, got %v", street, got.StreetAddress)
		}
	}
}

func TestAddressEnricher_SaveAddress_FindOrCreate(t *testing.T) {
	s := newMemStore()
	e := NewAddressEnricher(nil, memAddressRepo{s}, 0)
	ctx := context.Background()

	first, err := e.SaveAddress(ctx, txQuerier{}, "contact-1", model.AddressInput{ZipCode: "01310100", AddressNumber: "1"})
	if err != nil {
		t.Fatalf("first save: %v", err)
	}
	second, err := e.SaveAddress(ctx, txQuerier{}, "contact-1", model.AddressInput{ZipCode: "20040002", AddressNumber: "2"})
	if err != nil {
		t.Fatalf("second save: %v", err)
	}

	if first.ID != second.ID {
		t.Errorf("expected in-place update, got ids %s and %s", first.ID, second.ID)
	}
	if len(s.addresses) != 1 {
		t.Fatalf("expected one address row, got %d", len(s.addresses))
	}
	stored, _ := s.addressOf("contact-1")
	if stored.ZipCode != "20040002" || stored.AddressNumber != "2" {
		t.Errorf("stored = %+v", stored)
	}
}

func TestAddressEnricher_ResolveAddress(t *testing.T) {
	s := newMemStore()
	e := NewAddressEnricher(paulistaLookup(), memAddressRepo{s}, 0)

	addr, err := e.ResolveAddress(context.Background(), txQuerier{}, "contact-1", model.AddressInput{ZipCode: "01310-100", AddressNumber: "1000"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if addr.StreetAddress == nil || *addr.StreetAddress != "Avenida Paulista" {
		t.Errorf("street = %v", addr.StreetAddress)
	}
}

func TestAddressEnricher_DeleteAddress(t *testing.T) {
	s := newMemStore()
	e := NewAddressEnricher(nil, memAddressRepo{s}, 0)
	ctx := context.Background()

	if _, err := e.SaveAddress(ctx, txQuerier{}, "contact-1", model.AddressInput{ZipCode: "1"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	deleted, err := e.DeleteAddress(ctx, txQuerier{}, "contact-1")
	if err != nil || !deleted {
		t.Fatalf("delete = %v, %v", deleted, err)
	}
	deleted, err = e.DeleteAddress(ctx, txQuerier{}, "contact-1")
	if err != nil || deleted {
		t.Fatalf("second delete = %v, %v; want false, nil", deleted, err)
	}
}

func TestAddressEnricher_SaveAddress_WrapsInsertError(t *testing.T) {
	s := newMemStore()
	boom := errors.New("fk violation")
	s.fail["addresses.insert"] = boom
	e := NewAddressEnricher(nil, memAddressRepo{s}, 0)

	_, err := e.SaveAddress(context.Background(), txQuerier{}, "contact-1", model.AddressInput{ZipCode: "1"})
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
}
