package service

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sort"
	"time"

	"github.com/thomasjvidal/teste-backend-pleno/internal/model"
	"github.com/thomasjvidal/teste-backend-pleno/internal/repository"
	"github.com/thomasjvidal/teste-backend-pleno/pkg/viacep"
)

// ---------------------------------------------------------------------------
// memStore - in-memory contact tables with transaction rollback
// ---------------------------------------------------------------------------

// txQuerier is handed to callbacks inside Execute. The fake repositories never
// call it; it only has to be non-nil.
type txQuerier struct{ repository.Querier }

type memTables struct {
	contacts  map[string]model.Contact
	addresses map[string]model.Address
	phones    []model.Phone
	emails    []model.Email
}

func (t memTables) clone() memTables {
	return memTables{
		contacts:  maps.Clone(t.contacts),
		addresses: maps.Clone(t.addresses),
		phones:    slices.Clone(t.phones),
		emails:    slices.Clone(t.emails),
	}
}

type memStore struct {
	memTables
	seq     int
	clock   time.Time
	fail    map[string]error
	txCount int
}

func newMemStore() *memStore {
	return &memStore{
		memTables: memTables{
			contacts:  map[string]model.Contact{},
			addresses: map[string]model.Address{},
		},
		clock: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		fail:  map[string]error{},
	}
}

// Execute snapshots every table and restores the snapshot if fn fails.
func (s *memStore) Execute(ctx context.Context, fn func(ctx context.Context, q repository.Querier) error) error {
	s.txCount++
	snap := s.memTables.clone()
	if err := fn(ctx, txQuerier{}); err != nil {
		s.memTables = snap
		return err
	}
	return nil
}

func (s *memStore) nextID(prefix string) string {
	s.seq++
	return fmt.Sprintf("%s-%d", prefix, s.seq)
}

func (s *memStore) tick() time.Time {
	s.clock = s.clock.Add(time.Second)
	return s.clock
}

func (s *memStore) failure(op string) error {
	return s.fail[op]
}

func (s *memStore) phonesOf(contactID string) []model.Phone {
	var out []model.Phone
	for _, p := range s.phones {
		if p.ContactID == contactID {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].SortOrder < out[j].SortOrder })
	return out
}

func (s *memStore) emailsOf(contactID string) []model.Email {
	var out []model.Email
	for _, e := range s.emails {
		if e.ContactID == contactID {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].SortOrder < out[j].SortOrder })
	return out
}

func (s *memStore) addressOf(contactID string) (model.Address, bool) {
	for _, a := range s.addresses {
		if a.ContactID == contactID {
			return a, true
		}
	}
	return model.Address{}, false
}

func (s *memStore) aggregate(c model.Contact) *model.Contact {
	out := c
	if a, ok := s.addressOf(c.ID); ok {
		out.Address = &a
	}
	for _, p := range s.phonesOf(c.ID) {
		out.Phones = append(out.Phones, &p)
	}
	for _, e := range s.emailsOf(c.ID) {
		out.Emails = append(out.Emails, &e)
	}
	return &out
}

// ---------------------------------------------------------------------------
// memContactRepo
// ---------------------------------------------------------------------------

type memContactRepo struct{ s *memStore }

func (r memContactRepo) ListByUser(ctx context.Context, q repository.Querier, userID string) ([]*model.Contact, error) {
	var out []*model.Contact
	for _, c := range r.s.contacts {
		if c.UserID == userID && !c.IsDeleted() {
			out = append(out, r.s.aggregate(c))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r memContactRepo) GetVisible(ctx context.Context, q repository.Querier, id string) (*model.Contact, error) {
	c, ok := r.s.contacts[id]
	if !ok || c.IsDeleted() {
		return nil, repository.ErrNotFound
	}
	return r.s.aggregate(c), nil
}

func (r memContactRepo) GetAny(ctx context.Context, q repository.Querier, id string) (*model.Contact, error) {
	c, ok := r.s.contacts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return r.s.aggregate(c), nil
}

func (r memContactRepo) Insert(ctx context.Context, q repository.Querier, userID string, f model.ContactFields) (*model.Contact, error) {
	if err := r.s.failure("contacts.insert"); err != nil {
		return nil, err
	}
	now := r.s.tick()
	c := model.Contact{
		ID:          r.s.nextID("contact"),
		UserID:      userID,
		Name:        f.Name,
		Description: f.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	r.s.contacts[c.ID] = c
	return &c, nil
}

func (r memContactRepo) ApplyFields(ctx context.Context, q repository.Querier, contact *model.Contact, f model.ContactFields) (bool, error) {
	if err := r.s.failure("contacts.update"); err != nil {
		return false, err
	}
	c, ok := r.s.contacts[contact.ID]
	if !ok || c.IsDeleted() {
		return false, nil
	}
	c.Name = f.Name
	c.Description = f.Description
	c.UpdatedAt = r.s.tick()
	r.s.contacts[c.ID] = c
	return true, nil
}

func (r memContactRepo) SoftDelete(ctx context.Context, q repository.Querier, contact *model.Contact) (bool, error) {
	if err := r.s.failure("contacts.softdelete"); err != nil {
		return false, err
	}
	c, ok := r.s.contacts[contact.ID]
	if !ok || c.IsDeleted() {
		return false, nil
	}
	now := r.s.tick()
	c.DeletedAt = &now
	r.s.contacts[c.ID] = c
	return true, nil
}

func (r memContactRepo) CountByUser(ctx context.Context, q repository.Querier, userID string) (int, error) {
	n := 0
	for _, c := range r.s.contacts {
		if c.UserID == userID && !c.IsDeleted() {
			n++
		}
	}
	return n, nil
}

// ---------------------------------------------------------------------------
// memAddressRepo
// ---------------------------------------------------------------------------

type memAddressRepo struct{ s *memStore }

func (r memAddressRepo) FindByContactID(ctx context.Context, q repository.Querier, contactID string) (*model.Address, error) {
	a, ok := r.s.addressOf(contactID)
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &a, nil
}

func (r memAddressRepo) Insert(ctx context.Context, q repository.Querier, addr *model.Address) error {
	if err := r.s.failure("addresses.insert"); err != nil {
		return err
	}
	addr.ID = r.s.nextID("address")
	addr.CreatedAt = r.s.tick()
	addr.UpdatedAt = addr.CreatedAt
	r.s.addresses[addr.ID] = *addr
	return nil
}

func (r memAddressRepo) Update(ctx context.Context, q repository.Querier, addr *model.Address) error {
	if err := r.s.failure("addresses.update"); err != nil {
		return err
	}
	if _, ok := r.s.addresses[addr.ID]; !ok {
		return repository.ErrNotFound
	}
	addr.UpdatedAt = r.s.tick()
	r.s.addresses[addr.ID] = *addr
	return nil
}

func (r memAddressRepo) DeleteByContactID(ctx context.Context, q repository.Querier, contactID string) (int64, error) {
	var n int64
	for id, a := range r.s.addresses {
		if a.ContactID == contactID {
			delete(r.s.addresses, id)
			n++
		}
	}
	return n, nil
}

// ---------------------------------------------------------------------------
// memPhoneRepo / memEmailRepo
// ---------------------------------------------------------------------------

type memPhoneRepo struct{ s *memStore }

func (r memPhoneRepo) InsertAll(ctx context.Context, q repository.Querier, contactID string, items []*model.Phone) error {
	for i, p := range items {
		if err := r.s.failure("phones.insert"); err != nil {
			return err
		}
		p.ID = r.s.nextID("phone")
		p.ContactID = contactID
		p.SortOrder = i
		r.s.phones = append(r.s.phones, *p)
	}
	return nil
}

func (r memPhoneRepo) DeleteAll(ctx context.Context, q repository.Querier, contactID string) (int64, error) {
	kept := r.s.phones[:0:0]
	var n int64
	for _, p := range r.s.phones {
		if p.ContactID == contactID {
			n++
			continue
		}
		kept = append(kept, p)
	}
	r.s.phones = kept
	return n, nil
}

type memEmailRepo struct{ s *memStore }

func (r memEmailRepo) InsertAll(ctx context.Context, q repository.Querier, contactID string, items []*model.Email) error {
	for i, e := range items {
		if err := r.s.failure("emails.insert"); err != nil {
			return err
		}
		e.ID = r.s.nextID("email")
		e.ContactID = contactID
		e.SortOrder = i
		r.s.emails = append(r.s.emails, *e)
	}
	return nil
}

func (r memEmailRepo) DeleteAll(ctx context.Context, q repository.Querier, contactID string) (int64, error) {
	kept := r.s.emails[:0:0]
	var n int64
	for _, e := range r.s.emails {
		if e.ContactID == contactID {
			n++
			continue
		}
		kept = append(kept, e)
	}
	r.s.emails = kept
	return n, nil
}

// ---------------------------------------------------------------------------
// mockLookup - postal-code lookup stub
// ---------------------------------------------------------------------------

type mockLookup struct {
	calls      int
	lookupFunc func(ctx context.Context, postalCode string) (*viacep.Result, error)
}

func (m *mockLookup) Lookup(ctx context.Context, postalCode string) (*viacep.Result, error) {
	m.calls++
	if m.lookupFunc != nil {
		return m.lookupFunc(ctx, postalCode)
	}
	return nil, viacep.ErrNotFound
}

func strPtr(s string) *string { return &s }

// paulistaLookup resolves 01310-100 and reports every other code as unknown.
func paulistaLookup() *mockLookup {
	return &mockLookup{
		lookupFunc: func(ctx context.Context, postalCode string) (*viacep.Result, error) {
			if viacep.Normalize(postalCode) != "01310100" {
				return nil, viacep.ErrNotFound
			}
			return &viacep.Result{
				CEP:         "01310-100",
				Logradouro:  strPtr("Avenida Paulista"),
				Complemento: strPtr("de 612 a 1510 - lado par"),
				Bairro:      strPtr("Bela Vista"),
				Localidade:  strPtr("São Paulo"),
				UF:          strPtr("SP"),
			}, nil
		},
	}
}

func newTestContactService(s *memStore, lookup viacep.Client) ContactService {
	return NewContactService(
		s,
		memContactRepo{s},
		NewAddressEnricher(lookup, memAddressRepo{s}, 0),
		NewChildReplacer[model.Phone](memPhoneRepo{s}, "phones"),
		NewChildReplacer[model.Email](memEmailRepo{s}, "emails"),
	)
}
