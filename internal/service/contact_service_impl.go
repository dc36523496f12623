package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/thomasjvidal/teste-backend-pleno/internal/model"
	"github.com/thomasjvidal/teste-backend-pleno/internal/repository"
)

// contactServiceImpl is the production implementation of ContactService.
type contactServiceImpl struct {
	tx        repository.TxScope
	contacts  repository.ContactRepository
	addresses *AddressEnricher
	phones    *ChildReplacer[model.Phone]
	emails    *ChildReplacer[model.Email]
}

// NewContactService creates a ContactService.
func NewContactService(
	tx repository.TxScope,
	contacts repository.ContactRepository,
	addresses *AddressEnricher,
	phones *ChildReplacer[model.Phone],
	emails *ChildReplacer[model.Email],
) ContactService {
	return &contactServiceImpl{
		tx:        tx,
		contacts:  contacts,
		addresses: addresses,
		phones:    phones,
		emails:    emails,
	}
}

func (s *contactServiceImpl) List(ctx context.Context, userID string) ([]*model.Contact, int, error) {
	contacts, err := s.contacts.ListByUser(ctx, nil, userID)
	if err != nil {
		return nil, 0, fmt.Errorf("list contacts of user %s: %w", userID, err)
	}
	total, err := s.contacts.CountByUser(ctx, nil, userID)
	if err != nil {
		return nil, 0, fmt.Errorf("count contacts of user %s: %w", userID, err)
	}
	return contacts, total, nil
}

func (s *contactServiceImpl) Get(ctx context.Context, id string) (*model.Contact, error) {
	c, err := s.contacts.GetVisible(ctx, nil, id)
	if err != nil {
		return nil, notFoundOr(fmt.Sprintf("get contact %s", id), err)
	}
	return c, nil
}

func (s *contactServiceImpl) Create(ctx context.Context, userID string, in model.ContactInput) (*model.Contact, error) {
	// 外部 API 呼び出しはトランザクション外で行う
	addr := s.addresses.Enrich(ctx, in.Address)

	id, err := repository.ExecuteWithResult(ctx, s.tx, func(ctx context.Context, q repository.Querier) (string, error) {
		c, err := s.contacts.Insert(ctx, q, userID, in.Fields())
		if err != nil {
			return "", fmt.Errorf("insert: %w", err)
		}
		if _, err := s.addresses.SaveAddress(ctx, q, c.ID, addr); err != nil {
			return "", fmt.Errorf("contact %s: %w", c.ID, err)
		}
		if err := s.phones.CreateAll(ctx, q, c.ID, model.PhonesFrom(in.Phones)); err != nil {
			return "", fmt.Errorf("contact %s: %w", c.ID, err)
		}
		if err := s.emails.CreateAll(ctx, q, c.ID, model.EmailsFrom(in.Emails)); err != nil {
			return "", fmt.Errorf("contact %s: %w", c.ID, err)
		}
		return c.ID, nil
	})
	if err != nil {
		slog.Error("create contact failed", "user_id", userID, "error", err)
		return nil, fmt.Errorf("create contact: %w", err)
	}
	slog.Info("contact created", "contact_id", id, "user_id", userID)

	return s.reload(ctx, "create", id)
}

func (s *contactServiceImpl) Update(ctx context.Context, id string, in model.ContactInput) (*model.Contact, error) {
	current, err := s.contacts.GetVisible(ctx, nil, id)
	if err != nil {
		return nil, notFoundOr(fmt.Sprintf("update contact %s", id), err)
	}

	addr := s.addresses.Enrich(ctx, in.Address)

	err = s.tx.Execute(ctx, func(ctx context.Context, q repository.Querier) error {
		ok, err := s.contacts.ApplyFields(ctx, q, current, in.Fields())
		if err != nil {
			return fmt.Errorf("apply fields: %w", err)
		}
		if !ok {
			return ErrContactNotFound
		}
		if _, err := s.addresses.SaveAddress(ctx, q, id, addr); err != nil {
			return err
		}
		if err := s.phones.ReplaceAll(ctx, q, id, model.PhonesFrom(in.Phones)); err != nil {
			return err
		}
		return s.emails.ReplaceAll(ctx, q, id, model.EmailsFrom(in.Emails))
	})
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			slog.Error("update contact failed", "contact_id", id, "error", err)
		}
		return nil, fmt.Errorf("update contact %s: %w", id, err)
	}
	slog.Info("contact updated", "contact_id", id)

	return s.reload(ctx, "update", id)
}

func (s *contactServiceImpl) Delete(ctx context.Context, id string) error {
	current, err := s.contacts.GetVisible(ctx, nil, id)
	if err != nil {
		return notFoundOr(fmt.Sprintf("delete contact %s", id), err)
	}

	err = s.tx.Execute(ctx, func(ctx context.Context, q repository.Querier) error {
		if _, err := s.addresses.DeleteAddress(ctx, q, id); err != nil {
			return err
		}
		if _, err := s.phones.DeleteAll(ctx, q, id); err != nil {
			return err
		}
		if _, err := s.emails.DeleteAll(ctx, q, id); err != nil {
			return err
		}
		ok, err := s.contacts.SoftDelete(ctx, q, current)
		if err != nil {
			return fmt.Errorf("soft delete: %w", err)
		}
		if !ok {
			return ErrContactNotFound
		}
		return nil
	})
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			slog.Error("delete contact failed", "contact_id", id, "error", err)
		}
		return fmt.Errorf("delete contact %s: %w", id, err)
	}
	slog.Info("contact deleted", "contact_id", id)
	return nil
}

// reload re-reads the aggregate after commit. Soft-deleted rows are included
// so that a concurrent delete does not turn a committed write into an error.
func (s *contactServiceImpl) reload(ctx context.Context, op, id string) (*model.Contact, error) {
	c, err := s.contacts.GetAny(ctx, nil, id)
	if err != nil {
		return nil, fmt.Errorf("%s contact %s: reload: %w", op, id, err)
	}
	return c, nil
}

func notFoundOr(op string, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%s: %w", op, ErrContactNotFound)
	}
	return fmt.Errorf("%s: %w", op, err)
}
