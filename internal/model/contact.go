package model

import "time"

// Contact is the aggregate root: a contact owned by one user together with its
// address, phones and emails.
type Contact struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	DeletedAt   *time.Time `json:"-"`

	Address *Address `json:"-"`
	Phones  []*Phone `json:"-"`
	Emails  []*Email `json:"-"`
}

// IsDeleted reports whether the contact has been soft-deleted.
func (c *Contact) IsDeleted() bool {
	return c.DeletedAt != nil
}

// ContactFields are the columns of the contacts row itself.
type ContactFields struct {
	Name        string
	Description string
}

// ContactInput is a validated create/update payload for the whole aggregate.
type ContactInput struct {
	Name        string
	Description string
	Address     AddressInput
	Phones      []string
	Emails      []string
}

// Fields returns the contact row columns of the input.
func (in ContactInput) Fields() ContactFields {
	return ContactFields{Name: in.Name, Description: in.Description}
}
