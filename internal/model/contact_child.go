package model

import "time"

// Phone is one formatted phone number of a contact.
type Phone struct {
	ID        string    `json:"id"`
	ContactID string    `json:"-"`
	Phone     string    `json:"phone"`
	SortOrder int       `json:"-"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// Email is one email address of a contact.
type Email struct {
	ID        string    `json:"id"`
	ContactID string    `json:"-"`
	Email     string    `json:"email"`
	SortOrder int       `json:"-"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// PhonesFrom builds unsaved phone rows in input order.
func PhonesFrom(values []string) []*Phone {
	out := make([]*Phone, 0, len(values))
	for _, v := range values {
		out = append(out, &Phone{Phone: v})
	}
	return out
}

// EmailsFrom builds unsaved email rows in input order.
func EmailsFrom(values []string) []*Email {
	out := make([]*Email, 0, len(values))
	for _, v := range values {
		out = append(out, &Email{Email: v})
	}
	return out
}
