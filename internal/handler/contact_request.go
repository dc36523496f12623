package handler

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/thomasjvidal/teste-backend-pleno/internal/model"
)

const (
	maxNameLength        = 255
	maxDescriptionLength = 1000
	maxAddressNumber     = 20
	maxRegionLength      = 100
	maxStreetLength      = 255
	maxEmailLength       = 255
	maxListItems         = 5
)

var (
	zipCodePattern = regexp.MustCompile(`^\d{5}-?\d{3}$`)
	phonePattern   = regexp.MustCompile(`^\(\d{2}\)\s\d{4,5}-?\d{4}$`)
)

// contactRequest is the JSON body for POST/PUT /api/contacts.
type contactRequest struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Address     *addressRequest `json:"address"`
	Phones      []string        `json:"phones"`
	Emails      []string        `json:"emails"`
}

type addressRequest struct {
	ZipCode       string  `json:"zip_code"`
	AddressNumber string  `json:"address_number"`
	Country       *string `json:"country"`
	State         *string `json:"state"`
	StreetAddress *string `json:"street_address"`
	City          *string `json:"city"`
	AddressLine   *string `json:"address_line"`
	Neighborhood  *string `json:"neighborhood"`
}

// validate returns field -> message for every failed rule, or nil.
func (req *contactRequest) validate() map[string]string {
	errs := map[string]string{}

	requiredMax(errs, "name", req.Name, maxNameLength)
	requiredMax(errs, "description", req.Description, maxDescriptionLength)

	if req.Address == nil {
		errs["address"] = "The address field is required."
	} else {
		a := req.Address
		if strings.TrimSpace(a.ZipCode) == "" {
			errs["address.zip_code"] = "The address.zip_code field is required."
		} else if !zipCodePattern.MatchString(a.ZipCode) {
			errs["address.zip_code"] = "The address.zip_code field format is invalid."
		}
		requiredMax(errs, "address.address_number", a.AddressNumber, maxAddressNumber)
		optionalMax(errs, "address.country", a.Country, maxRegionLength)
		optionalMax(errs, "address.state", a.State, maxRegionLength)
		optionalMax(errs, "address.city", a.City, maxRegionLength)
		optionalMax(errs, "address.neighborhood", a.Neighborhood, maxRegionLength)
		optionalMax(errs, "address.street_address", a.StreetAddress, maxStreetLength)
		optionalMax(errs, "address.address_line", a.AddressLine, maxStreetLength)
	}

	if listSize(errs, "phones", len(req.Phones)) {
		for i, p := range req.Phones {
			if !phonePattern.MatchString(p) {
				errs[fmt.Sprintf("phones.%d", i)] = fmt.Sprintf("The phones.%d field format is invalid.", i)
			}
		}
	}

	if listSize(errs, "emails", len(req.Emails)) {
		for i, e := range req.Emails {
			key := fmt.Sprintf("emails.%d", i)
			switch {
			case utf8.RuneCountInString(e) > maxEmailLength:
				errs[key] = fmt.Sprintf("The %s field must not be greater than %d characters.", key, maxEmailLength)
			case !validEmail(e):
				errs[key] = fmt.Sprintf("The %s field must be a valid email address.", key)
			}
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

func requiredMax(errs map[string]string, field, v string, max int) {
	switch {
	case strings.TrimSpace(v) == "":
		errs[field] = fmt.Sprintf("The %s field is required.", field)
	case utf8.RuneCountInString(v) > max:
		errs[field] = fmt.Sprintf("The %s field must not be greater than %d characters.", field, max)
	}
}

func optionalMax(errs map[string]string, field string, v *string, max int) {
	if v != nil && utf8.RuneCountInString(*v) > max {
		errs[field] = fmt.Sprintf("The %s field must not be greater than %d characters.", field, max)
	}
}

func listSize(errs map[string]string, field string, n int) bool {
	switch {
	case n == 0:
		errs[field] = fmt.Sprintf("The %s field is required.", field)
	case n > maxListItems:
		errs[field] = fmt.Sprintf("The %s field must not have more than %d items.", field, maxListItems)
	default:
		return true
	}
	return false
}

// validEmail accepts a bare address only, no display name.
func validEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s
}

func (req *contactRequest) input() model.ContactInput {
	a := req.Address
	return model.ContactInput{
		Name:        req.Name,
		Description: req.Description,
		Address: model.AddressInput{
			ZipCode:       a.ZipCode,
			AddressNumber: a.AddressNumber,
			Country:       nilIfBlank(a.Country),
			State:         nilIfBlank(a.State),
			StreetAddress: nilIfBlank(a.StreetAddress),
			City:          nilIfBlank(a.City),
			AddressLine:   nilIfBlank(a.AddressLine),
			Neighborhood:  nilIfBlank(a.Neighborhood),
		},
		Phones: req.Phones,
		Emails: req.Emails,
	}
}

// nilIfBlank maps "" and whitespace-only optional fields to NULL.
func nilIfBlank(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	return s
}
