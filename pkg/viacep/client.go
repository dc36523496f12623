// Package viacep looks up Brazilian postal codes (CEP) on the ViaCEP API.
package viacep

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// DefaultBaseURL is the public ViaCEP endpoint.
const DefaultBaseURL = "https://viacep.com.br/ws"

// DefaultTimeout bounds a single lookup.
const DefaultTimeout = 10 * time.Second

var (
	// ErrNotFound is returned when ViaCEP has no record for the postal code.
	ErrNotFound = errors.New("viacep: postal code not found")
	// ErrInvalidPostalCode is returned for input that does not contain exactly 8 digits.
	ErrInvalidPostalCode = errors.New("viacep: invalid postal code")
)

// Result is the subset of the ViaCEP response the API uses.
// Absent keys stay nil.
type Result struct {
	CEP         string          `json:"cep,omitempty"`
	Logradouro  *string         `json:"logradouro,omitempty"`
	Complemento *string         `json:"complemento,omitempty"`
	Bairro      *string         `json:"bairro,omitempty"`
	Localidade  *string         `json:"localidade,omitempty"`
	UF          *string         `json:"uf,omitempty"`
	Erro        json.RawMessage `json:"erro,omitempty"`
}

// NotFound reports whether the response carried the "erro" flag.
func (r *Result) NotFound() bool {
	return len(r.Erro) > 0 && string(r.Erro) != "null"
}

// Client looks up a postal code.
type Client interface {
	Lookup(ctx context.Context, postalCode string) (*Result, error)
}

// RealClient calls ViaCEP over HTTP.
type RealClient struct {
	BaseURL    string
	httpClient *http.Client
}

// NewClient creates a RealClient. Empty baseURL and non-positive timeout fall
// back to the defaults.
func NewClient(baseURL string, timeout time.Duration) *RealClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &RealClient{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

var _ Client = (*RealClient)(nil)

// Normalize strips every non-digit character from a postal code.
func Normalize(postalCode string) string {
	var b strings.Builder
	b.Grow(len(postalCode))
	for _, r := range postalCode {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Lookup fetches the address registered for postalCode.
func (c *RealClient) Lookup(ctx context.Context, postalCode string) (*Result, error) {
	cep := Normalize(postalCode)
	if len(cep) != 8 {
		return nil, ErrInvalidPostalCode
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/"+cep+"/json/", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("viacep: request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("viacep: unexpected status %d", resp.StatusCode)
	}

	var result Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("viacep: decode: %w", err)
	}
	if result.NotFound() {
		return nil, ErrNotFound
	}
	return &result, nil
}
