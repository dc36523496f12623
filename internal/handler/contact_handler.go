package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/thomasjvidal/teste-backend-pleno/internal/model"
	"github.com/thomasjvidal/teste-backend-pleno/internal/repository"
	"github.com/thomasjvidal/teste-backend-pleno/internal/service"
	"github.com/thomasjvidal/teste-backend-pleno/pkg/auth"
)

// ContactHandler serves the /api/contacts resource.
type ContactHandler struct {
	contactService service.ContactService
}

// NewContactHandler creates a ContactHandler with the given service.
func NewContactHandler(contactService service.ContactService) *ContactHandler {
	return &ContactHandler{contactService: contactService}
}

type envelope struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
	Meta    any    `json:"meta,omitempty"`
	Errors  any    `json:"errors,omitempty"`
	Error   string `json:"error,omitempty"`
}

type listMeta struct {
	Total  int    `json:"total"`
	UserID string `json:"user_id"`
}

// contactResponse is the serialized contact aggregate.
type contactResponse struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	UserID      string         `json:"user_id"`
	Address     *model.Address `json:"address"`
	Phones      []*model.Phone `json:"phones"`
	Emails      []*model.Email `json:"emails"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

func toContactResponse(c *model.Contact) contactResponse {
	resp := contactResponse{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		UserID:      c.UserID,
		Address:     c.Address,
		Phones:      c.Phones,
		Emails:      c.Emails,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
	// Return [] not null for empty lists
	if resp.Phones == nil {
		resp.Phones = []*model.Phone{}
	}
	if resp.Emails == nil {
		resp.Emails = []*model.Email{}
	}
	return resp
}

// List handles GET /api/contacts.
func (h *ContactHandler) List(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}

	contacts, total, err := h.contactService.List(r.Context(), p.ID)
	if err != nil {
		h.failure(w, r, "Failed to retrieve contacts", err)
		return
	}

	data := make([]contactResponse, 0, len(contacts))
	for _, c := range contacts {
		data = append(data, toContactResponse(c))
	}
	writeJSON(w, http.StatusOK, envelope{
		Status:  "success",
		Message: "Contacts retrieved successfully",
		Data:    data,
		Meta:    listMeta{Total: total, UserID: p.ID},
	})
}

// Create handles POST /api/contacts.
func (h *ContactHandler) Create(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}
	req, ok := decodeContactRequest(w, r)
	if !ok {
		return
	}

	c, err := h.contactService.Create(r.Context(), p.ID, req.input())
	if err != nil {
		h.failure(w, r, "Failed to create contact", err)
		return
	}
	writeJSON(w, http.StatusCreated, envelope{
		Status:  "success",
		Message: "Contact created successfully",
		Data:    toContactResponse(c),
	})
}

// Show handles GET /api/contacts/{id}. Only the owner or an admin can see a contact.
func (h *ContactHandler) Show(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}
	id, ok := contactID(w, r)
	if !ok {
		return
	}

	c, err := h.contactService.Get(r.Context(), id)
	if err != nil {
		h.failure(w, r, "Failed to retrieve contact", err)
		return
	}
	// 他人の連絡先は存在しないものとして扱う
	if c.UserID != p.ID && !p.IsAdmin() {
		notFound(w)
		return
	}
	writeJSON(w, http.StatusOK, envelope{
		Status:  "success",
		Message: "Contact retrieved successfully",
		Data:    toContactResponse(c),
	})
}

// Update handles PUT /api/contacts/{id} (admin only).
func (h *ContactHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := contactID(w, r)
	if !ok {
		return
	}
	req, ok := decodeContactRequest(w, r)
	if !ok {
		return
	}

	c, err := h.contactService.Update(r.Context(), id, req.input())
	if err != nil {
		h.failure(w, r, "Failed to update contact", err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{
		Status:  "success",
		Message: "Contact updated successfully",
		Data:    toContactResponse(c),
	})
}

// Delete handles DELETE /api/contacts/{id} (admin only).
func (h *ContactHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := contactID(w, r)
	if !ok {
		return
	}

	if err := h.contactService.Delete(r.Context(), id); err != nil {
		h.failure(w, r, "Failed to delete contact", err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{
		Status:  "success",
		Message: "Contact deleted successfully",
		Data:    map[string]string{"deleted_contact_id": id},
	})
}

func decodeContactRequest(w http.ResponseWriter, r *http.Request) (*contactRequest, bool) {
	var req contactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_json"})
		return nil, false
	}
	if errs := req.validate(); errs != nil {
		writeJSON(w, http.StatusUnprocessableEntity, envelope{
			Status:  "error",
			Message: "Validation failed",
			Errors:  errs,
		})
		return nil, false
	}
	return &req, true
}

// contactID returns the {id} path value in canonical UUID form, answering 404
// for anything that is not a UUID.
func contactID(w http.ResponseWriter, r *http.Request) (string, bool) {
	u, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		notFound(w)
		return "", false
	}
	return u.String(), true
}

func notFound(w http.ResponseWriter) {
	writeJSON(w, http.StatusNotFound, envelope{Status: "error", Message: "Contact not found"})
}

func (h *ContactHandler) failure(w http.ResponseWriter, r *http.Request, message string, err error) {
	if errors.Is(err, repository.ErrNotFound) {
		notFound(w)
		return
	}
	slog.Error(message, "request_id", RequestIDFromContext(r.Context()), "error", err)
	writeJSON(w, http.StatusInternalServerError, envelope{
		Status:  "error",
		Message: message,
		Error:   err.Error(),
	})
}
