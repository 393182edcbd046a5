package handlers

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/facegate/facegate/internal/catalog"
	"github.com/go-chi/chi/v5"
)

// UsersHandler handles the identity listing and deletion endpoints.
type UsersHandler struct {
	catalog *catalog.Catalog
}

// NewUsersHandler creates a new users handler.
func NewUsersHandler(c *catalog.Catalog) *UsersHandler {
	return &UsersHandler{catalog: c}
}

// userResponse is one enrolled identity in the listing. The artifact bytes
// are base64 in JSON; a missing artifact or timestamp serializes as null.
type userResponse struct {
	ID           int64   `json:"id"`
	Username     string  `json:"username"`
	RegisteredAt *string `json:"registered_at"`
	Image        []byte  `json:"image"`
}

// List returns every enrolled identity with its registered artifact.
func (h *UsersHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.catalog.List(r.Context())
	if err != nil {
		log.Printf("list users failed: %v", err)
		respondCatalogError(w, err)
		return
	}

	resp := make([]userResponse, 0, len(users))
	for _, u := range users {
		item := userResponse{
			ID:       u.ID,
			Username: u.Username,
			Image:    u.Image,
		}
		if !u.RegisteredAt.IsZero() {
			ts := u.RegisteredAt.Format(time.RFC3339)
			item.RegisteredAt = &ts
		}
		resp = append(resp, item)
	}

	respondJSON(w, http.StatusOK, resp)
}

// Delete removes an enrolled identity by id.
func (h *UsersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, "user id must be an integer")
		return
	}

	if err := h.catalog.Delete(r.Context(), id); err != nil {
		log.Printf("delete user %d failed: %v", id, err)
		respondCatalogError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "user deleted"})
}
