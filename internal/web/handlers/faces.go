package handlers

import (
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/facegate/facegate/internal/catalog"
)

// FacesHandler handles enrollment and verification endpoints.
type FacesHandler struct {
	catalog *catalog.Catalog
}

// NewFacesHandler creates a new faces handler.
func NewFacesHandler(c *catalog.Catalog) *FacesHandler {
	return &FacesHandler{catalog: c}
}

// Register enrolls the first face of the uploaded image under the given
// username and responds with the annotated image.
func (h *FacesHandler) Register(w http.ResponseWriter, r *http.Request) {
	data, ok := readImageFile(w, r)
	if !ok {
		return
	}

	username := strings.TrimSpace(r.FormValue("username"))
	if username == "" {
		respondError(w, http.StatusUnprocessableEntity, "username is required")
		return
	}

	annotated, err := h.catalog.Register(r.Context(), data, username)
	if err != nil {
		log.Printf("register %q failed: %v", sanitizeForLog(username), err)
		respondCatalogError(w, err)
		return
	}

	respondJPEG(w, annotated)
}

// Verify labels every face of the uploaded image against the catalog and
// responds with the annotated image. The optional "tolerance" form field
// overrides the configured default.
func (h *FacesHandler) Verify(w http.ResponseWriter, r *http.Request) {
	data, ok := readImageFile(w, r)
	if !ok {
		return
	}

	tolerance := h.catalog.DefaultTolerance()
	if raw := strings.TrimSpace(r.FormValue("tolerance")); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil || parsed < 0 {
			respondError(w, http.StatusUnprocessableEntity, "tolerance must be a non-negative number")
			return
		}
		tolerance = parsed
	}

	annotated, err := h.catalog.Verify(r.Context(), data, tolerance)
	if err != nil {
		log.Printf("verify failed: %v", err)
		respondCatalogError(w, err)
		return
	}

	respondJPEG(w, annotated)
}

// sanitizeForLog removes newlines and carriage returns to prevent log injection.
func sanitizeForLog(s string) string {
	return strings.NewReplacer("\n", "", "\r", "").Replace(s)
}
