package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/facegate/facegate/internal/catalog"
	"github.com/facegate/facegate/internal/database"
	"github.com/facegate/facegate/internal/embedder"
	"github.com/facegate/facegate/internal/render"
)

// maxUploadSize caps the size of uploaded images (64 MB).
const maxUploadSize = 64 << 20

// respondJSON sends a JSON response.
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// respondError sends an error response.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"message": message})
}

// respondJPEG sends annotated image bytes.
func respondJPEG(w http.ResponseWriter, data []byte) {
	w.Header().Set("Content-Type", "image/jpeg")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// readImageFile extracts and validates the uploaded "file" form field. It
// reports (nil, false) after writing the error response itself.
func readImageFile(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		respondError(w, http.StatusUnprocessableEntity, "failed to parse multipart form")
		return nil, false
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, "image file is required")
		return nil, false
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to read uploaded file")
		return nil, false
	}

	// Reject undecodable uploads before any detection or store work runs.
	if _, err := render.DecodeImage(data); err != nil {
		respondError(w, http.StatusUnprocessableEntity, "uploaded file is not a supported image")
		return nil, false
	}
	return data, true
}

// respondCatalogError maps catalog and embedder failures onto HTTP statuses.
func respondCatalogError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, catalog.ErrNoFaceDetected):
		respondError(w, http.StatusUnprocessableEntity, "no face detected in the image")
	case errors.Is(err, catalog.ErrAlreadyRegistered):
		respondError(w, http.StatusConflict, "face already registered")
	case errors.Is(err, database.ErrNotFound):
		respondError(w, http.StatusNotFound, "user not found")
	case errors.Is(err, embedder.ErrTimeout):
		respondError(w, http.StatusGatewayTimeout, "face detection timed out")
	case errors.Is(err, embedder.ErrUnavailable):
		respondError(w, http.StatusBadGateway, "face detection service unavailable")
	default:
		respondError(w, http.StatusInternalServerError, "internal server error")
	}
}

// HealthCheck handles the health check endpoint.
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}
