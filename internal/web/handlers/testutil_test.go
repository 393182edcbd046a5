package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/facegate/facegate/internal/catalog"
	"github.com/facegate/facegate/internal/database/mock"
	"github.com/facegate/facegate/internal/embedder"
	"github.com/facegate/facegate/internal/render"
	"github.com/facegate/facegate/internal/storage"
	"github.com/go-chi/chi/v5"
)

// fakeEmbedder returns preset detections regardless of the image.
type fakeEmbedder struct {
	faces []embedder.Face
	err   error
}

func (f *fakeEmbedder) Detect(ctx context.Context, imageData []byte) ([]embedder.Face, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.faces, nil
}

// testCatalog creates a catalog backed by an in-memory store and a temp
// artifact directory.
func testCatalog(t *testing.T, emb catalog.Embedder) (*catalog.Catalog, *mock.UserStore) {
	t.Helper()
	store := mock.NewUserStore()
	disk, err := storage.NewDisk(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create artifact dir: %v", err)
	}
	cat := catalog.New(store, disk, emb, catalog.Options{
		DuplicateThreshold: 0.6,
		DefaultTolerance:   0.6,
	})
	return cat, store
}

// testJPEG builds a small decodable JPEG for upload bodies.
func testJPEG(t *testing.T) []byte {
	t.Helper()
	data, err := render.EncodeJPEG(image.NewRGBA(image.Rect(0, 0, 64, 64)))
	if err != nil {
		t.Fatalf("failed to encode test image: %v", err)
	}
	return data
}

// singleFace is a one-detection embedder response.
func singleFace(embedding ...float64) []embedder.Face {
	return []embedder.Face{{
		Box:       render.Box{Top: 4, Right: 40, Bottom: 40, Left: 4},
		Embedding: embedding,
	}}
}

// multipartUpload builds a multipart request with the given form fields and
// an optional "file" part.
func multipartUpload(t *testing.T, path string, fields map[string]string, file []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := writer.WriteField(k, v); err != nil {
			t.Fatalf("failed to write field %s: %v", k, err)
		}
	}
	if file != nil {
		part, err := writer.CreateFormFile("file", "face.jpg")
		if err != nil {
			t.Fatalf("failed to create file part: %v", err)
		}
		if _, err := part.Write(file); err != nil {
			t.Fatalf("failed to write file part: %v", err)
		}
	}
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

// requestWithChiParams creates a request with chi URL parameters
func requestWithChiParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// parseJSONResponse parses a JSON response body into the target type
func parseJSONResponse(t *testing.T, recorder *httptest.ResponseRecorder, target any) {
	t.Helper()
	if err := json.Unmarshal(recorder.Body.Bytes(), target); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nBody: %s", err, recorder.Body.String())
	}
}

// assertStatusCode checks if the response has the expected status code
func assertStatusCode(t *testing.T, recorder *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if recorder.Code != expected {
		t.Errorf("expected status %d, got %d\nBody: %s", expected, recorder.Code, recorder.Body.String())
	}
}

// assertContentType checks if the response has the expected content type
func assertContentType(t *testing.T, recorder *httptest.ResponseRecorder, expected string) {
	t.Helper()
	ct := recorder.Header().Get("Content-Type")
	if ct != expected {
		t.Errorf("expected Content-Type '%s', got '%s'", expected, ct)
	}
}

// assertJSONMessage checks if the response is a JSON object with the expected message
func assertJSONMessage(t *testing.T, recorder *httptest.ResponseRecorder, expectedMessage string) {
	t.Helper()
	var result map[string]string
	if err := json.Unmarshal(recorder.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse response: %v\nBody: %s", err, recorder.Body.String())
	}
	if result["message"] != expectedMessage {
		t.Errorf("expected message '%s', got '%s'", expectedMessage, result["message"])
	}
}
