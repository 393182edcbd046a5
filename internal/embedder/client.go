// Package embedder is the client for the external face detection and
// embedding service. The service receives an image and returns, for every
// detected face, a bounding box and a fixed-length float64 embedding; this
// package treats it as a black box.
package embedder

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/facegate/facegate/internal/render"
)

var (
	// ErrTimeout reports that the embedder did not answer within the
	// configured deadline. It is kept distinct from other failures so
	// callers can signal a gateway timeout instead of a generic upstream
	// error.
	ErrTimeout = errors.New("embedder timed out")

	// ErrUnavailable reports that the embedder answered with an error or
	// could not be reached at all.
	ErrUnavailable = errors.New("embedder unavailable")
)

// Face is one detection: a bounding box paired with its embedding.
type Face struct {
	Box       render.Box
	Embedding []float64
}

// Client calls the face embedding service.
type Client struct {
	baseURL string
	timeout time.Duration
	client  *http.Client
}

// New creates a new embedder client.
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		timeout: timeout,
		client:  &http.Client{},
	}
}

// detectResponse is the wire format of the /detect endpoint.
type detectResponse struct {
	FacesCount int          `json:"faces_count"`
	Faces      []detectFace `json:"faces"`
	Model      string       `json:"model"`
}

type detectFace struct {
	// [top, right, bottom, left] in pixel coordinates.
	Box       []int     `json:"box"`
	Embedding []float64 `json:"embedding"`
	Dim       int       `json:"dim"`
}

// Detect posts an image and returns all detected faces. The two sequences in
// the response (boxes, embeddings) are validated to pair 1:1 and to share one
// embedding dimensionality. An empty result is not an error; callers decide
// what zero faces means.
func (c *Client) Detect(ctx context.Context, imageData []byte) ([]Face, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	body, err := c.postMultipartImage(ctx, "/detect", imageData)
	if err != nil {
		return nil, err
	}

	var resp detectResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse embedder response: %w", err)
	}

	return validateFaces(resp)
}

// postMultipartImage posts the image as a multipart form to the given endpoint.
func (c *Client) postMultipartImage(ctx context.Context, endpoint string, imageData []byte) ([]byte, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", "image.jpg")
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := part.Write(imageData); err != nil {
		return nil, fmt.Errorf("failed to write image data: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, fmt.Errorf("%w: %v", ErrTimeout, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read embedder response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d: %s", ErrUnavailable, resp.StatusCode, string(body))
	}
	return body, nil
}

// validateFaces enforces the detection-result invariants: every face carries
// a 4-coordinate box and an embedding, and all embeddings share one length.
func validateFaces(resp detectResponse) ([]Face, error) {
	faces := make([]Face, 0, len(resp.Faces))
	dim := -1

	for i, f := range resp.Faces {
		if len(f.Box) != 4 {
			return nil, fmt.Errorf("face %d: box has %d coordinates, want 4", i, len(f.Box))
		}
		if len(f.Embedding) == 0 {
			return nil, fmt.Errorf("face %d: missing embedding", i)
		}
		if dim == -1 {
			dim = len(f.Embedding)
		} else if len(f.Embedding) != dim {
			return nil, fmt.Errorf("face %d: embedding dim %d differs from %d", i, len(f.Embedding), dim)
		}
		faces = append(faces, Face{
			Box: render.Box{
				Top:    f.Box[0],
				Right:  f.Box[1],
				Bottom: f.Box[2],
				Left:   f.Box[3],
			},
			Embedding: f.Embedding,
		})
	}
	return faces, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
