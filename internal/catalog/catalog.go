// Package catalog implements the enrollment and verification engines over
// the persisted set of enrolled identities. It owns the in-memory projection
// of the store (the known-faces snapshot) and all rules around duplicates,
// tolerances and artifact lifecycle.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/facegate/facegate/internal/database"
	"github.com/facegate/facegate/internal/embedder"
	"github.com/facegate/facegate/internal/facematch"
	"github.com/facegate/facegate/internal/render"
	"github.com/facegate/facegate/internal/storage"
)

// unknownLabel is rendered for faces that match nothing within tolerance.
const unknownLabel = "Unknown"

var (
	// ErrNoFaceDetected reports that the embedder found no face in the image.
	ErrNoFaceDetected = errors.New("no face detected in image")

	// ErrAlreadyRegistered reports that the first detected face is closer
	// than the duplicate threshold to an enrolled identity.
	ErrAlreadyRegistered = errors.New("face already registered")
)

// Embedder is the external detection+encoding capability the catalog consumes.
type Embedder interface {
	Detect(ctx context.Context, imageData []byte) ([]embedder.Face, error)
}

// Options are the matching knobs. The duplicate threshold and the default
// verification tolerance coincide numerically (0.6) but are independent
// settings.
type Options struct {
	DuplicateThreshold float64
	DefaultTolerance   float64
}

// UserSummary is one row of the identity listing.
type UserSummary struct {
	ID           int64
	Username     string
	RegisteredAt time.Time
	Image        []byte // registered artifact bytes, nil when unavailable
}

// snapshot is an immutable projection of the store: three parallel slices in
// catalog (id) order. It is rebuilt wholesale after every mutation and
// swapped atomically, never patched in place.
type snapshot struct {
	ids        []int64
	names      []string
	embeddings [][]float64
}

// Catalog owns the known-faces snapshot and orchestrates enrollment,
// verification, listing and deletion.
type Catalog struct {
	store     database.UserStore
	artifacts *storage.Disk
	embedder  Embedder
	opts      Options

	mu   sync.RWMutex // guards snap
	snap *snapshot    // nil until first load

	// writeMu serializes every mutating sequence (duplicate-check +
	// insert + reload, delete + reload) so concurrent enrollments of the
	// same face cannot both pass the duplicate check.
	writeMu sync.Mutex
}

// New creates a catalog over the given store, artifact directory and embedder.
func New(store database.UserStore, artifacts *storage.Disk, emb Embedder, opts Options) *Catalog {
	return &Catalog{
		store:     store,
		artifacts: artifacts,
		embedder:  emb,
		opts:      opts,
	}
}

// DefaultTolerance returns the verification tolerance used when a request
// does not provide one.
func (c *Catalog) DefaultTolerance() float64 {
	return c.opts.DefaultTolerance
}

// Register enrolls the first face detected in image under username and
// returns the input image annotated with every detected face box.
//
// The write is atomic from the store's point of view: an id is reserved
// first, the artifact is written under that id, and a single insert carries
// both the embedding and the final artifact path. A failed insert removes
// the artifact again, so no record ever exists without its image.
func (c *Catalog) Register(ctx context.Context, imageData []byte, username string) ([]byte, error) {
	faces, err := c.embedder.Detect(ctx, imageData)
	if err != nil {
		return nil, fmt.Errorf("detect faces: %w", err)
	}
	if len(faces) == 0 {
		return nil, ErrNoFaceDetected
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	snap, err := c.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	// Only the first detected face is enrolled, matching the listing order
	// of the embedder. An empty catalog is never a duplicate.
	if _, distance, ok := facematch.Nearest(snap.embeddings, faces[0].Embedding); ok && distance < c.opts.DuplicateThreshold {
		return nil, ErrAlreadyRegistered
	}

	id, err := c.store.NextID(ctx)
	if err != nil {
		return nil, fmt.Errorf("reserve id: %w", err)
	}

	name := c.artifacts.FileName(username, id)
	path, err := c.artifacts.Save(name, imageData)
	if err != nil {
		return nil, fmt.Errorf("save artifact: %w", err)
	}

	err = c.store.Insert(ctx, database.User{
		ID:        id,
		Username:  username,
		Embedding: faces[0].Embedding,
		ImagePath: path,
	})
	if err != nil {
		c.artifacts.Remove(name)
		return nil, fmt.Errorf("insert user: %w", err)
	}

	if _, err := c.reload(ctx); err != nil {
		return nil, err
	}

	return c.annotate(imageData, marksWithoutLabels(faces))
}

// Verify labels every face detected in image against the catalog and returns
// the annotated image. A face matches when its nearest enrolled embedding is
// within tolerance; otherwise it is labeled "Unknown". Faces are labeled
// independently, with no cross-face deduplication. Verification never writes.
func (c *Catalog) Verify(ctx context.Context, imageData []byte, tolerance float64) ([]byte, error) {
	snap, err := c.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	faces, err := c.embedder.Detect(ctx, imageData)
	if err != nil {
		return nil, fmt.Errorf("detect faces: %w", err)
	}
	if len(faces) == 0 {
		return nil, ErrNoFaceDetected
	}

	return c.annotate(imageData, labelFaces(snap, faces, tolerance))
}

// List returns a summary of every enrolled identity, with the registered
// artifact attached where it still resolves on disk. A missing artifact is
// reported as a nil image, not an error.
func (c *Catalog) List(ctx context.Context) ([]UserSummary, error) {
	users, err := c.store.SelectAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	summaries := make([]UserSummary, 0, len(users))
	for _, u := range users {
		s := UserSummary{
			ID:           u.ID,
			Username:     u.Username,
			RegisteredAt: u.RegisteredAt,
		}
		if u.ImagePath != "" {
			if data, err := c.artifacts.Read(filepath.Base(u.ImagePath)); err == nil {
				s.Image = data
			}
		}
		summaries = append(summaries, s)
	}
	return summaries, nil
}

// Delete removes an enrolled identity, its on-disk artifact, and reloads the
// snapshot so the identity stops matching immediately. Returns
// database.ErrNotFound when the id is unknown.
func (c *Catalog) Delete(ctx context.Context, id int64) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	imagePath, err := c.store.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return err
		}
		return fmt.Errorf("delete user %d: %w", id, err)
	}

	// The row is already gone from the store, so the snapshot must be
	// reloaded even when the artifact cannot be removed.
	var removeErr error
	if imagePath != "" {
		removeErr = c.artifacts.Remove(filepath.Base(imagePath))
	}

	if _, err := c.reload(ctx); err != nil {
		return err
	}
	return removeErr
}

// snapshot returns the current known-faces projection, loading it on first
// use. Readers share the snapshot pointer; they never see a half-built view.
func (c *Catalog) snapshot(ctx context.Context) (*snapshot, error) {
	c.mu.RLock()
	snap := c.snap
	c.mu.RUnlock()
	if snap != nil {
		return snap, nil
	}
	return c.reload(ctx)
}

// reload rebuilds the snapshot wholesale from the store and swaps it in
// atomically. On failure the cached snapshot is dropped so the next access
// retries instead of serving a stale view.
func (c *Catalog) reload(ctx context.Context) (*snapshot, error) {
	users, err := c.store.SelectAll(ctx)
	if err != nil {
		c.mu.Lock()
		c.snap = nil
		c.mu.Unlock()
		return nil, fmt.Errorf("load known faces: %w", err)
	}

	snap := &snapshot{
		ids:        make([]int64, len(users)),
		names:      make([]string, len(users)),
		embeddings: make([][]float64, len(users)),
	}
	for i, u := range users {
		snap.ids[i] = u.ID
		snap.names[i] = u.Username
		snap.embeddings[i] = u.Embedding
	}

	c.mu.Lock()
	c.snap = snap
	c.mu.Unlock()
	return snap, nil
}

// labelFaces pairs every detected face with its nearest catalog entry,
// labeling it with the matched username when the distance is within
// tolerance and "Unknown" otherwise.
func labelFaces(snap *snapshot, faces []embedder.Face, tolerance float64) []render.Mark {
	marks := make([]render.Mark, len(faces))
	for i, face := range faces {
		label := unknownLabel
		if index, distance, ok := facematch.Nearest(snap.embeddings, face.Embedding); ok && distance <= tolerance {
			label = snap.names[index]
		}
		marks[i] = render.Mark{Box: face.Box, Label: label}
	}
	return marks
}

func marksWithoutLabels(faces []embedder.Face) []render.Mark {
	marks := make([]render.Mark, len(faces))
	for i, face := range faces {
		marks[i] = render.Mark{Box: face.Box}
	}
	return marks
}

// annotate decodes the original image, draws the marks and re-encodes as JPEG.
func (c *Catalog) annotate(imageData []byte, marks []render.Mark) ([]byte, error) {
	img, err := render.DecodeImage(imageData)
	if err != nil {
		return nil, err
	}
	return render.EncodeJPEG(render.Annotate(img, marks))
}
