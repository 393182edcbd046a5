// Package storage persists registered face artifacts on local disk.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Disk stores face artifacts as JPEG files in a single directory.
type Disk struct {
	dir string
}

// NewDisk creates a disk store rooted at dir, creating it if needed.
func NewDisk(dir string) (*Disk, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create artifact directory: %w", err)
	}
	return &Disk{dir: dir}, nil
}

// FileName returns the artifact name for an enrollment:
// Registered_{username}{id}.jpg with the username reduced to a path-safe form.
func (d *Disk) FileName(username string, id int64) string {
	return fmt.Sprintf("Registered_%s%d.jpg", sanitizeName(username), id)
}

// Path returns the full path for an artifact name.
func (d *Disk) Path(name string) string {
	return filepath.Join(d.dir, filepath.Base(name))
}

// Save writes artifact data atomically: a uniquely named temp file in the
// same directory, then rename.
func (d *Disk) Save(name string, data []byte) (string, error) {
	final := d.Path(name)
	tmp := final + "." + uuid.NewString() + ".tmp"

	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return "", fmt.Errorf("write artifact: %w", err)
	}
	if err := os.Rename(tmp, final); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("rename artifact: %w", err)
	}
	return final, nil
}

// Read returns the artifact contents.
func (d *Disk) Read(name string) ([]byte, error) {
	data, err := os.ReadFile(d.Path(name))
	if err != nil {
		return nil, fmt.Errorf("read artifact: %w", err)
	}
	return data, nil
}

// Remove deletes an artifact. A missing file is not an error.
func (d *Disk) Remove(name string) error {
	if err := os.Remove(d.Path(name)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove artifact: %w", err)
	}
	return nil
}

// sanitizeName keeps letters, digits, dashes and underscores so an arbitrary
// username cannot escape the artifact directory or produce an invalid path.
func sanitizeName(username string) string {
	var b strings.Builder
	for _, r := range username {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}
