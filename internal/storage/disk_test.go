package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDisk_SaveReadRemove(t *testing.T) {
	disk, err := NewDisk(t.TempDir())
	if err != nil {
		t.Fatalf("NewDisk() error = %v", err)
	}

	name := disk.FileName("alice", 7)
	if name != "Registered_alice7.jpg" {
		t.Errorf("FileName = %s, want Registered_alice7.jpg", name)
	}

	path, err := disk.Save(name, []byte("jpeg-bytes"))
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if filepath.Base(path) != name {
		t.Errorf("saved path %s does not end in %s", path, name)
	}

	data, err := disk.Read(name)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if string(data) != "jpeg-bytes" {
		t.Errorf("Read() = %q", data)
	}

	if err := disk.Remove(name); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if _, err := disk.Read(name); err == nil {
		t.Error("Read() after Remove() should fail")
	}
}

func TestDisk_RemoveMissingIsNoop(t *testing.T) {
	disk, err := NewDisk(t.TempDir())
	if err != nil {
		t.Fatalf("NewDisk() error = %v", err)
	}
	if err := disk.Remove("Registered_ghost1.jpg"); err != nil {
		t.Errorf("Remove() of missing file error = %v", err)
	}
}

func TestDisk_SaveLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	disk, err := NewDisk(dir)
	if err != nil {
		t.Fatalf("NewDisk() error = %v", err)
	}

	if _, err := disk.Save("Registered_a1.jpg", []byte("x")); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".tmp") {
			t.Errorf("temp file left behind: %s", e.Name())
		}
	}
}

func TestDisk_FileNameSanitizesUsername(t *testing.T) {
	disk, err := NewDisk(t.TempDir())
	if err != nil {
		t.Fatalf("NewDisk() error = %v", err)
	}

	name := disk.FileName("../evil user", 3)
	if name != "Registered____evil_user3.jpg" {
		t.Errorf("FileName = %s", name)
	}
	if strings.ContainsAny(name, "/\\ ") {
		t.Errorf("name contains unsafe characters: %s", name)
	}
	if filepath.Base(disk.Path(name)) != name {
		t.Errorf("Path() escaped directory for %s", name)
	}
}
