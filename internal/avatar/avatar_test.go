package avatar

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// Smallest valid PNG: signature plus IHDR chunk header is enough for sniffing.
var pngHeader = []byte{
	0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A,
	0x00, 0x00, 0x00, 0x0D, 0x49, 0x48, 0x44, 0x52,
	0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1F, 0x15, 0xC4, 0x89,
}

func TestDetect(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		wantExt string
		wantErr error
	}{
		{"png", pngHeader, ".png", nil},
		{"gif", []byte("GIF89a\x01\x00\x01\x00\x00\x00\x00"), ".gif", nil},
		{"text", []byte("hello, this is not an image"), "", ErrNotImage},
		{"empty", nil, "", ErrEmpty},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ext, err := Detect(tt.data)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Detect() error = %v, want %v", err, tt.wantErr)
			}
			if ext != tt.wantExt {
				t.Errorf("Detect() ext = %q, want %q", ext, tt.wantExt)
			}
		})
	}
}

func TestSaveAndDelete(t *testing.T) {
	root := t.TempDir()
	s := NewStore(root)

	rel, err := s.Save(7, pngHeader, ".png")
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if !strings.HasPrefix(rel, "images/avatars/7/") || !strings.HasSuffix(rel, ".png") {
		t.Fatalf("unexpected relative path %q", rel)
	}

	full := filepath.Join(root, filepath.FromSlash(rel))
	data, err := os.ReadFile(full)
	if err != nil {
		t.Fatalf("saved file missing: %v", err)
	}
	if len(data) != len(pngHeader) {
		t.Errorf("saved %d bytes, want %d", len(data), len(pngHeader))
	}

	entries, err := os.ReadDir(filepath.Dir(full))
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("expected only the avatar in the user dir, found %d entries", len(entries))
	}

	if err := s.Delete(rel); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := os.Stat(filepath.Dir(full)); !os.IsNotExist(err) {
		t.Errorf("expected empty user dir to be pruned, stat err = %v", err)
	}

	// Deleting again is harmless.
	if err := s.Delete(rel); err != nil {
		t.Errorf("second Delete failed: %v", err)
	}
}

func TestDeleteKeepsNonEmptyDir(t *testing.T) {
	s := NewStore(t.TempDir())

	first, err := s.Save(1, pngHeader, ".png")
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	second, err := s.Save(1, pngHeader, ".png")
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if first == second {
		t.Fatal("expected unique file names")
	}

	if err := s.Delete(first); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(s.Root(), filepath.FromSlash(second))); err != nil {
		t.Errorf("sibling avatar removed: %v", err)
	}
}

func TestDeleteRejectsEscape(t *testing.T) {
	s := NewStore(t.TempDir())

	for _, rel := range []string{"../etc/passwd", "images/../../outside.png", ""} {
		if err := s.Delete(rel); !errors.Is(err, ErrOutsideRoot) {
			t.Errorf("Delete(%q) error = %v, want ErrOutsideRoot", rel, err)
		}
	}
}

func TestRemoveUser(t *testing.T) {
	s := NewStore(t.TempDir())
	rel, err := s.Save(3, pngHeader, ".png")
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if err := s.RemoveUser(3); err != nil {
		t.Fatalf("RemoveUser failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(s.Root(), filepath.FromSlash(rel))); !os.IsNotExist(err) {
		t.Errorf("expected avatar to be gone, stat err = %v", err)
	}
	if err := s.RemoveUser(99); err != nil {
		t.Errorf("RemoveUser on missing dir failed: %v", err)
	}
}
