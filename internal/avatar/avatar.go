// Package avatar stores user avatar images on the local filesystem under
// MEDIA_ROOT/images/avatars/<user_id>/.
package avatar

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// Dir is the media-relative directory holding every user's avatar directory.
const Dir = "images/avatars"

var (
	ErrEmpty       = errors.New("no file was submitted")
	ErrNotImage    = errors.New("upload a valid image. The file you uploaded was either not an image or a corrupted image")
	ErrOutsideRoot = errors.New("avatar path escapes media root")
)

// Store keeps avatar files below a media root directory.
type Store struct {
	root string
}

// NewStore returns a store rooted at root. The directory is created lazily.
func NewStore(root string) *Store {
	return &Store{root: filepath.Clean(root)}
}

// Root returns the media root directory.
func (s *Store) Root() string { return s.root }

// Detect sniffs data and returns the file extension for a supported image
// type, including the leading dot.
func Detect(data []byte) (string, error) {
	if len(data) == 0 {
		return "", ErrEmpty
	}
	mtype := mimetype.Detect(data)
	if !strings.HasPrefix(mtype.String(), "image/") {
		return "", fmt.Errorf("%w: detected %s", ErrNotImage, mtype.String())
	}
	return mtype.Extension(), nil
}

// Save writes data as a new avatar for userID and returns its media-relative
// path. The file is written to a temp file first and renamed into place.
func (s *Store) Save(userID int64, data []byte, ext string) (string, error) {
	dir := s.userDir(userID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create avatar directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".incoming-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if tmpPath != "" {
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to write avatar: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize avatar: %w", err)
	}

	name := uuid.NewString() + ext
	if err := os.Rename(tmpPath, filepath.Join(dir, name)); err != nil {
		return "", fmt.Errorf("failed to move avatar into place: %w", err)
	}
	tmpPath = ""

	return path.Join(Dir, strconv.FormatInt(userID, 10), name), nil
}

// Delete removes the avatar at the media-relative path rel and prunes its
// directory when it is left empty. A file that is already gone is not an error.
func (s *Store) Delete(rel string) error {
	full, err := s.resolve(rel)
	if err != nil {
		return err
	}

	if err := os.Remove(full); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete avatar: %w", err)
	}

	return pruneEmpty(filepath.Dir(full))
}

// RemoveUser deletes the whole avatar directory of userID.
func (s *Store) RemoveUser(userID int64) error {
	if err := os.RemoveAll(s.userDir(userID)); err != nil {
		return fmt.Errorf("failed to remove avatar directory: %w", err)
	}
	return nil
}

func (s *Store) userDir(userID int64) string {
	return filepath.Join(s.root, filepath.FromSlash(Dir), strconv.FormatInt(userID, 10))
}

// resolve maps a media-relative path to a filesystem path inside the root.
func (s *Store) resolve(rel string) (string, error) {
	full := filepath.Join(s.root, filepath.FromSlash(rel))
	r, err := filepath.Rel(s.root, full)
	if err != nil || r == "." || r == ".." || strings.HasPrefix(r, ".."+string(filepath.Separator)) {
		return "", ErrOutsideRoot
	}
	return full, nil
}

func pruneEmpty(dir string) error {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read avatar directory: %w", err)
	}
	if len(entries) > 0 {
		return nil
	}
	if err := os.Remove(dir); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove avatar directory: %w", err)
	}
	return nil
}
