// Package store keeps submitted drawings on the local filesystem, one
// directory per game. References handed out are uuid-named png files; the
// bytes are written before the reference is returned, so a reference that
// exists can always be served.
package store

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"

	"github.com/google/uuid"
)

var (
	refPattern    = regexp.MustCompile(`^[0-9a-f-]{36}\.png$`)
	gameIDPattern = regexp.MustCompile(`^[a-z0-9]{10}$`)
)

type FSStore struct {
	dir string
}

func NewFSStore(dir string) (*FSStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating image dir: %w", err)
	}
	return &FSStore{dir: dir}, nil
}

func (fs *FSStore) Store(gameID string, data []byte) (string, error) {
	gameDir := filepath.Join(fs.dir, gameID)
	if err := os.MkdirAll(gameDir, 0o755); err != nil {
		return "", fmt.Errorf("creating game dir: %w", err)
	}

	ref := uuid.NewString() + ".png"
	if err := os.WriteFile(filepath.Join(gameDir, ref), data, 0o644); err != nil {
		return "", fmt.Errorf("writing image: %w", err)
	}
	return ref, nil
}

// Open returns a reader for a previously stored image. Game ids and refs
// that are not in the exact shape the server hands out are rejected, so a
// crafted path segment can never escape the image directory.
func (fs *FSStore) Open(gameID, ref string) (io.ReadCloser, error) {
	if !gameIDPattern.MatchString(gameID) {
		return nil, fmt.Errorf("invalid game id %q", gameID)
	}
	if !refPattern.MatchString(ref) {
		return nil, fmt.Errorf("invalid image ref %q", ref)
	}
	f, err := os.Open(filepath.Join(fs.dir, gameID, ref))
	if err != nil {
		return nil, fmt.Errorf("opening image: %w", err)
	}
	return f, nil
}
