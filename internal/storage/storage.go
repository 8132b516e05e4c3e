// AngelaMos | 2026
// storage.go

package storage

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/carterperez-dev/bookshelf-api/internal/config"
	"github.com/carterperez-dev/bookshelf-api/internal/core"
)

// Store keeps uploaded cover images on local disk under random names.
// Content type is decided by sniffing the payload, never by trusting
// the client's filename or header.
type Store struct {
	dir        string
	publicPath string
	maxSize    int64
}

func New(cfg config.StorageConfig) (*Store, error) {
	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}

	return &Store{
		dir:        cfg.UploadDir,
		publicPath: cfg.PublicPath,
		maxSize:    cfg.MaxUploadSize,
	}, nil
}

func (s *Store) MaxUploadSize() int64 {
	return s.maxSize
}

func (s *Store) Dir() string {
	return s.dir
}

// SaveImage writes the payload under a uuid-based name with the sniffed
// extension. Non-image payloads are rejected with ErrInvalidFile.
func (s *Store) SaveImage(data []byte) (string, error) {
	mtype := mimetype.Detect(data)
	if !strings.HasPrefix(mtype.String(), "image/") {
		return "", fmt.Errorf(
			"payload is %s: %w", mtype.String(), core.ErrInvalidFile,
		)
	}

	name := uuid.New().String() + mtype.Extension()

	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}

	return name, nil
}

// Remove deletes a stored file by name. A missing file is not an error;
// the caller only wants it gone.
func (s *Store) Remove(name string) error {
	if name == "" {
		return nil
	}

	// Stored names are uuid-based, but guard traversal anyway.
	err := os.Remove(filepath.Join(s.dir, filepath.Base(name)))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove file: %w", err)
	}

	return nil
}

// URL maps a stored name to its public path.
func (s *Store) URL(name string) string {
	return path.Join(s.publicPath, name)
}
