package sources

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/nixbump/pkg/domain/model"
	"github.com/m-mizutani/nixbump/pkg/domain/types"
)

const filePermissions = 0o644

// FileStore persists the sources record as pretty-printed JSON
type FileStore struct {
	path string
}

// NewFileStore creates a store that reads and writes the JSON file at path
func NewFileStore(path string) *FileStore {
	return &FileStore{
		path: filepath.Clean(path),
	}
}

// Path returns the file location
func (s *FileStore) Path() string {
	return s.path
}

// Load reads the record. Missing fields decode as empty strings.
func (s *FileStore) Load(_ context.Context) (*model.Sources, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, goerr.Wrap(err, "sources file not found", goerr.T(types.ErrTagNotFound), goerr.V("path", s.path))
		}
		return nil, goerr.Wrap(err, "failed to read sources file", goerr.V("path", s.path))
	}

	var sources model.Sources
	if err := json.Unmarshal(data, &sources); err != nil {
		return nil, goerr.Wrap(err, "failed to decode sources file", goerr.T(types.ErrTagParse), goerr.V("path", s.path))
	}

	return &sources, nil
}

// Save replaces the record. The new content is written to a temporary file in
// the same directory and renamed over the old one.
func (s *FileStore) Save(_ context.Context, sources *model.Sources) error {
	data, err := Encode(sources)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), "."+filepath.Base(s.path)+".*")
	if err != nil {
		return goerr.Wrap(err, "failed to create temporary sources file", goerr.V("path", s.path))
	}
	tmpPath := tmp.Name()
	defer func() {
		_ = os.Remove(tmpPath) // no-op after a successful rename
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return goerr.Wrap(err, "failed to write temporary sources file", goerr.V("path", tmpPath))
	}
	if err := tmp.Close(); err != nil {
		return goerr.Wrap(err, "failed to close temporary sources file", goerr.V("path", tmpPath))
	}
	if err := os.Chmod(tmpPath, filePermissions); err != nil {
		return goerr.Wrap(err, "failed to set sources file permissions", goerr.V("path", tmpPath))
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		return goerr.Wrap(err, "failed to replace sources file", goerr.V("path", s.path))
	}

	return nil
}

// Encode renders the record with two-space indentation and a trailing newline
func Encode(sources *model.Sources) ([]byte, error) {
	data, err := json.MarshalIndent(sources, "", "  ")
	if err != nil {
		return nil, goerr.Wrap(err, "failed to encode sources")
	}
	return append(data, '\n'), nil
}
