// Package checkpoint persists the id of the last comment confirmed exported,
// so an interrupted export resumes after it.
package checkpoint

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

type Store interface {
	// Load returns the saved id. ok is false when nothing was saved yet.
	Load(ctx context.Context) (lastId int64, ok bool, err error)
	Save(ctx context.Context, lastId int64) error
}

func parseState(raw []byte) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(string(raw)), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse checkpoint: %w", err)
	}
	return id, nil
}

// FileStore keeps the checkpoint as a decimal id in a local state file.
type FileStore struct {
	path string
}

var _ Store = (*FileStore)(nil)

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Load(ctx context.Context) (int64, bool, error) {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	id, err := parseState(raw)
	if err != nil {
		return 0, false, err
	}
	return id, true, nil
}

// Save replaces the state file atomically.
func (s *FileStore) Save(ctx context.Context, lastId int64) error {
	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(strconv.FormatInt(lastId, 10)); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}
