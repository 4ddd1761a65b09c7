package store

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// FileStore keeps each record as a JSON file named after its ID. It suits a
// single-user CLI: records survive the process without a database.
type FileStore struct {
	dir string
}

// NewFileStore creates dir if needed and returns a store rooted there.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return &FileStore{dir: dir}, nil
}

// Dir returns the store root.
func (s *FileStore) Dir() string { return s.dir }

// Save writes rec to a temporary file and renames it into place, so a
// reader never sees a partial record.
func (s *FileStore) Save(_ context.Context, rec *Record) error {
	path, ok := s.path(rec.ID)
	if !ok {
		return fmt.Errorf("store: invalid record ID %q", rec.ID)
	}
	raw, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(s.dir, ".tmp-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return nil
}

func (s *FileStore) Get(_ context.Context, id string) (*Record, error) {
	path, ok := s.path(id)
	if !ok {
		return nil, ErrNotFound
	}
	rec, err := readRecord(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	return rec, err
}

// List reads every record in the directory. A file that does not decode
// fails the listing rather than silently dropping history.
func (s *FileStore) List(_ context.Context, limit int) ([]Record, error) {
	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	out := make([]Record, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") || filepath.Ext(name) != ".json" {
			continue
		}
		rec, err := readRecord(filepath.Join(s.dir, name))
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}

	slices.SortFunc(out, func(a, b Record) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *FileStore) Close(context.Context) error { return nil }

// path maps an ID to its file. IDs that could escape the directory are
// refused.
func (s *FileStore) path(id string) (string, bool) {
	if id == "" || strings.HasPrefix(id, ".") || strings.ContainsAny(id, `/\`) {
		return "", false
	}
	return filepath.Join(s.dir, id+".json"), true
}

func readRecord(path string) (*Record, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var rec Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("store: decode %s: %w", filepath.Base(path), err)
	}
	return &rec, nil
}

var _ Store = (*FileStore)(nil)
