package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// FileStore keeps one pretty-printed JSON file per document under
// {dir}/{collection}/{key}.json.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) (*FileStore, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve data dir: %w", err)
	}
	if err := os.MkdirAll(abs, 0o700); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &FileStore{dir: abs}, nil
}

func (s *FileStore) path(collection, key string) string {
	return filepath.Join(s.dir, collection, key+".json")
}

func (s *FileStore) Create(ctx context.Context, collection, key string, v any) error {
	if err := s.check(ctx, collection, key); err != nil {
		return wrap("create", collection, key, err)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return wrap("create", collection, key, err)
	}

	if err := os.MkdirAll(filepath.Join(s.dir, collection), 0o700); err != nil {
		return wrap("create", collection, key, err)
	}

	f, err := os.OpenFile(s.path(collection, key), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return wrap("create", collection, key, ErrExists)
		}
		return wrap("create", collection, key, err)
	}

	if _, err := f.Write(data); err != nil {
		f.Close()
		return wrap("create", collection, key, err)
	}
	if err := f.Close(); err != nil {
		return wrap("create", collection, key, err)
	}
	return nil
}

func (s *FileStore) Read(ctx context.Context, collection, key string, out any) error {
	if err := s.check(ctx, collection, key); err != nil {
		return wrap("read", collection, key, err)
	}

	data, err := os.ReadFile(s.path(collection, key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return wrap("read", collection, key, ErrNotFound)
		}
		return wrap("read", collection, key, err)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return wrap("read", collection, key, err)
	}
	return nil
}

func (s *FileStore) Update(ctx context.Context, collection, key string, v any) error {
	if err := s.check(ctx, collection, key); err != nil {
		return wrap("update", collection, key, err)
	}

	target := s.path(collection, key)
	if _, err := os.Stat(target); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return wrap("update", collection, key, ErrNotFound)
		}
		return wrap("update", collection, key, err)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return wrap("update", collection, key, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(target), "."+key+".*.tmp")
	if err != nil {
		return wrap("update", collection, key, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return wrap("update", collection, key, err)
	}
	if err := tmp.Close(); err != nil {
		return wrap("update", collection, key, err)
	}
	if err := os.Rename(tmpName, target); err != nil {
		return wrap("update", collection, key, err)
	}
	return nil
}

func (s *FileStore) Delete(ctx context.Context, collection, key string) error {
	if err := s.check(ctx, collection, key); err != nil {
		return wrap("delete", collection, key, err)
	}

	if err := os.Remove(s.path(collection, key)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return wrap("delete", collection, key, ErrNotFound)
		}
		return wrap("delete", collection, key, err)
	}
	return nil
}

func (s *FileStore) Exists(ctx context.Context, collection, key string) (bool, error) {
	if err := s.check(ctx, collection, key); err != nil {
		return false, wrap("exists", collection, key, err)
	}

	_, err := os.Stat(s.path(collection, key))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, wrap("exists", collection, key, err)
	}
}

func (s *FileStore) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	info, err := os.Stat(s.dir)
	if err != nil {
		return fmt.Errorf("data dir: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("data dir %s is not a directory", s.dir)
	}
	return nil
}

func (s *FileStore) Close() error {
	return nil
}

func (s *FileStore) check(ctx context.Context, collection, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return ValidateKey(collection, key)
}
