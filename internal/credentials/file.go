package credentials

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/parishweb/portal-gateway/internal/gwerrors"
)

// FileBackend keeps the values in a JSON object on disk, readable only by the owner.
// Writes go to a temporary file that is renamed over the old one.
type FileBackend struct {
	lock sync.Mutex
	path string
}

func NewFileBackend(path string) (*FileBackend, error) {
	if path == "" {
		return nil, fmt.Errorf("the credentials file path is not set")
	}
	return &FileBackend{path: path}, nil
}

func (f *FileBackend) Path() string {
	return f.path
}

func (f *FileBackend) Get(_ context.Context, key string) (string, error) {
	f.lock.Lock()
	defer f.lock.Unlock()
	values, err := f.read()
	if err != nil {
		return "", err
	}
	val, found := values[key]
	if !found || val == "" {
		return "", gwerrors.ErrTokenNotFound
	}
	return val, nil
}

func (f *FileBackend) Set(_ context.Context, key string, value string) error {
	f.lock.Lock()
	defer f.lock.Unlock()
	values, err := f.read()
	if err != nil {
		return err
	}
	values[key] = value
	return f.write(values)
}

func (f *FileBackend) Remove(_ context.Context, keys ...string) error {
	f.lock.Lock()
	defer f.lock.Unlock()
	values, err := f.read()
	if err != nil {
		return err
	}
	for _, key := range keys {
		delete(values, key)
	}
	if len(values) == 0 {
		err = os.Remove(f.path)
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}
	return f.write(values)
}

func (f *FileBackend) read() (map[string]string, error) {
	values := map[string]string{}
	raw, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return values, nil
	}
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return values, nil
	}
	err = json.Unmarshal(raw, &values)
	if err != nil {
		return nil, fmt.Errorf("cannot parse the credentials file %s: %w", f.path, err)
	}
	return values, nil
}

func (f *FileBackend) write(values map[string]string) error {
	raw, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return err
	}
	dir := filepath.Dir(f.path)
	err = os.MkdirAll(dir, 0o700)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".credentials-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	// CreateTemp already uses 0600
	_, err = tmp.Write(raw)
	if err != nil {
		tmp.Close()
		return err
	}
	err = tmp.Close()
	if err != nil {
		return err
	}
	return os.Rename(tmp.Name(), f.path)
}
