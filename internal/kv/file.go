package kv

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"syscall"
)

// FileStore keeps each key in its own JSON file under a directory.
type FileStore struct {
	dir string
}

// NewFileStore creates a file store rooted at dir. The directory is created on first write.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

var unsafeKeyChars = regexp.MustCompile(`[^a-z0-9._-]+`)

// keyPath maps a key to a file name that is safe on every platform.
func (s *FileStore) keyPath(key string) string {
	name := unsafeKeyChars.ReplaceAllString(strings.ToLower(key), "-")
	name = strings.Trim(name, "-.")
	if name == "" {
		name = "default"
	}
	return filepath.Join(s.dir, name+".json")
}

func (s *FileStore) lockPath() string {
	return filepath.Join(s.dir, "kanban.lock")
}

// Get reads the value stored under key.
func (s *FileStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.keyPath(key))
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	return data, nil
}

// Put replaces the value under key. Writes go through a temp file and rename
// while holding an exclusive lock, so readers never see a partial file.
func (s *FileStore) Put(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}

	return s.withLock(func() error {
		path := s.keyPath(key)
		if existing, err := os.ReadFile(path); err == nil {
			if bytes.Equal(existing, value) {
				return nil
			}
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("read %s: %w", key, err)
		}

		tmpFile, err := os.CreateTemp(s.dir, filepath.Base(path)+".tmp")
		if err != nil {
			return fmt.Errorf("create temp file: %w", err)
		}
		name := tmpFile.Name()
		_, err = tmpFile.Write(value)
		if closeErr := tmpFile.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
		if err != nil {
			os.Remove(name)
			return fmt.Errorf("write temp file: %w", err)
		}
		if err := os.Rename(name, path); err != nil {
			os.Remove(name)
			return fmt.Errorf("rename %s: %w", filepath.Base(path), err)
		}
		return nil
	})
}

func (s *FileStore) withLock(fn func() error) error {
	lockFile, err := os.OpenFile(s.lockPath(), os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return fmt.Errorf("open lock file: %w", err)
	}
	defer lockFile.Close()

	if err := syscall.Flock(int(lockFile.Fd()), syscall.LOCK_EX); err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	defer syscall.Flock(int(lockFile.Fd()), syscall.LOCK_UN)

	return fn()
}

// Close is a no-op; files are not held open between calls.
func (s *FileStore) Close() error {
	return nil
}
