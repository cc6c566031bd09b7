package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/matzehuels/nodecanvas/pkg/errors"
)

// FileStore keeps each layout as a JSON file named after its ID.
type FileStore struct {
	mu      sync.Mutex
	baseDir string
	now     func() time.Time
}

// NewFileStore creates a file-based layout store.
// If baseDir is empty, defaults to ~/.local/share/nodecanvas/layouts/
func NewFileStore(baseDir string) (*FileStore, error) {
	if baseDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home dir: %w", err)
		}
		baseDir = filepath.Join(home, ".local", "share", "nodecanvas", "layouts")
	}
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, fmt.Errorf("create layout dir: %w", err)
	}
	return &FileStore{baseDir: baseDir, now: time.Now}, nil
}

func (s *FileStore) layoutPath(id string) string {
	return filepath.Join(s.baseDir, id+".json")
}

func (s *FileStore) Put(ctx context.Context, l *Layout) error {
	if err := checkPut(l); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	l.CreatedAt, l.UpdatedAt = now, now
	if prev, err := s.read(l.ID); err == nil {
		l.CreatedAt = prev.CreatedAt
	}
	return s.write(l)
}

func (s *FileStore) Get(ctx context.Context, id string) (*Layout, error) {
	if err := errors.ValidateLayoutID(id); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	l, err := s.read(id)
	if err != nil {
		return nil, err
	}
	l.UpdatedAt = s.now()
	if err := s.write(l); err != nil {
		return nil, err
	}
	return l, nil
}

func (s *FileStore) Delete(ctx context.Context, id string) error {
	if err := errors.ValidateLayoutID(id); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.layoutPath(id)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove layout file: %w", err)
	}
	return nil
}

func (s *FileStore) Prune(ctx context.Context, olderThan time.Duration) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return 0, fmt.Errorf("read layout dir: %w", err)
	}

	cutoff := s.now().Add(-olderThan)
	removed := 0
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return removed, err
		}
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		path := filepath.Join(s.baseDir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var l Layout
		if err := json.Unmarshal(data, &l); err != nil {
			continue
		}
		if l.UpdatedAt.Before(cutoff) {
			if err := os.Remove(path); err == nil {
				removed++
			}
		}
	}
	return removed, nil
}

func (s *FileStore) Close() error { return nil }

// Path returns the base directory for layout files.
func (s *FileStore) Path() string {
	return s.baseDir
}

func (s *FileStore) read(id string) (*Layout, error) {
	data, err := os.ReadFile(s.layoutPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, notFound(id)
		}
		return nil, fmt.Errorf("read layout file: %w", err)
	}
	var l Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}
	return &l, nil
}

func (s *FileStore) write(l *Layout) error {
	data, err := json.MarshalIndent(l, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal layout: %w", err)
	}
	if err := os.WriteFile(s.layoutPath(l.ID), data, 0600); err != nil {
		return fmt.Errorf("write layout file: %w", err)
	}
	return nil
}

var _ Store = (*FileStore)(nil)
