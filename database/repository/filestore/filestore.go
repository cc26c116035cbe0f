// Package filestore keeps records as a JSON array in a single file.
// Every write rewrites the whole snapshot; there is no optimistic concurrency check across processes.
package filestore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Collection is an ordered list of records persisted as one JSON file.
type Collection[T any] struct {
	path string
	mu   sync.Mutex
}

// NewCollection opens (or lazily creates) <dir>/<name>.json.
func NewCollection[T any](dir, name string) (*Collection[T], error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("filestore: create data dir %s: %w", dir, err)
	}
	return &Collection[T]{path: filepath.Join(dir, name+".json")}, nil
}

// Path returns the backing file.
func (c *Collection[T]) Path() string {
	return c.path
}

// All returns every record in storage order.
func (c *Collection[T]) All() ([]T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.read()
}

// Find returns the first record matching pred.
func (c *Collection[T]) Find(pred func(T) bool) (T, bool, error) {
	var zero T
	records, err := c.All()
	if err != nil {
		return zero, false, err
	}
	for _, r := range records {
		if pred(r) {
			return r, true, nil
		}
	}
	return zero, false, nil
}

// Mutate reads the snapshot, hands it to fn and writes back whatever fn returns.
// If fn returns an error nothing is written.
func (c *Collection[T]) Mutate(fn func(records []T) ([]T, error)) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	records, err := c.read()
	if err != nil {
		return err
	}
	updated, err := fn(records)
	if err != nil {
		return err
	}
	return c.write(updated)
}

func (c *Collection[T]) read() ([]T, error) {
	data, err := os.ReadFile(c.path)
	if errors.Is(err, os.ErrNotExist) {
		return []T{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("filestore: read %s: %w", c.path, err)
	}
	if len(data) == 0 {
		return []T{}, nil
	}
	var records []T
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("filestore: decode %s: %w", c.path, err)
	}
	return records, nil
}

func (c *Collection[T]) write(records []T) error {
	if records == nil {
		records = []T{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("filestore: encode %s: %w", c.path, err)
	}
	tmp := c.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("filestore: write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, c.path); err != nil {
		return fmt.Errorf("filestore: replace %s: %w", c.path, err)
	}
	return nil
}
