package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/devrep/reputation-registry/internal/registry"
)

type memoryRepository struct {
	mu       sync.RWMutex
	db       map[string][]byte
	snapshot string
}

// NewMemoryRepository keeps state in a map. With a snapshot path, state is loaded
// from that JSON file on start and rewritten after every commit.
func NewMemoryRepository(snapshot string) (StateRepository, error) {
	m := &memoryRepository{db: make(map[string][]byte), snapshot: snapshot}
	if snapshot == "" {
		return m, nil
	}
	if err := m.load(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *memoryRepository) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.db[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte{}, v...), true, nil
}

func (m *memoryRepository) Commit(_ context.Context, writes []registry.Write) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	type prior struct {
		value []byte
		ok    bool
	}
	prev := make(map[string]prior, len(writes))
	for _, w := range writes {
		if _, seen := prev[w.Key]; !seen {
			v, ok := m.db[w.Key]
			prev[w.Key] = prior{value: v, ok: ok}
		}
		m.db[w.Key] = append([]byte{}, w.Value...)
	}
	if err := m.save(); err != nil {
		// roll back so memory never runs ahead of the snapshot
		for k, p := range prev {
			if p.ok {
				m.db[k] = p.value
			} else {
				delete(m.db, k)
			}
		}
		return err
	}
	return nil
}

func (m *memoryRepository) Ping(context.Context) error {
	return nil
}

// save writes the full map to the snapshot file through a rename.
func (m *memoryRepository) save() error {
	if m.snapshot == "" {
		return nil
	}
	data, err := json.MarshalIndent(m.db, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	tmp := m.snapshot + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := os.Rename(tmp, m.snapshot); err != nil {
		return fmt.Errorf("replace snapshot: %w", err)
	}
	return nil
}

func (m *memoryRepository) load() error {
	data, err := os.ReadFile(m.snapshot)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read snapshot: %w", err)
	}
	if err := json.Unmarshal(data, &m.db); err != nil {
		return fmt.Errorf("decode snapshot: %w", err)
	}
	return nil
}
