package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// DiskStore stores snapshots on the local filesystem as NAME.html plus a
// NAME.meta JSON sidecar.
type DiskStore struct {
	dir string
	mu  sync.RWMutex
}

type diskMeta struct {
	Component string    `json:"component"`
	Events    []uint32  `json:"events,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// NewDiskStore creates a DiskStore rooted at dir, creating it if needed.
func NewDiskStore(dir string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return &DiskStore{dir: dir}, nil
}

// Dir returns the store's directory.
func (s *DiskStore) Dir() string {
	return s.dir
}

// Save implements Store.
func (s *DiskStore) Save(_ context.Context, snap *Snapshot) error {
	if err := prepare(snap); err != nil {
		return err
	}
	meta, err := json.Marshal(diskMeta{
		Component: snap.Component,
		Events:    snap.Events,
		CreatedAt: snap.CreatedAt,
	})
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.WriteFile(s.htmlPath(snap.Name), snap.HTML, 0644); err != nil {
		return err
	}
	return os.WriteFile(s.metaPath(snap.Name), meta, 0644)
}

// Load implements Store.
func (s *DiskStore) Load(_ context.Context, name string) (*Snapshot, error) {
	if !ValidName(name) {
		return nil, ErrInvalidName
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	html, err := os.ReadFile(s.htmlPath(name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	snap := &Snapshot{Name: name, HTML: html}
	data, err := os.ReadFile(s.metaPath(name))
	if err != nil {
		// A missing sidecar still leaves a usable snapshot.
		return snap, nil
	}
	var meta diskMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	snap.Component = meta.Component
	snap.Events = meta.Events
	snap.CreatedAt = meta.CreatedAt
	return snap, nil
}

// List implements Store.
func (s *DiskStore) List(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if name, ok := strings.CutSuffix(entry.Name(), ".html"); ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

func (s *DiskStore) htmlPath(name string) string {
	return filepath.Join(s.dir, name+".html")
}

func (s *DiskStore) metaPath(name string) string {
	return filepath.Join(s.dir, name+".meta")
}
