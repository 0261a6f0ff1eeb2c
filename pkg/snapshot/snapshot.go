// Package snapshot persists rendered component HTML.
//
// A Snapshot is the serialized body of a dom.Document after a component was
// mounted and driven through a sequence of events. Stores keep snapshots
// by name:
//
//	store, _ := snapshot.NewDiskStore("./snapshots")
//	err := store.Save(ctx, &snapshot.Snapshot{Name: "counter-3", Component: "counter", HTML: html})
//
// S3Store keeps them in an S3 bucket instead.
package snapshot

import (
	"context"
	"errors"
	"regexp"
	"time"
)

// ErrNotFound is returned when a snapshot doesn't exist.
var ErrNotFound = errors.New("snapshot: not found")

// ErrInvalidName is returned for names that are empty or would escape the
// store's namespace.
var ErrInvalidName = errors.New("snapshot: invalid name")

// Snapshot is one rendered document.
type Snapshot struct {
	// Name identifies the snapshot within a store.
	Name string

	// Component is the name of the rendered component.
	Component string

	// Events are the event ids fired before the snapshot was taken.
	Events []uint32

	// HTML is the serialized document body.
	HTML []byte

	// CreatedAt is set by Save when zero.
	CreatedAt time.Time
}

// Store is the interface for snapshot storage backends.
type Store interface {
	// Save stores snap under snap.Name, replacing any previous snapshot.
	Save(ctx context.Context, snap *Snapshot) error

	// Load returns the snapshot stored under name.
	Load(ctx context.Context, name string) (*Snapshot, error)

	// List returns the stored names in lexical order.
	List(ctx context.Context) ([]string, error)
}

var validName = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]{0,127}$`)

// ValidName reports whether name can be used as a snapshot name.
func ValidName(name string) bool {
	return validName.MatchString(name)
}

func prepare(snap *Snapshot) error {
	if !ValidName(snap.Name) {
		return ErrInvalidName
	}
	if snap.CreatedAt.IsZero() {
		snap.CreatedAt = time.Now().UTC()
	}
	return nil
}
