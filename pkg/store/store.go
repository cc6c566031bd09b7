// Package store persists uploaded documents under a layout ID.
//
// A layout is a corpus: one or more instances, each a document shown on its
// own. Only the input documents are stored. Node positions changed by
// dragging live in the in-memory session and are lost when it ends;
// reopening a layout renders it from scratch.
//
// Search results are layouts too. They record the layout they were taken
// from in BasedOn, together with the filters that selected them, so a
// client can return to the full corpus.
//
// Two backends are provided:
//   - [FileStore]: one JSON file per layout, for the CLI and single-instance servers
//   - [MongoStore]: a MongoDB collection, for shared deployments
//
// Every read refreshes the layout's timestamp, and [Store.Prune] removes
// layouts that have not been read or written for a given duration.
package store

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/nodecanvas/pkg/document"
	"github.com/matzehuels/nodecanvas/pkg/errors"
)

// DefaultExpiry is how long an untouched layout is kept.
const DefaultExpiry = 90 * 24 * time.Hour

// Layout is a stored corpus.
type Layout struct {
	ID        string               `json:"id" bson:"_id"`
	Instances []*document.Document `json:"instances" bson:"instances"`
	// BasedOn is the layout a search result was taken from.
	BasedOn   string               `json:"based_on,omitempty" bson:"based_on,omitempty"`
	Filters   []document.Filter    `json:"filters,omitempty" bson:"filters,omitempty"`
	CreatedAt time.Time            `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time            `json:"updated_at" bson:"updated_at"`
}

// NewLayout returns an unsaved layout of the given instances.
func NewLayout(id string, instances ...*document.Document) *Layout {
	return &Layout{ID: id, Instances: instances}
}

// Len returns the number of instances.
func (l *Layout) Len() int { return len(l.Instances) }

// Instance returns the instance at index i.
func (l *Layout) Instance(i int) (*document.Document, error) {
	if i < 0 || i >= len(l.Instances) {
		return nil, errors.New(errors.ErrCodeInvalidInput, "instance %d out of range, layout has %d", i, len(l.Instances))
	}
	return l.Instances[i], nil
}

// Store persists layouts.
type Store interface {
	// Put stores l under l.ID, replacing any previous layout but keeping its
	// creation time. It sets l's timestamps.
	Put(ctx context.Context, l *Layout) error
	// Get returns the layout and refreshes its timestamp. A missing layout
	// is a LAYOUT_NOT_FOUND error.
	Get(ctx context.Context, id string) (*Layout, error)
	Delete(ctx context.Context, id string) error
	// Prune removes layouts untouched for longer than olderThan and reports
	// how many were removed.
	Prune(ctx context.Context, olderThan time.Duration) (int, error)
	Close() error
}

// NewLayoutID returns a random layout ID: a version 4 UUID in hex without
// dashes.
func NewLayoutID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

func notFound(id string) error {
	return errors.New(errors.ErrCodeLayoutNotFound, "layout %s not found", id)
}

func checkPut(l *Layout) error {
	if err := errors.ValidateLayoutID(l.ID); err != nil {
		return err
	}
	if len(l.Instances) == 0 {
		return errors.New(errors.ErrCodeInvalidDocument, "layout %s has no instances", l.ID)
	}
	if l.BasedOn != "" {
		if err := errors.ValidateLayoutID(l.BasedOn); err != nil {
			return err
		}
	}
	return nil
}
