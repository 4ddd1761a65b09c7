// Package store persists metric reports so they can be listed and fetched
// later, for example by the HTTP API.
//
// Backends:
//   - [FileStore]: one JSON file per record, the CLI default
//   - [MemoryStore]: in-process, for tests and single-run servers
//   - store/mongo: MongoDB collection
//   - store/postgres: PostgreSQL table via pgx
package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/layoutmetrics/pkg/metrics"
)

// ErrNotFound is returned by Get when no record has the requested ID.
var ErrNotFound = errors.New("store: report not found")

// Record is a stored report.
type Record struct {
	ID          string         `json:"id" bson:"_id"`
	DiagramName string         `json:"diagram_name,omitempty" bson:"diagram_name,omitempty"`
	DiagramHash string         `json:"diagram_hash" bson:"diagram_hash"`
	Report      metrics.Report `json:"report" bson:"report"`
	CreatedAt   time.Time      `json:"created_at" bson:"created_at"`
}

// NewRecord wraps a report with a fresh UUID and the current time.
func NewRecord(name, hash string, r metrics.Report) *Record {
	return &Record{
		ID:          uuid.NewString(),
		DiagramName: name,
		DiagramHash: hash,
		Report:      r,
		CreatedAt:   time.Now().UTC(),
	}
}

// Store defines the contract for persisting reports.
type Store interface {
	Save(ctx context.Context, rec *Record) error
	Get(ctx context.Context, id string) (*Record, error)
	// List returns up to limit records, newest first.
	List(ctx context.Context, limit int) ([]Record, error)
	Close(ctx context.Context) error
}
