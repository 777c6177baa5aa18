// Package history persists generation run records so past provider
// choices and confidence outcomes can be inspected later.
package history

import (
	"context"
	"time"

	"github.com/sells-group/shipnote/internal/changelog"
)

// Run is one completed generation run.
type Run struct {
	ID             string
	Version        string
	Provider       string
	UsedFallback   bool
	Entries        []changelog.Entry
	Degraded       bool
	MeanConfidence int
	CreatedAt      time.Time
}

// Store persists and lists runs.
type Store interface {
	RecordRun(ctx context.Context, run *Run) error
	ListRuns(ctx context.Context, limit int) ([]*Run, error)
	Close() error
}
