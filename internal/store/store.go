// Package store persists run history: which specs were executed, their
// data-quality reports, and their computed results. Two backends exist,
// sqlite for local use and postgres for shared deployments.
package store

import (
	"context"

	"github.com/sells-group/dashspec-cli/internal/model"
)

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	Status   model.RunStatus `json:"status,omitempty"`
	SpecName string          `json:"spec_name,omitempty"`
	Limit    int             `json:"limit,omitempty"`
	Offset   int             `json:"offset,omitempty"`
}

// Store defines the persistence interface for run history.
type Store interface {
	CreateRun(ctx context.Context, specName string) (*model.Run, error)
	CompleteRun(ctx context.Context, runID string, report *model.DataQualityReport, results []byte) error
	FailRun(ctx context.Context, runID string, execErr error) error
	GetRun(ctx context.Context, runID string) (*model.Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error)

	Migrate(ctx context.Context) error
	Close() error
}
