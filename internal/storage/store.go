package storage

import (
	"context"

	"neuroviz/internal/model"
)

// Store is the run journal: an append-mostly history of completed animation
// runs. Nothing in it is ever loaded back into a live visualization.
type Store interface {
	Init(ctx context.Context) error
	SaveRun(ctx context.Context, run model.RunRecord) error
	GetRun(ctx context.Context, id string) (model.RunRecord, bool, error)
	// ListRuns returns runs newest first, optionally filtered by topology.
	// A limit <= 0 returns every match.
	ListRuns(ctx context.Context, topology string, limit int) ([]model.RunRecord, error)
	ClearRuns(ctx context.Context) error
}
