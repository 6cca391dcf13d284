package platform

import (
	"context"
	"time"

	"github.com/google/uuid"

	"neuroviz/internal/logging"
	"neuroviz/internal/model"
	"neuroviz/internal/storage"
	"neuroviz/internal/topology"
	"neuroviz/internal/viz"
)

const journalTimeout = 5 * time.Second

// RunSummary is a journaled run as listed to users.
type RunSummary struct {
	ID          string    `json:"id"`
	Topology    string    `json:"topology"`
	Output      float64   `json:"output"`
	Ticks       int       `json:"ticks"`
	Flashes     int       `json:"flashes"`
	CompletedAt time.Time `json:"completed_at"`
}

// Journal returns a completion hook that appends each drained run to the store.
// Failures are logged; the animation never waits on them.
func Journal(store storage.Store, log *logging.Logger) func(viz.Completion) {
	return func(done viz.Completion) {
		if store == nil {
			return
		}
		run := RecordOf(done)
		ctx, cancel := context.WithTimeout(context.Background(), journalTimeout)
		defer cancel()
		if err := store.SaveRun(ctx, run); err != nil {
			log.Warnf("journal run %s (%s): %v", run.ID, run.Topology, err)
			return
		}
		log.Debugf("journaled run %s topology=%s ticks=%d", run.ID, run.Topology, run.Ticks)
	}
}

// RecordOf converts a completion into a versioned journal record.
func RecordOf(done viz.Completion) model.RunRecord {
	values := make(map[string]float64, len(done.Report.Values))
	for id, v := range done.Report.Values {
		values[id] = v
	}
	return storage.Stamp(model.RunRecord{
		ID:          uuid.NewString(),
		Topology:    string(done.Kind),
		Weights:     done.Topology.Weights(),
		Inputs:      [2]float64{done.Report.Inputs.Input1, done.Report.Inputs.Input2},
		Values:      values,
		Ticks:       done.State.Ticks,
		Flashes:     done.State.Flashes,
		CompletedAt: done.At.UTC(),
	})
}

func summarize(run model.RunRecord) RunSummary {
	return RunSummary{
		ID:          run.ID,
		Topology:    run.Topology,
		Output:      run.Values[topology.Output],
		Ticks:       run.Ticks,
		Flashes:     run.Flashes,
		CompletedAt: run.CompletedAt,
	}
}
