package storage

import (
	"time"

	"neuroviz/internal/model"
)

func sampleRun(id, topology string, completedAt time.Time) model.RunRecord {
	w, _ := model.WeightFromTenths(17)
	return Stamp(model.RunRecord{
		ID:          id,
		Topology:    topology,
		Weights:     map[string]model.Weight{"input1->output": w, "bias1->output": model.BiasWeight},
		Inputs:      [2]float64{2, 3},
		Values:      map[string]float64{"output": 4.4},
		Ticks:       200,
		CompletedAt: completedAt.UTC(),
	})
}
