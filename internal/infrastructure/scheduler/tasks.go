package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskFallbackSweep = "leads.fallback_sweep"

// Sweep triggers
const (
	TriggerCron   = "cron"
	TriggerManual = "manual"
)

// FallbackSweepPayload names what enqueued the sweep. The sweep itself always
// uses the worker's clock.
type FallbackSweepPayload struct {
	Trigger string `json:"trigger"`
}

func NewFallbackSweepTask(payload FallbackSweepPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskFallbackSweep, data), nil
}

func ParseFallbackSweepPayload(task *asynq.Task) (FallbackSweepPayload, error) {
	var payload FallbackSweepPayload
	if len(task.Payload()) == 0 {
		return payload, nil
	}
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return FallbackSweepPayload{}, err
	}
	return payload, nil
}
