package registry

import (
	"time"

	"botctl/internal/tool"
)

// State is the supervision state of a managed process.
type State string

const (
	StateStarting   State = "Starting"
	StateRunning    State = "Running"
	StateStopping   State = "Stopping"
	StateTerminated State = "Terminated"
	StateFailed     State = "Failed"
)

// Handle is the record of one spawned process. Values returned by the
// registry are copies; the registry keeps the only live reference.
type Handle struct {
	Kind      tool.Kind `json:"kind"`
	RunID     string    `json:"runId"`
	PID       int       `json:"pid,omitempty"`
	State     State     `json:"state"`
	StartedAt time.Time `json:"startedAt"`
	Command   string    `json:"command"`
}

// ExitRecord describes how the most recent run of a kind ended.
type ExitRecord struct {
	Kind      tool.Kind `json:"kind"`
	RunID     string    `json:"runId"`
	PID       int       `json:"pid,omitempty"`
	Command   string    `json:"command"`
	State     State     `json:"state"`
	ExitCode  int       `json:"exitCode"`
	Error     string    `json:"error,omitempty"`
	StartedAt time.Time `json:"startedAt"`
	EndedAt   time.Time `json:"endedAt"`
	Output    string    `json:"output,omitempty"`
}
