package orchestrator

import (
	"encoding/json"
	"net/http"
	"time"

	"botctl/internal/lifecycle"
	"botctl/internal/registry"
	"botctl/internal/tool"
)

// Action is a control verb accepted by Handle.
type Action string

const (
	ActionStart Action = "start"
	ActionStop  Action = "stop"
)

// Messages returned to the admin console.
const (
	MsgStarted        = "Script execution started."
	MsgStopped        = "Script execution stopped."
	MsgAlreadyRunning = "A script is already running. Please stop it first."
	MsgNotRunning     = "No script currently running."
)

// Outcome extends lifecycle outcomes with the failures detected before the
// controller is reached.
type Outcome string

const (
	OutcomeStarted                 = Outcome(lifecycle.OutcomeStarted)
	OutcomeAlreadyRunning          = Outcome(lifecycle.OutcomeAlreadyRunning)
	OutcomeSpawnFailed             = Outcome(lifecycle.OutcomeSpawnFailed)
	OutcomeLogDirectoryUnavailable = Outcome(lifecycle.OutcomeLogDirectoryUnavailable)
	OutcomeStopped                 = Outcome(lifecycle.OutcomeStopped)
	OutcomeNotRunning              = Outcome(lifecycle.OutcomeNotRunning)
	OutcomeStopFailed              = Outcome(lifecycle.OutcomeStopFailed)
	OutcomeUnrecognizedTool        Outcome = "UnrecognizedTool"
	OutcomeUnsupportedAction       Outcome = "UnsupportedAction"
	OutcomeInvalidRequest          Outcome = "InvalidRequest"
	OutcomeOutput                  Outcome = "Output"
)

// Result is the uniform answer to a control request. Exactly one of Message,
// Output or Error is set.
type Result struct {
	Outcome Outcome   `json:"-"`
	Kind    tool.Kind `json:"-"`
	Err     error     `json:"-"`

	Message string
	Output  string
	Error   string
}

// resultBody is the wire shape of a Result: one of the three keys.
type resultBody struct {
	Message *string `json:"message,omitempty"`
	Output  *string `json:"output,omitempty"`
	Error   *string `json:"error,omitempty"`
}

// MarshalJSON writes the single key the outcome calls for. An output answer
// keeps its "output" key even when nothing was printed.
func (r Result) MarshalJSON() ([]byte, error) {
	var body resultBody
	switch {
	case r.Error != "":
		body.Error = &r.Error
	case r.Outcome == OutcomeOutput:
		body.Output = &r.Output
	default:
		body.Message = &r.Message
	}
	return json.Marshal(body)
}

// UnmarshalJSON restores a Result sent by MarshalJSON. Only the output
// outcome can be told apart on the wire.
func (r *Result) UnmarshalJSON(data []byte) error {
	var body resultBody
	if err := json.Unmarshal(data, &body); err != nil {
		return err
	}
	*r = Result{}
	if body.Message != nil {
		r.Message = *body.Message
	}
	if body.Error != nil {
		r.Error = *body.Error
	}
	if body.Output != nil {
		r.Output = *body.Output
		if r.Error == "" {
			r.Outcome = OutcomeOutput
		}
	}
	return nil
}

// StatusCode maps the outcome to the HTTP status the admin console expects.
func (r Result) StatusCode() int {
	switch r.Outcome {
	case OutcomeStarted, OutcomeStopped, OutcomeOutput:
		return http.StatusOK
	case OutcomeAlreadyRunning, OutcomeNotRunning, OutcomeUnrecognizedTool,
		OutcomeUnsupportedAction, OutcomeInvalidRequest:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// OK reports whether the request did what was asked.
func (r Result) OK() bool {
	return r.Outcome == OutcomeStarted || r.Outcome == OutcomeStopped || r.Outcome == OutcomeOutput
}

// ToolStatus describes one tool kind for status polling.
type ToolStatus struct {
	Kind      tool.Kind            `json:"kind"`
	Script    string               `json:"script"`
	State     string               `json:"state"`
	RunID     string               `json:"runId,omitempty"`
	PID       int                  `json:"pid,omitempty"`
	Command   string               `json:"command,omitempty"`
	StartedAt *time.Time           `json:"startedAt,omitempty"`
	LogFile   string               `json:"logFile"`
	LastExit  *registry.ExitRecord `json:"lastExit,omitempty"`
}

// StateIdle is reported for kinds with no live process.
const StateIdle = "Idle"
