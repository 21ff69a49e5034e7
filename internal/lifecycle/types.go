package lifecycle

import (
	"errors"
	"syscall"
	"time"

	"botctl/internal/registry"
	"botctl/internal/tool"
)

// Outcome is the result of a Start or Stop call. AlreadyRunning and
// NotRunning are ordinary outcomes, not failures.
type Outcome string

const (
	OutcomeStarted                 Outcome = "Started"
	OutcomeAlreadyRunning          Outcome = "AlreadyRunning"
	OutcomeSpawnFailed             Outcome = "SpawnFailed"
	OutcomeLogDirectoryUnavailable Outcome = "LogDirectoryUnavailable"
	OutcomeStopped                 Outcome = "Stopped"
	OutcomeNotRunning              Outcome = "NotRunning"
	OutcomeStopFailed              Outcome = "StopFailed"
)

var (
	ErrSpawnFailed             = errors.New("spawn failed")
	ErrStopFailed              = errors.New("stop failed")
	ErrLogDirectoryUnavailable = errors.New("log directory unavailable")
)

// EventType classifies lifecycle notifications.
type EventType string

const (
	EventStarted       EventType = "Started"
	EventStopRequested EventType = "StopRequested"
	EventExited        EventType = "Exited"
)

// Event reports a lifecycle transition of one run.
type Event struct {
	Type     EventType
	Kind     tool.Kind
	RunID    string
	PID      int
	State    registry.State
	ExitCode int
	Err      error
	Time     time.Time
}

// EventFunc receives lifecycle events. It is called from observer goroutines
// and must not block for long.
type EventFunc func(Event)

// Options configures a Controller.
type Options struct {
	// LogDir receives one append-only stderr log per kind.
	LogDir string
	// LogFiles overrides the per-kind log file name.
	LogFiles map[tool.Kind]string
	// LockDir holds per-kind lock files; empty disables cross-process locking.
	LockDir string
	// Shell runs the command line, invoked as `Shell -c command`.
	Shell string
	// WorkDir is the child's working directory; empty inherits ours.
	WorkDir string
	// Env is appended to the inherited environment.
	Env map[string]string
	// StopSignal is sent to the process group on Stop.
	StopSignal syscall.Signal
	// KillAfter, when positive, sends SIGKILL to the group if it is still
	// alive that long after Stop.
	KillAfter time.Duration
	// OutputLimit bounds captured stdout per run.
	OutputLimit int
	// OnEvent is notified of every lifecycle transition.
	OnEvent EventFunc
}

const defaultShell = "/bin/sh"
