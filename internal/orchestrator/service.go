package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"botctl/internal/lifecycle"
	"botctl/internal/registry"
	"botctl/internal/tool"
	"botctl/pkg/logging"
)

// Controller is the process capability the service delegates to.
// *lifecycle.Controller implements it.
type Controller interface {
	Start(ctx context.Context, kind tool.Kind, command string) (lifecycle.Outcome, error)
	Stop(ctx context.Context, kind tool.Kind) (lifecycle.Outcome, error)
	Output(kind tool.Kind) (string, bool)
	LogPath(kind tool.Kind) string
}

// Service validates control requests and renders their outcomes.
type Service struct {
	reg  *registry.Registry
	ctrl Controller
}

// NewService creates a service over reg and ctrl. Both must share the same registry.
func NewService(reg *registry.Registry, ctrl Controller) *Service {
	return &Service{reg: reg, ctrl: ctrl}
}

// Handle executes action against the tool referenced by command.
func (s *Service) Handle(ctx context.Context, action, command string) Result {
	act := Action(strings.ToLower(strings.TrimSpace(action)))
	if act != ActionStart && act != ActionStop {
		err := fmt.Errorf("%w: %q", ErrUnsupportedAction, action)
		return failure(OutcomeUnsupportedAction, "", err)
	}

	if strings.TrimSpace(command) == "" {
		return failure(OutcomeInvalidRequest, "", ErrEmptyCommand)
	}

	kind, err := tool.Classify(command)
	if err != nil {
		logging.Warn("Orchestrator", "Rejected %s request: %v", act, err)
		return failure(OutcomeUnrecognizedTool, "", err)
	}

	if act == ActionStart {
		return s.start(ctx, kind, command)
	}
	return s.StopKind(ctx, kind)
}

func (s *Service) start(ctx context.Context, kind tool.Kind, command string) Result {
	outcome, err := s.ctrl.Start(ctx, kind, command)
	switch {
	case err != nil:
		logging.Error("Orchestrator", err, "Failed to start %s", kind)
		return failure(Outcome(outcome), kind, err)
	case outcome == lifecycle.OutcomeAlreadyRunning:
		logging.Info("Orchestrator", "Start of %s refused, already running", kind)
		return Result{Outcome: OutcomeAlreadyRunning, Kind: kind, Message: MsgAlreadyRunning}
	default:
		logging.Info("Orchestrator", "Started %s: %s", kind, command)
		return Result{Outcome: OutcomeStarted, Kind: kind, Message: MsgStarted}
	}
}

// StopKind stops kind directly, for callers that already know the kind.
func (s *Service) StopKind(ctx context.Context, kind tool.Kind) Result {
	outcome, err := s.ctrl.Stop(ctx, kind)
	switch {
	case err != nil:
		logging.Error("Orchestrator", err, "Failed to stop %s", kind)
		return failure(Outcome(outcome), kind, err)
	case outcome == lifecycle.OutcomeNotRunning:
		return Result{Outcome: OutcomeNotRunning, Kind: kind, Message: MsgNotRunning}
	default:
		logging.Info("Orchestrator", "Stop requested for %s", kind)
		return Result{Outcome: OutcomeStopped, Kind: kind, Message: MsgStopped}
	}
}

// Output returns the captured stdout of the current or most recent run of kind.
func (s *Service) Output(kind tool.Kind) Result {
	out, ok := s.ctrl.Output(kind)
	if !ok {
		return Result{Outcome: OutcomeNotRunning, Kind: kind, Message: MsgNotRunning}
	}
	return Result{Outcome: OutcomeOutput, Kind: kind, Output: out}
}

// Status reports every known kind, idle ones included.
func (s *Service) Status() []ToolStatus {
	kinds := tool.AllKinds()
	result := make([]ToolStatus, 0, len(kinds))
	for _, k := range kinds {
		result = append(result, s.StatusOf(k))
	}
	return result
}

// StatusOf reports the live run and last exit of kind.
func (s *Service) StatusOf(kind tool.Kind) ToolStatus {
	st := ToolStatus{
		Kind:    kind,
		Script:  kind.Script(),
		State:   StateIdle,
		LogFile: s.ctrl.LogPath(kind),
	}
	if h, ok := s.reg.Get(kind); ok {
		started := h.StartedAt
		st.State = string(h.State)
		st.RunID = h.RunID
		st.PID = h.PID
		st.Command = h.Command
		st.StartedAt = &started
	}
	if rec, ok := s.reg.LastExit(kind); ok {
		rec.Output = ""
		st.LastExit = &rec
	}
	return st
}

func failure(outcome Outcome, kind tool.Kind, err error) Result {
	if outcome == "" {
		outcome = OutcomeSpawnFailed
	}
	msg := err.Error()
	if errors.Is(err, lifecycle.ErrSpawnFailed) {
		msg = "Script execution failed: " + msg
	}
	return Result{Outcome: outcome, Kind: kind, Err: err, Error: msg}
}
