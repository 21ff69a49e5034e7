package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"testing"

	"botctl/internal/lifecycle"
	"botctl/internal/registry"
	"botctl/internal/tool"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockController records calls and returns canned outcomes.
type mockController struct {
	mu         sync.Mutex
	startCalls []tool.Kind
	stopCalls  []tool.Kind

	startOutcome lifecycle.Outcome
	startErr     error
	stopOutcome  lifecycle.Outcome
	stopErr      error
	output       map[tool.Kind]string
}

func (m *mockController) Start(_ context.Context, kind tool.Kind, _ string) (lifecycle.Outcome, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.startCalls = append(m.startCalls, kind)
	return m.startOutcome, m.startErr
}

func (m *mockController) Stop(_ context.Context, kind tool.Kind) (lifecycle.Outcome, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopCalls = append(m.stopCalls, kind)
	return m.stopOutcome, m.stopErr
}

func (m *mockController) Output(kind tool.Kind) (string, bool) {
	out, ok := m.output[kind]
	return out, ok
}

func (m *mockController) LogPath(kind tool.Kind) string {
	return "/var/log/" + kind.LogFile()
}

func TestHandle(t *testing.T) {
	tests := []struct {
		name        string
		action      string
		command     string
		ctrl        *mockController
		wantOutcome Outcome
		wantStatus  int
		wantMessage string
		wantErrIs   error
		wantStarts  []tool.Kind
		wantStops   []tool.Kind
	}{
		{
			name:        "start llm bot",
			action:      "start",
			command:     "python3 src/main.py verenetti --start",
			ctrl:        &mockController{startOutcome: lifecycle.OutcomeStarted},
			wantOutcome: OutcomeStarted,
			wantStatus:  http.StatusOK,
			wantMessage: MsgStarted,
			wantStarts:  []tool.Kind{tool.LLMBot},
		},
		{
			name:        "start while running",
			action:      "START",
			command:     "python3 hate_speech_generator.py 2>> error_log.txt",
			ctrl:        &mockController{startOutcome: lifecycle.OutcomeAlreadyRunning},
			wantOutcome: OutcomeAlreadyRunning,
			wantStatus:  http.StatusBadRequest,
			wantMessage: MsgAlreadyRunning,
			wantStarts:  []tool.Kind{tool.HaterBot},
		},
		{
			name:        "stop running replay",
			action:      "stop",
			command:     `python3 src/replay.py "chat.csv" --speedup 2`,
			ctrl:        &mockController{stopOutcome: lifecycle.OutcomeStopped},
			wantOutcome: OutcomeStopped,
			wantStatus:  http.StatusOK,
			wantMessage: MsgStopped,
			wantStops:   []tool.Kind{tool.Replay},
		},
		{
			name:        "stop idle hater bot",
			action:      "stop",
			command:     "python3 hate_speech_generator.py",
			ctrl:        &mockController{stopOutcome: lifecycle.OutcomeNotRunning},
			wantOutcome: OutcomeNotRunning,
			wantStatus:  http.StatusBadRequest,
			wantMessage: MsgNotRunning,
			wantStops:   []tool.Kind{tool.HaterBot},
		},
		{
			name:        "spawn failure",
			action:      "start",
			command:     "python3 main.py",
			ctrl:        &mockController{startOutcome: lifecycle.OutcomeSpawnFailed, startErr: fmt.Errorf("%w: exec: not found", lifecycle.ErrSpawnFailed)},
			wantOutcome: OutcomeSpawnFailed,
			wantStatus:  http.StatusInternalServerError,
			wantErrIs:   lifecycle.ErrSpawnFailed,
			wantStarts:  []tool.Kind{tool.LLMBot},
		},
		{
			name:        "log directory unavailable",
			action:      "start",
			command:     "python3 main.py",
			ctrl:        &mockController{startOutcome: lifecycle.OutcomeLogDirectoryUnavailable, startErr: lifecycle.ErrLogDirectoryUnavailable},
			wantOutcome: OutcomeLogDirectoryUnavailable,
			wantStatus:  http.StatusInternalServerError,
			wantErrIs:   lifecycle.ErrLogDirectoryUnavailable,
			wantStarts:  []tool.Kind{tool.LLMBot},
		},
		{
			name:        "stop failure",
			action:      "stop",
			command:     "python3 main.py",
			ctrl:        &mockController{stopOutcome: lifecycle.OutcomeStopFailed, stopErr: fmt.Errorf("%w: operation not permitted", lifecycle.ErrStopFailed)},
			wantOutcome: OutcomeStopFailed,
			wantStatus:  http.StatusInternalServerError,
			wantErrIs:   lifecycle.ErrStopFailed,
			wantStops:   []tool.Kind{tool.LLMBot},
		},
		{
			name:        "unrecognized tool",
			action:      "start",
			command:     "rm -rf /tmp/x",
			ctrl:        &mockController{},
			wantOutcome: OutcomeUnrecognizedTool,
			wantStatus:  http.StatusBadRequest,
			wantErrIs:   tool.ErrUnrecognizedTool,
		},
		{
			name:        "unsupported action",
			action:      "restart",
			command:     "python3 main.py",
			ctrl:        &mockController{},
			wantOutcome: OutcomeUnsupportedAction,
			wantStatus:  http.StatusBadRequest,
			wantErrIs:   ErrUnsupportedAction,
		},
		{
			name:        "empty command",
			action:      "start",
			command:     "   ",
			ctrl:        &mockController{},
			wantOutcome: OutcomeInvalidRequest,
			wantStatus:  http.StatusBadRequest,
			wantErrIs:   ErrEmptyCommand,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewService(registry.New(), tt.ctrl)
			res := svc.Handle(context.Background(), tt.action, tt.command)

			assert.Equal(t, tt.wantOutcome, res.Outcome)
			assert.Equal(t, tt.wantStatus, res.StatusCode())
			if tt.wantMessage != "" {
				assert.Equal(t, tt.wantMessage, res.Message)
				assert.Empty(t, res.Error)
				assert.NoError(t, res.Err)
			}
			if tt.wantErrIs != nil {
				assert.True(t, errors.Is(res.Err, tt.wantErrIs), "got %v", res.Err)
				assert.NotEmpty(t, res.Error)
				assert.Empty(t, res.Message)
			}
			assert.Equal(t, tt.wantStarts, tt.ctrl.startCalls)
			assert.Equal(t, tt.wantStops, tt.ctrl.stopCalls)
		})
	}
}

func TestOutput(t *testing.T) {
	ctrl := &mockController{output: map[tool.Kind]string{tool.Replay: "sent 3 messages\n"}}
	svc := NewService(registry.New(), ctrl)

	res := svc.Output(tool.Replay)
	assert.Equal(t, OutcomeOutput, res.Outcome)
	assert.Equal(t, "sent 3 messages\n", res.Output)
	assert.True(t, res.OK())

	res = svc.Output(tool.LLMBot)
	assert.Equal(t, OutcomeNotRunning, res.Outcome)
	assert.Equal(t, MsgNotRunning, res.Message)
}

func TestStatus(t *testing.T) {
	reg := registry.New()
	svc := NewService(reg, &mockController{})

	h, ok := reg.TryReserve(tool.HaterBot, "python3 hate_speech_generator.py")
	require.True(t, ok)
	require.NoError(t, reg.Install(tool.HaterBot, h.RunID, 321))

	done, ok := reg.TryReserve(tool.Replay, "python3 replay.py a.csv")
	require.True(t, ok)
	require.True(t, reg.Release(tool.Replay, done.RunID, &registry.ExitRecord{State: registry.StateFailed, ExitCode: 2, Output: "big"}))

	statuses := svc.Status()
	require.Len(t, statuses, 3)

	byKind := map[tool.Kind]ToolStatus{}
	for _, s := range statuses {
		byKind[s.Kind] = s
	}

	llm := byKind[tool.LLMBot]
	assert.Equal(t, StateIdle, llm.State)
	assert.Nil(t, llm.StartedAt)
	assert.Nil(t, llm.LastExit)
	assert.Equal(t, "main.py", llm.Script)

	hater := byKind[tool.HaterBot]
	assert.Equal(t, string(registry.StateRunning), hater.State)
	assert.Equal(t, 321, hater.PID)
	assert.NotNil(t, hater.StartedAt)
	assert.Equal(t, "/var/log/"+tool.HaterBot.LogFile(), hater.LogFile)

	replay := byKind[tool.Replay]
	assert.Equal(t, StateIdle, replay.State)
	require.NotNil(t, replay.LastExit)
	assert.Equal(t, 2, replay.LastExit.ExitCode)
	assert.Empty(t, replay.LastExit.Output, "status must not carry captured output")
}
