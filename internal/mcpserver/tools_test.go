package mcpserver

import (
	"context"
	"encoding/json"
	"testing"

	"botctl/internal/orchestrator"
	"botctl/internal/tool"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type call struct {
	action  string
	command string
}

type mockOrchestrator struct {
	calls  []call
	result orchestrator.Result
	output orchestrator.Result
}

func (m *mockOrchestrator) Handle(_ context.Context, action, command string) orchestrator.Result {
	m.calls = append(m.calls, call{action, command})
	return m.result
}

func (m *mockOrchestrator) Output(kind tool.Kind) orchestrator.Result {
	return m.output
}

func (m *mockOrchestrator) Status() []orchestrator.ToolStatus {
	var out []orchestrator.ToolStatus
	for _, k := range tool.AllKinds() {
		out = append(out, m.StatusOf(k))
	}
	return out
}

func (m *mockOrchestrator) StatusOf(kind tool.Kind) orchestrator.ToolStatus {
	return orchestrator.ToolStatus{Kind: kind, Script: kind.Script(), State: orchestrator.StateIdle}
}

func newRequest(name string, args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, res)
	require.Len(t, res.Content, 1)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content, got %T", res.Content[0])
	return text.Text
}

func TestServerToolsNames(t *testing.T) {
	tools := NewTools(&mockOrchestrator{}).ServerTools()
	var names []string
	for _, st := range tools {
		names = append(names, st.Tool.Name)
		assert.NotNil(t, st.Handler)
	}
	assert.Equal(t, []string{"tool_start", "tool_stop", "tool_status", "tool_output"}, names)
}

func TestHandleStart(t *testing.T) {
	tests := []struct {
		name      string
		args      map[string]any
		result    orchestrator.Result
		wantError bool
		wantText  string
		wantCalls int
	}{
		{
			name:      "started",
			args:      map[string]any{"command": "python3 main.py verenetti --start"},
			result:    orchestrator.Result{Outcome: orchestrator.OutcomeStarted, Message: orchestrator.MsgStarted},
			wantText:  orchestrator.MsgStarted,
			wantCalls: 1,
		},
		{
			name:      "already running is an error result",
			args:      map[string]any{"command": "python3 main.py"},
			result:    orchestrator.Result{Outcome: orchestrator.OutcomeAlreadyRunning, Message: orchestrator.MsgAlreadyRunning},
			wantError: true,
			wantText:  orchestrator.MsgAlreadyRunning,
			wantCalls: 1,
		},
		{
			name:      "spawn failure",
			args:      map[string]any{"command": "python3 main.py"},
			result:    orchestrator.Result{Outcome: orchestrator.OutcomeSpawnFailed, Error: "Script execution failed: boom"},
			wantError: true,
			wantText:  "Script execution failed: boom",
			wantCalls: 1,
		},
		{
			name:      "missing command",
			args:      map[string]any{},
			wantError: true,
			wantText:  "command parameter is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &mockOrchestrator{result: tt.result}
			res, err := NewTools(mock).HandleStart(context.Background(), newRequest("tool_start", tt.args))
			require.NoError(t, err)
			assert.Equal(t, tt.wantError, res.IsError)
			assert.Equal(t, tt.wantText, resultText(t, res))
			require.Len(t, mock.calls, tt.wantCalls)
			if tt.wantCalls > 0 {
				assert.Equal(t, "start", mock.calls[0].action)
				assert.Equal(t, tt.args["command"], mock.calls[0].command)
			}
		})
	}
}

func TestHandleStop(t *testing.T) {
	stopped := orchestrator.Result{Outcome: orchestrator.OutcomeStopped, Message: orchestrator.MsgStopped}

	t.Run("by command", func(t *testing.T) {
		mock := &mockOrchestrator{result: stopped}
		res, err := NewTools(mock).HandleStop(context.Background(),
			newRequest("tool_stop", map[string]any{"command": "python3 src/replay.py x.json"}))
		require.NoError(t, err)
		assert.False(t, res.IsError)
		assert.Equal(t, orchestrator.MsgStopped, resultText(t, res))
		assert.Equal(t, []call{{"stop", "python3 src/replay.py x.json"}}, mock.calls)
	})

	t.Run("by kind", func(t *testing.T) {
		mock := &mockOrchestrator{result: stopped}
		res, err := NewTools(mock).HandleStop(context.Background(),
			newRequest("tool_stop", map[string]any{"kind": "hater-bot"}))
		require.NoError(t, err)
		assert.False(t, res.IsError)
		assert.Equal(t, []call{{"stop", "hate_speech_generator.py"}}, mock.calls)
	})

	t.Run("unknown kind", func(t *testing.T) {
		mock := &mockOrchestrator{}
		res, err := NewTools(mock).HandleStop(context.Background(),
			newRequest("tool_stop", map[string]any{"kind": "spammer"}))
		require.NoError(t, err)
		assert.True(t, res.IsError)
		assert.Empty(t, mock.calls)
	})

	t.Run("nothing given", func(t *testing.T) {
		res, err := NewTools(&mockOrchestrator{}).HandleStop(context.Background(), newRequest("tool_stop", nil))
		require.NoError(t, err)
		assert.True(t, res.IsError)
	})
}

func TestHandleStatus(t *testing.T) {
	tools := NewTools(&mockOrchestrator{})

	res, err := tools.HandleStatus(context.Background(), newRequest("tool_status", nil))
	require.NoError(t, err)
	var all []orchestrator.ToolStatus
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &all))
	assert.Len(t, all, 3)

	res, err = tools.HandleStatus(context.Background(), newRequest("tool_status", map[string]any{"kind": "replay"}))
	require.NoError(t, err)
	var one orchestrator.ToolStatus
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &one))
	assert.Equal(t, tool.Replay, one.Kind)
	assert.Equal(t, orchestrator.StateIdle, one.State)
}

func TestHandleOutput(t *testing.T) {
	mock := &mockOrchestrator{output: orchestrator.Result{Outcome: orchestrator.OutcomeOutput, Output: "tick\ntock\n"}}
	tools := NewTools(mock)

	res, err := tools.HandleOutput(context.Background(), newRequest("tool_output", map[string]any{"kind": "llm-bot"}))
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Equal(t, "tick\ntock\n", resultText(t, res))

	mock.output = orchestrator.Result{Outcome: orchestrator.OutcomeNotRunning, Message: orchestrator.MsgNotRunning}
	res, err = tools.HandleOutput(context.Background(), newRequest("tool_output", map[string]any{"kind": "llm-bot"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)

	res, err = tools.HandleOutput(context.Background(), newRequest("tool_output", nil))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestServerStartStop(t *testing.T) {
	s := NewServer(Config{Host: "127.0.0.1", Port: 0}, &mockOrchestrator{})
	assert.Equal(t, 3002, s.config.Port, "zero port falls back to the default")
	assert.Equal(t, "http://127.0.0.1:3002/sse", s.Endpoint())
	assert.NotNil(t, s.MCPServer())

	assert.NoError(t, s.Stop(context.Background()), "stop before start is a no-op")
}
