package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"botctl/internal/orchestrator"
	"botctl/internal/tool"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Orchestrator is the subset of orchestrator.Service exposed as MCP tools.
type Orchestrator interface {
	Handle(ctx context.Context, action, command string) orchestrator.Result
	Output(kind tool.Kind) orchestrator.Result
	Status() []orchestrator.ToolStatus
	StatusOf(kind tool.Kind) orchestrator.ToolStatus
}

// Tools maps orchestrator operations onto MCP tool handlers.
type Tools struct {
	orch Orchestrator
}

// NewTools creates the tool set for orch.
func NewTools(orch Orchestrator) *Tools {
	return &Tools{orch: orch}
}

// ServerTools returns every tool paired with its handler.
func (t *Tools) ServerTools() []server.ServerTool {
	return []server.ServerTool{
		{Tool: t.startTool(), Handler: t.HandleStart},
		{Tool: t.stopTool(), Handler: t.HandleStop},
		{Tool: t.statusTool(), Handler: t.HandleStatus},
		{Tool: t.outputTool(), Handler: t.HandleOutput},
	}
}

func (t *Tools) startTool() mcp.Tool {
	return mcp.NewTool("tool_start",
		mcp.WithDescription("Start a research bot. The command must reference main.py, hate_speech_generator.py or replay.py; one instance per kind may run."),
		mcp.WithString("command",
			mcp.Required(),
			mcp.Description("Shell command line, e.g. python3 main.py verenetti --start"),
		),
	)
}

func (t *Tools) stopTool() mcp.Tool {
	return mcp.NewTool("tool_stop",
		mcp.WithDescription("Stop the running bot of the kind referenced by the command or kind"),
		mcp.WithString("command",
			mcp.Description("Command line referencing the script to stop"),
		),
		mcp.WithString("kind",
			mcp.Description("Tool kind to stop, used when command is empty"),
			mcp.Enum(kindNames()...),
		),
	)
}

func (t *Tools) statusTool() mcp.Tool {
	return mcp.NewTool("tool_status",
		mcp.WithDescription("Report running state and last exit of every bot, or of one kind"),
		mcp.WithString("kind",
			mcp.Description("Limit the report to one tool kind"),
			mcp.Enum(kindNames()...),
		),
	)
}

func (t *Tools) outputTool() mcp.Tool {
	return mcp.NewTool("tool_output",
		mcp.WithDescription("Return the captured stdout tail of the current or last run of a bot"),
		mcp.WithString("kind",
			mcp.Required(),
			mcp.Description("Tool kind"),
			mcp.Enum(kindNames()...),
		),
	)
}

// HandleStart handles the tool_start tool call
func (t *Tools) HandleStart(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	command, err := req.RequireString("command")
	if err != nil {
		return mcp.NewToolResultError("command parameter is required"), nil
	}
	return toolResult(t.orch.Handle(ctx, string(orchestrator.ActionStart), command)), nil
}

// HandleStop handles the tool_stop tool call
func (t *Tools) HandleStop(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	command := req.GetString("command", "")
	if command == "" {
		name := req.GetString("kind", "")
		if name == "" {
			return mcp.NewToolResultError("either command or kind is required"), nil
		}
		kind, err := tool.ParseKind(name)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		command = kind.Script()
	}
	return toolResult(t.orch.Handle(ctx, string(orchestrator.ActionStop), command)), nil
}

// HandleStatus handles the tool_status tool call
func (t *Tools) HandleStatus(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var payload interface{}
	if name := req.GetString("kind", ""); name != "" {
		kind, err := tool.ParseKind(name)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		payload = t.orch.StatusOf(kind)
	} else {
		payload = t.orch.Status()
	}

	jsonData, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to format status: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}

// HandleOutput handles the tool_output tool call
func (t *Tools) HandleOutput(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("kind")
	if err != nil {
		return mcp.NewToolResultError("kind parameter is required"), nil
	}
	kind, err := tool.ParseKind(name)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return toolResult(t.orch.Output(kind)), nil
}

func toolResult(r orchestrator.Result) *mcp.CallToolResult {
	switch {
	case r.Error != "":
		return mcp.NewToolResultError(r.Error)
	case r.Output != "" || r.Outcome == orchestrator.OutcomeOutput:
		return mcp.NewToolResultText(r.Output)
	case !r.OK():
		// AlreadyRunning and NotRunning carry a message but did not do what was asked.
		return mcp.NewToolResultError(r.Message)
	default:
		return mcp.NewToolResultText(r.Message)
	}
}

func kindNames() []string {
	kinds := tool.AllKinds()
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = string(k)
	}
	return names
}
