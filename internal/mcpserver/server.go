// Package mcpserver exposes the automator Service as MCP tools and
// resources so other agents can create, list, update and delete
// automations.
package mcpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/zjrosen/automator/internal/automator"
	"github.com/zjrosen/automator/internal/extract"
	"github.com/zjrosen/automator/internal/log"
	"github.com/zjrosen/automator/internal/tracing"
	"github.com/zjrosen/automator/internal/workflow"
)

// Tool and resource names.
const (
	ToolCreate = "create_automation"
	ToolList   = "list_automations"
	ToolUpdate = "update_automation"
	ToolDelete = "delete_automation"

	// updateDescription warns callers that tool arguments arrive as an
	// unordered JSON object, so detail keys are stored sorted by name.
	updateDescription = "Replace the automation at the given index with a complete new automation. " +
		"Detail key order is not preserved: keys are stored in alphabetical order."

	ResourceAutomations = "automator://automations"
	ResourceSchema      = "automator://schema"
)

// Server wraps an MCP server backed by an automator Service.
type Server struct {
	svc       *automator.Service
	tracer    trace.Tracer
	mcpServer *server.MCPServer
}

// AutomationView is the JSON shape returned for one stored automation.
type AutomationView struct {
	Index      int                 `json:"index"`
	ID         string              `json:"id"`
	Automation workflow.Automation `json:"automation"`
}

// New creates the MCP server and registers its tools. A nil tracer
// disables tool spans.
func New(svc *automator.Service, tracer trace.Tracer, version string) (*Server, error) {
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("mcpserver")
	}
	s := &Server{svc: svc, tracer: tracer}

	mcpServer := server.NewMCPServer(
		"automator",
		version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, false),
	)

	if err := s.registerTools(mcpServer); err != nil {
		return nil, err
	}
	s.registerResources(mcpServer)

	s.mcpServer = mcpServer
	return s, nil
}

// MCPServer returns the underlying server, for transports other than stdio.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio serves MCP over stdin/stdout until the input closes.
func (s *Server) ServeStdio() error {
	log.Info(log.CatMCP, "serving MCP over stdio")
	return server.ServeStdio(s.mcpServer)
}

func (s *Server) registerTools(mcpServer *server.MCPServer) error {
	createTool := mcp.NewTool(ToolCreate,
		mcp.WithDescription("Create an automation workflow (a trigger and an action) from a plain-language request and store it."),
		mcp.WithString("prompt",
			mcp.Required(),
			mcp.Description("The request, e.g. 'When a new email arrives from news@example.com, send a slack message to #general'"),
		),
	)
	mcpServer.AddTool(createTool, s.traced(ToolCreate, s.handleCreate))

	listTool := mcp.NewTool(ToolList,
		mcp.WithDescription("List every stored automation in display order with its index and ID."),
	)
	mcpServer.AddTool(listTool, s.traced(ToolList, s.handleList))

	updateSchema, err := updateToolSchema()
	if err != nil {
		return fmt.Errorf("building %s schema: %w", ToolUpdate, err)
	}
	updateTool := mcp.NewToolWithRawSchema(ToolUpdate,
		updateDescription,
		updateSchema,
	)
	mcpServer.AddTool(updateTool, s.traced(ToolUpdate, s.handleUpdate))

	deleteTool := mcp.NewTool(ToolDelete,
		mcp.WithDescription("Delete the automation at the given index. Later automations shift down by one."),
		mcp.WithNumber("index",
			mcp.Required(),
			mcp.Description("Zero-based position as returned by list_automations"),
		),
	)
	mcpServer.AddTool(deleteTool, s.traced(ToolDelete, s.handleDelete))
	return nil
}

func (s *Server) registerResources(mcpServer *server.MCPServer) {
	automations := mcp.NewResource(ResourceAutomations, "Stored automations",
		mcp.WithResourceDescription("Every stored automation as JSON, in display order"),
		mcp.WithMIMEType("application/json"),
	)
	mcpServer.AddResource(automations, s.handleReadAutomations)

	schema := mcp.NewResource(ResourceSchema, "Automation schema",
		mcp.WithResourceDescription("JSON schema of one automation"),
		mcp.WithMIMEType("application/schema+json"),
	)
	mcpServer.AddResource(schema, s.handleReadSchema)
}

// traced records one span per tool call.
func (s *Server) traced(name string, next server.ToolHandlerFunc) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		ctx, span := s.tracer.Start(ctx, tracing.SpanMCPTool+name, trace.WithSpanKind(trace.SpanKindServer))
		defer span.End()
		span.SetAttributes(attribute.String(tracing.AttrMCPToolName, name))

		result, err := next(ctx, request)
		switch {
		case err != nil:
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		case result != nil && result.IsError:
			span.SetStatus(codes.Error, "tool returned an error result")
		default:
			span.SetStatus(codes.Ok, "")
		}
		log.Debug(log.CatMCP, "tool called", "tool", name, "error", result != nil && result.IsError)
		return result, err
	}
}

func (s *Server) handleCreate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := getArgs(request)
	prompt, ok := args["prompt"].(string)
	if !ok {
		return mcp.NewToolResultError("prompt parameter is required"), nil
	}

	entry, err := s.svc.CreateAutomation(ctx, prompt)
	if err != nil {
		var terr *extract.TransportError
		if errors.As(err, &terr) {
			log.ErrorErr(log.CatMCP, "create_automation failed", err)
		}
		return mcp.NewToolResultError(automator.ErrorMessage(err)), nil
	}

	index, _ := s.svc.Store().IndexOf(entry.ID)
	return jsonResult(AutomationView{Index: index, ID: entry.ID.String(), Automation: entry.Automation})
}

func (s *Server) handleList(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.views())
}

func (s *Server) handleUpdate(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := getArgs(request)
	index, err := indexArg(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	raw, ok := args["automation"]
	if !ok {
		return mcp.NewToolResultError("automation parameter is required"), nil
	}
	a, err := decodeAutomation(raw)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := s.svc.UpdateAutomation(index, a); err != nil {
		return mcp.NewToolResultError(automator.ErrorMessage(err)), nil
	}
	entry, err := s.svc.Store().At(index)
	if err != nil {
		return mcp.NewToolResultError(automator.ErrorMessage(err)), nil
	}
	return jsonResult(AutomationView{Index: index, ID: entry.ID.String(), Automation: entry.Automation})
}

func (s *Server) handleDelete(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	index, err := indexArg(getArgs(request))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.svc.DeleteAutomation(index); err != nil {
		return mcp.NewToolResultError(automator.ErrorMessage(err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Deleted automation %d. %d remaining.", index, s.svc.Store().Len())), nil
}

func (s *Server) handleReadAutomations(_ context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	data, err := indentJSON(s.views())
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{URI: request.Params.URI, MIMEType: "application/json", Text: string(data)},
	}, nil
}

func (s *Server) handleReadSchema(_ context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	data, err := extract.SchemaJSON()
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{URI: request.Params.URI, MIMEType: "application/schema+json", Text: string(data)},
	}, nil
}

func (s *Server) views() []AutomationView {
	entries := s.svc.Entries()
	out := make([]AutomationView, len(entries))
	for i, e := range entries {
		out[i] = AutomationView{Index: i, ID: e.ID.String(), Automation: e.Automation}
	}
	return out
}

// getArgs extracts arguments from request as map[string]any.
func getArgs(request mcp.CallToolRequest) map[string]any {
	if args, ok := request.Params.Arguments.(map[string]any); ok {
		return args
	}
	return make(map[string]any)
}

func indexArg(args map[string]any) (int, error) {
	switch v := args["index"].(type) {
	case float64:
		if v != math.Trunc(v) {
			return 0, fmt.Errorf("index must be a whole number, got %v", v)
		}
		return int(v), nil
	case int:
		return v, nil
	case nil:
		return 0, errors.New("index parameter is required")
	default:
		return 0, fmt.Errorf("index must be a number, got %T", v)
	}
}

// decodeAutomation re-encodes the loosely typed argument and decodes it
// into the model, then validates the required fields.
func decodeAutomation(raw any) (workflow.Automation, error) {
	data, err := json.Marshal(raw)
	if err != nil {
		return workflow.Automation{}, fmt.Errorf("automation: %w", err)
	}
	var a workflow.Automation
	if err := json.Unmarshal(data, &a); err != nil {
		return workflow.Automation{}, fmt.Errorf("automation does not match the schema: %w", err)
	}
	if err := a.Validate(); err != nil {
		return workflow.Automation{}, err
	}
	return a, nil
}

// indentJSON renders v with two-space indentation and without escaping
// & < > in strings.
func indentJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := indentJSON(v)
	if err != nil {
		return nil, fmt.Errorf("encoding result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}
