package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/buger/jsonparser"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/zjrosen/automator/internal/automator"
	"github.com/zjrosen/automator/internal/extract"
	"github.com/zjrosen/automator/internal/extract/extracttest"
	"github.com/zjrosen/automator/internal/store"
	"github.com/zjrosen/automator/internal/tracing"
	"github.com/zjrosen/automator/internal/workflow"
)

func newsletterAutomation() workflow.Automation {
	return workflow.Automation{
		Trigger: workflow.Trigger{
			Service: "email",
			Event:   "new_email_received",
			Conditions: []workflow.Condition{
				{Field: "sender", Operator: workflow.OpEquals, Value: "news@example.com"},
			},
		},
		Action: workflow.Action{
			Service:   "slack",
			Operation: "send_message",
			Details:   workflow.NewDetails("channel", "#general"),
		},
	}
}

func newServer(t *testing.T, ext extract.Extractor) (*Server, *automator.Service) {
	t.Helper()
	items := store.New()
	t.Cleanup(items.Close)
	svc := automator.New(items, ext)
	s, err := New(svc, nil, "test")
	require.NoError(t, err)
	return s, svc
}

func call(name string, args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

func textOf(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, res)
	require.NotEmpty(t, res.Content)
	tc, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content, got %T", res.Content[0])
	return tc.Text
}

func TestCreate_StoresAndReturnsAutomation(t *testing.T) {
	s, svc := newServer(t, &extracttest.Static{Automation: newsletterAutomation()})

	res, err := s.handleCreate(context.Background(), call(ToolCreate, map[string]any{"prompt": automator.ExamplePrompt}))
	require.NoError(t, err)
	require.False(t, res.IsError)

	var view AutomationView
	require.NoError(t, json.Unmarshal([]byte(textOf(t, res)), &view))
	require.Equal(t, 0, view.Index)
	require.True(t, workflow.ID(view.ID).IsValid())
	require.True(t, view.Automation.Equal(newsletterAutomation()))
	require.Equal(t, 1, svc.Store().Len())
}

func TestCreate_ErrorsBecomeToolErrors(t *testing.T) {
	tests := []struct {
		name     string
		args     map[string]any
		err      error
		contains string
	}{
		{"missing prompt", map[string]any{}, nil, "prompt parameter is required"},
		{"ambiguous", map[string]any{"prompt": "hello"}, extract.ErrAmbiguousInput, "try phrasing it differently"},
		{"transport", map[string]any{"prompt": "hello"}, &extract.TransportError{Provider: "gemini", StatusCode: http.StatusUnauthorized, Cause: errors.New("bad key")}, "API key"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, svc := newServer(t, &extracttest.Static{Automation: newsletterAutomation(), Err: tt.err})

			res, err := s.handleCreate(context.Background(), call(ToolCreate, tt.args))
			require.NoError(t, err)
			require.True(t, res.IsError)
			require.Contains(t, textOf(t, res), tt.contains)
			require.Zero(t, svc.Store().Len())
		})
	}
}

func TestList_ReturnsIndexedViews(t *testing.T) {
	s, svc := newServer(t, &extracttest.Static{})
	svc.Store().Append(newsletterAutomation())
	svc.Store().Append(newsletterAutomation())

	res, err := s.handleList(context.Background(), call(ToolList, nil))
	require.NoError(t, err)

	var views []AutomationView
	require.NoError(t, json.Unmarshal([]byte(textOf(t, res)), &views))
	require.Len(t, views, 2)
	require.Equal(t, 1, views[1].Index)
	require.NotEqual(t, views[0].ID, views[1].ID)
}

func TestUpdate(t *testing.T) {
	s, svc := newServer(t, &extracttest.Static{})
	svc.Store().Append(newsletterAutomation())

	valid := map[string]any{
		"trigger": map[string]any{"service": "github", "event": "new_pull_request"},
		"action": map[string]any{
			"service":   "slack",
			"operation": "send_message",
			"details":   map[string]any{"channel": "#dev-alerts"},
		},
	}

	res, err := s.handleUpdate(context.Background(), call(ToolUpdate, map[string]any{"index": float64(0), "automation": valid}))
	require.NoError(t, err)
	require.False(t, res.IsError, textOf(t, res))

	got := svc.ListAutomations()[0]
	require.Equal(t, "github", got.Trigger.Service)
	require.Empty(t, got.Trigger.Conditions)
	v, _ := got.Action.Details.Get("channel")
	require.Equal(t, "#dev-alerts", v)
}

func TestUpdate_Rejects(t *testing.T) {
	incomplete := map[string]any{
		"trigger": map[string]any{"service": "github"},
		"action":  map[string]any{"service": "slack", "operation": "send_message"},
	}
	badDetails := map[string]any{
		"trigger": map[string]any{"service": "github", "event": "push"},
		"action":  map[string]any{"service": "slack", "operation": "send_message", "details": map[string]any{"n": 3}},
	}
	good := map[string]any{
		"trigger": map[string]any{"service": "github", "event": "push"},
		"action":  map[string]any{"service": "slack", "operation": "send_message"},
	}

	tests := []struct {
		name     string
		args     map[string]any
		contains string
	}{
		{"missing index", map[string]any{"automation": good}, "index parameter is required"},
		{"fractional index", map[string]any{"index": 0.5, "automation": good}, "whole number"},
		{"string index", map[string]any{"index": "0", "automation": good}, "must be a number"},
		{"missing automation", map[string]any{"index": float64(0)}, "automation parameter is required"},
		{"missing required field", map[string]any{"index": float64(0), "automation": incomplete}, "trigger.event is required"},
		{"non-string detail", map[string]any{"index": float64(0), "automation": badDetails}, "does not match the schema"},
		{"out of range", map[string]any{"index": float64(4), "automation": good}, "no longer exists"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, svc := newServer(t, &extracttest.Static{})
			svc.Store().Append(newsletterAutomation())

			res, err := s.handleUpdate(context.Background(), call(ToolUpdate, tt.args))
			require.NoError(t, err)
			require.True(t, res.IsError)
			require.Contains(t, textOf(t, res), tt.contains)
			require.True(t, svc.ListAutomations()[0].Equal(newsletterAutomation()))
		})
	}
}

func TestDelete(t *testing.T) {
	s, svc := newServer(t, &extracttest.Static{})
	svc.Store().Append(newsletterAutomation())

	res, err := s.handleDelete(context.Background(), call(ToolDelete, map[string]any{"index": float64(0)}))
	require.NoError(t, err)
	require.False(t, res.IsError)
	require.Contains(t, textOf(t, res), "0 remaining")

	res, err = s.handleDelete(context.Background(), call(ToolDelete, map[string]any{"index": float64(0)}))
	require.NoError(t, err)
	require.True(t, res.IsError)
}

func TestResources(t *testing.T) {
	s, svc := newServer(t, &extracttest.Static{})
	svc.Store().Append(newsletterAutomation())

	req := mcp.ReadResourceRequest{}
	req.Params.URI = ResourceAutomations
	contents, err := s.handleReadAutomations(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, contents, 1)
	text := contents[0].(mcp.TextResourceContents).Text
	service, err := jsonparser.GetString([]byte(text), "[0]", "automation", "trigger", "service")
	require.NoError(t, err)
	require.Equal(t, "email", service)

	req.Params.URI = ResourceSchema
	contents, err = s.handleReadSchema(context.Background(), req)
	require.NoError(t, err)
	schema := []byte(contents[0].(mcp.TextResourceContents).Text)
	_, _, _, err = jsonparser.Get(schema, "properties", "trigger")
	require.NoError(t, err)
}

func TestUpdateToolSchema(t *testing.T) {
	raw, err := updateToolSchema()
	require.NoError(t, err)

	typ, err := jsonparser.GetString(raw, "properties", "index", "type")
	require.NoError(t, err)
	require.Equal(t, "integer", typ)

	var required []string
	_, err = jsonparser.ArrayEach(raw, func(value []byte, _ jsonparser.ValueType, _ int, _ error) {
		required = append(required, string(value))
	}, "required")
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"index", "automation"}, required)

	_, _, _, err = jsonparser.Get(raw, "properties", "automation", "properties", "action", "properties", "details")
	require.NoError(t, err)
}

func TestHandleMessage_ListsTools(t *testing.T) {
	s, _ := newServer(t, &extracttest.Static{})
	ctx := context.Background()

	s.MCPServer().HandleMessage(ctx, []byte(`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2024-11-05","capabilities":{},"clientInfo":{"name":"test","version":"0"}}}`))
	resp := s.MCPServer().HandleMessage(ctx, []byte(`{"jsonrpc":"2.0","id":2,"method":"tools/list"}`))

	data, err := json.Marshal(resp)
	require.NoError(t, err)
	for _, name := range []string{ToolCreate, ToolList, ToolUpdate, ToolDelete} {
		require.Contains(t, string(data), `"`+name+`"`)
	}
}

func TestUpdate_DetailKeysStoredAlphabetically(t *testing.T) {
	s, svc := newServer(t, &extracttest.Static{})
	svc.Store().Append(newsletterAutomation())

	automation := map[string]any{
		"trigger": map[string]any{"service": "github", "event": "new_pull_request"},
		"action": map[string]any{
			"service":   "slack",
			"operation": "send_message",
			"details":   map[string]any{"message": "PR opened <here>", "channel": "#dev"},
		},
	}
	res, err := s.handleUpdate(context.Background(), call(ToolUpdate, map[string]any{"index": float64(0), "automation": automation}))
	require.NoError(t, err)
	require.False(t, res.IsError, textOf(t, res))

	require.Equal(t, []string{"channel", "message"}, svc.ListAutomations()[0].Action.Details.Keys())
	require.Contains(t, textOf(t, res), "PR opened <here>")
}

func TestToolsList_UpdateDescribesKeyOrder(t *testing.T) {
	s, _ := newServer(t, &extracttest.Static{})
	ctx := context.Background()

	s.MCPServer().HandleMessage(ctx, []byte(`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2024-11-05","capabilities":{},"clientInfo":{"name":"test","version":"0"}}}`))
	resp := s.MCPServer().HandleMessage(ctx, []byte(`{"jsonrpc":"2.0","id":2,"method":"tools/list"}`))

	data, err := json.Marshal(resp)
	require.NoError(t, err)
	require.Contains(t, string(data), "Detail key order is not preserved")
}

func TestTraced_RecordsToolSpans(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	items := store.New()
	t.Cleanup(items.Close)
	s, err := New(automator.New(items, &extracttest.Static{}), tp.Tracer("test"), "test")
	require.NoError(t, err)

	handler := s.traced(ToolDelete, s.handleDelete)
	res, err := handler(context.Background(), call(ToolDelete, map[string]any{"index": float64(3)}))
	require.NoError(t, err)
	require.True(t, res.IsError)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	require.Equal(t, tracing.SpanMCPTool+ToolDelete, spans[0].Name())
	require.Equal(t, codes.Error, spans[0].Status().Code)
}
