package extract

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/zjrosen/automator/internal/log"
	"github.com/zjrosen/automator/internal/workflow"
)

const (
	defaultOpenAIBaseURL = "https://api.openai.com/v1"
	defaultOpenAIModel   = "gpt-4o-mini"
)

// OpenAI extracts automations with an OpenAI-compatible chat completions
// endpoint.
type OpenAI struct {
	cfg Config
}

// NewOpenAI creates an OpenAI-compatible extractor.
func NewOpenAI(cfg Config) *OpenAI {
	cfg.Provider = ProviderOpenAI
	if cfg.Model == "" {
		cfg.Model = defaultOpenAIModel
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultOpenAIBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	cfg.HTTPClient = cfg.httpClient()
	return &OpenAI{cfg: cfg}
}

type openaiRequest struct {
	Model      string          `json:"model"`
	Messages   []openaiMessage `json:"messages"`
	Tools      []openaiTool    `json:"tools"`
	ToolChoice string          `json:"tool_choice"`
}

type openaiMessage struct {
	Role      string           `json:"role"`
	Content   string           `json:"content"`
	ToolCalls []openaiToolCall `json:"tool_calls,omitempty"`
}

type openaiToolCall struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Function struct {
		Name      string `json:"name"`
		Arguments string `json:"arguments"`
	} `json:"function"`
}

type openaiFunction struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

type openaiTool struct {
	Type     string         `json:"type"`
	Function openaiFunction `json:"function"`
}

type openaiResponse struct {
	Choices []struct {
		Message      openaiMessage `json:"message"`
		FinishReason string        `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Extract implements Extractor.
func (o *OpenAI) Extract(ctx context.Context, prompt string) (workflow.Automation, error) {
	if err := checkPrompt(prompt); err != nil {
		return workflow.Automation{}, err
	}

	req := openaiRequest{
		Model:    o.cfg.Model,
		Messages: []openaiMessage{{Role: "user", Content: PromptText(prompt)}},
		Tools: []openaiTool{{
			Type: "function",
			Function: openaiFunction{
				Name:        FunctionName,
				Description: FunctionDescription,
				Parameters:  schemaMap(),
			},
		}},
		ToolChoice: "auto",
	}
	headers := map[string]string{"Authorization": "Bearer " + o.cfg.APIKey}

	log.Debug(log.CatExtract, "sending extraction request", "provider", ProviderOpenAI, "model", o.cfg.Model, "prompt_len", len(prompt))
	body, err := postJSON(ctx, o.cfg.HTTPClient, ProviderOpenAI, o.cfg.BaseURL+"/chat/completions", headers, req)
	if err != nil {
		return workflow.Automation{}, err
	}

	var resp openaiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return workflow.Automation{}, &TransportError{Provider: ProviderOpenAI, StatusCode: http.StatusOK, Cause: fmt.Errorf("malformed response: %w", err)}
	}
	if resp.Error != nil {
		return workflow.Automation{}, &TransportError{Provider: ProviderOpenAI, StatusCode: http.StatusOK, Cause: errors.New(resp.Error.Message)}
	}

	for _, choice := range resp.Choices {
		for _, call := range choice.Message.ToolCalls {
			if call.Function.Name != FunctionName {
				continue
			}
			return decodeArguments([]byte(call.Function.Arguments))
		}
	}
	return workflow.Automation{}, fmt.Errorf("%w: no %s call in response", ErrAmbiguousInput, FunctionName)
}
