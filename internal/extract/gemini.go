package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/zjrosen/automator/internal/log"
	"github.com/zjrosen/automator/internal/workflow"
)

const (
	defaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	defaultGeminiModel   = "gemini-2.5-flash"
)

// Gemini extracts automations with the Gemini generateContent API.
type Gemini struct {
	cfg Config
}

// NewGemini creates a Gemini extractor. Empty Model and BaseURL take the
// public defaults.
func NewGemini(cfg Config) *Gemini {
	cfg.Provider = ProviderGemini
	if cfg.Model == "" {
		cfg.Model = defaultGeminiModel
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultGeminiBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	cfg.HTTPClient = cfg.httpClient()
	return &Gemini{cfg: cfg}
}

type geminiRequest struct {
	Contents   []geminiContent   `json:"contents"`
	Tools      []geminiTool      `json:"tools"`
	ToolConfig *geminiToolConfig `json:"toolConfig,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text         string              `json:"text,omitempty"`
	FunctionCall *geminiFunctionCall `json:"functionCall,omitempty"`
}

type geminiFunctionCall struct {
	Name string          `json:"name"`
	Args json.RawMessage `json:"args"`
}

type geminiTool struct {
	FunctionDeclarations []geminiFunctionDecl `json:"functionDeclarations"`
}

type geminiFunctionDecl struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

type geminiToolConfig struct {
	FunctionCallingConfig geminiFunctionCallingConfig `json:"functionCallingConfig"`
}

type geminiFunctionCallingConfig struct {
	Mode string `json:"mode"`
}

type geminiResponse struct {
	Candidates []struct {
		Content      geminiContent `json:"content"`
		FinishReason string        `json:"finishReason,omitempty"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason,omitempty"`
	} `json:"promptFeedback,omitempty"`
}

// Extract implements Extractor.
func (g *Gemini) Extract(ctx context.Context, prompt string) (workflow.Automation, error) {
	if err := checkPrompt(prompt); err != nil {
		return workflow.Automation{}, err
	}

	req := geminiRequest{
		Contents: []geminiContent{{
			Role:  "user",
			Parts: []geminiPart{{Text: PromptText(prompt)}},
		}},
		Tools: []geminiTool{{
			FunctionDeclarations: []geminiFunctionDecl{{
				Name:        FunctionName,
				Description: FunctionDescription,
				Parameters:  geminiSchema(),
			}},
		}},
		// AUTO lets the model decline when the request is not an automation.
		ToolConfig: &geminiToolConfig{FunctionCallingConfig: geminiFunctionCallingConfig{Mode: "AUTO"}},
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s",
		g.cfg.BaseURL, url.PathEscape(g.cfg.Model), url.QueryEscape(g.cfg.APIKey))

	log.Debug(log.CatExtract, "sending extraction request", "provider", ProviderGemini, "model", g.cfg.Model, "prompt_len", len(prompt))
	body, err := postJSON(ctx, g.cfg.HTTPClient, ProviderGemini, endpoint, nil, req)
	if err != nil {
		return workflow.Automation{}, err
	}

	var resp geminiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return workflow.Automation{}, &TransportError{Provider: ProviderGemini, StatusCode: http.StatusOK, Cause: fmt.Errorf("malformed response: %w", err)}
	}

	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return workflow.Automation{}, fmt.Errorf("%w: prompt blocked (%s)", ErrAmbiguousInput, resp.PromptFeedback.BlockReason)
	}

	for _, c := range resp.Candidates {
		for _, part := range c.Content.Parts {
			if part.FunctionCall == nil || part.FunctionCall.Name != FunctionName {
				continue
			}
			return decodeArguments(part.FunctionCall.Args)
		}
	}
	return workflow.Automation{}, fmt.Errorf("%w: no %s call in response", ErrAmbiguousInput, FunctionName)
}
