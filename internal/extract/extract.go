// Package extract turns a free-text request into a workflow.Automation by
// asking a hosted language model to call the create_automation function.
//
// Each call issues exactly one request. Nothing is retried or cached. The
// caller gets one of three results: an automation, ErrAmbiguousInput when
// the model did not produce a usable call, or a *TransportError when the
// service itself could not be reached or answered badly.
package extract

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/buger/jsonparser"

	"github.com/zjrosen/automator/internal/log"
	"github.com/zjrosen/automator/internal/workflow"
)

// FunctionName is the name of the single function offered to the model.
const FunctionName = "create_automation"

// FunctionDescription is sent alongside the schema.
const FunctionDescription = "Creates a structured automation workflow from a user's natural language description. The workflow consists of a trigger and an action."

// Provider names accepted by New.
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// DefaultTimeout bounds one extraction request.
const DefaultTimeout = 60 * time.Second

var (
	// ErrAmbiguousInput means the model answered but did not produce a
	// usable create_automation call.
	ErrAmbiguousInput = errors.New("request could not be understood as an automation")

	// ErrEmptyPrompt is returned for a blank prompt. No request is sent.
	ErrEmptyPrompt = errors.New("prompt is empty")
)

// TransportError reports a failure to get a usable answer from the service:
// network errors, non-2xx responses and malformed response bodies.
type TransportError struct {
	Provider   string
	StatusCode int // 0 when no response was received
	Cause      error
}

func (e *TransportError) Error() string {
	switch {
	case e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden:
		return fmt.Sprintf("%s rejected the request (HTTP %d): check your API key: %v", e.Provider, e.StatusCode, e.Cause)
	case e.StatusCode == http.StatusTooManyRequests:
		return fmt.Sprintf("%s rate limit exceeded (HTTP 429): wait a moment and try again", e.Provider)
	case e.StatusCode != 0:
		return fmt.Sprintf("%s returned HTTP %d: %v", e.Provider, e.StatusCode, e.Cause)
	default:
		return fmt.Sprintf("failed to communicate with %s: %v", e.Provider, e.Cause)
	}
}

func (e *TransportError) Unwrap() error {
	return e.Cause
}

// Extractor converts a prompt into an automation.
type Extractor interface {
	Extract(ctx context.Context, prompt string) (workflow.Automation, error)
}

// Config selects and configures a provider.
type Config struct {
	Provider string
	Model    string
	APIKey   string
	BaseURL  string
	Timeout  time.Duration

	// HTTPClient overrides the client built from Timeout.
	HTTPClient *http.Client
}

// New builds the extractor for cfg.Provider.
func New(cfg Config) (Extractor, error) {
	if cfg.APIKey == "" {
		log.Warn(log.CatExtract, "no API key configured, requests will be rejected", "provider", cfg.Provider)
	}
	switch cfg.Provider {
	case ProviderGemini, "":
		return NewGemini(cfg), nil
	case ProviderOpenAI:
		return NewOpenAI(cfg), nil
	default:
		return nil, fmt.Errorf("unknown extractor provider: %q", cfg.Provider)
	}
}

func (c Config) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{Timeout: timeout}
}

// PromptText wraps the user's request in the instruction sent to the model.
func PromptText(prompt string) string {
	return fmt.Sprintf("Parse the following user request to create an automation workflow: \"%s\"", prompt)
}

func checkPrompt(prompt string) error {
	if strings.TrimSpace(prompt) == "" {
		return ErrEmptyPrompt
	}
	return nil
}

// decodeArguments turns the arguments of a create_automation call into a
// validated automation. Anything that does not fit the model is ambiguous
// input, not a transport failure: the service answered, just not usefully.
func decodeArguments(args []byte) (workflow.Automation, error) {
	args, err := stringifyDetails(args)
	if err != nil {
		return workflow.Automation{}, fmt.Errorf("%w: arguments do not match the schema: %v", ErrAmbiguousInput, err)
	}
	var a workflow.Automation
	if err := json.Unmarshal(args, &a); err != nil {
		return workflow.Automation{}, fmt.Errorf("%w: arguments do not match the schema: %v", ErrAmbiguousInput, err)
	}
	if err := a.Validate(); err != nil {
		return workflow.Automation{}, fmt.Errorf("%w: %v", ErrAmbiguousInput, err)
	}
	return a, nil
}

// stringifyDetails rewrites number and boolean detail values as their JSON
// text, so {"count":5} becomes {"count":"5"}. Models ignore the string type
// on open objects often enough that rejecting these would be unhelpful.
// Null entries are dropped. Nested objects and arrays are left in place for
// the decoder to reject.
func stringifyDetails(args []byte) ([]byte, error) {
	raw, dataType, _, err := jsonparser.Get(args, "action", "details")
	if err != nil || dataType != jsonparser.Object {
		return args, nil
	}

	var out workflow.Details
	changed := false
	err = jsonparser.ObjectEach(raw, func(key, value []byte, vt jsonparser.ValueType, _ int) error {
		switch vt {
		case jsonparser.String:
			s, err := jsonparser.ParseString(value)
			if err != nil {
				return fmt.Errorf("detail %q is not a valid string: bad escape sequence", key)
			}
			out.Set(string(key), s)
		case jsonparser.Number, jsonparser.Boolean:
			out.Set(string(key), string(value))
			changed = true
		case jsonparser.Null:
			changed = true
		default:
			return fmt.Errorf("detail %q must be a string, got %v", key, vt)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !changed {
		return args, nil
	}

	data, err := out.MarshalJSON()
	if err != nil {
		return nil, err
	}
	return jsonparser.Set(args, data, "action", "details")
}
