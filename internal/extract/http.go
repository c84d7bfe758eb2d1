package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/buger/jsonparser"
)

// maxErrorBody caps how much of an error response is quoted back.
const maxErrorBody = 512

// postJSON sends payload and returns the body of a 2xx response. Every
// failure comes back as a *TransportError.
func postJSON(ctx context.Context, client *http.Client, provider, endpoint string, headers map[string]string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, &TransportError{Provider: provider, Cause: fmt.Errorf("marshal request: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, &TransportError{Provider: provider, Cause: fmt.Errorf("build request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, &TransportError{Provider: provider, Cause: redactURL(err)}
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Provider: provider, StatusCode: resp.StatusCode, Cause: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &TransportError{Provider: provider, StatusCode: resp.StatusCode, Cause: errors.New(apiErrorMessage(respBody))}
	}
	return respBody, nil
}

// apiErrorMessage pulls error.message out of an error body, which both
// Gemini and OpenAI-compatible services use, falling back to the raw text.
func apiErrorMessage(body []byte) string {
	if msg, err := jsonparser.GetString(body, "error", "message"); err == nil && msg != "" {
		return msg
	}
	text := string(bytes.TrimSpace(body))
	if text == "" {
		return "empty response body"
	}
	if len(text) > maxErrorBody {
		text = text[:maxErrorBody] + "..."
	}
	return text
}

// redactURL strips the request URL from client errors; Gemini carries the
// API key in the query string.
func redactURL(err error) error {
	var uerr *url.Error
	if errors.As(err, &uerr) {
		return fmt.Errorf("%s request: %w", uerr.Op, uerr.Err)
	}
	return err
}
