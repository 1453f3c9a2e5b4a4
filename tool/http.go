package tool

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/aeropilot-ai/aeropilot/core"
	"github.com/aeropilot-ai/aeropilot/internal/util"
)

// HTTPToolOptions configures an HTTPTool instance.
type HTTPToolOptions struct {
	// Client used for requests. Defaults to a client with a 30s timeout.
	Client *http.Client
	// Method is the HTTP method, POST by default.
	Method string
	// Headers are attached to every request.
	Headers map[string]string
}

// HTTPTool exposes an external JSON-over-HTTP capability (e.g. a perception
// scene API or a vehicle command endpoint) as a tool. The runtime has no
// knowledge of the remote protocol beyond "arguments in, JSON out"; timeout
// and retry policy belong to the supplied http.Client.
type HTTPTool struct {
	name        string
	description string
	parameters  map[string]any
	endpoint    string
	client      *http.Client
	method      string
	headers     map[string]string
}

// NewHTTPTool constructs a tool that forwards its arguments as a JSON body to
// endpoint and returns the decoded JSON response as the tool result.
func NewHTTPTool(name, description, endpoint string, parameters map[string]any, optFns ...func(o *HTTPToolOptions)) *HTTPTool {
	opts := HTTPToolOptions{
		Client: &http.Client{Timeout: 30 * time.Second},
		Method: http.MethodPost,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &HTTPTool{
		name:        name,
		description: description,
		parameters:  parameters,
		endpoint:    endpoint,
		client:      opts.Client,
		method:      opts.Method,
		headers:     opts.Headers,
	}
}

// Name returns the unique tool name.
func (t *HTTPTool) Name() string { return t.name }

// Description returns the description exposed to models.
func (t *HTTPTool) Description() string { return t.description }

// Parameters returns the JSON schema describing expected arguments.
func (t *HTTPTool) Parameters() map[string]any { return t.parameters }

// Call posts the validated arguments to the remote endpoint and decodes the
// JSON response. Transport failures and non-2xx statuses surface as
// *ToolError with code EXECUTION_ERROR.
func (t *HTTPTool) Call(toolCtx *core.ToolContext, args map[string]any) (any, error) {
	logger := toolCtx.Logger()
	start := time.Now()

	if err := util.ValidateParameters(args, t.parameters); err != nil {
		return nil, &ToolError{
			Tool:    t.name,
			Message: fmt.Sprintf("parameter validation failed: %v", err),
			Code:    CodeValidation,
			Details: err,
		}
	}

	body, err := json.Marshal(args)
	if err != nil {
		return nil, &ToolError{Tool: t.name, Message: err.Error(), Code: CodeExecution}
	}

	req, err := http.NewRequestWithContext(toolCtx.Context(), t.method, t.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, &ToolError{Tool: t.name, Message: err.Error(), Code: CodeExecution}
	}

	req.Header.Set("Content-Type", "application/json")
	for k, v := range t.headers {
		req.Header.Set(k, v)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		logger.Error("tool.http.request_failed", "tool", t.name, "endpoint", t.endpoint, "error", err.Error())

		return nil, &ToolError{Tool: t.name, Message: err.Error(), Code: CodeExecution}
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ToolError{Tool: t.name, Message: err.Error(), Code: CodeExecution}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		logger.Error("tool.http.bad_status", "tool", t.name, "status", resp.StatusCode)

		return nil, &ToolError{
			Tool:    t.name,
			Message: fmt.Sprintf("unexpected status %d: %s", resp.StatusCode, string(data)),
			Code:    CodeExecution,
		}
	}

	var result any
	if len(data) > 0 {
		if err := json.Unmarshal(data, &result); err != nil {
			// Non-JSON payloads are returned as raw text.
			result = string(data)
		}
	}

	logger.Info("tool.http.success", "tool", t.name, "duration_ms", time.Since(start).Milliseconds())

	return result, nil
}
