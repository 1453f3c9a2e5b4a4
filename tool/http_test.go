package tool

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scanParams() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"radius": map[string]any{"type": "number"},
		},
		"required": []string{"radius"},
	}
}

func TestHTTPTool_Success(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"obstacles": 2, "visibility": "low"}`))
	}))
	defer srv.Close()

	scan := NewHTTPTool("scene_scan", "Scan surroundings", srv.URL, scanParams())

	result, err := scan.Call(testToolContext("fc-http-1"), map[string]any{"radius": 50.0})
	require.NoError(t, err)

	assert.Equal(t, 50.0, gotBody["radius"])

	m, ok := result.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 2.0, m["obstacles"])
	assert.Equal(t, "low", m["visibility"])
}

func TestHTTPTool_BadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "sensor offline", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	scan := NewHTTPTool("scene_scan", "Scan surroundings", srv.URL, scanParams())

	_, err := scan.Call(testToolContext("fc-http-2"), map[string]any{"radius": 10.0})
	require.Error(t, err)

	toolErr, ok := err.(*ToolError)
	require.True(t, ok)
	assert.Equal(t, CodeExecution, toolErr.Code)
	assert.Contains(t, toolErr.Message, "503")
}

func TestHTTPTool_ValidatesArguments(t *testing.T) {
	scan := NewHTTPTool("scene_scan", "Scan surroundings", "http://127.0.0.1:0", scanParams())

	_, err := scan.Call(testToolContext("fc-http-3"), map[string]any{})
	require.Error(t, err)

	toolErr, ok := err.(*ToolError)
	require.True(t, ok)
	assert.Equal(t, CodeValidation, toolErr.Code)
}

func TestHTTPTool_CustomMethodAndHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "token-1", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`"accepted"`))
	}))
	defer srv.Close()

	cmd := NewHTTPTool("command", "Send command", srv.URL,
		map[string]any{"type": "object", "properties": map[string]any{}},
		func(o *HTTPToolOptions) {
			o.Method = http.MethodPut
			o.Headers = map[string]string{"Authorization": "token-1"}
		},
	)

	result, err := cmd.Call(testToolContext("fc-http-4"), map[string]any{})
	require.NoError(t, err)
	assert.Equal(t, "accepted", result)
}
