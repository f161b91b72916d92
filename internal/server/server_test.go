package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/svasthya/svasthya/internal/controllers"
	"github.com/svasthya/svasthya/pkg/integrations/health_agent"
)

type echoAgent struct{}

func (echoAgent) ProcessQuery(_ context.Context, query health_agent.Query) health_agent.Response {
	return health_agent.Response{Text: "echo: " + query.Text}
}

type panickingAnalyzer struct{}

func (panickingAnalyzer) Analyze(context.Context, string) (string, error) {
	panic("analyzer exploded")
}

func newTestServer() *fiber.App {
	return NewHTTPServer(HTTPServerDependencies{
		AgentController: controllers.NewAgentController(controllers.AgentControllerDependencies{
			Agent:          echoAgent{},
			ReportAnalyzer: panickingAnalyzer{},
		}),
	})
}

func decode(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(data, &payload), string(data))

	return payload
}

func TestHealth(t *testing.T) {
	resp, err := newTestServer().Test(httptest.NewRequest(http.MethodGet, "/health", nil))
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
	assert.NotEmpty(t, resp.Header.Get("X-Content-Type-Options"))

	body := decode(t, resp)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "Svasthya Backend is running", body["message"])
	assert.Equal(t, "svasthya", body["service"])
	assert.NotEmpty(t, body["version"])
	assert.NotEmpty(t, body["timestamp"])
}

func TestChatRoute(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/agent/chat", strings.NewReader(`{"query":"hello"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := newTestServer().Test(req)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, map[string]any{"response": "echo: hello"}, decode(t, resp))
}

func TestPanicBecomesInternalServerError(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/agent/analyze-report", strings.NewReader(`{"reportText":"x"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := newTestServer().Test(req)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, map[string]any{"error": "Internal server error"}, decode(t, resp))
}

func TestUnknownRoute(t *testing.T) {
	resp, err := newTestServer().Test(httptest.NewRequest(http.MethodGet, "/api/agent/unknown", nil))
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Contains(t, decode(t, resp), "error")
}
