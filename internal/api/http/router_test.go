package http

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/ecomarket-assistant/internal/agent"
	"github.com/spec-kit/ecomarket-assistant/internal/api/http/handlers"
	"github.com/spec-kit/ecomarket-assistant/internal/auth"
	"github.com/spec-kit/ecomarket-assistant/internal/classifier"
	"github.com/spec-kit/ecomarket-assistant/internal/index"
	"github.com/spec-kit/ecomarket-assistant/internal/memory"
	"github.com/spec-kit/ecomarket-assistant/internal/observability"
	"github.com/spec-kit/ecomarket-assistant/internal/products"
	"github.com/spec-kit/ecomarket-assistant/internal/rag"
	"github.com/spec-kit/ecomarket-assistant/internal/repository"
	"github.com/spec-kit/ecomarket-assistant/internal/tickets"
)

// newTestApp assembles the full HTTP surface on in-memory dependencies,
// with no completion model configured anywhere.
func newTestApp(t *testing.T) (*fiber.App, *observability.Tracer, *tickets.Tools) {
	t.Helper()

	logger := zap.NewNop()
	tracer := observability.NewTracer(500)
	store := repository.NewMemoryTicketStore()
	idx := index.NewInprocIndex()

	cls := classifier.New(tracer)
	matcher := products.NewMatcher(idx, tracer, products.DefaultThreshold)
	responder := rag.NewResponder(cls, matcher, idx, nil, tracer, 0.3)
	ticketTools := tickets.NewTools(store, tracer, repository.DefaultRetryPolicy)
	orchestrator := agent.NewOrchestrator(responder, ticketTools, nil, tracer, 0.1)
	synthesizer := agent.NewSynthesizer(nil, tracer, 0.7)
	mem := memory.NewService(repository.NewInprocSessionMemory(), tracer, 5*time.Minute)
	coordinator := agent.NewCoordinator(orchestrator, synthesizer, mem, tracer)

	tokens := auth.NewTokenManager("test-secret", 60)
	authenticator, err := auth.NewAuthenticator("admin", "hunter2", 4, tokens)
	require.NoError(t, err)

	app := fiber.New()
	RegisterMiddlewares(app, logger, observability.NewMetrics(), 5*time.Second)
	RegisterRoutes(app, RouteConfig{
		Health:         handlers.NewHealthHandler("ecomarket-assistant", "test", nil, nil, idx, false),
		Chat:           handlers.NewChatHandler(coordinator),
		Tools:          handlers.NewToolsHandler(ticketTools),
		Admin:          handlers.NewAdminHandler(authenticator, tracer, store),
		AuthMiddleware: auth.NewMiddleware(tokens),
	})
	return app, tracer, ticketTools
}

func postJSON(t *testing.T, app *fiber.App, path string, payload any, headers map[string]string) (int, map[string]any) {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest("POST", path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := app.Test(req, 5000)
	require.NoError(t, err)
	return resp.StatusCode, decodeBody(t, resp.Body)
}

func getJSON(t *testing.T, app *fiber.App, path string, headers map[string]string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest("GET", path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := app.Test(req, 5000)
	require.NoError(t, err)
	return resp.StatusCode, decodeBody(t, resp.Body)
}

func decodeBody(t *testing.T, r io.ReadCloser) map[string]any {
	t.Helper()
	defer r.Close()
	raw, err := io.ReadAll(r)
	require.NoError(t, err)
	var parsed map[string]any
	require.NoError(t, json.Unmarshal(raw, &parsed))
	return parsed
}

func TestChatEndpoint(t *testing.T) {
	app, tracer, _ := newTestApp(t)

	status, body := postJSON(t, app, "/chat", map[string]string{
		"session_id": "s1",
		"message":    "¿cuál es la política de devoluciones?",
	}, nil)

	require.Equal(t, fiber.StatusOK, status)
	assert.NotEmpty(t, body["reply"])
	assert.Equal(t, "s1", body["session_id"])
	traceID, _ := body["trace_id"].(string)
	require.NotEmpty(t, traceID)
	assert.NotEmpty(t, tracer.ByTraceID(traceID))
}

func TestChatEndpointRejectsEmptyMessage(t *testing.T) {
	app, _, _ := newTestApp(t)

	status, body := postJSON(t, app, "/chat", map[string]string{"session_id": "s1", "message": "  "}, nil)

	assert.Equal(t, fiber.StatusBadRequest, status)
	errBody, ok := body["error"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "INPUT_MALFORMED", errBody["code"])
}

func TestReturnToolEndpoints(t *testing.T) {
	app, _, _ := newTestApp(t)

	status, body := postJSON(t, app, "/tools/returns/eligibility", map[string]string{
		"input": "12345; Camiseta de algodón orgánico; 2023-11-01; dañado",
	}, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, body["result"], "es elegible para devolución")

	status, body = postJSON(t, app, "/tools/returns/estimate", map[string]string{
		"input": "Jabon; 3; 15.75",
	}, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, body["result"], "$47.25")

	status, body = postJSON(t, app, "/tools/returns/register", map[string]string{
		"input": "987; Termo; llegó roto",
	}, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, body["result"], "Solicitud registrada")
}

func TestAdminPanelRequiresToken(t *testing.T) {
	app, _, _ := newTestApp(t)

	status, body := getJSON(t, app, "/admin/traces", nil)
	assert.Equal(t, fiber.StatusUnauthorized, status)
	errBody, ok := body["error"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "UNAUTHORIZED", errBody["code"])
}

func TestAdminLoginAndTraceQuery(t *testing.T) {
	app, _, _ := newTestApp(t)

	status, body := postJSON(t, app, "/admin/login", map[string]string{
		"username": "admin", "password": "hunter2",
	}, nil)
	require.Equal(t, fiber.StatusOK, status)
	data, ok := body["data"].(map[string]any)
	require.True(t, ok)
	token, _ := data["token"].(string)
	require.NotEmpty(t, token)

	// Generate some traffic so the buffer has records.
	chatStatus, chatBody := postJSON(t, app, "/chat", map[string]string{
		"session_id": "s1", "message": "hola, ¿qué horario tienen?",
	}, nil)
	require.Equal(t, fiber.StatusOK, chatStatus)
	traceID, _ := chatBody["trace_id"].(string)

	authHeader := map[string]string{"Authorization": "Bearer " + token}

	status, body = getJSON(t, app, "/admin/traces?trace_id="+traceID, authHeader)
	require.Equal(t, fiber.StatusOK, status)
	total, _ := body["total"].(float64)
	assert.Greater(t, total, float64(0))

	status, body = getJSON(t, app, "/admin/traces/stats", authHeader)
	require.Equal(t, fiber.StatusOK, status)
	assert.Greater(t, body["total"].(float64), float64(0))
}

func TestAdminLoginRejectsBadCredentials(t *testing.T) {
	app, _, _ := newTestApp(t)

	status, _ := postJSON(t, app, "/admin/login", map[string]string{
		"username": "admin", "password": "wrong",
	}, nil)
	assert.Equal(t, fiber.StatusUnauthorized, status)
}

func TestAdminTicketListing(t *testing.T) {
	app, _, ticketTools := newTestApp(t)

	resp := ticketTools.CreateReturn(t.Context(), "t1", tickets.ReturnRequest{
		CustomerEmail: "ana@example.com",
		ProductRef:    "botella-01",
		Reason:        "defectuoso",
	})
	require.True(t, resp.Success)

	status, body := postJSON(t, app, "/admin/login", map[string]string{
		"username": "admin", "password": "hunter2",
	}, nil)
	require.Equal(t, fiber.StatusOK, status)
	token := body["data"].(map[string]any)["token"].(string)

	status, body = getJSON(t, app, "/admin/tickets?tipo=devolucion&email=ana@example.com",
		map[string]string{"Authorization": "Bearer " + token})
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, float64(1), body["total"])
}

func TestHealthEndpoints(t *testing.T) {
	app, _, _ := newTestApp(t)

	status, body := getJSON(t, app, "/health/live", nil)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "alive", body["status"])

	status, body = getJSON(t, app, "/health/ready", nil)
	assert.Equal(t, fiber.StatusOK, status)
	deps, ok := body["dependencies"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, deps["postgres"], "in-memory")
}
