package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/crudpark/internal/clock"
	"github.com/smallbiznis/crudpark/internal/config"
	"github.com/smallbiznis/crudpark/internal/migration/migrationtest"
	"github.com/smallbiznis/crudpark/internal/observability"
	obsmetrics "github.com/smallbiznis/crudpark/internal/observability/metrics"
	operatorrepo "github.com/smallbiznis/crudpark/internal/operator/repository"
	operatorservice "github.com/smallbiznis/crudpark/internal/operator/service"
	paymentrepo "github.com/smallbiznis/crudpark/internal/payment/repository"
	"github.com/smallbiznis/crudpark/internal/receipt"
	subscriptionrepo "github.com/smallbiznis/crudpark/internal/subscription/repository"
	tariffrepo "github.com/smallbiznis/crudpark/internal/tariff/repository"
	tariffservice "github.com/smallbiznis/crudpark/internal/tariff/service"
	ticketrepo "github.com/smallbiznis/crudpark/internal/ticket/repository"
	ticketservice "github.com/smallbiznis/crudpark/internal/ticket/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testServer struct {
	engine *gin.Engine
	clock  *clock.FakeClock
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := migrationtest.Open(t)
	now := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	migrationtest.Exec(t, db, `INSERT INTO operators (id, name, active) VALUES (1, 'Ana', TRUE), (2, 'Retired', FALSE)`)
	migrationtest.Exec(t, db,
		`INSERT INTO tariffs (id, name, hourly_rate, fraction_surcharge, daily_cap, grace_minutes, active, created_at, updated_at)
		 VALUES (1, 'standard', '4.00', '1.50', '20.00', 30, TRUE, ?, ?)`, now, now)

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	httpMetrics, err := obsmetrics.NewHTTPMetrics()
	require.NoError(t, err)

	log := zap.NewNop()
	parking := config.DefaultParkingConfig()
	clk := clock.NewFakeClock(now)

	tariffs := tariffservice.New(tariffservice.Params{DB: db, Log: log, Repo: tariffrepo.Provide(), Cfg: parking})
	operatorRepo := operatorrepo.Provide()

	engine := NewEngine(observability.Config{Environment: "test"}, httpMetrics)
	NewServer(ServerParams{
		Gin: engine,
		Cfg: config.Config{HTTPAddr: "127.0.0.1:0"},
		Log: log,
		TicketSvc: ticketservice.New(ticketservice.Params{
			DB:            db,
			Log:           log,
			GenID:         node,
			Clock:         clk,
			Repo:          ticketrepo.Provide(),
			Subscriptions: subscriptionrepo.Provide(),
			Payments:      paymentrepo.Provide(),
			Operators:     operatorRepo,
			Tariffs:       tariffs,
			Printer:       receipt.NoOpPrinter{},
			Cfg:           parking,
		}),
		OperatorSvc: operatorservice.New(operatorservice.Params{DB: db, Log: log, Repo: operatorRepo}),
		Tariffs:     tariffs,
	})

	return &testServer{engine: engine, clock: clk}
}

func (s *testServer) do(t *testing.T, method, path, operator string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if operator != "" {
		req.Header.Set(HeaderOperator, operator)
	}

	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	var out map[string]any
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	}
	return w, out
}

func errorCode(body map[string]any) string {
	e, _ := body["error"].(map[string]any)
	code, _ := e["code"].(string)
	return code
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	w, body := s.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", body["status"])
}

func TestLogin(t *testing.T) {
	s := newTestServer(t)

	w, body := s.do(t, http.MethodPost, "/api/login", "", map[string]string{"name": "ana"})
	require.Equal(t, http.StatusOK, w.Code)
	data := body["data"].(map[string]any)
	assert.Equal(t, "Ana", data["name"])

	w, _ = s.do(t, http.MethodPost, "/api/login", "", map[string]string{"name": "Retired"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = s.do(t, http.MethodPost, "/api/login", "", map[string]string{"name": " "})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTicketRoutesRequireActiveOperator(t *testing.T) {
	s := newTestServer(t)

	for _, operator := range []string{"", "abc", "99", "2"} {
		w, _ := s.do(t, http.MethodPost, "/api/tickets/entry", operator, map[string]string{"plate": "ABC123"})
		assert.Equal(t, http.StatusUnauthorized, w.Code, "operator %q", operator)
	}
}

func TestTicketLifecycle(t *testing.T) {
	s := newTestServer(t)

	w, body := s.do(t, http.MethodPost, "/api/tickets/entry", "1", map[string]string{"plate": "abc123"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	ticket := body["data"].(map[string]any)["ticket"].(map[string]any)
	assert.Equal(t, "TKT000001", ticket["folio"])
	assert.Equal(t, "ABC123", ticket["plate"])
	assert.Equal(t, "GUEST", ticket["entry_kind"])

	w, body = s.do(t, http.MethodPost, "/api/tickets/entry", "1", map[string]string{"plate": "ABC123"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "duplicate_open_ticket", errorCode(body))

	w, body = s.do(t, http.MethodGet, "/api/tickets/open", "1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, body["data"].(map[string]any)["count"])

	s.clock.Advance(105 * time.Minute)

	w, body = s.do(t, http.MethodPost, "/api/tickets/exit", "1", map[string]string{"plate": "ABC123", "method": "Bitcoin"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid_payment_method", errorCode(body))

	w, body = s.do(t, http.MethodPost, "/api/tickets/exit", "1", map[string]string{"plate": "ABC123", "method": "cash"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	data := body["data"].(map[string]any)
	assert.Equal(t, "5.50", data["charge"])
	assert.EqualValues(t, 105, data["minutes_stayed"])
	assert.NotEmpty(t, data["payment_id"])

	w, body = s.do(t, http.MethodPost, "/api/tickets/exit", "1", map[string]string{"plate": "ABC123", "method": "cash"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "no_open_ticket", errorCode(body))

	w, body = s.do(t, http.MethodGet, "/api/tickets/TKT000001", "1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	payments := body["data"].(map[string]any)["payments"].([]any)
	assert.Len(t, payments, 1)

	w, body = s.do(t, http.MethodGet, "/api/tickets/TKT000099", "1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "ticket_not_found", errorCode(body))
}

func TestManualPaymentRoute(t *testing.T) {
	s := newTestServer(t)

	w, _ := s.do(t, http.MethodPost, "/api/tickets/entry", "1", map[string]string{"plate": "XYZ999"})
	require.Equal(t, http.StatusCreated, w.Code)

	w, body := s.do(t, http.MethodPost, "/api/tickets/payments", "1", map[string]any{"plate": "XYZ999", "amount": "0", "method": "Cash"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid_amount", errorCode(body))

	w, body = s.do(t, http.MethodPost, "/api/tickets/payments", "1", map[string]any{"plate": "XYZ999", "amount": "3.50", "method": "Card"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	data := body["data"].(map[string]any)
	assert.Equal(t, true, data["recorded"])
	assert.NotEmpty(t, data["payment_id"])
}

func TestActiveTariffRoute(t *testing.T) {
	s := newTestServer(t)

	w, body := s.do(t, http.MethodGet, "/api/tariffs/active", "1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "standard", body["data"].(map[string]any)["name"])
}

func TestUnknownRoute(t *testing.T) {
	s := newTestServer(t)
	w, body := s.do(t, http.MethodGet, "/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "not_found", body["error"].(map[string]any)["type"])
}

func TestClassifyErrorForLog(t *testing.T) {
	typ, code := classifyErrorForLog(ErrUnauthorized)
	assert.Equal(t, "unauthorized", typ)
	assert.Empty(t, code)

	typ, code = classifyErrorForLog(invalidRequestError())
	assert.Equal(t, "validation_error", typ)
	assert.Equal(t, "invalid_request", code)
}
