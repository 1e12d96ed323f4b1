package router

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wolfman30/equilibra/internal/dialogue"
	"github.com/wolfman30/equilibra/internal/http/handlers"
	httpmiddleware "github.com/wolfman30/equilibra/internal/http/middleware"
	"github.com/wolfman30/equilibra/internal/observability/metrics"
	"github.com/wolfman30/equilibra/internal/session"
	"github.com/wolfman30/equilibra/pkg/logging"
)

type echoResponder struct{}

func (echoResponder) Respond(ctx context.Context, req dialogue.ReplyRequest) string {
	return "Te escucho."
}

func newTestRouter(t *testing.T, mutate func(*Config)) http.Handler {
	t.Helper()

	logger := logging.Discard()
	machine := dialogue.NewMachine(echoResponder{}, nil, dialogue.WithLogger(logger))
	chat := handlers.NewChatHandler(machine, session.NewMemoryStore(time.Hour, 0), nil, handlers.CookieConfig{}, logger)

	cfg := &Config{
		Logger: logger,
		Chat:   chat,
	}
	if mutate != nil {
		mutate(cfg)
	}
	return New(cfg)
}

func TestRouterHealthEndpoint(t *testing.T) {
	router := newTestRouter(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	var resp map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode health response: %v", err)
	}
	if resp["status"] != "ok" {
		t.Errorf("expected status 'ok', got %q", resp["status"])
	}
}

func TestRouterHealthReportsDegradedDependency(t *testing.T) {
	router := newTestRouter(t, func(cfg *Config) {
		cfg.HealthCheck = func(ctx context.Context) error { return errors.New("redis: connection refused") }
	})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status %d, got %d", http.StatusServiceUnavailable, rr.Code)
	}
}

func TestRouterServesChatRoutes(t *testing.T) {
	router := newTestRouter(t, nil)

	cases := []struct {
		method string
		path   string
		body   string
	}{
		{http.MethodGet, "/api/symptoms", ""},
		{http.MethodGet, "/api/session", ""},
		{http.MethodPost, "/api/chat", `{"action":"message","text":"hola"}`},
		{http.MethodPost, "/api/reset", ""},
		{http.MethodPost, "/api/cancel", ""},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(tc.method, tc.path, strings.NewReader(tc.body))
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		if rr.Code != http.StatusOK {
			t.Fatalf("%s %s: expected 200, got %d (%s)", tc.method, tc.path, rr.Code, rr.Body.String())
		}
		if rr.Header().Get("X-Request-ID") == "" {
			t.Fatalf("%s %s: expected a request id header", tc.method, tc.path)
		}
	}

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/availability", strings.NewReader(`{}`)))
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("availability without a checker should be 503, got %d", rr.Code)
	}
}

func TestRouterRateLimitsAPIOnly(t *testing.T) {
	router := newTestRouter(t, func(cfg *Config) {
		cfg.RateLimiter = httpmiddleware.NewRateLimiter(0.001, 1)
	})

	send := func(path string) int {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.RemoteAddr = "198.51.100.7:4000"
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		return rr.Code
	}

	if code := send("/api/symptoms"); code != http.StatusOK {
		t.Fatalf("first call: got %d", code)
	}
	if code := send("/api/symptoms"); code != http.StatusTooManyRequests {
		t.Fatalf("second call should be limited, got %d", code)
	}
	if code := send("/health"); code != http.StatusOK {
		t.Fatalf("health must not be rate limited, got %d", code)
	}
}

func TestRouterExposesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewChatMetrics(reg)
	m.ObserveCrisis()

	router := newTestRouter(t, func(cfg *Config) {
		cfg.MetricsHandler = promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
	})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "equilibra_dialogue_crisis_overrides_total 1") {
		t.Fatalf("expected crisis counter in metrics output:\n%s", rr.Body.String())
	}
}

func TestRouterCORSPreflight(t *testing.T) {
	router := newTestRouter(t, func(cfg *Config) {
		cfg.CORSAllowedOrigins = []string{"https://equilibra.example"}
	})

	req := httptest.NewRequest(http.MethodOptions, "/api/chat", nil)
	req.Header.Set("Origin", "https://equilibra.example")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected preflight 204, got %d", rr.Code)
	}
	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "https://equilibra.example" {
		t.Fatalf("unexpected allow origin %q", got)
	}
}

func TestNewPanicsWithoutChatHandler(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic")
		}
	}()
	New(&Config{})
}
