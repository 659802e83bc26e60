package main

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"pos-gateway/middleware/ratelimit/infra"
	"pos-gateway/middleware/session"
	"pos-gateway/middleware/session/domain"
	sessioninfra "pos-gateway/middleware/session/infra"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var manager = domain.Claims{
	UserID:   "u-1",
	Username: "gerente",
	Email:    "gerente@pdv.local",
	Name:     "Gerente Centro",
	Role:     domain.RoleBranchManager,
	BranchID: "centro",
}

type gatewayEnv struct {
	handler  http.Handler
	sessions *session.Manager
	// seen guarda os headers que chegaram no upstream.
	seen chan http.Header
}

func newGatewayEnv(t *testing.T, mutate ...func(*Config)) *gatewayEnv {
	t.Helper()
	seen := make(chan http.Header, 64)
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen <- r.Header.Clone()
		_, _ = io.WriteString(w, "upstream:"+r.URL.Path)
	}))
	t.Cleanup(upstream.Close)

	cfg := validConfig()
	cfg.UpstreamURL = upstream.URL
	for _, f := range mutate {
		f(&cfg)
	}
	require.NoError(t, cfg.Validate())

	return buildGateway(t, cfg, seen, nil)
}

func buildGateway(t *testing.T, cfg Config, seen chan http.Header, reg *prometheus.Registry) *gatewayEnv {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	codec, err := sessioninfra.NewJWTCodec(cfg.Secrets())
	require.NoError(t, err)
	sessions, err := session.NewManager(session.Options{
		Codec:             codec,
		CookieName:        cfg.SessionCookieName,
		LegacyCookieNames: cfg.SessionLegacyCookies,
		Logger:            log,
	})
	require.NoError(t, err)

	stats, err := newStatsBackend(context.Background(), cfg, reg)
	require.NoError(t, err)
	t.Cleanup(stats.closeFn)

	h, err := newRouter(deps{
		cfg:      cfg,
		log:      log,
		store:    infra.NewStore(),
		stats:    stats.store,
		sessions: sessions,
		metrics:  stats.metrics,
	})
	require.NoError(t, err)
	return &gatewayEnv{handler: h, sessions: sessions, seen: seen}
}

func (e *gatewayEnv) do(r *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	e.handler.ServeHTTP(w, r)
	return w
}

func (e *gatewayEnv) sessionCookie(t *testing.T) *http.Cookie {
	t.Helper()
	w := httptest.NewRecorder()
	_, err := e.sessions.Create(w, manager)
	require.NoError(t, err)
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	return cookies[0]
}

func TestGateway_ProtectedRouteWithoutSession(t *testing.T) {
	env := newGatewayEnv(t)

	w := env.do(httptest.NewRequest(http.MethodGet, "/api/orders", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"success":false,"error":"Unauthorized"}`, w.Body.String())
	assert.Empty(t, env.seen)
}

func TestGateway_ForwardsIdentityFromSession(t *testing.T) {
	env := newGatewayEnv(t)

	r := httptest.NewRequest(http.MethodGet, "/api/orders", nil)
	r.AddCookie(env.sessionCookie(t))
	r.Header.Set(session.HeaderRole, "ADMIN")
	w := env.do(r)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "upstream:/api/orders", w.Body.String())

	got := <-env.seen
	assert.Equal(t, "u-1", got.Get(session.HeaderUserID))
	assert.Equal(t, "gerente", got.Get(session.HeaderUsername))
	assert.Equal(t, "BRANCH_MANAGER", got.Get(session.HeaderRole))
	assert.Equal(t, "centro", got.Get(session.HeaderBranchID))
	assert.Equal(t, "Gerente Centro", got.Get(session.HeaderName))
}

func TestGateway_StripsSpoofedIdentityOnPublicRoute(t *testing.T) {
	env := newGatewayEnv(t)

	r := httptest.NewRequest(http.MethodGet, "/health", nil)
	r.Header.Set(session.HeaderRole, "ADMIN")
	r.Header.Set(session.HeaderUserID, "root")
	w := env.do(r)

	require.Equal(t, http.StatusOK, w.Code)
	got := <-env.seen
	assert.Empty(t, got.Get(session.HeaderRole))
	assert.Empty(t, got.Get(session.HeaderUserID))
}

func TestGateway_LoginProfile(t *testing.T) {
	env := newGatewayEnv(t)

	login := func() *httptest.ResponseRecorder {
		r := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
		r.Header.Set("X-Forwarded-For", "10.0.0.9")
		return env.do(r)
	}

	for i := 0; i < 5; i++ {
		w := login()
		require.Equal(t, http.StatusOK, w.Code, "attempt %d", i+1)
		assert.Equal(t, "5", w.Header().Get("X-RateLimit-Limit"))
	}

	w := login()
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, w.Header().Get("Retry-After"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Too many requests, please try again later.", body["error"])
	assert.Equal(t, w.Header().Get("X-RateLimit-Reset"), body["retryAfter"])

	other := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
	other.Header.Set("X-Forwarded-For", "10.0.0.10")
	assert.Equal(t, http.StatusOK, env.do(other).Code)
}

func TestGateway_ProfilesByRoute(t *testing.T) {
	env := newGatewayEnv(t)
	ck := env.sessionCookie(t)

	sensitive := httptest.NewRequest(http.MethodGet, "/api/users/1", nil)
	sensitive.AddCookie(ck)
	assert.Equal(t, "10", env.do(sensitive).Header().Get("X-RateLimit-Limit"))

	api := httptest.NewRequest(http.MethodGet, "/api/orders", nil)
	api.AddCookie(ck)
	assert.Equal(t, "100", env.do(api).Header().Get("X-RateLimit-Limit"))
}

func TestGateway_RateLimitDisabled(t *testing.T) {
	env := newGatewayEnv(t, func(c *Config) { c.RateEnabled = false })

	w := env.do(httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("X-RateLimit-Limit"))
}

func TestGateway_LogoutClearsCookies(t *testing.T) {
	env := newGatewayEnv(t)

	r := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	r.AddCookie(env.sessionCookie(t))
	w := env.do(r)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true}`, w.Body.String())
	assert.Empty(t, env.seen)

	cleared := map[string]bool{}
	for _, ck := range w.Result().Cookies() {
		if ck.MaxAge < 0 {
			cleared[ck.Name] = true
		}
	}
	assert.True(t, cleared["pos_session"])
	assert.True(t, cleared["user"])
}

func TestGateway_UpstreamDown(t *testing.T) {
	cfg := validConfig()
	cfg.UpstreamURL = "http://127.0.0.1:1"
	env := buildGateway(t, cfg, nil, nil)

	w := env.do(httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.JSONEq(t, `{"success":false,"error":"Bad Gateway"}`, w.Body.String())
}

func TestGateway_PrometheusMetrics(t *testing.T) {
	seen := make(chan http.Header, 8)
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen <- r.Header.Clone()
	}))
	t.Cleanup(upstream.Close)

	cfg := validConfig()
	cfg.UpstreamURL = upstream.URL
	cfg.StatsBackend = statsPrometheus
	env := buildGateway(t, cfg, seen, prometheus.NewRegistry())

	require.Equal(t, http.StatusOK, env.do(httptest.NewRequest(http.MethodGet, "/health", nil)).Code)

	w := env.do(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), `pos_admission_decisions_total{decision="allowed",policy="api"} 1`), w.Body.String())
}

func TestNewStatsBackend_Memory(t *testing.T) {
	cfg := validConfig()
	cfg.StatsBackend = statsMemory

	b, err := newStatsBackend(context.Background(), cfg, nil)
	require.NoError(t, err)
	assert.IsType(t, &infra.MemoryStatsStore{}, b.store)
	assert.Nil(t, b.metrics)
}

func TestNewStatsBackend_RedisUnreachable(t *testing.T) {
	cfg := validConfig()
	cfg.StatsBackend = statsRedis
	cfg.StatsRedisAddr = "127.0.0.1:1"

	_, err := newStatsBackend(context.Background(), cfg, nil)
	assert.ErrorContains(t, err, "redis stats ping")
}

func TestGateway_DefaultProfileNameIsCaseInsensitive(t *testing.T) {
	env := newGatewayEnv(t, func(c *Config) { c.RateDefaultProfile = "API" })

	w := env.do(httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "100", w.Header().Get("X-RateLimit-Limit"))
}

func TestGateway_LoginBudgetSharedAcrossPathSpellings(t *testing.T) {
	env := newGatewayEnv(t)
	spellings := []string{"/api/auth/login", "//api/auth/login", "/api/auth/login/", "/api/./auth/login", "/api/auth/login"}

	for _, p := range spellings {
		r := httptest.NewRequest(http.MethodPost, "http://gw.local"+p, nil)
		r.Header.Set("X-Forwarded-For", "10.0.0.7")
		w := env.do(r)
		require.Equal(t, http.StatusOK, w.Code, p)
		assert.Equal(t, "5", w.Header().Get("X-RateLimit-Limit"), p)
	}

	r := httptest.NewRequest(http.MethodPost, "http://gw.local//api/auth/login/", nil)
	r.Header.Set("X-Forwarded-For", "10.0.0.7")
	assert.Equal(t, http.StatusTooManyRequests, env.do(r).Code)
}

func TestGateway_UncleanPathStillRequiresSession(t *testing.T) {
	env := newGatewayEnv(t)

	for _, p := range []string{"//api/orders", "/x/../api/orders", "/api//users/1"} {
		w := env.do(httptest.NewRequest(http.MethodGet, "http://gw.local"+p, nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code, p)
	}
	assert.Empty(t, env.seen)
}

func TestGateway_ProxiesCleanedPath(t *testing.T) {
	env := newGatewayEnv(t)

	r := httptest.NewRequest(http.MethodGet, "http://gw.local//health/", nil)
	w := env.do(r)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "upstream:/health", w.Body.String())
	<-env.seen
}

func TestCleanPath(t *testing.T) {
	var got string
	h := cleanPath(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) { got = r.URL.Path }))

	for in, want := range map[string]string{
		"/api/orders":        "/api/orders",
		"//api/auth/login":   "/api/auth/login",
		"/api/auth/login/":   "/api/auth/login",
		"/api/../api/orders": "/api/orders",
		"/":                  "/",
	} {
		r := httptest.NewRequest(http.MethodGet, "http://gw.local/", nil)
		r.URL.Path = in
		h.ServeHTTP(httptest.NewRecorder(), r)
		assert.Equal(t, want, got, in)
	}
}
