package sdk

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/kbukum/restkit/errors"
	"github.com/kbukum/restkit/logger"
	"github.com/kbukum/restkit/resilience"
	"github.com/kbukum/restkit/rest"
	"github.com/kbukum/restkit/testutil"
)

const apiPrefix = "/api/v1"

var alice = testutil.SeedUser{
	UserName:     "alice",
	Password:     "secret",
	APIKey:       "k-0",
	Organization: "acme",
	FirstName:    "Alice",
}

func startServer(t *testing.T) *testutil.APIServer {
	t.Helper()
	srv := testutil.NewAPIServer(testutil.WithUsers(alice), testutil.WithPrefix(apiPrefix))
	testutil.T(t).Setup(srv)
	return srv
}

func serverConfig(srv *testutil.APIServer, password string) *Config {
	return &Config{Session: SessionConfig{
		BaseURL:      strings.TrimSuffix(srv.URL(), apiPrefix),
		APIPrefix:    apiPrefix,
		Organization: "acme",
		Username:     "alice",
		Password:     password,
	}}
}

func TestClient_LoginAndChangePassword(t *testing.T) {
	srv := startServer(t)
	client, err := New(serverConfig(srv, "secret"), WithLogger(logger.Nop()))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx := context.Background()

	me, err := client.Login(ctx)
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if me != client.User() || me.FirstName != "Alice" {
		t.Errorf("unexpected user %+v", me)
	}

	reqs := srv.Requests()
	if len(reqs) != 1 {
		t.Fatalf("expected 1 request, got %d", len(reqs))
	}
	if reqs[0].Headers.Get(RequestIDHeader) == "" {
		t.Error("expected a request id header")
	}
	if ua := reqs[0].Headers.Get("User-Agent"); !strings.HasPrefix(ua, "restkit/") {
		t.Errorf("expected restkit user agent, got %q", ua)
	}

	if _, err := me.ChangePassword(ctx, "n3w"); err != nil {
		t.Fatalf("ChangePassword: %v", err)
	}
	ctrl, err := client.Session().Current()
	if err != nil {
		t.Fatalf("Current: %v", err)
	}
	if cred := ctrl.Credential(); !cred.IsAPIKey() || cred.Secret() != srv.APIKey("alice") {
		t.Errorf("expected the rotated API key, got %s", cred)
	}

	if err := client.Close(ctx); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if client.Session().Active() || client.User() != nil {
		t.Error("Close should log out")
	}
}

func TestClient_LoginFailure(t *testing.T) {
	srv := startServer(t)
	client, err := New(serverConfig(srv, "wrong"), WithLogger(logger.Nop()))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_, err = client.Login(context.Background())
	if !errors.IsPermissionDenied(err) {
		t.Fatalf("expected PERMISSION_DENIED, got %v", err)
	}
	if client.User() != nil || client.Session().Active() {
		t.Error("a failed login must leave no session")
	}
}

func TestClient_WithTransport(t *testing.T) {
	ft := testutil.NewFakeTransport(testutil.JSON(http.StatusOK, map[string]any{"status": "up"}))
	cfg := &Config{Session: SessionConfig{BaseURL: "https://api.example.com", APIPrefix: "v2"}}
	client, err := New(cfg, WithTransport(ft), WithLogger(logger.Nop()))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	res, err := client.Executor().Do(context.Background(), rest.NewRequest(http.MethodGet, "/status", nil), rest.WithoutAuth())
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if obj, _ := res.Object.(map[string]any); obj["status"] != "up" {
		t.Errorf("unexpected result %v", res.Object)
	}
	req := ft.LastRequest()
	if req.URL != "https://api.example.com/v2/status" {
		t.Errorf("unexpected URL %s", req.URL)
	}
	if req.Headers[RequestIDHeader] == "" {
		t.Error("expected the middleware chain to stamp a request id")
	}
	if err := client.Close(context.Background()); err != nil {
		t.Errorf("Close: %v", err)
	}
}

func TestClient_BreakerOpens(t *testing.T) {
	ft := testutil.NewFakeTransport(testutil.Refused(), testutil.Refused())
	cfg := &Config{
		Session:    SessionConfig{BaseURL: "https://api.example.com"},
		Resilience: resilience.Config{Breaker: resilience.BreakerConfig{Enabled: true, MaxFailures: 2, Cooldown: time.Hour}},
	}
	client, err := New(cfg, WithTransport(ft), WithLogger(logger.Nop()))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	for i := 0; i < 3; i++ {
		_, err := client.Executor().Do(context.Background(), rest.NewRequest(http.MethodGet, "/status", nil), rest.WithoutAuth())
		if errors.CodeOf(err) != errors.ErrCodeConnectionFailed {
			t.Fatalf("attempt %d: expected CONNECTION_FAILED, got %v", i, err)
		}
	}
	if got := len(ft.Requests()); got != 2 {
		t.Errorf("the open breaker must keep exchanges off the wire, got %d requests", got)
	}
	if client.Guard().BreakerState() != resilience.StateOpen {
		t.Errorf("expected open breaker, got %s", client.Guard().BreakerState())
	}
}

func TestClient_Controller(t *testing.T) {
	cfg := validConfig()
	cfg.Session.Impersonate = "bob"
	cfg.Headers.Impersonation = "X-Act-As"
	client, err := New(cfg, WithTransport(testutil.NewFakeTransport()), WithLogger(logger.Nop()))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctrl, err := client.Controller()
	if err != nil {
		t.Fatalf("Controller: %v", err)
	}
	snap := ctrl.Snapshot()
	if snap.BaseURL != "https://api.example.com/api/v1" || snap.Impersonation != "bob" {
		t.Errorf("unexpected snapshot %+v", snap)
	}
	if got := snap.AuthHeaders()["X-Act-As"]; got != "bob" {
		t.Errorf("expected configured impersonation header, got %q", got)
	}
}

func TestNew_InvalidConfig(t *testing.T) {
	if _, err := New(&Config{}); err == nil {
		t.Error("expected error for a config without base_url")
	}
}
