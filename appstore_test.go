package appstore

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	gocmd "github.com/goliatone/go-command"

	"github.com/goliatone/go-appstore/command"
	"github.com/goliatone/go-appstore/core"
	"github.com/goliatone/go-appstore/query"
	"github.com/goliatone/go-appstore/ratelimit"
)

func testPrivateKeyPEM(t *testing.T) []byte {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	der, err := x509.MarshalECPrivateKey(key)
	if err != nil {
		t.Fatalf("marshal key: %v", err)
	}
	return pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: der})
}

func testCredentials(t *testing.T) core.Credentials {
	t.Helper()
	return core.Credentials{
		KeyID:         "KEY123",
		IssuerID:      "issuer-abc",
		PrivateKeyPEM: testPrivateKeyPEM(t),
	}
}

type scriptedStep struct {
	status int
	body   string
}

type scriptedDoer struct {
	steps    []scriptedStep
	requests []*http.Request
}

func (d *scriptedDoer) Do(req *http.Request) (*http.Response, error) {
	d.requests = append(d.requests, req)
	step := scriptedStep{status: http.StatusOK, body: `{"data":[]}`}
	if len(d.steps) > 0 {
		step = d.steps[0]
		d.steps = d.steps[1:]
	}
	return &http.Response{
		StatusCode: step.status,
		Header:     http.Header{},
		Body:       io.NopCloser(strings.NewReader(step.body)),
	}, nil
}

func TestNew_RejectsBadCredentials(t *testing.T) {
	_, err := New(core.Credentials{KeyID: "kid", IssuerID: "iss", PrivateKeyPEM: []byte("junk")})
	if !core.IsAuthError(err) {
		t.Fatalf("expected auth error, got %v", err)
	}
}

func TestClient_GetAppSignsRequests(t *testing.T) {
	doer := &scriptedDoer{steps: []scriptedStep{
		{status: http.StatusOK, body: `{"data":{"type":"apps","id":"app_1",` +
			`"attributes":{"name":"Example","bundleId":"com.example.app"}}}`},
	}}
	client, err := New(testCredentials(t),
		WithBaseURL("https://api.example.com/v1"),
		WithHTTPClient(doer),
	)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	app, err := client.GetApp(context.Background(), "app_1")
	if err != nil {
		t.Fatalf("get app: %v", err)
	}
	if app.Name != "Example" {
		t.Fatalf("unexpected app %#v", app)
	}

	auth := doer.requests[0].Header.Get("Authorization")
	if !strings.HasPrefix(auth, "Bearer ") || strings.Count(auth, ".") != 2 {
		t.Fatalf("expected a signed bearer token, got %q", auth)
	}
}

func TestClient_SyncLocalizationsEndToEnd(t *testing.T) {
	doer := &scriptedDoer{steps: []scriptedStep{
		// Container discovery.
		{status: http.StatusOK, body: `{"data":[` +
			`{"type":"appInfos","id":"info_live","attributes":{"appStoreState":"READY_FOR_SALE"}},` +
			`{"type":"appInfos","id":"info_edit","attributes":{"appStoreState":"PREPARE_FOR_SUBMISSION"}}]}`},
		// Existing localizations of the editable container.
		{status: http.StatusOK, body: `{"data":[` +
			`{"type":"appInfoLocalizations","id":"loc_en","attributes":{"locale":"en-US","name":"Example"}}]}`},
		// Update of en-US.
		{status: http.StatusOK, body: `{"data":{"type":"appInfoLocalizations","id":"loc_en",` +
			`"attributes":{"locale":"en-US","name":"Example","subtitle":"Updated"}}}`},
	}}
	client, err := New(testCredentials(t),
		WithBaseURL("https://api.example.com/v1"),
		WithHTTPClient(doer),
		WithMaxConcurrentWrites(1),
	)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	outcomes, err := client.SyncLocalizations(context.Background(), "app_1", map[string]core.AppInfoLocalizationAttributes{
		"en-US": {Subtitle: core.String("Updated")},
	})
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	outcome := outcomes["en-US"]
	if !outcome.Success || outcome.Action != core.SyncActionUpdated || outcome.LocalizationID != "loc_en" {
		t.Fatalf("unexpected outcome %#v", outcome)
	}

	paths := make([]string, 0, len(doer.requests))
	for _, req := range doer.requests {
		paths = append(paths, req.Method+" "+req.URL.Path)
	}
	want := []string{
		"GET /v1/apps/app_1/appInfos",
		"GET /v1/appInfos/info_edit/appInfoLocalizations",
		"PATCH /v1/appInfoLocalizations/loc_en",
	}
	if strings.Join(paths, ",") != strings.Join(want, ",") {
		t.Fatalf("unexpected request sequence %v", paths)
	}
}

func TestNewFromConfig_LoadsKeyFromFile(t *testing.T) {
	keyPath := filepath.Join(t.TempDir(), "AuthKey.p8")
	if err := os.WriteFile(keyPath, testPrivateKeyPEM(t), 0o600); err != nil {
		t.Fatalf("write key: %v", err)
	}

	cfg := core.DefaultConfig()
	cfg.KeyID = "KEY123"
	cfg.IssuerID = "issuer-abc"
	cfg.PrivateKeyPath = keyPath

	client, err := NewFromConfig(cfg, WithHTTPClient(&scriptedDoer{}))
	if err != nil {
		t.Fatalf("new from config: %v", err)
	}
	if client.Transport() == nil {
		t.Fatalf("expected assembled transport")
	}
}

func TestNewFromConfig_MissingKeyFileFails(t *testing.T) {
	cfg := core.DefaultConfig()
	cfg.KeyID = "KEY123"
	cfg.IssuerID = "issuer-abc"
	cfg.PrivateKeyPath = filepath.Join(t.TempDir(), "missing.p8")

	if _, err := NewFromConfig(cfg); !core.IsAuthError(err) {
		t.Fatalf("expected auth error, got %v", err)
	}
}

func TestNewFromEnv_ResolvesCredentials(t *testing.T) {
	keyPath := filepath.Join(t.TempDir(), "AuthKey.p8")
	if err := os.WriteFile(keyPath, testPrivateKeyPEM(t), 0o600); err != nil {
		t.Fatalf("write key: %v", err)
	}
	t.Setenv("APPSTORE_KEY_ID", "KEY123")
	t.Setenv("APPSTORE_ISSUER_ID", "issuer-abc")
	t.Setenv("APPSTORE_PRIVATE_KEY_PATH", keyPath)

	client, err := NewFromEnv(context.Background(), WithHTTPClient(&scriptedDoer{}))
	if err != nil {
		t.Fatalf("new from env: %v", err)
	}
	if client.Apps() == nil || client.Versions() == nil {
		t.Fatalf("expected assembled resources")
	}
}

func TestFacade_WiresCommandsAndQueries(t *testing.T) {
	doer := &scriptedDoer{steps: []scriptedStep{
		{status: http.StatusOK, body: `{"data":{"type":"apps","id":"app_1",` +
			`"attributes":{"name":"Example","bundleId":"com.example.app"}}}`},
		{status: http.StatusOK, body: `{"data":{"type":"apps","id":"app_1",` +
			`"attributes":{"name":"Example","bundleId":"com.example.app","primaryLocale":"de-DE"}}}`},
	}}
	client, err := New(testCredentials(t),
		WithBaseURL("https://api.example.com/v1"),
		WithHTTPClient(doer),
	)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	facade, err := NewFacade(client)
	if err != nil {
		t.Fatalf("new facade: %v", err)
	}
	if facade.Service() != CommandQueryService(client) {
		t.Fatalf("expected facade to expose its service")
	}

	app, err := facade.Queries().GetApp.Query(context.Background(), query.GetAppMessage{AppID: "app_1"})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if app.ID != "app_1" {
		t.Fatalf("unexpected app %#v", app)
	}

	collector := gocmd.NewResult[core.App]()
	ctx := gocmd.ContextWithResult(context.Background(), collector)
	err = facade.Commands().UpdateApp.Execute(ctx, command.UpdateAppMessage{
		AppID:      "app_1",
		Attributes: map[string]any{"primaryLocale": "de-DE"},
	})
	if err != nil {
		t.Fatalf("execute update app: %v", err)
	}
	updated, ok := collector.Load()
	if !ok || updated.PrimaryLocale != "de-DE" {
		t.Fatalf("unexpected command result %#v ok=%v", updated, ok)
	}
}

func TestNewFacade_RequiresService(t *testing.T) {
	if _, err := NewFacade(nil); err == nil {
		t.Fatalf("expected error for nil service")
	}
}

func TestClient_RetryPolicyOptionApplies(t *testing.T) {
	doer := &scriptedDoer{steps: []scriptedStep{
		{status: http.StatusTooManyRequests, body: ""},
		{status: http.StatusTooManyRequests, body: ""},
	}}
	client, err := New(testCredentials(t),
		WithBaseURL("https://api.example.com/v1"),
		WithHTTPClient(doer),
		WithRetryPolicy(&ratelimit.Policy{
			MaxAttemptsRateLimit: 1,
			MaxAttemptsTransient: 1,
			InitialBackoff:       time.Millisecond,
			MaxBackoff:           time.Millisecond,
		}),
	)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	client.Transport().Sleep = func(context.Context, time.Duration) error { return nil }

	_, err = client.GetApp(context.Background(), "app_1")
	if !core.IsRateLimited(err) {
		t.Fatalf("expected rate limited error, got %v", err)
	}
	if len(doer.requests) != 2 {
		t.Fatalf("expected 2 attempts under the custom cap, got %d", len(doer.requests))
	}
}
