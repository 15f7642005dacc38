package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/board-server/internal/auth"
	"github.com/vovakirdan/board-server/internal/config"
	logpkg "github.com/vovakirdan/board-server/internal/log"
	"github.com/vovakirdan/board-server/internal/service/messages"
	"github.com/vovakirdan/board-server/internal/store/sqlite"
)

const (
	testAdminUser = "admin"
	testAdminPass = "test-pass"
)

type testServer struct {
	handler http.Handler
	store   *sqlite.SQLiteStore
}

// newTestServer builds a server over an in-memory SQLite store. mutate may adjust the config.
func newTestServer(t *testing.T, mutate func(*config.Config)) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	st, err := sqlite.NewWithSetup(":memory:", nil)
	require.NoError(t, err, "failed to create test store")
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.Migrate(context.Background()))

	cfg := config.Default()
	cfg.Addr = ":0"
	cfg.ReadHeaderTimeout = time.Second
	cfg.Env = "test"
	cfg.PostRatePerMinute = 1000
	if mutate != nil {
		mutate(&cfg)
	}

	admin, err := auth.NewAdmin(testAdminUser, testAdminPass)
	require.NoError(t, err)

	svc := messages.New(st, cfg.Location)
	server := NewServer(svc, admin, &cfg, logpkg.Nop())
	return &testServer{handler: server.Handler, store: st}
}

func (ts *testServer) do(t *testing.T, method, path, body string, setup ...func(*http.Request)) *httptest.ResponseRecorder {
	t.Helper()

	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, fn := range setup {
		fn(req)
	}

	resp := httptest.NewRecorder()
	ts.handler.ServeHTTP(resp, req)
	return resp
}

func asAdmin(req *http.Request) {
	req.SetBasicAuth(testAdminUser, testAdminPass)
}

func formBody(req *http.Request) {
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
}

func decode[T any](t *testing.T, resp *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &v), "body: %s", resp.Body.String())
	return v
}

// extractJSON returns the raw JSON of one top-level field.
func extractJSON(t *testing.T, body, key string) string {
	t.Helper()

	var fields map[string]json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(body), &fields))
	raw, ok := fields[key]
	require.True(t, ok, "missing field %q in %s", key, body)
	return string(raw)
}
