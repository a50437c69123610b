package adminhttp

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/zalogw/gateway/internal/pluginstore"
	"github.com/zalogw/gateway/internal/registry"
	"github.com/zalogw/gateway/internal/session"
)

func newTestServer(t *testing.T, token string) *Server {
	t.Helper()
	store, err := pluginstore.Open(t.TempDir())
	if err != nil {
		t.Fatalf("pluginstore.Open: %v", err)
	}
	reg := registry.New()
	sess := session.NewManager(reg, nil, nil)
	return New(reg, sess, store, token)
}

func doJSON(t *testing.T, mux *http.ServeMux, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestPing_NeverRequiresAuth(t *testing.T) {
	s := newTestServer(t, "secret")
	rec := doJSON(t, s.Mux(), http.MethodGet, "/ping", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /ping = %d, want 200", rec.Code)
	}
}

func TestRequireAuth_RejectsMissingOrWrongToken(t *testing.T) {
	s := newTestServer(t, "secret")
	mux := s.Mux()

	rec := doJSON(t, mux, http.MethodGet, "/bot/list", nil, "")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("no token: status = %d, want 401", rec.Code)
	}

	rec = doJSON(t, mux, http.MethodGet, "/bot/list", nil, "wrong")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("wrong token: status = %d, want 401", rec.Code)
	}

	rec = doJSON(t, mux, http.MethodGet, "/bot/list", nil, "secret")
	if rec.Code != http.StatusOK {
		t.Errorf("correct token: status = %d, want 200", rec.Code)
	}
}

func TestRequireAuth_EmptyTokenLetsEverythingThrough(t *testing.T) {
	s := newTestServer(t, "")
	rec := doJSON(t, s.Mux(), http.MethodGet, "/bot/list", nil, "")
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200 when no token is configured", rec.Code)
	}
}

func TestBotDelete_UnknownUINIsClientError(t *testing.T) {
	s := newTestServer(t, "")
	rec := doJSON(t, s.Mux(), http.MethodPost, "/bot/delete", map[string]string{"uin": "no-such-uin"}, "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 (ClientNotFound maps to a 4xx)", rec.Code)
	}
}

func TestPluginSaveListDelete_RoundTrips(t *testing.T) {
	s := newTestServer(t, "")
	mux := s.Mux()

	rec := doJSON(t, mux, http.MethodPost, "/plugin/save", map[string]any{
		"name": "echo",
		"urls": []string{"ws://a:8081"},
	}, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("save: status = %d, body = %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, mux, http.MethodPost, "/plugin/list", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("list: status = %d", rec.Code)
	}
	var plugins []pluginstore.Plugin
	if err := json.Unmarshal(rec.Body.Bytes(), &plugins); err != nil {
		t.Fatalf("decode list response: %v", err)
	}
	if len(plugins) != 1 || plugins[0].Name != "echo" {
		t.Fatalf("plugins = %+v, want a single \"echo\" entry", plugins)
	}

	rec = doJSON(t, mux, http.MethodPost, "/plugin/delete", map[string]string{"name": "echo"}, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("delete: status = %d", rec.Code)
	}
}

func TestQRCreate_InvalidJSONIsBadRequest(t *testing.T) {
	s := newTestServer(t, "")
	req := httptest.NewRequest(http.MethodPost, "/login/qrcode/create", bytes.NewBufferString("{not json"))
	rec := httptest.NewRecorder()
	s.Mux().ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}
