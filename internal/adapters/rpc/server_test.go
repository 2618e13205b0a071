package rpc

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"propnet/go-core/internal/config"
	"propnet/go-core/internal/engine"
	"propnet/go-core/internal/network"
	"propnet/go-core/pkg/models"
)

// stubCore fakes the command surface so the transport can be tested in
// isolation.
type stubCore struct {
	lastMethod string
	sendErr    error
}

func (s *stubCore) SpawnContact(parent, name, blend string, value json.RawMessage) (models.ContactView, error) {
	s.lastMethod = "spawn_contact"
	return models.ContactView{ID: "ct_000001", Name: name, Blend: blend, State: models.ContactStateEmpty}, nil
}

func (s *stubCore) SpawnGroup(parent, name string) (models.GroupView, error) {
	s.lastMethod = "spawn_group"
	return models.GroupView{ID: "grp_000002", Name: name, Kind: "group"}, nil
}

func (s *stubCore) SpawnGadget(parent, name, kind string) (models.GroupView, error) {
	s.lastMethod = "spawn_gadget"
	return models.GroupView{ID: "gd_000003", Name: name, Kind: "gadget", GadgetKind: kind}, nil
}

func (s *stubCore) Send(contact string, value json.RawMessage) (models.SendResult, error) {
	s.lastMethod = "send"
	if s.sendErr != nil {
		return models.SendResult{}, s.sendErr
	}
	return models.SendResult{Changed: true, Steps: 2}, nil
}

func (s *stubCore) Wire(from, to string) (models.WireView, error) {
	s.lastMethod = "wire"
	return models.WireView{ID: "wr_000004", From: from, To: to}, nil
}

func (s *stubCore) Unwire(wire string) error {
	s.lastMethod = "unwire"
	return nil
}

func (s *stubCore) Delete(path string) ([]models.ChangeEvent, error) {
	s.lastMethod = "delete"
	return nil, nil
}

func (s *stubCore) Read(contact string) (models.ContactView, error) {
	s.lastMethod = "read"
	return models.ContactView{}, nil
}

func (s *stubCore) Describe(group string) (models.GroupView, error) {
	s.lastMethod = "describe"
	return models.GroupView{}, nil
}

func (s *stubCore) Extract(parent string, contacts []string, name string) (models.RefactorResult, error) {
	s.lastMethod = "extract"
	return models.RefactorResult{}, nil
}

func (s *stubCore) Inline(parent, group string) (models.RefactorResult, error) {
	s.lastMethod = "inline"
	return models.RefactorResult{}, nil
}

func (s *stubCore) CopyContacts(parent string, contacts []string, withWires bool) (models.RefactorResult, error) {
	s.lastMethod = "copy_contacts"
	return models.RefactorResult{}, nil
}

func (s *stubCore) CopyGroup(parent, group string) (models.RefactorResult, error) {
	s.lastMethod = "copy_group"
	return models.RefactorResult{}, nil
}

func (s *stubCore) PollEvents(fromSeq int64, max int) []models.ChangeEvent {
	s.lastMethod = "poll"
	return nil
}

func (s *stubCore) SaveSnapshot() error {
	s.lastMethod = "save"
	return nil
}

func (s *stubCore) LoadSnapshot() error {
	s.lastMethod = "load"
	return nil
}

func (s *stubCore) Metrics() models.MetricsSnapshot {
	s.lastMethod = "metrics"
	return models.MetricsSnapshot{Commands: 42}
}

func newTestServer(core *stubCore, token string, rl config.RateLimitConfig) *Server {
	return NewServer(
		config.ServerConfig{ListenAddr: "127.0.0.1:0", RPCToken: token},
		rl,
		core,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
}

func callRPC(t *testing.T, srv *Server, headers map[string]string, body string) (*httptest.ResponseRecorder, rpcResponse) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/rpc", bytes.NewBufferString(body))
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	srv.handleRPC(rec, req)

	var resp rpcResponse
	if rec.Code == http.StatusOK {
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode response: %v (%s)", err, rec.Body.String())
		}
	}
	return rec, resp
}

func TestHealthCheck(t *testing.T) {
	srv := newTestServer(&stubCore{}, "", config.RateLimitConfig{})
	_, resp := callRPC(t, srv, nil, `{"jsonrpc":"2.0","id":1,"method":"health_check"}`)
	if resp.Error != nil {
		t.Fatalf("health check failed: %+v", resp.Error)
	}
}

func TestDispatchRoutesMethods(t *testing.T) {
	core := &stubCore{}
	srv := newTestServer(core, "", config.RateLimitConfig{})
	cases := []struct {
		method string
		params string
		want   string
	}{
		{"net_spawn_contact", `{"parent":"","name":"a","blend":"merge"}`, "spawn_contact"},
		{"net_spawn_group", `{"parent":"","name":"g"}`, "spawn_group"},
		{"net_spawn_gadget", `{"parent":"","name":"add1","kind":"add"}`, "spawn_gadget"},
		{"net_send", `{"contact":"a","value":{"kind":"number","number":1}}`, "send"},
		{"net_wire", `{"from":"a","to":"b"}`, "wire"},
		{"net_unwire", `{"wire":"wr_1"}`, "unwire"},
		{"net_delete", `{"id":"a"}`, "delete"},
		{"net_read", `{"contact":"a"}`, "read"},
		{"net_describe", `{"group":""}`, "describe"},
		{"refactor_extract", `{"parent":"","contacts":["a"],"name":"g"}`, "extract"},
		{"refactor_inline", `{"parent":"","group":"g"}`, "inline"},
		{"refactor_copy_contacts", `{"parent":"","contacts":["a"],"withWires":true}`, "copy_contacts"},
		{"refactor_copy_group", `{"parent":"","group":"g"}`, "copy_group"},
		{"events_poll", `{"fromSeq":0}`, "poll"},
		{"snapshot_save", `{}`, "save"},
		{"snapshot_load", `{}`, "load"},
		{"core_metrics", `{}`, "metrics"},
	}
	for _, tc := range cases {
		body := `{"jsonrpc":"2.0","id":1,"method":"` + tc.method + `","params":` + tc.params + `}`
		_, resp := callRPC(t, srv, nil, body)
		if resp.Error != nil {
			t.Fatalf("%s failed: %+v", tc.method, resp.Error)
		}
		if core.lastMethod != tc.want {
			t.Fatalf("%s dispatched to %q", tc.method, core.lastMethod)
		}
	}
}

func TestMethodNotFound(t *testing.T) {
	srv := newTestServer(&stubCore{}, "", config.RateLimitConfig{})
	_, resp := callRPC(t, srv, nil, `{"jsonrpc":"2.0","id":1,"method":"net_explode"}`)
	if resp.Error == nil || resp.Error.Code != -32601 {
		t.Fatalf("expected method-not-found, got %+v", resp.Error)
	}
}

func TestInvalidJSONRPC(t *testing.T) {
	srv := newTestServer(&stubCore{}, "", config.RateLimitConfig{})
	_, resp := callRPC(t, srv, nil, `{not json`)
	if resp.Error == nil || resp.Error.Code != -32700 {
		t.Fatalf("expected parse error, got %+v", resp.Error)
	}
	_, resp = callRPC(t, srv, nil, `{"jsonrpc":"1.0","id":1,"method":"health_check"}`)
	if resp.Error == nil || resp.Error.Code != -32600 {
		t.Fatalf("expected invalid request, got %+v", resp.Error)
	}
	_, resp = callRPC(t, srv, nil, `{"jsonrpc":"2.0","id":1,"method":"net_send","params":{"contact":42}}`)
	if resp.Error == nil || resp.Error.Code != codeInvalidParams {
		t.Fatalf("expected invalid params, got %+v", resp.Error)
	}
}

func TestDomainErrorCodes(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{network.ErrNotFound, codeNotFound},
		{&network.ConnectionError{From: "a", To: "b", Reason: "unrelated"}, codeBadConnection},
		{&network.ValidationError{Msg: "bad"}, codeValidation},
		{engine.ErrDiverged, codeDiverged},
		{network.ErrGadgetOutput, codeGadgetOutput},
		{errors.New("boom"), codeInternal},
	}
	for _, tc := range cases {
		core := &stubCore{sendErr: tc.err}
		srv := newTestServer(core, "", config.RateLimitConfig{})
		_, resp := callRPC(t, srv, nil, `{"jsonrpc":"2.0","id":1,"method":"net_send","params":{"contact":"a","value":{"kind":"number","number":1}}}`)
		if resp.Error == nil || resp.Error.Code != tc.code {
			t.Fatalf("error %v mapped to %+v, want code %d", tc.err, resp.Error, tc.code)
		}
	}
}

func TestTokenAuth(t *testing.T) {
	srv := newTestServer(&stubCore{}, "secret", config.RateLimitConfig{})
	body := `{"jsonrpc":"2.0","id":1,"method":"health_check"}`

	rec, _ := callRPC(t, srv, nil, body)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("missing token must be rejected, got %d", rec.Code)
	}
	rec, _ = callRPC(t, srv, map[string]string{authHeader: "wrong"}, body)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("wrong token must be rejected, got %d", rec.Code)
	}
	rec, resp := callRPC(t, srv, map[string]string{authHeader: "secret"}, body)
	if rec.Code != http.StatusOK || resp.Error != nil {
		t.Fatalf("valid token rejected: %d %+v", rec.Code, resp.Error)
	}
	rec, resp = callRPC(t, srv, map[string]string{"Authorization": "Bearer secret"}, body)
	if rec.Code != http.StatusOK || resp.Error != nil {
		t.Fatalf("bearer token rejected: %d %+v", rec.Code, resp.Error)
	}
}

func TestRateLimit(t *testing.T) {
	srv := newTestServer(&stubCore{}, "", config.RateLimitConfig{Enabled: true, RPS: 1, Burst: 2})
	body := `{"jsonrpc":"2.0","id":1,"method":"health_check"}`

	limited := false
	for i := 0; i < 5; i++ {
		rec, _ := callRPC(t, srv, nil, body)
		if rec.Code == http.StatusTooManyRequests {
			limited = true
			break
		}
	}
	if !limited {
		t.Fatalf("burst exhaustion must return 429")
	}
}

func TestMethodNotAllowed(t *testing.T) {
	srv := newTestServer(&stubCore{}, "", config.RateLimitConfig{})
	req := httptest.NewRequest(http.MethodGet, "/rpc", nil)
	rec := httptest.NewRecorder()
	srv.handleRPC(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("GET must be rejected, got %d", rec.Code)
	}
}
