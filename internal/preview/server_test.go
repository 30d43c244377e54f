package preview

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	mdwlog "github.com/frikeldon/openscad/foundation/core/log"
	"github.com/frikeldon/openscad/internal/service"
	"github.com/frikeldon/openscad/internal/store"
	"github.com/frikeldon/openscad/pkg/core/health"
)

type rawResponse struct {
	Type    string          `json:"type"`
	ID      string          `json:"id"`
	Payload json.RawMessage `json:"payload"`
}

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	svc, err := service.New(service.DefaultConfig(), mdwlog.NewDiscard())
	if err != nil {
		t.Fatalf("service.New() error = %v", err)
	}
	svc.WithHistory(store.NewMemoryHistoryStore())
	t.Cleanup(func() { svc.Close() })

	srv := New(Config{PingInterval: time.Second, RunTimeout: time.Second}, svc, mdwlog.NewDiscard())
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return srv, ts
}

func dial(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if hello := read(t, conn); hello.Type != TypeHello {
		t.Fatalf("first message = %s, want hello", hello.Type)
	}
	return conn
}

func read(t *testing.T, conn *websocket.Conn) rawResponse {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var resp rawResponse
	if err := conn.ReadJSON(&resp); err != nil {
		t.Fatalf("ReadJSON() error = %v", err)
	}
	return resp
}

func send(t *testing.T, conn *websocket.Conn, msgType, id string, payload interface{}) {
	t.Helper()
	data, _ := json.Marshal(payload)
	if err := conn.WriteJSON(WSMessage{Type: msgType, ID: id, Payload: data}); err != nil {
		t.Fatalf("WriteJSON() error = %v", err)
	}
}

func TestServer_Interpret(t *testing.T) {
	_, ts := newTestServer(t)
	conn := dial(t, ts)

	send(t, conn, TypeInterpret, "1", InterpretPayload{Name: "a.scad", Source: "translate([1,2,3]) cube(2);"})
	resp := read(t, conn)
	if resp.Type != TypeResult || resp.ID != "1" {
		t.Fatalf("response = %s %s: %s", resp.Type, resp.ID, resp.Payload)
	}

	var result struct {
		Name    string                   `json:"name"`
		RunID   string                   `json:"runId"`
		Objects []map[string]interface{} `json:"objects"`
		Cached  bool                     `json:"cached"`
	}
	if err := json.Unmarshal(resp.Payload, &result); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if result.Name != "a.scad" || result.RunID == "" || len(result.Objects) != 1 {
		t.Errorf("result = %+v", result)
	}
	if result.Objects[0]["object"] != "translate" {
		t.Errorf("object = %v, want translate", result.Objects[0]["object"])
	}

	send(t, conn, TypeInterpret, "2", InterpretPayload{Source: "translate([1,2,3]) cube(2);"})
	if err := json.Unmarshal(read(t, conn).Payload, &result); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if !result.Cached {
		t.Errorf("repeated source should be served from the cache")
	}
}

func TestServer_Diagnostic(t *testing.T) {
	_, ts := newTestServer(t)
	conn := dial(t, ts)

	send(t, conn, TypeInterpret, "d", InterpretPayload{Source: "cube(1);\nx = \"open"})
	resp := read(t, conn)
	if resp.Type != TypeDiagnostic {
		t.Fatalf("response type = %s, want diagnostic", resp.Type)
	}

	var d map[string]interface{}
	if err := json.Unmarshal(resp.Payload, &d); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if d["startLine"] != float64(2) || d["startColumn"] != float64(5) {
		t.Errorf("span = %v:%v, want 2:5", d["startLine"], d["startColumn"])
	}
	if d["code"] != "SCAD_SYNTAX" {
		t.Errorf("code = %v", d["code"])
	}
}

func TestServer_Protocol(t *testing.T) {
	_, ts := newTestServer(t)
	conn := dial(t, ts)

	send(t, conn, TypePing, "p", nil)
	if resp := read(t, conn); resp.Type != TypePong || resp.ID != "p" {
		t.Errorf("ping response = %+v", resp)
	}

	send(t, conn, "render", "r", nil)
	resp := read(t, conn)
	if resp.Type != TypeError || !strings.Contains(string(resp.Payload), "unknown_type") {
		t.Errorf("unknown type response = %s %s", resp.Type, resp.Payload)
	}

	if err := conn.WriteJSON(map[string]interface{}{"type": TypeInterpret, "payload": 42}); err != nil {
		t.Fatalf("WriteJSON() error = %v", err)
	}
	resp = read(t, conn)
	if resp.Type != TypeError || !strings.Contains(string(resp.Payload), "invalid_payload") {
		t.Errorf("bad payload response = %s %s", resp.Type, resp.Payload)
	}
}

func TestServer_Broadcast(t *testing.T) {
	srv, ts := newTestServer(t)
	first := dial(t, ts)
	second := dial(t, ts)

	if srv.Clients() != 2 {
		t.Fatalf("Clients() = %d, want 2", srv.Clients())
	}

	out := srv.Broadcast(context.Background(), "watched.scad", "cube();")
	if out.Failed() {
		t.Fatalf("Broadcast() failed: %v", out.Err)
	}
	for _, conn := range []*websocket.Conn{first, second} {
		if resp := read(t, conn); resp.Type != TypeResult {
			t.Errorf("broadcast type = %s, want result", resp.Type)
		}
	}
}

func TestServer_Health(t *testing.T) {
	_, ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/health")
	if err != nil {
		t.Fatalf("GET /health error = %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
	var report health.Report
	if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if report.Service != "openscad-preview" || len(report.Checks) != 2 {
		t.Errorf("report = %+v", report)
	}
}
