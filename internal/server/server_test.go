package server

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/ironsheep/retrotape-tracker/internal/log"
	"github.com/ironsheep/retrotape-tracker/internal/tracker"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	m, err := tracker.New(tracker.ModuleRetroTape, tracker.Options{Logger: log.Discard()})
	if err != nil {
		t.Fatalf("tracker.New error: %v", err)
	}
	return New(m, WithLogger(log.Discard()), WithVersion("test"))
}

// serve runs input through Serve and returns the output lines.
func serve(t *testing.T, s *Server, input string) []string {
	t.Helper()
	var out bytes.Buffer
	if err := s.Serve(context.Background(), strings.NewReader(input), &out); err != nil {
		t.Fatalf("Serve error: %v", err)
	}
	text := strings.TrimRight(out.String(), "\n")
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}

func TestNew(t *testing.T) {
	s := newTestServer(t)
	if s.cache == nil {
		t.Fatal("New() did not initialize cache")
	}
	if s.version != "test" {
		t.Errorf("version = %q, want test", s.version)
	}
}

func TestRequest_Unmarshal(t *testing.T) {
	tests := []struct {
		name       string
		json       string
		wantID     interface{}
		wantMethod string
	}{
		{
			"string id",
			`{"jsonrpc":"2.0","id":"test-1","method":"param/list"}`,
			"test-1",
			"param/list",
		},
		{
			"number id",
			`{"jsonrpc":"2.0","id":42,"method":"ping"}`,
			float64(42), // JSON numbers decode as float64
			"ping",
		},
		{
			"null id",
			`{"jsonrpc":"2.0","id":null,"method":"initialize"}`,
			nil,
			"initialize",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req Request
			if err := json.Unmarshal([]byte(tt.json), &req); err != nil {
				t.Fatalf("Failed to unmarshal: %v", err)
			}
			if req.ID != tt.wantID {
				t.Errorf("ID: got %v (%T), want %v (%T)", req.ID, req.ID, tt.wantID, tt.wantID)
			}
			if req.Method != tt.wantMethod {
				t.Errorf("Method: got %s, want %s", req.Method, tt.wantMethod)
			}
		})
	}
}

func TestHandleRequest_Initialize(t *testing.T) {
	s := newTestServer(t)
	resp := s.handleRequest(context.Background(), &Request{JSONRPC: "2.0", ID: 1, Method: "initialize"})

	if resp == nil {
		t.Fatal("handleRequest returned nil")
	}
	if resp.Error != nil {
		t.Fatalf("Unexpected error: %v", resp.Error)
	}
	result, ok := resp.Result.(map[string]interface{})
	if !ok {
		t.Fatal("Result should be a map")
	}
	if result["protocolVersion"] != ProtocolVersion {
		t.Errorf("protocolVersion: got %v", result["protocolVersion"])
	}
	info, ok := result["module"].(tracker.Info)
	if !ok || info.Name != tracker.ModuleRetroTape {
		t.Errorf("module: got %v", result["module"])
	}
}

func TestHandleRequest_Ping(t *testing.T) {
	s := newTestServer(t)
	resp := s.handleRequest(context.Background(), &Request{JSONRPC: "2.0", ID: "ping-1", Method: "ping"})

	if resp.Error != nil {
		t.Fatalf("Unexpected error: %v", resp.Error)
	}
	if resp.ID != "ping-1" {
		t.Errorf("ID: got %v, want ping-1", resp.ID)
	}
}

func TestHandleRequest_InitializedNotification(t *testing.T) {
	s := newTestServer(t)
	if resp := s.handleRequest(context.Background(), &Request{JSONRPC: "2.0", Method: "notifications/initialized"}); resp != nil {
		t.Errorf("notification should get no response, got %+v", resp)
	}
}

func TestHandleRequest_UnknownMethod(t *testing.T) {
	s := newTestServer(t)
	resp := s.handleRequest(context.Background(), &Request{JSONRPC: "2.0", ID: 3, Method: "tools/call"})

	if resp.Error == nil {
		t.Fatal("expected error")
	}
	if resp.Error.Code != CodeMethodNotFound {
		t.Errorf("Error.Code: got %d, want %d", resp.Error.Code, CodeMethodNotFound)
	}
}

func TestServe_JSONRPC(t *testing.T) {
	s := newTestServer(t)
	input := strings.Join([]string{
		`{"jsonrpc":"2.0","id":1,"method":"initialize"}`,
		`{"jsonrpc":"2.0","method":"notifications/initialized"}`,
		``,
		`{"jsonrpc":"2.0","id":2,"method":"ping"}`,
		`{not json`,
	}, "\n")

	lines := serve(t, s, input)
	if len(lines) != 3 {
		t.Fatalf("got %d reply lines, want 3: %q", len(lines), lines)
	}

	var resp Response
	if err := json.Unmarshal([]byte(lines[1]), &resp); err != nil {
		t.Fatalf("reply is not JSON: %v", err)
	}
	if resp.ID != float64(2) || resp.Error != nil {
		t.Errorf("ping reply = %+v", resp)
	}

	if err := json.Unmarshal([]byte(lines[2]), &resp); err != nil {
		t.Fatalf("reply is not JSON: %v", err)
	}
	if resp.Error == nil || resp.Error.Code != CodeParseError {
		t.Errorf("bad JSON reply = %+v, want parse error", resp)
	}
}

func TestServe_MixedCommands(t *testing.T) {
	s := newTestServer(t)
	input := "ping\n" + `{"jsonrpc":"2.0","id":7,"method":"module/info"}` + "\nsetpar hmin 80\ngetpar hmin\n"

	lines := serve(t, s, input)
	want := []string{"ALIVE", "", "OK", "hmin 80", "OK"}
	if len(lines) != len(want) {
		t.Fatalf("got %q", lines)
	}
	for i, w := range want {
		if w != "" && lines[i] != w {
			t.Errorf("line %d = %q, want %q", i, lines[i], w)
		}
	}
	if !strings.Contains(lines[1], `"RetroTapeTracker"`) {
		t.Errorf("module/info reply = %s", lines[1])
	}
}

func TestServe_Canceled(t *testing.T) {
	s := newTestServer(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	err := s.Serve(ctx, strings.NewReader("ping\n"), &out)
	if err != context.Canceled {
		t.Errorf("Serve error = %v, want context.Canceled", err)
	}
	if out.Len() != 0 {
		t.Errorf("unexpected output %q", out.String())
	}
}
