package web

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/teslashibe/juggle-music/pkg/target"
	"github.com/teslashibe/juggle-music/pkg/tracking"
	"gocv.io/x/gocv"
)

type fakeStatus struct {
	st tracking.Status
}

func (f *fakeStatus) Status() tracking.Status { return f.st }

func newTestServer(t *testing.T) *Server {
	t.Helper()
	low, high := target.HSV{H: 10, S: 80, V: 80}, target.HSV{H: 20, S: 255, V: 255}
	status := &fakeStatus{st: tracking.Status{
		Mode:  tracking.ModeCalibrate,
		State: "calibrating",
		Targets: []tracking.TargetStatus{
			{Name: "orange", Bound: true, Low: &low, High: &high},
			{Name: "yellow"},
		},
		Pending:  "yellow",
		Frames:   42,
		Triggers: 3,
	}}
	return NewServer("127.0.0.1:0", status, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func getJSON(t *testing.T, s *Server, path string, v interface{}) {
	t.Helper()
	resp, err := s.app.Test(httptest.NewRequest(http.MethodGet, path, nil), -1)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET %s status = %d", path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode %s: %v", path, err)
	}
}

func TestHandleStatus(t *testing.T) {
	s := newTestServer(t)

	var got StatusResponse
	getJSON(t, s, "/api/status", &got)

	if got.Session != s.Session() || got.Session == "" {
		t.Errorf("session = %q, want %q", got.Session, s.Session())
	}
	if got.Mode != tracking.ModeCalibrate || got.State != "calibrating" || got.Pending != "yellow" {
		t.Errorf("status = %+v", got.Status)
	}
	if got.Frames != 42 || got.Triggers != 3 {
		t.Errorf("counters = %d/%d, want 42/3", got.Frames, got.Triggers)
	}
}

func TestHandleTargets(t *testing.T) {
	s := newTestServer(t)

	var got []tracking.TargetStatus
	getJSON(t, s, "/api/targets", &got)

	if len(got) != 2 {
		t.Fatalf("got %d targets, want 2", len(got))
	}
	if got[0].Name != "orange" || !got[0].Bound || got[0].Low.H != 10 || got[0].High.H != 20 {
		t.Errorf("orange = %+v", got[0])
	}
	if got[1].Bound || got[1].Low != nil {
		t.Errorf("yellow should be unbound: %+v", got[1])
	}
}

func TestTriggersHistory(t *testing.T) {
	s := newTestServer(t)

	s.HandleEvent(tracking.Event{Target: "red", Found: true})
	for i := 0; i < maxTriggers+5; i++ {
		s.HandleEvent(tracking.Event{Target: "orange", Frame: int64(i), Found: true, Triggered: true})
	}

	var got []EventMessage
	getJSON(t, s, "/api/triggers", &got)

	if len(got) != maxTriggers {
		t.Fatalf("kept %d triggers, want %d", len(got), maxTriggers)
	}
	if got[0].Frame != 5 || got[len(got)-1].Frame != maxTriggers+4 {
		t.Errorf("window = frames %d..%d", got[0].Frame, got[len(got)-1].Frame)
	}
	if got[0].ID == "" || got[0].ID == got[1].ID {
		t.Error("events need distinct ids")
	}
}

func TestWebSocketRequiresUpgrade(t *testing.T) {
	s := newTestServer(t)

	resp, err := s.app.Test(httptest.NewRequest(http.MethodGet, "/ws/events", nil), -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusUpgradeRequired {
		t.Errorf("status = %d, want 426", resp.StatusCode)
	}
}

// serve starts s on a loopback port and returns its address.
func serve(t *testing.T, s *Server) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go s.Serve(ctx, ln)
	return ln.Addr().String()
}

func dial(t *testing.T, addr, path string) *websocket.Conn {
	t.Helper()
	var conn *websocket.Conn
	var err error
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		conn, _, err = websocket.DefaultDialer.Dial("ws://"+addr+path, nil)
		if err == nil {
			t.Cleanup(func() { conn.Close() })
			return conn
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("dial %s: %v", path, err)
	return nil
}

func waitClients(t *testing.T, count func() int, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for count() != want {
		if time.Now().After(deadline) {
			t.Fatalf("clients = %d, want %d", count(), want)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestEventsWebSocket(t *testing.T) {
	s := newTestServer(t)
	addr := serve(t, s)

	conn := dial(t, addr, "/ws/events")
	waitClients(t, s.EventHub().ClientCount, 1)

	s.HandleEvent(tracking.Event{
		Target:    "orange",
		Frame:     7,
		Found:     true,
		Centroid:  image.Pt(60, 60),
		Triggered: true,
	})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	mt, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if mt != websocket.TextMessage {
		t.Errorf("message type = %d, want text", mt)
	}

	var msg EventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("decode %s: %v", data, err)
	}
	if msg.Session != s.Session() || msg.ID == "" {
		t.Errorf("envelope = %+v", msg)
	}
	if msg.Target != "orange" || msg.Frame != 7 || !msg.Triggered || msg.Centroid != image.Pt(60, 60) {
		t.Errorf("event = %+v", msg.Event)
	}
}

func TestCameraWebSocket(t *testing.T) {
	s := newTestServer(t)
	addr := serve(t, s)

	img := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 128, 255, 0), 48, 64, gocv.MatTypeCV8UC3)
	defer img.Close()

	// Nobody is watching yet, so nothing is encoded.
	s.PublishFrame(img)
	if !s.lastFrame.IsZero() {
		t.Error("frame encoded with no viewers")
	}

	conn := dial(t, addr, "/ws/camera")
	waitClients(t, s.CameraHub().ClientCount, 1)

	s.PublishFrame(img)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	mt, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if mt != websocket.BinaryMessage {
		t.Errorf("message type = %d, want binary", mt)
	}
	if !bytes.HasPrefix(data, []byte{0xFF, 0xD8}) {
		t.Errorf("payload is not a JPEG: % x", data[:min(4, len(data))])
	}
}

func TestShutdown_NeverServed(t *testing.T) {
	s := newTestServer(t)
	if err := s.Shutdown(); err != nil {
		t.Errorf("Shutdown before Serve = %v, want nil", err)
	}
}

func TestShutdown_AfterContextCancel(t *testing.T) {
	var logs bytes.Buffer
	s := NewServer("127.0.0.1:0", &fakeStatus{}, slog.New(slog.NewTextHandler(&logs, nil)))

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	conn := dial(t, ln.Addr().String(), "/ws/events")
	conn.Close()
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Serve = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}

	for i := 0; i < 2; i++ {
		if err := s.Shutdown(); err != nil {
			t.Errorf("Shutdown #%d after cancel = %v, want nil", i+1, err)
		}
	}
	if strings.Contains(logs.String(), "dashboard shutdown") {
		t.Errorf("unexpected shutdown warning: %s", logs.String())
	}
}
