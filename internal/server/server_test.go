package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/san-kum/forcelayout/internal/compute"
	"github.com/san-kum/forcelayout/internal/graphio"
	"github.com/san-kum/forcelayout/internal/layout"
	"github.com/san-kum/forcelayout/internal/metrics"
	"github.com/san-kum/forcelayout/internal/sim"
)

func testSpec() layout.GraphSpec {
	return layout.GraphSpec{
		Nodes: []layout.NodeSpec{layout.NodeAt(1, 0, 0), layout.NodeAt(2, 4, 0), layout.NodeAt(3, 0, 4)},
		Edges: []layout.EdgeSpec{layout.Edge(1, 2), layout.Edge(2, 3)},
	}
}

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	opts := []sim.Option{sim.WithScheduler(compute.Serial{})}
	s, err := sim.Build(testSpec(), layout.DefaultConfig(), opts...)
	if err != nil {
		t.Fatal(err)
	}
	srv := New(s, Options{
		Interval:   time.Millisecond,
		FPS:        200,
		Logger:     log.New(io.Discard),
		SimOptions: opts,
	})
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		ts.Close()
		srv.Close()
	})
	return srv, ts
}

func post(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func get(t *testing.T, url string) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestHealthz(t *testing.T) {
	_, ts := newTestServer(t)
	resp := get(t, ts.URL+"/healthz")
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
}

func TestPositions(t *testing.T) {
	srv, ts := newTestServer(t)
	srv.Simulator().Step()

	var body positionsResponse
	if err := json.NewDecoder(get(t, ts.URL+"/positions").Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Tick != 1 || len(body.Nodes) != 3 || body.State != "stepping" {
		t.Errorf("unexpected response %+v", body)
	}
	for i, id := range []layout.NodeID{1, 2, 3} {
		if body.Nodes[i].ID != id {
			t.Errorf("node %d: expected id %d, got %d", i, id, body.Nodes[i].ID)
		}
	}
}

func TestSetPosition(t *testing.T) {
	srv, ts := newTestServer(t)

	resp := post(t, ts.URL+"/nodes/2/position", `{"x": 10, "y": -3}`)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.StatusCode)
	}
	if p := srv.Simulator().Snapshot().Point(1); p != (layout.Vec2{X: 10, Y: -3}) {
		t.Errorf("node not moved: %v", p)
	}

	tests := []struct {
		path string
		body string
		want int
	}{
		{"/nodes/99/position", `{"x": 1, "y": 1}`, http.StatusNotFound},
		{"/nodes/abc/position", `{"x": 1, "y": 1}`, http.StatusBadRequest},
		{"/nodes/1/position", `{"x": `, http.StatusBadRequest},
		{"/nodes/99/pin", `{"pinned": true}`, http.StatusNotFound},
		{"/nodes/1/pin", `{"pinned": true}`, http.StatusNoContent},
	}
	for _, tt := range tests {
		if got := post(t, ts.URL+tt.path, tt.body).StatusCode; got != tt.want {
			t.Errorf("%s: expected %d, got %d", tt.path, tt.want, got)
		}
	}
}

func TestNode(t *testing.T) {
	_, ts := newTestServer(t)
	var body nodeResponse
	resp := get(t, ts.URL+"/nodes/3/")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	json.NewDecoder(resp.Body).Decode(&body)
	if body.ID != 3 || body.X != 0 || body.Y != 4 {
		t.Errorf("unexpected node %+v", body)
	}
	if body.Force == (point{}) {
		t.Error("expected a non-zero force")
	}
	if get(t, ts.URL+"/nodes/42/").StatusCode != http.StatusNotFound {
		t.Error("expected 404 for unknown node")
	}
}

func TestNodeFarApart(t *testing.T) {
	_, ts := newTestServer(t)
	post(t, ts.URL+"/nodes/1/position", `{"x": -1e308, "y": 0}`)
	post(t, ts.URL+"/nodes/2/position", `{"x": 1e308, "y": 0}`)

	resp := get(t, ts.URL+"/nodes/1/")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var body nodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.X != -1e308 {
		t.Errorf("unexpected position %+v", body)
	}
	if math.IsNaN(body.Force.X) || math.IsInf(body.Force.X, 0) {
		t.Errorf("force not finite: %+v", body.Force)
	}
}

func TestRunning(t *testing.T) {
	srv, ts := newTestServer(t)
	resp := post(t, ts.URL+"/running", `{"running": false}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if srv.Simulator().Running() {
		t.Error("simulator should be paused")
	}
	if srv.Simulator().Step() {
		t.Error("paused simulator must not step")
	}
}

func TestExport(t *testing.T) {
	_, ts := newTestServer(t)
	for format, want := range map[string]string{
		"csv":  "id,label,x,y",
		"json": `"nodes"`,
		"svg":  "<svg",
		"dot":  "graph G {",
	} {
		resp := get(t, ts.URL+"/export/"+format)
		data, _ := io.ReadAll(resp.Body)
		if resp.StatusCode != http.StatusOK || !bytes.Contains(data, []byte(want)) {
			t.Errorf("%s: status %d body %q", format, resp.StatusCode, data)
		}
		if resp.Header.Get("Content-Type") != contentTypes[format] {
			t.Errorf("%s: content type %q", format, resp.Header.Get("Content-Type"))
		}
	}
	if get(t, ts.URL+"/export/bmp").StatusCode != http.StatusBadRequest {
		t.Error("expected 400 for unknown format")
	}
}

func TestMetrics(t *testing.T) {
	srv, ts := newTestServer(t)
	srv.Simulator().Step()
	var values map[string]float64
	json.NewDecoder(get(t, ts.URL+"/metrics").Body).Decode(&values)
	if _, ok := values["kinetic_energy"]; !ok {
		t.Errorf("missing kinetic_energy in %v", values)
	}
}

func dial(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { conn.Close() })
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	return conn
}

func readType(t *testing.T, conn *websocket.Conn, want string) json.RawMessage {
	t.Helper()
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("waiting for %s: %v", want, err)
		}
		var head struct {
			Type string `json:"type"`
		}
		json.Unmarshal(data, &head)
		if head.Type == want {
			return data
		}
	}
}

func TestWebSocketStream(t *testing.T) {
	srv, ts := newTestServer(t)
	conn := dial(t, ts)

	var h Hello
	json.Unmarshal(readType(t, conn, MsgHello), &h)
	if h.Session == "" || len(h.Nodes) != 3 || len(h.Edges) != 2 {
		t.Fatalf("unexpected hello %+v", h)
	}

	srv.Simulator().Step()
	var f Frame
	json.Unmarshal(readType(t, conn, MsgFrame), &f)
	if len(f.Nodes) != 3 {
		t.Errorf("unexpected frame %+v", f)
	}
}

func TestWebSocketCommands(t *testing.T) {
	srv, ts := newTestServer(t)
	conn := dial(t, ts)
	readType(t, conn, MsgHello)

	conn.WriteJSON(Command{Op: "pause"})
	conn.WriteJSON(Command{Op: "drag", ID: 3, X: 7, Y: 8})
	conn.WriteJSON(Command{Op: "drag", ID: 404})

	var e ErrorMessage
	json.Unmarshal(readType(t, conn, MsgError), &e)
	if e.Op != "drag" || !strings.Contains(e.Error, "unknown node") {
		t.Errorf("unexpected error %+v", e)
	}
	// commands are applied in order, so both earlier ones have landed
	if srv.Simulator().Running() {
		t.Error("pause not applied")
	}
	if p := srv.Simulator().Snapshot().Point(2); p != (layout.Vec2{X: 7, Y: 8}) {
		t.Errorf("drag not applied: %v", p)
	}

	conn.WriteJSON(Command{Op: "explode"})
	json.Unmarshal(readType(t, conn, MsgError), &e)
	if e.Op != "explode" {
		t.Errorf("expected unknown op error, got %+v", e)
	}
}

func TestReloadKeepsPositions(t *testing.T) {
	srv, _ := newTestServer(t)
	old := srv.Simulator()
	old.SetNodePosition(2, 9, 9)
	old.SetRunning(false)

	spec := layout.GraphSpec{
		Nodes: []layout.NodeSpec{layout.Node(2), layout.Node(5), layout.NodeAt(1, -1, -1)},
		Edges: []layout.EdgeSpec{layout.Edge(2, 5)},
	}
	if err := srv.Reload(spec); err != nil {
		t.Fatal(err)
	}
	next := srv.Simulator()
	if next == old {
		t.Fatal("simulator not replaced")
	}
	if old.Step() {
		t.Error("old simulator should be closed")
	}
	if next.Running() {
		t.Error("paused state should carry over")
	}
	snap := next.Snapshot()
	if snap.Point(0) != (layout.Vec2{X: 9, Y: 9}) {
		t.Errorf("surviving node lost its position: %v", snap.Point(0))
	}
	if snap.Point(2) != (layout.Vec2{X: -1, Y: -1}) {
		t.Errorf("explicit position ignored: %v", snap.Point(2))
	}

	bad := layout.GraphSpec{Edges: []layout.EdgeSpec{layout.Edge(1, 2)}}
	if err := srv.Reload(bad); err == nil {
		t.Error("expected error for edges to unknown nodes")
	}
	if srv.Simulator() != next {
		t.Error("failed reload must keep the current simulator")
	}
}

func TestReloadStartsFreshMetrics(t *testing.T) {
	srv, ts := newTestServer(t)
	old := srv.Simulator()
	oldRec := srv.recorder()
	old.Step()

	spec := layout.GraphSpec{Nodes: []layout.NodeSpec{layout.NodeAt(1, 0, 0), layout.NodeAt(2, 1, 0)}}
	if err := srv.Reload(spec); err != nil {
		t.Fatal(err)
	}
	rec := srv.recorder()
	if rec == oldRec {
		t.Fatal("reload should swap the recorder")
	}
	if got := rec.Series("kinetic_energy"); len(got) != 0 {
		t.Errorf("new recorder carries old samples %v", got)
	}

	// a tick of the old simulator that races the swap only reaches its own recorder
	oldRec.OnTick(old.Snapshot())

	next := srv.Simulator()
	next.Step()
	if got := rec.Series("kinetic_energy"); len(got) != 1 || got[0] != metrics.Kinetic(next.Snapshot()) {
		t.Errorf("first tick of the new graph not recorded: %v", got)
	}

	var values map[string]float64
	json.NewDecoder(get(t, ts.URL+"/metrics").Body).Decode(&values)
	if values["kinetic_energy"] != metrics.Kinetic(next.Snapshot()) {
		t.Errorf("metrics endpoint not serving the new recorder: %v", values)
	}
}

func TestWatch(t *testing.T) {
	srv, _ := newTestServer(t)
	path := filepath.Join(t.TempDir(), "graph.yaml")
	if err := os.WriteFile(path, []byte("edges:\n  - {source: 1, target: 2}\n"), 0644); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Watch(ctx, path, graphio.ReadFile) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	updated := []byte("edges:\n  - {source: 1, target: 2}\n  - {source: 7, target: 8}\n  - {source: 8, target: 9}\n")
	deadline := time.Now().Add(5 * time.Second)
	for i := 0; srv.Simulator().Graph().Len() != 5; i++ {
		if time.Now().After(deadline) {
			t.Fatal("graph was not reloaded")
		}
		// the watcher may not be registered yet, so rewrite now and then
		if i%10 == 0 {
			os.WriteFile(path, updated, 0644)
		}
		time.Sleep(50 * time.Millisecond)
	}
}
