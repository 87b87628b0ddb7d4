package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/san-kum/forcelayout/internal/layout"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
)

// Message types sent to websocket clients.
const (
	MsgHello = "hello"
	MsgFrame = "frame"
	MsgError = "error"
)

// Hello describes the graph. It is sent on connect and again after every
// reload.
type Hello struct {
	Type    string          `json:"type"`
	Session string          `json:"session"`
	Nodes   []layout.NodeID `json:"nodes"`
	Edges   [][2]int        `json:"edges"`
}

type Frame struct {
	Type    string            `json:"type"`
	Tick    uint64            `json:"tick"`
	Running bool              `json:"running"`
	Average point             `json:"average"`
	Nodes   []layout.Position `json:"nodes"`
}

type ErrorMessage struct {
	Type  string `json:"type"`
	Op    string `json:"op"`
	Error string `json:"error"`
}

// Command is a client request. Drag and pin address a node by id.
type Command struct {
	Op string        `json:"op"`
	ID layout.NodeID `json:"id"`
	X  float64       `json:"x"`
	Y  float64       `json:"y"`
}

var errUnknownOp = errors.New("unknown op")

type session struct {
	id   string
	conn *websocket.Conn
	send chan any
	done chan struct{}
	once sync.Once
}

func (s *session) close() {
	s.once.Do(func() {
		close(s.done)
		s.conn.Close()
	})
}

// queue hands v to the writer, dropping it if the client is too slow.
func (s *session) queue(v any) {
	select {
	case s.send <- v:
	case <-s.done:
	default:
	}
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", "err", err)
		return
	}
	sess := &session{
		id:   uuid.New().String(),
		conn: conn,
		send: make(chan any, 16),
		done: make(chan struct{}),
	}
	s.sessMu.Lock()
	s.sessions[sess.id] = sess
	count := len(s.sessions)
	s.sessMu.Unlock()
	s.log.Info("session opened", "session", sess.id, "sessions", count)

	go s.writer(sess)
	s.reader(sess)

	s.sessMu.Lock()
	delete(s.sessions, sess.id)
	s.sessMu.Unlock()
	sess.close()
	s.log.Info("session closed", "session", sess.id)
}

func (s *Server) reader(sess *session) {
	sess.conn.SetReadDeadline(time.Now().Add(pongWait))
	sess.conn.SetPongHandler(func(string) error {
		sess.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		_, data, err := sess.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.Warn("websocket read", "session", sess.id, "err", err)
			}
			return
		}
		var cmd Command
		if err := json.Unmarshal(data, &cmd); err != nil {
			sess.queue(ErrorMessage{Type: MsgError, Error: err.Error()})
			continue
		}
		if err := s.apply(cmd); err != nil {
			sess.queue(ErrorMessage{Type: MsgError, Op: cmd.Op, Error: err.Error()})
		}
	}
}

func (s *Server) apply(cmd Command) error {
	sm := s.Simulator()
	switch cmd.Op {
	case "pause":
		sm.SetRunning(false)
	case "resume":
		sm.SetRunning(true)
	case "drag":
		return sm.SetNodePosition(cmd.ID, cmd.X, cmd.Y)
	case "pin":
		return sm.SetPinned(cmd.ID, true)
	case "unpin":
		return sm.SetPinned(cmd.ID, false)
	default:
		return fmt.Errorf("%w %q", errUnknownOp, cmd.Op)
	}
	return nil
}

// writer owns all writes to the connection: hellos, frames at most FPS times
// a second, queued replies and keepalive pings.
func (s *Server) writer(sess *session) {
	frames := time.NewTicker(time.Second / time.Duration(s.opts.FPS))
	pings := time.NewTicker(pingPeriod)
	defer func() {
		frames.Stop()
		pings.Stop()
		sess.close()
	}()

	var (
		last    *layout.Snapshot
		lastGen uint64
		greeted bool
	)
	write := func(v any) bool {
		sess.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := sess.conn.WriteJSON(v); err != nil {
			s.log.Debug("websocket write", "session", sess.id, "err", err)
			return false
		}
		return true
	}

	for {
		select {
		case <-sess.done:
			return
		case v := <-sess.send:
			if !write(v) {
				return
			}
		case <-pings.C:
			sess.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := sess.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-frames.C:
			sm, gen := s.current()
			if !greeted || gen != lastGen {
				if !write(hello(sess.id, sm.Graph())) {
					return
				}
				greeted, lastGen, last = true, gen, nil
			}
			snap := sm.Snapshot()
			if snap == last {
				continue
			}
			last = snap
			if !write(frame(snap)) {
				return
			}
		}
	}
}

func hello(id string, g *layout.Graph) Hello {
	h := Hello{Type: MsgHello, Session: id, Nodes: g.IDs(), Edges: make([][2]int, 0, len(g.Links()))}
	for _, l := range g.Links() {
		if l.A != l.B {
			h.Edges = append(h.Edges, [2]int{l.A, l.B})
		}
	}
	return h
}

func frame(snap *layout.Snapshot) Frame {
	return Frame{
		Type:    MsgFrame,
		Tick:    snap.Tick,
		Running: snap.Running,
		Average: point{snap.Average.X, snap.Average.Y},
		Nodes:   snap.Nodes,
	}
}
