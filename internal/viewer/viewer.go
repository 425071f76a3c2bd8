// Package viewer runs interactive view sessions over a message connection.
//
// Each session is owned by a single goroutine: it holds the layout session
// and the interaction controller, applies inbound pointer messages, advances
// the simulation a few iterations per frame tick and writes the resulting
// frame back to the client. Nothing else touches that state.
package viewer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/HendryAvila/knowgraph/internal/graph"
	"github.com/HendryAvila/knowgraph/internal/interact"
	"github.com/HendryAvila/knowgraph/internal/layout"
)

// Conn is a bidirectional JSON message stream. *websocket.Conn satisfies it.
type Conn interface {
	ReadJSON(v any) error
	WriteJSON(v any) error
	Close() error
}

// MessageType names an inbound client message.
type MessageType string

const (
	MsgPointerDown  MessageType = "pointer_down"
	MsgPointerMove  MessageType = "pointer_move"
	MsgPointerUp    MessageType = "pointer_up"
	MsgPointerLeave MessageType = "pointer_leave"
	MsgSelect       MessageType = "select"
	MsgRelayout     MessageType = "relayout"
)

// Message is an inbound client message. X and Y are used by pointer
// messages, NodeID by select.
type Message struct {
	Type   MessageType  `json:"type"`
	X      float64      `json:"x,omitempty"`
	Y      float64      `json:"y,omitempty"`
	NodeID graph.NodeID `json:"node_id,omitempty"`
}

// Outbound is what the session writes to the client.
type Outbound struct {
	Type      string          `json:"type"` // "frame" or "error"
	SessionID string          `json:"session_id"`
	Frame     *interact.Frame `json:"frame,omitempty"`
	Error     string          `json:"error,omitempty"`
}

// Options tunes the frame loop.
type Options struct {
	FrameInterval time.Duration
	StepsPerFrame int
}

func (o Options) withDefaults() Options {
	if o.FrameInterval <= 0 {
		o.FrameInterval = 33 * time.Millisecond
	}
	if o.StepsPerFrame <= 0 {
		o.StepsPerFrame = 1
	}
	return o
}

// Session is one interactive view.
type Session struct {
	id     string
	opts   Options
	logger *zap.Logger

	layout *layout.Session
	ctrl   *interact.Controller

	frame interact.Frame
	dirty bool
	move  *interact.Point
}

func newSession(sub *graph.Subgraph, cfg layout.Config, opts Options, logger *zap.Logger) (*Session, error) {
	ls, err := layout.NewSession(sub, cfg)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Session{
		id:     uuid.NewString(),
		opts:   opts.withDefaults(),
		layout: ls,
	}
	s.logger = logger.With(zap.String("session_id", s.id))
	s.ctrl = interact.New(ls, interact.RendererFunc(s.capture))
	ls.Seed()
	s.ctrl.Redraw()
	return s, nil
}

// ID returns the session id.
func (s *Session) ID() string { return s.id }

func (s *Session) capture(f interact.Frame) {
	s.frame = f
	s.dirty = true
}

// run drives the session until the client disconnects or ctx ends. A clean
// client close returns nil.
func (s *Session) run(ctx context.Context, conn Conn) error {
	inbox := make(chan Message, 64)
	readErr := make(chan error, 1)
	done := make(chan struct{})
	defer close(done)

	go func() {
		for {
			var msg Message
			if err := conn.ReadJSON(&msg); err != nil {
				readErr <- err
				return
			}
			select {
			case inbox <- msg:
			case <-done:
				return
			}
		}
	}()

	ticker := time.NewTicker(s.opts.FrameInterval)
	defer ticker.Stop()

	if err := s.flush(conn); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-readErr:
			if errors.Is(err, io.EOF) || isCloseError(err) {
				return nil
			}
			return fmt.Errorf("reading message: %w", err)
		case msg := <-inbox:
			if err := s.apply(msg); err != nil {
				s.logger.Debug("rejected message", zap.String("type", string(msg.Type)), zap.Error(err))
				if werr := conn.WriteJSON(Outbound{Type: "error", SessionID: s.id, Error: err.Error()}); werr != nil {
					return fmt.Errorf("writing error: %w", werr)
				}
			}
		case <-ticker.C:
			if err := s.tick(conn); err != nil {
				return err
			}
		}
	}
}

// apply handles one inbound message. Pointer moves are only recorded; the
// latest one is applied on the next tick.
func (s *Session) apply(msg Message) error {
	if msg.Type == MsgPointerMove {
		s.move = &interact.Point{X: msg.X, Y: msg.Y}
		return nil
	}

	// Anything else must observe the moves that came before it.
	s.applyMove()

	switch msg.Type {
	case MsgPointerDown:
		s.ctrl.PointerDown(interact.Point{X: msg.X, Y: msg.Y})
	case MsgPointerUp:
		s.ctrl.PointerUp()
	case MsgPointerLeave:
		s.ctrl.PointerLeave()
	case MsgSelect:
		if !s.ctrl.Select(msg.NodeID) {
			return fmt.Errorf("node %d is not in this view", msg.NodeID)
		}
	case MsgRelayout:
		s.ctrl.PointerUp()
		s.layout.Reset()
		s.layout.Seed()
		s.ctrl.Redraw()
	default:
		return fmt.Errorf("unknown message type %q", msg.Type)
	}
	return nil
}

func (s *Session) applyMove() {
	if s.move == nil {
		return
	}
	p := *s.move
	s.move = nil
	s.ctrl.PointerMove(p)
}

func (s *Session) tick(conn Conn) error {
	s.applyMove()
	if s.layout.RelaxFrames(s.opts.StepsPerFrame) > 0 {
		s.ctrl.Redraw()
	}
	return s.flush(conn)
}

// flush writes the latest frame if anything changed since the last write.
func (s *Session) flush(conn Conn) error {
	if !s.dirty {
		return nil
	}
	f := s.frame
	s.dirty = false
	if err := conn.WriteJSON(Outbound{Type: "frame", SessionID: s.id, Frame: &f}); err != nil {
		return fmt.Errorf("writing frame: %w", err)
	}
	return nil
}

func isCloseError(err error) bool {
	return websocket.IsCloseError(err,
		websocket.CloseNormalClosure,
		websocket.CloseGoingAway,
		websocket.CloseNoStatusReceived,
	)
}
