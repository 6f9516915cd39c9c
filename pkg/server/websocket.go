package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel/attribute"

	hxerrors "github.com/vango-dev/hxstate/internal/errors"
	"github.com/vango-dev/hxstate/pkg/reactive"
	"github.com/vango-dev/hxstate/pkg/telemetry"
)

// errUnknownOp is returned for messages with an unrecognised op.
var errUnknownOp = errors.New("server: unknown op")

// HandleWebSocket upgrades the connection, opens a session and serves its
// messages until the client disconnects.
func (s *Server) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	defer reactive.ReleaseGoroutine()

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	ctx := r.Context()
	sess, err := s.newSession(ctx)
	if err != nil {
		s.logger.Error("session setup failed", "error", err)
		s.write(conn, errorReply(0, err))
		return
	}
	s.sessions.Add(sess)
	if s.metrics != nil {
		s.metrics.SessionOpened()
	}
	defer func() {
		s.sessions.Close(sess.ID)
		if s.metrics != nil {
			s.metrics.SessionClosed()
		}
		sess.logger.Info("session closed")
	}()

	html, err := sess.Render()
	if err != nil {
		s.write(conn, errorReply(0, err))
		return
	}
	if err := s.write(conn, Message{Op: OpHello, Session: sess.ID, HTML: html}); err != nil {
		return
	}
	sess.logger.Info("session opened", "stores", sess.result.Stores, "effects", len(sess.result.Registered))

	conn.SetReadLimit(s.config.MaxMessageSize)
	for {
		conn.SetReadDeadline(time.Now().Add(s.config.ReadTimeout))

		var msg Message
		if err := conn.ReadJSON(&msg); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				sess.logger.Debug("read failed", "error", err)
			}
			return
		}

		reply := s.handleMessage(ctx, sess, msg)
		if err := s.write(conn, reply); err != nil {
			return
		}
	}
}

// handleMessage applies one client message and builds the reply.
func (s *Server) handleMessage(ctx context.Context, sess *Session, msg Message) Message {
	_, span := s.tracer.Start(ctx, "hxstate.message",
		attribute.String("hxstate.session_id", sess.ID),
		attribute.String("hxstate.op", string(msg.Op)),
		attribute.String("hxstate.target", msg.Target),
		attribute.String("hxstate.state", msg.State),
	)

	reply, err := s.dispatch(sess, msg)
	telemetry.End(span, err)
	if s.metrics != nil {
		s.metrics.ObserveMessage(string(msg.Op), err)
	}
	if err != nil {
		sess.logger.Warn("message failed", "op", msg.Op, "error", err)
		return errorReply(msg.ID, err)
	}
	return reply
}

func (s *Server) dispatch(sess *Session, msg Message) (Message, error) {
	switch msg.Op {
	case OpSet:
		failures, err := sess.Set(msg.Target, msg.State, msg.Value)
		if err != nil {
			return Message{}, err
		}
		html, err := sess.Render()
		if err != nil {
			return Message{}, err
		}
		reply := Message{Op: OpRender, ID: msg.ID, HTML: html}
		for _, f := range failures {
			reply.Effects = append(reply.Effects, f.Error())
		}
		return reply, nil

	case OpGet:
		v, err := sess.Get(msg.Target, msg.State)
		if err != nil {
			return Message{}, err
		}
		return Message{Op: OpValue, ID: msg.ID, Target: msg.Target, State: msg.State, Value: v}, nil

	case OpRender:
		html, err := sess.Render()
		if err != nil {
			return Message{}, err
		}
		return Message{Op: OpRender, ID: msg.ID, HTML: html}, nil

	default:
		return Message{}, fmt.Errorf("%w: %q", errUnknownOp, msg.Op)
	}
}

func (s *Server) write(conn *websocket.Conn, msg Message) error {
	conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
	if err := conn.WriteJSON(msg); err != nil {
		s.logger.Debug("write failed", "error", err)
		return err
	}
	return nil
}

func errorReply(id int64, err error) Message {
	reply := Message{Op: OpError, ID: id, Error: err.Error()}
	if he := hxerrors.FromError(err, ""); he != nil && he.Code != "" {
		reply.Code = he.Code
	}
	return reply
}
