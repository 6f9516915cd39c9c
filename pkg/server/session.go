package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vango-dev/hxstate/pkg/binding"
	"github.com/vango-dev/hxstate/pkg/dom"
	"github.com/vango-dev/hxstate/pkg/reactive"
	"github.com/vango-dev/hxstate/pkg/render"
)

var (
	// ErrSessionClosed is returned by operations on a closed session.
	ErrSessionClosed = errors.New("server: session closed")

	// ErrTargetNotFound is returned when no element has the target id.
	ErrTargetNotFound = errors.New("server: target element not found")
)

// Session is one live copy of the page: its own document, stores and
// effects. Operations on a session are serialised.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu       sync.Mutex
	doc      *dom.Element
	reg      *binding.Registrar
	renderer *render.Renderer
	result   *binding.Result
	failures []error
	closed   bool
	logger   *slog.Logger
}

// newSession parses page and runs binding setup over it.
func (s *Server) newSession(ctx context.Context) (*Session, error) {
	doc, err := dom.Parse(bytes.NewReader(s.page))
	if err != nil {
		return nil, err
	}

	sess := &Session{
		ID:        uuid.NewString(),
		CreatedAt: time.Now(),
		doc:       doc,
		renderer:  s.renderer,
	}
	sess.logger = s.logger.With("session_id", sess.ID)

	rtOpts := []reactive.RuntimeOption{
		reactive.WithLogger(sess.logger),
		reactive.WithErrorHandler(sess.effectFailed),
	}
	if s.metrics != nil {
		rtOpts = append(rtOpts, s.metrics.RuntimeOption())
	}

	opts := s.binding
	opts.Scheduler = binding.NewScheduler(reactive.NewRuntime(rtOpts...))
	if opts.Logger == nil {
		opts.Logger = sess.logger
	}
	sess.reg = binding.NewRegistrar(opts)

	res, err := s.tracer.Setup(ctx, sess.reg, doc)
	if s.metrics != nil {
		s.metrics.ObserveSetup(res, err)
	}
	if err != nil {
		sess.reg.Scheduler().Dispose()
		return nil, err
	}
	sess.result = res
	sess.takeFailures()
	for _, skipped := range res.Skipped {
		sess.logger.Warn("binding skipped", "error", skipped)
	}
	return sess, nil
}

// effectFailed collects effect errors until the next takeFailures.
func (sess *Session) effectFailed(e *reactive.Effect, err error) {
	sess.logger.Error("effect failed", "effect", e.Name(), "error", err)
	sess.failures = append(sess.failures, err)
}

func (sess *Session) takeFailures() []error {
	f := sess.failures
	sess.failures = nil
	return f
}

// Result returns the setup result.
func (sess *Session) Result() *binding.Result {
	return sess.result
}

// store resolves the store owning the element with id target.
func (sess *Session) store(target string) (*binding.Store, error) {
	el := dom.ByID(sess.doc, target)
	if el == nil {
		return nil, fmt.Errorf("%w: #%s", ErrTargetNotFound, target)
	}
	return sess.reg.Scopes().StateOf(el)
}

// Set writes a state value through the store owning target. Effects rerun
// before Set returns; their failures are returned separately from err.
func (sess *Session) Set(target, name string, value any) (failures []error, err error) {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.closed {
		return nil, ErrSessionClosed
	}

	store, err := sess.store(target)
	if err != nil {
		return nil, err
	}
	if err := store.Set(name, value); err != nil {
		return sess.takeFailures(), err
	}
	if err := sess.reg.Scheduler().Flush(); err != nil {
		return sess.takeFailures(), err
	}
	return sess.takeFailures(), nil
}

// Get reads a state value through the store owning target.
func (sess *Session) Get(target, name string) (any, error) {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.closed {
		return nil, ErrSessionClosed
	}

	store, err := sess.store(target)
	if err != nil {
		return nil, err
	}
	return store.Peek(name)
}

// Render serialises the current document.
func (sess *Session) Render() (string, error) {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.closed {
		return "", ErrSessionClosed
	}
	return sess.renderer.RenderToString(sess.doc)
}

// Close disposes the session's effects.
func (sess *Session) Close() {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.closed {
		return
	}
	sess.closed = true
	sess.reg.Scheduler().Dispose()
}

// IsClosed reports whether Close was called.
func (sess *Session) IsClosed() bool {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.closed
}

// SessionManager tracks open sessions.
type SessionManager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewSessionManager creates an empty SessionManager.
func NewSessionManager() *SessionManager {
	return &SessionManager{sessions: make(map[string]*Session)}
}

// Add registers a session.
func (m *SessionManager) Add(sess *Session) {
	m.mu.Lock()
	m.sessions[sess.ID] = sess
	m.mu.Unlock()
}

// Get returns a session by ID, or nil.
func (m *SessionManager) Get(id string) *Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sessions[id]
}

// Close closes and removes a session.
func (m *SessionManager) Close(id string) {
	m.mu.Lock()
	sess := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if sess != nil {
		sess.Close()
	}
}

// Count returns the number of open sessions.
func (m *SessionManager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Shutdown closes every session.
func (m *SessionManager) Shutdown() {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()
	for _, sess := range sessions {
		sess.Close()
	}
}
