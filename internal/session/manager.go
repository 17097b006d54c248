package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/trivia-quiz/internal/question"
	"github.com/gokatarajesh/trivia-quiz/internal/quiz"
)

var (
	// ErrNotFound is returned for unknown or already torn down session ids.
	ErrNotFound = errors.New("session not found")
	// ErrCapacity is returned when the registry already holds MaxSessions.
	ErrCapacity = errors.New("session limit reached")
)

// Listener is told about every view change and about teardown of a session.
type Listener interface {
	SessionChanged(id uuid.UUID, view quiz.View)
	SessionClosed(id uuid.UUID)
}

// Tracker follows the registry size (implemented by metrics).
type Tracker interface {
	SessionOpened()
	SessionClosed()
}

// Options tunes the registry.
type Options struct {
	FetchTimeout time.Duration
	IdleTTL      time.Duration
	MaxSessions  int
	Shuffler     quiz.Shuffler
	Observer     quiz.Observer
	Tracker      Tracker
	Now          func() time.Time
}

type entry struct {
	// order is held from an action until its view is broadcast, so
	// listeners see views in the order they were produced.
	order    sync.Mutex
	session  *quiz.Session
	lastSeen time.Time
	cancel   context.CancelFunc
}

// Manager keeps live quiz sessions in memory. Nothing outlives the process.
type Manager struct {
	mu        sync.Mutex
	sessions  map[uuid.UUID]*entry
	listeners []Listener

	provider question.Provider
	opts     Options
	logger   zerolog.Logger
	loads    sync.WaitGroup
}

func NewManager(provider question.Provider, opts Options, logger zerolog.Logger) *Manager {
	if opts.IdleTTL <= 0 {
		opts.IdleTTL = 30 * time.Minute
	}
	if opts.MaxSessions <= 0 {
		opts.MaxSessions = 10000
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Manager{
		sessions: make(map[uuid.UUID]*entry),
		provider: provider,
		opts:     opts,
		logger:   logger.With().Str("component", "session_manager").Logger(),
	}
}

// Subscribe registers l for view changes. Not safe to call after traffic starts.
func (m *Manager) Subscribe(l Listener) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, l)
}

// Create registers a loading session and fetches its question set in the
// background. Listeners are notified once loading settles.
func (m *Manager) Create() (uuid.UUID, quiz.View, error) {
	id := uuid.New()
	s := quiz.NewSession(quiz.Options{Shuffler: m.opts.Shuffler, Observer: m.opts.Observer})

	var (
		loadCtx context.Context
		cancel  context.CancelFunc
	)
	if m.opts.FetchTimeout > 0 {
		loadCtx, cancel = context.WithTimeout(context.Background(), m.opts.FetchTimeout)
	} else {
		loadCtx, cancel = context.WithCancel(context.Background())
	}

	m.mu.Lock()
	if len(m.sessions) >= m.opts.MaxSessions {
		m.mu.Unlock()
		cancel()
		return uuid.Nil, quiz.View{}, ErrCapacity
	}
	e := &entry{session: s, lastSeen: m.opts.Now(), cancel: cancel}
	m.sessions[id] = e
	m.loads.Add(1)
	m.mu.Unlock()

	if m.opts.Tracker != nil {
		m.opts.Tracker.SessionOpened()
	}
	logger := m.logger.With().Str("session_id", id.String()).Logger()
	logger.Info().Msg("session created")

	go func() {
		defer m.loads.Done()
		defer cancel()
		if err := s.Load(loadCtx, m.provider); err != nil {
			logger.Debug().Err(err).Msg("question set discarded")
			return
		}
		e.order.Lock()
		defer e.order.Unlock()
		view := s.View()
		logger.Info().Str("state", string(view.State)).Msg("session loaded")
		m.notify(id, view)
	}()

	return id, s.View(), nil
}

// Wait blocks until every background load has returned.
func (m *Manager) Wait() {
	m.loads.Wait()
}

// View returns the current view of id.
func (m *Manager) View(id uuid.UUID) (quiz.View, error) {
	e, err := m.touch(id)
	if err != nil {
		return quiz.View{}, err
	}
	return e.session.View(), nil
}

// Select records a pending answer.
func (m *Manager) Select(id uuid.UUID, answer string) (quiz.View, error) {
	return m.apply(id, func(s *quiz.Session) error { return s.Select(answer) })
}

// Reveal commits the pending answer.
func (m *Manager) Reveal(id uuid.UUID) (quiz.View, error) {
	return m.apply(id, func(s *quiz.Session) error {
		_, err := s.Reveal()
		return err
	})
}

// Next moves to the following question or to the results.
func (m *Manager) Next(id uuid.UUID) (quiz.View, error) {
	return m.apply(id, func(s *quiz.Session) error { return s.Next() })
}

// Advance runs the single-control flow.
func (m *Manager) Advance(id uuid.UUID) (quiz.View, error) {
	return m.apply(id, func(s *quiz.Session) error { return s.Advance() })
}

// apply returns the unchanged view together with the error of an invalid action.
func (m *Manager) apply(id uuid.UUID, action func(*quiz.Session) error) (quiz.View, error) {
	e, err := m.touch(id)
	if err != nil {
		return quiz.View{}, err
	}
	e.order.Lock()
	defer e.order.Unlock()
	if err := action(e.session); err != nil {
		return e.session.View(), err
	}
	view := e.session.View()
	m.notify(id, view)
	return view, nil
}

// Close tears a session down; an in-flight fetch is cancelled and its result discarded.
func (m *Manager) Close(id uuid.UUID) error {
	m.mu.Lock()
	e, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	m.mu.Unlock()
	if !ok {
		return ErrNotFound
	}
	m.teardown(id, e)
	return nil
}

// CloseAll tears down every session, used on shutdown.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	entries := m.sessions
	m.sessions = make(map[uuid.UUID]*entry)
	m.mu.Unlock()
	for id, e := range entries {
		m.teardown(id, e)
	}
}

// Sweep closes sessions idle longer than IdleTTL and reports how many went.
func (m *Manager) Sweep() int {
	cutoff := m.opts.Now().Add(-m.opts.IdleTTL)

	m.mu.Lock()
	expired := make(map[uuid.UUID]*entry)
	for id, e := range m.sessions {
		if e.lastSeen.Before(cutoff) {
			expired[id] = e
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for id, e := range expired {
		m.teardown(id, e)
	}
	return len(expired)
}

// Len reports the number of live sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

func (m *Manager) touch(id uuid.UUID) (*entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	e.lastSeen = m.opts.Now()
	return e, nil
}

func (m *Manager) teardown(id uuid.UUID, e *entry) {
	e.session.Close()
	e.cancel()
	if m.opts.Tracker != nil {
		m.opts.Tracker.SessionClosed()
	}
	m.logger.Info().Str("session_id", id.String()).Msg("session closed")
	for _, l := range m.snapshotListeners() {
		l.SessionClosed(id)
	}
}

func (m *Manager) notify(id uuid.UUID, view quiz.View) {
	for _, l := range m.snapshotListeners() {
		l.SessionChanged(id, view)
	}
}

func (m *Manager) snapshotListeners() []Listener {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Listener(nil), m.listeners...)
}
