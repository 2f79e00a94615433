package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/LavaJover/shvark-kiosk-service/internal/domain"
	"github.com/LavaJover/shvark-kiosk-service/internal/usecase/rates"
	"github.com/jaevor/go-nanoid"
)

// ActiveGauge tracks how many payment screens are open.
type ActiveGauge interface {
	SetActiveSessions(n int)
}

// Manager opens sessions. Every session gets its own synchronizer; nothing is
// shared between customers.
type Manager struct {
	provider  domain.RateProvider
	opts      rates.Options
	logger    *slog.Logger
	newID     func() string
	publisher domain.QuotePublisher

	rateRecorder    rates.Recorder
	sessionRecorder Recorder
	gauge           ActiveGauge

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewManager(provider domain.RateProvider, opts rates.Options, logger *slog.Logger) (*Manager, error) {
	idGenerator, err := nanoid.Standard(15)
	if err != nil {
		return nil, fmt.Errorf("failed to init session id generator: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		provider: provider,
		opts:     opts,
		logger:   logger,
		newID:    idGenerator,
		sessions: make(map[string]*Session),
	}, nil
}

func (m *Manager) WithPublisher(p domain.QuotePublisher) *Manager {
	m.publisher = p
	return m
}

func (m *Manager) WithRecorders(rateRecorder rates.Recorder, sessionRecorder Recorder, gauge ActiveGauge) *Manager {
	m.rateRecorder = rateRecorder
	m.sessionRecorder = sessionRecorder
	m.gauge = gauge
	return m
}

func (m *Manager) Open(ctx context.Context, asset domain.Asset, quantity int) (*Session, error) {
	synchronizer := rates.NewSynchronizer(m.provider, m.opts, m.logger)
	if m.rateRecorder != nil {
		synchronizer.WithRecorder(m.rateRecorder)
	}
	if m.publisher != nil {
		synchronizer.WithPublisher(m.publisher)
	}

	s := New(m.newID(), synchronizer, m.logger)
	if m.sessionRecorder != nil {
		s.WithRecorder(m.sessionRecorder)
	}
	if err := s.Start(ctx, asset, quantity); err != nil {
		s.Close()
		return nil, err
	}

	m.mu.Lock()
	m.sessions[s.ID()] = s
	active := len(m.sessions)
	m.mu.Unlock()

	m.setGauge(active)
	return s, nil
}

func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	return s, ok
}

func (m *Manager) Close(id string) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	active := len(m.sessions)
	m.mu.Unlock()

	if ok {
		s.Close()
		m.setGauge(active)
	}
}

func (m *Manager) CloseAll() {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	for _, s := range sessions {
		s.Close()
	}
	m.setGauge(0)
}

func (m *Manager) Active() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

func (m *Manager) setGauge(n int) {
	if m.gauge != nil {
		m.gauge.SetActiveSessions(n)
	}
}
