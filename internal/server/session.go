package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/napolitain/citysim/internal/journal"
	"github.com/napolitain/citysim/internal/metrics"
	"github.com/napolitain/citysim/internal/models"
	"github.com/napolitain/citysim/internal/sim"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrTooManySessions = errors.New("too many sessions")
)

// Session is one live city. Every access to the city holds mu, so the
// city sees a single writer.
type Session struct {
	ID      string
	Created time.Time
	Hub     *Hub

	mu      sync.Mutex
	city    *sim.City
	paused  bool
	journal *journal.Journal
	cancel  context.CancelFunc
	done    chan struct{}
}

// Do runs fn with exclusive access to the city
func (s *Session) Do(fn func(c *sim.City) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.city)
}

// Snapshot returns the current city state
func (s *Session) Snapshot() sim.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.city.Snapshot()
}

// SetPaused stops or resumes the real-time ticker
func (s *Session) SetPaused(paused bool) {
	s.mu.Lock()
	s.paused = paused
	s.mu.Unlock()
}

// Paused reports whether the ticker is stopped
func (s *Session) Paused() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paused
}

func (s *Session) run(ctx context.Context, every time.Duration) {
	defer close(s.done)
	if every <= 0 {
		<-ctx.Done()
		return
	}
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.mu.Lock()
			if !s.paused {
				s.city.Simulate(every)
			}
			s.mu.Unlock()
		}
	}
}

// CreateOptions overrides parts of the base city config for one session
type CreateOptions struct {
	Size     *int     `json:"size,omitempty"`
	Budget   *float64 `json:"budget,omitempty"`
	TownHall *bool    `json:"townHall,omitempty"`
	Paused   bool     `json:"paused,omitempty"`
}

// Manager owns the live sessions
type Manager struct {
	base    *models.Config
	cfg     Config
	metrics *metrics.Metrics
	store   *journal.Store
	logger  *slog.Logger

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewManager creates a session manager. metrics and store may be nil.
func NewManager(base *models.Config, cfg Config, m *metrics.Metrics, store *journal.Store, logger *slog.Logger) *Manager {
	if base == nil {
		base = models.DefaultConfig()
	}
	return &Manager{
		base:     base,
		cfg:      cfg,
		metrics:  m,
		store:    store,
		logger:   logger,
		sessions: make(map[string]*Session),
	}
}

// Create starts a new session
func (m *Manager) Create(opts CreateOptions) (*Session, error) {
	cfg := m.base.Clone()
	if opts.Size != nil {
		cfg.Size = *opts.Size
	}
	if opts.Budget != nil {
		cfg.Budget = *opts.Budget
	}
	if opts.TownHall != nil {
		cfg.TownHall = *opts.TownHall
	}

	id := uuid.New().String()
	lg := m.logger.With(slog.String("session", id))
	hub := NewHub(lg)

	simOpts := []sim.Option{
		sim.WithObserver(hub),
		sim.WithPromptIDs(uuid.NewString),
	}
	var j *journal.Journal
	if m.store != nil {
		j = m.store.Session(id)
		simOpts = append(simOpts, sim.WithObserver(j))
	}
	if m.metrics != nil {
		simOpts = append(simOpts,
			sim.WithService(m.metrics.Publisher(id)),
			sim.WithObserver(m.metrics.Observer(id)),
		)
	}

	city, err := sim.NewCity(cfg, simOpts...)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		ID:      id,
		Created: time.Now(),
		Hub:     hub,
		city:    city,
		paused:  opts.Paused,
		journal: j,
		cancel:  cancel,
		done:    make(chan struct{}),
	}

	m.mu.Lock()
	if m.cfg.MaxSessions > 0 && len(m.sessions) >= m.cfg.MaxSessions {
		m.mu.Unlock()
		cancel()
		m.metrics.Forget(id)
		return nil, ErrTooManySessions
	}
	m.sessions[id] = s
	m.mu.Unlock()

	go hub.Run(ctx)
	go s.run(ctx, m.cfg.TickInterval)

	lg.Info("session created", slog.Int("size", cfg.Size), slog.Float64("budget", cfg.Budget))
	return s, nil
}

// Get returns a live session
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", id, ErrSessionNotFound)
	}
	return s, nil
}

// IDs returns the live session ids, sorted
func (m *Manager) IDs() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Close stops a session's ticker and feed
func (m *Manager) Close(id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if !ok {
		return fmt.Errorf("%s: %w", id, ErrSessionNotFound)
	}
	s.cancel()
	<-s.done
	m.metrics.Forget(id)
	if s.journal != nil {
		if err := s.journal.Err(); err != nil {
			m.logger.Warn("journal write failed", slog.String("session", id), slog.Any("err", err))
		}
	}
	m.logger.Info("session closed", slog.String("session", id))
	return nil
}

// CloseAll stops every session
func (m *Manager) CloseAll() {
	for _, id := range m.IDs() {
		_ = m.Close(id)
	}
}

// Store returns the journal store, nil when journaling is off
func (m *Manager) Store() *journal.Store {
	return m.store
}
