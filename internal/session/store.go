// Package session keeps one cart and one reservation selector per client.
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/Lixing-Zhang/restaurant-app/backend/internal/service"
	"github.com/google/uuid"
)

var ErrSessionNotFound = errors.New("session not found")

// Session is the state owned by a single user
type Session struct {
	ID          string
	Cart        *service.Cart
	Reservation *service.ReservationSelector
	CreatedAt   time.Time

	lastSeen time.Time
}

// Factory builds the engines for a new session
type Factory struct {
	NewCart     func() *service.Cart
	NewSelector func() *service.ReservationSelector
}

// Store is an in-memory session registry. Sessions idle for longer than the
// TTL are evicted unless a submission is still in flight.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session

	factory Factory
	ttl     time.Duration
	now     func() time.Time
	log     *slog.Logger
}

// NewStore creates an empty store. A zero ttl disables eviction.
func NewStore(factory Factory, ttl time.Duration, log *slog.Logger) *Store {
	return &Store{
		sessions: make(map[string]*Session),
		factory:  factory,
		ttl:      ttl,
		now:      time.Now,
		log:      log,
	}
}

// Create starts a session and loads its floor plan. A table source outage
// is logged and the session is still registered, so the cart stays usable;
// the floor plan is loaded again on the next reservation read.
func (s *Store) Create(ctx context.Context) *Session {
	now := s.now()
	sess := &Session{
		ID:          uuid.New().String(),
		Cart:        s.factory.NewCart(),
		Reservation: s.factory.NewSelector(),
		CreatedAt:   now,
		lastSeen:    now,
	}

	if err := sess.Reservation.Refresh(ctx); err != nil {
		s.log.Warn("session started without a floor plan", "session_id", sess.ID, "error", err)
	}

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()

	s.log.Info("session created", "session_id", sess.ID)
	return sess
}

// Get returns a live session and marks it as used
func (s *Store) Get(id string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}

	now := s.now()
	if s.expired(sess, now) {
		delete(s.sessions, id)
		return nil, ErrSessionNotFound
	}
	sess.lastSeen = now
	return sess, nil
}

// Delete ends a session
func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

// Len returns the number of sessions held
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Sweep evicts expired sessions and returns how many were removed
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for id, sess := range s.sessions {
		if s.expired(sess, now) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// Run sweeps every interval until ctx is done
func (s *Store) Run(ctx context.Context, interval time.Duration) {
	if s.ttl <= 0 || interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				s.log.Info("expired sessions evicted", "count", n)
			}
		}
	}
}

func (s *Store) expired(sess *Session, now time.Time) bool {
	if s.ttl <= 0 || now.Sub(sess.lastSeen) < s.ttl {
		return false
	}
	return !sess.Cart.Submitting() && !sess.Reservation.Submitting()
}
