package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"

	"smartbizmap.kr/internal/logging"
	"smartbizmap.kr/internal/pipeline"
	"smartbizmap.kr/internal/registry"
	"smartbizmap.kr/internal/telemetry"
)

var (
	ErrNotFound      = errors.New("session not found")
	ErrUnknownEntity = errors.New("unknown entity")
)

type Session struct {
	ID        string
	CreatedAt time.Time
	Cart      *Cart
	view      *pipeline.Tracker
}

// View returns the latest applied snapshot and its token.
func (s *Session) View() (*pipeline.Snapshot, uint64) {
	return s.view.Current()
}

// Limits bound the number of live sessions and how long an untouched
// session is kept.
type Limits struct {
	MaxSessions int
	IdleTTL     time.Duration
}

func DefaultLimits() Limits {
	return Limits{MaxSessions: 10000, IdleTTL: 24 * time.Hour}
}

// Store keeps sessions in memory. The least recently used session is dropped
// once MaxSessions is exceeded, and any session is dropped after IdleTTL
// without a request.
type Store struct {
	registry *registry.Registry
	run      pipeline.RunFunc
	logger   *slog.Logger
	metrics  *telemetry.Metrics

	sessions *expirable.LRU[string, *Session]
}

// NewStore creates a store with DefaultLimits whose views are computed by
// run, normally (*pipeline.Manager).Run.
func NewStore(reg *registry.Registry, run pipeline.RunFunc, logger *slog.Logger, metrics *telemetry.Metrics) *Store {
	return NewStoreWithLimits(reg, run, logger, metrics, DefaultLimits())
}

func NewStoreWithLimits(reg *registry.Registry, run pipeline.RunFunc, logger *slog.Logger, metrics *telemetry.Metrics, limits Limits) *Store {
	s := &Store{
		registry: reg,
		run:      run,
		logger:   logging.Component(logger, "sessions"),
		metrics:  metrics,
	}
	// In-flight view runs of an evicted session finish on their own; nothing
	// waits for them.
	s.sessions = expirable.NewLRU[string, *Session](limits.MaxSessions, func(id string, _ *Session) {
		s.logger.Debug("session evicted", slog.String("session_id", id))
	}, limits.IdleTTL)
	return s
}

func (s *Store) Create() *Session {
	sess := &Session{
		ID:        uuid.NewString(),
		CreatedAt: time.Now(),
		Cart:      &Cart{},
		view:      pipeline.NewTracker(s.run, s.logger, s.metrics),
	}
	s.sessions.Add(sess.ID, sess)
	return sess
}

// Get returns a live session and renews its idle deadline.
func (s *Store) Get(id string) (*Session, error) {
	sess, ok := s.sessions.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	s.sessions.Add(id, sess)
	return sess, nil
}

func (s *Store) Len() int {
	return s.sessions.Len()
}

// AddToCart adds a registry entity to the session cart. Adding an entity
// twice leaves the cart unchanged.
func (s *Store) AddToCart(sessionID, entityID string) (*Cart, error) {
	sess, err := s.Get(sessionID)
	if err != nil {
		return nil, err
	}
	if _, ok := s.registry.Entity(entityID); !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownEntity, entityID)
	}
	sess.Cart.Add(entityID)
	return sess.Cart, nil
}

func (s *Store) RemoveFromCart(sessionID, entityID string) (*Cart, error) {
	sess, err := s.Get(sessionID)
	if err != nil {
		return nil, err
	}
	sess.Cart.Remove(entityID)
	return sess.Cart, nil
}

// SetView submits q as the session's current view and returns its token.
// Only the most recently submitted view is ever applied.
func (s *Store) SetView(ctx context.Context, sessionID string, q pipeline.Query) (uint64, error) {
	sess, err := s.Get(sessionID)
	if err != nil {
		return 0, err
	}
	return sess.view.Submit(ctx, q), nil
}

// WaitView blocks until the view for token, or a newer one, is applied.
func (s *Store) WaitView(ctx context.Context, sessionID string, token uint64) (*pipeline.Snapshot, error) {
	sess, err := s.Get(sessionID)
	if err != nil {
		return nil, err
	}
	return sess.view.Wait(ctx, token)
}

// Close waits for in-flight view runs of every live session.
func (s *Store) Close() {
	for _, sess := range s.sessions.Values() {
		sess.view.Drain()
	}
}
