package identity

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"
	"github.com/sirupsen/logrus"

	"github.com/devanagari-foods/storefront/internal/domain/user"
)

// cacheKeyPrefix namespaces cached identities in redis.
const cacheKeyPrefix = "auth:user:"

// EventKind classifies session transitions.
type EventKind string

const (
	EventSignedIn       EventKind = "SIGNED_IN"
	EventTokenRefreshed EventKind = "TOKEN_REFRESHED"
	EventSignedOut      EventKind = "SIGNED_OUT"
)

// Event is a session state change.
type Event struct {
	Kind     EventKind
	Identity user.Profile
}

// MirrorState reports the row-store mirror task for one identity.
type MirrorState string

const (
	MirrorPending   MirrorState = "pending"
	MirrorCompleted MirrorState = "completed"
	MirrorFailed    MirrorState = "failed"
)

// SessionSource is the subset of the provider the manager needs.
type SessionSource interface {
	UserFromToken(ctx context.Context, token string) (user.Profile, error)
	SignOut(ctx context.Context, token string) error
}

// Mirror upserts identity fields into the users table.
type Mirror interface {
	EnsureMirrored(ctx context.Context, p user.Profile) error
}

// Cache is the redis surface the manager uses.
type Cache interface {
	SetJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	GetJSON(ctx context.Context, key string, dest interface{}) error
	Del(ctx context.Context, keys ...string) error
}

// Manager tracks per-identity session state. Every state change, whether
// from an initial token resolution, a background refresh or a logout,
// flows through the single applySessionEvent transition.
type Manager struct {
	provider SessionSource
	cache    Cache
	mirror   Mirror
	logger   *logrus.Logger
	cacheTTL time.Duration

	mu           sync.RWMutex
	sessions     map[uuid.UUID]user.Profile
	mirrorStates map[uuid.UUID]MirrorState
	subscribers  map[int]chan Event
	nextSub      int

	wg sync.WaitGroup
}

// NewManager creates a new session manager
func NewManager(provider SessionSource, cache Cache, mirror Mirror, logger *logrus.Logger, cacheTTL time.Duration) *Manager {
	return &Manager{
		provider:     provider,
		cache:        cache,
		mirror:       mirror,
		logger:       logger,
		cacheTTL:     cacheTTL,
		sessions:     make(map[uuid.UUID]user.Profile),
		mirrorStates: make(map[uuid.UUID]MirrorState),
		subscribers:  make(map[int]chan Event),
	}
}

// Resolve returns the identity behind a verified token. A cached identity
// is returned synchronously and reconciled against the provider in the
// background; a cold token costs one provider round trip.
func (m *Manager) Resolve(ctx context.Context, token string, id uuid.UUID, email string) (user.Profile, error) {
	m.mu.RLock()
	cached, ok := m.sessions[id]
	m.mu.RUnlock()
	if ok {
		m.reconcileInBackground(token, id)
		return cached, nil
	}

	var fromRedis user.Profile
	if err := m.cache.GetJSON(ctx, cacheKeyPrefix+id.String(), &fromRedis); err == nil && fromRedis.ID == id {
		m.applySessionEvent(Event{Kind: EventTokenRefreshed, Identity: fromRedis})
		m.reconcileInBackground(token, id)
		return fromRedis, nil
	}

	p, err := m.provider.UserFromToken(ctx, token)
	if err != nil {
		return user.Profile{}, err
	}
	m.applySessionEvent(Event{Kind: EventSignedIn, Identity: p})
	return p, nil
}

// TrackSignIn records a session established through the provider's
// signup or login endpoints.
func (m *Manager) TrackSignIn(p user.Profile) {
	m.applySessionEvent(Event{Kind: EventSignedIn, Identity: p})
}

// Logout revokes the provider session and drops local state. A provider
// failure is logged, not retried; the local session is cleared either way.
func (m *Manager) Logout(ctx context.Context, token string, id uuid.UUID) {
	if err := m.provider.SignOut(ctx, token); err != nil {
		m.logger.WithError(err).WithField("user_id", id).Warn("Provider sign-out failed")
	}

	m.mu.RLock()
	p := m.sessions[id]
	m.mu.RUnlock()
	p.ID = id
	m.applySessionEvent(Event{Kind: EventSignedOut, Identity: p})
}

// MirrorStatus reports the mirror task state for an identity.
func (m *Manager) MirrorStatus(id uuid.UUID) (MirrorState, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	state, ok := m.mirrorStates[id]
	return state, ok
}

// Subscribe returns a session event stream and a cancel func.
func (m *Manager) Subscribe() (<-chan Event, func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextSub
	m.nextSub++
	ch := make(chan Event, 16)
	m.subscribers[id] = ch

	cancel := func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if sub, ok := m.subscribers[id]; ok {
			delete(m.subscribers, id)
			close(sub)
		}
	}
	return ch, cancel
}

// Close waits for in-flight background tasks.
func (m *Manager) Close() {
	m.wg.Wait()
}

// applySessionEvent is the single transition path for session state.
func (m *Manager) applySessionEvent(ev Event) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	key := cacheKeyPrefix + ev.Identity.ID.String()

	switch ev.Kind {
	case EventSignedIn, EventTokenRefreshed:
		m.mu.Lock()
		m.sessions[ev.Identity.ID] = ev.Identity
		m.mirrorStates[ev.Identity.ID] = MirrorPending
		m.mu.Unlock()

		if err := m.cache.SetJSON(ctx, key, ev.Identity, m.cacheTTL); err != nil {
			m.logger.WithError(err).Warn("Failed to cache identity")
		}
		m.startMirrorTask(ev.Identity)

	case EventSignedOut:
		m.mu.Lock()
		delete(m.sessions, ev.Identity.ID)
		delete(m.mirrorStates, ev.Identity.ID)
		m.mu.Unlock()

		if err := m.cache.Del(ctx, key); err != nil {
			m.logger.WithError(err).Warn("Failed to clear cached identity")
		}
	}

	m.publish(ev)
}

func (m *Manager) publish(ev Event) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, ch := range m.subscribers {
		select {
		case ch <- ev:
		default:
			// slow subscriber, drop rather than block the transition
		}
	}
}

func (m *Manager) reconcileInBackground(token string, id uuid.UUID) {
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		p, err := m.provider.UserFromToken(ctx, token)
		if err != nil {
			m.logger.WithError(err).WithField("user_id", id).Debug("Background session reconciliation failed")
			return
		}
		m.applySessionEvent(Event{Kind: EventTokenRefreshed, Identity: p})
	}()
}

// startMirrorTask mirrors the identity into the users table with bounded
// retries. Best effort: callers never wait on it, failure is logged and
// observable through MirrorStatus.
func (m *Manager) startMirrorTask(p user.Profile) {
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		backoff := retry.WithMaxRetries(3, retry.NewExponential(100*time.Millisecond))
		err := retry.Do(ctx, backoff, func(ctx context.Context) error {
			if err := m.mirror.EnsureMirrored(ctx, p); err != nil {
				return retry.RetryableError(err)
			}
			return nil
		})

		m.mu.Lock()
		defer m.mu.Unlock()
		if _, active := m.mirrorStates[p.ID]; !active {
			// signed out while mirroring
			return
		}
		if err != nil {
			m.mirrorStates[p.ID] = MirrorFailed
			m.logger.WithError(err).WithField("user_id", p.ID).Warn("User mirror task failed")
			return
		}
		m.mirrorStates[p.ID] = MirrorCompleted
	}()
}
