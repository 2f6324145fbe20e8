package identity

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devanagari-foods/storefront/internal/domain/user"
)

type fakeProvider struct {
	mu         sync.Mutex
	profile    user.Profile
	userCalls  int
	signOuts   int
	signOutErr error
}

func (f *fakeProvider) UserFromToken(ctx context.Context, token string) (user.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.userCalls++
	return f.profile, nil
}

func (f *fakeProvider) SignOut(ctx context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.signOuts++
	return f.signOutErr
}

type fakeCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: make(map[string][]byte)}
}

func (f *fakeCache) SetJSON(ctx context.Context, key string, value interface{}, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[key] = raw
	return nil
}

func (f *fakeCache) GetJSON(ctx context.Context, key string, dest interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	raw, ok := f.data[key]
	if !ok {
		return redis.Nil
	}
	return json.Unmarshal(raw, dest)
}

func (f *fakeCache) Del(ctx context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, k := range keys {
		delete(f.data, k)
	}
	return nil
}

func (f *fakeCache) has(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.data[key]
	return ok
}

type fakeMirror struct {
	mu       sync.Mutex
	calls    int
	failures int
}

func (f *fakeMirror) EnsureMirrored(ctx context.Context, p user.Profile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.calls <= f.failures {
		return errors.New("users table unavailable")
	}
	return nil
}

func (f *fakeMirror) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func testProfile() user.Profile {
	return user.Profile{
		ID:       uuid.New(),
		Email:    "asha@example.com",
		FullName: "Asha Rao",
	}
}

func newTestManager(p *fakeProvider, c *fakeCache, m *fakeMirror) *Manager {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return NewManager(p, c, m, logger, time.Hour)
}

func TestResolveColdTokenHitsProvider(t *testing.T) {
	profile := testProfile()
	provider := &fakeProvider{profile: profile}
	cache := newFakeCache()
	mirror := &fakeMirror{}
	m := newTestManager(provider, cache, mirror)

	got, err := m.Resolve(context.Background(), "tok", profile.ID, profile.Email)
	require.NoError(t, err)
	assert.Equal(t, profile, got)
	assert.Equal(t, 1, provider.userCalls)
	assert.True(t, cache.has(cacheKeyPrefix+profile.ID.String()))

	m.Close()
	state, ok := m.MirrorStatus(profile.ID)
	require.True(t, ok)
	assert.Equal(t, MirrorCompleted, state)
	assert.Equal(t, 1, mirror.callCount())
}

func TestResolveReturnsCachedSynchronously(t *testing.T) {
	profile := testProfile()
	provider := &fakeProvider{profile: profile}
	cache := newFakeCache()
	m := newTestManager(provider, cache, &fakeMirror{})

	m.TrackSignIn(profile)
	m.Close()

	got, err := m.Resolve(context.Background(), "tok", profile.ID, profile.Email)
	require.NoError(t, err)
	assert.Equal(t, profile, got)

	// the provider is only consulted by the background reconciliation
	m.Close()
	assert.Equal(t, 1, provider.userCalls)
}

func TestResolveWarmsFromRedisCache(t *testing.T) {
	profile := testProfile()
	provider := &fakeProvider{profile: profile}
	cache := newFakeCache()
	m := newTestManager(provider, cache, &fakeMirror{})

	require.NoError(t, cache.SetJSON(context.Background(), cacheKeyPrefix+profile.ID.String(), profile, time.Hour))

	got, err := m.Resolve(context.Background(), "tok", profile.ID, profile.Email)
	require.NoError(t, err)
	assert.Equal(t, profile, got)
}

func TestMirrorRetriesTransientFailures(t *testing.T) {
	profile := testProfile()
	mirror := &fakeMirror{failures: 2}
	m := newTestManager(&fakeProvider{profile: profile}, newFakeCache(), mirror)

	m.TrackSignIn(profile)
	m.Close()

	state, ok := m.MirrorStatus(profile.ID)
	require.True(t, ok)
	assert.Equal(t, MirrorCompleted, state)
	assert.Equal(t, 3, mirror.callCount())
}

func TestMirrorGivesUpAfterBoundedRetries(t *testing.T) {
	profile := testProfile()
	mirror := &fakeMirror{failures: 10}
	m := newTestManager(&fakeProvider{profile: profile}, newFakeCache(), mirror)

	m.TrackSignIn(profile)
	m.Close()

	state, ok := m.MirrorStatus(profile.ID)
	require.True(t, ok)
	assert.Equal(t, MirrorFailed, state)
	// initial attempt plus three retries
	assert.Equal(t, 4, mirror.callCount())
}

func TestLogoutClearsStateEvenWhenProviderFails(t *testing.T) {
	profile := testProfile()
	provider := &fakeProvider{profile: profile, signOutErr: errors.New("provider down")}
	cache := newFakeCache()
	m := newTestManager(provider, cache, &fakeMirror{})

	m.TrackSignIn(profile)
	m.Close()
	require.True(t, cache.has(cacheKeyPrefix+profile.ID.String()))

	m.Logout(context.Background(), "tok", profile.ID)

	assert.Equal(t, 1, provider.signOuts)
	assert.False(t, cache.has(cacheKeyPrefix+profile.ID.String()))
	_, ok := m.MirrorStatus(profile.ID)
	assert.False(t, ok)
}

func TestSubscribeObservesTransitions(t *testing.T) {
	profile := testProfile()
	provider := &fakeProvider{profile: profile}
	m := newTestManager(provider, newFakeCache(), &fakeMirror{})

	events, cancel := m.Subscribe()
	defer cancel()

	m.TrackSignIn(profile)
	m.Logout(context.Background(), "tok", profile.ID)
	m.Close()

	ev := <-events
	assert.Equal(t, EventSignedIn, ev.Kind)
	assert.Equal(t, profile.ID, ev.Identity.ID)

	ev = <-events
	assert.Equal(t, EventSignedOut, ev.Kind)
}
