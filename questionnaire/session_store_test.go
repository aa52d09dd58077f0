package questionnaire

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleState(t *testing.T) State {
	t.Helper()
	m := New(testSurvey(), testMeta(), nil)
	require.NoError(t, m.Choose(1))
	require.NoError(t, m.Choose(4))
	require.NoError(t, m.Toggle([]uint{6}))
	return m.Snapshot()
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(time.Minute)
	t.Cleanup(s.Stop)
	now := time.Now()
	s.now = func() time.Time { return now }

	_, err := s.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	st := sampleState(t)
	require.NoError(t, s.Put(ctx, "abc", &st))
	got, err := s.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, 2, got.Index)

	now = now.Add(2 * time.Minute)
	_, err = s.Get(ctx, "abc")
	assert.ErrorIs(t, err, ErrSessionNotFound, "entry should expire after ttl")

	require.NoError(t, s.Put(ctx, "abc", &st))
	require.NoError(t, s.Delete(ctx, "abc"))
	_, err = s.Get(ctx, "abc")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestMemoryStoreSweepsExpiredSessions(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(time.Minute)
	t.Cleanup(s.Stop)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	st := sampleState(t)
	for i := 0; i < 1000; i++ {
		require.NoError(t, s.Put(ctx, fmt.Sprintf("abandoned-%d", i), &st))
	}
	now = now.Add(time.Hour)
	require.NoError(t, s.Put(ctx, "fresh", &st))
	require.Equal(t, 1001, s.Len())

	s.sweep()

	assert.Equal(t, 1, s.Len())
	_, err := s.Get(ctx, "fresh")
	assert.NoError(t, err)
}

func TestMemoryStoreStopIsIdempotent(t *testing.T) {
	s := NewMemoryStore(time.Minute)
	assert.NotPanics(t, func() {
		s.Stop()
		s.Stop()
	})
	assert.NotPanics(t, NewMemoryStore(0).Stop)
}

func newTestRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisStore(client, "qs:", time.Hour), mr
}

func TestRedisStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, mr := newTestRedisStore(t)

	st := sampleState(t)
	require.NoError(t, s.Put(ctx, "abc", &st))
	assert.True(t, mr.Exists("qs:abc"))
	assert.Equal(t, time.Hour, mr.TTL("qs:abc"))

	got, err := s.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, st.Index, got.Index)
	assert.Equal(t, st.Answers, got.Answers)
	require.NotNil(t, got.Survey)
	assert.Equal(t, st.Survey.Questions[2].Type, got.Survey.Questions[2].Type)

	m := Restore(*got, nil)
	require.NoError(t, m.Toggle([]uint{6, 7}))
	a, _ := m.Answer(2)
	assert.Equal(t, "Price,Quality", a)
}

func TestRedisStoreExpiryAndDelete(t *testing.T) {
	ctx := context.Background()
	s, mr := newTestRedisStore(t)

	_, err := s.Get(ctx, "nope")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	st := sampleState(t)
	require.NoError(t, s.Put(ctx, "abc", &st))
	mr.FastForward(2 * time.Hour)
	_, err = s.Get(ctx, "abc")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	require.NoError(t, s.Put(ctx, "abc", &st))
	require.NoError(t, s.Delete(ctx, "abc"))
	assert.False(t, mr.Exists("qs:abc"))
}
