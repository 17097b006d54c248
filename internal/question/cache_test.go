package question

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func sampleSet() Set {
	return Set{{ID: "q1", Text: "2+2?", CorrectAnswer: "4", IncorrectAnswers: []string{"3", "5"}}}
}

func TestCachedProviderStoresAndReplays(t *testing.T) {
	mr, client := newTestRedis(t)
	var calls int32
	upstream := ProviderFunc(func(ctx context.Context) (Set, error) {
		atomic.AddInt32(&calls, 1)
		return sampleSet(), nil
	})
	key := CacheKey(ServiceOptions{Source: SourceTriviaAPI, Limit: 10})
	cached := NewCachedProvider(upstream, client, key, time.Minute, zerolog.Nop())

	first, err := cached.Fetch(context.Background())
	require.NoError(t, err)
	assert.True(t, mr.Exists(key))

	second, err := cached.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))

	mr.FastForward(2 * time.Minute)
	_, err = cached.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestCachedProviderDoesNotCacheFailuresOrEmptySets(t *testing.T) {
	mr, client := newTestRedis(t)
	key := "questionset:test"

	failing := NewCachedProvider(ProviderFunc(func(ctx context.Context) (Set, error) {
		return nil, errors.New("boom")
	}), client, key, time.Minute, zerolog.Nop())
	_, err := failing.Fetch(context.Background())
	assert.EqualError(t, err, "boom")
	assert.False(t, mr.Exists(key))

	empty := NewCachedProvider(ProviderFunc(func(ctx context.Context) (Set, error) {
		return Set{}, nil
	}), client, key, time.Minute, zerolog.Nop())
	set, err := empty.Fetch(context.Background())
	require.NoError(t, err)
	assert.Empty(t, set)
	assert.False(t, mr.Exists(key))
}

func TestCachedProviderFallsThroughOnCorruptEntry(t *testing.T) {
	mr, client := newTestRedis(t)
	key := "questionset:corrupt"
	require.NoError(t, mr.Set(key, "{not json"))

	cached := NewCachedProvider(ProviderFunc(func(ctx context.Context) (Set, error) {
		return sampleSet(), nil
	}), client, key, time.Minute, zerolog.Nop())

	set, err := cached.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, sampleSet(), set)
}

func TestCacheKeyIncludesFilters(t *testing.T) {
	key := CacheKey(ServiceOptions{Source: SourceOpenTDB, Limit: 5, Category: "music", Difficulty: "hard"})
	assert.Equal(t, "questionset:opentdb:5:music:hard", key)
}

func TestCachedProviderSharesInFlightFetch(t *testing.T) {
	mr, client := newTestRedis(t)
	var calls int32
	started := make(chan struct{})
	release := make(chan struct{})
	upstream := ProviderFunc(func(ctx context.Context) (Set, error) {
		if atomic.AddInt32(&calls, 1) == 1 {
			close(started)
		}
		select {
		case <-release:
			return sampleSet(), nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	})
	key := "questionset:shared"
	cached := NewCachedProvider(upstream, client, key, time.Minute, zerolog.Nop())

	type result struct {
		set Set
		err error
	}
	firstCtx, cancelFirst := context.WithCancel(context.Background())
	first := make(chan result, 1)
	go func() {
		set, err := cached.Fetch(firstCtx)
		first <- result{set, err}
	}()
	<-started

	second := make(chan result, 1)
	go func() {
		set, err := cached.Fetch(context.Background())
		second <- result{set, err}
	}()
	// Let the second caller join the call before anything settles.
	time.Sleep(50 * time.Millisecond)

	cancelFirst()
	select {
	case res := <-first:
		assert.ErrorIs(t, res.err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("cancelled caller did not return")
	}

	close(release)
	select {
	case res := <-second:
		require.NoError(t, res.err)
		assert.Equal(t, sampleSet(), res.set)
	case <-time.After(2 * time.Second):
		t.Fatal("waiting caller did not return")
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.True(t, mr.Exists(key))
}

func TestCachedProviderCollapsesConcurrentCallers(t *testing.T) {
	_, client := newTestRedis(t)
	var calls int32
	release := make(chan struct{})
	upstream := ProviderFunc(func(ctx context.Context) (Set, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return sampleSet(), nil
	})
	cached := NewCachedProvider(upstream, client, "questionset:collapse", time.Minute, zerolog.Nop())

	const callers = 5
	errs := make(chan error, callers)
	for i := 0; i < callers; i++ {
		go func() {
			_, err := cached.Fetch(context.Background())
			errs <- err
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(release)

	for i := 0; i < callers; i++ {
		require.NoError(t, <-errs)
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}
