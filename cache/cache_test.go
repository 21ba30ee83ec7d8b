/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/cockroachdb/errors"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type profile struct {
	Name  string   `json:"name"`
	Roles []string `json:"roles"`
}

func newRedisService(t *testing.T) (*Service, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewService(NewRedisStore(client), WithDefaultTTL(time.Minute)), mr
}

func newMemoryService(t *testing.T) *Service {
	t.Helper()
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	return NewService(NewMemoryStore(cfg.Memory))
}

func TestGetOrAddPopulatesColdCacheOnce(t *testing.T) {
	for name, svc := range map[string]*Service{
		"redis":  func() *Service { s, _ := newRedisService(t); return s }(),
		"memory": newMemoryService(t),
	} {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			want := profile{Name: "alice", Roles: []string{"admin"}}

			got, err := GetOrAdd(ctx, svc, "profile:1", func(context.Context) (profile, error) {
				return want, nil
			})
			require.NoError(t, err)
			assert.Equal(t, want, got)

			got, err = GetOrAdd(ctx, svc, "profile:1", func(context.Context) (profile, error) {
				panic("populate must not run on a hit")
			})
			require.NoError(t, err)
			assert.Equal(t, want, got)

			ok, err := svc.Exists(ctx, "profile:1")
			require.NoError(t, err)
			assert.True(t, ok)

			removed, err := svc.Remove(ctx, "profile:1")
			require.NoError(t, err)
			assert.True(t, removed)
			removed, err = svc.Remove(ctx, "profile:1")
			require.NoError(t, err)
			assert.False(t, removed)
		})
	}
}

func TestGetOrAddDoesNotStoreZeroValues(t *testing.T) {
	ctx := context.Background()
	svc, mr := newRedisService(t)

	calls := 0
	populate := func(context.Context) (int, error) {
		calls++
		return 0, nil
	}
	for i := 0; i < 2; i++ {
		v, err := GetOrAdd(ctx, svc, "counter", populate)
		require.NoError(t, err)
		assert.Zero(t, v)
	}
	assert.Equal(t, 2, calls)
	assert.False(t, mr.Exists("counter"))
}

func TestStoredZeroValueIsAMiss(t *testing.T) {
	ctx := context.Background()
	svc, mr := newRedisService(t)
	require.NoError(t, mr.Set("name", `""`))

	v, err := GetOrAdd(ctx, svc, "name", func(context.Context) (string, error) { return "bob", nil })
	require.NoError(t, err)
	assert.Equal(t, "bob", v)

	got, err := mr.Get("name")
	require.NoError(t, err)
	assert.Equal(t, `"bob"`, got)
}

func TestUndecodableEntryIsAMiss(t *testing.T) {
	ctx := context.Background()
	svc, mr := newRedisService(t)
	require.NoError(t, mr.Set("profile", "not json"))

	_, ok, err := Get[profile](ctx, svc, "profile")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGetOrAddPropagatesPopulateError(t *testing.T) {
	svc, mr := newRedisService(t)
	boom := errors.New("source down")
	_, err := GetOrAdd(context.Background(), svc, "k", func(context.Context) (string, error) { return "partial", boom })
	assert.ErrorIs(t, err, boom)
	assert.False(t, mr.Exists("k"))
}

func TestTTL(t *testing.T) {
	ctx := context.Background()
	svc, mr := newRedisService(t)

	require.NoError(t, Set(ctx, svc, "short", "v", 10*time.Second))
	require.NoError(t, Set(ctx, svc, "default", "v"))
	assert.Equal(t, 10*time.Second, mr.TTL("short"))
	assert.Equal(t, time.Minute, mr.TTL("default"))

	mr.FastForward(11 * time.Second)
	_, ok, err := Get[string](ctx, svc, "short")
	require.NoError(t, err)
	assert.False(t, ok)
	v, ok, err := Get[string](ctx, svc, "default")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", v)
}

// Concurrent misses are not collapsed: both callers run populate.
func TestGetOrAddHasNoSingleFlight(t *testing.T) {
	ctx := context.Background()
	svc, _ := newRedisService(t)

	var calls atomic.Int32
	started := make(chan struct{}, 2)
	release := make(chan struct{})
	populate := func(context.Context) (string, error) {
		calls.Add(1)
		started <- struct{}{}
		<-release
		return "value", nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := GetOrAdd(ctx, svc, "shared", populate)
			assert.NoError(t, err)
			assert.Equal(t, "value", v)
		}()
	}
	for i := 0; i < 2; i++ {
		select {
		case <-started:
		case <-time.After(5 * time.Second):
			close(release)
			t.Fatal("populate was not invoked by both callers")
		}
	}
	close(release)
	wg.Wait()
	assert.Equal(t, int32(2), calls.Load())
}

func TestRedisStoreSurfacesConnectionErrors(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	store := NewRedisStore(client)
	mr.Close()

	_, _, err := store.Get(context.Background(), "k")
	assert.Error(t, err)
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())

	cfg := DefaultConfig()
	cfg.Backend = "memcached"
	assert.True(t, errors.Is(cfg.Validate(), ErrInvalidConfig))

	cfg = DefaultConfig()
	cfg.Backend = BackendRedis
	assert.Error(t, cfg.Validate())
	cfg.RedisURL = "redis://localhost:6379/0"
	cfg.Memory = MemoryConfig{}
	assert.NoError(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Memory.EvictionPercentage = 150
	assert.Error(t, cfg.Validate())
}

func TestNewStore(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)

	store, err := NewStore(ctx, Config{Backend: BackendRedis, RedisURL: "redis://" + mr.Addr()})
	require.NoError(t, err)
	rs, ok := store.(*RedisStore)
	require.True(t, ok)
	require.NoError(t, rs.Set(ctx, "k", []byte("v"), 0))
	assert.True(t, mr.Exists("k"))
	require.NoError(t, rs.Close())

	store, err = NewStore(ctx, DefaultConfig())
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, store)

	_, err = NewStore(ctx, Config{Backend: BackendRedis, RedisURL: "://bad"})
	assert.Error(t, err)
}
