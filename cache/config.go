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
	"time"

	"github.com/cockroachdb/errors"
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// ErrInvalidConfig marks cache configuration errors.
var ErrInvalidConfig = errors.New("invalid cache config")

// Config selects and configures the cache backend.
type Config struct {
	Backend    string        `mapstructure:"backend" yaml:"backend"`
	RedisURL   string        `mapstructure:"redis_url" yaml:"redis_url"`
	DefaultTTL time.Duration `mapstructure:"default_ttl" yaml:"default_ttl"`
	Memory     MemoryConfig  `mapstructure:"memory" yaml:"memory"`
}

// MemoryConfig sizes the in-process backend.
type MemoryConfig struct {
	Capacity           int           `mapstructure:"capacity" yaml:"capacity"`
	NumShards          int           `mapstructure:"num_shards" yaml:"num_shards"`
	TTL                time.Duration `mapstructure:"ttl" yaml:"ttl"`
	EvictionPercentage int           `mapstructure:"eviction_percentage" yaml:"eviction_percentage"`
	EvictionInterval   time.Duration `mapstructure:"eviction_interval" yaml:"eviction_interval"`
}

// DefaultConfig returns an in-process cache with a five minute TTL.
func DefaultConfig() Config {
	return Config{
		Backend:    BackendMemory,
		DefaultTTL: 5 * time.Minute,
		Memory: MemoryConfig{
			Capacity:           10000,
			NumShards:          64,
			TTL:                5 * time.Minute,
			EvictionPercentage: 10,
		},
	}
}

func (c Config) Validate() error {
	err := validation.ValidateStruct(&c,
		validation.Field(&c.Backend, validation.Required, validation.In(BackendMemory, BackendRedis)),
		validation.Field(&c.RedisURL, validation.When(c.Backend == BackendRedis, validation.Required)),
		validation.Field(&c.DefaultTTL, validation.Min(time.Duration(0))),
		validation.Field(&c.Memory, validation.Skip.When(c.Backend != BackendMemory)),
	)
	if err != nil {
		return errors.Mark(errors.Wrap(err, "cache"), ErrInvalidConfig)
	}
	return nil
}

func (c MemoryConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Capacity, validation.Required, validation.Min(1)),
		validation.Field(&c.NumShards, validation.Required, validation.Min(1)),
		validation.Field(&c.TTL, validation.Required, validation.Min(time.Duration(1))),
		validation.Field(&c.EvictionPercentage, validation.Required, validation.Min(1), validation.Max(100)),
		validation.Field(&c.EvictionInterval, validation.Min(time.Duration(0))),
	)
}

// NewStore validates cfg and opens the selected backend. A Redis backend is
// pinged before it is returned.
func NewStore(ctx context.Context, cfg Config) (Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch cfg.Backend {
	case BackendRedis:
		client, err := NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		return &RedisStore{client: client, owned: true}, nil
	default:
		return NewMemoryStore(cfg.Memory), nil
	}
}
