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
	"encoding/json"
	"reflect"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/tomoncle/keeper/database"
)

// DefaultTTL applies when neither the call nor the service names one.
const DefaultTTL = 5 * time.Minute

// Service is a cache-aside helper over a Store. Values are stored as JSON.
type Service struct {
	store  Store
	ttl    time.Duration
	logger database.Logger
}

type ServiceOption func(*Service)

// WithDefaultTTL sets the TTL used when a call passes none.
func WithDefaultTTL(ttl time.Duration) ServiceOption {
	return func(s *Service) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

func WithLogger(logger database.Logger) ServiceOption {
	return func(s *Service) { s.logger = logger }
}

// NewService returns a Service over store. The store is not owned.
func NewService(store Store, opts ...ServiceOption) *Service {
	s := &Service{store: store, ttl: DefaultTTL}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = database.GetLogger()
	}
	return s
}

func (s *Service) Store() Store { return s.store }

// Remove deletes key and reports whether it existed.
func (s *Service) Remove(ctx context.Context, key string) (bool, error) {
	return s.store.Delete(ctx, key)
}

func (s *Service) Exists(ctx context.Context, key string) (bool, error) {
	return s.store.Exists(ctx, key)
}

func (s *Service) ttlOf(ttl []time.Duration) time.Duration {
	if len(ttl) > 0 && ttl[0] > 0 {
		return ttl[0]
	}
	return s.ttl
}

// Get decodes the value of key. A missing, undecodable or zero value is
// reported as a miss.
func Get[T any](ctx context.Context, s *Service, key string) (T, bool, error) {
	var zero T
	b, ok, err := s.store.Get(ctx, key)
	if err != nil || !ok {
		return zero, false, err
	}
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		s.logger.Warn("cache entry is not decodable", "key", key, "error", err)
		return zero, false, nil
	}
	if isZero(v) {
		return zero, false, nil
	}
	return v, true, nil
}

// Set encodes value and writes it under key with the given or default TTL.
func Set[T any](ctx context.Context, s *Service, key string, value T, ttl ...time.Duration) error {
	b, err := json.Marshal(value)
	if err != nil {
		return errors.Wrapf(err, "encode cache entry %s", key)
	}
	return s.store.Set(ctx, key, b, s.ttlOf(ttl))
}

// GetOrAdd returns the cached value of key. On a miss it calls populate and
// caches the result unless it is the zero value. Concurrent misses on the
// same key each call populate.
func GetOrAdd[T any](ctx context.Context, s *Service, key string, populate func(context.Context) (T, error), ttl ...time.Duration) (T, error) {
	v, ok, err := Get[T](ctx, s, key)
	if err != nil {
		return v, err
	}
	if ok {
		return v, nil
	}

	v, err = populate(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	if isZero(v) {
		return v, nil
	}
	if err := Set(ctx, s, key, v, ttl...); err != nil {
		s.logger.Error("cache write failed", "key", key, "error", err)
		return v, err
	}
	return v, nil
}

func isZero[T any](v T) bool {
	return reflect.ValueOf(&v).Elem().IsZero()
}
