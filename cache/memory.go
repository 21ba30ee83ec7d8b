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

	"github.com/viccon/sturdyc"
)

// MemoryStore is an in-process Store backed by sturdyc. Every entry lives
// for the client TTL; the per-call ttl is ignored.
type MemoryStore struct {
	client *sturdyc.Client[[]byte]
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore builds the sturdyc client from cfg. Call cfg.Validate first
// when the values come from outside.
func NewMemoryStore(cfg MemoryConfig) *MemoryStore {
	var opts []sturdyc.Option
	if cfg.EvictionInterval > 0 {
		opts = append(opts, sturdyc.WithEvictionInterval(cfg.EvictionInterval))
	}
	return &MemoryStore{
		client: sturdyc.New[[]byte](cfg.Capacity, cfg.NumShards, cfg.TTL, cfg.EvictionPercentage, opts...),
	}
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := s.client.Get(key)
	return v, ok, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	s.client.Set(key, value)
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) (bool, error) {
	_, ok := s.client.Get(key)
	s.client.Delete(key)
	return ok, nil
}

func (s *MemoryStore) Exists(_ context.Context, key string) (bool, error) {
	_, ok := s.client.Get(key)
	return ok, nil
}

// Size returns the number of entries held, expired ones included until evicted.
func (s *MemoryStore) Size() int { return s.client.Size() }
