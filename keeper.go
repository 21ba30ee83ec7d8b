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

// Package keeper is an audited data-access layer over bun with a
// cache-aside helper.
//
// Setup loads the configuration, connects the global database and opens
// the cache. NewService then gives a repository-backed Service per entity
// type.
package keeper

import (
	"context"
	"io"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/tomoncle/keeper/cache"
	"github.com/tomoncle/keeper/config"
	"github.com/tomoncle/keeper/database"
	"github.com/tomoncle/keeper/metadata"
)

var (
	cacheMu      sync.RWMutex
	cacheService *cache.Service
)

// Setup loads the configuration at path, connects the global database,
// creates registered tables, loads table column descriptors and opens the
// cache when configured to.
func Setup(ctx context.Context, path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	cfg.ApplyLogging()

	db, err := database.InitDB(ctx, &cfg.Database)
	if err != nil {
		return nil, errors.Wrap(err, "setup database")
	}
	if file := cfg.Database.BootstrapConfig.TableColumnsFile; file != "" {
		n, err := metadata.LoadAndSave(ctx, db, file)
		if err != nil {
			_ = database.CloseDB()
			return nil, errors.Wrap(err, "setup table columns")
		}
		database.GetLogger().Info("table columns loaded", "file", file, "tables", n)
	}

	store, err := cache.NewStore(ctx, cfg.Cache)
	if err != nil {
		_ = database.CloseDB()
		return nil, errors.Wrap(err, "setup cache")
	}
	SetCache(cache.NewService(store, cache.WithDefaultTTL(cfg.Cache.DefaultTTL)))
	return cfg, nil
}

// Cache returns the global cache service. Before Setup it is an in-process
// cache with the default settings.
func Cache() *cache.Service {
	cacheMu.RLock()
	svc := cacheService
	cacheMu.RUnlock()
	if svc != nil {
		return svc
	}

	cacheMu.Lock()
	defer cacheMu.Unlock()
	if cacheService == nil {
		cacheService = cache.NewService(cache.NewMemoryStore(cache.DefaultConfig().Memory))
	}
	return cacheService
}

// SetCache replaces the global cache service.
func SetCache(svc *cache.Service) {
	cacheMu.Lock()
	defer cacheMu.Unlock()
	cacheService = svc
}

// Close releases the global database and the cache store it opened.
func Close() error {
	cacheMu.Lock()
	svc := cacheService
	cacheService = nil
	cacheMu.Unlock()

	var errs error
	if svc != nil {
		if closer, ok := svc.Store().(io.Closer); ok {
			errs = errors.CombineErrors(errs, closer.Close())
		}
	}
	return errors.CombineErrors(errs, database.CloseDB())
}
