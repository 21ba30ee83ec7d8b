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

package database

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fatih/color"
	"github.com/uptrace/bun"
)

var bunSqlSilentMode atomic.Bool

// EnableBunSqlSilent mutes every query hook in this package.
func EnableBunSqlSilent(b bool) {
	bunSqlSilentMode.Store(b)
}

var operationColors = map[string]*color.Color{
	"SELECT": color.New(color.FgGreen),
	"INSERT": color.New(color.FgBlue),
	"UPDATE": color.New(color.FgYellow),
	"DELETE": color.New(color.FgMagenta),
}

func colorizeQuery(event *bun.QueryEvent) string {
	if c, ok := operationColors[event.Operation()]; ok {
		return c.Sprint(event.Query)
	}
	return color.RedString(event.Query)
}

// QueryHook writes executed queries to a Logger at debug level and failed
// ones at error level. The env variable named by envName overrides enabled:
// "0" or empty disables, "2" also logs successful queries verbosely.
type QueryHook struct {
	envName string
	enabled bool
	verbose bool
	logger  Logger
}

var _ bun.QueryHook = (*QueryHook)(nil)

// NewQueryHook returns a QueryHook reading overrides from envName.
func NewQueryHook(envName string, enabled, verbose bool, logger Logger) *QueryHook {
	if logger == nil {
		logger = GetLogger()
	}
	return &QueryHook{envName: envName, enabled: enabled, verbose: verbose, logger: logger}
}

func (h *QueryHook) BeforeQuery(ctx context.Context, _ *bun.QueryEvent) context.Context {
	return ctx
}

func (h *QueryHook) AfterQuery(_ context.Context, event *bun.QueryEvent) {
	if bunSqlSilentMode.Load() {
		return
	}
	enabled, verbose := h.enabled, h.verbose
	if env, ok := os.LookupEnv(h.envName); ok {
		enabled = env != "" && env != "0"
		verbose = env == "2"
	}
	if !enabled {
		return
	}

	dur := time.Since(event.StartTime).Round(time.Microsecond)
	switch {
	case event.Err == nil, errors.Is(event.Err, sql.ErrNoRows), errors.Is(event.Err, sql.ErrTxDone):
		if verbose {
			h.logger.Debug("[BUN] "+colorizeQuery(event), "duration", dur)
		}
	default:
		h.logger.Error("[BUN] "+colorizeQuery(event), "duration", dur, "error", event.Err)
	}
}

// SlowQueryHook warns about successful queries slower than slowTime.
type SlowQueryHook struct {
	fromEnv  string
	slowTime time.Duration
	logger   Logger
}

var _ bun.QueryHook = (*SlowQueryHook)(nil)

// NewSlowQueryHook returns a hook reporting queries slower than slowTime.
// Setting BUN_SLOW_QUERY to anything but "1" disables it.
func NewSlowQueryHook(slowTime time.Duration, logger Logger) *SlowQueryHook {
	if logger == nil {
		logger = GetLogger()
	}
	return &SlowQueryHook{fromEnv: "BUN_SLOW_QUERY", slowTime: slowTime, logger: logger}
}

func (h *SlowQueryHook) BeforeQuery(ctx context.Context, _ *bun.QueryEvent) context.Context {
	return ctx
}

func (h *SlowQueryHook) AfterQuery(_ context.Context, event *bun.QueryEvent) {
	if bunSqlSilentMode.Load() || event.Err != nil {
		return
	}
	if env, ok := os.LookupEnv(h.fromEnv); ok && strings.TrimSpace(env) != "1" {
		return
	}
	if duration := time.Since(event.StartTime); duration > h.slowTime {
		h.logger.Warn("[BUN_SLOW] "+color.New(color.BgYellow).Sprint(event.Query),
			"duration", duration.Round(time.Microsecond),
			"slow_threshold", h.slowTime,
		)
	}
}
