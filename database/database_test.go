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
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type recordingLogger struct {
	mu      sync.Mutex
	entries []string
}

func (l *recordingLogger) record(level, msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, level+" "+msg)
}

func (l *recordingLogger) SetLevel(LogLevel) {}

func (l *recordingLogger) Debug(msg string, _ ...interface{}) { l.record("debug", msg) }

func (l *recordingLogger) Info(msg string, _ ...interface{}) { l.record("info", msg) }

func (l *recordingLogger) Warn(msg string, _ ...interface{}) { l.record("warn", msg) }

func (l *recordingLogger) Error(msg string, _ ...interface{}) { l.record("error", msg) }

func (l *recordingLogger) has(prefix string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, e := range l.entries {
		if len(e) >= len(prefix) && e[:len(prefix)] == prefix {
			return true
		}
	}
	return false
}

type item struct {
	bun.BaseModel `bun:"table:items"`

	ID   int64  `bun:"id,pk,autoincrement"`
	Name string `bun:"name,unique,notnull"`
}

func TestIsSqlError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		is   bool
		kind SQLError
	}{
		{"nil", nil, false, UnknownErr},
		{"no rows", fmt.Errorf("select: %w", sql.ErrNoRows), true, NoRowsErr},
		{"pgx", &pgconn.PgError{Code: "23505"}, true, DuplicateKeyErr},
		{"pq", &pq.Error{Code: "42P01"}, true, NoTableErr},
		{"mysql", &mysql.MySQLError{Number: 1048}, true, NotNullViolationErr},
		{"sqlite", fmt.Errorf("UNIQUE constraint failed: items.name"), true, DuplicateKeyErr},
		{"other", fmt.Errorf("connection reset"), false, UnknownErr},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			is, kind := IsSqlError(tt.err)
			assert.Equal(t, tt.is, is)
			assert.Equal(t, tt.kind, kind)
		})
	}
	assert.Equal(t, "duplicate_key", DuplicateKeyErr.String())
	assert.Equal(t, "unknown", SQLError(99).String())
}

func TestModelRegistryOrdersByPriority(t *testing.T) {
	r := newModelRegistry()
	r.Register(NewModelAdapter("late", 30))
	r.Register(NewModelAdapter("early", 10))
	r.Register(NewModelAdapter("middle", 20))

	var got []interface{}
	for _, m := range r.Models() {
		got = append(got, m.Instance())
	}
	assert.Equal(t, []interface{}{"early", "middle", "late"}, got)
}

func newSQLiteManager(t *testing.T) AbstractDatabaseManager {
	t.Helper()
	cfg := DefaultConnectionConfig()
	cfg.Type = TypeSQLite
	cfg.DBName = fmt.Sprintf("file:manager_%d?mode=memory&cache=shared", time.Now().UnixNano())
	m := NewDatabaseManager(cfg)
	require.NoError(t, m.Connect(context.Background()))
	t.Cleanup(func() { _ = m.Disconnect() })
	return m
}

func TestSQLiteManager(t *testing.T) {
	ctx := context.Background()
	m := newSQLiteManager(t)

	require.NoError(t, m.Ping(ctx))
	status := m.HealthCheck(ctx)
	assert.True(t, status.Healthy)
	assert.True(t, status.Connected)
	assert.Equal(t, 1, status.MaxOpenConns)

	db := m.GetDB()
	require.NoError(t, CreateTables(ctx, db, nil, (*item)(nil)))
	require.NoError(t, CreateTables(ctx, db, nil, (*item)(nil)), "creating twice is a no-op")

	_, err := db.NewInsert().Model(&item{Name: "a"}).Exec(ctx)
	require.NoError(t, err)
	_, err = db.NewInsert().Model(&item{Name: "a"}).Exec(ctx)
	is, kind := IsSqlError(err)
	assert.True(t, is)
	assert.Equal(t, DuplicateKeyErr, kind)

	assert.Equal(t, 1, m.GetStats().MaxOpenConns)
	require.NoError(t, m.Disconnect())
	assert.Error(t, m.Ping(ctx))
	assert.False(t, m.HealthCheck(ctx).Healthy)
}

func TestSQLiteDSN(t *testing.T) {
	dsn := func(name string) string {
		return (&defaultDatabaseManager{config: &ConnectionConfig{DBName: name}}).sqliteDSN()
	}
	assert.Equal(t, "file::memory:?cache=shared", dsn(""))
	assert.Equal(t, "file::memory:?cache=shared", dsn(":memory:"))
	assert.Equal(t, "app.db", dsn("app"))
	assert.Equal(t, "app.db", dsn("app.db"))
}

func TestFactoryRejectsUnknownType(t *testing.T) {
	_, err := NewDatabaseFactory().CreateFromConfig(&ConnectionConfig{Type: "oracle"})
	assert.Error(t, err)
	_, err = NewDatabaseFactory().CreateFromConfig(nil)
	assert.Error(t, err)
}

func TestOverrideFromEnv(t *testing.T) {
	t.Setenv("DB_TYPE", "postgres")
	t.Setenv("DB_DRIVER", "pgx")
	t.Setenv("DB_PORT", "6432")
	t.Setenv("DB_CONN_MAX_LIFETIME", "60")
	t.Setenv("DB_ENABLE_QUERY_LOG", "true")

	cfg := DefaultConnectionConfig()
	overrideFromEnv(cfg)
	assert.Equal(t, TypePostgres, cfg.Type)
	assert.Equal(t, DriverPGX, cfg.Driver)
	assert.Equal(t, 6432, cfg.Port)
	assert.Equal(t, time.Minute, cfg.ConnMaxLifetime)
	assert.True(t, cfg.EnableQueryLog)
}

func TestQueryHooksLogThroughLogger(t *testing.T) {
	ctx := context.Background()
	m := newSQLiteManager(t)
	db := m.GetDB()

	logger := &recordingLogger{}
	db.AddQueryHook(NewQueryHook("KEEPER_TEST_QUERY_LOG", true, true, logger))
	db.AddQueryHook(NewSlowQueryHook(0, logger))

	_, err := db.ExecContext(ctx, "SELECT 1")
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, "SELECT * FROM no_such_table")
	require.Error(t, err)

	assert.True(t, logger.has("debug [BUN]"))
	assert.True(t, logger.has("error [BUN]"))
	assert.True(t, logger.has("warn [BUN_SLOW]"))

	EnableBunSqlSilent(true)
	defer EnableBunSqlSilent(false)
	logger.entries = nil
	_, err = db.ExecContext(ctx, "SELECT 1")
	require.NoError(t, err)
	assert.Empty(t, logger.entries)
}

func TestZapLogger(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := NewZapLogger(zap.New(core))

	l.Debug("visible", "id", 1)
	l.SetLevel(LogLevelWarn)
	l.Info("hidden")
	l.Warn("warned", "key", "v")

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "visible", entries[0].Message)
	assert.Equal(t, "warned", entries[1].Message)
	assert.Equal(t, "v", entries[1].ContextMap()["key"])
}

func TestGlobalLogger(t *testing.T) {
	assert.NotNil(t, GetLogger())
	logger := &recordingLogger{}
	ReplaceLogger(logger)
	t.Cleanup(func() { ReplaceLogger(NewDefaultLogger("KEEPER")) })
	assert.Same(t, logger, GetLogger())

	InitLogger(&recordingLogger{})
	assert.Same(t, logger, GetLogger(), "InitLogger keeps an installed logger")
	assert.Equal(t, LogLevelWarn, ParseLogLevel("WARNING"))
	assert.Equal(t, LogLevelInfo, ParseLogLevel("verbose"))
}
