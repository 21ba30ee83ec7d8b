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

// Package config loads keeper settings from a YAML file, a .env file and
// KEEPER_* environment variables.
package config

import (
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"github.com/tomoncle/keeper/cache"
	"github.com/tomoncle/keeper/database"
	"github.com/tomoncle/keeper/utils"
)

// EnvPrefix prefixes every environment override, e.g.
// KEEPER_DATABASE_CONNECTION_HOST.
const EnvPrefix = "KEEPER"

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

func (c LogConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Level, validation.In("trace", "debug", "info", "warn", "warning", "error")),
		validation.Field(&c.Format, validation.In("text", "json")),
	)
}

// Config is the root of the keeper settings tree.
type Config struct {
	Log      LogConfig       `mapstructure:"log"`
	Database database.Config `mapstructure:"database"`
	Cache    cache.Config    `mapstructure:"cache"`
}

// Default returns the settings used when nothing overrides them: an
// in-memory sqlite database and an in-process cache.
func Default() *Config {
	conn := database.DefaultConnectionConfig()
	conn.Type = database.TypeSQLite
	conn.DBName = ":memory:"
	return &Config{
		Log: LogConfig{Level: "info", Format: "text"},
		Database: database.Config{
			ConnectionConfig: *conn,
			BootstrapConfig:  database.BootstrapConfig{CreateTables: true},
		},
		Cache: cache.DefaultConfig(),
	}
}

// Load reads path, when not empty, over the defaults. Variables from a .env
// file in the working directory and KEEPER_* variables take precedence.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		utils.NewLogger("CONFIG").Debug("no .env file loaded")
	}

	v := viper.New()
	setDefaults(v, Default())
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "read config %s", path)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Wrap(err, "decode config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setDefaults registers every key so that AutomaticEnv also reaches keys
// missing from the file.
func setDefaults(v *viper.Viper, d *Config) {
	conn, boot := d.Database.ConnectionConfig, d.Database.BootstrapConfig
	defaults := map[string]interface{}{
		"log.level":  d.Log.Level,
		"log.format": d.Log.Format,

		"database.connection.type":               conn.Type,
		"database.connection.driver":             conn.Driver,
		"database.connection.host":               conn.Host,
		"database.connection.port":               conn.Port,
		"database.connection.username":           conn.Username,
		"database.connection.password":           conn.Password,
		"database.connection.dbname":             conn.DBName,
		"database.connection.sslmode":            conn.SSLMode,
		"database.connection.max_idle_conns":     conn.MaxIdleConns,
		"database.connection.max_open_conns":     conn.MaxOpenConns,
		"database.connection.conn_max_lifetime":  conn.ConnMaxLifetime,
		"database.connection.conn_max_idle_time": conn.ConnMaxIdleTime,
		"database.connection.connect_timeout":    conn.ConnectTimeout,
		"database.connection.read_timeout":       conn.ReadTimeout,
		"database.connection.write_timeout":      conn.WriteTimeout,
		"database.connection.enable_query_log":   conn.EnableQueryLog,
		"database.connection.slow_query_time":    conn.SlowQueryTime,
		"database.bootstrap.create_tables":       boot.CreateTables,
		"database.bootstrap.table_columns_file":  boot.TableColumnsFile,

		"cache.backend":                    d.Cache.Backend,
		"cache.redis_url":                  d.Cache.RedisURL,
		"cache.default_ttl":                d.Cache.DefaultTTL,
		"cache.memory.capacity":            d.Cache.Memory.Capacity,
		"cache.memory.num_shards":          d.Cache.Memory.NumShards,
		"cache.memory.ttl":                 d.Cache.Memory.TTL,
		"cache.memory.eviction_percentage": d.Cache.Memory.EvictionPercentage,
		"cache.memory.eviction_interval":   d.Cache.Memory.EvictionInterval,
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
}

func (c *Config) Validate() error {
	err := validation.ValidateStruct(c,
		validation.Field(&c.Log),
		validation.Field(&c.Database, validation.By(validateDatabase)),
		validation.Field(&c.Cache),
	)
	if err != nil {
		return errors.Wrap(err, "invalid config")
	}
	return nil
}

func validateDatabase(value interface{}) error {
	cfg, ok := value.(database.Config)
	if !ok {
		return errors.Newf("unexpected database config %T", value)
	}
	conn := &cfg.ConnectionConfig
	network := !strings.EqualFold(conn.Type, database.TypeSQLite)
	return validation.ValidateStruct(conn,
		validation.Field(&conn.Type, validation.Required, validation.In(
			database.TypeMySQL, database.TypePostgres, "postgresql", database.TypeSQLite, "sqlite3")),
		validation.Field(&conn.Driver, validation.In(database.DriverPQ, database.DriverPGX)),
		validation.Field(&conn.Host, validation.When(network, validation.Required)),
		validation.Field(&conn.Port, validation.When(network, validation.Required), validation.Min(1), validation.Max(65535)),
		validation.Field(&conn.MaxOpenConns, validation.Min(0)),
		validation.Field(&conn.ConnectTimeout, validation.Min(time.Duration(0))),
	)
}

// ApplyLogging sets the level and format of the keeper loggers.
func (c *Config) ApplyLogging() {
	utils.ConfigureConsoleLogFormat(c.Log.Format)
	utils.SetAllLoggersLevel(c.Log.Level)
	database.GetLogger().SetLevel(database.ParseLogLevel(c.Log.Level))
}
