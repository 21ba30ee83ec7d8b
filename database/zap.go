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
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ZapLogger adapts a zap logger to Logger.
type ZapLogger struct {
	level  zap.AtomicLevel
	logger *zap.SugaredLogger
}

// NewZapLogger wraps z. Messages below the level set with SetLevel are
// dropped before reaching z.
func NewZapLogger(z *zap.Logger) *ZapLogger {
	level := zap.NewAtomicLevelAt(zapcore.DebugLevel)
	return &ZapLogger{
		level: level,
		logger: z.WithOptions(zap.WrapCore(func(core zapcore.Core) zapcore.Core {
			return &levelCore{Core: core, level: level}
		})).Sugar(),
	}
}

func (l *ZapLogger) SetLevel(level LogLevel) {
	switch level {
	case LogLevelDebug:
		l.level.SetLevel(zapcore.DebugLevel)
	case LogLevelWarn:
		l.level.SetLevel(zapcore.WarnLevel)
	case LogLevelError:
		l.level.SetLevel(zapcore.ErrorLevel)
	default:
		l.level.SetLevel(zapcore.InfoLevel)
	}
}

func (l *ZapLogger) Debug(msg string, fields ...interface{}) { l.logger.Debugw(msg, fields...) }

func (l *ZapLogger) Info(msg string, fields ...interface{}) { l.logger.Infow(msg, fields...) }

func (l *ZapLogger) Warn(msg string, fields ...interface{}) { l.logger.Warnw(msg, fields...) }

func (l *ZapLogger) Error(msg string, fields ...interface{}) { l.logger.Errorw(msg, fields...) }

type levelCore struct {
	zapcore.Core
	level zap.AtomicLevel
}

func (c *levelCore) Enabled(lvl zapcore.Level) bool {
	return c.level.Enabled(lvl) && c.Core.Enabled(lvl)
}

func (c *levelCore) Check(entry zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if !c.level.Enabled(entry.Level) {
		return ce
	}
	return c.Core.Check(entry, ce)
}

func (c *levelCore) With(fields []zapcore.Field) zapcore.Core {
	return &levelCore{Core: c.Core.With(fields), level: c.level}
}
