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

package utils

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoggerIsRegistered(t *testing.T) {
	l := NewLogger("UTILS_TEST")
	assert.Same(t, l, NewLogger("UTILS_TEST"))
	assert.True(t, SetLoggerLevel("UTILS_TEST", "error"))
	assert.Equal(t, logrus.ErrorLevel, l.GetLevel())
	assert.False(t, SetLoggerLevel("NOT_REGISTERED", "debug"))
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, logrus.DebugLevel, ParseLogLevel(" debug "))
	assert.Equal(t, logrus.InfoLevel, ParseLogLevel("loud"))
}

func TestJSONLogFormatter(t *testing.T) {
	var buf bytes.Buffer
	l := logrus.New()
	l.SetOutput(&buf)
	l.SetFormatter(&JSONLogFormatter{LoggerName: "JSON"})
	l.WithField("error", errors.New("boom")).WithField("id", 7).Warn("hello")

	var rec map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "warning", rec["level"])
	assert.Equal(t, "JSON", rec["logger"])
	assert.Equal(t, "hello", rec["message"])
	fields := rec["fields"].(map[string]interface{})
	assert.Equal(t, "boom", fields["error"])
	assert.EqualValues(t, 7, fields["id"])
}

func TestLog4jColorFormatter(t *testing.T) {
	var buf bytes.Buffer
	l := logrus.New()
	l.SetOutput(&buf)
	l.SetFormatter(&Log4jColorFormatter{LoggerName: "A_VERY_LONG_NAME", NameWidth: 6})
	l.WithField("b", 2).WithField("a", 1).Info("started")

	out := buf.String()
	assert.Contains(t, out, "A_VERY")
	assert.NotContains(t, out, "A_VERY_")
	assert.Contains(t, out, "started a=1 b=2")
}

func TestEnvDefaults(t *testing.T) {
	t.Setenv("UTILS_TEST_BOOL", "yes")
	t.Setenv("UTILS_TEST_STR", "")
	assert.True(t, EnvDefaultBool("UTILS_TEST_BOOL", false))
	assert.True(t, EnvDefaultBool("UTILS_TEST_MISSING", true))
	assert.Equal(t, "fallback", EnvDefaultString("UTILS_TEST_STR", "fallback"))
	t.Setenv("UTILS_TEST_DUR", "90s")
	assert.Equal(t, 90_000_000_000, int(EnvDefaultDuration("UTILS_TEST_DUR", 0)))
}
