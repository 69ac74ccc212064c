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
	"os"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoggerIsRegisteredOnce(t *testing.T) {
	a := NewLogger("TEST_ONCE")
	b := NewLogger("TEST_ONCE")
	assert.Same(t, a, b)
	assert.True(t, SetLoggerLevel("TEST_ONCE", "debug"))
	assert.Equal(t, logrus.DebugLevel, a.GetLevel())
	assert.False(t, SetLoggerLevel("TEST_MISSING", "debug"))
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, logrus.WarnLevel, ParseLogLevel(" WARNING "))
	assert.Equal(t, logrus.InfoLevel, ParseLogLevel("nonsense"))
	assert.Equal(t, logrus.TraceLevel, ParseLogLevel("trace"))
}

func TestLog4jFormatter(t *testing.T) {
	f := &Log4jColorFormatter{LoggerName: "PAGINATE", NameWidth: 10}
	entry := logrus.NewEntry(logrus.New()).WithField("total", 3)
	entry.Message = "page fetched"
	entry.Level = logrus.InfoLevel

	b, err := f.Format(entry)
	require.NoError(t, err)
	line := string(b)
	assert.Contains(t, line, "   INFO")
	assert.Contains(t, line, "  PAGINATE")
	assert.Contains(t, line, ": page fetched total=3")
	assert.NotContains(t, line, ansiReset)
}

func TestJSONFormatter(t *testing.T) {
	f := &JSONLogFormatter{LoggerName: "DATABASE"}
	entry := logrus.NewEntry(logrus.New()).WithField("error", errors.New("boom"))
	entry.Message = "query failed"
	entry.Level = logrus.ErrorLevel

	b, err := f.Format(entry)
	require.NoError(t, err)
	var rec map[string]interface{}
	require.NoError(t, json.Unmarshal(b, &rec))
	assert.Equal(t, "DATABASE", rec["model"])
	assert.Equal(t, "error", rec["level"])
	assert.Equal(t, map[string]interface{}{"error": "boom"}, rec["fields"])
}

func TestConfigureOutput(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger("TEST_OUTPUT")
	ConfigureOutput(&buf)
	defer ConfigureOutput(os.Stdout)
	l.SetLevel(logrus.InfoLevel)
	l.Info("hello")
	assert.Contains(t, buf.String(), "hello")
}

func TestEnvDefaults(t *testing.T) {
	t.Setenv("LISTER_TEST_BOOL", "true")
	t.Setenv("LISTER_TEST_BAD_BOOL", "maybe")
	assert.True(t, EnvDefaultBool("LISTER_TEST_BOOL", false))
	assert.True(t, EnvDefaultBool("LISTER_TEST_BAD_BOOL", true))
	assert.Equal(t, "x", EnvDefaultString("LISTER_TEST_UNSET", "x"))
}
