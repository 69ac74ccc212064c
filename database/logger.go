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
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/tomoncle/lister/utils"
)

const loggerName = "DATABASE"

// Logger takes a message followed by alternating key/value pairs.
type Logger interface {
	Debug(msg string, kv ...interface{})
	Info(msg string, kv ...interface{})
	Warn(msg string, kv ...interface{})
	Error(msg string, kv ...interface{})
}

var (
	loggerMu  sync.RWMutex
	pkgLogger Logger = fieldLogger{utils.NewLogger(loggerName)}
)

// InitLogger replaces the logger used by managers created afterwards.
func InitLogger(log Logger) {
	if log == nil {
		return
	}
	loggerMu.Lock()
	pkgLogger = log
	loggerMu.Unlock()
}

// GetLogger returns the package logger, by default the named "DATABASE"
// logrus logger.
func GetLogger() Logger {
	loggerMu.RLock()
	defer loggerMu.RUnlock()
	return pkgLogger
}

type fieldLogger struct {
	l *utils.Logger
}

func (f fieldLogger) Debug(msg string, kv ...interface{}) { f.with(kv).Debug(msg) }
func (f fieldLogger) Info(msg string, kv ...interface{})  { f.with(kv).Info(msg) }
func (f fieldLogger) Warn(msg string, kv ...interface{})  { f.with(kv).Warn(msg) }
func (f fieldLogger) Error(msg string, kv ...interface{}) { f.with(kv).Error(msg) }

// with turns kv into logrus fields; a dangling value is kept under !BADKEY.
func (f fieldLogger) with(kv []interface{}) *logrus.Entry {
	fields := make(logrus.Fields, len(kv)/2+1)
	for len(kv) >= 2 {
		fields[fmt.Sprint(kv[0])] = kv[1]
		kv = kv[2:]
	}
	if len(kv) == 1 {
		fields["!BADKEY"] = kv[0]
	}
	return f.l.WithFields(fields)
}
