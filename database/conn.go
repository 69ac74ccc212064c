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
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/uptrace/bun"

	"github.com/tomoncle/lister/utils"
)

var (
	globalMu      sync.RWMutex
	globalManager AbstractDatabaseManager
)

// InitDB builds a manager from cfg, with DB_* environment variables taking
// precedence, connects it and creates the registered tables when the schema
// section asks for it. The new manager replaces any previous global one.
func InitDB(ctx context.Context, cfg *Config) (*bun.DB, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database configuration cannot be empty")
	}
	conn := cfg.Connection
	overrideFromEnv(&conn)
	if err := conn.Validate(); err != nil {
		return nil, fmt.Errorf("failed to create database manager: %w", err)
	}

	log := GetLogger()
	manager := NewDatabaseManager(&conn)
	manager.SetLogger(log)
	if err := manager.Connect(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	if cfg.Schema.CreateOnStartup {
		if err := manager.EnsureSchema(ctx); err != nil {
			_ = manager.Disconnect()
			return nil, fmt.Errorf("failed to create database schema: %w", err)
		}
	}
	log.Info("Database initialization completed")

	globalMu.Lock()
	old := globalManager
	globalManager = manager
	globalMu.Unlock()
	if old != nil {
		_ = old.Disconnect()
	}
	return manager.GetDB(), nil
}

func overrideFromEnv(cfg *ConnectionConfig) {
	for key, p := range map[string]*string{
		"DB_TYPE":     &cfg.Type,
		"DB_HOST":     &cfg.Host,
		"DB_USERNAME": &cfg.Username,
		"DB_PASSWORD": &cfg.Password,
		"DB_NAME":     &cfg.DBName,
		"DB_SSLMODE":  &cfg.SSLMode,
	} {
		*p = utils.EnvDefaultString(key, *p)
	}
	for key, p := range map[string]*int{
		"DB_PORT":           &cfg.Port,
		"DB_MAX_IDLE_CONNS": &cfg.MaxIdleConns,
		"DB_MAX_OPEN_CONNS": &cfg.MaxOpenConns,
	} {
		if n, err := strconv.Atoi(os.Getenv(key)); err == nil {
			*p = n
		}
	}
	for key, p := range map[string]*time.Duration{
		"DB_CONN_MAX_LIFETIME": &cfg.ConnMaxLifetime,
		"DB_SLOW_QUERY_TIME":   &cfg.SlowQueryTime,
	} {
		*p = utils.EnvDefaultDuration(key, *p)
	}
	cfg.EnableQueryLog = utils.EnvDefaultBool("DB_ENABLE_QUERY_LOG", cfg.EnableQueryLog)
}

func current() AbstractDatabaseManager {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalManager
}

// GetDB returns the global Bun database instance, or nil before InitDB.
func GetDB() *bun.DB {
	if m := current(); m != nil {
		return m.GetDB()
	}
	return nil
}

// GetDatabaseManager returns the global database manager.
func GetDatabaseManager() AbstractDatabaseManager { return current() }

// CloseDB closes the global database connection.
func CloseDB() error {
	globalMu.Lock()
	m := globalManager
	globalManager = nil
	globalMu.Unlock()
	if m == nil {
		return nil
	}
	return m.Disconnect()
}

// GetHealthStatus returns the current database health status.
func GetHealthStatus(ctx context.Context) *HealthStatus {
	if m := current(); m != nil {
		return m.HealthCheck(ctx)
	}
	return &HealthStatus{LastError: "Database not initialized", LastCheckTime: time.Now()}
}

// GetDatabaseStats returns global database statistics.
func GetDatabaseStats() *DBStats {
	if m := current(); m != nil {
		return m.GetStats()
	}
	return &DBStats{}
}
