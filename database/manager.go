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
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/mysqldialect"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
	"github.com/uptrace/bun/extra/bundebug"
	"github.com/uptrace/bun/schema"
)

const (
	defaultConnectTimeout = 30 * time.Second
	healthCheckTimeout    = 5 * time.Second
)

var errNotConnected = errors.New("database not connected")

// dataSource is what sql.Open and bun.NewDB need for one backend.
type dataSource struct {
	driver  string
	dsn     string
	dialect schema.Dialect
}

func dataSourceFor(cfg *ConnectionConfig) (dataSource, error) {
	switch cfg.Type {
	case TypeMySQL:
		return dataSource{"mysql", mysqlDSN(cfg), mysqldialect.New()}, nil
	case TypePostgres:
		return dataSource{"postgres", postgresDSN(cfg), pgdialect.New()}, nil
	case TypeSQLite:
		return dataSource{sqliteshim.ShimName, sqliteDSN(cfg.DBName), sqlitedialect.New()}, nil
	}
	return dataSource{}, fmt.Errorf("unsupported database type: %s", cfg.Type)
}

func mysqlDSN(cfg *ConnectionConfig) string {
	mc := mysql.NewConfig()
	mc.User, mc.Passwd = cfg.Username, cfg.Password
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	mc.DBName = cfg.DBName
	mc.ParseTime = true
	mc.Loc = time.Local
	mc.Timeout, mc.ReadTimeout, mc.WriteTimeout = cfg.ConnectTimeout, cfg.ReadTimeout, cfg.WriteTimeout
	mc.Params = map[string]string{"charset": "utf8mb4"}
	return mc.FormatDSN()
}

func postgresDSN(cfg *ConnectionConfig) string {
	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	params := url.Values{}
	params.Set("sslmode", sslMode)
	params.Set("connect_timeout", strconv.Itoa(int(cfg.ConnectTimeout.Seconds())))
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(cfg.Username, cfg.Password),
		Host:     net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		Path:     "/" + cfg.DBName,
		RawQuery: params.Encode(),
	}
	return u.String()
}

// sqliteDSN maps the in-memory name to a shared cache so that every
// connection of the pool sees the same database.
func sqliteDSN(name string) string {
	if name == MemoryDBName {
		return "file::memory:?cache=shared"
	}
	return name + ".db"
}

type bunManager struct {
	mu      sync.RWMutex
	cfg     *ConnectionConfig
	db      *bun.DB
	log     Logger
	lastErr error
}

// NewDatabaseManager returns an AbstractDatabaseManager backed by Bun, using
// DefaultConnectionConfig when config is nil.
func NewDatabaseManager(config *ConnectionConfig) AbstractDatabaseManager {
	if config == nil {
		config = DefaultConnectionConfig()
	}
	return &bunManager{cfg: config}
}

func (m *bunManager) Connect(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.db != nil {
		return nil
	}

	db, err := m.open()
	if err == nil {
		pingCtx, cancel := context.WithTimeout(ctx, m.cfg.ConnectTimeout)
		if err = db.PingContext(pingCtx); err != nil {
			_ = db.Close()
			err = fmt.Errorf("database connection test failed: %w", err)
		}
		cancel()
	} else {
		err = fmt.Errorf("failed to create database connection: %w", err)
	}
	m.lastErr = err
	if err != nil {
		return err
	}

	m.db = db
	if m.log != nil {
		m.log.Info("Database connected", "type", m.cfg.Type, "host", m.cfg.Host, "dbname", m.cfg.DBName)
	}
	return nil
}

// open builds the pool for the configured backend and installs query hooks.
// It does not touch the network.
func (m *bunManager) open() (*bun.DB, error) {
	if m.cfg.ConnectTimeout <= 0 {
		m.cfg.ConnectTimeout = defaultConnectTimeout
	}
	src, err := dataSourceFor(m.cfg)
	if err != nil {
		return nil, err
	}
	sqlDB, err := sql.Open(src.driver, src.dsn)
	if err != nil {
		return nil, err
	}

	maxOpen, maxIdle := m.cfg.MaxOpenConns, m.cfg.MaxIdleConns
	lifetime, idleTime := m.cfg.ConnMaxLifetime, m.cfg.ConnMaxIdleTime
	if m.cfg.Type == TypeSQLite && m.cfg.DBName == MemoryDBName {
		maxOpen, maxIdle, lifetime, idleTime = 1, 1, 0, 0
	}
	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetMaxIdleConns(maxIdle)
	sqlDB.SetConnMaxLifetime(lifetime)
	sqlDB.SetConnMaxIdleTime(idleTime)

	db := bun.NewDB(sqlDB, src.dialect)
	for _, h := range m.queryHooks() {
		db.AddQueryHook(h)
	}
	return db, nil
}

func (m *bunManager) queryHooks() []bun.QueryHook {
	var hooks []bun.QueryHook
	switch {
	case !m.cfg.EnableQueryLog:
	case m.cfg.QueryLogFormat == "plain":
		hooks = append(hooks, bundebug.NewQueryHook(bundebug.WithVerbose(true), bundebug.FromEnv("BUNDEBUG")))
	default:
		hooks = append(hooks, NewQueryHook(os.Stdout, true, true))
	}
	if m.cfg.SlowQueryTime > 0 {
		hooks = append(hooks, NewSlowQueryHook(m.cfg.SlowQueryTime, m.log))
	}
	return hooks
}

func (m *bunManager) Disconnect() error {
	m.mu.Lock()
	db := m.db
	m.db = nil
	m.mu.Unlock()
	if db == nil {
		return nil
	}

	err := db.Close()
	if m.log != nil {
		if err != nil {
			m.log.Error("Failed to close database connection", "error", err)
		} else {
			m.log.Info("Database connection closed")
		}
	}
	return err
}

func (m *bunManager) Ping(ctx context.Context) error {
	db := m.GetDB()
	if db == nil {
		return errNotConnected
	}
	return db.PingContext(ctx)
}

func (m *bunManager) GetDB() *bun.DB {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.db
}

func (m *bunManager) GetSQLDB() *sql.DB {
	if db := m.GetDB(); db != nil {
		return db.DB
	}
	return nil
}

func (m *bunManager) HealthCheck(ctx context.Context) *HealthStatus {
	start := time.Now()
	status := &HealthStatus{LastCheckTime: start}
	if m.GetDB() == nil {
		status.LastError = "Database not initialized"
		return status
	}

	pingCtx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()
	err := m.Ping(pingCtx)
	status.ResponseTime = time.Since(start)

	m.mu.Lock()
	m.lastErr = err
	m.mu.Unlock()
	if err != nil {
		status.LastError = err.Error()
	} else {
		status.Healthy, status.Connected = true, true
	}

	stats := m.GetStats()
	status.ActiveConns, status.IdleConns, status.MaxOpenConns = stats.InUse, stats.Idle, stats.MaxOpenConns
	return status
}

func (m *bunManager) GetStats() *DBStats {
	sqlDB := m.GetSQLDB()
	if sqlDB == nil {
		return &DBStats{}
	}
	s := sqlDB.Stats()
	return &DBStats{
		MaxOpenConns: s.MaxOpenConnections,
		OpenConns:    s.OpenConnections,
		InUse:        s.InUse,
		Idle:         s.Idle,
		WaitCount:    s.WaitCount,
		WaitDuration: s.WaitDuration,
	}
}

func (m *bunManager) EnsureSchema(ctx context.Context) error {
	db := m.GetDB()
	if db == nil {
		return errNotConnected
	}
	return NewSchemaManager(db, m.log).CreateTables(ctx)
}

func (m *bunManager) SetLogger(logger Logger) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.log = logger
}
