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

package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"

	"github.com/tomoncle/lister"
	"github.com/tomoncle/lister/database"
	"github.com/tomoncle/lister/httpapi"
	"github.com/tomoncle/lister/utils"
)

var log = utils.NewLogger("SERVER")

func main() {
	configPath := flag.String("config", "", "path to the YAML database config; empty runs an in-memory sqlite demo")
	addr := flag.String("addr", utils.EnvDefaultString("LISTER_ADDR", ":8080"), "listen address")
	seed := flag.Bool("seed", utils.EnvDefaultBool("LISTER_SEED", true), "insert demo rows into an empty users table")
	flag.Parse()

	if err := run(*configPath, *addr, *seed); err != nil {
		log.WithError(err).Error("server stopped")
		os.Exit(1)
	}
}

func loadConfig(path string) (*database.Config, error) {
	if path == "" {
		cfg := database.DefaultConfig()
		cfg.Connection.Type = database.TypeSQLite
		cfg.Connection.DBName = database.MemoryDBName
		cfg.Schema.CreateOnStartup = true
		return cfg, nil
	}
	return database.LoadConfig(path)
}

func run(configPath, addr string, seed bool) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	db, err := database.InitDB(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = database.CloseDB() }()

	if seed {
		if err := seedDemo(ctx, db); err != nil {
			return err
		}
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           newRouter(lister.NewService[User]()),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", addr).Info("listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	log.Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}

func newRouter(users lister.Service[User]) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.RealIP,
		middleware.RequestID,
		middleware.Recoverer,
		httprate.Limit(60, time.Minute, httprate.WithKeyFuncs(httprate.KeyByIP)),
	)
	r.Get("/healthz", httpapi.Health)
	r.Get("/users", httpapi.List(users, userListOptions))
	return r
}
