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

	"github.com/uptrace/bun"
)

// SchemaManager creates the tables of registered models.
type SchemaManager struct {
	db       *bun.DB
	logger   Logger
	registry ModelRegistry
}

// NewSchemaManager returns a SchemaManager over the default model registry.
func NewSchemaManager(db *bun.DB, logger Logger) *SchemaManager {
	return &SchemaManager{db: db, logger: logger, registry: defaultRegistry}
}

// WithRegistry swaps the registry the manager reads models from.
func (sm *SchemaManager) WithRegistry(r ModelRegistry) *SchemaManager {
	sm.registry = r
	return sm
}

// CreateTables creates every registered table that does not exist yet, in a
// single transaction and in priority order. Query hooks stay silent unless
// BUNDEBUG_MIGRATION is set.
func (sm *SchemaManager) CreateTables(ctx context.Context) error {
	if sm.db == nil {
		return fmt.Errorf("database not initialized")
	}
	if _, ok := os.LookupEnv("BUNDEBUG_MIGRATION"); !ok {
		EnableBunSqlSilent(true)
		defer EnableBunSqlSilent(false)
	}

	models := sm.registry.Instances()
	sm.db.RegisterModel(models...)

	err := sm.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		for _, model := range models {
			if _, err := tx.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
				return fmt.Errorf("failed to create table %T: %w", model, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	if sm.logger != nil {
		sm.logger.Info("Database tables ensured", "count", len(models))
	}
	return nil
}
