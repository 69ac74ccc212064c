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

package lister_test

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"

	"github.com/tomoncle/lister"
	"github.com/tomoncle/lister/criteria"
	"github.com/tomoncle/lister/database"
	"github.com/tomoncle/lister/paginate"
	"github.com/tomoncle/lister/types"
)

type Account struct {
	bun.BaseModel `bun:"table:accounts,alias:a"`

	ID        int64     `bun:"id,pk,autoincrement" json:"id"`
	Name      string    `bun:"name" json:"name"`
	Status    string    `bun:"status" json:"status"`
	CreatedAt time.Time `bun:"created_at,notnull" json:"createdAt"`
}

func setup(t *testing.T) lister.Service[Account] {
	t.Helper()
	database.RegisteredModel(database.NewModelAdapter((*Account)(nil), 0))
	cfg := database.DefaultConfig()
	cfg.Connection.Type = database.TypeSQLite
	cfg.Connection.DBName = database.MemoryDBName
	cfg.Connection.SlowQueryTime = 0
	cfg.Schema.CreateOnStartup = true

	_, err := database.InitDB(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.CloseDB() })

	svc := lister.NewService[Account]()
	accounts := make([]*Account, 25)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := range accounts {
		status := "ACTIVE"
		if i%5 == 0 {
			status = "BANNED"
		}
		accounts[i] = &Account{
			Name:      fmt.Sprintf("user-%02d", i+1),
			Status:    status,
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		}
	}
	require.NoError(t, svc.Save(context.Background(), accounts...))
	return svc
}

func TestPageSecondPage(t *testing.T) {
	svc := setup(t)

	req := paginate.ParseRequestMap(map[string]string{"page": "2", "limit": "10"})
	env, err := svc.Page(context.Background(), paginate.Options{}, req)
	require.NoError(t, err)

	assert.Equal(t, 25, env.Meta.TotalItems)
	assert.Equal(t, types.Int(3), env.Meta.TotalPages)
	assert.Equal(t, types.Int(10), env.Meta.PerPage)
	require.Len(t, env.Data, 10)
	// newest first: rows 25..16 on page one, 15..6 on page two
	assert.Equal(t, "user-15", env.Data[0].Name)
	assert.Equal(t, "user-06", env.Data[9].Name)

	raw, err := json.Marshal(env)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"meta":{"currentPage":2,"totalPages":3,"totalItems":25,"perPage":10}`)
}

func TestPageForcedFilterAndSearch(t *testing.T) {
	svc := setup(t)

	req := paginate.ParseRequestMap(map[string]string{"search": "USER-1", "status": "ACTIVE"})
	env, err := svc.Page(context.Background(), paginate.Options{
		SearchableFields: []string{"name"},
		ForcedFilters:    criteria.NewFilters(criteria.Eq("status", "BANNED")),
	}, req)
	require.NoError(t, err)

	// user-11 and user-16 are BANNED and match the search
	assert.Equal(t, 2, env.Meta.TotalItems)
	assert.Equal(t, types.Int(1), env.Meta.TotalPages)
	assert.Equal(t, types.Int(2), env.Meta.PerPage)
	for _, a := range env.Data {
		assert.Equal(t, "BANNED", a.Status)
	}
}

func TestPageMalformedNumbers(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	req := paginate.ParseRequestMap(map[string]string{"page": "abc", "limit": "10"})
	_, err := svc.Page(ctx, paginate.Options{}, req)
	assert.Error(t, err)

	_, err = svc.Page(ctx, paginate.Options{Strict: true}, req)
	assert.ErrorIs(t, err, paginate.ErrMalformedRequest)
}

func TestCrudThroughService(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	a, err := svc.Get(ctx, 1)
	require.NoError(t, err)
	a.Name = "renamed"
	require.NoError(t, svc.Update(ctx, a))
	require.NoError(t, svc.Delete(ctx, 2))

	all, err := svc.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 24)

	var names []string
	require.NoError(t, svc.SelectBuilder().Model((*Account)(nil)).Column("name").Where("id = ?", 1).Scan(ctx, &names))
	assert.Equal(t, []string{"renamed"}, names)
}
