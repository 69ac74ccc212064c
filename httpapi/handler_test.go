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

package httpapi

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"github.com/tomoncle/lister"
	"github.com/tomoncle/lister/paginate"
	"github.com/tomoncle/lister/repository"
	"github.com/tomoncle/lister/types"
)

type owner struct {
	bun.BaseModel `bun:"table:owners,alias:o"`

	ID   int64  `bun:"id,pk,autoincrement" json:"id"`
	Name string `bun:"name" json:"name"`
}

type item struct {
	bun.BaseModel `bun:"table:items,alias:i"`

	ID        int64     `bun:"id,pk,autoincrement" json:"id"`
	Title     string    `bun:"title" json:"title"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"createdAt"`
	OwnerID   int64     `bun:"owner_id" json:"ownerId"`
	Owner     *owner    `bun:"rel:belongs-to,join:owner_id=id" json:"owner,omitempty"`
	Tags      []*label  `bun:"rel:has-many,join:id=item_id" json:"tags,omitempty"`
}

type label struct {
	bun.BaseModel `bun:"table:labels,alias:l"`

	ID     int64  `bun:"id,pk,autoincrement" json:"id"`
	ItemID int64  `bun:"item_id" json:"itemId"`
	Text   string `bun:"text" json:"text"`
}

func newService(t *testing.T) lister.Service[item] {
	t.Helper()
	name := strings.ReplaceAll(t.Name(), "/", "_")
	sqldb, err := sql.Open(sqliteshim.ShimName, "file:"+name+"?mode=memory&cache=shared")
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)
	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() { _ = db.Close() })

	ctx := context.Background()
	for _, m := range []interface{}{(*owner)(nil), (*item)(nil), (*label)(nil)} {
		_, err := db.NewCreateTable().Model(m).IfNotExists().Exec(ctx)
		require.NoError(t, err)
	}
	_, err = db.NewInsert().Model(&[]owner{{Name: "ann"}, {Name: "ben"}}).Exec(ctx)
	require.NoError(t, err)

	svc := lister.NewServiceWithDB[item](db)
	items := make([]*item, 12)
	for i := range items {
		items[i] = &item{Title: fmt.Sprintf("item %d", i+1), OwnerID: int64(i%2 + 1)}
	}
	require.NoError(t, svc.Save(ctx, items...))
	return svc
}

func get(h http.Handler, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestListEnvelope(t *testing.T) {
	h := List(newService(t), paginate.Options{
		SearchableFields: []string{"title", "owner.name"},
		Includes:         types.Include{"owner": nil},
	})

	rec := get(h, "/items?page=2&limit=5&sortBy=id&order=asc")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body struct {
		Meta map[string]any `json:"meta"`
		Data []item         `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, map[string]any{"currentPage": 2.0, "totalPages": 3.0, "totalItems": 12.0, "perPage": 5.0}, body.Meta)
	require.Len(t, body.Data, 5)
	assert.Equal(t, int64(6), body.Data[0].ID)
	require.NotNil(t, body.Data[0].Owner)
	assert.Equal(t, "ben", body.Data[0].Owner.Name)

	rec = get(h, "/items?search=BEN")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 6.0, body.Meta["totalItems"])
	assert.Equal(t, 6.0, body.Meta["perPage"])
}

func TestListEmptyDataIsArray(t *testing.T) {
	h := List(newService(t), paginate.Options{})
	rec := get(h, "/items?title=nothing")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"data":[]`)
}

func TestListBadRequests(t *testing.T) {
	svc := newService(t)
	lenient := List(svc, paginate.Options{})
	strict := List(svc, paginate.Options{Strict: true})

	cases := []struct {
		name   string
		h      http.Handler
		target string
	}{
		{"nan page reaches the store", lenient, "/items?page=x&limit=5"},
		{"strict nan page", strict, "/items?page=x"},
		{"strict bad order", strict, "/items?order=sideways"},
		{"unknown sort column", lenient, "/items?sortBy=nope"},
		{"to-many filter", lenient, "/items?tags.text=a"},
		{"unknown operator", lenient, "/items?title[regex]=a"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			rec := get(c.h, c.target)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
			assert.Contains(t, rec.Body.String(), `"error"`)
		})
	}
}

type failingService struct {
	lister.Service[item]
	err error
}

func (f failingService) Page(context.Context, paginate.Options, *types.Request) (*types.Envelope[item], error) {
	return nil, f.err
}

func TestListServerError(t *testing.T) {
	rec := get(List[item](failingService{err: errors.New("connection reset")}, paginate.Options{}), "/items")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Internal Server Error"}`, rec.Body.String())
}

func TestStatusOf(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, StatusOf(fmt.Errorf("find: %w", repository.ErrInvalidPagination)))
	assert.Equal(t, http.StatusBadRequest, StatusOf(errors.New("SQL logic error: no such column: i.nope (1)")))
	assert.Equal(t, http.StatusInternalServerError, StatusOf(errors.New("UNIQUE constraint failed: items.id")))
	assert.Equal(t, http.StatusInternalServerError, StatusOf(context.DeadlineExceeded))
}

func TestHealthWithoutDatabase(t *testing.T) {
	rec := get(http.HandlerFunc(Health), "/healthz")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "Database not initialized")
}
