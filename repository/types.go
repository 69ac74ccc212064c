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

package repository

import (
	"context"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/schema"

	"github.com/tomoncle/lister/types"
)

// CrudRepository defines basic CRUD operations for a generic entity type.
type CrudRepository[T any] interface {
	GetOne(ctx context.Context, id any) (*T, error)

	GetAll(ctx context.Context) ([]*T, error)

	Create(ctx context.Context, entity ...*T) error

	Update(ctx context.Context, entity *T) error

	Delete(ctx context.Context, id any) error
}

// TransactionRepository defines write operations executed within a transaction.
type TransactionRepository[T any] interface {
	CreateWithTx(ctx context.Context, tx *bun.Tx, entity ...*T) error
	DeleteWithTx(ctx context.Context, tx *bun.Tx, id any) error
}

// ListRepository is the data-access contract of a list endpoint: a page of
// matching records and the number of all matching records.
type ListRepository[T any] interface {
	// FindMany returns the records matching opts.Where, ordered, windowed by
	// Skip/Take and with opts.Include relations loaded. A NaN or negative
	// window is rejected with ErrInvalidPagination.
	FindMany(ctx context.Context, opts types.FindOptions) ([]*T, error)

	// Count returns the number of records matching opts.Where.
	Count(ctx context.Context, opts types.CountOptions) (int, error)
}

// Repository combines CRUD, listing and transactional operations and
// exposes the Bun table and select builder for advanced use cases.
type Repository[T any] interface {
	CrudRepository[T]
	ListRepository[T]
	TransactionRepository[T]
	Dialect() schema.Dialect
	Table() *schema.Table
	NewSelect() *bun.SelectQuery
}
