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
	"fmt"
	"reflect"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/schema"

	"github.com/tomoncle/lister/types"
)

type baseRepositoryImpl[T any] struct {
	db *bun.DB
}

// NewRepository returns a generic repository backed by the provided Bun DB.
func NewRepository[T any](db *bun.DB) Repository[T] {
	return &baseRepositoryImpl[T]{db: db}
}

func (r *baseRepositoryImpl[T]) Dialect() schema.Dialect { return r.db.Dialect() }

func (r *baseRepositoryImpl[T]) NewSelect() *bun.SelectQuery { return r.db.NewSelect() }

func (r *baseRepositoryImpl[T]) Table() *schema.Table {
	return r.db.Table(reflect.TypeOf((*T)(nil)).Elem())
}

func (r *baseRepositoryImpl[T]) FindMany(ctx context.Context, opts types.FindOptions) ([]*T, error) {
	entities := make([]*T, 0)
	table := r.Table()
	b := newWhereBuilder(table)
	query := b.applyWhere(r.db.NewSelect().Model(&entities), opts.Where)

	if opts.OrderBy.Field != "" {
		expr, args, err := b.orderExpr(opts.OrderBy)
		if err != nil {
			return nil, err
		}
		query = query.OrderExpr(expr, args...)
	}

	includes, err := includePaths(table, opts.Include)
	if err != nil {
		return nil, err
	}
	if b.err != nil {
		return nil, b.err
	}

	if opts.Skip.IsSet() {
		skip, ok := opts.Skip.Int()
		if !ok || skip < 0 {
			return nil, fmt.Errorf("%w: skip=%s", ErrInvalidPagination, opts.Skip)
		}
		if skip > 0 {
			query = query.Offset(skip)
		}
	}
	if opts.Take.IsSet() {
		take, ok := opts.Take.Int()
		if !ok || take < 0 {
			return nil, fmt.Errorf("%w: take=%s", ErrInvalidPagination, opts.Take)
		}
		if take == 0 {
			return entities, nil
		}
		query = query.Limit(take)
	}

	loaded := make(map[string]struct{}, len(includes))
	for _, p := range includes {
		loaded[p] = struct{}{}
	}
	relations := leafPaths(loaded)
	for _, p := range relations {
		query = query.Relation(p)
	}
	query = b.applyJoins(query, relations)

	if err := query.Scan(ctx); err != nil {
		return nil, err
	}
	return entities, nil
}

func (r *baseRepositoryImpl[T]) Count(ctx context.Context, opts types.CountOptions) (int, error) {
	b := newWhereBuilder(r.Table())
	query := b.applyWhere(r.db.NewSelect().Model((*T)(nil)), opts.Where)
	if b.err != nil {
		return 0, b.err
	}
	return b.applyJoins(query, nil).Count(ctx)
}

func (r *baseRepositoryImpl[T]) GetOne(ctx context.Context, id any) (*T, error) {
	var entity T
	err := r.db.NewSelect().Model(&entity).Where("id = ?", id).Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &entity, nil
}

func (r *baseRepositoryImpl[T]) GetAll(ctx context.Context) ([]*T, error) {
	var entities []*T
	err := r.db.NewSelect().Model(&entities).Scan(ctx)
	return entities, err
}

func (r *baseRepositoryImpl[T]) Create(ctx context.Context, entity ...*T) error {
	return r.create(ctx, r.db, entity...)
}

func (r *baseRepositoryImpl[T]) Update(ctx context.Context, entity *T) error {
	_, err := r.db.NewUpdate().Model(entity).WherePK().Exec(ctx)
	return err
}

func (r *baseRepositoryImpl[T]) Delete(ctx context.Context, id any) error {
	return r.delete(ctx, r.db, id)
}

func (r *baseRepositoryImpl[T]) CreateWithTx(ctx context.Context, tx *bun.Tx, entity ...*T) error {
	return r.create(ctx, tx, entity...)
}

func (r *baseRepositoryImpl[T]) DeleteWithTx(ctx context.Context, tx *bun.Tx, id any) error {
	return r.delete(ctx, tx, id)
}

func (r *baseRepositoryImpl[T]) create(ctx context.Context, db bun.IDB, entity ...*T) error {
	if len(entity) == 0 {
		return nil
	}
	entities := make([]*T, len(entity))
	copy(entities, entity)
	_, err := db.NewInsert().Model(&entities).Exec(ctx)
	return err
}

func (r *baseRepositoryImpl[T]) delete(ctx context.Context, db bun.IDB, id any) error {
	var entity T
	_, err := db.NewDelete().Model(&entity).Where("id = ?", id).Exec(ctx)
	return err
}
