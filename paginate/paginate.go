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

package paginate

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/tomoncle/lister/criteria"
	"github.com/tomoncle/lister/types"
	"github.com/tomoncle/lister/utils"
)

var (
	// ErrMalformedRequest is returned in strict mode for a NaN page or limit
	// or an unknown sort order.
	ErrMalformedRequest = errors.New("malformed list request")
	// ErrNoDataSource is returned when Config carries no store.
	ErrNoDataSource = errors.New("list data source is nil")
)

var log = utils.NewLogger("PAGINATE")

// Store is the data-access object a list is executed against.
type Store[T any] interface {
	FindMany(ctx context.Context, opts types.FindOptions) ([]*T, error)
	Count(ctx context.Context, opts types.CountOptions) (int, error)
}

// Options is the caller-side configuration of a list endpoint. End users
// cannot change any of it.
type Options struct {
	// SearchableFields are dotted field paths matched by the search term.
	SearchableFields []string
	// ForcedFilters are always applied and win over same-named ad-hoc filters.
	ForcedFilters *criteria.Filters
	// Includes lists relations to eager-load with every record.
	Includes types.Include
	// RelationFilters are ANDed with the rest of the criteria.
	RelationFilters []criteria.Condition
	// Strict rejects NaN page/limit and unknown orders instead of passing
	// them on to the store.
	Strict bool
}

// Config binds Options to a data source.
type Config[T any] struct {
	DataSource Store[T]
	Options
}

// Build runs a list request: it derives criteria and pagination from req,
// fetches the page and the total count concurrently and returns the
// envelope. Store errors are returned unchanged.
func Build[T any](ctx context.Context, cfg Config[T], req *types.Request) (*types.Envelope[T], error) {
	if cfg.DataSource == nil {
		return nil, ErrNoDataSource
	}
	if req == nil {
		req = types.NewRequest()
	}
	if cfg.Strict {
		if err := validate(req); err != nil {
			return nil, err
		}
	}

	where := Criteria(cfg.Options, req)
	find := FindOptions(req, where, cfg.Includes)
	log.WithFields(logrus.Fields{
		"where":   where.String(),
		"skip":    find.Skip,
		"take":    find.Take,
		"orderBy": find.OrderBy.Field + " " + find.OrderBy.Order.Name(),
	}).Debug("list query built")

	var (
		records []*T
		total   int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		records, err = cfg.DataSource.FindMany(gctx, find)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = cfg.DataSource.Count(gctx, types.CountOptions{Where: where})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return types.NewEnvelope(NewMeta(req.Page, req.Limit, total), records), nil
}

// Criteria combines the search condition, the ad-hoc filters overlaid with
// the forced ones, and the relation filters.
func Criteria(opts Options, req *types.Request) criteria.Where {
	return criteria.NewWhere(
		criteria.Search(opts.SearchableFields, req.Search),
		criteria.Merge(req.Filters, opts.ForcedFilters),
		opts.RelationFilters,
	)
}

// FindOptions derives the page-fetch arguments. Without a limit there is no
// bound and skip is zero; otherwise skip is (page-1)*limit.
func FindOptions(req *types.Request, where criteria.Where, include types.Include) types.FindOptions {
	skip := types.Int(0)
	if req.Limit.IsSet() {
		skip = req.Page.Sub(types.Int(1)).Mul(req.Limit)
	}
	return types.FindOptions{
		Where:   where,
		Skip:    skip,
		Take:    req.Limit,
		OrderBy: types.OrderBy{Field: req.SortBy, Order: req.Order},
		Include: include,
	}
}

// NewMeta computes the envelope metadata. page is reported as given.
func NewMeta(page, limit types.Number, total int) types.Meta {
	meta := types.Meta{
		CurrentPage: page,
		TotalPages:  types.Int(1),
		TotalItems:  total,
		PerPage:     types.Int(total),
	}
	if limit.IsSet() {
		meta.TotalPages = types.Int(total).CeilDiv(limit)
		meta.PerPage = limit
	}
	return meta
}

func validate(req *types.Request) error {
	if req.Page.IsNaN() {
		return fmt.Errorf("%w: page is not a number", ErrMalformedRequest)
	}
	if req.Limit.IsNaN() {
		return fmt.Errorf("%w: limit is not a number", ErrMalformedRequest)
	}
	if !req.Order.IsValid() {
		return fmt.Errorf("%w: order must be asc or desc", ErrMalformedRequest)
	}
	return nil
}
