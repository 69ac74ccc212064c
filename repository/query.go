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
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/schema"

	"github.com/tomoncle/lister/criteria"
	"github.com/tomoncle/lister/types"
)

var (
	ErrInvalidPagination   = errors.New("invalid pagination")
	ErrInvalidOrder        = errors.New("invalid sort order")
	ErrUnsupportedOperator = errors.New("unsupported filter operator")
	ErrUnsupportedRelation = errors.New("unsupported relation")
)

const (
	sepAnd = " AND "
	sepOr  = " OR "
)

// scope is the entity a condition is evaluated against: the root model or a
// to-one relation joined under alias. For a relation, base is the alias of
// the entity it hangs off.
type scope struct {
	table  *schema.Table
	alias  string
	goPath string
	sqlKey string
	rel    *schema.Relation
	base   string
}

func rootScope(table *schema.Table) scope {
	return scope{table: table, alias: table.Alias}
}

// enter resolves relation name on s. Only has-one and belongs-to relations
// can be joined into the same row, so anything else is rejected.
func (s scope) enter(name string) (scope, error) {
	rel := findRelation(s.table, name)
	if rel == nil {
		return scope{}, fmt.Errorf("%w: %s has no relation %q", ErrUnsupportedRelation, s.table.Name, name)
	}
	if rel.Type != schema.HasOneRelation && rel.Type != schema.BelongsToRelation {
		return scope{}, fmt.Errorf("%w: %q is not a to-one relation of %s", ErrUnsupportedRelation, name, s.table.Name)
	}
	next := scope{table: rel.JoinTable, rel: rel, base: s.alias}
	if s.goPath == "" {
		next.goPath = rel.Field.GoName
		next.sqlKey = rel.Field.Name
	} else {
		next.goPath = s.goPath + "." + rel.Field.GoName
		next.sqlKey = s.sqlKey + "__" + rel.Field.Name
	}
	next.alias = next.sqlKey
	return next, nil
}

func (s scope) column(name string) string {
	return resolveColumn(s.table, name)
}

func findRelation(t *schema.Table, name string) *schema.Relation {
	if rel, ok := t.Relations[name]; ok {
		return rel
	}
	for goName, rel := range t.Relations {
		if rel.Field.Name == name || strings.EqualFold(goName, name) {
			return rel
		}
	}
	return nil
}

// resolveColumn maps a field name to its column: an exact SQL name first,
// then a case-insensitive Go field name, so "createdAt" finds created_at.
// Unknown names are returned as-is and left to the database to reject.
func resolveColumn(t *schema.Table, name string) string {
	if f, ok := t.FieldMap[name]; ok {
		return f.Name
	}
	for _, f := range t.Fields {
		if strings.EqualFold(f.GoName, name) || strings.EqualFold(f.Name, name) {
			return f.Name
		}
	}
	return name
}

// whereBuilder applies criteria to a select query and records the relation
// joins the conditions depend on, keyed by Go path.
type whereBuilder struct {
	root  scope
	joins map[string]scope
	err   error
}

func newWhereBuilder(table *schema.Table) *whereBuilder {
	return &whereBuilder{root: rootScope(table), joins: make(map[string]scope)}
}

func (b *whereBuilder) fail(err error) {
	if b.err == nil {
		b.err = err
	}
}

func (b *whereBuilder) applyWhere(q *bun.SelectQuery, where criteria.Where) *bun.SelectQuery {
	for _, c := range where.Conditions() {
		q = b.apply(q, sepAnd, b.root, c)
	}
	return q
}

func (b *whereBuilder) apply(q *bun.SelectQuery, sep string, s scope, cond criteria.Condition) *bun.SelectQuery {
	switch c := cond.(type) {
	case criteria.Field:
		expr, args, err := fieldExpr(s, c)
		if err != nil {
			b.fail(err)
			return q
		}
		if sep == sepOr {
			return q.WhereOr(expr, args...)
		}
		return q.Where(expr, args...)
	case criteria.Relation:
		next, err := s.enter(c.Name)
		if err != nil {
			b.fail(err)
			return q
		}
		b.joins[next.goPath] = next
		if c.Cond == nil {
			return q
		}
		return b.apply(q, sep, next, c.Cond)
	case criteria.Group:
		return b.group(q, sep, sepAnd, s, c.Conditions())
	case criteria.And:
		return b.group(q, sep, sepAnd, s, c)
	case criteria.Or:
		return b.group(q, sep, sepOr, s, c)
	default:
		b.fail(fmt.Errorf("%w: %T", ErrUnsupportedOperator, cond))
		return q
	}
}

func (b *whereBuilder) group(q *bun.SelectQuery, sep, inner string, s scope, conds []criteria.Condition) *bun.SelectQuery {
	if len(conds) == 0 {
		return q
	}
	return q.WhereGroup(sep, func(q *bun.SelectQuery) *bun.SelectQuery {
		for _, c := range conds {
			q = b.apply(q, inner, s, c)
		}
		return q
	})
}

func fieldExpr(s scope, f criteria.Field) (string, []interface{}, error) {
	args := []interface{}{bun.Ident(s.alias), bun.Ident(s.column(f.Name))}
	ci := f.CaseInsensitive
	switch f.Op {
	case criteria.OpIn, criteria.OpNotIn, criteria.OpLt, criteria.OpLte, criteria.OpGt, criteria.OpGte:
		ci = false
	}
	col, param := "?.?", "?"
	if ci {
		col, param = "LOWER(?.?)", "LOWER(?)"
	}

	switch f.Op {
	case criteria.OpEquals:
		if f.Value == nil {
			return col + " IS NULL", args, nil
		}
		return col + " = " + param, append(args, f.Value), nil
	case criteria.OpNot:
		if f.Value == nil {
			return col + " IS NOT NULL", args, nil
		}
		return col + " <> " + param, append(args, f.Value), nil
	case criteria.OpIn:
		return col + " IN (?)", append(args, bun.In(f.Value)), nil
	case criteria.OpNotIn:
		return col + " NOT IN (?)", append(args, bun.In(f.Value)), nil
	case criteria.OpLt:
		return col + " < ?", append(args, f.Value), nil
	case criteria.OpLte:
		return col + " <= ?", append(args, f.Value), nil
	case criteria.OpGt:
		return col + " > ?", append(args, f.Value), nil
	case criteria.OpGte:
		return col + " >= ?", append(args, f.Value), nil
	case criteria.OpContains:
		return col + " LIKE " + param, append(args, "%"+fmt.Sprint(f.Value)+"%"), nil
	case criteria.OpStartsWith:
		return col + " LIKE " + param, append(args, fmt.Sprint(f.Value)+"%"), nil
	case criteria.OpEndsWith:
		return col + " LIKE " + param, append(args, "%"+fmt.Sprint(f.Value)), nil
	default:
		return "", nil, fmt.Errorf("%w: %q on %s", ErrUnsupportedOperator, f.Op, f.Name)
	}
}

// orderExpr resolves a possibly dotted sort field through to-one relations.
func (b *whereBuilder) orderExpr(order types.OrderBy) (string, []interface{}, error) {
	if !order.Order.IsValid() {
		return "", nil, fmt.Errorf("%w: %s", ErrInvalidOrder, order.Order.Name())
	}
	s := b.root
	segments := strings.Split(order.Field, criteria.PathSeparator)
	for _, seg := range segments[:len(segments)-1] {
		next, err := s.enter(seg)
		if err != nil {
			return "", nil, err
		}
		b.joins[next.goPath] = next
		s = next
	}
	col := s.column(segments[len(segments)-1])
	return "?.? " + order.Order.SQL(), []interface{}{bun.Ident(s.alias), bun.Ident(col)}, nil
}

// includePaths resolves an include tree to bun relation paths (Go names).
func includePaths(table *schema.Table, include types.Include) ([]string, error) {
	var out []string
	var walk func(t *schema.Table, prefix string, in types.Include) error
	walk = func(t *schema.Table, prefix string, in types.Include) error {
		for name, nested := range in {
			rel := findRelation(t, name)
			if rel == nil {
				return fmt.Errorf("%w: %s has no relation %q", ErrUnsupportedRelation, t.Name, name)
			}
			p := rel.Field.GoName
			if prefix != "" {
				p = prefix + "." + p
			}
			out = append(out, p)
			if err := walk(rel.JoinTable, p, nested); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(table, "", include); err != nil {
		return nil, err
	}
	return out, nil
}

// applyJoins adds a plain LEFT JOIN for every recorded relation that is not
// already joined by one of the loaded relation paths. The related columns
// are not selected, so such relations stay unset on the results.
func (b *whereBuilder) applyJoins(q *bun.SelectQuery, loaded []string) *bun.SelectQuery {
	paths := make([]string, 0, len(b.joins))
	for p := range b.joins {
		if !coveredBy(p, loaded) {
			paths = append(paths, p)
		}
	}
	// Parents sort before their children.
	sort.Strings(paths)
	for _, p := range paths {
		j := b.joins[p]
		on := make([]string, len(j.rel.JoinPKs))
		args := []interface{}{bun.Ident(j.table.Name), bun.Ident(j.alias)}
		for i, pk := range j.rel.JoinPKs {
			on[i] = "?.? = ?.?"
			args = append(args,
				bun.Ident(j.alias), bun.Ident(pk.Name),
				bun.Ident(j.base), bun.Ident(j.rel.BasePKs[i].Name))
		}
		q = q.Join("LEFT JOIN ? AS ? ON "+strings.Join(on, sepAnd), args...)
	}
	return q
}

func coveredBy(path string, loaded []string) bool {
	for _, l := range loaded {
		if l == path || strings.HasPrefix(l, path+".") {
			return true
		}
	}
	return false
}

// leafPaths drops every path that is a prefix of another one, since joining
// "Profile.Address" already joins "Profile". The result is sorted.
func leafPaths[V any](paths map[string]V) []string {
	out := make([]string, 0, len(paths))
	for p := range paths {
		covered := false
		for other := range paths {
			if other != p && strings.HasPrefix(other, p+".") {
				covered = true
				break
			}
		}
		if !covered {
			out = append(out, p)
		}
	}
	sort.Strings(out)
	return out
}
