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

package types

import (
	"sort"
	"strings"

	"github.com/tomoncle/lister/criteria"
)

// DefaultSortBy is the ordering field used when a request names none.
const DefaultSortBy = "createdAt"

// Request is a decoded list request. Page and Limit keep JavaScript parseInt
// semantics, so they may be NaN when the raw input was malformed.
type Request struct {
	Page    Number
	Limit   Number
	Search  string
	SortBy  string
	Order   SortOrder
	Filters []criteria.Keyed
}

// NewRequest returns a request for the first page with default ordering and
// no limit.
func NewRequest() *Request {
	return &Request{
		Page:   Int(1),
		SortBy: DefaultSortBy,
		Order:  SortDesc,
	}
}

// OrderBy is a single-key ordering.
type OrderBy struct {
	Field string
	Order SortOrder
}

// Include describes relations to eager-load. Each key names a relation of
// the current entity; a non-empty value loads nested relations of it.
type Include map[string]Include

// Paths flattens the tree into dotted relation paths, parents first and
// siblings sorted, e.g. {"posts": {"comments": nil}} -> [posts posts.comments].
func (in Include) Paths() []string {
	var out []string
	in.collect("", &out)
	return out
}

func (in Include) collect(prefix string, out *[]string) {
	keys := make([]string, 0, len(in))
	for k := range in {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		p := k
		if prefix != "" {
			p = strings.Join([]string{prefix, k}, criteria.PathSeparator)
		}
		*out = append(*out, p)
		in[k].collect(p, out)
	}
}

// FindOptions are the arguments of a page fetch. Skip and Take may be
// absent (no bound) or NaN (malformed input the store is expected to reject).
type FindOptions struct {
	Where   criteria.Where
	Skip    Number
	Take    Number
	OrderBy OrderBy
	Include Include
}

// CountOptions are the arguments of a total count.
type CountOptions struct {
	Where criteria.Where
}

// Meta is the pagination block of an Envelope.
type Meta struct {
	CurrentPage Number `json:"currentPage"`
	TotalPages  Number `json:"totalPages"`
	TotalItems  int    `json:"totalItems"`
	PerPage     Number `json:"perPage"`
}

// Envelope is the {meta, data} response of a list call.
type Envelope[T any] struct {
	Meta Meta `json:"meta"`
	Data []*T `json:"data"`
}

// NewEnvelope returns an envelope with a non-nil data slice.
func NewEnvelope[T any](meta Meta, data []*T) *Envelope[T] {
	if data == nil {
		data = make([]*T, 0)
	}
	return &Envelope[T]{Meta: meta, Data: data}
}
