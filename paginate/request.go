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
	"net/url"
	"sort"
	"strings"

	"github.com/tomoncle/lister/criteria"
	"github.com/tomoncle/lister/types"
)

// Reserved query keys. Every other key is an ad-hoc filter.
const (
	KeyPage   = "page"
	KeyLimit  = "limit"
	KeySearch = "search"
	KeySortBy = "sortBy"
	KeyOrder  = "order"
)

const listSeparator = ","

func isReserved(key string) bool {
	switch key {
	case KeyPage, KeyLimit, KeySearch, KeySortBy, KeyOrder:
		return true
	}
	return false
}

// ParseRequest decodes a URL query into a Request.
//
// page is parsed whenever present, so page= yields NaN; an empty limit counts
// as absent. Residual keys become filters: "status=A" is an equality,
// "age[gte]=18" uses the bracketed operator, "id[in]=1,2" splits on commas,
// "profile.city=Paris" nests under relation profile and a plain key given
// several times becomes an "in". Keys sharing a top-level name, such as
// "age[gte]" and "age[lte]", combine into one filter that requires all of
// them. Filters are ordered by key.
func ParseRequest(values url.Values) *types.Request {
	req := types.NewRequest()
	if v, ok := first(values, KeyPage); ok {
		req.Page = types.ParseInt(v)
	}
	if v, ok := first(values, KeyLimit); ok && v != "" {
		req.Limit = types.ParseInt(v)
	}
	req.Search = values.Get(KeySearch)
	if v := values.Get(KeySortBy); v != "" {
		req.SortBy = v
	}
	req.Order = types.ParseSortOrder(values.Get(KeyOrder))

	keys := make([]string, 0, len(values))
	for k := range values {
		if !isReserved(k) && len(values[k]) > 0 {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	at := make(map[string]int, len(keys))
	for _, k := range keys {
		cond := parseFilter(k, values[k])
		if i, ok := at[cond.Key()]; ok {
			req.Filters[i] = criteria.Combine(req.Filters[i], cond)
			continue
		}
		at[cond.Key()] = len(req.Filters)
		req.Filters = append(req.Filters, cond)
	}
	return req
}

// ParseRequestMap is ParseRequest for single-valued inputs.
func ParseRequestMap(m map[string]string) *types.Request {
	values := make(url.Values, len(m))
	for k, v := range m {
		values.Set(k, v)
	}
	return ParseRequest(values)
}

func first(values url.Values, key string) (string, bool) {
	vs, ok := values[key]
	if !ok || len(vs) == 0 {
		return "", false
	}
	return vs[0], true
}

func parseFilter(key string, vals []string) criteria.Keyed {
	path, op := key, criteria.OpEquals
	if i := strings.IndexByte(key, '['); i > 0 && strings.HasSuffix(key, "]") {
		path, op = key[:i], criteria.Op(key[i+1:len(key)-1])
	}

	var value any = vals[0]
	switch {
	case op == criteria.OpIn || op == criteria.OpNotIn:
		var items []string
		for _, v := range vals {
			items = append(items, strings.Split(v, listSeparator)...)
		}
		value = items
	case op == criteria.OpEquals && len(vals) > 1:
		op = criteria.OpIn
		value = append([]string(nil), vals...)
	}

	return criteria.AtPath(path, func(name string) criteria.Field {
		return criteria.Compare(name, op, value)
	})
}
