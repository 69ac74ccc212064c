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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomoncle/lister/criteria"
	"github.com/tomoncle/lister/types"
)

func TestParseRequestDefaults(t *testing.T) {
	req := ParseRequest(url.Values{})
	assert.Equal(t, types.Int(1), req.Page)
	assert.False(t, req.Limit.IsSet())
	assert.Equal(t, "createdAt", req.SortBy)
	assert.Equal(t, types.SortDesc, req.Order)
	assert.Empty(t, req.Filters)
}

func TestParseRequestReservedKeys(t *testing.T) {
	req := ParseRequestMap(map[string]string{
		"page": "3", "limit": "20", "search": "jo", "sortBy": "name", "order": "asc",
	})
	assert.Equal(t, types.Int(3), req.Page)
	assert.Equal(t, types.Int(20), req.Limit)
	assert.Equal(t, "jo", req.Search)
	assert.Equal(t, "name", req.SortBy)
	assert.Equal(t, types.SortAsc, req.Order)
	assert.Empty(t, req.Filters)
}

func TestParseRequestEmptyValues(t *testing.T) {
	req := ParseRequest(url.Values{"page": {""}, "limit": {""}})
	assert.True(t, req.Page.IsNaN())
	assert.False(t, req.Limit.IsSet())
}

func TestParseRequestFilters(t *testing.T) {
	req := ParseRequest(url.Values{
		"status":       {"ACTIVE"},
		"age[gte]":     {"18"},
		"id[in]":       {"1,2", "3"},
		"role":         {"ADMIN", "OWNER"},
		"profile.city": {"Paris"},
	})

	require.Len(t, req.Filters, 5)
	assert.Equal(t, []criteria.Keyed{
		criteria.Compare("age", criteria.OpGte, "18"),
		criteria.Compare("id", criteria.OpIn, []string{"1", "2", "3"}),
		criteria.Nest("profile", criteria.Eq("city", "Paris")),
		criteria.Compare("role", criteria.OpIn, []string{"ADMIN", "OWNER"}),
		criteria.Eq("status", "ACTIVE"),
	}, req.Filters)
}

func TestParseRequestCombinesSameField(t *testing.T) {
	req := ParseRequest(url.Values{"age[gte]": {"18"}, "age[lte]": {"30"}})

	require.Len(t, req.Filters, 1)
	assert.Equal(t, criteria.Group{Name: "age", Conds: []criteria.Keyed{
		criteria.Compare("age", criteria.OpGte, "18"),
		criteria.Compare("age", criteria.OpLte, "30"),
	}}, req.Filters[0])

	where := criteria.NewWhere(nil, criteria.Merge(req.Filters, nil), nil)
	assert.JSONEq(t, `{"age":{"gte":"18","lte":"30"}}`, where.String())
}

func TestParseRequestCombinesSameRelation(t *testing.T) {
	req := ParseRequest(url.Values{"profile.city": {"Paris"}, "profile.country": {"USA"}})

	require.Len(t, req.Filters, 1)
	assert.Equal(t, criteria.Nest("profile", criteria.And{
		criteria.Eq("city", "Paris"),
		criteria.Eq("country", "USA"),
	}), req.Filters[0])

	where := criteria.NewWhere(nil, criteria.Merge(req.Filters, nil), nil)
	assert.JSONEq(t, `{"profile":{"AND":[
		{"city":{"equals":"Paris"}},
		{"country":{"equals":"USA"}}
	]}}`, where.String())
}

func TestParseRequestForcedReplacesCombinedKey(t *testing.T) {
	req := ParseRequest(url.Values{"age[gte]": {"18"}, "age[lte]": {"30"}, "name": {"bob"}})

	merged := criteria.Merge(req.Filters, criteria.NewFilters(criteria.Eq("age", 21)))
	assert.Equal(t, []string{"age", "name"}, merged.Keys())
	age, ok := merged.Get("age")
	require.True(t, ok)
	assert.Equal(t, criteria.Eq("age", 21), age)
}

func TestParseRequestUnknownOperatorIsForwarded(t *testing.T) {
	req := ParseRequest(url.Values{"name[regex]": {"^a"}})
	require.Len(t, req.Filters, 1)
	f := req.Filters[0].(criteria.Field)
	assert.Equal(t, criteria.Op("regex"), f.Op)
	assert.False(t, f.Op.Valid())
}
