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

package criteria

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAtPathFoldsInnermostFirst(t *testing.T) {
	got := AtPath("profile.address.city", func(name string) Field {
		return Eq(name, "Paris")
	})

	want := Relation{Name: "profile", Cond: Relation{Name: "address", Cond: Eq("city", "Paris")}}
	assert.Equal(t, want, got)
	assert.Equal(t, "profile", got.Key())
}

func TestAtPathPlainField(t *testing.T) {
	got := AtPath("name", func(name string) Field { return Eq(name, 1) })
	assert.Equal(t, Eq("name", 1), got)
}

func TestSearchBuildsOneBranchPerField(t *testing.T) {
	or := Search([]string{"name", "profile.city"}, "john")

	require.Len(t, or, 2)
	assert.Equal(t, Contains("name", "john", true), or[0])
	assert.Equal(t, Nest("profile", Contains("city", "john", true)), or[1])

	b, err := or.MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{"OR":[
		{"name":{"contains":"john","caseInsensitive":true}},
		{"profile":{"city":{"contains":"john","caseInsensitive":true}}}
	]}`, string(b))
}

func TestSearchEmpty(t *testing.T) {
	assert.Nil(t, Search(nil, "john"))
	assert.Nil(t, Search([]string{"name"}, ""))
}

func TestMergeForcedOverridesAdHoc(t *testing.T) {
	adHoc := []Keyed{Eq("status", "ACTIVE"), Eq("role", "USER")}
	forced := NewFilters(Eq("status", "BANNED"), Eq("tenant", 7))

	merged := Merge(adHoc, forced)

	assert.Equal(t, []string{"status", "role", "tenant"}, merged.Keys())
	status, ok := merged.Get("status")
	require.True(t, ok)
	assert.Equal(t, "BANNED", status.(Field).Value)
}

func TestMergeWithoutForced(t *testing.T) {
	merged := Merge([]Keyed{Eq("a", 1)}, nil)
	assert.Equal(t, 1, merged.Len())
}

func TestNewFiltersCombinesSameKey(t *testing.T) {
	f := NewFilters(
		Compare("age", OpGte, 18),
		Eq("status", "ACTIVE"),
		Compare("age", OpLte, 30),
	)

	assert.Equal(t, []string{"age", "status"}, f.Keys())
	age, ok := f.Get("age")
	require.True(t, ok)
	assert.Equal(t, Group{Name: "age", Conds: []Keyed{Compare("age", OpGte, 18), Compare("age", OpLte, 30)}}, age)

	b, err := f.MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{"age":{"gte":18,"lte":30},"status":{"equals":"ACTIVE"}}`, string(b))
}

func TestCombineRelations(t *testing.T) {
	got := Combine(
		Nest("profile", Nest("address", Eq("city", "Paris"))),
		Nest("profile", Nest("address", Eq("zip", "75001"))),
	)
	assert.Equal(t, Nest("profile", Nest("address", And{Eq("city", "Paris"), Eq("zip", "75001")})), got)

	got = Combine(got, Nest("profile", Eq("country", "France")))
	assert.Equal(t, Nest("profile", And{
		Nest("address", And{Eq("city", "Paris"), Eq("zip", "75001")}),
		Eq("country", "France"),
	}), got)
}

func TestCombineFieldAndRelation(t *testing.T) {
	g := Combine(Compare("profile", OpNot, nil), Nest("profile", Eq("city", "Paris")))
	g = Combine(g, Nest("profile", Eq("country", "France")))

	assert.Equal(t, Group{Name: "profile", Conds: []Keyed{
		Compare("profile", OpNot, nil),
		Nest("profile", And{Eq("city", "Paris"), Eq("country", "France")}),
	}}, g)

	b, err := json.Marshal(g)
	require.NoError(t, err)
	assert.JSONEq(t, `{"profile":{"AND":[
		{"profile":{"not":null}},
		{"profile":{"AND":[{"city":{"equals":"Paris"}},{"country":{"equals":"France"}}]}}
	]}}`, string(b))
}

func TestGroupSameOperatorTwice(t *testing.T) {
	g := Combine(Compare("age", OpNot, 1), Compare("age", OpNot, 2))

	b, err := json.Marshal(g)
	require.NoError(t, err)
	assert.JSONEq(t, `{"age":{"AND":[{"age":{"not":1}},{"age":{"not":2}}]}}`, string(b))
}

func TestMergeForcedReplacesCombinedKey(t *testing.T) {
	adHoc := []Keyed{Compare("age", OpGte, 18), Compare("age", OpLte, 30)}
	merged := Merge(adHoc, NewFilters(Eq("age", 21)))

	assert.Equal(t, 1, merged.Len())
	age, _ := merged.Get("age")
	assert.Equal(t, Eq("age", 21), age)
}

func TestWhereJSON(t *testing.T) {
	w := NewWhere(
		Search([]string{"name"}, "jo"),
		Merge([]Keyed{Eq("status", "ACTIVE")}, NewFilters(Eq("status", "BANNED"))),
		[]Condition{Nest("profile", Eq("country", "USA"))},
	)

	b, err := w.MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"OR":[{"name":{"contains":"jo","caseInsensitive":true}}],
		"status":{"equals":"BANNED"},
		"AND":[{"profile":{"country":{"equals":"USA"}}}]
	}`, string(b))
	assert.Len(t, w.Conditions(), 3)
}

func TestWhereEmpty(t *testing.T) {
	w := NewWhere(nil, nil, nil)
	assert.True(t, w.IsEmpty())
	assert.Empty(t, w.Conditions())
	assert.Equal(t, "{}", w.String())
}

func TestWhereRelationsOnly(t *testing.T) {
	w := NewWhere(nil, NewFilters(), []Condition{Nest("profile", Eq("country", "USA"))})
	assert.JSONEq(t, `{"AND":[{"profile":{"country":{"equals":"USA"}}}]}`, w.String())
	assert.Equal(t, And{Nest("profile", Eq("country", "USA"))}, w.Relations)
}

func TestOpValid(t *testing.T) {
	assert.True(t, OpGte.Valid())
	assert.False(t, Op("regex").Valid())
}
