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

import "bytes"

// Group holds several conditions addressed by the same top-level name, all
// of which must match. It comes from requests such as
// "age[gte]=18&age[lte]=30".
type Group struct {
	Name  string
	Conds []Keyed
}

func (Group) condition() {}

func (g Group) Key() string { return g.Name }

// Combine joins two conditions sharing a key into one that requires both.
// Relations merge into a single relation over the conjunction of their inner
// conditions; anything else becomes a Group.
func Combine(a, b Keyed) Keyed {
	ra, okA := a.(Relation)
	rb, okB := b.(Relation)
	if okA && okB {
		return Relation{Name: ra.Name, Cond: combineCond(ra.Cond, rb.Cond)}
	}
	conds := appendKeyed(nil, a)
	conds = appendKeyed(conds, b)
	return Group{Name: a.Key(), Conds: conds}
}

func appendKeyed(dst []Keyed, k Keyed) []Keyed {
	switch c := k.(type) {
	case Group:
		for _, inner := range c.Conds {
			dst = appendKeyed(dst, inner)
		}
		return dst
	case Relation:
		for i, prev := range dst {
			if _, ok := prev.(Relation); ok {
				dst[i] = Combine(prev, c)
				return dst
			}
		}
	}
	return append(dst, k)
}

func combineCond(x, y Condition) Condition {
	if x == nil {
		return y
	}
	if y == nil {
		return x
	}
	kx, okX := x.(Keyed)
	ky, okY := y.(Keyed)
	if okX && okY && kx.Key() == ky.Key() {
		return Combine(kx, ky)
	}
	var out And
	for _, c := range []Condition{x, y} {
		if a, ok := c.(And); ok {
			out = append(out, a...)
		} else {
			out = append(out, c)
		}
	}
	return out
}

// Conditions returns the members as plain conditions.
func (g Group) Conditions() []Condition {
	out := make([]Condition, len(g.Conds))
	for i, c := range g.Conds {
		out[i] = c
	}
	return out
}

// MarshalJSON renders a group of plain field conditions with distinct
// operators as one object, {"age":{"gte":18,"lte":30}}, and any other group
// as {"name":{"AND":[...]}}.
func (g Group) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	if err := writeKey(&buf, g.Name); err != nil {
		return nil, err
	}
	if fields, ok := g.fieldOps(); ok {
		buf.WriteByte('{')
		for i, f := range fields {
			if i > 0 {
				buf.WriteByte(',')
			}
			b, err := f.opMember()
			if err != nil {
				return nil, err
			}
			buf.Write(b)
		}
		if fields[0].CaseInsensitive {
			buf.WriteString(`,"caseInsensitive":true`)
		}
		buf.WriteString("}}")
		return buf.Bytes(), nil
	}
	buf.WriteString(`{"AND":`)
	if err := writeList(&buf, g.Conditions()); err != nil {
		return nil, err
	}
	buf.WriteString("}}")
	return buf.Bytes(), nil
}

func (g Group) fieldOps() ([]Field, bool) {
	if len(g.Conds) == 0 {
		return nil, false
	}
	fields := make([]Field, 0, len(g.Conds))
	seen := make(map[Op]struct{}, len(g.Conds))
	for _, c := range g.Conds {
		f, ok := c.(Field)
		if !ok || f.CaseInsensitive != g.first().CaseInsensitive {
			return nil, false
		}
		if _, dup := seen[f.Op]; dup {
			return nil, false
		}
		seen[f.Op] = struct{}{}
		fields = append(fields, f)
	}
	return fields, true
}

func (g Group) first() Field {
	f, _ := g.Conds[0].(Field)
	return f
}
