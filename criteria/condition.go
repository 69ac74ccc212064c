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
	"bytes"
	"encoding/json"
)

// Op is a comparison operator applied to a single field.
type Op string

const (
	OpEquals     Op = "equals"
	OpNot        Op = "not"
	OpIn         Op = "in"
	OpNotIn      Op = "notIn"
	OpLt         Op = "lt"
	OpLte        Op = "lte"
	OpGt         Op = "gt"
	OpGte        Op = "gte"
	OpContains   Op = "contains"
	OpStartsWith Op = "startsWith"
	OpEndsWith   Op = "endsWith"
)

var knownOps = map[Op]struct{}{
	OpEquals: {}, OpNot: {}, OpIn: {}, OpNotIn: {},
	OpLt: {}, OpLte: {}, OpGt: {}, OpGte: {},
	OpContains: {}, OpStartsWith: {}, OpEndsWith: {},
}

// Valid reports whether op is one of the supported operators.
func (op Op) Valid() bool {
	_, ok := knownOps[op]
	return ok
}

// Condition is a node of a filter expression. The set of implementations is
// closed: Field, Relation, Group, And and Or.
type Condition interface {
	json.Marshaler
	condition()
}

// Keyed is a condition addressed by a top-level name. Only keyed conditions
// take part in filter merging.
type Keyed interface {
	Condition
	Key() string
}

// Field compares a column of the current entity.
type Field struct {
	Name            string
	Op              Op
	Value           any
	CaseInsensitive bool
}

// Relation applies Cond to the entity reached through relation Name.
type Relation struct {
	Name string
	Cond Condition
}

// And matches when every child matches.
type And []Condition

// Or matches when at least one child matches.
type Or []Condition

func (Field) condition()    {}
func (Relation) condition() {}
func (And) condition()      {}
func (Or) condition()       {}

func (f Field) Key() string    { return f.Name }
func (r Relation) Key() string { return r.Name }

// Eq builds an equality condition.
func Eq(name string, value any) Field { return Field{Name: name, Op: OpEquals, Value: value} }

// Contains builds a substring match; insensitive selects case folding.
func Contains(name, value string, insensitive bool) Field {
	return Field{Name: name, Op: OpContains, Value: value, CaseInsensitive: insensitive}
}

// Compare builds a condition with an arbitrary operator.
func Compare(name string, op Op, value any) Field { return Field{Name: name, Op: op, Value: value} }

// Nest wraps cond under relation name.
func Nest(name string, cond Condition) Relation { return Relation{Name: name, Cond: cond} }

func (f Field) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	if err := writeKey(&buf, f.Name); err != nil {
		return nil, err
	}
	buf.WriteByte('{')
	member, err := f.opMember()
	if err != nil {
		return nil, err
	}
	buf.Write(member)
	if f.CaseInsensitive {
		buf.WriteString(`,"caseInsensitive":true`)
	}
	buf.WriteString("}}")
	return buf.Bytes(), nil
}

// opMember renders "op":value.
func (f Field) opMember() ([]byte, error) {
	var buf bytes.Buffer
	if err := writeKey(&buf, string(f.Op)); err != nil {
		return nil, err
	}
	v, err := json.Marshal(f.Value)
	if err != nil {
		return nil, err
	}
	buf.Write(v)
	return buf.Bytes(), nil
}

// MarshalJSON renders the relation as {"name": <cond>} where <cond> is the
// inner condition's own object, so a folded path reads as nested objects.
func (r Relation) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	if err := writeKey(&buf, r.Name); err != nil {
		return nil, err
	}
	if r.Cond == nil {
		buf.WriteString("{}}")
		return buf.Bytes(), nil
	}
	inner, err := r.Cond.MarshalJSON()
	if err != nil {
		return nil, err
	}
	buf.Write(inner)
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (a And) MarshalJSON() ([]byte, error) { return marshalGroup("AND", a) }

func (o Or) MarshalJSON() ([]byte, error) { return marshalGroup("OR", o) }

func marshalGroup(name string, conds []Condition) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	if err := writeKey(&buf, name); err != nil {
		return nil, err
	}
	if err := writeList(&buf, conds); err != nil {
		return nil, err
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func writeList(buf *bytes.Buffer, conds []Condition) error {
	buf.WriteByte('[')
	for i, c := range conds {
		if i > 0 {
			buf.WriteByte(',')
		}
		b, err := c.MarshalJSON()
		if err != nil {
			return err
		}
		buf.Write(b)
	}
	buf.WriteByte(']')
	return nil
}

func writeKey(buf *bytes.Buffer, key string) error {
	k, err := json.Marshal(key)
	if err != nil {
		return err
	}
	buf.Write(k)
	buf.WriteByte(':')
	return nil
}
