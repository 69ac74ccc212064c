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

// Filters is an insertion-ordered set of keyed conditions. Setting a key that
// already exists replaces the condition in place and keeps its position.
type Filters struct {
	keys  []string
	conds map[string]Keyed
}

// NewFilters returns Filters holding conds in order. Conditions sharing a key
// are combined, not replaced.
func NewFilters(conds ...Keyed) *Filters {
	f := &Filters{conds: make(map[string]Keyed, len(conds))}
	for _, c := range conds {
		f.Add(c)
	}
	return f
}

// Add stores cond under its key, combining it with an earlier condition on
// the same key so that both must hold.
func (f *Filters) Add(cond Keyed) {
	if prev, ok := f.Get(cond.Key()); ok {
		cond = Combine(prev, cond)
	}
	f.Set(cond)
}

// Set stores cond under its key, overwriting an earlier condition.
func (f *Filters) Set(cond Keyed) {
	if f.conds == nil {
		f.conds = make(map[string]Keyed)
	}
	k := cond.Key()
	if _, ok := f.conds[k]; !ok {
		f.keys = append(f.keys, k)
	}
	f.conds[k] = cond
}

// Get returns the condition stored under key.
func (f *Filters) Get(key string) (Keyed, bool) {
	if f == nil {
		return nil, false
	}
	c, ok := f.conds[key]
	return c, ok
}

func (f *Filters) Len() int {
	if f == nil {
		return 0
	}
	return len(f.keys)
}

// Keys returns the keys in insertion order.
func (f *Filters) Keys() []string {
	if f == nil {
		return nil
	}
	out := make([]string, len(f.keys))
	copy(out, f.keys)
	return out
}

// Conditions returns the stored conditions in insertion order.
func (f *Filters) Conditions() []Condition {
	if f == nil {
		return nil
	}
	out := make([]Condition, 0, len(f.keys))
	for _, k := range f.keys {
		out = append(out, f.conds[k])
	}
	return out
}

// Merge applies the ad-hoc filters first and overlays forced on top, so a
// forced condition replaces every ad-hoc condition on the same key. Ad-hoc
// conditions sharing a key are combined.
func Merge(adHoc []Keyed, forced *Filters) *Filters {
	merged := NewFilters(adHoc...)
	if forced == nil {
		return merged
	}
	for _, k := range forced.keys {
		merged.Set(forced.conds[k])
	}
	return merged
}

func (f *Filters) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	if _, err := f.writeMembers(&buf, true); err != nil {
		return nil, err
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// writeMembers writes each condition's members without the enclosing braces
// and reports whether the object is still empty.
func (f *Filters) writeMembers(buf *bytes.Buffer, first bool) (bool, error) {
	for _, c := range f.Conditions() {
		b, err := c.MarshalJSON()
		if err != nil {
			return first, err
		}
		inner := bytes.TrimSpace(b)
		inner = inner[1 : len(inner)-1]
		if len(inner) == 0 {
			continue
		}
		if !first {
			buf.WriteByte(',')
		}
		buf.Write(inner)
		first = false
	}
	return first, nil
}

var _ json.Marshaler = (*Filters)(nil)
