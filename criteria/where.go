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

// Where is the complete filter of a list query: an optional search
// disjunction, the merged field filters and the relation filters, all
// combined conjunctively.
type Where struct {
	Search    Or
	Filters   *Filters
	Relations And
}

// NewWhere assembles the final criteria. Empty parts contribute nothing.
func NewWhere(search Or, filters *Filters, relations []Condition) Where {
	w := Where{Search: search, Filters: filters}
	if len(relations) > 0 {
		w.Relations = append(And(nil), relations...)
	}
	return w
}

// Conditions flattens w into its top-level conjuncts.
func (w Where) Conditions() []Condition {
	var out []Condition
	if len(w.Search) > 0 {
		out = append(out, w.Search)
	}
	out = append(out, w.Filters.Conditions()...)
	if len(w.Relations) > 0 {
		out = append(out, w.Relations)
	}
	return out
}

func (w Where) IsEmpty() bool {
	return len(w.Search) == 0 && w.Filters.Len() == 0 && len(w.Relations) == 0
}

// MarshalJSON renders w as a single object: {"OR":[...], <fields>, "AND":[...]}.
func (w Where) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	if len(w.Search) > 0 {
		buf.WriteString(`"OR":`)
		if err := writeList(&buf, w.Search); err != nil {
			return nil, err
		}
		first = false
	}
	var err error
	if first, err = w.Filters.writeMembers(&buf, first); err != nil {
		return nil, err
	}
	if len(w.Relations) > 0 {
		if !first {
			buf.WriteByte(',')
		}
		buf.WriteString(`"AND":`)
		if err := writeList(&buf, w.Relations); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (w Where) String() string {
	b, err := w.MarshalJSON()
	if err != nil {
		return "<invalid criteria: " + err.Error() + ">"
	}
	return string(b)
}
