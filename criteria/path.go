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

import "strings"

// PathSeparator splits a field path into relation segments.
const PathSeparator = "."

// AtPath builds the condition for a possibly dotted field path. leaf builds
// the comparison for the last segment; every preceding segment, walking from
// the innermost outward, wraps the result in a Relation. "profile.city"
// therefore becomes Relation{profile, Field{city, ...}}.
func AtPath(path string, leaf func(name string) Field) Keyed {
	segments := strings.Split(path, PathSeparator)
	var cond Keyed = leaf(segments[len(segments)-1])
	for i := len(segments) - 2; i >= 0; i-- {
		cond = Relation{Name: segments[i], Cond: cond}
	}
	return cond
}

// Search builds a disjunction with one case-insensitive contains condition
// per searchable field. It returns nil when term or fields is empty.
func Search(fields []string, term string) Or {
	if term == "" || len(fields) == 0 {
		return nil
	}
	or := make(Or, 0, len(fields))
	for _, f := range fields {
		or = append(or, AtPath(f, func(name string) Field {
			return Contains(name, term, true)
		}))
	}
	return or
}

