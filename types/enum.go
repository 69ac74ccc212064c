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

import "encoding/json"

// Common illegal/default values used by enums.
const (
	IllegalValue = -1
	IllegalName  = "unknown"
	IllegalDesc  = "unknown"
)

// BaseEnum represents a basic enum contract used by domain types.
type BaseEnum interface {
	IsValid() bool
	Number() int
	String() string
	Desc() string
	Name() string
}

// SortOrder is the direction of a single-key ordering.
type SortOrder int

const (
	SortIllegal SortOrder = IllegalValue
	SortDesc    SortOrder = 0
	SortAsc     SortOrder = 1
)

var _ BaseEnum = SortDesc

// ParseSortOrder maps "asc"/"desc" to a SortOrder. Empty input yields the
// default (descending); anything else is SortIllegal.
func ParseSortOrder(s string) SortOrder {
	switch s {
	case "":
		return SortDesc
	case "desc":
		return SortDesc
	case "asc":
		return SortAsc
	default:
		return SortIllegal
	}
}

func (o SortOrder) IsValid() bool { return o == SortAsc || o == SortDesc }

func (o SortOrder) Number() int { return int(o) }

func (o SortOrder) Name() string {
	switch o {
	case SortAsc:
		return "asc"
	case SortDesc:
		return "desc"
	default:
		return IllegalName
	}
}

func (o SortOrder) String() string { return o.Name() }

func (o SortOrder) Desc() string {
	switch o {
	case SortAsc:
		return "ascending"
	case SortDesc:
		return "descending"
	default:
		return IllegalDesc
	}
}

// SQL returns the keyword used in an ORDER BY clause.
func (o SortOrder) SQL() string {
	if o == SortAsc {
		return "ASC"
	}
	return "DESC"
}

func (o SortOrder) MarshalJSON() ([]byte, error) {
	return json.Marshal(o.Name())
}
