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
	"math"
	"strconv"
)

type numberState uint8

const (
	numberAbsent numberState = iota
	numberNaN
	numberInt
)

// Number is an integer that may also be absent or NaN. Query string values
// are parsed the way JavaScript's parseInt does, so a malformed page or limit
// turns into NaN and travels through the pagination arithmetic instead of
// failing early.
type Number struct {
	v     int
	state numberState
}

// Int returns a present, valid Number.
func Int(v int) Number { return Number{v: v, state: numberInt} }

// NaN returns the not-a-number value.
func NaN() Number { return Number{state: numberNaN} }

// Absent returns the zero Number, meaning "not supplied".
func Absent() Number { return Number{} }

func (n Number) IsSet() bool { return n.state != numberAbsent }

func (n Number) IsNaN() bool { return n.state == numberNaN }

// Int returns the value and whether it is a usable integer.
func (n Number) Int() (int, bool) { return n.v, n.state == numberInt }

// Or returns the value, or def when n is absent or NaN.
func (n Number) Or(def int) int {
	if n.state == numberInt {
		return n.v
	}
	return def
}

// Sub returns n - m, propagating NaN and absence as NaN.
func (n Number) Sub(m Number) Number {
	a, okA := n.Int()
	b, okB := m.Int()
	if !okA || !okB {
		return NaN()
	}
	return Int(a - b)
}

// Mul returns n * m, propagating NaN and absence as NaN.
func (n Number) Mul(m Number) Number {
	a, okA := n.Int()
	b, okB := m.Int()
	if !okA || !okB {
		return NaN()
	}
	return Int(a * b)
}

// CeilDiv returns ceil(n / m). Division by zero has no integer result and
// yields NaN.
func (n Number) CeilDiv(m Number) Number {
	a, okA := n.Int()
	b, okB := m.Int()
	if !okA || !okB || b == 0 {
		return NaN()
	}
	return Int(int(math.Ceil(float64(a) / float64(b))))
}

func (n Number) String() string {
	switch n.state {
	case numberInt:
		return strconv.Itoa(n.v)
	case numberNaN:
		return "NaN"
	default:
		return "undefined"
	}
}

// MarshalJSON encodes absent and NaN as null.
func (n Number) MarshalJSON() ([]byte, error) {
	if n.state != numberInt {
		return []byte("null"), nil
	}
	return strconv.AppendInt(nil, int64(n.v), 10), nil
}

func (n *Number) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*n = NaN()
		return nil
	}
	v, err := strconv.Atoi(string(b))
	if err != nil {
		return err
	}
	*n = Int(v)
	return nil
}

// ParseInt parses s like JavaScript's parseInt(s): leading whitespace is
// skipped, an optional sign is accepted, a 0x prefix switches to base 16 and
// parsing stops at the first invalid digit. No digits, or a value that does
// not fit in an int, yields NaN.
func ParseInt(s string) Number {
	i := 0
	for i < len(s) && isSpace(s[i]) {
		i++
	}
	neg := false
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		neg = s[i] == '-'
		i++
	}
	base := 10
	if i+1 < len(s) && s[i] == '0' && (s[i+1] == 'x' || s[i+1] == 'X') {
		base = 16
		i += 2
	}
	start := i
	for i < len(s) && digitValue(s[i]) < base {
		i++
	}
	if i == start {
		return NaN()
	}
	v, err := strconv.ParseInt(s[start:i], base, 0)
	if err != nil {
		return NaN()
	}
	if neg {
		v = -v
	}
	return Int(int(v))
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return false
}

func digitValue(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10
	}
	return 99
}
