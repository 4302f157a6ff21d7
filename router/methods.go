// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package router

import (
	"fmt"
	"strings"
)

// MethodMask is a set of HTTP verbs, one bit per verb.
type MethodMask uint8

// Verb bits. The values are fixed and may be stored or combined with "|".
const (
	MethodDelete  MethodMask = 1 << iota // 1
	MethodGet                            // 2
	MethodHead                           // 4
	MethodOptions                        // 8
	MethodPatch                          // 16
	MethodPost                           // 32
	MethodPut                            // 64

	// MethodAny is the union of every verb. It is a matching mask only; a
	// request is never in the MethodAny state.
	MethodAny = MethodDelete | MethodGet | MethodHead | MethodOptions | MethodPatch | MethodPost | MethodPut
)

var verbs = [...]struct {
	name string
	bit  MethodMask
}{
	{"DELETE", MethodDelete},
	{"GET", MethodGet},
	{"HEAD", MethodHead},
	{"OPTIONS", MethodOptions},
	{"PATCH", MethodPatch},
	{"POST", MethodPost},
	{"PUT", MethodPut},
}

// MethodMaskFor returns the single bit for verb. The verb is upper-cased
// first. ok is false for verbs outside the fixed table.
func MethodMaskFor(verb string) (mask MethodMask, ok bool) {
	verb = strings.ToUpper(strings.TrimSpace(verb))
	for _, v := range verbs {
		if v.name == verb {
			return v.bit, true
		}
	}
	return 0, false
}

// ParseMethodMask reads a mask written as verbs joined by "|" or ",",
// for example "GET|POST". "ANY" and "*" select every verb.
func ParseMethodMask(s string) (MethodMask, error) {
	var mask MethodMask
	for field := range strings.FieldsFuncSeq(s, func(r rune) bool { return r == '|' || r == ',' || r == ' ' }) {
		if field == "*" || strings.EqualFold(field, "ANY") {
			mask |= MethodAny
			continue
		}
		bit, ok := MethodMaskFor(field)
		if !ok {
			return 0, fmt.Errorf("%w: unknown verb %q", ErrInvalidMethodMask, field)
		}
		mask |= bit
	}
	if mask == 0 {
		return 0, fmt.Errorf("%w: %q selects no verb", ErrInvalidMethodMask, s)
	}
	return mask, nil
}

// Valid reports whether m selects at least one verb and no unknown bits.
func (m MethodMask) Valid() bool {
	return m != 0 && m&^MethodAny == 0
}

// Has reports whether m and other share a verb.
func (m MethodMask) Has(other MethodMask) bool {
	return m&other != 0
}

// Single reports whether m selects exactly one verb.
func (m MethodMask) Single() bool {
	return m.Valid() && m&(m-1) == 0
}

// String returns the verbs in m joined by "|", or "ANY" for the full set.
func (m MethodMask) String() string {
	switch {
	case m == MethodAny:
		return "ANY"
	case m == 0:
		return "NONE"
	}

	var b strings.Builder
	for _, v := range verbs {
		if m&v.bit == 0 {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('|')
		}
		b.WriteString(v.name)
	}
	if rest := m &^ MethodAny; rest != 0 {
		if b.Len() > 0 {
			b.WriteByte('|')
		}
		fmt.Fprintf(&b, "0x%02x", uint8(rest))
	}
	return b.String()
}
