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

package criteria

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidMode indicates that a criterion selects neither literal nor regex evaluation.
	ErrInvalidMode = errors.New("invalid criteria mode")

	// ErrInvalidPattern indicates that a regex criterion does not compile.
	ErrInvalidPattern = errors.New("invalid criteria pattern")
)

// Mode selects how a criterion is compared with the request path.
type Mode uint8

const (
	// ModeLiteral compares the pattern and the path for exact equality.
	ModeLiteral Mode = 1 << iota
	// ModeRegex searches the path with the pattern as a regular expression.
	ModeRegex
	// ModeCaseInsensitive ignores case in either evaluation.
	ModeCaseInsensitive

	// ModeLiteralFold is a case-insensitive literal comparison.
	ModeLiteralFold = ModeLiteral | ModeCaseInsensitive
	// ModeRegexFold is a case-insensitive regex search.
	ModeRegexFold = ModeRegex | ModeCaseInsensitive

	// DefaultMode is used for criteria registered without an explicit mode.
	DefaultMode = ModeLiteralFold
)

// Valid reports whether m selects at least one of literal or regex evaluation.
func (m Mode) Valid() bool {
	return m&(ModeLiteral|ModeRegex) != 0
}

// Literal reports whether m includes literal evaluation.
func (m Mode) Literal() bool { return m&ModeLiteral != 0 }

// Regex reports whether m includes regex evaluation.
func (m Mode) Regex() bool { return m&ModeRegex != 0 }

// CaseInsensitive reports whether m ignores case.
func (m Mode) CaseInsensitive() bool { return m&ModeCaseInsensitive != 0 }

// String returns the canonical name used by configuration files.
func (m Mode) String() string {
	var parts []string
	if m.Literal() {
		parts = append(parts, "literal")
	}
	if m.Regex() {
		parts = append(parts, "regex")
	}
	if len(parts) == 0 {
		return fmt.Sprintf("invalid(%d)", uint8(m))
	}
	s := strings.Join(parts, "+")
	if m.CaseInsensitive() {
		s += "_i"
	}
	return s
}

// ParseMode parses a mode name such as "literal", "regex_i" or "literal+regex".
// A trailing "_i" (or a "+i" component) makes the mode case-insensitive.
// The empty string yields [DefaultMode].
func ParseMode(s string) (Mode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return DefaultMode, nil
	}

	var m Mode
	if strings.HasSuffix(s, "_i") {
		m |= ModeCaseInsensitive
		s = strings.TrimSuffix(s, "_i")
	}
	for part := range strings.SplitSeq(s, "+") {
		switch strings.TrimSpace(part) {
		case "literal", "flat", "exact":
			m |= ModeLiteral
		case "regex", "regexp", "pattern", "preg":
			m |= ModeRegex
		case "i", "insensitive", "fold":
			m |= ModeCaseInsensitive
		default:
			return 0, fmt.Errorf("%w: unknown mode %q", ErrInvalidMode, part)
		}
	}
	if !m.Valid() {
		return 0, fmt.Errorf("%w: %q", ErrInvalidMode, s)
	}
	return m, nil
}

// Criterion is a pattern plus the mode used to evaluate it.
type Criterion struct {
	Pattern string
	Mode    Mode
}

// New returns a criterion with the given pattern and mode.
func New(pattern string, mode Mode) Criterion {
	return Criterion{Pattern: pattern, Mode: mode}
}

// Literal returns a case-sensitive literal criterion.
func Literal(pattern string) Criterion { return New(pattern, ModeLiteral) }

// LiteralFold returns a case-insensitive literal criterion.
func LiteralFold(pattern string) Criterion { return New(pattern, ModeLiteralFold) }

// Pattern returns a case-sensitive regex criterion.
func Pattern(pattern string) Criterion { return New(pattern, ModeRegex) }

// PatternFold returns a case-insensitive regex criterion.
func PatternFold(pattern string) Criterion { return New(pattern, ModeRegexFold) }

// String implements fmt.Stringer.
func (c Criterion) String() string {
	return c.Mode.String() + ":" + c.Pattern
}

// Result is the outcome of evaluating one criterion.
//
// Groups holds every capturing group after the whole match, in declaration
// order. Optional groups that did not participate are reported as "".
// Literal matches never capture.
type Result struct {
	Matched bool
	Groups  []string
}
