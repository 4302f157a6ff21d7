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
	"fmt"
	"regexp"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize is the number of compiled patterns a Matcher keeps by default.
const DefaultCacheSize = 512

// Matcher evaluates criteria against request paths.
//
// Thread-safety: a Matcher is safe for concurrent use. The pattern cache is
// the only shared state and it is internally synchronized.
type Matcher struct {
	cache *lru.Cache[string, *regexp.Regexp]
}

// MatcherOption configures a Matcher.
type MatcherOption func(*matcherConfig)

type matcherConfig struct {
	cacheSize int
}

// WithCacheSize bounds the number of compiled patterns kept by the matcher.
// Values below 1 fall back to [DefaultCacheSize].
func WithCacheSize(size int) MatcherOption {
	return func(cfg *matcherConfig) {
		cfg.cacheSize = size
	}
}

// NewMatcher returns a Matcher with a bounded compiled-pattern cache.
func NewMatcher(opts ...MatcherOption) *Matcher {
	cfg := &matcherConfig{cacheSize: DefaultCacheSize}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.cacheSize < 1 {
		cfg.cacheSize = DefaultCacheSize
	}

	// lru.New only fails for non-positive sizes, which are excluded above.
	cache, _ := lru.New[string, *regexp.Regexp](cfg.cacheSize)
	return &Matcher{cache: cache}
}

var defaultMatcher = NewMatcher()

// Evaluate evaluates c against path with the package-level matcher.
func Evaluate(c Criterion, prefix, path string) (Result, error) {
	return defaultMatcher.Evaluate(c, prefix, path)
}

// Evaluate tests c against path. A non-empty prefix is prepended to the
// criterion before comparison.
//
// A non-match returns a zero Result and a nil error. Errors are reserved for
// programmer mistakes: [ErrInvalidMode] and [ErrInvalidPattern].
func (m *Matcher) Evaluate(c Criterion, prefix, path string) (Result, error) {
	if !c.Mode.Valid() {
		return Result{}, fmt.Errorf("%w: %d", ErrInvalidMode, uint8(c.Mode))
	}

	if c.Mode.Literal() {
		ref := prefix + c.Pattern
		if c.Mode.CaseInsensitive() {
			if strings.EqualFold(ref, path) {
				return Result{Matched: true, Groups: []string{}}, nil
			}
		} else if ref == path {
			return Result{Matched: true, Groups: []string{}}, nil
		}
	}

	if !c.Mode.Regex() {
		return Result{}, nil
	}

	re, err := m.compile(c, prefix)
	if err != nil {
		return Result{}, err
	}

	loc := re.FindStringSubmatchIndex(path)
	if loc == nil {
		return Result{}, nil
	}

	groups := make([]string, 0, re.NumSubexp())
	for i := 1; i <= re.NumSubexp(); i++ {
		start, end := loc[2*i], loc[2*i+1]
		if start < 0 {
			groups = append(groups, "")
			continue
		}
		groups = append(groups, path[start:end])
	}

	return Result{Matched: true, Groups: groups}, nil
}

// compile returns the compiled form of c with prefix applied, using the cache.
func (m *Matcher) compile(c Criterion, prefix string) (*regexp.Regexp, error) {
	expr := Expression(c, prefix)
	if re, ok := m.cache.Get(expr); ok {
		return re, nil
	}

	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrInvalidPattern, c.Pattern, err)
	}
	m.cache.Add(expr, re)
	return re, nil
}

// leadingFlags matches the inline flag groups, such as "(?i)", that open a
// pattern.
var leadingFlags = regexp.MustCompile(`^(?:\(\?[imsU-]+\))+`)

// Expression returns the regular expression source evaluated for a regex
// criterion.
//
// The prefix is quoted with [regexp.QuoteMeta] and so always matches
// literally; regex syntax in a prefix is not interpreted. It is placed after
// any leading inline flag groups and a leading "^" anchor, so "(?i)^/x$" with
// prefix "/api" becomes "(?i)^/api/x$".
func Expression(c Criterion, prefix string) string {
	expr := c.Pattern
	if prefix != "" {
		quoted := regexp.QuoteMeta(prefix)
		flags := leadingFlags.FindString(expr)
		body := expr[len(flags):]
		if rest, ok := strings.CutPrefix(body, "^"); ok {
			expr = flags + "^" + quoted + rest
		} else {
			expr = flags + quoted + body
		}
	}
	if c.Mode.CaseInsensitive() {
		expr = "(?i)" + expr
	}
	return expr
}

// Len returns the number of compiled patterns currently cached.
func (m *Matcher) Len() int {
	return m.cache.Len()
}

// Validate reports the error Evaluate would return for c with prefix,
// without a path. Regex criteria are compiled and cached.
func (m *Matcher) Validate(c Criterion, prefix string) error {
	if !c.Mode.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidMode, uint8(c.Mode))
	}
	if c.Mode.Regex() {
		_, err := m.compile(c, prefix)
		return err
	}
	return nil
}
