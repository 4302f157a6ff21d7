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
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatcher_Evaluate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		criterion  Criterion
		prefix     string
		path       string
		wantMatch  bool
		wantGroups []string
	}{
		{
			name:       "literal exact",
			criterion:  Literal("/users"),
			path:       "/users",
			wantMatch:  true,
			wantGroups: []string{},
		},
		{
			name:      "literal is case sensitive",
			criterion: Literal("/Users"),
			path:      "/users",
		},
		{
			name:       "literal fold",
			criterion:  LiteralFold("/Users"),
			path:       "/users",
			wantMatch:  true,
			wantGroups: []string{},
		},
		{
			name:      "literal does not match partial path",
			criterion: LiteralFold("/users"),
			path:      "/users/1",
		},
		{
			name:       "regex captures in order",
			criterion:  Pattern(`^/item/([0-9]+)$`),
			path:       "/item/42",
			wantMatch:  true,
			wantGroups: []string{"42"},
		},
		{
			name:       "regex captures multiple groups",
			criterion:  Pattern(`^/(\w+)/(\d+)/(\d+)$`),
			path:       "/orders/7/19",
			wantMatch:  true,
			wantGroups: []string{"orders", "7", "19"},
		},
		{
			name:       "regex without groups",
			criterion:  Pattern(`^/health`),
			path:       "/healthz",
			wantMatch:  true,
			wantGroups: []string{},
		},
		{
			name:       "unmatched optional group is empty",
			criterion:  Pattern(`^/a(/b)?/(c)$`),
			path:       "/a/c",
			wantMatch:  true,
			wantGroups: []string{"", "c"},
		},
		{
			name:      "regex is case sensitive",
			criterion: Pattern(`^/Item$`),
			path:      "/item",
		},
		{
			name:       "regex fold uses inline flag",
			criterion:  PatternFold(`^/Item/([a-z]+)$`),
			path:       "/ITEM/AbC",
			wantMatch:  true,
			wantGroups: []string{"AbC"},
		},
		{
			name:       "regex searches the whole path not line by line",
			criterion:  Pattern(`users$`),
			path:       "/users",
			wantMatch:  true,
			wantGroups: []string{},
		},
		{
			name:       "literal prefix composition",
			criterion:  LiteralFold("/v1/ping"),
			prefix:     "/api",
			path:       "/api/v1/ping",
			wantMatch:  true,
			wantGroups: []string{},
		},
		{
			name:      "literal prefix is required",
			criterion: LiteralFold("/v1/ping"),
			prefix:    "/api",
			path:      "/v1/ping",
		},
		{
			name:       "regex prefix after anchor",
			criterion:  Pattern(`^/v1/(\w+)$`),
			prefix:     "/api",
			path:       "/api/v1/ping",
			wantMatch:  true,
			wantGroups: []string{"ping"},
		},
		{
			name:      "regex prefix is required",
			criterion: Pattern(`^/v1/(\w+)$`),
			prefix:    "/api",
			path:      "/v1/ping",
		},
		{
			name:      "regex prefix is literal text",
			criterion: Pattern(`^/x$`),
			prefix:    "/a.b",
			path:      "/aXb/x",
		},
		{
			name:       "both modes fall back to regex",
			criterion:  New(`^/n/(\d+)$`, ModeLiteral|ModeRegex),
			path:       "/n/5",
			wantMatch:  true,
			wantGroups: []string{"5"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			m := NewMatcher()
			res, err := m.Evaluate(tt.criterion, tt.prefix, tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.wantMatch, res.Matched)
			if tt.wantMatch {
				assert.Equal(t, tt.wantGroups, res.Groups)
			} else {
				assert.Empty(t, res.Groups)
			}
		})
	}
}

func TestMatcher_LiteralShortCircuitsRegex(t *testing.T) {
	t.Parallel()

	m := NewMatcher()
	// The pattern is not valid regex; a literal hit must not compile it.
	res, err := m.Evaluate(New("/a(b", ModeLiteral|ModeRegex), "", "/a(b")
	require.NoError(t, err)
	assert.True(t, res.Matched)
	assert.Equal(t, 0, m.Len())

	_, err = m.Evaluate(New("/a(b", ModeLiteral|ModeRegex), "", "/other")
	require.ErrorIs(t, err, ErrInvalidPattern)
}

func TestMatcher_InvalidMode(t *testing.T) {
	t.Parallel()

	m := NewMatcher()
	for _, mode := range []Mode{0, ModeCaseInsensitive} {
		_, err := m.Evaluate(New("/x", mode), "", "/x")
		require.ErrorIs(t, err, ErrInvalidMode)
	}
}

func TestMatcher_InvalidPattern(t *testing.T) {
	t.Parallel()

	_, err := NewMatcher().Evaluate(Pattern(`^/(unclosed$`), "", "/x")
	require.ErrorIs(t, err, ErrInvalidPattern)
}

func TestMatcher_CacheIsBounded(t *testing.T) {
	t.Parallel()

	m := NewMatcher(WithCacheSize(2))
	for _, p := range []string{`^/a$`, `^/b$`, `^/c$`, `^/a$`} {
		_, err := m.Evaluate(Pattern(p), "", "/a")
		require.NoError(t, err)
	}
	assert.Equal(t, 2, m.Len())

	// Same pattern with a different prefix or mode is a distinct entry.
	m = NewMatcher()
	_, _ = m.Evaluate(Pattern(`^/a$`), "", "/a")
	_, _ = m.Evaluate(Pattern(`^/a$`), "/p", "/a")
	_, _ = m.Evaluate(PatternFold(`^/a$`), "", "/a")
	assert.Equal(t, 3, m.Len())
}

func TestMatcher_ConcurrentEvaluate(t *testing.T) {
	t.Parallel()

	m := NewMatcher(WithCacheSize(4))
	var wg sync.WaitGroup
	for i := range 32 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			pattern := []string{`^/a/(\d+)$`, `^/b/(\d+)$`, `^/c/(\d+)$`}[i%3]
			res, err := m.Evaluate(Pattern(pattern), "", "/b/9")
			assert.NoError(t, err)
			assert.Equal(t, i%3 == 1, res.Matched)
		}(i)
	}
	wg.Wait()
}

func TestExpression(t *testing.T) {
	t.Parallel()

	assert.Equal(t, `^/x$`, Expression(Pattern(`^/x$`), ""))
	assert.Equal(t, `^/api/x$`, Expression(Pattern(`^/x$`), "/api"))
	assert.Equal(t, `/api(.+)`, Expression(Pattern(`(.+)`), "/api"))
	assert.Equal(t, `(?i)^/v\.1/x$`, Expression(PatternFold(`^/x$`), "/v.1"))
	assert.Equal(t, `(?i)^/api/X$`, Expression(Pattern(`(?i)^/X$`), "/api"))
	assert.Equal(t, `(?s)(?-U)/api.*`, Expression(Pattern(`(?s)(?-U).*`), "/api"))
	assert.Equal(t, `/api(?i:/X)`, Expression(Pattern(`(?i:/X)`), "/api"))
}

func TestMatcher_PrefixAfterInlineFlags(t *testing.T) {
	t.Parallel()

	m := NewMatcher()
	res, err := m.Evaluate(Pattern(`(?i)^/X/([0-9]+)$`), "/api", "/api/x/7")
	require.NoError(t, err)
	assert.True(t, res.Matched)
	assert.Equal(t, []string{"7"}, res.Groups)

	res, err = m.Evaluate(Pattern(`(?i)^/X$`), "/api", "/x")
	require.NoError(t, err)
	assert.False(t, res.Matched)
}

func TestPackageEvaluate(t *testing.T) {
	t.Parallel()

	res, err := Evaluate(Pattern(`^/item/([0-9]+)$`), "", "/item/42")
	require.NoError(t, err)
	assert.Equal(t, Result{Matched: true, Groups: []string{"42"}}, res)
}
