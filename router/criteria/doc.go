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

// Package criteria evaluates route criteria against a request path.
//
// A [Criterion] pairs a pattern with a [Mode]. The mode is a small bitset:
//
//   - [ModeLiteral]: exact string comparison
//   - [ModeRegex]: regular expression search over the whole path
//   - [ModeCaseInsensitive]: folds case (literal) or adds the (?i) flag (regex)
//
// When both ModeLiteral and ModeRegex are set, the literal comparison runs
// first and the pattern is only compiled when it fails. A mode without either
// bit is rejected with [ErrInvalidMode].
//
// Example:
//
//	m := criteria.NewMatcher()
//	res, err := m.Evaluate(criteria.Pattern(`^/item/([0-9]+)$`), "", "/item/42")
//	// res.Matched == true, res.Groups == []string{"42"}
//
// Compiled patterns are kept in a bounded LRU cache owned by the [Matcher], so a
// single Matcher can be shared by every request of a process.
package criteria
