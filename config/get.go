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

package config

import (
	"strings"
	"time"

	"github.com/spf13/cast"
)

// Get returns the value at a dot-separated, case-insensitive path, or nil.
// A key that itself contains dots is found before the path is traversed.
func (c *Config) Get(key string) any {
	if c == nil || key == "" {
		return nil
	}

	c.mu.RLock()
	current := c.values
	c.mu.RUnlock()

	key = strings.ToLower(key)
	if v, ok := current[key]; ok {
		return v
	}

	segments := strings.Split(key, ".")
	for i, segment := range segments {
		v, ok := current[segment]
		if !ok {
			return nil
		}
		if i == len(segments)-1 {
			return v
		}
		if current, ok = v.(map[string]any); !ok {
			return nil
		}
	}
	return nil
}

// Has reports whether key is set.
func (c *Config) Has(key string) bool {
	return c.Get(key) != nil
}

// String returns the value at key as a string.
func (c *Config) String(key string) string { return cast.ToString(c.Get(key)) }

// Int returns the value at key as an int.
func (c *Config) Int(key string) int { return cast.ToInt(c.Get(key)) }

// Int64 returns the value at key as an int64.
func (c *Config) Int64(key string) int64 { return cast.ToInt64(c.Get(key)) }

// Float64 returns the value at key as a float64.
func (c *Config) Float64(key string) float64 { return cast.ToFloat64(c.Get(key)) }

// Bool returns the value at key as a bool.
func (c *Config) Bool(key string) bool { return cast.ToBool(c.Get(key)) }

// Duration returns the value at key as a duration. Strings are parsed with
// time.ParseDuration; bare numbers are nanoseconds.
func (c *Config) Duration(key string) time.Duration { return cast.ToDuration(c.Get(key)) }

// StringSlice returns the value at key as a slice. A string is split on
// commas, so env values like "a,b" work.
func (c *Config) StringSlice(key string) []string {
	v := c.Get(key)
	if s, ok := v.(string); ok {
		if s == "" {
			return []string{}
		}
		parts := strings.Split(s, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	}
	return cast.ToStringSlice(v)
}

// StringMap returns the value at key as a map.
func (c *Config) StringMap(key string) map[string]any { return cast.ToStringMap(c.Get(key)) }

// StringOr returns the value at key, or def when unset.
func (c *Config) StringOr(key, def string) string {
	return or(c, key, def, cast.ToStringE)
}

// IntOr returns the value at key, or def when unset or not convertible.
func (c *Config) IntOr(key string, def int) int {
	return or(c, key, def, cast.ToIntE)
}

// Int64Or returns the value at key, or def when unset or not convertible.
func (c *Config) Int64Or(key string, def int64) int64 {
	return or(c, key, def, cast.ToInt64E)
}

// Float64Or returns the value at key, or def when unset or not convertible.
func (c *Config) Float64Or(key string, def float64) float64 {
	return or(c, key, def, cast.ToFloat64E)
}

// BoolOr returns the value at key, or def when unset or not convertible.
func (c *Config) BoolOr(key string, def bool) bool {
	return or(c, key, def, cast.ToBoolE)
}

// DurationOr returns the value at key, or def when unset or not convertible.
func (c *Config) DurationOr(key string, def time.Duration) time.Duration {
	return or(c, key, def, cast.ToDurationE)
}

// StringSliceOr returns the value at key, or def when unset.
func (c *Config) StringSliceOr(key string, def []string) []string {
	if !c.Has(key) {
		return def
	}
	return c.StringSlice(key)
}

func or[T any](c *Config, key string, def T, conv func(any) (T, error)) T {
	v := c.Get(key)
	if v == nil {
		return def
	}
	out, err := conv(v)
	if err != nil {
		return def
	}
	return out
}
