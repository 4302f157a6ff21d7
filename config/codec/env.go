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

package codec

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
)

// TypeEnvVar decodes KEY=value lines, one per line.
const TypeEnvVar Type = "env_var"

// EnvNestingSeparator separates nesting levels in variable names. A single
// underscore stays part of the key, so ROUTER__CRITERIA_PREFIX decodes to
// router.criteria_prefix.
const EnvNestingSeparator = "__"

func init() {
	RegisterDecoder(TypeEnvVar, EnvVarCodec{})
}

// EnvVarCodec decodes environment variable lines into nested maps. Keys are
// lowercased. Values are kept as strings and converted at binding time.
type EnvVarCodec struct{}

// Encode is not supported; environment variables are read-only.
func (EnvVarCodec) Encode(any) ([]byte, error) {
	return nil, errors.New("encoding to environment variables is not supported")
}

// Decode implements Decoder. v must be a *map[string]any.
func (EnvVarCodec) Decode(data []byte, v any) error {
	ptr, ok := v.(*map[string]any)
	if !ok {
		return fmt.Errorf("env codec: expected *map[string]any, got %T", v)
	}

	conf := make(map[string]any)
	for line := range bytes.SplitSeq(data, []byte("\n")) {
		key, value, found := strings.Cut(string(line), "=")
		if !found {
			continue
		}
		parts := envKeyParts(key)
		if len(parts) == 0 {
			continue
		}

		current := conf
		for _, part := range parts[:len(parts)-1] {
			next, ok := current[part].(map[string]any)
			if !ok {
				// a nested key replaces a scalar at the same path
				next = make(map[string]any)
				current[part] = next
			}
			current = next
		}
		current[parts[len(parts)-1]] = strings.TrimSpace(value)
	}

	*ptr = conf
	return nil
}

func envKeyParts(key string) []string {
	key = strings.ToLower(strings.TrimSpace(key))
	var parts []string
	for p := range strings.SplitSeq(key, EnvNestingSeparator) {
		p = strings.Trim(p, "_")
		if p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}
