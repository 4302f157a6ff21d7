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

package source

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/Perritu/Router/config/codec"
)

// OSEnvVar loads the environment variables that start with a prefix. The
// prefix is stripped and the rest decoded with [codec.EnvVarCodec], so with
// prefix "DISPATCH_" the variable DISPATCH_ROUTER__CACHE_SIZE becomes
// router.cache_size.
type OSEnvVar struct {
	prefix  string
	environ func() []string
	decoder codec.Decoder
}

// NewOSEnvVar returns a source reading os.Environ.
func NewOSEnvVar(prefix string) *OSEnvVar {
	return NewEnviron(prefix, os.Environ)
}

// NewEnviron returns a source reading "KEY=value" pairs from environ.
func NewEnviron(prefix string, environ func() []string) *OSEnvVar {
	if environ == nil {
		environ = os.Environ
	}
	return &OSEnvVar{prefix: prefix, environ: environ, decoder: codec.EnvVarCodec{}}
}

// Load implements config.Source.
func (e *OSEnvVar) Load(context.Context) (map[string]any, error) {
	var lines []string
	for _, kv := range e.environ() {
		if rest, ok := strings.CutPrefix(kv, e.prefix); ok {
			lines = append(lines, rest)
		}
	}

	var conf map[string]any
	if err := e.decoder.Decode([]byte(strings.Join(lines, "\n")), &conf); err != nil {
		return nil, fmt.Errorf("decode environment: %w", err)
	}
	return conf, nil
}
