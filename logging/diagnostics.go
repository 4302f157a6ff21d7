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

package logging

import (
	"context"
	"log/slog"
	"maps"
	"slices"

	"github.com/Perritu/Router/router"
)

// Diagnostics returns a router.DiagnosticHandler that writes each event to
// sl. Mount misses and routes evaluated after a stop are warnings; path
// canonicalization is informational.
//
//	r := router.MustNew(router.WithDiagnostics(logging.Diagnostics(logger.Logger())))
func Diagnostics(sl *slog.Logger) router.DiagnosticHandler {
	if sl == nil {
		sl = slog.Default()
	}
	return router.DiagnosticHandlerFunc(func(e router.DiagnosticEvent) {
		level := LevelWarn
		if e.Kind == router.DiagPathCanonicalized {
			level = LevelInfo
		}

		args := make([]any, 0, 2+2*len(e.Fields))
		args = append(args, "kind", string(e.Kind))
		for _, k := range slices.Sorted(maps.Keys(e.Fields)) {
			args = append(args, k, e.Fields[k])
		}
		sl.Log(context.Background(), level, e.Message, args...)
	})
}
