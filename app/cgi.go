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

package app

import (
	"context"
	"fmt"
	"net/http/cgi"
)

// ServeCGI handles the single request described by the CGI environment of
// the current process and writes the response to stdout.
func (a *App) ServeCGI(ctx context.Context) error {
	defer func() {
		if err := a.shutdownObservability(context.WithoutCancel(ctx)); err != nil {
			a.logger.Warn("observability shutdown failed", "error", err)
		}
	}()

	if err := cgi.Serve(a); err != nil {
		return fmt.Errorf("cgi: %w", err)
	}
	return nil
}
