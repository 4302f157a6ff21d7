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
	"fmt"

	"github.com/Perritu/Router/router"
	"github.com/Perritu/Router/router/criteria"
)

// RouteTable converts the configured routes and mounts into the table
// [router.Dispatcher.Run] evaluates: configured routes first, then extra,
// then mounts. Routes without a mode get defaultMode.
func (s *Settings) RouteTable(defaultMode criteria.Mode, extra ...router.Route) ([]router.Route, error) {
	table := make([]router.Route, 0, len(s.Routes)+len(extra)+len(s.Mounts))
	for i, rs := range s.Routes {
		rt, err := rs.route(defaultMode)
		if err != nil {
			return nil, fmt.Errorf("routes[%d]: %w", i, err)
		}
		table = append(table, rt)
	}
	table = append(table, extra...)
	for i, ms := range s.Mounts {
		rt, err := ms.route()
		if err != nil {
			return nil, fmt.Errorf("mounts[%d]: %w", i, err)
		}
		table = append(table, rt)
	}
	return table, nil
}
