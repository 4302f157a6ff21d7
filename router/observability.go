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

package router

import "context"

// DispatchInfo describes a dispatch for observers. It is built once a route
// has matched, before its handler is resolved.
type DispatchInfo struct {
	// ID is the dispatcher id shared by every dispatch of one request.
	ID string
	// Method is the request verb.
	Method string
	// Path is the normalized request path.
	Path string
	// Route is the criterion pattern that matched, without the criteria
	// prefix. Use it rather than Path as a low-cardinality label.
	Route string
	// Handler is the unresolved handler reference.
	Handler string
	// Mount reports whether the dispatch came from MountNamespace.
	Mount bool
	// Terminate reports whether the route ends the run on success.
	Terminate bool
}

// Observer provides lifecycle hooks around each dispatch. Implementations
// typically record metrics or trace spans.
//
// Lifecycle:
//  1. A route matches; the dispatcher calls OnDispatchStart(ctx, info) and
//     gets back an enriched context and an opaque state token.
//  2. The handler is resolved and invoked with the enriched context.
//  3. The dispatcher calls OnDispatchEnd with the same state and the
//     resolution or execution error, nil on success.
//
// Non-matching routes are not observed.
//
// Thread safety: all methods must be safe for concurrent use.
type Observer interface {
	OnDispatchStart(ctx context.Context, info DispatchInfo) (context.Context, any)
	OnDispatchEnd(ctx context.Context, state any, info DispatchInfo, err error)
}

// Observers combines observers into one. Start hooks run in order, end hooks
// in reverse order. Nil entries are skipped.
func Observers(obs ...Observer) Observer {
	list := make(multiObserver, 0, len(obs))
	for _, o := range obs {
		if o != nil {
			list = append(list, o)
		}
	}
	return list
}

type multiObserver []Observer

func (m multiObserver) OnDispatchStart(ctx context.Context, info DispatchInfo) (context.Context, any) {
	states := make([]any, len(m))
	for i, o := range m {
		ctx, states[i] = o.OnDispatchStart(ctx, info)
	}
	return ctx, states
}

func (m multiObserver) OnDispatchEnd(ctx context.Context, state any, info DispatchInfo, err error) {
	states, _ := state.([]any)
	for i := len(m) - 1; i >= 0; i-- {
		var s any
		if i < len(states) {
			s = states[i]
		}
		m[i].OnDispatchEnd(ctx, s, info, err)
	}
}
