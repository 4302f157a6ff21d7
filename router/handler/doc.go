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

// Package handler resolves handler references into invocable targets.
//
// A [Ref] is either a Go function ([Func]) or a class-path/method pair
// ([ClassMethod], or a string such as "Users@show" read by [Parse]).
// Class paths use "\" between namespace segments; "/" and repeated
// separators are folded into a single "\" by [NormalizeClassPath].
//
// # Registry
//
// Class-method references are looked up in a [Registry]. The package ships
// [TypeRegistry], which maps class paths to Go types with reflection:
//
//	reg := handler.NewRegistry()
//	reg.Register(`App\Handlers\Users`, (*Users)(nil),
//	    handler.WithStatic("Count", countUsers),
//	    handler.WithPrivate("Audit"),
//	)
//
// Exported methods of *Users become instance methods. A fresh instance is
// constructed for every call. Functions registered with [WithStatic] are
// called without an instance. Methods listed in [WithPrivate] exist but are
// not invocable from routes.
//
// Class and method names are matched case-insensitively, an exact match
// winning over a folded one, so "Users@show" reaches Users.Show.
//
// # Resolution
//
// [Resolver.Resolve] checks, in order, that the class exists, that it
// declares the method and that the method is public. Only the first failing
// check is reported ([ErrClassNotFound], [ErrMethodNotFound],
// [ErrMethodNotAccessible]). Failures raised by the handler itself, panics
// included, are wrapped in [ErrExecutionFailed] with the original cause.
//
// # Arguments
//
// Captured pattern groups are strings. They are converted to the handler's
// parameter types (string, integer, unsigned, float and bool kinds) with
// github.com/spf13/cast. A leading context.Context parameter receives the
// dispatch context. Extra arguments are dropped; missing ones fail with
// [ErrArgumentCount] and unconvertible ones with [ErrArgumentType]. Both are
// reported under [ErrArgumentBinding], a resolution failure, since the route
// and the handler disagree before any handler code runs.
package handler
