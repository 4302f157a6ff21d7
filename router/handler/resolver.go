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

package handler

import (
	"context"
	"errors"
	"reflect"
)

// Resolver turns references into invocable targets using a Registry.
type Resolver struct {
	registry Registry
}

// NewResolver returns a Resolver backed by reg. A nil reg resolves function
// references only; every class lookup fails with [ErrClassNotFound].
func NewResolver(reg Registry) *Resolver {
	return &Resolver{registry: reg}
}

// Registry returns the registry the resolver consults.
func (r *Resolver) Registry() Registry {
	return r.registry
}

// Target is a resolved handler, ready to be invoked.
type Target struct {
	name   string
	class  string
	method Method
	fn     reflect.Value
}

// Resolve resolves ref. For class-method references the prefix is joined
// to the class path before normalization; an empty prefix is a no-op.
//
// Class existence, method existence and method visibility are checked in
// that order and only the first failure is reported.
func (r *Resolver) Resolve(ref Ref, prefix string) (*Target, error) {
	switch ref.kind {
	case KindFunc:
		return &Target{name: funcName(ref.fn), fn: ref.fn}, nil
	case KindMethod:
	default:
		return nil, &Error{Kind: ErrInvalidRef}
	}

	classPath := NormalizeClassPath(prefix, ref.class)
	if classPath == "" || ref.method == "" {
		return nil, &Error{Kind: ErrInvalidRef, Class: classPath, Method: ref.method}
	}

	var (
		class Class
		ok    bool
	)
	if r.registry != nil {
		class, ok = r.registry.Class(classPath)
	}
	if !ok {
		return nil, &Error{Kind: ErrClassNotFound, Class: classPath, Method: ref.method}
	}

	m, ok := class.Method(ref.method)
	if !ok {
		return nil, &Error{Kind: ErrMethodNotFound, Class: class.Path(), Method: ref.method}
	}
	if !m.Public() {
		return nil, &Error{Kind: ErrMethodNotAccessible, Class: class.Path(), Method: m.Name()}
	}

	return &Target{
		name:   class.Path() + MethodSeparator + m.Name(),
		class:  class.Path(),
		method: m,
	}, nil
}

// Exists reports whether ref resolves with prefix without reporting why it
// does not.
func (r *Resolver) Exists(ref Ref, prefix string) bool {
	_, err := r.Resolve(ref, prefix)
	return err == nil
}

// String returns "Class@Method" or the function name.
func (t *Target) String() string { return t.name }

// Class returns the canonical class path, or "" for function targets.
func (t *Target) Class() string { return t.class }

// Static reports whether the target runs without an instance. Function
// targets are always static.
func (t *Target) Static() bool {
	return t.method == nil || t.method.Static()
}

// Invoke calls the target with args. Args that cannot be bound to the
// handler parameters are returned as an [*Error] of kind
// [ErrArgumentBinding] and the handler is not called. Any failure raised by
// the handler is returned as an [*Error] of kind [ErrExecutionFailed]
// wrapping the cause.
func (t *Target) Invoke(ctx context.Context, args []string) (any, error) {
	var (
		result any
		err    error
	)
	if t.method != nil {
		result, err = t.method.Call(ctx, args)
	} else {
		result, err = call(ctx, t.fn, args)
	}
	if err != nil {
		e := &Error{Kind: ErrExecutionFailed, Err: err}
		var be *bindError
		if errors.As(err, &be) {
			e.Kind, e.Err = ErrArgumentBinding, be.err
		}
		if t.method != nil {
			e.Class, e.Method = t.class, t.method.Name()
		} else {
			e.Method = t.name
		}
		return nil, e
	}
	return result, nil
}

// Invoke calls t with args. It is shorthand for t.Invoke.
func Invoke(ctx context.Context, t *Target, args []string) (any, error) {
	return t.Invoke(ctx, args)
}
