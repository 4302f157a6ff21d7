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
	"fmt"
	"reflect"
	"runtime"
	"strings"
)

// Separator is the canonical namespace separator of class paths.
const Separator = `\`

// MethodSeparator separates the class path from the method name in string references.
const MethodSeparator = "@"

// Kind identifies the variant held by a Ref.
type Kind uint8

const (
	// KindInvalid is the zero Ref or a Func built from a non-function.
	KindInvalid Kind = iota
	// KindFunc is a directly callable Go function.
	KindFunc
	// KindMethod is a class-path/method-name pair resolved through a Registry.
	KindMethod
)

// String implements fmt.Stringer.
func (k Kind) String() string {
	switch k {
	case KindFunc:
		return "func"
	case KindMethod:
		return "method"
	default:
		return "invalid"
	}
}

// Ref is an unresolved handler reference.
type Ref struct {
	kind   Kind
	fn     reflect.Value
	class  string
	method string
}

// Func returns a reference to a Go function. Any function signature is
// accepted; see the package documentation for argument conversion.
// A nil or non-function value yields a Ref of KindInvalid, which fails
// resolution with [ErrInvalidRef].
func Func(fn any) Ref {
	v := reflect.ValueOf(fn)
	if !v.IsValid() || v.Kind() != reflect.Func || v.IsNil() {
		return Ref{}
	}
	return Ref{kind: KindFunc, fn: v}
}

// ClassMethod returns a reference to method on the class at classPath.
// The class path is kept as given; normalization happens at resolution time
// so the handler prefix can be applied first.
func ClassMethod(classPath, method string) Ref {
	return Ref{kind: KindMethod, class: classPath, method: method}
}

// Parse reads a string reference of the form "Class@method".
// "Class::method" is accepted as an alternate spelling. Namespace segments
// may be separated by "\" or "/".
func Parse(s string) (Ref, error) {
	s = strings.TrimSpace(s)

	class, method, ok := strings.Cut(s, MethodSeparator)
	if !ok {
		if i := strings.LastIndex(s, "::"); i >= 0 {
			class, method, ok = s[:i], s[i+2:], true
		}
	}
	if !ok {
		return Ref{}, fmt.Errorf("%w: %q has no %q separator", ErrInvalidRef, s, MethodSeparator)
	}

	method = strings.TrimSpace(method)
	if NormalizeClassPath("", class) == "" || method == "" || strings.ContainsAny(method, `\/@:`) {
		return Ref{}, fmt.Errorf("%w: %q", ErrInvalidRef, s)
	}

	return ClassMethod(class, method), nil
}

// MustParse is like Parse but panics on error.
func MustParse(s string) Ref {
	ref, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return ref
}

// Kind returns the variant held by r.
func (r Ref) Kind() Kind { return r.kind }

// Class returns the unnormalized class path of a KindMethod reference.
func (r Ref) Class() string { return r.class }

// Method returns the method name of a KindMethod reference.
func (r Ref) Method() string { return r.method }

// IsZero reports whether r is the zero reference.
func (r Ref) IsZero() bool { return r.kind == KindInvalid }

// String returns "Class@method" for method references and the function name
// for function references.
func (r Ref) String() string {
	switch r.kind {
	case KindFunc:
		return funcName(r.fn)
	case KindMethod:
		return r.class + MethodSeparator + r.method
	default:
		return "<invalid>"
	}
}

// NormalizeClassPath joins prefix and classPath and rewrites every run of
// "\" or "/" into a single "\". Leading and trailing separators are removed.
//
//	NormalizeClassPath(`App\Handlers`, "Users")  // App\Handlers\Users
//	NormalizeClassPath("", `App\\/Handlers//Users`) // App\Handlers\Users
func NormalizeClassPath(prefix, classPath string) string {
	joined := prefix + Separator + classPath

	var b strings.Builder
	b.Grow(len(joined))
	pending := false
	for _, r := range strings.TrimSpace(joined) {
		if r == '\\' || r == '/' {
			pending = b.Len() > 0
			continue
		}
		if pending {
			b.WriteString(Separator)
			pending = false
		}
		b.WriteRune(r)
	}
	return b.String()
}

func funcName(v reflect.Value) string {
	if fn := runtime.FuncForPC(v.Pointer()); fn != nil {
		return fn.Name()
	}
	return v.Type().String()
}
