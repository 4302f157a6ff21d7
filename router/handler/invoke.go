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
	"fmt"
	"reflect"
	"strings"

	"github.com/spf13/cast"
)

var (
	contextType = reflect.TypeFor[context.Context]()
	errorType   = reflect.TypeFor[error]()
)

// bindError marks an argument failure raised before the handler ran.
type bindError struct{ err error }

func (e *bindError) Error() string { return e.err.Error() }
func (e *bindError) Unwrap() error { return e.err }

// call invokes fn with the captured args converted to its parameter types.
// Argument failures are returned as a *bindError. Handler panics are
// recovered and returned as ErrPanic.
func call(ctx context.Context, fn reflect.Value, args []string) (result any, err error) {
	in, err := buildArgs(ctx, fn.Type(), args)
	if err != nil {
		return nil, &bindError{err: err}
	}

	defer func() {
		if r := recover(); r != nil {
			result = nil
			if e, ok := r.(error); ok {
				err = fmt.Errorf("%w: %w", ErrPanic, e)
				return
			}
			err = fmt.Errorf("%w: %v", ErrPanic, r)
		}
	}()

	return collect(fn.Type(), fn.Call(in))
}

func buildArgs(ctx context.Context, ft reflect.Type, args []string) ([]reflect.Value, error) {
	params := ft.NumIn()
	in := make([]reflect.Value, 0, max(params, len(args)))

	i := 0
	if params > 0 && ft.In(0) == contextType {
		if ctx == nil {
			ctx = context.Background()
		}
		in = append(in, reflect.ValueOf(ctx))
		i = 1
	}

	next := 0
	for ; i < params; i++ {
		pt := ft.In(i)
		if ft.IsVariadic() && i == params-1 {
			for ; next < len(args); next++ {
				v, err := coerce(args[next], pt.Elem())
				if err != nil {
					return nil, err
				}
				in = append(in, v)
			}
			break
		}

		if next >= len(args) {
			return nil, fmt.Errorf("%w: have %d, want %d", ErrArgumentCount, len(args), requiredArgs(ft))
		}
		v, err := coerce(args[next], pt)
		if err != nil {
			return nil, err
		}
		in = append(in, v)
		next++
	}

	return in, nil
}

// requiredArgs counts the non-context, non-variadic parameters of ft.
func requiredArgs(ft reflect.Type) int {
	n := ft.NumIn()
	if n > 0 && ft.In(0) == contextType {
		n--
	}
	if ft.IsVariadic() {
		n--
	}
	return n
}

// coerce converts a captured group to a value assignable to t.
func coerce(s string, t reflect.Type) (reflect.Value, error) {
	v := reflect.New(t).Elem()

	switch t.Kind() {
	case reflect.String:
		v.SetString(s)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := cast.ToInt64E(trimLeadingZeros(s))
		if err != nil || v.OverflowInt(n) {
			return v, argTypeError(s, t, err)
		}
		v.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if strings.HasPrefix(s, "-") {
			return v, argTypeError(s, t, nil)
		}
		n, err := cast.ToUint64E(trimLeadingZeros(s))
		if err != nil || v.OverflowUint(n) {
			return v, argTypeError(s, t, err)
		}
		v.SetUint(n)
	case reflect.Float32, reflect.Float64:
		f, err := cast.ToFloat64E(s)
		if err != nil || v.OverflowFloat(f) {
			return v, argTypeError(s, t, err)
		}
		v.SetFloat(f)
	case reflect.Bool:
		b, err := cast.ToBoolE(s)
		if err != nil {
			return v, argTypeError(s, t, err)
		}
		v.SetBool(b)
	case reflect.Interface:
		if !reflect.TypeFor[string]().Implements(t) {
			return v, argTypeError(s, t, nil)
		}
		v.Set(reflect.ValueOf(s))
	case reflect.Slice:
		if t.Elem().Kind() != reflect.Uint8 {
			return v, argTypeError(s, t, nil)
		}
		v.SetBytes([]byte(s))
	default:
		return v, argTypeError(s, t, nil)
	}

	return v, nil
}

func argTypeError(s string, t reflect.Type, cause error) error {
	if cause != nil {
		return fmt.Errorf("%w: %q as %s: %w", ErrArgumentType, s, t, cause)
	}
	return fmt.Errorf("%w: %q as %s", ErrArgumentType, s, t)
}

// trimLeadingZeros keeps decimal captures such as "007" from being read as
// octal by cast's base-prefix detection.
func trimLeadingZeros(s string) string {
	sign := ""
	if strings.HasPrefix(s, "-") || strings.HasPrefix(s, "+") {
		sign, s = s[:1], s[1:]
	}
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		return sign + s
	}
	trimmed := strings.TrimLeft(s, "0")
	if trimmed == "" && s != "" {
		trimmed = "0"
	}
	return sign + trimmed
}

// collect maps handler results to a single value and an error. A trailing
// error result is reported as the error; the first other result is the value.
func collect(ft reflect.Type, out []reflect.Value) (any, error) {
	var err error
	if n := len(out); n > 0 && ft.Out(n-1) == errorType {
		if e := out[n-1].Interface(); e != nil {
			err = e.(error)
		}
		out = out[:n-1]
	}

	if len(out) == 0 {
		return nil, err
	}
	return out[0].Interface(), err
}
