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
	"slices"
	"strings"
	"sync"
)

// Registry answers which classes exist and what they declare.
// Implementations must be safe for concurrent reads.
type Registry interface {
	// Class returns the class registered at path. Paths are compared after
	// NormalizeClassPath; implementations may also fold case.
	Class(path string) (Class, bool)
}

// Class is a registered handler class.
type Class interface {
	// Path returns the canonical class path.
	Path() string
	// Method returns the method declared under name, public or not.
	Method(name string) (Method, bool)
}

// Method is a method declared by a Class.
type Method interface {
	Name() string
	// Public reports whether the method may be invoked from a route.
	Public() bool
	// Static reports whether the method runs without a class instance.
	Static() bool
	// Call invokes the method. Instance methods construct a fresh instance
	// for every call. Errors returned here are the handler's own failures.
	Call(ctx context.Context, args []string) (any, error)
}

// ClassOption configures a class registration.
type ClassOption func(*classConfig)

type classConfig struct {
	ctor    func() any
	static  map[string]any
	private []string
}

// WithConstructor sets the function that builds a fresh instance before each
// instance-method call. By default the zero value of the registered type is used.
func WithConstructor(fn func() any) ClassOption {
	return func(cfg *classConfig) {
		cfg.ctor = fn
	}
}

// WithStatic declares a static method backed by fn. Static methods are
// called without constructing an instance.
func WithStatic(name string, fn any) ClassOption {
	return func(cfg *classConfig) {
		if cfg.static == nil {
			cfg.static = make(map[string]any)
		}
		cfg.static[name] = fn
	}
}

// WithPrivate marks declared methods as not invocable from routes.
func WithPrivate(names ...string) ClassOption {
	return func(cfg *classConfig) {
		cfg.private = append(cfg.private, names...)
	}
}

// Entry describes one registration, for diagnostics and documentation.
type Entry struct {
	Path    string
	Type    reflect.Type
	Methods []string
}

// TypeRegistry is a Registry backed by Go types and reflection.
//
// Thread-safety: all methods are safe for concurrent use.
type TypeRegistry struct {
	mu      sync.RWMutex
	classes map[string]*typeClass
}

// NewRegistry returns an empty TypeRegistry.
func NewRegistry() *TypeRegistry {
	return &TypeRegistry{classes: make(map[string]*typeClass)}
}

// Register declares a class at path. prototype is a value or pointer of the
// class type, for example (*Users)(nil); it may be nil for a class made only
// of static methods.
//
// Registering the same type again at the same path is a no-op. Registering a
// different type at a taken path fails with [ErrConflictingRegistration].
func (r *TypeRegistry) Register(path string, prototype any, opts ...ClassOption) error {
	canonical := NormalizeClassPath("", path)
	if canonical == "" {
		return ErrEmptyClassPath
	}

	cfg := &classConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	class, err := buildClass(canonical, prototype, cfg)
	if err != nil {
		return err
	}

	key := foldKey(canonical)

	r.mu.Lock()
	defer r.mu.Unlock()

	if old, ok := r.classes[key]; ok {
		if old.typ == class.typ && old.typ != nil {
			return nil
		}
		return fmt.Errorf("%w: %s", ErrConflictingRegistration, canonical)
	}
	r.classes[key] = class
	return nil
}

// MustRegister is like Register but panics on error.
func (r *TypeRegistry) MustRegister(path string, prototype any, opts ...ClassOption) {
	if err := r.Register(path, prototype, opts...); err != nil {
		panic(err)
	}
}

// Class implements Registry.
func (r *TypeRegistry) Class(path string) (Class, bool) {
	key := foldKey(NormalizeClassPath("", path))

	r.mu.RLock()
	c, ok := r.classes[key]
	r.mu.RUnlock()
	if !ok {
		return nil, false
	}
	return c, true
}

// Entries returns a snapshot of the registrations sorted by path.
func (r *TypeRegistry) Entries() []Entry {
	r.mu.RLock()
	entries := make([]Entry, 0, len(r.classes))
	for _, c := range r.classes {
		names := make([]string, 0, len(c.methods))
		for name := range c.methods {
			names = append(names, name)
		}
		slices.Sort(names)
		entries = append(entries, Entry{Path: c.path, Type: c.typ, Methods: names})
	}
	r.mu.RUnlock()

	slices.SortFunc(entries, func(a, b Entry) int { return strings.Compare(a.Path, b.Path) })
	return entries
}

// Count returns the number of registered classes.
func (r *TypeRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.classes)
}

// Reset removes every registration.
func (r *TypeRegistry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.classes = make(map[string]*typeClass)
}

func foldKey(path string) string {
	return strings.ToLower(path)
}

// typeClass is immutable once registered.
type typeClass struct {
	path    string
	typ     reflect.Type
	ctor    func() any
	methods map[string]*typeMethod
	folded  map[string][]string
}

func buildClass(path string, prototype any, cfg *classConfig) (*typeClass, error) {
	c := &typeClass{
		path:    path,
		ctor:    cfg.ctor,
		methods: make(map[string]*typeMethod),
		folded:  make(map[string][]string),
	}

	if prototype != nil {
		t := reflect.TypeOf(prototype)
		if t.Kind() == reflect.Pointer {
			t = t.Elem()
		}
		c.typ = t

		pt := reflect.PointerTo(t)
		for i := range pt.NumMethod() {
			m := pt.Method(i)
			c.add(&typeMethod{class: c, name: m.Name, public: true})
		}
	} else if len(cfg.static) == 0 {
		return nil, fmt.Errorf("%w: %s: nil prototype without static methods", ErrInvalidRegistration, path)
	}

	for name, fn := range cfg.static {
		v := reflect.ValueOf(fn)
		if !v.IsValid() || v.Kind() != reflect.Func || v.IsNil() {
			return nil, fmt.Errorf("%w: %s: static %q is not a function", ErrInvalidRegistration, path, name)
		}
		if _, dup := c.methods[name]; dup {
			return nil, fmt.Errorf("%w: %s: static %q shadows an instance method", ErrInvalidRegistration, path, name)
		}
		c.add(&typeMethod{class: c, name: name, public: true, static: true, fn: v})
	}

	for _, name := range cfg.private {
		m, ok := c.methods[name]
		if !ok {
			return nil, fmt.Errorf("%w: %s: private %q is not declared", ErrInvalidRegistration, path, name)
		}
		m.public = false
	}

	return c, nil
}

func (c *typeClass) add(m *typeMethod) {
	c.methods[m.name] = m
	key := strings.ToLower(m.name)
	c.folded[key] = append(c.folded[key], m.name)
}

// Path implements Class.
func (c *typeClass) Path() string { return c.path }

// Method implements Class. An exact name wins; otherwise a case-insensitive
// match is used when it is unambiguous.
func (c *typeClass) Method(name string) (Method, bool) {
	if m, ok := c.methods[name]; ok {
		return m, true
	}
	if names := c.folded[strings.ToLower(name)]; len(names) == 1 {
		return c.methods[names[0]], true
	}
	return nil, false
}

// instance returns a pointer to a fresh instance of the class type.
// A panicking constructor is reported as ErrPanic.
func (c *typeClass) instance() (v reflect.Value, err error) {
	if c.ctor == nil {
		return reflect.New(c.typ), nil
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: constructor for %s: %v", ErrPanic, c.path, r)
		}
	}()

	v = reflect.ValueOf(c.ctor())
	if !v.IsValid() {
		return v, fmt.Errorf("%w: constructor for %s returned nil", ErrInvalidRegistration, c.path)
	}
	if v.Kind() != reflect.Pointer {
		p := reflect.New(v.Type())
		p.Elem().Set(v)
		v = p
	}
	return v, nil
}

type typeMethod struct {
	class  *typeClass
	name   string
	public bool
	static bool
	fn     reflect.Value
}

func (m *typeMethod) Name() string { return m.name }
func (m *typeMethod) Public() bool { return m.public }
func (m *typeMethod) Static() bool { return m.static }

// Call implements Method.
func (m *typeMethod) Call(ctx context.Context, args []string) (any, error) {
	if m.static {
		return call(ctx, m.fn, args)
	}

	inst, err := m.class.instance()
	if err != nil {
		return nil, err
	}
	fn := inst.MethodByName(m.name)
	if !fn.IsValid() {
		return nil, fmt.Errorf("%w: constructor for %s returned a type without %s", ErrInvalidRegistration, m.class.path, m.name)
	}
	return call(ctx, fn, args)
}
