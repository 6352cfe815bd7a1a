/*
   Copyright 2025 The DIRPX Authors.

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

package typeinfo

import (
	"reflect"
	"strings"
	"sync"
	"sync/atomic"
	"unsafe"

	"golang.org/x/exp/slices"
)

// Flags describes traits of a Type.
type Flags uint32

const (
	// FlagPrimitive marks builtin scalar and text types.
	FlagPrimitive Flags = 1 << iota
	// FlagContainer marks synthesized single-element container types.
	FlagContainer
	// FlagReflected marks types declared through explicit registration.
	FlagReflected
)

// String returns a "|" separated list of set flags.
func (f Flags) String() string {
	var parts []string
	if f&FlagPrimitive != 0 {
		parts = append(parts, "primitive")
	}
	if f&FlagContainer != 0 {
		parts = append(parts, "container")
	}
	if f&FlagReflected != 0 {
		parts = append(parts, "reflected")
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "|")
}

// Constructor is implemented by types that need more than the zero value
// when default-constructed through the reflection system.
type Constructor interface {
	Construct()
}

// Destroyer is implemented by types that hold resources which must be
// released when an owning Object is released.
type Destroyer interface {
	Destroy()
}

var (
	constructorType = reflect.TypeFor[Constructor]()
	destroyerType   = reflect.TypeFor[Destroyer]()
)

// Type is the runtime descriptor of one Go type known to the reflection
// system. A Type is immutable once its Builder has been built; the only
// later change is the child list, which Link appends to.
type Type struct {
	name   string
	rtype  reflect.Type
	size   uintptr
	flags  Flags
	parent *Type
	// poff is the byte offset of the parent inside this type.
	poff uintptr
	elem *Type

	props   map[string]*Property
	methods map[string]*Method

	construct func() unsafe.Pointer
	drop      func(unsafe.Pointer)

	mu       sync.RWMutex
	children []*Type
	linked   atomic.Bool
}

// Name returns the display name of the type.
func (t *Type) Name() string {
	if t == nil {
		return ""
	}
	return t.name
}

// String implements fmt.Stringer.
func (t *Type) String() string {
	if t == nil {
		return "<nil>"
	}
	return t.name
}

// Size returns the instance size in bytes.
func (t *Type) Size() uintptr { return t.size }

// Flags returns the type flags.
func (t *Type) Flags() Flags { return t.flags }

// IsPrimitive reports whether t is a builtin scalar or text type.
func (t *Type) IsPrimitive() bool { return t.flags&FlagPrimitive != 0 }

// IsContainer reports whether t is a synthesized container type.
func (t *Type) IsContainer() bool { return t.flags&FlagContainer != 0 }

// IsReflected reports whether t was declared through explicit registration.
func (t *Type) IsReflected() bool { return t.flags&FlagReflected != 0 }

// GoType returns the Go type described by t.
func (t *Type) GoType() reflect.Type { return t.rtype }

// Parent returns the parent type, or nil.
func (t *Type) Parent() *Type { return t.parent }

// Elem returns the element type of a container, or nil.
// This is a wrapping relation and is unrelated to Parent.
func (t *Type) Elem() *Type { return t.elem }

// Children returns a snapshot of the types that named t as their parent.
func (t *Type) Children() []*Type {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]*Type, len(t.children))
	copy(out, t.children)
	return out
}

// Is reports whether t and other are the same descriptor.
func (t *Type) Is(other *Type) bool {
	return t != nil && t == other
}

// InheritsFrom reports whether other is a strict ancestor of t.
// Identity is compared, not names. A type does not inherit from itself.
func (t *Type) InheritsFrom(other *Type) bool {
	if t == nil || other == nil {
		return false
	}
	for p := t.parent; p != nil; p = p.parent {
		if p == other {
			return true
		}
	}
	return false
}

// FindProperty looks name up on t and then on its ancestors.
// It returns nil if no type in the chain declares it.
func (t *Type) FindProperty(name string) *Property {
	for c := t; c != nil; c = c.parent {
		if p, ok := c.props[name]; ok {
			return p
		}
	}
	return nil
}

// FindMethod looks name up on t and then on its ancestors.
// It returns nil if no type in the chain declares it.
func (t *Type) FindMethod(name string) *Method {
	for c := t; c != nil; c = c.parent {
		if m, ok := c.methods[name]; ok {
			return m
		}
	}
	return nil
}

// DeclaredProperties returns the properties declared on t itself, sorted by name.
func (t *Type) DeclaredProperties() []*Property {
	out := make([]*Property, 0, len(t.props))
	for _, p := range t.props {
		out = append(out, p)
	}
	slices.SortFunc(out, func(a, b *Property) int { return strings.Compare(a.name, b.name) })
	return out
}

// Properties returns every property visible on t, including inherited ones.
// A property redeclared by a descendant hides the ancestor's. The result is
// sorted by name.
func (t *Type) Properties() []*Property {
	seen := make(map[string]struct{})
	var out []*Property
	for c := t; c != nil; c = c.parent {
		for name, p := range c.props {
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			out = append(out, p)
		}
	}
	slices.SortFunc(out, func(a, b *Property) int { return strings.Compare(a.name, b.name) })
	return out
}

// DeclaredMethods returns the methods declared on t itself, sorted by name.
func (t *Type) DeclaredMethods() []*Method {
	out := make([]*Method, 0, len(t.methods))
	for _, m := range t.methods {
		out = append(out, m)
	}
	slices.SortFunc(out, func(a, b *Method) int { return strings.Compare(a.name, b.name) })
	return out
}

// Methods returns every method visible on t, including inherited ones,
// sorted by name.
func (t *Type) Methods() []*Method {
	seen := make(map[string]struct{})
	var out []*Method
	for c := t; c != nil; c = c.parent {
		for name, m := range c.methods {
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			out = append(out, m)
		}
	}
	slices.SortFunc(out, func(a, b *Method) int { return strings.Compare(a.name, b.name) })
	return out
}

// Chain returns t and its ancestors, root first.
func (t *Type) Chain() []*Type {
	var out []*Type
	for c := t; c != nil; c = c.parent {
		out = append(out, c)
	}
	slices.Reverse(out)
	return out
}

// New default-constructs a value of t and returns its owning handle.
func (t *Type) New() *Object {
	if t == nil || t.construct == nil {
		return nil
	}
	return adopt(t, t.construct())
}

// NewCopy allocates fresh storage for t and copies the value at src into it.
// src must point to a value of t's Go type.
func (t *Type) NewCopy(src unsafe.Pointer) *Object {
	if t == nil || src == nil {
		return nil
	}
	dst := alloc(t.rtype)
	reflect.NewAt(t.rtype, dst).Elem().Set(reflect.NewAt(t.rtype, src).Elem())
	return adopt(t, dst)
}

// Upcast converts a pointer to a value of t into a pointer to its ancestor
// to. It returns false when to is neither t nor an ancestor of t.
func (t *Type) Upcast(p unsafe.Pointer, to *Type) (unsafe.Pointer, bool) {
	if p == nil || to == nil {
		return nil, false
	}
	for c := t; c != nil; c = c.parent {
		if c == to {
			return p, true
		}
		p = unsafe.Add(p, c.poff)
	}
	return nil, false
}

// Link records t in its parent's child list. It is called once the
// descriptor has been published; later calls are no-ops.
func Link(t *Type) {
	if t == nil || t.parent == nil || !t.linked.CompareAndSwap(false, true) {
		return
	}
	t.parent.mu.Lock()
	t.parent.children = append(t.parent.children, t)
	t.parent.mu.Unlock()
}

// Unlink reverses Link.
func Unlink(t *Type) {
	if t == nil || t.parent == nil || !t.linked.CompareAndSwap(true, false) {
		return
	}
	p := t.parent
	p.mu.Lock()
	if i := slices.Index(p.children, t); i >= 0 {
		p.children = slices.Delete(p.children, i, i+1)
	}
	p.mu.Unlock()
}

// alloc returns zeroed storage for a value of rt.
func alloc(rt reflect.Type) unsafe.Pointer {
	return reflect.New(rt).UnsafePointer()
}

// constructor returns the default construct entry point for rt.
func constructor(rt reflect.Type) func() unsafe.Pointer {
	hook := reflect.PointerTo(rt).Implements(constructorType)
	return func() unsafe.Pointer {
		p := alloc(rt)
		if hook {
			reflect.NewAt(rt, p).Interface().(Constructor).Construct()
		}
		return p
	}
}

// dropper returns the default drop entry point for rt.
func dropper(rt reflect.Type) func(unsafe.Pointer) {
	hook := reflect.PointerTo(rt).Implements(destroyerType)
	return func(p unsafe.Pointer) {
		v := reflect.NewAt(rt, p)
		if hook {
			v.Interface().(Destroyer).Destroy()
		}
		v.Elem().SetZero()
	}
}
