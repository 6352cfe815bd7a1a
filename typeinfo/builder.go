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
	"unsafe"

	"github.com/pkg/errors"
)

var (
	// ErrNilGoType is returned when a descriptor is requested for a nil reflect.Type.
	ErrNilGoType = errors.New("rtti(typeinfo): nil reflect.Type")
	// ErrEmptyName is returned for empty type, property or method names.
	ErrEmptyName = errors.New("rtti(typeinfo): empty name")
	// ErrParentSet is returned when a parent is bound twice.
	ErrParentSet = errors.New("rtti(typeinfo): parent already set")
	// ErrLayout is returned when a field or parent does not lie inside the
	// instance it is declared on.
	ErrLayout = errors.New("rtti(typeinfo): member outside instance layout")
	// ErrDuplicateProperty is returned when a property name is declared twice on one type.
	ErrDuplicateProperty = errors.New("rtti(typeinfo): duplicate property")
	// ErrDuplicateMethod is returned when a method name is declared twice on one type.
	ErrDuplicateMethod = errors.New("rtti(typeinfo): duplicate method")
	// ErrCyclicParent is returned when binding a parent would create a cycle.
	ErrCyclicParent = errors.New("rtti(typeinfo): cyclic parent")
)

// Builder assembles a Type. It is the only way to mutate a descriptor and is
// unusable once Build has been called.
type Builder struct {
	t     *Type
	built bool
}

// NewBuilder starts a descriptor for rt under the given display name.
func NewBuilder(name string, rt reflect.Type) (*Builder, error) {
	if rt == nil {
		return nil, ErrNilGoType
	}
	if name == "" {
		return nil, errors.Wrapf(ErrEmptyName, "type %v", rt)
	}
	return &Builder{t: &Type{
		name:      name,
		rtype:     rt,
		size:      rt.Size(),
		props:     make(map[string]*Property),
		methods:   make(map[string]*Method),
		construct: constructor(rt),
		drop:      dropper(rt),
	}}, nil
}

// Type returns the descriptor being built. Properties and methods use it as
// their owner; it must not be published before Build.
func (b *Builder) Type() *Type {
	b.check()
	return b.t
}

// SetFlags adds flags to the descriptor.
func (b *Builder) SetFlags(f Flags) *Builder {
	b.check()
	b.t.flags |= f
	return b
}

// SetElem binds the element type of a container descriptor.
func (b *Builder) SetElem(elem *Type) *Builder {
	b.check()
	b.t.elem = elem
	return b
}

// SetParent binds the single parent of the descriptor. offset is where the
// parent's storage starts inside an instance (the embedded field offset).
func (b *Builder) SetParent(parent *Type, offset uintptr) error {
	b.check()
	if parent == nil {
		return ErrNilGoType
	}
	if b.t.parent != nil {
		return errors.Wrapf(ErrParentSet, "%s already derives from %s", b.t.name, b.t.parent.name)
	}
	if offset+parent.size > b.t.size {
		return errors.Wrapf(ErrLayout, "parent %s at offset %d in %s (size %d)", parent.name, offset, b.t.name, b.t.size)
	}
	for p := parent; p != nil; p = p.parent {
		if p == b.t {
			return errors.Wrapf(ErrCyclicParent, "%s -> %s", b.t.name, parent.name)
		}
	}
	b.t.parent = parent
	b.t.poff = offset
	return nil
}

// AddProperty declares p on the descriptor.
func (b *Builder) AddProperty(p *Property) error {
	b.check()
	if p == nil || p.name == "" {
		return errors.Wrapf(ErrEmptyName, "property on %s", b.t.name)
	}
	if p.typ == nil {
		return errors.Wrapf(ErrNilGoType, "property %s.%s", b.t.name, p.name)
	}
	if _, ok := b.t.props[p.name]; ok {
		return errors.Wrapf(ErrDuplicateProperty, "%s.%s", b.t.name, p.name)
	}
	if p.get == nil && p.offset+p.typ.size > b.t.size {
		return errors.Wrapf(ErrLayout, "field %s.%s at offset %d", b.t.name, p.name, p.offset)
	}
	p.owner = b.t
	b.t.props[p.name] = p
	return nil
}

// AddMethod declares m on the descriptor.
func (b *Builder) AddMethod(m *Method) error {
	b.check()
	if m == nil || m.name == "" {
		return errors.Wrapf(ErrEmptyName, "method on %s", b.t.name)
	}
	if _, ok := b.t.methods[m.name]; ok {
		return errors.Wrapf(ErrDuplicateMethod, "%s.%s", b.t.name, m.name)
	}
	m.owner = b.t
	b.t.methods[m.name] = m
	return nil
}

// SetConstructor replaces the default construct entry point.
// fn must return fresh storage holding a value of the descriptor's Go type.
func (b *Builder) SetConstructor(fn func() unsafe.Pointer) *Builder {
	b.check()
	if fn != nil {
		b.t.construct = fn
	}
	return b
}

// Build seals and returns the descriptor.
func (b *Builder) Build() *Type {
	b.check()
	b.built = true
	return b.t
}

func (b *Builder) check() {
	if b.built {
		panic("rtti(typeinfo): builder used after Build")
	}
}

// NewPrimitive returns a sealed primitive descriptor for rt.
func NewPrimitive(name string, rt reflect.Type) (*Type, error) {
	b, err := NewBuilder(name, rt)
	if err != nil {
		return nil, err
	}
	return b.SetFlags(FlagPrimitive).Build(), nil
}

// NewContainer returns a sealed container descriptor for rt wrapping elem.
func NewContainer(name string, rt reflect.Type, elem *Type) (*Type, error) {
	b, err := NewBuilder(name, rt)
	if err != nil {
		return nil, err
	}
	return b.SetFlags(FlagContainer).SetElem(elem).Build(), nil
}
