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
)

// Getter reads an accessor property from the owner instance at recv.
type Getter func(recv unsafe.Pointer) any

// Setter writes an accessor property on the owner instance at recv.
// It reports whether the value was accepted.
type Setter func(recv unsafe.Pointer, v any) bool

// Property describes one named field of a Type. Plain fields are addressed
// by byte offset; accessor properties go through a Getter/Setter pair.
type Property struct {
	name   string
	owner  *Type
	typ    *Type
	offset uintptr
	get    Getter
	set    Setter
}

// NewField returns an offset-based property of type typ.
func NewField(name string, typ *Type, offset uintptr) *Property {
	return &Property{name: name, typ: typ, offset: offset}
}

// NewAccessor returns an accessor-based property of type typ.
// A nil set makes the property read-only.
func NewAccessor(name string, typ *Type, get Getter, set Setter) *Property {
	return &Property{name: name, typ: typ, get: get, set: set}
}

// Name returns the property name.
func (p *Property) Name() string { return p.name }

// Type returns the declared type of the property.
func (p *Property) Type() *Type { return p.typ }

// Owner returns the type that declares the property.
func (p *Property) Owner() *Type { return p.owner }

// Offset returns the byte offset of a plain field inside its owner.
func (p *Property) Offset() uintptr { return p.offset }

// IsAccessor reports whether the property is read and written through functions.
func (p *Property) IsAccessor() bool { return p.get != nil }

// ReadOnly reports whether the property rejects every write.
func (p *Property) ReadOnly() bool { return p.get != nil && p.set == nil }

// receiver returns the owner's storage inside the instance behind h.
func (p *Property) receiver(h Handle) (unsafe.Pointer, bool) {
	if isNil(h) {
		return nil, false
	}
	ptr := h.Pointer()
	if ptr == nil {
		return nil, false
	}
	return h.Type().Upcast(ptr, p.owner)
}

// Address returns the storage of a plain field inside the instance behind h.
// It returns false for accessor properties and for unrelated handles.
func (p *Property) Address(h Handle) (unsafe.Pointer, bool) {
	if p.get != nil {
		return nil, false
	}
	base, ok := p.receiver(h)
	if !ok {
		return nil, false
	}
	return unsafe.Add(base, p.offset), true
}

// Get reads the property from the instance behind h as a boxed copy.
func (p *Property) Get(h Handle) (any, bool) {
	base, ok := p.receiver(h)
	if !ok {
		return nil, false
	}
	if p.get != nil {
		return p.get(base), true
	}
	return reflect.NewAt(p.typ.rtype, unsafe.Add(base, p.offset)).Elem().Interface(), true
}

// Set writes v to the property of the instance behind h. The dynamic Go
// type of v must be exactly the property's Go type.
func (p *Property) Set(h Handle, v any) bool {
	if v == nil || reflect.TypeOf(v) != p.typ.rtype {
		return false
	}
	base, ok := p.receiver(h)
	if !ok {
		return false
	}
	if p.get != nil {
		if p.set == nil {
			return false
		}
		return p.set(base, v)
	}
	reflect.NewAt(p.typ.rtype, unsafe.Add(base, p.offset)).Elem().Set(reflect.ValueOf(v))
	return true
}

// SetFrom copies the value behind src into the property of the instance
// behind h. The descriptor of src must be the property's declared type.
func (p *Property) SetFrom(h Handle, src Handle) bool {
	if isNil(src) || src.Type() != p.typ {
		return false
	}
	sp := src.Pointer()
	if sp == nil {
		return false
	}
	return p.Set(h, reflect.NewAt(p.typ.rtype, sp).Elem().Interface())
}
