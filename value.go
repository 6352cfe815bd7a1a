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

package rtti

import (
	"reflect"
	"unsafe"

	"dirpx.dev/rtti/typeinfo"
)

// New default-constructs a T through its descriptor and applies init in
// order. The caller owns the result and must Release it.
func New[T any](init ...func(*T)) *typeinfo.Object {
	o := Of[T]().New()
	p := (*T)(o.Pointer())
	for _, fn := range init {
		if fn != nil {
			fn(p)
		}
	}
	return o
}

// NewCopy returns an owned copy of v.
func NewCopy[T any](v T) *typeinfo.Object {
	return Of[T]().NewCopy(unsafe.Pointer(&v))
}

// Wrap returns a borrowing handle over storage owned elsewhere. Releasing
// nothing through it ever touches *p. A nil p yields nil.
func Wrap[T any](p *T) *typeinfo.Ref {
	if p == nil {
		return nil
	}
	return typeinfo.NewRef(Of[T](), unsafe.Pointer(p))
}

// Get returns the value behind h as *T if h's type is exactly T, and nil
// otherwise. Parents and children of T do not match.
func Get[T any](h typeinfo.Handle) *T {
	if h == nil {
		return nil
	}
	d, err := Resolve[T]()
	if err != nil || h.Type() != d {
		return nil
	}
	p := h.Pointer()
	if p == nil {
		return nil
	}
	return (*T)(p)
}

// property finds name on h's type and checks that it is declared as T.
func property[T any](h typeinfo.Handle, name string) *typeinfo.Property {
	if h == nil || h.Type() == nil {
		return nil
	}
	p := h.Type().FindProperty(name)
	if p == nil {
		return nil
	}
	d, err := Resolve[T]()
	if err != nil || p.Type() != d {
		return nil
	}
	return p
}

// GetProperty reads property name of the value behind h. It reports false
// if the property is missing, not declared as T or h is unusable.
func GetProperty[T any](h typeinfo.Handle, name string) (T, bool) {
	var zero T
	p := property[T](h, name)
	if p == nil {
		return zero, false
	}
	if addr, ok := p.Address(h); ok {
		return *(*T)(addr), true
	}
	v, ok := p.Get(h)
	if !ok {
		return zero, false
	}
	t, ok := v.(T)
	return t, ok
}

// SetProperty writes v to property name of the value behind h. It reports
// false if the property is missing, not declared as T, read-only, refused
// the value or h is unusable.
func SetProperty[T any](h typeinfo.Handle, name string, v T) bool {
	p := property[T](h, name)
	if p == nil {
		return false
	}
	if addr, ok := p.Address(h); ok {
		*(*T)(addr) = v
		return true
	}
	return p.Set(h, v)
}

// Invoke calls method name of h's type (or an ancestor) with args.
// See typeinfo.Method.Invoke for the result contract.
func Invoke(h typeinfo.Handle, name string, args ...typeinfo.Handle) (*typeinfo.Object, bool) {
	if h == nil || h.Type() == nil {
		return nil, false
	}
	m := h.Type().FindMethod(name)
	if m == nil {
		return nil, false
	}
	return m.Invoke(h, args...)
}

// Call is Invoke with plain Go arguments. Each argument is copied and typed
// by its exact dynamic type; unresolvable arguments fail the call.
func Call(h typeinfo.Handle, name string, args ...any) (*typeinfo.Object, bool) {
	hs := make([]typeinfo.Handle, len(args))
	for i, a := range args {
		if a == nil {
			return nil, false
		}
		rt := reflect.TypeOf(a)
		d, err := resolveType(rt)
		if err != nil {
			return nil, false
		}
		v := reflect.New(rt)
		v.Elem().Set(reflect.ValueOf(a))
		hs[i] = typeinfo.NewRef(d, v.UnsafePointer())
	}
	return Invoke(h, name, hs...)
}
