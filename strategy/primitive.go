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

package strategy

import (
	"reflect"
	"sync"

	"dirpx.dev/rtti/apis"
	"dirpx.dev/rtti/typeinfo"
	uref "dirpx.dev/rtti/utils/reflect"
)

// NewPrimitiveStrategy creates an apis.Strategy that resolves builtin scalar
// and text types to shared primitive descriptors. Resolved descriptors are
// recorded in reg so they show up in enumeration.
func NewPrimitiveStrategy(reg apis.Registry) apis.Strategy {
	return primitiveStrategy{reg: reg}
}

// primitiveStrategy needs no per-type registration: any boolean, number or
// string type (named or not) gets a descriptor on first use.
type primitiveStrategy struct {
	reg apis.Registry
}

// Ensure primitiveStrategy implements apis.Strategy.
var _ apis.Strategy = (*primitiveStrategy)(nil)

// primitiveCache holds one descriptor per primitive Go type for the life of
// the process, so identity survives registry rebuilds.
var primitiveCache sync.Map // key: reflect.Type, val: *typeinfo.Type

// builtins is the primitive set registered eagerly at bootstrap.
var builtins = []reflect.Type{
	reflect.TypeFor[bool](),
	reflect.TypeFor[int](),
	reflect.TypeFor[int8](),
	reflect.TypeFor[int16](),
	reflect.TypeFor[int32](),
	reflect.TypeFor[int64](),
	reflect.TypeFor[uint](),
	reflect.TypeFor[uint8](),
	reflect.TypeFor[uint16](),
	reflect.TypeFor[uint32](),
	reflect.TypeFor[uint64](),
	reflect.TypeFor[uintptr](),
	reflect.TypeFor[float32](),
	reflect.TypeFor[float64](),
	reflect.TypeFor[complex64](),
	reflect.TypeFor[complex128](),
	reflect.TypeFor[string](),
}

// Builtins returns the Go types of the bootstrap primitive set.
func Builtins() []reflect.Type {
	out := make([]reflect.Type, len(builtins))
	copy(out, builtins)
	return out
}

// Primitive returns the shared descriptor of primitive type t, or nil if t
// is not primitive.
func Primitive(t reflect.Type) *typeinfo.Type {
	if uref.Classify(t) != uref.ClassPrimitive {
		return nil
	}
	if v, ok := primitiveCache.Load(t); ok {
		return v.(*typeinfo.Type)
	}
	d, err := typeinfo.NewPrimitive(t.String(), t)
	if err != nil {
		return nil
	}
	v, _ := primitiveCache.LoadOrStore(t, d)
	return v.(*typeinfo.Type)
}

// TryResolve resolves the primitive type of v, through pointers.
func (s primitiveStrategy) TryResolve(v any, cfg apis.Config, res apis.Resolver) (*typeinfo.Type, bool) {
	if v == nil {
		return nil, false
	}
	t, err := uref.Indirect(reflect.TypeOf(v), cfg)
	if err != nil {
		return nil, false
	}
	return s.TryResolveType(t, cfg, res)
}

// TryResolveType resolves t if it is primitive.
func (s primitiveStrategy) TryResolveType(t reflect.Type, _ apis.Config, _ apis.Resolver) (*typeinfo.Type, bool) {
	d := Primitive(t)
	if d == nil {
		return nil, false
	}
	if s.reg != nil {
		// A conflicting explicit registration keeps precedence.
		_ = s.reg.Register(t, d)
	}
	return d, true
}
