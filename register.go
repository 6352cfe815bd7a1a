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

	"github.com/iancoleman/strcase"
	"github.com/pkg/errors"
	"golang.org/x/exp/constraints"

	"dirpx.dev/rtti/typeinfo"
)

var (
	// ErrNotStruct is returned by Fields for non-struct types.
	ErrNotStruct = errors.New("rtti: not a struct type")
	// ErrNilAccessor is returned when an accessor property has no getter or
	// a method has no function.
	ErrNilAccessor = errors.New("rtti: nil accessor")
)

// TypeBuilder collects the parent, properties and methods of T during
// Register. The first error recorded fails the registration.
type TypeBuilder[T any] struct {
	b   *typeinfo.Builder
	err error
}

// Name returns the display name under construction.
func (tb *TypeBuilder[T]) Name() string {
	return tb.b.Type().Name()
}

// Err returns the first error recorded so far.
func (tb *TypeBuilder[T]) Err() error {
	return tb.err
}

// Construct makes the descriptor's construct entry point run fn on every
// freshly allocated value.
func (tb *TypeBuilder[T]) Construct(fn func(*T)) {
	if fn == nil {
		return
	}
	tb.b.SetConstructor(func() unsafe.Pointer {
		p := new(T)
		fn(p)
		return unsafe.Pointer(p)
	})
}

func (tb *TypeBuilder[T]) fail(err error) {
	if err != nil && tb.err == nil {
		tb.err = err
	}
}

// Register describes T under name and publishes the descriptor. fn declares
// the parent, properties and methods; it may be nil.
//
// Registering a type or a name twice fails with registry.ErrDuplicateType
// or registry.ErrDuplicateName unless overwriting is enabled.
func Register[T any](name string, fn func(*TypeBuilder[T])) (*typeinfo.Type, error) {
	if IsSealed() {
		return nil, errors.Wrapf(ErrSealed, "register %s", name)
	}
	rt := reflect.TypeFor[T]()
	b, err := typeinfo.NewBuilder(name, rt)
	if err != nil {
		return nil, err
	}

	// Members are declared without holding buildMu: resolving member types
	// may register primitives and containers.
	tb := &TypeBuilder[T]{b: b}
	if fn != nil {
		fn(tb)
	}
	if tb.err != nil {
		return nil, errors.Wrapf(tb.err, "register %s", name)
	}
	t := b.SetFlags(typeinfo.FlagReflected).Build()

	buildMu.Lock()
	defer buildMu.Unlock()

	s := st.Load()
	if s.sealed {
		return nil, errors.Wrapf(ErrSealed, "register %s", name)
	}
	prev, hadPrev := s.reg.Lookup(rt)
	if err := s.reg.Register(rt, t); err != nil {
		return nil, err
	}
	if hadPrev && prev != t {
		typeinfo.Unlink(prev)
	}
	typeinfo.Link(t)
	return t, nil
}

// MustRegister is like Register but panics on error. It is meant for
// package-level variables.
func MustRegister[T any](name string, fn func(*TypeBuilder[T])) *typeinfo.Type {
	t, err := Register(name, fn)
	if err != nil {
		panic(err)
	}
	return t
}

// offsetOf returns the byte offset of the member field selects inside T.
func offsetOf[T, F any](field func(*T) *F) (uintptr, error) {
	if field == nil {
		return 0, ErrNilAccessor
	}
	var zero T
	base := uintptr(unsafe.Pointer(&zero))
	fp := field(&zero)
	if fp == nil {
		return 0, typeinfo.ErrLayout
	}
	addr := uintptr(unsafe.Pointer(fp))
	if addr < base || addr+unsafe.Sizeof(*fp) > base+unsafe.Sizeof(zero) {
		return 0, typeinfo.ErrLayout
	}
	return addr - base, nil
}

// Parent binds P as the parent of T. field selects the embedded P inside T.
//
//	rtti.Parent(tb, func(b *Bar) *Foo { return &b.Foo })
func Parent[T, P any](tb *TypeBuilder[T], field func(*T) *P) {
	pd, err := Resolve[P]()
	if err != nil {
		tb.fail(errors.Wrapf(err, "parent of %s", tb.Name()))
		return
	}
	off, err := offsetOf(field)
	if err != nil {
		tb.fail(errors.Wrapf(err, "parent %s of %s", pd.Name(), tb.Name()))
		return
	}
	tb.fail(tb.b.SetParent(pd, off))
}

// Field declares the offset-based property name. field selects the member
// inside T.
//
//	rtti.Field(tb, "a", func(f *Foo) *int { return &f.A })
func Field[T, F any](tb *TypeBuilder[T], name string, field func(*T) *F) {
	ft, err := Resolve[F]()
	if err != nil {
		tb.fail(errors.Wrapf(err, "property %s.%s", tb.Name(), name))
		return
	}
	off, err := offsetOf(field)
	if err != nil {
		tb.fail(errors.Wrapf(err, "property %s.%s", tb.Name(), name))
		return
	}
	tb.fail(tb.b.AddProperty(typeinfo.NewField(name, ft, off)))
}

// Accessor declares a property read through get and written through set.
// A nil set makes it read-only.
func Accessor[T, F any](tb *TypeBuilder[T], name string, get func(*T) F, set func(*T, F)) {
	var setter func(*T, F) bool
	if set != nil {
		setter = func(p *T, v F) bool {
			set(p, v)
			return true
		}
	}
	accessor(tb, name, get, setter)
}

// Range declares an accessor property whose setter refuses values outside
// [lo, hi]. NaN is refused as well.
func Range[T any, F constraints.Ordered](tb *TypeBuilder[T], name string, get func(*T) F, set func(*T, F), lo, hi F) {
	if set == nil {
		tb.fail(errors.Wrapf(ErrNilAccessor, "property %s.%s", tb.Name(), name))
		return
	}
	accessor(tb, name, get, func(p *T, v F) bool {
		if !(v >= lo && v <= hi) {
			return false
		}
		set(p, v)
		return true
	})
}

func accessor[T, F any](tb *TypeBuilder[T], name string, get func(*T) F, set func(*T, F) bool) {
	if get == nil {
		tb.fail(errors.Wrapf(ErrNilAccessor, "property %s.%s", tb.Name(), name))
		return
	}
	ft, err := Resolve[F]()
	if err != nil {
		tb.fail(errors.Wrapf(err, "property %s.%s", tb.Name(), name))
		return
	}
	var setter typeinfo.Setter
	if set != nil {
		setter = func(recv unsafe.Pointer, v any) bool {
			f, ok := v.(F)
			if !ok {
				return false
			}
			return set((*T)(recv), f)
		}
	}
	getter := func(recv unsafe.Pointer) any {
		return get((*T)(recv))
	}
	tb.fail(tb.b.AddProperty(typeinfo.NewAccessor(name, ft, getter, setter)))
}

// Fields declares an offset-based property for every exported, non-embedded
// field of T whose type resolves. Names are the snake_case field names; the
// `rtti:"name"` tag overrides the name and `rtti:"-"` skips the field.
func Fields[T any](tb *TypeBuilder[T]) {
	rt := reflect.TypeFor[T]()
	if rt.Kind() != reflect.Struct {
		tb.fail(errors.Wrapf(ErrNotStruct, "fields of %s", tb.Name()))
		return
	}
	s := st.Load()
	for i := 0; i < rt.NumField(); i++ {
		f := rt.Field(i)
		if !f.IsExported() || f.Anonymous {
			continue
		}
		name := strcase.ToSnake(f.Name)
		if tag, ok := f.Tag.Lookup("rtti"); ok {
			if tag == "-" {
				continue
			}
			if tag != "" {
				name = tag
			}
		}
		ft := s.res.ResolveType(f.Type, s.cfg)
		if ft == nil {
			continue
		}
		tb.fail(tb.b.AddProperty(typeinfo.NewField(name, ft, f.Offset)))
	}
}

// result copies r into fresh storage for a Thunk.
func result[R any](r R) unsafe.Pointer {
	return unsafe.Pointer(&r)
}

func (tb *TypeBuilder[T]) method(name string, params []reflect.Type, ret reflect.Type, call typeinfo.Thunk) {
	ps := make([]*typeinfo.Type, len(params))
	for i, p := range params {
		d, err := resolveType(p)
		if err != nil {
			tb.fail(errors.Wrapf(err, "method %s.%s parameter %d", tb.Name(), name, i))
			return
		}
		ps[i] = d
	}
	var rd *typeinfo.Type
	if ret != nil {
		d, err := resolveType(ret)
		if err != nil {
			tb.fail(errors.Wrapf(err, "method %s.%s result", tb.Name(), name))
			return
		}
		rd = d
	}
	tb.fail(tb.b.AddMethod(typeinfo.NewMethod(name, ps, rd, call)))
}

// Method0 declares a method without arguments returning R.
//
//	rtti.Method0(tb, "len", (*Foo).Len)
func Method0[T, R any](tb *TypeBuilder[T], name string, fn func(*T) R) {
	if fn == nil {
		tb.fail(errors.Wrapf(ErrNilAccessor, "method %s.%s", tb.Name(), name))
		return
	}
	tb.method(name, nil, reflect.TypeFor[R](), func(recv unsafe.Pointer, _ []unsafe.Pointer) unsafe.Pointer {
		return result(fn((*T)(recv)))
	})
}

// Method1 declares a method taking A and returning R.
func Method1[T, A, R any](tb *TypeBuilder[T], name string, fn func(*T, A) R) {
	if fn == nil {
		tb.fail(errors.Wrapf(ErrNilAccessor, "method %s.%s", tb.Name(), name))
		return
	}
	params := []reflect.Type{reflect.TypeFor[A]()}
	tb.method(name, params, reflect.TypeFor[R](), func(recv unsafe.Pointer, args []unsafe.Pointer) unsafe.Pointer {
		return result(fn((*T)(recv), *(*A)(args[0])))
	})
}

// Method2 declares a method taking A and B and returning R.
func Method2[T, A, B, R any](tb *TypeBuilder[T], name string, fn func(*T, A, B) R) {
	if fn == nil {
		tb.fail(errors.Wrapf(ErrNilAccessor, "method %s.%s", tb.Name(), name))
		return
	}
	params := []reflect.Type{reflect.TypeFor[A](), reflect.TypeFor[B]()}
	tb.method(name, params, reflect.TypeFor[R](), func(recv unsafe.Pointer, args []unsafe.Pointer) unsafe.Pointer {
		return result(fn((*T)(recv), *(*A)(args[0]), *(*B)(args[1])))
	})
}

// Action0 declares a method without arguments or result.
func Action0[T any](tb *TypeBuilder[T], name string, fn func(*T)) {
	if fn == nil {
		tb.fail(errors.Wrapf(ErrNilAccessor, "method %s.%s", tb.Name(), name))
		return
	}
	tb.method(name, nil, nil, func(recv unsafe.Pointer, _ []unsafe.Pointer) unsafe.Pointer {
		fn((*T)(recv))
		return nil
	})
}

// Action1 declares a method taking A without result.
func Action1[T, A any](tb *TypeBuilder[T], name string, fn func(*T, A)) {
	if fn == nil {
		tb.fail(errors.Wrapf(ErrNilAccessor, "method %s.%s", tb.Name(), name))
		return
	}
	params := []reflect.Type{reflect.TypeFor[A]()}
	tb.method(name, params, nil, func(recv unsafe.Pointer, args []unsafe.Pointer) unsafe.Pointer {
		fn((*T)(recv), *(*A)(args[0]))
		return nil
	})
}

// Action2 declares a method taking A and B without result.
func Action2[T, A, B any](tb *TypeBuilder[T], name string, fn func(*T, A, B)) {
	if fn == nil {
		tb.fail(errors.Wrapf(ErrNilAccessor, "method %s.%s", tb.Name(), name))
		return
	}
	params := []reflect.Type{reflect.TypeFor[A](), reflect.TypeFor[B]()}
	tb.method(name, params, nil, func(recv unsafe.Pointer, args []unsafe.Pointer) unsafe.Pointer {
		fn((*T)(recv), *(*A)(args[0]), *(*B)(args[1]))
		return nil
	})
}
