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
	"strings"
	"unsafe"
)

// MaxArity is the largest number of arguments a Method accepts.
const MaxArity = 2

// Thunk calls a bound member function. recv points at the owner's storage,
// args at argument values in declaration order. For non-void methods it
// returns fresh storage holding a copy of the result; otherwise nil.
type Thunk func(recv unsafe.Pointer, args []unsafe.Pointer) unsafe.Pointer

// Method describes one invocable member function of a Type.
type Method struct {
	name   string
	owner  *Type
	params []*Type
	ret    *Type
	call   Thunk
}

// NewMethod returns a method taking params and returning ret (nil for void).
// It returns nil when more than MaxArity parameters are given.
func NewMethod(name string, params []*Type, ret *Type, call Thunk) *Method {
	if len(params) > MaxArity || call == nil {
		return nil
	}
	ps := make([]*Type, len(params))
	copy(ps, params)
	return &Method{name: name, params: ps, ret: ret, call: call}
}

// Name returns the method name.
func (m *Method) Name() string { return m.name }

// Owner returns the type that declares the method.
func (m *Method) Owner() *Type { return m.owner }

// Arity returns the number of parameters.
func (m *Method) Arity() int { return len(m.params) }

// Params returns the declared parameter types.
func (m *Method) Params() []*Type {
	out := make([]*Type, len(m.params))
	copy(out, m.params)
	return out
}

// Returns returns the result type, or nil for methods without a result.
func (m *Method) Returns() *Type { return m.ret }

// Signature renders the method as "name(p0, p1) ret".
func (m *Method) Signature() string {
	var sb strings.Builder
	sb.WriteString(m.name)
	sb.WriteByte('(')
	for i, p := range m.params {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(p.Name())
	}
	sb.WriteByte(')')
	if m.ret != nil {
		sb.WriteByte(' ')
		sb.WriteString(m.ret.Name())
	}
	return sb.String()
}

// Invoke calls the method on recv with args.
//
// The receiver's type must be the owner or a descendant of it, the number of
// arguments must match and every argument's type must be exactly the
// declared parameter type. Any mismatch returns (nil, false) without calling
// anything. A method with a result returns it as a new owned Object; a void
// method returns (nil, true).
func (m *Method) Invoke(recv Handle, args ...Handle) (*Object, bool) {
	if m == nil || isNil(recv) || len(args) != len(m.params) {
		return nil, false
	}
	ptr := recv.Pointer()
	if ptr == nil {
		return nil, false
	}
	base, ok := recv.Type().Upcast(ptr, m.owner)
	if !ok {
		return nil, false
	}
	raw := make([]unsafe.Pointer, len(args))
	for i, a := range args {
		if isNil(a) || a.Type() != m.params[i] {
			return nil, false
		}
		if raw[i] = a.Pointer(); raw[i] == nil {
			return nil, false
		}
	}
	out := m.call(base, raw)
	if m.ret == nil || out == nil {
		return nil, true
	}
	return adopt(m.ret, out), true
}
