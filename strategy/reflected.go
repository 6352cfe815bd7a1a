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

	"dirpx.dev/rtti/apis"
	"dirpx.dev/rtti/typeinfo"
	uref "dirpx.dev/rtti/utils/reflect"
)

// NewReflectedStrategy creates an apis.Strategy that uses apis.Reflected.
func NewReflectedStrategy() apis.Strategy {
	return &reflectedStrategy{}
}

// reflectedStrategy is a zero-lookup fast path: if the type implements
// apis.Reflected, return its ReflectedType() and stop the chain.
type reflectedStrategy struct{}

// Ensure reflectedStrategy implements apis.Strategy.
var _ apis.Strategy = (*reflectedStrategy)(nil)

var reflectedIface = reflect.TypeFor[apis.Reflected]()

// TryResolve checks if v implements apis.Reflected and returns its descriptor.
func (*reflectedStrategy) TryResolve(v any, cfg apis.Config, _ apis.Resolver) (*typeinfo.Type, bool) {
	r, ok := v.(apis.Reflected)
	if !ok {
		return nil, false
	}
	t, err := uref.Indirect(reflect.TypeOf(v), cfg)
	if err != nil {
		return nil, false
	}
	return accept(r, t)
}

// TryResolveType checks if t or *t implements apis.Reflected and asks a zero
// value for its descriptor.
func (*reflectedStrategy) TryResolveType(t reflect.Type, _ apis.Config, _ apis.Resolver) (*typeinfo.Type, bool) {
	if t == nil || t.Kind() == reflect.Interface {
		return nil, false
	}
	var zero reflect.Value
	switch {
	case t.Implements(reflectedIface):
		zero = reflect.Zero(t)
	case reflect.PointerTo(t).Implements(reflectedIface):
		zero = reflect.Zero(reflect.PointerTo(t))
	default:
		return nil, false
	}
	r, ok := zero.Interface().(apis.Reflected)
	if !ok {
		return nil, false
	}
	return accept(r, t)
}

// accept returns r's descriptor if it describes exactly t. Descriptors
// promoted from an embedded parent, nil descriptors and panicking
// implementations fall through.
func accept(r apis.Reflected, t reflect.Type) (d *typeinfo.Type, ok bool) {
	defer func() {
		if recover() != nil {
			d, ok = nil, false
		}
	}()
	d = r.ReflectedType()
	if d == nil || d.GoType() != t {
		return nil, false
	}
	return d, true
}
