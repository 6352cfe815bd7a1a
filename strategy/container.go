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
	"fmt"
	"reflect"
	"sync"

	"dirpx.dev/rtti/apis"
	"dirpx.dev/rtti/config"
	"dirpx.dev/rtti/typeinfo"
	uref "dirpx.dev/rtti/utils/reflect"
)

// NewContainerStrategy creates an apis.Strategy that synthesizes descriptors
// for slices and arrays of resolvable elements.
func NewContainerStrategy(reg apis.Registry) apis.Strategy {
	return containerStrategy{reg: reg}
}

// containerStrategy names unnamed slices after SequenceFormat ("sequence<int>")
// and arrays as "array<int,4>". Named container types keep their Go name.
type containerStrategy struct {
	reg apis.Registry
}

// Ensure containerStrategy implements apis.Strategy.
var _ apis.Strategy = (*containerStrategy)(nil)

// containerKey ensures memoization respects all config knobs that affect naming.
type containerKey struct {
	t      reflect.Type
	format string
}

// containerCache memoizes synthesized descriptors.
var containerCache sync.Map // key: containerKey, val: *typeinfo.Type

// TryResolve resolves the container type of v, through pointers.
func (s containerStrategy) TryResolve(v any, cfg apis.Config, res apis.Resolver) (*typeinfo.Type, bool) {
	if v == nil {
		return nil, false
	}
	t, err := uref.Indirect(reflect.TypeOf(v), cfg)
	if err != nil {
		return nil, false
	}
	return s.TryResolveType(t, cfg, res)
}

// TryResolveType synthesizes (or returns the memoized) descriptor of t.
func (s containerStrategy) TryResolveType(t reflect.Type, cfg apis.Config, res apis.Resolver) (*typeinfo.Type, bool) {
	if t == nil || res == nil || uref.Classify(t) != uref.ClassSequence {
		return nil, false
	}
	maxDepth := cfg.MaxUnwrap
	if maxDepth <= 0 {
		maxDepth = config.DefaultMaxUnwrap
	}
	if uref.SequenceDepth(t) > maxDepth {
		return nil, false
	}
	format := cfg.SequenceFormat
	if format == "" {
		format = config.DefaultSequenceFormat
	}

	key := containerKey{t: t, format: format}
	if v, ok := containerCache.Load(key); ok {
		return s.record(t, v.(*typeinfo.Type)), true
	}

	elem := res.ResolveType(t.Elem(), cfg)
	if elem == nil {
		return nil, false
	}
	d, err := typeinfo.NewContainer(containerName(t, elem, format), t, elem)
	if err != nil {
		return nil, false
	}
	v, _ := containerCache.LoadOrStore(key, d)
	return s.record(t, v.(*typeinfo.Type)), true
}

func (s containerStrategy) record(t reflect.Type, d *typeinfo.Type) *typeinfo.Type {
	if s.reg != nil {
		_ = s.reg.Register(t, d)
	}
	return d
}

// containerName derives the display name of container t.
func containerName(t reflect.Type, elem *typeinfo.Type, format string) string {
	if t.Name() != "" {
		return t.String()
	}
	if t.Kind() == reflect.Array {
		return fmt.Sprintf("array<%s,%d>", elem.Name(), t.Len())
	}
	return fmt.Sprintf(format, elem.Name())
}
