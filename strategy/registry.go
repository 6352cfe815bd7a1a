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

// NewRegistryStrategy creates an apis.Strategy that uses an apis.Registry.
func NewRegistryStrategy(reg apis.Registry) apis.Strategy {
	return &registryStrategy{reg: reg}
}

// registryStrategy consults a provided apis.Registry.
type registryStrategy struct {
	reg apis.Registry
}

// Ensure registryStrategy implements apis.Strategy.
var _ apis.Strategy = (*registryStrategy)(nil)

// TryResolve looks up v's type, through pointers, in the registry.
func (s *registryStrategy) TryResolve(v any, cfg apis.Config, _ apis.Resolver) (*typeinfo.Type, bool) {
	if v == nil || s.reg == nil {
		return nil, false
	}
	t, err := uref.Indirect(reflect.TypeOf(v), cfg)
	if err != nil {
		return nil, false
	}
	return s.reg.Lookup(t)
}

// TryResolveType looks up t in the registry.
func (s *registryStrategy) TryResolveType(t reflect.Type, _ apis.Config, _ apis.Resolver) (*typeinfo.Type, bool) {
	if t == nil || s.reg == nil {
		return nil, false
	}
	return s.reg.Lookup(t)
}
