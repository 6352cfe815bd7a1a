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

package builder

import (
	"dirpx.dev/rtti/apis"
	"dirpx.dev/rtti/registry"
	"dirpx.dev/rtti/resolver"
	"dirpx.dev/rtti/strategy"
)

// New creates and returns a new instance of an apis.Builder.
func New() apis.Builder {
	return &builder{}
}

// builder is an empty struct to be used as a receiver for builder methods.
type builder struct{}

// BuildRegistry builds and returns a new apis.Registry based on the provided
// configuration. When cfg.Primitives is set the builtin primitives are
// registered eagerly. User registrations of a previous registry are carried
// over; primitive and container entries are not, they are re-synthesized on
// demand.
func (b *builder) BuildRegistry(cfg apis.Config, prev apis.Registry) apis.Registry {
	nreg := registry.New(cfg)
	if cfg.Primitives {
		for _, rt := range strategy.Builtins() {
			_ = nreg.Register(rt, strategy.Primitive(rt))
		}
	}
	if prev != nil {
		for _, e := range prev.Entries() {
			if e.Desc.IsPrimitive() || e.Desc.IsContainer() {
				continue
			}
			_ = nreg.Register(e.Type, e.Desc)
		}
	}
	return nreg
}

// BuildResolver builds and returns a new apis.Resolver over reg. Strategies
// run in order: self-describing types, explicit registrations, primitives,
// then synthesized containers.
func (b *builder) BuildResolver(_ apis.Config, reg apis.Registry, _ apis.Resolver) apis.Resolver {
	return resolver.New(
		strategy.NewReflectedStrategy(),
		strategy.NewRegistryStrategy(reg),
		strategy.NewPrimitiveStrategy(reg),
		strategy.NewContainerStrategy(reg),
	)
}
