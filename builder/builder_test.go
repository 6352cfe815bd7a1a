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

package builder_test

import (
	"reflect"
	"runtime"
	"sync"
	"testing"

	"dirpx.dev/rtti/apis"
	"dirpx.dev/rtti/builder"
	"dirpx.dev/rtti/config"
	"dirpx.dev/rtti/strategy"
	"dirpx.dev/rtti/typeinfo"
)

// userType is a plain named type registered explicitly.
type userType struct{ N int }

// hotType implements apis.Reflected and is used to verify that the
// self-describing strategy takes priority over the registry.
type hotType struct{}

var hotDesc = desc("hot", reflect.TypeFor[hotType]())

func (hotType) ReflectedType() *typeinfo.Type { return hotDesc }

func desc(name string, rt reflect.Type) *typeinfo.Type {
	b, err := typeinfo.NewBuilder(name, rt)
	if err != nil {
		panic(err)
	}
	return b.Build()
}

// TestBuildRegistry_Bootstrap asserts that the builtin primitives are
// registered eagerly when enabled, and not otherwise.
func TestBuildRegistry_Bootstrap(t *testing.T) {
	b := builder.New()

	reg := b.BuildRegistry(config.DefaultConfig(), nil)
	if reg == nil {
		t.Fatal("BuildRegistry returned nil")
	}
	if got, want := reg.Count(), len(strategy.Builtins()); got != want {
		t.Fatalf("Count = %d, want %d", got, want)
	}
	d, ok := reg.LookupName("int")
	if !ok || !d.IsPrimitive() || d.Size() != reflect.TypeFor[int]().Size() {
		t.Fatalf("LookupName(int) = (%v,%v)", d, ok)
	}

	lazy := b.BuildRegistry(config.NewConfig(config.WithPrimitives(false)), nil)
	if lazy.Count() != 0 {
		t.Fatalf("lazy registry Count = %d, want 0", lazy.Count())
	}
}

// TestBuildRegistry_Migrate asserts user entries move to the new registry
// while synthesized entries are dropped.
func TestBuildRegistry_Migrate(t *testing.T) {
	b := builder.New()
	cfg := config.NewConfig(config.WithPrimitives(false))
	prev := b.BuildRegistry(cfg, nil)

	u := desc("user", reflect.TypeFor[userType]())
	if err := prev.Register(reflect.TypeFor[userType](), u); err != nil {
		t.Fatalf("Register: %v", err)
	}
	res := b.BuildResolver(cfg, prev, nil)
	if res.ResolveType(reflect.TypeFor[[]int16](), cfg) == nil {
		t.Fatal("container must resolve")
	}
	if prev.Count() != 3 {
		t.Fatalf("prev Count = %d, want 3 (user, int16, sequence)", prev.Count())
	}

	next := b.BuildRegistry(cfg, prev)
	if next.Count() != 1 {
		t.Fatalf("next Count = %d, want 1", next.Count())
	}
	if got, ok := next.Lookup(reflect.TypeFor[userType]()); !ok || got != u {
		t.Fatalf("user entry lost: (%v,%v)", got, ok)
	}
}

// TestBuildResolver_Order verifies resolution priority:
// Reflected, then Registry, then Primitive, then Container.
func TestBuildResolver_Order(t *testing.T) {
	b := builder.New()
	cfg := config.DefaultConfig()
	reg := b.BuildRegistry(cfg, nil)

	// A registry entry for hotType must lose to ReflectedType.
	other := desc("hot-from-registry", reflect.TypeFor[hotType]())
	if err := reg.Register(reflect.TypeFor[hotType](), other); err != nil {
		t.Fatalf("Register: %v", err)
	}
	u := desc("user", reflect.TypeFor[userType]())
	if err := reg.Register(reflect.TypeFor[userType](), u); err != nil {
		t.Fatalf("Register: %v", err)
	}

	res := b.BuildResolver(cfg, reg, nil)
	if got := res.Resolve(hotType{}, cfg); got != hotDesc {
		t.Fatalf("Reflected priority broken: got %v", got)
	}
	if got := res.Resolve(&userType{}, cfg); got != u {
		t.Fatalf("Registry strategy broken: got %v", got)
	}
	if got := res.ResolveType(reflect.TypeFor[int](), cfg); got != strategy.Primitive(reflect.TypeFor[int]()) {
		t.Fatalf("Primitive strategy broken: got %v", got)
	}
	seq := res.ResolveType(reflect.TypeFor[[]userType](), cfg)
	if seq == nil || seq.Name() != "sequence<user>" || seq.Elem() != u {
		t.Fatalf("Container strategy broken: got %v", seq)
	}
	if got := res.ResolveType(reflect.TypeFor[struct{ X int }](), cfg); got != nil {
		t.Fatalf("unregistered struct must not resolve, got %v", got)
	}
}

// TestBuildResolver_Concurrency_Smoke hammers the resolver in parallel to ensure
// it is safe to call Resolve/ResolveType concurrently after being built.
func TestBuildResolver_Concurrency_Smoke(t *testing.T) {
	b := builder.New()
	cfg := config.DefaultConfig()
	reg := b.BuildRegistry(cfg, nil)
	_ = reg.Register(reflect.TypeFor[userType](), desc("userType", reflect.TypeFor[userType]()))
	res := b.BuildResolver(cfg, reg, nil)

	types := []reflect.Type{
		reflect.TypeFor[userType](),
		reflect.TypeFor[hotType](),
		reflect.TypeFor[[]userType](),
		reflect.TypeFor[[2]float64](),
		reflect.TypeFor[uint16](),
	}

	workers := runtime.GOMAXPROCS(0) * 4
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func(id int) {
			defer wg.Done()
			for i := 0; i < 2000; i++ {
				tt := types[(i+id)%len(types)]
				if res.ResolveType(tt, cfg) == nil {
					t.Errorf("ResolveType(%v) = nil", tt)
					return
				}
				_ = res.Resolve(hotType{}, cfg)
			}
		}(w)
	}
	wg.Wait()
}

// Compile-time check: builder.New() must satisfy apis.Builder.
var _ apis.Builder = builder.New()
