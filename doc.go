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

// Package rtti provides process-wide runtime type information: type
// descriptors with single inheritance, named properties and invocable
// methods, plus type-erased handles that carry a value together with its
// descriptor.
//
// rtti is for code that only learns at run time which type it is dealing
// with: editors and inspectors, serializers, script bindings, component
// systems. Given a descriptor and a handle, such code can read and write
// properties by name, call methods with checked arguments and walk the
// inheritance chain, without knowing the Go type statically.
//
// # Design
//
// The core of rtti is a read-mostly global snapshot (state). The snapshot
// holds:
//
//   - Config: rules that control bootstrap and naming (whether builtin
//     primitives are registered eagerly, how deep pointers and containers
//     are unwrapped, whether duplicate registration is an error, whether
//     live objects are tracked, how sequence types are named).
//
//   - Registry: a process-wide mapping from Go types to descriptors. User
//     types are registered explicitly; primitives and containers are
//     recorded as they are resolved.
//
//   - Resolver: answers "what is the descriptor of this value or type?".
//     It tries strategies in priority order:
//     1. If T or *T implements apis.Reflected, use ReflectedType().
//     2. If the type is found in the Registry, use that descriptor.
//     3. If the type is a bool, number or string, use the shared
//     primitive descriptor.
//     4. If the type is a slice or array of a resolvable element,
//     synthesize (once) a container descriptor such as "sequence<int>".
//
//   - Builder: a pluggable factory that constructs Registry and Resolver
//     instances for a Config and migrates registrations between them.
//
// All of these live inside a single immutable struct. The package holds an
// atomic pointer to the current state. Readers load that pointer and never
// mutate it; writers build a brand-new state and atomically swap it in.
//
// # Registering types
//
// Types are described once, usually in package-level variables:
//
//	var fooType = rtti.MustRegister("Foo", func(tb *rtti.TypeBuilder[Foo]) {
//		rtti.Field(tb, "a", func(f *Foo) *int { return &f.A })
//		rtti.Method1(tb, "add", (*Foo).Add)
//	})
//
//	var barType = rtti.MustRegister("Bar", func(tb *rtti.TypeBuilder[Bar]) {
//		rtti.Parent(tb, func(b *Bar) *Foo { return &b.Foo })
//		rtti.Fields(tb)
//	})
//
// A parent is an embedded struct; its offset is what lets a Bar handle be
// used wherever Foo members are looked up. Fields declares every exported
// field with a snake_case name; Accessor and Range declare properties that
// go through functions, Range refusing values outside its bounds.
//
// A type may describe itself by implementing apis.Reflected:
//
//	func (Foo) ReflectedType() *typeinfo.Type { return fooType }
//
// # Handles
//
// A *typeinfo.Object owns its storage: New, NewCopy, Type.New and
// non-void method results return one, and Release runs the type's drop
// logic exactly once. Objects move with Move and lend *typeinfo.Ref
// borrows that stop resolving once the owner is released. Wrap makes a Ref
// over storage the caller owns; nothing done through it ever frees that
// storage.
//
//	o := rtti.New[Bar]()
//	defer o.Release()
//	rtti.SetProperty(o, "a", 15)
//	v, _ := rtti.GetProperty[int](o, "a")
//	out, ok := rtti.Call(o, "add", 27)
//
// Lookups and invocation never panic on type mismatches or missing
// members; they report false or nil. Of panics only when asked for a type
// the system cannot describe at all, which is a programming error.
//
// # Lifecycle
//
// The package init opens the registration window with the default
// configuration. Init rebuilds the state (carrying registrations over),
// Seal closes the window so the registry only changes through resolution
// of primitives and containers, and Shutdown reports unreleased objects
// and drops everything.
//
// # Concurrency model
//
// Reads (Of, TypeOf, Lookup, handle operations) are lock-free: they load
// the current state atomically. Registration and reconfiguration take a
// short build mutex. Synthesized primitive and container descriptors are
// memoized with sync.Map so every goroutine sees the same instance.
package rtti
