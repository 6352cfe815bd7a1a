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

// Package sample registers a small set of reflected types used by the
// inspector command and by tests: a three-level hierarchy, a
// self-describing accumulator and a few scene components.
package sample

import (
	"dirpx.dev/rtti"
	"dirpx.dev/rtti/typeinfo"
)

// Foo is the root of the sample hierarchy.
type Foo struct {
	A, B, C      int
	MyCollection []int
}

// Add adds x to A, B and C.
func (f *Foo) Add(x int) {
	f.A += x
	f.B += x
	f.C += x
}

// Sum returns A+B+C.
func (f *Foo) Sum() int { return f.A + f.B + f.C }

// Destroy empties the collection.
func (f *Foo) Destroy() { f.MyCollection = nil }

// Bar derives from Foo.
type Bar struct {
	Foo
	X int
}

// CustomTypeNonReflected is deliberately unknown to rtti.
type CustomTypeNonReflected struct {
	A int
}

// MyOtherCrazyData derives from Bar. Its Unreflected field is skipped by
// automatic field registration because its type cannot be resolved.
type MyOtherCrazyData struct {
	Bar
	Data        string
	Unreflected CustomTypeNonReflected
	X0          float64 `rtti:"x0"`
}

// Adder accumulates into A and describes itself.
type Adder struct {
	A int
}

// Add adds x to A and returns the new total.
func (a *Adder) Add(x int) int {
	a.A += x
	return a.A
}

// AddToA adds b to A.
func (a *Adder) AddToA(b int) { a.A += b }

// TypeDescription implements apis.Described.
func (Adder) TypeDescription() string { return "integer accumulator" }

// ReflectedType implements apis.Reflected.
func (Adder) ReflectedType() *typeinfo.Type { return AdderType }

var (
	// FooType describes Foo.
	FooType = rtti.MustRegister("Foo", func(tb *rtti.TypeBuilder[Foo]) {
		rtti.Field(tb, "a", func(f *Foo) *int { return &f.A })
		rtti.Field(tb, "b", func(f *Foo) *int { return &f.B })
		rtti.Field(tb, "c", func(f *Foo) *int { return &f.C })
		rtti.Field(tb, "my_collection", func(f *Foo) *[]int { return &f.MyCollection })
		rtti.Action1(tb, "add", (*Foo).Add)
		rtti.Method0(tb, "sum", (*Foo).Sum)
	})

	// BarType describes Bar.
	BarType = rtti.MustRegister("Bar", func(tb *rtti.TypeBuilder[Bar]) {
		rtti.Parent(tb, func(b *Bar) *Foo { return &b.Foo })
		rtti.Field(tb, "x", func(b *Bar) *int { return &b.X })
	})

	// MyOtherCrazyDataType describes MyOtherCrazyData.
	MyOtherCrazyDataType = rtti.MustRegister("MyOtherCrazyData", func(tb *rtti.TypeBuilder[MyOtherCrazyData]) {
		rtti.Parent(tb, func(d *MyOtherCrazyData) *Bar { return &d.Bar })
		rtti.Fields(tb)
	})

	// AdderType describes Adder.
	AdderType = rtti.MustRegister("Adder", func(tb *rtti.TypeBuilder[Adder]) {
		rtti.Field(tb, "a", func(a *Adder) *int { return &a.A })
		rtti.Method1(tb, "add", (*Adder).Add)
		rtti.Action1(tb, "add_to_a", (*Adder).AddToA)
	})
)
