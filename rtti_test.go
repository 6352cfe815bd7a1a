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

package rtti_test

import (
	"bytes"
	"math"
	"reflect"
	"sync/atomic"
	"testing"
	"unsafe"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"dirpx.dev/rtti"
	"dirpx.dev/rtti/config"
	"dirpx.dev/rtti/registry"
	"dirpx.dev/rtti/typeinfo"
)

// Local test types.

type Foo struct {
	A, B, C      int
	MyCollection []int
}

var drops atomic.Int64

func (f *Foo) Destroy() { drops.Add(1) }

func (f *Foo) Sum() int { return f.A + f.B + f.C }

type Bar struct {
	Foo
	X int
}

func (Bar) TypeDescription() string { return "Foo with an x" }

type Baz struct {
	Bar
	Data   string
	X0     float64 `rtti:"x0"`
	Opaque chan int
	Skip   int `rtti:"-"`
	hidden int
}

type Adder struct{ A int }

func (a *Adder) Add(x int) int { a.A += x; return a.A }

func (a *Adder) Reset() { a.A = 0 }

func (a *Adder) Scale(k, b int) int { return a.A*k + b }

func (Adder) ReflectedType() *typeinfo.Type { return adderType }

type Camera struct {
	fov    float32
	aspect float32
}

type unregistered struct{}

var (
	fooType = rtti.MustRegister("Foo", func(tb *rtti.TypeBuilder[Foo]) {
		rtti.Field(tb, "a", func(f *Foo) *int { return &f.A })
		rtti.Field(tb, "b", func(f *Foo) *int { return &f.B })
		rtti.Field(tb, "c", func(f *Foo) *int { return &f.C })
		rtti.Field(tb, "myCollection", func(f *Foo) *[]int { return &f.MyCollection })
		rtti.Method0(tb, "sum", (*Foo).Sum)
	})
	barType = rtti.MustRegister("Bar", func(tb *rtti.TypeBuilder[Bar]) {
		rtti.Parent(tb, func(b *Bar) *Foo { return &b.Foo })
		rtti.Field(tb, "x", func(b *Bar) *int { return &b.X })
	})
	bazType = rtti.MustRegister("Baz", func(tb *rtti.TypeBuilder[Baz]) {
		rtti.Parent(tb, func(b *Baz) *Bar { return &b.Bar })
		rtti.Fields(tb)
	})
	adderType = rtti.MustRegister("Adder", func(tb *rtti.TypeBuilder[Adder]) {
		rtti.Field(tb, "a", func(a *Adder) *int { return &a.A })
		rtti.Method1(tb, "add", (*Adder).Add)
		rtti.Method2(tb, "scale", (*Adder).Scale)
		rtti.Action0(tb, "reset", (*Adder).Reset)
	})
	cameraType = rtti.MustRegister("Camera", func(tb *rtti.TypeBuilder[Camera]) {
		tb.Construct(func(c *Camera) { c.fov, c.aspect = 60, 1.5 })
		rtti.Range(tb, "fov",
			func(c *Camera) float32 { return c.fov },
			func(c *Camera, v float32) { c.fov = v },
			0.01, 180)
		rtti.Accessor(tb, "aspect", func(c *Camera) float32 { return c.aspect }, nil)
	})
)

// resetState reopens the registration window with defaults after t.
func resetState(t *testing.T) {
	t.Helper()
	t.Cleanup(func() { rtti.Init() })
}

func TestInheritance(t *testing.T) {
	cases := []struct {
		name        string
		t, other    *typeinfo.Type
		wantInherit bool
	}{
		{"bar_from_foo", barType, fooType, true},
		{"baz_from_foo", bazType, fooType, true},
		{"baz_from_bar", bazType, barType, true},
		{"self", fooType, fooType, false},
		{"reverse", fooType, barType, false},
		{"unrelated", adderType, fooType, false},
		{"nil", fooType, nil, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.t.InheritsFrom(tc.other); got != tc.wantInherit {
				t.Fatalf("%v.InheritsFrom(%v) = %v, want %v", tc.t, tc.other, got, tc.wantInherit)
			}
		})
	}

	if barType.Parent() != fooType {
		t.Fatalf("Bar parent = %v, want Foo", barType.Parent())
	}
	found := false
	for _, c := range fooType.Children() {
		if c == barType {
			found = true
		}
	}
	if !found {
		t.Fatalf("Foo children = %v, want Bar among them", fooType.Children())
	}
}

func TestFindProperty(t *testing.T) {
	cases := []struct {
		on   *typeinfo.Type
		name string
		want *typeinfo.Type
	}{
		{fooType, "a", rtti.Of[int]()},
		{barType, "a", rtti.Of[int]()},
		{barType, "myCollection", rtti.Of[[]int]()},
		{bazType, "x", rtti.Of[int]()},
		{bazType, "data", rtti.Of[string]()},
		{bazType, "x0", rtti.Of[float64]()},
		{cameraType, "fov", rtti.Of[float32]()},
	}
	for _, tc := range cases {
		p := tc.on.FindProperty(tc.name)
		if p == nil {
			t.Fatalf("%v.FindProperty(%q) = nil", tc.on, tc.name)
		}
		if p.Type() != tc.want {
			t.Fatalf("%v.%s type = %v, want %v", tc.on, tc.name, p.Type(), tc.want)
		}
	}

	for _, name := range []string{"nonexistent", "opaque", "skip", "hidden", "Data"} {
		if p := bazType.FindProperty(name); p != nil {
			t.Fatalf("Baz.FindProperty(%q) = %v, want nil", name, p.Name())
		}
	}
}

func TestPropertyRoundTrip(t *testing.T) {
	o := rtti.New[Baz]()
	defer o.Release()

	if !rtti.SetProperty(o, "a", 42) {
		t.Fatal("SetProperty(a) failed")
	}
	if v, ok := rtti.GetProperty[int](o, "a"); !ok || v != 42 {
		t.Fatalf("GetProperty(a) = (%d,%v), want (42,true)", v, ok)
	}
	if got := rtti.Get[Baz](o).Bar.Foo.A; got != 42 {
		t.Fatalf("embedded Foo.A = %d, want 42", got)
	}

	if !rtti.SetProperty(o, "data", "hello") {
		t.Fatal("SetProperty(data) failed")
	}
	if v, _ := rtti.GetProperty[string](o, "data"); v != "hello" {
		t.Fatalf("data = %q", v)
	}

	coll := []int{1, 2, 3}
	if !rtti.SetProperty(o, "myCollection", coll) {
		t.Fatal("SetProperty(myCollection) failed")
	}
	if v, _ := rtti.GetProperty[[]int](o, "myCollection"); !reflect.DeepEqual(v, coll) {
		t.Fatalf("myCollection = %v", v)
	}

	// Wrong declared type, missing property.
	if rtti.SetProperty[int64](o, "a", 1) {
		t.Fatal("SetProperty[int64] on int property must fail")
	}
	if _, ok := rtti.GetProperty[string](o, "a"); ok {
		t.Fatal("GetProperty[string] on int property must fail")
	}
	if rtti.SetProperty(o, "nope", 1) {
		t.Fatal("SetProperty on missing property must fail")
	}
	if _, ok := rtti.GetProperty[chan int](o, "a"); ok {
		t.Fatal("GetProperty with unresolvable type must fail")
	}
}

func TestAccessorProperties(t *testing.T) {
	cam := rtti.New[Camera]()
	defer cam.Release()

	if v, ok := rtti.GetProperty[float32](cam, "fov"); !ok || v != 60 {
		t.Fatalf("constructed fov = (%v,%v), want (60,true)", v, ok)
	}
	if !rtti.SetProperty[float32](cam, "fov", 90) {
		t.Fatal("fov 90 rejected")
	}
	nan := float32(math.NaN())
	for _, bad := range []float32{0, 180.5, -1, nan, float32(math.Inf(1))} {
		if rtti.SetProperty(cam, "fov", bad) {
			t.Fatalf("fov %v accepted", bad)
		}
	}
	if v, _ := rtti.GetProperty[float32](cam, "fov"); v != 90 {
		t.Fatalf("fov = %v, want 90", v)
	}

	p := cameraType.FindProperty("aspect")
	if !p.IsAccessor() || !p.ReadOnly() {
		t.Fatal("aspect must be a read-only accessor")
	}
	if rtti.SetProperty[float32](cam, "aspect", 2) {
		t.Fatal("read-only property accepted a write")
	}
	if v, _ := rtti.GetProperty[float32](cam, "aspect"); v != 1.5 {
		t.Fatalf("aspect = %v, want 1.5", v)
	}
}

func TestGet_ExactType(t *testing.T) {
	o := rtti.New[Bar]()
	defer o.Release()

	if rtti.Get[Bar](o) == nil {
		t.Fatal("Get[Bar] on Bar = nil")
	}
	if rtti.Get[Foo](o) != nil {
		t.Fatal("Get[Foo] on Bar must be nil (parent)")
	}
	if rtti.Get[Baz](o) != nil {
		t.Fatal("Get[Baz] on Bar must be nil (child)")
	}
	if rtti.Get[int](o) != nil {
		t.Fatal("Get[int] on Bar must be nil")
	}
	if rtti.Get[chan int](o) != nil {
		t.Fatal("Get of an unresolvable type must be nil")
	}
	var none *typeinfo.Object
	if rtti.Get[Bar](none) != nil || rtti.Get[Bar](nil) != nil {
		t.Fatal("Get on nil handles must be nil")
	}
}

func TestContainerIdentity(t *testing.T) {
	a := rtti.Of[[]int]()
	b := rtti.Of[[]int]()
	if a != b {
		t.Fatal("sequence<int> resolved to two descriptors")
	}
	if a.Name() != "sequence<int>" || !a.IsContainer() || a.Elem() != rtti.Of[int]() {
		t.Fatalf("sequence<int> = %q elem=%v", a.Name(), a.Elem())
	}
	if a.Size() != unsafe.Sizeof([]int(nil)) {
		t.Fatalf("Size = %d", a.Size())
	}
	if got := rtti.Of[[]Foo]().Name(); got != "sequence<Foo>" {
		t.Fatalf("sequence of Foo = %q", got)
	}
	if got := rtti.Of[[3]float32]().Name(); got != "array<float32,3>" {
		t.Fatalf("array of float32 = %q", got)
	}
}

func TestOwnership(t *testing.T) {
	o := rtti.NewCopy(5)
	if got := rtti.Get[int](o); got == nil || *got != 5 {
		t.Fatalf("owned int = %v, want 5", got)
	}
	o.Release()
	if o.Valid() || rtti.Get[int](o) != nil {
		t.Fatal("released object must be unusable")
	}

	x := 7
	r := rtti.Wrap(&x)
	if got := rtti.Get[int](r); got == nil || *got != 7 {
		t.Fatalf("wrapped int = %v, want 7", got)
	}
	r = nil
	if x != 7 {
		t.Fatalf("external storage changed: %d", x)
	}
	if rtti.Wrap[int](nil) != nil {
		t.Fatal("Wrap(nil) must be nil")
	}

	before := drops.Load()
	f := rtti.New(func(f *Foo) { f.A = 1 })
	borrowed := f.Borrow()
	if v, _ := rtti.GetProperty[int](borrowed, "a"); v != 1 {
		t.Fatalf("borrowed a = %d", v)
	}
	f.Release()
	f.Release()
	if got := drops.Load() - before; got != 1 {
		t.Fatalf("Destroy ran %d times, want 1", got)
	}
	if borrowed.Valid() {
		t.Fatal("borrow must be invalid once the owner is released")
	}
	if _, ok := rtti.GetProperty[int](borrowed, "a"); ok {
		t.Fatal("GetProperty through a dangling borrow must fail")
	}

	before = drops.Load()
	ext := Foo{A: 3}
	_ = rtti.Wrap(&ext)
	if drops.Load() != before || ext.A != 3 {
		t.Fatal("a reference must never drop its target")
	}
}

func TestMove(t *testing.T) {
	before := drops.Load()
	o := rtti.New[Foo]()
	ref := o.Borrow()
	n := o.Move()
	if o.Valid() || !n.Valid() {
		t.Fatal("Move must transfer ownership")
	}
	if o.Move() != nil {
		t.Fatal("moved-from object cannot move again")
	}
	o.Release()
	if drops.Load() != before {
		t.Fatal("releasing a moved-from object must not drop")
	}
	if !ref.Valid() {
		t.Fatal("borrow must follow the storage to the new owner")
	}
	n.Release()
	if drops.Load()-before != 1 || ref.Valid() {
		t.Fatal("new owner must drop exactly once")
	}
}

func TestInvoke_Adder(t *testing.T) {
	a := rtti.New[Adder]()
	defer a.Release()

	res, ok := rtti.Call(a, "add", 15)
	if !ok || res == nil {
		t.Fatal("add(15) failed")
	}
	defer res.Release()
	if got := rtti.Get[int](res); got == nil || *got != 15 {
		t.Fatalf("add(15) returned %v, want 15", got)
	}
	if got := rtti.Get[Adder](a).A; got != 15 {
		t.Fatalf("a = %d, want 15", got)
	}

	s := rtti.NewCopy("not-an-int")
	defer s.Release()
	if out, ok := rtti.Invoke(a, "add", s); ok || out != nil {
		t.Fatal(`add("not-an-int") must fail`)
	}
	if got := rtti.Get[Adder](a).A; got != 15 {
		t.Fatalf("a changed on failed call: %d", got)
	}

	if out, ok := rtti.Call(a, "scale", 2, 1); !ok || *rtti.Get[int](out) != 31 {
		t.Fatal("scale(2, 1) != 31")
	} else {
		out.Release()
	}
	if _, ok := rtti.Call(a, "add"); ok {
		t.Fatal("arity mismatch must fail")
	}
	if _, ok := rtti.Call(a, "missing"); ok {
		t.Fatal("unknown method must fail")
	}

	out, ok := rtti.Call(a, "reset")
	if !ok || out != nil {
		t.Fatalf("void call = (%v,%v), want (nil,true)", out, ok)
	}
	if got := rtti.Get[Adder](a).A; got != 0 {
		t.Fatalf("a after reset = %d", got)
	}
}

func TestInvoke_Inherited(t *testing.T) {
	b := rtti.New(func(b *Bar) { b.A, b.B, b.C, b.X = 1, 2, 3, 100 })
	defer b.Release()

	out, ok := rtti.Invoke(b, "sum")
	if !ok {
		t.Fatal("sum on Bar failed")
	}
	defer out.Release()
	if got := *rtti.Get[int](out); got != 6 {
		t.Fatalf("sum = %d, want 6", got)
	}

	m := fooType.FindMethod("sum")
	a := rtti.New[Adder]()
	defer a.Release()
	if _, ok := m.Invoke(a); ok {
		t.Fatal("unrelated receiver must fail")
	}
}

func TestResolution(t *testing.T) {
	if rtti.TypeOf(Adder{}) != adderType || rtti.TypeOf(&Adder{}) != adderType {
		t.Fatal("self-describing type not resolved")
	}
	if rtti.TypeOf(&Bar{}) != barType {
		t.Fatal("registered pointer not resolved")
	}
	if rtti.TypeOf(unregistered{}) != nil {
		t.Fatal("unregistered type resolved")
	}
	if _, err := rtti.Resolve[unregistered](); !errors.Is(err, rtti.ErrUnresolvable) {
		t.Fatalf("Resolve err = %v, want ErrUnresolvable", err)
	}

	defer func() {
		r := recover()
		err, ok := r.(error)
		if !ok || !errors.Is(err, rtti.ErrUnresolvable) {
			t.Fatalf("Of panic = %v, want ErrUnresolvable", r)
		}
	}()
	rtti.Of[unregistered]()
}

func TestPrimitiveBootstrap(t *testing.T) {
	resetState(t)
	rtti.Init()

	d, ok := rtti.Lookup(reflect.TypeFor[int]())
	if !ok || !d.IsPrimitive() {
		t.Fatalf("Lookup(int) = (%v,%v)", d, ok)
	}
	if d.Size() != unsafe.Sizeof(int(0)) {
		t.Fatalf("int size = %d, want %d", d.Size(), unsafe.Sizeof(int(0)))
	}
	if d.Parent() != nil || len(d.Properties()) != 0 {
		t.Fatal("primitive must have no parent or properties")
	}
	if byName, ok := rtti.LookupName("int"); !ok || byName != d {
		t.Fatal("LookupName(int) mismatch")
	}
	if d != rtti.Of[int]() {
		t.Fatal("bootstrapped and resolved int differ")
	}

	// Registrations survive re-initialization.
	if got, ok := rtti.Lookup(reflect.TypeFor[Bar]()); !ok || got != barType {
		t.Fatal("Init lost user registrations")
	}
}

type sealedOnly struct{}

func TestSeal(t *testing.T) {
	resetState(t)
	rtti.Seal()
	if !rtti.IsSealed() {
		t.Fatal("IsSealed = false after Seal")
	}
	if _, err := rtti.Register[sealedOnly]("sealedOnly", nil); !errors.Is(err, rtti.ErrSealed) {
		t.Fatalf("Register after Seal err = %v, want ErrSealed", err)
	}

	// Reads keep working.
	if rtti.Of[Foo]() != fooType {
		t.Fatal("lookup failed after Seal")
	}

	rtti.Init()
	if rtti.IsSealed() {
		t.Fatal("Init must reopen the window")
	}
}

type dupName struct{}

type overwritten struct{ N int }

func TestDuplicateRegistration(t *testing.T) {
	if _, err := rtti.Register[Foo]("Foo2", nil); !errors.Is(err, registry.ErrDuplicateType) {
		t.Fatalf("duplicate type err = %v", err)
	}
	if _, err := rtti.Register[dupName]("Foo", nil); !errors.Is(err, registry.ErrDuplicateName) {
		t.Fatalf("duplicate name err = %v", err)
	}
	if rtti.Of[Foo]() != fooType {
		t.Fatal("failed registration replaced the descriptor")
	}

	func() {
		defer func() {
			if recover() == nil {
				t.Fatal("MustRegister must panic on duplicates")
			}
		}()
		rtti.MustRegister[Foo]("Foo", nil)
	}()
}

func TestOverwrite(t *testing.T) {
	resetState(t)
	rtti.Init(config.WithAllowOverwrite(true))

	first, err := rtti.Register[overwritten]("overwritten", nil)
	if err != nil {
		t.Fatalf("first Register: %v", err)
	}
	second, err := rtti.Register("overwritten", func(tb *rtti.TypeBuilder[overwritten]) {
		rtti.Fields(tb)
	})
	if err != nil {
		t.Fatalf("second Register: %v", err)
	}
	if first == second || rtti.Of[overwritten]() != second {
		t.Fatal("last write must win")
	}
	if second.FindProperty("n") == nil {
		t.Fatal("Fields did not declare n")
	}
}

type (
	mode   uint8
	labels []string
	holder struct {
		M mode
		L labels
	}
)

func TestRegister_HolderFirst(t *testing.T) {
	h, err := rtti.Register("holder", func(tb *rtti.TypeBuilder[holder]) {
		rtti.Fields(tb)
	})
	if err != nil {
		t.Fatalf("Register(holder): %v", err)
	}
	synthesized := h.FindProperty("m").Type()
	if !synthesized.IsPrimitive() {
		t.Fatalf("field m bound to %v, want synthesized primitive", synthesized)
	}

	m, err := rtti.Register[mode]("mode", nil)
	if err != nil {
		t.Fatalf("Register(mode) after holder: %v", err)
	}
	l, err := rtti.Register[labels]("labels", nil)
	if err != nil {
		t.Fatalf("Register(labels) after holder: %v", err)
	}
	if !m.IsReflected() || synthesized.IsReflected() {
		t.Fatal("only explicit registrations carry the reflected flag")
	}
	if rtti.Of[mode]() != m || rtti.Of[labels]() != l {
		t.Fatal("explicit descriptors must win resolution")
	}
	if got, ok := rtti.LookupName("mode"); !ok || got != m {
		t.Fatalf("LookupName(mode) = (%v,%v)", got, ok)
	}
	// bindings made before the explicit registration keep their descriptor
	if h.FindProperty("m").Type() != synthesized {
		t.Fatal("existing field binding changed")
	}

	if _, err := rtti.Register[mode]("mode2", nil); !errors.Is(err, registry.ErrDuplicateType) {
		t.Fatalf("second explicit registration err = %v", err)
	}
}

func TestRegister_Errors(t *testing.T) {
	type notStruct int
	_, err := rtti.Register("notStruct", func(tb *rtti.TypeBuilder[notStruct]) { rtti.Fields(tb) })
	if !errors.Is(err, rtti.ErrNotStruct) {
		t.Fatalf("Fields on int err = %v", err)
	}

	type badField struct{ C chan int }
	_, err = rtti.Register("badField", func(tb *rtti.TypeBuilder[badField]) {
		rtti.Field(tb, "c", func(b *badField) *chan int { return &b.C })
	})
	if !errors.Is(err, rtti.ErrUnresolvable) {
		t.Fatalf("unresolvable field err = %v", err)
	}

	type outside struct{ N int }
	var elsewhere int
	_, err = rtti.Register("outside", func(tb *rtti.TypeBuilder[outside]) {
		rtti.Field(tb, "n", func(*outside) *int { return &elsewhere })
	})
	if !errors.Is(err, typeinfo.ErrLayout) {
		t.Fatalf("field outside layout err = %v", err)
	}

	type twice struct{ N int }
	_, err = rtti.Register("twice", func(tb *rtti.TypeBuilder[twice]) {
		rtti.Field(tb, "n", func(v *twice) *int { return &v.N })
		rtti.Field(tb, "n", func(v *twice) *int { return &v.N })
	})
	if !errors.Is(err, typeinfo.ErrDuplicateProperty) {
		t.Fatalf("duplicate property err = %v", err)
	}
	if _, ok := rtti.LookupName("twice"); ok {
		t.Fatal("failed registration must not be published")
	}
}

func TestTypesAndDump(t *testing.T) {
	types := rtti.Types()
	for i := 1; i < len(types); i++ {
		if types[i-1].Name() > types[i].Name() {
			t.Fatalf("Types not sorted: %q > %q", types[i-1].Name(), types[i].Name())
		}
	}

	var seen int
	rtti.ForEachType(func(*typeinfo.Type) bool {
		seen++
		return seen < 2
	})
	if seen != 2 {
		t.Fatalf("ForEachType visited %d, want stop after 2", seen)
	}

	var buf bytes.Buffer
	if err := rtti.Dump(&buf); err != nil {
		t.Fatalf("Dump: %v", err)
	}
	var docs []map[string]any
	if err := yaml.Unmarshal(buf.Bytes(), &docs); err != nil {
		t.Fatalf("Dump is not YAML: %v", err)
	}
	var bar map[string]any
	for _, d := range docs {
		if d["name"] == "Bar" {
			bar = d
		}
	}
	if bar == nil || bar["parent"] != "Foo" || bar["description"] != "Foo with an x" {
		t.Fatalf("Bar entry = %v", bar)
	}
	if got := rtti.Description(fooType); got != "" {
		t.Fatalf("Foo description = %q, want none", got)
	}
}

func TestShutdown_ReportsLeaks(t *testing.T) {
	saved := rtti.Registry().Entries()
	t.Cleanup(func() {
		rtti.Init()
		for _, e := range saved {
			if e.Desc.IsPrimitive() || e.Desc.IsContainer() {
				continue
			}
			_ = rtti.Registry().Register(e.Type, e.Desc)
		}
	})

	rtti.Init(config.WithTrackObjects(true))
	if rtti.Tracker() == nil {
		t.Fatal("tracker not installed")
	}
	leaked := rtti.New[Foo]()
	rtti.New[Foo]().Release()

	leaks := rtti.Shutdown()
	if len(leaks) != 1 || leaks[0].ID != leaked.ID() || leaks[0].Type != "Foo" {
		t.Fatalf("leaks = %v, want only %s", leaks, leaked)
	}
	if !rtti.IsSealed() {
		t.Fatal("Shutdown must seal")
	}
	if _, ok := rtti.Lookup(reflect.TypeFor[Foo]()); ok {
		t.Fatal("Shutdown must drop registrations")
	}
	leaked.Release()
}
