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

package apis

import "dirpx.dev/rtti/typeinfo"

// Reflected is implemented by user types that expose their own descriptor.
//
// It is the zero-lookup fast path of resolution: when a type implements
// Reflected and returns a descriptor of exactly that type, no other tier is
// consulted. The method is called on zero values and nil pointers, so it
// must return a package-level descriptor without touching the receiver:
//
//	var fooType = rtti.MustRegister[Foo]("Foo", reflectFoo)
//
//	func (*Foo) ReflectedType() *typeinfo.Type { return fooType }
//
// A descriptor whose Go type differs from the receiver's (for example one
// promoted from an embedded parent) is ignored.
type Reflected interface {
	// ReflectedType returns the descriptor of the receiver's type, or nil
	// while the descriptor is still being registered.
	ReflectedType() *typeinfo.Type
}
