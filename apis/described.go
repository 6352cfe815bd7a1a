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

// Described augments a reflected type with human-oriented metadata.
//
// # Overview
//
// Described is an optional, type-level contract. Diagnostics such as
// rtti.Dump and the inspector show the description next to the type's
// canonical name. It describes the *kind* of value, not any particular
// instance.
//
// # Usage
//
//	func (CameraComponent) TypeDescription() string { return "fly-through camera" }
//
// # Contract
//
//   - TypeDescription is called on a zero value (or a nil pointer for
//     pointer receivers); it MUST NOT depend on the receiver's state.
//   - It SHOULD be inexpensive and return a short, single-sentence string.
//   - It MUST be safe for concurrent use.
type Described interface {
	// TypeDescription returns a human-readable description of the type.
	TypeDescription() string
}
