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

import (
	"reflect"

	"dirpx.dev/rtti/typeinfo"
)

// Registry maps Go types to their runtime descriptors.
// Keep it minimal so implementations can be lock-free or sync.Map-backed.
type Registry interface {
	// Register associates t with desc. Re-registering the same descriptor is
	// a no-op; a different descriptor for the same type or name is rejected
	// unless the registry allows overwrites.
	Register(t reflect.Type, desc *typeinfo.Type) error
	// Lookup returns the descriptor registered for t.
	Lookup(t reflect.Type) (desc *typeinfo.Type, ok bool)
	// LookupName returns the descriptor registered under a display name.
	LookupName(name string) (desc *typeinfo.Type, ok bool)
	// Entries returns a snapshot for diagnostics/docs (order is unspecified).
	Entries() []Entry
	// Count returns the number of registered entries.
	Count() int
	// Reset clears all registered entries.
	Reset()
}

// Entry is a single (type, descriptor) association in a Registry snapshot.
type Entry struct {
	// Type is the registered reflect.Type.
	Type reflect.Type
	// Desc is the associated descriptor.
	Desc *typeinfo.Type
}
