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

package registry

import (
	"reflect"
	"sync"

	"github.com/pkg/errors"

	"dirpx.dev/rtti/apis"
	"dirpx.dev/rtti/typeinfo"
)

var (
	// ErrNilType is returned when a nil reflect.Type is provided.
	ErrNilType = errors.New("rtti(registry): nil reflect.Type provided")
	// ErrNilDescriptor is returned when a nil descriptor is provided.
	ErrNilDescriptor = errors.New("rtti(registry): nil descriptor provided")
	// ErrTypeMismatch is returned when a descriptor describes a different Go
	// type (or size) than the key it is registered under.
	ErrTypeMismatch = errors.New("rtti(registry): descriptor does not describe the registered type")
	// ErrDuplicateType indicates an attempt to register a second descriptor
	// for an already registered type.
	ErrDuplicateType = errors.New("rtti(registry): duplicate type registration")
	// ErrDuplicateName indicates an attempt to register a second type under
	// an already used display name.
	ErrDuplicateName = errors.New("rtti(registry): duplicate type name")
)

// New constructs a Registry. Only AllowOverwrite is used here.
func New(cfg apis.Config) apis.Registry {
	return &registry{overwrite: cfg.AllowOverwrite}
}

// registry is a simple Registry implementation backed by sync.Map.
type registry struct {
	// overwrite enables last-write-wins registration.
	overwrite bool
	// mu guards write-side consistency and counter
	mu sync.Mutex
	// m maps reflect.Type to its descriptor.
	m sync.Map // map[reflect.Type]*typeinfo.Type
	// names maps display names to descriptors.
	names sync.Map // map[string]*typeinfo.Type
	// count tracks the number of registered entries.
	count int
}

// Register associates t with desc.
// It is idempotent for the same (type, descriptor) pair. An explicit
// descriptor replaces one synthesized for a named primitive or container.
func (r *registry) Register(t reflect.Type, desc *typeinfo.Type) error {
	// Validate inputs early.
	if t == nil {
		return ErrNilType
	}
	if desc == nil {
		return ErrNilDescriptor
	}
	if desc.GoType() != t || desc.Size() != t.Size() {
		return errors.Wrapf(ErrTypeMismatch, "%s describes %v (%d bytes), key is %v (%d bytes)",
			desc.Name(), desc.GoType(), desc.Size(), t, t.Size())
	}

	// Fast read path: idempotency check without locking.
	if old, ok := r.m.Load(t); ok && old.(*typeinfo.Type) == desc {
		return nil
	}

	// Write path: guard with a mutex to keep counter and name index consistent.
	r.mu.Lock()
	defer r.mu.Unlock()

	// Re-check under lock in case another goroutine stored meanwhile.
	old, exists := r.m.Load(t)
	if exists {
		prev := old.(*typeinfo.Type)
		if prev == desc {
			return nil
		}
		if !r.overwrite && !supersedes(t, prev, desc) {
			return errors.Wrapf(ErrDuplicateType, "%v already registered as %s", t, prev.Name())
		}
	}
	if other, ok := r.names.Load(desc.Name()); ok && other.(*typeinfo.Type).GoType() != t && !r.overwrite {
		return errors.Wrapf(ErrDuplicateName, "%q already names %v", desc.Name(), other.(*typeinfo.Type).GoType())
	}

	if exists {
		if prev := old.(*typeinfo.Type); prev.Name() != desc.Name() {
			r.names.CompareAndDelete(prev.Name(), prev)
		}
	} else {
		r.count++
	}
	r.m.Store(t, desc)
	r.names.Store(desc.Name(), desc)
	return nil
}

// supersedes reports whether desc may replace prev for a user-defined named
// type: prev was synthesized by resolution and desc was declared explicitly.
// Builtin types keep their bootstrap descriptors.
func supersedes(t reflect.Type, prev, desc *typeinfo.Type) bool {
	if t.PkgPath() == "" {
		return false
	}
	synthesized := func(d *typeinfo.Type) bool { return d.IsPrimitive() || d.IsContainer() }
	return synthesized(prev) && !synthesized(desc)
}

// Lookup returns the descriptor registered for t.
func (r *registry) Lookup(t reflect.Type) (*typeinfo.Type, bool) {
	if t == nil {
		return nil, false
	}
	if v, ok := r.m.Load(t); ok {
		return v.(*typeinfo.Type), true
	}
	return nil, false
}

// LookupName returns the descriptor registered under name.
func (r *registry) LookupName(name string) (*typeinfo.Type, bool) {
	if v, ok := r.names.Load(name); ok {
		return v.(*typeinfo.Type), true
	}
	return nil, false
}

// Entries returns a snapshot for diagnostics/docs (order is unspecified).
func (r *registry) Entries() []apis.Entry {
	entries := make([]apis.Entry, 0, r.Count())
	r.m.Range(func(key, value any) bool {
		entries = append(entries, apis.Entry{
			Type: key.(reflect.Type),
			Desc: value.(*typeinfo.Type),
		})
		return true
	})
	return entries
}

// Count returns the number of registered entries.
func (r *registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}

// Reset clears all registered entries.
func (r *registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.m.Clear()
	r.names.Clear()
	r.count = 0
}
