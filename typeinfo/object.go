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

package typeinfo

import (
	"fmt"
	"reflect"
	"sync/atomic"
	"unsafe"

	"github.com/google/uuid"
)

// Handle is the read side shared by owning and borrowing handles.
type Handle interface {
	// Type returns the runtime descriptor of the referenced value.
	Type() *Type
	// Pointer returns the value's storage, or nil once the handle is no
	// longer usable.
	Pointer() unsafe.Pointer
}

// Tracker observes the lifetime of owned objects.
type Tracker interface {
	Acquired(o *Object)
	Released(o *Object)
}

type trackerBox struct{ t Tracker }

var tracker atomic.Pointer[trackerBox]

// SetTracker installs t as the process-wide object tracker. nil uninstalls.
func SetTracker(t Tracker) {
	if t == nil {
		tracker.Store(nil)
		return
	}
	tracker.Store(&trackerBox{t: t})
}

// lifetime is shared by an owner and the references borrowed from it.
type lifetime struct {
	alive atomic.Bool
}

// noCopy makes go vet's copylocks check flag copies of Object values.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// Object is the owning handle of a value. Exactly one Object owns a given
// storage block; Release runs the type's drop entry point on it exactly once.
// Objects are used through pointers and moved with Move, never copied.
// ptr is written only at creation; done gates every access to it.
type Object struct {
	_    noCopy
	id   uuid.UUID
	typ  *Type
	ptr  unsafe.Pointer
	life *lifetime
	done atomic.Bool
}

// adopt makes a new owner for storage that nothing else owns.
func adopt(t *Type, p unsafe.Pointer) *Object {
	o := &Object{id: uuid.New(), typ: t, ptr: p, life: &lifetime{}}
	o.life.alive.Store(true)
	if b := tracker.Load(); b != nil {
		b.t.Acquired(o)
	}
	return o
}

// ID returns a process-unique identifier of the owner.
func (o *Object) ID() uuid.UUID {
	if o == nil {
		return uuid.Nil
	}
	return o.id
}

// Type returns the descriptor of the owned value.
func (o *Object) Type() *Type {
	if o == nil {
		return nil
	}
	return o.typ
}

// Pointer returns the owned storage, or nil after Release or Move.
func (o *Object) Pointer() unsafe.Pointer {
	if o == nil || o.done.Load() {
		return nil
	}
	return o.ptr
}

// Valid reports whether the object still owns its storage.
func (o *Object) Valid() bool {
	return o != nil && !o.done.Load()
}

// Interface returns a boxed copy of the owned value.
func (o *Object) Interface() any {
	p := o.Pointer()
	if p == nil {
		return nil
	}
	return reflect.NewAt(o.typ.rtype, p).Elem().Interface()
}

// Borrow returns a reference that stays usable until the owner is released.
func (o *Object) Borrow() *Ref {
	if !o.Valid() {
		return nil
	}
	return &Ref{typ: o.typ, ptr: o.ptr, life: o.life}
}

// Move transfers ownership to a new Object and invalidates o.
// Borrowed references follow the storage to the new owner.
func (o *Object) Move() *Object {
	if o == nil || !o.done.CompareAndSwap(false, true) {
		return nil
	}
	n := &Object{id: uuid.New(), typ: o.typ, ptr: o.ptr, life: o.life}
	if b := tracker.Load(); b != nil {
		b.t.Released(o)
		b.t.Acquired(n)
	}
	return n
}

// Release drops the owned value. Only the first call has an effect.
func (o *Object) Release() {
	if o == nil || !o.done.CompareAndSwap(false, true) {
		return
	}
	o.life.alive.Store(false)
	if o.typ.drop != nil {
		o.typ.drop(o.ptr)
	}
	if b := tracker.Load(); b != nil {
		b.t.Released(o)
	}
}

// String implements fmt.Stringer.
func (o *Object) String() string {
	if o == nil {
		return "<nil>"
	}
	state := "owned"
	if o.done.Load() {
		state = "released"
	}
	return fmt.Sprintf("%s#%s(%s)", o.typ.Name(), o.id.String()[:8], state)
}

// Ref is a borrowing handle. It never constructs or drops the value.
// A Ref borrowed from an Object stops resolving once that Object is
// released; a Ref over external storage is always usable.
type Ref struct {
	typ  *Type
	ptr  unsafe.Pointer
	life *lifetime
}

// NewRef wraps storage owned outside the reflection system.
func NewRef(t *Type, p unsafe.Pointer) *Ref {
	if t == nil || p == nil {
		return nil
	}
	return &Ref{typ: t, ptr: p}
}

// Type returns the descriptor of the referenced value.
func (r *Ref) Type() *Type {
	if r == nil {
		return nil
	}
	return r.typ
}

// Valid reports whether the referenced storage is still alive.
func (r *Ref) Valid() bool {
	return r != nil && (r.life == nil || r.life.alive.Load())
}

// Pointer returns the referenced storage, or nil once the owner is gone.
func (r *Ref) Pointer() unsafe.Pointer {
	if !r.Valid() {
		return nil
	}
	return r.ptr
}

// Interface returns a boxed copy of the referenced value.
func (r *Ref) Interface() any {
	p := r.Pointer()
	if p == nil {
		return nil
	}
	return reflect.NewAt(r.typ.rtype, p).Elem().Interface()
}

// String implements fmt.Stringer.
func (r *Ref) String() string {
	if r == nil {
		return "<nil>"
	}
	if !r.Valid() {
		return r.typ.Name() + "&(dangling)"
	}
	return r.typ.Name() + "&"
}

// isNil reports whether h is nil or a typed nil handle.
func isNil(h Handle) bool {
	switch v := h.(type) {
	case nil:
		return true
	case *Object:
		return v == nil
	case *Ref:
		return v == nil
	}
	return h.Type() == nil
}

var (
	_ Handle = (*Object)(nil)
	_ Handle = (*Ref)(nil)
)
