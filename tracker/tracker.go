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

// Package tracker accounts for owned objects that are still alive.
//
// A Tracker is installed process-wide with typeinfo.SetTracker (the rtti
// package does this when Config.TrackObjects is set). Every Object adopted
// by the reflection system is reported as acquired, and every Release or
// Move as released. What is left at shutdown is a leak.
package tracker

import (
	"sync"

	"github.com/google/uuid"
	"golang.org/x/exp/slices"

	"dirpx.dev/rtti/typeinfo"
)

// Leak describes an owned object that has not been released.
type Leak struct {
	// ID is the owner's identifier.
	ID uuid.UUID `yaml:"id"`
	// Type is the display name of the owned value's type.
	Type string `yaml:"type"`
	// Seq orders leaks by acquisition.
	Seq uint64 `yaml:"seq"`
}

// Tracker records live owned objects. It is safe for concurrent use.
type Tracker struct {
	// mu guards live and seq.
	mu sync.Mutex
	// live maps owner IDs to their records.
	live map[uuid.UUID]Leak
	// seq is the last issued acquisition number.
	seq uint64
}

// Ensure Tracker implements typeinfo.Tracker.
var _ typeinfo.Tracker = (*Tracker)(nil)

// New returns an empty Tracker.
func New() *Tracker {
	return &Tracker{live: make(map[uuid.UUID]Leak)}
}

// Acquired records o as live.
func (t *Tracker) Acquired(o *typeinfo.Object) {
	if o == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.seq++
	t.live[o.ID()] = Leak{ID: o.ID(), Type: o.Type().Name(), Seq: t.seq}
}

// Released forgets o.
func (t *Tracker) Released(o *typeinfo.Object) {
	if o == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.live, o.ID())
}

// Live returns the records of objects not yet released, oldest first.
func (t *Tracker) Live() []Leak {
	t.mu.Lock()
	out := make([]Leak, 0, len(t.live))
	for _, l := range t.live {
		out = append(out, l)
	}
	t.mu.Unlock()
	slices.SortFunc(out, func(a, b Leak) int {
		switch {
		case a.Seq < b.Seq:
			return -1
		case a.Seq > b.Seq:
			return 1
		}
		return 0
	})
	return out
}

// Count returns the number of live objects.
func (t *Tracker) Count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.live)
}

// Reset forgets every live object.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	clear(t.live)
}
