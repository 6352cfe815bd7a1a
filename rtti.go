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

package rtti

import (
	"reflect"
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"

	"dirpx.dev/rtti/apis"
	"dirpx.dev/rtti/builder"
	"dirpx.dev/rtti/config"
	"dirpx.dev/rtti/tracker"
	"dirpx.dev/rtti/typeinfo"
)

// init opens the registration window with the default configuration so
// package-level registrations work without an explicit Init call.
func init() {
	Init()
}

var (
	// ErrNilRegistry is returned when a builder returns a nil registry.
	ErrNilRegistry = errors.New("rtti: builder returned nil registry")
	// ErrNilResolver is returned when a builder returns a nil resolver.
	ErrNilResolver = errors.New("rtti: builder returned nil resolver")
	// ErrSealed is returned by Register once Seal or Shutdown has been called.
	ErrSealed = errors.New("rtti: registration window is sealed")
	// ErrUnresolvable is returned (or panicked with by Of) for Go types that
	// are neither registered, self-describing, primitive nor containers.
	ErrUnresolvable = errors.New("rtti: type is not reflected")
)

// Init (re)builds the global state from the given options. User
// registrations made so far are carried over, primitives are bootstrapped
// when enabled, and the registration window is opened again.
func Init(opts ...config.Option) {
	InitWith(config.NewConfig(opts...))
}

// InitWith is like Init but takes a complete configuration.
func InitWith(cfg apis.Config) {
	buildMu.Lock()
	defer buildMu.Unlock()

	// Load the old state, if any.
	old := st.Load()
	bld := builder.New()
	var preg apis.Registry
	var pres apis.Resolver
	if old != nil {
		bld, preg, pres = old.bld, old.reg, old.res
	}
	st.Store(build(cfg, bld, preg, pres, nil, false))
}

// build assembles a state and installs its tracker.
// A non-nil ptrk keeps counting across the rebuild.
func build(cfg apis.Config, bld apis.Builder, preg apis.Registry, pres apis.Resolver, ptrk *tracker.Tracker, sealed bool) *state {
	nreg := bld.BuildRegistry(cfg, preg)
	if nreg == nil {
		panic(ErrNilRegistry)
	}
	nres := bld.BuildResolver(cfg, nreg, pres)
	if nres == nil {
		panic(ErrNilResolver)
	}

	var trk *tracker.Tracker
	if cfg.TrackObjects {
		trk = ptrk
		if trk == nil {
			trk = tracker.New()
		}
		typeinfo.SetTracker(trk)
	} else {
		typeinfo.SetTracker(nil)
	}

	return &state{
		cfg:    cfg,
		reg:    nreg,
		res:    nres,
		bld:    bld,
		trk:    trk,
		sealed: sealed,
	}
}

// Seal closes the registration window. Lookups, handles and invocation keep
// working; Register returns ErrSealed until the next Init.
func Seal() {
	buildMu.Lock()
	defer buildMu.Unlock()

	old := st.Load()
	next := *old
	next.sealed = true
	st.Store(&next)
}

// IsSealed reports whether the registration window is closed.
func IsSealed() bool {
	return st.Load().sealed
}

// Shutdown ends the lifecycle: it reports owned objects that were never
// released (when tracking is enabled), drops every registration and seals
// the window. Call Init to start over.
func Shutdown() []tracker.Leak {
	buildMu.Lock()
	defer buildMu.Unlock()

	old := st.Load()
	var leaks []tracker.Leak
	if old.trk != nil {
		leaks = old.trk.Live()
	}
	old.reg.Reset()

	cfg := old.cfg
	cfg.TrackObjects = false
	st.Store(build(cfg, old.bld, nil, nil, nil, true))
	return leaks
}

// Config returns the global configuration.
func Config() apis.Config {
	return st.Load().cfg
}

// Registry returns the global registry.
func Registry() apis.Registry {
	return st.Load().reg
}

// Resolver returns the global resolver.
func Resolver() apis.Resolver {
	return st.Load().res
}

// Builder returns the global builder.
func Builder() apis.Builder {
	return st.Load().bld
}

// Tracker returns the live object tracker, or nil when tracking is disabled.
func Tracker() *tracker.Tracker {
	return st.Load().trk
}

// SetBuilder replaces the global builder and rebuilds registry and resolver
// through it, migrating user registrations.
func SetBuilder(b apis.Builder) {
	if b == nil {
		return
	}

	buildMu.Lock()
	defer buildMu.Unlock()

	old := st.Load()
	st.Store(build(old.cfg, b, old.reg, old.res, old.trk, old.sealed))
}

// Of returns the descriptor of T. It panics with ErrUnresolvable if T is
// not known to the reflection system.
func Of[T any]() *typeinfo.Type {
	d, err := Resolve[T]()
	if err != nil {
		panic(err)
	}
	return d
}

// Resolve returns the descriptor of T or an error wrapping ErrUnresolvable.
func Resolve[T any]() (*typeinfo.Type, error) {
	return resolveType(reflect.TypeFor[T]())
}

func resolveType(rt reflect.Type) (*typeinfo.Type, error) {
	s := st.Load()
	if d := s.res.ResolveType(rt, s.cfg); d != nil {
		return d, nil
	}
	return nil, errors.Wrapf(ErrUnresolvable, "%v", rt)
}

// TypeOf resolves the descriptor of v's dynamic type, looking through
// pointers. It returns nil if the type is unknown.
func TypeOf(v any) *typeinfo.Type {
	s := st.Load()
	return s.res.Resolve(v, s.cfg)
}

// Lookup returns the descriptor registered for t without synthesizing one.
func Lookup(t reflect.Type) (*typeinfo.Type, bool) {
	return st.Load().reg.Lookup(t)
}

// LookupName returns the descriptor registered under a display name.
func LookupName(name string) (*typeinfo.Type, bool) {
	return st.Load().reg.LookupName(name)
}

// buildMu serializes writers (reconfigurations/swaps) so we never publish
// partially-built snapshots.
var buildMu sync.Mutex

// st is the global state.
var st atomic.Pointer[state]

// state is the global state snapshot.
// Immutable snapshot published atomically via st.Store; never mutate fields
// of a published state. Writers create a new state and swap it atomically.
type state struct {
	// cfg is the global configuration.
	cfg apis.Config
	// reg is the global registry.
	reg apis.Registry
	// res is the global resolver.
	res apis.Resolver
	// bld is the global builder.
	bld apis.Builder
	// trk counts live owned objects when tracking is enabled.
	trk *tracker.Tracker
	// sealed indicates the registration window is closed.
	sealed bool
}
