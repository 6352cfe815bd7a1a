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

package reflect

import (
	"reflect"

	"github.com/pkg/errors"

	"dirpx.dev/rtti/apis"
	"dirpx.dev/rtti/config"
)

var (
	// ErrReflectNilType is returned when a nil reflect.Type is provided.
	ErrReflectNilType = errors.New("reflect: nil reflect.Type provided")
	// ErrReflectTooDeep indicates that pointer unwrapping exceeded MaxUnwrap.
	ErrReflectTooDeep = errors.New("reflect: pointer nesting exceeds MaxUnwrap")
)

// Class is the resolution tier a Go type structurally belongs to.
type Class int

const (
	// ClassOther covers structs, maps, funcs and everything that must be
	// registered explicitly.
	ClassOther Class = iota
	// ClassPrimitive covers booleans, numbers and strings.
	ClassPrimitive
	// ClassSequence covers slices and arrays.
	ClassSequence
)

// Indirect unwraps pointers according to config (MaxUnwrap) and returns the
// pointed-to type.
//
// If MaxUnwrap <= 0, DefaultMaxUnwrap is used.
func Indirect(t reflect.Type, cfg apis.Config) (reflect.Type, error) {
	if t == nil {
		return nil, ErrReflectNilType
	}
	maxUnwrap := cfg.MaxUnwrap
	if maxUnwrap <= 0 {
		maxUnwrap = config.DefaultMaxUnwrap
	}
	for i := 0; t.Kind() == reflect.Ptr; i++ {
		if i >= maxUnwrap {
			return nil, ErrReflectTooDeep
		}
		t = t.Elem()
	}
	return t, nil
}

// Classify returns the structural class of t.
func Classify(t reflect.Type) Class {
	if t == nil {
		return ClassOther
	}
	switch t.Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64,
		reflect.Complex64, reflect.Complex128,
		reflect.String:
		return ClassPrimitive
	case reflect.Slice, reflect.Array:
		return ClassSequence
	default:
		return ClassOther
	}
}

// SequenceDepth returns how many slices/arrays are nested in t, e.g. 2 for
// [][]int and 0 for int.
func SequenceDepth(t reflect.Type) int {
	d := 0
	for t != nil && Classify(t) == ClassSequence {
		d++
		t = t.Elem()
	}
	return d
}
