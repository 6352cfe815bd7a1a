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

// Config carries read-only knobs that influence registration and resolution.
// It is passed by value and should be treated as immutable by implementations.
type Config struct {
	// Primitives controls whether the builtin primitive set (integers,
	// floats, bool, string) is registered eagerly when a registry is built.
	// Primitive types resolve on demand either way.
	Primitives bool

	// MaxUnwrap limits pointer unwrapping when resolving values and the
	// nesting depth of synthesized containers.
	MaxUnwrap int

	// AllowOverwrite makes a second registration of the same Go type
	// replace the first instead of failing.
	AllowOverwrite bool

	// TrackObjects enables accounting of live owned objects.
	TrackObjects bool

	// SequenceFormat is the fmt pattern used to name slice descriptors from
	// their element name, e.g. "sequence<%s>".
	SequenceFormat string
}
