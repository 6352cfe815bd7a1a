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

// Strategy is one resolution tier. A Resolver chains multiple strategies in
// order (e.g., Reflected -> Registry -> Primitive -> Container). res is the
// enclosing resolver, used by tiers that resolve nested types.
type Strategy interface {
	// TryResolve attempts to resolve a descriptor for value v according to cfg.
	// It returns (desc, true) if handled; otherwise (nil, false) to fall through.
	TryResolve(v any, cfg Config, res Resolver) (desc *typeinfo.Type, handled bool)

	// TryResolveType attempts to resolve a descriptor for the reflect.Type t.
	TryResolveType(t reflect.Type, cfg Config, res Resolver) (desc *typeinfo.Type, handled bool)
}
