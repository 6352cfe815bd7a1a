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
	"io"
	"reflect"
	"strings"

	"golang.org/x/exp/slices"
	"gopkg.in/yaml.v3"

	"dirpx.dev/rtti/apis"
	"dirpx.dev/rtti/typeinfo"
)

// Types returns every registered descriptor sorted by name.
func Types() []*typeinfo.Type {
	entries := st.Load().reg.Entries()
	out := make([]*typeinfo.Type, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Desc)
	}
	slices.SortFunc(out, func(a, b *typeinfo.Type) int { return strings.Compare(a.Name(), b.Name()) })
	return out
}

// ForEachType calls fn for every registered descriptor in name order until
// fn returns false.
func ForEachType(fn func(*typeinfo.Type) bool) {
	for _, t := range Types() {
		if !fn(t) {
			return
		}
	}
}

type dumpProperty struct {
	Name     string  `yaml:"name"`
	Type     string  `yaml:"type"`
	Offset   uintptr `yaml:"offset,omitempty"`
	Accessor bool    `yaml:"accessor,omitempty"`
	ReadOnly bool    `yaml:"read_only,omitempty"`
}

type dumpType struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description,omitempty"`
	GoType      string         `yaml:"go_type"`
	Size        uintptr        `yaml:"size"`
	Flags       string         `yaml:"flags,omitempty"`
	Parent      string         `yaml:"parent,omitempty"`
	Elem        string         `yaml:"elem,omitempty"`
	Properties  []dumpProperty `yaml:"properties,omitempty"`
	Methods     []string       `yaml:"methods,omitempty"`
	Children    []string       `yaml:"children,omitempty"`
}

var describedIface = reflect.TypeFor[apis.Described]()

// Description returns the apis.Described text of t's Go type, or "".
func Description(t *typeinfo.Type) string {
	if t == nil {
		return ""
	}
	rt := t.GoType()
	var zero reflect.Value
	switch {
	case rt.Implements(describedIface):
		zero = reflect.Zero(rt)
	case reflect.PointerTo(rt).Implements(describedIface):
		zero = reflect.Zero(reflect.PointerTo(rt))
	default:
		return ""
	}
	if d, ok := zero.Interface().(apis.Described); ok {
		return d.TypeDescription()
	}
	return ""
}

// describe returns the diagnostic record of t as written by Dump.
func describe(t *typeinfo.Type) dumpType {
	d := dumpType{
		Name:        t.Name(),
		Description: Description(t),
		GoType:      t.GoType().String(),
		Size:        t.Size(),
		Parent:      t.Parent().Name(),
		Elem:        t.Elem().Name(),
	}
	if t.Flags() != 0 {
		d.Flags = t.Flags().String()
	}
	for _, p := range t.DeclaredProperties() {
		d.Properties = append(d.Properties, dumpProperty{
			Name:     p.Name(),
			Type:     p.Type().Name(),
			Offset:   p.Offset(),
			Accessor: p.IsAccessor(),
			ReadOnly: p.ReadOnly(),
		})
	}
	for _, m := range t.DeclaredMethods() {
		d.Methods = append(d.Methods, m.Signature())
	}
	for _, c := range t.Children() {
		d.Children = append(d.Children, c.Name())
	}
	slices.Sort(d.Children)
	return d
}

// Dump writes every registered descriptor to w as a YAML sequence.
func Dump(w io.Writer) error {
	types := Types()
	out := make([]dumpType, 0, len(types))
	for _, t := range types {
		out = append(out, describe(t))
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(out); err != nil {
		return err
	}
	return enc.Close()
}
