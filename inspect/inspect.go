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

// Package inspect renders and edits reflected values by property name, the
// way a debug property panel does. Values are printed with kr/pretty and
// parsed from YAML scalars or flow collections.
package inspect

import (
	"fmt"
	"io"
	"reflect"
	"text/tabwriter"

	"github.com/kr/pretty"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"dirpx.dev/rtti"
	"dirpx.dev/rtti/typeinfo"
)

var (
	// ErrInvalidHandle is returned for nil or released handles.
	ErrInvalidHandle = errors.New("rtti(inspect): invalid handle")
	// ErrUnknownProperty is returned when no type in the chain declares a property.
	ErrUnknownProperty = errors.New("rtti(inspect): unknown property")
	// ErrUnknownMethod is returned when no type in the chain declares a method.
	ErrUnknownMethod = errors.New("rtti(inspect): unknown method")
	// ErrParse is returned when text does not decode into the declared type.
	ErrParse = errors.New("rtti(inspect): cannot parse value")
	// ErrRejected is returned when a property or method refuses a value.
	ErrRejected = errors.New("rtti(inspect): value rejected")
)

// Row is one visible property of an inspected value.
type Row struct {
	Owner    string
	Name     string
	Type     string
	Value    string
	Accessor bool
	ReadOnly bool
}

// Format renders v for a property cell. Strings are quoted, other scalars
// print plainly and composite values go through kr/pretty.
func Format(v any) string {
	if v == nil {
		return "<nil>"
	}
	switch reflect.TypeOf(v).Kind() {
	case reflect.String:
		return pretty.Sprintf("%q", v)
	case reflect.Bool, reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return pretty.Sprintf("%v", v)
	}
	return pretty.Sprint(v)
}

func valid(h typeinfo.Handle) bool {
	return h != nil && h.Type() != nil && h.Pointer() != nil
}

// Rows lists the properties visible on h, root type first. Properties
// hidden by a redeclaration further down the chain are left out.
func Rows(h typeinfo.Handle) ([]Row, error) {
	if !valid(h) {
		return nil, ErrInvalidHandle
	}
	t := h.Type()
	var rows []Row
	for _, c := range t.Chain() {
		for _, p := range c.DeclaredProperties() {
			if t.FindProperty(p.Name()) != p {
				continue
			}
			v, ok := p.Get(h)
			val := "<unavailable>"
			if ok {
				val = Format(v)
			}
			rows = append(rows, Row{
				Owner:    c.Name(),
				Name:     p.Name(),
				Type:     p.Type().Name(),
				Value:    val,
				Accessor: p.IsAccessor(),
				ReadOnly: p.ReadOnly(),
			})
		}
	}
	return rows, nil
}

const (
	ansiBold  = "\x1b[1m"
	ansiDim   = "\x1b[2m"
	ansiReset = "\x1b[0m"
)

// Render writes the property table of h to w. With color set, owner
// names are bold and read-only rows dimmed.
func Render(w io.Writer, h typeinfo.Handle, color bool) error {
	rows, err := Rows(h)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	if desc := rtti.Description(h.Type()); desc != "" {
		fmt.Fprintf(tw, "# %s: %s\n", h.Type().Name(), desc)
	} else {
		fmt.Fprintf(tw, "# %s\n", h.Type().Name())
	}
	fmt.Fprintln(tw, "OWNER\tPROPERTY\tTYPE\tVALUE")
	for _, r := range rows {
		owner, pre, post := r.Owner, "", ""
		if color {
			owner = ansiBold + owner + ansiReset
			if r.ReadOnly {
				pre, post = ansiDim, ansiReset
			}
		}
		kind := ""
		if r.ReadOnly {
			kind = " (ro)"
		}
		fmt.Fprintf(tw, "%s\t%s%s%s\t%s\t%s\n", owner, pre, r.Name, kind, r.Type, r.Value+post)
	}
	return tw.Flush()
}

// ParseValue decodes text into a new owned value of type t.
func ParseValue(t *typeinfo.Type, text string) (*typeinfo.Object, error) {
	if t == nil {
		return nil, ErrInvalidHandle
	}
	v := reflect.New(t.GoType())
	if err := yaml.Unmarshal([]byte(text), v.Interface()); err != nil {
		return nil, errors.Wrapf(ErrParse, "%q as %s: %v", text, t.Name(), err)
	}
	return t.NewCopy(v.UnsafePointer()), nil
}

// Set parses text as the declared type of property name and writes it to h.
func Set(h typeinfo.Handle, name, text string) error {
	if !valid(h) {
		return ErrInvalidHandle
	}
	p := h.Type().FindProperty(name)
	if p == nil {
		return errors.Wrapf(ErrUnknownProperty, "%s.%s", h.Type().Name(), name)
	}
	v, err := ParseValue(p.Type(), text)
	if err != nil {
		return err
	}
	defer v.Release()
	if !p.SetFrom(h, v) {
		return errors.Wrapf(ErrRejected, "%s.%s = %s", h.Type().Name(), name, text)
	}
	return nil
}

// Invoke parses args against the parameters of method name and calls it
// on h. The result is nil for methods without one.
func Invoke(h typeinfo.Handle, name string, args ...string) (*typeinfo.Object, error) {
	if !valid(h) {
		return nil, ErrInvalidHandle
	}
	m := h.Type().FindMethod(name)
	if m == nil {
		return nil, errors.Wrapf(ErrUnknownMethod, "%s.%s", h.Type().Name(), name)
	}
	params := m.Params()
	if len(args) != len(params) {
		return nil, errors.Wrapf(ErrRejected, "%s takes %d arguments, got %d", m.Signature(), len(params), len(args))
	}
	hs := make([]typeinfo.Handle, len(args))
	for i, a := range args {
		o, err := ParseValue(params[i], a)
		if err != nil {
			return nil, err
		}
		defer o.Release()
		hs[i] = o
	}
	out, ok := m.Invoke(h, hs...)
	if !ok {
		return nil, errors.Wrapf(ErrRejected, "%s", m.Signature())
	}
	return out, nil
}
