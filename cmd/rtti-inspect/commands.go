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

package main

import (
	"fmt"
	"log"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"dirpx.dev/rtti"
	"dirpx.dev/rtti/inspect"
	"dirpx.dev/rtti/typeinfo"
)

var errUnknownType = errors.New("unknown type")

var (
	typesOpts = struct {
		yaml bool
	}{}

	typesCmd = &cobra.Command{
		Use:   "types",
		Short: "List registered types",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if typesOpts.yaml {
				return rtti.Dump(os.Stdout)
			}
			tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tSIZE\tPARENT\tFLAGS\tMEMBERS")
			rtti.ForEachType(func(t *typeinfo.Type) bool {
				parent := t.Parent().Name()
				if parent == "" {
					parent = "-"
				}
				fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%d/%d\n",
					t.Name(), t.Size(), parent, t.Flags(), len(t.Properties()), len(t.Methods()))
				return true
			})
			return tw.Flush()
		},
	}

	inspectOpts = struct {
		set []string
	}{}

	inspectCmd = &cobra.Command{
		Use:   "inspect <type>",
		Short: "Show the properties of a new instance",
		Long:  "Construct a default instance of a type, apply --set assignments and print its property table.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := construct(args[0])
			if err != nil {
				return err
			}
			defer o.Release()

			for _, kv := range inspectOpts.set {
				name, text, ok := strings.Cut(kv, "=")
				if !ok {
					return errors.Errorf("--set %q: want name=value", kv)
				}
				if err := inspect.Set(o, name, text); err != nil {
					return err
				}
			}
			return inspect.Render(os.Stdout, o, colorEnabled())
		},
	}

	invokeCmd = &cobra.Command{
		Use:   "invoke <type> <method> [args...]",
		Short: "Call a method on a new instance",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := construct(args[0])
			if err != nil {
				return err
			}
			defer o.Release()

			out, err := inspect.Invoke(o, args[1], args[2:]...)
			if err != nil {
				return err
			}
			if out != nil {
				defer out.Release()
				fmt.Fprintf(os.Stdout, "=> %s\n", inspect.Format(out.Interface()))
			} else {
				fmt.Fprintln(os.Stdout, "=> (void)")
			}
			return inspect.Render(os.Stdout, o, colorEnabled())
		},
	}
)

func init() {
	typesCmd.Flags().BoolVar(&typesOpts.yaml, "yaml", false, "dump descriptors as YAML")
	inspectCmd.Flags().StringArrayVarP(&inspectOpts.set, "set", "s", nil, "assign a property before printing (name=value)")
}

// construct default-constructs the type registered under name.
func construct(name string) (*typeinfo.Object, error) {
	t, ok := rtti.LookupName(name)
	if !ok {
		log.Printf("known types: %s", strings.Join(typeNames(), ", "))
		return nil, errors.Wrapf(errUnknownType, "%q", name)
	}
	return t.New(), nil
}

func typeNames() []string {
	var out []string
	rtti.ForEachType(func(t *typeinfo.Type) bool {
		if !t.IsPrimitive() && !t.IsContainer() {
			out = append(out, t.Name())
		}
		return true
	})
	return out
}

// colorEnabled reports whether stdout is a terminal that wants colour.
func colorEnabled() bool {
	if rootOpts.noColor {
		return false
	}
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
