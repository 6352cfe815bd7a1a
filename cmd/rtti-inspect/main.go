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

// Command rtti-inspect lists, inspects and exercises the reflected types
// linked into it.
package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	"dirpx.dev/rtti"
	"dirpx.dev/rtti/config"

	_ "dirpx.dev/rtti/internal/sample"
)

var (
	rootOpts = struct {
		config  string
		noColor bool
	}{}

	rootCmd = &cobra.Command{
		Use:   "rtti-inspect",
		Short: "Inspect reflected types",
		Long:  "List registered type descriptors, render property tables of fresh instances and invoke their methods.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if rootOpts.config == "" {
				return nil
			}
			cfg, err := config.Load(rootOpts.config)
			if err != nil {
				return err
			}
			rtti.InitWith(cfg)
			return nil
		},
		SilenceUsage: true,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&rootOpts.config, "config", "c", "", "YAML configuration file")
	rootCmd.PersistentFlags().BoolVar(&rootOpts.noColor, "no-color", false, "disable coloured output")
	rootCmd.AddCommand(typesCmd, inspectCmd, invokeCmd)
}

func main() {
	log.SetFlags(0)
	log.SetPrefix("rtti-inspect: ")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
