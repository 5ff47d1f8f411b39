// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var verbose bool

func main() {
	var rootCmd = &cobra.Command{
		Use:   "omf80",
		Short: "An Intel OMF-80 object-file linker and flat-image builder",
		Long:  "A linker and flat-binary builder for Intel 8080/8085 OMF-80 object files and libraries",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Help()
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(newLinkCmd())
	rootCmd.AddCommand(newImageCmd())
	rootCmd.AddCommand(newConvertCmd())
	rootCmd.AddCommand(newDumpCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
