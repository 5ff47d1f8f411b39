// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"

	omf80 "github.com/8080dev/omf80"
	"github.com/spf13/cobra"
)

func newDumpCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dump FILE",
		Short: "Print a textual listing of a file's OMF-80 records",
		Long:  "Decodes an object or library file and prints every record it contains, field by field",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			helper, _ := logFilter(verbose)

			f, err := omf80.New(args[0], &omf80.Options{})
			if err != nil {
				return fmt.Errorf("dump: %w", err)
			}
			defer f.Close()

			records, err := f.Records()
			if err != nil {
				return fmt.Errorf("dump: %w", err)
			}
			helper.Debugf("dump: %s: %d records", args[0], len(records))

			return omf80.Dump(os.Stdout, records)
		},
	}
	return cmd
}
