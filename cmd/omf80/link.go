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

func newLinkCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "link FILES...",
		Short: "Combine object files and libraries into a single linked module",
		Long:  "Combines OMF-80 object files and libraries into a single linked module, resolving external references",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			helper, logger := logFilter(verbose)

			items, err := loadItems(args, helper)
			if err != nil {
				return err
			}

			combined, err := omf80.Link(items, &omf80.LinkOptions{Logger: logger})
			if err != nil {
				return fmt.Errorf("link: %w", err)
			}

			records := append(omf80.ModuleToRecords(combined), omf80.EndOfFileRecord{})
			data, err := omf80.JoinFrames(records)
			if err != nil {
				return fmt.Errorf("link: encoding output: %w", err)
			}

			if output == "" {
				return fmt.Errorf("link: -o is required")
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return fmt.Errorf("link: writing %s: %w", output, err)
			}
			helper.Infof("link: wrote %s (%d bytes)", output, len(data))
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "linked module output path")
	return cmd
}
