// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"

	omf80 "github.com/8080dev/omf80"
	"github.com/8080dev/omf80/numfmt"
	"github.com/spf13/cobra"
)

func newImageCmd() *cobra.Command {
	var output, codeFlag, stackFlag string

	cmd := &cobra.Command{
		Use:   "image FILES...",
		Short: "Link object files and libraries directly into a flat binary image",
		Long:  "Links OMF-80 object files and libraries, then adjusts and flattens the result into a raw binary image",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			helper, logger := logFilter(verbose)

			codeStart, err := numfmt.ParseUint16(codeFlag)
			if err != nil {
				return fmt.Errorf("image: --code: %w", err)
			}
			stackSize, err := numfmt.ParseUint16(stackFlag)
			if err != nil {
				return fmt.Errorf("image: --stack: %w", err)
			}

			items, err := loadItems(args, helper)
			if err != nil {
				return err
			}

			combined, err := omf80.Link(items, &omf80.LinkOptions{Logger: logger})
			if err != nil {
				return fmt.Errorf("image: %w", err)
			}

			if err := omf80.Adjust(combined, codeStart, stackSize, &omf80.ImageOptions{Logger: logger}); err != nil {
				return fmt.Errorf("image: %w", err)
			}

			bin := omf80.ModuleToBin(combined)

			if output == "" {
				return fmt.Errorf("image: -o is required")
			}
			if err := os.WriteFile(output, bin, 0o644); err != nil {
				return fmt.Errorf("image: writing %s: %w", output, err)
			}
			helper.Infof("image: wrote %s (%d bytes)", output, len(bin))
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "binary image output path")
	cmd.Flags().StringVar(&codeFlag, "code", "0", "load address for CODE (decimal, 0x-hex, or h-suffixed hex)")
	cmd.Flags().StringVar(&stackFlag, "stack", "0", "reserved STACK size in bytes")
	return cmd
}
