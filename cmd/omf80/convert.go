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

func newConvertCmd() *cobra.Command {
	var output, codeFlag, stackFlag string

	cmd := &cobra.Command{
		Use:   "convert FILE",
		Short: "Adjust and flatten an already-linked module into a binary image",
		Long:  "Converts a single already-linked OMF-80 module file straight into a raw binary image, without combining further inputs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			helper, logger := logFilter(verbose)

			codeStart, err := numfmt.ParseUint16(codeFlag)
			if err != nil {
				return fmt.Errorf("convert: --code: %w", err)
			}
			stackSize, err := numfmt.ParseUint16(stackFlag)
			if err != nil {
				return fmt.Errorf("convert: --stack: %w", err)
			}

			item, err := loadItem(args[0], helper)
			if err != nil {
				return err
			}
			module, ok := item.(*omf80.Module)
			if !ok {
				return fmt.Errorf("convert: %s is a library, not a linked module", args[0])
			}

			if err := omf80.Adjust(module, codeStart, stackSize, &omf80.ImageOptions{Logger: logger}); err != nil {
				return fmt.Errorf("convert: %w", err)
			}

			bin := omf80.ModuleToBin(module)

			if output == "" {
				return fmt.Errorf("convert: -o is required")
			}
			if err := os.WriteFile(output, bin, 0o644); err != nil {
				return fmt.Errorf("convert: writing %s: %w", output, err)
			}
			helper.Infof("convert: wrote %s (%d bytes)", output, len(bin))
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "binary image output path")
	cmd.Flags().StringVar(&codeFlag, "code", "0", "load address for CODE (decimal, 0x-hex, or h-suffixed hex)")
	cmd.Flags().StringVar(&stackFlag, "stack", "0", "reserved STACK size in bytes")
	return cmd
}
