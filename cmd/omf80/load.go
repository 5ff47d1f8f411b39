// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package main

import (
	"fmt"

	omf80 "github.com/8080dev/omf80"
	"github.com/go-kratos/kratos/v2/log"
)

// logFilter builds the filtered logger shared by a command invocation: a
// *log.Helper for direct logging plus the underlying log.Logger to hand to
// LinkOptions/ImageOptions/Options.
func logFilter(verbose bool) (*log.Helper, log.Logger) {
	level := log.LevelError
	if verbose {
		level = log.LevelDebug
	}
	filtered := log.NewFilter(log.DefaultLogger, log.FilterLevel(level))
	return log.NewHelper(filtered), filtered
}

// loadItem opens path, splits it into records, and folds it into either a
// *omf80.Module or a *omf80.Library.
func loadItem(path string, helper *log.Helper) (any, error) {
	f, err := omf80.New(path, &omf80.Options{})
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	records, err := f.Records()
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	helper.Debugf("loaded %s: %d records", path, len(records))
	if len(records) == 0 || records[len(records)-1].Type() != omf80.RecordEndOfFile {
		return nil, fmt.Errorf("%s: missing END OF FILE record: %w", path, omf80.ErrBadInput)
	}

	item, err := omf80.ReadRecords(omf80.StripEOF(records))
	if err != nil {
		return nil, fmt.Errorf("assembling %s: %w", path, err)
	}
	return item, nil
}

// loadItems loads every path in paths, in order.
func loadItems(paths []string, helper *log.Helper) ([]any, error) {
	items := make([]any, 0, len(paths))
	for _, path := range paths {
		item, err := loadItem(path, helper)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}
