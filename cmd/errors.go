package cmd

import "errors"

var (
	errMonthWithRange = errors.New("cannot use --month with --from, --to or --last")
	errGroupWithSaved = errors.New("saved reports carry their own grouping and period")
)
