package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/fwojciec/artex"
)

// Run executes the history command.
func (c *HistoryCmd) Run(deps *Dependencies) error {
	filter := artex.ResultFilter{
		SuccessOnly: c.OK,
		Limit:       c.Limit,
	}
	if c.URL != "" {
		filter.URL = &c.URL
	}
	if c.Method != "" {
		filter.Method = &c.Method
	}

	recs, err := deps.Results.Find(deps.Ctx, filter)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", artex.ErrorMessage(err))
		return err
	}

	if len(recs) == 0 {
		fmt.Fprintln(deps.Stdout, "No results recorded. Use 'artex extract --record' to record some.")
		return nil
	}

	if c.JSON {
		enc := json.NewEncoder(deps.Stdout)
		for _, rec := range recs {
			if err := enc.Encode(extraction{URL: rec.URL, ExtractionResult: rec.Result}); err != nil {
				return fmt.Errorf("writing result: %w", err)
			}
		}
		return nil
	}

	for _, rec := range recs {
		status := "ok"
		if !rec.Success {
			status = "failed"
		}
		fmt.Fprintf(deps.Stdout, "%s  %-6s  %-24s  %.2f  %s\n",
			rec.CreatedAt.Format(time.DateTime), status, rec.Method, rec.Confidence, rec.URL)
	}
	return nil
}
