// Copyright (c) 2025 The ragterm Authors
// SPDX-License-Identifier: MIT

// stats.go - local usage journal summary.
//
// Command: stats [--prune DAYS]
package cli

import (
	"fmt"
	"time"

	"github.com/ragterm/ragterm/internal/history"
)

// HandleStats summarizes the local question journal. The journal lives
// on this machine only; nothing here talks to the backend.
func (e *Env) HandleStats(args *Args, journal *history.Journal) int {
	if journal == nil {
		fmt.Println(infoStyle.Render("history is disabled in the config"))
		return ExitOK
	}

	if days := args.Options.IntFlag("prune"); days > 0 {
		cutoff := time.Now().AddDate(0, 0, -days)
		pruned, err := journal.Prune(cutoff)
		if err != nil {
			return Fail(err)
		}
		if !args.Quiet {
			fmt.Printf("%s pruned %d entries older than %d days\n",
				okStyle.Render("[OK]"), pruned, days)
		}
	}

	stats, err := journal.Summarize()
	if err != nil {
		return Fail(err)
	}
	if args.JSON {
		return printJSON(stats)
	}

	fmt.Println(headerStyle.Render("usage"))
	fmt.Println(labelStyle.Render("questions:   ") + fmt.Sprint(stats.TotalAsks))
	fmt.Println(labelStyle.Render("failed:      ") + fmt.Sprint(stats.Failed))
	if stats.TotalAsks > 0 {
		fmt.Println(labelStyle.Render("avg latency: ") + stats.AvgLatency.Round(time.Millisecond).String())
	}
	if !stats.Since.IsZero() {
		fmt.Println(labelStyle.Render("since:       ") + stats.Since.Format("2006-01-02"))
	}
	for mode, n := range stats.ByMode {
		fmt.Printf("%s%d\n", labelStyle.Render(fmt.Sprintf("mode %-7s ", string(mode)+":")), n)
	}
	if stats.BusiestID != 0 {
		fmt.Printf("%sconversation %d (%d questions)\n",
			labelStyle.Render("busiest:     "), stats.BusiestID, stats.BusiestCount)
	}
	return ExitOK
}
