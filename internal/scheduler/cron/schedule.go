// Package cron implements spec §4.8.1: persisted per-workspace recurring
// jobs fired on a cron expression, executed through either the agent loop
// or a sandboxed script runner, with dependency/condition gating,
// HEARTBEAT_OK suppression, max-runs self-deletion, and retry-with-backoff.
package cron

import (
	"fmt"
	"time"

	"github.com/robfig/cron"
)

// maxDailyFiresWithoutWarning is the threshold past which ValidateExpr's
// estimate triggers a warning (spec §4.8.1: "estimated daily fires > 50
// emits a warning but does not block").
const maxDailyFiresWithoutWarning = 50

// ValidateExpr parses expr and reports an error if it is not a valid cron
// expression. It never rejects an otherwise-valid expression for firing
// too often; see EstimateDailyFires for the warning-only check.
func ValidateExpr(expr string) error {
	_, err := cron.ParseStandard(expr)
	if err != nil {
		return fmt.Errorf("cron: invalid expression %q: %w", expr, err)
	}
	return nil
}

// EstimateDailyFires counts how many times expr would fire in the 24
// hours following from, and reports whether that count exceeds spec
// §4.8.1's warning threshold. It does not reject the expression either
// way.
func EstimateDailyFires(expr string, from time.Time) (count int, warn bool, err error) {
	schedule, err := cron.ParseStandard(expr)
	if err != nil {
		return 0, false, fmt.Errorf("cron: invalid expression %q: %w", expr, err)
	}
	cutoff := from.Add(24 * time.Hour)
	t := from
	for {
		t = schedule.Next(t)
		if t.IsZero() || t.After(cutoff) {
			break
		}
		count++
		if count > maxDailyFiresWithoutWarning*4 {
			// Runaway expression (e.g. every second); stop counting rather
			// than spin, the warning already applies well before this.
			break
		}
	}
	return count, count > maxDailyFiresWithoutWarning, nil
}

// nextFire returns the next time expr fires at or after from. Callers
// have already validated expr via ValidateExpr, so a parse error here
// only happens for a document that was corrupted after acceptance.
func nextFire(expr string, from time.Time) (time.Time, error) {
	schedule, err := cron.ParseStandard(expr)
	if err != nil {
		return time.Time{}, err
	}
	return schedule.Next(from), nil
}
