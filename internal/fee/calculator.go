// Package fee computes parking charges from a stay and a tariff rule.
package fee

import (
	"time"

	"github.com/shopspring/decimal"
)

// Rule is the pricing input to Calculate.
type Rule struct {
	HourlyRate        decimal.Decimal
	FractionSurcharge decimal.Decimal
	// DailyCap is the most a single stay can be charged. Invalid means no cap.
	DailyCap     decimal.NullDecimal
	GraceMinutes int
}

// ElapsedMinutes returns whole minutes between entry and exit.
// A negative span (exit before entry) counts as zero minutes.
func ElapsedMinutes(entry, exit time.Time) int64 {
	d := exit.Sub(entry)
	if d <= 0 {
		return 0
	}
	return int64(d / time.Minute)
}

// Calculate returns the charge for a stay between entry and exit.
// Stays within the grace period are free. Every complete billable hour costs
// the hourly rate and a started hour adds the flat surcharge once. The result
// is clamped to the daily cap and is never negative.
func Calculate(entry, exit time.Time, rule Rule) decimal.Decimal {
	elapsed := ElapsedMinutes(entry, exit)
	grace := int64(rule.GraceMinutes)
	if grace < 0 {
		grace = 0
	}
	if elapsed <= grace {
		return decimal.Zero
	}

	billable := elapsed - grace
	fullHours := billable / 60
	remainder := billable % 60

	charge := rule.HourlyRate.Mul(decimal.NewFromInt(fullHours))
	if remainder > 0 {
		charge = charge.Add(rule.FractionSurcharge)
	}

	if rule.DailyCap.Valid && charge.GreaterThan(rule.DailyCap.Decimal) {
		charge = rule.DailyCap.Decimal
	}
	if charge.IsNegative() {
		return decimal.Zero
	}
	return charge
}
