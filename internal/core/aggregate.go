package core

import "sort"

// SummaryStats are the aggregate totals over a set of sale records.
// TotalCost includes shipping; TotalProfit is TotalRevenue - TotalCost.
type SummaryStats struct {
	TotalCost    Money
	TotalRevenue Money
	TotalProfit  Money
	Count        int
}

// CategoryCount maps an equipment category to the number of records
// of that category within a set.
type CategoryCount map[Category]int

// FilterByMonth returns the records whose date falls in the given
// month. MonthAll returns the input unchanged. Records with malformed
// dates match no month. The input is never mutated.
func FilterByMonth(records []SaleRecord, month Month) []SaleRecord {
	if month == MonthAll {
		return records
	}
	var out []SaleRecord
	for _, r := range records {
		if m, ok := r.Date.MonthOf(); ok && m == month {
			out = append(out, r)
		}
	}
	return out
}

// Summarize accumulates the four totals in a single pass. An empty
// input yields all-zero stats.
func Summarize(records []SaleRecord) SummaryStats {
	var s SummaryStats
	for _, r := range records {
		s.TotalCost.Cents += r.CostPrice.Cents + r.ShippingCost.Cents
		s.TotalRevenue.Cents += r.SellingPrice.Cents
	}
	s.TotalProfit.Cents = s.TotalRevenue.Cents - s.TotalCost.Cents
	s.Count = len(records)
	return s
}

// CategoryBreakdown counts records per category in a single pass.
// Map iteration order carries no meaning.
func CategoryBreakdown(records []SaleRecord) CategoryCount {
	counts := make(CategoryCount)
	for _, r := range records {
		counts[r.Category]++
	}
	return counts
}

// DistinctMonths returns the unique months of the records' dates,
// most recent first. Malformed dates contribute nothing.
func DistinctMonths(records []SaleRecord) []Month {
	seen := make(map[Month]struct{})
	var months []Month
	for _, r := range records {
		m, ok := r.Date.MonthOf()
		if !ok {
			continue
		}
		if _, dup := seen[m]; dup {
			continue
		}
		seen[m] = struct{}{}
		months = append(months, m)
	}
	sort.Slice(months, func(i, j int) bool { return months[i] > months[j] })
	return months
}
