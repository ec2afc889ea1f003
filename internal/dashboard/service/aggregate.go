package service

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	billingdomain "github.com/adlift/cashout/internal/billingrequest/domain"
	"github.com/adlift/cashout/internal/dashboard/domain"
	"github.com/shopspring/decimal"
)

const (
	recentRequestCap = 5
	topPlatformCap   = 3
	chartPeriods     = 6
	trendWeeks       = 6
)

type periodTotals struct {
	invoiced decimal.Decimal
	benefit  decimal.Decimal
	count    int
}

// Aggregate reduces a snapshot of billing requests into dashboard stats.
// Pure: no I/O, no mutation of the input. The snapshot may already be stale
// by the time the caller renders it; that is acceptable here. regions is
// the distinct set of company regions the snapshot spans, resolved by the
// caller.
func Aggregate(records []billingdomain.BillingRequest, regions []string, now time.Time) domain.Stats {
	now = now.UTC()
	currentKey := periodKey(now)
	previousKey := periodKey(now.AddDate(0, -1, 0))

	byPeriod := map[string]*periodTotals{}

	active := 0
	platformCounts := map[string]int{}
	platformOrder := []string{}

	for _, rec := range records {
		if !rec.State.Terminal() {
			active++
		}

		if _, seen := platformCounts[rec.Platform]; !seen {
			platformOrder = append(platformOrder, rec.Platform)
		}
		platformCounts[rec.Platform]++

		if !invoicedState(rec.State) {
			continue
		}
		key := periodKey(rec.UpdatedAt.UTC())
		totals := byPeriod[key]
		if totals == nil {
			totals = &periodTotals{}
			byPeriod[key] = totals
		}
		if rec.TotalInvoiced.Valid {
			totals.invoiced = totals.invoiced.Add(rec.TotalInvoiced.Decimal)
		}
		if rec.WithholdingOffset.Valid {
			totals.benefit = totals.benefit.Add(rec.WithholdingOffset.Decimal)
		}
		totals.count++
	}

	current := byPeriod[currentKey]
	previous := byPeriod[previousKey]
	if current == nil {
		current = &periodTotals{}
	}
	if previous == nil {
		previous = &periodTotals{}
	}

	summary := domain.Summary{
		TotalInvoiced: domain.StatMetric{
			Value:            current.invoiced.InexactFloat64(),
			PercentageChange: CalcPct(current.invoiced.InexactFloat64(), previous.invoiced.InexactFloat64()),
		},
		WithholdingBenefit: domain.StatMetric{
			Value:            current.benefit.InexactFloat64(),
			PercentageChange: CalcPct(current.benefit.InexactFloat64(), previous.benefit.InexactFloat64()),
		},
		InvoicesIssued: domain.StatMetric{
			Value:            float64(current.count),
			PercentageChange: CalcPct(float64(current.count), float64(previous.count)),
		},
		ActiveRequests: active,
	}

	return domain.Stats{
		Summary: summary,
		BusinessNetwork: domain.BusinessNetwork{
			ActivePlatforms: len(platformCounts),
			Regions:         countRegions(regions),
			TopPlatforms:    topPlatforms(platformCounts, platformOrder, len(records)),
		},
		Charts: domain.Charts{
			MonthlyPerformance: monthlyPerformance(byPeriod),
			WeeklyTrend:        weeklyTrend(records),
		},
		RecentRequests: recentRequests(records),
	}
}

// CalcPct is the percentage change between two period values: 0 when both
// are zero, 100 when only the previous is zero, otherwise the rounded
// relative delta.
func CalcPct(current, previous float64) int {
	if previous == 0 {
		if current == 0 {
			return 0
		}
		return 100
	}
	return int(math.Round((current - previous) / previous * 100))
}

func invoicedState(s billingdomain.State) bool {
	switch s {
	case billingdomain.StateInvoiced, billingdomain.StatePaid, billingdomain.StateCompleted:
		return true
	default:
		return false
	}
}

// periodKey qualifies the month with its year. Grouping by bare month name
// would merge the same month of different years.
func periodKey(t time.Time) string {
	return t.Format("2006-01")
}

// weekKey is the year-qualified ISO week ("2026-W34"). Zero-padded so
// string order matches chronological order.
func weekKey(t time.Time) string {
	year, week := t.UTC().ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

func countRegions(regions []string) int {
	seen := map[string]struct{}{}
	for _, region := range regions {
		region = strings.ToLower(strings.TrimSpace(region))
		if region == "" {
			continue
		}
		seen[region] = struct{}{}
	}
	return len(seen)
}

func topPlatforms(counts map[string]int, order []string, total int) []domain.PlatformShare {
	if total == 0 {
		return []domain.PlatformShare{}
	}

	shares := make([]domain.PlatformShare, 0, len(order))
	rank := map[string]int{}
	for i, name := range order {
		rank[name] = i
		shares = append(shares, domain.PlatformShare{
			Name:       name,
			Percentage: int(math.Round(float64(counts[name]) / float64(total) * 100)),
		})
	}

	// Ties keep first-encountered input order.
	sort.SliceStable(shares, func(i, j int) bool {
		if counts[shares[i].Name] != counts[shares[j].Name] {
			return counts[shares[i].Name] > counts[shares[j].Name]
		}
		return rank[shares[i].Name] < rank[shares[j].Name]
	})

	if len(shares) > topPlatformCap {
		shares = shares[:topPlatformCap]
	}
	return shares
}

func weeklyTrend(records []billingdomain.BillingRequest) []domain.WeeklyPoint {
	byWeek := map[string]int{}
	for _, rec := range records {
		byWeek[weekKey(rec.CreatedAt)]++
	}

	keys := make([]string, 0, len(byWeek))
	for key := range byWeek {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	if len(keys) > trendWeeks {
		keys = keys[len(keys)-trendWeeks:]
	}

	points := make([]domain.WeeklyPoint, 0, len(keys))
	for _, key := range keys {
		points = append(points, domain.WeeklyPoint{Week: key, Volume: byWeek[key]})
	}
	return points
}

func monthlyPerformance(byPeriod map[string]*periodTotals) []domain.MonthlyPoint {
	keys := make([]string, 0, len(byPeriod))
	for key := range byPeriod {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	if len(keys) > chartPeriods {
		keys = keys[len(keys)-chartPeriods:]
	}

	points := make([]domain.MonthlyPoint, 0, len(keys))
	for _, key := range keys {
		totals := byPeriod[key]
		points = append(points, domain.MonthlyPoint{
			Period:   key,
			Invoiced: totals.invoiced.InexactFloat64(),
			Benefit:  totals.benefit.InexactFloat64(),
		})
	}
	return points
}

func recentRequests(records []billingdomain.BillingRequest) []domain.RecentRequest {
	sorted := make([]billingdomain.BillingRequest, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})
	if len(sorted) > recentRequestCap {
		sorted = sorted[:recentRequestCap]
	}

	recent := make([]domain.RecentRequest, 0, len(sorted))
	for _, rec := range sorted {
		item := domain.RecentRequest{
			ID:              rec.ID.String(),
			Platform:        rec.Platform,
			State:           string(rec.State),
			RequestedAmount: rec.RequestedAmount.InexactFloat64(),
			CreatedAt:       rec.CreatedAt,
		}
		if rec.TotalInvoiced.Valid {
			item.TotalInvoiced = rec.TotalInvoiced.Decimal.InexactFloat64()
		} else {
			// No fiscal data yet; the requested amount is the best
			// effective figure.
			item.TotalInvoiced = rec.RequestedAmount.InexactFloat64()
		}
		recent = append(recent, item)
	}
	return recent
}
