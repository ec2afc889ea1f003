package service

import (
	"testing"
	"time"

	billingdomain "github.com/adlift/cashout/internal/billingrequest/domain"
	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var aggNow = time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)

func request(id int64, platform string, state billingdomain.State, createdAt, updatedAt time.Time) billingdomain.BillingRequest {
	return billingdomain.BillingRequest{
		ID:              snowflake.ID(id),
		Platform:        platform,
		RequestedAmount: decimal.NewFromInt(100),
		State:           state,
		CreatedAt:       createdAt,
		UpdatedAt:       updatedAt,
	}
}

func invoiced(id int64, platform string, state billingdomain.State, updatedAt time.Time, total, benefit string) billingdomain.BillingRequest {
	rec := request(id, platform, state, updatedAt.AddDate(0, 0, -1), updatedAt)
	rec.TotalInvoiced = decimal.NewNullDecimal(decimal.RequireFromString(total))
	rec.WithholdingOffset = decimal.NewNullDecimal(decimal.RequireFromString(benefit))
	return rec
}

func TestCalcPct(t *testing.T) {
	cases := []struct {
		name     string
		current  float64
		previous float64
		want     int
	}{
		{"Both Zero", 0, 0, 0},
		{"From Zero", 150, 0, 100},
		{"Doubled", 200, 100, 100},
		{"Halved", 50, 100, -50},
		{"Rounded", 101, 3, 3267},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, CalcPct(tc.current, tc.previous))
		})
	}
}

func TestAggregateSummary(t *testing.T) {
	thisMonth := time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC)
	lastMonth := time.Date(2026, 7, 10, 0, 0, 0, 0, time.UTC)

	records := []billingdomain.BillingRequest{
		invoiced(1, "meta", billingdomain.StateCompleted, thisMonth, "1200.00", "60.00"),
		invoiced(2, "meta", billingdomain.StatePaid, thisMonth, "600.00", "30.00"),
		invoiced(3, "google", billingdomain.StateCompleted, lastMonth, "900.00", "45.00"),
		request(4, "google", billingdomain.StateRequestCreated, thisMonth, thisMonth),
		request(5, "tiktok", billingdomain.StateCalculated, thisMonth, thisMonth),
		request(6, "meta", billingdomain.StateError, thisMonth, thisMonth),
	}

	stats := Aggregate(records, nil, aggNow)

	assert.InDelta(t, 1800.0, stats.Summary.TotalInvoiced.Value, 1e-9)
	assert.Equal(t, 100, stats.Summary.TotalInvoiced.PercentageChange)
	assert.InDelta(t, 90.0, stats.Summary.WithholdingBenefit.Value, 1e-9)
	assert.Equal(t, 100, stats.Summary.WithholdingBenefit.PercentageChange)
	assert.InDelta(t, 2.0, stats.Summary.InvoicesIssued.Value, 1e-9)
	assert.Equal(t, 100, stats.Summary.InvoicesIssued.PercentageChange)

	// COMPLETED and ERROR are terminal; PAID still counts as active.
	assert.Equal(t, 3, stats.Summary.ActiveRequests)
}

func TestAggregateActiveCount(t *testing.T) {
	now := aggNow
	records := []billingdomain.BillingRequest{
		request(1, "meta", billingdomain.StateRequestCreated, now, now),
		request(2, "meta", billingdomain.StateCalculated, now, now),
		request(3, "meta", billingdomain.StateCompleted, now, now),
		request(4, "meta", billingdomain.StateError, now, now),
		request(5, "meta", billingdomain.StatePaid, now, now),
	}
	stats := Aggregate(records, nil, now)
	assert.Equal(t, 3, stats.Summary.ActiveRequests)
}

func TestTopPlatforms(t *testing.T) {
	t.Run("Counts And Order", func(t *testing.T) {
		now := aggNow
		records := []billingdomain.BillingRequest{
			request(1, "meta", billingdomain.StateRequestCreated, now, now),
			request(2, "meta", billingdomain.StateRequestCreated, now, now),
			request(3, "meta", billingdomain.StateRequestCreated, now, now),
			request(4, "google", billingdomain.StateRequestCreated, now, now),
			request(5, "google", billingdomain.StateRequestCreated, now, now),
			request(6, "tiktok", billingdomain.StateRequestCreated, now, now),
			request(7, "other", billingdomain.StateRequestCreated, now, now),
		}
		stats := Aggregate(records, nil, now)

		require.Len(t, stats.BusinessNetwork.TopPlatforms, 3)
		assert.Equal(t, "meta", stats.BusinessNetwork.TopPlatforms[0].Name)
		assert.Equal(t, 43, stats.BusinessNetwork.TopPlatforms[0].Percentage)
		assert.Equal(t, "google", stats.BusinessNetwork.TopPlatforms[1].Name)
		assert.Equal(t, 29, stats.BusinessNetwork.TopPlatforms[1].Percentage)
		assert.Equal(t, "tiktok", stats.BusinessNetwork.TopPlatforms[2].Name)
	})

	t.Run("Ties Keep Input Order", func(t *testing.T) {
		now := aggNow
		records := []billingdomain.BillingRequest{
			request(1, "tiktok", billingdomain.StateRequestCreated, now, now),
			request(2, "meta", billingdomain.StateRequestCreated, now, now),
			request(3, "google", billingdomain.StateRequestCreated, now, now),
		}
		stats := Aggregate(records, nil, now)

		require.Len(t, stats.BusinessNetwork.TopPlatforms, 3)
		assert.Equal(t, "tiktok", stats.BusinessNetwork.TopPlatforms[0].Name)
		assert.Equal(t, "meta", stats.BusinessNetwork.TopPlatforms[1].Name)
		assert.Equal(t, "google", stats.BusinessNetwork.TopPlatforms[2].Name)
	})

	t.Run("Empty Input", func(t *testing.T) {
		stats := Aggregate(nil, nil, aggNow)
		assert.Empty(t, stats.BusinessNetwork.TopPlatforms)
		assert.Equal(t, 0, stats.Summary.ActiveRequests)
		assert.Equal(t, 0, stats.Summary.TotalInvoiced.PercentageChange)
	})
}

func TestMonthlyPerformance(t *testing.T) {
	t.Run("Year Qualified Periods", func(t *testing.T) {
		// August 2025 and August 2026 must stay separate buckets.
		records := []billingdomain.BillingRequest{
			invoiced(1, "meta", billingdomain.StateCompleted, time.Date(2025, 8, 5, 0, 0, 0, 0, time.UTC), "100.00", "5.00"),
			invoiced(2, "meta", billingdomain.StateCompleted, time.Date(2026, 8, 5, 0, 0, 0, 0, time.UTC), "200.00", "10.00"),
		}
		stats := Aggregate(records, nil, aggNow)

		require.Len(t, stats.Charts.MonthlyPerformance, 2)
		assert.Equal(t, "2025-08", stats.Charts.MonthlyPerformance[0].Period)
		assert.InDelta(t, 100.0, stats.Charts.MonthlyPerformance[0].Invoiced, 1e-9)
		assert.Equal(t, "2026-08", stats.Charts.MonthlyPerformance[1].Period)
		assert.InDelta(t, 200.0, stats.Charts.MonthlyPerformance[1].Invoiced, 1e-9)
	})

	t.Run("Chart Keeps Last Six Periods", func(t *testing.T) {
		var records []billingdomain.BillingRequest
		for i := 0; i < 9; i++ {
			at := time.Date(2026, time.Month(1+i), 5, 0, 0, 0, 0, time.UTC)
			records = append(records, invoiced(int64(i+1), "meta", billingdomain.StateCompleted, at, "100.00", "5.00"))
		}
		stats := Aggregate(records, nil, aggNow)

		require.Len(t, stats.Charts.MonthlyPerformance, 6)
		assert.Equal(t, "2026-04", stats.Charts.MonthlyPerformance[0].Period)
		assert.Equal(t, "2026-09", stats.Charts.MonthlyPerformance[5].Period)
	})
}

func TestWeeklyTrend(t *testing.T) {
	t.Run("Counts By ISO Week", func(t *testing.T) {
		// Aug 10-16 2026 is ISO week 33; Aug 17-23 is week 34.
		week33 := time.Date(2026, 8, 12, 0, 0, 0, 0, time.UTC)
		week34 := time.Date(2026, 8, 19, 0, 0, 0, 0, time.UTC)
		records := []billingdomain.BillingRequest{
			request(1, "meta", billingdomain.StateRequestCreated, week33, week33),
			request(2, "meta", billingdomain.StateRequestCreated, week33, week33),
			request(3, "google", billingdomain.StateRequestCreated, week34, week34),
		}
		stats := Aggregate(records, nil, aggNow)

		require.Len(t, stats.Charts.WeeklyTrend, 2)
		assert.Equal(t, "2026-W33", stats.Charts.WeeklyTrend[0].Week)
		assert.Equal(t, 2, stats.Charts.WeeklyTrend[0].Volume)
		assert.Equal(t, "2026-W34", stats.Charts.WeeklyTrend[1].Week)
		assert.Equal(t, 1, stats.Charts.WeeklyTrend[1].Volume)
	})

	t.Run("Keeps Last Six Weeks", func(t *testing.T) {
		var records []billingdomain.BillingRequest
		for i := 0; i < 9; i++ {
			at := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, 7*i)
			records = append(records, request(int64(i+1), "meta", billingdomain.StateRequestCreated, at, at))
		}
		stats := Aggregate(records, nil, aggNow)

		require.Len(t, stats.Charts.WeeklyTrend, 6)
		for _, point := range stats.Charts.WeeklyTrend {
			assert.Equal(t, 1, point.Volume)
		}
	})
}

func TestBusinessNetwork(t *testing.T) {
	now := aggNow
	records := []billingdomain.BillingRequest{
		request(1, "meta", billingdomain.StateRequestCreated, now, now),
		request(2, "meta", billingdomain.StateRequestCreated, now, now),
		request(3, "google", billingdomain.StateRequestCreated, now, now),
	}

	t.Run("Distinct Platforms And Regions", func(t *testing.T) {
		stats := Aggregate(records, []string{"ec", "EC ", "pe"}, now)
		assert.Equal(t, 2, stats.BusinessNetwork.ActivePlatforms)
		// Region casing and padding collapse into one entry.
		assert.Equal(t, 2, stats.BusinessNetwork.Regions)
	})

	t.Run("Blank Regions Ignored", func(t *testing.T) {
		stats := Aggregate(records, []string{"", "  "}, now)
		assert.Equal(t, 0, stats.BusinessNetwork.Regions)
	})

	t.Run("Empty Snapshot", func(t *testing.T) {
		stats := Aggregate(nil, nil, now)
		assert.Equal(t, 0, stats.BusinessNetwork.ActivePlatforms)
		assert.Equal(t, 0, stats.BusinessNetwork.Regions)
	})
}

func TestRecentRequests(t *testing.T) {
	t.Run("Newest First Capped At Five", func(t *testing.T) {
		var records []billingdomain.BillingRequest
		for i := 0; i < 7; i++ {
			at := aggNow.Add(time.Duration(i) * time.Hour)
			records = append(records, request(int64(i+1), "meta", billingdomain.StateRequestCreated, at, at))
		}
		stats := Aggregate(records, nil, aggNow)

		require.Len(t, stats.RecentRequests, 5)
		assert.Equal(t, snowflake.ID(7).String(), stats.RecentRequests[0].ID)
		assert.Equal(t, snowflake.ID(3).String(), stats.RecentRequests[4].ID)
	})

	t.Run("Falls Back To Requested Amount", func(t *testing.T) {
		records := []billingdomain.BillingRequest{
			request(1, "meta", billingdomain.StateRequestCreated, aggNow, aggNow),
			invoiced(2, "meta", billingdomain.StateCompleted, aggNow, "1200.00", "60.00"),
		}
		stats := Aggregate(records, nil, aggNow)

		require.Len(t, stats.RecentRequests, 2)
		for _, item := range stats.RecentRequests {
			switch item.ID {
			case snowflake.ID(1).String():
				assert.InDelta(t, 100.0, item.TotalInvoiced, 1e-9)
			case snowflake.ID(2).String():
				assert.InDelta(t, 1200.0, item.TotalInvoiced, 1e-9)
			}
		}
	})
}
