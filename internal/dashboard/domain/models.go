// Package domain contains the dashboard summary structures.
package domain

import (
	"context"
	"time"
)

// StatMetric is a headline number with its change versus the previous
// calendar month.
type StatMetric struct {
	Value            float64 `json:"value"`
	PercentageChange int     `json:"percentage_change"`
}

// Summary holds the headline metrics of the dashboard.
type Summary struct {
	TotalInvoiced      StatMetric `json:"total_invoiced"`
	WithholdingBenefit StatMetric `json:"withholding_benefit"`
	InvoicesIssued     StatMetric `json:"invoices_issued"`
	ActiveRequests     int        `json:"active_requests"`
}

// PlatformShare is one platform's share of total request count.
type PlatformShare struct {
	Name       string `json:"name"`
	Percentage int    `json:"percentage"`
}

// BusinessNetwork summarizes the reach of the actor's scope: how many
// distinct platforms and company regions the requests span, plus the
// top platforms by share.
type BusinessNetwork struct {
	ActivePlatforms int             `json:"active_platforms"`
	Regions         int             `json:"regions"`
	TopPlatforms    []PlatformShare `json:"top_platforms"`
}

// MonthlyPoint is one period of the performance chart. Period is
// year-qualified ("2026-08") so totals from different years never collide.
type MonthlyPoint struct {
	Period   string  `json:"period"`
	Invoiced float64 `json:"invoiced"`
	Benefit  float64 `json:"benefit"`
}

// WeeklyPoint is one ISO week of request volume ("2026-W34").
type WeeklyPoint struct {
	Week   string `json:"week"`
	Volume int    `json:"volume"`
}

// Charts groups the dashboard time series.
type Charts struct {
	MonthlyPerformance []MonthlyPoint `json:"monthly_performance"`
	WeeklyTrend        []WeeklyPoint  `json:"weekly_trend"`
}

// RecentRequest is a request annotated with its effective monetary fields.
type RecentRequest struct {
	ID              string    `json:"id"`
	Platform        string    `json:"platform"`
	State           string    `json:"state"`
	RequestedAmount float64   `json:"requested_amount"`
	TotalInvoiced   float64   `json:"total_invoiced"`
	CreatedAt       time.Time `json:"created_at"`
}

// Stats is the full dashboard payload.
type Stats struct {
	Summary         Summary         `json:"summary"`
	BusinessNetwork BusinessNetwork `json:"business_network"`
	Charts          Charts          `json:"charts"`
	RecentRequests  []RecentRequest `json:"recent_requests"`
}

// Service computes dashboard stats for the calling actor's scope: a company
// sees its own requests, an admin sees the whole system.
type Service interface {
	Stats(ctx context.Context) (Stats, error)
}
