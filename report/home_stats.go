package report

import (
	"sort"
	"time"

	"github.com/pdcgo/collection_service/collection_core"
	"github.com/pdcgo/collection_service/collection_model"
	"github.com/shopspring/decimal"
)

const recentPaymentCount = 5

type HomeStats struct {
	WeekTotal  decimal.Decimal `json:"week_total"`
	WeekCount  int             `json:"week_count"`
	TodayTotal decimal.Decimal `json:"today_total"`
	TodayCount int             `json:"today_count"`
	SaleCount  int             `json:"sale_count"`
	PaidSales  int             `json:"paid_sales"`

	// Percentage of zone accounts with at least one collected payment.
	Percentage float64 `json:"percentage"`

	Recent collection_model.PaymentList `json:"recent"`
}

// ComputeHomeStats summarizes the week payments against the zone accounts.
// payments are expected to start at the initial load mark.
func ComputeHomeStats(payments collection_model.PaymentList, sales []*collection_model.Sale, now time.Time, loc *time.Location) *HomeStats {
	start, end := collection_core.DayRange(now, loc)

	week := Summarize(payments, CollectedFilter, loc)

	today := collection_model.PaymentList{}
	paidSales := map[uint]struct{}{}
	for _, pay := range payments {
		if !pay.MethodCode.IsCollected() {
			continue
		}

		paidSales[pay.SaleRef] = struct{}{}
		if !pay.PaidAt.Before(start) && !pay.PaidAt.After(end) {
			today = append(today, pay)
		}
	}
	todaySummary := Summarize(today, CollectedFilter, loc)

	stats := &HomeStats{
		WeekTotal:  week.Total,
		WeekCount:  week.Count,
		TodayTotal: todaySummary.Total,
		TodayCount: todaySummary.Count,
		SaleCount:  len(sales),
		PaidSales:  len(paidSales),
		Recent:     recentPayments(payments),
	}

	if stats.SaleCount > 0 {
		stats.Percentage = float64(stats.PaidSales) / float64(stats.SaleCount) * 100
	}

	return stats
}

func recentPayments(payments collection_model.PaymentList) collection_model.PaymentList {
	recent := make(collection_model.PaymentList, len(payments))
	copy(recent, payments)

	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].PaidAt.After(recent[j].PaidAt)
	})

	if len(recent) > recentPaymentCount {
		recent = recent[:recentPaymentCount]
	}
	return recent
}
