package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/hrishiii27/shopify-insights/internal/store"
	"github.com/hrishiii27/shopify-insights/internal/util"

	"go.uber.org/zap"
)

// Sentinel recency for customers who have never ordered.
const neverOrderedDays = 999

// forecastWindowDays is the trailing aggregation window; forecastDays
// is how far the fitted line is projected. minForecastBuckets is the
// hard minimum-sample-size gate.
const (
	forecastWindowDays = 30
	forecastDays       = 7
	minForecastBuckets = 7
)

// Segment names, in classification priority order.
const (
	SegmentChampions          = "Champions"
	SegmentLoyalCustomers     = "Loyal Customers"
	SegmentPotentialLoyalists = "Potential Loyalists"
	SegmentRecentCustomers    = "Recent Customers"
	SegmentPromising          = "Promising"
	SegmentNeedAttention      = "Need Attention"
	SegmentAtRisk             = "At Risk"
	SegmentHibernating        = "Hibernating"
)

var segmentOrder = []string{
	SegmentChampions,
	SegmentLoyalCustomers,
	SegmentPotentialLoyalists,
	SegmentRecentCustomers,
	SegmentPromising,
	SegmentNeedAttention,
	SegmentAtRisk,
	SegmentHibernating,
}

// Trend classifications for the revenue forecast.
const (
	TrendGrowing          = "growing"
	TrendDeclining        = "declining"
	TrendStable           = "stable"
	TrendInsufficientData = "insufficient_data"
)

// SegmentCustomer is one example customer inside a segment, with its
// individual scores.
type SegmentCustomer struct {
	ExternalID int64   `json:"external_id"`
	Name       string  `json:"name"`
	Email      string  `json:"email"`
	TotalSpent float64 `json:"total_spent"`
	Recency    int     `json:"recency"`
	Frequency  int     `json:"frequency"`
	Monetary   int     `json:"monetary"`
}

// Segment aggregates all customers classified into one RFM segment.
type Segment struct {
	Name         string            `json:"name"`
	Count        int               `json:"count"`
	TotalValue   float64           `json:"total_value"`
	AverageValue float64           `json:"average_value"`
	Examples     []SegmentCustomer `json:"examples"`
}

// SegmentationResult is the full RFM segmentation view.
type SegmentationResult struct {
	GeneratedAt    time.Time `json:"generated_at"`
	TotalCustomers int       `json:"total_customers"`
	Segments       []Segment `json:"segments"`
}

// ForecastPoint is one projected future day.
type ForecastPoint struct {
	Date    string  `json:"date"`
	Revenue float64 `json:"revenue"`
	// Confidence is a display heuristic derived from residual spread,
	// not a statistical confidence interval.
	Confidence float64 `json:"confidence"`
}

// ForecastResult is the full revenue forecast view.
type ForecastResult struct {
	GeneratedAt         time.Time       `json:"generated_at"`
	Trend               string          `json:"trend"`
	AverageDailyRevenue float64         `json:"average_daily_revenue"`
	WeekOverWeekGrowth  float64         `json:"week_over_week_growth"`
	Forecast            []ForecastPoint `json:"forecast"`
}

// Analytics derives segmentation and forecasting views from the tenant
// record store. Both views are recomputed on every request; there is no
// caching layer.
type Analytics struct {
	store  *store.Store
	logger *zap.Logger
}

// NewAnalytics creates a new analytics engine
func NewAnalytics(store *store.Store) *Analytics {
	return &Analytics{
		store:  store,
		logger: util.GetLogger(),
	}
}

// CustomerSegments computes the RFM segmentation for a tenant
func (a *Analytics) CustomerSegments(ctx context.Context, tenantID int64) (*SegmentationResult, error) {
	ctx, span := util.StartSpan(ctx, "Analytics.CustomerSegments")
	defer span.End()

	start := time.Now()
	defer func() {
		util.AnalyticsRequestDuration.WithLabelValues("segments").Observe(time.Since(start).Seconds())
	}()

	rows, err := a.store.GetCustomerRFMRows(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to load customers for segmentation: %w", err)
	}

	result := buildSegments(rows, time.Now())
	return result, nil
}

// RevenueForecast computes the trailing-window revenue forecast for a
// tenant
func (a *Analytics) RevenueForecast(ctx context.Context, tenantID int64) (*ForecastResult, error) {
	ctx, span := util.StartSpan(ctx, "Analytics.RevenueForecast")
	defer span.End()

	start := time.Now()
	defer func() {
		util.AnalyticsRequestDuration.WithLabelValues("forecast").Observe(time.Since(start).Seconds())
	}()

	now := time.Now()
	since := now.AddDate(0, 0, -forecastWindowDays)
	buckets, err := a.store.GetDailyRevenue(ctx, tenantID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to load revenue buckets: %w", err)
	}

	result := buildForecast(buckets, now)
	return result, nil
}

// scoreRecency maps days since the last order onto a 1-5 score
func scoreRecency(daysSinceLastOrder int) int {
	switch {
	case daysSinceLastOrder <= 7:
		return 5
	case daysSinceLastOrder <= 30:
		return 4
	case daysSinceLastOrder <= 90:
		return 3
	case daysSinceLastOrder <= 180:
		return 2
	default:
		return 1
	}
}

// scoreFrequency maps the external orders count onto a 1-5 score
func scoreFrequency(ordersCount int) int {
	switch {
	case ordersCount >= 10:
		return 5
	case ordersCount >= 5:
		return 4
	case ordersCount >= 3:
		return 3
	case ordersCount >= 2:
		return 2
	default:
		return 1
	}
}

// scoreMonetary maps the external total spent onto a 1-5 score
func scoreMonetary(totalSpent float64) int {
	switch {
	case totalSpent >= 1000:
		return 5
	case totalSpent >= 500:
		return 4
	case totalSpent >= 200:
		return 3
	case totalSpent >= 50:
		return 2
	default:
		return 1
	}
}

// classifySegment assigns a segment via a priority-ordered decision
// list; the first matching rule wins.
func classifySegment(r, f, m int) string {
	switch {
	case r >= 4 && f >= 4 && m >= 4:
		return SegmentChampions
	case f >= 4 && m >= 3:
		return SegmentLoyalCustomers
	case r >= 4 && f >= 2:
		return SegmentPotentialLoyalists
	case r >= 4 && f == 1:
		return SegmentRecentCustomers
	case r >= 3 && m >= 2:
		return SegmentPromising
	case r <= 2 && f >= 3:
		return SegmentNeedAttention
	case r <= 2 && f >= 2:
		return SegmentAtRisk
	default:
		return SegmentHibernating
	}
}

// buildSegments scores and classifies every customer and aggregates
// the non-empty segments in priority order. Examples are the first
// three customers encountered per segment, not the highest-value ones.
func buildSegments(rows []store.CustomerRFMRow, now time.Time) *SegmentationResult {
	byName := make(map[string]*Segment)

	for _, row := range rows {
		days := neverOrderedDays
		if row.LastOrderAt.Valid {
			days = int(now.Sub(row.LastOrderAt.Time).Hours() / 24)
		}

		r := scoreRecency(days)
		f := scoreFrequency(row.OrdersCount)
		m := scoreMonetary(row.TotalSpent)
		name := classifySegment(r, f, m)

		seg, ok := byName[name]
		if !ok {
			seg = &Segment{Name: name}
			byName[name] = seg
		}

		seg.Count++
		seg.TotalValue += row.TotalSpent
		if len(seg.Examples) < 3 {
			seg.Examples = append(seg.Examples, SegmentCustomer{
				ExternalID: row.ExternalID,
				Name:       customerDisplayName(row.FirstName, row.LastName),
				Email:      row.Email,
				TotalSpent: round2(row.TotalSpent),
				Recency:    r,
				Frequency:  f,
				Monetary:   m,
			})
		}
	}

	result := &SegmentationResult{
		GeneratedAt:    now,
		TotalCustomers: len(rows),
		Segments:       make([]Segment, 0, len(byName)),
	}
	for _, name := range segmentOrder {
		seg, ok := byName[name]
		if !ok {
			continue
		}
		seg.TotalValue = round2(seg.TotalValue)
		seg.AverageValue = round2(seg.TotalValue / float64(seg.Count))
		result.Segments = append(result.Segments, *seg)
	}
	return result
}

// buildForecast fits an ordinary least-squares line to the daily
// revenue buckets and projects it forward. Fewer than
// minForecastBuckets buckets yields an explicit insufficient_data
// result regardless of revenue magnitude.
func buildForecast(buckets []store.DailyRevenue, now time.Time) *ForecastResult {
	result := &ForecastResult{
		GeneratedAt: now,
		Forecast:    []ForecastPoint{},
	}

	n := len(buckets)
	if n < minForecastBuckets {
		result.Trend = TrendInsufficientData
		return result
	}

	var sumY float64
	for _, b := range buckets {
		sumY += b.Revenue
	}
	mean := sumY / float64(n)

	slope, intercept := linearRegression(buckets)

	// Residual spread over the fitted line.
	var residualSq float64
	for i, b := range buckets {
		fitted := intercept + slope*float64(i)
		residualSq += (b.Revenue - fitted) * (b.Revenue - fitted)
	}
	stdDev := math.Sqrt(residualSq / float64(n))

	confidence := 0.0
	if mean > 0 {
		confidence = clamp(100-50*stdDev/mean, 0, 100)
	}

	lastDay := buckets[n-1].Day
	for i := 1; i <= forecastDays; i++ {
		projected := intercept + slope*float64(n-1+i)
		if projected < 0 {
			projected = 0
		}
		result.Forecast = append(result.Forecast, ForecastPoint{
			Date:       lastDay.AddDate(0, 0, i).Format("2006-01-02"),
			Revenue:    round2(projected),
			Confidence: round2(confidence),
		})
	}

	result.AverageDailyRevenue = round2(mean)
	result.Trend = classifyTrend(slope, mean)
	result.WeekOverWeekGrowth = round2(weekOverWeekGrowth(buckets, now))
	return result
}

// linearRegression fits revenue against the 0-based bucket index
func linearRegression(buckets []store.DailyRevenue) (slope, intercept float64) {
	n := float64(len(buckets))
	var sumX, sumY, sumXY, sumXX float64
	for i, b := range buckets {
		x := float64(i)
		sumX += x
		sumY += b.Revenue
		sumXY += x * b.Revenue
		sumXX += x * x
	}

	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return 0, sumY / n
	}
	slope = (n*sumXY - sumX*sumY) / denom
	intercept = (sumY - slope*sumX) / n
	return slope, intercept
}

// classifyTrend compares the regression slope to 1% of mean daily
// revenue
func classifyTrend(slope, meanRevenue float64) string {
	threshold := 0.01 * meanRevenue
	switch {
	case slope > threshold:
		return TrendGrowing
	case slope < -threshold:
		return TrendDeclining
	default:
		return TrendStable
	}
}

// weekOverWeekGrowth compares the trailing 7 calendar days to the 7
// days before them. A zero prior window yields 0 when the last window
// is also zero, else 100.
func weekOverWeekGrowth(buckets []store.DailyRevenue, now time.Time) float64 {
	weekAgo := now.AddDate(0, 0, -7)
	twoWeeksAgo := now.AddDate(0, 0, -14)

	var lastWeek, priorWeek float64
	for _, b := range buckets {
		switch {
		case b.Day.After(weekAgo):
			lastWeek += b.Revenue
		case b.Day.After(twoWeeksAgo):
			priorWeek += b.Revenue
		}
	}

	if priorWeek == 0 {
		if lastWeek == 0 {
			return 0
		}
		return 100
	}
	return (lastWeek/priorWeek - 1) * 100
}

func customerDisplayName(first, last string) string {
	name := first
	if last != "" {
		if name != "" {
			name += " "
		}
		name += last
	}
	if name == "" {
		return "Guest"
	}
	return name
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
