package service

import (
	"database/sql"
	"testing"
	"time"

	"github.com/hrishiii27/shopify-insights/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRFMScores(t *testing.T) {
	assert.Equal(t, 5, scoreRecency(5))
	assert.Equal(t, 5, scoreRecency(7))
	assert.Equal(t, 4, scoreRecency(8))
	assert.Equal(t, 4, scoreRecency(30))
	assert.Equal(t, 3, scoreRecency(90))
	assert.Equal(t, 2, scoreRecency(180))
	assert.Equal(t, 1, scoreRecency(181))
	assert.Equal(t, 1, scoreRecency(neverOrderedDays))

	assert.Equal(t, 5, scoreFrequency(10))
	assert.Equal(t, 4, scoreFrequency(5))
	assert.Equal(t, 3, scoreFrequency(3))
	assert.Equal(t, 2, scoreFrequency(2))
	assert.Equal(t, 1, scoreFrequency(1))
	assert.Equal(t, 1, scoreFrequency(0))

	assert.Equal(t, 5, scoreMonetary(1000))
	assert.Equal(t, 4, scoreMonetary(500))
	assert.Equal(t, 3, scoreMonetary(200))
	assert.Equal(t, 2, scoreMonetary(50))
	assert.Equal(t, 1, scoreMonetary(49.99))
}

func TestClassifySegment(t *testing.T) {
	assert.Equal(t, SegmentChampions, classifySegment(5, 5, 5))
	assert.Equal(t, SegmentChampions, classifySegment(4, 4, 4))
	// F and M qualify for Loyal but R=4, F=4, M=3 misses Champions on M
	assert.Equal(t, SegmentLoyalCustomers, classifySegment(4, 4, 3))
	assert.Equal(t, SegmentLoyalCustomers, classifySegment(1, 5, 3))
	assert.Equal(t, SegmentPotentialLoyalists, classifySegment(5, 2, 1))
	assert.Equal(t, SegmentRecentCustomers, classifySegment(5, 1, 1))
	assert.Equal(t, SegmentPromising, classifySegment(3, 1, 2))
	assert.Equal(t, SegmentNeedAttention, classifySegment(2, 3, 1))
	assert.Equal(t, SegmentAtRisk, classifySegment(1, 2, 1))
	assert.Equal(t, SegmentHibernating, classifySegment(1, 1, 1))
	assert.Equal(t, SegmentHibernating, classifySegment(3, 1, 1))
}

func TestBuildSegmentsChampion(t *testing.T) {
	now := time.Now()
	rows := []store.CustomerRFMRow{
		{
			ExternalID:  101,
			FirstName:   "Ada",
			LastName:    "Lovelace",
			TotalSpent:  1000,
			OrdersCount: 10,
			LastOrderAt: sql.NullTime{Time: now.AddDate(0, 0, -5), Valid: true},
		},
	}

	result := buildSegments(rows, now)
	require.Len(t, result.Segments, 1)

	seg := result.Segments[0]
	assert.Equal(t, SegmentChampions, seg.Name)
	assert.Equal(t, 1, seg.Count)
	assert.Equal(t, 1000.0, seg.TotalValue)
	assert.Equal(t, 1000.0, seg.AverageValue)

	require.Len(t, seg.Examples, 1)
	example := seg.Examples[0]
	assert.Equal(t, "Ada Lovelace", example.Name)
	assert.Equal(t, 5, example.Recency)
	assert.Equal(t, 5, example.Frequency)
	assert.Equal(t, 5, example.Monetary)
}

func TestBuildSegmentsNeverOrdered(t *testing.T) {
	now := time.Now()
	rows := []store.CustomerRFMRow{
		{ExternalID: 201, Email: "ghost@example.com"},
	}

	result := buildSegments(rows, now)
	require.Len(t, result.Segments, 1)
	assert.Equal(t, SegmentHibernating, result.Segments[0].Name)

	require.Len(t, result.Segments[0].Examples, 1)
	example := result.Segments[0].Examples[0]
	assert.Equal(t, 1, example.Recency)
	assert.Equal(t, 1, example.Frequency)
	assert.Equal(t, 1, example.Monetary)
}

func TestBuildSegmentsExampleCap(t *testing.T) {
	now := time.Now()
	var rows []store.CustomerRFMRow
	for i := 0; i < 5; i++ {
		rows = append(rows, store.CustomerRFMRow{
			ExternalID:  int64(300 + i),
			TotalSpent:  float64(10 * (i + 1)),
			OrdersCount: 1,
		})
	}

	result := buildSegments(rows, now)
	require.Len(t, result.Segments, 1)

	seg := result.Segments[0]
	assert.Equal(t, 5, seg.Count)
	// First-encountered, not highest-value.
	require.Len(t, seg.Examples, 3)
	assert.Equal(t, int64(300), seg.Examples[0].ExternalID)
	assert.Equal(t, int64(301), seg.Examples[1].ExternalID)
	assert.Equal(t, int64(302), seg.Examples[2].ExternalID)
	assert.Equal(t, 150.0, seg.TotalValue)
	assert.Equal(t, 30.0, seg.AverageValue)
}

func TestBuildForecastInsufficientData(t *testing.T) {
	now := time.Now()
	var buckets []store.DailyRevenue
	for i := 0; i < 6; i++ {
		buckets = append(buckets, store.DailyRevenue{
			Day:     now.AddDate(0, 0, -6+i),
			Revenue: 100000,
		})
	}

	result := buildForecast(buckets, now)
	assert.Equal(t, TrendInsufficientData, result.Trend)
	assert.Empty(t, result.Forecast)
}

func TestBuildForecastLinearSeries(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

	// Perfectly linear: day i revenue = 100 + 10*i.
	var buckets []store.DailyRevenue
	for i := 0; i < 10; i++ {
		buckets = append(buckets, store.DailyRevenue{
			Day:        now.AddDate(0, 0, i-10),
			Revenue:    100 + 10*float64(i),
			OrderCount: 1,
		})
	}

	slope, intercept := linearRegression(buckets)
	assert.InDelta(t, 10.0, slope, 1e-9)
	assert.InDelta(t, 100.0, intercept, 1e-9)

	result := buildForecast(buckets, now)
	assert.Equal(t, TrendGrowing, result.Trend)
	require.Len(t, result.Forecast, 7)

	// Zero residuals: confidence pegged at 100, projections continue
	// the line.
	for i, point := range result.Forecast {
		assert.InDelta(t, 100.0, point.Confidence, 1e-9)
		expected := 100 + 10*float64(9+i+1)
		assert.InDelta(t, expected, point.Revenue, 1e-9)
	}
}

func TestBuildForecastStableTrend(t *testing.T) {
	now := time.Now()
	var buckets []store.DailyRevenue
	for i := 0; i < 15; i++ {
		buckets = append(buckets, store.DailyRevenue{
			Day:     now.AddDate(0, 0, i-14),
			Revenue: 500,
		})
	}

	result := buildForecast(buckets, now)
	assert.Equal(t, TrendStable, result.Trend)
	assert.Equal(t, 500.0, result.AverageDailyRevenue)
	assert.InDelta(t, 0.0, result.WeekOverWeekGrowth, 1e-9)
}

func TestWeekOverWeekGrowth(t *testing.T) {
	now := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)

	buckets := []store.DailyRevenue{
		{Day: now.AddDate(0, 0, -10), Revenue: 100},
		{Day: now.AddDate(0, 0, -9), Revenue: 100},
		{Day: now.AddDate(0, 0, -3), Revenue: 150},
		{Day: now.AddDate(0, 0, -2), Revenue: 150},
	}
	assert.InDelta(t, 50.0, weekOverWeekGrowth(buckets, now), 1e-9)

	// Zero prior window.
	onlyRecent := []store.DailyRevenue{
		{Day: now.AddDate(0, 0, -2), Revenue: 300},
	}
	assert.Equal(t, 100.0, weekOverWeekGrowth(onlyRecent, now))
	assert.Equal(t, 0.0, weekOverWeekGrowth(nil, now))
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 3.14, round2(3.14159))
	assert.Equal(t, 100.0, round2(99.999))
	assert.Equal(t, 0.0, round2(0))
}
