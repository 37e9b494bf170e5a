package model

import (
	"time"

	"github.com/google/uuid"
)

// StatsSnapshot is the dashboard payload. JSON names are part of the web client contract.
type StatsSnapshot struct {
	TotalProducts        int64           `json:"totalProducts"`
	TotalCategories      int64           `json:"totalCategories"`
	TotalSuppliers       int64           `json:"totalSuppliers"`
	LowStockProducts     int64           `json:"lowStockProducts"`
	TotalStockValue      float64         `json:"totalStockValue"`
	RecentMovements      []StockMovement `json:"recentMovements"`
	CategoryDistribution []CategoryCount `json:"categoryDistribution"`
	StockTrends          []StockTrendDay `json:"stockTrends"`
}

// EmptyStatsSnapshot is the zeroed snapshot served when the aggregation fails.
// Lists are empty, not null, so clients can iterate them unconditionally.
func EmptyStatsSnapshot() StatsSnapshot {
	return StatsSnapshot{
		RecentMovements:      []StockMovement{},
		CategoryDistribution: []CategoryCount{},
		StockTrends:          []StockTrendDay{},
	}
}

type CategoryCount struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Value int64     `json:"value"`
}

// StockTrendDay holds the inbound and outbound volume of one calendar day.
type StockTrendDay struct {
	Day  time.Time `json:"-"`
	Date string    `json:"date"`
	In   int64     `json:"in"`
	Out  int64     `json:"out"`
}

// TrendDateLayout renders days like "Jan 2".
const TrendDateLayout = "Jan 2"
