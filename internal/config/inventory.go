package config

import (
	"fmt"
	"time"
)

type Inventory struct {
	// QueryTimeout bounds every service operation that touches storage.
	QueryTimeout    time.Duration `env:"INVENTORY_QUERY_TIMEOUT" envDefault:"5s"`
	ReportTimezone  string        `env:"INVENTORY_REPORT_TIMEZONE" envDefault:"UTC"`
	RecentMovements int           `env:"INVENTORY_RECENT_MOVEMENTS" envDefault:"10"`
	TrendDays       int           `env:"INVENTORY_TREND_DAYS" envDefault:"7"`
	StatsCacheTTL   time.Duration `env:"INVENTORY_STATS_CACHE_TTL" envDefault:"30s"`
}

// Location resolves ReportTimezone; trend days are bucketed in this zone.
func (c Inventory) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.ReportTimezone)
	if err != nil {
		return nil, fmt.Errorf("load report timezone %q: %w", c.ReportTimezone, err)
	}
	return loc, nil
}
