package domain

import "time"

// PriceSample is one row of the daily token price series. The series is
// sparse: days may be missing and tokens may have no rows at all.
// Corresponds to token_price_history in ClickHouse.
type PriceSample struct {
	TokenAddress string
	PriceDate    time.Time // day precision, UTC
	PriceUSD     float64
}
