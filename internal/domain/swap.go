package domain

import (
	"strings"
	"time"
)

// DEX protocol tags as they appear in the dex_pools dimension.
const (
	ProtocolUniswapV2 = "Uniswap V2"
	ProtocolUniswapV3 = "Uniswap V3"
)

// SwapEventTopic is the event-signature hash of the two-sided
// constant-product swap event:
// Swap(address,uint256,uint256,uint256,uint256,address).
// Logs whose leading topic differs are not swap events.
const SwapEventTopic = "0xd78ad95fa46c994b6551d0da85fc275fe613ce37657fb8d5e3d130840159d822"

// ZeroAddress is the canonical burn address. Decoded purchases attributed
// to it are rejected.
const ZeroAddress = "0x0000000000000000000000000000000000000000"

// SwapLogRecord is a raw on-chain event log joined with the originating
// transaction's sender. Append-only, externally sourced, never mutated.
type SwapLogRecord struct {
	BlockTimestamp  time.Time
	TransactionHash string
	LogIndex        int
	PoolAddress     string
	Topics          []string // ordered 32-byte hashes, Topics[0] is the signature
	Data            string   // hex-encoded payload, 0x-prefixed
	WalletAddress   string   // transaction originator
}

// CrisisSwap is a SwapLogRecord joined with the PoolCrisisLink whose
// window contains its block date.
type CrisisSwap struct {
	Link PoolCrisisLink
	Swap SwapLogRecord
}

// NormalizeAddress lower-cases and trims an address or hash so that all
// identifier comparisons in the pipeline are case-insensitive.
func NormalizeAddress(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// DayUTC truncates a timestamp to its UTC calendar date. All window and
// price-date comparisons use this truncation.
func DayUTC(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
