package domain

import "time"

// CrisisEvent describes a negative event for a token and the contrarian
// buy window attached to it. Corresponds to crisis_events in PostgreSQL.
// WindowStart is never after CrisisDate; WindowEnd is never before WindowStart.
type CrisisEvent struct {
	CrisisID     string // unique, e.g. "crisis_001"
	TokenAddress string // 0x-prefixed 40-hex, stored lower-case
	CrisisDate   time.Time
	WindowStart  time.Time
	WindowEnd    time.Time
	CrisisName   string
}

// DexPool is a liquidity pool dimension row. Corresponds to dex_pools
// in PostgreSQL.
type DexPool struct {
	PoolAddress   string
	Token0Address string
	Token1Address string
	DexProtocol   string // ProtocolUniswapV2 or ProtocolUniswapV3
}

// PoolCrisisLink associates a pool with a crisis whose token it trades.
// Produced by joining dex_pools against crisis_events on token0/token1.
// One pool may link to multiple crises if it trades multiple flagged tokens.
type PoolCrisisLink struct {
	PoolAddress   string
	Token0Address string
	Token1Address string
	DexProtocol   string
	CrisisID      string
	CrisisName    string
	CrisisToken   string // the crisis token traded by this pool
	WindowStart   time.Time
	WindowEnd     time.Time
}
