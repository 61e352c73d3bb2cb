// Package window associates raw swap logs with the crisis buy windows
// of the pools they occurred in.
package window

import (
	"phoenix-flipper/internal/domain"
)

// Filter selects, for each pool-crisis link, the swaps whose UTC calendar
// date falls inside [WindowStart, WindowEnd] inclusive.
//
// A swap can appear in zero, one, or multiple CrisisSwaps: a pool linked
// to several crises contributes its swaps to every matching window.
// Empty input at either side yields an empty result.
func Filter(swaps []*domain.SwapLogRecord, links []*domain.PoolCrisisLink) []*domain.CrisisSwap {
	if len(swaps) == 0 || len(links) == 0 {
		return nil
	}

	// Index swaps by normalized pool address.
	byPool := make(map[string][]*domain.SwapLogRecord, len(swaps))
	for _, s := range swaps {
		pool := domain.NormalizeAddress(s.PoolAddress)
		byPool[pool] = append(byPool[pool], s)
	}

	var out []*domain.CrisisSwap
	for _, link := range links {
		poolSwaps := byPool[domain.NormalizeAddress(link.PoolAddress)]
		if len(poolSwaps) == 0 {
			continue
		}

		start := domain.DayUTC(link.WindowStart)
		end := domain.DayUTC(link.WindowEnd)

		for _, s := range poolSwaps {
			day := domain.DayUTC(s.BlockTimestamp)
			if day.Before(start) || day.After(end) {
				continue
			}
			out = append(out, &domain.CrisisSwap{Link: *link, Swap: *s})
		}
	}

	return out
}
