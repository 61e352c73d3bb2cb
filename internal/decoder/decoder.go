// Package decoder classifies constant-product swap payloads and extracts
// the amount of a target token received by the trader.
package decoder

import (
	"math/big"
	"strings"

	"phoenix-flipper/internal/domain"
)

// Kind classifies a decode attempt. Distinguishing "no purchase" from
// "couldn't parse" from "wrong protocol" keeps batch processing
// error-isolating without collapsing everything into one falsy outcome.
type Kind int

const (
	// NotAPurchase means the payload parsed fine but the swap did not
	// pay out the target token (or the pool doesn't trade it).
	NotAPurchase Kind = iota
	// Purchase means the swap paid out a positive amount of the target token.
	Purchase
	// Malformed means the payload was too short or not valid hex.
	Malformed
	// UnsupportedProtocol means the pool's protocol does not use the
	// constant-product event layout. Such swaps are refused, never
	// decoded with the wrong formula.
	UnsupportedProtocol
)

// Result is the outcome of decoding one swap payload.
// Amount is non-zero only when Kind == Purchase.
type Result struct {
	Kind   Kind
	Amount float64 // target tokens received, scaled by 1e18
}

// IsPurchase reports whether the swap acquired the target token.
// Amount > 0 iff IsPurchase.
func (r Result) IsPurchase() bool {
	return r.Kind == Purchase
}

// The constant-product swap event payload is four consecutive 32-byte
// big-endian unsigned integers: amount0In, amount1In, amount0Out, amount1Out.
const (
	hexCharsPerWord = 64
	// minDataHexLen is the minimum payload length (hex chars after the
	// 0x prefix) for a log to be considered at all.
	minDataHexLen = 130

	fieldAmount0Out = 2
	fieldAmount1Out = 3
)

// tokenDecimals scales raw amounts. Per-token decimals are deliberately
// not looked up; 18 is assumed for every token.
var tokenDecimals = new(big.Float).SetFloat64(1e18)

// Decode determines whether a swap payload represents a purchase of the
// target token and, if so, how much was received.
//
// Only the two-sided constant-product layout is supported. Parse failures
// on individual payloads yield Malformed rather than an error so that one
// bad log can never abort a batch.
func Decode(data, targetToken, token0, token1, dexProtocol string) Result {
	if dexProtocol != domain.ProtocolUniswapV2 {
		return Result{Kind: UnsupportedProtocol}
	}

	target := domain.NormalizeAddress(targetToken)
	t0 := domain.NormalizeAddress(token0)
	t1 := domain.NormalizeAddress(token1)

	var field int
	switch target {
	case t0:
		field = fieldAmount0Out
	case t1:
		field = fieldAmount1Out
	default:
		return Result{Kind: NotAPurchase}
	}

	payload := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(data)), "0x")
	if len(payload) < minDataHexLen {
		return Result{Kind: Malformed}
	}

	raw, ok := word(payload, field)
	if !ok {
		return Result{Kind: Malformed}
	}

	if raw.Sign() == 0 {
		// The trade drained none of the target token: it went the
		// other direction.
		return Result{Kind: NotAPurchase}
	}

	amount, _ := new(big.Float).Quo(new(big.Float).SetInt(raw), tokenDecimals).Float64()
	return Result{Kind: Purchase, Amount: amount}
}

// word extracts the i-th 32-byte word of the payload as an unsigned integer.
func word(payload string, i int) (*big.Int, bool) {
	start := i * hexCharsPerWord
	end := start + hexCharsPerWord
	if start < 0 || end > len(payload) {
		return nil, false
	}

	v, ok := new(big.Int).SetString(payload[start:end], 16)
	if !ok {
		return nil, false
	}
	return v, true
}

// IsSwapLog reports whether a log's leading topic is the constant-product
// swap event signature. Logs failing this check never reach Decode.
func IsSwapLog(topics []string) bool {
	return len(topics) > 0 && domain.NormalizeAddress(topics[0]) == domain.SwapEventTopic
}
