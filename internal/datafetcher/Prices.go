/*

This file fetches USD token prices for pools whose dashboard entry carries
raw fee amounts instead of a precomputed revenue figure. Prices are
memoized in a PriceCache owned by the calling cycle and passed by
parameter; there is no module-level price state.

*/

package datafetcher

import (
	"context"
	"errors"
	"fmt"
	"strings"

	sdkmath "cosmossdk.io/math"
)

var ErrInvalidPriceData = errors.New("invalid price data")

// PriceCache memoizes token prices for the duration of one cycle. The
// caller creates it, passes it into every fetch that needs prices, and
// drops it when the cycle ends, so no price outlives the snapshot it was
// fetched for.
type PriceCache struct {
	prices map[string]sdkmath.LegacyDec
}

// NewPriceCache creates an empty price cache.
func NewPriceCache() *PriceCache {
	return &PriceCache{prices: make(map[string]sdkmath.LegacyDec)}
}

// Get returns the cached USD price for a token symbol, if present.
func (pc *PriceCache) Get(symbol string) (sdkmath.LegacyDec, bool) {
	price, ok := pc.prices[strings.ToUpper(symbol)]
	return price, ok
}

// Put stores the USD price for a token symbol.
func (pc *PriceCache) Put(symbol string, price sdkmath.LegacyDec) {
	pc.prices[strings.ToUpper(symbol)] = price
}

// Len returns the number of cached prices.
func (pc *PriceCache) Len() int {
	return len(pc.prices)
}

type priceResponse struct {
	Prices map[string]string `json:"prices"` // symbol -> USD price
}

// GetTokenPrices returns USD prices for the given token symbols,
// consulting the cache first and fetching only the misses in a single
// request. Tokens the price API does not know are absent from the result
// rather than an error; fee accounting treats them as worthless.
func (c *Client) GetTokenPrices(ctx context.Context, symbols []string, cache *PriceCache) (map[string]sdkmath.LegacyDec, error) {
	if cache == nil {
		return nil, errors.New("price cache cannot be nil")
	}

	result := make(map[string]sdkmath.LegacyDec, len(symbols))
	var misses []string
	seen := make(map[string]bool, len(symbols))
	for _, symbol := range symbols {
		key := strings.ToUpper(symbol)
		if seen[key] {
			continue
		}
		seen[key] = true
		if price, ok := cache.Get(key); ok {
			result[key] = price
			continue
		}
		misses = append(misses, key)
	}
	if len(misses) == 0 {
		return result, nil
	}

	var raw priceResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&raw).
		SetQueryParam("symbols", strings.Join(misses, ",")).
		Get(c.priceAPI + "/v1/prices")
	if err != nil {
		return nil, fmt.Errorf("price request failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("price API returned status %d", resp.StatusCode())
	}

	for symbol, priceStr := range raw.Prices {
		price, err := sdkmath.LegacyNewDecFromStr(priceStr)
		if err != nil {
			return nil, fmt.Errorf("%w: token %s price %q: %w", ErrInvalidPriceData, symbol, priceStr, err)
		}
		if price.IsNegative() {
			return nil, fmt.Errorf("%w: token %s price %s is negative", ErrInvalidPriceData, symbol, price)
		}
		key := strings.ToUpper(symbol)
		cache.Put(key, price)
		result[key] = price
	}

	fetchLogger.Debug().
		Int("requested", len(misses)).
		Int("cached", cache.Len()).
		Msg("Token prices fetched")
	return result, nil
}

// feeEntry is one token's epoch fee take on a pool, in human units.
type feeEntry struct {
	Symbol string `json:"symbol"`
	Amount string `json:"amount"`
}

// revenueFromFees sums amount * price over a pool's fee entries. A
// malformed amount is an error; a token without a known price contributes
// nothing, matching how the upstream fee accounting treats unpriced dust.
func revenueFromFees(fees []feeEntry, prices map[string]sdkmath.LegacyDec) (sdkmath.LegacyDec, error) {
	total := sdkmath.LegacyZeroDec()
	for _, fee := range fees {
		amount, err := sdkmath.LegacyNewDecFromStr(fee.Amount)
		if err != nil {
			return sdkmath.LegacyDec{}, fmt.Errorf("%w: fee amount %q for token %s: %w", ErrInvalidPriceData, fee.Amount, fee.Symbol, err)
		}
		if amount.IsNegative() {
			return sdkmath.LegacyDec{}, fmt.Errorf("%w: fee amount for token %s is negative", ErrInvalidPriceData, fee.Symbol)
		}
		price, ok := prices[strings.ToUpper(fee.Symbol)]
		if !ok {
			continue
		}
		total = total.Add(amount.Mul(price))
	}
	return total, nil
}
