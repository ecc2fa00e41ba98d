// Package dex classifies transactions against known DEX routers and
// reconstructs trades from their transfer logs.
package dex

import (
	"strings"
	"sync"

	"chain-risk-lab/internal/domain"
)

// Router addresses (lowercase).
const (
	UniswapV2Router        = "0x7a250d5630b4cf539739df2c5dacb4c659f2488d"
	UniswapV3Router        = "0xe592427a0aece92de3edee1f18e0157c05861564"
	UniswapUniversalRouter = "0x68b3465833fb72a70ecdf485e0e4c7bd8665fc45"
	SushiSwapRouter        = "0xd9e1ce17f2641f24ae83637ab66a2cca9c378b9f"
	OneInchRouter          = "0x1111111254eeb25477b68fb85ed929f73a960582"
	PancakeSwapRouter      = "0x10ed43c718714eb63d5aa57b78b54704e256024e"
	JumperRouter           = "0xd89adc20c400b6c45086a7f6ab2dca19745b89c2"
	JumperRouterV2         = "0x69c6c08b91010c88c95775b6fd768e5b04efc106"
	JumperRelayer          = "0x0000000022d53366457f9d5e68ec105046fc4383"
)

// Venue identifiers.
const (
	VenueUniswapV2   = "uniswap_v2"
	VenueUniswapV3   = "uniswap_v3"
	VenueUniswap     = "uniswap"
	VenueSushiSwap   = "sushiswap"
	VenueOneInch     = "1inch"
	VenuePancakeSwap = "pancakeswap"
	VenueJumper      = "jumper"
)

// DefaultRouters maps every built-in router to its venue.
var DefaultRouters = map[string]string{
	UniswapV2Router:        VenueUniswapV2,
	UniswapV3Router:        VenueUniswapV3,
	UniswapUniversalRouter: VenueUniswap,
	SushiSwapRouter:        VenueSushiSwap,
	OneInchRouter:          VenueOneInch,
	PancakeSwapRouter:      VenuePancakeSwap,
	JumperRouter:           VenueJumper,
	JumperRouterV2:         VenueJumper,
	JumperRelayer:          VenueJumper,
}

// Classification is the outcome of Classify.
type Classification struct {
	IsDex bool
	Venue string
}

// Classifier resolves router addresses to venues. Safe for concurrent use.
type Classifier struct {
	mu      sync.RWMutex
	routers map[string]string
}

// NewClassifier creates a classifier seeded with DefaultRouters.
func NewClassifier() *Classifier {
	c := &Classifier{routers: make(map[string]string, len(DefaultRouters))}
	for addr, venue := range DefaultRouters {
		c.routers[addr] = venue
	}
	return c
}

// RegisterRouter adds or replaces a router. Empty inputs are ignored.
func (c *Classifier) RegisterRouter(address, venue string) {
	address = normalize(address)
	if address == "" || venue == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.routers[address] = venue
}

// Venue returns the venue for an address, or domain.VenueUnknown.
func (c *Classifier) Venue(address string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if venue, ok := c.routers[normalize(address)]; ok {
		return venue
	}
	return domain.VenueUnknown
}

// Classify reports whether tx is sent to a known router.
func (c *Classifier) Classify(tx *domain.RawTransaction) Classification {
	to := normalize(tx.ToAddress)
	if to == "" {
		return Classification{Venue: domain.VenueUnknown}
	}
	c.mu.RLock()
	venue, ok := c.routers[to]
	c.mu.RUnlock()
	if !ok {
		return Classification{Venue: domain.VenueUnknown}
	}
	return Classification{IsDex: true, Venue: venue}
}

// Routers returns a copy of the registry.
func (c *Classifier) Routers() map[string]string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]string, len(c.routers))
	for k, v := range c.routers {
		out[k] = v
	}
	return out
}

func normalize(address string) string {
	return strings.ToLower(strings.TrimSpace(address))
}

// nativeSymbols maps provider chain names to the native asset ticker.
var nativeSymbols = map[string]string{
	"eth-mainnet":       "ETH",
	"eth-sepolia":       "ETH",
	"base-mainnet":      "ETH",
	"arbitrum-mainnet":  "ETH",
	"optimism-mainnet":  "ETH",
	"bsc-mainnet":       "BNB",
	"matic-mainnet":     "MATIC",
	"avalanche-mainnet": "AVAX",
	"fantom-mainnet":    "FTM",
	"solana-mainnet":    "SOL",
}

// NativeSymbol returns the native asset ticker of a chain, "ETH" when unknown.
func NativeSymbol(chain string) string {
	if sym, ok := nativeSymbols[strings.ToLower(chain)]; ok {
		return sym
	}
	return "ETH"
}
