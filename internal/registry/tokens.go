package registry

import (
	"sort"
	"strings"

	"github.com/walletbeam/walletbeam/internal/id"
)

// DefaultDecimals is returned by DecimalsFor when a symbol is not in the
// registry. 18 matches EVM native assets; callers encoding a token transfer
// always hit AddressFor first, which fails for unregistered symbols, so the
// default never silently misencodes an on-chain amount.
const DefaultDecimals = 18

// Token describes a fungible asset: one symbol, one decimals value, and its
// contract or mint address on each chain that carries it. Decimals are a
// property of the symbol, uniform across chain families.
type Token struct {
	Symbol    string
	Name      string
	Decimals  int
	Addresses map[string]string // CAIP-2 chain id -> contract/mint address
}

var tokens = map[string]Token{
	"USDC": {
		Symbol:   "USDC",
		Name:     "USD Coin",
		Decimals: 6,
		Addresses: map[string]string{
			"eip155:1":            "0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48",
			"eip155:8453":         "0x833589fcd6edb6e08f4c7c32d4f71b54bda02913",
			"eip155:42161":        "0xaf88d065e77c8cc2239327c5edb3a432268e5831",
			"eip155:10":           "0x7f5c764cbc14f9669b88837ca1490cca17c31607",
			"eip155:137":          "0x3c499c542cef5e3811e1192ce70d8cc03d5c3359",
			id.SolanaMainnetCAIP2: "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v",
			id.SolanaDevnetCAIP2:  "4zMMC9srt5Ri5X14GAgXhaHii3GnPAEERYPJgZJDncDU",
		},
	},
	"USDT": {
		Symbol:   "USDT",
		Name:     "Tether USD",
		Decimals: 6,
		Addresses: map[string]string{
			"eip155:1":            "0xdac17f958d2ee523a2206206994597c13d831ec7",
			"eip155:42161":        "0xfd086bc7cd5c481dcc9c85ebe478a1c0b69fcbb9",
			"eip155:10":           "0x94b008aa00579c1307b0ef2c499ad98a8ce58e58",
			"eip155:137":          "0xc2132d05d31c914a87c6611c10748aeb04b58e8f",
			id.SolanaMainnetCAIP2: "Es9vMFrzaCERmJfrF4H2FYD4KCoNkY11McCe8BenwNYB",
		},
	},
	"DAI": {
		Symbol:   "DAI",
		Name:     "Dai Stablecoin",
		Decimals: 18,
		Addresses: map[string]string{
			"eip155:1":     "0x6b175474e89094c44da98b954eedeac495271d0f",
			"eip155:8453":  "0x50c5725949a6f0c72e6c4a641f24049a917db0cb",
			"eip155:42161": "0xda10009cbd5d07dd0cecc66161fc93d7c9000da1",
			"eip155:10":    "0xda10009cbd5d07dd0cecc66161fc93d7c9000da1",
			"eip155:137":   "0x8f3cf7ad23cd3cadbd9735aff958023239c6a063",
		},
	},
	"WETH": {
		Symbol:   "WETH",
		Name:     "Wrapped Ether",
		Decimals: 18,
		Addresses: map[string]string{
			"eip155:1":     "0xc02aaa39b223fe8d0a0e5c4f27ead9083c756cc2",
			"eip155:8453":  "0x4200000000000000000000000000000000000006",
			"eip155:42161": "0x82af49447d8a07e3bd95bd0d56f35241523fbab1",
			"eip155:10":    "0x4200000000000000000000000000000000000006",
			"eip155:137":   "0x7ceb23fd6bc0add59e62ac25578270cff1b9f619",
		},
	},
	"JUP": {
		Symbol:   "JUP",
		Name:     "Jupiter",
		Decimals: 6,
		Addresses: map[string]string{
			id.SolanaMainnetCAIP2: "JUPyiwrYJFskUPiHa7hkeR8VUtAeFoSYbKedZNsDvCN",
		},
	},
	"BONK": {
		Symbol:   "BONK",
		Name:     "Bonk",
		Decimals: 5,
		Addresses: map[string]string{
			id.SolanaMainnetCAIP2: "DezXAZ8z7PnrnRJjz3wXBoRgixCa6xjnB7YaB1pPB263",
		},
	},
}

// AddressFor returns the contract/mint address for a symbol on a chain.
func AddressFor(symbol, chainID string) (string, bool) {
	token, ok := tokens[strings.ToUpper(strings.TrimSpace(symbol))]
	if !ok {
		return "", false
	}
	addr, ok := token.Addresses[chainID]
	return addr, ok
}

// DecimalsFor returns the registered decimals for a symbol, or
// DefaultDecimals when the symbol is unknown.
func DecimalsFor(symbol string) int {
	token, ok := tokens[strings.ToUpper(strings.TrimSpace(symbol))]
	if !ok {
		return DefaultDecimals
	}
	return token.Decimals
}

// IsChainAsset reports whether the symbol has a registered address on the
// chain.
func IsChainAsset(symbol, chainID string) bool {
	_, ok := AddressFor(symbol, chainID)
	return ok
}

// ListForChain returns the registry entries carried on a chain, sorted by
// symbol.
func ListForChain(chainID string) []Token {
	out := []Token{}
	for _, token := range tokens {
		if _, ok := token.Addresses[chainID]; ok {
			out = append(out, token)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out
}

// Lookup returns the full descriptor for a symbol.
func Lookup(symbol string) (Token, bool) {
	token, ok := tokens[strings.ToUpper(strings.TrimSpace(symbol))]
	return token, ok
}
