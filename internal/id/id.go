package id

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	clierr "github.com/walletbeam/walletbeam/internal/errors"
)

const (
	NamespaceEVM    = "eip155"
	NamespaceSolana = "solana"
)

var (
	eip155ChainPattern = regexp.MustCompile(`^eip155:[0-9]+$`)
	solanaChainPattern = regexp.MustCompile(`^solana:[1-9A-HJ-NP-Za-km-z]{32,44}$`)
	evmAddressPattern  = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)
	base58Pattern      = regexp.MustCompile(`^[1-9A-HJ-NP-Za-km-z]{32,44}$`)
)

const (
	solanaMainnetRef = "5eykt4UsFv8P8NJdTREpY1vzqKqZKvdp"
	solanaDevnetRef  = "EtWTRABZaYq6iMfeYKouRu166VU2xqa1"
)

const (
	SolanaMainnetCAIP2 = "solana:" + solanaMainnetRef
	SolanaDevnetCAIP2  = "solana:" + solanaDevnetRef
)

type Chain struct {
	Name       string
	Slug       string
	CAIP2      string
	EVMChainID int64
	NativeSym  string
}

func (c Chain) Namespace() string {
	return chainNamespace(c.CAIP2)
}

func (c Chain) IsEVM() bool {
	return c.Namespace() == NamespaceEVM
}

func (c Chain) IsSolana() bool {
	return c.Namespace() == NamespaceSolana
}

var chainBySlug = map[string]Chain{
	"ethereum":       {Name: "Ethereum", Slug: "ethereum", CAIP2: "eip155:1", EVMChainID: 1, NativeSym: "ETH"},
	"mainnet":        {Name: "Ethereum", Slug: "ethereum", CAIP2: "eip155:1", EVMChainID: 1, NativeSym: "ETH"},
	"base":           {Name: "Base", Slug: "base", CAIP2: "eip155:8453", EVMChainID: 8453, NativeSym: "ETH"},
	"arbitrum":       {Name: "Arbitrum", Slug: "arbitrum", CAIP2: "eip155:42161", EVMChainID: 42161, NativeSym: "ETH"},
	"optimism":       {Name: "Optimism", Slug: "optimism", CAIP2: "eip155:10", EVMChainID: 10, NativeSym: "ETH"},
	"polygon":        {Name: "Polygon", Slug: "polygon", CAIP2: "eip155:137", EVMChainID: 137, NativeSym: "POL"},
	"solana":         {Name: "Solana", Slug: "solana", CAIP2: SolanaMainnetCAIP2, NativeSym: "SOL"},
	"solana-mainnet": {Name: "Solana", Slug: "solana", CAIP2: SolanaMainnetCAIP2, NativeSym: "SOL"},
	"mainnet-beta":   {Name: "Solana", Slug: "solana", CAIP2: SolanaMainnetCAIP2, NativeSym: "SOL"},
	"solana-devnet":  {Name: "Solana Devnet", Slug: "solana-devnet", CAIP2: SolanaDevnetCAIP2, NativeSym: "SOL"},
}

var chainByID = map[int64]Chain{
	1:     chainBySlug["ethereum"],
	10:    chainBySlug["optimism"],
	137:   chainBySlug["polygon"],
	8453:  chainBySlug["base"],
	42161: chainBySlug["arbitrum"],
}

var chainByCAIP2 = func() map[string]Chain {
	out := make(map[string]Chain, len(chainBySlug))
	for _, chain := range chainBySlug {
		out[chain.CAIP2] = chain
	}
	return out
}()

// ParseChain accepts a chain slug, a bare EVM chain ID, or a CAIP-2
// identifier. Unknown EVM chain IDs are accepted; unknown namespaces are not.
func ParseChain(input string) (Chain, error) {
	raw := strings.TrimSpace(input)
	if raw == "" {
		return Chain{}, clierr.New(clierr.CodeUsage, "chain is required")
	}
	norm := strings.ToLower(raw)

	if chain, ok := chainBySlug[norm]; ok {
		return chain, nil
	}

	if eip155ChainPattern.MatchString(norm) {
		parts := strings.Split(norm, ":")
		id, _ := strconv.ParseInt(parts[1], 10, 64)
		if known, ok := chainByID[id]; ok {
			return known, nil
		}
		return Chain{Name: fmt.Sprintf("EVM-%d", id), Slug: fmt.Sprintf("evm-%d", id), CAIP2: norm, EVMChainID: id, NativeSym: "ETH"}, nil
	}

	if solanaChainPattern.MatchString(raw) {
		if known, ok := chainByCAIP2[raw]; ok {
			return known, nil
		}
		return Chain{Name: "Solana", Slug: "solana-custom", CAIP2: raw, NativeSym: "SOL"}, nil
	}

	if id, err := strconv.ParseInt(norm, 10, 64); err == nil {
		if chain, ok := chainByID[id]; ok {
			return chain, nil
		}
		return Chain{Name: fmt.Sprintf("EVM-%d", id), Slug: fmt.Sprintf("evm-%d", id), CAIP2: fmt.Sprintf("eip155:%d", id), EVMChainID: id, NativeSym: "ETH"}, nil
	}

	return Chain{}, clierr.New(clierr.CodeUnsupportedChain, fmt.Sprintf("unsupported chain input: %s", input))
}

func chainNamespace(caip2 string) string {
	parts := strings.SplitN(strings.TrimSpace(caip2), ":", 2)
	if len(parts) != 2 {
		return ""
	}
	return strings.ToLower(parts[0])
}
