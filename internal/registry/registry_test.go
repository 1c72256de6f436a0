package registry

import (
	"testing"

	"github.com/walletbeam/walletbeam/internal/id"
)

func TestAddressFor(t *testing.T) {
	addr, ok := AddressFor("usdc", "eip155:1")
	if !ok || addr != "0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48" {
		t.Fatalf("unexpected USDC mainnet address: %s ok=%v", addr, ok)
	}

	mint, ok := AddressFor("USDC", id.SolanaMainnetCAIP2)
	if !ok || mint != "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v" {
		t.Fatalf("unexpected USDC mint: %s ok=%v", mint, ok)
	}

	if _, ok := AddressFor("USDC", "eip155:56"); ok {
		t.Fatal("USDC should not be registered on eip155:56")
	}
	if _, ok := AddressFor("NOPE", "eip155:1"); ok {
		t.Fatal("unknown symbol should miss")
	}
}

func TestDecimalsForDefaults(t *testing.T) {
	if d := DecimalsFor("USDC"); d != 6 {
		t.Fatalf("USDC decimals = %d, want 6", d)
	}
	if d := DecimalsFor("BONK"); d != 5 {
		t.Fatalf("BONK decimals = %d, want 5", d)
	}
	if d := DecimalsFor("UNKNOWN"); d != DefaultDecimals {
		t.Fatalf("unknown symbol decimals = %d, want %d", d, DefaultDecimals)
	}
}

func TestDecimalsUniformAcrossChains(t *testing.T) {
	for _, token := range ListForChain("eip155:1") {
		if token.Decimals != DecimalsFor(token.Symbol) {
			t.Fatalf("decimals for %s differ by chain", token.Symbol)
		}
	}
}

func TestListForChainSorted(t *testing.T) {
	items := ListForChain(id.SolanaMainnetCAIP2)
	if len(items) == 0 {
		t.Fatal("expected registered Solana tokens")
	}
	for i := 1; i < len(items); i++ {
		if items[i-1].Symbol >= items[i].Symbol {
			t.Fatalf("list not sorted: %s before %s", items[i-1].Symbol, items[i].Symbol)
		}
	}
}

func TestResolveRPCURLOverride(t *testing.T) {
	chain, _ := id.ParseChain("base")
	url, err := ResolveRPCURL(map[string]string{"eip155:8453": "http://localhost:8545"}, chain)
	if err != nil || url != "http://localhost:8545" {
		t.Fatalf("override not honored: %s %v", url, err)
	}

	url, err = ResolveRPCURL(nil, chain)
	if err != nil || url == "" {
		t.Fatalf("expected default endpoint: %s %v", url, err)
	}
}

func TestExplorerTxURL(t *testing.T) {
	sol, _ := id.ParseChain("solana")
	if got := ExplorerTxURL(sol, "abc"); got != "https://solscan.io/tx/abc" {
		t.Fatalf("unexpected solana explorer url: %s", got)
	}
	dev, _ := id.ParseChain("solana-devnet")
	if got := ExplorerTxURL(dev, "abc"); got != "https://solscan.io/tx/abc?cluster=devnet" {
		t.Fatalf("unexpected devnet explorer url: %s", got)
	}
	eth, _ := id.ParseChain("ethereum")
	if got := ExplorerTxURL(eth, "0xdead"); got != "https://etherscan.io/tx/0xdead" {
		t.Fatalf("unexpected etherscan url: %s", got)
	}
	unknown, _ := id.ParseChain("eip155:999999")
	if got := ExplorerTxURL(unknown, "0xdead"); got != "" {
		t.Fatalf("unknown EVM chain should have no explorer url, got %s", got)
	}
}
