package id

import (
	"testing"

	clierr "github.com/walletbeam/walletbeam/internal/errors"
)

const (
	evmAccountRaw    = "eip155:1:0x1111111111111111111111111111111111111111"
	solanaAccountRaw = "solana:5eykt4UsFv8P8NJdTREpY1vzqKqZKvdp:EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"
)

func TestParseAccountRoundTrip(t *testing.T) {
	for _, raw := range []string{evmAccountRaw, solanaAccountRaw} {
		acct, err := ParseAccount(raw)
		if err != nil {
			t.Fatalf("ParseAccount(%s) failed: %v", raw, err)
		}
		if acct.String() != raw {
			t.Fatalf("round trip mismatch: got %s want %s", acct.String(), raw)
		}
	}
}

func TestParseAccountMalformed(t *testing.T) {
	cases := []string{
		"",
		"eip155",
		"eip155:1",
		"eip155::0x1111111111111111111111111111111111111111",
		":1:0x1111111111111111111111111111111111111111",
		"eip155:1:",
		"eip155:1:nothex",
		"solana:mainnet:tooshort",
	}
	for _, raw := range cases {
		_, err := ParseAccount(raw)
		if err == nil {
			t.Fatalf("ParseAccount(%q) should fail", raw)
		}
		if !clierr.Is(err, clierr.CodeUsage) {
			t.Fatalf("ParseAccount(%q) wrong code: %v", raw, err)
		}
	}
}

func TestParseAccountUnknownNamespace(t *testing.T) {
	_, err := ParseAccount("cosmos:cosmoshub-4:cosmos1abcdef")
	if !clierr.Is(err, clierr.CodeUnsupportedChain) {
		t.Fatalf("expected unsupported chain error, got %v", err)
	}
}

func TestFindAccountSelection(t *testing.T) {
	evm, _ := ParseAccount(evmAccountRaw)
	sol, _ := ParseAccount(solanaAccountRaw)
	accounts := []Account{evm, sol}

	got, ok := FindAccount(accounts, "")
	if !ok || got != evm {
		t.Fatalf("no hint should return first account, got %+v", got)
	}

	got, ok = FindAccount(accounts, "solana")
	if !ok || got != sol {
		t.Fatalf("namespace hint failed: %+v", got)
	}

	got, ok = FindAccount(accounts, "eip155:1")
	if !ok || got != evm {
		t.Fatalf("chain id hint failed: %+v", got)
	}

	if _, ok = FindAccount(accounts, "eip155:10"); ok {
		t.Fatal("non-matching chain id should miss")
	}
	if _, ok = FindAccount(nil, ""); ok {
		t.Fatal("empty account list should miss")
	}

	// Selection is idempotent: the same hint always picks the same account.
	again, _ := FindAccount(accounts, "solana")
	if again != sol {
		t.Fatalf("repeated FindAccount diverged: %+v", again)
	}
}

func TestRequireAccountTypedError(t *testing.T) {
	_, err := RequireAccount(nil, "")
	if !clierr.Is(err, clierr.CodeNoAccount) {
		t.Fatalf("expected no-account error, got %v", err)
	}
}

func TestParseAccountsFailsWholeList(t *testing.T) {
	_, err := ParseAccounts([]string{evmAccountRaw, "garbage"})
	if err == nil {
		t.Fatal("one malformed entry should fail the whole list")
	}
}
