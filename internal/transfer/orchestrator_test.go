package transfer

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"

	solenc "github.com/walletbeam/walletbeam/internal/chains/solana"
	clierr "github.com/walletbeam/walletbeam/internal/errors"
	"github.com/walletbeam/walletbeam/internal/model"
	"github.com/walletbeam/walletbeam/internal/resolve"
	"github.com/walletbeam/walletbeam/internal/session"
	"github.com/walletbeam/walletbeam/internal/transport"
)

const (
	evmAccount    = "eip155:1:0x1111111111111111111111111111111111111111"
	solanaAccount = "solana:5eykt4UsFv8P8NJdTREpY1vzqKqZKvdp:DRpbCBMxVnDK7maPM5tGv6MvB3v1sRMC86PZ8okm21hy"
	evmRecipient  = "0x2222222222222222222222222222222222222222"
	solRecipient  = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"
)

type fakeGateway struct {
	result  json.RawMessage
	err     error
	calls   int
	method  string
	chainID string
	params  json.RawMessage
}

func (f *fakeGateway) Send(ctx context.Context, topic, chainID string, req transport.Request) (json.RawMessage, error) {
	f.calls++
	f.method = req.Method
	f.chainID = chainID
	f.params = req.Params
	return f.result, f.err
}

type fakeLookup struct{ address string }

func (f *fakeLookup) LookupName(ctx context.Context, name string) (string, error) {
	return f.address, nil
}

type fakeSolQueries struct{}

func (fakeSolQueries) LatestBlockhash(ctx context.Context) (solana.Hash, error) {
	return solana.Hash{}, nil
}
func (fakeSolQueries) AccountExists(ctx context.Context, account solana.PublicKey) (bool, error) {
	return true, nil
}
func (fakeSolQueries) RecentPriorityFees(ctx context.Context) ([]uint64, error) {
	return []uint64{100}, nil
}

func newTestOrchestrator(t *testing.T, gw *fakeGateway, accounts ...string) *Orchestrator {
	t.Helper()
	dir := t.TempDir()
	store, err := session.OpenStore(filepath.Join(dir, "sessions.json"), filepath.Join(dir, "sessions.lock"))
	if err != nil {
		t.Fatalf("OpenStore failed: %v", err)
	}
	now := time.Now().UTC()
	if err := store.Save(session.Session{
		Topic:     "topic-1",
		PeerName:  "Test Wallet",
		Accounts:  accounts,
		CreatedAt: now,
		UpdatedAt: now,
	}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	resolver := resolve.NewResolver(&fakeLookup{address: evmRecipient}, nil, nil)
	orch := NewOrchestrator(store, resolver, gw, nil, nil)
	orch.newSolanaQueries = func(string) solenc.Queries { return fakeSolQueries{} }
	return orch
}

func TestSendEVMTokenTransfer(t *testing.T) {
	gw := &fakeGateway{result: json.RawMessage(`"0xdeadbeef"`)}
	orch := newTestOrchestrator(t, gw, evmAccount)

	result, err := orch.Send(context.Background(), Request{
		Chain:  "ethereum",
		To:     evmRecipient,
		Amount: "5.0",
		Symbol: "USDC",
	})
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if result.Status != model.StatusSent {
		t.Fatalf("status = %s, want sent", result.Status)
	}
	if result.TxID != "0xdeadbeef" {
		t.Fatalf("unexpected tx id: %s", result.TxID)
	}
	if result.ExplorerURL != "https://etherscan.io/tx/0xdeadbeef" {
		t.Fatalf("unexpected explorer url: %s", result.ExplorerURL)
	}
	if result.Amount != "5" || result.Symbol != "USDC" {
		t.Fatalf("unexpected amount fields: %+v", result)
	}
	if gw.method != "eth_sendTransaction" || gw.chainID != "eip155:1" {
		t.Fatalf("unexpected wire request: method=%s chain=%s", gw.method, gw.chainID)
	}

	var txs []map[string]string
	if err := json.Unmarshal(gw.params, &txs); err != nil || len(txs) != 1 {
		t.Fatalf("params should be a one-element transaction array: %s", gw.params)
	}
	if len(txs[0]["data"]) != 2+2*68 {
		t.Fatalf("calldata length = %d chars, want %d", len(txs[0]["data"]), 2+2*68)
	}
}

func TestSendEVMNativeWithNameResolution(t *testing.T) {
	gw := &fakeGateway{result: json.RawMessage(`"0xcafe"`)}
	orch := newTestOrchestrator(t, gw, evmAccount)

	result, err := orch.Send(context.Background(), Request{
		Chain:  "ethereum",
		To:     "friend.eth",
		Amount: "0.01",
	})
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if !result.NameResolved || result.To != evmRecipient || result.ToInput != "friend.eth" {
		t.Fatalf("name resolution not surfaced: %+v", result)
	}
	if result.Symbol != "ETH" {
		t.Fatalf("native symbol = %s, want ETH", result.Symbol)
	}

	var txs []map[string]string
	if err := json.Unmarshal(gw.params, &txs); err != nil || len(txs) != 1 {
		t.Fatalf("unexpected params: %s", gw.params)
	}
	if txs[0]["value"] != "0x2386f26fc10000" {
		t.Fatalf("unexpected native value: %s", txs[0]["value"])
	}
	if txs[0]["data"] != "" {
		t.Fatalf("native transfer must carry no calldata: %s", txs[0]["data"])
	}
}

func TestSendSolanaNative(t *testing.T) {
	gw := &fakeGateway{result: json.RawMessage(`{"signature":"5ig"}`)}
	orch := newTestOrchestrator(t, gw, solanaAccount)

	result, err := orch.Send(context.Background(), Request{
		Chain:  "solana",
		To:     solRecipient,
		Amount: "1.5",
	})
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if result.Status != model.StatusSent || result.TxID != "5ig" {
		t.Fatalf("unexpected result: %+v", result)
	}
	if result.ExplorerURL != "https://solscan.io/tx/5ig" {
		t.Fatalf("solana result must carry an explorer link: %s", result.ExplorerURL)
	}
	if gw.method != "solana_signAndSendTransaction" {
		t.Fatalf("unexpected method: %s", gw.method)
	}
	var params map[string]string
	if err := json.Unmarshal(gw.params, &params); err != nil || params["transaction"] == "" {
		t.Fatalf("params must carry a base64 transaction: %s", gw.params)
	}
}

func TestSendRejectionBecomesResult(t *testing.T) {
	gw := &fakeGateway{err: clierr.New(clierr.CodeRejected, "user declined")}
	orch := newTestOrchestrator(t, gw, evmAccount)

	result, err := orch.Send(context.Background(), Request{
		Chain:  "ethereum",
		To:     evmRecipient,
		Amount: "1",
	})
	if err != nil {
		t.Fatalf("rejection must not surface as an error: %v", err)
	}
	if result.Status != model.StatusRejected || result.Reason != "user declined" {
		t.Fatalf("unexpected result: %+v", result)
	}
	if result.TxID != "" {
		t.Fatalf("rejected transfer must not carry a tx id: %s", result.TxID)
	}
}

func TestSendTimeoutBecomesResult(t *testing.T) {
	gw := &fakeGateway{err: clierr.New(clierr.CodeTimeout, "wallet approval timed out after 5m0s")}
	orch := newTestOrchestrator(t, gw, evmAccount)

	result, err := orch.Send(context.Background(), Request{
		Chain:  "ethereum",
		To:     evmRecipient,
		Amount: "1",
	})
	if err != nil {
		t.Fatalf("timeout must settle as a result: %v", err)
	}
	if result.Status != model.StatusRejected || result.Reason != "wallet approval timed out after 5m0s" {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestSendPreconditionErrors(t *testing.T) {
	gw := &fakeGateway{result: json.RawMessage(`"0x0"`)}
	orch := newTestOrchestrator(t, gw, evmAccount)

	cases := []struct {
		name string
		req  Request
		code clierr.Code
	}{
		{"unsupported token", Request{Chain: "ethereum", To: evmRecipient, Amount: "1", Symbol: "SHRUG"}, clierr.CodeUnsupportedToken},
		{"unsupported chain", Request{Chain: "cosmos:hub", To: evmRecipient, Amount: "1"}, clierr.CodeUnsupportedChain},
		{"bad amount", Request{Chain: "ethereum", To: evmRecipient, Amount: "abc"}, clierr.CodeUsage},
		{"no matching account", Request{Chain: "solana", To: solRecipient, Amount: "1"}, clierr.CodeNoAccount},
	}
	for _, tc := range cases {
		_, err := orch.Send(context.Background(), tc.req)
		if !clierr.Is(err, tc.code) {
			t.Fatalf("%s: got %v, want code %d", tc.name, err, tc.code)
		}
	}
	if gw.calls != 0 {
		t.Fatalf("precondition failures must not reach the gateway, got %d calls", gw.calls)
	}
}

func TestSendNoSession(t *testing.T) {
	dir := t.TempDir()
	store, _ := session.OpenStore(filepath.Join(dir, "s.json"), filepath.Join(dir, "s.lock"))
	resolver := resolve.NewResolver(&fakeLookup{}, nil, nil)
	orch := NewOrchestrator(store, resolver, &fakeGateway{}, nil, nil)

	_, err := orch.Send(context.Background(), Request{Chain: "ethereum", To: evmRecipient, Amount: "1"})
	if !clierr.Is(err, clierr.CodeNoSession) {
		t.Fatalf("expected no-session error, got %v", err)
	}
}
