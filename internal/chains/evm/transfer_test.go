package evm

import (
	"math/big"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

const (
	sender    = "0x1111111111111111111111111111111111111111"
	recipient = "0x2222222222222222222222222222222222222222"
	usdc      = "0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48"
)

func TestNativeTransfer(t *testing.T) {
	// 0.01 ETH in wei.
	amount, _ := new(big.Int).SetString("10000000000000000", 10)
	tx, err := NativeTransfer(sender, recipient, amount)
	if err != nil {
		t.Fatalf("NativeTransfer failed: %v", err)
	}
	if tx.Value != "0x2386f26fc10000" {
		t.Fatalf("unexpected value: %s", tx.Value)
	}
	if tx.Data != "" {
		t.Fatalf("native transfer must carry no calldata, got %s", tx.Data)
	}
	if !strings.EqualFold(tx.To, recipient) {
		t.Fatalf("unexpected to: %s", tx.To)
	}
}

func TestTokenTransferCalldata(t *testing.T) {
	// 5.0 of a 6-decimal token.
	tx, err := TokenTransfer(sender, usdc, recipient, big.NewInt(5000000))
	if err != nil {
		t.Fatalf("TokenTransfer failed: %v", err)
	}
	if !strings.EqualFold(tx.To, usdc) {
		t.Fatalf("to must be the token contract, got %s", tx.To)
	}
	if tx.Value != "0x0" {
		t.Fatalf("token transfer value must be zero, got %s", tx.Value)
	}

	data, err := hexutil.Decode(tx.Data)
	if err != nil {
		t.Fatalf("calldata is not valid hex: %v", err)
	}
	if len(data) != 68 {
		t.Fatalf("calldata length = %d, want 68", len(data))
	}
	if got := hexutil.Encode(data[:4]); got != "0xa9059cbb" {
		t.Fatalf("unexpected selector: %s", got)
	}
	wantRecipient := "0x0000000000000000000000002222222222222222222222222222222222222222"
	if got := hexutil.Encode(data[4:36]); got != wantRecipient {
		t.Fatalf("unexpected recipient word: %s", got)
	}
	wantAmount := "0x00000000000000000000000000000000000000000000000000000000004c4b40"
	if got := hexutil.Encode(data[36:68]); got != wantAmount {
		t.Fatalf("unexpected amount word: %s", got)
	}
}

func TestTransferRejectsBadAddresses(t *testing.T) {
	if _, err := NativeTransfer("nope", recipient, big.NewInt(1)); err == nil {
		t.Fatal("invalid sender should fail")
	}
	if _, err := TokenTransfer(sender, "0x123", recipient, big.NewInt(1)); err == nil {
		t.Fatal("invalid token address should fail")
	}
	if _, err := NativeTransfer(sender, recipient, nil); err == nil {
		t.Fatal("nil amount should fail")
	}
}
