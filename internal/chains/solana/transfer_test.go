package solana

import (
	"context"
	"encoding/base64"
	"errors"
	"testing"

	binary "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

const (
	senderKey    = "DRpbCBMxVnDK7maPM5tGv6MvB3v1sRMC86PZ8okm21hy"
	recipientKey = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"
	usdcMint     = "Es9vMFrzaCERmJfrF4H2FYD4KCoNkY11McCe8BenwNYB"
)

type fakeQueries struct {
	blockhash    solana.Hash
	blockhashErr error
	exists       bool
	existsErr    error
	fees         []uint64
	feesErr      error
	feeCalls     int
}

func (f *fakeQueries) LatestBlockhash(ctx context.Context) (solana.Hash, error) {
	return f.blockhash, f.blockhashErr
}

func (f *fakeQueries) AccountExists(ctx context.Context, account solana.PublicKey) (bool, error) {
	return f.exists, f.existsErr
}

func (f *fakeQueries) RecentPriorityFees(ctx context.Context) ([]uint64, error) {
	f.feeCalls++
	return f.fees, f.feesErr
}

func decodeTx(t *testing.T, encoded string) *solana.Transaction {
	t.Helper()
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		t.Fatalf("transaction is not valid base64: %v", err)
	}
	tx, err := solana.TransactionFromDecoder(binary.NewBinDecoder(raw))
	if err != nil {
		t.Fatalf("decode transaction: %v", err)
	}
	return tx
}

func TestNativeTransferBuildsSystemInstruction(t *testing.T) {
	q := &fakeQueries{exists: true, fees: []uint64{100, 300, 200}}
	enc := NewEncoder(q, nil)

	encoded, err := enc.NativeTransfer(context.Background(), senderKey, recipientKey, 1_000_000_000)
	if err != nil {
		t.Fatalf("NativeTransfer failed: %v", err)
	}
	tx := decodeTx(t, encoded)

	// Fee instruction first, transfer second.
	if len(tx.Message.Instructions) != 2 {
		t.Fatalf("instruction count = %d, want 2", len(tx.Message.Instructions))
	}
	if !programAt(t, tx, 0).Equals(solana.ComputeBudget) {
		t.Fatalf("first instruction should set compute unit price")
	}
	if !programAt(t, tx, 1).Equals(solana.SystemProgramID) {
		t.Fatalf("second instruction should be a system transfer")
	}
	payer, _ := solana.PublicKeyFromBase58(senderKey)
	if !tx.Message.AccountKeys[0].Equals(payer) {
		t.Fatalf("sender must pay fees, payer = %s", tx.Message.AccountKeys[0])
	}
}

func TestTokenTransferCreatesMissingATA(t *testing.T) {
	q := &fakeQueries{exists: false}
	enc := NewEncoder(q, nil)

	encoded, err := enc.TokenTransfer(context.Background(), senderKey, recipientKey, usdcMint, 5_000_000)
	if err != nil {
		t.Fatalf("TokenTransfer failed: %v", err)
	}
	tx := decodeTx(t, encoded)

	if len(tx.Message.Instructions) != 2 {
		t.Fatalf("instruction count = %d, want 2 (create ATA, then transfer)", len(tx.Message.Instructions))
	}
	if !programAt(t, tx, 0).Equals(solana.SPLAssociatedTokenAccountProgramID) {
		t.Fatalf("create-ATA must precede the transfer")
	}
	if !programAt(t, tx, 1).Equals(solana.TokenProgramID) {
		t.Fatalf("second instruction should be the token transfer")
	}
}

func TestTokenTransferSkipsCreateWhenATAExists(t *testing.T) {
	q := &fakeQueries{exists: true}
	enc := NewEncoder(q, nil)

	encoded, err := enc.TokenTransfer(context.Background(), senderKey, recipientKey, usdcMint, 1)
	if err != nil {
		t.Fatalf("TokenTransfer failed: %v", err)
	}
	tx := decodeTx(t, encoded)
	if len(tx.Message.Instructions) != 1 {
		t.Fatalf("instruction count = %d, want 1", len(tx.Message.Instructions))
	}
	if !programAt(t, tx, 0).Equals(solana.TokenProgramID) {
		t.Fatalf("sole instruction should be the token transfer")
	}
}

func TestPriorityFeeFailureIsTolerated(t *testing.T) {
	q := &fakeQueries{exists: true, feesErr: errors.New("rpc down")}
	enc := NewEncoder(q, nil)

	encoded, err := enc.NativeTransfer(context.Background(), senderKey, recipientKey, 1)
	if err != nil {
		t.Fatalf("fee fetch failure must not fail the transfer: %v", err)
	}
	tx := decodeTx(t, encoded)
	if len(tx.Message.Instructions) != 1 {
		t.Fatalf("instruction count = %d, want 1 (no fee instruction)", len(tx.Message.Instructions))
	}
	if q.feeCalls != 1 {
		t.Fatalf("fee lookup should be attempted exactly once, got %d", q.feeCalls)
	}
}

func TestBlockhashFailureFails(t *testing.T) {
	q := &fakeQueries{exists: true, blockhashErr: errors.New("rpc down")}
	enc := NewEncoder(q, nil)
	if _, err := enc.NativeTransfer(context.Background(), senderKey, recipientKey, 1); err == nil {
		t.Fatal("blockhash failure must fail the transfer")
	}
}

func TestMedianFee(t *testing.T) {
	cases := []struct {
		fees []uint64
		want uint64
	}{
		{nil, 0},
		{[]uint64{7}, 7},
		{[]uint64{3, 1, 2}, 2},
		{[]uint64{4, 1, 3, 2}, 2}, // even count takes the lower middle
	}
	for _, tc := range cases {
		if got := medianFee(tc.fees); got != tc.want {
			t.Fatalf("medianFee(%v) = %d, want %d", tc.fees, got, tc.want)
		}
	}
}

func programAt(t *testing.T, tx *solana.Transaction, index int) solana.PublicKey {
	t.Helper()
	instr := tx.Message.Instructions[index]
	program, err := tx.Message.Program(instr.ProgramIDIndex)
	if err != nil {
		t.Fatalf("resolve program id: %v", err)
	}
	return program
}
