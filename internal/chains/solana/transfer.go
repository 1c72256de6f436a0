// Package solana builds unsigned Solana transactions for remote signing.
// The sender wallet is the fee payer; the transaction is serialized to
// base64 and signed on the wallet side.
package solana

import (
	"context"
	"sort"

	"github.com/gagliardetto/solana-go"
	ata "github.com/gagliardetto/solana-go/programs/associated-token-account"
	computebudget "github.com/gagliardetto/solana-go/programs/compute-budget"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/gagliardetto/solana-go/programs/token"

	clierr "github.com/walletbeam/walletbeam/internal/errors"
	"github.com/walletbeam/walletbeam/internal/logger"
)

// Queries is the slice of RPC state the encoder needs. Narrow on purpose so
// tests can drive encoding without a validator.
type Queries interface {
	LatestBlockhash(ctx context.Context) (solana.Hash, error)
	AccountExists(ctx context.Context, account solana.PublicKey) (bool, error)
	RecentPriorityFees(ctx context.Context) ([]uint64, error)
}

// Encoder assembles transfer transactions against live chain state.
type Encoder struct {
	queries Queries
	log     logger.Logger
}

func NewEncoder(q Queries, log logger.Logger) *Encoder {
	if log == nil {
		log = logger.NoopLogger{}
	}
	return &Encoder{queries: q, log: log}
}

// NativeTransfer builds a SOL system transfer of lamports from sender to
// recipient, with the sender paying fees.
func (e *Encoder) NativeTransfer(ctx context.Context, sender, recipient string, lamports uint64) (string, error) {
	from, err := parseKey(sender)
	if err != nil {
		return "", err
	}
	to, err := parseKey(recipient)
	if err != nil {
		return "", err
	}

	instrs := e.withPriorityFee(ctx, []solana.Instruction{
		system.NewTransferInstruction(lamports, from, to).Build(),
	})
	return e.assemble(ctx, from, instrs)
}

// TokenTransfer builds an SPL token transfer. When the recipient's associated
// token account does not exist yet, an ATA-create instruction is prepended so
// the transfer lands in a funded account.
func (e *Encoder) TokenTransfer(ctx context.Context, sender, recipient, mintAddress string, amount uint64) (string, error) {
	from, err := parseKey(sender)
	if err != nil {
		return "", err
	}
	to, err := parseKey(recipient)
	if err != nil {
		return "", err
	}
	mint, err := parseKey(mintAddress)
	if err != nil {
		return "", err
	}

	sourceATA, _, err := solana.FindAssociatedTokenAddress(from, mint)
	if err != nil {
		return "", clierr.Wrap(clierr.CodeInternal, "derive sender token account", err)
	}
	destATA, _, err := solana.FindAssociatedTokenAddress(to, mint)
	if err != nil {
		return "", clierr.Wrap(clierr.CodeInternal, "derive recipient token account", err)
	}

	var instrs []solana.Instruction
	exists, err := e.queries.AccountExists(ctx, destATA)
	if err != nil {
		return "", clierr.Wrap(clierr.CodeChainQuery, "check recipient token account", err)
	}
	if !exists {
		e.log.Debug("recipient token account missing, creating", map[string]any{
			"account": destATA.String(),
		})
		instrs = append(instrs, ata.NewCreateInstruction(from, to, mint).Build())
	}
	instrs = append(instrs, token.NewTransferInstruction(amount, sourceATA, destATA, from, nil).Build())

	return e.assemble(ctx, from, e.withPriorityFee(ctx, instrs))
}

// withPriorityFee prepends a compute-unit-price instruction set to the median
// of recently observed fees. Fee discovery is best-effort: on failure or an
// empty sample the transaction goes out without a priority fee.
func (e *Encoder) withPriorityFee(ctx context.Context, instrs []solana.Instruction) []solana.Instruction {
	fees, err := e.queries.RecentPriorityFees(ctx)
	if err != nil {
		e.log.Debug("priority fee lookup failed", map[string]any{"error": err.Error()})
		return instrs
	}
	price := medianFee(fees)
	if price == 0 {
		return instrs
	}
	fee := computebudget.NewSetComputeUnitPriceInstruction(price).Build()
	return append([]solana.Instruction{fee}, instrs...)
}

func (e *Encoder) assemble(ctx context.Context, payer solana.PublicKey, instrs []solana.Instruction) (string, error) {
	blockhash, err := e.queries.LatestBlockhash(ctx)
	if err != nil {
		return "", clierr.Wrap(clierr.CodeChainQuery, "fetch latest blockhash", err)
	}
	tx, err := solana.NewTransaction(instrs, blockhash, solana.TransactionPayer(payer))
	if err != nil {
		return "", clierr.Wrap(clierr.CodeInternal, "assemble transaction", err)
	}
	tx.Message.SetVersion(solana.MessageVersionV0)
	encoded, err := tx.ToBase64()
	if err != nil {
		return "", clierr.Wrap(clierr.CodeInternal, "serialize transaction", err)
	}
	return encoded, nil
}

func medianFee(fees []uint64) uint64 {
	if len(fees) == 0 {
		return 0
	}
	sorted := make([]uint64, len(fees))
	copy(sorted, fees)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	return sorted[(len(sorted)-1)/2]
}

func parseKey(raw string) (solana.PublicKey, error) {
	key, err := solana.PublicKeyFromBase58(raw)
	if err != nil {
		return solana.PublicKey{}, clierr.Wrap(clierr.CodeUsage, "invalid Solana address", err)
	}
	return key, nil
}
