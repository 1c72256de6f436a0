package solana

import (
	"context"
	"errors"
	"strconv"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"

	clierr "github.com/walletbeam/walletbeam/internal/errors"
)

// rpcQueries backs the Queries interface with a JSON-RPC node.
type rpcQueries struct {
	client *rpc.Client
}

func NewRPCQueries(rpcURL string) Queries {
	return &rpcQueries{client: rpc.New(rpcURL)}
}

func (q *rpcQueries) LatestBlockhash(ctx context.Context) (solana.Hash, error) {
	recent, err := q.client.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
	if err != nil {
		return solana.Hash{}, err
	}
	return recent.Value.Blockhash, nil
}

func (q *rpcQueries) AccountExists(ctx context.Context, account solana.PublicKey) (bool, error) {
	acct, err := q.client.GetAccountInfo(ctx, account)
	if err != nil {
		if errors.Is(err, rpc.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return acct != nil && acct.Value != nil, nil
}

func (q *rpcQueries) RecentPriorityFees(ctx context.Context) ([]uint64, error) {
	results, err := q.client.GetRecentPrioritizationFees(ctx, nil)
	if err != nil {
		return nil, err
	}
	fees := make([]uint64, 0, len(results))
	for _, r := range results {
		if r.PrioritizationFee > 0 {
			fees = append(fees, r.PrioritizationFee)
		}
	}
	return fees, nil
}

// NativeBalance reads the lamport balance of addr.
func NativeBalance(ctx context.Context, rpcURL, addr string) (uint64, error) {
	key, err := parseKey(addr)
	if err != nil {
		return 0, err
	}
	client := rpc.New(rpcURL)
	out, err := client.GetBalance(ctx, key, rpc.CommitmentFinalized)
	if err != nil {
		return 0, clierr.Wrap(clierr.CodeChainQuery, "query native balance", err)
	}
	return out.Value, nil
}

// TokenBalance reads the SPL token balance held in addr's associated token
// account for the given mint. A missing account reads as zero.
func TokenBalance(ctx context.Context, rpcURL, mintAddress, addr string) (uint64, error) {
	owner, err := parseKey(addr)
	if err != nil {
		return 0, err
	}
	mint, err := parseKey(mintAddress)
	if err != nil {
		return 0, err
	}
	account, _, err := solana.FindAssociatedTokenAddress(owner, mint)
	if err != nil {
		return 0, clierr.Wrap(clierr.CodeInternal, "derive token account", err)
	}
	client := rpc.New(rpcURL)
	out, err := client.GetTokenAccountBalance(ctx, account, rpc.CommitmentFinalized)
	if err != nil {
		if errors.Is(err, rpc.ErrNotFound) {
			return 0, nil
		}
		return 0, clierr.Wrap(clierr.CodeChainQuery, "query token balance", err)
	}
	if out == nil || out.Value == nil {
		return 0, nil
	}
	amount, err := strconv.ParseUint(out.Value.Amount, 10, 64)
	if err != nil {
		return 0, clierr.Wrap(clierr.CodeChainQuery, "malformed token balance response", err)
	}
	return amount, nil
}
