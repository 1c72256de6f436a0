// Package resolve turns recipient inputs into on-chain addresses. Literal
// addresses pass through untouched; ENS names are looked up on Ethereum
// mainnet regardless of the destination chain, since ENS records live there.
package resolve

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/mr-tron/base58"

	"github.com/walletbeam/walletbeam/internal/cache"
	clierr "github.com/walletbeam/walletbeam/internal/errors"
	"github.com/walletbeam/walletbeam/internal/id"
	"github.com/walletbeam/walletbeam/internal/logger"
	"github.com/walletbeam/walletbeam/internal/model"
)

const cacheTTL = time.Hour

// Lookup performs the actual name-service query. Implemented by the ENS
// client below; faked in tests.
type Lookup interface {
	LookupName(ctx context.Context, name string) (string, error)
}

// Resolver resolves recipient inputs for a target chain, memoizing
// successful name lookups in an optional cache.
type Resolver struct {
	ens   Lookup
	cache *cache.Store
	log   logger.Logger
}

func NewResolver(ens Lookup, store *cache.Store, log logger.Logger) *Resolver {
	if log == nil {
		log = logger.NoopLogger{}
	}
	return &Resolver{ens: ens, cache: store, log: log}
}

// Recipient resolves input into an address valid on chain. A raw address
// passes through with Resolved=false; a name resolves with Resolved=true.
func (r *Resolver) Recipient(ctx context.Context, chain id.Chain, input string) (model.NameResolution, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return model.NameResolution{}, clierr.New(clierr.CodeUsage, "recipient is required")
	}

	if chain.IsEVM() {
		if common.IsHexAddress(input) {
			return model.NameResolution{Input: input, Address: common.HexToAddress(input).Hex()}, nil
		}
		if strings.HasSuffix(strings.ToLower(input), ".eth") {
			addr, err := r.lookupENS(ctx, input)
			if err != nil {
				return model.NameResolution{}, err
			}
			return model.NameResolution{Input: input, Address: addr, Resolved: true}, nil
		}
		return model.NameResolution{}, clierr.New(clierr.CodeUsage,
			fmt.Sprintf("recipient %q is not a valid EVM address or .eth name", input))
	}

	if chain.IsSolana() {
		if raw, err := base58.Decode(input); err == nil && len(raw) == 32 {
			return model.NameResolution{Input: input, Address: input}, nil
		}
		return model.NameResolution{}, clierr.New(clierr.CodeUsage,
			fmt.Sprintf("recipient %q is not a valid Solana address", input))
	}

	return model.NameResolution{}, clierr.New(clierr.CodeUnsupportedChain,
		fmt.Sprintf("no resolver for chain %s", chain.CAIP2))
}

func (r *Resolver) lookupENS(ctx context.Context, name string) (string, error) {
	key := "ens:" + strings.ToLower(name)
	if r.cache != nil {
		if res, err := r.cache.Get(key); err == nil && res.Hit {
			r.log.Debug("resolver cache hit", map[string]any{"name": name, "age": res.Age.String()})
			return string(res.Value), nil
		}
	}

	if r.ens == nil {
		return "", clierr.New(clierr.CodeNameResolution, "ENS lookup is not configured")
	}
	addr, err := r.ens.LookupName(ctx, name)
	if err != nil {
		return "", err
	}

	if r.cache != nil {
		if err := r.cache.Set(key, []byte(addr), cacheTTL); err != nil {
			// Cache writes are advisory; the resolution already succeeded.
			r.log.Debug("resolver cache write failed", map[string]any{"error": err.Error()})
		}
	}
	return addr, nil
}
