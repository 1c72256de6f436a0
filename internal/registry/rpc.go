package registry

import (
	"fmt"
	"strings"

	"github.com/walletbeam/walletbeam/internal/id"
)

// Canonical default RPC endpoints. Used whenever neither config nor the
// command passes an override for the chain.
var defaultRPCByEVMChainID = map[int64]string{
	1:     "https://eth.llamarpc.com",
	10:    "https://mainnet.optimism.io",
	137:   "https://polygon-rpc.com",
	8453:  "https://mainnet.base.org",
	42161: "https://arb1.arbitrum.io/rpc",
}

var defaultRPCByCAIP2 = map[string]string{
	id.SolanaMainnetCAIP2: "https://api.mainnet-beta.solana.com",
	id.SolanaDevnetCAIP2:  "https://api.devnet.solana.com",
}

// EthereumMainnetRPC is the canonical root chain endpoint for name-service
// lookups regardless of the transfer's target chain.
const EthereumMainnetRPC = "https://eth.llamarpc.com"

func DefaultRPCURL(chain id.Chain) (string, bool) {
	if chain.IsEVM() {
		v, ok := defaultRPCByEVMChainID[chain.EVMChainID]
		return v, ok
	}
	v, ok := defaultRPCByCAIP2[chain.CAIP2]
	return v, ok
}

// ResolveRPCURL picks the override when set, otherwise the default endpoint.
func ResolveRPCURL(overrides map[string]string, chain id.Chain) (string, error) {
	if v := strings.TrimSpace(overrides[chain.CAIP2]); v != "" {
		return v, nil
	}
	if v, ok := DefaultRPCURL(chain); ok {
		return v, nil
	}
	return "", fmt.Errorf("no default rpc configured for chain %s; set rpc.%q in config", chain.CAIP2, chain.CAIP2)
}

// ExplorerTxURL returns a block-explorer link for a submitted transaction.
// Solana results always carry one; EVM chains get one where known.
func ExplorerTxURL(chain id.Chain, txID string) string {
	if chain.IsSolana() {
		if chain.CAIP2 == id.SolanaDevnetCAIP2 {
			return fmt.Sprintf("https://solscan.io/tx/%s?cluster=devnet", txID)
		}
		return fmt.Sprintf("https://solscan.io/tx/%s", txID)
	}
	switch chain.EVMChainID {
	case 1:
		return fmt.Sprintf("https://etherscan.io/tx/%s", txID)
	case 10:
		return fmt.Sprintf("https://optimistic.etherscan.io/tx/%s", txID)
	case 137:
		return fmt.Sprintf("https://polygonscan.com/tx/%s", txID)
	case 8453:
		return fmt.Sprintf("https://basescan.org/tx/%s", txID)
	case 42161:
		return fmt.Sprintf("https://arbiscan.io/tx/%s", txID)
	default:
		return ""
	}
}
