// Package transfer orchestrates a transfer end to end: validate inputs,
// resolve the sending account and recipient, encode for the target chain,
// submit through the wallet gateway, and shape the terminal result.
package transfer

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"strings"

	"github.com/walletbeam/walletbeam/internal/chains/evm"
	solenc "github.com/walletbeam/walletbeam/internal/chains/solana"
	clierr "github.com/walletbeam/walletbeam/internal/errors"
	"github.com/walletbeam/walletbeam/internal/id"
	"github.com/walletbeam/walletbeam/internal/logger"
	"github.com/walletbeam/walletbeam/internal/model"
	"github.com/walletbeam/walletbeam/internal/registry"
	"github.com/walletbeam/walletbeam/internal/resolve"
	"github.com/walletbeam/walletbeam/internal/session"
	"github.com/walletbeam/walletbeam/internal/transport"
)

const (
	methodEVMSend    = "eth_sendTransaction"
	methodSolanaSend = "solana_signAndSendTransaction"

	evmNativeDecimals    = 18
	solanaNativeDecimals = 9
)

// Request carries the user-facing transfer parameters before validation.
type Request struct {
	Chain  string
	To     string
	Amount string
	Symbol string // empty or the chain's native symbol means a native transfer
	Topic  string // optional session topic; empty selects the sole session
}

// Submitter is the gateway surface the orchestrator needs.
type Submitter interface {
	Send(ctx context.Context, topic, chainID string, req transport.Request) (json.RawMessage, error)
}

type Orchestrator struct {
	sessions     *session.Store
	resolver     *resolve.Resolver
	gateway      Submitter
	log          logger.Logger
	rpcOverrides map[string]string

	// newSolanaQueries is replaceable so encoding can be tested without a
	// validator.
	newSolanaQueries func(rpcURL string) solenc.Queries
}

func NewOrchestrator(sessions *session.Store, resolver *resolve.Resolver, gateway Submitter, log logger.Logger, rpcOverrides map[string]string) *Orchestrator {
	if log == nil {
		log = logger.NoopLogger{}
	}
	return &Orchestrator{
		sessions:         sessions,
		resolver:         resolver,
		gateway:          gateway,
		log:              log,
		rpcOverrides:     rpcOverrides,
		newSolanaQueries: solenc.NewRPCQueries,
	}
}

// Send runs the transfer pipeline. Errors before submission are returned as
// typed errors; any failure at or after submission is normalized into a
// rejected result so the caller still gets a structured outcome.
func (o *Orchestrator) Send(ctx context.Context, req Request) (model.SendResult, error) {
	chain, err := id.ParseChain(req.Chain)
	if err != nil {
		return model.SendResult{}, err
	}

	sess, err := o.sessions.Get(req.Topic)
	if err != nil {
		return model.SendResult{}, err
	}
	accounts, err := id.ParseAccounts(sess.Accounts)
	if err != nil {
		return model.SendResult{}, err
	}
	sender, ok := id.FindAccount(accounts, chain.CAIP2)
	if !ok {
		// Same-namespace accounts can sign for sibling chains (an EVM key is
		// chain-agnostic), so fall back to the namespace before giving up.
		sender, err = id.RequireAccount(accounts, chain.Namespace())
		if err != nil {
			return model.SendResult{}, err
		}
	}

	recipient, err := o.resolver.Recipient(ctx, chain, req.To)
	if err != nil {
		return model.SendResult{}, err
	}

	symbol := strings.TrimSpace(req.Symbol)
	native := symbol == "" || strings.EqualFold(symbol, chain.NativeSym)
	if native {
		symbol = chain.NativeSym
	}

	decimals := registry.DecimalsFor(symbol)
	tokenAddr := ""
	if native {
		decimals = evmNativeDecimals
		if chain.IsSolana() {
			decimals = solanaNativeDecimals
		}
	} else {
		tokenAddr, ok = registry.AddressFor(symbol, chain.CAIP2)
		if !ok {
			return model.SendResult{}, clierr.New(clierr.CodeUnsupportedToken,
				fmt.Sprintf("token %s is not registered on chain %s", symbol, chain.CAIP2))
		}
	}

	baseUnits, err := id.ToBaseUnits(req.Amount, decimals)
	if err != nil {
		return model.SendResult{}, err
	}

	var wireReq transport.Request
	switch chain.Namespace() {
	case id.NamespaceEVM:
		var tx evm.Transaction
		if native {
			tx, err = evm.NativeTransfer(sender.Address, recipient.Address, baseUnits)
		} else {
			tx, err = evm.TokenTransfer(sender.Address, tokenAddr, recipient.Address, baseUnits)
		}
		if err != nil {
			return model.SendResult{}, err
		}
		wireReq, err = transport.NewRequest(methodEVMSend, []evm.Transaction{tx})
	case id.NamespaceSolana:
		var encoded string
		encoded, err = o.encodeSolana(ctx, chain, sender.Address, recipient.Address, tokenAddr, baseUnits, native)
		if err != nil {
			return model.SendResult{}, err
		}
		wireReq, err = transport.NewRequest(methodSolanaSend, map[string]string{"transaction": encoded})
	default:
		return model.SendResult{}, clierr.New(clierr.CodeUnsupportedChain,
			fmt.Sprintf("no encoder for namespace %s", chain.Namespace()))
	}
	if err != nil {
		return model.SendResult{}, err
	}

	result := model.SendResult{
		ChainID:      chain.CAIP2,
		From:         sender.Address,
		To:           recipient.Address,
		ToInput:      recipient.Input,
		NameResolved: recipient.Resolved,
		Symbol:       symbol,
		Amount:       id.FromBaseUnits(baseUnits, decimals),
	}

	o.log.Info("submitting transfer for approval", map[string]any{
		"chain":  chain.CAIP2,
		"symbol": symbol,
		"to":     recipient.Address,
	})

	raw, err := o.gateway.Send(ctx, sess.Topic, chain.CAIP2, wireReq)
	if err != nil {
		result.Status = model.StatusRejected
		result.Reason = rejectionReason(err)
		return result, nil
	}

	txID, err := parseTxID(raw)
	if err != nil {
		result.Status = model.StatusRejected
		result.Reason = rejectionReason(err)
		return result, nil
	}

	result.Status = model.StatusSent
	result.TxID = txID
	result.ExplorerURL = registry.ExplorerTxURL(chain, txID)
	return result, nil
}

func (o *Orchestrator) encodeSolana(ctx context.Context, chain id.Chain, sender, recipient, mint string, baseUnits *big.Int, native bool) (string, error) {
	if !baseUnits.IsUint64() {
		return "", clierr.New(clierr.CodeUsage,
			fmt.Sprintf("amount %s exceeds the chain's integer range", baseUnits))
	}
	amount := baseUnits.Uint64()
	rpcURL, err := registry.ResolveRPCURL(o.rpcOverrides, chain)
	if err != nil {
		return "", clierr.Wrap(clierr.CodeChainQuery, "resolve RPC endpoint", err)
	}
	encoder := solenc.NewEncoder(o.newSolanaQueries(rpcURL), o.log)
	if native {
		return encoder.NativeTransfer(ctx, sender, recipient, amount)
	}
	return encoder.TokenTransfer(ctx, sender, recipient, mint, amount)
}

// parseTxID accepts the two shapes wallets answer with: a bare JSON string,
// or an object carrying a signature/hash field.
func parseTxID(raw json.RawMessage) (string, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil && s != "" {
		return s, nil
	}
	var obj struct {
		Signature string `json:"signature"`
		TxHash    string `json:"txHash"`
		Hash      string `json:"hash"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		for _, v := range []string{obj.Signature, obj.TxHash, obj.Hash} {
			if v != "" {
				return v, nil
			}
		}
	}
	return "", clierr.New(clierr.CodeTransport, "wallet response carried no transaction id")
}

func rejectionReason(err error) string {
	if cerr, ok := clierr.As(err); ok {
		return cerr.Message
	}
	return err.Error()
}
