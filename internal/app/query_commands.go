package app

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/spf13/cobra"

	"github.com/walletbeam/walletbeam/internal/chains/evm"
	solchain "github.com/walletbeam/walletbeam/internal/chains/solana"
	clierr "github.com/walletbeam/walletbeam/internal/errors"
	"github.com/walletbeam/walletbeam/internal/id"
	"github.com/walletbeam/walletbeam/internal/model"
	"github.com/walletbeam/walletbeam/internal/registry"
)

func (s *runtimeState) newBalanceCommand() *cobra.Command {
	var chainArg, tokenArg, accountArg, topicArg string
	cmd := &cobra.Command{
		Use:   "balance",
		Short: "Read an account balance from chain RPC",
		RunE: func(cmd *cobra.Command, args []string) error {
			chain, err := id.ParseChain(chainArg)
			if err != nil {
				return err
			}

			address := strings.TrimSpace(accountArg)
			if address == "" {
				sess, err := s.sessions.Get(topicArg)
				if err != nil {
					return err
				}
				accounts, err := id.ParseAccounts(sess.Accounts)
				if err != nil {
					return err
				}
				account, ok := id.FindAccount(accounts, chain.CAIP2)
				if !ok {
					account, err = id.RequireAccount(accounts, chain.Namespace())
					if err != nil {
						return err
					}
				}
				address = account.Address
			}

			symbol := strings.TrimSpace(tokenArg)
			native := symbol == "" || strings.EqualFold(symbol, chain.NativeSym)
			if native {
				symbol = chain.NativeSym
			}

			rpcURL, err := registry.ResolveRPCURL(s.settings.RPCOverrides, chain)
			if err != nil {
				return clierr.Wrap(clierr.CodeChainQuery, "resolve RPC endpoint", err)
			}

			ctx, cancel := context.WithTimeout(context.Background(), s.settings.Timeout)
			defer cancel()

			var baseUnits *big.Int
			decimals := registry.DecimalsFor(symbol)
			switch {
			case chain.IsEVM() && native:
				decimals = 18
				baseUnits, err = evm.NativeBalance(ctx, rpcURL, address)
			case chain.IsEVM():
				tokenAddr, ok := registry.AddressFor(symbol, chain.CAIP2)
				if !ok {
					return unsupportedToken(symbol, chain)
				}
				baseUnits, err = evm.TokenBalance(ctx, rpcURL, tokenAddr, address)
			case chain.IsSolana() && native:
				decimals = 9
				var lamports uint64
				lamports, err = solchain.NativeBalance(ctx, rpcURL, address)
				baseUnits = new(big.Int).SetUint64(lamports)
			case chain.IsSolana():
				mint, ok := registry.AddressFor(symbol, chain.CAIP2)
				if !ok {
					return unsupportedToken(symbol, chain)
				}
				var amount uint64
				amount, err = solchain.TokenBalance(ctx, rpcURL, mint, address)
				baseUnits = new(big.Int).SetUint64(amount)
			default:
				return clierr.New(clierr.CodeUnsupportedChain,
					fmt.Sprintf("no balance reader for chain %s", chain.CAIP2))
			}
			if err != nil {
				return err
			}

			return s.emitSuccess(trimRootPath(cmd.CommandPath()), model.BalanceResult{
				ChainID:         chain.CAIP2,
				Account:         address,
				Symbol:          symbol,
				AmountBaseUnits: baseUnits.String(),
				AmountDecimal:   id.FromBaseUnits(baseUnits, decimals),
				Decimals:        decimals,
			}, nil)
		},
	}
	cmd.Flags().StringVar(&chainArg, "chain", "", "Target chain (slug, chain ID, or CAIP-2)")
	cmd.Flags().StringVar(&tokenArg, "token", "", "Token symbol; omit for the chain's native asset")
	cmd.Flags().StringVar(&accountArg, "account", "", "Address override; defaults to the session account")
	cmd.Flags().StringVar(&topicArg, "topic", "", "Session topic; omit when only one session exists")
	_ = cmd.MarkFlagRequired("chain")
	return cmd
}

func (s *runtimeState) newTokensCommand() *cobra.Command {
	root := &cobra.Command{Use: "tokens", Short: "Token registry commands"}
	var chainArg string
	list := &cobra.Command{
		Use:   "list",
		Short: "List registered tokens for a chain",
		RunE: func(cmd *cobra.Command, args []string) error {
			chain, err := id.ParseChain(chainArg)
			if err != nil {
				return err
			}
			nativeDecimals := 18
			if chain.IsSolana() {
				nativeDecimals = 9
			}
			items := []model.TokenInfo{{
				Symbol:   chain.NativeSym,
				Name:     chain.Name + " native asset",
				Decimals: nativeDecimals,
				ChainID:  chain.CAIP2,
				Native:   true,
			}}
			for _, token := range registry.ListForChain(chain.CAIP2) {
				items = append(items, model.TokenInfo{
					Symbol:   token.Symbol,
					Name:     token.Name,
					Address:  token.Addresses[chain.CAIP2],
					Decimals: token.Decimals,
					ChainID:  chain.CAIP2,
				})
			}
			return s.emitSuccess(trimRootPath(cmd.CommandPath()), items, nil)
		},
	}
	list.Flags().StringVar(&chainArg, "chain", "", "Target chain (slug, chain ID, or CAIP-2)")
	_ = list.MarkFlagRequired("chain")
	root.AddCommand(list)
	return root
}

func unsupportedToken(symbol string, chain id.Chain) error {
	return clierr.New(clierr.CodeUnsupportedToken,
		fmt.Sprintf("token %s is not registered on chain %s", symbol, chain.CAIP2))
}
