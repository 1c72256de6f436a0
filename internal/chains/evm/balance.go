package evm

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"

	clierr "github.com/walletbeam/walletbeam/internal/errors"
)

var balanceOfSelector = selectorFor("balanceOf(address)")

// NativeBalance reads the chain-native balance of addr at the latest block.
func NativeBalance(ctx context.Context, rpcURL, addr string) (*big.Int, error) {
	account, err := parseAddress(addr)
	if err != nil {
		return nil, err
	}
	client, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, clierr.Wrap(clierr.CodeChainQuery, "connect to RPC endpoint", err)
	}
	defer client.Close()

	bal, err := client.BalanceAt(ctx, account, nil)
	if err != nil {
		return nil, clierr.Wrap(clierr.CodeChainQuery, "query native balance", err)
	}
	return bal, nil
}

// TokenBalance reads an ERC-20 balanceOf(addr) via eth_call.
func TokenBalance(ctx context.Context, rpcURL, tokenAddress, addr string) (*big.Int, error) {
	contract, err := parseAddress(tokenAddress)
	if err != nil {
		return nil, err
	}
	account, err := parseAddress(addr)
	if err != nil {
		return nil, err
	}
	client, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, clierr.Wrap(clierr.CodeChainQuery, "connect to RPC endpoint", err)
	}
	defer client.Close()

	data := make([]byte, 0, 4+32)
	data = append(data, balanceOfSelector...)
	data = append(data, common.LeftPadBytes(account.Bytes(), 32)...)

	out, err := client.CallContract(ctx, ethereum.CallMsg{To: &contract, Data: data}, nil)
	if err != nil {
		return nil, clierr.Wrap(clierr.CodeChainQuery, "query token balance", err)
	}
	if len(out) == 0 {
		return nil, clierr.New(clierr.CodeChainQuery, "token contract returned no balance data")
	}
	return new(big.Int).SetBytes(out), nil
}
