// Package evm encodes EVM transfer transactions for remote signing. The
// wallet holds the key, so everything here produces unsigned transaction
// fields; gas, nonce, and fee parameters are left to the signer.
package evm

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"

	clierr "github.com/walletbeam/walletbeam/internal/errors"
)

// Transaction carries the eth_sendTransaction parameter object. All fields
// are 0x-prefixed hex as wallets expect on the wire.
type Transaction struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Value string `json:"value"`
	Data  string `json:"data,omitempty"`
}

var transferSelector = selectorFor("transfer(address,uint256)")

// selectorFor returns the 4-byte function selector for a canonical signature.
func selectorFor(signature string) []byte {
	return crypto.Keccak256([]byte(signature))[:4]
}

// NativeTransfer builds an ETH (or chain-native) value transfer.
func NativeTransfer(from, to string, amount *big.Int) (Transaction, error) {
	fromAddr, err := parseAddress(from)
	if err != nil {
		return Transaction{}, err
	}
	toAddr, err := parseAddress(to)
	if err != nil {
		return Transaction{}, err
	}
	if amount == nil || amount.Sign() < 0 {
		return Transaction{}, clierr.New(clierr.CodeUsage, "transfer amount must be non-negative")
	}
	return Transaction{
		From:  fromAddr.Hex(),
		To:    toAddr.Hex(),
		Value: hexutil.EncodeBig(amount),
	}, nil
}

// TokenTransfer builds an ERC-20 transfer(to, amount) call against the token
// contract. The transaction value is zero; the recipient and amount live in
// the ABI-encoded calldata.
func TokenTransfer(from, tokenAddress, to string, amount *big.Int) (Transaction, error) {
	fromAddr, err := parseAddress(from)
	if err != nil {
		return Transaction{}, err
	}
	contractAddr, err := parseAddress(tokenAddress)
	if err != nil {
		return Transaction{}, err
	}
	toAddr, err := parseAddress(to)
	if err != nil {
		return Transaction{}, err
	}
	if amount == nil || amount.Sign() < 0 {
		return Transaction{}, clierr.New(clierr.CodeUsage, "transfer amount must be non-negative")
	}
	if amount.BitLen() > 256 {
		return Transaction{}, clierr.New(clierr.CodeUsage, "transfer amount exceeds uint256")
	}

	data := make([]byte, 0, 4+32+32)
	data = append(data, transferSelector...)
	data = append(data, common.LeftPadBytes(toAddr.Bytes(), 32)...)
	data = append(data, common.LeftPadBytes(amount.Bytes(), 32)...)

	return Transaction{
		From:  fromAddr.Hex(),
		To:    contractAddr.Hex(),
		Value: "0x0",
		Data:  hexutil.Encode(data),
	}, nil
}

func parseAddress(raw string) (common.Address, error) {
	s := strings.TrimSpace(raw)
	if !common.IsHexAddress(s) {
		return common.Address{}, clierr.New(clierr.CodeUsage, fmt.Sprintf("invalid EVM address %q", raw))
	}
	return common.HexToAddress(s), nil
}
