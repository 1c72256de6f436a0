package resolve

import (
	"context"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"

	clierr "github.com/walletbeam/walletbeam/internal/errors"
)

// ensRegistryAddress is the ENS registry, identical across mainnet and the
// public testnets.
var ensRegistryAddress = common.HexToAddress("0x00000000000C2E074eC69A0dFb2997BA6C7d2e1e")

var (
	resolverSelector = crypto.Keccak256([]byte("resolver(bytes32)"))[:4]
	addrSelector     = crypto.Keccak256([]byte("addr(bytes32)"))[:4]
)

// ENSClient resolves .eth names against an Ethereum mainnet RPC endpoint.
type ENSClient struct {
	rpcURL string
}

func NewENSClient(rpcURL string) *ENSClient {
	return &ENSClient{rpcURL: rpcURL}
}

var _ Lookup = (*ENSClient)(nil)

func (c *ENSClient) LookupName(ctx context.Context, name string) (string, error) {
	node := Namehash(name)

	client, err := ethclient.DialContext(ctx, c.rpcURL)
	if err != nil {
		return "", clierr.Wrap(clierr.CodeNameResolution, "connect to name-service RPC", err)
	}
	defer client.Close()

	resolverAddr, err := c.callForAddress(ctx, client, ensRegistryAddress, resolverSelector, node)
	if err != nil {
		return "", err
	}
	if resolverAddr == (common.Address{}) {
		return "", clierr.New(clierr.CodeNameResolution, fmt.Sprintf("name %q is not registered", name))
	}

	resolved, err := c.callForAddress(ctx, client, resolverAddr, addrSelector, node)
	if err != nil {
		return "", err
	}
	if resolved == (common.Address{}) {
		return "", clierr.New(clierr.CodeNameResolution, fmt.Sprintf("name %q has no address record", name))
	}
	return resolved.Hex(), nil
}

func (c *ENSClient) callForAddress(ctx context.Context, client *ethclient.Client, contract common.Address, selector []byte, node [32]byte) (common.Address, error) {
	data := make([]byte, 0, 4+32)
	data = append(data, selector...)
	data = append(data, node[:]...)

	out, err := client.CallContract(ctx, ethereum.CallMsg{To: &contract, Data: data}, nil)
	if err != nil {
		return common.Address{}, clierr.Wrap(clierr.CodeNameResolution, "name-service query failed", err)
	}
	if len(out) < 32 {
		return common.Address{}, nil
	}
	return common.BytesToAddress(out[12:32]), nil
}

// Namehash implements the ENS namehash algorithm (EIP-137).
func Namehash(name string) [32]byte {
	var node [32]byte
	name = strings.TrimSuffix(strings.ToLower(strings.TrimSpace(name)), ".")
	if name == "" {
		return node
	}
	labels := strings.Split(name, ".")
	for i := len(labels) - 1; i >= 0; i-- {
		labelHash := crypto.Keccak256([]byte(labels[i]))
		copy(node[:], crypto.Keccak256(node[:], labelHash))
	}
	return node
}
