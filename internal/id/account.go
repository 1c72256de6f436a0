package id

import (
	"fmt"
	"strings"

	"github.com/mr-tron/base58"
	clierr "github.com/walletbeam/walletbeam/internal/errors"
)

// Account is a parsed CAIP-10 account identifier: namespace, chain reference
// and a chain-native address. Immutable once parsed.
type Account struct {
	Namespace string
	Reference string
	Address   string
}

// ParseAccount splits a compound account identifier into its three
// colon-delimited segments. The address is everything after the first two
// segments and may itself contain colons.
func ParseAccount(input string) (Account, error) {
	raw := strings.TrimSpace(input)
	parts := strings.SplitN(raw, ":", 3)
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return Account{}, clierr.New(clierr.CodeUsage, fmt.Sprintf("malformed account id: %s", input))
	}

	acct := Account{
		Namespace: strings.ToLower(parts[0]),
		Reference: parts[1],
		Address:   parts[2],
	}

	switch acct.Namespace {
	case NamespaceEVM:
		if !evmAddressPattern.MatchString(acct.Address) {
			return Account{}, clierr.New(clierr.CodeUsage, fmt.Sprintf("malformed account id: invalid hex address %s", acct.Address))
		}
	case NamespaceSolana:
		raw, err := base58.Decode(acct.Address)
		if err != nil || len(raw) != 32 {
			return Account{}, clierr.New(clierr.CodeUsage, fmt.Sprintf("malformed account id: invalid base58 address %s", acct.Address))
		}
	default:
		return Account{}, clierr.New(clierr.CodeUnsupportedChain, fmt.Sprintf("unsupported account namespace: %s", acct.Namespace))
	}

	return acct, nil
}

// String re-serializes the three segments into the original identifier.
func (a Account) String() string {
	return a.Namespace + ":" + a.Reference + ":" + a.Address
}

// ChainID is the namespace:reference pair identifying the chain.
func (a Account) ChainID() string {
	return a.Namespace + ":" + a.Reference
}

// FindAccount selects the best-matching account for a chain hint. No hint
// returns the first account. A full chain id (namespace:reference) requires
// an exact match; a bare namespace matches the first account in it. A hint
// matching nothing returns ok=false, never an error.
func FindAccount(accounts []Account, hint string) (Account, bool) {
	if len(accounts) == 0 {
		return Account{}, false
	}
	hint = strings.ToLower(strings.TrimSpace(hint))
	if hint == "" {
		return accounts[0], true
	}
	if strings.Contains(hint, ":") {
		for _, acct := range accounts {
			if strings.EqualFold(acct.ChainID(), hint) {
				return acct, true
			}
		}
		return Account{}, false
	}
	for _, acct := range accounts {
		if acct.Namespace == hint {
			return acct, true
		}
	}
	return Account{}, false
}

// RequireAccount is FindAccount for call sites where absence is fatal.
func RequireAccount(accounts []Account, hint string) (Account, error) {
	acct, ok := FindAccount(accounts, hint)
	if !ok {
		if hint == "" {
			return Account{}, clierr.New(clierr.CodeNoAccount, "session has no accounts")
		}
		return Account{}, clierr.New(clierr.CodeNoAccount, fmt.Sprintf("no session account matches chain %s", hint))
	}
	return acct, nil
}

// ParseAccounts parses a session's account list, skipping nothing: one bad
// entry fails the whole list so a corrupt session surfaces early.
func ParseAccounts(raw []string) ([]Account, error) {
	out := make([]Account, 0, len(raw))
	for _, entry := range raw {
		acct, err := ParseAccount(entry)
		if err != nil {
			return nil, err
		}
		out = append(out, acct)
	}
	return out, nil
}
