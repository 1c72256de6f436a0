package app

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mr-tron/base58"
	"github.com/spf13/cobra"

	clierr "github.com/walletbeam/walletbeam/internal/errors"
	"github.com/walletbeam/walletbeam/internal/id"
	"github.com/walletbeam/walletbeam/internal/model"
	"github.com/walletbeam/walletbeam/internal/transport"
	"github.com/walletbeam/walletbeam/internal/version"
)

// newAuthCommand asks the wallet to sign a challenge message, proving the
// session counterparty controls the account it advertised.
func (s *runtimeState) newAuthCommand() *cobra.Command {
	var chainArg, topicArg string
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Verify session ownership with a signed challenge",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := s.sessions.Get(topicArg)
			if err != nil {
				return err
			}
			accounts, err := id.ParseAccounts(sess.Accounts)
			if err != nil {
				return err
			}
			account, err := id.RequireAccount(accounts, chainArg)
			if err != nil {
				return err
			}

			message := fmt.Sprintf("%s auth challenge %s at %s",
				version.CLIName, newRequestID(), time.Now().UTC().Format(time.RFC3339))

			var req transport.Request
			switch account.Namespace {
			case id.NamespaceEVM:
				hexMsg := "0x" + hex.EncodeToString([]byte(message))
				req, err = transport.NewRequest("personal_sign", []string{hexMsg, account.Address})
			case id.NamespaceSolana:
				req, err = transport.NewRequest("solana_signMessage", map[string]string{
					"pubkey":  account.Address,
					"message": base58.Encode([]byte(message)),
				})
			default:
				return clierr.New(clierr.CodeUnsupportedChain,
					fmt.Sprintf("cannot authenticate namespace %s", account.Namespace))
			}
			if err != nil {
				return clierr.Wrap(clierr.CodeInternal, "encode auth request", err)
			}

			raw, err := s.gateway.Send(context.Background(), sess.Topic, account.ChainID(), req)
			if err != nil {
				return err
			}
			signature, err := parseSignature(raw)
			if err != nil {
				return err
			}

			sess.Authenticated = true
			sess.AuthAddress = account.Address
			sess.AuthSignature = signature
			sess.Touch()
			if err := s.sessions.Save(sess); err != nil {
				return clierr.Wrap(clierr.CodeInternal, "persist session", err)
			}

			return s.emitSuccess(trimRootPath(cmd.CommandPath()), model.AuthResult{
				Topic:     sess.Topic,
				Address:   account.Address,
				Message:   message,
				Signature: signature,
			}, nil)
		},
	}
	cmd.Flags().StringVar(&chainArg, "chain", "", "Account selector (namespace or CAIP-2); defaults to the first account")
	cmd.Flags().StringVar(&topicArg, "topic", "", "Session topic; omit when only one session exists")
	return cmd
}

func parseSignature(raw json.RawMessage) (string, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil && s != "" {
		return s, nil
	}
	var obj struct {
		Signature string `json:"signature"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil && obj.Signature != "" {
		return obj.Signature, nil
	}
	return "", clierr.New(clierr.CodeTransport, "wallet response carried no signature")
}
