package app

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	clierr "github.com/walletbeam/walletbeam/internal/errors"
	"github.com/walletbeam/walletbeam/internal/model"
	"github.com/walletbeam/walletbeam/internal/session"
)

// walletCapabilities are the signing methods advertised on pairing.
var walletCapabilities = []string{
	"eth_sendTransaction",
	"personal_sign",
	"solana_signAndSendTransaction",
	"solana_signMessage",
}

func (s *runtimeState) newPairCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pair",
		Short: "Pair with a wallet and persist the approved session",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), s.settings.Timeout)
			pairing, err := s.transport.Connect(ctx, walletCapabilities)
			cancel()
			if err != nil {
				return err
			}

			// The URI goes to stderr so stdout stays a clean result stream.
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Pairing URI (open in your wallet):\n%s\n", pairing.URI)
			s.log.Info("waiting for pairing approval", map[string]any{
				"timeout": s.settings.ApprovalTimeout.String(),
			})

			approveCtx, cancel := context.WithTimeout(context.Background(), s.settings.ApprovalTimeout)
			defer cancel()
			info, err := pairing.Approve(approveCtx)
			if err != nil {
				if approveCtx.Err() != nil {
					return clierr.New(clierr.CodeTimeout,
						fmt.Sprintf("pairing approval timed out after %s", s.settings.ApprovalTimeout))
				}
				return err
			}

			now := time.Now().UTC()
			sess := session.Session{
				Topic:     info.Topic,
				PeerName:  info.PeerName,
				Accounts:  info.Accounts,
				CreatedAt: now,
				UpdatedAt: now,
			}
			if err := s.sessions.Save(sess); err != nil {
				return clierr.Wrap(clierr.CodeInternal, "persist session", err)
			}

			return s.emitSuccess(trimRootPath(cmd.CommandPath()), model.PairResult{
				Topic:    sess.Topic,
				PeerName: sess.PeerName,
				Accounts: sess.Accounts,
				URI:      pairing.URI,
			}, nil)
		},
	}
	return cmd
}

func (s *runtimeState) newSessionsCommand() *cobra.Command {
	root := &cobra.Command{Use: "sessions", Short: "Manage wallet sessions"}

	list := &cobra.Command{
		Use:   "list",
		Short: "List stored wallet sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			sessions, err := s.sessions.List()
			if err != nil {
				return err
			}
			summaries := make([]model.SessionSummary, 0, len(sessions))
			for _, sess := range sessions {
				summaries = append(summaries, summarize(sess))
			}
			return s.emitSuccess(trimRootPath(cmd.CommandPath()), summaries, nil)
		},
	}

	var removeTopic string
	remove := &cobra.Command{
		Use:   "remove",
		Short: "Remove a stored wallet session",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := s.sessions.Get(removeTopic)
			if err != nil {
				return err
			}
			if err := s.sessions.Delete(sess.Topic); err != nil {
				return err
			}
			return s.emitSuccess(trimRootPath(cmd.CommandPath()), map[string]any{
				"topic":   sess.Topic,
				"removed": true,
			}, nil)
		},
	}
	remove.Flags().StringVar(&removeTopic, "topic", "", "Session topic; omit when only one session exists")

	var pingTopic string
	ping := &cobra.Command{
		Use:   "ping",
		Short: "Check that a wallet session is still alive",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := s.sessions.Get(pingTopic)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(context.Background(), s.settings.Timeout)
			defer cancel()
			pingErr := s.transport.Ping(ctx, sess.Topic)
			if pingErr == nil {
				sess.Touch()
				if err := s.sessions.Save(sess); err != nil {
					return clierr.Wrap(clierr.CodeInternal, "persist session", err)
				}
			}
			return s.emitSuccess(trimRootPath(cmd.CommandPath()), model.PingResult{
				Topic: sess.Topic,
				Alive: pingErr == nil,
			}, warningsFromPing(pingErr))
		},
	}
	ping.Flags().StringVar(&pingTopic, "topic", "", "Session topic; omit when only one session exists")

	root.AddCommand(list)
	root.AddCommand(remove)
	root.AddCommand(ping)
	return root
}

func summarize(sess session.Session) model.SessionSummary {
	return model.SessionSummary{
		Topic:         sess.Topic,
		PeerName:      sess.PeerName,
		Accounts:      sess.Accounts,
		Authenticated: sess.Authenticated,
		AuthAddress:   sess.AuthAddress,
		CreatedAt:     sess.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:     sess.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func warningsFromPing(err error) []string {
	if err == nil {
		return nil
	}
	return []string{fmt.Sprintf("session ping failed: %v", err)}
}
