package app

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/walletbeam/walletbeam/internal/id"
	"github.com/walletbeam/walletbeam/internal/transfer"
)

func (s *runtimeState) newSendCommand() *cobra.Command {
	var chainArg, toArg, amountArg, tokenArg, topicArg string
	cmd := &cobra.Command{
		Use:   "send",
		Short: "Build a transfer and submit it to the wallet for approval",
		RunE: func(cmd *cobra.Command, args []string) error {
			orch := transfer.NewOrchestrator(s.sessions, s.resolver, s.gateway, s.log, s.settings.RPCOverrides)
			result, err := orch.Send(context.Background(), transfer.Request{
				Chain:  chainArg,
				To:     toArg,
				Amount: amountArg,
				Symbol: tokenArg,
				Topic:  topicArg,
			})
			if err != nil {
				return err
			}
			return s.emitSuccess(trimRootPath(cmd.CommandPath()), result, nil)
		},
	}
	cmd.Flags().StringVar(&chainArg, "chain", "", "Target chain (slug, chain ID, or CAIP-2)")
	cmd.Flags().StringVar(&toArg, "to", "", "Recipient address or .eth name")
	cmd.Flags().StringVar(&amountArg, "amount", "", "Amount in decimal units (e.g. 0.5)")
	cmd.Flags().StringVar(&tokenArg, "token", "", "Token symbol; omit for the chain's native asset")
	cmd.Flags().StringVar(&topicArg, "topic", "", "Session topic; omit when only one session exists")
	_ = cmd.MarkFlagRequired("chain")
	_ = cmd.MarkFlagRequired("to")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}

func (s *runtimeState) newResolveCommand() *cobra.Command {
	var chainArg, nameArg string
	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Resolve a recipient address or name for a chain",
		RunE: func(cmd *cobra.Command, args []string) error {
			chain, err := id.ParseChain(chainArg)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(context.Background(), s.settings.Timeout)
			defer cancel()
			res, err := s.resolver.Recipient(ctx, chain, nameArg)
			if err != nil {
				return err
			}
			return s.emitSuccess(trimRootPath(cmd.CommandPath()), res, nil)
		},
	}
	cmd.Flags().StringVar(&chainArg, "chain", "", "Target chain (slug, chain ID, or CAIP-2)")
	cmd.Flags().StringVar(&nameArg, "to", "", "Address or .eth name to resolve")
	_ = cmd.MarkFlagRequired("chain")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}
