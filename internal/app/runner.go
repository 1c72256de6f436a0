package app

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/walletbeam/walletbeam/internal/cache"
	"github.com/walletbeam/walletbeam/internal/config"
	clierr "github.com/walletbeam/walletbeam/internal/errors"
	"github.com/walletbeam/walletbeam/internal/httpx"
	"github.com/walletbeam/walletbeam/internal/logger"
	"github.com/walletbeam/walletbeam/internal/model"
	"github.com/walletbeam/walletbeam/internal/out"
	"github.com/walletbeam/walletbeam/internal/registry"
	"github.com/walletbeam/walletbeam/internal/resolve"
	"github.com/walletbeam/walletbeam/internal/schema"
	"github.com/walletbeam/walletbeam/internal/session"
	"github.com/walletbeam/walletbeam/internal/transport"
	"github.com/walletbeam/walletbeam/internal/version"
)

type Runner struct {
	stdout io.Writer
	stderr io.Writer
	now    func() time.Time
}

func NewRunner() *Runner {
	return NewRunnerWithWriters(os.Stdout, os.Stderr)
}

func NewRunnerWithWriters(stdout, stderr io.Writer) *Runner {
	return &Runner{
		stdout: stdout,
		stderr: stderr,
		now:    time.Now,
	}
}

type runtimeState struct {
	runner      *Runner
	flags       config.GlobalFlags
	settings    config.Settings
	log         logger.Logger
	root        *cobra.Command
	lastCommand string

	sessions  *session.Store
	transport transport.Transport
	gateway   *transport.Gateway
	cache     *cache.Store
	resolver  *resolve.Resolver
}

func (r *Runner) Run(args []string) int {
	state := &runtimeState{runner: r, log: logger.NoopLogger{}}
	root := state.newRootCommand()
	state.root = root
	root.SetArgs(args)
	root.SetOut(r.stdout)
	root.SetErr(r.stderr)
	root.SilenceUsage = true
	root.SilenceErrors = true

	err := root.Execute()
	err = normalizeRunError(err)
	if state.cache != nil {
		_ = state.cache.Close()
	}
	if err == nil {
		return 0
	}

	state.renderError("", err)
	return clierr.ExitCode(err)
}

func (s *runtimeState) newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   version.CLIName,
		Short: "Agent-first remote wallet transfer CLI",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "help" {
				return nil
			}
			settings, err := config.Load(s.flags)
			if err != nil {
				return clierr.Wrap(clierr.CodeUsage, "load configuration", err)
			}
			s.settings = settings
			s.log = logger.NewZapLogger(settings.LogLevel)

			path := trimRootPath(cmd.CommandPath())
			s.lastCommand = path
			if err := checkCommandAllowed(settings.EnableCommands, path); err != nil {
				return err
			}
			if !needsWiring(path) {
				return nil
			}

			store, err := session.OpenStore(settings.SessionPath, settings.SessionLockPath)
			if err != nil {
				return clierr.Wrap(clierr.CodeInternal, "open session store", err)
			}
			s.sessions = store

			// No per-request timeout on the bridge client: approval waits
			// long-poll past any RPC timeout, and every call is already
			// bounded by a context or the gateway deadline.
			httpClient := httpx.New(0, settings.Retries)
			s.transport = transport.NewBridgeClient(httpClient, settings.BridgeURL, settings.BridgeToken)
			s.gateway = transport.NewGateway(s.transport, s.log, settings.PollInterval, settings.ApprovalTimeout)

			if settings.CacheEnabled && shouldOpenCache(path) {
				cacheStore, err := cache.Open(settings.CachePath, settings.CacheLockPath)
				if err != nil {
					return clierr.Wrap(clierr.CodeInternal, "open resolver cache", err)
				}
				s.cache = cacheStore
			}
			ens := resolve.NewENSClient(nameServiceRPC(settings.RPCOverrides))
			s.resolver = resolve.NewResolver(ens, s.cache, s.log)
			return nil
		},
	}
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return clierr.Wrap(clierr.CodeUsage, "parse flags", err)
	})

	cmd.PersistentFlags().BoolVar(&s.flags.JSON, "json", false, "Output JSON (default)")
	cmd.PersistentFlags().BoolVar(&s.flags.Plain, "plain", false, "Output plain text")
	cmd.PersistentFlags().StringVar(&s.flags.Select, "select", "", "Select fields from data (comma-separated)")
	cmd.PersistentFlags().BoolVar(&s.flags.ResultsOnly, "results-only", false, "Output only data payload")
	cmd.PersistentFlags().StringVar(&s.flags.EnableCommands, "enable-commands", "", "Allowlist command paths (comma-separated)")
	cmd.PersistentFlags().StringVar(&s.flags.LogLevel, "log-level", "", "Log level (debug|info|warn|error)")
	cmd.PersistentFlags().StringVar(&s.flags.Timeout, "timeout", "", "RPC/bridge request timeout")
	cmd.PersistentFlags().StringVar(&s.flags.ApprovalTimeout, "approval-timeout", "", "Wallet approval timeout")
	cmd.PersistentFlags().StringVar(&s.flags.PollInterval, "poll-interval", "", "Approval liveness interval")
	cmd.PersistentFlags().BoolVar(&s.flags.NoCache, "no-cache", false, "Disable resolver cache reads and writes")
	cmd.PersistentFlags().StringVar(&s.flags.ConfigPath, "config", "", "Path to config file")

	cmd.AddCommand(s.newSendCommand())
	cmd.AddCommand(s.newPairCommand())
	cmd.AddCommand(s.newSessionsCommand())
	cmd.AddCommand(s.newAuthCommand())
	cmd.AddCommand(s.newBalanceCommand())
	cmd.AddCommand(s.newTokensCommand())
	cmd.AddCommand(s.newResolveCommand())
	cmd.AddCommand(s.newSchemaCommand())
	cmd.AddCommand(newVersionCommand())

	return cmd
}

func newVersionCommand() *cobra.Command {
	var long bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print CLI version",
		Run: func(cmd *cobra.Command, args []string) {
			if long {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), version.Long())
				return
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), version.CLIVersion)
		},
	}
	cmd.Flags().BoolVar(&long, "long", false, "Print extended build metadata")
	return cmd
}

func (s *runtimeState) newSchemaCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "schema [command path]",
		Short: "Print machine-readable command schema",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) > 0 {
				path = strings.Join(args, " ")
			}
			data, err := schema.Build(s.root, path)
			if err != nil {
				return err
			}
			return s.emitSuccess(trimRootPath(cmd.CommandPath()), data, nil)
		},
	}
}

func (s *runtimeState) emitSuccess(commandPath string, data any, warnings []string) error {
	env := model.Envelope{
		Version:  model.EnvelopeVersion,
		Success:  true,
		Data:     data,
		Error:    nil,
		Warnings: warnings,
		Meta: model.EnvelopeMeta{
			RequestID: newRequestID(),
			Timestamp: s.runner.now().UTC(),
			Command:   commandPath,
		},
	}
	return out.Render(s.runner.stdout, env, s.settings)
}

func (s *runtimeState) renderError(commandPath string, err error) {
	if strings.TrimSpace(commandPath) == "" {
		commandPath = s.lastCommand
		if commandPath == "" {
			commandPath = version.CLIName
		}
	}
	code := clierr.ExitCode(err)
	typ := "internal_error"
	message := err.Error()
	if cErr, ok := clierr.As(err); ok {
		message = cErr.Message
		if cErr.Cause != nil {
			message = fmt.Sprintf("%s: %v", cErr.Message, cErr.Cause)
		}
		typ = errorType(cErr.Code)
	}

	settings := s.settings
	if settings.OutputMode == "" {
		settings.OutputMode = "json"
	}
	settings.ResultsOnly = false
	settings.SelectFields = nil
	env := model.Envelope{
		Version: model.EnvelopeVersion,
		Success: false,
		Data:    []any{},
		Error: &model.ErrorBody{
			Code:    code,
			Type:    typ,
			Message: message,
		},
		Meta: model.EnvelopeMeta{
			RequestID: newRequestID(),
			Timestamp: s.runner.now().UTC(),
			Command:   commandPath,
		},
	}
	_ = out.Render(s.runner.stderr, env, settings)
}

func errorType(code clierr.Code) string {
	switch code {
	case clierr.CodeUsage:
		return "usage_error"
	case clierr.CodeNoSession:
		return "no_session"
	case clierr.CodeNoAccount:
		return "no_account"
	case clierr.CodeNameResolution:
		return "name_resolution"
	case clierr.CodeUnsupportedChain:
		return "unsupported_chain"
	case clierr.CodeUnsupportedToken:
		return "unsupported_token"
	case clierr.CodeChainQuery:
		return "chain_query"
	case clierr.CodeTimeout:
		return "approval_timeout"
	case clierr.CodeRejected:
		return "wallet_rejected"
	case clierr.CodeTransport:
		return "transport_error"
	case clierr.CodeBlocked:
		return "command_blocked"
	default:
		return "internal_error"
	}
}

func checkCommandAllowed(allowlist []string, commandPath string) error {
	if len(allowlist) == 0 {
		return nil
	}
	normPath := normalizeCommandPath(commandPath)
	for _, allowed := range allowlist {
		if normalizeCommandPath(allowed) == normPath {
			return nil
		}
	}
	return clierr.New(clierr.CodeBlocked, "command blocked by --enable-commands policy")
}

// needsWiring reports whether the command touches sessions, the bridge, or
// chain RPC. Introspection commands run on flags alone.
func needsWiring(commandPath string) bool {
	switch normalizeCommandPath(commandPath) {
	case "", "version", "schema", "tokens", "tokens list":
		return false
	default:
		return true
	}
}

func shouldOpenCache(commandPath string) bool {
	switch normalizeCommandPath(commandPath) {
	case "send", "resolve":
		return true
	default:
		return false
	}
}

// nameServiceRPC picks the Ethereum mainnet endpoint, honoring an override,
// since ENS records live there regardless of the transfer's target chain.
func nameServiceRPC(overrides map[string]string) string {
	if v := strings.TrimSpace(overrides["eip155:1"]); v != "" {
		return v
	}
	return registry.EthereumMainnetRPC
}

func normalizeCommandPath(commandPath string) string {
	return strings.Join(strings.Fields(strings.ToLower(strings.TrimSpace(commandPath))), " ")
}

func trimRootPath(path string) string {
	parts := strings.Fields(path)
	if len(parts) <= 1 {
		return path
	}
	return strings.Join(parts[1:], " ")
}

func newRequestID() string {
	buf := make([]byte, 16)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}

func normalizeRunError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := clierr.As(err); ok {
		return err
	}
	if isLikelyUsageError(err) {
		return clierr.Wrap(clierr.CodeUsage, "invalid command input", err)
	}
	return clierr.Wrap(clierr.CodeInternal, "execute command", err)
}

func isLikelyUsageError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(strings.TrimSpace(err.Error()))
	patterns := []string{
		"unknown command",
		"unknown flag",
		"required flag(s)",
		"flag needs an argument",
		"requires at least",
		"requires exactly",
		"accepts ",
		"invalid argument",
		"invalid args",
	}
	for _, p := range patterns {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}
