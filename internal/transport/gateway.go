package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	clierr "github.com/walletbeam/walletbeam/internal/errors"
	"github.com/walletbeam/walletbeam/internal/logger"
)

const (
	DefaultPollInterval    = 10 * time.Second
	DefaultApprovalTimeout = 5 * time.Minute
)

// Gateway bounds a wallet request with a wall-clock deadline and emits
// periodic liveness logs while the user decides on their device. The
// underlying transport call runs in its own goroutine so the gateway can
// settle on timeout even if the transport blocks past the deadline.
type Gateway struct {
	transport Transport
	log       logger.Logger
	poll      time.Duration
	timeout   time.Duration
}

func NewGateway(t Transport, log logger.Logger, poll, timeout time.Duration) *Gateway {
	if log == nil {
		log = logger.NoopLogger{}
	}
	if poll <= 0 {
		poll = DefaultPollInterval
	}
	if timeout <= 0 {
		timeout = DefaultApprovalTimeout
	}
	return &Gateway{transport: t, log: log, poll: poll, timeout: timeout}
}

type requestOutcome struct {
	result json.RawMessage
	err    error
}

// Send dispatches req to the wallet session and waits for exactly one
// terminal outcome: the wallet's response, the approval timeout, or ctx
// cancellation. After the first outcome no further liveness activity occurs.
func (g *Gateway) Send(ctx context.Context, topic, chainID string, req Request) (json.RawMessage, error) {
	reqCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan requestOutcome, 1)
	go func() {
		result, err := g.transport.Request(reqCtx, topic, chainID, req)
		done <- requestOutcome{result: result, err: err}
	}()

	deadline := time.NewTimer(g.timeout)
	defer deadline.Stop()
	ticker := time.NewTicker(g.poll)
	defer ticker.Stop()

	start := time.Now()
	g.log.Info("request sent to wallet", map[string]any{
		"topic":  topic,
		"method": req.Method,
		"chain":  chainID,
	})

	for {
		select {
		case outcome := <-done:
			if outcome.err != nil {
				return nil, outcome.err
			}
			return outcome.result, nil
		case <-deadline.C:
			return nil, clierr.New(clierr.CodeTimeout,
				fmt.Sprintf("wallet approval timed out after %s", g.timeout))
		case <-ticker.C:
			g.log.Info("waiting for wallet approval", map[string]any{
				"topic":   topic,
				"elapsed": time.Since(start).Round(time.Second).String(),
			})
			// Best-effort session keepalive; a failed ping is not terminal.
			go func() {
				pingCtx, pingCancel := context.WithTimeout(reqCtx, g.poll)
				defer pingCancel()
				if err := g.transport.Ping(pingCtx, topic); err != nil {
					g.log.Debug("session ping failed", map[string]any{"error": err.Error()})
				}
			}()
		case <-ctx.Done():
			return nil, clierr.Wrap(clierr.CodeTimeout, "request cancelled", ctx.Err())
		}
	}
}
