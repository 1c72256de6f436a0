// Package transport carries signing and broadcast requests to the remote
// wallet. The protocol itself is opaque: everything behind the Transport
// interface is an external collaborator.
package transport

import (
	"context"
	"encoding/json"
)

// Request is one wallet-bound request: a protocol method name plus its
// already-encoded parameters.
type Request struct {
	Method string          `json:"method"`
	Params json.RawMessage `json:"params"`
}

// SessionInfo is what the wallet hands back when a pairing is approved.
type SessionInfo struct {
	Topic    string   `json:"topic"`
	PeerName string   `json:"peer_name"`
	Accounts []string `json:"accounts"`
}

// Pairing is a proposed connection: a URI for the user's wallet plus an
// Approve call that blocks until the wallet accepts or the context ends.
type Pairing struct {
	URI     string
	Approve func(ctx context.Context) (SessionInfo, error)
}

type Transport interface {
	// Connect opens a pairing proposal advertising the capabilities the
	// agent needs (signing methods per namespace).
	Connect(ctx context.Context, capabilities []string) (Pairing, error)
	// Request routes one request to the wallet session and blocks until
	// the wallet responds or ctx ends.
	Request(ctx context.Context, topic, chainID string, req Request) (json.RawMessage, error)
	// Ping checks session liveness.
	Ping(ctx context.Context, topic string) error
}

// NewRequest marshals params into a Request.
func NewRequest(method string, params any) (Request, error) {
	buf, err := json.Marshal(params)
	if err != nil {
		return Request{}, err
	}
	return Request{Method: method, Params: buf}, nil
}
