package transport

import (
	"context"
	"encoding/json"
	"strings"

	clierr "github.com/walletbeam/walletbeam/internal/errors"
	"github.com/walletbeam/walletbeam/internal/httpx"
)

// BridgeClient talks JSON over HTTP to a local wallet-bridge daemon that
// owns the actual relay connection. The daemon's approval endpoint long-polls
// until the wallet answers, so every blocking wait lives behind ctx.
type BridgeClient struct {
	http    *httpx.Client
	baseURL string
	token   string
}

func NewBridgeClient(httpClient *httpx.Client, baseURL, token string) *BridgeClient {
	return &BridgeClient{
		http:    httpClient,
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		token:   strings.TrimSpace(token),
	}
}

var _ Transport = (*BridgeClient)(nil)

type connectResponse struct {
	PairingID string `json:"pairing_id"`
	URI       string `json:"uri"`
}

type approvalResponse struct {
	Session SessionInfo `json:"session"`
	Error   string      `json:"error,omitempty"`
}

type requestResponse struct {
	Result json.RawMessage `json:"result,omitempty"`
	Error  string          `json:"error,omitempty"`
}

func (c *BridgeClient) headers() map[string]string {
	if c.token == "" {
		return nil
	}
	return map[string]string{"Authorization": "Bearer " + c.token}
}

func (c *BridgeClient) Connect(ctx context.Context, capabilities []string) (Pairing, error) {
	var resp connectResponse
	body := map[string]any{"capabilities": capabilities}
	if err := c.http.PostJSON(ctx, c.baseURL+"/v1/connect", body, c.headers(), &resp); err != nil {
		return Pairing{}, err
	}
	if strings.TrimSpace(resp.URI) == "" {
		return Pairing{}, clierr.New(clierr.CodeTransport, "bridge returned empty pairing uri")
	}

	pairingID := resp.PairingID
	return Pairing{
		URI: resp.URI,
		Approve: func(ctx context.Context) (SessionInfo, error) {
			var approval approvalResponse
			body := map[string]any{"pairing_id": pairingID}
			if err := c.http.PostJSON(ctx, c.baseURL+"/v1/approval", body, c.headers(), &approval); err != nil {
				return SessionInfo{}, err
			}
			if approval.Error != "" {
				return SessionInfo{}, clierr.New(clierr.CodeRejected, approval.Error)
			}
			if approval.Session.Topic == "" {
				return SessionInfo{}, clierr.New(clierr.CodeTransport, "bridge approval missing session topic")
			}
			return approval.Session, nil
		},
	}, nil
}

func (c *BridgeClient) Request(ctx context.Context, topic, chainID string, req Request) (json.RawMessage, error) {
	var resp requestResponse
	body := map[string]any{
		"topic":    topic,
		"chain_id": chainID,
		"request":  req,
	}
	if err := c.http.PostJSON(ctx, c.baseURL+"/v1/request", body, c.headers(), &resp); err != nil {
		return nil, err
	}
	if resp.Error != "" {
		return nil, clierr.New(clierr.CodeRejected, resp.Error)
	}
	return resp.Result, nil
}

func (c *BridgeClient) Ping(ctx context.Context, topic string) error {
	return c.http.PostJSON(ctx, c.baseURL+"/v1/ping", map[string]any{"topic": topic}, c.headers(), nil)
}
