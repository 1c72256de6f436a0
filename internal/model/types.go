package model

import "time"

const EnvelopeVersion = "v1"

const (
	StatusSent     = "sent"
	StatusRejected = "rejected"
	StatusError    = "error"
)

type Envelope struct {
	Version  string       `json:"version"`
	Success  bool         `json:"success"`
	Data     any          `json:"data,omitempty"`
	Error    *ErrorBody   `json:"error"`
	Warnings []string     `json:"warnings,omitempty"`
	Meta     EnvelopeMeta `json:"meta"`
}

type ErrorBody struct {
	Code    int    `json:"code"`
	Type    string `json:"type"`
	Message string `json:"message"`
}

type EnvelopeMeta struct {
	RequestID string    `json:"request_id"`
	Timestamp time.Time `json:"timestamp"`
	Command   string    `json:"command"`
}

// SendResult is the orchestrator's sole output artifact.
type SendResult struct {
	Status       string `json:"status"`
	ChainID      string `json:"chain_id"`
	From         string `json:"from"`
	To           string `json:"to"`
	ToInput      string `json:"to_input,omitempty"`
	NameResolved bool   `json:"name_resolved,omitempty"`
	Symbol       string `json:"symbol,omitempty"`
	Amount       string `json:"amount"`
	TxID         string `json:"tx_id,omitempty"`
	ExplorerURL  string `json:"explorer_url,omitempty"`
	Reason       string `json:"reason,omitempty"`
}

type SessionSummary struct {
	Topic         string   `json:"topic"`
	PeerName      string   `json:"peer_name"`
	Accounts      []string `json:"accounts"`
	Authenticated bool     `json:"authenticated"`
	AuthAddress   string   `json:"auth_address,omitempty"`
	CreatedAt     string   `json:"created_at"`
	UpdatedAt     string   `json:"updated_at"`
}

type PairResult struct {
	Topic    string   `json:"topic"`
	PeerName string   `json:"peer_name"`
	Accounts []string `json:"accounts"`
	URI      string   `json:"uri"`
}

type AuthResult struct {
	Topic     string `json:"topic"`
	Address   string `json:"address"`
	Message   string `json:"message"`
	Signature string `json:"signature"`
}

type PingResult struct {
	Topic string `json:"topic"`
	Alive bool   `json:"alive"`
}

type BalanceResult struct {
	ChainID         string `json:"chain_id"`
	Account         string `json:"account"`
	Symbol          string `json:"symbol"`
	AmountBaseUnits string `json:"amount_base_units"`
	AmountDecimal   string `json:"amount_decimal"`
	Decimals        int    `json:"decimals"`
}

type TokenInfo struct {
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Address  string `json:"address"`
	Decimals int    `json:"decimals"`
	ChainID  string `json:"chain_id"`
	Native   bool   `json:"native,omitempty"`
}

type NameResolution struct {
	Input    string `json:"input"`
	Address  string `json:"address"`
	Resolved bool   `json:"resolved"`
}
