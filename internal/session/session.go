// Package session owns the flat session registry: wallet pairings persisted
// as a single JSON file keyed by session topic.
package session

import "time"

// Session is one approved wallet pairing. Created on pairing approval,
// touched on auth and health checks, removed only explicitly.
type Session struct {
	Topic         string    `json:"topic"`
	PeerName      string    `json:"peer_name"`
	Accounts      []string  `json:"accounts"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	Authenticated bool      `json:"authenticated"`
	AuthAddress   string    `json:"auth_address,omitempty"`
	AuthSignature string    `json:"auth_signature,omitempty"`
}

// Touch refreshes the update timestamp.
func (s *Session) Touch() {
	s.UpdatedAt = time.Now().UTC()
}
