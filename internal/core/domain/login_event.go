package domain

import "time"

// LoginEvent records a single login attempt for the audit trail.
// AccountID is empty when no account matched the email.
type LoginEvent struct {
	AccountID  string    `json:"account_id,omitempty"`
	Email      string    `json:"email"`
	Succeeded  bool      `json:"succeeded"`
	RemoteAddr string    `json:"remote_addr,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
