package ports

import "time"

// IssuedToken is a signed identity assertion plus its validity window.
type IssuedToken struct {
	Token     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenIssuer signs identity claims for an account. It keeps no record of
// what it issued.
type TokenIssuer interface {
	Issue(subjectID, email, name string) (IssuedToken, error)
}
