package domain

import "time"

const (
	// MaxEmailLength and MaxNameLength mirror the column bounds of the accounts schema.
	MaxEmailLength = 256
	MaxNameLength  = 256
)

// Account is a registered identity. Email is the unique key and is stored
// exactly as given; no case folding is applied.
type Account struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	CreatedAt    time.Time  `json:"created_at"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
	IsActive     bool       `json:"is_active"`
}

// Clone returns a deep copy so stores never hand out shared pointers.
func (a *Account) Clone() *Account {
	if a == nil {
		return nil
	}
	c := *a
	if a.LastLoginAt != nil {
		t := *a.LastLoginAt
		c.LastLoginAt = &t
	}
	return &c
}
