// Package password implements the credential hashers used for stored account digests.
//
// The default SHA256Hasher is unsalted and single-round, so equal passwords
// share a digest and a leaked digest can be replayed. It is kept for
// compatibility with existing account data; BcryptHasher is the salted,
// slow alternative and is selected with PASSWORD_HASHER=bcrypt.
package password

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/99minutos/identity-service/internal/core/domain"
	"github.com/99minutos/identity-service/internal/core/ports"
)

const (
	KindSHA256 = "sha256"
	KindBcrypt = "bcrypt"
)

var errEmptyPassword = &domain.ValidationError{Field: "password", Msg: "password cannot be empty"}

// NewHasher returns the hasher registered under kind.
func NewHasher(kind string) (ports.CredentialHasher, error) {
	switch kind {
	case "", KindSHA256:
		return SHA256Hasher{}, nil
	case KindBcrypt:
		return NewBcryptHasher(bcrypt.DefaultCost), nil
	default:
		return nil, fmt.Errorf("password: unknown hasher %q", kind)
	}
}

// SHA256Hasher renders base64(sha256(utf8(plaintext))).
type SHA256Hasher struct{}

func (SHA256Hasher) Hash(plaintext string) (string, error) {
	if plaintext == "" {
		return "", errEmptyPassword
	}
	sum := sha256.Sum256([]byte(plaintext))
	return base64.StdEncoding.EncodeToString(sum[:]), nil
}

func (h SHA256Hasher) Verify(plaintext, digest string) bool {
	if digest == "" {
		return false
	}
	candidate, err := h.Hash(plaintext)
	if err != nil {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(candidate), []byte(digest)) == 1
}

// BcryptHasher stores salted bcrypt digests.
type BcryptHasher struct {
	cost int
}

func NewBcryptHasher(cost int) BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return BcryptHasher{cost: cost}
}

func (h BcryptHasher) Hash(plaintext string) (string, error) {
	if plaintext == "" {
		return "", errEmptyPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", &domain.ValidationError{Field: "password", Msg: "password is too long"}
		}
		return "", fmt.Errorf("bcrypt: %w", err)
	}
	return string(hash), nil
}

func (h BcryptHasher) Verify(plaintext, digest string) bool {
	if plaintext == "" || digest == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
}
