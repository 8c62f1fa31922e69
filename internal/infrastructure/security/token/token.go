// Package token issues and validates the HS256 bearer tokens handed out at login.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/99minutos/identity-service/internal/core/ports"
)

// ErrInvalidToken is returned for every token that fails validation. Callers
// get no detail about which check failed.
var ErrInvalidToken = errors.New("invalid token")

// Config holds the signing parameters shared by Issuer and Validator.
type Config struct {
	Secret   string
	Issuer   string
	Audience string
	TTL      time.Duration
}

func (c Config) validate() error {
	if c.Secret == "" {
		return errors.New("token: signing key missing")
	}
	if c.TTL <= 0 {
		return fmt.Errorf("token: ttl must be positive, got %s", c.TTL)
	}
	return nil
}

// Claims is the claim set carried by every issued token.
type Claims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	jwt.RegisteredClaims
}

// Option customises an Issuer or Validator.
type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Issuer signs identity claims. It is safe for concurrent use.
type Issuer struct {
	cfg Config
	key []byte
	now func() time.Time
}

var _ ports.TokenIssuer = (*Issuer)(nil)

func NewIssuer(cfg Config, opts ...Option) (*Issuer, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	o := buildOptions(opts)
	return &Issuer{cfg: cfg, key: []byte(cfg.Secret), now: o.now}, nil
}

// Issue builds and signs a token for the subject. ExpiresAt is IssuedAt plus
// the configured TTL, both truncated to the second as encoded in the token.
func (i *Issuer) Issue(subjectID, email, name string) (ports.IssuedToken, error) {
	now := i.now().UTC().Truncate(time.Second)
	exp := now.Add(i.cfg.TTL)

	claims := Claims{
		Email: email,
		Name:  name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subjectID,
			Issuer:    i.cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	if i.cfg.Audience != "" {
		claims.Audience = jwt.ClaimStrings{i.cfg.Audience}
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.key)
	if err != nil {
		return ports.IssuedToken{}, fmt.Errorf("sign token: %w", err)
	}
	return ports.IssuedToken{Token: signed, IssuedAt: now, ExpiresAt: exp}, nil
}

// Validator checks tokens produced by an Issuer with the same Config.
type Validator struct {
	key    []byte
	parser *jwt.Parser
}

func NewValidator(cfg Config, opts ...Option) (*Validator, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	o := buildOptions(opts)

	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(o.now),
	}
	if cfg.Issuer != "" {
		parserOpts = append(parserOpts, jwt.WithIssuer(cfg.Issuer))
	}
	if cfg.Audience != "" {
		parserOpts = append(parserOpts, jwt.WithAudience(cfg.Audience))
	}

	return &Validator{key: []byte(cfg.Secret), parser: jwt.NewParser(parserOpts...)}, nil
}

// Validate returns the claims of a well-formed, correctly signed, unexpired
// token that carries an email claim, and ErrInvalidToken otherwise.
func (v *Validator) Validate(raw string) (*Claims, error) {
	if raw == "" {
		return nil, ErrInvalidToken
	}
	claims := &Claims{}
	tkn, err := v.parser.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return v.key, nil
	})
	if err != nil || !tkn.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Email == "" || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
