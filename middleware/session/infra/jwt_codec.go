package infra

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"pos-gateway/middleware/session/domain"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	MinSecretLength = 32
	DefaultIssuer   = "pos-gateway"
)

var (
	ErrNoSecret       = errors.New("session codec: no secret configured")
	ErrSecretTooShort = errors.New("session codec: secret too short")
)

// sessionClaims é o payload do cookie. expiresAt em epoch-ms é a expiração
// autoritativa; exp (segundos, arredondado para cima) é só a trava do JWT.
type sessionClaims struct {
	UserID    string `json:"userId"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Name      string `json:"name,omitempty"`
	Role      string `json:"role"`
	BranchID  string `json:"branchId,omitempty"`
	ExpiresAt int64  `json:"expiresAt"`
	jwt.RegisteredClaims
}

type signingKey struct {
	id     string
	secret []byte
}

// JWTCodec implementa domain.Codec.
//
// O primeiro segredo assina; todos verificam, escolhidos pelo kid do header.
// Assim dá para girar a chave sem derrubar sessões em andamento.
type JWTCodec struct {
	keys   []signingKey
	issuer string
	newID  func() string
}

type JWTOption func(*JWTCodec)

func WithIssuer(iss string) JWTOption {
	return func(c *JWTCodec) {
		if iss = strings.TrimSpace(iss); iss != "" {
			c.issuer = iss
		}
	}
}

func NewJWTCodec(secrets []string, opts ...JWTOption) (*JWTCodec, error) {
	secrets = slices.DeleteFunc(slices.Clone(secrets), func(s string) bool { return strings.TrimSpace(s) == "" })
	if len(secrets) == 0 {
		return nil, ErrNoSecret
	}

	c := &JWTCodec{issuer: DefaultIssuer, newID: uuid.NewString}
	for i, s := range secrets {
		if len(s) < MinSecretLength {
			return nil, fmt.Errorf("%w: secret %d has %d chars, need at least %d", ErrSecretTooShort, i, len(s), MinSecretLength)
		}
		c.keys = append(c.keys, signingKey{id: keyID(s), secret: []byte(s)})
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// keyID identifica o segredo sem expô-lo.
func keyID(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:4])
}

func (c *JWTCodec) Encode(rec domain.Record, issuedAt time.Time) (string, error) {
	if !rec.Role.Valid() {
		return "", domain.ErrInvalidRole
	}

	claims := sessionClaims{
		UserID:    rec.UserID,
		Username:  rec.Username,
		Email:     rec.Email,
		Name:      rec.Name,
		Role:      string(rec.Role),
		BranchID:  rec.BranchID,
		ExpiresAt: rec.ExpiresAt.UnixMilli(),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    c.issuer,
			ID:        c.newID(),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(rec.ExpiresAt.Add(time.Second - time.Nanosecond)),
		},
	}

	key := c.keys[0]
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tok.Header["kid"] = key.id

	signed, err := tok.SignedString(key.secret)
	if err != nil {
		return "", fmt.Errorf("sign session: %w", err)
	}
	return signed, nil
}

func (c *JWTCodec) Decode(value string, now time.Time) (domain.Record, error) {
	claims := &sessionClaims{}
	_, err := jwt.ParseWithClaims(value, claims, c.lookupKey,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(func() time.Time { return now }),
		jwt.WithExpirationRequired(),
		jwt.WithIssuer(c.issuer),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return domain.Record{}, domain.ErrExpired
		}
		return domain.Record{}, fmt.Errorf("%w: %w", domain.ErrMalformed, err)
	}

	role := domain.Role(claims.Role)
	if !role.Valid() {
		return domain.Record{}, fmt.Errorf("%w: %w", domain.ErrMalformed, domain.ErrInvalidRole)
	}
	if claims.UserID == "" || claims.ExpiresAt <= 0 {
		return domain.Record{}, fmt.Errorf("%w: missing required claims", domain.ErrMalformed)
	}

	return domain.Record{
		UserID:    claims.UserID,
		Username:  claims.Username,
		Email:     claims.Email,
		Name:      claims.Name,
		Role:      role,
		BranchID:  claims.BranchID,
		ExpiresAt: time.UnixMilli(claims.ExpiresAt),
	}, nil
}

func (c *JWTCodec) lookupKey(tok *jwt.Token) (any, error) {
	kid, _ := tok.Header["kid"].(string)
	for _, k := range c.keys {
		if k.id == kid {
			return k.secret, nil
		}
	}
	return nil, fmt.Errorf("unknown key id %q", kid)
}
