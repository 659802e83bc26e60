package infra

import (
	"encoding/base64"
	"math/rand/v2"
	"strings"
	"testing"
	"time"

	"pos-gateway/middleware/session/domain"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	secretA = "0123456789abcdef0123456789abcdef-A"
	secretB = "0123456789abcdef0123456789abcdef-B"
)

var t0 = time.Date(2026, 2, 10, 9, 30, 0, 250_000_000, time.UTC)

func cashier() domain.Record {
	return domain.NewRecord(domain.Claims{
		UserID:   "u-42",
		Username: "ana",
		Email:    "ana@pdv.local",
		Name:     "Ana Lima",
		Role:     domain.RoleCashier,
		BranchID: "b1",
	}, t0, 8*time.Hour)
}

func newCodec(t *testing.T, secrets ...string) *JWTCodec {
	t.Helper()
	c, err := NewJWTCodec(secrets)
	require.NoError(t, err)
	return c
}

func TestNewJWTCodec_Validation(t *testing.T) {
	_, err := NewJWTCodec(nil)
	assert.ErrorIs(t, err, ErrNoSecret)

	_, err = NewJWTCodec([]string{"", "  "})
	assert.ErrorIs(t, err, ErrNoSecret)

	_, err = NewJWTCodec([]string{"short"})
	assert.ErrorIs(t, err, ErrSecretTooShort)
}

func TestJWTCodec_RoundTrip(t *testing.T) {
	c := newCodec(t, secretA)
	rec := cashier()

	value, err := c.Encode(rec, t0)
	require.NoError(t, err)

	got, err := c.Decode(value, t0.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, rec.Claims(), got.Claims())
	assert.Equal(t, rec.ExpiresAt.UnixMilli(), got.ExpiresAt.UnixMilli())
}

func TestJWTCodec_EachEncodingHasUniqueID(t *testing.T) {
	c := newCodec(t, secretA)
	v1, err := c.Encode(cashier(), t0)
	require.NoError(t, err)
	v2, err := c.Encode(cashier(), t0)
	require.NoError(t, err)
	assert.NotEqual(t, v1, v2)
}

func TestJWTCodec_RejectsInvalidRoleOnEncode(t *testing.T) {
	rec := cashier()
	rec.Role = "OWNER"
	_, err := newCodec(t, secretA).Encode(rec, t0)
	assert.ErrorIs(t, err, domain.ErrInvalidRole)
}

func TestJWTCodec_ExpiredAfterRecordExpiry(t *testing.T) {
	c := newCodec(t, secretA)
	rec := cashier()
	rec.ExpiresAt = t0.Add(-time.Millisecond)

	value, err := c.Encode(rec, t0.Add(-time.Hour))
	require.NoError(t, err)

	_, err = c.Decode(value, t0.Add(2*time.Second))
	assert.ErrorIs(t, err, domain.ErrExpired)
}

func TestJWTCodec_TamperedPayloadIsRejected(t *testing.T) {
	c := newCodec(t, secretA)
	value, err := c.Encode(cashier(), t0)
	require.NoError(t, err)

	parts := strings.Split(value, ".")
	require.Len(t, parts, 3)
	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	require.NoError(t, err)
	forged := strings.Replace(string(payload), `"role":"CASHIER"`, `"role":"ADMIN"`, 1)
	require.NotEqual(t, string(payload), forged)
	parts[1] = base64.RawURLEncoding.EncodeToString([]byte(forged))

	_, err = c.Decode(strings.Join(parts, "."), t0)
	assert.ErrorIs(t, err, domain.ErrMalformed)
}

func TestJWTCodec_ForeignSecretIsRejected(t *testing.T) {
	value, err := newCodec(t, secretB).Encode(cashier(), t0)
	require.NoError(t, err)

	_, err = newCodec(t, secretA).Decode(value, t0)
	assert.ErrorIs(t, err, domain.ErrMalformed)
}

func TestJWTCodec_KeyRotation(t *testing.T) {
	old := newCodec(t, secretA)
	value, err := old.Encode(cashier(), t0)
	require.NoError(t, err)

	rotated := newCodec(t, secretB, secretA)
	got, err := rotated.Decode(value, t0)
	require.NoError(t, err)
	assert.Equal(t, "u-42", got.UserID)

	fresh, err := rotated.Encode(cashier(), t0)
	require.NoError(t, err)
	_, err = old.Decode(fresh, t0)
	assert.ErrorIs(t, err, domain.ErrMalformed, "tokens signed by the new key are unknown to the old codec")
}

func TestJWTCodec_RejectsNoneAlgorithm(t *testing.T) {
	claims := sessionClaims{
		UserID:    "u-1",
		Role:      "ADMIN",
		ExpiresAt: t0.Add(time.Hour).UnixMilli(),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    DefaultIssuer,
			ExpiresAt: jwt.NewNumericDate(t0.Add(time.Hour)),
		},
	}
	value, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = newCodec(t, secretA).Decode(value, t0)
	assert.ErrorIs(t, err, domain.ErrMalformed)
}

func TestJWTCodec_RejectsWrongIssuer(t *testing.T) {
	other, err := NewJWTCodec([]string{secretA}, WithIssuer("other-app"))
	require.NoError(t, err)
	value, err := other.Encode(cashier(), t0)
	require.NoError(t, err)

	_, err = newCodec(t, secretA).Decode(value, t0)
	assert.ErrorIs(t, err, domain.ErrMalformed)
}

func TestJWTCodec_GarbageNeverPanics(t *testing.T) {
	c := newCodec(t, secretA)
	rng := rand.New(rand.NewPCG(1, 2))

	inputs := []string{"", ".", "..", "a.b.c", "eyJhbGciOiJIUzI1NiJ9.e30.", strings.Repeat("A", 4096)}
	for range 200 {
		b := make([]byte, rng.IntN(128))
		for i := range b {
			b[i] = byte(rng.UintN(256))
		}
		inputs = append(inputs, string(b))
	}

	for _, in := range inputs {
		assert.NotPanics(t, func() {
			_, err := c.Decode(in, t0)
			assert.Error(t, err)
		})
	}
}
