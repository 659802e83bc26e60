package application

import (
	"fmt"
	"time"

	"pos-gateway/middleware/session/domain"
)

// DefaultTTL é a duração fixa de uma sessão.
const DefaultTTL = 8 * time.Hour

type Service struct {
	Codec domain.Codec
	TTL   time.Duration
	Now   func() time.Time
}

func (s Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s Service) ttl() time.Duration {
	if s.TTL > 0 {
		return s.TTL
	}
	return DefaultTTL
}

// Issue emite um Record novo com expiração now+TTL e o valor serializado.
func (s Service) Issue(c domain.Claims) (domain.Record, string, error) {
	if err := c.Validate(); err != nil {
		return domain.Record{}, "", err
	}

	now := s.now()
	rec := domain.NewRecord(c, now, s.ttl())
	value, err := s.Codec.Encode(rec, now)
	if err != nil {
		return domain.Record{}, "", fmt.Errorf("encode session: %w", err)
	}
	return rec, value, nil
}

// Validate devolve o Record só se ele decodifica e ainda não expirou.
func (s Service) Validate(value string) (domain.Record, error) {
	if value == "" {
		return domain.Record{}, domain.ErrNoSession
	}

	now := s.now()
	rec, err := s.Codec.Decode(value, now)
	if err != nil {
		return domain.Record{}, err
	}
	if rec.Expired(now) {
		return domain.Record{}, domain.ErrExpired
	}
	return rec, nil
}
