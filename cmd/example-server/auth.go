package main

import (
	"errors"
	"fmt"
	"strings"

	"pos-gateway/middleware/session/domain"

	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

type demoUser struct {
	claims domain.Claims
	hash   []byte
}

// authenticator é o provedor de credenciais de demonstração. Em produção a
// consulta ao cadastro de usuários é do sistema de PDV, não deste módulo.
type authenticator struct {
	users map[string]demoUser
	// dummy mantém o custo do bcrypt igual para usuário inexistente.
	dummy []byte
}

// parseDemoUsers lê entradas "id:username:email:ROLE:branch:bcrypthash".
// branch pode ser vazio.
func parseDemoUsers(entries []string) (*authenticator, error) {
	dummy, err := bcrypt.GenerateFromPassword([]byte("not-a-user"), bcrypt.MinCost)
	if err != nil {
		return nil, err
	}
	a := &authenticator{users: make(map[string]demoUser, len(entries)), dummy: dummy}

	for i, entry := range entries {
		parts := strings.SplitN(strings.TrimSpace(entry), ":", 6)
		if len(parts) != 6 {
			return nil, fmt.Errorf("DEMO_USERS entry %d: want id:username:email:ROLE:branch:hash", i)
		}
		role, err := domain.ParseRole(parts[3])
		if err != nil {
			return nil, fmt.Errorf("DEMO_USERS entry %d: %w", i, err)
		}
		if _, err := bcrypt.Cost([]byte(parts[5])); err != nil {
			return nil, fmt.Errorf("DEMO_USERS entry %d: %w", i, err)
		}
		c := domain.Claims{
			UserID:   parts[0],
			Username: parts[1],
			Email:    parts[2],
			Role:     role,
			BranchID: parts[4],
		}
		if err := c.Validate(); err != nil {
			return nil, fmt.Errorf("DEMO_USERS entry %d: %w", i, err)
		}
		a.users[strings.ToLower(c.Username)] = demoUser{claims: c, hash: []byte(parts[5])}
	}
	return a, nil
}

func (a *authenticator) Authenticate(username, password string) (domain.Claims, error) {
	u, ok := a.users[strings.ToLower(strings.TrimSpace(username))]
	if !ok {
		_ = bcrypt.CompareHashAndPassword(a.dummy, []byte(password))
		return domain.Claims{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(u.hash, []byte(password)); err != nil {
		return domain.Claims{}, ErrInvalidCredentials
	}
	return u.claims, nil
}
