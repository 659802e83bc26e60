package ratelimit

import (
	"fmt"
	"strings"
	"time"

	"pos-gateway/middleware/ratelimit/domain"
)

// Perfis nomeados. São política, não mecanismo: quem monta as rotas escolhe.
var (
	Login     = domain.Config{Name: "login", MaxRequests: 5, Window: time.Minute}
	API       = domain.Config{Name: "api", MaxRequests: 100, Window: time.Minute}
	Sensitive = domain.Config{Name: "sensitive", MaxRequests: 10, Window: time.Minute}
)

// Profiles indexa os perfis pelo nome.
var Profiles = map[string]domain.Config{
	Login.Name:     Login,
	API.Name:       API,
	Sensitive.Name: Sensitive,
}

// ProfileByName resolve um perfil (case-insensitive).
func ProfileByName(name string) (domain.Config, error) {
	cfg, ok := Profiles[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return domain.Config{}, fmt.Errorf("%w: %q", domain.ErrUnknownProfile, name)
	}
	return cfg, nil
}
