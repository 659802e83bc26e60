// Package config carrega structs de configuração a partir de variáveis de
// ambiente (tags `env`), lendo antes um .env opcional.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var ErrParsingConfig = errors.New("config: failed to parse environment")

// Validator é implementado por configs que checam regras entre campos.
type Validator interface {
	Validate() error
}

// Load preenche v a partir do ambiente. Arquivos em dotenv são lidos se
// existirem e nunca sobrescrevem variáveis já definidas.
func Load[T any](v *T, dotenv ...string) error {
	if len(dotenv) == 0 {
		dotenv = []string{".env"}
	}
	for _, f := range dotenv {
		// .env é opcional
		_ = godotenv.Load(f)
	}

	if err := env.Parse(v); err != nil {
		return errors.Join(ErrParsingConfig, err)
	}
	if val, ok := any(v).(Validator); ok {
		if err := val.Validate(); err != nil {
			return fmt.Errorf("config: %w", err)
		}
	}
	return nil
}

// SplitList quebra uma lista separada por vírgula, sem itens vazios.
func SplitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
