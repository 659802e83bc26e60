package domain

import (
	"fmt"
	"strings"
)

// Role é um conjunto fechado. Valores fora dele não passam pelo ParseRole nem
// pelo Issue, então nunca chegam a um cookie.
type Role string

const (
	RoleAdmin         Role = "ADMIN"
	RoleBranchManager Role = "BRANCH_MANAGER"
	RoleCashier       Role = "CASHIER"
)

// Roles lista os papéis válidos.
func Roles() []Role { return []Role{RoleAdmin, RoleBranchManager, RoleCashier} }

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleBranchManager, RoleCashier:
		return true
	}
	return false
}

func (r Role) String() string { return string(r) }

// ParseRole aceita o nome do papel sem diferenciar caixa.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidRole, s)
	}
	return r, nil
}
