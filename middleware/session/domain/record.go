package domain

import "time"

// Claims são os dados de login já autenticados pela camada externa.
type Claims struct {
	UserID   string
	Username string
	Email    string
	Name     string
	Role     Role
	BranchID string
}

func (c Claims) Validate() error {
	if c.UserID == "" {
		return ErrMissingUserID
	}
	if !c.Role.Valid() {
		return ErrInvalidRole
	}
	return nil
}

// Record é a sessão emitida. Imutável: renovar é emitir outro Record.
type Record struct {
	UserID    string
	Username  string
	Email     string
	Name      string
	Role      Role
	BranchID  string
	ExpiresAt time.Time
}

// NewRecord gera um registro que expira em now+ttl, com resolução de milissegundo.
func NewRecord(c Claims, now time.Time, ttl time.Duration) Record {
	return Record{
		UserID:    c.UserID,
		Username:  c.Username,
		Email:     c.Email,
		Name:      c.Name,
		Role:      c.Role,
		BranchID:  c.BranchID,
		ExpiresAt: time.UnixMilli(now.Add(ttl).UnixMilli()),
	}
}

// Claims devolve os dados de identidade, sem a expiração.
func (r Record) Claims() Claims {
	return Claims{
		UserID:   r.UserID,
		Username: r.Username,
		Email:    r.Email,
		Name:     r.Name,
		Role:     r.Role,
		BranchID: r.BranchID,
	}
}

// Expired vale a partir do instante de expiração (inclusive).
func (r Record) Expired(now time.Time) bool {
	return !now.Before(r.ExpiresAt)
}
