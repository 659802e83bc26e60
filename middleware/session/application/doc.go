// Package application emite e valida registros de sessão sem conhecer net/http.
//
// Issue(claims) gera o Record e o valor do cookie; Validate(valor) devolve o
// Record ou um erro de domínio (ErrNoSession, ErrMalformed, ErrExpired).
package application
