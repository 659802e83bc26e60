package domain

import "time"

// Codec serializa o registro para o valor do cookie e volta.
//
// Decode precisa rejeitar qualquer valor adulterado ou de origem estranha.
// A checagem de expiração do Record fica com a aplicação; o codec pode
// recusar antes (ErrExpired) se o formato carregar expiração própria.
type Codec interface {
	Encode(rec Record, issuedAt time.Time) (string, error)
	Decode(value string, now time.Time) (Record, error)
}
