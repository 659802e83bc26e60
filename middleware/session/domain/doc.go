// Package domain define o registro de sessão, o conjunto fechado de papéis e o
// contrato do codec que transforma o registro em valor de cookie.
//
// Sem net/http e sem criptografia concreta.
package domain
