// Package infra contém o codec concreto do cookie de sessão: um JWT HS256
// (github.com/golang-jwt/jwt/v5) com rotação de chaves por "kid".
package infra
