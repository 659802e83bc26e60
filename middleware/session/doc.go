// Package session fornece o Manager HTTP da sessão sem estado no servidor:
// todo o registro (identidade, papel, filial e expiração) viaja assinado
// dentro de um cookie HttpOnly.
//
// Camadas, no mesmo desenho do rate limit:
//
//   - domain: Record, Role (conjunto fechado), Claims e o contrato Codec
//   - application: Issue/Validate, sem net/http
//   - infra: JWTCodec (HS256, rotação por kid)
//   - session (este pacote): cookies, contexto da requisição e middlewares
//
// Qualquer cookie ausente, corrompido, forjado ou expirado vira "anônimo":
// nunca erro para quem chama, só um log de diagnóstico (com throttle).
//
// Não há revogação antes do fim da sessão. Conta desativada precisa ser
// barrada pela autorização a jusante, consultando o usuário de verdade.
package session
