// Package ratelimit fornece adapters HTTP (net/http) para rate limit de janela
// fixa e limite de concorrência.
//
// Visão geral (camadas):
//
//   - domain: contratos e tipos (Key, Config, Counter, Result), sem net/http
//   - application: casos de uso (Check, Acquire/timeout), sem net/http
//   - infra: implementações concretas (tabela de contadores, semáforo, estatísticas)
//   - ratelimit (este pacote): middlewares HTTP, extração de chave, perfis e
//     tradução para status/headers
//
// Fluxo por requisição:
//
//  1. Monta a chave "<ip>:<path>" (X-Forwarded-For, X-Real-IP ou "unknown")
//  2. Chama application.Service.Check com o perfil da rota
//  3. Escreve X-RateLimit-Limit/Remaining/Reset em qualquer caso
//  4. Se rejeitado, responde 429 com JSON e Retry-After; senão chama o próximo handler
//
// A janela é fixa: perto da virada podem passar até 2×MaxRequests. É aceito.
// Os contadores são locais ao processo; várias instâncias têm orçamentos independentes.
package ratelimit
