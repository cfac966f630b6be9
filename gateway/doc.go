// Package gateway fornece o adapter HTTP (net/http) do gateway e o limite de concorrência.
//
// Visão geral (camadas):
//
//   - domain: contratos e tipos do domínio (sem dependência de net/http)
//   - application: casos de uso (decisão allow/deny + backend, acquire/timeout) sem net/http
//   - infra: implementações concretas (contadores, stats, semáforo)
//   - backend: servidores protegidos (tabela estática, upstream HTTP)
//   - gateway (este pacote): handler HTTP + extração de chave + tradução para status/headers
//
// Fluxo no gateway:
//
//  1. Extrai a chave do recurso (por padrão, o path da URL)
//  2. Chama application.Gateway, que decide e chama o backend
//  3. Se bloqueado, responde 403 "Not Allowed" (rate limit) ou 503 (concorrência)
//  4. Se permitido, escreve status e corpo do backend sem alterar
//
// Variáveis de ambiente do binário gateway (cmd/gateway) controlam o comportamento,
// como RATE_MAX_REQUESTS, CONCURRENCY_MAX e CONCURRENCY_TIMEOUT.
package gateway
