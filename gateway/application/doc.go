// Package application contém os casos de uso (regras de aplicação) do gateway:
// a decisão de rate limit seguida do encaminhamento ao backend, e a admissão
// com limite de concorrência.
//
// Ele depende apenas do pacote domain e não conhece net/http.
// Ex.: Gateway.HandleRequest(ctx, url, method) retorna um domain.Response.
package application
