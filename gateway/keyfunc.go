package gateway

import "net/http"

// KeyFunc extrai da requisição a url usada como chave de rate limit e repassada
// ao backend.
type KeyFunc func(r *http.Request) string

// PathKeyFunc usa o path da URL como recurso. Path vazio vira "/".
func PathKeyFunc(r *http.Request) string {
	if r.URL.Path == "" {
		return "/"
	}
	return r.URL.Path
}
