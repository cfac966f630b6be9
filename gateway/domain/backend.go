package domain

import "context"

// Response é o par (status, corpo) produzido pelo gateway ou pelo backend.
type Response struct {
	Status int
	Body   string
}

// Backend é o serviço protegido pelo gateway.
//
// Um 404 é dado, não falha: Handle não retorna erro. Implementações que falam
// com a rede traduzem falhas de transporte para um Response (ex: 502).
type Backend interface {
	Handle(ctx context.Context, url, method string) Response
}
