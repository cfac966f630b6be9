package backend

import (
	"context"
	"net/http"

	"request-gateway/gateway/domain"
)

type route struct {
	url    string
	method string
}

var applicationRoutes = map[route]domain.Response{
	{url: "/app/status", method: http.MethodGet}:   {Status: http.StatusOK, Body: "Ok"},
	{url: "/create/user", method: http.MethodPost}: {Status: http.StatusOK, Body: "User Created"},
}

var notFound = domain.Response{Status: http.StatusNotFound, Body: "Not found"}

// Application é o servidor de aplicação atrás do gateway: uma tabela fixa de rotas.
// Qualquer outra combinação de url/método devolve 404.
type Application struct{}

var _ domain.Backend = Application{}

func (Application) Handle(_ context.Context, url, method string) domain.Response {
	if resp, ok := applicationRoutes[route{url: url, method: method}]; ok {
		return resp
	}
	return notFound
}
