// Command demo roda o gateway em processo, sem listener, contra a aplicação de
// exemplo e com limite de 2 requisições por URL.
package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	"request-gateway/gateway/application"
	"request-gateway/gateway/backend"
	"request-gateway/gateway/infra"
)

type call struct {
	url    string
	method string
}

var calls = []call{
	{"/app/status", http.MethodGet},
	{"/app/status", http.MethodGet},
	{"/app/status", http.MethodGet},
	{"/create/user", http.MethodGet},
}

func main() {
	run(os.Stdout)
}

func run(out io.Writer) {
	gw := application.NewGateway(infra.NewMemoryCounter(2), backend.Application{})

	for _, c := range calls {
		resp := gw.HandleRequest(context.Background(), c.url, c.method)
		fmt.Fprintf(out, "Url:%s\nHttpCode: %d\nBody: %s\n\n", c.url, resp.Status, resp.Body)
	}
}
