package backend

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"request-gateway/gateway/domain"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const defaultMaxBodyBytes = 1 << 20

var badGateway = domain.Response{Status: http.StatusBadGateway, Body: http.StatusText(http.StatusBadGateway)}

// Upstream encaminha a requisição para um servidor HTTP real (UPSTREAM_URL)
// e devolve status e corpo.
//
// Vão para o upstream apenas método, path e a query (via WithRawQuery).
// Corpo e headers da requisição original não são encaminhados.
type Upstream struct {
	target       *url.URL
	client       *http.Client
	maxBodyBytes int64
	logger       *zap.Logger
}

var _ domain.Backend = (*Upstream)(nil)

type UpstreamOption func(*Upstream)

func WithHTTPClient(c *http.Client) UpstreamOption {
	return func(u *Upstream) { u.client = c }
}

func WithTimeout(d time.Duration) UpstreamOption {
	return func(u *Upstream) { u.client = &http.Client{Timeout: d} }
}

func WithMaxBodyBytes(n int64) UpstreamOption {
	return func(u *Upstream) { u.maxBodyBytes = n }
}

func WithLogger(l *zap.Logger) UpstreamOption {
	return func(u *Upstream) {
		if l != nil {
			u.logger = l
		}
	}
}

func NewUpstream(rawURL string, opts ...UpstreamOption) (*Upstream, error) {
	target, err := url.Parse(rawURL)
	if err != nil {
		return nil, errors.Wrap(err, "parse upstream url")
	}
	if target.Scheme == "" || target.Host == "" {
		return nil, errors.Errorf("upstream url %q must be absolute", rawURL)
	}

	u := &Upstream{
		target:       target,
		client:       &http.Client{Timeout: 10 * time.Second},
		maxBodyBytes: defaultMaxBodyBytes,
		logger:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(u)
	}
	return u, nil
}

func (u *Upstream) Target() *url.URL { return u.target }

func (u *Upstream) Handle(ctx context.Context, path, method string) domain.Response {
	resp, err := u.do(ctx, path, method)
	if err != nil {
		u.logger.Warn("upstream request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err))
		return badGateway
	}
	return resp
}

func (u *Upstream) do(ctx context.Context, path, method string) (domain.Response, error) {
	dst := *u.target
	dst.Path = singleJoiningSlash(u.target.Path, path)
	dst.RawQuery = joinQuery(u.target.RawQuery, RawQuery(ctx))

	req, err := http.NewRequestWithContext(ctx, method, dst.String(), nil)
	if err != nil {
		return domain.Response{}, errors.Wrap(err, "build upstream request")
	}

	res, err := u.client.Do(req)
	if err != nil {
		return domain.Response{}, errors.WithMessage(err, "upstream/do")
	}
	defer func() { _ = res.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(res.Body, u.maxBodyBytes))
	if err != nil {
		return domain.Response{}, errors.WithMessage(err, "upstream/read body")
	}
	return domain.Response{Status: res.StatusCode, Body: string(body)}, nil
}

func joinQuery(a, b string) string {
	if a == "" || b == "" {
		return a + b
	}
	return a + "&" + b
}

// singleJoiningSlash segue a mesma regra de httputil.NewSingleHostReverseProxy.
func singleJoiningSlash(a, b string) string {
	aslash := strings.HasSuffix(a, "/")
	bslash := strings.HasPrefix(b, "/")
	switch {
	case aslash && bslash:
		return a + b[1:]
	case !aslash && !bslash:
		return a + "/" + b
	}
	return a + b
}
