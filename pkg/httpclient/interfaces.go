package httpclient

import "context"

// Response is a minimal HTTP response contract.
type Response interface {
	Body() []byte
	StatusCode() int
}

// Client abstracts HTTP calls so callers can inject mocks or different transports.
// Query parameters are passed separately so credentials never end up baked
// into URL strings at call sites.
type Client interface {
	Get(ctx context.Context, url string, query map[string]string, headers map[string]string) (Response, error)
	Post(ctx context.Context, url string, query map[string]string, headers map[string]string) (Response, error)
}
