package trello

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/boardpull/trello-harvester/pkg/httpclient"
)

// DefaultBaseURL is the public Trello REST endpoint.
const DefaultBaseURL = "https://api.trello.com/"

const defaultTimeout = 15 * time.Second

// Credentials is the key/token pair Trello expects as query parameters on
// every request. It is immutable for the lifetime of a Client.
type Credentials struct {
	Key   string
	Token string
}

// Validate rejects blank credentials. The remote API would answer 401
// anyway, but a missing secret is a configuration defect worth failing
// fast on at startup.
func (c Credentials) Validate() error {
	if strings.TrimSpace(c.Key) == "" {
		return fmt.Errorf("trello credentials: key is empty")
	}
	if strings.TrimSpace(c.Token) == "" {
		return fmt.Errorf("trello credentials: token is empty")
	}
	return nil
}

// Client talks to the Trello REST API. All retrieval operations return the
// decoded JSON payload as `any`, or nil when the call failed for any
// reason; callers must treat nil as "no data" and consult the log for why.
type Client struct {
	baseURL string
	creds   Credentials
	http    httpclient.Client
	log     Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithBaseURL overrides the API endpoint, e.g. for test servers.
func WithBaseURL(url string) Option {
	return func(c *Client) {
		if strings.TrimSpace(url) != "" {
			c.baseURL = url
		}
	}
}

// WithHTTPClient injects a transport. Defaults to a resty client.
func WithHTTPClient(hc httpclient.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithLogger injects the diagnostic logger.
func WithLogger(log Logger) Option {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}

// NewClient builds a Trello client for the given credentials.
func NewClient(creds Credentials, opts ...Option) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		creds:   creds,
		http:    httpclient.NewRestyClient(defaultTimeout),
		log:     noopLogger{},
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = ensureLogger(c.log)
	if !strings.HasSuffix(c.baseURL, "/") {
		c.baseURL += "/"
	}
	return c
}

// authQuery returns the credential query parameters attached to every request.
func (c *Client) authQuery() map[string]string {
	return map[string]string{
		"key":   c.creds.Key,
		"token": c.creds.Token,
	}
}

func (c *Client) headers() map[string]string {
	return map[string]string{"Accept": "application/json"}
}

// ListMyBoards retrieves the authenticated user's boards, names only.
func (c *Client) ListMyBoards(ctx context.Context) any {
	url := c.baseURL + "1/members/me/boards"
	query := c.authQuery()
	query["fields"] = "name"
	return c.execute("list_my_boards", func() (httpclient.Response, error) {
		return c.http.Get(ctx, url, query, c.headers())
	})
}

// GetBoard retrieves the full detail of one board. The id is an opaque
// remote identifier and is not validated locally.
func (c *Client) GetBoard(ctx context.Context, idBoard string) any {
	url := c.baseURL + "1/boards/" + idBoard
	return c.execute("get_board", func() (httpclient.Response, error) {
		return c.http.Get(ctx, url, c.authQuery(), c.headers())
	})
}

// ListCardsOnBoard retrieves the open cards on a board.
func (c *Client) ListCardsOnBoard(ctx context.Context, idBoard string) any {
	url := c.baseURL + "1/boards/" + idBoard + "/cards"
	return c.execute("list_cards_on_board", func() (httpclient.Response, error) {
		return c.http.Get(ctx, url, c.authQuery(), c.headers())
	})
}

// CreateWebhook registers a webhook on the given model (board, card, ...)
// pointing at callbackURL. Returns the created webhook payload, nil on failure.
func (c *Client) CreateWebhook(ctx context.Context, idModel, description, callbackURL string) any {
	url := c.baseURL + "1/webhooks"
	query := c.authQuery()
	query["idModel"] = idModel
	query["description"] = description
	query["callbackURL"] = callbackURL
	return c.execute("create_webhook", func() (httpclient.Response, error) {
		return c.http.Post(ctx, url, query, c.headers())
	})
}
