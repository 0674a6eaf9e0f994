package trello

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/boardpull/trello-harvester/pkg/httpclient"
)

// Action performs exactly one HTTP request and yields its response.
// Client methods build one of these per call and hand it to the executor.
type Action func() (httpclient.Response, error)

// execute runs a single request action and normalizes its outcome.
//
// The contract: every retrieval operation produces either the decoded JSON
// body or nil. Transport faults, error statuses (>= 400) and undecodable
// bodies all collapse to nil after a diagnostic log line; no error value
// leaves this boundary. Callers check for nil, nothing else.
func (c *Client) execute(op string, action Action) any {
	resp, err := action()
	if err != nil {
		c.log.ErrorObj("request failed", "request_error", map[string]any{
			"operation": op,
			"error":     err.Error(),
		})
		return nil
	}

	status := resp.StatusCode()
	if status >= http.StatusBadRequest {
		c.log.ErrorObj("request returned error status", "request_error", map[string]any{
			"operation": op,
			"status":    status,
			"body":      bodySnippet(resp.Body()),
		})
		return nil
	}

	var decoded any
	if err := json.Unmarshal(resp.Body(), &decoded); err != nil {
		c.log.ErrorObj("response body is not valid JSON", "decode_error", map[string]any{
			"operation": op,
			"status":    status,
			"error":     err.Error(),
		})
		return nil
	}

	c.log.DebugObj("request successful", "request_meta", map[string]any{
		"operation": op,
		"status":    status,
	})
	return decoded
}

// bodySnippet truncates a response body for diagnostics.
func bodySnippet(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	if len(body) > 512 {
		body = body[:512]
	}
	return strings.TrimSpace(string(body))
}
