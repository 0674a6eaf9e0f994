package trello

import (
	"errors"
	"reflect"
	"testing"

	"github.com/boardpull/trello-harvester/pkg/httpclient"
)

type stubResponse struct {
	body   []byte
	status int
}

func (s stubResponse) Body() []byte    { return s.body }
func (s stubResponse) StatusCode() int { return s.status }

func newTestClient() *Client {
	return NewClient(Credentials{Key: "k", Token: "t"})
}

func TestExecuteReturnsDecodedBodyOnSuccess(t *testing.T) {
	c := newTestClient()

	calls := 0
	result := c.execute("op", func() (httpclient.Response, error) {
		calls++
		return stubResponse{body: []byte(`{"id":"abc123","name":"Demo","labels":[]}`), status: 200}, nil
	})

	if calls != 1 {
		t.Fatalf("expected action invoked exactly once, got %d", calls)
	}

	want := map[string]any{
		"id":     "abc123",
		"name":   "Demo",
		"labels": []any{},
	}
	if !reflect.DeepEqual(result, want) {
		t.Fatalf("expected %#v, got %#v", want, result)
	}
}

func TestExecuteReturnsNilOnErrorStatus(t *testing.T) {
	c := newTestClient()

	for _, status := range []int{400, 401, 404, 500, 503} {
		result := c.execute("op", func() (httpclient.Response, error) {
			// Body is valid JSON on purpose: status alone must decide.
			return stubResponse{body: []byte(`{"ok":true}`), status: status}, nil
		})
		if result != nil {
			t.Fatalf("status %d: expected nil, got %#v", status, result)
		}
	}
}

func TestExecuteReturnsNilOnMalformedBody(t *testing.T) {
	c := newTestClient()

	result := c.execute("op", func() (httpclient.Response, error) {
		return stubResponse{body: []byte(`{"broken":`), status: 200}, nil
	})
	if result != nil {
		t.Fatalf("expected nil for malformed body, got %#v", result)
	}
}

func TestExecuteReturnsNilOnTransportError(t *testing.T) {
	c := newTestClient()

	result := c.execute("op", func() (httpclient.Response, error) {
		return nil, errors.New("connection refused")
	})
	if result != nil {
		t.Fatalf("expected nil for transport error, got %#v", result)
	}
}

func TestExecutePreservesTopLevelArrays(t *testing.T) {
	c := newTestClient()

	result := c.execute("op", func() (httpclient.Response, error) {
		return stubResponse{body: []byte(`[{"id":"abc123","name":"Demo"}]`), status: 200}, nil
	})

	want := []any{map[string]any{"id": "abc123", "name": "Demo"}}
	if !reflect.DeepEqual(result, want) {
		t.Fatalf("expected %#v, got %#v", want, result)
	}
}
