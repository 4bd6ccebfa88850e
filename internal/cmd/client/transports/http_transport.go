package transports

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"

	flakev1 "github.com/rzbill/flake/api/flake/v1"
)

// HTTPTransport implements IDsTransport against the /v1 JSON API.
type HTTPTransport struct {
	baseURL func() string
	client  *http.Client
}

// NewHTTPTransport builds a transport for the server at baseURL(). A nil
// client uses http.DefaultClient.
func NewHTTPTransport(baseURL func() string, client *http.Client) *HTTPTransport {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPTransport{baseURL: baseURL, client: client}
}

// StatusError is a non-2xx response from the server.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("http %d", e.Code)
	}
	return fmt.Sprintf("http %d: %s", e.Code, e.Message)
}

func (t *HTTPTransport) get(ctx context.Context, path string, query url.Values, out any) error {
	u := strings.TrimRight(t.baseURL(), "/") + "/v1" + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	resp, err := t.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		var body struct {
			Error string `json:"error"`
		}
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		if json.Unmarshal(b, &body) != nil {
			body.Error = strings.TrimSpace(string(b))
		}
		return &StatusError{Code: resp.StatusCode, Message: body.Error}
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// Next issues count ids.
func (t *HTTPTransport) Next(ctx context.Context, count int, format string) (*flakev1.NextResponse, error) {
	q := url.Values{}
	q.Set("count", strconv.Itoa(count))
	if format != "" {
		q.Set("format", format)
	}
	var out flakev1.NextResponse
	if err := t.get(ctx, "/ids", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Decode splits an id into its fields.
func (t *HTTPTransport) Decode(ctx context.Context, id, format string) (*flakev1.DecodeResponse, error) {
	q := url.Values{}
	if format != "" {
		q.Set("format", format)
	}
	var out flakev1.DecodeResponse
	if err := t.get(ctx, "/ids/"+url.PathEscape(id), q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Info describes the node. The watermark list of /v1/info is dropped.
func (t *HTTPTransport) Info(ctx context.Context) (*flakev1.InfoResponse, error) {
	var out struct {
		Node flakev1.InfoResponse `json:"node"`
	}
	if err := t.get(ctx, "/info", nil, &out); err != nil {
		return nil, err
	}
	return &out.Node, nil
}
