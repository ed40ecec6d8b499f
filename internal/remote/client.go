// Package remote is the single configured channel to the GraphQL API.
// Every call carries the credential read from the store at call time, is
// attempted exactly once, and fails with either a *TransportError or a
// *RejectedError.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"
	"pkt.systems/pslog"

	"gtodo/internal/credential"
)

// maxResponseSize caps how much of a response body is read.
const maxResponseSize = 4 << 20

// Operation is a named GraphQL document.
type Operation struct {
	Name  string
	Query string
}

// Client executes operations against a GraphQL endpoint.
type Client struct {
	endpoint string
	http     *http.Client
	timeout  time.Duration
}

// Option configures a Client.
type Option func(*clientOptions)

type clientOptions struct {
	base    http.RoundTripper
	timeout time.Duration
	scheme  string
}

// WithTransport sets the base transport under the credential decoration.
func WithTransport(rt http.RoundTripper) Option {
	return func(o *clientOptions) { o.base = rt }
}

// WithTimeout bounds each call. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(o *clientOptions) { o.timeout = d }
}

// WithAuthScheme prefixes the credential with scheme in the Authorization
// header (for example "Bearer"). The default sends the bare credential.
func WithAuthScheme(scheme string) Option {
	return func(o *clientOptions) { o.scheme = strings.TrimSpace(scheme) }
}

// New creates a Client for endpoint. The store is consulted on every call,
// so a credential set after construction is still honored.
func New(endpoint string, store credential.Reader, opts ...Option) *Client {
	o := clientOptions{base: http.DefaultTransport}
	for _, opt := range opts {
		opt(&o)
	}
	if o.base == nil {
		o.base = http.DefaultTransport
	}
	return &Client{
		endpoint: endpoint,
		http:     &http.Client{Transport: &credentialTransport{store: store, base: o.base, scheme: o.scheme}},
		timeout:  o.timeout,
	}
}

type request struct {
	Query         string         `json:"query"`
	OperationName string         `json:"operationName,omitempty"`
	Variables     map[string]any `json:"variables,omitempty"`
}

type response struct {
	Data   json.RawMessage `json:"data"`
	Errors []gqlError      `json:"errors"`
}

// Execute runs op with vars and decodes the response data into out.
// out may be nil when the caller does not need the data.
func (c *Client) Execute(ctx context.Context, op Operation, vars map[string]any, out any) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	log := pslog.Ctx(ctx).With("op", op.Name)
	start := time.Now()

	err := c.execute(ctx, op, vars, out)
	if err != nil {
		log.Debug("remote call failed", "duration", time.Since(start), "err", err)
		return err
	}
	log.Debug("remote call", "duration", time.Since(start))
	return nil
}

func (c *Client) execute(ctx context.Context, op Operation, vars map[string]any, out any) error {
	body, err := json.Marshal(request{Query: op.Query, OperationName: op.Name, Variables: vars})
	if err != nil {
		return fmt.Errorf("encode %s: %w", op.Name, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return &TransportError{Op: op.Name, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return &TransportError{Op: op.Name, Err: err}
	}
	defer res.Body.Close()

	data, err := io.ReadAll(io.LimitReader(res.Body, maxResponseSize))
	if err != nil {
		return &TransportError{Op: op.Name, Err: err}
	}

	var resp response
	decodeErr := json.Unmarshal(data, &resp)
	if decodeErr == nil && len(resp.Errors) > 0 {
		return rejected(op.Name, res.StatusCode, resp.Errors)
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		res.Body = io.NopCloser(bytes.NewReader(data))
		if err := googleapi.CheckResponse(res); err != nil {
			return statusError(op.Name, err)
		}
	}

	if decodeErr != nil {
		return &TransportError{Op: op.Name, Err: fmt.Errorf("malformed response: %w", decodeErr)}
	}
	if out == nil {
		return nil
	}
	if len(resp.Data) == 0 || string(resp.Data) == "null" {
		return &TransportError{Op: op.Name, Err: errors.New("response carried no data")}
	}
	if err := json.Unmarshal(resp.Data, out); err != nil {
		return &TransportError{Op: op.Name, Err: fmt.Errorf("malformed data: %w", err)}
	}
	return nil
}

// statusError turns a non-2xx response without a GraphQL body into an error.
// 401 and 403 reject the credential; everything else means no structured
// answer reached us.
func statusError(op string, err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		switch gerr.Code {
		case http.StatusUnauthorized, http.StatusForbidden:
			msg := gerr.Message
			if msg == "" {
				msg = http.StatusText(gerr.Code)
			}
			return &RejectedError{Op: op, Kind: KindAuthentication, Message: msg}
		}
	}
	return &TransportError{Op: op, Err: err}
}

// credentialTransport decorates each request with the credential current at
// the time of the call. Requests go out undecorated when the store is empty.
// Without a scheme the header carries the bare credential.
type credentialTransport struct {
	store  credential.Reader
	base   http.RoundTripper
	scheme string
}

func (t *credentialTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	token, ok := "", false
	if t.store != nil {
		token, ok = t.store.Get()
	}
	if !ok {
		return t.base.RoundTrip(req)
	}
	if t.scheme != "" {
		tok := credential.Token(token)
		tok.TokenType = t.scheme
		tr := &oauth2.Transport{Source: oauth2.StaticTokenSource(tok), Base: t.base}
		return tr.RoundTrip(req)
	}
	r := req.Clone(req.Context())
	r.Header.Set("Authorization", token)
	return t.base.RoundTrip(r)
}
