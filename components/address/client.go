package address

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-varform/pkg/engine"
	"github.com/goliatone/go-varform/pkg/model"
)

// Client queries an address handler over HTTP. It implements
// engine.AddressAPI.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	opts       Options
	limit      int
}

var _ engine.AddressAPI = (*Client)(nil)

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient overrides the HTTP client used for requests.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithSearchLimit sets the limit sent with each search.
func WithSearchLimit(limit int) ClientOption {
	return func(c *Client) {
		c.limit = limit
	}
}

// WithRouteOptions aligns the client with a handler mounted using non-default
// parameter names.
func WithRouteOptions(fns ...OptionFn) ClientOption {
	return func(c *Client) {
		c.opts = NewOptions(fns...)
	}
}

// NewClient targets the handler mounted at endpoint, for example
// "http://localhost:8080/api/addresses".
func NewClient(endpoint string, options ...ClientOption) (*Client, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return nil, errors.New("address: client endpoint is required")
	}
	parsed, err := url.Parse(strings.TrimRight(endpoint, "/"))
	if err != nil {
		return nil, fmt.Errorf("address: parse endpoint: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("address: endpoint %q must be absolute", endpoint)
	}

	c := &Client{
		baseURL:    parsed,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		opts:       DefaultOptions(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(c)
	}
	return c, nil
}

// SearchAddress implements engine.AddressAPI.
func (c *Client) SearchAddress(ctx context.Context, term string) ([]model.AddressSuggestion, error) {
	target := *c.baseURL
	query := target.Query()
	query.Set(c.opts.SearchParam, term)
	if c.limit > 0 {
		query.Set(c.opts.LimitParam, strconv.Itoa(c.limit))
	}
	target.RawQuery = query.Encode()

	var payload suggestionsResponse
	if err := c.get(ctx, target.String(), &payload); err != nil {
		return nil, fmt.Errorf("address: search %q: %w", term, err)
	}
	return payload.Data, nil
}

// AddressDetails implements engine.AddressAPI. Unknown place ids report
// engine.ErrNoMatch.
func (c *Client) AddressDetails(ctx context.Context, placeID string) (model.Address, error) {
	target := c.baseURL.JoinPath(placeID)

	var payload detailsResponse
	if err := c.get(ctx, target.String(), &payload); err != nil {
		var status StatusError
		if errors.As(err, &status) && status.Code == http.StatusNotFound {
			err = StatusError{Code: status.Code, Err: engine.ErrNoMatch}
		}
		return model.Address{}, fmt.Errorf("address: details %q: %w", placeID, err)
	}
	return payload.Data, nil
}

func (c *Client) get(ctx context.Context, target string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return StatusError{Code: res.StatusCode, Err: fmt.Errorf("%s: %s", http.StatusText(res.StatusCode), strings.TrimSpace(string(body)))}
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
