package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/totegamma/supermarkets"
)

const defaultUserAgent = "supermarkets-web/1.0"

var tracer = otel.Tracer("client")

// TokenSource hands out the bearer token for a single request.
// Implementations may refresh the token, so callers must not keep it.
type TokenSource interface {
	AccessToken(ctx context.Context) (string, error)
}

// TokenFunc adapts a function into a TokenSource.
type TokenFunc func(ctx context.Context) (string, error)

func (f TokenFunc) AccessToken(ctx context.Context) (string, error) {
	return f(ctx)
}

// Client talks to the supermarkets REST API. It owns no state besides its
// configuration.
type Client struct {
	client    *http.Client
	tokens    TokenSource
	userAgent string
	baseURL   string
}

func New(baseURL string, tokens TokenSource) *Client {
	httpClient := http.Client{}

	c := &Client{
		client:    &httpClient,
		tokens:    tokens,
		userAgent: defaultUserAgent,
		baseURL:   strings.TrimSuffix(baseURL, "/"),
	}
	httpClient.Transport = c
	return c
}

// WithTokenSource returns a copy of c that authenticates with tokens.
// The underlying http.Client is shared.
func (c *Client) WithTokenSource(tokens TokenSource) *Client {
	cp := *c
	cp.tokens = tokens
	return &cp
}

func (c *Client) RoundTrip(req *http.Request) (*http.Response, error) {
	req.Header.Set("User-Agent", c.userAgent)
	return http.DefaultTransport.RoundTrip(req)
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// HttpRequest performs one authenticated JSON request. When response is nil
// the body is drained and discarded.
func (c *Client) HttpRequest(ctx context.Context, method, path string, body any, response any) error {
	ctx, span := tracer.Start(ctx, "Client.HttpRequest")
	defer span.End()
	span.SetAttributes(
		attribute.String("http.method", method),
		attribute.String("http.path", path),
	)

	if c.tokens == nil {
		return fmt.Errorf("no token source configured")
	}
	token, err := c.tokens.AccessToken(ctx)
	if err != nil {
		span.RecordError(errors.Wrap(err, "Client.HttpRequest: AccessToken failed"))
		return fmt.Errorf("failed to get access token: %v", err)
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %v", err)
		}
		reader = bytes.NewReader(payload)
	}

	url := c.baseURL + path
	slog.DebugContext(
		ctx, "Making request",
		slog.String("method", method),
		slog.String("url", url),
		slog.String("module", "client"),
	)
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.client.Do(req)
	if err != nil {
		span.RecordError(errors.Wrap(err, "Client.HttpRequest: Do failed"))
		return fmt.Errorf("failed to perform request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	if response == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}

	err = json.NewDecoder(resp.Body).Decode(response)
	if err != nil {
		return fmt.Errorf("failed to decode response: %v", err)
	}

	return nil
}

func (c *Client) List(ctx context.Context) ([]supermarkets.Supermarket, error) {
	var result []supermarkets.Supermarket
	err := c.HttpRequest(ctx, http.MethodGet, supermarkets.CollectionPath, nil, &result)
	if err != nil {
		return nil, supermarkets.RequestFailed("list", err)
	}
	if result == nil {
		result = []supermarkets.Supermarket{}
	}
	return result, nil
}

func (c *Client) Create(ctx context.Context, fields supermarkets.Fields) (supermarkets.Supermarket, error) {
	var created supermarkets.Supermarket
	err := c.HttpRequest(ctx, http.MethodPost, supermarkets.CollectionPath, fields, &created)
	if err != nil {
		return supermarkets.Supermarket{}, supermarkets.RequestFailed("create", err)
	}
	return created, nil
}

func (c *Client) Update(ctx context.Context, id int64, fields supermarkets.Fields) (supermarkets.Supermarket, error) {
	body := supermarkets.Supermarket{
		ID:         id,
		Identifier: fields.Identifier,
		Name:       fields.Name,
		URL:        fields.URL,
	}

	var updated supermarkets.Supermarket
	err := c.HttpRequest(ctx, http.MethodPut, supermarkets.ItemPath(id), body, &updated)
	if err != nil {
		return supermarkets.Supermarket{}, supermarkets.RequestFailed("update", err)
	}
	return updated, nil
}

func (c *Client) Delete(ctx context.Context, id int64) error {
	err := c.HttpRequest(ctx, http.MethodDelete, supermarkets.ItemPath(id), nil, nil)
	if err != nil {
		return supermarkets.RequestFailed("delete", err)
	}
	return nil
}
