// Package listonic implements the remote client for the Listonic shopping-list API.
//
// Every operation obtains a token from the auth session, sends it as a bearer
// token, and on a 401 forces exactly one token refresh followed by exactly one
// retry. Responses are returned as raw JSON; mapping happens in package lists.
package listonic

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/stacklok/listonic-sync/internal/auth"
	"github.com/stacklok/listonic-sync/internal/httpclient"
	"github.com/stacklok/listonic-sync/internal/otel"
	"github.com/stacklok/listonic-sync/internal/telemetry"
)

//go:generate mockgen -destination=mocks/mock_api.go -package=mocks -source=client.go API,TokenSource

const (
	// DefaultBaseURL is the Listonic API root
	DefaultBaseURL = "https://api.listonic.com/api"

	// DefaultTimeout bounds each HTTP attempt
	DefaultTimeout = 30 * time.Second

	// TracerName is the tracer name for remote calls
	TracerName = "github.com/stacklok/listonic-sync/listonic"
)

// Operation names used in spans and metrics
const (
	OpFetchLists     = "fetch_lists"
	OpFetchList      = "fetch_list"
	OpRenameList     = "rename_list"
	OpAddItem        = "add_item"
	OpRemoveItem     = "remove_item"
	OpSetItemChecked = "set_item_checked"
)

// API is the set of remote operations the coordinator depends on
type API interface {
	// FetchLists returns the raw payload of all lists, shares included
	FetchLists(ctx context.Context) ([]byte, error)

	// FetchList returns the raw payload of one list
	FetchList(ctx context.Context, listID int64) ([]byte, error)

	// RenameList renames a list
	RenameList(ctx context.Context, listID int64, name string) error

	// AddItem appends an item to a list and returns the raw created item
	AddItem(ctx context.Context, listID int64, name string) ([]byte, error)

	// RemoveItem deletes an item from a list
	RemoveItem(ctx context.Context, listID, itemID int64) error

	// SetItemChecked checks or unchecks an item
	SetItemChecked(ctx context.Context, listID, itemID int64, checked bool) error
}

// TokenSource is the part of the auth session the client needs
type TokenSource interface {
	EnsureValidToken(ctx context.Context) (auth.Token, error)
	ForceRefresh(ctx context.Context, stale auth.Token) (auth.Token, error)
}

// Client is the HTTP implementation of API
type Client struct {
	baseURL string
	tokens  TokenSource
	http    httpclient.Client
	timeout time.Duration
	tracer  trace.Tracer
	metrics *telemetry.RemoteMetrics
}

var _ API = (*Client)(nil)

// Option configures a Client
type Option func(*Client)

// WithHTTPClient sets the transport
func WithHTTPClient(client httpclient.Client) Option {
	return func(c *Client) {
		c.http = client
	}
}

// WithTimeout sets the per-attempt timeout
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithTracerProvider enables spans around remote calls
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *Client) {
		if tp != nil {
			c.tracer = tp.Tracer(TracerName)
		}
	}
}

// WithMetrics sets the remote call metrics
func WithMetrics(metrics *telemetry.RemoteMetrics) Option {
	return func(c *Client) {
		c.metrics = metrics
	}
}

// NewClient creates a client for the API rooted at baseURL
func NewClient(baseURL string, tokens TokenSource, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		tokens:  tokens,
		timeout: DefaultTimeout,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.http == nil {
		c.http = httpclient.NewDefaultClient(c.timeout)
	}

	return c
}

// FetchLists implements API
func (c *Client) FetchLists(ctx context.Context) ([]byte, error) {
	return c.call(ctx, OpFetchLists, http.MethodGet, "/lists?includeShares=true", nil)
}

// FetchList implements API
func (c *Client) FetchList(ctx context.Context, listID int64) ([]byte, error) {
	if err := validateIDs(listID); err != nil {
		return nil, err
	}
	return c.call(ctx, OpFetchList, http.MethodGet, listPath(listID), nil, otel.AttrListID.Int64(listID))
}

// RenameList implements API
func (c *Client) RenameList(ctx context.Context, listID int64, name string) error {
	if err := validateIDs(listID); err != nil {
		return err
	}
	body, err := json.Marshal(struct {
		Name string `json:"Name"`
	}{Name: name})
	if err != nil {
		return fmt.Errorf("failed to encode rename request: %w", err)
	}
	_, err = c.call(ctx, OpRenameList, http.MethodPatch, listPath(listID), body, otel.AttrListID.Int64(listID))
	return err
}

// AddItem implements API
func (c *Client) AddItem(ctx context.Context, listID int64, name string) ([]byte, error) {
	if err := validateIDs(listID); err != nil {
		return nil, err
	}
	body, err := json.Marshal(struct {
		Name string `json:"Name"`
	}{Name: name})
	if err != nil {
		return nil, fmt.Errorf("failed to encode item: %w", err)
	}
	return c.call(ctx, OpAddItem, http.MethodPost, listPath(listID)+"/items", body, otel.AttrListID.Int64(listID))
}

// RemoveItem implements API
func (c *Client) RemoveItem(ctx context.Context, listID, itemID int64) error {
	if err := validateIDs(listID, itemID); err != nil {
		return err
	}
	_, err := c.call(ctx, OpRemoveItem, http.MethodDelete, itemPath(listID, itemID), nil,
		otel.AttrListID.Int64(listID), otel.AttrItemID.Int64(itemID))
	return err
}

// SetItemChecked implements API
func (c *Client) SetItemChecked(ctx context.Context, listID, itemID int64, checked bool) error {
	if err := validateIDs(listID, itemID); err != nil {
		return err
	}
	flag := 0
	if checked {
		flag = 1
	}
	body, err := json.Marshal(struct {
		Checked int `json:"Checked"`
	}{Checked: flag})
	if err != nil {
		return fmt.Errorf("failed to encode item update: %w", err)
	}
	_, err = c.call(ctx, OpSetItemChecked, http.MethodPatch, itemPath(listID, itemID), body,
		otel.AttrListID.Int64(listID), otel.AttrItemID.Int64(itemID))
	return err
}
