package listonic

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/stacklok/listonic-sync/internal/apierrors"
	"github.com/stacklok/listonic-sync/internal/auth"
	"github.com/stacklok/listonic-sync/internal/httpclient"
	"github.com/stacklok/listonic-sync/internal/otel"
	"github.com/stacklok/listonic-sync/internal/telemetry"
)

// call runs one remote operation with the single 401 retry
func (c *Client) call(
	ctx context.Context,
	op, method, path string,
	body []byte,
	attrs ...attribute.KeyValue,
) (data []byte, err error) {
	ctx, span := otel.StartSpan(ctx, c.tracer, "listonic."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(append(attrs, otel.AttrOperation.String(op))...),
	)
	defer func() {
		otel.RecordError(span, err)
		c.metrics.RecordRequest(ctx, op, outcome(err))
		span.End()
	}()

	tok, err := c.tokens.EnsureValidToken(ctx)
	if err != nil {
		return nil, err
	}

	endpoint := c.baseURL + path
	data, err = c.send(ctx, method, endpoint, body, tok)
	if !isUnauthorized(err) {
		return data, classify(err)
	}

	slog.Debug("Remote call rejected with 401, refreshing token", "operation", op)
	span.SetAttributes(otel.AttrRetried.Bool(true))
	c.metrics.RecordAuthRetry(ctx, op)

	tok, err = c.tokens.ForceRefresh(ctx, tok)
	if err != nil {
		return nil, err
	}

	data, err = c.send(ctx, method, endpoint, body, tok)
	return data, classify(err)
}

// send performs one attempt bounded by the client timeout
func (c *Client) send(ctx context.Context, method, endpoint string, body []byte, tok auth.Token) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	return c.http.Do(ctx, &httpclient.Request{
		Method: method,
		URL:    endpoint,
		Header: http.Header{"Authorization": []string{"Bearer " + tok.AccessToken}},
		Body:   body,
	})
}

func isUnauthorized(err error) bool {
	httpErr, ok := httpclient.AsHTTPError(err)
	return ok && httpErr.StatusCode == http.StatusUnauthorized
}

// classify maps transport results onto the error taxonomy
func classify(err error) error {
	if err == nil {
		return nil
	}
	if httpErr, ok := httpclient.AsHTTPError(err); ok {
		return apierrors.FromStatus(httpErr.StatusCode, httpErr.URL, httpErr.Message)
	}
	return apierrors.FromTransport("listonic request failed", err)
}

func outcome(err error) string {
	switch {
	case err == nil:
		return telemetry.OutcomeSuccess
	case apierrors.IsAuth(err):
		return telemetry.OutcomeAuth
	case apierrors.IsRequest(err):
		return telemetry.OutcomeRequest
	case errors.Is(err, context.Canceled):
		return "canceled"
	default:
		return telemetry.OutcomeTransient
	}
}

func validateIDs(ids ...int64) error {
	for _, id := range ids {
		if id <= 0 {
			return apierrors.NewInvalidRequest(fmt.Sprintf("id must be a positive integer, got %d", id))
		}
	}
	return nil
}

func listPath(listID int64) string {
	return "/lists/" + url.PathEscape(strconv.FormatInt(listID, 10))
}

func itemPath(listID, itemID int64) string {
	return listPath(listID) + "/items/" + strconv.FormatInt(itemID, 10)
}
