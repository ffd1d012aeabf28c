package submission

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"baryo/internal/platform/metrics"
	dErrors "baryo/pkg/domain-errors"
)

const maxResponseBytes = 1 << 20

// Client forwards assembled submissions to the barangay management API.
// It authenticates with the caller's bearer token, never its own.
type Client struct {
	http    *http.Client
	baseURL string
	tracer  trace.Tracer
	metrics *metrics.Metrics
}

func NewClient(baseURL string, timeout time.Duration, m *metrics.Metrics) *Client {
	return &Client{
		http:    &http.Client{Timeout: timeout},
		baseURL: baseURL,
		tracer:  otel.Tracer("baryo/submission"),
		metrics: m,
	}
}

// Result is the upstream response to a forwarded submission.
type Result struct {
	StatusCode int
	Body       json.RawMessage
}

// Forward sends a multipart payload upstream and surfaces upstream
// rejections as domain errors the handlers can map.
func (c *Client) Forward(ctx context.Context, path, bearerToken string, payload *Payload) (*Result, error) {
	ctx, span := c.tracer.Start(ctx, "submission.Forward",
		trace.WithAttributes(
			attribute.String("upstream.path", path),
			attribute.Int("payload.bytes", len(payload.Body)),
		),
	)
	defer span.End()

	start := time.Now()
	result, err := c.post(ctx, path, bearerToken, payload)
	c.metrics.ForwardLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.SubmissionForwardErrors.Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "forward failed")
		return nil, err
	}
	span.SetAttributes(attribute.Int("upstream.status", result.StatusCode))
	return result, nil
}

func (c *Client) post(ctx context.Context, path, bearerToken string, payload *Payload) (*Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload.Body))
	if err != nil {
		return nil, fmt.Errorf("build upstream request: %w", err)
	}
	req.Header.Set("Content-Type", payload.ContentType)
	req.Header.Set("Authorization", "Bearer "+bearerToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "upstream API unreachable")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read upstream response: %w", err)
	}
	if err := statusError(resp.StatusCode); err != nil {
		return nil, err
	}
	return &Result{StatusCode: resp.StatusCode, Body: body}, nil
}

// List is a normalized upstream collection. Some endpoints return a bare
// JSON array, others a paginated envelope; callers see one shape.
type List struct {
	Items     []json.RawMessage `json:"items"`
	Total     int               `json:"total"`
	Paginated bool              `json:"paginated"`
}

type listEnvelope struct {
	Data  []json.RawMessage `json:"data"`
	Total *int              `json:"total"`
}

// FetchList GETs an upstream collection endpoint and normalizes the
// response shape.
func (c *Client) FetchList(ctx context.Context, path, bearerToken string) (*List, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("build upstream request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+bearerToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "upstream API unreachable")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read upstream response: %w", err)
	}
	if err := statusError(resp.StatusCode); err != nil {
		return nil, err
	}
	return normalizeList(body)
}

func normalizeList(body []byte) (*List, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var items []json.RawMessage
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, fmt.Errorf("decode upstream array: %w", err)
		}
		return &List{Items: items, Total: len(items)}, nil
	}

	var envelope listEnvelope
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return nil, fmt.Errorf("decode upstream envelope: %w", err)
	}
	list := &List{Items: envelope.Data, Total: len(envelope.Data), Paginated: true}
	if envelope.Total != nil {
		list.Total = *envelope.Total
	}
	return list, nil
}

func statusError(status int) error {
	switch {
	case status < 300:
		return nil
	case status == http.StatusUnauthorized:
		return dErrors.New(dErrors.CodeUnauthorized, "upstream rejected credentials")
	case status == http.StatusForbidden:
		return dErrors.New(dErrors.CodeForbidden, "upstream denied access")
	case status == http.StatusUnprocessableEntity:
		return dErrors.New(dErrors.CodeUnprocessable, "upstream rejected submission")
	case status >= 500:
		return dErrors.New(dErrors.CodeUnavailable, "upstream API error")
	default:
		return dErrors.Newf(dErrors.CodeInternal, "unexpected upstream status %d", status)
	}
}
