// Package remote reads and writes segments through the document service's
// HTTP API.
package remote

import (
	"context"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/matteuzdev/VerbAI-Studio/internal/errors"
	"github.com/matteuzdev/VerbAI-Studio/persistence"
	"github.com/rs/zerolog/log"
)

const (
	TenantHeader = "X-Tenant-ID"

	segmentPath = "/api/segments/{segment}"
	healthPath  = "/api/health"
)

var _ persistence.Adapter = (*Client)(nil)

// Client is the remote persistence adapter. Writes are not retried.
type Client struct {
	http  *resty.Client
	token func() string
}

type Option func(*Client)

// WithTokenSource sets a bearer token provider, called per request.
func WithTokenSource(fn func() string) Option {
	return func(c *Client) {
		c.token = fn
	}
}

func NewClient(baseURL string, timeout time.Duration, options ...Option) *Client {
	c := &Client{
		http: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(timeout).
			SetHeader("Content-Type", "application/json").
			SetHeader("Accept", "application/json"),
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

func (c *Client) request(ctx context.Context, tenantID string) *resty.Request {
	r := c.http.R().SetContext(ctx).SetHeader(TenantHeader, tenantID)
	if c.token != nil {
		if t := c.token(); t != "" {
			r.SetAuthToken(t)
		}
	}
	return r
}

func (c *Client) ReadSegment(ctx context.Context, tenantID string, segment persistence.Segment, out any) (bool, error) {
	if err := persistence.Check(tenantID, segment); err != nil {
		return false, err
	}
	resp, err := c.request(ctx, tenantID).
		SetPathParam("segment", string(segment)).
		Get(segmentPath)
	if err != nil {
		return false, errors.Wrapf(err, "[Client ReadSegment] failed to fetch %s/%s", tenantID, segment)
	}
	switch {
	case resp.StatusCode() == http.StatusNotFound:
		return false, nil
	case resp.IsError():
		return false, errors.Wrapf(statusError(resp), "[Client ReadSegment] %s/%s", tenantID, segment)
	}
	return persistence.Decode(tenantID, segment, resp.Body(), out), nil
}

func (c *Client) WriteSegment(ctx context.Context, tenantID string, segment persistence.Segment, data any) error {
	if err := persistence.Check(tenantID, segment); err != nil {
		return err
	}
	resp, err := c.request(ctx, tenantID).
		SetPathParam("segment", string(segment)).
		SetBody(data).
		Put(segmentPath)
	if err != nil {
		return errors.Wrapf(err, "[Client WriteSegment] failed to store %s/%s", tenantID, segment)
	}
	if resp.IsError() {
		log.Error().Int("status", resp.StatusCode()).Str("tenant", tenantID).Stringer("segment", segment).Msg("remote write rejected")
		return errors.Wrapf(statusError(resp), "[Client WriteSegment] %s/%s", tenantID, segment)
	}
	return nil
}

// Ping checks the service is reachable.
func (c *Client) Ping(ctx context.Context) error {
	resp, err := c.http.R().SetContext(ctx).Get(healthPath)
	if err != nil {
		return errors.Wrapf(err, "[Client Ping] document service unreachable")
	}
	if resp.IsError() {
		return errors.Wrapf(statusError(resp), "[Client Ping] document service unhealthy")
	}
	return nil
}

func statusError(resp *resty.Response) error {
	switch resp.StatusCode() {
	case http.StatusUnauthorized, http.StatusForbidden:
		return errors.Wrapf(errors.ErrInvalidToken, "status %d", resp.StatusCode())
	case http.StatusBadRequest:
		return errors.Wrapf(errors.ErrInvalidRequest, "status %d: %s", resp.StatusCode(), resp.String())
	default:
		return errors.Wrapf(errors.ErrInternal, "status %d", resp.StatusCode())
	}
}
