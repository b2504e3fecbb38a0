// Package client talks to the booking API over HTTP. Responses are decoded
// into generic JSON values and left for the envelope package to normalize;
// failures are mapped onto the models error kinds.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Hasan-Al-Banna-Nahid/retreat/envelope"
	"github.com/Hasan-Al-Banna-Nahid/retreat/models"
)

const (
	DefaultBaseURL = "http://localhost:5000/api"
	DefaultTimeout = 30 * time.Second
)

type Client struct {
	baseURL        string
	http           *http.Client
	tokens         TokenStore
	onUnauthorized func()
	log            *slog.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

func WithTokenStore(ts TokenStore) Option {
	return func(c *Client) { c.tokens = ts }
}

// OnUnauthorized registers fn to run after a 401 has cleared the token.
func OnUnauthorized(fn func()) Option {
	return func(c *Client) { c.onUnauthorized = fn }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.log = l }
}

func New(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid API base URL %q", baseURL)
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: DefaultTimeout},
		tokens:  NewMemoryTokens(""),
		log:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) Tokens() TokenStore { return c.tokens }

// Login exchanges credentials for a token and stores it.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	body := map[string]string{"username": username, "password": password}
	v, err := c.do(ctx, http.MethodPost, "/auth/login", nil, body)
	if err != nil {
		return "", err
	}
	rec, err := envelope.Record(v)
	if err != nil {
		return "", err
	}
	token, _ := rec["token"].(string)
	if token == "" {
		return "", &models.Error{Kind: models.KindShapeMismatch, Message: "login response carries no token"}
	}
	if err := c.tokens.SetToken(token); err != nil {
		return "", fmt.Errorf("store token: %w", err)
	}
	return token, nil
}

func (c *Client) ListVenues(ctx context.Context, f models.VenueFilters) (any, error) {
	return c.do(ctx, http.MethodGet, "/venues", f.Values(), nil)
}

func (c *Client) GetVenue(ctx context.Context, id string) (any, error) {
	return c.do(ctx, http.MethodGet, "/venues/"+url.PathEscape(id), nil, nil)
}

func (c *Client) CreateVenue(ctx context.Context, in models.VenueInput) (any, error) {
	return c.do(ctx, http.MethodPost, "/venues", nil, in)
}

func (c *Client) UpdateVenue(ctx context.Context, id string, in models.VenueInput) (any, error) {
	return c.do(ctx, http.MethodPut, "/venues/"+url.PathEscape(id), nil, in)
}

func (c *Client) DeleteVenue(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodDelete, "/venues/"+url.PathEscape(id), nil, nil)
	return err
}

func (c *Client) ListBookings(ctx context.Context, f models.BookingFilters) (any, error) {
	return c.do(ctx, http.MethodGet, "/bookings", f.Values(), nil)
}

func (c *Client) GetBooking(ctx context.Context, id string) (any, error) {
	return c.do(ctx, http.MethodGet, "/bookings/"+url.PathEscape(id), nil, nil)
}

func (c *Client) ListVenueBookings(ctx context.Context, venueID string) (any, error) {
	return c.do(ctx, http.MethodGet, "/bookings/venue/"+url.PathEscape(venueID), nil, nil)
}

// CreateBooking sends the dates as RFC 3339 UTC timestamps.
func (c *Client) CreateBooking(ctx context.Context, in models.CreateBookingInput) (any, error) {
	in.StartDate = in.StartDate.UTC()
	in.EndDate = in.EndDate.UTC()
	return c.do(ctx, http.MethodPost, "/bookings", nil, in)
}

func (c *Client) UpdateBookingStatus(ctx context.Context, id string, status models.BookingStatus) (any, error) {
	return c.do(ctx, http.MethodPut, "/bookings/"+url.PathEscape(id)+"/status", nil, models.StatusInput{Status: status})
}

func (c *Client) DeleteBooking(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodDelete, "/bookings/"+url.PathEscape(id), nil, nil)
	return err
}

// BookingStats asks the API for aggregates; venueID may be empty.
func (c *Client) BookingStats(ctx context.Context, venueID string) (any, error) {
	q := url.Values{}
	if venueID != "" {
		q.Set("venueId", venueID)
	}
	return c.do(ctx, http.MethodGet, "/bookings/stats", q, nil)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any) (any, error) {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("cannot build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.tokens.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn("request failed", "method", method, "path", path, "error", err)
		return nil, &models.Error{Kind: models.KindNetwork, Message: "Network error", Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &models.Error{Kind: models.KindNetwork, Message: "Network error", Err: err}
	}
	decoded, decodeErr := envelope.Decode(raw)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := c.statusError(resp.StatusCode, decoded)
		c.log.Warn("API error", "method", method, "path", path, "status", resp.StatusCode, "kind", apiErr.Kind)
		return nil, apiErr
	}
	if decodeErr != nil {
		return nil, &models.Error{Kind: models.KindServer, Status: resp.StatusCode, Err: decodeErr}
	}
	if obj, ok := decoded.(map[string]any); ok {
		if success, ok := obj["success"].(bool); ok && !success {
			msg := firstString(obj, "error", "message")
			if msg == "" {
				msg = "API Error"
			}
			return nil, &models.Error{Kind: models.KindServer, Message: msg, Status: resp.StatusCode}
		}
	}
	return decoded, nil
}

// statusError maps a non-2xx response onto an error kind. 401 also clears
// the stored token.
func (c *Client) statusError(status int, body any) *models.Error {
	obj, _ := body.(map[string]any)
	msg := firstString(obj, "error", "message")
	e := &models.Error{Status: status}

	switch {
	case status == http.StatusUnauthorized:
		e.Kind = models.KindUnauthorized
		e.Message = msg
		if err := c.tokens.Clear(); err != nil {
			c.log.Error("clear token", "error", err)
		}
		if c.onUnauthorized != nil {
			c.onUnauthorized()
		}
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		e.Kind = models.KindValidation
		e.Message = msg
		e.Fields = stringMap(obj["fields"])
	case status == http.StatusForbidden:
		e.Kind = models.KindForbidden
		e.Message = msg
	case status == http.StatusNotFound:
		e.Kind = models.KindNotFound
		e.Message = "Resource not found"
	case status == http.StatusConflict:
		e.Kind = models.KindInvalidTransition
		if code, _ := obj["code"].(string); code == string(models.KindConflict) {
			e.Kind = models.KindConflict
		}
		e.Message = msg
	case status >= 500:
		e.Kind = models.KindServer
		if msg != "" {
			e.Err = errors.New(msg)
		}
	default:
		e.Kind = models.KindServer
		e.Message = msg
		if e.Message == "" {
			e.Message = fmt.Sprintf("request failed with status %d", status)
		}
	}
	return e
}

func firstString(obj map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := obj[k].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

func stringMap(v any) map[string]string {
	m, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, val := range m {
		out[k] = fmt.Sprint(val)
	}
	return out
}
