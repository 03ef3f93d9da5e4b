package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"carenest/services/portal/models"
	"carenest/services/portal/session"
)

const maxResponseBody = 10 << 20

// Request describes one call against a client's base path. Public calls never
// carry the Authorization header; every other call carries the bearer token
// read from the token source at send time.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   any
	Form   *MultipartForm
	Public bool
}

type MultipartForm struct {
	Fields []Field
	Files  []File
}

type Field struct {
	Name  string
	Value string
}

type File struct {
	Field  string
	Upload *models.Upload
}

// Client talks to one base path of the CareNest API.
type Client struct {
	name    string
	baseURL *url.URL
	base    http.RoundTripper
	timeout time.Duration
	logger  *slog.Logger
}

type Option func(*Client)

// WithTransport replaces the underlying round tripper.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) { c.base = rt }
}

func New(name, baseURL string, timeout time.Duration, logger *slog.Logger, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse %s base url: %w", name, err)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	c := &Client{
		name:    name,
		baseURL: u,
		base:    http.DefaultTransport,
		timeout: timeout,
		logger:  logger.With(slog.String("client", name)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Do sends req and decodes a 2xx JSON response into out (when out is non-nil).
// Non-2xx responses are returned as *APIError. Nothing is retried.
func (c *Client) Do(ctx context.Context, tokens oauth2.TokenSource, req Request, out any) error {
	target := c.baseURL.ResolveReference(&url.URL{Path: strings.TrimPrefix(req.Path, "/")})
	if len(req.Query) > 0 {
		target.RawQuery = req.Query.Encode()
	}

	body, contentType, err := encodeBody(req)
	if err != nil {
		return err
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target.String(), body)
	if err != nil {
		return fmt.Errorf("build %s request: %w", c.name, err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}

	transport, err := c.transport(req.Public, tokens)
	if err != nil {
		return err
	}
	httpClient := &http.Client{Transport: transport, Timeout: c.timeout}

	start := time.Now()
	resp, err := httpClient.Do(httpReq)
	if err != nil {
		c.logger.WarnContext(ctx, "Upstream call failed",
			"method", req.Method, "path", target.Path, "error", err)
		return &APIError{Cause: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return &APIError{StatusCode: resp.StatusCode, Cause: err}
	}

	c.logger.DebugContext(ctx, "Upstream call",
		"method", req.Method,
		"path", target.Path,
		"status", resp.StatusCode,
		"latency", time.Since(start),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return newAPIError(resp.StatusCode, raw)
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s response from %s: %w", c.name, target.Path, err)
	}
	return nil
}

func (c *Client) transport(public bool, tokens oauth2.TokenSource) (http.RoundTripper, error) {
	if public || tokens == nil {
		return c.base, nil
	}
	tok, err := tokens.Token()
	if errors.Is(err, session.ErrNoToken) {
		return c.base, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read access token: %w", err)
	}
	return &oauth2.Transport{Source: oauth2.StaticTokenSource(tok), Base: c.base}, nil
}

func encodeBody(req Request) (io.Reader, string, error) {
	switch {
	case req.Form != nil:
		return encodeMultipart(req.Form)
	case req.Body != nil:
		b, err := json.Marshal(req.Body)
		if err != nil {
			return nil, "", fmt.Errorf("encode request body: %w", err)
		}
		return bytes.NewReader(b), "application/json", nil
	default:
		return nil, "", nil
	}
}

func encodeMultipart(form *MultipartForm) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, f := range form.Fields {
		if err := w.WriteField(f.Name, f.Value); err != nil {
			return nil, "", err
		}
	}
	for _, f := range form.Files {
		if f.Upload == nil {
			continue
		}
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, f.Field, f.Upload.Filename))
		ct := f.Upload.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		h.Set("Content-Type", ct)
		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(f.Upload.Data); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}
