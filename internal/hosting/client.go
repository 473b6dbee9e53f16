// Package hosting is the client for the remote static hosting API: deploys,
// usage statistics and the admin site endpoints.
package hosting

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultTimeout bounds every call, including large deploy uploads.
	DefaultTimeout = 60 * time.Second

	encodeConcurrency = 4
)

type Config struct {
	BaseURL string

	// APIKey is sent as a static bearer token.
	APIKey string

	// TokenURL switches authentication to the OAuth2 client credentials flow.
	TokenURL     string
	ClientID     string
	ClientSecret string

	Timeout time.Duration
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient builds a client. ctx is used by the OAuth2 token source for
// fetching tokens and should outlive the client.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		return nil, errors.New("hosting base URL is required")
	}
	if _, err := url.Parse(base); err != nil {
		return nil, fmt.Errorf("invalid hosting base URL: %w", err)
	}

	var hc *http.Client
	switch {
	case cfg.TokenURL != "":
		cc := &clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     cfg.TokenURL,
		}
		hc = cc.Client(ctx)
	case cfg.APIKey != "":
		hc = oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
			AccessToken: cfg.APIKey,
			TokenType:   "Bearer",
		}))
	default:
		hc = &http.Client{}
	}

	hc.Timeout = cfg.Timeout
	if hc.Timeout <= 0 {
		hc.Timeout = DefaultTimeout
	}

	return &Client{baseURL: base, httpClient: hc}, nil
}

// Deploy uploads the files under siteName. Files keep their order in the
// request body; the hosting API may treat the first or index-named file as the
// entry point. The caller must check DeployResult.OK.
func (c *Client) Deploy(ctx context.Context, siteName string, files []File) (*DeployResult, error) {
	encoded, err := encodeFiles(ctx, files)
	if err != nil {
		return nil, &TransportError{Op: "deploy", Err: err}
	}

	var body deployResponse
	status, err := c.doJSON(ctx, http.MethodPost, "/api/upload", uploadRequest{
		SiteName: siteName,
		Files:    encoded,
	}, &body)
	if err != nil {
		return nil, &TransportError{Op: "deploy", Status: status, Err: err}
	}
	// A gateway error page that happens to be JSON is not an API answer.
	if body.OK == nil && status >= http.StatusInternalServerError {
		return nil, &TransportError{Op: "deploy", Status: status, Err: errors.New(http.StatusText(status))}
	}

	res := DeployResult{Slug: body.Slug, URL: body.URL, Error: body.Error}
	if body.OK != nil {
		res.OK = *body.OK
	}
	if res.OK && res.Slug == "" {
		return nil, &TransportError{Op: "deploy", Status: status, Err: errors.New("response has no slug")}
	}
	if !res.OK && res.Error == "" {
		res.Error = http.StatusText(status)
	}
	return &res, nil
}

// FetchUsageStats returns whatever usage fields the API reports.
func (c *Client) FetchUsageStats(ctx context.Context) (*UsageStats, error) {
	var stats UsageStats
	status, err := c.doJSON(ctx, http.MethodGet, "/api/admin/usage", nil, &stats)
	if err != nil {
		return nil, &TransportError{Op: "usage", Status: status, Err: err}
	}
	if status >= http.StatusBadRequest {
		return nil, &TransportError{Op: "usage", Status: status, Err: errors.New(http.StatusText(status))}
	}
	return &stats, nil
}

// ListAllSites accepts both {"sites":[...]} and a bare array.
func (c *Client) ListAllSites(ctx context.Context) ([]SiteSummary, error) {
	var raw json.RawMessage
	status, err := c.doJSON(ctx, http.MethodGet, "/api/admin/sites", nil, &raw)
	if err != nil {
		return nil, &TransportError{Op: "list sites", Status: status, Err: err}
	}
	if status >= http.StatusBadRequest {
		return nil, &TransportError{Op: "list sites", Status: status, Err: errors.New(http.StatusText(status))}
	}

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var sites []SiteSummary
		if err := json.Unmarshal(trimmed, &sites); err != nil {
			return nil, &TransportError{Op: "list sites", Status: status, Err: err}
		}
		return sites, nil
	}

	var envelope struct {
		Sites []SiteSummary `json:"sites"`
	}
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return nil, &TransportError{Op: "list sites", Status: status, Err: err}
	}
	return envelope.Sites, nil
}

// RequestDelete asks the API to take a site down. Deleting an already deleted
// site is expected to come back ok or as a descriptive ok=false.
func (c *Client) RequestDelete(ctx context.Context, slug string) (*ActionResult, error) {
	return c.siteAction(ctx, slug, "delete")
}

// RequestRestore asks the API to bring a deleted site back.
func (c *Client) RequestRestore(ctx context.Context, slug string) (*ActionResult, error) {
	return c.siteAction(ctx, slug, "restore")
}

func (c *Client) Health(ctx context.Context) (*HealthStatus, error) {
	var h HealthStatus
	status, err := c.doJSON(ctx, http.MethodGet, "/health", nil, &h)
	if err != nil {
		return nil, &TransportError{Op: "health", Status: status, Err: err}
	}
	if status >= http.StatusBadRequest {
		return nil, &TransportError{Op: "health", Status: status, Err: errors.New(http.StatusText(status))}
	}
	return &h, nil
}

func (c *Client) siteAction(ctx context.Context, slug, action string) (*ActionResult, error) {
	op := action + " site"
	if strings.TrimSpace(slug) == "" {
		return nil, &TransportError{Op: op, Err: errors.New("empty slug")}
	}

	var res ActionResult
	path := fmt.Sprintf("/api/admin/site/%s/%s", url.PathEscape(slug), action)
	status, err := c.doJSON(ctx, http.MethodPost, path, nil, &res)
	if err != nil {
		return nil, &TransportError{Op: op, Status: status, Err: err}
	}
	if !res.OK && res.Error == "" {
		res.Error = http.StatusText(status)
	}
	return &res, nil
}

// doJSON sends body (if any) as JSON and decodes the response into out. A
// non-2xx response is returned without error when its body decodes, so that
// ok=false payloads reach the caller; otherwise the status is reported.
func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) (int, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, fmt.Errorf("read response: %w", err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		if resp.StatusCode >= http.StatusBadRequest {
			return resp.StatusCode, errors.New(http.StatusText(resp.StatusCode))
		}
		return resp.StatusCode, fmt.Errorf("decode response: %w", err)
	}
	return resp.StatusCode, nil
}

// encodeFiles base64-encodes the files concurrently into index-addressed
// slots, so the output order matches the input order.
func encodeFiles(ctx context.Context, files []File) ([]uploadFile, error) {
	encoded := make([]uploadFile, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(encodeConcurrency)
	for i, f := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			encoded[i] = uploadFile{
				FileName: f.Name,
				FileData: base64.StdEncoding.EncodeToString(f.Data),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return encoded, nil
}
