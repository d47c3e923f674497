package fixtures

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/axsol/backoffice/pkg/core"
)

// DefaultHTTPTimeout bounds a single fixture request.
const DefaultHTTPTimeout = 10 * time.Second

// HTTP fetches fixtures from <base>/data/<entity>.json. It implements core.Fetcher.
type HTTP struct {
	base     string
	dataPath string
	client   *http.Client
}

// HTTPOption configures an HTTP fetcher.
type HTTPOption func(*HTTP)

// WithClient replaces the HTTP client.
func WithClient(c *http.Client) HTTPOption {
	return func(h *HTTP) {
		if c != nil {
			h.client = c
		}
	}
}

// WithDataPath replaces the "data" directory resources are read from. The path is
// relative to the base URL; a leading slash is ignored.
func WithDataPath(p string) HTTPOption {
	return func(h *HTTP) {
		if p = strings.TrimRight(NormalizeURL(p), "/"); p != "" {
			h.dataPath = p
		}
	}
}

// NewHTTP creates a fetcher rooted at base.
func NewHTTP(base string, opts ...HTTPOption) *HTTP {
	h := &HTTP{
		base:     strings.TrimRight(base, "/"),
		dataPath: DataDir,
		client:   &http.Client{Timeout: DefaultHTTPTimeout},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// NormalizeURL strips a leading slash so resource paths stay relative to the base.
func NormalizeURL(u string) string {
	return strings.TrimPrefix(u, "/")
}

// URL returns the address of the entity fixture.
func (h *HTTP) URL(entity string) string {
	rel := h.dataPath + "/" + entity + ".json"
	if h.base == "" {
		return rel
	}
	return h.base + "/" + rel
}

// Fetch implements core.Fetcher. Non-2xx responses are errors.
func (h *HTTP) Fetch(ctx context.Context, entity string) ([]core.Record, error) {
	url := h.URL(entity)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request %s: %w", url, err)
	}
	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("get %s: HTTP %s", url, resp.Status)
	}
	var doc any
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalid, url, err)
	}
	if err := validate(url, doc); err != nil {
		return nil, err
	}
	raw, _ := json.Marshal(doc)
	var records []core.Record
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalid, url, err)
	}
	return records, nil
}

var _ core.Fetcher = (*HTTP)(nil)
