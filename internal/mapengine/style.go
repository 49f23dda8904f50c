package mapengine

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// maxStyleBytes bounds the size of a fetched base style document.
const maxStyleBytes = 8 << 20

// Style is a decoded MapLibre style document. Top-level members are kept
// raw so unknown keys round-trip untouched.
type Style map[string]json.RawMessage

// StyleFetcher retrieves the base style a Map renders on top of.
type StyleFetcher interface {
	FetchStyle(ctx context.Context, url string) (Style, error)
}

// HTTPFetcher fetches styles over HTTP.
type HTTPFetcher struct {
	Client *http.Client
}

// NewHTTPFetcher returns an HTTPFetcher whose client gives up after timeout.
func NewHTTPFetcher(timeout time.Duration) *HTTPFetcher {
	return &HTTPFetcher{Client: &http.Client{Timeout: timeout}}
}

// FetchStyle GETs url and decodes the body as a JSON object.
// Non-2xx responses are errors.
func (f *HTTPFetcher) FetchStyle(ctx context.Context, url string) (Style, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("mapengine.HTTPFetcher.FetchStyle: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("mapengine.HTTPFetcher.FetchStyle: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("mapengine.HTTPFetcher.FetchStyle: unexpected status %d", resp.StatusCode)
	}

	var style Style
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxStyleBytes)).Decode(&style); err != nil {
		return nil, fmt.Errorf("mapengine.HTTPFetcher.FetchStyle: decode: %w", err)
	}
	return style, nil
}
