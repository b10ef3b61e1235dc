package merriamwebster

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/rs/zerolog/log"
)

// ErrNotFound is returned when API responds with 404
var ErrNotFound = errors.New("word not found")

const (
	defaultBaseURL   = "https://www.dictionaryapi.com/api/v3/references"
	DefaultReference = "collegiate"
)

// Client implements integration with Merriam-Webster dictionary API
// docs: https://dictionaryapi.com/products/json
type Client struct {
	client    *http.Client
	baseURL   string
	reference string
	apiKey    string
}

// Fetch returns raw API response for the word
func (c Client) Fetch(ctx context.Context, word string) ([]byte, error) {
	req, err := http.NewRequestWithContext(
		ctx, http.MethodGet, fmt.Sprintf("%s/%s/json/%s", c.baseURL, c.reference, url.PathEscape(word)), nil,
	)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	query := req.URL.Query()
	query.Add("key", c.apiKey)
	req.URL.RawQuery = query.Encode()
	return c.do(req)
}

// DownloadAudio returns pronunciation audio file
func (c Client) DownloadAudio(ctx context.Context, audioURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, audioURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	return c.do(req)
}

func (c Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", req.URL.Host, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		if resp.StatusCode == http.StatusNotFound {
			return nil, ErrNotFound
		}
		log.Error().
			Str("status", resp.Status).
			Str("path", req.URL.Path).
			Str("body", string(body)).
			Msg("unsuccessful response from merriam-webster")
		return nil, fmt.Errorf("unsuccessful API response %v", resp.StatusCode)
	}
	return body, nil
}

// NewClient creates Client with default HTTP client
func NewClient(apiKey string, reference string) Client {
	if reference == "" {
		reference = DefaultReference
	}
	return Client{client: http.DefaultClient, baseURL: defaultBaseURL, reference: reference, apiKey: apiKey}
}
