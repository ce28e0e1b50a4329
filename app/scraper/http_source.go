package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/nickykapur/jobpool/app/jobs"
)

var _ Source = (*HTTPSource)(nil)

// HTTPSource talks to the external scraper service over HTTP. The scraper
// owns the browser automation; this side only asks it to run one query and
// decodes the raw records it returns.
type HTTPSource struct {
	baseURL    string
	httpClient *http.Client
	userAgent  string
}

func NewHTTPSource(baseURL string, httpClient *http.Client, userAgent string) *HTTPSource {
	return &HTTPSource{
		baseURL:    baseURL,
		httpClient: httpClient,
		userAgent:  userAgent,
	}
}

func (s *HTTPSource) Fetch(ctx context.Context, query Query) ([]jobs.RawRecord, error) {
	params := url.Values{}
	params.Set("term", query.Term)
	if query.Location != "" {
		params.Set("location", query.Location)
	}
	if query.Country != "" {
		params.Set("country", query.Country)
	}

	req, err := http.NewRequestWithContext(ctx, "GET", s.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch search results: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var records []jobs.RawRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to decode search results: %w", err)
	}

	return records, nil
}
