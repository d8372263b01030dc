package uzfeed

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/perioh/tg-uz-reminder/internal/domain"
)

// The UZ site serves an error page to clients without browser-looking
// headers.
const (
	acceptHeader = "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8"
	userAgent    = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"
)

// Client fetches the delayed-trains page.
type Client struct {
	http *http.Client
	url  string
}

func NewClient(feedURL string) *Client {
	return &Client{http: &http.Client{}, url: feedURL}
}

// DelayedTrains fetches and parses the current delay feed.
func (c *Client) DelayedTrains(ctx context.Context) ([]domain.DelayRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", acceptHeader)
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("delay feed: unexpected status %s", resp.Status)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	return Parse(string(body))
}
