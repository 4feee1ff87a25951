// internal/youtube/client.go
package youtube

import (
	"context"
	"net/url"
	"time"

	httpclient "nexus-talent/internal/common/http"
)

const DefaultBaseURL = "https://www.googleapis.com/youtube/v3"

// Video is the first search hit for a query.
type Video struct {
	ID    string
	Title string
}

// WatchURL returns the public watch link.
func (v Video) WatchURL() string {
	return "https://www.youtube.com/watch?v=" + v.ID
}

// Client is a minimal YouTube Data API v3 search client.
type Client struct {
	baseURL string
	apiKey  string
	http    *httpclient.Client
}

type searchResponse struct {
	Items []struct {
		ID struct {
			VideoID string `json:"videoId"`
		} `json:"id"`
		Snippet struct {
			Title string `json:"title"`
		} `json:"snippet"`
	} `json:"items"`
}

func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    httpclient.NewClient(timeout),
	}
}

// SearchVideo returns the top video for query. An empty result set is not an
// error; the returned Video then has empty fields.
func (c *Client) SearchVideo(ctx context.Context, query string) (Video, error) {
	q := url.Values{}
	q.Set("part", "snippet")
	q.Set("q", query)
	q.Set("maxResults", "1")
	q.Set("type", "video")
	q.Set("key", c.apiKey)

	var resp searchResponse
	if err := c.http.GetJSON(ctx, c.baseURL+"/search?"+q.Encode(), nil, &resp); err != nil {
		return Video{}, err
	}
	if len(resp.Items) == 0 {
		return Video{}, nil
	}
	item := resp.Items[0]
	return Video{ID: item.ID.VideoID, Title: item.Snippet.Title}, nil
}
