// internal/jobs/board.go
package jobs

import (
	"context"
	"errors"
	"net/url"
	"strconv"
	"time"

	httpclient "nexus-talent/internal/common/http"
	"nexus-talent/internal/common/logger"
	"nexus-talent/internal/models"
)

const (
	DefaultBoardURL = "https://api.jobprovider.com"
	defaultLimit    = 10
	defaultCountry  = "us"
)

// BoardClient queries the external job board aggregator.
type BoardClient struct {
	baseURL string
	apiKey  string
	country string
	limit   int
	client  *httpclient.Client
	logger  logger.Logger
}

type boardResponse struct {
	Results []struct {
		JobTitle    string `json:"job_title"`
		CompanyName string `json:"company_name"`
		Location    string `json:"location"`
		Description string `json:"description"`
		RedirectURL string `json:"redirect_url"`
	} `json:"results"`
}

func NewBoardClient(baseURL, apiKey, country string, limit int, timeout time.Duration, log logger.Logger) *BoardClient {
	if baseURL == "" {
		baseURL = DefaultBoardURL
	}
	if country == "" {
		country = defaultCountry
	}
	if limit <= 0 {
		limit = defaultLimit
	}
	return &BoardClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		country: country,
		limit:   limit,
		client:  httpclient.NewClient(timeout, httpclient.WithRetry(2, 300*time.Millisecond)),
		logger:  log,
	}
}

// Search returns standardised jobs. A non-2xx answer from the board yields
// an empty list; transport failures are returned as errors.
func (b *BoardClient) Search(ctx context.Context, title, location string) ([]models.Job, error) {
	q := url.Values{}
	q.Set("title", title)
	q.Set("location", location)
	q.Set("limit", strconv.Itoa(b.limit))
	q.Set("country", b.country)

	var headers map[string]string
	if b.apiKey != "" {
		headers = map[string]string{"Authorization": "Bearer " + b.apiKey}
	}

	var resp boardResponse
	err := b.client.GetJSON(ctx, b.baseURL+"/v1/search?"+q.Encode(), headers, &resp)
	if err != nil {
		var statusErr *httpclient.StatusError
		if errors.As(err, &statusErr) {
			b.logger.Error("External API error", map[string]interface{}{
				"status": statusErr.StatusCode,
			})
			return []models.Job{}, nil
		}
		return nil, err
	}

	jobs := make([]models.Job, 0, len(resp.Results))
	for _, r := range resp.Results {
		jobs = append(jobs, models.Job{
			Title:    r.JobTitle,
			Company:  r.CompanyName,
			Location: r.Location,
			JD:       r.Description,
			Link:     r.RedirectURL,
			Source:   models.JobSourceExternalAPI,
		})
	}
	return jobs, nil
}
