// internal/jobs/index.go
package jobs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/google/uuid"

	"nexus-talent/internal/models"
)

const DefaultIndex = "jobs"

// IndexMapping is the mapping used when the job index is created.
const IndexMapping = `{
  "mappings": {
    "properties": {
      "title":    {"type": "text", "fields": {"keyword": {"type": "keyword"}}},
      "company":  {"type": "text", "fields": {"keyword": {"type": "keyword"}}},
      "location": {"type": "text"},
      "jd":       {"type": "text"},
      "link":     {"type": "keyword"},
      "skills":   {"type": "text"},
      "source":   {"type": "keyword"}
    }
  }
}`

// Index is the internal job search index.
type Index struct {
	client *elasticsearch.Client
	name   string
}

func NewIndex(client *elasticsearch.Client, name string) *Index {
	if name == "" {
		name = DefaultIndex
	}
	return &Index{client: client, name: name}
}

func (ix *Index) Name() string { return ix.name }

type searchResponse struct {
	Hits struct {
		Hits []struct {
			ID     string     `json:"_id"`
			Source models.Job `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// BuildSearchQuery matches title and skills across the job fields and boosts
// jobs in the requested location.
func BuildSearchQuery(title, location string, skills []string) map[string]interface{} {
	text := strings.TrimSpace(title + " " + strings.Join(skills, " "))
	boolQuery := map[string]interface{}{
		"must": []interface{}{
			map[string]interface{}{
				"multi_match": map[string]interface{}{
					"query":  text,
					"fields": []string{"title^3", "skills^2", "jd"},
					"type":   "best_fields",
				},
			},
		},
	}
	if location != "" {
		boolQuery["should"] = []interface{}{
			map[string]interface{}{
				"match": map[string]interface{}{"location": location},
			},
		}
	}
	return map[string]interface{}{"query": map[string]interface{}{"bool": boolQuery}}
}

// Search runs a hybrid keyword query and returns at most limit jobs.
func (ix *Index) Search(ctx context.Context, title, location string, skills []string, limit int) ([]models.Job, error) {
	body, err := json.Marshal(BuildSearchQuery(title, location, skills))
	if err != nil {
		return nil, fmt.Errorf("marshal query: %w", err)
	}

	req := esapi.SearchRequest{
		Index: []string{ix.name},
		Body:  bytes.NewReader(body),
		Size:  &limit,
	}
	res, err := req.Do(ctx, ix.client)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("search error: %s", res.Status())
	}

	var sr searchResponse
	if err := json.NewDecoder(res.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	jobs := make([]models.Job, 0, len(sr.Hits.Hits))
	for _, hit := range sr.Hits.Hits {
		job := hit.Source
		job.ID = hit.ID
		job.Source = models.JobSourceIndex
		jobs = append(jobs, job)
	}
	return jobs, nil
}

// DocumentID derives a stable ID from the job link, or from title and
// company when the link is empty.
func DocumentID(job models.Job) string {
	if job.ID != "" {
		return job.ID
	}
	key := job.Link
	if key == "" {
		key = job.Title + "|" + job.Company
	}
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(key)).String()
}

// IndexJobs writes jobs with a single bulk request.
func (ix *Index) IndexJobs(ctx context.Context, jobs []models.Job) error {
	if len(jobs) == 0 {
		return nil
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, job := range jobs {
		meta := map[string]interface{}{"index": map[string]interface{}{"_id": DocumentID(job)}}
		if err := enc.Encode(meta); err != nil {
			return fmt.Errorf("encode bulk meta: %w", err)
		}
		if err := enc.Encode(job); err != nil {
			return fmt.Errorf("encode bulk doc: %w", err)
		}
	}

	req := esapi.BulkRequest{
		Index: ix.name,
		Body:  &buf,
	}
	res, err := req.Do(ctx, ix.client)
	if err != nil {
		return fmt.Errorf("bulk request failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("bulk error: %s", res.Status())
	}

	var br struct {
		Errors bool `json:"errors"`
	}
	if err := json.NewDecoder(res.Body).Decode(&br); err != nil {
		return fmt.Errorf("decode bulk response: %w", err)
	}
	if br.Errors {
		return fmt.Errorf("bulk indexing reported item errors")
	}
	return nil
}
