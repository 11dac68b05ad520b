// internal/search/indexer.go

// Package search maintains the applicant search index.
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	commonerrors "candidate-pipeline/internal/common/errors"
	"candidate-pipeline/internal/common/logger"
	"candidate-pipeline/internal/models"
)

const DefaultIndex = "applicants"

// Hit is one applicant search match.
type Hit struct {
	ApplicantID string  `json:"applicantId"`
	Name        string  `json:"name"`
	Email       string  `json:"email"`
	RoleID      string  `json:"roleId"`
	Status      string  `json:"status"`
	Score       float64 `json:"score"`
}

// Indexer writes applicants into Elasticsearch and serves keyword search over
// them. Indexing is best-effort background work; a failed index never affects
// the intake outcome.
type Indexer struct {
	client *elasticsearch.Client
	index  string
	logger logger.Logger
}

func NewIndexer(client *elasticsearch.Client, index string, log logger.Logger) *Indexer {
	if index == "" {
		index = DefaultIndex
	}
	return &Indexer{
		client: client,
		index:  index,
		logger: log.WithFields(map[string]interface{}{"component": "search-indexer"}),
	}
}

// IndexApplicant upserts the applicant document keyed by applicant id.
func (ix *Indexer) IndexApplicant(ctx context.Context, applicant *models.Applicant) error {
	doc := map[string]interface{}{
		"name":      applicant.Name,
		"email":     applicant.Email,
		"roleId":    applicant.RoleID,
		"status":    applicant.Status,
		"createdAt": applicant.CreatedAt.Format(time.RFC3339),
	}
	if applicant.ResumeText != nil {
		doc["resumeText"] = *applicant.ResumeText
	}

	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal applicant document: %w", err)
	}

	req := esapi.IndexRequest{
		Index:      ix.index,
		DocumentID: applicant.ID,
		Body:       strings.NewReader(string(body)),
		Refresh:    "false",
	}

	res, err := req.Do(ctx, ix.client)
	if err != nil {
		return indexingErr(err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return indexingErr(fmt.Errorf("index failed: %s", res.String()))
	}

	ix.logger.Debug("applicant indexed", map[string]interface{}{
		"applicantId": applicant.ID,
	})
	return nil
}

// Search runs a keyword query over applicant names and resume text, best
// match first.
func (ix *Indexer) Search(ctx context.Context, query string, size int) ([]Hit, error) {
	if size <= 0 {
		size = 20
	}

	queryBody := map[string]interface{}{
		"query": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  query,
				"fields": []string{"name^2", "resumeText", "email"},
			},
		},
		"size": size,
	}

	body, err := json.Marshal(queryBody)
	if err != nil {
		return nil, fmt.Errorf("marshal search query: %w", err)
	}

	req := esapi.SearchRequest{
		Index: []string{ix.index},
		Body:  strings.NewReader(string(body)),
	}

	res, err := req.Do(ctx, ix.client)
	if err != nil {
		return nil, indexingErr(err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, indexingErr(fmt.Errorf("search failed: %s", res.String()))
	}

	var r map[string]interface{}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	hitsWrapper, ok := r["hits"].(map[string]interface{})
	if !ok {
		return []Hit{}, nil
	}
	rawHits, ok := hitsWrapper["hits"].([]interface{})
	if !ok {
		return []Hit{}, nil
	}

	hits := make([]Hit, 0, len(rawHits))
	for _, raw := range rawHits {
		h, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		hit := Hit{}
		if id, ok := h["_id"].(string); ok {
			hit.ApplicantID = id
		}
		if score, ok := h["_score"].(float64); ok {
			hit.Score = score
		}
		if source, ok := h["_source"].(map[string]interface{}); ok {
			if v, ok := source["name"].(string); ok {
				hit.Name = v
			}
			if v, ok := source["email"].(string); ok {
				hit.Email = v
			}
			if v, ok := source["roleId"].(string); ok {
				hit.RoleID = v
			}
			if v, ok := source["status"].(string); ok {
				hit.Status = v
			}
		}
		hits = append(hits, hit)
	}
	return hits, nil
}

func indexingErr(err error) error {
	return commonerrors.NewIndexingFailedError(err)
}
