// Package search mirrors submissions into Elasticsearch for admin full-text
// search. Postgres stays the source of truth; indexing is best-effort.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	apperrors "advisor-routing/internal/common/errors"
	"advisor-routing/internal/models"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

const DefaultIndex = "submissions"

// SubmissionDoc is the indexed projection of a submission.
type SubmissionDoc struct {
	ID                  int64     `json:"id"`
	FirstName           string    `json:"firstName"`
	LastName            string    `json:"lastName"`
	FullName            string    `json:"fullName"`
	Email               string    `json:"email"`
	Phone               string    `json:"phone"`
	ZipCode             string    `json:"zipCode"`
	State               string    `json:"state"`
	County              string    `json:"county"`
	Status              string    `json:"status"`
	AdvisorID           *int64    `json:"advisorId"`
	AdvisorName         string    `json:"advisorName,omitempty"`
	RecommendedCoverage float64   `json:"recommendedCoverage"`
	Timestamp           time.Time `json:"timestamp"`
}

func NewSubmissionDoc(sub *models.Submission) SubmissionDoc {
	return SubmissionDoc{
		ID:                  sub.ID,
		FirstName:           sub.FirstName,
		LastName:            sub.LastName,
		FullName:            sub.FullName(),
		Email:               sub.Email,
		Phone:               sub.Phone,
		ZipCode:             sub.ZipCode,
		State:               sub.State,
		County:              sub.County,
		Status:              string(sub.Status),
		AdvisorID:           sub.AdvisorID,
		AdvisorName:         sub.AdvisorName,
		RecommendedCoverage: models.DecodeResults(sub.CalculationResults).RecommendedCoverage,
		Timestamp:           sub.Timestamp,
	}
}

type Query struct {
	Text   string
	Status models.SubmissionStatus
	From   int
	Size   int
}

type Result struct {
	Total int64           `json:"total"`
	Hits  []SubmissionDoc `json:"hits"`
}

type SubmissionIndex struct {
	es    *elasticsearch.Client
	index string
}

func NewSubmissionIndex(es *elasticsearch.Client, index string) *SubmissionIndex {
	if index == "" {
		index = DefaultIndex
	}
	return &SubmissionIndex{es: es, index: index}
}

// Index upserts the submission document keyed by its id.
func (s *SubmissionIndex) Index(ctx context.Context, sub *models.Submission) error {
	body, err := json.Marshal(NewSubmissionDoc(sub))
	if err != nil {
		return fmt.Errorf("marshal submission: %w", err)
	}

	req := esapi.IndexRequest{
		Index:      s.index,
		DocumentID: strconv.FormatInt(sub.ID, 10),
		Body:       bytes.NewReader(body),
	}
	res, err := req.Do(ctx, s.es)
	if err != nil {
		return fmt.Errorf("index submission: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("index submission failed: %s", res.String())
	}
	return nil
}

// Delete removes a document; a missing document is not an error.
func (s *SubmissionIndex) Delete(ctx context.Context, id int64) error {
	req := esapi.DeleteRequest{
		Index:      s.index,
		DocumentID: strconv.FormatInt(id, 10),
	}
	res, err := req.Do(ctx, s.es)
	if err != nil {
		return fmt.Errorf("delete submission: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() && res.StatusCode != 404 {
		return fmt.Errorf("delete submission failed: %s", res.String())
	}
	return nil
}

func buildQuery(q Query) map[string]interface{} {
	var must, filter []interface{}

	if text := strings.TrimSpace(q.Text); text != "" {
		must = append(must, map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  text,
				"fields": []string{"fullName^3", "email^2", "zipCode^2", "phone", "county", "advisorName"},
				"type":   "best_fields",
			},
		})
	}
	if q.Status != "" {
		filter = append(filter, map[string]interface{}{
			"term": map[string]interface{}{"status": string(q.Status)},
		})
	}

	boolQuery := map[string]interface{}{}
	if len(must) > 0 {
		boolQuery["must"] = must
	} else {
		boolQuery["must"] = []interface{}{map[string]interface{}{"match_all": map[string]interface{}{}}}
	}
	if len(filter) > 0 {
		boolQuery["filter"] = filter
	}

	return map[string]interface{}{
		"query": map[string]interface{}{"bool": boolQuery},
		"sort":  []interface{}{map[string]interface{}{"timestamp": map[string]interface{}{"order": "desc"}}},
	}
}

func (s *SubmissionIndex) Search(ctx context.Context, q Query) (*Result, error) {
	if q.Size <= 0 || q.Size > 100 {
		q.Size = 20
	}
	if q.From < 0 {
		q.From = 0
	}

	body, err := json.Marshal(buildQuery(q))
	if err != nil {
		return nil, fmt.Errorf("marshal query: %w", err)
	}

	req := esapi.SearchRequest{
		Index: []string{s.index},
		Body:  bytes.NewReader(body),
		From:  &q.From,
		Size:  &q.Size,
	}
	res, err := req.Do(ctx, s.es)
	if err != nil {
		return nil, apperrors.NewSearchQueryFailedError(err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, apperrors.NewSearchQueryFailedError(fmt.Errorf("search failed: %s", res.String()))
	}
	result, err := decodeSearch(res.Body)
	if err != nil {
		return nil, apperrors.NewSearchQueryFailedError(err)
	}
	return result, nil
}

func decodeSearch(r io.Reader) (*Result, error) {
	var raw struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source SubmissionDoc `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	out := &Result{Total: raw.Hits.Total.Value, Hits: make([]SubmissionDoc, 0, len(raw.Hits.Hits))}
	for _, h := range raw.Hits.Hits {
		out.Hits = append(out.Hits, h.Source)
	}
	return out, nil
}
