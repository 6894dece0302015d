package search

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	apperrors "advisor-routing/internal/common/errors"
	"advisor-routing/internal/models"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestIndex starts a fake cluster; handler sees every request after the
// product header is set.
func newTestIndex(t *testing.T, handler http.HandlerFunc) *SubmissionIndex {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	es, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	return NewSubmissionIndex(es, "")
}

func TestSubmissionIndex_Index(t *testing.T) {
	var (
		path string
		doc  SubmissionDoc
	)
	idx := newTestIndex(t, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&doc))
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"result":"created"}`))
	})

	advisorID := int64(3)
	err := idx.Index(context.Background(), &models.Submission{
		ID: 9, FirstName: "Jane", LastName: "Doe", ZipCode: "99502", State: "AK",
		Status: models.StatusNew, AdvisorID: &advisorID, Timestamp: time.Now(),
		CalculationResults: []byte(`{"recommendedCoverage":750000}`),
	})

	require.NoError(t, err)
	assert.Equal(t, "/submissions/_doc/9", path)
	assert.Equal(t, "Jane Doe", doc.FullName)
	assert.Equal(t, 750000.0, doc.RecommendedCoverage)
	require.NotNil(t, doc.AdvisorID)
	assert.Equal(t, int64(3), *doc.AdvisorID)
}

func TestSubmissionIndex_IndexError(t *testing.T) {
	idx := newTestIndex(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"mapper_parsing_exception"}`))
	})

	err := idx.Index(context.Background(), &models.Submission{ID: 1})
	assert.Error(t, err)
}

func TestSubmissionIndex_DeleteMissingIsOK(t *testing.T) {
	idx := newTestIndex(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"result":"not_found"}`))
	})

	assert.NoError(t, idx.Delete(context.Background(), 5))
}

func TestSubmissionIndex_Search(t *testing.T) {
	var query map[string]interface{}
	idx := newTestIndex(t, func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/submissions/_search"))
		assert.Equal(t, "10", r.URL.Query().Get("size"))
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &query))
		_, _ = w.Write([]byte(`{"hits":{"total":{"value":1},"hits":[{"_source":{"id":4,"fullName":"Jo Smith","status":"new"}}]}}`))
	})

	res, err := idx.Search(context.Background(), Query{Text: "smith", Status: models.StatusNew, Size: 10})

	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Total)
	require.Len(t, res.Hits, 1)
	assert.Equal(t, int64(4), res.Hits[0].ID)

	boolQuery := query["query"].(map[string]interface{})["bool"].(map[string]interface{})
	assert.Len(t, boolQuery["must"], 1)
	assert.Len(t, boolQuery["filter"], 1)
}

func TestBuildQuery_MatchAllWithoutText(t *testing.T) {
	q := buildQuery(Query{})
	boolQuery := q["query"].(map[string]interface{})["bool"].(map[string]interface{})

	must := boolQuery["must"].([]interface{})
	require.Len(t, must, 1)
	assert.Contains(t, must[0], "match_all")
	assert.NotContains(t, boolQuery, "filter")
}

func TestSubmissionIndex_SearchError(t *testing.T) {
	idx := newTestIndex(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"search_phase_execution_exception"}`))
	})

	_, err := idx.Search(context.Background(), Query{Text: "smith"})

	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeSearchQueryFailed))
}
