package http_test

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpadapter "github.com/couchcryptid/station-scout/internal/adapter/http"
	"github.com/couchcryptid/station-scout/internal/domain"
)

type mockProvider struct {
	err     error
	ranking *domain.Ranking
}

func (m *mockProvider) CheckReadiness(_ context.Context) error { return m.err }

func (m *mockProvider) LastRanking() (domain.Ranking, bool) {
	if m.ranking == nil {
		return domain.Ranking{}, false
	}
	return *m.ranking, true
}

func newTestServer(p *mockProvider) *httpadapter.Server {
	return httpadapter.NewServer(":0", p, slog.Default())
}

func serve(srv *httpadapter.Server, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealthzReturns200(t *testing.T) {
	rec := serve(newTestServer(&mockProvider{}), "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyzReturns200WhenReady(t *testing.T) {
	rec := serve(newTestServer(&mockProvider{}), "/readyz")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyzReturns503WhenNotReady(t *testing.T) {
	rec := serve(newTestServer(&mockProvider{err: fmt.Errorf("no ranking has been produced yet")}), "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	rec := serve(newTestServer(&mockProvider{}), "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestRankingReturns404BeforeFirstRun(t *testing.T) {
	rec := serve(newTestServer(&mockProvider{}), "/ranking")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRankingReturnsLatest(t *testing.T) {
	ranking := domain.Ranking{
		RunID:        "run-7",
		Destinations: []string{"新宿"},
		Candidates: []domain.RankedCandidate{{
			CandidateScore: domain.CandidateScore{Station: "代々木", Score: 400},
			Rank:           1,
			Rent:           10,
		}},
	}
	rec := serve(newTestServer(&mockProvider{ranking: &ranking}), "/ranking")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var got domain.Ranking
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "run-7", got.RunID)
	require.Len(t, got.Candidates, 1)
	assert.Equal(t, "代々木", got.Candidates[0].Station)
}
