package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/claim-verifier/internal/models"
	"github.com/example/claim-verifier/internal/ocr"
)

type stubAgent struct {
	lastInput *models.ClaimInput
	out       *models.AgentOutput
	err       error
}

func (s *stubAgent) Run(ctx context.Context, in *models.ClaimInput) (*models.AgentOutput, error) {
	s.lastInput = in
	return s.out, s.err
}

func (s *stubAgent) Subscribe(requestID string) (<-chan []byte, func()) {
	ch := make(chan []byte)
	close(ch)
	return ch, func() {}
}

type stubExtractor struct {
	extraction *ocr.Extraction
	err        error
}

func (s *stubExtractor) Extract(ctx context.Context, postURL, caption, altText string, maxImages int) (*ocr.Extraction, error) {
	return s.extraction, s.err
}

func newTestMux(ag *stubAgent, ex ocr.Extractor) *http.ServeMux {
	mux := http.NewServeMux()
	(&Server{Agent: ag, Extractor: ex}).RegisterRoutes(mux)
	return mux
}

func postJSON(t *testing.T, mux *http.ServeMux, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestAnalyzeClaims(t *testing.T) {
	ag := &stubAgent{out: &models.AgentOutput{Verdict: models.VerdictUnverifiable, ToolRounds: 2}}
	mux := newTestMux(ag, nil)

	rec := postJSON(t, mux, "/api/analyze_claims", map[string]any{"claims": []string{"the moon is made of cheese"}})
	require.Equal(t, http.StatusOK, rec.Code)

	var out models.AgentOutput
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, models.VerdictUnverifiable, out.Verdict)
	assert.Equal(t, 2, out.ToolRounds)

	// a request id is assigned when the caller omitted one
	require.NotNil(t, ag.lastInput)
	assert.NotEmpty(t, ag.lastInput.RequestID)
}

func TestAnalyzeClaimsRejectsEmptyInput(t *testing.T) {
	mux := newTestMux(&stubAgent{}, nil)
	rec := postJSON(t, mux, "/api/analyze_claims", map[string]any{"claims": []string{}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "error")
}

func TestAnalyzeClaimsAgentFailure(t *testing.T) {
	mux := newTestMux(&stubAgent{err: errors.New("provider down")}, nil)
	rec := postJSON(t, mux, "/api/analyze_claims", map[string]any{"claims": []string{"x"}})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestAnalyzeClaimsMethodNotAllowed(t *testing.T) {
	mux := newTestMux(&stubAgent{}, nil)
	req := httptest.NewRequest(http.MethodGet, "/api/analyze_claims", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestAnalyzePostUsesMergedText(t *testing.T) {
	ag := &stubAgent{out: &models.AgentOutput{Verdict: models.VerdictMixed}}
	ex := &stubExtractor{extraction: &ocr.Extraction{
		Caption:    "caption text",
		OCRText:    "ocr text",
		MergedText: "caption text\nocr text",
	}}
	mux := newTestMux(ag, ex)

	rec := postJSON(t, mux, "/api/analyze_post", map[string]any{
		"post_url": "https://social.example/post/1",
		"caption":  "caption text",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	require.NotNil(t, ag.lastInput)
	assert.Equal(t, []string{"caption text\nocr text"}, ag.lastInput.Claims)
	require.NotNil(t, ag.lastInput.Context)
	assert.Equal(t, "ocr text", ag.lastInput.Context.OCRText)
	assert.Equal(t, []string{"https://social.example/post/1"}, ag.lastInput.Context.URLs)
	assert.NotEmpty(t, ag.lastInput.RequestID)
}

func TestAnalyzePostExplicitClaimsBypassMergedText(t *testing.T) {
	ag := &stubAgent{out: &models.AgentOutput{Verdict: models.VerdictMixed}}
	ex := &stubExtractor{extraction: &ocr.Extraction{MergedText: "ignored"}}
	mux := newTestMux(ag, ex)

	rec := postJSON(t, mux, "/api/analyze_post", map[string]any{
		"post_url": "https://social.example/post/1",
		"claims":   []string{"explicit claim"},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"explicit claim"}, ag.lastInput.Claims)
}

func TestAnalyzePostErrors(t *testing.T) {
	t.Run("missing post_url", func(t *testing.T) {
		mux := newTestMux(&stubAgent{}, &stubExtractor{})
		rec := postJSON(t, mux, "/api/analyze_post", map[string]any{})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
	t.Run("no extractor configured", func(t *testing.T) {
		mux := newTestMux(&stubAgent{}, nil)
		rec := postJSON(t, mux, "/api/analyze_post", map[string]any{"post_url": "https://x"})
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})
	t.Run("extractor failure", func(t *testing.T) {
		mux := newTestMux(&stubAgent{}, &stubExtractor{err: errors.New("ocr down")})
		rec := postJSON(t, mux, "/api/analyze_post", map[string]any{"post_url": "https://x"})
		assert.Equal(t, http.StatusBadGateway, rec.Code)
	})
	t.Run("nothing extracted", func(t *testing.T) {
		mux := newTestMux(&stubAgent{}, &stubExtractor{extraction: &ocr.Extraction{MergedText: "  "}})
		rec := postJSON(t, mux, "/api/analyze_post", map[string]any{"post_url": "https://x"})
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})
}

func TestHealth(t *testing.T) {
	mux := newTestMux(&stubAgent{}, nil)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestEventsRequireRequestID(t *testing.T) {
	mux := newTestMux(&stubAgent{}, nil)
	req := httptest.NewRequest(http.MethodGet, "/api/events/", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
