package search

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const resultsPage = `<html><body>
<div class="results">
  <div class="result">
    <a class="result__a" href="https://example.com/one">First <b>Result</b></a>
    <div class="result__snippet">Snippet for the first result.</div>
  </div>
  <div class="result">
    <a class="result__a" href="https://example.org/two">Second Result</a>
    <div class="result__snippet">Snippet for the second result.</div>
  </div>
  <div class="result">
    <a class="result__a" href="https://example.net/three">Third Result</a>
  </div>
</div>
</body></html>`

func TestSearchParsesResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "moon cheese", r.Form.Get("q"))
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		w.Write([]byte(resultsPage))
	}))
	defer srv.Close()

	d := &DuckDuckGo{BaseURL: srv.URL, HTTPClient: srv.Client()}
	results, err := d.Search(context.Background(), "moon cheese", 5)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, "https://example.com/one", results[0].URL)
	assert.Equal(t, "First Result", results[0].Title)
	assert.Equal(t, "Snippet for the first result.", results[0].Snippet)
	// third anchor has no paired snippet
	assert.Empty(t, results[2].Snippet)
}

func TestSearchHonorsTopK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(resultsPage))
	}))
	defer srv.Close()

	d := &DuckDuckGo{BaseURL: srv.URL, HTTPClient: srv.Client()}
	results, err := d.Search(context.Background(), "q", 1)
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestSearchRateLimited(t *testing.T) {
	for _, status := range []int{http.StatusTooManyRequests, http.StatusAccepted} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		}))
		d := &DuckDuckGo{BaseURL: srv.URL, HTTPClient: srv.Client()}
		_, err := d.Search(context.Background(), "q", 5)
		assert.ErrorIs(t, err, ErrRateLimited, "status %d", status)
		srv.Close()
	}
}

func TestSearchServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	d := &DuckDuckGo{BaseURL: srv.URL, HTTPClient: srv.Client()}
	_, err := d.Search(context.Background(), "q", 5)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrRateLimited)
}
