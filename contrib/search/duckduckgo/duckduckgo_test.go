package duckduckgo

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

const resultsPage = `<html><body>
<div class="result"><a class="result__a">Alan Turing</a>
<a class="result__snippet">  </a></div>
<div class="result"><a class="result__snippet">Alan Turing died at the age of <b>41</b>.</a></div>
<div class="result"><a class="result__snippet">Second result</a></div>
</body></html>`

func newTestClient(t *testing.T, page string) *Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("q") == "" {
			t.Errorf("missing query")
		}
		w.Write([]byte(page))
	}))
	t.Cleanup(srv.Close)

	cfg := DefaultConfig()
	cfg.URL = srv.URL
	cfg.RequestsPerSecond = 0
	return New(cfg)
}

func TestSearch(t *testing.T) {
	c := newTestClient(t, resultsPage)
	got, err := c.Tool().Execute(context.Background(), "How old was Alan Turing when he died?")
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if got != "Alan Turing died at the age of 41" {
		t.Errorf("unexpected answer %q", got)
	}
}

func TestSearchNoResults(t *testing.T) {
	c := newTestClient(t, `<html><body><p>No results.</p></body></html>`)
	_, err := c.Search(context.Background(), "q")
	if !errors.Is(err, ErrNoAnswer) {
		t.Errorf("expected ErrNoAnswer, got %v", err)
	}
}
