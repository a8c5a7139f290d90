package main

import (
	"testing"

	"github.com/sweetpotato0/chainsocket/config"
)

func TestSearchTools(t *testing.T) {
	if got := searchTools(config.Secrets{}); len(got) != 1 || got[0].Name != "duckduckgo_search" {
		t.Errorf("expected only duckduckgo without a SerpAPI key, got %d tools", len(got))
	}
	got := searchTools(config.Secrets{GoogleAPIKey: "key"})
	if len(got) != 2 || got[1].Name != "google_search" {
		t.Errorf("expected google_search with a SerpAPI key, got %d tools", len(got))
	}
}
