// Package duckduckgo answers follow-up questions from the DuckDuckGo HTML
// results page. It needs no API key.
package duckduckgo

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"

	"github.com/sweetpotato0/chainsocket/pkg/textclean"
	"github.com/sweetpotato0/chainsocket/tool"
)

// DefaultURL is the DuckDuckGo HTML endpoint.
const DefaultURL = "https://html.duckduckgo.com/html/"

// ToolName is the name the search tool registers under.
const ToolName = "duckduckgo_search"

// ErrNoAnswer is returned when the results page has no snippet.
var ErrNoAnswer = errors.New("duckduckgo: no answer found")

// Config holds DuckDuckGo client configuration
type Config struct {
	URL               string
	UserAgent         string
	RequestsPerSecond float64
}

// DefaultConfig returns default DuckDuckGo configuration
func DefaultConfig() *Config {
	return &Config{
		URL:               DefaultURL,
		UserAgent:         "Mozilla/5.0 (compatible; chainsocket)",
		RequestsPerSecond: 1,
	}
}

// Client scrapes DuckDuckGo result snippets.
type Client struct {
	config  *Config
	http    *http.Client
	limiter *rate.Limiter
}

// New creates a DuckDuckGo client
func New(config *Config) *Client {
	if config == nil {
		config = DefaultConfig()
	}
	if config.URL == "" {
		config.URL = DefaultURL
	}
	c := &Client{config: config, http: &http.Client{}}
	if config.RequestsPerSecond > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(config.RequestsPerSecond), 1)
	}
	return c
}

// Search returns the first result snippet for query.
func (c *Client) Search(ctx context.Context, query string) (string, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.URL+"?"+url.Values{"q": {query}}.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	if c.config.UserAgent != "" {
		req.Header.Set("User-Agent", c.config.UserAgent)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("duckduckgo error (status %d)", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to parse results: %w", err)
	}
	return firstSnippet(doc)
}

func firstSnippet(doc *goquery.Document) (string, error) {
	var answer string
	doc.Find(".result__snippet").EachWithBreak(func(i int, s *goquery.Selection) bool {
		answer = textclean.Snippet(s.Text())
		return answer == ""
	})
	if answer == "" {
		return "", ErrNoAnswer
	}
	return answer, nil
}

// Tool exposes the client as the duckduckgo_search tool.
func (c *Client) Tool() *tool.Tool {
	return &tool.Tool{
		Name:        ToolName,
		Description: "Answers a factual question with a DuckDuckGo search",
		Parameters: []tool.Parameter{
			{Name: "query", Type: "string", Description: "The question to search for", Required: true},
		},
		Handler: c.Search,
	}
}
