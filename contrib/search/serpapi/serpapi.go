// Package serpapi answers follow-up questions with Google results fetched
// through SerpAPI.
package serpapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"

	errorskg "github.com/sweetpotato0/chainsocket/errors"
	"github.com/sweetpotato0/chainsocket/pkg/textclean"
	"github.com/sweetpotato0/chainsocket/tool"
)

// DefaultURL is the SerpAPI search endpoint.
const DefaultURL = "https://serpapi.com/search"

// ToolName is the name the search tool registers under.
const ToolName = "google_search"

// ErrNoAnswer is returned when a result page carries nothing usable as an answer.
var ErrNoAnswer = errors.New("serpapi: no answer found")

// answerPaths are tried in order; the first non-empty value wins.
var answerPaths = []string{
	"answer_box.answer",
	"answer_box.snippet",
	"answer_box.snippet_highlighted_words.0",
	"knowledge_graph.description",
	"organic_results.0.snippet",
}

// Config holds SerpAPI client configuration
type Config struct {
	APIKey string
	URL    string
	Engine string
	// RequestsPerSecond limits outgoing queries; zero disables limiting.
	RequestsPerSecond float64
	Burst             int
}

// DefaultConfig returns default SerpAPI configuration
func DefaultConfig(apiKey string) *Config {
	return &Config{
		APIKey:            apiKey,
		URL:               DefaultURL,
		Engine:            "google",
		RequestsPerSecond: 1,
		Burst:             1,
	}
}

// Client queries SerpAPI.
type Client struct {
	config  *Config
	http    *http.Client
	limiter *rate.Limiter
}

// New creates a SerpAPI client
func New(config *Config) *Client {
	if config == nil {
		config = DefaultConfig("")
	}
	if config.URL == "" {
		config.URL = DefaultURL
	}
	if config.Engine == "" {
		config.Engine = "google"
	}

	c := &Client{config: config, http: &http.Client{}}
	if config.RequestsPerSecond > 0 {
		burst := config.Burst
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(config.RequestsPerSecond), burst)
	}
	return c
}

// Search returns the best short answer SerpAPI has for query.
func (c *Client) Search(ctx context.Context, query string) (string, error) {
	if c.config.APIKey == "" {
		return "", fmt.Errorf("serpapi API key not configured: %w", errorskg.ErrInvalidInput)
	}
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", err
		}
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("engine", c.config.Engine)
	params.Set("api_key", c.config.APIKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.URL+"?"+params.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("serpapi error (status %d): %s", resp.StatusCode, gjson.GetBytes(body, "error").String())
	}
	if !gjson.ValidBytes(body) {
		return "", fmt.Errorf("serpapi returned invalid JSON")
	}
	return Answer(body)
}

// Answer extracts the answer from a SerpAPI result document.
func Answer(body []byte) (string, error) {
	for _, path := range answerPaths {
		if v := gjson.GetBytes(body, path); v.Exists() {
			if answer := textclean.Snippet(v.String()); answer != "" {
				return answer, nil
			}
		}
	}
	return "", ErrNoAnswer
}

// Tool exposes the client as the google_search tool.
func (c *Client) Tool() *tool.Tool {
	return &tool.Tool{
		Name:        ToolName,
		Description: "Answers a factual question with a Google search",
		Parameters: []tool.Parameter{
			{Name: "query", Type: "string", Description: "The question to search for", Required: true},
		},
		Handler: c.Search,
	}
}
