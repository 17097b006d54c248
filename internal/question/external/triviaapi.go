package external

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// DefaultTriviaAPIBaseURL is the public v2 endpoint of the-trivia-api.com.
const DefaultTriviaAPIBaseURL = "https://the-trivia-api.com/v2"

// TriviaAPIClient integrates with the-trivia-api.com (optional key via TRIVIA_API_KEY).
type TriviaAPIClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewTriviaAPIClient(baseURL, apiKey string, httpClient *http.Client) *TriviaAPIClient {
	if baseURL == "" {
		baseURL = DefaultTriviaAPIBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &TriviaAPIClient{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: httpClient,
	}
}

// TriviaAPIText mirrors the nested question object of the v2 payload.
type TriviaAPIText struct {
	Text string `json:"text"`
}

type TriviaAPIQuestion struct {
	ID         string        `json:"id"`
	Category   string        `json:"category"`
	Question   TriviaAPIText `json:"question"`
	Difficulty string        `json:"difficulty"`
	Type       string        `json:"type"`
	Correct    string        `json:"correctAnswer"`
	Incorrect  []string      `json:"incorrectAnswers"`
}

// Fetch requests one batch. Zero limit and empty filters leave the API defaults in place.
func (c *TriviaAPIClient) Fetch(ctx context.Context, limit int, category, difficulty string) ([]TriviaAPIQuestion, error) {
	values := url.Values{}
	if limit > 0 {
		values.Set("limit", strconv.Itoa(limit))
	}
	if category != "" {
		values.Set("categories", category)
	}
	if difficulty != "" {
		values.Set("difficulties", difficulty)
	}
	endpoint := c.baseURL + "/questions"
	if len(values) > 0 {
		endpoint += "?" + values.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("triviaapi non-200: %d", resp.StatusCode)
	}

	var payload []TriviaAPIQuestion
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("triviaapi decode: %w", err)
	}
	return payload, nil
}
