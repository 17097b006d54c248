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

// DefaultOpenTDBBaseURL is the public Open Trivia DB host.
const DefaultOpenTDBBaseURL = "https://opentdb.com"

const defaultOpenTDBAmount = 10

// OpenTDB response codes.
const (
	openTDBOK        = 0
	openTDBNoResults = 1
)

var openTDBCodeText = map[int]string{
	2: "invalid parameter",
	3: "session token not found",
	4: "session token exhausted",
	5: "rate limited",
}

// OpenTDBCodeError reports a non-success response_code from the API.
type OpenTDBCodeError struct {
	Code int
}

func (e *OpenTDBCodeError) Error() string {
	if text, ok := openTDBCodeText[e.Code]; ok {
		return fmt.Sprintf("opentdb response code %d: %s", e.Code, text)
	}
	return fmt.Sprintf("opentdb response code %d", e.Code)
}

// OpenTDBQuery filters one request. Category is the numeric OpenTDB id;
// anything else is ignored.
type OpenTDBQuery struct {
	Amount     int
	Category   string
	Difficulty string
	Type       string
}

func (q OpenTDBQuery) values() url.Values {
	amount := q.Amount
	if amount <= 0 {
		amount = defaultOpenTDBAmount
	}
	values := url.Values{"amount": {strconv.Itoa(amount)}}
	if _, err := strconv.Atoi(q.Category); err == nil {
		values.Set("category", q.Category)
	}
	if q.Difficulty != "" {
		values.Set("difficulty", q.Difficulty)
	}
	if q.Type != "" {
		values.Set("type", q.Type)
	}
	return values
}

// OpenTDBClient fetches questions from the Open Trivia DB (no API key).
type OpenTDBClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewOpenTDBClient(baseURL string, httpClient *http.Client) *OpenTDBClient {
	if baseURL == "" {
		baseURL = DefaultOpenTDBBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &OpenTDBClient{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: httpClient,
	}
}

// OpenTDBQuestion is one raw result; text fields are HTML-escaped.
type OpenTDBQuestion struct {
	Category        string   `json:"category"`
	Type            string   `json:"type"`
	Difficulty      string   `json:"difficulty"`
	Question        string   `json:"question"`
	CorrectAnswer   string   `json:"correct_answer"`
	IncorrectAnswer []string `json:"incorrect_answers"`
}

type openTDBResponse struct {
	ResponseCode int               `json:"response_code"`
	Results      []OpenTDBQuestion `json:"results"`
}

// Fetch runs q against /api.php. "No results" comes back as an empty,
// non-nil slice; every other non-zero code is an *OpenTDBCodeError.
func (c *OpenTDBClient) Fetch(ctx context.Context, q OpenTDBQuery) ([]OpenTDBQuestion, error) {
	endpoint := c.baseURL + "/api.php?" + q.values().Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("opentdb request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("opentdb non-200: %d", resp.StatusCode)
	}

	var payload openTDBResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("opentdb decode: %w", err)
	}
	switch payload.ResponseCode {
	case openTDBOK:
		return payload.Results, nil
	case openTDBNoResults:
		return []OpenTDBQuestion{}, nil
	default:
		return nil, &OpenTDBCodeError{Code: payload.ResponseCode}
	}
}
