package fetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/kavya-jain14/sentiment-tracker/internal/sentiment"
)

const (
	defaultBaseURL = "https://api.alternative.me"
	fngPath        = "/fng/"
	maxErrorBody   = 512
)

// AlternativeOptions parameterise the alternative.me index client.
type AlternativeOptions struct {
	BaseURL   string
	Limit     int
	Timeout   time.Duration
	UserAgent string
}

// Alternative fetches the Fear & Greed index from alternative.me.
type Alternative struct {
	opts    AlternativeOptions
	logger  zerolog.Logger
	client  *http.Client
	baseURL string
}

// NewAlternative constructs an index client.
func NewAlternative(opts AlternativeOptions, logger zerolog.Logger) *Alternative {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &Alternative{
		opts:    opts,
		logger:  logger.With().Str("component", "fng_fetcher").Logger(),
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
	}
}

// WithLimit returns a copy of the client requesting limit rows; 0 asks for
// the full history.
func (a *Alternative) WithLimit(limit int) *Alternative {
	clone := *a
	clone.opts.Limit = limit
	return &clone
}

// FetchEntries issues a single GET and returns the data array as sent.
func (a *Alternative) FetchEntries(ctx context.Context) ([]sentiment.RawEntry, error) {
	query := url.Values{}
	query.Set("limit", strconv.Itoa(a.opts.Limit))
	endpoint := a.baseURL + fngPath + "?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", ErrTransport, err)
	}
	req.Header.Set("Accept", "application/json")
	if ua := strings.TrimSpace(a.opts.UserAgent); ua != "" {
		req.Header.Set("User-Agent", ua)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrTransport, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, parseHTTPError(resp.StatusCode, payload)
	}

	entries, err := decodeEntries(payload)
	if err != nil {
		return nil, err
	}

	a.logger.Debug().Int("rows", len(entries)).Int("limit", a.opts.Limit).Msg("fetched index entries")
	return entries, nil
}

type indexResponse struct {
	Data     []sentiment.RawEntry `json:"data"`
	Metadata struct {
		Error *string `json:"error"`
	} `json:"metadata"`
}

func decodeEntries(payload []byte) ([]sentiment.RawEntry, error) {
	var res indexResponse
	if err := json.Unmarshal(payload, &res); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrSchema, err)
	}
	if res.Data == nil {
		if res.Metadata.Error != nil && *res.Metadata.Error != "" {
			return nil, fmt.Errorf("%w: missing data array (%s)", ErrSchema, *res.Metadata.Error)
		}
		return nil, fmt.Errorf("%w: missing data array", ErrSchema)
	}
	return res.Data, nil
}

func parseHTTPError(status int, payload []byte) error {
	body := strings.TrimSpace(string(payload))
	if len(body) > maxErrorBody {
		body = body[:maxErrorBody]
	}
	if body != "" {
		return fmt.Errorf("%w: fng api error (%d): %s", ErrTransport, status, body)
	}
	return fmt.Errorf("%w: fng api error (%d)", ErrTransport, status)
}

var _ SentimentSource = (*Alternative)(nil)
