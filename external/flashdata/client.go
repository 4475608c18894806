// Package flashdata talks to the compressed sports-data feed that encodes
// records as ÷/¬ delimited micro-format blocks.
package flashdata

import (
	"context"
	"fmt"
	"strings"
	"time"

	crerr "github.com/cockroachdb/errors"

	"github.com/jsvanda/infoboard/internal/domain/sportdata"
	"github.com/jsvanda/infoboard/internal/microformat"
	"github.com/jsvanda/infoboard/internal/platform/fetch"
	"github.com/jsvanda/infoboard/internal/platform/logging"
)

const defaultBaseURL = "https://d.flashdata.example.com/x/feed"

// feedPaths map a sport to its results feed. Pure data.
var feedPaths = map[sportdata.Sport]string{
	sportdata.SportFootball:   "/f_1_cz_results",
	sportdata.SportHockey:     "/h_1_cz_results",
	sportdata.SportBasketball: "/b_1_cz_results",
}

const racePath = "/r_f1_results"

type ClientConfig struct {
	BaseURL string
	Fetcher *fetch.Client
	Logger  *logging.Logger
}

type Client struct {
	baseURL string
	fetcher *fetch.Client
	logger  *logging.Logger
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	fetcher := cfg.Fetcher
	if fetcher == nil {
		fetcher = fetch.NewClient(fetch.ClientConfig{
			Retry:  fetch.CriticalProfile(),
			Logger: logger,
		})
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &Client{baseURL: baseURL, fetcher: fetcher, logger: logger}
}

// FetchMatches downloads and decodes finished matches for one sport.
func (c *Client) FetchMatches(ctx context.Context, sport sportdata.Sport) ([]sportdata.MatchResult, error) {
	path, ok := feedPaths[sport]
	if !ok {
		return nil, fmt.Errorf("no feed registered for sport %q", sport)
	}

	raw, err := c.fetcher.Get(ctx, c.baseURL+path, feedHeaders())
	if err != nil {
		return nil, crerr.Wrapf(err, "fetch %s results", sport)
	}

	results := microformat.ParseMatches(string(raw), sport, time.Now())
	c.logger.DebugContext(ctx, "match feed parsed", "sport", string(sport), "records", len(results))
	return results, nil
}

// FetchRaceResults downloads and decodes the latest race podium.
func (c *Client) FetchRaceResults(ctx context.Context) ([]sportdata.RaceResult, error) {
	raw, err := c.fetcher.Get(ctx, c.baseURL+racePath, feedHeaders())
	if err != nil {
		return nil, crerr.Wrap(err, "fetch race results")
	}

	results := microformat.ParseRaceResults(string(raw), time.Now())
	c.logger.DebugContext(ctx, "race feed parsed", "records", len(results))
	return results, nil
}

func feedHeaders() map[string]string {
	return map[string]string{
		"Accept":          "text/plain",
		"X-Fsign":         "SW9D1eZo",
		"Accept-Encoding": "identity",
	}
}
