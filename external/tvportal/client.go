package tvportal

import (
	"context"
	"strings"
	"time"

	crerr "github.com/cockroachdb/errors"

	"github.com/jsvanda/infoboard/internal/domain/tvguide"
	"github.com/jsvanda/infoboard/internal/platform/fetch"
	"github.com/jsvanda/infoboard/internal/platform/logging"
)

const defaultScheduleURL = "https://www.televizenisport.cz/program"

type ClientConfig struct {
	ScheduleURL string
	Fetcher     *fetch.Client
	Logger      *logging.Logger
}

// Client fetches and parses the portal schedule page.
type Client struct {
	scheduleURL string
	fetcher     *fetch.Client
	logger      *logging.Logger
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	fetcher := cfg.Fetcher
	if fetcher == nil {
		fetcher = fetch.NewClient(fetch.ClientConfig{
			Retry:             fetch.ScraperProfile(),
			RequestsPerSecond: 1,
			Logger:            logger,
		})
	}
	url := strings.TrimSpace(cfg.ScheduleURL)
	if url == "" {
		url = defaultScheduleURL
	}

	return &Client{scheduleURL: url, fetcher: fetcher, logger: logger}
}

// FetchSchedule downloads the page and extracts schedule entries. Given the
// same upstream bytes the parse is deterministic.
func (c *Client) FetchSchedule(ctx context.Context) ([]tvguide.ScheduleEntry, error) {
	raw, err := c.fetcher.Get(ctx, c.scheduleURL, map[string]string{"Accept": "text/html"})
	if err != nil {
		return nil, crerr.Wrap(err, "fetch schedule page")
	}

	entries, err := Parse(string(raw), time.Now())
	if err != nil {
		return nil, crerr.Wrap(err, "parse schedule page")
	}
	if len(entries) == 0 {
		// Empty output from a fetched page usually means the markup
		// changed underneath the selectors.
		c.logger.WarnContext(ctx, "schedule parse produced no entries", "url", c.scheduleURL)
	}
	return entries, nil
}
