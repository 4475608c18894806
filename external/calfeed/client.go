// Package calfeed downloads upstream ICS calendar feeds.
package calfeed

import (
	"context"
	"strings"

	crerr "github.com/cockroachdb/errors"

	"github.com/jsvanda/infoboard/internal/domain/calendar"
	"github.com/jsvanda/infoboard/internal/platform/fetch"
	"github.com/jsvanda/infoboard/internal/platform/logging"
)

type ClientConfig struct {
	Fetcher *fetch.Client
	Logger  *logging.Logger
}

type Client struct {
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
			Retry:  fetch.StableProfile(),
			Logger: logger,
		})
	}
	return &Client{fetcher: fetcher, logger: logger}
}

// FetchFeed downloads the raw ICS text for one registered source.
func (c *Client) FetchFeed(ctx context.Context, src calendar.Source) (string, error) {
	raw, err := c.fetcher.Get(ctx, src.URL, map[string]string{
		"Accept": "text/calendar, text/plain;q=0.9",
	})
	if err != nil {
		return "", crerr.Wrapf(err, "fetch calendar feed %s", src.Slug)
	}

	text := string(raw)
	if !strings.Contains(text, "BEGIN:VCALENDAR") {
		c.logger.WarnContext(ctx, "calendar feed missing VCALENDAR envelope", "slug", src.Slug)
	}
	return text, nil
}
