// Package opendata reads the national open-data directory API that hosts the
// pharmacy, fuel station, hospital and post office datasets.
package opendata

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"

	"github.com/jsvanda/infoboard/internal/domain/place"
	"github.com/jsvanda/infoboard/internal/platform/fetch"
	"github.com/jsvanda/infoboard/internal/platform/logging"
	"github.com/jsvanda/infoboard/internal/platform/textnorm"
)

const defaultBaseURL = "https://api.otevrenadata.example.cz/v2"

// candidateFetchSize is the superset size pulled for client-side geo ranking.
// The datasets have at most a few thousand rows nationwide.
const candidateFetchSize = 5000

type ClientConfig struct {
	BaseURL string
	APIKey  string
	Fetcher *fetch.Client
	Logger  *logging.Logger
}

type Client struct {
	baseURL string
	apiKey  string
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
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &Client{baseURL: baseURL, apiKey: cfg.APIKey, fetcher: fetcher, logger: logger}
}

// record mirrors one row of the upstream dataset API.
type record struct {
	Name       string   `json:"nazev"`
	Street     string   `json:"ulice"`
	City       string   `json:"obec"`
	PostalCode string   `json:"psc"`
	Phone      string   `json:"telefon"`
	Lat        *float64 `json:"lat"`
	Lon        *float64 `json:"lon"`
}

type recordsEnvelope struct {
	Records []record `json:"records"`
	Total   int      `json:"total"`
}

// SearchByPostal returns records whose postal code matches exactly. The
// filter runs upstream; rows come back in dataset order.
func (c *Client) SearchByPostal(ctx context.Context, kind place.Kind, postal string, limit int) ([]place.Item, error) {
	filter := fmt.Sprintf("psc:eq:%s", strings.ReplaceAll(postal, " ", ""))
	return c.query(ctx, kind, filter, limit)
}

// SearchByCity returns records for one municipality. The upstream filter
// field is stored accent-stripped and lowercased, so the query is folded the
// same way before it is sent.
func (c *Client) SearchByCity(ctx context.Context, kind place.Kind, city string, limit int) ([]place.Item, error) {
	filter := fmt.Sprintf("obec_norm:prefix:%s", textnorm.Fold(city))
	return c.query(ctx, kind, filter, limit)
}

// FetchCandidates pulls the whole dataset for client-side distance ranking.
// The API has no distance predicate, so callers rank with haversine locally.
func (c *Client) FetchCandidates(ctx context.Context, kind place.Kind) ([]place.Item, error) {
	return c.query(ctx, kind, "", candidateFetchSize)
}

func (c *Client) query(ctx context.Context, kind place.Kind, filter string, limit int) ([]place.Item, error) {
	slug := kind.DatasetSlug()
	if slug == "" {
		return nil, fmt.Errorf("unknown place kind %q", kind)
	}

	params := url.Values{}
	params.Set("limit", fmt.Sprintf("%d", limit))
	if filter != "" {
		params.Set("filter", filter)
	}

	endpoint := fmt.Sprintf("%s/datasets/%s/records?%s", c.baseURL, slug, params.Encode())
	raw, err := c.fetcher.Get(ctx, endpoint, c.headers())
	if err != nil {
		return nil, crerr.Wrapf(err, "query dataset %s", slug)
	}

	var envelope recordsEnvelope
	if err := sonic.Unmarshal(raw, &envelope); err != nil {
		return nil, crerr.Wrapf(err, "decode dataset %s response", slug)
	}

	items := make([]place.Item, 0, len(envelope.Records))
	for _, rec := range envelope.Records {
		items = append(items, rec.toItem(kind))
	}
	c.logger.DebugContext(ctx, "dataset queried",
		"dataset", slug, "filter", filter, "records", len(items))
	return items, nil
}

func (c *Client) headers() map[string]string {
	headers := map[string]string{"Accept": "application/json"}
	if c.apiKey != "" {
		headers["X-Api-Key"] = c.apiKey
	}
	return headers
}

func (r record) toItem(kind place.Kind) place.Item {
	item := place.Item{
		Kind:       kind,
		Name:       strings.TrimSpace(r.Name),
		Street:     strings.TrimSpace(r.Street),
		City:       strings.TrimSpace(r.City),
		PostalCode: strings.TrimSpace(r.PostalCode),
		Phone:      strings.TrimSpace(r.Phone),
	}
	if r.Lat != nil && r.Lon != nil {
		item.Lat, item.Lon = r.Lat, r.Lon
	}
	return item
}
