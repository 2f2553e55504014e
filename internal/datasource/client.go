// Package datasource is the HTTP client for the market-data provider. The
// provider returns JSON arrays of row objects whose keys are not stable
// across endpoints or over time, so responses are decoded schema-on-read
// with gjson into raw tables and resolved downstream through the schema
// package.
package datasource

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"sectorpulse/internal/errors"
	"sectorpulse/internal/flow"
	"sectorpulse/internal/listing"
	"sectorpulse/internal/schema"
)

const (
	defaultHTTPTimeout = 10 * time.Second
	maxBodyBytes       = 32 << 20

	// Some provider frontends reject requests without a browser UA.
	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// Client fetches listing snapshots and per-stock flow histories.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a provider client for the given base URL.
func NewClient(baseURL string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
		logger:     logger,
	}
}

// Listings fetches the sector-description table and the live-quote table
// for the current snapshot.
func (c *Client) Listings(ctx context.Context) (desc, quote listing.Table, err error) {
	desc, err = c.fetchTable(ctx, "/stock/listing", url.Values{"view": {"desc"}})
	if err != nil {
		return listing.Table{}, listing.Table{}, err
	}
	quote, err = c.fetchTable(ctx, "/stock/listing", url.Values{"view": {"quote"}})
	if err != nil {
		return listing.Table{}, listing.Table{}, err
	}

	c.logger.InfoContext(ctx, "listing snapshot fetched",
		slog.Int("desc_rows", len(desc.Rows)),
		slog.Int("quote_rows", len(quote.Rows)))
	return desc, quote, nil
}

// History fetches the daily flow series for one stock from the given start
// date. It implements flow.HistorySource.
func (c *Client) History(ctx context.Context, identifier string, from time.Time) ([]flow.Observation, error) {
	table, err := c.fetchTable(ctx,
		fmt.Sprintf("/stock/%s/daily", url.PathEscape(identifier)),
		url.Values{"from": {from.Format("2006-01-02")}})
	if err != nil {
		return nil, err
	}

	fields := schema.BuildFieldMap(table.Columns,
		schema.FieldDate, schema.FieldForeignNet, schema.FieldInstitutionNet)
	dateCol, ok := fields.Column(schema.FieldDate)
	if !ok {
		return nil, errors.NewSchemaResolutionError(string(schema.FieldDate), table.Columns)
	}
	foreignCol, hasForeign := fields.Column(schema.FieldForeignNet)
	institutionCol, hasInstitution := fields.Column(schema.FieldInstitutionNet)

	observations := make([]flow.Observation, 0, len(table.Rows))
	for _, row := range table.Rows {
		date, err := time.Parse("2006-01-02", strings.TrimSpace(row[dateCol]))
		if err != nil {
			continue
		}
		obs := flow.Observation{Date: date}
		if hasForeign {
			obs.ForeignNet = parseNet(row[foreignCol])
		}
		if hasInstitution {
			obs.InstitutionNet = parseNet(row[institutionCol])
		}
		observations = append(observations, obs)
	}

	return observations, nil
}

// fetchTable GETs one endpoint and decodes its "data" array into a raw
// table. Column names are discovered from the rows themselves and trimmed
// of surrounding whitespace, which the provider occasionally ships.
func (c *Client) fetchTable(ctx context.Context, path string, query url.Values) (listing.Table, error) {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return listing.Table{}, errors.NewNetworkError("build provider request", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return listing.Table{}, errors.NewNetworkError("provider request failed", err).
			WithContext("endpoint", endpoint)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return listing.Table{}, errors.NewNetworkError(
			fmt.Sprintf("provider returned status %d", resp.StatusCode), nil).
			WithContext("endpoint", endpoint)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return listing.Table{}, errors.NewNetworkError("read provider response", err)
	}
	if !gjson.ValidBytes(body) {
		return listing.Table{}, errors.NewParsingError("provider response is not valid JSON", nil).
			WithContext("endpoint", endpoint)
	}

	data := gjson.GetBytes(body, "data")
	if !data.Exists() || !data.IsArray() {
		return listing.Table{}, errors.NewParsingError(`provider response has no "data" array`, nil).
			WithContext("endpoint", endpoint)
	}

	return decodeTable(data), nil
}

// decodeTable flattens a gjson row array into a Table, preserving the key
// encounter order of the payload.
func decodeTable(data gjson.Result) listing.Table {
	table := listing.Table{}
	seen := make(map[string]bool)

	data.ForEach(func(_, rowResult gjson.Result) bool {
		row := make(listing.Row)
		rowResult.ForEach(func(key, value gjson.Result) bool {
			col := strings.TrimSpace(key.String())
			if col == "" {
				return true
			}
			if !seen[col] {
				seen[col] = true
				table.Columns = append(table.Columns, col)
			}
			row[col] = value.String()
			return true
		})
		table.Rows = append(table.Rows, row)
		return true
	})

	return table
}

// parseNet parses a signed net-flow cell, tolerating thousand separators.
// Unparseable cells read as zero, which the reconciliation state machine
// already treats as unreported.
func parseNet(raw string) int64 {
	s := strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	if s == "" || s == "-" {
		return 0
	}
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return v
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int64(f)
	}
	return 0
}
