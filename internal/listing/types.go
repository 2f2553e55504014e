// Package listing merges the provider's sector-description table with its
// live-quote table into enriched per-stock records. Tables are handled
// schema-on-read: rows keep their raw column names and are only accessed
// through canonical fields resolved by the schema package.
package listing

import (
	"strconv"
	"strings"
)

// Row is one raw table row keyed by the provider's column names.
type Row map[string]string

// Table is a raw source table. Columns preserves the provider's column
// order, which matters for substring-based field resolution.
type Table struct {
	Columns []string
	Rows    []Row
}

// StockRecord is one merged per-stock record. RateValid is false when the
// change-rate cell was missing or unparseable; such records are excluded
// from sector-mean computation but still carried for display.
type StockRecord struct {
	Identifier  string
	DisplayName string
	SectorLabel string
	ChangeRate  float64
	RateValid   bool
	TradedValue float64
	ClosePrice  float64
	MarketCap   float64
	PER         float64
	PBR         float64
}

// parseNumber parses a provider numeric cell. Cells may carry thousand
// separators, surrounding whitespace or a bare "-" placeholder.
func parseNumber(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSuffix(s, "%")
	if s == "" || s == "-" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
