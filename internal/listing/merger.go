package listing

import (
	"strings"

	"sectorpulse/internal/errors"
	"sectorpulse/internal/schema"
)

// Merge equi-joins the sector-description table with the live-quote table on
// the stock identifier. Only identifiers present in both tables survive; the
// first occurrence wins when a table repeats an identifier. Returns a
// *errors.SchemaResolutionError when the identifier, rate or traded-value
// column cannot be resolved in the quote table, since no ranking is possible
// without them.
func Merge(desc, quote Table) ([]StockRecord, error) {
	descFields := schema.BuildFieldMap(desc.Columns,
		schema.FieldIdentifier, schema.FieldDisplayName, schema.FieldSectorLabel)
	quoteFields := schema.BuildFieldMap(quote.Columns,
		schema.FieldIdentifier, schema.FieldDisplayName, schema.FieldRate,
		schema.FieldTradedValue, schema.FieldClosePrice, schema.FieldMarketCap,
		schema.FieldPER, schema.FieldPBR)

	descID, ok := descFields.Column(schema.FieldIdentifier)
	if !ok {
		return nil, errors.NewSchemaResolutionError(string(schema.FieldIdentifier), desc.Columns)
	}
	quoteID, ok := quoteFields.Column(schema.FieldIdentifier)
	if !ok {
		return nil, errors.NewSchemaResolutionError(string(schema.FieldIdentifier), quote.Columns)
	}
	rateCol, ok := quoteFields.Column(schema.FieldRate)
	if !ok {
		return nil, errors.NewSchemaResolutionError(string(schema.FieldRate), quote.Columns)
	}
	valueCol, ok := quoteFields.Column(schema.FieldTradedValue)
	if !ok {
		return nil, errors.NewSchemaResolutionError(string(schema.FieldTradedValue), quote.Columns)
	}

	quoteByID := make(map[string]Row, len(quote.Rows))
	for _, row := range quote.Rows {
		id := strings.TrimSpace(row[quoteID])
		if id == "" {
			continue
		}
		if _, dup := quoteByID[id]; dup {
			continue
		}
		quoteByID[id] = row
	}

	records := make([]StockRecord, 0, len(desc.Rows))
	seen := make(map[string]bool, len(desc.Rows))

	for _, descRow := range desc.Rows {
		id := strings.TrimSpace(descRow[descID])
		if id == "" || seen[id] {
			continue
		}
		quoteRow, matched := quoteByID[id]
		if !matched {
			continue
		}
		seen[id] = true

		rec := StockRecord{Identifier: id}
		rec.DisplayName = resolveDisplayName(descRow, quoteRow, descFields, quoteFields)
		if col, ok := descFields.Column(schema.FieldSectorLabel); ok {
			rec.SectorLabel = strings.TrimSpace(descRow[col])
		}

		rec.ChangeRate, rec.RateValid = parseNumber(quoteRow[rateCol])
		rec.TradedValue, _ = parseNumber(quoteRow[valueCol])
		if col, ok := quoteFields.Column(schema.FieldClosePrice); ok {
			rec.ClosePrice, _ = parseNumber(quoteRow[col])
		}
		if col, ok := quoteFields.Column(schema.FieldMarketCap); ok {
			rec.MarketCap, _ = parseNumber(quoteRow[col])
		}
		if col, ok := quoteFields.Column(schema.FieldPER); ok {
			rec.PER, _ = parseNumber(quoteRow[col])
		}
		if col, ok := quoteFields.Column(schema.FieldPBR); ok {
			rec.PBR, _ = parseNumber(quoteRow[col])
		}

		records = append(records, rec)
	}

	return records, nil
}

// resolveDisplayName picks one display name per record. The quote table is
// the preferred source; the description table is the fallback. Both tables
// carry a name column, so without this precedence the merge would duplicate
// the field under two keys.
func resolveDisplayName(descRow, quoteRow Row, descFields, quoteFields schema.FieldMap) string {
	if col, ok := quoteFields.Column(schema.FieldDisplayName); ok {
		if name := strings.TrimSpace(quoteRow[col]); name != "" {
			return name
		}
	}
	if col, ok := descFields.Column(schema.FieldDisplayName); ok {
		return strings.TrimSpace(descRow[col])
	}
	return ""
}
