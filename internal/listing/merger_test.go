package listing

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sectorpulse/internal/errors"
)

func descTable(rows ...Row) Table {
	return Table{Columns: []string{"Code", "Name", "Sector"}, Rows: rows}
}

func quoteTable(rows ...Row) Table {
	return Table{Columns: []string{"Code", "Name", "ChagesRatio", "Amount", "Close"}, Rows: rows}
}

func TestMergeInnerJoin(t *testing.T) {
	desc := descTable(
		Row{"Code": "005930", "Name": "Samsung Electronics", "Sector": "Semiconductors"},
		Row{"Code": "000660", "Name": "SK hynix", "Sector": "Semiconductors"},
		Row{"Code": "999999", "Name": "Delisted Co", "Sector": "Shipbuilding"},
	)
	quote := quoteTable(
		Row{"Code": "005930", "Name": "Samsung Electronics", "ChagesRatio": "2.15", "Amount": "1,234,000,000", "Close": "71,500"},
		Row{"Code": "000660", "Name": "SK hynix", "ChagesRatio": "-0.42", "Amount": "980000000", "Close": "131000"},
		Row{"Code": "123456", "Name": "Quote Only", "ChagesRatio": "1.00", "Amount": "10", "Close": "100"},
	)

	records, err := Merge(desc, quote)
	require.NoError(t, err)

	// Inner join: output never exceeds the smaller side, and every record
	// exists in both inputs.
	require.Len(t, records, 2)
	assert.Equal(t, "005930", records[0].Identifier)
	assert.Equal(t, "000660", records[1].Identifier)

	assert.Equal(t, 2.15, records[0].ChangeRate)
	assert.True(t, records[0].RateValid)
	assert.Equal(t, 1234000000.0, records[0].TradedValue)
	assert.Equal(t, 71500.0, records[0].ClosePrice)
	assert.Equal(t, "Semiconductors", records[0].SectorLabel)
}

func TestMergeNoDuplicateIdentifiers(t *testing.T) {
	desc := descTable(
		Row{"Code": "005930", "Name": "Samsung Electronics", "Sector": "Semiconductors"},
		Row{"Code": "005930", "Name": "Samsung Electronics DUP", "Sector": "Semiconductors"},
	)
	quote := quoteTable(
		Row{"Code": "005930", "Name": "Samsung Electronics", "ChagesRatio": "1.0", "Amount": "1", "Close": "1"},
	)

	records, err := Merge(desc, quote)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Samsung Electronics", records[0].DisplayName)
}

func TestMergeDisplayNamePrecedence(t *testing.T) {
	t.Run("quote name wins", func(t *testing.T) {
		desc := descTable(Row{"Code": "005930", "Name": "Desc Name", "Sector": "Semiconductors"})
		quote := quoteTable(Row{"Code": "005930", "Name": "Quote Name", "ChagesRatio": "1.0", "Amount": "1", "Close": "1"})

		records, err := Merge(desc, quote)
		require.NoError(t, err)
		assert.Equal(t, "Quote Name", records[0].DisplayName)
	})

	t.Run("falls back to description name", func(t *testing.T) {
		desc := descTable(Row{"Code": "005930", "Name": "Desc Name", "Sector": "Semiconductors"})
		quote := Table{
			Columns: []string{"Code", "ChagesRatio", "Amount"},
			Rows:    []Row{{"Code": "005930", "ChagesRatio": "1.0", "Amount": "1"}},
		}

		records, err := Merge(desc, quote)
		require.NoError(t, err)
		assert.Equal(t, "Desc Name", records[0].DisplayName)
	})
}

func TestMergeUnparseableRate(t *testing.T) {
	desc := descTable(Row{"Code": "005930", "Name": "Samsung Electronics", "Sector": "Semiconductors"})
	quote := quoteTable(Row{"Code": "005930", "Name": "Samsung Electronics", "ChagesRatio": "-", "Amount": "500", "Close": "100"})

	records, err := Merge(desc, quote)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.False(t, records[0].RateValid, "placeholder rate must be flagged missing, not zero")
	assert.Equal(t, 500.0, records[0].TradedValue)
}

func TestMergeSchemaResolutionFailure(t *testing.T) {
	t.Run("missing rate column", func(t *testing.T) {
		desc := descTable(Row{"Code": "005930", "Name": "Samsung Electronics", "Sector": "Semiconductors"})
		quote := Table{
			Columns: []string{"Code", "Name", "Amount", "Close"},
			Rows:    []Row{{"Code": "005930", "Name": "Samsung Electronics", "Amount": "1", "Close": "1"}},
		}

		_, err := Merge(desc, quote)
		var schemaErr *errors.SchemaResolutionError
		require.True(t, stderrors.As(err, &schemaErr))
		assert.Equal(t, "rate", schemaErr.Canonical)
		assert.ElementsMatch(t, []string{"Code", "Name", "Amount", "Close"}, schemaErr.Available)
	})

	t.Run("missing traded value column", func(t *testing.T) {
		desc := descTable(Row{"Code": "005930", "Name": "Samsung Electronics", "Sector": "Semiconductors"})
		quote := Table{
			Columns: []string{"Code", "Name", "ChagesRatio", "Close"},
			Rows:    []Row{{"Code": "005930", "Name": "Samsung Electronics", "ChagesRatio": "1.0", "Close": "1"}},
		}

		_, err := Merge(desc, quote)
		var schemaErr *errors.SchemaResolutionError
		require.True(t, stderrors.As(err, &schemaErr))
		assert.Equal(t, "tradedValue", schemaErr.Canonical)
	})
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		raw   string
		value float64
		ok    bool
	}{
		{"1234", 1234, true},
		{"1,234,567", 1234567, true},
		{"-0.42", -0.42, true},
		{" 2.15 ", 2.15, true},
		{"3.5%", 3.5, true},
		{"-", 0, false},
		{"", 0, false},
		{"N/A", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			v, ok := parseNumber(tt.raw)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.value, v)
		})
	}
}
