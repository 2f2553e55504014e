// Package schema maps provider-specific column names onto canonical field
// names. The market-data provider renames columns between endpoints and over
// time (e.g. the change-rate column has shipped as "ChagesRatio",
// "ChangeRatio" and "Rate"), so every downstream component addresses tables
// only through the canonical names resolved here.
package schema

import "strings"

// Field is a canonical, semantic field name.
type Field string

const (
	FieldIdentifier     Field = "identifier"
	FieldDisplayName    Field = "displayName"
	FieldSectorLabel    Field = "sectorLabel"
	FieldRate           Field = "rate"
	FieldTradedValue    Field = "tradedValue"
	FieldClosePrice     Field = "closePrice"
	FieldForeignNet     Field = "foreignNet"
	FieldInstitutionNet Field = "institutionNet"
	FieldMarketCap      Field = "marketCap"
	FieldPER            Field = "per"
	FieldPBR            Field = "pbr"
	FieldDate           Field = "date"
)

// candidates holds the priority-ordered exact aliases per canonical field.
// Earlier entries win over later ones regardless of column order in the
// source table. The Korean aliases are the provider's legacy column names.
var candidates = map[Field][]string{
	FieldIdentifier:     {"Code", "Symbol", "종목코드"},
	FieldDisplayName:    {"StockName", "Name", "종목명"},
	FieldSectorLabel:    {"Sector", "업종"},
	FieldRate:           {"ChagesRatio", "ChangeRatio", "ChgRate", "Rate", "등락률"},
	FieldTradedValue:    {"Amount", "TradingValue", "거래대금"},
	FieldClosePrice:     {"Close", "종가"},
	FieldForeignNet:     {"Foreign", "ForeignNet", "외국인"},
	FieldInstitutionNet: {"Institution", "InstitutionNet", "기관"},
	FieldMarketCap:      {"Marcap", "MarketCap", "시가총액"},
	FieldPER:            {"PER"},
	FieldPBR:            {"PBR"},
	FieldDate:           {"Date", "date", "날짜"},
}

// rateSubstrings are tried after the exact rate aliases: any column whose
// name contains one of these is accepted as the change-rate column.
var rateSubstrings = []string{"Ratio", "Rate"}

// FieldMap is an ephemeral mapping from canonical field name to the concrete
// column name found in one source table. Built once per table shape and
// discarded after use.
type FieldMap map[Field]string

// Column returns the concrete column name for a canonical field.
func (m FieldMap) Column(f Field) (string, bool) {
	name, ok := m[f]
	return name, ok
}

// Resolve returns the first matching column name for the canonical field,
// trying exact aliases in declared priority order and, for the rate field,
// falling back to a substring match over the columns in encounter order.
// The second return value is false when no candidate matches; callers decide
// whether that is fatal. Resolve is a pure function of its inputs.
func Resolve(columns []string, f Field) (string, bool) {
	present := make(map[string]bool, len(columns))
	for _, c := range columns {
		present[c] = true
	}

	for _, alias := range candidates[f] {
		if present[alias] {
			return alias, true
		}
	}

	if f == FieldRate {
		for _, sub := range rateSubstrings {
			for _, c := range columns {
				if strings.Contains(c, sub) {
					return c, true
				}
			}
		}
	}

	return "", false
}

// BuildFieldMap resolves the given canonical fields against one table shape.
// Unresolvable fields are simply absent from the result.
func BuildFieldMap(columns []string, fields ...Field) FieldMap {
	m := make(FieldMap, len(fields))
	for _, f := range fields {
		if name, ok := Resolve(columns, f); ok {
			m[f] = name
		}
	}
	return m
}
