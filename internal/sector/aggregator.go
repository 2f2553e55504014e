// Package sector ranks sectors by average price momentum and selects the
// representative stocks inside them.
package sector

import (
	"math"
	"sort"
	"strings"

	"sectorpulse/internal/errors"
	"sectorpulse/internal/listing"
)

// Display unit divisors for traded value and market cap.
const (
	UnitHundredMillion = 1e8
	UnitTrillion       = 1e12
)

// SectorMean is one ranked sector with its mean change rate.
type SectorMean struct {
	Label    string
	MeanRate float64
	Count    int
}

// Ranking is an ordered sequence of sectors, strictly descending by mean
// change rate. Recomputed fresh every run and never mutated afterward.
type Ranking []SectorMean

// KeywordGroup is one configured watch-list entry: records whose sector
// label contains Keyword are reported under Label.
type KeywordGroup struct {
	Label   string `yaml:"label"`
	Keyword string `yaml:"keyword"`
	TopK    int    `yaml:"top_k"`
}

// GroupSelection is the selected stock set for one watch-list group.
type GroupSelection struct {
	Label  string
	Stocks []listing.StockRecord
}

// Rank groups records by sector label, computes the arithmetic mean of the
// change rate ignoring records with a missing rate, and sorts descending.
// Ties keep first-encounter order (stable sort). Returns
// *errors.EmptyRankingError when zero sectors have a usable rate.
func Rank(records []listing.StockRecord) (Ranking, error) {
	sums := make(map[string]float64)
	counts := make(map[string]int)
	var order []string

	for _, rec := range records {
		if !rec.RateValid || rec.SectorLabel == "" {
			continue
		}
		if _, seen := counts[rec.SectorLabel]; !seen {
			order = append(order, rec.SectorLabel)
		}
		sums[rec.SectorLabel] += rec.ChangeRate
		counts[rec.SectorLabel]++
	}

	if len(order) == 0 {
		return nil, errors.NewEmptyRankingError()
	}

	ranking := make(Ranking, 0, len(order))
	for _, label := range order {
		ranking = append(ranking, SectorMean{
			Label:    label,
			MeanRate: sums[label] / float64(counts[label]),
			Count:    counts[label],
		})
	}

	sort.SliceStable(ranking, func(i, j int) bool {
		return ranking[i].MeanRate > ranking[j].MeanRate
	})

	return ranking, nil
}

// TopByValue returns the top-k records of one sector, sorted descending by
// traded value. k <= 0 returns nil.
func TopByValue(records []listing.StockRecord, sectorLabel string, k int) []listing.StockRecord {
	if k <= 0 {
		return nil
	}

	matched := make([]listing.StockRecord, 0, k)
	for _, rec := range records {
		if rec.SectorLabel == sectorLabel {
			matched = append(matched, rec)
		}
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].TradedValue > matched[j].TradedValue
	})

	if len(matched) > k {
		matched = matched[:k]
	}
	return matched
}

// SelectKeywordGroups applies the watch-list mode: for each configured
// group, records whose sector label contains the keyword (case-sensitive,
// per provider convention) are sorted descending by traded value and
// truncated to the group's top-K. Groups with zero matches are omitted.
func SelectKeywordGroups(records []listing.StockRecord, groups []KeywordGroup) []GroupSelection {
	selections := make([]GroupSelection, 0, len(groups))

	for _, g := range groups {
		if g.Keyword == "" || g.TopK <= 0 {
			continue
		}

		var matched []listing.StockRecord
		for _, rec := range records {
			if strings.Contains(rec.SectorLabel, g.Keyword) {
				matched = append(matched, rec)
			}
		}
		if len(matched) == 0 {
			continue
		}

		sort.SliceStable(matched, func(i, j int) bool {
			return matched[i].TradedValue > matched[j].TradedValue
		})
		if len(matched) > g.TopK {
			matched = matched[:g.TopK]
		}

		selections = append(selections, GroupSelection{Label: g.Label, Stocks: matched})
	}

	return selections
}

// ScaleHundredMillion converts a currency amount to hundred-million units,
// rounded to the nearest whole number. Missing values scale to 0.
func ScaleHundredMillion(v float64) int64 {
	if v == 0 {
		return 0
	}
	return int64(math.Round(v / UnitHundredMillion))
}

// ScaleTrillion converts a currency amount to trillion units with one
// decimal place. Missing values scale to 0.
func ScaleTrillion(v float64) float64 {
	if v == 0 {
		return 0
	}
	return math.Round(v/UnitTrillion*10) / 10
}
