// Package chartdata prepares daily metric series for chart rendering.
//
// The proxy backend reports per-day aggregates only for days that actually
// had traffic, and depending on the endpoint the date arrives either as ISO
// ("2026-08-14") or abbreviated ("Aug 14"). Charts need one row per calendar
// day with every series present, so FillDaily normalizes dates and fills the
// gaps with zero rows.
package chartdata

import (
	"fmt"
	"sort"
	"time"
)

const (
	// ISODate is the normalized date layout for all output rows.
	ISODate = "2006-01-02"

	// abbrevDate is the compact layout some backend endpoints use.
	// It carries no year; the year is resolved against the requested range.
	abbrevDate = "Jan 02"
)

// Row is one day of chart data: a date plus named numeric series
// (api_requests, total_tokens, spend, per-model token counts, ...).
type Row struct {
	Date   string
	Values map[string]float64
}

// baseSeries are present in every filled row even when the source row
// omitted them.
var baseSeries = []string{"api_requests", "total_tokens"}

// FillDaily converts a sparse set of daily rows into a dense series over
// [start, end] inclusive, one row per calendar day in ascending order.
//
// Source dates are normalized to ISO before comparison. Days with no source
// row get a synthesized row with zero api_requests, zero total_tokens, and
// zero for every name in categories. Source rows dated outside the range are
// dropped, so the result always has exactly daysBetween(start, end)+1 rows.
func FillDaily(rows []Row, start, end time.Time, categories []string) ([]Row, error) {
	start = truncateDay(start)
	end = truncateDay(end)
	if end.Before(start) {
		return nil, fmt.Errorf("chartdata: end %s before start %s",
			end.Format(ISODate), start.Format(ISODate))
	}

	byDate := make(map[string]Row, len(rows))
	for _, row := range rows {
		iso, err := NormalizeDate(row.Date, start, end)
		if err != nil {
			return nil, err
		}
		row.Date = iso
		byDate[iso] = row
	}

	out := make([]Row, 0, int(end.Sub(start).Hours()/24)+1)
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		iso := day.Format(ISODate)
		row, ok := byDate[iso]
		if !ok {
			row = Row{Date: iso, Values: map[string]float64{}}
		}
		if row.Values == nil {
			row.Values = map[string]float64{}
		}
		for _, name := range baseSeries {
			if _, ok := row.Values[name]; !ok {
				row.Values[name] = 0
			}
		}
		for _, name := range categories {
			if _, ok := row.Values[name]; !ok {
				row.Values[name] = 0
			}
		}
		out = append(out, row)
	}
	return out, nil
}

// NormalizeDate parses a date in either ISO or abbreviated form and returns
// it in ISO form. Abbreviated dates carry no year, so it is resolved against
// [start, end]: the candidate year whose resolved date falls inside the
// range wins. When no candidate lands in range the first year that yields a
// valid date is used (Feb 29 only exists in leap years), and the row is left
// for FillDaily's out-of-range drop.
func NormalizeDate(s string, start, end time.Time) (string, error) {
	if t, err := time.Parse(ISODate, s); err == nil {
		return t.Format(ISODate), nil
	}
	t, err := time.Parse(abbrevDate, s)
	if err != nil {
		return "", fmt.Errorf("chartdata: unrecognized date %q", s)
	}

	start = truncateDay(start)
	end = truncateDay(end)
	var fallback time.Time
	for year := start.Year(); year <= end.Year(); year++ {
		resolved := time.Date(year, t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		if resolved.Month() != t.Month() || resolved.Day() != t.Day() {
			continue
		}
		if !resolved.Before(start) && !resolved.After(end) {
			return resolved.Format(ISODate), nil
		}
		if fallback.IsZero() {
			fallback = resolved
		}
	}
	if !fallback.IsZero() {
		return fallback.Format(ISODate), nil
	}
	return "", fmt.Errorf("chartdata: unrecognized date %q", s)
}

// SeriesNames returns the sorted union of all value names across rows,
// excluding the base series. Used to discover per-model/per-provider
// categories present in a response.
func SeriesNames(rows []Row) []string {
	base := make(map[string]bool, len(baseSeries))
	for _, name := range baseSeries {
		base[name] = true
	}
	seen := map[string]bool{}
	for _, row := range rows {
		for name := range row.Values {
			if !base[name] {
				seen[name] = true
			}
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
