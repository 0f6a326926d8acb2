package jurisdiction

import (
	"context"
	"time"

	"github.com/numera/numera-api/internal/types/business"
)

// rateWindow is one legislated rate with its validity window. To is zero for
// open-ended windows.
type rateWindow struct {
	From time.Time
	To   time.Time
	Bps  int64
}

func (w rateWindow) contains(on time.Time) bool {
	if on.Before(w.From) {
		return false
	}
	return w.To.IsZero() || !on.After(w.To)
}

// membershipWindow is a union membership interval. To is zero while the
// country remains a member.
type membershipWindow struct {
	From time.Time
	To   time.Time
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// StaticSource is an in-process Source backed by fixed tables. It covers the
// jurisdictions the product currently sells into; anything else fails with
// UnknownJurisdictionError rather than silently applying a flat rate.
type StaticSource struct {
	standard   map[string][]rateWindow
	reduced    map[string]map[string][]rateWindow
	membership map[string][]membershipWindow
	known      map[string]bool
	filingLags map[business.ReportKind]map[business.Cadence]business.FilingLag
}

// NewStaticSource builds the static jurisdiction tables
func NewStaticSource() *StaticSource {
	s := &StaticSource{
		standard: map[string][]rateWindow{
			// Germany cut rates to 16%/5% for the second half of 2020; the
			// windows keep historical invoices correct.
			"DE": {
				{From: date(2007, time.January, 1), To: date(2020, time.June, 30), Bps: 1900},
				{From: date(2020, time.July, 1), To: date(2020, time.December, 31), Bps: 1600},
				{From: date(2021, time.January, 1), Bps: 1900},
			},
			"AT": {{From: date(1984, time.January, 1), Bps: 2000}},
			"FR": {{From: date(2014, time.January, 1), Bps: 2000}},
			"NL": {{From: date(2012, time.October, 1), Bps: 2100}},
			"BE": {{From: date(1996, time.January, 1), Bps: 2100}},
			"IT": {{From: date(2013, time.October, 1), Bps: 2200}},
			"ES": {{From: date(2012, time.September, 1), Bps: 2100}},
			"PL": {{From: date(2011, time.January, 1), Bps: 2300}},
			"CZ": {{From: date(2013, time.January, 1), Bps: 2100}},
			"DK": {{From: date(1992, time.January, 1), Bps: 2500}},
			"SE": {{From: date(1990, time.July, 1), Bps: 2500}},
			"FI": {{From: date(2024, time.September, 1), Bps: 2550}},
			"IE": {{From: date(2012, time.January, 1), Bps: 2300}},
			"PT": {{From: date(2011, time.January, 1), Bps: 2300}},
			"LU": {{From: date(2024, time.January, 1), Bps: 1700}},
			"HU": {{From: date(2012, time.January, 1), Bps: 2700}},
			"RO": {{From: date(2017, time.January, 1), Bps: 1900}},
			"BG": {{From: date(1999, time.January, 1), Bps: 2000}},
			"GB": {{From: date(2011, time.January, 4), Bps: 2000}},
			"CH": {{From: date(2024, time.January, 1), Bps: 810}},
			"NO": {{From: date(2005, time.January, 1), Bps: 2500}},
			// Sales into these countries never charge seller-side VAT; the
			// entries exist so the codes validate as known.
			"US": {{From: date(2000, time.January, 1), Bps: 0}},
			"CA": {{From: date(2008, time.January, 1), Bps: 0}},
			"AU": {{From: date(2000, time.July, 1), Bps: 0}},
		},
		reduced: map[string]map[string][]rateWindow{
			"DE": {
				"books":     {{From: date(2007, time.January, 1), To: date(2020, time.June, 30), Bps: 700}, {From: date(2020, time.July, 1), To: date(2020, time.December, 31), Bps: 500}, {From: date(2021, time.January, 1), Bps: 700}},
				"food":      {{From: date(2007, time.January, 1), To: date(2020, time.June, 30), Bps: 700}, {From: date(2020, time.July, 1), To: date(2020, time.December, 31), Bps: 500}, {From: date(2021, time.January, 1), Bps: 700}},
				"transport": {{From: date(2007, time.January, 1), Bps: 700}},
			},
			"FR": {
				"books": {{From: date(2013, time.January, 1), Bps: 550}},
				"food":  {{From: date(2014, time.January, 1), Bps: 550}},
			},
			"AT": {
				"books": {{From: date(1984, time.January, 1), Bps: 1000}},
				"food":  {{From: date(1984, time.January, 1), Bps: 1000}},
			},
			"NL": {
				"books": {{From: date(2019, time.January, 1), Bps: 900}},
				"food":  {{From: date(2019, time.January, 1), Bps: 900}},
			},
		},
		membership: map[string][]membershipWindow{
			"DE": {{From: date(1958, time.January, 1)}},
			"FR": {{From: date(1958, time.January, 1)}},
			"BE": {{From: date(1958, time.January, 1)}},
			"NL": {{From: date(1958, time.January, 1)}},
			"LU": {{From: date(1958, time.January, 1)}},
			"IT": {{From: date(1958, time.January, 1)}},
			"IE": {{From: date(1973, time.January, 1)}},
			"DK": {{From: date(1973, time.January, 1)}},
			"ES": {{From: date(1986, time.January, 1)}},
			"PT": {{From: date(1986, time.January, 1)}},
			"AT": {{From: date(1995, time.January, 1)}},
			"SE": {{From: date(1995, time.January, 1)}},
			"FI": {{From: date(1995, time.January, 1)}},
			"PL": {{From: date(2004, time.May, 1)}},
			"CZ": {{From: date(2004, time.May, 1)}},
			"HU": {{From: date(2004, time.May, 1)}},
			"RO": {{From: date(2007, time.January, 1)}},
			"BG": {{From: date(2007, time.January, 1)}},
			// The UK left the union VAT area at the end of the Brexit
			// transition period.
			"GB": {{From: date(1973, time.January, 1), To: date(2020, time.December, 31)}},
		},
		filingLags: map[business.ReportKind]map[business.Cadence]business.FilingLag{
			business.ReportVAT: {
				business.CadenceMonthly:   {Months: 1, SnapToMonthEnd: true},
				business.CadenceQuarterly: {Months: 1, SnapToMonthEnd: true},
				business.CadenceYearly:    {Months: 7, SnapToMonthEnd: true},
			},
			business.ReportZM: {
				business.CadenceMonthly:   {Months: 1, DayOfMonth: 25},
				business.CadenceQuarterly: {Months: 1, DayOfMonth: 25},
			},
		},
	}

	s.known = make(map[string]bool, len(s.standard))
	for code := range s.standard {
		s.known[code] = true
	}
	return s
}

// StandardRate implements Source
func (s *StaticSource) StandardRate(ctx context.Context, countryCode string, on time.Time) (int64, error) {
	windows, ok := s.standard[countryCode]
	if !ok {
		return 0, &business.UnknownJurisdictionError{Field: "country", Code: countryCode}
	}
	for _, w := range windows {
		if w.contains(on) {
			return w.Bps, nil
		}
	}
	return 0, &business.UnknownJurisdictionError{Field: "country", Code: countryCode}
}

// ReducedRate implements Source
func (s *StaticSource) ReducedRate(ctx context.Context, countryCode, category string, on time.Time) (int64, bool, error) {
	if !s.known[countryCode] {
		return 0, false, &business.UnknownJurisdictionError{Field: "country", Code: countryCode}
	}
	windows, ok := s.reduced[countryCode][category]
	if !ok {
		return 0, false, nil
	}
	for _, w := range windows {
		if w.contains(on) {
			return w.Bps, true, nil
		}
	}
	return 0, false, nil
}

// IsUnionMember implements Source
func (s *StaticSource) IsUnionMember(ctx context.Context, countryCode string, on time.Time) (bool, error) {
	if !s.known[countryCode] {
		return false, &business.UnknownJurisdictionError{Field: "country", Code: countryCode}
	}
	for _, w := range s.membership[countryCode] {
		if on.Before(w.From) {
			continue
		}
		if w.To.IsZero() || !on.After(w.To) {
			return true, nil
		}
	}
	return false, nil
}

// IsKnownCountry implements Source
func (s *StaticSource) IsKnownCountry(ctx context.Context, countryCode string) bool {
	return s.known[countryCode]
}

// FilingLag implements Source
func (s *StaticSource) FilingLag(ctx context.Context, kind business.ReportKind, cadence business.Cadence) (business.FilingLag, error) {
	lag, ok := s.filingLags[kind][cadence]
	if !ok {
		return business.FilingLag{}, &business.UnknownJurisdictionError{Field: "filing_lag", Code: string(kind) + "/" + string(cadence)}
	}
	return lag, nil
}
