// Package jurisdiction supplies VAT rates, union membership and filing lags.
// Rates and membership are looked up by effective date, never hardcoded at
// call sites, so historical invoices keep the rate that was correct on their
// issue date.
package jurisdiction

import (
	"context"
	"time"

	"github.com/numera/numera-api/internal/types/business"
)

// Source is the jurisdiction data collaborator consumed by the rule resolver
// and the period builder.
type Source interface {
	// StandardRate returns the standard VAT rate in basis points for a country
	// as in force on the given date.
	StandardRate(ctx context.Context, countryCode string, on time.Time) (int64, error)

	// ReducedRate returns the reduced rate in basis points for a category, and
	// whether the category is flagged reduced-rate in that country at all.
	ReducedRate(ctx context.Context, countryCode, category string, on time.Time) (int64, bool, error)

	// IsUnionMember reports whether the country belongs to the economic union
	// on the given date.
	IsUnionMember(ctx context.Context, countryCode string, on time.Time) (bool, error)

	// IsKnownCountry reports whether the country code exists in the lookup
	// tables at all.
	IsKnownCountry(ctx context.Context, countryCode string) bool

	// FilingLag returns the due-date lag for a report kind and cadence
	FilingLag(ctx context.Context, kind business.ReportKind, cadence business.Cadence) (business.FilingLag, error)
}
