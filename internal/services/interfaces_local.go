package services

import (
	"context"

	"github.com/numera/numera-api/internal/types/business"
)

// Authorizer is the authorization collaborator. Capabilities are defined in
// the constants package.
type Authorizer interface {
	IsEntitled(ctx context.Context, userID, capability string) (bool, error)
}

// FilingClient is the tax-authority integration collaborator. Submit performs
// a real filing; TestSubmit produces a preview artifact only and never affects
// authoritative report state. A structured rejection surfaces as
// *business.FilingRejectedError with the authority's message verbatim.
type FilingClient interface {
	Submit(ctx context.Context, report business.TaxReport) (*business.FilingReceipt, error)
	TestSubmit(ctx context.Context, report business.TaxReport) (*business.FilingArtifact, error)
}
