// Package testutil holds shared test doubles for the service and handler
// tests.
package testutil

import (
	"context"

	"github.com/numera/numera-api/internal/types/business"
	"github.com/stretchr/testify/mock"
)

// MockFilingClient is a testify mock for the filing collaborator
type MockFilingClient struct {
	mock.Mock
}

func (m *MockFilingClient) Submit(ctx context.Context, report business.TaxReport) (*business.FilingReceipt, error) {
	args := m.Called(ctx, report)
	if receipt := args.Get(0); receipt != nil {
		return receipt.(*business.FilingReceipt), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockFilingClient) TestSubmit(ctx context.Context, report business.TaxReport) (*business.FilingArtifact, error) {
	args := m.Called(ctx, report)
	if artifact := args.Get(0); artifact != nil {
		return artifact.(*business.FilingArtifact), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockAuthorizer is a testify mock for the authorization collaborator
type MockAuthorizer struct {
	mock.Mock
}

func (m *MockAuthorizer) IsEntitled(ctx context.Context, userID, capability string) (bool, error) {
	args := m.Called(ctx, userID, capability)
	return args.Bool(0), args.Error(1)
}
