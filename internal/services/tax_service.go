package services

import (
	"context"
	"fmt"

	"github.com/numera/numera-api/internal/jurisdiction"
	"github.com/numera/numera-api/internal/logger"
	"github.com/numera/numera-api/internal/types/api/params"
	"github.com/numera/numera-api/internal/types/business"
	"go.uber.org/zap"
)

// TaxService resolves the VAT treatment for a sale from the seller/customer
// jurisdiction context. Both the authoritative path and any optimistic client
// preview run this exact resolver, so the two can never drift apart.
type TaxService struct {
	jurisdictions jurisdiction.Source
	logger        *zap.Logger
}

// NewTaxService creates a new tax service
func NewTaxService(jurisdictions jurisdiction.Source) *TaxService {
	return &TaxService{
		jurisdictions: jurisdictions,
		logger:        logger.Log,
	}
}

// ResolveTreatment determines the applicable VAT treatment. The rule priority
// order is a contract:
//
//  1. Domestic sale: standard rate, or the reduced rate when the category is
//     flagged reduced-rate in the seller jurisdiction.
//  2. Intra-union sale to a VAT-registered business with a VAT number:
//     reverse charge.
//  3. Intra-union sale to a consumer: seller-jurisdiction standard rate.
//  4. Sale outside the union: zero-rated for goods with export proof,
//     otherwise outside the scope of VAT.
//
// Rates and union membership are looked up as in force on p.Date, so
// historical dates resolve to the historically correct treatment.
func (s *TaxService) ResolveTreatment(ctx context.Context, p params.ResolveTreatmentParams) (business.VatTreatment, error) {
	if err := p.Seller.Validate(); err != nil {
		return business.VatTreatment{}, fmt.Errorf("seller: %w", err)
	}
	if err := p.Customer.Validate(); err != nil {
		return business.VatTreatment{}, fmt.Errorf("customer: %w", err)
	}
	if !s.jurisdictions.IsKnownCountry(ctx, p.Seller.CountryCode) {
		return business.VatTreatment{}, &business.UnknownJurisdictionError{Field: "country", Code: p.Seller.CountryCode}
	}
	if !s.jurisdictions.IsKnownCountry(ctx, p.Customer.CountryCode) {
		return business.VatTreatment{}, &business.UnknownJurisdictionError{Field: "country", Code: p.Customer.CountryCode}
	}

	treatment, err := s.resolve(ctx, p)
	if err != nil {
		return business.VatTreatment{}, err
	}

	s.logger.Debug("Resolved VAT treatment",
		zap.String("seller_country", p.Seller.CountryCode),
		zap.String("customer_country", p.Customer.CountryCode),
		zap.String("kind", string(treatment.Kind)),
		zap.Int64("rate_bps", treatment.RateBasisPoints))

	return treatment, nil
}

func (s *TaxService) resolve(ctx context.Context, p params.ResolveTreatmentParams) (business.VatTreatment, error) {
	// Rule 1: domestic sale
	if p.Customer.CountryCode == p.Seller.CountryCode {
		return s.domesticTreatment(ctx, p)
	}

	customerInUnion, err := s.jurisdictions.IsUnionMember(ctx, p.Customer.CountryCode, p.Date)
	if err != nil {
		return business.VatTreatment{}, err
	}

	if customerInUnion {
		// Rule 2: intra-union B2B, liability shifts to the customer
		if p.Customer.IsVatRegistered && p.Customer.VatNumber != "" {
			return business.VatTreatment{Kind: business.TreatmentReverseCharge}, nil
		}
		// Rule 3: intra-union consumer sale, no reverse charge
		return s.domesticTreatment(ctx, p)
	}

	// Rule 4: customer outside the union
	if p.IsGoods && p.HasExportProof {
		return business.VatTreatment{Kind: business.TreatmentZero}, nil
	}
	return business.VatTreatment{Kind: business.TreatmentOutsideScope}, nil
}

// domesticTreatment applies the seller-jurisdiction rate, preferring the
// reduced rate when the category carries one.
func (s *TaxService) domesticTreatment(ctx context.Context, p params.ResolveTreatmentParams) (business.VatTreatment, error) {
	if p.Category != "" {
		rate, reduced, err := s.jurisdictions.ReducedRate(ctx, p.Seller.CountryCode, p.Category, p.Date)
		if err != nil {
			return business.VatTreatment{}, err
		}
		if reduced {
			return business.VatTreatment{Kind: business.TreatmentReduced, RateBasisPoints: rate}, nil
		}
	}

	rate, err := s.jurisdictions.StandardRate(ctx, p.Seller.CountryCode, p.Date)
	if err != nil {
		return business.VatTreatment{}, err
	}
	return business.VatTreatment{Kind: business.TreatmentStandard, RateBasisPoints: rate}, nil
}
