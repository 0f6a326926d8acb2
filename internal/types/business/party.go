package business

import "fmt"

// Party is one side of a sale: the selling business or its customer
type Party struct {
	CountryCode     string `json:"country_code"`
	VatNumber       string `json:"vat_number,omitempty"`
	IsVatRegistered bool   `json:"is_vat_registered"`
}

// InvalidPartyDataError indicates inconsistent party data, e.g. a party marked
// VAT-registered without a VAT number. Carries the field and offending value so
// the UI can highlight the exact problem.
type InvalidPartyDataError struct {
	Field  string
	Value  string
	Reason string
}

func (e *InvalidPartyDataError) Error() string {
	return fmt.Sprintf("invalid party data: field %s (%q): %s", e.Field, e.Value, e.Reason)
}

// UnknownJurisdictionError indicates a country or currency code missing from
// the fixed lookup tables.
type UnknownJurisdictionError struct {
	Field string
	Code  string
}

func (e *UnknownJurisdictionError) Error() string {
	return fmt.Sprintf("unknown %s code %q", e.Field, e.Code)
}

// Validate checks internal consistency of the party data. A VAT-registered
// party without a VAT number is a data-entry error, never a silent fallback to
// consumer treatment.
func (p Party) Validate() error {
	if len(p.CountryCode) != 2 {
		return &InvalidPartyDataError{
			Field:  "country_code",
			Value:  p.CountryCode,
			Reason: "must be an ISO 3166-1 alpha-2 code",
		}
	}
	if p.IsVatRegistered && p.VatNumber == "" {
		return &InvalidPartyDataError{
			Field:  "vat_number",
			Value:  "",
			Reason: "party is marked VAT-registered but has no VAT number",
		}
	}
	return nil
}
