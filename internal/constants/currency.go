package constants

// SupportedCurrencies is the fixed lookup table of ISO 4217 currency codes the
// engine accepts. All amounts are handled in 2-decimal minor units.
var SupportedCurrencies = map[string]bool{
	"EUR": true,
	"USD": true,
	"GBP": true,
	"CHF": true,
	"SEK": true,
	"DKK": true,
	"NOK": true,
	"PLN": true,
	"CZK": true,
	"HUF": true,
	"RON": true,
	"BGN": true,
	"CAD": true,
	"AUD": true,
}

// IsSupportedCurrency reports whether the given ISO 4217 code is known
func IsSupportedCurrency(code string) bool {
	return SupportedCurrencies[code]
}
