package responses

// TotalsPreviewResponse is the output of the shared totals preview: the
// resolved treatment plus the derived totals, computed by the same rules
// engine the authoritative path runs.
type TotalsPreviewResponse struct {
	Treatment TreatmentResponse `json:"vat_treatment"`
	Totals    TotalsResponse    `json:"totals"`
}
