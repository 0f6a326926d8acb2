package constants

// Deployment stages
const (
	ProdEnvironment = "prod"
	DevEnvironment  = "dev"
	TestEnvironment = "test"
)

// Capabilities checked by the authorization collaborator
const (
	CapabilityVatSubmission = "vat_submission"
	CapabilityInvoiceEdit   = "invoice_edit"
)
