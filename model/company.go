package model

// CompanyRecord is the result of a single enrichment lookup. Name and Domain
// always echo the inputs; business fields are only set when the upstream
// vendor actually returned them.
type CompanyRecord struct {
	Name              string `json:"name"`
	Domain            string `json:"domain"`
	EmployeeCount     *int   `json:"employee_count,omitempty"`
	BusinessModel     string `json:"business_model,omitempty"` // B2B, B2C, ...
	Industry          string `json:"industry,omitempty"`
	ExternalAccountID string `json:"external_account_id,omitempty"`
	EnrichmentSource  string `json:"enrichment_source"`
}

// EnrichmentSource values
const (
	SourceVendorAPI  = "vendor_api"
	SourceUnresolved = "unresolved"
)

// Resolved reports whether the record came from a real upstream match.
func (r *CompanyRecord) Resolved() bool {
	return r.EnrichmentSource == SourceVendorAPI
}
