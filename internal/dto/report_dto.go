package dto

// ShiftClosingQuery is bound from the query string. Day defaults to today.
type ShiftClosingQuery struct {
	Day      string `form:"day"      validate:"omitempty,datetime=2006-01-02"`
	Operator string `form:"operator" validate:"max=100"`
	Format   string `form:"format"   validate:"omitempty,oneof=json pdf"`
}

type LedgerVerifyResponse struct {
	Valid         bool   `json:"valid"`
	Series        string `json:"series,omitempty"`
	InvoiceNumber string `json:"invoiceNumber,omitempty"`
	Reason        string `json:"reason,omitempty"`
}
