package request

// UpdateInvoiceStatusRequest represents a manual status change. Force skips
// the consistency check against the recorded payments.
type UpdateInvoiceStatusRequest struct {
	Status string `json:"status" binding:"required"`
	Force  bool   `json:"force"`
}

// AddPaymentRequest represents a payment against an invoice. Amount is a
// pointer so that an explicit 0 reaches the ledger and is rejected there.
type AddPaymentRequest struct {
	Amount *float64 `json:"amount" binding:"required"`
}
