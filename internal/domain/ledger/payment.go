package ledger

import (
	"fmt"

	"github.com/sangkips/invoicely-api/internal/domain/entity"
	"github.com/sangkips/invoicely-api/internal/domain/enum"
	"github.com/sangkips/invoicely-api/pkg/apperror"
)

// DeriveStatus is the single rule tying status to the payment figures.
// A settled balance is paid, a positive payment with money still owed is
// partially_paid, and anything else keeps the current status.
func DeriveStatus(current enum.InvoiceStatus, amountPaid, balance float64) enum.InvoiceStatus {
	switch {
	case balance <= 0:
		return enum.InvoiceStatusPaid
	case amountPaid > 0:
		return enum.InvoiceStatusPartiallyPaid
	default:
		return current
	}
}

// ApplyPayment returns inv with amount applied. inv is taken by value and the
// caller's copy is never modified; on error the zero Invoice is returned.
func ApplyPayment(inv entity.Invoice, amount float64) (entity.Invoice, error) {
	if !(amount > 0) {
		return entity.Invoice{}, apperror.NewInvalidPaymentAmountError("Payment amount must be greater than zero")
	}
	if amount > inv.Balance {
		return entity.Invoice{}, apperror.NewInvalidPaymentAmountError(
			fmt.Sprintf("Payment amount %.2f exceeds the outstanding balance %.2f", amount, inv.Balance))
	}

	out := inv.Clone()
	out.AmountPaid = inv.AmountPaid + amount
	out.Balance = ComputeBalance(out.Total, out.AmountPaid)
	out.Status = DeriveStatus(inv.Status, out.AmountPaid, out.Balance)
	return out, nil
}

// CheckStatusChange validates a manual status change against the payment
// figures. pending, paid and overdue may always be set by hand;
// partially_paid is only accepted when it agrees with DeriveStatus.
func CheckStatusChange(inv entity.Invoice, next enum.InvoiceStatus) error {
	if !next.Valid() {
		return apperror.NewFieldValidationError("status", fmt.Sprintf("unknown status %q", next))
	}
	if next != enum.InvoiceStatusPartiallyPaid {
		return nil
	}
	if inv.AmountPaid > 0 && inv.Balance > 0 {
		return nil
	}
	return apperror.NewFieldValidationError("status",
		"partially_paid requires a recorded payment and an outstanding balance; use force to override")
}

// IsOverdue reports whether inv should be flagged overdue on asOf: money is
// still owed, the due date has passed and the invoice is pending or partially paid.
func IsOverdue(inv entity.Invoice, asOf entity.Date) bool {
	if inv.Balance <= 0 || inv.DueDate.IsZero() {
		return false
	}
	if inv.Status != enum.InvoiceStatusPending && inv.Status != enum.InvoiceStatusPartiallyPaid {
		return false
	}
	return inv.DueDate.Before(asOf)
}
