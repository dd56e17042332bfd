// Package ledger holds the pure arithmetic and status rules of an invoice:
// line amounts, totals, balance and payment application. Nothing here
// performs I/O or logs.
package ledger

import (
	"fmt"

	"github.com/sangkips/invoicely-api/internal/domain/entity"
)

// ComputeAmount returns quantity * rate. Negative inputs are not rejected.
func ComputeAmount(quantity, rate float64) float64 {
	return quantity * rate
}

// ComputeSubtotal sums the amount of every item. An empty list yields 0.
func ComputeSubtotal(items []entity.LineItem) float64 {
	var subtotal float64
	for _, item := range items {
		subtotal += item.Amount
	}
	return subtotal
}

// ComputeTotal returns subtotal + tax. Tax is a flat amount.
func ComputeTotal(subtotal, tax float64) float64 {
	return subtotal + tax
}

// ComputeBalance returns what is still owed, floored at zero.
func ComputeBalance(total, amountPaid float64) float64 {
	if balance := total - amountPaid; balance > 0 {
		return balance
	}
	return 0
}

// Recalculate derives every computed field of inv from its items, tax and
// amount paid. Status is left alone.
func Recalculate(inv *entity.Invoice) {
	for i := range inv.Items {
		inv.Items[i].Amount = ComputeAmount(inv.Items[i].Quantity, inv.Items[i].Rate)
		inv.Items[i].Position = i
	}
	inv.Subtotal = ComputeSubtotal(inv.Items)
	inv.Total = ComputeTotal(inv.Subtotal, inv.Tax)
	inv.Balance = ComputeBalance(inv.Total, inv.AmountPaid)
}

// FormatInvoiceNumber renders the display number for a sequence value,
// e.g. ("INV", 7) -> "INV-0007". Values wider than four digits are not truncated.
func FormatInvoiceNumber(prefix string, seq int64) string {
	if prefix == "" {
		prefix = entity.DefaultInvoicePrefix
	}
	return fmt.Sprintf("%s-%04d", prefix, seq)
}
