package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/invoicely-api/internal/domain/enum"
	"github.com/sangkips/invoicely-api/internal/domain/repository"
	"github.com/sangkips/invoicely-api/pkg/apperror"
)

// DashboardService provides invoice statistics
type DashboardService struct {
	invoiceRepo repository.InvoiceRepository
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(invoiceRepo repository.InvoiceRepository) *DashboardService {
	return &DashboardService{invoiceRepo: invoiceRepo}
}

// StatusStats is the count and revenue of invoices in one status
type StatusStats struct {
	Count   int64   `json:"count"`
	Revenue float64 `json:"revenue"`
}

// DashboardStats represents dashboard statistics
type DashboardStats struct {
	TotalInvoices    int64                              `json:"total_invoices"`
	TotalInvoiced    float64                            `json:"total_invoiced"`
	TotalPaid        float64                            `json:"total_paid"`
	TotalOutstanding float64                            `json:"total_outstanding"`
	ByStatus         map[enum.InvoiceStatus]StatusStats `json:"by_status"`
}

// GetDashboardStats summarises the owner's invoices. Revenue of paid, pending
// and overdue invoices is their total; for partially paid invoices it is the
// amount received so far.
func (s *DashboardService) GetDashboardStats(ctx context.Context, userID uuid.UUID) (*DashboardStats, error) {
	rows, err := s.invoiceRepo.Summarize(ctx, userID)
	if err != nil {
		return nil, apperror.NewPersistenceError(err)
	}

	stats := &DashboardStats{ByStatus: make(map[enum.InvoiceStatus]StatusStats, len(enum.InvoiceStatuses))}
	for _, status := range enum.InvoiceStatuses {
		stats.ByStatus[status] = StatusStats{}
	}

	for _, row := range rows {
		revenue := row.Total
		if row.Status == enum.InvoiceStatusPartiallyPaid {
			revenue = row.AmountPaid
		}
		entry := stats.ByStatus[row.Status]
		entry.Count += row.Count
		entry.Revenue += revenue
		stats.ByStatus[row.Status] = entry

		stats.TotalInvoices += row.Count
		stats.TotalInvoiced += row.Total
		stats.TotalPaid += row.AmountPaid
		stats.TotalOutstanding += row.Balance
	}

	return stats, nil
}
