package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/invoicely-api/internal/domain/entity"
	"github.com/sangkips/invoicely-api/internal/domain/enum"
	"github.com/sangkips/invoicely-api/pkg/pagination"
)

// NumberAssigner renders an invoice number from the next sequence value
type NumberAssigner func(seq int64) string

// InvoiceFilter narrows an invoice listing. Zero values mean "no filter".
type InvoiceFilter struct {
	Status     enum.InvoiceStatus
	ClientName string
	IssuedFrom entity.Date // inclusive
	IssuedTo   entity.Date // exclusive
}

// StatusSummary aggregates invoices sharing a status
type StatusSummary struct {
	Status     enum.InvoiceStatus `json:"status"`
	Count      int64              `json:"count"`
	Total      float64            `json:"total"`
	AmountPaid float64            `json:"amount_paid"`
	Balance    float64            `json:"balance"`
}

// InvoiceRepository persists invoices together with their line items.
// Reads return (nil, nil) when the invoice does not exist. Writes that carry
// a version return ErrVersionConflict when the stored version has moved on.
type InvoiceRepository interface {
	// Create allocates the next number for the owner and stores the invoice
	// in one transaction.
	Create(ctx context.Context, invoice *entity.Invoice, assign NumberAssigner) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Invoice, error)
	List(ctx context.Context, userID uuid.UUID, filter InvoiceFilter, params *pagination.PaginationParams) ([]entity.Invoice, int64, error)
	// Update rewrites the invoice and replaces its items, guarded by invoice.Version.
	// On success invoice.Version holds the new version.
	Update(ctx context.Context, invoice *entity.Invoice) error
	// UpdatePaymentState writes amount paid, balance and status only, guarded
	// by invoice.Version. On success invoice.Version holds the new version.
	UpdatePaymentState(ctx context.Context, invoice *entity.Invoice) error
	// UpdateStatus writes only the status, guarded by expectedVersion, and
	// returns the new version.
	UpdateStatus(ctx context.Context, id uuid.UUID, status enum.InvoiceStatus, expectedVersion int64) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Summarize(ctx context.Context, userID uuid.UUID) ([]StatusSummary, error)
	// ListOverdueCandidates returns pending or partially paid invoices with a
	// positive balance and a due date strictly before asOf, across all owners.
	ListOverdueCandidates(ctx context.Context, asOf entity.Date, limit int) ([]entity.Invoice, error)
}

// ClientRepository persists clients
type ClientRepository interface {
	Create(ctx context.Context, client *entity.Client) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Client, error)
	Update(ctx context.Context, client *entity.Client) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, userID uuid.UUID, params *pagination.PaginationParams, search string) ([]entity.Client, int64, error)
}
