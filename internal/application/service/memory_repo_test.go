package service

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/sangkips/invoicely-api/internal/domain/entity"
	"github.com/sangkips/invoicely-api/internal/domain/enum"
	"github.com/sangkips/invoicely-api/internal/domain/repository"
	"github.com/sangkips/invoicely-api/pkg/pagination"
)

type memoryInvoiceRepo struct {
	mu        sync.Mutex
	invoices  map[uuid.UUID]entity.Invoice
	sequences map[uuid.UUID]int64
	failWith  error
}

func newMemoryInvoiceRepo() *memoryInvoiceRepo {
	return &memoryInvoiceRepo{
		invoices:  make(map[uuid.UUID]entity.Invoice),
		sequences: make(map[uuid.UUID]int64),
	}
}

func (r *memoryInvoiceRepo) Create(ctx context.Context, invoice *entity.Invoice, assign repository.NumberAssigner) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return r.failWith
	}
	r.sequences[invoice.UserID]++
	invoice.ID = uuid.New()
	invoice.InvoiceNumber = assign(r.sequences[invoice.UserID])
	invoice.Version = 1
	for i := range invoice.Items {
		if invoice.Items[i].ID == uuid.Nil {
			invoice.Items[i].ID = uuid.New()
		}
		invoice.Items[i].InvoiceID = invoice.ID
	}
	r.invoices[invoice.ID] = invoice.Clone()
	return nil
}

func (r *memoryInvoiceRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return nil, r.failWith
	}
	inv, ok := r.invoices[id]
	if !ok {
		return nil, nil
	}
	out := inv.Clone()
	return &out, nil
}

func (r *memoryInvoiceRepo) List(ctx context.Context, userID uuid.UUID, filter repository.InvoiceFilter, params *pagination.PaginationParams) ([]entity.Invoice, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.Invoice
	for _, inv := range r.invoices {
		if inv.UserID != userID {
			continue
		}
		if filter.Status != "" && inv.Status != filter.Status {
			continue
		}
		if filter.ClientName != "" && !strings.Contains(strings.ToLower(inv.ClientName), strings.ToLower(filter.ClientName)) {
			continue
		}
		if !filter.IssuedFrom.IsZero() && inv.IssueDate.Before(filter.IssuedFrom) {
			continue
		}
		if !filter.IssuedTo.IsZero() && !inv.IssueDate.Before(filter.IssuedTo) {
			continue
		}
		out = append(out, inv.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].InvoiceNumber < out[j].InvoiceNumber })
	return out, int64(len(out)), nil
}

func (r *memoryInvoiceRepo) write(invoice *entity.Invoice, apply func(stored *entity.Invoice)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return r.failWith
	}
	stored, ok := r.invoices[invoice.ID]
	if !ok || stored.Version != invoice.Version {
		return repository.ErrVersionConflict
	}
	apply(&stored)
	stored.Version++
	r.invoices[invoice.ID] = stored
	invoice.Version = stored.Version
	return nil
}

func (r *memoryInvoiceRepo) Update(ctx context.Context, invoice *entity.Invoice) error {
	return r.write(invoice, func(stored *entity.Invoice) {
		for i := range invoice.Items {
			if invoice.Items[i].ID == uuid.Nil {
				invoice.Items[i].ID = uuid.New()
			}
		}
		*stored = invoice.Clone()
		stored.Version = invoice.Version
	})
}

func (r *memoryInvoiceRepo) UpdatePaymentState(ctx context.Context, invoice *entity.Invoice) error {
	return r.write(invoice, func(stored *entity.Invoice) {
		stored.AmountPaid = invoice.AmountPaid
		stored.Balance = invoice.Balance
		stored.Status = invoice.Status
	})
}

func (r *memoryInvoiceRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status enum.InvoiceStatus, expectedVersion int64) (int64, error) {
	probe := &entity.Invoice{ID: id, Version: expectedVersion}
	err := r.write(probe, func(stored *entity.Invoice) { stored.Status = status })
	return probe.Version, err
}

func (r *memoryInvoiceRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.invoices, id)
	return nil
}

func (r *memoryInvoiceRepo) Summarize(ctx context.Context, userID uuid.UUID) ([]repository.StatusSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	byStatus := map[enum.InvoiceStatus]*repository.StatusSummary{}
	for _, inv := range r.invoices {
		if inv.UserID != userID {
			continue
		}
		row, ok := byStatus[inv.Status]
		if !ok {
			row = &repository.StatusSummary{Status: inv.Status}
			byStatus[inv.Status] = row
		}
		row.Count++
		row.Total += inv.Total
		row.AmountPaid += inv.AmountPaid
		row.Balance += inv.Balance
	}
	out := make([]repository.StatusSummary, 0, len(byStatus))
	for _, row := range byStatus {
		out = append(out, *row)
	}
	return out, nil
}

func (r *memoryInvoiceRepo) ListOverdueCandidates(ctx context.Context, asOf entity.Date, limit int) ([]entity.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.Invoice
	for _, inv := range r.invoices {
		if (inv.Status == enum.InvoiceStatusPending || inv.Status == enum.InvoiceStatusPartiallyPaid) &&
			inv.Balance > 0 && inv.DueDate.Before(asOf) {
			out = append(out, inv.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].DueDate.Equal(out[j].DueDate.Time) {
			return out[i].DueDate.Before(out[j].DueDate)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// bump simulates a write by another request.
func (r *memoryInvoiceRepo) bump(id uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv := r.invoices[id]
	inv.Version++
	r.invoices[id] = inv
}

type memoryClientRepo struct {
	clients map[uuid.UUID]entity.Client
}

func newMemoryClientRepo() *memoryClientRepo {
	return &memoryClientRepo{clients: make(map[uuid.UUID]entity.Client)}
}

func (r *memoryClientRepo) Create(ctx context.Context, client *entity.Client) error {
	if client.ID == uuid.Nil {
		client.ID = uuid.New()
	}
	r.clients[client.ID] = *client
	return nil
}

func (r *memoryClientRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.Client, error) {
	c, ok := r.clients[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (r *memoryClientRepo) Update(ctx context.Context, client *entity.Client) error {
	r.clients[client.ID] = *client
	return nil
}

func (r *memoryClientRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(r.clients, id)
	return nil
}

func (r *memoryClientRepo) List(ctx context.Context, userID uuid.UUID, params *pagination.PaginationParams, search string) ([]entity.Client, int64, error) {
	var out []entity.Client
	for _, c := range r.clients {
		if c.UserID == userID && strings.Contains(strings.ToLower(c.Name), strings.ToLower(search)) {
			out = append(out, c)
		}
	}
	return out, int64(len(out)), nil
}

type memorySettingsRepo struct {
	settings map[uuid.UUID]entity.BusinessSettings
}

func newMemorySettingsRepo() *memorySettingsRepo {
	return &memorySettingsRepo{settings: make(map[uuid.UUID]entity.BusinessSettings)}
}

func (r *memorySettingsRepo) GetByUserID(ctx context.Context, userID uuid.UUID) (*entity.BusinessSettings, error) {
	s, ok := r.settings[userID]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (r *memorySettingsRepo) Create(ctx context.Context, settings *entity.BusinessSettings) error {
	if settings.ID == uuid.Nil {
		settings.ID = uuid.New()
	}
	r.settings[settings.UserID] = *settings
	return nil
}

func (r *memorySettingsRepo) Update(ctx context.Context, settings *entity.BusinessSettings) error {
	r.settings[settings.UserID] = *settings
	return nil
}
