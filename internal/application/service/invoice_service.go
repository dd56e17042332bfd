package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/invoicely-api/internal/domain/entity"
	"github.com/sangkips/invoicely-api/internal/domain/enum"
	"github.com/sangkips/invoicely-api/internal/domain/ledger"
	"github.com/sangkips/invoicely-api/internal/domain/repository"
	"github.com/sangkips/invoicely-api/pkg/apperror"
	"github.com/sangkips/invoicely-api/pkg/metrics"
	"github.com/sangkips/invoicely-api/pkg/pagination"
	"github.com/sangkips/invoicely-api/pkg/validation"
)

const conflictMessage = "Invoice was changed by another request; reload it and try again"

// DefaultSweepBatchSize is how many overdue candidates a sweep loads per query
const DefaultSweepBatchSize = 200

// InvoiceService orchestrates invoice creation, edits, status changes and payments
type InvoiceService struct {
	invoiceRepo  repository.InvoiceRepository
	clientRepo   repository.ClientRepository
	settingsRepo repository.SettingsRepository
	metrics      *metrics.Recorder
	now          func() time.Time

	sweepBatchSize int
}

// NewInvoiceService creates a new invoice service. recorder may be nil.
func NewInvoiceService(
	invoiceRepo repository.InvoiceRepository,
	clientRepo repository.ClientRepository,
	settingsRepo repository.SettingsRepository,
	recorder *metrics.Recorder,
) *InvoiceService {
	return &InvoiceService{
		invoiceRepo:  invoiceRepo,
		clientRepo:   clientRepo,
		settingsRepo: settingsRepo,
		metrics:      recorder,
		now:          time.Now,

		sweepBatchSize: DefaultSweepBatchSize,
	}
}

// LineItemInput is one row of an invoice draft. Amount is never accepted.
type LineItemInput struct {
	ID          *uuid.UUID `json:"id"`
	Description string     `json:"description" validate:"required"`
	Quantity    float64    `json:"quantity" validate:"gte=0"`
	Rate        float64    `json:"rate" validate:"gte=0"`
}

// InvoiceDraft holds the user-editable fields of an invoice
type InvoiceDraft struct {
	ClientID      *uuid.UUID         `json:"client_id"`
	ClientName    string             `json:"client_name" validate:"required"`
	ClientEmail   string             `json:"client_email" validate:"required,email"`
	ClientAddress string             `json:"client_address" validate:"required"`
	IssueDate     entity.Date        `json:"issue_date"`
	DueDate       entity.Date        `json:"due_date"`
	Items         []LineItemInput    `json:"items" validate:"min=1,dive"`
	Tax           float64            `json:"tax"`
	Notes         *string            `json:"notes"`
	Status        enum.InvoiceStatus `json:"status"`
}

// CreateInvoiceInput represents the input for creating an invoice
type CreateInvoiceInput struct {
	UserID uuid.UUID `json:"-"`
	InvoiceDraft
}

// UpdateInvoiceInput represents the input for editing an invoice.
// Version, when set, must match the stored version.
type UpdateInvoiceInput struct {
	UserID  uuid.UUID `json:"-"`
	ID      uuid.UUID `json:"-"`
	Version *int64    `json:"version"`
	InvoiceDraft
}

// CreateInvoice validates the draft, numbers it and stores it with
// amount_paid 0 and balance equal to the total
func (s *InvoiceService) CreateInvoice(ctx context.Context, input *CreateInvoiceInput) (*entity.Invoice, error) {
	if err := validateDraft(&input.InvoiceDraft); err != nil {
		return nil, err
	}

	settings, err := s.settingsRepo.GetByUserID(ctx, input.UserID)
	if err != nil {
		return nil, apperror.NewPersistenceError(err)
	}

	status := input.Status
	if status == "" {
		status = enum.InvoiceStatusPending
	}

	invoice := &entity.Invoice{
		UserID:    input.UserID,
		IssueDate: input.IssueDate,
		DueDate:   input.DueDate,
		Tax:       input.Tax,
		Notes:     input.Notes,
		Status:    status,
		Items:     buildItems(input.Items, nil),
	}
	if err := s.applyClientSnapshot(ctx, invoice, &input.InvoiceDraft); err != nil {
		return nil, err
	}
	applyDefaults(invoice, settings)

	ledger.Recalculate(invoice)
	if err := ledger.CheckStatusChange(*invoice, invoice.Status); err != nil {
		return nil, err
	}
	if err := checkDates(invoice); err != nil {
		return nil, err
	}

	prefix := settings.NumberPrefix()
	assign := func(seq int64) string { return ledger.FormatInvoiceNumber(prefix, seq) }
	if err := s.invoiceRepo.Create(ctx, invoice, assign); err != nil {
		return nil, apperror.NewPersistenceError(err)
	}

	s.metrics.InvoiceCreated()
	return invoice, nil
}

// UpdateInvoice rewrites an invoice from a draft. Totals are recomputed and the
// balance is taken against the amount already paid; id, number and amount paid
// never change. The status is never derived from the new figures.
func (s *InvoiceService) UpdateInvoice(ctx context.Context, input *UpdateInvoiceInput) (*entity.Invoice, error) {
	if err := validateDraft(&input.InvoiceDraft); err != nil {
		return nil, err
	}

	existing, err := s.loadOwned(ctx, input.UserID, input.ID)
	if err != nil {
		return nil, err
	}
	if input.Version != nil && *input.Version != existing.Version {
		return nil, apperror.NewConflictError(conflictMessage)
	}

	invoice := existing.Clone()
	invoice.IssueDate = input.IssueDate
	invoice.DueDate = input.DueDate
	invoice.Tax = input.Tax
	invoice.Notes = input.Notes
	invoice.Items = buildItems(input.Items, existing.Items)
	if err := s.applyClientSnapshot(ctx, &invoice, &input.InvoiceDraft); err != nil {
		return nil, err
	}
	if invoice.DueDate.IsZero() {
		invoice.DueDate = existing.DueDate
	}

	ledger.Recalculate(&invoice)
	// an edit keeps the stored status unless the draft asks for a different one
	if input.Status != "" && input.Status != existing.Status {
		if err := ledger.CheckStatusChange(invoice, input.Status); err != nil {
			return nil, err
		}
		invoice.Status = input.Status
	}
	if err := checkDates(&invoice); err != nil {
		return nil, err
	}

	if err := s.invoiceRepo.Update(ctx, &invoice); err != nil {
		return nil, s.writeError(err)
	}
	return &invoice, nil
}

// UpdateInvoiceStatus changes the status by hand. partially_paid is only
// accepted when the payment figures agree with it; amounts are untouched.
func (s *InvoiceService) UpdateInvoiceStatus(ctx context.Context, userID, id uuid.UUID, status enum.InvoiceStatus) (*entity.Invoice, error) {
	invoice, err := s.loadOwned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := ledger.CheckStatusChange(*invoice, status); err != nil {
		return nil, err
	}
	return s.writeStatus(ctx, invoice, status)
}

// ForceInvoiceStatus sets any valid status regardless of the payment figures.
// The result may disagree with amount_paid and balance.
func (s *InvoiceService) ForceInvoiceStatus(ctx context.Context, userID, id uuid.UUID, status enum.InvoiceStatus) (*entity.Invoice, error) {
	if !status.Valid() {
		return nil, apperror.NewFieldValidationError("status", fmt.Sprintf("unknown status %q", status))
	}
	invoice, err := s.loadOwned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	return s.writeStatus(ctx, invoice, status)
}

func (s *InvoiceService) writeStatus(ctx context.Context, invoice *entity.Invoice, status enum.InvoiceStatus) (*entity.Invoice, error) {
	if invoice.Status == status {
		return invoice, nil
	}
	version, err := s.invoiceRepo.UpdateStatus(ctx, invoice.ID, status, invoice.Version)
	if err != nil {
		return nil, s.writeError(err)
	}
	invoice.Status = status
	invoice.Version = version
	return invoice, nil
}

// DeleteInvoice removes an invoice and its items. Clients are not touched.
func (s *InvoiceService) DeleteInvoice(ctx context.Context, userID, id uuid.UUID) error {
	if _, err := s.loadOwned(ctx, userID, id); err != nil {
		return err
	}
	if err := s.invoiceRepo.Delete(ctx, id); err != nil {
		return apperror.NewPersistenceError(err)
	}
	return nil
}

// AddPaymentInput represents a payment against an invoice
type AddPaymentInput struct {
	UserID    uuid.UUID
	InvoiceID uuid.UUID
	Amount    float64
}

// AddPayment applies a payment and persists the new amount paid, balance and
// status. A concurrent write to the same invoice fails with a conflict and
// nothing is applied.
func (s *InvoiceService) AddPayment(ctx context.Context, input *AddPaymentInput) (*entity.Invoice, error) {
	invoice, err := s.loadOwned(ctx, input.UserID, input.InvoiceID)
	if err != nil {
		return nil, err
	}

	updated, err := ledger.ApplyPayment(*invoice, input.Amount)
	if err != nil {
		s.metrics.PaymentRejected(string(apperror.KindInvalidPaymentAmount))
		return nil, err
	}

	if err := s.invoiceRepo.UpdatePaymentState(ctx, &updated); err != nil {
		err = s.writeError(err)
		if apperror.IsKind(err, apperror.KindConflict) {
			s.metrics.PaymentRejected(string(apperror.KindConflict))
		}
		return nil, err
	}

	s.metrics.PaymentApplied(input.Amount)
	return &updated, nil
}

// GetInvoice retrieves an invoice owned by userID
func (s *InvoiceService) GetInvoice(ctx context.Context, userID, id uuid.UUID) (*entity.Invoice, error) {
	return s.loadOwned(ctx, userID, id)
}

// Issue-date ranges accepted by ListInvoices
const (
	RangeAll         = "all"
	RangeThisMonth   = "this_month"
	RangeLastMonth   = "last_month"
	RangeLast3Months = "last_3_months"
)

// ListInvoicesInput represents the input for listing invoices
type ListInvoicesInput struct {
	UserID     uuid.UUID
	Pagination *pagination.PaginationParams
	Status     enum.InvoiceStatus
	ClientName string
	DateRange  string
}

// ListInvoices lists the owner's invoices, newest first
func (s *InvoiceService) ListInvoices(ctx context.Context, input *ListInvoicesInput) (*pagination.PaginatedResult[entity.Invoice], error) {
	if input.Status != "" && !input.Status.Valid() {
		return nil, apperror.NewFieldValidationError("status", fmt.Sprintf("unknown status %q", input.Status))
	}
	from, to, err := DateRangeBounds(input.DateRange, s.now())
	if err != nil {
		return nil, err
	}
	if input.Pagination == nil {
		input.Pagination = pagination.DefaultPagination()
	}

	filter := repository.InvoiceFilter{
		Status:     input.Status,
		ClientName: input.ClientName,
		IssuedFrom: from,
		IssuedTo:   to,
	}
	invoices, total, err := s.invoiceRepo.List(ctx, input.UserID, filter, input.Pagination)
	if err != nil {
		return nil, apperror.NewPersistenceError(err)
	}

	pag := pagination.NewPagination(input.Pagination.Page, input.Pagination.PerPage, total)
	return pagination.NewPaginatedResult(invoices, pag), nil
}

// DateRangeBounds turns a named range into [from, to) issue-date bounds
// relative to now. Zero bounds mean unbounded.
func DateRangeBounds(name string, now time.Time) (from, to entity.Date, err error) {
	today := entity.NewDate(now)
	firstOfMonth := entity.NewDate(time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC))

	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", RangeAll:
		return entity.Date{}, entity.Date{}, nil
	case RangeThisMonth:
		return firstOfMonth, entity.Date{Time: firstOfMonth.AddDate(0, 1, 0)}, nil
	case RangeLastMonth:
		return entity.Date{Time: firstOfMonth.AddDate(0, -1, 0)}, firstOfMonth, nil
	case RangeLast3Months:
		return entity.Date{Time: today.AddDate(0, -3, 0)}, entity.Date{}, nil
	default:
		return entity.Date{}, entity.Date{}, apperror.NewFieldValidationError("date_range",
			"must be one of [all this_month last_month last_3_months]")
	}
}

// SweepResult reports what an overdue sweep did
type SweepResult struct {
	Checked int `json:"checked"`
	Marked  int `json:"marked"`
	Skipped int `json:"skipped"`
}

// SweepOverdue marks pending and partially paid invoices whose due date is
// before asOf as overdue, sweepBatchSize rows at a time. Invoices changed
// concurrently are skipped and will be picked up by the next sweep.
func (s *InvoiceService) SweepOverdue(ctx context.Context, asOf entity.Date) (*SweepResult, error) {
	result := &SweepResult{}
	seen := make(map[uuid.UUID]bool)

	for {
		batch, err := s.invoiceRepo.ListOverdueCandidates(ctx, asOf, s.sweepBatchSize)
		if err != nil {
			return result, apperror.NewPersistenceError(err)
		}

		fresh := 0
		for _, invoice := range batch {
			if err := ctx.Err(); err != nil {
				return result, err
			}
			if seen[invoice.ID] {
				continue
			}
			seen[invoice.ID] = true
			fresh++
			result.Checked++
			if !ledger.IsOverdue(invoice, asOf) {
				continue
			}
			_, err := s.invoiceRepo.UpdateStatus(ctx, invoice.ID, enum.InvoiceStatusOverdue, invoice.Version)
			if errors.Is(err, repository.ErrVersionConflict) {
				result.Skipped++
				continue
			}
			if err != nil {
				return result, apperror.NewPersistenceError(err)
			}
			result.Marked++
		}

		// marked rows leave the candidate set, so a short or stale batch is the last
		if fresh == 0 || len(batch) < s.sweepBatchSize {
			break
		}
	}

	s.metrics.OverdueMarked(result.Marked)
	return result, nil
}

func (s *InvoiceService) loadOwned(ctx context.Context, userID, id uuid.UUID) (*entity.Invoice, error) {
	invoice, err := s.invoiceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.NewPersistenceError(err)
	}
	if invoice == nil || invoice.UserID != userID {
		return nil, apperror.NewNotFoundError("Invoice")
	}
	return invoice, nil
}

func (s *InvoiceService) writeError(err error) error {
	if errors.Is(err, repository.ErrVersionConflict) {
		return apperror.NewConflictError(conflictMessage)
	}
	return apperror.NewPersistenceError(err)
}

// applyClientSnapshot copies the client fields from the draft. A referenced
// client must belong to the invoice owner.
func (s *InvoiceService) applyClientSnapshot(ctx context.Context, invoice *entity.Invoice, draft *InvoiceDraft) error {
	invoice.ClientName = strings.TrimSpace(draft.ClientName)
	invoice.ClientEmail = strings.TrimSpace(draft.ClientEmail)
	invoice.ClientAddress = strings.TrimSpace(draft.ClientAddress)
	invoice.ClientID = nil

	if draft.ClientID == nil {
		return nil
	}
	client, err := s.clientRepo.GetByID(ctx, *draft.ClientID)
	if err != nil {
		return apperror.NewPersistenceError(err)
	}
	if client == nil || client.UserID != invoice.UserID {
		return apperror.NewNotFoundError("Client")
	}
	clientID := client.ID
	invoice.ClientID = &clientID
	return nil
}

// buildItems turns inputs into line items. An input id is kept only when it
// names an item already on the invoice; anything else gets a fresh id.
func buildItems(inputs []LineItemInput, existing []entity.LineItem) []entity.LineItem {
	known := make(map[uuid.UUID]bool, len(existing))
	for _, item := range existing {
		known[item.ID] = true
	}

	items := make([]entity.LineItem, 0, len(inputs))
	for _, in := range inputs {
		item := entity.LineItem{
			Description: strings.TrimSpace(in.Description),
			Quantity:    in.Quantity,
			Rate:        in.Rate,
		}
		if in.ID != nil && known[*in.ID] {
			item.ID = *in.ID
			delete(known, *in.ID)
		}
		items = append(items, item)
	}
	return items
}

func applyDefaults(invoice *entity.Invoice, settings *entity.BusinessSettings) {
	terms := entity.DefaultPaymentTerms
	notes := entity.DefaultInvoiceNotes
	if settings != nil {
		terms = settings.PaymentTerms
		notes = settings.DefaultNotes
	}
	if invoice.DueDate.IsZero() {
		invoice.DueDate = invoice.IssueDate.AddDays(terms)
	}
	if invoice.Notes == nil && notes != "" {
		invoice.Notes = &notes
	}
}

func validateDraft(draft *InvoiceDraft) error {
	if err := validation.Struct(draft); err != nil {
		return err
	}
	if draft.IssueDate.IsZero() {
		return apperror.NewFieldValidationError("issue_date", "is required")
	}
	if draft.Status != "" && !draft.Status.Valid() {
		return apperror.NewFieldValidationError("status", fmt.Sprintf("unknown status %q", draft.Status))
	}
	return nil
}

func checkDates(invoice *entity.Invoice) error {
	if invoice.DueDate.Before(invoice.IssueDate) {
		return apperror.NewFieldValidationError("due_date", "must not be before issue_date")
	}
	return nil
}
