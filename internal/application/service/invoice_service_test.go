package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sangkips/invoicely-api/internal/domain/entity"
	"github.com/sangkips/invoicely-api/internal/domain/enum"
	"github.com/sangkips/invoicely-api/internal/domain/repository"
	"github.com/sangkips/invoicely-api/pkg/apperror"
	"github.com/sangkips/invoicely-api/pkg/metrics"
	"github.com/sangkips/invoicely-api/pkg/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type invoiceFixture struct {
	svc      *InvoiceService
	invoices *memoryInvoiceRepo
	clients  *memoryClientRepo
	settings *memorySettingsRepo
	registry *prometheus.Registry
	owner    uuid.UUID
}

func newInvoiceFixture(t *testing.T) *invoiceFixture {
	t.Helper()
	reg := prometheus.NewRegistry()
	f := &invoiceFixture{
		invoices: newMemoryInvoiceRepo(),
		clients:  newMemoryClientRepo(),
		settings: newMemorySettingsRepo(),
		registry: reg,
		owner:    uuid.New(),
	}
	f.svc = NewInvoiceService(f.invoices, f.clients, f.settings, metrics.New(reg))
	f.svc.now = func() time.Time { return time.Date(2024, 5, 20, 10, 0, 0, 0, time.UTC) }
	return f
}

func scenarioDraft() InvoiceDraft {
	return InvoiceDraft{
		ClientName:    "Acme",
		ClientEmail:   "ap@acme.test",
		ClientAddress: "1 Market St",
		IssueDate:     entity.MustParseDate("2024-01-15"),
		DueDate:       entity.MustParseDate("2024-02-14"),
		Items: []LineItemInput{
			{Description: "Design", Quantity: 2, Rate: 50},
			{Description: "Review", Quantity: 1, Rate: 30},
		},
		Tax: 8,
	}
}

func (f *invoiceFixture) create(t *testing.T) *entity.Invoice {
	t.Helper()
	inv, err := f.svc.CreateInvoice(context.Background(), &CreateInvoiceInput{UserID: f.owner, InvoiceDraft: scenarioDraft()})
	require.NoError(t, err)
	return inv
}

func (f *invoiceFixture) pay(t *testing.T, id uuid.UUID, amount float64) (*entity.Invoice, error) {
	t.Helper()
	return f.svc.AddPayment(context.Background(), &AddPaymentInput{UserID: f.owner, InvoiceID: id, Amount: amount})
}

func TestCreateInvoice_ComputesTotalsAndNumbers(t *testing.T) {
	f := newInvoiceFixture(t)

	inv := f.create(t)

	assert.Equal(t, 130.0, inv.Subtotal)
	assert.Equal(t, 138.0, inv.Total)
	assert.Equal(t, 0.0, inv.AmountPaid)
	assert.Equal(t, 138.0, inv.Balance)
	assert.Equal(t, enum.InvoiceStatusPending, inv.Status)
	assert.Equal(t, "INV-0001", inv.InvoiceNumber)
	assert.Equal(t, 100.0, inv.Items[0].Amount)
	assert.NotEqual(t, uuid.Nil, inv.ID)

	for i := 2; i <= 11; i++ {
		inv = f.create(t)
	}
	assert.Equal(t, "INV-0011", inv.InvoiceNumber)
	assert.Equal(t, 11.0, counterValue(t, f.registry, "invoicely_invoices_created_total"))
}

func counterValue(t *testing.T, reg *prometheus.Registry, name string, labels ...string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			matched := true
			for i := 0; i+1 < len(labels); i += 2 {
				found := false
				for _, lp := range m.GetLabel() {
					if lp.GetName() == labels[i] && lp.GetValue() == labels[i+1] {
						found = true
					}
				}
				matched = matched && found
			}
			if matched {
				return m.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func TestCreateInvoice_UsesSettings(t *testing.T) {
	f := newInvoiceFixture(t)
	settings := entity.DefaultBusinessSettings(f.owner)
	settings.InvoicePrefix = "ACME"
	settings.PaymentTerms = 14
	settings.DefaultNotes = "Pay by M-Pesa"
	require.NoError(t, f.settings.Create(context.Background(), settings))

	draft := scenarioDraft()
	draft.DueDate = entity.Date{}
	inv, err := f.svc.CreateInvoice(context.Background(), &CreateInvoiceInput{UserID: f.owner, InvoiceDraft: draft})
	require.NoError(t, err)

	assert.Equal(t, "ACME-0001", inv.InvoiceNumber)
	assert.Equal(t, "2024-01-29", inv.DueDate.String())
	require.NotNil(t, inv.Notes)
	assert.Equal(t, "Pay by M-Pesa", *inv.Notes)
}

func TestCreateInvoice_Validation(t *testing.T) {
	f := newInvoiceFixture(t)

	cases := map[string]func(d *InvoiceDraft){
		"missing client name": func(d *InvoiceDraft) { d.ClientName = "" },
		"bad email":           func(d *InvoiceDraft) { d.ClientEmail = "nope" },
		"missing address":     func(d *InvoiceDraft) { d.ClientAddress = "" },
		"no items":            func(d *InvoiceDraft) { d.Items = nil },
		"blank description":   func(d *InvoiceDraft) { d.Items[1].Description = "" },
		"negative quantity":   func(d *InvoiceDraft) { d.Items[0].Quantity = -1 },
		"missing issue date":  func(d *InvoiceDraft) { d.IssueDate = entity.Date{} },
		"due before issue":    func(d *InvoiceDraft) { d.DueDate = entity.MustParseDate("2024-01-01") },
		"unknown status":      func(d *InvoiceDraft) { d.Status = "void" },
		"partially paid":      func(d *InvoiceDraft) { d.Status = enum.InvoiceStatusPartiallyPaid },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			draft := scenarioDraft()
			mutate(&draft)
			_, err := f.svc.CreateInvoice(context.Background(), &CreateInvoiceInput{UserID: f.owner, InvoiceDraft: draft})
			require.Error(t, err)
			assert.True(t, apperror.IsKind(err, apperror.KindValidation), "got %v", err)
		})
	}
	assert.Empty(t, f.invoices.invoices)
}

func TestCreateInvoice_ValidationFieldPath(t *testing.T) {
	f := newInvoiceFixture(t)
	draft := scenarioDraft()
	draft.Items[1].Description = ""

	_, err := f.svc.CreateInvoice(context.Background(), &CreateInvoiceInput{UserID: f.owner, InvoiceDraft: draft})

	appErr := apperror.GetAppError(err)
	require.Len(t, appErr.Errors, 1)
	assert.Equal(t, "items[1].description", appErr.Errors[0].Field)
}

func TestCreateInvoice_SnapshotsOwnedClient(t *testing.T) {
	f := newInvoiceFixture(t)
	ctx := context.Background()
	client := &entity.Client{UserID: f.owner, Name: "Acme", Email: "ap@acme.test", Address: "1 Market St"}
	require.NoError(t, f.clients.Create(ctx, client))

	draft := scenarioDraft()
	draft.ClientID = &client.ID
	inv, err := f.svc.CreateInvoice(ctx, &CreateInvoiceInput{UserID: f.owner, InvoiceDraft: draft})
	require.NoError(t, err)
	require.NotNil(t, inv.ClientID)
	assert.Equal(t, client.ID, *inv.ClientID)

	// editing the client leaves the invoice snapshot alone
	client.Name = "Acme Renamed"
	require.NoError(t, f.clients.Update(ctx, client))
	got, err := f.svc.GetInvoice(ctx, f.owner, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme", got.ClientName)

	stranger := &entity.Client{UserID: uuid.New(), Name: "Other", Email: "o@o.test", Address: "x"}
	require.NoError(t, f.clients.Create(ctx, stranger))
	draft.ClientID = &stranger.ID
	_, err = f.svc.CreateInvoice(ctx, &CreateInvoiceInput{UserID: f.owner, InvoiceDraft: draft})
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
}

func TestAddPayment_Scenarios(t *testing.T) {
	t.Run("full payment settles the invoice", func(t *testing.T) {
		f := newInvoiceFixture(t)
		inv := f.create(t)

		paid, err := f.pay(t, inv.ID, 138)
		require.NoError(t, err)
		assert.Equal(t, 138.0, paid.AmountPaid)
		assert.Equal(t, 0.0, paid.Balance)
		assert.Equal(t, enum.InvoiceStatusPaid, paid.Status)
	})

	t.Run("partial then over balance", func(t *testing.T) {
		f := newInvoiceFixture(t)
		inv := f.create(t)

		partial, err := f.pay(t, inv.ID, 50)
		require.NoError(t, err)
		assert.Equal(t, 50.0, partial.AmountPaid)
		assert.Equal(t, 88.0, partial.Balance)
		assert.Equal(t, enum.InvoiceStatusPartiallyPaid, partial.Status)

		_, err = f.pay(t, inv.ID, 200)
		assert.True(t, apperror.IsKind(err, apperror.KindInvalidPaymentAmount))

		stored, err := f.svc.GetInvoice(context.Background(), f.owner, inv.ID)
		require.NoError(t, err)
		assert.Equal(t, 50.0, stored.AmountPaid)
		assert.Equal(t, 88.0, stored.Balance)
	})
}

func TestAddPayment_Rejections(t *testing.T) {
	f := newInvoiceFixture(t)
	inv := f.create(t)

	for _, amount := range []float64{0, -5, 138.01} {
		_, err := f.pay(t, inv.ID, amount)
		assert.True(t, apperror.IsKind(err, apperror.KindInvalidPaymentAmount), "amount %v", amount)
	}

	stored, err := f.svc.GetInvoice(context.Background(), f.owner, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, 0.0, stored.AmountPaid)
	assert.Equal(t, int64(1), stored.Version)

	_, err = f.pay(t, uuid.New(), 10)
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))

	// another owner's invoice is invisible
	_, err = f.svc.AddPayment(context.Background(), &AddPaymentInput{UserID: uuid.New(), InvoiceID: inv.ID, Amount: 10})
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
}

func TestAddPayment_AmountPaidIsMonotonic(t *testing.T) {
	f := newInvoiceFixture(t)
	inv := f.create(t)

	last := 0.0
	for _, amount := range []float64{10, 0, 20.5, -3, 100, 7.5} {
		updated, err := f.pay(t, inv.ID, amount)
		if err == nil {
			last = updated.AmountPaid
		}
		stored, getErr := f.svc.GetInvoice(context.Background(), f.owner, inv.ID)
		require.NoError(t, getErr)
		assert.GreaterOrEqual(t, stored.AmountPaid, last)
		assert.Equal(t, stored.Total-stored.AmountPaid, stored.Balance)
	}
	assert.Equal(t, 138.0, last)
}

// racingInvoiceRepo lets another writer commit between every read and the
// write that follows it.
type racingInvoiceRepo struct {
	*memoryInvoiceRepo
}

func (r racingInvoiceRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.Invoice, error) {
	inv, err := r.memoryInvoiceRepo.GetByID(ctx, id)
	if inv != nil {
		r.bump(id)
	}
	return inv, err
}

func TestAddPayment_ConflictingWriteIsRejected(t *testing.T) {
	f := newInvoiceFixture(t)
	inv := f.create(t)
	f.svc.invoiceRepo = racingInvoiceRepo{f.invoices}

	_, err := f.pay(t, inv.ID, 50)

	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindConflict))
	assert.Equal(t, 1.0, counterValue(t, f.registry, "invoicely_payments_rejected_total", "reason", "conflict"))

	stored := f.invoices.invoices[inv.ID]
	assert.Equal(t, 0.0, stored.AmountPaid)
	assert.Equal(t, 138.0, stored.Balance)
}

func TestAddPayment_PersistenceError(t *testing.T) {
	f := newInvoiceFixture(t)
	inv := f.create(t)
	f.invoices.failWith = errors.New("disk on fire")

	_, err := f.pay(t, inv.ID, 10)

	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindPersistence))
	assert.ErrorContains(t, err, "disk on fire")
}

func TestUpdateInvoice_PreservesAmountPaid(t *testing.T) {
	f := newInvoiceFixture(t)
	ctx := context.Background()
	inv := f.create(t)
	paid, err := f.pay(t, inv.ID, 50)
	require.NoError(t, err)

	draft := scenarioDraft()
	draft.Tax = 20
	draft.Items[0].ID = &inv.Items[0].ID
	bogus := uuid.New()
	draft.Items[1].ID = &bogus

	updated, err := f.svc.UpdateInvoice(ctx, &UpdateInvoiceInput{UserID: f.owner, ID: inv.ID, InvoiceDraft: draft})
	require.NoError(t, err)

	assert.Equal(t, 130.0, updated.Subtotal)
	assert.Equal(t, 150.0, updated.Total)
	assert.Equal(t, 50.0, updated.AmountPaid)
	assert.Equal(t, 100.0, updated.Balance)
	assert.Equal(t, inv.InvoiceNumber, updated.InvoiceNumber)
	assert.Equal(t, inv.ID, updated.ID)
	assert.Equal(t, enum.InvoiceStatusPartiallyPaid, updated.Status)
	assert.Equal(t, paid.Version+1, updated.Version)
	assert.Equal(t, inv.Items[0].ID, updated.Items[0].ID)
	assert.NotEqual(t, bogus, updated.Items[1].ID)
}

func TestUpdateInvoice_KeepsManualPaid(t *testing.T) {
	f := newInvoiceFixture(t)
	ctx := context.Background()
	inv := f.create(t)
	_, err := f.svc.UpdateInvoiceStatus(ctx, f.owner, inv.ID, enum.InvoiceStatusPaid)
	require.NoError(t, err)

	updated, err := f.svc.UpdateInvoice(ctx, &UpdateInvoiceInput{UserID: f.owner, ID: inv.ID, InvoiceDraft: scenarioDraft()})
	require.NoError(t, err)
	assert.Equal(t, enum.InvoiceStatusPaid, updated.Status)
	assert.Equal(t, 0.0, updated.AmountPaid)
	assert.Equal(t, 138.0, updated.Balance)
}

func TestUpdateInvoice_NeverSettlesByEdit(t *testing.T) {
	f := newInvoiceFixture(t)
	inv := f.create(t)
	_, err := f.pay(t, inv.ID, 50)
	require.NoError(t, err)

	draft := scenarioDraft()
	draft.Items = []LineItemInput{{Description: "Design", Quantity: 1, Rate: 13}}
	updated, err := f.svc.UpdateInvoice(context.Background(), &UpdateInvoiceInput{UserID: f.owner, ID: inv.ID, InvoiceDraft: draft})
	require.NoError(t, err)
	assert.Equal(t, 21.0, updated.Total)
	assert.Equal(t, 0.0, updated.Balance)
	assert.Equal(t, 50.0, updated.AmountPaid)
	assert.Equal(t, enum.InvoiceStatusPartiallyPaid, updated.Status)

	// resubmitting the stored status is not a change
	draft.Status = enum.InvoiceStatusPartiallyPaid
	again, err := f.svc.UpdateInvoice(context.Background(), &UpdateInvoiceInput{UserID: f.owner, ID: inv.ID, InvoiceDraft: draft})
	require.NoError(t, err)
	assert.Equal(t, enum.InvoiceStatusPartiallyPaid, again.Status)
}

func TestUpdateInvoice_AppliesDraftStatus(t *testing.T) {
	f := newInvoiceFixture(t)
	ctx := context.Background()
	inv := f.create(t)

	draft := scenarioDraft()
	draft.Status = enum.InvoiceStatusOverdue
	updated, err := f.svc.UpdateInvoice(ctx, &UpdateInvoiceInput{UserID: f.owner, ID: inv.ID, InvoiceDraft: draft})
	require.NoError(t, err)
	assert.Equal(t, enum.InvoiceStatusOverdue, updated.Status)

	stored, err := f.svc.GetInvoice(ctx, f.owner, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, enum.InvoiceStatusOverdue, stored.Status)

	draft.Status = enum.InvoiceStatusPartiallyPaid
	_, err = f.svc.UpdateInvoice(ctx, &UpdateInvoiceInput{UserID: f.owner, ID: inv.ID, InvoiceDraft: draft})
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))
}

func TestUpdateInvoice_KeepsManualStatus(t *testing.T) {
	f := newInvoiceFixture(t)
	inv := f.create(t)
	_, err := f.svc.UpdateInvoiceStatus(context.Background(), f.owner, inv.ID, enum.InvoiceStatusOverdue)
	require.NoError(t, err)

	updated, err := f.svc.UpdateInvoice(context.Background(), &UpdateInvoiceInput{UserID: f.owner, ID: inv.ID, InvoiceDraft: scenarioDraft()})
	require.NoError(t, err)
	assert.Equal(t, enum.InvoiceStatusOverdue, updated.Status)
}

func TestUpdateInvoice_Errors(t *testing.T) {
	f := newInvoiceFixture(t)
	ctx := context.Background()
	inv := f.create(t)

	_, err := f.svc.UpdateInvoice(ctx, &UpdateInvoiceInput{UserID: f.owner, ID: uuid.New(), InvoiceDraft: scenarioDraft()})
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))

	stale := int64(7)
	_, err = f.svc.UpdateInvoice(ctx, &UpdateInvoiceInput{UserID: f.owner, ID: inv.ID, Version: &stale, InvoiceDraft: scenarioDraft()})
	assert.True(t, apperror.IsKind(err, apperror.KindConflict))
}

func TestUpdateInvoiceStatus(t *testing.T) {
	f := newInvoiceFixture(t)
	ctx := context.Background()
	inv := f.create(t)

	overdue, err := f.svc.UpdateInvoiceStatus(ctx, f.owner, inv.ID, enum.InvoiceStatusOverdue)
	require.NoError(t, err)
	assert.Equal(t, enum.InvoiceStatusOverdue, overdue.Status)
	assert.Equal(t, 138.0, overdue.Balance)

	_, err = f.svc.UpdateInvoiceStatus(ctx, f.owner, inv.ID, enum.InvoiceStatusPartiallyPaid)
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))

	_, err = f.svc.UpdateInvoiceStatus(ctx, f.owner, inv.ID, "void")
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))

	_, err = f.pay(t, inv.ID, 10)
	require.NoError(t, err)
	partial, err := f.svc.UpdateInvoiceStatus(ctx, f.owner, inv.ID, enum.InvoiceStatusPartiallyPaid)
	require.NoError(t, err)
	assert.Equal(t, enum.InvoiceStatusPartiallyPaid, partial.Status)
}

func TestForceInvoiceStatus(t *testing.T) {
	f := newInvoiceFixture(t)
	ctx := context.Background()
	inv := f.create(t)

	forced, err := f.svc.ForceInvoiceStatus(ctx, f.owner, inv.ID, enum.InvoiceStatusPartiallyPaid)
	require.NoError(t, err)
	assert.Equal(t, enum.InvoiceStatusPartiallyPaid, forced.Status)
	assert.Equal(t, 0.0, forced.AmountPaid)
	assert.Equal(t, int64(2), forced.Version)

	_, err = f.svc.ForceInvoiceStatus(ctx, f.owner, inv.ID, "void")
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))
}

func TestDeleteInvoice(t *testing.T) {
	f := newInvoiceFixture(t)
	ctx := context.Background()
	inv := f.create(t)

	assert.True(t, apperror.IsKind(f.svc.DeleteInvoice(ctx, uuid.New(), inv.ID), apperror.KindNotFound))
	require.NoError(t, f.svc.DeleteInvoice(ctx, f.owner, inv.ID))

	_, err := f.svc.GetInvoice(ctx, f.owner, inv.ID)
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
}

func TestListInvoices_Filters(t *testing.T) {
	f := newInvoiceFixture(t)
	ctx := context.Background()

	for _, issued := range []string{"2024-05-02", "2024-04-10", "2024-01-05"} {
		draft := scenarioDraft()
		draft.IssueDate = entity.MustParseDate(issued)
		draft.DueDate = entity.Date{}
		_, err := f.svc.CreateInvoice(ctx, &CreateInvoiceInput{UserID: f.owner, InvoiceDraft: draft})
		require.NoError(t, err)
	}

	list := func(rng string) int64 {
		res, err := f.svc.ListInvoices(ctx, &ListInvoicesInput{UserID: f.owner, DateRange: rng, Pagination: pagination.DefaultPagination()})
		require.NoError(t, err)
		return res.Pagination.Total
	}
	assert.Equal(t, int64(3), list(""))
	assert.Equal(t, int64(1), list(RangeThisMonth))
	assert.Equal(t, int64(1), list(RangeLastMonth))
	assert.Equal(t, int64(2), list(RangeLast3Months))

	_, err := f.svc.ListInvoices(ctx, &ListInvoicesInput{UserID: f.owner, DateRange: "forever"})
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))
	_, err = f.svc.ListInvoices(ctx, &ListInvoicesInput{UserID: f.owner, Status: "void"})
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))
}

func TestDateRangeBounds(t *testing.T) {
	now := time.Date(2024, 3, 31, 23, 0, 0, 0, time.UTC)

	from, to, err := DateRangeBounds(RangeThisMonth, now)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-01", from.String())
	assert.Equal(t, "2024-04-01", to.String())

	from, to, err = DateRangeBounds(RangeLastMonth, now)
	require.NoError(t, err)
	assert.Equal(t, "2024-02-01", from.String())
	assert.Equal(t, "2024-03-01", to.String())

	from, to, err = DateRangeBounds(RangeLast3Months, now)
	require.NoError(t, err)
	assert.Equal(t, "2023-12-31", from.String())
	assert.True(t, to.IsZero())

	from, to, err = DateRangeBounds(RangeAll, now)
	require.NoError(t, err)
	assert.True(t, from.IsZero())
	assert.True(t, to.IsZero())
}

func TestSweepOverdue(t *testing.T) {
	f := newInvoiceFixture(t)
	ctx := context.Background()

	late := f.create(t) // due 2024-02-14
	partial := f.create(t)
	_, err := f.pay(t, partial.ID, 40)
	require.NoError(t, err)
	settled := f.create(t)
	_, err = f.pay(t, settled.ID, 138)
	require.NoError(t, err)

	draft := scenarioDraft()
	draft.DueDate = entity.MustParseDate("2024-12-31")
	future, err := f.svc.CreateInvoice(ctx, &CreateInvoiceInput{UserID: f.owner, InvoiceDraft: draft})
	require.NoError(t, err)

	res, err := f.svc.SweepOverdue(ctx, entity.MustParseDate("2024-03-01"))
	require.NoError(t, err)
	assert.Equal(t, 2, res.Marked)
	assert.Equal(t, 0, res.Skipped)

	for id, want := range map[uuid.UUID]enum.InvoiceStatus{
		late.ID:    enum.InvoiceStatusOverdue,
		partial.ID: enum.InvoiceStatusOverdue,
		settled.ID: enum.InvoiceStatusPaid,
		future.ID:  enum.InvoiceStatusPending,
	} {
		got, err := f.svc.GetInvoice(ctx, f.owner, id)
		require.NoError(t, err)
		assert.Equal(t, want, got.Status)
	}

	// a second run has nothing left to do
	res, err = f.svc.SweepOverdue(ctx, entity.MustParseDate("2024-03-01"))
	require.NoError(t, err)
	assert.Zero(t, res.Checked)
}

func TestSweepOverdue_Batches(t *testing.T) {
	f := newInvoiceFixture(t)
	f.svc.sweepBatchSize = 2
	ctx := context.Background()

	ids := make([]uuid.UUID, 0, 5)
	for i := 0; i < 5; i++ {
		ids = append(ids, f.create(t).ID)
	}

	res, err := f.svc.SweepOverdue(ctx, entity.MustParseDate("2024-03-01"))
	require.NoError(t, err)
	assert.Equal(t, 5, res.Checked)
	assert.Equal(t, 5, res.Marked)

	for _, id := range ids {
		got, err := f.svc.GetInvoice(ctx, f.owner, id)
		require.NoError(t, err)
		assert.Equal(t, enum.InvoiceStatusOverdue, got.Status)
	}
}

// staleSweepRepo reports every status write as lost to another request.
type staleSweepRepo struct {
	*memoryInvoiceRepo
}

func (r staleSweepRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status enum.InvoiceStatus, expectedVersion int64) (int64, error) {
	return 0, repository.ErrVersionConflict
}

func TestSweepOverdue_StopsOnConflictedBatch(t *testing.T) {
	f := newInvoiceFixture(t)
	f.create(t)
	f.create(t)
	f.create(t)

	f.svc.invoiceRepo = staleSweepRepo{f.invoices}
	f.svc.sweepBatchSize = 2

	res, err := f.svc.SweepOverdue(context.Background(), entity.MustParseDate("2024-03-01"))
	require.NoError(t, err)
	assert.Equal(t, 2, res.Checked)
	assert.Equal(t, 2, res.Skipped)
	assert.Zero(t, res.Marked)
}
