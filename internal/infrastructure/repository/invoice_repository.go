package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sangkips/invoicely-api/internal/domain/entity"
	"github.com/sangkips/invoicely-api/internal/domain/enum"
	domainRepo "github.com/sangkips/invoicely-api/internal/domain/repository"
	"github.com/sangkips/invoicely-api/pkg/pagination"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type invoiceRepository struct {
	db *gorm.DB
}

// NewInvoiceRepository creates a new invoice repository
func NewInvoiceRepository(db *gorm.DB) domainRepo.InvoiceRepository {
	return &invoiceRepository{db: db}
}

func orderedItems(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

func (r *invoiceRepository) Create(ctx context.Context, invoice *entity.Invoice, assign domainRepo.NumberAssigner) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		seq, err := nextInvoiceSequence(tx, invoice.UserID)
		if err != nil {
			return err
		}
		invoice.InvoiceNumber = assign(seq)
		invoice.Version = 1
		return tx.Create(invoice).Error
	})
}

// nextInvoiceSequence bumps the owner's counter row, creating it at 1 on first
// use. The upsert holds the row lock until the surrounding transaction ends, so
// concurrent creates for the same owner are serialised.
func nextInvoiceSequence(tx *gorm.DB, userID uuid.UUID) (int64, error) {
	row := entity.InvoiceSequence{UserID: userID, LastValue: 1}
	err := tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"last_value": gorm.Expr("invoice_sequences.last_value + 1"),
		}),
	}).Create(&row).Error
	if err != nil {
		return 0, err
	}

	var current entity.InvoiceSequence
	if err := tx.Where("user_id = ?", userID).First(&current).Error; err != nil {
		return 0, err
	}
	return current.LastValue, nil
}

func (r *invoiceRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Invoice, error) {
	var invoice entity.Invoice
	err := r.db.WithContext(ctx).
		Preload("Items", orderedItems).
		First(&invoice, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (r *invoiceRepository) List(ctx context.Context, userID uuid.UUID, filter domainRepo.InvoiceFilter, params *pagination.PaginationParams) ([]entity.Invoice, int64, error) {
	var invoices []entity.Invoice
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Invoice{}).
		Scopes(
			OwnedBy(userID),
			IssuedBetween(filter.IssuedFrom, filter.IssuedTo),
			Search(filter.ClientName, "client_name"),
		)
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params.Validate()
	err := query.Offset(params.Offset()).Limit(params.PerPage).
		Preload("Items", orderedItems).
		Order("created_at DESC").
		Find(&invoices).Error

	return invoices, total, err
}

func (r *invoiceRepository) Update(ctx context.Context, invoice *entity.Invoice) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&entity.Invoice{}).
			Where("id = ? AND version = ?", invoice.ID, invoice.Version).
			Updates(map[string]interface{}{
				"client_id":      invoice.ClientID,
				"client_name":    invoice.ClientName,
				"client_email":   invoice.ClientEmail,
				"client_address": invoice.ClientAddress,
				"issue_date":     invoice.IssueDate,
				"due_date":       invoice.DueDate,
				"subtotal":       invoice.Subtotal,
				"tax":            invoice.Tax,
				"total":          invoice.Total,
				"amount_paid":    invoice.AmountPaid,
				"balance":        invoice.Balance,
				"status":         invoice.Status,
				"notes":          invoice.Notes,
				"version":        gorm.Expr("version + 1"),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domainRepo.ErrVersionConflict
		}

		if err := tx.Where("invoice_id = ?", invoice.ID).Delete(&entity.LineItem{}).Error; err != nil {
			return err
		}
		if len(invoice.Items) > 0 {
			for i := range invoice.Items {
				invoice.Items[i].InvoiceID = invoice.ID
			}
			if err := tx.Create(&invoice.Items).Error; err != nil {
				return err
			}
		}

		invoice.Version++
		return nil
	})
}

func (r *invoiceRepository) UpdatePaymentState(ctx context.Context, invoice *entity.Invoice) error {
	res := r.db.WithContext(ctx).Model(&entity.Invoice{}).
		Where("id = ? AND version = ?", invoice.ID, invoice.Version).
		Updates(map[string]interface{}{
			"amount_paid": invoice.AmountPaid,
			"balance":     invoice.Balance,
			"status":      invoice.Status,
			"version":     gorm.Expr("version + 1"),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domainRepo.ErrVersionConflict
	}
	invoice.Version++
	return nil
}

func (r *invoiceRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status enum.InvoiceStatus, expectedVersion int64) (int64, error) {
	res := r.db.WithContext(ctx).Model(&entity.Invoice{}).
		Where("id = ? AND version = ?", id, expectedVersion).
		Updates(map[string]interface{}{
			"status":  status,
			"version": gorm.Expr("version + 1"),
		})
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, domainRepo.ErrVersionConflict
	}
	return expectedVersion + 1, nil
}

func (r *invoiceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("invoice_id = ?", id).Delete(&entity.LineItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&entity.Invoice{}, "id = ?", id).Error
	})
}

func (r *invoiceRepository) Summarize(ctx context.Context, userID uuid.UUID) ([]domainRepo.StatusSummary, error) {
	var rows []domainRepo.StatusSummary
	err := r.db.WithContext(ctx).Model(&entity.Invoice{}).
		Scopes(OwnedBy(userID)).
		Select(`status,
			COUNT(*) AS count,
			COALESCE(SUM(total), 0) AS total,
			COALESCE(SUM(amount_paid), 0) AS amount_paid,
			COALESCE(SUM(balance), 0) AS balance`).
		Group("status").
		Order("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *invoiceRepository) ListOverdueCandidates(ctx context.Context, asOf entity.Date, limit int) ([]entity.Invoice, error) {
	var invoices []entity.Invoice
	query := r.db.WithContext(ctx).
		Where("status IN ?", []string{string(enum.InvoiceStatusPending), string(enum.InvoiceStatusPartiallyPaid)}).
		Where("balance > 0").
		Where("due_date < ?", asOf).
		Order("due_date ASC, id ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&invoices).Error; err != nil {
		return nil, err
	}
	return invoices, nil
}
