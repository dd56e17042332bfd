package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/invoicely-api/internal/application/service"
	"github.com/sangkips/invoicely-api/internal/domain/entity"
	"github.com/sangkips/invoicely-api/internal/domain/enum"
	"github.com/sangkips/invoicely-api/internal/presentation/http/dto/request"
	"github.com/sangkips/invoicely-api/internal/presentation/http/dto/response"
	"github.com/sangkips/invoicely-api/pkg/apperror"
)

// InvoiceHandler handles invoice-related HTTP requests
type InvoiceHandler struct {
	invoiceService *service.InvoiceService
}

// NewInvoiceHandler creates a new invoice handler
func NewInvoiceHandler(invoiceService *service.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{invoiceService: invoiceService}
}

// List handles listing invoices
// @Summary List invoices
// @Tags invoices
// @Security BearerAuth
// @Produce json
// @Param status query string false "pending, partially_paid, paid or overdue"
// @Param search query string false "Client name contains"
// @Param date_range query string false "all, this_month, last_month or last_3_months"
// @Success 200 {object} response.APIResponse
// @Router /invoices [get]
func (h *InvoiceHandler) List(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	result, err := h.invoiceService.ListInvoices(c.Request.Context(), &service.ListInvoicesInput{
		UserID:     userID,
		Pagination: paginationParams(c),
		Status:     enum.InvoiceStatus(c.Query("status")),
		ClientName: c.Query("search"),
		DateRange:  c.Query("date_range"),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, 200, "Invoices retrieved successfully", result)
}

// Create handles creating an invoice. The number, amounts and balance are
// assigned by the server.
// @Summary Create invoice
// @Tags invoices
// @Security BearerAuth
// @Accept json
// @Produce json
// @Success 201 {object} response.APIResponse
// @Failure 422 {object} response.APIResponse
// @Router /invoices [post]
func (h *InvoiceHandler) Create(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var draft service.InvoiceDraft
	if err := c.ShouldBindJSON(&draft); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	invoice, err := h.invoiceService.CreateInvoice(c.Request.Context(), &service.CreateInvoiceInput{
		UserID:       userID,
		InvoiceDraft: draft,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Invoice created successfully", invoice)
}

// Get handles fetching a single invoice with its items
func (h *InvoiceHandler) Get(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "invoice")
	if !ok {
		return
	}

	invoice, err := h.invoiceService.GetInvoice(c.Request.Context(), userID, id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Invoice retrieved successfully", invoice)
}

// Update handles editing an invoice. A "version" field in the body makes the
// edit fail with 409 when the invoice changed since it was read.
func (h *InvoiceHandler) Update(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "invoice")
	if !ok {
		return
	}

	var req struct {
		Version *int64 `json:"version"`
		service.InvoiceDraft
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	invoice, err := h.invoiceService.UpdateInvoice(c.Request.Context(), &service.UpdateInvoiceInput{
		UserID:       userID,
		ID:           id,
		Version:      req.Version,
		InvoiceDraft: req.InvoiceDraft,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Invoice updated successfully", invoice)
}

// UpdateStatus handles a manual status change
// @Summary Change invoice status
// @Tags invoices
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body request.UpdateInvoiceStatusRequest true "New status"
// @Success 200 {object} response.APIResponse
// @Failure 422 {object} response.APIResponse
// @Router /invoices/{id}/status [put]
func (h *InvoiceHandler) UpdateStatus(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "invoice")
	if !ok {
		return
	}

	var req request.UpdateInvoiceStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	status := enum.InvoiceStatus(req.Status)
	ctx := c.Request.Context()

	var (
		invoice *entity.Invoice
		err     error
	)
	if req.Force {
		invoice, err = h.invoiceService.ForceInvoiceStatus(ctx, userID, id, status)
	} else {
		invoice, err = h.invoiceService.UpdateInvoiceStatus(ctx, userID, id, status)
	}
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Invoice status updated successfully", invoice)
}

// AddPayment handles recording a payment
// @Summary Add payment
// @Tags invoices
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param Idempotency-Key header string false "Replays the stored response for a repeated key"
// @Param request body request.AddPaymentRequest true "Payment"
// @Success 200 {object} response.APIResponse
// @Failure 409 {object} response.APIResponse
// @Failure 422 {object} response.APIResponse
// @Router /invoices/{id}/payments [post]
func (h *InvoiceHandler) AddPayment(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "invoice")
	if !ok {
		return
	}

	var req request.AddPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	invoice, err := h.invoiceService.AddPayment(c.Request.Context(), &service.AddPaymentInput{
		UserID:    userID,
		InvoiceID: id,
		Amount:    *req.Amount,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Payment recorded successfully", invoice)
}

// Delete handles deleting an invoice
func (h *InvoiceHandler) Delete(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "invoice")
	if !ok {
		return
	}

	if err := h.invoiceService.DeleteInvoice(c.Request.Context(), userID, id); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// SweepOverdue marks past-due invoices of every owner as overdue. The cut-off
// date defaults to today and can be set with ?as_of=YYYY-MM-DD.
func (h *InvoiceHandler) SweepOverdue(c *gin.Context) {
	asOf := entity.NewDate(time.Now())
	if raw := c.Query("as_of"); raw != "" {
		parsed, err := entity.ParseDate(raw)
		if err != nil {
			response.Error(c, apperror.NewFieldValidationError("as_of", "must be a date in YYYY-MM-DD format"))
			return
		}
		asOf = parsed
	}

	result, err := h.invoiceService.SweepOverdue(c.Request.Context(), asOf)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Overdue sweep completed", result)
}
