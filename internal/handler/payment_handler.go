package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"rental-service/internal/billing"
	"rental-service/internal/model"
	"rental-service/pkg/database"
	"rental-service/pkg/logger"
	"rental-service/prometheus"
)

// PaymentRequest defines the structure for recording a payment
type PaymentRequest struct {
	Amount      float64 `json:"amount"`
	PaymentDate string  `json:"payment_date"`
	Method      string  `json:"payment_method"`
	Notes       string  `json:"notes"`
}

// CreatePayment records a payment against an invoice and reconciles its status
func CreatePayment(c echo.Context) error {
	log := logger.FromEcho(c)
	id := c.Param("id")

	var invoice model.Invoice
	if result := database.GetDB().Where("user_id = ?", currentUserID(c)).First(&invoice, id); result.Error != nil {
		log.Error("Invoice not found", zap.String("invoice_id", id))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Invoice not found"})
	}

	var req PaymentRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}

	paymentDate := time.Now()
	if req.PaymentDate != "" {
		parsed, err := parseDate(req.PaymentDate)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Payment date must be YYYY-MM-DD"})
		}
		paymentDate = parsed
	}

	method := req.Method
	if method == "" {
		method = "manual"
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	updated, err := billing.ApplyPayment(database.GetDB(), invoice.ID, req.Amount, paymentDate, method, req.Notes)
	switch {
	case errors.Is(err, billing.ErrInvalidAmount):
		prometheus.PaymentCounter.WithLabelValues("rejected").Inc()
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Payment amount must be greater than zero"})
	case errors.Is(err, billing.ErrExceedsBalance):
		prometheus.PaymentCounter.WithLabelValues("rejected").Inc()
		log.Info("Payment exceeds remaining balance",
			zap.String("invoice_id", id),
			zap.Float64("amount", req.Amount),
			zap.Float64("remaining", invoice.Remaining()))
		return c.JSON(http.StatusConflict, echo.Map{"error": "Payment amount exceeds remaining balance"})
	case errors.Is(err, billing.ErrInvoiceClosed):
		prometheus.PaymentCounter.WithLabelValues("rejected").Inc()
		return c.JSON(http.StatusConflict, echo.Map{"error": "Invoice is not open for payments"})
	case err != nil:
		prometheus.PaymentCounter.WithLabelValues("failed").Inc()
		log.Error("Failed to record payment", zap.String("invoice_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to record payment"})
	}

	prometheus.PaymentCounter.WithLabelValues("recorded").Inc()
	log.Info("Payment recorded",
		zap.String("invoice_id", id),
		zap.Float64("amount", req.Amount),
		zap.Float64("amount_paid", updated.AmountPaid),
		zap.String("status", string(updated.Status)))
	return c.JSON(http.StatusCreated, updated)
}

// ListPayments returns the payment ledger for an invoice, oldest first
func ListPayments(c echo.Context) error {
	log := logger.FromEcho(c)
	id := c.Param("id")

	var invoice model.Invoice
	if result := database.GetDB().Where("user_id = ?", currentUserID(c)).First(&invoice, id); result.Error != nil {
		log.Error("Invoice not found", zap.String("invoice_id", id))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Invoice not found"})
	}

	var payments []model.Payment
	result := database.GetDB().
		Where("invoice_id = ?", invoice.ID).
		Order("payment_date ASC").
		Find(&payments)
	if result.Error != nil {
		log.Error("Failed to list payments", zap.String("invoice_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to retrieve payments"})
	}

	return c.JSON(http.StatusOK, payments)
}
