package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"rental-service/internal/billing"
	"rental-service/internal/model"
	"rental-service/pkg/database"
	"rental-service/pkg/logger"
	"rental-service/prometheus"
)

// InvoiceRequest defines the structure for booking/invoice creation requests
type InvoiceRequest struct {
	PropertyID  uint    `json:"property_id"`
	CustomerID  uint    `json:"customer_id"`
	StartDate   string  `json:"start_date"`
	EndDate     string  `json:"end_date"`
	DueDate     string  `json:"due_date"`
	DailyRate   float64 `json:"daily_rate"`
	Description string  `json:"description"`
}

// ListInvoices handles retrieving the landlord's invoices with optional filtering
func ListInvoices(c echo.Context) error {
	log := logger.FromEcho(c)

	var invoices []model.Invoice
	query := database.GetDB().Where("user_id = ?", currentUserID(c))

	if status := c.QueryParam("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if propertyID := c.QueryParam("property_id"); propertyID != "" {
		query = query.Where("property_id = ?", propertyID)
	}
	if customerID := c.QueryParam("customer_id"); customerID != "" {
		query = query.Where("customer_id = ?", customerID)
	}

	result := query.Preload("Property").Preload("Customer").Order("created_at DESC").Find(&invoices)
	if result.Error != nil {
		log.Error("Failed to list invoices", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to retrieve invoices"})
	}

	return c.JSON(http.StatusOK, invoices)
}

// GetInvoice handles retrieving a single invoice with its payment history
func GetInvoice(c echo.Context) error {
	log := logger.FromEcho(c)
	id := c.Param("id")

	var invoice model.Invoice
	result := database.GetDB().
		Where("user_id = ?", currentUserID(c)).
		Preload("Property").
		Preload("Customer").
		Preload("Payments").
		First(&invoice, id)
	if result.Error != nil {
		log.Error("Invoice not found", zap.String("invoice_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Invoice not found"})
	}

	return c.JSON(http.StatusOK, invoice)
}

// CreateInvoice handles creating a booking/invoice for a property. The booking
// is rejected when the requested date range overlaps an existing non-cancelled
// booking for the same property.
func CreateInvoice(c echo.Context) error {
	log := logger.FromEcho(c)
	userID := currentUserID(c)

	var req InvoiceRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}

	startDate, err := parseDate(req.StartDate)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Start date must be YYYY-MM-DD"})
	}
	endDate, err := parseDate(req.EndDate)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "End date must be YYYY-MM-DD"})
	}
	if startDate.After(endDate) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Start date must not be after end date"})
	}

	// Due date defaults to the end of the stay
	dueDate := endDate
	if req.DueDate != "" {
		dueDate, err = parseDate(req.DueDate)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Due date must be YYYY-MM-DD"})
		}
	}

	db := database.GetDB()

	var property model.Property
	if result := db.Where("user_id = ?", userID).First(&property, req.PropertyID); result.Error != nil {
		log.Error("Property not found", zap.Uint("property_id", req.PropertyID))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Property not found"})
	}

	var customer model.Customer
	if result := db.Where("user_id = ?", userID).First(&customer, req.CustomerID); result.Error != nil {
		log.Error("Customer not found", zap.Uint("customer_id", req.CustomerID))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Customer not found"})
	}

	dailyRate := req.DailyRate
	if dailyRate <= 0 {
		dailyRate = property.DailyRate
	}
	days := billing.Days(startDate, endDate)

	invoice := model.Invoice{
		UserID:      userID,
		PropertyID:  property.ID,
		CustomerID:  customer.ID,
		Amount:      float64(days) * dailyRate,
		AmountPaid:  0,
		DailyRate:   dailyRate,
		DaysRented:  days,
		StartDate:   startDate,
		EndDate:     endDate,
		DueDate:     dueDate,
		Status:      model.InvoicePending,
		Description: req.Description,
	}

	// The conflict scan and the insert happen in one transaction so two
	// concurrent bookings cannot both claim the same dates. A failed scan
	// refuses the booking rather than risking a double booking.
	conflict, err := billing.CreateBooking(db, &invoice)
	if err == billing.ErrDatesUnavailable {
		prometheus.BookingConflictCounter.Inc()
		log.Info("Booking rejected due to overlap",
			zap.Uint("property_id", property.ID),
			zap.Uint("conflicting_invoice_id", conflict.ID))
		return c.JSON(http.StatusConflict, echo.Map{
			"error": "Property is already booked for the selected dates",
		})
	}
	if err != nil {
		log.Error("Failed to create invoice", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to create invoice"})
	}

	prometheus.BookingCounter.Inc()
	log.Info("Invoice created",
		zap.String("invoice_id", strconv.FormatUint(uint64(invoice.ID), 10)),
		zap.Uint("property_id", property.ID),
		zap.Int("days_rented", days),
		zap.Float64("amount", invoice.Amount))
	return c.JSON(http.StatusCreated, invoice)
}

// CancelInvoice transitions a pending or overdue invoice to cancelled
func CancelInvoice(c echo.Context) error {
	log := logger.FromEcho(c)
	id := c.Param("id")

	var invoice model.Invoice
	if result := database.GetDB().Where("user_id = ?", currentUserID(c)).First(&invoice, id); result.Error != nil {
		log.Error("Invoice not found", zap.String("invoice_id", id))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Invoice not found"})
	}

	cancelled, err := billing.Cancel(database.GetDB(), invoice.ID)
	if err == billing.ErrInvoiceClosed {
		log.Info("Cancellation rejected",
			zap.String("invoice_id", id),
			zap.String("status", string(invoice.Status)))
		return c.JSON(http.StatusConflict, echo.Map{"error": "Only pending or overdue invoices can be cancelled"})
	}
	if err != nil {
		log.Error("Failed to cancel invoice", zap.String("invoice_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to cancel invoice"})
	}

	log.Info("Invoice cancelled", zap.String("invoice_id", id))
	return c.JSON(http.StatusOK, cancelled)
}

// ListPropertyInvoices returns the bookings for one property, most recent first
func ListPropertyInvoices(c echo.Context) error {
	log := logger.FromEcho(c)
	id := c.Param("id")

	var property model.Property
	if result := database.GetDB().Where("user_id = ?", currentUserID(c)).First(&property, id); result.Error != nil {
		log.Error("Property not found", zap.String("property_id", id))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Property not found"})
	}

	var invoices []model.Invoice
	result := database.GetDB().
		Where("property_id = ?", property.ID).
		Preload("Customer").
		Order("start_date DESC").
		Find(&invoices)
	if result.Error != nil {
		log.Error("Failed to list property invoices", zap.String("property_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to retrieve invoices"})
	}

	return c.JSON(http.StatusOK, invoices)
}

// parseTimeParam parses an optional query date, returning the zero time when absent
func parseTimeParam(c echo.Context, name string) (time.Time, error) {
	v := c.QueryParam(name)
	if v == "" {
		return time.Time{}, nil
	}
	return parseDate(v)
}
