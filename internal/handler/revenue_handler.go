package handler

import (
	"net/http"
	"sort"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"rental-service/internal/model"
	"rental-service/pkg/database"
	"rental-service/pkg/logger"
)

// MonthlyRevenue is one month's aggregated payment intake. Revenue figures
// are derived state: recomputed from the payment ledger on every request,
// never stored.
type MonthlyRevenue struct {
	Month        string  `json:"month"`
	TotalRevenue float64 `json:"total_revenue"`
	PaymentCount int64   `json:"payment_count"`
}

// PropertyRevenue is the billed/paid/outstanding breakdown for one property
type PropertyRevenue struct {
	PropertyID         uint    `json:"property_id"`
	PropertyName       string  `json:"property_name"`
	InvoiceCount       int64   `json:"invoice_count"`
	TotalBilled        float64 `json:"total_billed"`
	TotalPaid          float64 `json:"total_paid"`
	OutstandingBalance float64 `json:"outstanding_balance"`
}

// GetMonthlyRevenue sums the landlord's payments grouped by calendar month
func GetMonthlyRevenue(c echo.Context) error {
	log := logger.FromEcho(c)

	var payments []model.Payment
	result := database.GetDB().
		Joins("JOIN invoices ON invoices.id = payments.invoice_id").
		Where("invoices.user_id = ?", currentUserID(c)).
		Find(&payments)
	if result.Error != nil {
		log.Error("Failed to load payments for revenue", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to compute monthly revenue"})
	}

	byMonth := map[string]*MonthlyRevenue{}
	for _, p := range payments {
		month := p.PaymentDate.Format("2006-01")
		entry, ok := byMonth[month]
		if !ok {
			entry = &MonthlyRevenue{Month: month}
			byMonth[month] = entry
		}
		entry.TotalRevenue += p.Amount
		entry.PaymentCount++
	}

	months := make([]MonthlyRevenue, 0, len(byMonth))
	for _, entry := range byMonth {
		months = append(months, *entry)
	}
	sort.Slice(months, func(i, j int) bool { return months[i].Month < months[j].Month })

	return c.JSON(http.StatusOK, months)
}

// GetPropertyRevenue aggregates billed, paid, and outstanding amounts per
// property across non-cancelled invoices
func GetPropertyRevenue(c echo.Context) error {
	log := logger.FromEcho(c)

	var summary []PropertyRevenue
	result := database.GetDB().
		Table("properties").
		Select("properties.id AS property_id, properties.name AS property_name, "+
			"COUNT(invoices.id) AS invoice_count, "+
			"COALESCE(SUM(invoices.amount), 0) AS total_billed, "+
			"COALESCE(SUM(invoices.amount_paid), 0) AS total_paid, "+
			"COALESCE(SUM(invoices.amount - invoices.amount_paid), 0) AS outstanding_balance").
		Joins("LEFT JOIN invoices ON invoices.property_id = properties.id AND invoices.status <> ?", model.InvoiceCancelled).
		Where("properties.user_id = ? AND properties.deleted_at IS NULL", currentUserID(c)).
		Group("properties.id, properties.name").
		Order("properties.name ASC").
		Scan(&summary)
	if result.Error != nil {
		log.Error("Failed to compute property revenue", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to compute property revenue"})
	}

	return c.JSON(http.StatusOK, summary)
}
