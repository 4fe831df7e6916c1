package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"rental-service/internal/model"
)

func seedLedger(t *testing.T, db *gorm.DB) (model.Property, model.Invoice) {
	t.Helper()
	property, customer := seedPropertyAndCustomer(t, db)

	invoice := model.Invoice{
		UserID:     testUserID,
		PropertyID: property.ID,
		CustomerID: customer.ID,
		Amount:     2000,
		AmountPaid: 1500,
		StartDate:  mustDate(t, "2025-03-01"),
		EndDate:    mustDate(t, "2025-03-05"),
		DueDate:    mustDate(t, "2025-03-05"),
		Status:     model.InvoicePending,
	}
	require.NoError(t, db.Create(&invoice).Error)

	payments := []model.Payment{
		{InvoiceID: invoice.ID, Amount: 1000, PaymentDate: mustDate(t, "2025-03-02"), Method: "manual"},
		{InvoiceID: invoice.ID, Amount: 500, PaymentDate: mustDate(t, "2025-04-01"), Method: "manual"},
	}
	for i := range payments {
		require.NoError(t, db.Create(&payments[i]).Error)
	}
	return property, invoice
}

func TestGetMonthlyRevenue(t *testing.T) {
	db := setupTest(t)
	seedLedger(t, db)

	rec := invoke(t, GetMonthlyRevenue, http.MethodGet, "/api/revenue/monthly", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var months []MonthlyRevenue
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &months))
	require.Len(t, months, 2)

	assert.Equal(t, "2025-03", months[0].Month)
	assert.Equal(t, 1000.0, months[0].TotalRevenue)
	assert.Equal(t, int64(1), months[0].PaymentCount)

	assert.Equal(t, "2025-04", months[1].Month)
	assert.Equal(t, 500.0, months[1].TotalRevenue)
}

func TestGetMonthlyRevenueScopedToUser(t *testing.T) {
	db := setupTest(t)
	property, customer := seedPropertyAndCustomer(t, db)

	// Another landlord's ledger must not bleed into this user's figures
	foreign := model.Invoice{
		UserID:     42,
		PropertyID: property.ID,
		CustomerID: customer.ID,
		Amount:     900,
		StartDate:  mustDate(t, "2025-03-01"),
		EndDate:    mustDate(t, "2025-03-02"),
		DueDate:    mustDate(t, "2025-03-02"),
		Status:     model.InvoicePending,
	}
	require.NoError(t, db.Create(&foreign).Error)
	require.NoError(t, db.Create(&model.Payment{
		InvoiceID:   foreign.ID,
		Amount:      900,
		PaymentDate: mustDate(t, "2025-03-02"),
	}).Error)

	rec := invoke(t, GetMonthlyRevenue, http.MethodGet, "/api/revenue/monthly", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var months []MonthlyRevenue
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &months))
	assert.Empty(t, months)
}

func TestGetPropertyRevenue(t *testing.T) {
	db := setupTest(t)
	property, invoice := seedLedger(t, db)

	// Cancelled invoices are excluded from the aggregation
	cancelled := model.Invoice{
		UserID:     testUserID,
		PropertyID: property.ID,
		CustomerID: invoice.CustomerID,
		Amount:     5000,
		StartDate:  mustDate(t, "2025-06-01"),
		EndDate:    mustDate(t, "2025-06-10"),
		DueDate:    mustDate(t, "2025-06-10"),
		Status:     model.InvoiceCancelled,
	}
	require.NoError(t, db.Create(&cancelled).Error)

	rec := invoke(t, GetPropertyRevenue, http.MethodGet, "/api/revenue/properties", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var summary []PropertyRevenue
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	require.Len(t, summary, 1)

	assert.Equal(t, property.ID, summary[0].PropertyID)
	assert.Equal(t, "Seaside Flat", summary[0].PropertyName)
	assert.Equal(t, int64(1), summary[0].InvoiceCount)
	assert.Equal(t, 2000.0, summary[0].TotalBilled)
	assert.Equal(t, 1500.0, summary[0].TotalPaid)
	assert.Equal(t, 500.0, summary[0].OutstandingBalance)
}

func TestCustomerStatistics(t *testing.T) {
	db := setupTest(t)
	property, customer := seedPropertyAndCustomer(t, db)

	quiet := model.Customer{UserID: testUserID, Name: "Quiet Customer"}
	require.NoError(t, db.Create(&quiet).Error)

	invoices := []model.Invoice{
		{
			UserID: testUserID, PropertyID: property.ID, CustomerID: customer.ID,
			Amount: 2000, AmountPaid: 2000,
			StartDate: mustDate(t, "2025-01-10"), EndDate: mustDate(t, "2025-01-15"),
			DueDate: mustDate(t, "2025-01-15"), Status: model.InvoicePaid,
		},
		{
			UserID: testUserID, PropertyID: property.ID, CustomerID: customer.ID,
			Amount: 1500, AmountPaid: 500,
			StartDate: mustDate(t, "2025-03-01"), EndDate: mustDate(t, "2025-03-04"),
			DueDate: mustDate(t, "2025-03-04"), Status: model.InvoicePending,
		},
		{
			UserID: testUserID, PropertyID: property.ID, CustomerID: customer.ID,
			Amount: 800, AmountPaid: 0,
			StartDate: mustDate(t, "2025-02-01"), EndDate: mustDate(t, "2025-02-03"),
			DueDate: mustDate(t, "2025-02-03"), Status: model.InvoiceCancelled,
		},
	}
	for i := range invoices {
		require.NoError(t, db.Create(&invoices[i]).Error)
	}

	rec := invoke(t, CustomerStatistics, http.MethodGet, "/api/customers/stats", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var stats []model.CustomerStats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	require.Len(t, stats, 2)

	byName := map[string]model.CustomerStats{}
	for _, s := range stats {
		byName[s.Name] = s
	}

	active := byName["Alex Doyle"]
	// Cancelled bookings are excluded from the aggregates
	assert.Equal(t, int64(2), active.TotalBookings)
	assert.Equal(t, 2500.0, active.TotalSpent)
	require.NotNil(t, active.LastBookingDate)
	assert.True(t, active.LastBookingDate.Equal(mustDate(t, "2025-03-01")))
	assert.Equal(t, "active", active.CustomerStatus)

	idle := byName["Quiet Customer"]
	assert.Zero(t, idle.TotalBookings)
	assert.Zero(t, idle.TotalSpent)
	assert.Nil(t, idle.LastBookingDate)
	assert.Equal(t, "inactive", idle.CustomerStatus)
}

func TestPropertyOwnershipScoping(t *testing.T) {
	db := setupTest(t)

	foreign := model.Property{
		UserID:  42,
		Name:    "Not Yours",
		Address: "1 Elsewhere",
	}
	require.NoError(t, db.Create(&foreign).Error)

	rec := invoke(t, GetProperty, http.MethodGet, "/", "", map[string]string{"id": fmt.Sprint(foreign.ID)})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = invoke(t, DeleteProperty, http.MethodDelete, "/", "", map[string]string{"id": fmt.Sprint(foreign.ID)})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
