package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"rental-service/internal/model"
	"rental-service/pkg/database"
	"rental-service/pkg/logger"
)

// CustomerRequest defines the structure for customer creation/update requests
type CustomerRequest struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	City        string `json:"city"`
	CompanyName string `json:"company_name"`
}

// ListCustomers returns the landlord's customers
func ListCustomers(c echo.Context) error {
	log := logger.FromEcho(c)

	var customers []model.Customer
	result := database.GetDB().
		Where("user_id = ?", currentUserID(c)).
		Order("name ASC").
		Find(&customers)
	if result.Error != nil {
		log.Error("Failed to list customers", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to retrieve customers"})
	}

	return c.JSON(http.StatusOK, customers)
}

// GetCustomer returns one customer by ID
func GetCustomer(c echo.Context) error {
	log := logger.FromEcho(c)
	id := c.Param("id")

	var customer model.Customer
	result := database.GetDB().Where("user_id = ?", currentUserID(c)).First(&customer, id)
	if result.Error != nil {
		log.Error("Customer not found", zap.String("customer_id", id))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Customer not found"})
	}

	return c.JSON(http.StatusOK, customer)
}

// CreateCustomer handles creating a new customer record
func CreateCustomer(c echo.Context) error {
	log := logger.FromEcho(c)

	var req CustomerRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}

	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Name is required"})
	}

	customer := model.Customer{
		UserID:      currentUserID(c),
		Name:        req.Name,
		Email:       req.Email,
		Phone:       req.Phone,
		City:        req.City,
		CompanyName: req.CompanyName,
	}

	if result := database.GetDB().Create(&customer); result.Error != nil {
		log.Error("Failed to create customer", zap.String("name", req.Name), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to create customer"})
	}

	log.Info("Customer created", zap.Uint("customer_id", customer.ID), zap.String("name", customer.Name))
	return c.JSON(http.StatusCreated, customer)
}

// UpdateCustomer handles updating an existing customer
func UpdateCustomer(c echo.Context) error {
	log := logger.FromEcho(c)
	id := c.Param("id")

	var customer model.Customer
	if result := database.GetDB().Where("user_id = ?", currentUserID(c)).First(&customer, id); result.Error != nil {
		log.Error("Customer not found", zap.String("customer_id", id))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Customer not found"})
	}

	var req CustomerRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}

	updates := map[string]interface{}{}
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.Email != "" {
		updates["email"] = req.Email
	}
	if req.Phone != "" {
		updates["phone"] = req.Phone
	}
	if req.City != "" {
		updates["city"] = req.City
	}
	if req.CompanyName != "" {
		updates["company_name"] = req.CompanyName
	}

	if len(updates) > 0 {
		if err := database.GetDB().Model(&customer).Updates(updates).Error; err != nil {
			log.Error("Failed to update customer", zap.String("customer_id", id), zap.Error(err))
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to update customer"})
		}
	}

	log.Info("Customer updated", zap.String("customer_id", id))
	return c.JSON(http.StatusOK, customer)
}

// DeleteCustomer handles deleting a customer record
func DeleteCustomer(c echo.Context) error {
	log := logger.FromEcho(c)
	id := c.Param("id")

	var customer model.Customer
	if result := database.GetDB().Where("user_id = ?", currentUserID(c)).First(&customer, id); result.Error != nil {
		log.Error("Customer not found", zap.String("customer_id", id))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Customer not found"})
	}

	if result := database.GetDB().Delete(&customer); result.Error != nil {
		log.Error("Failed to delete customer", zap.String("customer_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to delete customer"})
	}

	log.Info("Customer deleted", zap.String("customer_id", id))
	return c.JSON(http.StatusOK, echo.Map{"message": "Customer deleted"})
}

// CustomerStatistics aggregates each customer's booking history at query
// time: total bookings, total spent, and date of the most recent booking.
// Customers with an open (pending or overdue) invoice are reported active.
func CustomerStatistics(c echo.Context) error {
	log := logger.FromEcho(c)
	userID := currentUserID(c)
	db := database.GetDB()

	var customers []model.Customer
	if err := db.Where("user_id = ?", userID).Order("name ASC").Find(&customers).Error; err != nil {
		log.Error("Failed to list customers for statistics", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to compute customer statistics"})
	}

	var invoices []model.Invoice
	if err := db.Where("user_id = ? AND status <> ?", userID, model.InvoiceCancelled).Find(&invoices).Error; err != nil {
		log.Error("Failed to load invoices for statistics", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to compute customer statistics"})
	}

	byCustomer := make(map[uint][]model.Invoice, len(customers))
	for _, inv := range invoices {
		byCustomer[inv.CustomerID] = append(byCustomer[inv.CustomerID], inv)
	}

	stats := make([]model.CustomerStats, 0, len(customers))
	for _, customer := range customers {
		entry := model.CustomerStats{
			ID:             customer.ID,
			Name:           customer.Name,
			Phone:          customer.Phone,
			City:           customer.City,
			CompanyName:    customer.CompanyName,
			CustomerStatus: "inactive",
		}

		for _, inv := range byCustomer[customer.ID] {
			entry.TotalBookings++
			entry.TotalSpent += inv.AmountPaid
			if entry.LastBookingDate == nil || inv.StartDate.After(*entry.LastBookingDate) {
				start := inv.StartDate
				entry.LastBookingDate = &start
			}
			if inv.Open() {
				entry.CustomerStatus = "active"
			}
		}

		stats = append(stats, entry)
	}

	return c.JSON(http.StatusOK, stats)
}
