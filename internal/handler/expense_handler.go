package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"rental-service/internal/model"
	"rental-service/pkg/database"
	"rental-service/pkg/logger"
)

// ExpenseRequest defines the structure for expense creation/update requests
type ExpenseRequest struct {
	PropertyID    uint    `json:"property_id"`
	Amount        float64 `json:"amount"`
	Category      string  `json:"category"`
	Description   string  `json:"description"`
	Date          string  `json:"date"`
	PaymentMethod string  `json:"payment_method"`
}

// ListExpenses returns the landlord's expenses with optional filtering
func ListExpenses(c echo.Context) error {
	log := logger.FromEcho(c)

	query := database.GetDB().Where("user_id = ?", currentUserID(c))

	if propertyID := c.QueryParam("property_id"); propertyID != "" {
		query = query.Where("property_id = ?", propertyID)
	}
	if category := c.QueryParam("category"); category != "" {
		query = query.Where("category = ?", category)
	}
	if from, err := parseTimeParam(c, "from"); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "from must be YYYY-MM-DD"})
	} else if !from.IsZero() {
		query = query.Where("date >= ?", from)
	}
	if to, err := parseTimeParam(c, "to"); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "to must be YYYY-MM-DD"})
	} else if !to.IsZero() {
		query = query.Where("date <= ?", to)
	}

	var expenses []model.Expense
	result := query.Order("date DESC").Find(&expenses)
	if result.Error != nil {
		log.Error("Failed to list expenses", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to retrieve expenses"})
	}

	return c.JSON(http.StatusOK, expenses)
}

// CreateExpense handles creating a property cost record
func CreateExpense(c echo.Context) error {
	log := logger.FromEcho(c)
	userID := currentUserID(c)

	var req ExpenseRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}

	if req.Amount <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Amount must be greater than zero"})
	}

	category := model.ExpenseCategory(req.Category)
	if !model.ValidExpenseCategory(category) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Unknown expense category"})
	}

	date := time.Now()
	if req.Date != "" {
		parsed, err := parseDate(req.Date)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Date must be YYYY-MM-DD"})
		}
		date = parsed
	}

	if req.PropertyID != 0 {
		var property model.Property
		if result := database.GetDB().Where("user_id = ?", userID).First(&property, req.PropertyID); result.Error != nil {
			log.Error("Property not found for expense", zap.Uint("property_id", req.PropertyID))
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Property not found"})
		}
	}

	expense := model.Expense{
		UserID:        userID,
		PropertyID:    req.PropertyID,
		Amount:        req.Amount,
		Category:      category,
		Description:   req.Description,
		Date:          date,
		PaymentMethod: req.PaymentMethod,
	}

	if result := database.GetDB().Create(&expense); result.Error != nil {
		log.Error("Failed to create expense", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to create expense"})
	}

	log.Info("Expense created",
		zap.Uint("expense_id", expense.ID),
		zap.String("category", string(expense.Category)),
		zap.Float64("amount", expense.Amount))
	return c.JSON(http.StatusCreated, expense)
}

// UpdateExpense handles updating an expense record
func UpdateExpense(c echo.Context) error {
	log := logger.FromEcho(c)
	id := c.Param("id")

	var expense model.Expense
	if result := database.GetDB().Where("user_id = ?", currentUserID(c)).First(&expense, id); result.Error != nil {
		log.Error("Expense not found", zap.String("expense_id", id))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Expense not found"})
	}

	var req ExpenseRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}

	updates := map[string]interface{}{}
	if req.Amount > 0 {
		updates["amount"] = req.Amount
	}
	if req.Category != "" {
		if !model.ValidExpenseCategory(model.ExpenseCategory(req.Category)) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Unknown expense category"})
		}
		updates["category"] = req.Category
	}
	if req.Description != "" {
		updates["description"] = req.Description
	}
	if req.PaymentMethod != "" {
		updates["payment_method"] = req.PaymentMethod
	}
	if req.Date != "" {
		parsed, err := parseDate(req.Date)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Date must be YYYY-MM-DD"})
		}
		updates["date"] = parsed
	}

	if len(updates) > 0 {
		if err := database.GetDB().Model(&expense).Updates(updates).Error; err != nil {
			log.Error("Failed to update expense", zap.String("expense_id", id), zap.Error(err))
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to update expense"})
		}
	}

	log.Info("Expense updated", zap.String("expense_id", id))
	return c.JSON(http.StatusOK, expense)
}

// DeleteExpense handles deleting an expense record
func DeleteExpense(c echo.Context) error {
	log := logger.FromEcho(c)
	id := c.Param("id")

	var expense model.Expense
	if result := database.GetDB().Where("user_id = ?", currentUserID(c)).First(&expense, id); result.Error != nil {
		log.Error("Expense not found", zap.String("expense_id", id))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Expense not found"})
	}

	if result := database.GetDB().Delete(&expense); result.Error != nil {
		log.Error("Failed to delete expense", zap.String("expense_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to delete expense"})
	}

	log.Info("Expense deleted", zap.String("expense_id", id))
	return c.JSON(http.StatusOK, echo.Map{"message": "Expense deleted"})
}
