package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"rental-service/internal/model"
	"rental-service/pkg/database"
	"rental-service/pkg/logger"
	"rental-service/prometheus"
)

// PropertyRequest defines the structure for property creation/update requests
type PropertyRequest struct {
	Name        string  `json:"name"`
	Address     string  `json:"address"`
	City        string  `json:"city"`
	PricingType string  `json:"pricing_type"`
	DailyRate   float64 `json:"daily_rate"`
	MonthlyRate float64 `json:"monthly_rate"`
	NumBedrooms int     `json:"num_bedrooms"`
	ImageURL    string  `json:"image_url"`
}

// ListProperties handles retrieving the landlord's properties with optional filtering
func ListProperties(c echo.Context) error {
	log := logger.FromEcho(c)

	db := database.GetDB()
	var properties []model.Property

	query := db.Where("user_id = ?", currentUserID(c))

	// Filter by status if specified
	status := c.QueryParam("status")
	if status != "" {
		query = query.Where("status = ?", status)
	}

	// Filter by city if specified
	city := c.QueryParam("city")
	if city != "" {
		query = query.Where("city = ?", city)
	}

	result := query.Order("created_at DESC").Find(&properties)
	if result.Error != nil {
		log.Error("Failed to list properties", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to retrieve properties",
		})
	}

	log.Info("Properties retrieved", zap.Int("count", len(properties)))
	return c.JSON(http.StatusOK, properties)
}

// GetProperty handles retrieving a single property by ID
func GetProperty(c echo.Context) error {
	log := logger.FromEcho(c)
	id := c.Param("id")

	var property model.Property
	result := database.GetDB().Where("user_id = ?", currentUserID(c)).First(&property, id)
	if result.Error != nil {
		log.Error("Property not found",
			zap.String("property_id", id),
			zap.Error(result.Error))
		return c.JSON(http.StatusNotFound, echo.Map{
			"error": "Property not found",
		})
	}

	return c.JSON(http.StatusOK, property)
}

// CreateProperty handles creating a new property
func CreateProperty(c echo.Context) error {
	log := logger.FromEcho(c)

	var req PropertyRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Invalid request data",
		})
	}

	if req.Name == "" || req.Address == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Name and address are required",
		})
	}

	pricingType := model.PricingType(req.PricingType)
	if req.PricingType == "" {
		pricingType = model.PricingDaily
	}
	if !model.ValidPricingType(pricingType) {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Pricing type must be daily or monthly",
		})
	}

	property := model.Property{
		UserID:      currentUserID(c),
		Name:        req.Name,
		Address:     req.Address,
		City:        req.City,
		Status:      model.PropertyAvailable,
		PricingType: pricingType,
		DailyRate:   req.DailyRate,
		MonthlyRate: req.MonthlyRate,
		NumBedrooms: req.NumBedrooms,
		ImageURL:    req.ImageURL,
	}

	result := database.GetDB().Create(&property)
	if result.Error != nil {
		log.Error("Failed to create property",
			zap.String("name", req.Name),
			zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to create property",
		})
	}

	prometheus.PropertyOperationCounter.WithLabelValues("create").Inc()
	log.Info("Property created",
		zap.String("property_id", strconv.FormatUint(uint64(property.ID), 10)),
		zap.String("name", property.Name))
	return c.JSON(http.StatusCreated, property)
}

// UpdateProperty handles updating an existing property
func UpdateProperty(c echo.Context) error {
	log := logger.FromEcho(c)
	id := c.Param("id")

	var property model.Property
	if result := database.GetDB().Where("user_id = ?", currentUserID(c)).First(&property, id); result.Error != nil {
		log.Error("Property not found", zap.String("property_id", id))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Property not found"})
	}

	var req PropertyRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}

	updates := map[string]interface{}{}
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.Address != "" {
		updates["address"] = req.Address
	}
	if req.City != "" {
		updates["city"] = req.City
	}
	if req.PricingType != "" {
		if !model.ValidPricingType(model.PricingType(req.PricingType)) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Pricing type must be daily or monthly"})
		}
		updates["pricing_type"] = req.PricingType
	}
	if req.DailyRate > 0 {
		updates["daily_rate"] = req.DailyRate
	}
	if req.MonthlyRate > 0 {
		updates["monthly_rate"] = req.MonthlyRate
	}
	if req.NumBedrooms > 0 {
		updates["num_bedrooms"] = req.NumBedrooms
	}
	if req.ImageURL != "" {
		updates["image_url"] = req.ImageURL
	}

	if len(updates) > 0 {
		if err := database.GetDB().Model(&property).Updates(updates).Error; err != nil {
			log.Error("Failed to update property", zap.String("property_id", id), zap.Error(err))
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to update property"})
		}
	}

	prometheus.PropertyOperationCounter.WithLabelValues("update").Inc()
	log.Info("Property updated", zap.String("property_id", id))
	return c.JSON(http.StatusOK, property)
}

// UpdatePropertyStatus switches a property between Available and Rented
func UpdatePropertyStatus(c echo.Context) error {
	log := logger.FromEcho(c)
	id := c.Param("id")

	var req struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}

	status := model.PropertyStatus(req.Status)
	if !model.ValidStatus(status) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Status must be Available or Rented"})
	}

	var property model.Property
	if result := database.GetDB().Where("user_id = ?", currentUserID(c)).First(&property, id); result.Error != nil {
		log.Error("Property not found", zap.String("property_id", id))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Property not found"})
	}

	if err := database.GetDB().Model(&property).Update("status", status).Error; err != nil {
		log.Error("Failed to update property status", zap.String("property_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to update property status"})
	}

	prometheus.PropertyOperationCounter.WithLabelValues("status_change").Inc()
	log.Info("Property status updated",
		zap.String("property_id", id),
		zap.String("status", string(status)))
	return c.JSON(http.StatusOK, property)
}

// DeleteProperty handles deleting a property
func DeleteProperty(c echo.Context) error {
	log := logger.FromEcho(c)
	id := c.Param("id")

	var property model.Property
	if result := database.GetDB().Where("user_id = ?", currentUserID(c)).First(&property, id); result.Error != nil {
		log.Error("Property not found", zap.String("property_id", id))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Property not found"})
	}

	if result := database.GetDB().Delete(&property); result.Error != nil {
		log.Error("Failed to delete property", zap.String("property_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to delete property"})
	}

	prometheus.PropertyOperationCounter.WithLabelValues("delete").Inc()
	log.Info("Property deleted", zap.String("property_id", id))
	return c.JSON(http.StatusOK, echo.Map{"message": "Property deleted"})
}
