package handler

import (
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"rental-service/internal/model"
	"rental-service/pkg/database"
	"rental-service/pkg/logger"
)

// GetProfile returns the authenticated landlord's profile
func GetProfile(c echo.Context) error {
	log := logger.FromEcho(c)
	userID := currentUserID(c)

	var user model.User
	if result := database.GetDB().First(&user, userID); result.Error != nil {
		log.Error("User not found", zap.Uint("user_id", userID))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	}

	return c.JSON(http.StatusOK, user)
}

// UpdateProfile updates the authenticated landlord's profile fields
func UpdateProfile(c echo.Context) error {
	log := logger.FromEcho(c)
	userID := currentUserID(c)

	var user model.User
	if result := database.GetDB().First(&user, userID); result.Error != nil {
		log.Error("User not found", zap.Uint("user_id", userID))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	}

	var req struct {
		FullName             *string `json:"full_name"`
		Phone                *string `json:"phone"`
		City                 *string `json:"city"`
		CompanyName          *string `json:"company_name"`
		NotificationsEnabled *bool   `json:"notifications_enabled"`
	}
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	updates := map[string]interface{}{}
	if req.FullName != nil {
		updates["full_name"] = *req.FullName
	}
	if req.Phone != nil {
		updates["phone"] = *req.Phone
	}
	if req.City != nil {
		updates["city"] = *req.City
	}
	if req.CompanyName != nil {
		updates["company_name"] = *req.CompanyName
	}
	if req.NotificationsEnabled != nil {
		updates["notifications_enabled"] = *req.NotificationsEnabled
	}

	if len(updates) > 0 {
		if err := database.GetDB().Model(&user).Updates(updates).Error; err != nil {
			log.Error("Failed to update profile", zap.Uint("user_id", userID), zap.Error(err))
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update profile"})
		}
	}

	log.Info("Profile updated", zap.Uint("user_id", userID))
	return c.JSON(http.StatusOK, user)
}

// AddProfileNote appends a free-text note to the landlord's note list
func AddProfileNote(c echo.Context) error {
	log := logger.FromEcho(c)
	userID := currentUserID(c)

	var req struct {
		Note string `json:"note"`
	}
	if err := c.Bind(&req); err != nil || req.Note == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "note is required"})
	}

	var user model.User
	if result := database.GetDB().First(&user, userID); result.Error != nil {
		log.Error("User not found", zap.Uint("user_id", userID))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	}

	var notes []string
	if len(user.Notes) > 0 {
		if err := json.Unmarshal(user.Notes, &notes); err != nil {
			log.Warn("Resetting malformed notes list", zap.Uint("user_id", userID), zap.Error(err))
			notes = nil
		}
	}
	notes = append(notes, req.Note)

	raw, err := json.Marshal(notes)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to save note"})
	}

	if err := database.GetDB().Model(&user).Update("notes", datatypes.JSON(raw)).Error; err != nil {
		log.Error("Failed to save note", zap.Uint("user_id", userID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to save note"})
	}

	log.Info("Profile note added", zap.Uint("user_id", userID))
	return c.JSON(http.StatusOK, echo.Map{"notes": notes})
}
