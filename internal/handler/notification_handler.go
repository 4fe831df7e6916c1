package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"rental-service/internal/model"
	"rental-service/pkg/database"
	"rental-service/pkg/logger"
)

// ListNotifications returns the landlord's notifications, newest first
func ListNotifications(c echo.Context) error {
	log := logger.FromEcho(c)

	query := database.GetDB().Where("user_id = ?", currentUserID(c))
	if c.QueryParam("unread") == "true" {
		query = query.Where("status = ?", model.NotificationUnread)
	}

	var notifications []model.Notification
	result := query.Order("created_at DESC").Find(&notifications)
	if result.Error != nil {
		log.Error("Failed to list notifications", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to retrieve notifications"})
	}

	return c.JSON(http.StatusOK, notifications)
}

// MarkNotificationRead marks one notification as read
func MarkNotificationRead(c echo.Context) error {
	log := logger.FromEcho(c)
	id := c.Param("id")

	var notification model.Notification
	if result := database.GetDB().Where("user_id = ?", currentUserID(c)).First(&notification, id); result.Error != nil {
		log.Error("Notification not found", zap.String("notification_id", id))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Notification not found"})
	}

	if err := database.GetDB().Model(&notification).Update("status", model.NotificationRead).Error; err != nil {
		log.Error("Failed to mark notification read", zap.String("notification_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to update notification"})
	}

	return c.JSON(http.StatusOK, notification)
}
