package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"socialspace-api/models"
	"socialspace-api/services"
	"socialspace-api/utils"
)

type NotificationController struct {
	notifications *services.NotificationService
}

func NewNotificationController(notifications *services.NotificationService) *NotificationController {
	return &NotificationController{notifications: notifications}
}

func (nc *NotificationController) GetNotifications(c *gin.Context) {
	userID := c.GetString("user_id")
	page, limit := pagination(c)
	kind := models.NotificationKind(c.Query("kind"))

	notifications, total, err := nc.notifications.List(userID, kind, page, limit)
	if err != nil {
		utils.SendDomainError(c, err)
		return
	}

	utils.SendPaginated(c, notifications, page, limit, total)
}

func (nc *NotificationController) GetStats(c *gin.Context) {
	userID := c.GetString("user_id")

	stats, err := nc.notifications.Stats(userID)
	if err != nil {
		utils.SendDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

func (nc *NotificationController) MarkRead(c *gin.Context) {
	userID := c.GetString("user_id")
	notificationID := c.Param("notification_id")

	notification, err := nc.notifications.MarkRead(notificationID, userID)
	if err != nil {
		utils.SendDomainError(c, err)
		return
	}

	utils.SendSuccess(c, "Notification marked as read", gin.H{"notification": notification.ToResponse()})
}

func (nc *NotificationController) MarkAllRead(c *gin.Context) {
	userID := c.GetString("user_id")

	updated, err := nc.notifications.MarkAllRead(userID)
	if err != nil {
		utils.SendDomainError(c, err)
		return
	}

	utils.SendSuccess(c, "All notifications marked as read", gin.H{"updated": updated})
}
