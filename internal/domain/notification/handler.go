package notification

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/Matsupon/tailoring-system-sub001/internal/pkg/response"

	"github.com/gin-gonic/gin"

	"gorm.io/gorm"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the inbox endpoints on every authenticated group it
// is given. Admins and customers share the same inbox surface; rows are
// always scoped to the caller.
func (h *Handler) RegisterRoutes(groups ...*gin.RouterGroup) {
	for _, g := range groups {
		if g == nil {
			continue
		}
		g.GET("/notifications", h.List)
		g.PATCH("/notifications/:id/read", h.MarkRead)
		g.PATCH("/notifications/read-all", h.MarkAllRead)
		g.PATCH("/notifications/:id/viewed", h.MarkViewed)
		g.PATCH("/notifications/viewed-all", h.MarkAllViewed)
	}
}

func (h *Handler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	items, unread, err := h.service.GetUserNotifications(c.Request.Context(), c.GetInt64("user_id"), limit)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL", "Internal error")
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"notifications": items,
		"unread_count":  unread,
	})
}

func (h *Handler) MarkRead(c *gin.Context) {
	h.mark(c, h.service.MarkAsRead)
}

func (h *Handler) MarkViewed(c *gin.Context) {
	h.mark(c, h.service.MarkAsViewed)
}

func (h *Handler) MarkAllRead(c *gin.Context) {
	if err := h.service.MarkAllAsRead(c.Request.Context(), c.GetInt64("user_id")); err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL", "Internal error")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) MarkAllViewed(c *gin.Context) {
	if err := h.service.MarkAllAsViewed(c.Request.Context(), c.GetInt64("user_id")); err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL", "Internal error")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) mark(c *gin.Context, fn func(ctx context.Context, id, userID int64) error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid notification ID")
		return
	}

	if err := fn(c.Request.Context(), id, c.GetInt64("user_id")); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Notification not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "INTERNAL", "Internal error")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"status": "ok"})
}
