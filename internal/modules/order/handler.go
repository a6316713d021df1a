package order

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/Matsupon/tailoring-system-sub001/internal/domain"
	"github.com/Matsupon/tailoring-system-sub001/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(public, customer, admin *gin.RouterGroup) {
	if public != nil {
		public.GET("/orders/booked-times", h.BookedTimes)
	}

	if customer != nil {
		customer.GET("/orders", h.ListMine)
		customer.GET("/orders/:id", h.Get)
	}

	if admin != nil {
		admin.GET("/orders/today-queue", h.TodayQueue)
		admin.GET("/orders/stats", h.Stats)
		admin.PATCH("/orders/:id/status", h.UpdateStatus)
		admin.PATCH("/orders/:id/handled", h.UpdateHandled)
		admin.POST("/orders/recalculate-queue", h.RecalculateQueue)
	}
}

func (h *Handler) BookedTimes(c *gin.Context) {
	pairs, err := h.service.BookedTimes(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}

	booked := make([]gin.H, 0, len(pairs))
	for _, p := range pairs {
		booked = append(booked, gin.H{
			"date": p.Date.Format(domain.SlotDateLayout),
			"time": p.Time,
		})
	}
	response.Success(c, http.StatusOK, gin.H{"booked": booked})
}

func (h *Handler) ListMine(c *gin.Context) {
	items, err := h.service.ListMine(c.Request.Context(), c.GetInt64("user_id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"orders": items})
}

func (h *Handler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	o, err := h.service.Get(c.Request.Context(), c.GetInt64("user_id"), domain.UserRole(c.GetString("role")), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"order": o})
}

func (h *Handler) TodayQueue(c *gin.Context) {
	items, err := h.service.TodayQueue(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"queue": items})
}

func (h *Handler) Stats(c *gin.Context) {
	stats, err := h.service.GetStats(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"stats": stats})
}

func (h *Handler) UpdateStatus(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	o, err := h.service.UpdateStatus(c.Request.Context(), id, req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"order": o})
}

func (h *Handler) UpdateHandled(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req UpdateHandledRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	o, err := h.service.SetHandled(c.Request.Context(), id, req.Handled)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"order": o})
}

func (h *Handler) RecalculateQueue(c *gin.Context) {
	if err := h.service.RecalculateQueue(c.Request.Context()); err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"status": "queue_recalculated"})
}

func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrValidation):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input")
	case errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Order not found")
	case errors.Is(err, ErrForbidden):
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "You cannot act on this order")
	case errors.Is(err, ErrInvalidTransition):
		response.Error(c, http.StatusConflict, "INVALID_TRANSITION", "Status change not allowed from the current status")
	default:
		response.Error(c, http.StatusInternalServerError, "INTERNAL", "Internal error")
	}
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid order ID")
		return 0, false
	}
	return id, true
}
