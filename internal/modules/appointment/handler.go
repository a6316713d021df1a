package appointment

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/Matsupon/tailoring-system-sub001/internal/domain"
	"github.com/Matsupon/tailoring-system-sub001/internal/pkg/response"
	"github.com/Matsupon/tailoring-system-sub001/internal/pkg/validator"

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
		public.GET("/appointments/available-slots", h.AvailableSlots)
	}

	if customer != nil {
		customer.POST("/appointments", h.Create)
		customer.GET("/appointments", h.ListMine)
		customer.GET("/appointments/:id", h.Get)
		customer.PATCH("/appointments/:id", h.Reschedule)
		customer.DELETE("/appointments/:id/cancel", h.Cancel)
	}

	if admin != nil {
		admin.GET("/appointments", h.ListAll)
		admin.POST("/appointments/:id/accept", h.Accept)
		admin.POST("/appointments/:id/reject", h.Reject)
		admin.POST("/appointments/:id/refund", h.Refund)
		admin.DELETE("/appointments/:id", h.Delete)
	}
}

func (h *Handler) Create(c *gin.Context) {
	var req CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	if details := validator.Validate(req); details != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid appointment fields", details)
		return
	}

	userID := c.GetInt64("user_id")
	a, err := h.service.Create(c.Request.Context(), userID, req)
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"appointment": a})
}

func (h *Handler) AvailableSlots(c *gin.Context) {
	date := c.Query("date")
	if date == "" {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "date query parameter is required")
		return
	}

	excludeAppointmentID, _ := strconv.ParseInt(c.Query("exclude_appointment_id"), 10, 64)
	excludeOrderID, _ := strconv.ParseInt(c.Query("exclude_order_id"), 10, 64)

	slots, err := h.service.AvailableSlots(c.Request.Context(), date, excludeAppointmentID, excludeOrderID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"date": date, "slots": slots})
}

func (h *Handler) ListMine(c *gin.Context) {
	userID := c.GetInt64("user_id")
	items, err := h.service.ListMine(c.Request.Context(), userID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"appointments": items})
}

func (h *Handler) ListAll(c *gin.Context) {
	items, err := h.service.ListAll(c.Request.Context(), c.Query("status"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"appointments": items})
}

func (h *Handler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	a, err := h.service.Get(c.Request.Context(), c.GetInt64("user_id"), domain.UserRole(c.GetString("role")), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"appointment": a})
}

func (h *Handler) Reschedule(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req RescheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	a, err := h.service.Reschedule(c.Request.Context(), c.GetInt64("user_id"), domain.UserRole(c.GetString("role")), id, req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"appointment": a})
}

func (h *Handler) Cancel(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.service.Cancel(c.Request.Context(), c.GetInt64("user_id"), id); err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"status": "cancelled"})
}

func (h *Handler) Accept(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	o, err := h.service.Accept(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"order": o})
}

func (h *Handler) Reject(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req RejectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "refund_evidence is required")
		return
	}

	if err := h.service.Reject(c.Request.Context(), id, req); err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"status": "rejected"})
}

func (h *Handler) Refund(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req RefundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "refund_evidence is required")
		return
	}

	if err := h.service.Refund(c.Request.Context(), id, req); err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"status": "refund_processed"})
}

func (h *Handler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"status": "deleted"})
}

func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrValidation):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input")
	case errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Appointment not found")
	case errors.Is(err, ErrForbidden):
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "You cannot act on this appointment")
	case errors.Is(err, ErrSlotTaken):
		response.Error(c, http.StatusConflict, "SLOT_CONFLICT", "Time slot is already taken")
	case errors.Is(err, ErrInvalidState):
		response.Error(c, http.StatusConflict, "INVALID_STATE", "Action not allowed in the current state")
	case errors.Is(err, ErrQueueConflict):
		response.Error(c, http.StatusConflict, "QUEUE_CONFLICT", "Queue number was assigned concurrently, retry")
	default:
		response.Error(c, http.StatusInternalServerError, "INTERNAL", "Internal error")
	}
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid appointment ID")
		return 0, false
	}
	return id, true
}
