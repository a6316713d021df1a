package feedback

import (
	"errors"
	"net/http"
	"strconv"

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

func (h *Handler) RegisterRoutes(customer, staff, admin *gin.RouterGroup) {
	if customer != nil {
		customer.GET("/feedback/pending", h.Pending)
		customer.POST("/feedback", h.Submit)
	}

	if staff != nil {
		staff.PATCH("/feedback/:id/respond", h.Respond)
	}

	if admin != nil {
		admin.GET("/feedback", h.List)
	}
}

func (h *Handler) Pending(c *gin.Context) {
	o, err := h.service.PendingFor(c.Request.Context(), c.GetInt64("user_id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"order": o})
}

func (h *Handler) Submit(c *gin.Context) {
	var req SubmitFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	if details := validator.Validate(req); details != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid feedback fields", details)
		return
	}

	f, err := h.service.Submit(c.Request.Context(), c.GetInt64("user_id"), req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"feedback": f})
}

func (h *Handler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	items, err := h.service.List(c.Request.Context(), limit, offset)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"feedback": items})
}

func (h *Handler) Respond(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid feedback ID")
		return
	}

	var req RespondRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "response is required")
		return
	}

	f, err := h.service.Respond(c.Request.Context(), id, req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"feedback": f})
}

func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrValidation):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input")
	case errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Not found")
	case errors.Is(err, ErrForbidden):
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "You cannot act on this feedback")
	case errors.Is(err, ErrOrderNotReady):
		response.Error(c, http.StatusConflict, "ORDER_NOT_FINISHED", "Feedback is only accepted for finished orders")
	case errors.Is(err, ErrAlreadyExists):
		response.Error(c, http.StatusConflict, "FEEDBACK_EXISTS", "Feedback was already submitted for this order")
	case errors.Is(err, ErrAlreadyAnswered):
		response.Error(c, http.StatusConflict, "ALREADY_ANSWERED", "Feedback already has a response")
	default:
		response.Error(c, http.StatusInternalServerError, "INTERNAL", "Internal error")
	}
}
