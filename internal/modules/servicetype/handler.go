package servicetype

import (
	"context"
	"net/http"

	"github.com/Matsupon/tailoring-system-sub001/internal/domain"
	"github.com/Matsupon/tailoring-system-sub001/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

type ServiceTypeReader interface {
	List(ctx context.Context) ([]domain.ServiceType, error)
}

// Handler exposes the read-only reference catalog of offered services.
type Handler struct {
	serviceTypes ServiceTypeReader
}

func NewHandler(serviceTypes ServiceTypeReader) *Handler {
	return &Handler{serviceTypes: serviceTypes}
}

func (h *Handler) RegisterRoutes(public *gin.RouterGroup) {
	public.GET("/service-types", h.List)
}

func (h *Handler) List(c *gin.Context) {
	items, err := h.serviceTypes.List(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL", "Internal error")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"service_types": items})
}
