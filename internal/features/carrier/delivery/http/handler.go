package http

import (
	"github.com/gin-gonic/gin"

	"carbon-forest-backend/internal/common/httpx"
	"carbon-forest-backend/internal/common/middleware"
	"carbon-forest-backend/internal/features/carrier/service"
)

type CarrierHandler struct {
	service *service.Service
}

func NewCarrierHandler(service *service.Service) *CarrierHandler {
	return &CarrierHandler{service: service}
}

func (h *CarrierHandler) RegisterRoutes(router *gin.RouterGroup) {
	carrier := router.Group("/carrier")
	{
		carrier.GET("", h.evaluate)
		carrier.POST("/upgrade", h.upgrade)
	}
}

func (h *CarrierHandler) evaluate(c *gin.Context) {
	eval, err := h.service.Evaluate(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		httpx.Error(c, err)
		return
	}
	httpx.OK(c, eval)
}

func (h *CarrierHandler) upgrade(c *gin.Context) {
	result, err := h.service.Upgrade(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		httpx.Error(c, err)
		return
	}
	httpx.OK(c, result)
}
