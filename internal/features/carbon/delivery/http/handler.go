package http

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"carbon-forest-backend/internal/common/apperr"
	"carbon-forest-backend/internal/common/httpx"
	"carbon-forest-backend/internal/common/middleware"
	"carbon-forest-backend/internal/features/carbon/models"
	"carbon-forest-backend/internal/features/carbon/service"
)

var errBadBody = apperr.New(apperr.KindValidation, "invalid request body")

type CarbonHandler struct {
	service *service.Service
}

func NewCarbonHandler(service *service.Service) *CarbonHandler {
	return &CarbonHandler{service: service}
}

func (h *CarbonHandler) RegisterRoutes(router *gin.RouterGroup) {
	carbon := router.Group("/carbon")
	{
		carbon.POST("/activities", h.logActivity)
		carbon.GET("/activities", h.history)
		carbon.PUT("/activities/:id", h.update)
		carbon.DELETE("/activities/:id", h.delete)
		carbon.GET("/stats", h.stats)
	}
}

type logActivityRequest struct {
	Category string  `json:"category" binding:"required"`
	Value    float64 `json:"value" binding:"required"`
	Note     string  `json:"note"`
	Date     string  `json:"date"`
}

func (h *CarbonHandler) logActivity(c *gin.Context) {
	var req logActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.Error(c, errBadBody)
		return
	}
	result, err := h.service.LogActivity(c.Request.Context(), middleware.UserID(c),
		models.Category(req.Category), req.Value, req.Note, req.Date)
	if err != nil {
		httpx.Error(c, err)
		return
	}
	httpx.Created(c, result)
}

func (h *CarbonHandler) history(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	filter := models.ListFilter{
		Category: models.Category(c.Query("category")),
		From:     c.Query("from"),
		To:       c.Query("to"),
		Limit:    limit,
		Offset:   offset,
	}
	records, err := h.service.History(c.Request.Context(), middleware.UserID(c), filter)
	if err != nil {
		httpx.Error(c, err)
		return
	}
	httpx.OK(c, gin.H{"activities": records})
}

type updateActivityRequest struct {
	Category *string  `json:"category"`
	Value    *float64 `json:"value"`
	Note     *string  `json:"note"`
	Date     *string  `json:"date"`
}

func (h *CarbonHandler) update(c *gin.Context) {
	var req updateActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.Error(c, errBadBody)
		return
	}
	in := service.UpdateInput{Value: req.Value, Note: req.Note, Date: req.Date}
	if req.Category != nil {
		cat := models.Category(*req.Category)
		in.Category = &cat
	}
	record, err := h.service.Update(c.Request.Context(), middleware.UserID(c), c.Param("id"), in)
	if err != nil {
		httpx.Error(c, err)
		return
	}
	httpx.OK(c, record)
}

func (h *CarbonHandler) delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), middleware.UserID(c), c.Param("id")); err != nil {
		httpx.Error(c, err)
		return
	}
	httpx.OK(c, gin.H{"deleted": true})
}

func (h *CarbonHandler) stats(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context(), middleware.UserID(c), c.Query("period"))
	if err != nil {
		httpx.Error(c, err)
		return
	}
	httpx.OK(c, stats)
}
