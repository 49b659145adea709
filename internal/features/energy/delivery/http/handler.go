package http

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"carbon-forest-backend/internal/common/httpx"
	"carbon-forest-backend/internal/common/middleware"
	"carbon-forest-backend/internal/features/energy/service"
)

type EnergyHandler struct {
	ledger   *service.Ledger
	balls    *service.BallService
	overflow *service.OverflowService
}

func NewEnergyHandler(ledger *service.Ledger, balls *service.BallService, overflow *service.OverflowService) *EnergyHandler {
	return &EnergyHandler{ledger: ledger, balls: balls, overflow: overflow}
}

func (h *EnergyHandler) RegisterRoutes(router *gin.RouterGroup) {
	energy := router.Group("/energy")
	{
		energy.GET("/balls", h.listBalls)
		energy.POST("/balls/:id/collect", h.collect)
		energy.POST("/water", h.water)
		energy.GET("/overflow/:ownerID", h.checkOverflow)
		energy.POST("/overflow/:ownerID/claim", h.claimOverflow)
		energy.GET("/transactions", h.transactions)
	}
}

func (h *EnergyHandler) listBalls(c *gin.Context) {
	balls, err := h.balls.List(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		httpx.Error(c, err)
		return
	}
	httpx.OK(c, gin.H{"balls": balls})
}

func (h *EnergyHandler) collect(c *gin.Context) {
	result, err := h.balls.Collect(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		httpx.Error(c, err)
		return
	}
	httpx.OK(c, result)
}

func (h *EnergyHandler) water(c *gin.Context) {
	result, err := h.balls.Water(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		httpx.Error(c, err)
		return
	}
	httpx.OK(c, result)
}

func (h *EnergyHandler) checkOverflow(c *gin.Context) {
	total, err := h.overflow.Check(c.Request.Context(), c.Param("ownerID"))
	if err != nil {
		httpx.Error(c, err)
		return
	}
	httpx.OK(c, gin.H{"owner_id": c.Param("ownerID"), "overflow_energy": total})
}

func (h *EnergyHandler) claimOverflow(c *gin.Context) {
	result, err := h.overflow.Claim(c.Request.Context(), middleware.UserID(c), c.Param("ownerID"))
	if err != nil {
		httpx.Error(c, err)
		return
	}
	httpx.OK(c, result)
}

func (h *EnergyHandler) transactions(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	txs, err := h.ledger.Transactions(c.Request.Context(), middleware.UserID(c), limit, offset)
	if err != nil {
		httpx.Error(c, err)
		return
	}
	httpx.OK(c, gin.H{"transactions": txs})
}
