package http

import (
	"github.com/gin-gonic/gin"

	"carbon-forest-backend/internal/common/apperr"
	"carbon-forest-backend/internal/common/httpx"
	"carbon-forest-backend/internal/common/middleware"
	"carbon-forest-backend/internal/features/social/models"
	"carbon-forest-backend/internal/features/social/service"
)

var errBadBody = apperr.New(apperr.KindValidation, "invalid request body")

type SocialHandler struct {
	service *service.Service
}

func NewSocialHandler(service *service.Service) *SocialHandler {
	return &SocialHandler{service: service}
}

func (h *SocialHandler) RegisterRoutes(router *gin.RouterGroup) {
	social := router.Group("/social")
	{
		social.POST("/friends", h.request)
		social.GET("/friends", h.friends)
		social.GET("/friends/requests", h.requests)
		social.POST("/friends/:id/accept", h.accept)
		social.POST("/friends/:id/reject", h.reject)
		social.DELETE("/friends/:id", h.remove)
		social.GET("/leaderboard", h.leaderboard)
	}
}

type friendRequestBody struct {
	FriendID string `json:"friend_id" binding:"required"`
}

func (h *SocialHandler) request(c *gin.Context) {
	var req friendRequestBody
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.Error(c, errBadBody)
		return
	}
	f, err := h.service.Request(c.Request.Context(), middleware.UserID(c), req.FriendID)
	if err != nil {
		httpx.Error(c, err)
		return
	}
	httpx.Created(c, f)
}

func (h *SocialHandler) friends(c *gin.Context) {
	friends, err := h.service.Friends(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		httpx.Error(c, err)
		return
	}
	httpx.OK(c, gin.H{"friends": friends})
}

func (h *SocialHandler) requests(c *gin.Context) {
	requests, err := h.service.Requests(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		httpx.Error(c, err)
		return
	}
	httpx.OK(c, gin.H{"requests": requests})
}

func (h *SocialHandler) accept(c *gin.Context) {
	if err := h.service.Accept(c.Request.Context(), middleware.UserID(c), c.Param("id")); err != nil {
		httpx.Error(c, err)
		return
	}
	httpx.OK(c, gin.H{"accepted": true})
}

func (h *SocialHandler) reject(c *gin.Context) {
	if err := h.service.Reject(c.Request.Context(), middleware.UserID(c), c.Param("id")); err != nil {
		httpx.Error(c, err)
		return
	}
	httpx.OK(c, gin.H{"rejected": true})
}

func (h *SocialHandler) remove(c *gin.Context) {
	if err := h.service.Remove(c.Request.Context(), middleware.UserID(c), c.Param("id")); err != nil {
		httpx.Error(c, err)
		return
	}
	httpx.OK(c, gin.H{"removed": true})
}

func (h *SocialHandler) leaderboard(c *gin.Context) {
	entries, err := h.service.Leaderboard(c.Request.Context(), models.LeaderboardType(c.Query("type")))
	if err != nil {
		httpx.Error(c, err)
		return
	}
	httpx.OK(c, gin.H{"leaderboard": entries})
}
