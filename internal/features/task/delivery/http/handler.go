package http

import (
	"github.com/gin-gonic/gin"

	"carbon-forest-backend/internal/common/httpx"
	"carbon-forest-backend/internal/common/middleware"
	"carbon-forest-backend/internal/features/task/service"
)

type TaskHandler struct {
	service *service.Service
}

func NewTaskHandler(service *service.Service) *TaskHandler {
	return &TaskHandler{service: service}
}

func (h *TaskHandler) RegisterRoutes(router *gin.RouterGroup) {
	tasks := router.Group("/tasks")
	{
		tasks.GET("", h.list)
		tasks.POST("/:id/complete", h.complete)
	}
}

func (h *TaskHandler) list(c *gin.Context) {
	tasks, err := h.service.List(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		httpx.Error(c, err)
		return
	}
	httpx.OK(c, gin.H{"tasks": tasks})
}

func (h *TaskHandler) complete(c *gin.Context) {
	result, err := h.service.Complete(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		httpx.Error(c, err)
		return
	}
	httpx.OK(c, result)
}
