package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/LENAX/plan-engine/pkg/api/dto"
	"github.com/LENAX/plan-engine/pkg/core/engine"
)

// TaskHandler 任务和用户故事API处理器
type TaskHandler struct {
	engine *engine.Engine
}

// NewTaskHandler 创建TaskHandler
func NewTaskHandler(eng *engine.Engine) *TaskHandler {
	return &TaskHandler{engine: eng}
}

// Get 获取任务
// GET /api/v1/tasks/:id
func (h *TaskHandler) Get(c *gin.Context) {
	task, err := h.engine.Repository().GetTask(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, "查询任务失败", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(task))
}

// UpdateStatus 更新任务状态
// PATCH /api/v1/tasks/:id/status
func (h *TaskHandler) UpdateStatus(c *gin.Context) {
	var req dto.UpdateTaskStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	task, err := h.engine.UpdateTaskStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		writeError(c, "更新任务状态失败", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(task))
}

// GetUserStory 获取用户故事
// GET /api/v1/user-stories/:id
func (h *TaskHandler) GetUserStory(c *gin.Context) {
	story, err := h.engine.Repository().GetUserStory(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, "查询用户故事失败", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(story))
}
