package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/LENAX/plan-engine/pkg/api/dto"
	"github.com/LENAX/plan-engine/pkg/core/engine"
)

// GenerateHandler 计划生成API处理器（完整生成和三个分阶段接口）
type GenerateHandler struct {
	engine *engine.Engine
}

// NewGenerateHandler 创建GenerateHandler
func NewGenerateHandler(eng *engine.Engine) *GenerateHandler {
	return &GenerateHandler{engine: eng}
}

// Generate 一次性生成任务、排期、用户故事和技术栈推荐
// POST /api/v1/projects/generate
func (h *GenerateHandler) Generate(c *gin.Context) {
	var req dto.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	result, err := h.engine.GenerateProject(c.Request.Context(), engine.ProjectInput{
		Name:        req.Name,
		Description: req.Description,
		StartDate:   req.StartDate,
	})
	if err != nil {
		writeError(c, "生成项目计划失败", err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewSuccessResponse(dto.GenerateResponse{
		Project:     result.Project,
		Tasks:       nonNilTasks(result.Tasks),
		UserStories: nonNilStories(result.UserStories),
		Metrics:     result.Plan.Metrics,
		TechStack:   result.Tech,
		AgentsUsed:  result.Plan.AgentsUsed,
	}))
}

// GenerateTasks 第一阶段：创建项目并生成任务
// POST /api/v1/projects/generate-tasks
func (h *GenerateHandler) GenerateTasks(c *gin.Context) {
	var req dto.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	result, err := h.engine.GenerateTasks(c.Request.Context(), engine.ProjectInput{
		Name:        req.Name,
		Description: req.Description,
		StartDate:   req.StartDate,
	})
	if err != nil {
		writeError(c, "生成任务失败", err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewSuccessResponse(dto.GenerateTasksResponse{
		Project:   result.Project,
		Tasks:     nonNilTasks(result.Tasks),
		TechStack: result.Tech,
	}))
}

// GenerateGantt 第二阶段：排期并生成甘特图，项目没有任务时返回400
// POST /api/v1/projects/:id/generate-gantt
func (h *GenerateHandler) GenerateGantt(c *gin.Context) {
	id := c.Param("id")
	result, err := h.engine.GenerateGantt(c.Request.Context(), id)
	if err != nil {
		writeError(c, "生成甘特图失败", err)
		return
	}

	c.JSON(http.StatusOK, dto.NewSuccessResponse(dto.GanttResponse{
		ProjectID: id,
		Tasks:     nonNilTasks(result.Tasks),
		Duration:  result.Duration,
		GanttCode: result.GanttCode,
	}))
}

// GenerateBacklog 第三阶段：生成用户故事
// POST /api/v1/projects/:id/generate-backlog
func (h *GenerateHandler) GenerateBacklog(c *gin.Context) {
	id := c.Param("id")
	result, err := h.engine.GenerateBacklog(c.Request.Context(), id)
	if err != nil {
		writeError(c, "生成用户故事失败", err)
		return
	}

	c.JSON(http.StatusOK, dto.NewSuccessResponse(dto.BacklogResponse{
		ProjectID:   id,
		UserStories: nonNilStories(result.UserStories),
		Velocity:    result.Velocity,
	}))
}
