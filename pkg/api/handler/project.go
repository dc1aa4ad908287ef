package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/LENAX/plan-engine/pkg/api/dto"
	"github.com/LENAX/plan-engine/pkg/core/engine"
	"github.com/LENAX/plan-engine/pkg/storage"
)

// ProjectHandler 项目API处理器
type ProjectHandler struct {
	engine *engine.Engine
}

// NewProjectHandler 创建ProjectHandler
func NewProjectHandler(eng *engine.Engine) *ProjectHandler {
	return &ProjectHandler{engine: eng}
}

// Create 创建空项目
// POST /api/v1/projects
func (h *ProjectHandler) Create(c *gin.Context) {
	var req dto.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	project, err := h.engine.CreateProject(c.Request.Context(), engine.ProjectInput{
		Name:        req.Name,
		Description: req.Description,
		StartDate:   req.StartDate,
	})
	if err != nil {
		writeError(c, "创建项目失败", err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(project))
}

// List 分页列出项目（按创建时间倒序）
// GET /api/v1/projects
func (h *ProjectHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	var query dto.ListQueryRequest
	if err := c.ShouldBindQuery(&query); err != nil {
		badRequest(c, err)
		return
	}

	repo := h.engine.Repository()
	ids, err := repo.ListProjectIDs(ctx)
	if err != nil {
		writeError(c, "查询项目失败", err)
		return
	}

	limit := query.GetDefaultLimit()
	projects, err := repo.ListProjects(ctx, limit, query.Offset)
	if err != nil {
		writeError(c, "查询项目失败", err)
		return
	}
	if projects == nil {
		projects = []*storage.Project{}
	}

	total := len(ids)
	c.JSON(http.StatusOK, dto.NewSuccessResponse(dto.ListResponse[*storage.Project]{
		Total:   total,
		Items:   projects,
		HasMore: query.Offset+limit < total,
	}))
}

// Get 获取项目详情（含任务、用户故事和工期汇总）
// GET /api/v1/projects/:id
func (h *ProjectHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")
	repo := h.engine.Repository()

	project, err := repo.GetProject(ctx, id)
	if err != nil {
		writeError(c, "查询项目失败", err)
		return
	}
	tasks, err := repo.ListTasks(ctx, id)
	if err != nil {
		writeError(c, "查询任务失败", err)
		return
	}
	stories, err := repo.ListUserStories(ctx, id)
	if err != nil {
		writeError(c, "查询用户故事失败", err)
		return
	}
	duration, err := h.engine.ProjectDuration(ctx, id)
	if err != nil {
		writeError(c, "计算工期失败", err)
		return
	}

	c.JSON(http.StatusOK, dto.NewSuccessResponse(dto.ProjectDetail{
		Project:     project,
		Tasks:       nonNilTasks(tasks),
		UserStories: nonNilStories(stories),
		Duration:    duration,
	}))
}

// Update 部分更新项目
// PUT /api/v1/projects/:id
func (h *ProjectHandler) Update(c *gin.Context) {
	var req dto.UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	project, err := h.engine.UpdateProject(c.Request.Context(), c.Param("id"), engine.ProjectUpdate{
		Name:        req.Name,
		Description: req.Description,
		StartDate:   req.StartDate,
		Status:      req.Status,
	})
	if err != nil {
		writeError(c, "更新项目失败", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(project))
}

// Delete 删除项目及其任务和用户故事
// DELETE /api/v1/projects/:id
func (h *ProjectHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if err := h.engine.DeleteProject(c.Request.Context(), id); err != nil {
		writeError(c, "删除项目失败", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(map[string]string{
		"id":     id,
		"status": "deleted",
	}))
}

// Tasks 项目任务列表（按生成顺序）
// GET /api/v1/projects/:id/tasks
func (h *ProjectHandler) Tasks(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")
	repo := h.engine.Repository()

	if _, err := repo.GetProject(ctx, id); err != nil {
		writeError(c, "查询项目失败", err)
		return
	}
	tasks, err := repo.ListTasks(ctx, id)
	if err != nil {
		writeError(c, "查询任务失败", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(nonNilTasks(tasks)))
}

// UserStories 项目用户故事列表（按迭代）
// GET /api/v1/projects/:id/user-stories
func (h *ProjectHandler) UserStories(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")
	repo := h.engine.Repository()

	if _, err := repo.GetProject(ctx, id); err != nil {
		writeError(c, "查询项目失败", err)
		return
	}
	stories, err := repo.ListUserStories(ctx, id)
	if err != nil {
		writeError(c, "查询用户故事失败", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(nonNilStories(stories)))
}

// Duration 根据已存储的任务日期汇总项目工期
// GET /api/v1/projects/:id/duration
func (h *ProjectHandler) Duration(c *gin.Context) {
	duration, err := h.engine.ProjectDuration(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, "计算工期失败", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(duration))
}

func nonNilTasks(tasks []*storage.Task) []*storage.Task {
	if tasks == nil {
		return []*storage.Task{}
	}
	return tasks
}

func nonNilStories(stories []*storage.UserStory) []*storage.UserStory {
	if stories == nil {
		return []*storage.UserStory{}
	}
	return stories
}
