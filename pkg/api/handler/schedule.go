package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/LENAX/plan-engine/pkg/api/dto"
	"github.com/LENAX/plan-engine/pkg/core/dag"
	"github.com/LENAX/plan-engine/pkg/core/planner"
	"github.com/LENAX/plan-engine/pkg/core/schedule"
)

// ScheduleHandler 无状态的排期计算和技术栈推荐，不访问存储
type ScheduleHandler struct {
	advisor *planner.TechAdvisor
}

// NewScheduleHandler 创建ScheduleHandler
func NewScheduleHandler() *ScheduleHandler {
	return &ScheduleHandler{advisor: planner.NewTechAdvisor()}
}

// Preview 按给定任务列表计算排期
// POST /api/v1/schedule/preview
func (h *ScheduleHandler) Preview(c *gin.Context) {
	var req dto.SchedulePreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	start := req.StartDate
	if start.IsZero() {
		start = schedule.Today()
	}

	tasks := schedule.CreateSchedule(req.Tasks, start)
	c.JSON(http.StatusOK, dto.NewSuccessResponse(dto.SchedulePreviewResponse{
		Tasks:    tasks,
		Duration: schedule.CalculateProjectDuration(tasks),
	}))
}

// Validate 诊断依赖关系：前向引用、未知引用、自引用、重复ID和环
// POST /api/v1/schedule/validate
func (h *ScheduleHandler) Validate(c *gin.Context) {
	var req dto.ScheduleValidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	report := dag.Analyze(req.Tasks)
	issues := report.Issues()
	if issues == nil {
		issues = []string{}
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(dto.ScheduleValidateResponse{
		Clean:  report.Clean(),
		Issues: issues,
		Report: report,
	}))
}

// TechStack 根据项目描述推荐技术栈
// POST /api/v1/tech-stack
func (h *ScheduleHandler) TechStack(c *gin.Context) {
	var req dto.TechStackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(h.advisor.Recommend(req.Description)))
}
