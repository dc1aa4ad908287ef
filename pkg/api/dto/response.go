package dto

import (
	"github.com/LENAX/plan-engine/pkg/core/dag"
	"github.com/LENAX/plan-engine/pkg/core/planner"
	"github.com/LENAX/plan-engine/pkg/core/schedule"
	"github.com/LENAX/plan-engine/pkg/storage"
)

// APIResponse 通用API响应结构
type APIResponse[T any] struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    T      `json:"data,omitempty"`
}

// NewSuccessResponse 创建成功响应
func NewSuccessResponse[T any](data T) APIResponse[T] {
	return APIResponse[T]{
		Code:    0,
		Message: "success",
		Data:    data,
	}
}

// NewErrorResponse 创建错误响应
func NewErrorResponse(code int, message string) APIResponse[any] {
	return APIResponse[any]{
		Code:    code,
		Message: message,
	}
}

// HealthResponse 健康检查响应
type HealthResponse struct {
	Status    string `json:"status"`
	Version   string `json:"version"`
	Uptime    string `json:"uptime"`
	Timestamp string `json:"timestamp"`
}

// ListResponse 列表响应
type ListResponse[T any] struct {
	Total   int  `json:"total"`
	Items   []T  `json:"items"`
	HasMore bool `json:"has_more"`
}

// SchedulePreviewResponse 排期预览结果
type SchedulePreviewResponse struct {
	Tasks    []schedule.ScheduledTask `json:"tasks"`
	Duration schedule.DurationSummary `json:"duration"`
}

// ScheduleValidateResponse 依赖诊断结果
type ScheduleValidateResponse struct {
	Clean  bool       `json:"clean"`
	Issues []string   `json:"issues"`
	Report dag.Report `json:"report"`
}

// ProjectDetail 项目详情（含任务和用户故事）
type ProjectDetail struct {
	*storage.Project
	Tasks       []*storage.Task          `json:"tasks"`
	UserStories []*storage.UserStory     `json:"user_stories"`
	Duration    schedule.DurationSummary `json:"duration"`
}

// GenerateResponse 完整生成结果
type GenerateResponse struct {
	Project     *storage.Project           `json:"project"`
	Tasks       []*storage.Task            `json:"tasks"`
	UserStories []*storage.UserStory       `json:"user_stories"`
	Metrics     planner.Metrics            `json:"metrics"`
	TechStack   planner.TechRecommendation `json:"tech_stack"`
	AgentsUsed  []planner.AgentStatus      `json:"agents_used"`
}

// GenerateTasksResponse 第一阶段结果
type GenerateTasksResponse struct {
	Project   *storage.Project           `json:"project"`
	Tasks     []*storage.Task            `json:"tasks"`
	TechStack planner.TechRecommendation `json:"tech_stack"`
}

// GanttResponse 第二阶段结果
type GanttResponse struct {
	ProjectID string                   `json:"project_id"`
	Tasks     []*storage.Task          `json:"tasks"`
	Duration  schedule.DurationSummary `json:"duration"`
	GanttCode string                   `json:"gantt_code"`
}

// BacklogResponse 第三阶段结果
type BacklogResponse struct {
	ProjectID   string                  `json:"project_id"`
	UserStories []*storage.UserStory    `json:"user_stories"`
	Velocity    planner.VelocityMetrics `json:"velocity"`
}
