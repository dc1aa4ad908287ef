package dto

import (
	"github.com/LENAX/plan-engine/pkg/core/schedule"
)

// CreateProjectRequest 创建项目 / 生成计划请求
type CreateProjectRequest struct {
	Name        string        `json:"name" binding:"required"`
	Description string        `json:"description"`
	StartDate   schedule.Date `json:"start_date"`
}

// UpdateProjectRequest 部分更新项目请求，未提供的字段保持不变
type UpdateProjectRequest struct {
	Name        *string        `json:"name"`
	Description *string        `json:"description"`
	StartDate   *schedule.Date `json:"start_date"`
	Status      *string        `json:"status" binding:"omitempty,oneof=active completed archived"`
}

// SchedulePreviewRequest 排期预览请求（不落库）
// 任务字段: id, title, duration_days（或 duration）, dependencies, priority, status
type SchedulePreviewRequest struct {
	StartDate schedule.Date             `json:"start_date"`
	Tasks     []schedule.TaskDescriptor `json:"tasks"`
}

// ScheduleValidateRequest 依赖诊断请求
type ScheduleValidateRequest struct {
	Tasks []schedule.TaskDescriptor `json:"tasks"`
}

// TechStackRequest 技术栈推荐请求
type TechStackRequest struct {
	Description string `json:"description" binding:"required"`
}

// UpdateTaskStatusRequest 更新任务状态请求
type UpdateTaskStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// ListQueryRequest 通用列表查询请求
type ListQueryRequest struct {
	Limit  int `form:"limit" binding:"omitempty,min=1,max=100"`
	Offset int `form:"offset" binding:"omitempty,min=0"`
}

// GetDefaultLimit 获取默认limit
func (r *ListQueryRequest) GetDefaultLimit() int {
	if r.Limit <= 0 {
		return 20
	}
	return r.Limit
}
