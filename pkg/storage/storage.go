package storage

import (
	"context"
	"errors"
	"time"

	"github.com/LENAX/plan-engine/pkg/core/schedule"
)

// ErrNotFound 记录不存在
var ErrNotFound = errors.New("record not found")

// 项目状态
const (
	ProjectStatusActive    = "active"
	ProjectStatusCompleted = "completed"
	ProjectStatusArchived  = "archived"
)

// Project 项目记录
type Project struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	StartDate   schedule.Date `json:"start_date"`
	Status      string        `json:"status"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// Task 项目任务记录
// Key 是任务在项目内的标识，Dependencies 引用同一项目内其他任务的 Key。
type Task struct {
	ID           string                  `json:"id"`
	ProjectID    string                  `json:"project_id"`
	Key          string                  `json:"key"`
	Title        string                  `json:"title"`
	Description  string                  `json:"description"`
	DurationDays int                     `json:"duration_days"`
	StartDate    schedule.Date           `json:"start_date"`
	EndDate      schedule.Date           `json:"end_date"`
	Priority     string                  `json:"priority"`
	Status       string                  `json:"status"`
	Dependencies schedule.DependencyList `json:"dependencies"`
	Order        int                     `json:"order"`
}

// Descriptor 转为排期输入
func (t *Task) Descriptor() schedule.TaskDescriptor {
	deps := make(schedule.DependencyList, len(t.Dependencies))
	copy(deps, t.Dependencies)
	return schedule.TaskDescriptor{
		ID:           schedule.TaskID(t.Key),
		Title:        t.Title,
		Duration:     t.DurationDays,
		Dependencies: deps,
		Priority:     t.Priority,
		Status:       t.Status,
	}
}

// UserStory 用户故事记录
type UserStory struct {
	ID                 string    `json:"id"`
	ProjectID          string    `json:"project_id"`
	Title              string    `json:"title"`
	Description        string    `json:"description"`
	Points             int       `json:"points"`
	Priority           string    `json:"priority"`
	Status             string    `json:"status"`
	Sprint             int       `json:"sprint"`
	AcceptanceCriteria string    `json:"acceptance_criteria"`
	CreatedAt          time.Time `json:"created_at"`
}

// TaskDates 一个任务的排期结果
type TaskDates struct {
	TaskID    string
	StartDate schedule.Date
	EndDate   schedule.Date
}

// ProjectRepository 项目聚合存储接口（对外导出）
// 项目、任务和用户故事作为一个聚合存储，删除项目时级联删除其任务和用户故事。
type ProjectRepository interface {
	// CreateProject 创建项目，ID为空时自动生成
	CreateProject(ctx context.Context, p *Project) error
	// GetProject 根据ID查询项目
	GetProject(ctx context.Context, id string) (*Project, error)
	// ListProjects 按创建时间倒序分页查询
	ListProjects(ctx context.Context, limit, offset int) ([]*Project, error)
	// UpdateProject 更新项目的名称、描述、开始日期和状态
	UpdateProject(ctx context.Context, p *Project) error
	// DeleteProject 删除项目及其任务和用户故事
	DeleteProject(ctx context.Context, id string) error
	// ListProjectIDs 所有项目ID
	ListProjectIDs(ctx context.Context) ([]string, error)

	// SaveTasks 替换项目的全部任务（事务）
	SaveTasks(ctx context.Context, projectID string, tasks []*Task) error
	// ListTasks 按 Order 查询项目任务
	ListTasks(ctx context.Context, projectID string) ([]*Task, error)
	// GetTask 根据ID查询任务
	GetTask(ctx context.Context, id string) (*Task, error)
	// UpdateTaskStatus 更新任务状态
	UpdateTaskStatus(ctx context.Context, id, status string) error
	// UpdateTaskDates 批量写入排期日期（事务）
	UpdateTaskDates(ctx context.Context, dates []TaskDates) error

	// SaveUserStories 追加用户故事（事务）
	SaveUserStories(ctx context.Context, projectID string, stories []*UserStory) error
	// ListUserStories 按迭代查询项目的用户故事
	ListUserStories(ctx context.Context, projectID string) ([]*UserStory, error)
	// GetUserStory 根据ID查询用户故事
	GetUserStory(ctx context.Context, id string) (*UserStory, error)

	// Ping 检查数据库连接
	Ping(ctx context.Context) error
	// Close 关闭数据库连接
	Close() error
}
