package planner

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/LENAX/plan-engine/pkg/core/schedule"
	"github.com/LENAX/plan-engine/pkg/logx"
)

// 各阶段名称
const (
	AgentPlanner   = "Task Planner"
	AgentScheduler = "Scheduler"
	AgentBacklog   = "Backlog Planner"
)

// PlannedTask 排期后的生成任务
type PlannedTask struct {
	schedule.ScheduledTask
	Description string `json:"description"`
	Order       int    `json:"order"`
}

// UnmarshalJSON 先解码排期结果，再解码生成器附加字段
func (t *PlannedTask) UnmarshalJSON(data []byte) error {
	if err := t.ScheduledTask.UnmarshalJSON(data); err != nil {
		return err
	}
	var info generationInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return err
	}
	t.Description, t.Order = info.Description, info.Order
	return nil
}

// AgentStatus 参与生成的阶段及其状态
type AgentStatus struct {
	Name   string `json:"name"`
	Status string `json:"status"`
}

// Metrics 项目度量
type Metrics struct {
	ProjectDuration schedule.DurationSummary `json:"project_duration"`
	AgileMetrics    VelocityMetrics          `json:"agile_metrics"`
}

// Plan 完整生成结果
type Plan struct {
	Name        string        `json:"name"`
	Description string        `json:"description"`
	StartDate   schedule.Date `json:"start_date"`
	CreatedAt   time.Time     `json:"created_at"`
	Tasks       []PlannedTask `json:"tasks"`
	UserStories []Story       `json:"user_stories"`
	Metrics     Metrics       `json:"metrics"`
	AgentsUsed  []AgentStatus `json:"agents_used"`
}

// Options 协调器参数
type Options struct {
	SprintSize int
	Velocity   int
}

// Coordinator 依次执行任务生成、排期和待办生成
type Coordinator struct {
	tasks   TaskGenerator
	stories StoryGenerator
	advisor *TechAdvisor
	opts    Options
	log     logx.Logger
}

// NewCoordinator 创建Coordinator
func NewCoordinator(tasks TaskGenerator, stories StoryGenerator, opts Options, log logx.Logger) *Coordinator {
	if opts.SprintSize <= 0 {
		opts.SprintSize = DefaultSprintSize
	}
	if opts.Velocity <= 0 {
		opts.Velocity = DefaultVelocity
	}
	return &Coordinator{
		tasks:   tasks,
		stories: stories,
		advisor: NewTechAdvisor(),
		opts:    opts,
		log:     log.With(logx.String("component", "coordinator")),
	}
}

// Options 当前参数
func (c *Coordinator) Options() Options {
	return c.opts
}

// GenerateTasks 第一阶段：只生成任务
func (c *Coordinator) GenerateTasks(ctx context.Context, description string) ([]GeneratedTask, error) {
	tasks, err := c.tasks.GenerateTasks(ctx, description)
	if err != nil {
		return nil, fmt.Errorf("生成任务失败: %w", err)
	}
	c.log.Info("✅ tasks generated", logx.Int("count", len(tasks)))
	return tasks, nil
}

// GenerateBacklog 第三阶段：生成用户故事并分配迭代
func (c *Coordinator) GenerateBacklog(ctx context.Context, description string) ([]Story, VelocityMetrics, error) {
	stories, err := c.stories.GenerateStories(ctx, description)
	if err != nil {
		return nil, VelocityMetrics{}, fmt.Errorf("生成用户故事失败: %w", err)
	}
	stories = AssignSprints(stories, c.opts.SprintSize)
	c.log.Info("✅ user stories generated", logx.Int("count", len(stories)))
	return stories, CalculateVelocity(stories, c.opts.Velocity), nil
}

// Recommend 技术栈推荐
func (c *Coordinator) Recommend(description string) TechRecommendation {
	return c.advisor.Recommend(description)
}

// Generate 生成完整项目计划：任务 -> 排期 -> 待办 -> 度量
func (c *Coordinator) Generate(ctx context.Context, name, description string, start schedule.Date) (*Plan, error) {
	c.log.Info("🚀 generating project plan", logx.String("project", name))

	c.log.Debug("step 1/3: tasks")
	generated, err := c.GenerateTasks(ctx, description)
	if err != nil {
		return nil, err
	}

	c.log.Debug("step 2/3: schedule")
	planned := SchedulePlan(generated, start)

	c.log.Debug("step 3/3: backlog")
	stories, velocity, err := c.GenerateBacklog(ctx, description)
	if err != nil {
		return nil, err
	}

	scheduled := make([]schedule.ScheduledTask, len(planned))
	for i, t := range planned {
		scheduled[i] = t.ScheduledTask
	}

	plan := &Plan{
		Name:        name,
		Description: NormalizeDescription(description),
		StartDate:   start,
		CreatedAt:   time.Now().UTC(),
		Tasks:       planned,
		UserStories: stories,
		Metrics: Metrics{
			ProjectDuration: schedule.CalculateProjectDuration(scheduled),
			AgileMetrics:    velocity,
		},
		AgentsUsed: []AgentStatus{
			{Name: AgentPlanner, Status: "completed"},
			{Name: AgentScheduler, Status: "completed"},
			{Name: AgentBacklog, Status: "completed"},
		},
	}

	c.log.Info("✅ project plan generated",
		logx.String("project", name),
		logx.Int("tasks", len(plan.Tasks)),
		logx.Int("stories", len(plan.UserStories)),
		logx.Int("total_days", plan.Metrics.ProjectDuration.TotalDays))
	return plan, nil
}

// SchedulePlan 对生成任务排期，保留描述和顺序信息，结果按开始日期排序
func SchedulePlan(tasks []GeneratedTask, start schedule.Date) []PlannedTask {
	scheduled, positions := schedule.CreateScheduleIndexed(Descriptors(tasks), start)
	planned := make([]PlannedTask, len(scheduled))
	for i, st := range scheduled {
		g := tasks[positions[i]]
		planned[i] = PlannedTask{ScheduledTask: st, Description: g.Description, Order: g.Order}
	}
	return planned
}
