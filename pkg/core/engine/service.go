package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/LENAX/plan-engine/pkg/core/events"
	"github.com/LENAX/plan-engine/pkg/core/gantt"
	"github.com/LENAX/plan-engine/pkg/core/planner"
	"github.com/LENAX/plan-engine/pkg/core/schedule"
	"github.com/LENAX/plan-engine/pkg/logx"
	"github.com/LENAX/plan-engine/pkg/storage"
)

// 重排触发来源
const (
	TriggerAPI      = "api"
	TriggerCron     = "cron"
	TriggerGenerate = "generate"
)

// ProjectInput 创建或生成项目的输入
type ProjectInput struct {
	Name        string
	Description string
	StartDate   schedule.Date // 为零值时使用当天
}

// ProjectUpdate 部分更新，nil字段保持不变
type ProjectUpdate struct {
	Name        *string
	Description *string
	StartDate   *schedule.Date
	Status      *string
}

// GenerateResult 完整生成结果
type GenerateResult struct {
	Project     *storage.Project
	Plan        *planner.Plan
	Tasks       []*storage.Task // 按开始日期排序
	UserStories []*storage.UserStory
	Tech        planner.TechRecommendation
}

// TasksResult 第一阶段结果
type TasksResult struct {
	Project *storage.Project
	Tasks   []*storage.Task
	Tech    planner.TechRecommendation
}

// ScheduleResult 排期结果
type ScheduleResult struct {
	Project  *storage.Project
	Tasks    []*storage.Task // 按开始日期排序
	Duration schedule.DurationSummary
}

// GanttResult 第二阶段结果
type GanttResult struct {
	ScheduleResult
	GanttCode string
}

// BacklogResult 第三阶段结果
type BacklogResult struct {
	Project     *storage.Project
	UserStories []*storage.UserStory
	Velocity    planner.VelocityMetrics
}

func (in ProjectInput) validate() (ProjectInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return in, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if in.StartDate.IsZero() {
		in.StartDate = schedule.Today()
	}
	return in, nil
}

// ========== 项目 ==========

// CreateProject 创建空项目
func (e *Engine) CreateProject(ctx context.Context, in ProjectInput) (*storage.Project, error) {
	in, err := in.validate()
	if err != nil {
		return nil, err
	}

	project := &storage.Project{
		Name:        in.Name,
		Description: in.Description,
		StartDate:   in.StartDate,
		Status:      storage.ProjectStatusActive,
	}
	if err := e.repo.CreateProject(ctx, project); err != nil {
		return nil, err
	}

	e.publish(ctx, events.NewEvent(events.EventProjectCreated, project.ID, nil))
	e.log.Info("📝 project created", logx.String("project_id", project.ID), logx.String("name", project.Name))
	return project, nil
}

// UpdateProject 部分更新项目
func (e *Engine) UpdateProject(ctx context.Context, id string, upd ProjectUpdate) (*storage.Project, error) {
	project, err := e.repo.GetProject(ctx, id)
	if err != nil {
		return nil, err
	}

	if upd.Name != nil {
		name := strings.TrimSpace(*upd.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name cannot be empty", ErrInvalidInput)
		}
		project.Name = name
	}
	if upd.Description != nil {
		project.Description = *upd.Description
	}
	if upd.StartDate != nil {
		project.StartDate = *upd.StartDate
	}
	if upd.Status != nil {
		project.Status = *upd.Status
	}

	if err := e.repo.UpdateProject(ctx, project); err != nil {
		return nil, err
	}
	e.publish(ctx, events.NewEvent(events.EventProjectUpdated, project.ID, nil))
	return project, nil
}

// DeleteProject 删除项目及其任务和用户故事
func (e *Engine) DeleteProject(ctx context.Context, id string) error {
	if err := e.repo.DeleteProject(ctx, id); err != nil {
		return err
	}
	e.publish(ctx, events.NewEvent(events.EventProjectDeleted, id, nil))
	e.log.Info("🗑️ project deleted", logx.String("project_id", id))
	return nil
}

// ProjectDuration 根据已存储的任务日期汇总项目工期，未排期时返回零值
func (e *Engine) ProjectDuration(ctx context.Context, id string) (schedule.DurationSummary, error) {
	if _, err := e.repo.GetProject(ctx, id); err != nil {
		return schedule.DurationSummary{}, err
	}
	tasks, err := e.repo.ListTasks(ctx, id)
	if err != nil {
		return schedule.DurationSummary{}, err
	}

	scheduled := make([]schedule.ScheduledTask, len(tasks))
	for i, t := range tasks {
		scheduled[i] = schedule.ScheduledTask{TaskDescriptor: t.Descriptor(), Start: t.StartDate, End: t.EndDate}
	}
	return schedule.CalculateProjectDuration(scheduled), nil
}

// UpdateTaskStatus 更新任务状态（todo / in_progress / done）
func (e *Engine) UpdateTaskStatus(ctx context.Context, taskID, status string) (*storage.Task, error) {
	if !schedule.ValidStatus(status) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	task, err := e.repo.GetTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	from := task.Status

	if err := e.repo.UpdateTaskStatus(ctx, taskID, status); err != nil {
		return nil, err
	}
	task.Status = status

	e.publish(ctx, events.NewEvent(events.EventTaskStatusChanged, task.ProjectID, events.TaskStatusChangedPayload{
		TaskID: taskID,
		From:   from,
		To:     status,
	}))
	return task, nil
}

// ========== 计划生成 ==========

// GenerateProject 生成完整项目计划并持久化：任务（含排期日期）和用户故事
func (e *Engine) GenerateProject(ctx context.Context, in ProjectInput) (*GenerateResult, error) {
	in, err := in.validate()
	if err != nil {
		return nil, err
	}

	plan, err := e.coordinator.Generate(ctx, in.Name, in.Description, in.StartDate)
	if err != nil {
		return nil, err
	}

	project := &storage.Project{
		Name:        plan.Name,
		Description: plan.Description,
		StartDate:   plan.StartDate,
		Status:      storage.ProjectStatusActive,
	}
	if err := e.repo.CreateProject(ctx, project); err != nil {
		return nil, err
	}

	tasks := make([]*storage.Task, len(plan.Tasks))
	for i, t := range plan.Tasks {
		tasks[i] = &storage.Task{
			Key:          string(t.ID),
			Title:        t.Title,
			Description:  t.Description,
			DurationDays: t.Duration,
			StartDate:    t.Start,
			EndDate:      t.End,
			Priority:     t.Priority,
			Status:       schedule.StatusTodo,
			Dependencies: t.Dependencies,
			Order:        t.Order,
		}
	}
	if err := e.repo.SaveTasks(ctx, project.ID, tasks); err != nil {
		return nil, e.discardProject(ctx, project.ID, err)
	}

	stories := toStoryRecords(plan.UserStories)
	if err := e.repo.SaveUserStories(ctx, project.ID, stories); err != nil {
		return nil, e.discardProject(ctx, project.ID, err)
	}

	e.publish(ctx, events.NewEvent(events.EventProjectCreated, project.ID, nil))
	e.publish(ctx, events.NewEvent(events.EventTasksGenerated, project.ID, events.TasksGeneratedPayload{Count: len(tasks)}))
	e.publish(ctx, events.NewEvent(events.EventScheduleGenerated, project.ID, events.ScheduleGeneratedPayload{
		Tasks:     len(tasks),
		TotalDays: plan.Metrics.ProjectDuration.TotalDays,
		Trigger:   TriggerGenerate,
	}))
	e.publish(ctx, events.NewEvent(events.EventBacklogGenerated, project.ID, events.BacklogGeneratedPayload{
		Stories:     len(stories),
		TotalPoints: plan.Metrics.AgileMetrics.TotalPoints,
	}))

	return &GenerateResult{
		Project:     project,
		Plan:        plan,
		Tasks:       tasks,
		UserStories: stories,
		Tech:        e.coordinator.Recommend(in.Description),
	}, nil
}

// discardProject 生成中途失败时删除已创建的项目，返回原始错误
func (e *Engine) discardProject(ctx context.Context, projectID string, cause error) error {
	if err := e.repo.DeleteProject(context.WithoutCancel(ctx), projectID); err != nil {
		e.log.Error("❌ 清理未完成的项目失败", logx.String("project_id", projectID), logx.Err(err))
	}
	return cause
}

// GenerateTasks 第一阶段：创建项目并生成任务和技术栈推荐，不排期
func (e *Engine) GenerateTasks(ctx context.Context, in ProjectInput) (*TasksResult, error) {
	in, err := in.validate()
	if err != nil {
		return nil, err
	}

	generated, err := e.coordinator.GenerateTasks(ctx, in.Description)
	if err != nil {
		return nil, err
	}

	project := &storage.Project{
		Name:        in.Name,
		Description: planner.NormalizeDescription(in.Description),
		StartDate:   in.StartDate,
		Status:      storage.ProjectStatusActive,
	}
	if err := e.repo.CreateProject(ctx, project); err != nil {
		return nil, err
	}

	tasks := make([]*storage.Task, len(generated))
	for i, g := range generated {
		tasks[i] = &storage.Task{
			Key:          string(g.ID),
			Title:        g.Title,
			Description:  g.Description,
			DurationDays: g.Duration,
			Priority:     g.Priority,
			Status:       schedule.StatusTodo,
			Dependencies: g.Dependencies,
			Order:        g.Order,
		}
	}
	if err := e.repo.SaveTasks(ctx, project.ID, tasks); err != nil {
		return nil, e.discardProject(ctx, project.ID, err)
	}

	e.publish(ctx, events.NewEvent(events.EventProjectCreated, project.ID, nil))
	e.publish(ctx, events.NewEvent(events.EventTasksGenerated, project.ID, events.TasksGeneratedPayload{Count: len(tasks)}))
	e.log.Info("🚀 phase 1 done", logx.String("project_id", project.ID), logx.Int("tasks", len(tasks)))

	return &TasksResult{
		Project: project,
		Tasks:   tasks,
		Tech:    e.coordinator.Recommend(in.Description),
	}, nil
}

// GenerateGantt 第二阶段：重新排期并生成 Mermaid 甘特图
func (e *Engine) GenerateGantt(ctx context.Context, projectID string) (*GanttResult, error) {
	result, err := e.Reschedule(ctx, projectID, TriggerAPI)
	if err != nil {
		return nil, err
	}

	scheduled := make([]schedule.ScheduledTask, len(result.Tasks))
	for i, t := range result.Tasks {
		scheduled[i] = schedule.ScheduledTask{TaskDescriptor: t.Descriptor(), Start: t.StartDate, End: t.EndDate}
	}

	e.log.Info("📅 phase 2 done", logx.String("project_id", projectID), logx.Int("total_days", result.Duration.TotalDays))
	return &GanttResult{
		ScheduleResult: *result,
		GanttCode:      gantt.Mermaid(result.Project.Name, scheduled),
	}, nil
}

// GenerateBacklog 第三阶段：生成用户故事并追加到项目
func (e *Engine) GenerateBacklog(ctx context.Context, projectID string) (*BacklogResult, error) {
	project, err := e.repo.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	generated, velocity, err := e.coordinator.GenerateBacklog(ctx, project.Description)
	if err != nil {
		return nil, err
	}

	stories := toStoryRecords(generated)
	if err := e.repo.SaveUserStories(ctx, project.ID, stories); err != nil {
		return nil, err
	}

	e.publish(ctx, events.NewEvent(events.EventBacklogGenerated, project.ID, events.BacklogGeneratedPayload{
		Stories:     len(stories),
		TotalPoints: velocity.TotalPoints,
	}))
	e.log.Info("📝 phase 3 done", logx.String("project_id", projectID), logx.Int("stories", len(stories)))

	return &BacklogResult{Project: project, UserStories: stories, Velocity: velocity}, nil
}

// ========== 排期 ==========

// Reschedule 按存储顺序对项目任务重新排期并写回日期
func (e *Engine) Reschedule(ctx context.Context, projectID, trigger string) (*ScheduleResult, error) {
	project, err := e.repo.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	tasks, err := e.repo.ListTasks(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if len(tasks) == 0 {
		return nil, ErrNoTasks
	}

	start := project.StartDate
	if start.IsZero() {
		start = schedule.DateOf(project.CreatedAt)
	}

	descriptors := make([]schedule.TaskDescriptor, len(tasks))
	for i, t := range tasks {
		descriptors[i] = t.Descriptor()
	}

	// 同一Key可能对应多个任务，按输入下标把结果对应回记录
	scheduled, positions := schedule.CreateScheduleIndexed(descriptors, start)
	ordered := make([]*storage.Task, 0, len(scheduled))
	dates := make([]storage.TaskDates, 0, len(scheduled))
	for i, st := range scheduled {
		t := tasks[positions[i]]
		t.StartDate = st.Start
		t.EndDate = st.End
		ordered = append(ordered, t)
		dates = append(dates, storage.TaskDates{TaskID: t.ID, StartDate: st.Start, EndDate: st.End})
	}

	if err := e.repo.UpdateTaskDates(ctx, dates); err != nil {
		return nil, err
	}

	summary := schedule.CalculateProjectDuration(scheduled)
	e.publish(ctx, events.NewEvent(events.EventScheduleGenerated, projectID, events.ScheduleGeneratedPayload{
		Tasks:     len(ordered),
		TotalDays: summary.TotalDays,
		Trigger:   trigger,
	}))

	return &ScheduleResult{Project: project, Tasks: ordered, Duration: summary}, nil
}

// RescheduleAll 重排所有项目，没有任务的项目跳过；返回成功重排的项目数
func (e *Engine) RescheduleAll(ctx context.Context) (int, error) {
	ids, err := e.repo.ListProjectIDs(ctx)
	if err != nil {
		return 0, err
	}

	var errs []error
	count := 0
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if _, err := e.Reschedule(ctx, id, TriggerCron); err != nil {
			if errors.Is(err, ErrNoTasks) || errors.Is(err, storage.ErrNotFound) {
				continue
			}
			e.log.Warn("⚠️ reschedule project failed", logx.String("project_id", id), logx.Err(err))
			errs = append(errs, fmt.Errorf("project %s: %w", id, err))
			continue
		}
		count++
	}
	return count, errors.Join(errs...)
}

func toStoryRecords(stories []planner.Story) []*storage.UserStory {
	records := make([]*storage.UserStory, len(stories))
	for i, s := range stories {
		status := s.Status
		if status == "" {
			status = schedule.StatusTodo
		}
		records[i] = &storage.UserStory{
			Title:              s.Title,
			Description:        s.Description,
			Points:             s.Points,
			Priority:           s.Priority,
			Status:             status,
			Sprint:             s.Sprint,
			AcceptanceCriteria: s.AcceptanceCriteria,
		}
	}
	return records
}
