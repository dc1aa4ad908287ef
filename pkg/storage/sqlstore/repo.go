// Package sqlstore 基于 sqlx 的 ProjectRepository 实现，SQL差异由 storage.Dialect 处理。
package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/LENAX/plan-engine/pkg/core/schedule"
	"github.com/LENAX/plan-engine/pkg/storage"
	"github.com/LENAX/plan-engine/pkg/storage/dao"
)

// PoolOptions 连接池参数，零值表示使用 database/sql 默认值
type PoolOptions struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// Repo ProjectRepository 的 sqlx 实现（对外导出）
type Repo struct {
	db      *sqlx.DB
	dialect storage.Dialect
}

// Open 打开数据库连接并执行方言配置
func Open(dialect storage.Dialect, dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open(dialect.DriverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("打开数据库失败: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("数据库连接失败: %w", err)
	}

	for _, stmt := range dialect.ConfigureDB() {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("配置%s失败: %w", dialect.Name(), err)
		}
	}
	return db, nil
}

// New 创建Repo并初始化表结构
func New(db *sqlx.DB, dialect storage.Dialect) (*Repo, error) {
	repo := &Repo{db: db, dialect: dialect}
	if err := repo.initSchema(); err != nil {
		return nil, fmt.Errorf("初始化表结构失败: %w", err)
	}
	return repo, nil
}

// GetDB 获取底层数据库连接（对外导出）
func (r *Repo) GetDB() *sqlx.DB {
	return r.db
}

// Dialect 当前方言
func (r *Repo) Dialect() storage.Dialect {
	return r.dialect
}

// ConfigurePool 设置连接池参数
func (r *Repo) ConfigurePool(opts PoolOptions) {
	if opts.MaxOpenConns > 0 {
		r.db.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if opts.MaxIdleConns > 0 {
		r.db.SetMaxIdleConns(opts.MaxIdleConns)
	}
	if opts.ConnMaxLifetime > 0 {
		r.db.SetConnMaxLifetime(opts.ConnMaxLifetime)
	}
	if opts.ConnMaxIdleTime > 0 {
		r.db.SetConnMaxIdleTime(opts.ConnMaxIdleTime)
	}
}

// Ping 检查数据库连接
func (r *Repo) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Close 关闭数据库连接（对外导出）
func (r *Repo) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// schemas 表结构
var schemas = []storage.TableSchema{
	{
		Name: "projects",
		Columns: []storage.Column{
			{Name: "id", Type: "VARCHAR(64) NOT NULL"},
			{Name: "name", Type: "VARCHAR(255) NOT NULL"},
			{Name: "description", Type: "TEXT"},
			{Name: "start_date", Type: "VARCHAR(10)"},
			{Name: "status", Type: "VARCHAR(32) NOT NULL"},
			{Name: "created_at", Type: "DATETIME NOT NULL"},
			{Name: "updated_at", Type: "DATETIME NOT NULL"},
		},
		PrimaryKey: "id",
		Indexes:    []storage.Index{{Name: "idx_projects_created_at", Columns: "created_at"}},
	},
	{
		Name: "tasks",
		Columns: []storage.Column{
			{Name: "id", Type: "VARCHAR(64) NOT NULL"},
			{Name: "project_id", Type: "VARCHAR(64) NOT NULL"},
			{Name: "task_key", Type: "VARCHAR(64) NOT NULL"},
			{Name: "title", Type: "VARCHAR(255) NOT NULL"},
			{Name: "description", Type: "TEXT"},
			{Name: "duration_days", Type: "INTEGER NOT NULL"},
			{Name: "start_date", Type: "VARCHAR(10)"},
			{Name: "end_date", Type: "VARCHAR(10)"},
			{Name: "priority", Type: "VARCHAR(32) NOT NULL"},
			{Name: "status", Type: "VARCHAR(32) NOT NULL"},
			{Name: "dependencies", Type: "TEXT NOT NULL"},
			{Name: "sort_order", Type: "INTEGER NOT NULL"},
			{Name: "created_at", Type: "DATETIME NOT NULL"},
		},
		PrimaryKey: "id",
		Indexes:    []storage.Index{{Name: "idx_tasks_project_id", Columns: "project_id, sort_order"}},
	},
	{
		Name: "user_stories",
		Columns: []storage.Column{
			{Name: "id", Type: "VARCHAR(64) NOT NULL"},
			{Name: "project_id", Type: "VARCHAR(64) NOT NULL"},
			{Name: "title", Type: "VARCHAR(500) NOT NULL"},
			{Name: "description", Type: "TEXT"},
			{Name: "points", Type: "INTEGER NOT NULL"},
			{Name: "priority", Type: "VARCHAR(32) NOT NULL"},
			{Name: "status", Type: "VARCHAR(32) NOT NULL"},
			{Name: "sprint", Type: "INTEGER NOT NULL"},
			{Name: "acceptance_criteria", Type: "TEXT"},
			{Name: "created_at", Type: "DATETIME NOT NULL"},
		},
		PrimaryKey: "id",
		Indexes:    []storage.Index{{Name: "idx_user_stories_project_id", Columns: "project_id"}},
	},
}

// initSchema 初始化数据库表结构
func (r *Repo) initSchema() error {
	for _, schema := range schemas {
		for _, stmt := range r.dialect.CreateTableSQL(schema) {
			if _, err := r.db.Exec(stmt); err != nil {
				return fmt.Errorf("执行SQL失败: table=%s, %w", schema.Name, err)
			}
		}
	}
	return nil
}

// ========== 项目 ==========

const projectColumns = `id, name, description, start_date, status, created_at, updated_at`

// CreateProject 创建项目，ID为空时自动生成
func (r *Repo) CreateProject(ctx context.Context, p *storage.Project) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.Status == "" {
		p.Status = storage.ProjectStatusActive
	}
	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now

	query := `INSERT INTO projects (` + projectColumns + `)
	VALUES (:id, :name, :description, :start_date, :status, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, toProjectDAO(p)); err != nil {
		return fmt.Errorf("保存项目失败: %w", err)
	}
	return nil
}

// GetProject 根据ID查询项目
func (r *Repo) GetProject(ctx context.Context, id string) (*storage.Project, error) {
	var row dao.ProjectDAO
	query := r.db.Rebind(`SELECT ` + projectColumns + ` FROM projects WHERE id = ?`)
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		return nil, notFound(err, "查询项目失败")
	}
	return fromProjectDAO(&row), nil
}

// ListProjects 按创建时间倒序分页查询
func (r *Repo) ListProjects(ctx context.Context, limit, offset int) ([]*storage.Project, error) {
	if limit <= 0 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	var rows []dao.ProjectDAO
	query := r.db.Rebind(`SELECT ` + projectColumns + ` FROM projects ORDER BY created_at DESC, id LIMIT ? OFFSET ?`)
	if err := r.db.SelectContext(ctx, &rows, query, limit, offset); err != nil {
		return nil, fmt.Errorf("查询项目列表失败: %w", err)
	}

	projects := make([]*storage.Project, len(rows))
	for i := range rows {
		projects[i] = fromProjectDAO(&rows[i])
	}
	return projects, nil
}

// UpdateProject 更新项目的名称、描述、开始日期和状态
func (r *Repo) UpdateProject(ctx context.Context, p *storage.Project) error {
	p.UpdatedAt = time.Now().UTC()
	query := `UPDATE projects SET name = :name, description = :description, start_date = :start_date,
		status = :status, updated_at = :updated_at WHERE id = :id`
	result, err := r.db.NamedExecContext(ctx, query, toProjectDAO(p))
	if err != nil {
		return fmt.Errorf("更新项目失败: %w", err)
	}
	return affected(result, "更新项目失败")
}

// DeleteProject 删除项目及其任务和用户故事（事务）
func (r *Repo) DeleteProject(ctx context.Context, id string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("开始事务失败: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"tasks", "user_stories"} {
		if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM `+table+` WHERE project_id = ?`), id); err != nil {
			return fmt.Errorf("删除%s失败: %w", table, err)
		}
	}

	result, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM projects WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("删除项目失败: %w", err)
	}
	if err := affected(result, "删除项目失败"); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("提交事务失败: %w", err)
	}
	return nil
}

// ListProjectIDs 所有项目ID
func (r *Repo) ListProjectIDs(ctx context.Context) ([]string, error) {
	ids := make([]string, 0)
	if err := r.db.SelectContext(ctx, &ids, `SELECT id FROM projects ORDER BY created_at`); err != nil {
		return nil, fmt.Errorf("查询项目ID失败: %w", err)
	}
	return ids, nil
}

// ========== 任务 ==========

const taskColumns = `id, project_id, task_key, title, description, duration_days, start_date, end_date,
	priority, status, dependencies, sort_order, created_at`

// SaveTasks 替换项目的全部任务（事务）
// 未设置ID的任务会生成新ID；Key为空时使用 Order。
func (r *Repo) SaveTasks(ctx context.Context, projectID string, tasks []*storage.Task) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("开始事务失败: %w", err)
	}
	defer tx.Rollback()

	if err := requireProject(ctx, tx, projectID); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM tasks WHERE project_id = ?`), projectID); err != nil {
		return fmt.Errorf("删除旧任务失败: %w", err)
	}

	now := time.Now().UTC()
	query := `INSERT INTO tasks (` + taskColumns + `)
	VALUES (:id, :project_id, :task_key, :title, :description, :duration_days, :start_date, :end_date,
		:priority, :status, :dependencies, :sort_order, :created_at)`
	for _, t := range tasks {
		if t.ID == "" {
			t.ID = uuid.NewString()
		}
		t.ProjectID = projectID
		if t.Key == "" {
			t.Key = fmt.Sprintf("%d", t.Order)
		}
		if t.Status == "" {
			t.Status = schedule.StatusTodo
		}
		row, err := toTaskDAO(t, now)
		if err != nil {
			return err
		}
		if _, err := tx.NamedExecContext(ctx, query, row); err != nil {
			return fmt.Errorf("保存任务失败: Task Key=%s, %w", t.Key, err)
		}
	}

	if err := touchProject(ctx, tx, projectID, now); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("提交事务失败: %w", err)
	}
	return nil
}

// ListTasks 按 Order 查询项目任务
func (r *Repo) ListTasks(ctx context.Context, projectID string) ([]*storage.Task, error) {
	var rows []dao.TaskDAO
	query := r.db.Rebind(`SELECT ` + taskColumns + ` FROM tasks WHERE project_id = ? ORDER BY sort_order, created_at, id`)
	if err := r.db.SelectContext(ctx, &rows, query, projectID); err != nil {
		return nil, fmt.Errorf("查询任务列表失败: %w", err)
	}

	tasks := make([]*storage.Task, len(rows))
	for i := range rows {
		t, err := fromTaskDAO(&rows[i])
		if err != nil {
			return nil, err
		}
		tasks[i] = t
	}
	return tasks, nil
}

// GetTask 根据ID查询任务
func (r *Repo) GetTask(ctx context.Context, id string) (*storage.Task, error) {
	var row dao.TaskDAO
	query := r.db.Rebind(`SELECT ` + taskColumns + ` FROM tasks WHERE id = ?`)
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		return nil, notFound(err, "查询任务失败")
	}
	return fromTaskDAO(&row)
}

// UpdateTaskStatus 更新任务状态
func (r *Repo) UpdateTaskStatus(ctx context.Context, id, status string) error {
	result, err := r.db.ExecContext(ctx, r.db.Rebind(`UPDATE tasks SET status = ? WHERE id = ?`), status, id)
	if err != nil {
		return fmt.Errorf("更新任务状态失败: %w", err)
	}
	return affected(result, "更新任务状态失败")
}

// UpdateTaskDates 批量写入排期日期（事务），任一任务不存在时整体回滚
func (r *Repo) UpdateTaskDates(ctx context.Context, dates []storage.TaskDates) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("开始事务失败: %w", err)
	}
	defer tx.Rollback()

	query := tx.Rebind(`UPDATE tasks SET start_date = ?, end_date = ? WHERE id = ?`)
	for _, d := range dates {
		result, err := tx.ExecContext(ctx, query, d.StartDate, d.EndDate, d.TaskID)
		if err != nil {
			return fmt.Errorf("更新任务日期失败: Task ID=%s, %w", d.TaskID, err)
		}
		if err := affected(result, "更新任务日期失败: Task ID="+d.TaskID); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("提交事务失败: %w", err)
	}
	return nil
}

// ========== 用户故事 ==========

const storyColumns = `id, project_id, title, description, points, priority, status, sprint,
	acceptance_criteria, created_at`

// SaveUserStories 追加用户故事（事务）
func (r *Repo) SaveUserStories(ctx context.Context, projectID string, stories []*storage.UserStory) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("开始事务失败: %w", err)
	}
	defer tx.Rollback()

	if err := requireProject(ctx, tx, projectID); err != nil {
		return err
	}

	now := time.Now().UTC()
	query := `INSERT INTO user_stories (` + storyColumns + `)
	VALUES (:id, :project_id, :title, :description, :points, :priority, :status, :sprint,
		:acceptance_criteria, :created_at)`
	for _, s := range stories {
		if s.ID == "" {
			s.ID = uuid.NewString()
		}
		s.ProjectID = projectID
		if s.Status == "" {
			s.Status = schedule.StatusTodo
		}
		if s.CreatedAt.IsZero() {
			s.CreatedAt = now
		}
		if _, err := tx.NamedExecContext(ctx, query, toStoryDAO(s)); err != nil {
			return fmt.Errorf("保存用户故事失败: %w", err)
		}
	}

	if err := touchProject(ctx, tx, projectID, now); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("提交事务失败: %w", err)
	}
	return nil
}

// ListUserStories 按迭代查询项目的用户故事
func (r *Repo) ListUserStories(ctx context.Context, projectID string) ([]*storage.UserStory, error) {
	var rows []dao.UserStoryDAO
	query := r.db.Rebind(`SELECT ` + storyColumns + ` FROM user_stories WHERE project_id = ? ORDER BY sprint, created_at, id`)
	if err := r.db.SelectContext(ctx, &rows, query, projectID); err != nil {
		return nil, fmt.Errorf("查询用户故事失败: %w", err)
	}

	stories := make([]*storage.UserStory, len(rows))
	for i := range rows {
		stories[i] = fromStoryDAO(&rows[i])
	}
	return stories, nil
}

// GetUserStory 根据ID查询用户故事
func (r *Repo) GetUserStory(ctx context.Context, id string) (*storage.UserStory, error) {
	var row dao.UserStoryDAO
	query := r.db.Rebind(`SELECT ` + storyColumns + ` FROM user_stories WHERE id = ?`)
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		return nil, notFound(err, "查询用户故事失败")
	}
	return fromStoryDAO(&row), nil
}

// ========== 内部工具 ==========

// requireProject 确认项目存在
func requireProject(ctx context.Context, tx *sqlx.Tx, projectID string) error {
	var id string
	if err := tx.GetContext(ctx, &id, tx.Rebind(`SELECT id FROM projects WHERE id = ?`), projectID); err != nil {
		return notFound(err, "查询项目失败")
	}
	return nil
}

// touchProject 刷新项目更新时间
func touchProject(ctx context.Context, tx *sqlx.Tx, projectID string, now time.Time) error {
	if _, err := tx.ExecContext(ctx, tx.Rebind(`UPDATE projects SET updated_at = ? WHERE id = ?`), now, projectID); err != nil {
		return fmt.Errorf("更新项目时间失败: %w", err)
	}
	return nil
}

// notFound 把 sql.ErrNoRows 转换为 storage.ErrNotFound
func notFound(err error, msg string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return storage.ErrNotFound
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// affected 没有行被修改时返回 storage.ErrNotFound
func affected(result sql.Result, msg string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", msg, err)
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func toProjectDAO(p *storage.Project) *dao.ProjectDAO {
	return &dao.ProjectDAO{
		ID:          p.ID,
		Name:        p.Name,
		Description: nullString(p.Description),
		StartDate:   p.StartDate,
		Status:      p.Status,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func fromProjectDAO(row *dao.ProjectDAO) *storage.Project {
	return &storage.Project{
		ID:          row.ID,
		Name:        row.Name,
		Description: row.Description.String,
		StartDate:   row.StartDate,
		Status:      row.Status,
		CreatedAt:   row.CreatedAt.UTC(),
		UpdatedAt:   row.UpdatedAt.UTC(),
	}
}

func toTaskDAO(t *storage.Task, now time.Time) (*dao.TaskDAO, error) {
	deps := t.Dependencies
	if deps == nil {
		deps = schedule.DependencyList{}
	}
	depsJSON, err := json.Marshal(deps)
	if err != nil {
		return nil, fmt.Errorf("序列化任务依赖失败: %w", err)
	}
	return &dao.TaskDAO{
		ID:           t.ID,
		ProjectID:    t.ProjectID,
		TaskKey:      t.Key,
		Title:        t.Title,
		Description:  nullString(t.Description),
		DurationDays: t.DurationDays,
		StartDate:    t.StartDate,
		EndDate:      t.EndDate,
		Priority:     t.Priority,
		Status:       t.Status,
		Dependencies: string(depsJSON),
		SortOrder:    t.Order,
		CreatedAt:    now,
	}, nil
}

func fromTaskDAO(row *dao.TaskDAO) (*storage.Task, error) {
	deps := schedule.DependencyList{}
	if row.Dependencies != "" {
		if err := json.Unmarshal([]byte(row.Dependencies), &deps); err != nil {
			return nil, fmt.Errorf("解析任务依赖失败: Task ID=%s, %w", row.ID, err)
		}
	}
	return &storage.Task{
		ID:           row.ID,
		ProjectID:    row.ProjectID,
		Key:          row.TaskKey,
		Title:        row.Title,
		Description:  row.Description.String,
		DurationDays: row.DurationDays,
		StartDate:    row.StartDate,
		EndDate:      row.EndDate,
		Priority:     row.Priority,
		Status:       row.Status,
		Dependencies: deps,
		Order:        row.SortOrder,
	}, nil
}

func toStoryDAO(s *storage.UserStory) *dao.UserStoryDAO {
	return &dao.UserStoryDAO{
		ID:                 s.ID,
		ProjectID:          s.ProjectID,
		Title:              s.Title,
		Description:        nullString(s.Description),
		Points:             s.Points,
		Priority:           s.Priority,
		Status:             s.Status,
		Sprint:             s.Sprint,
		AcceptanceCriteria: nullString(s.AcceptanceCriteria),
		CreatedAt:          s.CreatedAt,
	}
}

func fromStoryDAO(row *dao.UserStoryDAO) *storage.UserStory {
	return &storage.UserStory{
		ID:                 row.ID,
		ProjectID:          row.ProjectID,
		Title:              row.Title,
		Description:        row.Description.String,
		Points:             row.Points,
		Priority:           row.Priority,
		Status:             row.Status,
		Sprint:             row.Sprint,
		AcceptanceCriteria: row.AcceptanceCriteria.String,
		CreatedAt:          row.CreatedAt.UTC(),
	}
}

// 确保实现接口
var _ storage.ProjectRepository = (*Repo)(nil)
