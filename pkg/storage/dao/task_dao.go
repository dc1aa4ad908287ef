package dao

import (
	"database/sql"
	"time"

	"github.com/LENAX/plan-engine/pkg/core/schedule"
)

// TaskDAO tasks表的数据访问对象（内部使用）
type TaskDAO struct {
	ID           string         `db:"id"`
	ProjectID    string         `db:"project_id"`
	TaskKey      string         `db:"task_key"`
	Title        string         `db:"title"`
	Description  sql.NullString `db:"description"`
	DurationDays int            `db:"duration_days"`
	StartDate    schedule.Date  `db:"start_date"`
	EndDate      schedule.Date  `db:"end_date"`
	Priority     string         `db:"priority"`
	Status       string         `db:"status"`
	Dependencies string         `db:"dependencies"` // JSON数组
	SortOrder    int            `db:"sort_order"`
	CreatedAt    time.Time      `db:"created_at"`
}
