package dao

import (
	"database/sql"
	"time"

	"github.com/LENAX/plan-engine/pkg/core/schedule"
)

// ProjectDAO projects表的数据访问对象（内部使用）
type ProjectDAO struct {
	ID          string         `db:"id"`
	Name        string         `db:"name"`
	Description sql.NullString `db:"description"`
	StartDate   schedule.Date  `db:"start_date"` // YYYY-MM-DD 文本
	Status      string         `db:"status"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
}
