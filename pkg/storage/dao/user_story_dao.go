package dao

import (
	"database/sql"
	"time"
)

// UserStoryDAO user_stories表的数据访问对象（内部使用）
type UserStoryDAO struct {
	ID                 string         `db:"id"`
	ProjectID          string         `db:"project_id"`
	Title              string         `db:"title"`
	Description        sql.NullString `db:"description"`
	Points             int            `db:"points"`
	Priority           string         `db:"priority"`
	Status             string         `db:"status"`
	Sprint             int            `db:"sprint"`
	AcceptanceCriteria sql.NullString `db:"acceptance_criteria"`
	CreatedAt          time.Time      `db:"created_at"`
}
