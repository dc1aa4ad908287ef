package sqlite

import (
	_ "github.com/mattn/go-sqlite3"

	"github.com/LENAX/plan-engine/pkg/storage/sqlstore"
)

// NewProjectRepoFromDSN 通过DSN创建SQLite项目Repository（对外导出）
// dsn 可以是文件路径，也可以带参数，如 file:plan.db?cache=shared
func NewProjectRepoFromDSN(dsn string) (*sqlstore.Repo, error) {
	dialect := NewSQLiteDialect()
	db, err := sqlstore.Open(dialect, dsn)
	if err != nil {
		return nil, err
	}

	// SQLite只有一个写入者，单连接让PRAGMA对所有语句生效
	db.SetMaxOpenConns(1)

	repo, err := sqlstore.New(db, dialect)
	if err != nil {
		db.Close()
		return nil, err
	}
	return repo, nil
}
