package mysql

import (
	"strings"

	_ "github.com/go-sql-driver/mysql"

	"github.com/LENAX/plan-engine/pkg/storage/sqlstore"
)

// NewProjectRepoFromDSN 通过DSN创建MySQL项目Repository（对外导出）
// dsn格式: user:password@tcp(host:port)/dbname?parseTime=true
func NewProjectRepoFromDSN(dsn string) (*sqlstore.Repo, error) {
	dsn = withParam(dsn, "parseTime=true")
	// UPDATE 返回匹配行数而不是变更行数，用于判断记录是否存在
	dsn = withParam(dsn, "clientFoundRows=true")

	dialect := NewMySQLDialect()
	db, err := sqlstore.Open(dialect, dsn)
	if err != nil {
		return nil, err
	}

	repo, err := sqlstore.New(db, dialect)
	if err != nil {
		db.Close()
		return nil, err
	}
	return repo, nil
}

// withParam 确保DSN包含指定参数
func withParam(dsn, param string) string {
	if strings.Contains(dsn, param) {
		return dsn
	}
	if strings.Contains(dsn, "?") {
		return dsn + "&" + param
	}
	return dsn + "?" + param
}
