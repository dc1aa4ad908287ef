package postgres

import (
	"fmt"
	"strings"

	"github.com/LENAX/plan-engine/pkg/storage"
)

// PostgresDialect PostgreSQL方言实现（对外导出）
type PostgresDialect struct{}

// NewPostgresDialect 创建PostgreSQL方言实例
func NewPostgresDialect() *PostgresDialect {
	return &PostgresDialect{}
}

// Name 返回方言名称
func (d *PostgresDialect) Name() string {
	return "postgres"
}

// DriverName 返回驱动名（lib/pq），sqlx 据此使用 $1, $2 占位符
func (d *PostgresDialect) DriverName() string {
	return "postgres"
}

// CreateTableSQL 转换为PostgreSQL兼容的DDL
func (d *PostgresDialect) CreateTableSQL(schema storage.TableSchema) []string {
	mapType := func(typ string) string {
		// 替换DATETIME为TIMESTAMP
		return strings.ReplaceAll(typ, "DATETIME", d.TimestampType())
	}
	stmts := []string{fmt.Sprintf(
		"CREATE TABLE IF NOT EXISTS %s (\n\t%s\n)",
		schema.Name,
		strings.Join(schema.ColumnDefs(mapType), ",\n\t"),
	)}
	for _, idx := range schema.Indexes {
		stmts = append(stmts, fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s ON %s(%s)", idx.Name, schema.Name, idx.Columns))
	}
	return stmts
}

// ConfigureDB 返回PostgreSQL配置SQL
func (d *PostgresDialect) ConfigureDB() []string {
	return []string{
		"SET timezone = 'UTC';",
	}
}

// TimestampType 返回PostgreSQL时间戳类型
func (d *PostgresDialect) TimestampType() string {
	return "TIMESTAMP"
}

// 确保实现接口
var _ storage.Dialect = (*PostgresDialect)(nil)
