package mysql

import (
	"fmt"
	"strings"

	"github.com/LENAX/plan-engine/pkg/storage"
)

// MySQLDialect MySQL方言实现（对外导出）
type MySQLDialect struct{}

// NewMySQLDialect 创建MySQL方言实例
func NewMySQLDialect() *MySQLDialect {
	return &MySQLDialect{}
}

// Name 返回方言名称
func (d *MySQLDialect) Name() string {
	return "mysql"
}

// DriverName 返回驱动名（go-sql-driver/mysql）
func (d *MySQLDialect) DriverName() string {
	return "mysql"
}

// CreateTableSQL 转换为MySQL兼容的DDL
// MySQL不支持 CREATE INDEX IF NOT EXISTS，索引直接写在建表语句里。
func (d *MySQLDialect) CreateTableSQL(schema storage.TableSchema) []string {
	mapType := func(typ string) string {
		return strings.ReplaceAll(typ, "DATETIME", d.TimestampType())
	}
	defs := schema.ColumnDefs(mapType)
	for _, idx := range schema.Indexes {
		defs = append(defs, fmt.Sprintf("INDEX %s (%s)", idx.Name, idx.Columns))
	}
	// 添加引擎声明
	return []string{fmt.Sprintf(
		"CREATE TABLE IF NOT EXISTS %s (\n\t%s\n) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4",
		schema.Name,
		strings.Join(defs, ",\n\t"),
	)}
}

// ConfigureDB 返回MySQL配置SQL
func (d *MySQLDialect) ConfigureDB() []string {
	return []string{
		"SET SESSION sql_mode='STRICT_TRANS_TABLES,NO_ZERO_IN_DATE,NO_ZERO_DATE,ERROR_FOR_DIVISION_BY_ZERO,NO_ENGINE_SUBSTITUTION';",
	}
}

// TimestampType 返回MySQL时间戳类型（微秒精度）
func (d *MySQLDialect) TimestampType() string {
	return "DATETIME(6)"
}

// 确保实现接口
var _ storage.Dialect = (*MySQLDialect)(nil)
