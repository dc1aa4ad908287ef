package storage

// Column 表字段定义，Type 使用通用类型（TEXT、VARCHAR(n)、INTEGER、DATETIME）
type Column struct {
	Name string
	Type string
}

// Index 普通索引定义
type Index struct {
	Name    string
	Columns string
}

// TableSchema 表结构定义，由各方言翻译成具体DDL
type TableSchema struct {
	Name       string
	Columns    []Column
	PrimaryKey string
	Indexes    []Index
}

// Dialect SQL方言接口（对外导出）
// 封装不同数据库的SQL语法差异
type Dialect interface {
	// Name 返回方言名称（如 "sqlite", "mysql", "postgres"）
	Name() string

	// DriverName 返回 database/sql 驱动名，sqlx 根据它选择占位符风格
	DriverName() string

	// CreateTableSQL 返回幂等的建表和建索引语句，每条语句单独执行
	CreateTableSQL(schema TableSchema) []string

	// ConfigureDB 配置数据库连接（如SQLite的PRAGMA）
	// 返回需要执行的SQL语句列表
	ConfigureDB() []string

	// TimestampType 返回时间戳类型
	// SQLite: DATETIME
	// MySQL: DATETIME(6)
	// PostgreSQL: TIMESTAMP
	TimestampType() string
}

// ColumnDefs 生成字段定义列表，mapType 把通用类型转换为方言类型
func (s TableSchema) ColumnDefs(mapType func(string) string) []string {
	defs := make([]string, 0, len(s.Columns)+1)
	for _, col := range s.Columns {
		typ := col.Type
		if mapType != nil {
			typ = mapType(typ)
		}
		defs = append(defs, col.Name+" "+typ)
	}
	if s.PrimaryKey != "" {
		defs = append(defs, "PRIMARY KEY ("+s.PrimaryKey+")")
	}
	return defs
}
