package storage

import (
	"fmt"

	"github.com/LENAX/plan-engine/pkg/storage"
	"github.com/LENAX/plan-engine/pkg/storage/mysql"
	"github.com/LENAX/plan-engine/pkg/storage/postgres"
	pkgsqlite "github.com/LENAX/plan-engine/pkg/storage/sqlite"
	"github.com/LENAX/plan-engine/pkg/storage/sqlstore"
)

// DatabaseFactory 数据库工厂接口（内部使用）
type DatabaseFactory interface {
	// CreateProjectRepo 返回项目聚合Repository
	CreateProjectRepo() storage.ProjectRepository
	// Close 关闭数据库连接
	Close() error
}

// Options 创建工厂的参数
type Options struct {
	Type string
	DSN  string
	Pool sqlstore.PoolOptions
}

// NewDatabaseFactory 创建数据库工厂（内部方法）
// opts.Type: 数据库类型（sqlite/mysql/postgres）
// opts.DSN: 数据库连接字符串
func NewDatabaseFactory(opts Options) (DatabaseFactory, error) {
	switch opts.Type {
	case "sqlite":
		return newSQLFactory("sqlite", opts, pkgsqlite.NewProjectRepoFromDSN)
	case "mysql":
		return newSQLFactory("mysql", opts, mysql.NewProjectRepoFromDSN)
	case "postgres", "postgresql":
		return newSQLFactory("postgres", opts, postgres.NewProjectRepoFromDSN)
	default:
		return nil, fmt.Errorf("unsupported database type: %s", opts.Type)
	}
}

// sqlFactory 基于 sqlstore 的数据库工厂（内部实现）
type sqlFactory struct {
	repo *sqlstore.Repo
}

func newSQLFactory(name string, opts Options, open func(dsn string) (*sqlstore.Repo, error)) (*sqlFactory, error) {
	repo, err := open(opts.DSN)
	if err != nil {
		return nil, fmt.Errorf("create %s repository failed: %w", name, err)
	}
	pool := opts.Pool
	if name == "sqlite" {
		// SQLite保持单连接
		pool.MaxOpenConns = 0
	}
	repo.ConfigurePool(pool)
	return &sqlFactory{repo: repo}, nil
}

func (f *sqlFactory) CreateProjectRepo() storage.ProjectRepository {
	return f.repo
}

func (f *sqlFactory) Close() error {
	return f.repo.Close()
}
