package sql

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	gomysql "github.com/go-sql-driver/mysql" // 同时注册 MySQL driver
	"github.com/lib/pq"                      // 同时注册 PostgreSQL driver
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"wazmoi/backend/internal/domain"
	"wazmoi/backend/internal/storage"
)

// Store SQL 数据库存储实现（支持 MySQL 5.7+ 和 PostgreSQL）
type Store struct {
	db         *sql.DB
	gormDB     *gorm.DB // GORM 实例，仅用于建表迁移
	driverName string   // "mysql" or "postgres"
}

// NewStore 创建 SQL 数据库存储并执行迁移。
func NewStore(
	driverName string,
	dsn string,
	maxOpenConns int,
	maxIdleConns int,
	connMaxLifetime time.Duration,
) (*Store, error) {
	if driverName != "mysql" && driverName != "postgres" {
		return nil, fmt.Errorf("unsupported database driver: %s (supported: mysql, postgres)", driverName)
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)
	db.SetConnMaxLifetime(connMaxLifetime)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}

	var gormDB *gorm.DB
	if driverName == "mysql" {
		gormDB, err = gorm.Open(mysql.New(mysql.Config{Conn: db}), gormConfig)
	} else {
		gormDB, err = gorm.Open(postgres.New(postgres.Config{Conn: db}), gormConfig)
	}
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize GORM: %w", err)
	}

	store := &Store{
		db:         db,
		gormDB:     gormDB,
		driverName: driverName,
	}

	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close 关闭数据库连接
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Health 检查数据库健康状态
func (s *Store) Health() error {
	if s.db == nil {
		return fmt.Errorf("database connection is nil")
	}
	return s.db.Ping()
}

// migrate 执行数据库迁移（使用 GORM AutoMigrate）
func (s *Store) migrate() error {
	return s.gormDB.AutoMigrate(
		&domain.User{},
		&domain.Profile{},
		&domain.Message{},
		&domain.PrivateLink{},
	)
}

// rebind 把 `?` 占位符改写为 PostgreSQL 的 `$n` 形式。
// MySQL 下原样返回。
func (s *Store) rebind(query string) string {
	if s.driverName != "postgres" {
		return query
	}
	var sb strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			fmt.Fprintf(&sb, "$%d", n)
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// isUniqueViolation 判断错误是否为唯一约束冲突，并返回冲突描述
// （约束名或驱动错误文本，用于定位冲突列）。
func isUniqueViolation(err error) (string, bool) {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		// 23505 = unique_violation
		if pqErr.Code == "23505" {
			return pqErr.Constraint, true
		}
		return "", false
	}

	var myErr *gomysql.MySQLError
	if errors.As(err, &myErr) {
		// 1062 = ER_DUP_ENTRY
		if myErr.Number == 1062 {
			return myErr.Message, true
		}
	}
	return "", false
}

// translateUserConflict 把用户表的唯一冲突映射到业务错误。
func translateUserConflict(err error) error {
	detail, ok := isUniqueViolation(err)
	if !ok {
		return err
	}
	lowered := strings.ToLower(detail)
	switch {
	case strings.Contains(lowered, "username"):
		return storage.ErrDuplicateUsername
	case strings.Contains(lowered, "email"):
		return storage.ErrDuplicateEmail
	case strings.Contains(lowered, "profile_link"):
		return storage.ErrDuplicateProfileLink
	default:
		return err
	}
}
