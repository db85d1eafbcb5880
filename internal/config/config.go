package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// ServerConfig 定义 HTTP 服务器的监听配置参数
type ServerConfig struct {
	Host       string // 监听地址，默认 "0.0.0.0"
	Port       int    // API 监听端口，默认 8080
	HealthPort int    // 健康检查与指标端口，默认 8081
}

// DeliveryConfig 定义留言投递的业务配置（变体策略在这里选择）
type DeliveryConfig struct {
	// StrictReceiverValidation 为 true 时投递前必须解析出收件人，
	// 否则接受任意笔名字符串（无账号变体）
	StrictReceiverValidation bool
	// MaxContentLength 留言长度上限（按字符计），0 表示不限
	MaxContentLength int
	// BaseURL 生成私密链接时使用的站点根地址
	BaseURL string
}

// InboxConfig 定义收件箱读取的访问策略
type InboxConfig struct {
	// RequireAuth 为 true 时读取收件箱需要本人会话或有效的
	// 私密链接令牌；false 对应无鉴权的开放变体
	RequireAuth bool
}

// CORSConfig 定义跨域资源共享 (CORS) 配置
type CORSConfig struct {
	AllowedOrigins []string // 允许的来源列表，"*" 表示允许所有来源
}

// LogConfig 定义日志系统配置
type LogConfig struct {
	Level       string // 日志级别: debug, info, warn, error
	Development bool   // 开发模式: 彩色控制台输出
	File        string // 日志文件路径，留空只输出到标准输出
}

// DatabaseConfig 定义数据库连接配置（支持 MySQL 和 PostgreSQL）
type DatabaseConfig struct {
	Type            string        // "mysql" 或 "postgres"，留空使用内存存储
	DSN             string        // 数据库连接字符串
	MaxOpenConns    int           // 最大打开连接数，默认 25
	MaxIdleConns    int           // 最大空闲连接数，默认 5
	ConnMaxLifetime time.Duration // 连接最大生命周期，默认 5 分钟
}

// RedisConfig 定义 Redis 缓存服务配置
type RedisConfig struct {
	Enabled  bool          // 是否启用读路径缓存
	Address  string        // Redis 服务地址，默认 "localhost:6379"
	Password string        // 认证密码，留空表示无密码
	DB       int           // 数据库编号，默认 0
	CacheTTL time.Duration // 缓存条目生存时间，默认 5 分钟
}

// JWTConfig 定义 JWT 认证相关配置
type JWTConfig struct {
	Secret        string        // 签名密钥，必须至少 32 字符
	Issuer        string        // 签发者标识，默认 "wazmoi"
	AccessExpiry  time.Duration // 访问令牌有效期，默认 15 分钟
	RefreshExpiry time.Duration // 刷新令牌有效期，默认 7 天
}

// Config 是系统核心配置的根结构体，进程启动时加载一次，
// 此后只读注入到各组件，不作为全局可变状态引用。
type Config struct {
	Server   ServerConfig
	Delivery DeliveryConfig
	Inbox    InboxConfig
	CORS     CORSConfig
	Log      LogConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
}

// Load 从环境变量和 .env 文件加载系统配置。
//
// 优先级从高到低：系统环境变量 > .env 文件 > 默认值。
// 环境变量前缀 WAZMOI_，如 WAZMOI_SERVER_PORT、WAZMOI_JWT_SECRET。
func Load() (*Config, error) {
	// .env 是可选的，加载失败静默跳过
	loadEnvFile()

	viper.SetEnvPrefix("wazmoi")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.health_port", 8081)
	viper.SetDefault("delivery.strict_receiver_validation", true)
	viper.SetDefault("delivery.max_content_length", 500)
	viper.SetDefault("delivery.base_url", "http://localhost:8080")
	viper.SetDefault("inbox.require_auth", true)
	viper.SetDefault("cors.allowed_origins", "*")
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.development", false)
	viper.SetDefault("log.file", "")
	viper.SetDefault("database.type", "") // 默认为空，使用内存存储
	viper.SetDefault("database.dsn", "")
	viper.SetDefault("database.max_open_conns", 25)
	viper.SetDefault("database.max_idle_conns", 5)
	viper.SetDefault("database.conn_max_lifetime", "5m")
	viper.SetDefault("redis.enabled", false)
	viper.SetDefault("redis.address", "localhost:6379")
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("redis.cache_ttl", "5m")
	viper.SetDefault("jwt.secret", "change-me-in-production")
	viper.SetDefault("jwt.issuer", "wazmoi")
	viper.SetDefault("jwt.access_expiry", "15m")
	viper.SetDefault("jwt.refresh_expiry", "168h")

	corsOrigins := parseList(viper.GetString("cors.allowed_origins"))
	if len(corsOrigins) == 0 {
		corsOrigins = []string{"*"}
	}

	maxContentLength := viper.GetInt("delivery.max_content_length")
	if maxContentLength < 0 {
		return nil, fmt.Errorf("delivery.max_content_length must not be negative")
	}

	baseURL := strings.TrimRight(viper.GetString("delivery.base_url"), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("delivery.base_url must not be empty")
	}

	connMaxLifetime, err := time.ParseDuration(viper.GetString("database.conn_max_lifetime"))
	if err != nil {
		connMaxLifetime = 5 * time.Minute
	}

	cacheTTL, err := time.ParseDuration(viper.GetString("redis.cache_ttl"))
	if err != nil {
		cacheTTL = 5 * time.Minute
	}

	accessExpiry, err := time.ParseDuration(viper.GetString("jwt.access_expiry"))
	if err != nil {
		accessExpiry = 15 * time.Minute
	}

	refreshExpiry, err := time.ParseDuration(viper.GetString("jwt.refresh_expiry"))
	if err != nil {
		refreshExpiry = 7 * 24 * time.Hour
	}

	jwtSecret := viper.GetString("jwt.secret")

	// 安全检查：禁止使用默认的 JWT secret
	if jwtSecret == "change-me-in-production" {
		return nil, fmt.Errorf("SECURITY ERROR: JWT secret cannot be the default value. Please set WAZMOI_JWT_SECRET environment variable")
	}

	if len(jwtSecret) < 32 {
		return nil, fmt.Errorf("SECURITY ERROR: JWT secret must be at least 32 characters long")
	}

	cfg := &Config{
		Server: ServerConfig{
			Host:       viper.GetString("server.host"),
			Port:       viper.GetInt("server.port"),
			HealthPort: viper.GetInt("server.health_port"),
		},
		Delivery: DeliveryConfig{
			StrictReceiverValidation: viper.GetBool("delivery.strict_receiver_validation"),
			MaxContentLength:         maxContentLength,
			BaseURL:                  baseURL,
		},
		Inbox: InboxConfig{
			RequireAuth: viper.GetBool("inbox.require_auth"),
		},
		CORS: CORSConfig{
			AllowedOrigins: corsOrigins,
		},
		Log: LogConfig{
			Level:       viper.GetString("log.level"),
			Development: viper.GetBool("log.development"),
			File:        viper.GetString("log.file"),
		},
		Database: DatabaseConfig{
			Type:            viper.GetString("database.type"),
			DSN:             viper.GetString("database.dsn"),
			MaxOpenConns:    viper.GetInt("database.max_open_conns"),
			MaxIdleConns:    viper.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: connMaxLifetime,
		},
		Redis: RedisConfig{
			Enabled:  viper.GetBool("redis.enabled"),
			Address:  viper.GetString("redis.address"),
			Password: viper.GetString("redis.password"),
			DB:       viper.GetInt("redis.db"),
			CacheTTL: cacheTTL,
		},
		JWT: JWTConfig{
			Secret:        jwtSecret,
			Issuer:        viper.GetString("jwt.issuer"),
			AccessExpiry:  accessExpiry,
			RefreshExpiry: refreshExpiry,
		},
	}

	return cfg, nil
}

// parseList 将逗号分隔的字符串解析为字符串切片
func parseList(value string) []string {
	parts := strings.Split(value, ",")
	items := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}

// loadEnvFile 尝试加载 .env 文件：先当前目录，再父目录
// （从 backend/ 子目录运行时）。已存在的环境变量不会被覆盖。
func loadEnvFile() {
	if err := godotenv.Load(".env"); err == nil {
		return
	}

	parentEnv := filepath.Join("..", ".env")
	if _, err := os.Stat(parentEnv); err == nil {
		_ = godotenv.Load(parentEnv)
	}
}
