package database

import (
	"fmt"
	"time"
)

// 支援的資料庫驅動
const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
)

// Config 定義資料庫連線與連線池的配置
type Config struct {
	Driver   string `yaml:"driver"`   // 驅動: "mysql" (預設) 或 "postgres"
	Host     string `yaml:"host"`     // 資料庫主機地址
	Port     int    `yaml:"port"`     // 資料庫埠號 (mysql 預設 3306, postgres 預設 5432)
	User     string `yaml:"user"`     // 使用者名稱
	Password string `yaml:"password"` // 密碼
	DBName   string `yaml:"db_name"`  // 資料庫名稱

	// 連線池設定 (Connection Pool)
	MaxOpenConns    int           `yaml:"max_open_conns"`    // 最大開啟連線數
	MaxIdleConns    int           `yaml:"max_idle_conns"`    // 最大閒置連線數
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"` // 連線最大存活時間

	// 連線重試
	ConnectRetries int           `yaml:"connect_retries"` // 連線重試次數 (預設 10)
	RetryInterval  time.Duration `yaml:"retry_interval"`  // 重試間隔 (預設 2s)

	// GORM 設定
	LogLevel    string `yaml:"log_level"`    // Log 等級: "silent", "error", "warn", "info"
	AutoMigrate bool   `yaml:"auto_migrate"` // 啟動時自動建立資料表
}

// ApplyDefaults 補全未設定的欄位
func (c *Config) ApplyDefaults() {
	if c.Driver == "" {
		c.Driver = DriverMySQL
	}
	if c.Port == 0 {
		if c.Driver == DriverPostgres {
			c.Port = 5432
		} else {
			c.Port = 3306
		}
	}
	if c.MaxOpenConns == 0 {
		c.MaxOpenConns = 100
	}
	if c.MaxIdleConns == 0 {
		c.MaxIdleConns = 10
	}
	if c.ConnMaxLifetime == 0 {
		c.ConnMaxLifetime = 30 * time.Minute
	}
	if c.ConnectRetries == 0 {
		c.ConnectRetries = 10
	}
	if c.RetryInterval == 0 {
		c.RetryInterval = 2 * time.Second
	}
}

// DSN (Data Source Name) 產生連線字串
//
//	mysql:    user:password@tcp(host:port)/dbname?charset=utf8mb4&parseTime=True&loc=Local
//	postgres: host=... port=... user=... password=... dbname=... sslmode=disable
func (c *Config) DSN() (string, error) {
	switch c.Driver {
	case DriverMySQL, "":
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			c.User,
			c.Password,
			c.Host,
			c.Port,
			c.DBName,
		), nil
	case DriverPostgres:
		return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable TimeZone=UTC",
			c.Host,
			c.Port,
			c.User,
			c.Password,
			c.DBName,
		), nil
	}
	return "", fmt.Errorf("unsupported database driver: %q", c.Driver)
}
