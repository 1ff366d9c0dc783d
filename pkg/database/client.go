package database

import (
	"fmt"
	"log/slog"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Client 封裝 GORM DB 實例
type Client struct {
	db *gorm.DB
}

// NewClient 建立並回傳一個新的資料庫客戶端實例 (GORM)
//
// 參數:
//
//	cfg: Config - 資料庫連線配置
//	log: *slog.Logger - 連線重試時的日誌
//
// 回傳值:
//
//	*Client: 封裝後的資料庫客戶端
//	error: 若連線失敗則回傳錯誤
func NewClient(cfg Config, log *slog.Logger) (*Client, error) {
	cfg.ApplyDefaults()
	dialector, err := newDialector(cfg)
	if err != nil {
		return nil, err
	}

	var db *gorm.DB
	for i := 0; i < cfg.ConnectRetries; i++ {
		db, err = Open(dialector, cfg.LogLevel)
		if err == nil {
			// 確認連線真的可用
			rawDB, dbErr := db.DB()
			if dbErr == nil {
				if err = rawDB.Ping(); err == nil {
					break
				}
			} else {
				err = dbErr
			}
		}

		if i < cfg.ConnectRetries-1 {
			log.Warn("Failed to connect to database, retrying",
				"driver", cfg.Driver, "attempt", i+1, "max_attempts", cfg.ConnectRetries,
				"retry_in", cfg.RetryInterval, "error", err)
			time.Sleep(cfg.RetryInterval)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s after %d attempts: %w", cfg.Driver, cfg.ConnectRetries, err)
	}

	// 取得底層 sql.DB 物件以設定連線池
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.db: %w", err)
	}
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	return &Client{db: db}, nil
}

// NewClientFromDB 以已開啟的 *gorm.DB 建立 Client (測試用)
func NewClientFromDB(db *gorm.DB) *Client {
	return &Client{db: db}
}

// Open 以指定的 dialector 開啟 GORM
//
// 跳過預設事務以提升寫入效能，並開啟 TranslateError 讓重複鍵等錯誤轉成 gorm.ErrDuplicatedKey
func Open(dialector gorm.Dialector, logLevel string) (*gorm.DB, error) {
	return gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
		TranslateError:         true,
		Logger:                 newLogger(logLevel),
	})
}

// DB 回傳底層的 *gorm.DB 實例，供 adapter 使用
func (c *Client) DB() *gorm.DB {
	return c.db
}

// Close 關閉資料庫連線
func (c *Client) Close() error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func newDialector(cfg Config) (gorm.Dialector, error) {
	dsn, err := cfg.DSN()
	if err != nil {
		return nil, err
	}
	if cfg.Driver == DriverPostgres {
		return postgres.Open(dsn), nil
	}
	return mysql.Open(dsn), nil
}

// newLogger 根據配置建立 GORM Logger
func newLogger(level string) logger.Interface {
	var logLevel logger.LogLevel
	switch level {
	case "info":
		logLevel = logger.Info
	case "warn":
		logLevel = logger.Warn
	case "error":
		logLevel = logger.Error
	case "silent":
		logLevel = logger.Silent
	default:
		logLevel = logger.Error // 預設只記錄錯誤
	}

	return logger.Default.LogMode(logLevel)
}
