package main

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/JoeShih716/go-txn-ledger/pkg/database"
	"github.com/JoeShih716/go-txn-ledger/pkg/logger"
)

// 儲存層選項
const (
	StorageMySQL    = database.DriverMySQL
	StoragePostgres = database.DriverPostgres
	StorageMemory   = "memory"
)

type Config struct {
	Server   ServerConfig    `yaml:"server"`
	Storage  StorageConfig   `yaml:"storage"`
	Database database.Config `yaml:"database"`
	Log      logger.Config   `yaml:"log"`
	Catalog  CatalogConfig   `yaml:"catalog"`
}

type ServerConfig struct {
	GrpcAddr        string        `yaml:"grpc_addr"`
	HTTPAddr        string        `yaml:"http_addr"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type StorageConfig struct {
	Driver  string `yaml:"driver"`   // "mysql" (預設), "postgres", "memory"
	WALPath string `yaml:"wal_path"` // memory 模式的 WAL 檔案，空字串表示不寫 WAL
}

type CatalogConfig struct {
	SeedDefaults bool `yaml:"seed_defaults"` // 目錄為空時寫入預設的四種交易類型
}

// loadConfig 讀取 YAML 設定並補全預設值
func loadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.applyDefaults(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() error {
	if c.Server.GrpcAddr == "" {
		c.Server.GrpcAddr = ":50051"
	}
	if c.Server.HTTPAddr == "" {
		c.Server.HTTPAddr = ":8080"
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = StorageMySQL
	}
	switch c.Storage.Driver {
	case StorageMySQL, StoragePostgres:
		c.Database.Driver = c.Storage.Driver
		c.Database.ApplyDefaults()
	case StorageMemory:
	default:
		return fmt.Errorf("invalid storage driver: %q", c.Storage.Driver)
	}
	return nil
}

// configPath 優先順序: -config 參數 > LEDGER_CONFIG 環境變數 > config/config.yaml
func configPath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if env := os.Getenv("LEDGER_CONFIG"); env != "" {
		return env
	}
	return "config/config.yaml"
}
