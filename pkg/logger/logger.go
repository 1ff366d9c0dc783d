package logger

import (
	"io"
	"log/slog"
	"strings"
	"time"

	charmlog "github.com/charmbracelet/log"
)

// Config 日誌配置
type Config struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" (預設) 或 "console"
}

// New 建立 slog.Logger
//
// json 格式適用於正式環境，console 格式使用 charmbracelet/log 輸出彩色文字
func New(cfg Config, w io.Writer) *slog.Logger {
	level := parseLevel(cfg.Level)
	if strings.EqualFold(cfg.Format, "console") {
		handler := charmlog.NewWithOptions(w, charmlog.Options{
			Level:           charmlog.Level(level),
			ReportTimestamp: true,
			TimeFormat:      time.Kitchen,
		})
		return slog.New(handler)
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
