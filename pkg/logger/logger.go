// Package logger 提供统一的日志框架
package logger

import (
	"context"
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	once   sync.Once
	logger zerolog.Logger
)

// Level 日志级别
type Level = zerolog.Level

const (
	DebugLevel = zerolog.DebugLevel
	InfoLevel  = zerolog.InfoLevel
	WarnLevel  = zerolog.WarnLevel
	ErrorLevel = zerolog.ErrorLevel
	FatalLevel = zerolog.FatalLevel
)

// Config 日志配置
type Config struct {
	Level      string `yaml:"level" json:"level"`
	Format     string `yaml:"format" json:"format"` // json/console
	Output     string `yaml:"output" json:"output"` // stdout/stderr/file
	FilePath   string `yaml:"file_path,omitempty" json:"file_path,omitempty"`
	TimeFormat string `yaml:"time_format,omitempty" json:"time_format,omitempty"`
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		Level:      "info",
		Format:     "console",
		Output:     "stdout",
		TimeFormat: time.RFC3339,
	}
}

// Init 初始化日志器
func Init(cfg Config) {
	once.Do(func() {
		level := parseLevel(cfg.Level)
		zerolog.SetGlobalLevel(level)

		var output io.Writer
		switch cfg.Output {
		case "stderr":
			output = os.Stderr
		case "file":
			if cfg.FilePath != "" {
				f, err := os.OpenFile(cfg.FilePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
				if err == nil {
					output = f
				} else {
					output = os.Stdout
				}
			} else {
				output = os.Stdout
			}
		default:
			output = os.Stdout
		}

		if cfg.Format == "console" {
			output = zerolog.ConsoleWriter{
				Out:        output,
				TimeFormat: cfg.TimeFormat,
			}
		}

		logger = zerolog.New(output).With().Timestamp().Logger()
	})
}

// parseLevel 解析日志级别
func parseLevel(level string) zerolog.Level {
	switch level {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	default:
		return zerolog.InfoLevel
	}
}

// Get 获取日志器
func Get() *zerolog.Logger {
	if logger.GetLevel() == zerolog.Disabled {
		Init(DefaultConfig())
	}
	return &logger
}

// WithContext 从上下文创建日志器
func WithContext(ctx context.Context) *zerolog.Logger {
	l := Get().With().Logger()

	// 添加请求ID
	if reqID, ok := ctx.Value("request_id").(string); ok {
		l = l.With().Str("request_id", reqID).Logger()
	}

	// 添加租户ID
	if tenantID, ok := ctx.Value("tenant_id").(string); ok {
		l = l.With().Str("tenant_id", tenantID).Logger()
	}

	return &l
}

// Debug 记录调试日志
func Debug() *zerolog.Event {
	return Get().Debug()
}

// Info 记录信息日志
func Info() *zerolog.Event {
	return Get().Info()
}

// Warn 记录警告日志
func Warn() *zerolog.Event {
	return Get().Warn()
}

// Error 记录错误日志
func Error() *zerolog.Event {
	return Get().Error()
}

// Fatal 记录致命错误日志
func Fatal() *zerolog.Event {
	return Get().Fatal()
}

// WithError 添加错误信息
func WithError(err error) *zerolog.Event {
	return Get().Error().Err(err)
}

// WithField 添加字段
func WithField(key string, value interface{}) *zerolog.Logger {
	l := Get().With().Interface(key, value).Logger()
	return &l
}

// PlannerLogger 排线引擎专用日志器
// 核心管线不直接写控制台，进度上报统一走这里
type PlannerLogger struct {
	base *zerolog.Logger
}

// NewPlannerLogger 创建排线引擎日志器
func NewPlannerLogger() *PlannerLogger {
	l := Get().With().Str("component", "planner").Logger()
	return &PlannerLogger{base: &l}
}

// StartPlan 记录规划开始
func (l *PlannerLogger) StartPlan(planID string, points int, maxHours float64, maxDays int) {
	l.base.Info().
		Str("plan_id", planID).
		Int("points", points).
		Float64("max_hours_per_day", maxHours).
		Int("max_days_per_week", maxDays).
		Msg("开始路线规划")
}

// VisitsDistributed 记录拜访任务分配完成
func (l *PlannerLogger) VisitsDistributed(planID string, visits, workingDays int) {
	l.base.Info().
		Str("plan_id", planID).
		Int("visits", visits).
		Int("working_days", workingDays).
		Msg("拜访任务已分配到工作日")
}

// DayPlanned 记录单日路线完成
func (l *PlannerLogger) DayPlanned(planID, date string, points, routes int) {
	l.base.Debug().
		Str("plan_id", planID).
		Str("date", date).
		Int("points", points).
		Int("routes", routes).
		Msg("单日路线生成完成")
}

// PlanComplete 记录规划完成
func (l *PlannerLogger) PlanComplete(planID string, duration time.Duration, routes, employees int) {
	l.base.Info().
		Str("plan_id", planID).
		Dur("duration", duration).
		Int("routes", routes).
		Int("employees", employees).
		Msg("路线规划完成")
}

// PlanFailed 记录规划失败
func (l *PlannerLogger) PlanFailed(planID, reason string) {
	l.base.Warn().
		Str("plan_id", planID).
		Str("reason", reason).
		Msg("路线规划失败")
}
