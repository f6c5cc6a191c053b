// PaiXian 排线引擎服务
// 主程序入口

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/paixian/paixian/internal/config"
	"github.com/paixian/paixian/internal/database"
	"github.com/paixian/paixian/internal/handler"
	"github.com/paixian/paixian/internal/metrics"
	"github.com/paixian/paixian/internal/middleware"
	"github.com/paixian/paixian/internal/repository"
	"github.com/paixian/paixian/internal/security"
	"github.com/paixian/paixian/internal/tenant"
	"github.com/paixian/paixian/pkg/logger"
	"github.com/paixian/paixian/pkg/planner"
)

// 构建信息（通过 ldflags 注入）
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// 加载 .env（不存在则忽略）
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "配置加载失败: %v\n", err)
		os.Exit(1)
	}

	// 初始化日志
	logFormat := "console"
	if cfg.IsProduction() {
		logFormat = "json"
	}
	logger.Init(logger.Config{
		Level:  cfg.App.LogLevel,
		Format: logFormat,
	})

	// 打印版本信息
	fmt.Printf("PaiXian 排线引擎 v%s\n", Version)
	fmt.Printf("Build: %s (%s)\n", BuildTime, GitCommit)
	fmt.Println()

	// 创建排线引擎
	engine := planner.New(planner.Config{
		MaxHoursPerDay:   cfg.Planner.MaxHoursPerDay,
		MaxDaysPerWeek:   cfg.Planner.MaxDaysPerWeek,
		HorizonDays:      cfg.Planner.HorizonDays,
		AvgSpeedKmh:      cfg.Planner.AvgSpeedKmh,
		ClusterFillRatio: cfg.Planner.ClusterFillRatio,
	})

	planHandler := handler.NewPlanHandler(engine, cfg.Planner.RequestTimeout)

	// 创建 HTTP 服务器
	mux := http.NewServeMux()

	// ========================================
	// 系统端点
	// ========================================

	// 健康检查端点
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok","service":"paixian"}`))
	})

	// 版本信息端点
	mux.HandleFunc("/version", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"version":"%s","build_time":"%s","git_commit":"%s"}`, Version, BuildTime, GitCommit)
	})

	// ========================================
	// 可选的数据库持久化
	// ========================================

	if cfg.Database.Enabled {
		db, err := database.New(&cfg.Database)
		if err != nil {
			logger.Fatal().Err(err).Msg("数据库连接失败")
		}
		defer db.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := db.EnsureSchema(ctx); err != nil {
			cancel()
			logger.Fatal().Err(err).Msg("初始化表结构失败")
		}
		cancel()

		planHandler.WithRepository(repository.NewPlanRepository(db))

		pointHandler := handler.NewPointHandler(repository.NewPointRepository(db))
		mux.HandleFunc("/api/v1/points/import", pointHandler.Import)
		mux.HandleFunc("/api/v1/points", pointHandler.List)

		logger.Info().
			Str("host", cfg.Database.Host).
			Int("port", cfg.Database.Port).
			Msg("数据库持久化已启用")
	} else {
		logger.Info().Msg("纯内存模式运行，排线结果不落库")
	}

	// ========================================
	// API v1 端点
	// ========================================

	// API 根路由
	mux.HandleFunc("/api/v1/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{
			"message": "PaiXian 排线引擎 API v1",
			"endpoints": {
				"plan": {
					"generate": "POST /api/v1/plan/generate",
					"validate": "POST /api/v1/plan/validate"
				},
				"stats": {
					"workload": "POST /api/v1/stats/workload",
					"coverage": "POST /api/v1/stats/coverage"
				},
				"points": {
					"import": "POST /api/v1/points/import",
					"list": "GET /api/v1/points"
				}
			}
		}`))
	})

	// 排线生成 API
	mux.HandleFunc("/api/v1/plan/generate", planHandler.Generate)

	// 排线验证 API
	mux.HandleFunc("/api/v1/plan/validate", planHandler.Validate)

	// ========================================
	// 统计分析 API
	// ========================================

	// 负载分析 API
	mux.HandleFunc("/api/v1/stats/workload", handler.WorkloadHandler)

	// 日历覆盖分析 API
	mux.HandleFunc("/api/v1/stats/coverage", handler.CoverageHandler)

	// ========================================
	// 监控端点
	// ========================================

	// Prometheus 指标端点
	if cfg.Metrics.Enabled {
		mux.Handle(cfg.Metrics.Path, metrics.Handler())
	}

	// ========================================
	// 中间件
	// ========================================

	// 中间件执行顺序：requestID -> rateLimit -> cors -> [auth] -> logging -> handler
	globalRateLimiter = newRateLimiter(float64(cfg.API.RateLimit))

	var inner http.Handler = loggingMiddleware(mux)
	if cfg.API.AuthEnabled {
		inner = middleware.AuthMiddleware(buildAuthConfig(cfg))(inner)
	}
	chain := requestIDMiddleware(rateLimitMiddleware(corsMiddleware(inner)))

	port := fmt.Sprintf("%d", cfg.App.Port)
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      chain,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// 启动服务器（非阻塞）
	go func() {
		logger.Info().
			Str("port", port).
			Str("version", Version).
			Str("env", cfg.App.Env).
			Str("url", fmt.Sprintf("http://localhost:%s", port)).
			Str("api_docs", fmt.Sprintf("http://localhost:%s/api/v1/", port)).
			Msg("服务器启动")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("服务器启动失败")
			os.Exit(1)
		}
	}()

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("正在关闭服务器...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("服务器关闭失败")
		os.Exit(1)
	}

	logger.Info().Msg("服务器已关闭")
}

// buildAuthConfig 构建API密钥认证配置
// 注册默认租户并签发一把开发密钥，正式部署应换成外部密钥管理
func buildAuthConfig(cfg *config.Config) *middleware.AuthConfig {
	tenantManager := tenant.NewTenantManager()
	defaultTenant := tenant.CreateDefaultTenant()
	_ = tenantManager.Register(defaultTenant)

	keyManager := security.NewAPIKeyManager()
	key, err := keyManager.GenerateKey(defaultTenant.Code, "默认密钥", []string{"*"}, nil)
	if err != nil {
		logger.Fatal().Err(err).Msg("生成默认API密钥失败")
	}
	logger.Info().Str("api_key", key.Key).Msg("API密钥认证已启用")

	return &middleware.AuthConfig{
		APIKeyManager:   keyManager,
		TenantManager:   tenantManager,
		RateLimiter:     security.NewRateLimiter(cfg.API.RateLimit, time.Minute),
		SkipPaths:       []string{"/health", "/version", "/metrics"},
		EnableRateLimit: true,
	}
}

// requestIDMiddleware 请求ID追踪中间件
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// 尝试从请求头获取 Request ID，没有则生成新的
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}

		// 设置响应头
		w.Header().Set("X-Request-ID", requestID)

		// 将 Request ID 存储到 context 中
		ctx := context.WithValue(r.Context(), "request_id", requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// loggingMiddleware 日志中间件
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// 获取 Request ID
		requestID, _ := r.Context().Value("request_id").(string)

		// 包装ResponseWriter以捕获状态码
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		duration := time.Since(start)

		logger.Info().
			Str("request_id", requestID).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rw.statusCode).
			Dur("duration", duration).
			Msg("请求处理")

		// 记录Prometheus指标
		metrics.RecordRequestMetrics(r.Method, r.URL.Path, rw.statusCode, duration)
	})
}

// responseWriter 包装ResponseWriter以捕获状态码
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// rateLimiter 简单的令牌桶限流器
type rateLimiter struct {
	tokens     float64
	maxTokens  float64
	refillRate float64 // 每秒添加的令牌数
	lastRefill time.Time
	mu         sync.Mutex
}

// newRateLimiter 创建限流器
func newRateLimiter(requestsPerSecond float64) *rateLimiter {
	return &rateLimiter{
		tokens:     requestsPerSecond,
		maxTokens:  requestsPerSecond * 2, // 允许突发流量
		refillRate: requestsPerSecond,
		lastRefill: time.Now(),
	}
}

// Allow 检查是否允许请求
func (rl *rateLimiter) Allow() bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	elapsed := now.Sub(rl.lastRefill).Seconds()
	rl.tokens += elapsed * rl.refillRate
	if rl.tokens > rl.maxTokens {
		rl.tokens = rl.maxTokens
	}
	rl.lastRefill = now

	if rl.tokens >= 1 {
		rl.tokens--
		return true
	}
	return false
}

var globalRateLimiter = newRateLimiter(100) // 默认 100 QPS

// rateLimitMiddleware 限流中间件
func rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !globalRateLimiter.Allow() {
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"error":   true,
				"code":    "RATE_LIMITED",
				"message": "请求过于频繁，请稍后重试",
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// corsMiddleware CORS中间件
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-API-Key")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
