// Package middleware 提供HTTP中间件
package middleware

import (
	"crypto/rand"
	"fmt"
	"net/http"
	"strings"

	"github.com/paixian/paixian/internal/security"
	"github.com/paixian/paixian/internal/tenant"
	"github.com/paixian/paixian/pkg/logger"
)

// AuthConfig 认证配置
type AuthConfig struct {
	APIKeyManager   *security.APIKeyManager
	TenantManager   *tenant.TenantManager
	RateLimiter     *security.RateLimiter
	SkipPaths       []string // 跳过认证的路径
	EnableRateLimit bool
}

// AuthMiddleware 认证中间件
func AuthMiddleware(config *AuthConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// 检查是否跳过认证
			for _, path := range config.SkipPaths {
				if strings.HasPrefix(r.URL.Path, path) {
					next.ServeHTTP(w, r)
					return
				}
			}

			// 提取API密钥
			apiKey := security.ExtractAPIKey(r)
			if apiKey == "" {
				http.Error(w, `{"error":"missing_api_key","message":"API密钥未提供"}`, http.StatusUnauthorized)
				return
			}

			// 验证API密钥
			key, err := config.APIKeyManager.Validate(apiKey)
			if err != nil {
				logger.Warn().
					Str("key_prefix", keyPrefix(apiKey)).
					Err(err).
					Msg("API密钥验证失败")
				http.Error(w, `{"error":"invalid_api_key","message":"无效的API密钥"}`, http.StatusUnauthorized)
				return
			}

			// 获取租户
			t, err := config.TenantManager.Get(key.TenantID)
			if err != nil {
				http.Error(w, `{"error":"tenant_error","message":"租户不可用"}`, http.StatusForbidden)
				return
			}

			// 检查频率限制
			if config.EnableRateLimit && config.RateLimiter != nil {
				if !config.RateLimiter.Allow(key.TenantID) {
					http.Error(w, `{"error":"rate_limit","message":"请求频率超限"}`, http.StatusTooManyRequests)
					return
				}
			}

			// 将租户信息添加到上下文
			ctx := tenant.WithTenant(r.Context(), t)
			r = r.WithContext(ctx)

			// 添加租户信息到响应头
			w.Header().Set("X-Tenant-ID", t.ID.String())

			next.ServeHTTP(w, r)
		})
	}
}

// RequireScope 权限范围检查中间件
func RequireScope(scope string, keyManager *security.APIKeyManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			apiKey := security.ExtractAPIKey(r)
			if apiKey == "" {
				next.ServeHTTP(w, r)
				return
			}

			key, err := keyManager.Validate(apiKey)
			if err != nil {
				http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
				return
			}

			if !key.HasScope(scope) {
				http.Error(w, `{"error":"forbidden","message":"权限不足"}`, http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// SecurityHeadersMiddleware 安全头中间件
func SecurityHeadersMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// 安全相关响应头
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("X-XSS-Protection", "1; mode=block")
		w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		w.Header().Set("Content-Security-Policy", "default-src 'self'")

		next.ServeHTTP(w, r)
	})
}

// RecoveryMiddleware 恢复中间件（捕获panic）
func RecoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				logger.Error().
					Interface("panic", err).
					Str("path", r.URL.Path).
					Msg("请求处理panic已恢复")
				http.Error(w, `{"error":"internal_error","message":"服务器内部错误"}`, http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// RequestIDMiddleware 请求ID中间件
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = generateRequestID()
		}
		w.Header().Set("X-Request-ID", requestID)
		next.ServeHTTP(w, r)
	})
}

// keyPrefix 日志只打印密钥前缀
func keyPrefix(key string) string {
	if len(key) <= 10 {
		return key
	}
	return key[:10] + "..."
}

func generateRequestID() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return fmt.Sprintf("req_%x", b[:8])
}
