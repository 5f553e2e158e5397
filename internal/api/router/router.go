package router

import (
	"context"
	"math"
	"strconv"
	"strings"
	"time"

	"resume-flow-go/internal/api/handler"
	"resume-flow-go/internal/config"
	"resume-flow-go/internal/logger"
	"resume-flow-go/pkg/ratelimit"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/google/uuid"
	"github.com/hertz-contrib/keyauth"
)

const (
	// HeaderRequestID 请求ID头
	HeaderRequestID = "X-Request-ID"
	// HeaderAPIKey API Key 头
	HeaderAPIKey = "X-API-Key"

	requestIDKey = "request_id"
	healthPath   = "/api/v1/health"
)

// RegisterRoutes 注册 API 路由
func RegisterRoutes(h *server.Hertz, cfg *config.Config, resumeHandler *handler.ResumeHandler, jobHandler *handler.JobSearchHandler) {
	h.Use(RequestIDMiddleware())
	if cfg != nil && len(cfg.Server.APIKeys) > 0 {
		h.Use(APIKeyMiddleware(cfg.Server.APIKeys))
	}

	api := h.Group("/api/v1")

	// 添加健康检查
	api.GET("/health", func(c context.Context, ctx *app.RequestContext) {
		ctx.JSON(consts.StatusOK, utils.H{"status": "ok"})
	})

	// 只对解析接口限流，查询结果不受限
	var parseMiddleware []app.HandlerFunc
	if cfg != nil && cfg.Server.RateLimit.RequestsPerMinute > 0 {
		bucket := ratelimit.NewTokenBucket(cfg.Server.RateLimit.RequestsPerMinute, cfg.Server.RateLimit.Burst)
		parseMiddleware = append(parseMiddleware, RateLimitMiddleware(bucket))
	}
	parse := api.Group("/resume", parseMiddleware...)
	parse.POST("/parse", resumeHandler.HandleParseText)
	parse.POST("/upload", resumeHandler.HandleResumeUpload)

	api.GET("/resume/:submission_uuid", resumeHandler.HandleGetResult)

	api.POST("/jobs/search", jobHandler.HandleSearchJobs)
}

// RequestIDMiddleware 透传或生成 X-Request-ID，并记录访问日志
func RequestIDMiddleware() app.HandlerFunc {
	return func(c context.Context, ctx *app.RequestContext) {
		requestID := string(ctx.GetHeader(HeaderRequestID))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		ctx.Set(requestIDKey, requestID)
		ctx.Response.Header.Set(HeaderRequestID, requestID)

		// 后续 handler 通过 logger.Ctx(c) 拿到带 request_id 的 logger
		c = logger.WithRequestID(c, requestID)

		start := time.Now()
		ctx.Next(c)

		logger.Ctx(c).Debug().
			Str("method", string(ctx.Method())).
			Str("path", string(ctx.Path())).
			Int("status", ctx.Response.StatusCode()).
			Dur("latency", time.Since(start)).
			Msg("HTTP请求")
	}
}

// APIKeyMiddleware 校验 X-API-Key，健康检查不鉴权
func APIKeyMiddleware(keys []string) app.HandlerFunc {
	allowed := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		if k = strings.TrimSpace(k); k != "" {
			allowed[k] = struct{}{}
		}
	}

	return keyauth.New(
		keyauth.WithKeyLookUp("header:"+HeaderAPIKey, ""),
		keyauth.WithFilter(func(c context.Context, ctx *app.RequestContext) bool {
			return string(ctx.Path()) == healthPath
		}),
		keyauth.WithValidator(func(c context.Context, ctx *app.RequestContext, key string) (bool, error) {
			_, ok := allowed[key]
			return ok, nil
		}),
		keyauth.WithErrorHandler(func(c context.Context, ctx *app.RequestContext, err error) {
			ctx.AbortWithStatusJSON(consts.StatusUnauthorized, utils.H{"error": "invalid or missing API key"})
		}),
	)
}

// RateLimitMiddleware 令牌不足时返回 429 和 Retry-After
func RateLimitMiddleware(bucket *ratelimit.TokenBucket) app.HandlerFunc {
	return func(c context.Context, ctx *app.RequestContext) {
		if bucket.Allow() {
			ctx.Next(c)
			return
		}
		retryAfter := int(math.Ceil(bucket.RetryAfter().Seconds()))
		if retryAfter < 1 {
			retryAfter = 1
		}
		ctx.Response.Header.Set("Retry-After", strconv.Itoa(retryAfter))
		ctx.AbortWithStatusJSON(consts.StatusTooManyRequests, utils.H{"error": "too many requests, please retry later"})
	}
}
