package router

import (
	"context"
	"encoding/json"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/hertz-contrib/keyauth"

	"resume-parser-go/internal/api/handler"
	"resume-parser-go/internal/config"
	"resume-parser-go/internal/types"
)

// RegisterRoutes 注册 API 路由
func RegisterRoutes(h *server.Hertz, cfg *config.Config, parseHandler *handler.ParseHandler) {
	api := h.Group("/v1")

	// 配置了API Key时对解析接口启用Bearer鉴权
	if cfg.Server.APIKey != "" {
		apiKey := cfg.Server.APIKey
		api.Use(keyauth.New(
			keyauth.WithKeyLookUp("header:Authorization", "Bearer"),
			keyauth.WithValidator(func(c context.Context, ctx *app.RequestContext, key string) (bool, error) {
				return key == apiKey, nil
			}),
			keyauth.WithErrorHandler(func(c context.Context, ctx *app.RequestContext, err error) {
				ctx.AbortWithStatusJSON(consts.StatusUnauthorized, utils.H{"error": "无效或缺失的API Key"})
			}),
		))
	}

	api.POST("/parse", func(c context.Context, ctx *app.RequestContext) {
		var req types.ParseRequest
		if err := json.Unmarshal(ctx.Request.Body(), &req); err != nil {
			ctx.JSON(consts.StatusBadRequest, utils.H{"error": "请求体不是合法的JSON"})
			return
		}

		req.Normalize()
		if err := req.Validate(); err != nil {
			ctx.JSON(consts.StatusBadRequest, utils.H{"error": err.Error()})
			return
		}

		// 流水线的任何终态（包括错误信封）都是本接口的正常返回
		_, result := parseHandler.HandleParseRequest(c, &req)
		ctx.JSON(consts.StatusOK, result)
	})

	// 存活检查
	h.GET("/health", func(c context.Context, ctx *app.RequestContext) {
		ctx.JSON(consts.StatusOK, utils.H{"ok": true})
	})

	// 就绪检查，任一已配置的存储依赖不可用时返回503
	h.GET("/ready", func(c context.Context, ctx *app.RequestContext) {
		ready, checks := parseHandler.Ready(c)
		if !ready {
			ctx.JSON(consts.StatusServiceUnavailable, checks)
			return
		}
		ctx.JSON(consts.StatusOK, checks)
	})
}
