package routers

import (
	"io/fs"
	"net/http"
	"strings"

	"github.com/haierkeys/note-rpc-service/internal/app"
	"github.com/haierkeys/note-rpc-service/internal/middleware"
	"github.com/haierkeys/note-rpc-service/internal/routers/api_router"

	"github.com/gin-gonic/gin"
	"github.com/opentracing/opentracing-go"
	"github.com/prometheus/client_golang/prometheus"
)

// APIPrefix 所有 API 路径的前缀
const APIPrefix = "/api"

// NewRouter 创建公共路由
// frontendFiles 的根目录需包含 frontend/index.html 与 frontend/assets
// reg 为 nil 时使用 prometheus 默认注册器
func NewRouter(frontendFiles fs.FS, appContainer *app.App, reg prometheus.Registerer) *gin.Engine {

	// 获取配置
	cfg := appContainer.Config()

	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	metrics := middleware.NewMetrics(reg)
	api_router.RegisterNoteMetrics(reg, appContainer)

	r := gin.New()
	// 过程路径必须精确匹配，带尾部斜杠的请求走 NoRoute
	r.RedirectTrailingSlash = false
	// 全局中间件同样作用于 NoRoute，任意路径的 OPTIONS 都由 Cors 直接应答
	r.Use(middleware.Cors())
	r.Use(middleware.RecoveryWithLogger(appContainer.Logger()))

	serveIndex := frontendHandler(frontendFiles)
	r.GET("/", serveIndex)

	if frontendAssets, err := fs.Sub(frontendFiles, "frontend/assets"); err == nil {
		cacheMiddleware := func(c *gin.Context) {
			// 设置强缓存，缓存一年
			c.Header("Cache-Control", "public, s-maxage=31536000, max-age=31536000, must-revalidate")
			c.Next()
		}
		r.Group("/assets", cacheMiddleware).StaticFS("/", http.FS(frontendAssets))
	}

	api := r.Group(APIPrefix)
	{
		api.Use(middleware.TraceMiddleware(cfg.Tracer.Enabled, cfg.Tracer.Header)) // Trace ID 中间件
		api.Use(middleware.OpenTracing(opentracing.GlobalTracer()))
		api.Use(middleware.AccessLogWithLogger(appContainer.Logger()))
		api.Use(metrics.Handler())

		// 创建 Handlers（注入 App Container）
		noteHandler := api_router.NewNoteHandler(appContainer)

		// 方法校验在处理器中完成，写操作对非 POST 返回 METHOD_NOT_SUPPORTED
		rpc := api.Group("/trpc")
		rpc.Any("/"+api_router.OpGetHello, noteHandler.GetHello)
		rpc.Any("/"+api_router.OpCreateNote, noteHandler.CreateNote)
		rpc.Any("/"+api_router.OpGetNote, noteHandler.GetNote)
		rpc.Any("/"+api_router.OpGetNotes, noteHandler.GetNotes)
		rpc.Any("/"+api_router.OpUpdateNote, noteHandler.UpdateNote)
		rpc.Any("/"+api_router.OpDeleteNote, noteHandler.DeleteNote)
	}

	notFound := middleware.NoFound()
	r.NoRoute(func(c *gin.Context) {
		if isAPIPath(c.Request.URL.Path) {
			notFound(c)
			return
		}
		serveIndex(c)
	})

	return r
}

// isAPIPath 判断路径是否属于 API 命名空间
func isAPIPath(path string) bool {
	return path == APIPrefix || strings.HasPrefix(path, APIPrefix+"/")
}

// frontendHandler 返回前端首页，首页缺失时返回 404
func frontendHandler(frontendFiles fs.FS) gin.HandlerFunc {
	index, err := fs.ReadFile(frontendFiles, "frontend/index.html")
	return func(c *gin.Context) {
		if err != nil || (c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead) {
			c.String(http.StatusNotFound, http.StatusText(http.StatusNotFound))
			return
		}
		c.Data(http.StatusOK, "text/html; charset=utf-8", index)
	}
}
