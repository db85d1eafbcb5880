package httptransport

import (
	"net/http"
	"time"

	gincors "github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"wazmoi/backend/internal/auth"
	jwtpkg "wazmoi/backend/internal/auth/jwt"
	"wazmoi/backend/internal/config"
	"wazmoi/backend/internal/middleware"
	"wazmoi/backend/internal/monitoring"
	"wazmoi/backend/internal/service"
)

// RouterDependencies 路由器依赖项
type RouterDependencies struct {
	Config       *config.Config
	AuthService  *auth.Service
	Delivery     *service.DeliveryService
	Inbox        *service.InboxService
	PrivateLinks *service.PrivateLinkService
	Profiles     *service.ProfileService
	Admin        *service.AdminService
	JWTManager   *jwtpkg.Manager
	Metrics      *monitoring.Metrics
	Logger       *zap.Logger
}

// NewRouter 创建并返回 Gin 路由实例。
func NewRouter(deps RouterDependencies) *gin.Engine {
	router := gin.New()

	// 监控中间件先挂，panic 恢复要包住后面所有处理
	monitoringMw := middleware.NewMonitoringMiddleware(deps.Metrics, deps.Logger)
	router.Use(monitoringMw.PanicRecovery())
	router.Use(monitoringMw.HTTPMetrics())
	router.Use(middleware.RequestLogger(deps.Logger))
	router.Use(middleware.SecurityHeaders())

	// 留言服务不收附件，1MB 足够了
	router.Use(middleware.RequestSizeLimit(1 * 1024 * 1024))

	// CORS 配置
	corsConfig := gincors.Config{
		AllowOrigins:     deps.Config.CORS.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	// 如果允许所有来源，则需清空凭证支持。
	for _, origin := range corsConfig.AllowOrigins {
		if origin == "*" {
			corsConfig.AllowCredentials = false
			break
		}
	}
	router.Use(gincors.New(corsConfig))

	// 创建处理器
	authHandler := NewAuthHandler(deps.AuthService, deps.JWTManager, deps.Metrics, deps.Logger)
	messageHandler := NewMessageHandler(deps.Delivery, deps.Inbox, deps.PrivateLinks, deps.AuthService, deps.Config.Inbox, deps.Logger)
	privateLinkHandler := NewPrivateLinkHandler(deps.PrivateLinks, deps.Inbox, deps.Metrics, deps.Logger)
	profileHandler := NewProfileHandler(deps.Profiles, deps.Logger)
	adminHandler := NewAdminHandler(deps.Admin, deps.Logger)

	// 创建中间件
	jwtAuth := middleware.NewJWTAuth(deps.JWTManager, deps.Logger)
	adminAuth := middleware.NewAdminAuth(deps.AuthService)

	// 健康检查（完整的存活/就绪探针在独立端口上）
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// ========== API Routes ==========
	api := router.Group("/api")
	{
		// 认证
		api.POST("/register", authHandler.Register)
		api.POST("/login", authHandler.Login)
		api.GET("/logout", authHandler.Logout)
		api.GET("/me", jwtAuth.RequireAuth(), authHandler.Me)

		// 留言投递：匿名访客和登录用户都可以发
		api.POST("/messages", jwtAuth.OptionalAuth(), messageHandler.Send)
		api.POST("/send", jwtAuth.OptionalAuth(), messageHandler.Send) // 兼容别名

		// 收件箱：访问控制由配置决定，处理器内判定
		api.GET("/messages/:profileLink", jwtAuth.OptionalAuth(), messageHandler.Inbox)

		// 资料页
		api.GET("/profile/:profileLink", profileHandler.Get)
		api.PUT("/profile/:username", jwtAuth.RequireAuth(), profileHandler.Update)
	}

	// ========== Private Link Routes ==========
	router.GET("/create-private-link/:pseudonym", privateLinkHandler.Create)
	router.GET("/:pseudonym/private", privateLinkHandler.Access)

	// ========== Admin Routes ==========
	adminRoutes := router.Group("/admin")
	adminRoutes.Use(jwtAuth.RequireAuth(), adminAuth.RequireAdmin())
	{
		adminRoutes.GET("/data", adminHandler.Dump)
	}

	return router
}
