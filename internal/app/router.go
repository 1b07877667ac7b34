package app

import (
	"becoming_backend/docs"
	"becoming_backend/internal/config"
	"becoming_backend/internal/middleware"
	"becoming_backend/pkg/logger"
	"becoming_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	a.registerPublicRoutes(router, c)

	// 2. 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(
		middleware.AuthMiddleware(cfg.JWT.Secret, logger.Named("auth")),
		middleware.ActivityMiddleware(repos.user, logger.Named("activity")),
	)
	{
		a.registerUserRoutes(authGroup, c)
		a.registerGoalRoutes(authGroup, c)
		a.registerSignalRoutes(authGroup, c)
		a.registerAIRoutes(authGroup, c)
	}
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers) {
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/auth/register", c.auth.Register)
		public.POST("/auth/login", c.auth.Login)
		public.POST("/auth/refresh", c.auth.Refresh)
	}
}

func (a *App) registerUserRoutes(group *gin.RouterGroup, c *controllers) {
	user := group.Group("/user")
	{
		user.GET("/profile", c.user.GetProfile)
		user.PUT("/profile", c.user.UpdateProfile)
		user.POST("/avatar", c.user.UploadAvatar)
		user.DELETE("/account", c.user.DeleteAccount)
	}

	group.POST("/auth/logout", c.auth.Logout)

	group.GET("/settings", c.settings.Get)
	group.PUT("/settings", c.settings.Update)

	group.POST("/push-token", c.pushToken.Register)
	group.DELETE("/push-token", c.pushToken.Remove)
}

func (a *App) registerGoalRoutes(group *gin.RouterGroup, c *controllers) {
	goals := group.Group("/goals")
	{
		goals.GET("", c.goal.List)
		goals.POST("", c.goal.Create)
		goals.PUT("/:id", c.goal.Update)
		goals.DELETE("/:id", c.goal.Delete)
	}

	checkIns := group.Group("/check-ins")
	{
		checkIns.GET("", c.checkIn.List)
		checkIns.POST("", c.checkIn.Record)
	}
}

func (a *App) registerSignalRoutes(group *gin.RouterGroup, c *controllers) {
	signals := group.Group("/signals")
	{
		signals.GET("", c.signal.List)
		signals.POST("", c.signal.Create)
		signals.PATCH("/:id/feedback", c.signal.SetFeedback)
	}
}

func (a *App) registerAIRoutes(group *gin.RouterGroup, c *controllers) {
	ai := group.Group("/ai")
	{
		ai.POST("/reframe-goal", c.ai.ReframeGoal)
		ai.POST("/generate-mission", c.ai.GenerateMission)
		ai.POST("/generate-signal", c.ai.GenerateSignal)
	}
}
