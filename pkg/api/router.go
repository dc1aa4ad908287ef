package api

import (
	"github.com/gin-gonic/gin"

	"github.com/LENAX/plan-engine/pkg/api/handler"
	"github.com/LENAX/plan-engine/pkg/api/middleware"
	"github.com/LENAX/plan-engine/pkg/core/engine"
	"github.com/LENAX/plan-engine/pkg/logx"
)

// SetupRouter 设置路由
func SetupRouter(eng *engine.Engine, version string) *gin.Engine {
	// 设置gin模式
	if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}

	cfg := eng.Config().PlanEngine
	log := eng.Logger().With(logx.String("component", "http"))

	router := gin.New()

	// 全局中间件
	router.Use(middleware.Recovery(log))
	router.Use(middleware.Logger(log))
	router.Use(middleware.CORS(cfg.Server.CORSOrigins))

	// 创建handlers
	healthHandler := handler.NewHealthHandler(eng, version)
	scheduleHandler := handler.NewScheduleHandler()
	projectHandler := handler.NewProjectHandler(eng)
	generateHandler := handler.NewGenerateHandler(eng)
	taskHandler := handler.NewTaskHandler(eng)
	eventHandler := handler.NewEventHandler(eng.Bus(), eng.Logger())

	// 生成接口共用一个限流桶
	generateLimit := middleware.RateLimit(cfg.Planning.GenerateRatePerSec, cfg.Planning.GenerateBurst)

	// 健康检查路由（不带前缀）
	router.GET("/health", healthHandler.Health)
	router.GET("/ready", healthHandler.Ready)

	// API v1 路由组
	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", healthHandler.Health)
		v1.GET("/ready", healthHandler.Ready)

		// 无状态计算
		v1.POST("/schedule/preview", scheduleHandler.Preview)
		v1.POST("/schedule/validate", scheduleHandler.Validate)
		v1.POST("/tech-stack", scheduleHandler.TechStack)

		// Project路由
		projects := v1.Group("/projects")
		{
			projects.POST("/generate", generateLimit, generateHandler.Generate)
			projects.POST("/generate-tasks", generateLimit, generateHandler.GenerateTasks)

			projects.GET("", projectHandler.List)
			projects.POST("", projectHandler.Create)
			projects.GET("/:id", projectHandler.Get)
			projects.PUT("/:id", projectHandler.Update)
			projects.DELETE("/:id", projectHandler.Delete)
			projects.GET("/:id/tasks", projectHandler.Tasks)
			projects.GET("/:id/user-stories", projectHandler.UserStories)
			projects.GET("/:id/duration", projectHandler.Duration)
			projects.POST("/:id/generate-gantt", generateHandler.GenerateGantt)
			projects.POST("/:id/generate-backlog", generateHandler.GenerateBacklog)
		}

		// Task路由
		tasks := v1.Group("/tasks")
		{
			tasks.GET("/:id", taskHandler.Get)
			tasks.PATCH("/:id/status", taskHandler.UpdateStatus)
		}

		v1.GET("/user-stories/:id", taskHandler.GetUserStory)
		v1.GET("/events/ws", eventHandler.Stream)
	}

	return router
}
