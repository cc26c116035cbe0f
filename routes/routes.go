package routes

import (
	"time"

	"voicetask/handlers"
	"voicetask/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterCommandRoutes registers the voice/text command endpoints.
func RegisterCommandRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api")
	{
		api.POST("/command", hb.CommandHandler)
		api.GET("/session", hb.SessionHandler)
	}
}

// RegisterProfileRoutes registers the single-user profile endpoints.
func RegisterProfileRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/profile")
	{
		api.GET("", hb.GetProfileHandler)
		api.PUT("", hb.UpdateProfileHandler)
	}
}

// RegisterProviderRoutes registers provider catalog endpoints.
func RegisterProviderRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/providers")
	{
		api.GET("", hb.SearchProvidersHandler)
		api.GET("/categories", hb.CategoriesHandler)
		api.GET("/id/:id", hb.GetProviderHandler)
	}
}

// RegisterWorkflowRoutes registers recurring-task and execution-log endpoints.
func RegisterWorkflowRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/workflows")
	{
		api.GET("", hb.ListWorkflowsHandler)
		api.POST("", hb.CreateWorkflowHandler)
		api.POST("/run-due", hb.RunDueHandler)
		api.GET("/:id", hb.GetWorkflowHandler)
		api.DELETE("/:id", hb.DeleteWorkflowHandler)
		api.PATCH("/:id/status", hb.SetWorkflowStatusHandler)
		api.GET("/:id/executions", hb.WorkflowExecutionsHandler)
		api.POST("/:id/executions", hb.ReportExecutionHandler)
	}

	r.GET("/api/executions", hb.ListExecutionsHandler)
	r.GET("/api/intervals", hb.IntervalsHandler)
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.GET("/health", hb.HealthHandler)
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", utils.SessionHeader},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	RegisterCommandRoutes(r, hb)
	RegisterProfileRoutes(r, hb)
	RegisterProviderRoutes(r, hb)
	RegisterWorkflowRoutes(r, hb)
	RegisterHealthRoute(r, hb)
}
