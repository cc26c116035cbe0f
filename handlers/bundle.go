// File: voicetask/handlers/bundle.go
package handlers

import "github.com/gin-gonic/gin"

// HandlerBundle groups all endpoint handlers into one struct.
type HandlerBundle struct {
	// Command endpoints
	CommandHandler gin.HandlerFunc
	SessionHandler gin.HandlerFunc

	// Profile endpoints
	GetProfileHandler    gin.HandlerFunc
	UpdateProfileHandler gin.HandlerFunc

	// Provider endpoints
	SearchProvidersHandler gin.HandlerFunc
	GetProviderHandler     gin.HandlerFunc
	CategoriesHandler      gin.HandlerFunc

	// Workflow endpoints
	ListWorkflowsHandler      gin.HandlerFunc
	CreateWorkflowHandler     gin.HandlerFunc
	GetWorkflowHandler        gin.HandlerFunc
	DeleteWorkflowHandler     gin.HandlerFunc
	SetWorkflowStatusHandler  gin.HandlerFunc
	RunDueHandler             gin.HandlerFunc
	ReportExecutionHandler    gin.HandlerFunc
	WorkflowExecutionsHandler gin.HandlerFunc
	ListExecutionsHandler     gin.HandlerFunc
	IntervalsHandler          gin.HandlerFunc

	HealthHandler gin.HandlerFunc
}
