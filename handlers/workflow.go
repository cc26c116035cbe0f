package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"voicetask/models"
	"voicetask/services/scheduler"
	"voicetask/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// DueRunner triggers one scheduled-run batch.
type DueRunner interface {
	RunDue(ctx context.Context) ([]models.RunResult, error)
}

type WorkflowHandler struct {
	Service scheduler.WorkflowService
	Runner  DueRunner
}

func NewWorkflowHandler(svc scheduler.WorkflowService, runner DueRunner) *WorkflowHandler {
	return &WorkflowHandler{Service: svc, Runner: runner}
}

func (h *WorkflowHandler) ListWorkflowsHandler(c *gin.Context) {
	workflows, err := h.Service.List(c.Request.Context())
	if err != nil {
		h.internal(c, "Failed to list workflows", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"workflows": workflows})
}

func (h *WorkflowHandler) CreateWorkflowHandler(c *gin.Context) {
	var input scheduler.CreateParams
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid workflow", err.Error())
		return
	}

	w, err := h.Service.Create(c.Request.Context(), input)
	if errors.Is(err, scheduler.ErrMissingSchedule) || errors.Is(err, scheduler.ErrMissingCategory) {
		utils.JSONError(c, http.StatusBadRequest, "Invalid workflow", err.Error())
		return
	}
	if err != nil {
		h.internal(c, "Failed to create workflow", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"workflow": w})
}

func (h *WorkflowHandler) GetWorkflowHandler(c *gin.Context) {
	w, err := h.Service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, "Failed to load workflow", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"workflow": w})
}

func (h *WorkflowHandler) DeleteWorkflowHandler(c *gin.Context) {
	if err := h.Service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, "Failed to delete workflow", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Workflow deleted"})
}

// SetWorkflowStatusHandler pauses or resumes a workflow.
func (h *WorkflowHandler) SetWorkflowStatusHandler(c *gin.Context) {
	var input struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid status", err.Error())
		return
	}

	w, err := h.Service.SetStatus(c.Request.Context(), c.Param("id"), input.Status)
	if errors.Is(err, scheduler.ErrInvalidStatus) {
		utils.JSONError(c, http.StatusBadRequest, "Invalid status", err.Error())
		return
	}
	if err != nil {
		h.fail(c, "Failed to update workflow", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"workflow": w})
}

// RunDueHandler runs every due workflow now and reports per-workflow results.
func (h *WorkflowHandler) RunDueHandler(c *gin.Context) {
	results, err := h.Runner.RunDue(c.Request.Context())
	if err != nil {
		h.internal(c, "Failed to run due workflows", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ran": len(results), "results": results})
}

// ReportExecutionHandler records an externally observed result for a workflow.
func (h *WorkflowHandler) ReportExecutionHandler(c *gin.Context) {
	var input scheduler.ReportParams
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid execution report", err.Error())
		return
	}
	input.WorkflowID = c.Param("id")

	exec, err := h.Service.ReportExecution(c.Request.Context(), input)
	if err != nil {
		h.fail(c, "Failed to record execution", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"execution": exec})
}

func (h *WorkflowHandler) WorkflowExecutionsHandler(c *gin.Context) {
	execs, err := h.Service.WorkflowExecutions(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, "Failed to list executions", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"executions": execs})
}

// ListExecutionsHandler returns the newest executions first; ?limit= defaults to the log cap.
func (h *WorkflowHandler) ListExecutionsHandler(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			utils.JSONError(c, http.StatusBadRequest, "Invalid limit", raw)
			return
		}
		limit = n
	}

	execs, err := h.Service.Executions(c.Request.Context(), limit)
	if err != nil {
		h.internal(c, "Failed to list executions", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"executions": execs})
}

// IntervalsHandler lists the recognized interval tokens.
func (h *WorkflowHandler) IntervalsHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"intervals": scheduler.Intervals(), "default": scheduler.DefaultPeriod.String()})
}

func (h *WorkflowHandler) fail(c *gin.Context, message string, err error) {
	if errors.Is(err, scheduler.ErrWorkflowNotFound) {
		utils.JSONError(c, http.StatusNotFound, "Workflow not found", c.Param("id"))
		return
	}
	h.internal(c, message, err)
}

func (h *WorkflowHandler) internal(c *gin.Context, message string, err error) {
	getLogger(c).Error(message, zap.Error(err))
	utils.JSONError(c, http.StatusInternalServerError, message, err.Error())
}
