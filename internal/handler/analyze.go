package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"stock-analysis-backend/internal/analysis"
	"stock-analysis-backend/internal/model"
	"stock-analysis-backend/internal/service"
	"stock-analysis-backend/internal/store"
)

// Handler HTTP处理器
type Handler struct {
	svc   *service.AnalyzeService
	store *store.Store
}

// New 创建处理器
func New(svc *service.AnalyzeService, st *store.Store) *Handler {
	return &Handler{svc: svc, store: st}
}

// Analyze 单标的完整分析
func (h *Handler) Analyze(c *gin.Context) {
	var req model.AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "请求参数错误: " + err.Error(),
		})
		return
	}

	report, err := h.svc.AnalyzeOne(req.Code, req.WithLLM)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, analysis.ErrNoQuote) {
			status = http.StatusBadGateway
		}
		c.JSON(status, gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, report)
}

// AnalyzeBatch 批量分析（同步）
func (h *Handler) AnalyzeBatch(c *gin.Context) {
	var req model.BatchAnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "请求参数错误: " + err.Error(),
		})
		return
	}

	reports, err := h.svc.AnalyzeBatch(req.Codes)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"results": reports,
	})
}

// CreateTask 创建异步批量分析任务
func (h *Handler) CreateTask(c *gin.Context) {
	var req model.BatchAnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "请求参数错误: " + err.Error(),
		})
		return
	}

	status, created, err := h.svc.CreateTask(req.Codes, req.RequestID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
		return
	}

	code := http.StatusOK
	if created {
		code = http.StatusCreated
	}
	c.JSON(code, status)
}

// GetTask 查询任务状态
func (h *Handler) GetTask(c *gin.Context) {
	status, ok := h.svc.TaskStatus(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "任务不存在或已过期",
		})
		return
	}
	c.JSON(http.StatusOK, status)
}

// CancelTask 取消任务
func (h *Handler) CancelTask(c *gin.Context) {
	status, ok := h.svc.CancelTask(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "任务不存在或已过期",
		})
		return
	}
	c.JSON(http.StatusOK, status)
}

// GetHistory 查询分析历史
func (h *Handler) GetHistory(c *gin.Context) {
	code := c.Query("code")
	limit := 50
	if v := c.Query("limit"); v != "" {
		if parsed, err := parsePositiveInt(v); err == nil {
			limit = parsed
		}
	}

	records, err := h.store.RecentHistory(code, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"data": records,
	})
}
