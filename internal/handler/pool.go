package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

type poolRequest struct {
	Name string `json:"name" binding:"required"`
}

type memberRequest struct {
	Code string `json:"code" binding:"required"`
	Name string `json:"name"`
}

// ListPools 列出自选池
func (h *Handler) ListPools(c *gin.Context) {
	pools, err := h.store.ListPools()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"data": pools,
	})
}

// CreatePool 新建自选池
func (h *Handler) CreatePool(c *gin.Context) {
	var req poolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "请求参数错误: " + err.Error(),
		})
		return
	}

	id, err := h.store.CreatePool(req.Name)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": err.Error(),
		})
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"id": id,
	})
}

// RenamePool 重命名自选池
func (h *Handler) RenamePool(c *gin.Context) {
	id, err := poolID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "自选池ID无效"})
		return
	}
	var req poolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "请求参数错误: " + err.Error(),
		})
		return
	}

	if err := h.store.RenamePool(id, req.Name); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id})
}

// DeletePool 删除自选池
func (h *Handler) DeletePool(c *gin.Context) {
	id, err := poolID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "自选池ID无效"})
		return
	}
	if err := h.store.DeletePool(id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id})
}

// ListMembers 列出自选池成员
func (h *Handler) ListMembers(c *gin.Context) {
	id, err := poolID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "自选池ID无效"})
		return
	}
	members, err := h.store.ListMembers(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"data": members,
	})
}

// AddMember 向自选池添加成员
func (h *Handler) AddMember(c *gin.Context) {
	id, err := poolID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "自选池ID无效"})
		return
	}
	var req memberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "请求参数错误: " + err.Error(),
		})
		return
	}

	if err := h.store.AddMember(id, req.Code, req.Name); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": req.Code})
}

// RemoveMember 从自选池移除成员
func (h *Handler) RemoveMember(c *gin.Context) {
	id, err := poolID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "自选池ID无效"})
		return
	}
	code := c.Param("code")
	if err := h.store.RemoveMember(id, code); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": code})
}

// GetConfig 读取运行时配置
func (h *Handler) GetConfig(c *gin.Context) {
	cfg, err := h.store.AllConfig()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"data": cfg,
	})
}

// UpdateConfig 更新运行时配置
func (h *Handler) UpdateConfig(c *gin.Context) {
	var req map[string]string
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "请求参数错误: " + err.Error(),
		})
		return
	}
	for k, v := range req {
		if err := h.store.SetConfig(k, v); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": err.Error(),
			})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"updated": len(req)})
}

func poolID(c *gin.Context) (int64, error) {
	return strconv.ParseInt(c.Param("id"), 10, 64)
}
