package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"stock-analysis-backend/internal/stockdata"
)

// GetSymbols 搜索证券列表
func (h *Handler) GetSymbols(c *gin.Context) {
	keyword := c.Query("keyword")

	symbols, err := stockdata.SearchSymbols(keyword)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": symbols,
	})
}

// GetKline 获取K线数据
func (h *Handler) GetKline(c *gin.Context) {
	code := c.Param("code")
	period := c.DefaultQuery("period", "daily")

	kline, err := stockdata.GetKlineResponse(code, period)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, kline)
}

// GetSnapshot 获取实时行情
func (h *Handler) GetSnapshot(c *gin.Context) {
	code := c.Param("code")

	snap, err := stockdata.GetSnapshot(code)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, snap)
}

func parsePositiveInt(s string) (int, error) {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if v <= 0 {
		return 0, fmt.Errorf("必须为正整数")
	}
	return v, nil
}
