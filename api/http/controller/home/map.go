package home

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"empiremap/api/api/common"
	"empiremap/api/codes"
	"empiremap/api/log"
	"empiremap/api/service"
	"empiremap/api/service/geojson"
	"empiremap/api/system"
)

var (
	gen        *service.Generator
	refreshMu  sync.Mutex
	refreshing bool
)

// Init 注入生成器实例（main 启动时调用一次）
func Init(g *service.Generator) { gen = g }

// GET /api/map/empires.geojson
// 直接返回最近一轮生成的 FeatureCollection（前端地图直接消费，
// 不走统一响应包装）。还没有完成过一轮时返回 503。
func EmpireMapGeoJSON(c *gin.Context) {
	if gen == nil {
		c.JSON(http.StatusServiceUnavailable, common.Response{
			Timestamp: time.Now().Unix(),
			Code:      codes.CODE_ERR_NOT_READY,
			Msg:       "generator not initialized",
		})
		return
	}
	fc, _, ok := gen.Current()
	if !ok {
		c.JSON(http.StatusServiceUnavailable, common.Response{
			Timestamp: time.Now().Unix(),
			Code:      codes.CODE_ERR_NOT_READY,
			Msg:       "map not generated yet",
		})
		return
	}
	c.JSON(http.StatusOK, fc)
}

// GET /api/map/status
func MapStatus(c *gin.Context) {
	res := common.Response{Timestamp: time.Now().Unix(), Code: codes.CODE_SUCCESS, Msg: "success"}

	if gen == nil {
		res.Code = codes.CODE_ERR_NOT_READY
		res.Msg = "generator not initialized"
		c.JSON(http.StatusOK, res)
		return
	}
	_, stats, ok := gen.Current()
	res.Data = gin.H{
		"ready": ok,
		"stats": stats,
	}
	c.JSON(http.StatusOK, res)
}

// POST /api/map/refresh
// 异步触发一轮重新生成；已有一轮在跑时直接拒绝。
func RefreshMap(c *gin.Context) {
	res := common.Response{Timestamp: time.Now().Unix(), Code: codes.CODE_SUCCESS, Msg: "success"}

	if gen == nil {
		res.Code = codes.CODE_ERR_NOT_READY
		res.Msg = "generator not initialized"
		c.JSON(http.StatusOK, res)
		return
	}

	refreshMu.Lock()
	if refreshing {
		refreshMu.Unlock()
		res.Code = codes.CODE_ERR_BAD_PARAMS
		res.Msg = "refresh already in progress"
		c.JSON(http.StatusOK, res)
		return
	}
	refreshing = true
	refreshMu.Unlock()

	go func() {
		defer func() {
			refreshMu.Lock()
			refreshing = false
			refreshMu.Unlock()
		}()
		// 请求上下文在响应后即取消，后台生成用独立 context
		if _, err := gen.Run(context.Background(), geojson.Assemble); err != nil {
			log.Error("manual refresh error: ", err)
		}
	}()

	res.Msg = "refresh started"
	c.JSON(http.StatusOK, res)
}

// GET /api/public/config
func Public(c *gin.Context) {
	res := common.Response{Timestamp: time.Now().Unix(), Code: codes.CODE_SUCCESS, Msg: "success"}

	cfg := system.GetConfig()
	res.Data = gin.H{
		"source":          cfg.BitJita.BaseURL,
		"refresh_minutes": cfg.Map.RefreshMinutes,
	}
	c.JSON(http.StatusOK, res)
}
