package http

import (
	"github.com/gin-gonic/gin"

	"empiremap/api/api/http/controller/home"
)

func Routers(e *gin.RouterGroup) {

	homeGroup := e.Group("/")
	homeGroup.GET("public/config", home.Public)

	homeGroup.GET("map/empires.geojson", home.EmpireMapGeoJSON)
	homeGroup.GET("map/status", home.MapStatus)
	homeGroup.POST("map/refresh", home.RefreshMap)
}
