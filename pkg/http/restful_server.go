package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
	"liyu1981.xyz/sensor-api-service/pkg/common"
	"liyu1981.xyz/sensor-api-service/pkg/sensor"
)

type RestfulServer struct {
	Server             *gin.Engine
	Sensors            *sensor.Core
	RateLimiterStore   *sensor.RateLimiterStore
	Metrics            *Metrics
	CORSAllowedOrigins []string
}

func (rs *RestfulServer) Setup() {
	rs.Server.SetHTMLTemplate(pageTemplates)
	rs.Server.Use(gin.Recovery(), RequestID(), AccessLog())

	if rs.Metrics != nil {
		rs.Server.Use(rs.Metrics.Middleware())
		rs.Server.GET("/metrics", gin.WrapH(rs.Metrics.Handler()))
	}

	rs.Server.GET("/healthz", rs.HealthCheck)

	rs.Server.GET("/", rs.Home)
	rs.Server.GET("/about", rs.About)
	rs.Server.GET("/sensor", rs.GetSensorData)

	sensors := rs.Server.Group("/sensor/:sensor_id", RequireSensorID)
	{
		sensors.POST("", rs.PostReading)
		sensors.GET("", rs.GetReadings)
	}
}

// Handler is what gets served: the gin engine, behind CORS when origins are configured.
func (rs *RestfulServer) Handler() http.Handler {
	if len(rs.CORSAllowedOrigins) == 0 {
		return rs.Server
	}

	c := cors.New(cors.Options{
		AllowedOrigins: rs.CORSAllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Content-Type", common.HeaderRequestID},
		ExposedHeaders: []string{common.HeaderRequestID},
	})
	return c.Handler(rs.Server)
}
