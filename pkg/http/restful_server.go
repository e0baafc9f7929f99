package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
	"liyu1981.xyz/iot-datalogger/pkg/iot"
)

type RestfulServer struct {
	Server           *gin.Engine
	Iot              *iot.IOT
	RateLimiterStore *iot.RateLimiterStore

	// optional handlers mounted at /ws and /metrics
	StreamHandler  http.Handler
	MetricsHandler http.Handler
}

func (rs *RestfulServer) GetLimiter(clientKey string) *rate.Limiter {
	if rs.RateLimiterStore == nil {
		return nil
	} else {
		return rs.RateLimiterStore.GetLimiter(clientKey)
	}
}

func (rs *RestfulServer) CheckClientLimiter(clientKey string) bool {
	limiter := rs.GetLimiter(clientKey)
	if limiter == nil {
		return true
	}
	return limiter.Allow()
}

func (rs *RestfulServer) SetLimiter(clientKey string, clientRate float64, clientBurst int) {
	if rs.RateLimiterStore == nil {
		return
	}
	rs.RateLimiterStore.SetLimiter(clientKey, rate.Limit(clientRate), clientBurst)
}

// limitByClient rejects requests over the per-client budget, keyed by client IP.
func (rs *RestfulServer) limitByClient(c *gin.Context) {
	if !rs.CheckClientLimiter(c.ClientIP()) {
		c.AbortWithStatus(http.StatusTooManyRequests)
		return
	}
	c.Next()
}

func (rs *RestfulServer) Setup() {
	rs.Server.GET("/healthz", rs.HealthCheck)

	if rs.MetricsHandler != nil {
		rs.Server.GET("/metrics", gin.WrapH(rs.MetricsHandler))
	}
	if rs.StreamHandler != nil {
		rs.Server.GET("/ws", gin.WrapH(rs.StreamHandler))
	}

	api := rs.Server.Group("/", rs.limitByClient)
	{
		api.GET("/devices", rs.GetDevices)
		api.GET("/devices/:device_id/history", rs.GetDeviceHistory)
		api.GET("/readings", rs.GetReadings)
		api.GET("/history", rs.GetHistory)

		api.GET("/series/live", rs.GetLiveSeries)
		api.POST("/series/live", rs.PostLiveSeries)

		api.GET("/alarms", rs.GetAlarms)
		api.DELETE("/alarms", rs.DeleteAlarms)

		api.GET("/user", rs.GetUser)
		api.PUT("/user", rs.PutUser)
		api.DELETE("/user", rs.DeleteUser)
	}
}
