package http

import (
	"errors"
	"net/http"

	"go.uber.org/zap"
	"liyu1981.xyz/iot-datalogger/pkg/common"
	"liyu1981.xyz/iot-datalogger/pkg/iot"
	"liyu1981.xyz/iot-datalogger/pkg/models"

	"github.com/gin-gonic/gin"

	z "github.com/Oudwins/zog"
	"github.com/Oudwins/zog/zhttp"
)

func (rs *RestfulServer) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (rs *RestfulServer) GetDevices(c *gin.Context) {
	c.JSON(http.StatusOK, rs.Iot.Board())
}

// upstreamError maps feed failures to 502 and anything else to 500.
func upstreamError(c *gin.Context, err error) {
	common.GetLoggerWith(common.LoggerNameRestfulServer).Warn("Dashboard request failed",
		zap.String("path", c.FullPath()),
		zap.Error(err),
	)

	if errors.Is(err, iot.ErrFetch) || errors.Is(err, iot.ErrMalformedPayload) {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}

func (rs *RestfulServer) GetReadings(c *gin.Context) {
	data, err := rs.Iot.FetchDashboardData(c.Request.Context())
	if err != nil {
		upstreamError(c, err)
		return
	}
	c.JSON(http.StatusOK, data)
}

type HistoryQuery struct {
	Start string `form:"start" zog:"start"`
	End   string `form:"end" zog:"end"`
	Limit int    `form:"limit" zog:"limit"`
}

var historyQuerySchema = z.Struct(z.Shape{
	"Start": z.String().Required(),
	"End":   z.String().Required(),
	"Limit": z.Int().GTE(1).LTE(1000),
})

func (rs *RestfulServer) parseHistoryQuery(c *gin.Context, defaultLimit int) (iot.DateRange, int, bool) {
	var req HistoryQuery
	if err := historyQuerySchema.Parse(zhttp.Request(c.Request), &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err})
		return iot.DateRange{}, 0, false
	}

	dateRange, err := iot.ParseDateRange(req.Start, req.End, rs.Iot.Settings.Location)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return iot.DateRange{}, 0, false
	}

	limit := req.Limit
	if limit == 0 {
		limit = defaultLimit
	}
	return dateRange, limit, true
}

func (rs *RestfulServer) GetDeviceHistory(c *gin.Context) {
	deviceID := c.Param("device_id")

	dateRange, limit, ok := rs.parseHistoryQuery(c, rs.Iot.Settings.DeviceHistoryPoints)
	if !ok {
		return
	}

	readings, err := rs.Iot.FetchHistory(c.Request.Context())
	if err != nil {
		upstreamError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"deviceId": deviceID,
		"series":   iot.HistoricalSeries(readings, deviceID, dateRange, limit),
	})
}

// GetHistory loads every device's range into the chart session, replacing the live view.
func (rs *RestfulServer) GetHistory(c *gin.Context) {
	dateRange, limit, ok := rs.parseHistoryQuery(c, rs.Iot.Settings.HistoryPoints)
	if !ok {
		return
	}

	readings, err := rs.Iot.FetchHistory(c.Request.Context())
	if err != nil {
		upstreamError(c, err)
		return
	}

	session := rs.Iot.Series()
	session.ShowHistory(iot.HistoricalByDevice(readings, dateRange, limit))
	rs.writeSeries(c, session)
}

func (rs *RestfulServer) writeSeries(c *gin.Context, session *iot.SeriesSession) {
	c.JSON(http.StatusOK, gin.H{
		"mode":    session.Mode(),
		"buckets": session.Buckets(),
	})
}

func (rs *RestfulServer) GetLiveSeries(c *gin.Context) {
	rs.writeSeries(c, rs.Iot.Series())
}

func (rs *RestfulServer) PostLiveSeries(c *gin.Context) {
	session := rs.Iot.Series()
	session.SwitchToLive()
	rs.writeSeries(c, session)
}

type AlarmQuery struct {
	Start string `form:"start" zog:"start"`
	End   string `form:"end" zog:"end"`
}

var alarmQuerySchema = z.Struct(z.Shape{
	"Start": z.String(),
	"End":   z.String(),
})

func (rs *RestfulServer) GetAlarms(c *gin.Context) {
	var req AlarmQuery
	if err := alarmQuerySchema.Parse(zhttp.Request(c.Request), &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err})
		return
	}

	records := rs.Iot.Alarm.List()

	if req.Start != "" || req.End != "" {
		if req.Start == "" || req.End == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "start and end must be given together"})
			return
		}
		dateRange, err := iot.ParseDateRange(req.Start, req.End, rs.Iot.Settings.Location)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		records = iot.FilterAlarms(records, dateRange)
	}

	c.JSON(http.StatusOK, records)
}

func (rs *RestfulServer) DeleteAlarms(c *gin.Context) {
	rs.Iot.Alarm.Clear()
	c.Status(http.StatusNoContent)
}

type UserResponse struct {
	UserID string `json:"userId"`
	Name   string `json:"name"`
}

func (rs *RestfulServer) GetUser(c *gin.Context) {
	user := rs.Iot.User.GetUser()
	if user == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no user registered"})
		return
	}
	c.JSON(http.StatusOK, UserResponse{UserID: user.UserID, Name: user.Name})
}

var userRequestSchema = z.Struct(z.Shape{
	"UserID":   z.String().Min(1).Required(),
	"Password": z.String().Min(1).Required(),
	"Name":     z.String(),
})

func (rs *RestfulServer) PutUser(c *gin.Context) {
	var req models.UserRecord
	if err := userRequestSchema.Parse(zhttp.Request(c.Request), &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err})
		return
	}

	if err := rs.Iot.User.SaveUser(&req); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, UserResponse{UserID: req.UserID, Name: req.Name})
}

func (rs *RestfulServer) DeleteUser(c *gin.Context) {
	if err := rs.Iot.User.ClearUser(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}
