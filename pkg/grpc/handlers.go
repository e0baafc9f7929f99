package grpc

import (
	"context"
	"encoding/json"
	"fmt"

	z "github.com/Oudwins/zog"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"liyu1981.xyz/iot-datalogger/pkg/common"
	"liyu1981.xyz/iot-datalogger/pkg/iot"
)

type StatusResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

var statusOK = StatusResponse{Success: true, Message: "OK"}

func failed(format string, args ...any) StatusResponse {
	return StatusResponse{Success: false, Message: fmt.Sprintf(format, args...)}
}

// toStruct converts any JSON-encodable value into a structpb.Struct.
func toStruct(v any) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	out := &structpb.Struct{}
	if err := out.UnmarshalJSON(data); err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	return out, nil
}

// fromStruct decodes a request struct into dst through its JSON form.
func fromStruct(in *structpb.Struct, dst any) error {
	if in == nil {
		return nil
	}
	data, err := in.MarshalJSON()
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dst)
}

type devicesResponse struct {
	Status StatusResponse `json:"status"`
	iot.Board
}

func (s *IOTServer) ListDevices(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	return toStruct(devicesResponse{Status: statusOK, Board: s.Iot.Board()})
}

type rangeRequest struct {
	DeviceID string `json:"deviceId" zog:"deviceId"`
	Start    string `json:"start" zog:"start"`
	End      string `json:"end" zog:"end"`
	Limit    int    `json:"limit" zog:"limit"`
}

var alarmsRequestSchema = z.Struct(z.Shape{
	"Start": z.String(),
	"End":   z.String(),
})

type alarmsResponse struct {
	Status StatusResponse `json:"status"`
	Alarms any            `json:"alarms"`
}

func (s *IOTServer) ListAlarms(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req rangeRequest
	if err := fromStruct(in, &req); err != nil {
		return toStruct(alarmsResponse{Status: failed("validation error: %v", err)})
	}
	if err := alarmsRequestSchema.Validate(&req); err != nil {
		return toStruct(alarmsResponse{Status: failed("validation error: %v", err)})
	}

	records := s.Iot.Alarm.List()
	if req.Start != "" || req.End != "" {
		dateRange, err := iot.ParseDateRange(req.Start, req.End, s.Iot.Settings.Location)
		if err != nil {
			return toStruct(alarmsResponse{Status: failed("validation error: %v", err)})
		}
		records = iot.FilterAlarms(records, dateRange)
	}

	return toStruct(alarmsResponse{Status: statusOK, Alarms: records})
}

func (s *IOTServer) ClearAlarms(ctx context.Context, _ *emptypb.Empty) (*emptypb.Empty, error) {
	s.Iot.Alarm.Clear()
	return &emptypb.Empty{}, nil
}

var historyRequestSchema = z.Struct(z.Shape{
	"DeviceID": z.String(),
	"Start":    z.String().Required(),
	"End":      z.String().Required(),
	"Limit":    z.Int().GTE(0).LTE(1000),
})

type historyResponse struct {
	Status   StatusResponse `json:"status"`
	DeviceID string         `json:"deviceId,omitempty"`
	Series   any            `json:"series,omitempty"`
	Buckets  any            `json:"buckets,omitempty"`
}

// GetHistory returns one device's series when deviceId is set, or every device's otherwise. It
// never changes the chart session of the REST viewer.
func (s *IOTServer) GetHistory(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req rangeRequest
	if err := fromStruct(in, &req); err != nil {
		return toStruct(historyResponse{Status: failed("validation error: %v", err)})
	}
	if err := historyRequestSchema.Validate(&req); err != nil {
		return toStruct(historyResponse{Status: failed("validation error: %v", err)})
	}

	dateRange, err := iot.ParseDateRange(req.Start, req.End, s.Iot.Settings.Location)
	if err != nil {
		return toStruct(historyResponse{Status: failed("validation error: %v", err)})
	}

	readings, err := s.Iot.FetchHistory(ctx)
	if err != nil {
		common.GetLoggerWith(common.LoggerNameGrpcServer).Warn("Dashboard request failed", zap.Error(err))
		return toStruct(historyResponse{Status: failed("%v", err)})
	}

	limit := req.Limit
	if req.DeviceID != "" {
		if limit == 0 {
			limit = s.Iot.Settings.DeviceHistoryPoints
		}
		return toStruct(historyResponse{
			Status:   statusOK,
			DeviceID: req.DeviceID,
			Series:   iot.HistoricalSeries(readings, req.DeviceID, dateRange, limit),
		})
	}

	if limit == 0 {
		limit = s.Iot.Settings.HistoryPoints
	}
	return toStruct(historyResponse{
		Status:  statusOK,
		Buckets: iot.HistoricalByDevice(readings, dateRange, limit),
	})
}

type limiterRequest struct {
	ClientKey string  `json:"clientKey" zog:"clientKey"`
	Rate      float64 `json:"rate" zog:"rate"`
	Burst     int     `json:"burst" zog:"burst"`
}

var limiterRequestSchema = z.Struct(z.Shape{
	"ClientKey": z.String().Min(1).Required(),
	"Rate":      z.Float64().Required(),
	"Burst":     z.Int().Required(),
})

func (s *IOTServer) SetLimiter(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req limiterRequest
	if err := fromStruct(in, &req); err != nil {
		return toStruct(struct {
			Status StatusResponse `json:"status"`
		}{failed("validation error: %v", err)})
	}
	if err := limiterRequestSchema.Validate(&req); err != nil {
		return toStruct(struct {
			Status StatusResponse `json:"status"`
		}{failed("validation error: %v", err)})
	}

	if s.RateLimiterStore == nil {
		return toStruct(struct {
			Status StatusResponse `json:"status"`
		}{failed("RateLimiterStore is not used. No effect.")})
	}

	s.RateLimiterStore.SetLimiter(req.ClientKey, rate.Limit(req.Rate), req.Burst)
	return toStruct(struct {
		Status StatusResponse `json:"status"`
	}{statusOK})
}
