package iot

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"liyu1981.xyz/iot-datalogger/pkg/common"
	"liyu1981.xyz/iot-datalogger/pkg/models"
)

// Board is the latest classified device list as shown to consumers.
type Board struct {
	Devices   []models.DeviceView `json:"devices"`
	UpdatedAt time.Time           `json:"updatedAt"`
	Error     string              `json:"error,omitempty"`
}

func (i *IOT) FetchDashboardSnapshot(ctx context.Context) (models.DashboardSnapshot, error) {
	if i.Fetcher == nil {
		return models.DashboardSnapshot{}, fmt.Errorf("fetcher not available")
	}
	text, err := i.Fetcher.FetchText(ctx, i.Settings.DashboardURL)
	if err != nil {
		return models.DashboardSnapshot{}, err
	}
	return ParseAndNormalize(text)
}

func (i *IOT) FetchDashboardData(ctx context.Context) (models.DashboardData, error) {
	snapshot, err := i.FetchDashboardSnapshot(ctx)
	if err != nil {
		return models.DashboardData{}, err
	}
	return models.DashboardData{
		IoTReadings:         FlattenAll(snapshot.IoTReadings),
		RealTimeDataMonitor: FlattenAll(snapshot.RealTimeDataMonitor),
	}, nil
}

func (i *IOT) FetchRealTimeDataMonitor(ctx context.Context) ([]models.Reading, error) {
	data, err := i.FetchDashboardData(ctx)
	if err != nil {
		return nil, err
	}
	return data.RealTimeDataMonitor, nil
}

func (i *IOT) FetchHistory(ctx context.Context) ([]models.Reading, error) {
	data, err := i.FetchDashboardData(ctx)
	if err != nil {
		return nil, err
	}
	return data.IoTReadings, nil
}

// Tick runs one poll: fetch, classify, alarm, chart, then notify observers. A tick whose context
// was cancelled while fetching is dropped without touching any state.
func (i *IOT) Tick(ctx context.Context) models.TickResult {
	logger := common.GetLoggerWith(
		common.LoggerNameIOTCore,
		zap.String(common.LoggerFieldIOTCategory, common.LoggerCategoryIOTFeed),
	)

	started := i.now()
	readings, err := i.FetchRealTimeDataMonitor(ctx)
	now := i.now()
	result := models.TickResult{At: now, Took: now.Sub(started)}

	if ctx.Err() != nil {
		logger.Debug("Tick abandoned", zap.Error(ctx.Err()))
		result.Err = ctx.Err()
		result.Error = ctx.Err().Error()
		return result
	}

	if err != nil {
		logger.Warn("Failed to fetch dashboard data", zap.Error(err))
		result.Err = err
		result.Error = err.Error()
		i.setBoard(Board{Devices: []models.DeviceView{}, UpdatedAt: now, Error: result.Error})
		i.notify(result)
		return result
	}

	result.Devices = BuildDeviceViews(readings, now, i.Settings.Thresholds)
	result.NewAlarms = i.EvaluateAndMaybeAlarm(readings, now)
	i.Series().ObserveLive(readings, now)
	i.setBoard(Board{Devices: result.Devices, UpdatedAt: now})

	logger.Debug("Tick applied",
		zap.Int("devices", len(result.Devices)),
		zap.Int("newAlarms", len(result.NewAlarms)),
		zap.Duration("took", result.Took),
	)

	i.notify(result)
	return result
}

func (i *IOT) setBoard(b Board) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.board = b
}

func (i *IOT) Board() Board {
	i.mu.Lock()
	defer i.mu.Unlock()
	b := i.board
	b.Devices = append([]models.DeviceView{}, i.board.Devices...)
	return b
}

func (i *IOT) notify(result models.TickResult) {
	for _, o := range i.Observers {
		o.OnTick(result)
	}
}
