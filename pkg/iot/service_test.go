package iot

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"liyu1981.xyz/iot-datalogger/pkg/common"
	"liyu1981.xyz/iot-datalogger/pkg/iot/mocks"
	"liyu1981.xyz/iot-datalogger/pkg/models"
)

func feedWithD1(temp float64, now time.Time) string {
	return fmt.Sprintf(`{"IoTReadings":[],"RealTimeDataMonitor":[{"deviceId":"D1","temperature":%v,"humidity":40,"ts":%d}]}`,
		temp, now.UnixMilli())
}

func TestTick_HealthyDevice(t *testing.T) {
	common.SetTestLoggerNop()

	ctrl, iotObj, mockIFetcher, _, _ := GetMockIOTWithMemorySqliteDialector(t, true, false, false)
	defer ctrl.Finish()
	iotObj.Now = fixedClock(statusNow)

	mockIFetcher.EXPECT().
		FetchText(gomock.Any(), gomock.Eq(iotObj.Settings.DashboardURL)).
		Return(feedWithD1(25, statusNow), nil).
		Times(1)

	result := iotObj.Tick(context.Background())

	require.NoError(t, result.Err)
	require.Len(t, result.Devices, 1)
	assert.Equal(t, "D1", result.Devices[0].DeviceID)
	assert.Equal(t, models.StatusCategoryOnlineHealthy, result.Devices[0].Status.Category())
	assert.Empty(t, result.NewAlarms)
	assert.Empty(t, iotObj.Alarm.List())

	board := iotObj.Board()
	assert.Equal(t, result.Devices, board.Devices)
	assert.Empty(t, board.Error)
	assert.Equal(t, 1, iotObj.Series().Buckets()["D1"].Len())
}

func TestTick_UnhealthyDeviceRaisesOneAlarm(t *testing.T) {
	common.SetTestLoggerNop()

	ctrl, iotObj, mockIFetcher, _, _ := GetMockIOTWithMemorySqliteDialector(t, true, false, false)
	defer ctrl.Finish()
	iotObj.Now = fixedClock(statusNow)

	mockIFetcher.EXPECT().
		FetchText(gomock.Any(), gomock.Any()).
		Return(feedWithD1(75, statusNow), nil).
		Times(2)

	result := iotObj.Tick(context.Background())

	require.Len(t, result.Devices, 1)
	assert.Equal(t, models.StatusCategoryOnlineUnhealthy, result.Devices[0].Status.Category())
	require.Len(t, result.NewAlarms, 1)
	assert.Contains(t, result.NewAlarms[0].Message, "75.0")
	assert.Equal(t, "D1", result.NewAlarms[0].DeviceID)

	// the next poll with the same condition is a no-op
	result = iotObj.Tick(context.Background())
	assert.Empty(t, result.NewAlarms)

	alarms := iotObj.Alarm.List()
	require.Len(t, alarms, 1)
	assert.Equal(t, "D1", alarms[0].DeviceID)
}

func TestTick_FetchErrorClearsBoardAndNotifies(t *testing.T) {
	common.SetTestLoggerNop()

	ctrl, iotObj, mockIFetcher, _, _ := GetMockIOTWithMemorySqliteDialector(t, true, false, false)
	defer ctrl.Finish()
	iotObj.Now = fixedClock(statusNow)

	observer := mocks.NewMockIObserver(ctrl)
	iotObj.WithServices(ServiceOpts{Observers: []IObserver{observer}})

	gomock.InOrder(
		mockIFetcher.EXPECT().FetchText(gomock.Any(), gomock.Any()).Return(feedWithD1(25, statusNow), nil),
		mockIFetcher.EXPECT().FetchText(gomock.Any(), gomock.Any()).Return("", &FetchError{StatusCode: 500, Body: "boom"}),
	)

	var results []models.TickResult
	observer.EXPECT().OnTick(gomock.Any()).Do(func(r models.TickResult) {
		results = append(results, r)
	}).Times(2)

	iotObj.Tick(context.Background())
	result := iotObj.Tick(context.Background())

	assert.ErrorIs(t, result.Err, ErrFetch)
	assert.Equal(t, "API error 500: boom", result.Error)
	assert.Empty(t, iotObj.Board().Devices)
	assert.Equal(t, "API error 500: boom", iotObj.Board().Error)

	require.Len(t, results, 2)
	assert.Len(t, results[0].Devices, 1)
	assert.Equal(t, "API error 500: boom", results[1].Error)
}

func TestTick_MalformedPayload(t *testing.T) {
	common.SetTestLoggerNop()

	ctrl, iotObj, mockIFetcher, _, _ := GetMockIOTWithMemorySqliteDialector(t, true, false, false)
	defer ctrl.Finish()

	mockIFetcher.EXPECT().FetchText(gomock.Any(), gomock.Any()).Return("<html>", nil)

	result := iotObj.Tick(context.Background())
	assert.ErrorIs(t, result.Err, ErrMalformedPayload)
	assert.Contains(t, iotObj.Board().Error, "Raw: <html>")
}

func TestTick_CancelledTickLeavesStateAlone(t *testing.T) {
	common.SetTestLoggerNop()

	ctrl, iotObj, mockIFetcher, _, _ := GetMockIOTWithMemorySqliteDialector(t, true, false, false)
	defer ctrl.Finish()
	iotObj.Now = fixedClock(statusNow)

	observer := mocks.NewMockIObserver(ctrl)
	iotObj.WithServices(ServiceOpts{Observers: []IObserver{observer}})
	observer.EXPECT().OnTick(gomock.Any()).Times(0)

	ctx, cancel := context.WithCancel(context.Background())
	mockIFetcher.EXPECT().FetchText(gomock.Any(), gomock.Any()).DoAndReturn(
		func(context.Context, string) (string, error) {
			cancel()
			return feedWithD1(75, statusNow), nil
		})

	result := iotObj.Tick(ctx)

	assert.ErrorIs(t, result.Err, context.Canceled)
	assert.Empty(t, iotObj.Board().Devices)
	assert.Empty(t, iotObj.Alarm.List())
	assert.Equal(t, 0, iotObj.Tracking().Len())
}

func TestFetchDashboardData_OverHTTP(t *testing.T) {
	common.SetTestLoggerNop()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"statusCode":200,"body":"{\"IoTReadings\":[{\"payload\":{\"deviceId\":\"D2\",\"temperature\":{\"N\":\"19\"}}}],\"RealTimeDataMonitor\":[]}"}`))
	}))
	defer srv.Close()

	ctrl, iotObj, _, _, _ := GetMockIOTWithMemorySqliteDialector(t, false, false, false)
	defer ctrl.Finish()
	iotObj.Settings.DashboardURL = srv.URL

	data, err := iotObj.FetchDashboardData(context.Background())
	require.NoError(t, err)
	require.Len(t, data.IoTReadings, 1)
	assert.Equal(t, "D2", data.IoTReadings[0].DeviceID)
	assert.Equal(t, 19.0, *data.IoTReadings[0].Temperature)
	assert.Empty(t, data.RealTimeDataMonitor)

	history, err := iotObj.FetchHistory(context.Background())
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestStartPolling(t *testing.T) {
	common.SetTestLoggerNop()

	ctrl, iotObj, mockIFetcher, _, _ := GetMockIOTWithMemorySqliteDialector(t, true, false, false)
	defer ctrl.Finish()
	iotObj.Settings.PollInterval = 10 * time.Millisecond

	mockIFetcher.EXPECT().
		FetchText(gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, string) (string, error) {
			return feedWithD1(25, time.Now()), nil
		}).
		MinTimes(2)

	h := iotObj.StartPolling(context.Background())
	assert.Eventually(t, func() bool { return iotObj.Series().Buckets()["D1"].Len() >= 2 }, 2*time.Second, 5*time.Millisecond)
	h.Stop()

	assert.Len(t, iotObj.Board().Devices, 1)
}
