package iot

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap/zapcore"

	"liyu1981.xyz/iot-datalogger/pkg/common"
	"liyu1981.xyz/iot-datalogger/pkg/models"
)

func readingWithTemp(id string, temp float64, at time.Time) models.Reading {
	return models.Reading{DeviceID: id, Temperature: f64(temp), Humidity: f64(40), TS: i64(at.UnixMilli())}
}

func TestEvaluateAlarms_EdgeTriggered(t *testing.T) {
	th := DefaultThresholds()
	state := NewTrackingState()

	// healthy, unhealthy, unhealthy, healthy, unhealthy
	temps := []float64{25, 75, 80, 25, 90}
	var all []models.AlarmRequest
	for _, temp := range temps {
		var requests []models.AlarmRequest
		state, requests = EvaluateAlarms(state, []models.Reading{readingWithTemp("D1", temp, statusNow)}, statusNow, th)
		all = append(all, requests...)
	}

	require.Len(t, all, 2)
	assert.Equal(t, "Values out of range (T:75.0 °C H:40.0 %)", all[0].Message)
	assert.Equal(t, "Values out of range (T:90.0 °C H:40.0 %)", all[1].Message)
	assert.Equal(t, AlarmStatusAlarm, all[0].Status)
	assert.True(t, state.Has("D1"))
}

func TestEvaluateAlarms_DoesNotMutateInputState(t *testing.T) {
	th := DefaultThresholds()
	before := NewTrackingState("D1")

	after, requests := EvaluateAlarms(before, []models.Reading{readingWithTemp("D1", 25, statusNow)}, statusNow, th)

	assert.Empty(t, requests)
	assert.True(t, before.Has("D1"))
	assert.False(t, after.Has("D1"))
}

func TestEvaluateAlarms_OfflineAndMissingClearTracking(t *testing.T) {
	th := DefaultThresholds()
	state := NewTrackingState("off", "missing")

	state, requests := EvaluateAlarms(state, []models.Reading{
		readingWithTemp("off", 99, statusNow.Add(-time.Hour)),
		{DeviceID: "missing", TS: i64(statusNow.UnixMilli())},
	}, statusNow, th)

	assert.Empty(t, requests)
	assert.Equal(t, 0, state.Len())
}

func TestEvaluateAlarms_VanishedDeviceKeepsTracking(t *testing.T) {
	th := DefaultThresholds()
	state := NewTrackingState("ghost")

	state, requests := EvaluateAlarms(state, []models.Reading{readingWithTemp("other", 25, statusNow)}, statusNow, th)
	assert.Empty(t, requests)
	assert.Equal(t, []string{"ghost"}, state.DeviceIDs())

	// reappearing still in alarm does not emit again
	state, requests = EvaluateAlarms(state, []models.Reading{readingWithTemp("ghost", 99, statusNow)}, statusNow, th)
	assert.Empty(t, requests)
	assert.True(t, state.Has("ghost"))
}

func TestEvaluateAlarms_ManyDevices(t *testing.T) {
	th := DefaultThresholds()

	state, requests := EvaluateAlarms(NewTrackingState(), []models.Reading{
		readingWithTemp("a", 99, statusNow),
		readingWithTemp("b", 25, statusNow),
		readingWithTemp("c", -10, statusNow),
	}, statusNow, th)

	require.Len(t, requests, 2)
	assert.Equal(t, "a", requests[0].DeviceID)
	assert.Equal(t, "c", requests[1].DeviceID)
	assert.Equal(t, []string{"a", "c"}, state.DeviceIDs())
}

func TestEvaluateAndMaybeAlarm(t *testing.T) {
	common.SetTestLoggerNop()

	ctrl, iotObj, _, mockIAlarm, _ := GetMockIOTWithMemorySqliteDialector(t, false, true, false)
	defer ctrl.Finish()

	saved := &models.AlarmRecord{ID: "1", DeviceID: "D1", Message: "m", Status: AlarmStatusAlarm}
	mockIAlarm.
		EXPECT().
		Append(gomock.Any()).
		DoAndReturn(func(req models.AlarmRequest) *models.AlarmRecord {
			assert.Equal(t, "D1", req.DeviceID)
			return saved
		}).
		Times(1)

	hot := []models.Reading{readingWithTemp("D1", 75, statusNow)}

	created := iotObj.EvaluateAndMaybeAlarm(hot, statusNow)
	assert.Equal(t, []models.AlarmRecord{*saved}, created)

	// still hot: no second append
	created = iotObj.EvaluateAndMaybeAlarm(hot, statusNow)
	assert.Empty(t, created)
	assert.True(t, iotObj.Tracking().Has("D1"))
}

func TestEvaluateAndMaybeAlarm_StoreFailureIsSwallowed(t *testing.T) {
	common.SetTestLoggerNop()

	ctrl, iotObj, _, mockIAlarm, _ := GetMockIOTWithMemorySqliteDialector(t, false, true, false)
	defer ctrl.Finish()

	mockIAlarm.EXPECT().Append(gomock.Any()).Return(nil).Times(1)

	created := iotObj.EvaluateAndMaybeAlarm([]models.Reading{readingWithTemp("D1", 75, statusNow)}, statusNow)
	assert.Empty(t, created)
	// tracking still advances so the next tick does not retry
	assert.True(t, iotObj.Tracking().Has("D1"))
}

func TestEvaluateAndMaybeAlarm_WithLog(t *testing.T) {
	var buf = &bytes.Buffer{}
	common.SetTestCaptureLogger(buf, zapcore.InfoLevel)

	ctrl, iotObj, _, _, _ := GetMockIOTWithMemorySqliteDialector(t, false, false, false)
	defer ctrl.Finish()
	iotObj.Now = fixedClock(statusNow)

	created := iotObj.EvaluateAndMaybeAlarm([]models.Reading{readingWithTemp("D1", 75, statusNow)}, statusNow)
	require.Len(t, created, 1)

	logs := ParseLogs(buf)

	found := false
	for _, log := range logs {
		lobj := log.(map[string]any)
		if lobj["category"] == "alarm" &&
			lobj["logger"] == "iot_core" &&
			lobj["msg"] == "Alarm found" &&
			lobj["alarm"].(map[string]any)["DeviceID"] == "D1" &&
			lobj["alarm"].(map[string]any)["Message"] == "Values out of range (T:75.0 °C H:40.0 %)" {
			found = true
		}
	}
	assert.True(t, found)
}
