package iot

import (
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"
	"liyu1981.xyz/iot-datalogger/pkg/common"
	"liyu1981.xyz/iot-datalogger/pkg/models"
)

const AlarmStatusAlarm = "Alarm"

// TrackingState is the set of devices currently in alarm. Values are never mutated in place;
// EvaluateAlarms returns a new one.
type TrackingState struct {
	alarmed map[string]struct{}
}

func NewTrackingState(deviceIDs ...string) TrackingState {
	alarmed := make(map[string]struct{}, len(deviceIDs))
	for _, id := range deviceIDs {
		alarmed[id] = struct{}{}
	}
	return TrackingState{alarmed: alarmed}
}

func (s TrackingState) Has(deviceID string) bool {
	_, ok := s.alarmed[deviceID]
	return ok
}

func (s TrackingState) Len() int {
	return len(s.alarmed)
}

func (s TrackingState) DeviceIDs() []string {
	ids := make([]string, 0, len(s.alarmed))
	for id := range s.alarmed {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func AlarmMessage(r models.Reading) string {
	return fmt.Sprintf("Values out of range (T:%s H:%s)", FormatTemp(r.Temperature), FormatHum(r.Humidity))
}

// EvaluateAlarms emits one request per device entering alarm. Devices observed in any other
// status leave the set; devices absent from readings keep their entry.
func EvaluateAlarms(state TrackingState, readings []models.Reading, now time.Time, t Thresholds) (TrackingState, []models.AlarmRequest) {
	next := make(map[string]struct{}, len(state.alarmed))
	for id := range state.alarmed {
		next[id] = struct{}{}
	}

	var requests []models.AlarmRequest
	for _, r := range readings {
		if Classify(r, now, t) != models.DeviceStatusAlarm {
			delete(next, r.DeviceID)
			continue
		}
		if _, tracked := next[r.DeviceID]; tracked {
			continue
		}
		next[r.DeviceID] = struct{}{}
		requests = append(requests, models.AlarmRequest{
			DeviceID: r.DeviceID,
			Message:  AlarmMessage(r),
			Status:   AlarmStatusAlarm,
		})
	}

	return TrackingState{alarmed: next}, requests
}

func (i *IOT) Tracking() TrackingState {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.tracking
}

// EvaluateAndMaybeAlarm advances the tracking state and records an alarm for every rising edge.
// Records the store failed to persist are left out of the result.
func (i *IOT) EvaluateAndMaybeAlarm(readings []models.Reading, now time.Time) []models.AlarmRecord {
	logger := common.GetLoggerWith(
		common.LoggerNameIOTCore,
		zap.String(common.LoggerFieldIOTCategory, common.LoggerCategoryIOTAlarm),
	)

	i.mu.Lock()
	next, requests := EvaluateAlarms(i.tracking, readings, now, i.Settings.Thresholds)
	i.tracking = next
	i.mu.Unlock()

	created := make([]models.AlarmRecord, 0, len(requests))
	for _, req := range requests {
		logger.Info("Alarm found", zap.Reflect("alarm", req))

		if i.Alarm == nil {
			logger.Warn("alarm service not available")
			continue
		}
		if record := i.Alarm.Append(req); record != nil {
			created = append(created, *record)
		}
	}
	return created
}
