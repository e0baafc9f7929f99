package iot

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"liyu1981.xyz/iot-datalogger/pkg/common"
	"liyu1981.xyz/iot-datalogger/pkg/models"
)

const (
	DefaultAlarmLogMax = 500

	// en-GB style, e.g. 16/10/2026, 14:03:09
	AlarmDateTimeLayout = "02/01/2006, 15:04:05"

	defaultAlarmMessage = "Alarm triggered"
)

func (i *IOT) alarmLogMax() int {
	if i.Settings.AlarmLogMax > 0 {
		return i.Settings.AlarmLogMax
	}
	return DefaultAlarmLogMax
}

// loadAlarms returns an error only when the store itself fails. A malformed blob reads as empty.
func (i *IOT) loadAlarms() ([]models.AlarmRecord, error) {
	if i.Db == nil {
		return nil, fmt.Errorf("database not available")
	}

	value, found, err := i.Db.GetBlob(common.BlobKeyAlarmLogs)
	if err != nil {
		return nil, err
	}
	if !found {
		return []models.AlarmRecord{}, nil
	}

	var records []models.AlarmRecord
	if err := json.Unmarshal([]byte(value), &records); err != nil {
		common.GetLoggerWith(
			common.LoggerNameIOTCore,
			zap.String(common.LoggerFieldIOTCategory, common.LoggerCategoryIOTAlarm),
		).Warn("Discarding malformed alarm log", zap.Error(err))
		return []models.AlarmRecord{}, nil
	}
	if records == nil {
		records = []models.AlarmRecord{}
	}
	return records, nil
}

func (i *IOT) appendAlarm(req models.AlarmRequest) *models.AlarmRecord {
	logger := common.GetLoggerWith(
		common.LoggerNameIOTCore,
		zap.String(common.LoggerFieldIOTCategory, common.LoggerCategoryIOTAlarm),
	)

	i.alarmMu.Lock()
	defer i.alarmMu.Unlock()

	records, err := i.loadAlarms()
	if err != nil {
		logger.Warn("Failed to save alarm", zap.Error(err))
		return nil
	}

	id, err := uuid.NewV7()
	if err != nil {
		logger.Warn("Failed to save alarm", zap.Error(err))
		return nil
	}

	now := i.now()
	record := models.AlarmRecord{
		ID:       id.String(),
		DeviceID: orDefault(req.DeviceID, UnknownDeviceID),
		Message:  orDefault(req.Message, defaultAlarmMessage),
		Status:   orDefault(req.Status, AlarmStatusAlarm),
		DateTime: now.In(i.location()).Format(AlarmDateTimeLayout),
		TS:       now.UnixMilli(),
	}

	records = append([]models.AlarmRecord{record}, records...)
	if limit := i.alarmLogMax(); len(records) > limit {
		records = records[:limit]
	}

	encoded, err := json.Marshal(records)
	if err != nil {
		logger.Warn("Failed to save alarm", zap.Error(err))
		return nil
	}
	if err := i.Db.PutBlob(common.BlobKeyAlarmLogs, string(encoded)); err != nil {
		logger.Warn("Failed to save alarm", zap.Error(err))
		return nil
	}

	logger.Info("Alarm saved", zap.Reflect("alarm", record))
	return &record
}

func (i *IOT) listAlarms() []models.AlarmRecord {
	records, err := i.loadAlarms()
	if err != nil {
		common.GetLoggerWith(
			common.LoggerNameIOTCore,
			zap.String(common.LoggerFieldIOTCategory, common.LoggerCategoryIOTAlarm),
		).Warn("Failed to load alarms", zap.Error(err))
		return []models.AlarmRecord{}
	}
	return records
}

func (i *IOT) clearAlarms() {
	logger := common.GetLoggerWith(
		common.LoggerNameIOTCore,
		zap.String(common.LoggerFieldIOTCategory, common.LoggerCategoryIOTAlarm),
	)

	i.alarmMu.Lock()
	defer i.alarmMu.Unlock()

	if i.Db == nil {
		logger.Warn("Failed to clear alarms", zap.String("reason", "database not available"))
		return
	}
	if err := i.Db.DeleteBlob(common.BlobKeyAlarmLogs); err != nil {
		logger.Warn("Failed to clear alarms", zap.Error(err))
		return
	}
	logger.Info("Alarm log cleared")
}

// FilterAlarms keeps the records whose creation time falls in r, preserving order.
func FilterAlarms(records []models.AlarmRecord, r DateRange) []models.AlarmRecord {
	return common.Filter(records, func(rec models.AlarmRecord) bool {
		return r.Contains(rec.TS)
	})
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

type IAlarmImpl struct {
	iot *IOT
}

func (ia *IAlarmImpl) Append(req models.AlarmRequest) *models.AlarmRecord {
	return ia.iot.appendAlarm(req)
}

func (ia *IAlarmImpl) List() []models.AlarmRecord {
	return ia.iot.listAlarms()
}

func (ia *IAlarmImpl) Clear() {
	ia.iot.clearAlarms()
}

func (i *IOT) GetIAlarm() IAlarm {
	return &IAlarmImpl{iot: i}
}
