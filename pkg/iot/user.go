package iot

import (
	"encoding/json"
	"fmt"

	z "github.com/Oudwins/zog"
	"go.uber.org/zap"
	"liyu1981.xyz/iot-datalogger/pkg/common"
	"liyu1981.xyz/iot-datalogger/pkg/models"
)

var userRecordSchema = z.Struct(z.Shape{
	"UserID":   z.String().Min(1).Required(),
	"Password": z.String().Min(1).Required(),
	"Name":     z.String(),
})

func ValidateUserRecord(record *models.UserRecord) error {
	if record == nil {
		return fmt.Errorf("user record is required")
	}
	if issues := userRecordSchema.Validate(record); len(issues) > 0 {
		return fmt.Errorf("invalid user record: %v", issues)
	}
	return nil
}

// getUser returns nil when no record is stored or it cannot be read.
func (i *IOT) getUser() *models.UserRecord {
	logger := common.GetLoggerWith(
		common.LoggerNameIOTCore,
		zap.String(common.LoggerFieldIOTCategory, common.LoggerCategoryIOTUser),
	)

	if i.Db == nil {
		return nil
	}
	value, found, err := i.Db.GetBlob(common.BlobKeyUser)
	if err != nil {
		logger.Warn("Failed to load user", zap.Error(err))
		return nil
	}
	if !found {
		return nil
	}

	var record models.UserRecord
	if err := json.Unmarshal([]byte(value), &record); err != nil {
		logger.Warn("Discarding malformed user record", zap.Error(err))
		return nil
	}
	return &record
}

func (i *IOT) saveUser(record *models.UserRecord) error {
	if err := ValidateUserRecord(record); err != nil {
		return err
	}
	if i.Db == nil {
		return fmt.Errorf("database not available")
	}

	encoded, err := json.Marshal(record)
	if err != nil {
		return err
	}
	if err := i.Db.PutBlob(common.BlobKeyUser, string(encoded)); err != nil {
		return err
	}

	common.GetLoggerWith(
		common.LoggerNameIOTCore,
		zap.String(common.LoggerFieldIOTCategory, common.LoggerCategoryIOTUser),
	).Info("User saved", zap.String("userId", record.UserID))
	return nil
}

func (i *IOT) clearUser() error {
	if i.Db == nil {
		return fmt.Errorf("database not available")
	}
	return i.Db.DeleteBlob(common.BlobKeyUser)
}

type IUserImpl struct {
	iot *IOT
}

func (iu *IUserImpl) GetUser() *models.UserRecord {
	return iu.iot.getUser()
}

func (iu *IUserImpl) SaveUser(record *models.UserRecord) error {
	return iu.iot.saveUser(record)
}

func (iu *IUserImpl) ClearUser() error {
	return iu.iot.clearUser()
}

func (i *IOT) GetIUser() IUser {
	return &IUserImpl{iot: i}
}
