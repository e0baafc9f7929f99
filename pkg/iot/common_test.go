package iot

import (
	"bufio"
	"encoding/json"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"liyu1981.xyz/iot-datalogger/pkg/db"
	"liyu1981.xyz/iot-datalogger/pkg/iot/mocks"
)

func GetMockIOTWithMemorySqliteDialector(t *testing.T, useMockIFetcher, useMockIAlarm, useMockIUser bool) (
	*gomock.Controller,
	*IOT,
	*mocks.MockIFetcher,
	*mocks.MockIAlarm,
	*mocks.MockIUser,
) {
	ctrl := gomock.NewController(t)

	mockIFetcher := mocks.NewMockIFetcher(ctrl)
	mockIAlarm := mocks.NewMockIAlarm(ctrl)
	mockIUser := mocks.NewMockIUser(ctrl)

	dbInstance, err := db.Open(db.UseMemorySqliteDialector())
	require.NoError(t, err)
	t.Cleanup(func() { _ = dbInstance.Close() })

	settings := DefaultSettings()
	settings.DashboardURL = "http://dashboard.invalid/prod"
	settings.Location = time.UTC
	iotInstance := &IOT{Db: dbInstance, Settings: settings}

	var fetcher IFetcher = NewHTTPFetcher(time.Second)
	if useMockIFetcher {
		fetcher = mockIFetcher
	}

	alarmService := iotInstance.GetIAlarm()
	if useMockIAlarm {
		alarmService = mockIAlarm
	}

	userService := iotInstance.GetIUser()
	if useMockIUser {
		userService = mockIUser
	}

	iotInstance.WithServices(ServiceOpts{
		Fetcher: fetcher,
		Alarm:   alarmService,
		User:    userService,
	})

	return ctrl, iotInstance, mockIFetcher, mockIAlarm, mockIUser
}

func ParseLogs(r io.Reader) []any {
	scanner := bufio.NewScanner(r)
	var logs []any

	for scanner.Scan() {
		line := scanner.Text()
		var j any
		if err := json.Unmarshal([]byte(line), &j); err == nil {
			logs = append(logs, j)
		}
	}
	return logs
}

func f64(v float64) *float64 {
	return &v
}

func i64(v int64) *int64 {
	return &v
}

// fixedClock returns a clock that always reports at.
func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}
