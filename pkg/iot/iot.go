package iot

import (
	"context"
	"sync"
	"time"

	"liyu1981.xyz/iot-datalogger/pkg/db"
	"liyu1981.xyz/iot-datalogger/pkg/models"
)

type IFetcher interface {
	FetchText(ctx context.Context, url string) (string, error)
}

type IAlarm interface {
	Append(req models.AlarmRequest) *models.AlarmRecord
	List() []models.AlarmRecord
	Clear()
}

type IUser interface {
	GetUser() *models.UserRecord
	SaveUser(record *models.UserRecord) error
	ClearUser() error
}

// IObserver receives the outcome of every applied poll tick.
type IObserver interface {
	OnTick(result models.TickResult)
}

type Settings struct {
	DashboardURL        string
	PollInterval        time.Duration
	Thresholds          Thresholds
	AlarmLogMax         int
	LiveWindow          int
	HistoryPoints       int
	DeviceHistoryPoints int
	Location            *time.Location
}

func DefaultSettings() Settings {
	return Settings{
		PollInterval:        5 * time.Second,
		Thresholds:          DefaultThresholds(),
		AlarmLogMax:         DefaultAlarmLogMax,
		LiveWindow:          DefaultLiveWindow,
		HistoryPoints:       DefaultHistoryPoints,
		DeviceHistoryPoints: DefaultDeviceHistoryPoints,
		Location:            time.Local,
	}
}

type IOT struct {
	Db        db.BlobStore
	Settings  Settings
	Fetcher   IFetcher
	Alarm     IAlarm
	User      IUser
	Observers []IObserver

	// Now is the clock, time.Now when nil
	Now func() time.Time

	mu       sync.Mutex
	tracking TrackingState
	board    Board
	session  *SeriesSession

	// serializes read-modify-write of the alarm blob
	alarmMu sync.Mutex
}

type ServiceOpts struct {
	Fetcher   IFetcher
	Alarm     IAlarm
	User      IUser
	Observers []IObserver
}

func (i *IOT) WithServices(opts ServiceOpts) *IOT {
	if opts.Fetcher != nil {
		i.Fetcher = opts.Fetcher
	}
	if opts.Alarm != nil {
		i.Alarm = opts.Alarm
	}
	if opts.User != nil {
		i.User = opts.User
	}
	if len(opts.Observers) > 0 {
		i.Observers = append(i.Observers, opts.Observers...)
	}
	return i
}

func (i *IOT) now() time.Time {
	if i.Now != nil {
		return i.Now()
	}
	return time.Now()
}

func (i *IOT) location() *time.Location {
	if i.Settings.Location != nil {
		return i.Settings.Location
	}
	return time.Local
}

// Series returns the chart session, created on first use.
func (i *IOT) Series() *SeriesSession {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.session == nil {
		i.session = NewSeriesSession(i.Settings.LiveWindow)
	}
	return i.session
}
