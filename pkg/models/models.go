package models

import "time"

// Reading is one flattened sensor record. Nil numeric fields mean the value was missing or not
// numeric in the feed.
type Reading struct {
	DeviceID    string   `json:"deviceId"`
	Temperature *float64 `json:"temperature"`
	Humidity    *float64 `json:"humidity"`
	TS          *int64   `json:"ts"` // milliseconds since epoch
}

func (r Reading) Time() (time.Time, bool) {
	if r.TS == nil {
		return time.Time{}, false
	}
	return time.UnixMilli(*r.TS), true
}

// DashboardSnapshot is the normalized backend payload, elements as received.
type DashboardSnapshot struct {
	IoTReadings         []any `json:"IoTReadings"`
	RealTimeDataMonitor []any `json:"RealTimeDataMonitor"`
}

// DashboardData is DashboardSnapshot with every element flattened.
type DashboardData struct {
	IoTReadings         []Reading `json:"IoTReadings"`
	RealTimeDataMonitor []Reading `json:"RealTimeDataMonitor"`
}

type DeviceStatus string

const (
	DeviceStatusOffline     DeviceStatus = "offline"
	DeviceStatusMissingData DeviceStatus = "missing_data"
	DeviceStatusOnline      DeviceStatus = "online"
	DeviceStatusAlarm       DeviceStatus = "alarm"
)

type StatusCategory string

const (
	StatusCategoryOffline         StatusCategory = "Offline"
	StatusCategoryOnlineHealthy   StatusCategory = "Online-Healthy"
	StatusCategoryOnlineUnhealthy StatusCategory = "Online-Unhealthy"
)

// Category collapses missing data into Offline.
func (s DeviceStatus) Category() StatusCategory {
	switch s {
	case DeviceStatusOnline:
		return StatusCategoryOnlineHealthy
	case DeviceStatusAlarm:
		return StatusCategoryOnlineUnhealthy
	default:
		return StatusCategoryOffline
	}
}

// DeviceView is one classified device ready for display.
type DeviceView struct {
	Reading
	Status   DeviceStatus `json:"status"`
	Color    string       `json:"color"`
	Label    string       `json:"label"`
	TempText string       `json:"temperatureText"`
	HumText  string       `json:"humidityText"`
}

// AlarmRequest is what the alarm emitter asks the log store to record.
type AlarmRequest struct {
	DeviceID string
	Message  string
	Status   string
}

type AlarmRecord struct {
	ID       string `json:"id"`
	DeviceID string `json:"deviceId"`
	Message  string `json:"message"`
	Status   string `json:"status"`
	DateTime string `json:"dateTime"`
	TS       int64  `json:"ts"`
}

type UserRecord struct {
	UserID   string `json:"userId" zog:"userId"`
	Password string `json:"password" zog:"password"`
	Name     string `json:"name" zog:"name"`
}

// SeriesBucket holds index-aligned chart points for one device.
type SeriesBucket struct {
	Labels []string  `json:"labels"`
	Temp   []float64 `json:"temp"`
	Hum    []float64 `json:"hum"`
}

func (b SeriesBucket) Len() int {
	return len(b.Labels)
}

// TickResult is what a single poll produced.
type TickResult struct {
	At        time.Time     `json:"at"`
	Devices   []DeviceView  `json:"devices"`
	NewAlarms []AlarmRecord `json:"newAlarms"`
	Err       error         `json:"-"`
	Error     string        `json:"error,omitempty"`
	// Took is how long fetch and normalization took
	Took time.Duration `json:"-"`
}

// Blob is a key-value row; the whole alarm log or user record lives in one value.
type Blob struct {
	Key       string `gorm:"primaryKey;column:blob_key"`
	Value     string
	UpdatedAt time.Time
}
