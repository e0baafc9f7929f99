package iot

import (
	"fmt"
	"sort"
	"time"

	"liyu1981.xyz/iot-datalogger/pkg/models"
)

const (
	DefaultOfflineAfter = 2 * time.Minute

	ColorOffline = "#95A5A6"
	ColorOnline  = "#2ECC71"
	ColorAlarm   = "#E74C3C"

	placeholderText = "--"
)

type Thresholds struct {
	OfflineAfter time.Duration
	TempMin      float64
	TempMax      float64
	HumMin       float64
	HumMax       float64
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		OfflineAfter: DefaultOfflineAfter,
		TempMin:      0,
		TempMax:      60,
		HumMin:       0,
		HumMax:       100,
	}
}

// IsOnline reports whether the reading is fresh. A reading without a timestamp counts as online
// since its staleness cannot be shown.
func (t Thresholds) IsOnline(r models.Reading, now time.Time) bool {
	if r.TS == nil {
		return true
	}
	return *r.TS >= now.UnixMilli()-t.OfflineAfter.Milliseconds()
}

func (t Thresholds) InRange(r models.Reading) bool {
	return within(*r.Temperature, t.TempMin, t.TempMax) && within(*r.Humidity, t.HumMin, t.HumMax)
}

func within(v, lo, hi float64) bool {
	return v >= lo && v <= hi
}

// Classify is pure: the same reading and instant always give the same status.
func Classify(r models.Reading, now time.Time, t Thresholds) models.DeviceStatus {
	if !t.IsOnline(r, now) {
		return models.DeviceStatusOffline
	}
	if r.Temperature == nil || r.Humidity == nil {
		return models.DeviceStatusMissingData
	}
	if t.InRange(r) {
		return models.DeviceStatusOnline
	}
	return models.DeviceStatusAlarm
}

type Presentation struct {
	Color string
	Label string
}

var presentations = map[models.StatusCategory]Presentation{
	models.StatusCategoryOffline:         {Color: ColorOffline, Label: "Offline"},
	models.StatusCategoryOnlineHealthy:   {Color: ColorOnline, Label: "Online"},
	models.StatusCategoryOnlineUnhealthy: {Color: ColorAlarm, Label: "Alarm"},
}

func PresentationFor(status models.DeviceStatus) Presentation {
	return presentations[status.Category()]
}

func FormatTemp(v *float64) string {
	if v == nil {
		return placeholderText
	}
	return fmt.Sprintf("%.1f °C", *v)
}

func FormatHum(v *float64) string {
	if v == nil {
		return placeholderText
	}
	return fmt.Sprintf("%.1f %%", *v)
}

func ViewOf(r models.Reading, now time.Time, t Thresholds) models.DeviceView {
	status := Classify(r, now, t)
	p := PresentationFor(status)
	return models.DeviceView{
		Reading:  r,
		Status:   status,
		Color:    p.Color,
		Label:    p.Label,
		TempText: FormatTemp(r.Temperature),
		HumText:  FormatHum(r.Humidity),
	}
}

// SortForDisplay puts the newest readings first when any reading has a timestamp (readings without
// one sort last), otherwise orders by device id. The input is not modified.
func SortForDisplay(readings []models.Reading) []models.Reading {
	sorted := make([]models.Reading, len(readings))
	copy(sorted, readings)

	hasTS := false
	for _, r := range sorted {
		if r.TS != nil {
			hasTS = true
			break
		}
	}

	if hasTS {
		sort.SliceStable(sorted, func(a, b int) bool {
			return tsOrZero(sorted[a]) > tsOrZero(sorted[b])
		})
		return sorted
	}
	sort.SliceStable(sorted, func(a, b int) bool {
		return sorted[a].DeviceID < sorted[b].DeviceID
	})
	return sorted
}

func tsOrZero(r models.Reading) int64 {
	if r.TS == nil {
		return 0
	}
	return *r.TS
}

func BuildDeviceViews(readings []models.Reading, now time.Time, t Thresholds) []models.DeviceView {
	sorted := SortForDisplay(readings)
	views := make([]models.DeviceView, 0, len(sorted))
	for _, r := range sorted {
		views = append(views, ViewOf(r, now, t))
	}
	return views
}
