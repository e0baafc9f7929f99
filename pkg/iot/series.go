package iot

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"liyu1981.xyz/iot-datalogger/pkg/common"
	"liyu1981.xyz/iot-datalogger/pkg/models"
)

const (
	DefaultLiveWindow          = 6
	DefaultHistoryPoints       = 10
	DefaultDeviceHistoryPoints = 15

	LiveLabelLayout    = "15:04:05"
	HistoryLabelLayout = "15:04"
	DateLayout         = "02-01-2006"

	chartMin = 0.0
	chartMax = 100.0
)

// ClampMetric maps a value onto the shared chart axis. Missing values chart as 0.
func ClampMetric(v *float64) float64 {
	if v == nil {
		return 0
	}
	switch {
	case *v < chartMin:
		return chartMin
	case *v > chartMax:
		return chartMax
	default:
		return *v
	}
}

// DateRange is inclusive on both ends.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// ParseDateRange expands two DD-MM-YYYY dates to the start of the first day and the last
// millisecond of the second, in loc.
func ParseDateRange(start, end string, loc *time.Location) (DateRange, error) {
	if loc == nil {
		loc = time.Local
	}
	from, err := time.ParseInLocation(DateLayout, start, loc)
	if err != nil {
		return DateRange{}, fmt.Errorf("invalid start date %q: %w", start, err)
	}
	to, err := time.ParseInLocation(DateLayout, end, loc)
	if err != nil {
		return DateRange{}, fmt.Errorf("invalid end date %q: %w", end, err)
	}
	to = to.AddDate(0, 0, 1).Add(-time.Millisecond)
	if to.Before(from) {
		return DateRange{}, fmt.Errorf("start date %s is after end date %s", start, end)
	}
	return DateRange{Start: from, End: to}, nil
}

func (r DateRange) Contains(ms int64) bool {
	return ms >= r.Start.UnixMilli() && ms <= r.End.UnixMilli()
}

func (r DateRange) location() *time.Location {
	if loc := r.Start.Location(); loc != nil {
		return loc
	}
	return time.Local
}

func appendPoint(b *models.SeriesBucket, label string, r models.Reading) {
	b.Labels = append(b.Labels, label)
	b.Temp = append(b.Temp, ClampMetric(r.Temperature))
	b.Hum = append(b.Hum, ClampMetric(r.Humidity))
}

func copyBucket(b models.SeriesBucket) models.SeriesBucket {
	return models.SeriesBucket{
		Labels: append([]string{}, b.Labels...),
		Temp:   append([]float64{}, b.Temp...),
		Hum:    append([]float64{}, b.Hum...),
	}
}

// LiveSeries keeps a rolling window of points per device. Not safe for concurrent use.
type LiveSeries struct {
	window  int
	buckets map[string]*models.SeriesBucket
}

func NewLiveSeries(window int) *LiveSeries {
	if window < 1 {
		window = DefaultLiveWindow
	}
	return &LiveSeries{window: window, buckets: map[string]*models.SeriesBucket{}}
}

// Observe appends one point per reading, labelled with the observation time rather than the
// reading's own timestamp.
func (l *LiveSeries) Observe(readings []models.Reading, at time.Time) {
	label := at.Format(LiveLabelLayout)
	for _, r := range readings {
		b, ok := l.buckets[r.DeviceID]
		if !ok {
			b = &models.SeriesBucket{}
			l.buckets[r.DeviceID] = b
		}
		appendPoint(b, label, r)
		if n := b.Len(); n > l.window {
			b.Labels = b.Labels[n-l.window:]
			b.Temp = b.Temp[n-l.window:]
			b.Hum = b.Hum[n-l.window:]
		}
	}
}

func (l *LiveSeries) Buckets() map[string]models.SeriesBucket {
	out := make(map[string]models.SeriesBucket, len(l.buckets))
	for id, b := range l.buckets {
		out[id] = copyBucket(*b)
	}
	return out
}

// chronological returns the readings that have a timestamp inside r, oldest first. Equal
// timestamps keep feed order.
func chronological(readings []models.Reading, r DateRange, keep func(models.Reading) bool) []models.Reading {
	inRange := common.Filter(readings, func(reading models.Reading) bool {
		return reading.TS != nil && r.Contains(*reading.TS) && keep(reading)
	})
	sort.SliceStable(inRange, func(a, b int) bool {
		return *inRange[a].TS < *inRange[b].TS
	})
	return inRange
}

func bucketOf(readings []models.Reading, loc *time.Location) models.SeriesBucket {
	b := models.SeriesBucket{
		Labels: make([]string, 0, len(readings)),
		Temp:   make([]float64, 0, len(readings)),
		Hum:    make([]float64, 0, len(readings)),
	}
	for _, reading := range readings {
		appendPoint(&b, time.UnixMilli(*reading.TS).In(loc).Format(HistoryLabelLayout), reading)
	}
	return b
}

// HistoricalSeries returns the latest limit points of one device inside r, in ascending time order.
func HistoricalSeries(readings []models.Reading, deviceID string, r DateRange, limit int) models.SeriesBucket {
	matched := chronological(readings, r, func(reading models.Reading) bool {
		return reading.DeviceID == deviceID
	})
	return bucketOf(common.TakeLast(matched, limit), r.location())
}

func HistoricalByDevice(readings []models.Reading, r DateRange, limit int) map[string]models.SeriesBucket {
	grouped := map[string][]models.Reading{}
	for _, reading := range chronological(readings, r, func(models.Reading) bool { return true }) {
		grouped[reading.DeviceID] = append(grouped[reading.DeviceID], reading)
	}

	out := make(map[string]models.SeriesBucket, len(grouped))
	for id, group := range grouped {
		out[id] = bucketOf(common.TakeLast(group, limit), r.location())
	}
	return out
}

type SeriesMode string

const (
	SeriesModeLive    SeriesMode = "live"
	SeriesModeHistory SeriesMode = "history"
)

// SeriesSession holds the chart state of one viewer: either the live window or a loaded
// historical view, never both.
type SeriesSession struct {
	mu      sync.Mutex
	window  int
	mode    SeriesMode
	live    *LiveSeries
	history map[string]models.SeriesBucket
}

func NewSeriesSession(window int) *SeriesSession {
	return &SeriesSession{
		window: window,
		mode:   SeriesModeLive,
		live:   NewLiveSeries(window),
	}
}

func (s *SeriesSession) Mode() SeriesMode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// ObserveLive is ignored while a historical view is loaded.
func (s *SeriesSession) ObserveLive(readings []models.Reading, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mode != SeriesModeLive {
		return
	}
	s.live.Observe(readings, at)
}

func (s *SeriesSession) ShowHistory(buckets map[string]models.SeriesBucket) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mode = SeriesModeHistory
	s.history = make(map[string]models.SeriesBucket, len(buckets))
	for id, b := range buckets {
		s.history[id] = copyBucket(b)
	}
}

// SwitchToLive discards the historical buckets and starts an empty live window.
func (s *SeriesSession) SwitchToLive() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mode = SeriesModeLive
	s.history = nil
	s.live = NewLiveSeries(s.window)
}

func (s *SeriesSession) Buckets() map[string]models.SeriesBucket {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mode == SeriesModeLive {
		return s.live.Buckets()
	}
	out := make(map[string]models.SeriesBucket, len(s.history))
	for id, b := range s.history {
		out[id] = copyBucket(b)
	}
	return out
}
