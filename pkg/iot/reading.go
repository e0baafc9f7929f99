package iot

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"liyu1981.xyz/iot-datalogger/pkg/models"
)

const UnknownDeviceID = "Unknown"

// Envelope is a raw reading with its optional nested "payload" object split out.
type Envelope struct {
	fields  map[string]any
	payload map[string]any
}

// ParseEnvelope unwraps attribute-typed values and detects the payload wrapper. Non-object input
// yields an empty direct envelope.
func ParseEnvelope(raw any) Envelope {
	obj, ok := raw.(map[string]any)
	if !ok {
		return Envelope{fields: map[string]any{}}
	}

	fields := UnwrapAttrs(obj)
	env := Envelope{fields: fields}
	if payload, ok := fields["payload"].(map[string]any); ok {
		env.payload = UnwrapAttrs(payload)
	}
	return env
}

func (e Envelope) Wrapped() bool {
	return e.payload != nil
}

// Fields is the flat merge, payload fields winning on collision.
func (e Envelope) Fields() map[string]any {
	out := make(map[string]any, len(e.fields)+len(e.payload))
	for k, v := range e.fields {
		out[k] = v
	}
	if e.payload == nil {
		return out
	}
	delete(out, "payload")
	for k, v := range e.payload {
		out[k] = v
	}
	return out
}

func Flatten(raw any) models.Reading {
	return ReadingFromFields(ParseEnvelope(raw).Fields())
}

func FlattenAll(items []any) []models.Reading {
	readings := make([]models.Reading, 0, len(items))
	for _, item := range items {
		readings = append(readings, Flatten(item))
	}
	return readings
}

func ReadingFromFields(fields map[string]any) models.Reading {
	return models.Reading{
		DeviceID:    toDeviceID(fields["deviceId"]),
		Temperature: toFloat(fields["temperature"]),
		Humidity:    toFloat(fields["humidity"]),
		TS:          toMillis(fields["ts"]),
	}
}

func toDeviceID(v any) string {
	switch t := v.(type) {
	case string:
		if t != "" {
			return t
		}
	case float64:
		if !math.IsNaN(t) && !math.IsInf(t, 0) {
			return strconv.FormatFloat(t, 'f', -1, 64)
		}
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	}
	return UnknownDeviceID
}

func toFloat(v any) *float64 {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case int:
		f = float64(t)
	case int64:
		f = float64(t)
	case json.Number:
		parsed, err := t.Float64()
		if err != nil {
			return nil
		}
		f = parsed
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return nil
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil
		}
		f = parsed
	default:
		return nil
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

// toMillis treats zero as absent and saturates values beyond the int64 range, so an absurdly old
// timestamp stays old instead of wrapping around.
func toMillis(v any) *int64 {
	f := toFloat(v)
	if f == nil || *f == 0 {
		return nil
	}
	var ms int64
	switch {
	case *f >= math.MaxInt64:
		ms = math.MaxInt64
	case *f <= math.MinInt64:
		ms = math.MinInt64
	default:
		ms = int64(*f)
	}
	return &ms
}
