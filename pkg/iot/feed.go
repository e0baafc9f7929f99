package iot

import (
	"encoding/json"
	"errors"
	"fmt"

	"liyu1981.xyz/iot-datalogger/pkg/models"
)

const malformedExcerptRunes = 200

var ErrMalformedPayload = errors.New("malformed payload")

type MalformedPayloadError struct {
	// Excerpt is at most the first 200 characters of the offending text
	Excerpt string
	Err     error
}

func (e *MalformedPayloadError) Error() string {
	return fmt.Sprintf("response is not valid JSON: %v. Raw: %s", e.Err, e.Excerpt)
}

func (e *MalformedPayloadError) Unwrap() error {
	return e.Err
}

func (e *MalformedPayloadError) Is(target error) bool {
	return target == ErrMalformedPayload
}

func excerpt(text string, n int) string {
	count := 0
	for idx := range text {
		if count == n {
			return text[:idx]
		}
		count++
	}
	return text
}

// ParseAndNormalize decodes the dashboard response text. A gateway envelope whose "body" is a
// JSON string is unwrapped first. Missing or non-array collections become empty.
func ParseAndNormalize(text string) (models.DashboardSnapshot, error) {
	var outer any
	if err := json.Unmarshal([]byte(text), &outer); err != nil {
		return models.DashboardSnapshot{}, &MalformedPayloadError{Excerpt: excerpt(text, malformedExcerptRunes), Err: err}
	}
	if outer == nil {
		return models.DashboardSnapshot{}, &MalformedPayloadError{Excerpt: excerpt(text, malformedExcerptRunes), Err: errors.New("payload is null")}
	}

	payload := unwrapGatewayEnvelope(outer)
	return models.DashboardSnapshot{
		IoTReadings:         arrayField(payload, "IoTReadings"),
		RealTimeDataMonitor: arrayField(payload, "RealTimeDataMonitor"),
	}, nil
}

func unwrapGatewayEnvelope(outer any) map[string]any {
	obj, ok := outer.(map[string]any)
	if !ok {
		return map[string]any{}
	}
	body, ok := obj["body"].(string)
	if !ok {
		return obj
	}

	var inner any
	if err := json.Unmarshal([]byte(body), &inner); err != nil {
		return map[string]any{}
	}
	if innerObj, ok := inner.(map[string]any); ok {
		return innerObj
	}
	return map[string]any{}
}

func arrayField(payload map[string]any, key string) []any {
	if items, ok := payload[key].([]any); ok {
		return items
	}
	return []any{}
}
