package iot

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, text string) any {
	t.Helper()
	var v any
	require.NoError(t, json.Unmarshal([]byte(text), &v))
	return v
}

func TestFlatten_Direct(t *testing.T) {
	r := Flatten(decode(t, `{"deviceId":"D1","temperature":25,"humidity":40,"ts":1700000000000}`))

	assert.Equal(t, "D1", r.DeviceID)
	require.NotNil(t, r.Temperature)
	assert.Equal(t, 25.0, *r.Temperature)
	require.NotNil(t, r.Humidity)
	assert.Equal(t, 40.0, *r.Humidity)
	require.NotNil(t, r.TS)
	assert.Equal(t, int64(1700000000000), *r.TS)
}

func TestFlatten_NestedPayloadWins(t *testing.T) {
	raw := decode(t, `{"deviceId":"outer","temperature":10,"humidity":50,`+
		`"payload":{"deviceId":"inner","temperature":31.5}}`)

	r := Flatten(raw)

	assert.Equal(t, "inner", r.DeviceID)
	assert.Equal(t, 31.5, *r.Temperature)
	// top-level fields survive when the payload does not shadow them
	assert.Equal(t, 50.0, *r.Humidity)
}

func TestFlatten_DoesNotMutateInput(t *testing.T) {
	raw := decode(t, `{"deviceId":"D1","payload":{"temperature":{"N":"12.5"}}}`)
	before, err := json.Marshal(raw)
	require.NoError(t, err)

	_ = Flatten(raw)

	after, err := json.Marshal(raw)
	require.NoError(t, err)
	assert.JSONEq(t, string(before), string(after))
}

func TestParseEnvelope(t *testing.T) {
	direct := ParseEnvelope(decode(t, `{"deviceId":"D1"}`))
	assert.False(t, direct.Wrapped())

	wrapped := ParseEnvelope(decode(t, `{"deviceId":"D1","payload":{"humidity":3}}`))
	assert.True(t, wrapped.Wrapped())
	fields := wrapped.Fields()
	assert.NotContains(t, fields, "payload")
	assert.Equal(t, 3.0, fields["humidity"])

	// a non-object payload is just another field
	scalar := ParseEnvelope(decode(t, `{"deviceId":"D1","payload":"opaque"}`))
	assert.False(t, scalar.Wrapped())
	assert.Equal(t, "opaque", scalar.Fields()["payload"])

	empty := ParseEnvelope(decode(t, `[1,2]`))
	assert.Empty(t, empty.Fields())
}

func TestFlatten_DynamoAttributes(t *testing.T) {
	raw := decode(t, `{"deviceId":{"S":"D7"},"ts":{"N":"1700000000000"},`+
		`"payload":{"M":{"temperature":{"N":"99"}}},"humidity":{"N":"45.5"},"online":{"BOOL":true}}`)

	env := ParseEnvelope(raw)
	require.True(t, env.Wrapped())
	assert.Equal(t, true, env.Fields()["online"])

	r := Flatten(raw)
	assert.Equal(t, "D7", r.DeviceID)
	assert.Equal(t, 99.0, *r.Temperature)
	assert.Equal(t, 45.5, *r.Humidity)
	assert.Equal(t, int64(1700000000000), *r.TS)
}

func TestParseRawValue(t *testing.T) {
	cases := []struct {
		name  string
		in    string
		attr  bool
		plain any
	}{
		{"string attr", `{"S":"abc"}`, true, "abc"},
		{"number attr", `{"N":"1.25"}`, true, 1.25},
		{"bool attr", `{"BOOL":false}`, true, false},
		{"null attr", `{"NULL":true}`, true, nil},
		{"bad number stays plain", `{"N":"abc"}`, false, map[string]any{"N": "abc"}},
		{"two keys stay plain", `{"S":"a","N":"1"}`, false, map[string]any{"S": "a", "N": "1"}},
		{"plain number", `7`, false, 7.0},
		{"plain object", `{"deviceId":"x"}`, false, map[string]any{"deviceId": "x"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			v := ParseRawValue(decode(t, tc.in))
			assert.Equal(t, tc.attr, v.IsDynamoAttr())
			assert.Equal(t, tc.plain, v.Plain())
		})
	}
}

func TestReadingCoercion(t *testing.T) {
	r := Flatten(decode(t, `{"temperature":"21.5","humidity":"n/a","ts":0}`))
	assert.Equal(t, UnknownDeviceID, r.DeviceID)
	assert.Equal(t, 21.5, *r.Temperature)
	assert.Nil(t, r.Humidity)
	assert.Nil(t, r.TS, "zero timestamp counts as absent")

	r = Flatten(decode(t, `{"deviceId":42,"temperature":null,"humidity":true,"ts":"1700000000000"}`))
	assert.Equal(t, "42", r.DeviceID)
	assert.Nil(t, r.Temperature)
	assert.Nil(t, r.Humidity)
	assert.Equal(t, int64(1700000000000), *r.TS)

	r = Flatten(decode(t, `{"deviceId":""}`))
	assert.Equal(t, UnknownDeviceID, r.DeviceID)
}

func TestReadingCoercion_HugeTimestamps(t *testing.T) {
	r := Flatten(decode(t, `{"deviceId":"D1","ts":-1e300}`))
	require.NotNil(t, r.TS)
	assert.Equal(t, int64(math.MinInt64), *r.TS)

	r = Flatten(decode(t, `{"deviceId":"D1","ts":1e300}`))
	require.NotNil(t, r.TS)
	assert.Equal(t, int64(math.MaxInt64), *r.TS)

	r = Flatten(decode(t, `{"deviceId":"D1","ts":"9.3e18"}`))
	require.NotNil(t, r.TS)
	assert.Equal(t, int64(math.MaxInt64), *r.TS)
}

func TestFlattenAll(t *testing.T) {
	items := decode(t, `[{"deviceId":"A"},{"payload":{"deviceId":"B"}},"junk"]`).([]any)

	readings := FlattenAll(items)
	require.Len(t, readings, 3)
	assert.Equal(t, "A", readings[0].DeviceID)
	assert.Equal(t, "B", readings[1].DeviceID)
	assert.Equal(t, UnknownDeviceID, readings[2].DeviceID)
}
