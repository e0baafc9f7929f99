package stream

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"liyu1981.xyz/iot-datalogger/pkg/common"
	"liyu1981.xyz/iot-datalogger/pkg/models"
	_ "liyu1981.xyz/iot-datalogger/pkg/testing"
)

func dialHub(t *testing.T, hub *Hub) *websocket.Conn {
	srv := httptest.NewServer(hub)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg Message
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

func TestHub_BroadcastsTicks(t *testing.T) {
	common.SetTestLoggerNop()

	hub := NewHub()
	conn := dialHub(t, hub)
	assert.Eventually(t, func() bool { return hub.Len() == 1 }, time.Second, 5*time.Millisecond)

	hub.OnTick(models.TickResult{
		Devices:   []models.DeviceView{{Reading: models.Reading{DeviceID: "D1"}, Status: models.DeviceStatusAlarm}},
		NewAlarms: []models.AlarmRecord{{ID: "a1", DeviceID: "D1", Status: "Alarm"}},
	})

	msg := readMessage(t, conn)
	assert.Equal(t, MessageTypeTick, msg.Type)
	require.Len(t, msg.Payload.Devices, 1)
	assert.Equal(t, models.DeviceStatusAlarm, msg.Payload.Devices[0].Status)
	require.Len(t, msg.Payload.NewAlarms, 1)
	assert.Equal(t, "a1", msg.Payload.NewAlarms[0].ID)

	hub.OnTick(models.TickResult{Error: "API error 500: boom"})
	msg = readMessage(t, conn)
	assert.Equal(t, "API error 500: boom", msg.Payload.Error)
	assert.Empty(t, msg.Payload.Devices)
}

func TestHub_LateViewerGetsLatest(t *testing.T) {
	common.SetTestLoggerNop()

	hub := NewHub()
	hub.OnTick(models.TickResult{Devices: []models.DeviceView{{Reading: models.Reading{DeviceID: "D7"}}}})

	conn := dialHub(t, hub)
	msg := readMessage(t, conn)
	require.Len(t, msg.Payload.Devices, 1)
	assert.Equal(t, "D7", msg.Payload.Devices[0].DeviceID)
}

func TestHub_DisconnectAndClose(t *testing.T) {
	common.SetTestLoggerNop()

	hub := NewHub()
	conn := dialHub(t, hub)
	assert.Eventually(t, func() bool { return hub.Len() == 1 }, time.Second, 5*time.Millisecond)

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return hub.Len() == 0 }, time.Second, 5*time.Millisecond)

	conn = dialHub(t, hub)
	assert.Eventually(t, func() bool { return hub.Len() == 1 }, time.Second, 5*time.Millisecond)

	hub.Close()
	assert.Equal(t, 0, hub.Len())

	// the server sends a close frame
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err)

	// ticks after close are ignored
	hub.OnTick(models.TickResult{})
	hub.Close()
}
