package notify

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"

	"liyu1981.xyz/iot-datalogger/pkg/common"
	"liyu1981.xyz/iot-datalogger/pkg/iot"
	"liyu1981.xyz/iot-datalogger/pkg/models"
)

const (
	AlarmQoS              = 1
	DefaultPublishTimeout = 5 * time.Second
)

// Publisher is the part of mqtt.Client the alarm publisher needs.
type Publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

// AlarmPublisher forwards every newly recorded alarm to an MQTT topic, one message per alarm
// under <Topic>/<deviceId>.
type AlarmPublisher struct {
	Client  Publisher
	Topic   string
	Timeout time.Duration
}

var _ iot.IObserver = (*AlarmPublisher)(nil)

func NewAlarmPublisher(client Publisher, topic string) *AlarmPublisher {
	return &AlarmPublisher{Client: client, Topic: topic, Timeout: DefaultPublishTimeout}
}

// Connect dials the broker and waits for the session.
func Connect(broker, clientID string, timeout time.Duration) (mqtt.Client, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectTimeout(timeout)
	c := mqtt.NewClient(opts)
	token := c.Connect()
	if !token.WaitTimeout(timeout) {
		return nil, fmt.Errorf("connect to %s: timed out after %v", broker, timeout)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to %s: %w", broker, err)
	}
	return c, nil
}

func (p *AlarmPublisher) TopicFor(deviceID string) string {
	return strings.TrimRight(p.Topic, "/") + "/" + deviceID
}

func (p *AlarmPublisher) Publish(record models.AlarmRecord) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return err
	}

	token := p.Client.Publish(p.TopicFor(record.DeviceID), AlarmQoS, false, payload)
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = DefaultPublishTimeout
	}
	if !token.WaitTimeout(timeout) {
		return fmt.Errorf("publish alarm %s: timed out", record.ID)
	}
	return token.Error()
}

func (p *AlarmPublisher) OnTick(result models.TickResult) {
	logger := common.GetLoggerWith(common.LoggerNameNotify)
	for _, record := range result.NewAlarms {
		if err := p.Publish(record); err != nil {
			logger.Error("Failed to publish alarm",
				zap.String("deviceId", record.DeviceID),
				zap.String("alarmId", record.ID),
				zap.Error(err),
			)
			continue
		}
		logger.Debug("Alarm published", zap.String("topic", p.TopicFor(record.DeviceID)))
	}
}
