package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"liyu1981.xyz/iot-datalogger/pkg/common"
)

const (
	envPrefix = "IOT"

	KeyAPIURL              = "api_url"
	KeyDashboardPath       = "dashboard_path"
	KeyFetchTimeout        = "fetch_timeout"
	KeyPollInterval        = "poll_interval"
	KeyOfflineAfter        = "offline_after"
	KeyTempMin             = "temp_min"
	KeyTempMax             = "temp_max"
	KeyHumMin              = "hum_min"
	KeyHumMax              = "hum_max"
	KeyAlarmLogMax         = "alarm_log_max"
	KeyLiveWindow          = "live_window"
	KeyHistoryPoints       = "history_points"
	KeyDeviceHistoryPoints = "device_history_points"
	KeyDBType              = "db_type"
	KeyHTTPHostPort        = "http_host_port"
	KeyGrpcHostPort        = "grpc_host_port"
	KeyDefaultRate         = "default_rate"
	KeyDefaultBurst        = "default_burst"
	KeyMqttBroker          = "mqtt_broker"
	KeyMqttTopic           = "mqtt_topic"
	KeyMqttClientID        = "mqtt_client_id"
)

// Config holds runtime configuration for the datalogger service.
type Config struct {
	APIURL        string
	DashboardPath string
	FetchTimeout  time.Duration
	PollInterval  time.Duration

	OfflineAfter time.Duration
	TempMin      float64
	TempMax      float64
	HumMin       float64
	HumMax       float64

	AlarmLogMax         int
	LiveWindow          int
	HistoryPoints       int
	DeviceHistoryPoints int

	DBType       string
	HTTPHostPort string
	GrpcHostPort string
	DefaultRate  float64
	DefaultBurst int

	MqttBroker   string
	MqttTopic    string
	MqttClientID string
}

// DashboardURL is the full endpoint polled for the dashboard payload.
func (c Config) DashboardURL() string {
	return strings.TrimRight(c.APIURL, "/") + c.DashboardPath
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyAPIURL, "https://cg5h2ba15i.execute-api.ap-south-1.amazonaws.com")
	v.SetDefault(KeyDashboardPath, "/prod")
	v.SetDefault(KeyFetchTimeout, 15*time.Second)
	v.SetDefault(KeyPollInterval, 5*time.Second)
	v.SetDefault(KeyOfflineAfter, 2*time.Minute)
	v.SetDefault(KeyTempMin, 0.0)
	v.SetDefault(KeyTempMax, 60.0)
	v.SetDefault(KeyHumMin, 0.0)
	v.SetDefault(KeyHumMax, 100.0)
	v.SetDefault(KeyAlarmLogMax, 500)
	v.SetDefault(KeyLiveWindow, 6)
	v.SetDefault(KeyHistoryPoints, 10)
	v.SetDefault(KeyDeviceHistoryPoints, 15)
	v.SetDefault(KeyDBType, "file")
	v.SetDefault(KeyHTTPHostPort, ":1080")
	v.SetDefault(KeyGrpcHostPort, "")
	v.SetDefault(KeyDefaultRate, 20.0)
	v.SetDefault(KeyDefaultBurst, 40)
	v.SetDefault(KeyMqttBroker, "")
	v.SetDefault(KeyMqttTopic, "datalogger/alarms")
	v.SetDefault(KeyMqttClientID, "datalogger")
}

// Load reads configuration from environment variables (optionally .env and a config file).
func Load() (Config, error) {
	_ = godotenv.Load(".env")

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	if path := strings.TrimSpace(os.Getenv(common.EnvKeyIOTConfigFile)); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file %s: %w", path, err)
		}
	}

	return FromViper(v)
}

func FromViper(v *viper.Viper) (Config, error) {
	cfg := Config{
		APIURL:              strings.TrimSpace(v.GetString(KeyAPIURL)),
		DashboardPath:       strings.TrimSpace(v.GetString(KeyDashboardPath)),
		FetchTimeout:        v.GetDuration(KeyFetchTimeout),
		PollInterval:        v.GetDuration(KeyPollInterval),
		OfflineAfter:        v.GetDuration(KeyOfflineAfter),
		TempMin:             v.GetFloat64(KeyTempMin),
		TempMax:             v.GetFloat64(KeyTempMax),
		HumMin:              v.GetFloat64(KeyHumMin),
		HumMax:              v.GetFloat64(KeyHumMax),
		AlarmLogMax:         v.GetInt(KeyAlarmLogMax),
		LiveWindow:          v.GetInt(KeyLiveWindow),
		HistoryPoints:       v.GetInt(KeyHistoryPoints),
		DeviceHistoryPoints: v.GetInt(KeyDeviceHistoryPoints),
		DBType:              strings.TrimSpace(v.GetString(KeyDBType)),
		HTTPHostPort:        strings.TrimSpace(v.GetString(KeyHTTPHostPort)),
		GrpcHostPort:        strings.TrimSpace(v.GetString(KeyGrpcHostPort)),
		DefaultRate:         v.GetFloat64(KeyDefaultRate),
		DefaultBurst:        v.GetInt(KeyDefaultBurst),
		MqttBroker:          strings.TrimSpace(v.GetString(KeyMqttBroker)),
		MqttTopic:           strings.TrimSpace(v.GetString(KeyMqttTopic)),
		MqttClientID:        strings.TrimSpace(v.GetString(KeyMqttClientID)),
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error

	if c.APIURL == "" {
		errs = append(errs, errors.New("IOT_API_URL is required"))
	}
	if c.FetchTimeout <= 0 {
		errs = append(errs, errors.New("IOT_FETCH_TIMEOUT must be > 0"))
	}
	if c.PollInterval <= 0 {
		errs = append(errs, errors.New("IOT_POLL_INTERVAL must be > 0"))
	}
	if c.OfflineAfter <= 0 {
		errs = append(errs, errors.New("IOT_OFFLINE_AFTER must be > 0"))
	}
	if c.TempMin > c.TempMax {
		errs = append(errs, fmt.Errorf("IOT_TEMP_MIN %v greater than IOT_TEMP_MAX %v", c.TempMin, c.TempMax))
	}
	if c.HumMin > c.HumMax {
		errs = append(errs, fmt.Errorf("IOT_HUM_MIN %v greater than IOT_HUM_MAX %v", c.HumMin, c.HumMax))
	}
	if c.AlarmLogMax < 1 {
		errs = append(errs, errors.New("IOT_ALARM_LOG_MAX must be >= 1"))
	}
	if c.LiveWindow < 1 || c.HistoryPoints < 1 || c.DeviceHistoryPoints < 1 {
		errs = append(errs, errors.New("IOT_LIVE_WINDOW, IOT_HISTORY_POINTS and IOT_DEVICE_HISTORY_POINTS must be >= 1"))
	}
	switch c.DBType {
	case "file", "memory":
	default:
		errs = append(errs, fmt.Errorf("unknown IOT_DB_TYPE: %q", c.DBType))
	}

	return errors.Join(errs...)
}
