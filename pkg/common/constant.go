package common

const (
	EnvKeyGoEnv string = "GO_ENV"

	EnvKeyRunIntegrationTests string = "RUN_INTEGRATION_TESTS"

	// IOT_CONFIG_FILE optionally points at a yaml/json/toml file read by viper
	EnvKeyIOTConfigFile string = "IOT_CONFIG_FILE"

	EnvKeyIOTDBType string = "IOT_DB_TYPE"
	EnvKeyIOTDbPath string = "IOT_DB_PATH"

	EnvKeyIOTHttpHostPort string = "IOT_HTTP_HOST_PORT"
	EnvKeyIOTGrpcHostPort string = "IOT_GRPC_HOST_PORT"

	EnvKeyIOTDefaultRate  string = "IOT_DEFAULT_RATE"
	EnvKeyIOTDefaultBurst string = "IOT_DEFAULT_BURST"

	EnvKeyIOTMqttBroker string = "IOT_MQTT_BROKER"

	LoggerNameIOTCore       string = "iot_core"
	LoggerNameRestfulServer string = "restful_server"
	LoggerNameGrpcServer    string = "grpc_server"
	LoggerNamePoller        string = "poller"
	LoggerNameNotify        string = "notify"
	LoggerNameStream        string = "stream"
	LoggerFieldIOTCategory  string = "category"
	LoggerCategoryIOTFeed   string = "feed"
	LoggerCategoryIOTAlarm  string = "alarm"
	LoggerCategoryIOTUser   string = "user"
	LoggerCategoryIOTSeries string = "series"

	// keys of the persisted blobs
	BlobKeyAlarmLogs string = "@alarm_logs_v1"
	BlobKeyUser      string = "@user_credentials_v1"
)
