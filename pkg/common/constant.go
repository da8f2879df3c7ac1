package common

const (
	EnvKeyGoEnv string = "GO_ENV"

	EnvKeyRunIntegrationTests string = "RUN_INTEGRATION_TESTS"

	// connection descriptor, wins over the discrete fields below
	EnvKeyConnectionString string = "CONNECTION_STRING"

	EnvKeyDBUser     string = "USER"
	EnvKeyDBPassword string = "PASSWORD"
	EnvKeyDBHost     string = "HOST"
	EnvKeyDBPort     string = "PORT"
	EnvKeyDBName     string = "DBNAME"

	EnvKeySensorDBType        string = "SENSOR_DB_TYPE"
	EnvKeySensorDBAutoMigrate string = "SENSOR_DB_AUTO_MIGRATE"

	EnvKeySensorHttpHostPort string = "SENSOR_HTTP_HOST_PORT"

	EnvKeySensorInsertRate  string = "SENSOR_INSERT_RATE"
	EnvKeySensorInsertBurst string = "SENSOR_INSERT_BURST"

	EnvKeySensorCORSAllowedOrigins string = "SENSOR_CORS_ALLOWED_ORIGINS"

	EnvKeySensorLogDir string = "SENSOR_LOG_DIR"

	LoggerNameSensorCore      string = "sensor_core"
	LoggerNameRestfulServer   string = "restful_server"
	LoggerNameDB              string = "db"
	LoggerFieldCategory       string = "category"
	LoggerCategoryReading     string = "reading"
	LoggerCategorySensor      string = "sensor"
	LoggerCategoryAccess      string = "access"
	LoggerCategoryConnection  string = "connection"
	LoggerCategoryQuery       string = "query"
	LoggerFieldRequestID      string = "request_id"
	HeaderRequestID           string = "X-Request-ID"
	ContextKeyRequestID       string = "request_id"
	ReadingTimestampLayout    string = "2006-01-02 15:04:05"
	DefaultSensorHttpHostPort string = ":1080"
)
