// Package config builds the process-wide configuration once at startup from the environment,
// optionally seeded by a .env file.
package config

import (
	"fmt"
	"os"
	"strings"

	z "github.com/Oudwins/zog"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"liyu1981.xyz/sensor-api-service/pkg/common"
	"liyu1981.xyz/sensor-api-service/pkg/db"
)

type Config struct {
	HttpHostPort       string
	DB                 db.Config
	InsertRate         float64
	InsertBurst        int
	CORSAllowedOrigins []string
}

// RateLimitEnabled is true when both SENSOR_INSERT_RATE and SENSOR_INSERT_BURST are set.
func (c *Config) RateLimitEnabled() bool {
	return c.InsertRate > 0 && c.InsertBurst > 0
}

type envValues struct {
	HttpHostPort       string
	DbType             string
	DbAutoMigrate      bool
	InsertRate         float64
	InsertBurst        int
	CorsAllowedOrigins string
}

var envSchema = z.Struct(z.Shape{
	"httpHostPort":       z.String().Default(common.DefaultSensorHttpHostPort),
	"dbType":             z.String().OneOf([]string{db.TypePostgres, db.TypeFile}).Default(db.TypePostgres),
	"dbAutoMigrate":      z.Bool().Optional(),
	"insertRate":         z.Float64().GTE(0).Optional(),
	"insertBurst":        z.Int().GTE(0).Optional(),
	"corsAllowedOrigins": z.String().Optional(),
})

// LoadDotEnv reads .env into the environment when the file exists.
func LoadDotEnv() {
	if err := godotenv.Load(); err != nil {
		common.GetLogger().Info("No .env file loaded, relying on process environment", zap.Error(err))
	}
}

func lookupEnv(values map[string]any, key string, envKey string) {
	if v, found := os.LookupEnv(envKey); found && strings.TrimSpace(v) != "" {
		values[key] = strings.TrimSpace(v)
	}
}

// Load reads the environment. It does not touch the database: an incomplete connection
// configuration is reported when the first connection is acquired.
func Load() (*Config, error) {
	raw := map[string]any{}
	lookupEnv(raw, "httpHostPort", common.EnvKeySensorHttpHostPort)
	lookupEnv(raw, "dbType", common.EnvKeySensorDBType)
	lookupEnv(raw, "dbAutoMigrate", common.EnvKeySensorDBAutoMigrate)
	lookupEnv(raw, "insertRate", common.EnvKeySensorInsertRate)
	lookupEnv(raw, "insertBurst", common.EnvKeySensorInsertBurst)
	lookupEnv(raw, "corsAllowedOrigins", common.EnvKeySensorCORSAllowedOrigins)

	var values envValues
	if errs := envSchema.Parse(raw, &values); errs != nil {
		return nil, fmt.Errorf("invalid configuration: %v", errs)
	}

	return &Config{
		HttpHostPort: values.HttpHostPort,
		DB: db.Config{
			Type:             values.DbType,
			ConnectionString: os.Getenv(common.EnvKeyConnectionString),
			User:             os.Getenv(common.EnvKeyDBUser),
			Password:         os.Getenv(common.EnvKeyDBPassword),
			Host:             os.Getenv(common.EnvKeyDBHost),
			Port:             os.Getenv(common.EnvKeyDBPort),
			DBName:           os.Getenv(common.EnvKeyDBName),
			AutoMigrate:      values.DbAutoMigrate,
		},
		InsertRate:         values.InsertRate,
		InsertBurst:        values.InsertBurst,
		CORSAllowedOrigins: common.SplitCSV(values.CorsAllowedOrigins),
	}, nil
}
