package db

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"liyu1981.xyz/sensor-api-service/pkg/common"
	"liyu1981.xyz/sensor-api-service/pkg/models"
	_ "liyu1981.xyz/sensor-api-service/pkg/testing"
)

func tableExists(db *gorm.DB, tableName string) bool {
	var count int64
	err := db.Raw(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name=?`, tableName,
	).Scan(&count).Error
	return err == nil && count > 0
}

func newFileConnector(t *testing.T) *Connector {
	return NewConnector(Config{
		Type:             TypeFile,
		ConnectionString: filepath.Join(t.TempDir(), "test.db"),
	})
}

func TestPostgresDSN(t *testing.T) {
	{
		// descriptor wins over discrete fields
		cfg := Config{
			ConnectionString: "postgres://u:p@db.local:5432/sensors",
			User:             "other",
			Password:         "other",
			Host:             "other",
			Port:             "1",
			DBName:           "other",
		}
		dsn, err := cfg.PostgresDSN()
		require.NoError(t, err)
		assert.Equal(t, "postgres://u:p@db.local:5432/sensors", dsn)
	}

	{
		cfg := Config{User: "sensor", Password: "s3cret", Host: "db.local", Port: "5432", DBName: "sensors"}
		dsn, err := cfg.PostgresDSN()
		require.NoError(t, err)
		assert.Equal(t, "host=db.local port=5432 user=sensor password=s3cret dbname=sensors", dsn)
	}

	{
		cfg := Config{User: "sensor", Password: `it's a pass\`, Host: "db.local", Port: "5432", DBName: "sensors"}
		dsn, err := cfg.PostgresDSN()
		require.NoError(t, err)
		assert.Equal(t, `host=db.local port=5432 user=sensor password='it\'s a pass\\' dbname=sensors`, dsn)
	}

	{
		// one discrete field missing and no descriptor
		cfg := Config{User: "sensor", Password: "s3cret", Host: "db.local", Port: "5432"}
		_, err := cfg.PostgresDSN()
		assert.ErrorIs(t, err, ErrIncompleteConfig)
	}
}

func TestDialector(t *testing.T) {
	{
		d, err := Config{ConnectionString: "host=db.local dbname=sensors"}.Dialector()
		require.NoError(t, err)
		assert.Equal(t, "postgres", d.Name())
		assert.Equal(t, "host=db.local dbname=sensors", d.(*postgres.Dialector).DSN)
	}

	{
		d, err := Config{Type: TypeFile}.Dialector()
		require.NoError(t, err)
		assert.Equal(t, "sqlite", d.Name())
		assert.Equal(t, DefaultSqlitePath, d.(*sqlite.Dialector).DSN)
	}

	{
		_, err := Config{Type: TypePostgres}.Dialector()
		assert.ErrorIs(t, err, ErrIncompleteConfig)
	}

	{
		_, err := Config{Type: "mysql"}.Dialector()
		assert.ErrorIs(t, err, ErrUnknownDBType)
	}
}

func TestMigrateWithFileSqlite(t *testing.T) {
	common.SetTestLoggerNop()

	connector := newFileConnector(t)
	require.NoError(t, connector.Migrate(context.Background()))

	err := connector.WithConn(context.Background(), func(d *DB) error {
		assert.True(t, tableExists(d.Conn, "sensor_readings"), "expected sensor_readings to exist after migration")
		return nil
	})
	assert.NoError(t, err)
}

func TestWithConnReleasesConnection(t *testing.T) {
	common.SetTestLoggerNop()

	connector := newFileConnector(t)
	require.NoError(t, connector.Migrate(context.Background()))

	var used *DB
	err := connector.WithConn(context.Background(), func(d *DB) error {
		used = d
		return d.Conn.Create(&models.Reading{SensorID: 1, Value: 1.5}).Error
	})
	require.NoError(t, err)

	sqlDB, err := used.Conn.DB()
	require.NoError(t, err)
	assert.Error(t, sqlDB.Ping(), "connection should be closed once WithConn returns")
}

func TestWithConnReleasesConnectionOnError(t *testing.T) {
	common.SetTestLoggerNop()

	connector := newFileConnector(t)
	failure := errors.New("just causing error")

	var used *DB
	err := connector.WithConn(context.Background(), func(d *DB) error {
		used = d
		return failure
	})
	assert.ErrorIs(t, err, failure)

	sqlDB, err := used.Conn.DB()
	require.NoError(t, err)
	assert.Error(t, sqlDB.Ping())
}

func TestWithConnReleasesConnectionOnPanic(t *testing.T) {
	common.SetTestLoggerNop()

	connector := newFileConnector(t)

	var used *DB
	func() {
		defer func() {
			assert.NotNil(t, recover())
		}()
		_ = connector.WithConn(context.Background(), func(d *DB) error {
			used = d
			panic("boom")
		})
	}()

	require.NotNil(t, used)
	sqlDB, err := used.Conn.DB()
	require.NoError(t, err)
	assert.Error(t, sqlDB.Ping())
}

func TestConnectEachCallIsNewConnection(t *testing.T) {
	common.SetTestLoggerNop()

	connector := newFileConnector(t)

	first, err := connector.Connect(context.Background())
	require.NoError(t, err)
	defer first.Close()

	second, err := connector.Connect(context.Background())
	require.NoError(t, err)
	defer second.Close()

	firstSQL, _ := first.Conn.DB()
	secondSQL, _ := second.Conn.DB()
	assert.NotSame(t, firstSQL, secondSQL)
	assert.Equal(t, 1, firstSQL.Stats().MaxOpenConnections)
}

func TestConnectFailures(t *testing.T) {
	common.SetTestLoggerNop()

	{
		// unreachable: sqlite can not create a file in a missing directory
		connector := NewConnector(Config{
			Type:             TypeFile,
			ConnectionString: filepath.Join(t.TempDir(), "missing", "dir", "test.db"),
		})
		_, err := connector.Connect(context.Background())
		assert.ErrorIs(t, err, ErrConnect)
	}

	{
		connector := NewConnector(Config{})
		err := connector.WithConn(context.Background(), func(d *DB) error {
			t.Fatal("fn must not run without a connection")
			return nil
		})
		assert.ErrorIs(t, err, ErrIncompleteConfig)
	}
}

func TestConnectFailureReleasesPool(t *testing.T) {
	common.SetTestLoggerNop()

	// nothing listens on port 1, so the ping fails after the pool is opened
	connector := NewConnector(Config{
		ConnectionString: "host=127.0.0.1 port=1 user=sensor password=sensor dbname=sensor sslmode=disable connect_timeout=2",
	})

	before := runtime.NumGoroutine()
	for range 30 {
		conn, err := connector.Connect(context.Background())
		require.ErrorIs(t, err, ErrConnect)
		require.Nil(t, conn)
	}

	assert.Eventually(t, func() bool {
		return runtime.NumGoroutine() <= before+3
	}, 5*time.Second, 20*time.Millisecond, "goroutines before=%d after=%d", before, runtime.NumGoroutine())
}

func TestGormLogsGoToZap(t *testing.T) {
	buf := &bytes.Buffer{}
	common.SetTestCaptureLogger(buf, zapcore.DebugLevel)
	defer common.SetTestLoggerNop()

	connector := newFileConnector(t)
	err := connector.WithConn(context.Background(), func(d *DB) error {
		var readings []models.Reading
		return d.Conn.Find(&readings).Error
	})
	require.Error(t, err)

	found := false
	for _, line := range bytes.Split(buf.Bytes(), []byte("\n")) {
		var entry map[string]any
		if json.Unmarshal(line, &entry) != nil {
			continue
		}
		if entry["msg"] == "Query failed" {
			found = true
			assert.Equal(t, common.LoggerNameDB, entry["logger"])
			assert.Equal(t, common.LoggerCategoryQuery, entry[common.LoggerFieldCategory])
			assert.Contains(t, entry["sql"], "sensor_readings")
		}
	}
	assert.True(t, found, "query error should be logged through zap")
}

func TestNewGormLoggerLevel(t *testing.T) {
	t.Setenv(common.EnvKeyGoEnv, "development")
	assert.Equal(t, gormlogger.Info, NewGormLogger().level)

	t.Setenv(common.EnvKeyGoEnv, "production")
	assert.Equal(t, gormlogger.Warn, NewGormLogger().level)
}

func TestWithPostgres(t *testing.T) {
	common.SetTestLoggerNop()

	if os.Getenv(common.EnvKeyRunIntegrationTests) != "true" {
		t.Skip("Skipping integration test: RUN_INTEGRATION_TESTS environment variable not set")
	}

	connector := NewConnector(Config{
		Type:             TypePostgres,
		ConnectionString: os.Getenv(common.EnvKeyConnectionString),
		User:             os.Getenv(common.EnvKeyDBUser),
		Password:         os.Getenv(common.EnvKeyDBPassword),
		Host:             os.Getenv(common.EnvKeyDBHost),
		Port:             os.Getenv(common.EnvKeyDBPort),
		DBName:           os.Getenv(common.EnvKeyDBName),
	})

	err := connector.WithConn(context.Background(), func(d *DB) error {
		var now string
		return d.Conn.Raw("SELECT now()::text").Scan(&now).Error
	})
	assert.NoError(t, err)
}
