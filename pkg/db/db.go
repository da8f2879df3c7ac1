package db

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"liyu1981.xyz/sensor-api-service/pkg/common"
	"liyu1981.xyz/sensor-api-service/pkg/models"
)

var ErrConnect = errors.New("failed to connect to database")

// DB is one open physical connection. Close it when done, or use Connector.WithConn.
type DB struct {
	Conn *gorm.DB
}

func (d *DB) Close() error {
	sqlDB, err := d.Conn.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Connector opens a new connection per call; nothing is shared between callers.
type Connector struct {
	dialector func() (gorm.Dialector, error)
}

func NewConnector(cfg Config) *Connector {
	return &Connector{dialector: cfg.Dialector}
}

func NewConnectorWithDialector(dialector func() (gorm.Dialector, error)) *Connector {
	return &Connector{dialector: dialector}
}

func (c *Connector) Connect(ctx context.Context) (*DB, error) {
	logger := common.GetLoggerWith(
		common.LoggerNameDB,
		zap.String(common.LoggerFieldCategory, common.LoggerCategoryConnection),
	)

	dialector, err := c.dialector()
	if err != nil {
		return nil, err
	}

	conn, err := gorm.Open(dialector, &gorm.Config{
		Logger:               NewGormLogger(),
		DisableAutomaticPing: true,
	})
	if err != nil {
		if conn != nil {
			if sqlDB, dbErr := conn.DB(); dbErr == nil {
				_ = sqlDB.Close()
			}
		}
		return nil, fmt.Errorf("%w: %w", ErrConnect, err)
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnect, err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("%w: %w", ErrConnect, err)
	}

	logger.Debug("Connection opened", zap.String("dialector", dialector.Name()))

	return &DB{Conn: conn.WithContext(ctx)}, nil
}

// WithConn opens a connection, hands it to fn and closes it on every exit path.
func (c *Connector) WithConn(ctx context.Context, fn func(*DB) error) error {
	conn, err := c.Connect(ctx)
	if err != nil {
		return err
	}

	defer func() {
		if err := conn.Close(); err != nil {
			common.GetLoggerWith(
				common.LoggerNameDB,
				zap.String(common.LoggerFieldCategory, common.LoggerCategoryConnection),
			).Warn("Failed to close connection", zap.Error(err))
		}
	}()

	return fn(conn)
}

// Migrate creates sensor_readings. Only for development and sqlite, production schema is
// managed outside of the service.
func (c *Connector) Migrate(ctx context.Context) error {
	return c.WithConn(ctx, func(d *DB) error {
		if err := d.Conn.AutoMigrate(&models.Reading{}); err != nil {
			return err
		}

		common.GetLogger().Info("Database migration completed")
		return nil
	})
}
