package sensor

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"liyu1981.xyz/sensor-api-service/pkg/common"
	"liyu1981.xyz/sensor-api-service/pkg/db"
	"liyu1981.xyz/sensor-api-service/pkg/models"
)

func readingLogger() *zap.Logger {
	return common.GetLoggerWith(
		common.LoggerNameSensorCore,
		zap.String(common.LoggerFieldCategory, common.LoggerCategoryReading),
	)
}

func (c *Core) insertReading(ctx context.Context, sensorID int, value float64) (*models.Reading, error) {
	logger := readingLogger()

	reading := models.Reading{
		SensorID: sensorID,
		Value:    value,
	}

	logger.Info("Received reading for sensor", zap.Reflect("reading", reading))

	err := c.Connector.WithConn(ctx, func(d *db.DB) error {
		// created_at comes from the column default
		return d.Conn.Omit("created_at").Create(&reading).Error
	})
	if err != nil {
		return nil, fmt.Errorf("insert reading for sensor %d: %w", sensorID, err)
	}

	logger.Info("Inserted reading for sensor", zap.Reflect("reading", reading))

	return &reading, nil
}

// getLatestReadings returns up to LatestReadingsLimit rows, oldest first.
func (c *Core) getLatestReadings(ctx context.Context, sensorID int) ([]models.Reading, error) {
	var readings []models.Reading

	err := c.Connector.WithConn(ctx, func(d *db.DB) error {
		return d.Conn.
			Where("sensor_id = ?", sensorID).
			Order("created_at desc").
			Order("id desc").
			Limit(LatestReadingsLimit).
			Find(&readings).Error
	})
	if err != nil {
		return nil, fmt.Errorf("fetch latest readings for sensor %d: %w", sensorID, err)
	}

	return common.Reverse(readings), nil
}

func (c *Core) getLastReading(ctx context.Context) (*models.Reading, error) {
	var readings []models.Reading

	err := c.Connector.WithConn(ctx, func(d *db.DB) error {
		return d.Conn.
			Order("created_at desc").
			Order("id desc").
			Limit(1).
			Find(&readings).Error
	})
	if err != nil {
		return nil, fmt.Errorf("fetch last reading: %w", err)
	}

	if len(readings) == 0 {
		return nil, nil
	}
	return &readings[0], nil
}

type IReadingImpl struct {
	core *Core
}

func (ir *IReadingImpl) InsertReading(ctx context.Context, sensorID int, value float64) (*models.Reading, error) {
	return ir.core.insertReading(ctx, sensorID, value)
}

func (ir *IReadingImpl) GetLatestReadings(ctx context.Context, sensorID int) ([]models.Reading, error) {
	return ir.core.getLatestReadings(ctx, sensorID)
}

func (ir *IReadingImpl) GetLastReading(ctx context.Context) (*models.Reading, error) {
	return ir.core.getLastReading(ctx)
}

func (c *Core) GetIReading() IReading {
	return &IReadingImpl{core: c}
}
