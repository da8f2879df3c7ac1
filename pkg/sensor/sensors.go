package sensor

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"liyu1981.xyz/sensor-api-service/pkg/common"
	"liyu1981.xyz/sensor-api-service/pkg/db"
	"liyu1981.xyz/sensor-api-service/pkg/models"
)

func (c *Core) listSensors(ctx context.Context) ([]models.Sensor, error) {
	var ids []int

	err := c.Connector.WithConn(ctx, func(d *db.DB) error {
		return d.Conn.
			Model(&models.Reading{}).
			Distinct().
			Order("sensor_id asc").
			Pluck("sensor_id", &ids).Error
	})
	if err != nil {
		return nil, fmt.Errorf("list sensors: %w", err)
	}

	common.GetLoggerWith(
		common.LoggerNameSensorCore,
		zap.String(common.LoggerFieldCategory, common.LoggerCategorySensor),
	).Debug("Listed sensors", zap.Ints("sensor_ids", ids))

	return common.Mapper(ids, models.NewSensor), nil
}

type ISensorImpl struct {
	core *Core
}

func (is *ISensorImpl) ListSensors(ctx context.Context) ([]models.Sensor, error) {
	return is.core.listSensors(ctx)
}

func (c *Core) GetISensor() ISensor {
	return &ISensorImpl{core: c}
}
