// Package sensor holds the queries behind the HTTP routes. Every operation acquires its own
// connection from the Connector, runs one statement and releases the connection.
package sensor

//go:generate mockgen -source=sensor.go -destination=mocks/mock_sensor.go -package=mocks

import (
	"context"

	"liyu1981.xyz/sensor-api-service/pkg/db"
	"liyu1981.xyz/sensor-api-service/pkg/models"
)

// LatestReadingsLimit caps GetLatestReadings.
const LatestReadingsLimit = 10

type IReading interface {
	InsertReading(ctx context.Context, sensorID int, value float64) (*models.Reading, error)
	GetLatestReadings(ctx context.Context, sensorID int) ([]models.Reading, error)
	GetLastReading(ctx context.Context) (*models.Reading, error)
}

type ISensor interface {
	ListSensors(ctx context.Context) ([]models.Sensor, error)
}

type Core struct {
	Connector *db.Connector
	Reading   IReading
	Sensor    ISensor
}

type ServiceOpts struct {
	Reading IReading
	Sensor  ISensor
}

func NewCore(connector *db.Connector) *Core {
	c := &Core{Connector: connector}
	return c.WithServices(ServiceOpts{
		Reading: c.GetIReading(),
		Sensor:  c.GetISensor(),
	})
}

func (c *Core) WithServices(opts ServiceOpts) *Core {
	if opts.Reading != nil {
		c.Reading = opts.Reading
	}
	if opts.Sensor != nil {
		c.Sensor = opts.Sensor
	}
	return c
}
