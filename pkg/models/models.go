package models

import (
	"fmt"
	"time"
)

// Reading is one stored observation of a sensor. Rows are only ever inserted; created_at is
// assigned by the database.
type Reading struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	SensorID  int       `gorm:"index;not null" json:"sensor_id"`
	Value     float64   `gorm:"not null" json:"value"`
	CreatedAt time.Time `gorm:"index;not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (Reading) TableName() string {
	return "sensor_readings"
}

// Sensor has no row of its own, it is a distinct sensor_id found in sensor_readings.
type Sensor struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

func NewSensor(id int) Sensor {
	return Sensor{ID: id, Name: fmt.Sprintf("Sensor %d", id)}
}
