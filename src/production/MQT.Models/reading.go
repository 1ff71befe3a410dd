package mqtmodels

import "time"

// SensorType is the numeric sensor type code shared with the sensors collection
type SensorType int

const (
	SensorTypeTemperature SensorType = 2
	SensorTypeVibration   SensorType = 8
	SensorTypeHumidity    SensorType = 9
)

// String returns the topic segment for the sensor type
func (s SensorType) String() string {
	switch s {
	case SensorTypeTemperature:
		return "temperature"
	case SensorTypeVibration:
		return "vibration"
	case SensorTypeHumidity:
		return "humidity"
	default:
		return "unknown"
	}
}

// Reading is a single decoded sample from a sensor topic.
//
// Point holds the scalar as decoded from the payload. Min, Max, Avg and
// Samples are not produced by gateway payloads and stay nil so they are
// emitted as null downstream.
type Reading struct {
	Timestamp  time.Time
	SensorType SensorType
	Point      interface{}
	Min        *float64
	Max        *float64
	Avg        *float64
	Samples    *float64
}
