package mqtmodels

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TelemetryRecord is the enriched document published to the telemetry exchange
type TelemetryRecord struct {
	Timestamp time.Time          `json:"timestamp"`
	Tag       RecordTag          `json:"tag"`
	Asset     RecordAsset        `json:"asset"`
	Device    RecordDevice       `json:"device"`
	Sensor    RecordSensor       `json:"sensor"`
	Client    primitive.ObjectID `json:"client"`
	Data      RecordData         `json:"data"`
}

// RecordTag carries the composite tag and each of its parts
type RecordTag struct {
	Full            string `json:"full"`
	ClientTagCode   string `json:"clientTagCode"`
	LocationTagCode string `json:"locationTagCode"`
	AssetTagCode    string `json:"assetTagCode"`
	SensorTagCode   string `json:"sensorTagCode"`
}

type RecordAsset struct {
	ID          primitive.ObjectID `json:"_id"`
	TagCode     string             `json:"tagCode"`
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Location    RecordLocation     `json:"location"`
}

type RecordLocation struct {
	TagCode     string    `json:"tagCode"`
	Description string    `json:"description"`
	Geolocation []float64 `json:"geolocation"`
}

type RecordDevice struct {
	ID           primitive.ObjectID `json:"_id"`
	SerialNumber string             `json:"serialNumber"`
	Type         string             `json:"type"`
	Description  string             `json:"description"`
}

type RecordSensor struct {
	ID          primitive.ObjectID `json:"_id"`
	Type        SensorType         `json:"type"`
	TypeString  string             `json:"typeString"`
	Description string             `json:"description"`
	Unit        string             `json:"unit"`
}

type RecordData struct {
	Unit   string       `json:"unit"`
	Values RecordValues `json:"values"`
}

// RecordValues keeps nil values as JSON null rather than dropping or zeroing them
type RecordValues struct {
	Min     *float64    `json:"min"`
	Max     *float64    `json:"max"`
	Average *float64    `json:"average"`
	Point   interface{} `json:"point"`
	Samples *float64    `json:"samples"`
}
