package mqtmodels

import "go.mongodb.org/mongo-driver/bson/primitive"

// Client owns devices; only its tag code takes part in telemetry tags
type Client struct {
	ID      primitive.ObjectID `bson:"_id" json:"_id"`
	TagCode string             `bson:"tagCode" json:"tagCode"`
	Name    string             `bson:"name,omitempty" json:"name,omitempty"`
}

// GeoPoint is a GeoJSON point, coordinates ordered [longitude, latitude]
type GeoPoint struct {
	Type        string    `bson:"type" json:"type"`
	Coordinates []float64 `bson:"coordinates" json:"coordinates"`
}

// Location is the site an asset is installed at
type Location struct {
	ID          primitive.ObjectID `bson:"_id" json:"_id"`
	TagCode     string             `bson:"tagCode" json:"tagCode"`
	Description string             `bson:"description" json:"description"`
	Geolocation GeoPoint           `bson:"geolocation" json:"geolocation"`
}

// Asset is the monitored equipment a device is attached to.
// Location is populated by reference expansion.
type Asset struct {
	ID          primitive.ObjectID `bson:"_id" json:"_id"`
	TagCode     string             `bson:"tagCode" json:"tagCode"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description" json:"description"`
	Location    *Location          `bson:"location" json:"location"`
}

// Device is a gateway publishing on topics prefixed with TopicID.
// Client is populated by reference expansion; AssetID is a bare reference.
type Device struct {
	ID           primitive.ObjectID `bson:"_id" json:"_id"`
	TopicID      string             `bson:"topicId" json:"topicId"`
	SerialNumber string             `bson:"serialNumber" json:"serialNumber"`
	Type         string             `bson:"type" json:"type"`
	Description  string             `bson:"description" json:"description"`
	Client       *Client            `bson:"client" json:"client"`
	AssetID      primitive.ObjectID `bson:"asset" json:"asset"`
}

// Sensor describes a sensor type, looked up by its numeric code
type Sensor struct {
	ID          primitive.ObjectID `bson:"_id" json:"_id"`
	Type        SensorType         `bson:"type" json:"type"`
	TagCode     string             `bson:"tagCode" json:"tagCode"`
	TypeString  string             `bson:"typeString" json:"typeString"`
	Description string             `bson:"description" json:"description"`
	Unit        string             `bson:"unit" json:"unit"`
}
