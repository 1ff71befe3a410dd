package interfaces

import (
	"context"

	mqtmodels "gitlab.com/maplesense1/mpt.telemetry_bridge/src/production/MQT.Models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MetadataRepository resolves the metadata a reading is enriched with.
//
// Every lookup is a single read against the document store. A miss is
// reported as errs.ErrNotFound and a store failure as errs.ErrStore.
type MetadataRepository interface {
	// FindDeviceByTopicID returns the device publishing under topicID with its client expanded
	FindDeviceByTopicID(ctx context.Context, topicID string) (*mqtmodels.Device, error)

	// FindAssetByID returns the asset with its location expanded
	FindAssetByID(ctx context.Context, assetID primitive.ObjectID) (*mqtmodels.Asset, error)

	// FindSensorByType returns the sensor description for a type code
	FindSensorByType(ctx context.Context, sensorType mqtmodels.SensorType) (*mqtmodels.Sensor, error)
}
