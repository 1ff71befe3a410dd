package implementation

import (
	"context"
	"errors"
	"strconv"
	"time"

	errs "gitlab.com/maplesense1/mpt.telemetry_bridge/src/production/MQT.Errors"
	mqtmodels "gitlab.com/maplesense1/mpt.telemetry_bridge/src/production/MQT.Models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoMetadataRepository resolves devices, assets and sensors from MongoDB.
// Nothing is cached; every call is a fresh round trip.
type MongoMetadataRepository struct {
	devices      *mongo.Collection
	assets       *mongo.Collection
	sensors      *mongo.Collection
	queryTimeout time.Duration
}

func NewMongoMetadataRepository(db *mongo.Database, queryTimeout time.Duration) *MongoMetadataRepository {
	return &MongoMetadataRepository{
		devices:      db.Collection(DevicesCollection),
		assets:       db.Collection(AssetsCollection),
		sensors:      db.Collection(SensorsCollection),
		queryTimeout: queryTimeout,
	}
}

// FindDeviceByTopicID looks up a device by topic id and expands its client.
// A device whose client reference is dangling counts as not found.
func (r *MongoMetadataRepository) FindDeviceByTopicID(ctx context.Context, topicID string) (*mqtmodels.Device, error) {
	ctx, cancel := context.WithTimeout(ctx, r.queryTimeout)
	defer cancel()

	pipeline := append(matchOne(bson.D{{Key: "topicId", Value: topicID}}), expandReference("client", ClientsCollection)...)

	var device mqtmodels.Device
	found, err := aggregateOne(ctx, r.devices, pipeline, &device)
	if err != nil {
		return nil, errs.Store("device", topicID, err)
	}
	if !found {
		return nil, errs.NotFound("device", topicID)
	}
	if device.Client == nil {
		return nil, errs.NotFound("client", topicID)
	}
	return &device, nil
}

// FindAssetByID looks up an asset and expands its location
func (r *MongoMetadataRepository) FindAssetByID(ctx context.Context, assetID primitive.ObjectID) (*mqtmodels.Asset, error) {
	ctx, cancel := context.WithTimeout(ctx, r.queryTimeout)
	defer cancel()

	key := assetID.Hex()
	if assetID.IsZero() {
		return nil, errs.NotFound("asset", key)
	}

	pipeline := append(matchOne(bson.D{{Key: "_id", Value: assetID}}), expandReference("location", LocationsCollection)...)

	var asset mqtmodels.Asset
	found, err := aggregateOne(ctx, r.assets, pipeline, &asset)
	if err != nil {
		return nil, errs.Store("asset", key, err)
	}
	if !found {
		return nil, errs.NotFound("asset", key)
	}
	if asset.Location == nil {
		return nil, errs.NotFound("location", key)
	}
	return &asset, nil
}

// FindSensorByType looks up the sensor description for a type code
func (r *MongoMetadataRepository) FindSensorByType(ctx context.Context, sensorType mqtmodels.SensorType) (*mqtmodels.Sensor, error) {
	ctx, cancel := context.WithTimeout(ctx, r.queryTimeout)
	defer cancel()

	key := strconv.Itoa(int(sensorType))

	var sensor mqtmodels.Sensor
	err := r.sensors.FindOne(ctx, bson.D{{Key: "type", Value: int(sensorType)}}).Decode(&sensor)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, errs.NotFound("sensor", key)
		}
		return nil, errs.Store("sensor", key, err)
	}
	return &sensor, nil
}

// aggregateOne runs pipeline and decodes the first result into out
func aggregateOne(ctx context.Context, coll *mongo.Collection, pipeline mongo.Pipeline, out interface{}) (bool, error) {
	cursor, err := coll.Aggregate(ctx, pipeline)
	if err != nil {
		return false, err
	}
	defer cursor.Close(ctx)

	if !cursor.Next(ctx) {
		return false, cursor.Err()
	}
	if err := cursor.Decode(out); err != nil {
		return false, err
	}
	return true, nil
}
