package implementation

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Collection names as created by the device management service
const (
	DevicesCollection   = "devices"
	ClientsCollection   = "clients"
	AssetsCollection    = "assets"
	LocationsCollection = "locations"
	SensorsCollection   = "sensors"
)

// expandReference replaces the ObjectID stored in field with the referenced
// document from collection. The field is dropped when the reference is dangling.
func expandReference(field, collection string) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: collection},
			{Key: "localField", Value: field},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: field},
		}}},
		{{Key: "$unwind", Value: bson.D{
			{Key: "path", Value: "$" + field},
			{Key: "preserveNullAndEmptyArrays", Value: true},
		}}},
	}
}

// matchOne selects the first document matching filter
func matchOne(filter bson.D) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: filter}},
		{{Key: "$limit", Value: 1}},
	}
}
