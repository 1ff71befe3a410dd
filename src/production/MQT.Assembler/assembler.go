// Package assembler builds the outbound telemetry record from a decoded
// reading and its resolved metadata.
package assembler

import (
	mqtmodels "gitlab.com/maplesense1/mpt.telemetry_bridge/src/production/MQT.Models"
)

// TagSeparator joins the parts of a composite tag
const TagSeparator = "_"

// FullTag returns the composite tag <location>_<asset>_<sensor>
func FullTag(location *mqtmodels.Location, asset *mqtmodels.Asset, sensor *mqtmodels.Sensor) string {
	return location.TagCode + TagSeparator + asset.TagCode + TagSeparator + sensor.TagCode
}

// Assemble maps a reading and its metadata onto a TelemetryRecord.
//
// device.Client and asset.Location must be expanded. Callers only invoke
// Assemble once every lookup has succeeded; a nil input panics.
func Assemble(reading mqtmodels.Reading, device *mqtmodels.Device, asset *mqtmodels.Asset, sensor *mqtmodels.Sensor) mqtmodels.TelemetryRecord {
	if device == nil || device.Client == nil || asset == nil || asset.Location == nil || sensor == nil {
		panic("assembler: Assemble called with unresolved metadata")
	}

	location := asset.Location

	return mqtmodels.TelemetryRecord{
		Timestamp: reading.Timestamp,
		Tag: mqtmodels.RecordTag{
			Full:            FullTag(location, asset, sensor),
			ClientTagCode:   device.Client.TagCode,
			LocationTagCode: location.TagCode,
			AssetTagCode:    asset.TagCode,
			SensorTagCode:   sensor.TagCode,
		},
		Asset: mqtmodels.RecordAsset{
			ID:          asset.ID,
			TagCode:     asset.TagCode,
			Name:        asset.Name,
			Description: asset.Description,
			Location: mqtmodels.RecordLocation{
				TagCode:     location.TagCode,
				Description: location.Description,
				Geolocation: location.Geolocation.Coordinates,
			},
		},
		Device: mqtmodels.RecordDevice{
			ID:           device.ID,
			SerialNumber: device.SerialNumber,
			Type:         device.Type,
			Description:  device.Description,
		},
		Sensor: mqtmodels.RecordSensor{
			ID:          sensor.ID,
			Type:        sensor.Type,
			TypeString:  sensor.TypeString,
			Description: sensor.Description,
			Unit:        sensor.Unit,
		},
		Client: device.Client.ID,
		Data: mqtmodels.RecordData{
			Unit: sensor.Unit,
			Values: mqtmodels.RecordValues{
				Min:     reading.Min,
				Max:     reading.Max,
				Average: reading.Avg,
				Point:   reading.Point,
				Samples: reading.Samples,
			},
		},
	}
}
