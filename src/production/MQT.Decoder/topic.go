package decoder

import (
	"strings"

	mqtmodels "gitlab.com/maplesense1/mpt.telemetry_bridge/src/production/MQT.Models"
)

// Topic is a parsed sensor topic: <deviceTopicId>/<source>/<version>/<type>
type Topic struct {
	DeviceTopicID string
	Source        string
	Version       string
	Type          string
}

// ParseTopic splits a sensor topic into its four segments.
// ok is false for any other shape or an empty device id.
func ParseTopic(topic string) (t Topic, ok bool) {
	parts := strings.Split(topic, "/")
	if len(parts) != 4 || parts[0] == "" {
		return Topic{}, false
	}
	return Topic{
		DeviceTopicID: parts[0],
		Source:        parts[1],
		Version:       parts[2],
		Type:          parts[3],
	}, true
}

// Classify maps a topic type segment to its sensor type code
func Classify(typeSegment string) (mqtmodels.SensorType, bool) {
	switch typeSegment {
	case "humidity":
		return mqtmodels.SensorTypeHumidity, true
	case "temperature":
		return mqtmodels.SensorTypeTemperature, true
	case "vibration":
		return mqtmodels.SensorTypeVibration, true
	default:
		return 0, false
	}
}
