package decoder

import (
	"fmt"
	"math"
	"math/big"
	"reflect"
	"time"

	"github.com/fxamacker/cbor/v2"
	errs "gitlab.com/maplesense1/mpt.telemetry_bridge/src/production/MQT.Errors"
	mqtmodels "gitlab.com/maplesense1/mpt.telemetry_bridge/src/production/MQT.Models"
)

// TagFixedPoint is the semantic tag gateways wrap fixed-point values in.
// Its content is passed through as the value, with nested tags unwrapped.
const TagFixedPoint = 30

// decMode decodes gateway payloads. Maps decode as map[string]interface{}
// and time tags 0/1 as time.Time.
var decMode cbor.DecMode

func init() {
	var err error
	decMode, err = cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]interface{}(nil)),
		TimeTagToAny:   cbor.TimeTagToTime,
	}.DecMode()
	if err != nil {
		panic("decoder: CBOR decoder initialization failed: " + err.Error())
	}
}

// Decode turns the first CBOR item of payload into a Reading of the given type.
// Trailing bytes after the first item are ignored.
func Decode(payload []byte, sensorType mqtmodels.SensorType) (mqtmodels.Reading, error) {
	if len(payload) == 0 {
		return mqtmodels.Reading{}, errs.Decode(fmt.Errorf("empty payload"))
	}

	var item map[string]interface{}
	if _, err := decMode.UnmarshalFirst(payload, &item); err != nil {
		return mqtmodels.Reading{}, errs.Decode(err)
	}

	rawDate, ok := item["date"]
	if !ok {
		return mqtmodels.Reading{}, errs.Decode(fmt.Errorf("missing date field"))
	}
	ts, err := toTime(rawDate)
	if err != nil {
		return mqtmodels.Reading{}, errs.Decode(err)
	}

	rawValue, ok := item["value"]
	if !ok {
		return mqtmodels.Reading{}, errs.Decode(fmt.Errorf("missing value field"))
	}
	point, err := toPoint(rawValue)
	if err != nil {
		return mqtmodels.Reading{}, errs.Decode(err)
	}

	return mqtmodels.Reading{
		Timestamp:  ts,
		SensorType: sensorType,
		Point:      point,
	}, nil
}

func toTime(v interface{}) (time.Time, error) {
	switch d := v.(type) {
	case time.Time:
		return d.UTC(), nil
	case string:
		ts, err := time.Parse(time.RFC3339Nano, d)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid date %q: %w", d, err)
		}
		return ts.UTC(), nil
	case uint64:
		if d > math.MaxInt64 {
			return time.Time{}, fmt.Errorf("date %d out of range", d)
		}
		return time.Unix(int64(d), 0).UTC(), nil
	case int64:
		return time.Unix(d, 0).UTC(), nil
	case float64:
		if math.IsNaN(d) || math.IsInf(d, 0) {
			return time.Time{}, fmt.Errorf("date %v is not finite", d)
		}
		sec, frac := math.Modf(d)
		return time.Unix(int64(sec), int64(frac*1e9)).UTC(), nil
	default:
		return time.Time{}, fmt.Errorf("unsupported date type %T", v)
	}
}

func toPoint(v interface{}) (interface{}, error) {
	if tag, ok := v.(cbor.Tag); ok && tag.Number == TagFixedPoint {
		return fixedPointContent(tag.Content)
	}

	switch n := v.(type) {
	case float64:
		return finite(n)
	case float32:
		return finite(float64(n))
	case uint64:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case big.Int:
		f, _ := new(big.Float).SetInt(&n).Float64()
		return finite(f)
	default:
		return nil, fmt.Errorf("unsupported value type %T", v)
	}
}

// fixedPointContent keeps the tagged content as decoded, except that nested
// tags are unwrapped and bignums become *big.Int so the record marshals as
// JSON numbers
func fixedPointContent(v interface{}) (interface{}, error) {
	switch c := v.(type) {
	case cbor.Tag:
		return fixedPointContent(c.Content)
	case big.Int:
		return new(big.Int).Set(&c), nil
	case float64:
		return finite(c)
	case float32:
		return finite(float64(c))
	case []interface{}:
		out := make([]interface{}, len(c))
		for i, elem := range c {
			p, err := fixedPointContent(elem)
			if err != nil {
				return nil, err
			}
			out[i] = p
		}
		return out, nil
	case map[string]interface{}:
		out := make(map[string]interface{}, len(c))
		for k, elem := range c {
			p, err := fixedPointContent(elem)
			if err != nil {
				return nil, err
			}
			out[k] = p
		}
		return out, nil
	default:
		return v, nil
	}
}

func finite(f float64) (float64, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("value %v is not finite", f)
	}
	return f, nil
}
