package decoder

import (
	"encoding/json"
	"math"
	"math/big"
	"testing"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	errs "gitlab.com/maplesense1/mpt.telemetry_bridge/src/production/MQT.Errors"
	mqtmodels "gitlab.com/maplesense1/mpt.telemetry_bridge/src/production/MQT.Models"
)

func encode(t *testing.T, v interface{}) []byte {
	t.Helper()
	data, err := cbor.Marshal(v)
	require.NoError(t, err)
	return data
}

func rfc3339Date(s string) cbor.Tag {
	return cbor.Tag{Number: 0, Content: s}
}

func TestDecode_TaggedDate(t *testing.T) {
	payload := encode(t, map[string]interface{}{
		"date":  rfc3339Date("2024-05-01T10:00:00Z"),
		"value": 21.5,
	})

	reading, err := Decode(payload, mqtmodels.SensorTypeTemperature)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC), reading.Timestamp)
	assert.Equal(t, 21.5, reading.Point)
	assert.Equal(t, mqtmodels.SensorTypeTemperature, reading.SensorType)
	assert.Nil(t, reading.Min)
	assert.Nil(t, reading.Max)
	assert.Nil(t, reading.Avg)
	assert.Nil(t, reading.Samples)
}

func TestDecode_DateForms(t *testing.T) {
	want := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		date interface{}
		want time.Time
	}{
		{"epoch tag", cbor.Tag{Number: 1, Content: want.Unix()}, want},
		{"plain text", "2024-05-01T10:00:00Z", want},
		{"text with offset", "2024-05-01T12:00:00+02:00", want},
		{"epoch seconds", want.Unix(), want},
		{"epoch float", float64(want.Unix()) + 0.5, want.Add(500 * time.Millisecond)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := encode(t, map[string]interface{}{"date": tt.date, "value": 1})
			reading, err := Decode(payload, mqtmodels.SensorTypeHumidity)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(reading.Timestamp), "got %s", reading.Timestamp)
			assert.Equal(t, time.UTC, reading.Timestamp.Location())
		})
	}
}

func TestDecode_ValueForms(t *testing.T) {
	tests := []struct {
		name  string
		value interface{}
		want  interface{}
	}{
		{"float", 3.25, 3.25},
		{"unsigned int", 42, float64(42)},
		{"negative int", -7, float64(-7)},
		{"fixed-point tag passes content through", cbor.Tag{Number: TagFixedPoint, Content: []int{215, 10}}, []interface{}{uint64(215), uint64(10)}},
		{"fixed-point tag with scalar content", cbor.Tag{Number: TagFixedPoint, Content: 2.5}, 2.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := encode(t, map[string]interface{}{
				"date":  rfc3339Date("2024-05-01T10:00:00Z"),
				"value": tt.value,
			})
			reading, err := Decode(payload, mqtmodels.SensorTypeVibration)
			require.NoError(t, err)
			assert.Equal(t, tt.want, reading.Point)
		})
	}
}

func TestDecode_FixedPointContentMarshalsAsJSON(t *testing.T) {
	twoTo80 := new(big.Int).Lsh(big.NewInt(1), 80)

	tests := []struct {
		name    string
		content interface{}
		want    string
	}{
		{"bignum element", []interface{}{twoTo80, 3}, `[1208925819614629174706176,3]`},
		{"bare bignum", twoTo80, `1208925819614629174706176`},
		{"nested decimal fraction tag", cbor.Tag{Number: 4, Content: []interface{}{-2, 27315}}, `[-2,27315]`},
		{"map content", map[string]interface{}{"m": cbor.Tag{Number: 4, Content: []interface{}{-1, 5}}}, `{"m":[-1,5]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := encode(t, map[string]interface{}{
				"date":  rfc3339Date("2024-05-01T10:00:00Z"),
				"value": cbor.Tag{Number: TagFixedPoint, Content: tt.content},
			})
			reading, err := Decode(payload, mqtmodels.SensorTypeTemperature)
			require.NoError(t, err)

			body, err := json.Marshal(reading.Point)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(body))
		})
	}
}

func TestDecode_IgnoresTrailingItems(t *testing.T) {
	first := encode(t, map[string]interface{}{"date": rfc3339Date("2024-05-01T10:00:00Z"), "value": 1.5})
	second := encode(t, map[string]interface{}{"date": rfc3339Date("2025-01-01T00:00:00Z"), "value": 9.0})

	reading, err := Decode(append(first, second...), mqtmodels.SensorTypeHumidity)
	require.NoError(t, err)
	assert.Equal(t, 1.5, reading.Point)
}

func TestDecode_Malformed(t *testing.T) {
	tests := []struct {
		name    string
		payload []byte
	}{
		{"empty", nil},
		{"truncated", []byte{0xa2, 0x64, 0x64, 0x61}},
		{"not a map", encode(t, []int{1, 2, 3})},
		{"missing date", encode(t, map[string]interface{}{"value": 1.0})},
		{"missing value", encode(t, map[string]interface{}{"date": rfc3339Date("2024-05-01T10:00:00Z")})},
		{"bad date text", encode(t, map[string]interface{}{"date": "yesterday", "value": 1.0})},
		{"bad date type", encode(t, map[string]interface{}{"date": []byte{1}, "value": 1.0})},
		{"text value", encode(t, map[string]interface{}{"date": rfc3339Date("2024-05-01T10:00:00Z"), "value": "hot"})},
		{"null value", encode(t, map[string]interface{}{"date": rfc3339Date("2024-05-01T10:00:00Z"), "value": nil})},
		{"NaN value", encode(t, map[string]interface{}{"date": rfc3339Date("2024-05-01T10:00:00Z"), "value": math.NaN()})},
		{"+Inf value", encode(t, map[string]interface{}{"date": rfc3339Date("2024-05-01T10:00:00Z"), "value": math.Inf(1)})},
		{"-Inf value", encode(t, map[string]interface{}{"date": rfc3339Date("2024-05-01T10:00:00Z"), "value": math.Inf(-1)})},
		{"NaN inside fixed-point tag", encode(t, map[string]interface{}{
			"date":  rfc3339Date("2024-05-01T10:00:00Z"),
			"value": cbor.Tag{Number: TagFixedPoint, Content: []interface{}{math.NaN(), 1}},
		})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.payload, mqtmodels.SensorTypeTemperature)
			require.Error(t, err)
			assert.ErrorIs(t, err, errs.ErrDecode)
		})
	}
}

func TestDecode_DistinctInputsGiveDistinctReadings(t *testing.T) {
	inputs := []struct {
		date  string
		value float64
	}{
		{"2024-05-01T10:00:00Z", 21.5},
		{"2024-05-01T10:00:00Z", 21.6},
		{"2024-05-01T10:00:01Z", 21.5},
	}

	seen := make(map[string]bool)
	for _, in := range inputs {
		payload := encode(t, map[string]interface{}{"date": rfc3339Date(in.date), "value": in.value})
		reading, err := Decode(payload, mqtmodels.SensorTypeTemperature)
		require.NoError(t, err)

		key := reading.Timestamp.Format(time.RFC3339Nano) + "|" + formatPoint(reading.Point)
		assert.False(t, seen[key], "duplicate reading for %v", in)
		seen[key] = true
	}
}

func formatPoint(p interface{}) string {
	data, _ := cbor.Marshal(p)
	return string(data)
}
