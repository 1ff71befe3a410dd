package mqtingestor

import (
	"context"
	"time"

	assembler "gitlab.com/maplesense1/mpt.telemetry_bridge/src/production/MQT.Assembler"
	decoder "gitlab.com/maplesense1/mpt.telemetry_bridge/src/production/MQT.Decoder"
	errs "gitlab.com/maplesense1/mpt.telemetry_bridge/src/production/MQT.Errors"
	logger "gitlab.com/maplesense1/mpt.telemetry_bridge/src/production/MQT.Logger"
	mqtmodels "gitlab.com/maplesense1/mpt.telemetry_bridge/src/production/MQT.Models"
	"golang.org/x/sync/errgroup"
)

// Outcome is how a single message left the pipeline
type Outcome string

const (
	OutcomeFiltered         Outcome = "filtered"
	OutcomeDecodeError      Outcome = "decode_error"
	OutcomeDeviceNotFound   Outcome = "device_not_found"
	OutcomeClientNotFound   Outcome = "client_not_found"
	OutcomeAssetNotFound    Outcome = "asset_not_found"
	OutcomeLocationNotFound Outcome = "location_not_found"
	OutcomeSensorNotFound   Outcome = "sensor_not_found"
	OutcomeStoreError       Outcome = "store_error"
	OutcomePublishError     Outcome = "publish_error"
	OutcomePublished        Outcome = "published"
)

// HandleMessage runs one inbound message through decode, lookup, assembly
// and publish. Any failure drops the message; nothing is retried.
func (i *Ingestor) HandleMessage(ctx context.Context, topic string, payload []byte) Outcome {
	outcome := i.handle(ctx, topic, payload)
	i.metrics.RecordOutcome(string(outcome))
	return outcome
}

func (i *Ingestor) handle(ctx context.Context, topic string, payload []byte) Outcome {
	log := i.logger.WithTopic(topic)

	t, ok := decoder.ParseTopic(topic)
	if !ok {
		i.metrics.RecordReceived("invalid")
		log.Debug("Ignoring message on unexpected topic shape")
		return OutcomeFiltered
	}
	i.metrics.RecordReceived(t.Type)
	log = log.WithFields(map[string]interface{}{
		"device_topic_id": t.DeviceTopicID,
		"type":            t.Type,
	})

	sensorType, ok := decoder.Classify(t.Type)
	if !ok {
		log.Debug("Ignoring message with unrecognized sensor type")
		return OutcomeFiltered
	}

	reading, err := decoder.Decode(payload, sensorType)
	if err != nil {
		log.ErrorWithError(err, "Error decoding CBOR payload")
		return OutcomeDecodeError
	}

	started := time.Now()
	device, err := i.repo.FindDeviceByTopicID(ctx, t.DeviceTopicID)
	i.metrics.ObserveLookup("device", started)
	if err != nil {
		return i.dropped(log, err)
	}

	var (
		asset  *mqtmodels.Asset
		sensor *mqtmodels.Sensor
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		started := time.Now()
		defer i.metrics.ObserveLookup("asset", started)
		var err error
		asset, err = i.repo.FindAssetByID(gctx, device.AssetID)
		return err
	})
	g.Go(func() error {
		started := time.Now()
		defer i.metrics.ObserveLookup("sensor", started)
		var err error
		sensor, err = i.repo.FindSensorByType(gctx, reading.SensorType)
		return err
	})
	if err := g.Wait(); err != nil {
		return i.dropped(log, err)
	}

	record := assembler.Assemble(reading, device, asset, sensor)

	started = time.Now()
	err = i.publisher.Publish(ctx, record)
	i.metrics.ObservePublish(started)
	if err != nil {
		log.ErrorWithError(err, "Failed to publish telemetry record")
		return OutcomePublishError
	}

	log.Logger.Debug().Str("tag", record.Tag.Full).Interface("point", record.Data.Values.Point).Msg("Published telemetry record")
	return OutcomePublished
}

// dropped logs a failed lookup and maps it to an outcome. Misses are routine
// and logged as warnings; store failures are errors.
func (i *Ingestor) dropped(log *logger.Logger, err error) Outcome {
	if errs.Classify(err) == errs.ClassRoutine {
		log.WarnWithError(err, "Metadata not found, dropping reading")
		switch errs.EntityOf(err) {
		case "device":
			return OutcomeDeviceNotFound
		case "client":
			return OutcomeClientNotFound
		case "asset":
			return OutcomeAssetNotFound
		case "location":
			return OutcomeLocationNotFound
		case "sensor":
			return OutcomeSensorNotFound
		}
	}
	if errs.IsStore(err) {
		log.ErrorWithError(err, "Metadata store unavailable, dropping reading")
	} else {
		log.ErrorWithError(err, "Metadata lookup failed, dropping reading")
	}
	return OutcomeStoreError
}
