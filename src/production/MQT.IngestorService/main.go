package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	container "gitlab.com/maplesense1/mpt.telemetry_bridge/src/production/MQT.Container"
	"gitlab.com/maplesense1/mpt.telemetry_bridge/src/production/MQT.IngestorService/controllers"
	"gitlab.com/maplesense1/mpt.telemetry_bridge/src/production/MQT.IngestorService/health"
	mqtingestor "gitlab.com/maplesense1/mpt.telemetry_bridge/src/production/MQT.IngestorService/ingestor"
	metrics "gitlab.com/maplesense1/mpt.telemetry_bridge/src/production/MQT.Metrics"
	publisher "gitlab.com/maplesense1/mpt.telemetry_bridge/src/production/MQT.Publisher"
	implementation "gitlab.com/maplesense1/mpt.telemetry_bridge/src/production/MQT.Repository/Implementation"
)

func main() {
	// Initialize dependency injection container
	ctr, err := container.NewBridgeContainer()
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize container: %v", err))
	}
	defer ctr.Shutdown(context.Background())

	logger := ctr.GetLogger()
	logger.Info("Starting telemetry bridge")

	config := ctr.GetConfig()

	mongoClient, err := ctr.GetMongoClient()
	if err != nil {
		logger.FatalWithError(err, "Failed to connect to MongoDB")
	}
	db, err := ctr.GetMongoDatabase()
	if err != nil {
		logger.FatalWithError(err, "Failed to open metadata database")
	}

	conn, err := ctr.GetAMQPConnection()
	if err != nil {
		logger.FatalWithError(err, "Failed to connect to AMQP broker")
	}

	repo := implementation.NewMongoMetadataRepository(db, config.Mongo.QueryTimeout)
	pub := publisher.NewAMQPPublisher(publisher.NewConnectionOpener(conn), config.AMQP, config.MQTT.ClientID)
	ctr.AddCleanupFunc(pub.Close)

	m := metrics.NewMetrics(ctr.GetRegistry())

	// Handlers run under their own context so shutdown drains them instead of cancelling lookups
	ing := mqtingestor.New(config, repo, pub, m, logger)
	if err := ing.Start(context.Background()); err != nil {
		logger.FatalWithError(err, "Failed to start MQTT ingestor")
	}

	checker := health.NewHealthChecker()
	checker.Register("mqtt", health.ConnectedCheck(ing))
	checker.Register("mongodb", health.MongoCheck(mongoClient))
	checker.Register("amqp", health.OpenCheck(conn))

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	controllers.NewHealthController(checker, ctr.GetRegistry(), logger).RegisterRoutes(router)

	// Create HTTP server with timeouts
	srv := &http.Server{
		Addr:         ":" + config.Server.Port,
		Handler:      router,
		ReadTimeout:  config.Server.ReadTimeout,
		WriteTimeout: config.Server.WriteTimeout,
		IdleTimeout:  config.Server.IdleTimeout,
	}

	go func() {
		logger.Info("Health server starting on port " + config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.FatalWithError(err, "Failed to start health server")
		}
	}()

	logger.Info("Telemetry bridge running... press Ctrl+C to stop")

	// Wait for shutdown signal
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	logger.Info("Shutting down...")

	ing.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.ErrorWithError(err, "Health server forced to shutdown")
	}
}
