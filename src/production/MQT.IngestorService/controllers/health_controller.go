package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gitlab.com/maplesense1/mpt.telemetry_bridge/src/production/MQT.IngestorService/health"
	logger "gitlab.com/maplesense1/mpt.telemetry_bridge/src/production/MQT.Logger"
)

// readyTimeout bounds the dependency checks behind /health/ready
const readyTimeout = 5 * time.Second

// HealthController serves liveness, readiness and metrics
type HealthController struct {
	checker  *health.HealthChecker
	gatherer prometheus.Gatherer
	logger   *logger.Logger
}

// NewHealthController creates a new health controller
func NewHealthController(checker *health.HealthChecker, gatherer prometheus.Gatherer, logger *logger.Logger) *HealthController {
	return &HealthController{
		checker:  checker,
		gatherer: gatherer,
		logger:   logger.WithComponent("health"),
	}
}

// RegisterRoutes registers the health routes with Gin
func (c *HealthController) RegisterRoutes(router *gin.Engine) {
	router.GET("/health/live", c.HealthLive)
	router.GET("/health/ready", c.HealthReady)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(c.gatherer, promhttp.HandlerOpts{})))
}

func (c *HealthController) HealthLive(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

func (c *HealthController) HealthReady(ctx *gin.Context) {
	checkCtx, cancel := context.WithTimeout(ctx.Request.Context(), readyTimeout)
	defer cancel()

	status, healthy := c.checker.GetHealthStatus(checkCtx)
	if !healthy {
		c.logger.Logger.Warn().Interface("checks", status["checks"]).Msg("Readiness check failed")
		ctx.JSON(http.StatusServiceUnavailable, status)
		return
	}
	ctx.JSON(http.StatusOK, status)
}
