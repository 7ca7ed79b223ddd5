package handler

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const healthCheckTimeout = 2 * time.Second

// HealthCheck probes one dependency. A nil error means it is usable.
type HealthCheck func(ctx context.Context) error

// AddHealthCheck reports the named dependency on /health. Any failing check
// turns the response into 503 "degraded".
func (h *Handler) AddHealthCheck(name string, check HealthCheck) {
	if h.checks == nil {
		h.checks = make(map[string]HealthCheck)
	}
	h.checks[name] = check
}

// Health godoc
// @Summary      Health check
// @Description  Reports dependency checks and where the current rates came from
// @Tags         health
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      503  {object}  map[string]interface{}
// @Router       /health [get]
func (h *Handler) Health(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.health")
	defer span.End()

	resp := gin.H{"status": "healthy"}
	code := http.StatusOK

	if len(h.checks) > 0 {
		names := make([]string, 0, len(h.checks))
		for name := range h.checks {
			names = append(names, name)
		}
		sort.Strings(names)

		results := make(map[string]string, len(names))
		for _, name := range names {
			checkCtx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
			err := h.checks[name](checkCtx)
			cancel()
			if err != nil {
				h.logger.Warn("health check failed", zap.String("check", name), zap.Error(err))
				results[name] = err.Error()
				resp["status"] = "degraded"
				code = http.StatusServiceUnavailable
				continue
			}
			results[name] = "ok"
		}
		resp["checks"] = results
	}

	if h.rates != nil {
		resp["rates_source"] = string(h.rates.Current(ctx).Source)
	}
	c.JSON(code, resp)
}
