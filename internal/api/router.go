// internal/api/router.go
package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"candidate-pipeline/internal/common/logger"
)

// NewRouter wires the HTTP surface. The metrics and health endpoints sit next
// to the API so one listener serves everything.
func NewRouter(h *Handler, log logger.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(log))

	router.POST("/applications", h.SubmitApplication)

	router.GET("/applicants/:id/assessment", h.GetAssessment)
	router.GET("/applicants/:id/notifications", h.ListNotifications)
	router.PATCH("/applicants/:id/status", h.UpdateApplicantStatus)
	router.GET("/applicants/search", h.SearchApplicants)

	router.POST("/evaluations", h.RunEvaluation)
	router.DELETE("/evaluations/:applicantId", h.DeleteEvaluationResult)

	router.GET("/roles/:id", h.GetRole)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	return router
}

func requestLogger(log logger.Logger) gin.HandlerFunc {
	httpLog := log.WithFields(map[string]interface{}{"component": "http"})
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := map[string]interface{}{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"durationMs": time.Since(start).Milliseconds(),
		}
		if c.Writer.Status() >= http.StatusInternalServerError {
			httpLog.Error("request", fields)
		} else {
			httpLog.Debug("request", fields)
		}
	}
}
