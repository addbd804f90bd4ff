// Package rest serves the public JSON API with gin.
package rest

import (
	"net/http"
	"time"

	"github.com/dmitrijs2005/festreg/internal/logging"
	"github.com/dmitrijs2005/festreg/internal/server/catalog"
	"github.com/dmitrijs2005/festreg/internal/server/metrics"
	"github.com/gin-gonic/gin"
)

// RouterDeps are the collaborators of the HTTP API.
type RouterDeps struct {
	Auth           Authenticator
	Register       Registrar
	Storage        Pinger
	Catalog        *catalog.Catalog
	Metrics        *metrics.Metrics
	Logger         logging.Logger
	AllowedOrigins []string
	RequestTimeout time.Duration
}

func init() {
	gin.SetMode(gin.ReleaseMode)
}

// NewRouter builds the gin engine with middleware and routes.
func NewRouter(d RouterDeps) *gin.Engine {
	if d.Catalog == nil {
		d.Catalog = catalog.Default()
	}
	if d.Metrics == nil {
		d.Metrics = metrics.New()
	}
	if d.Logger == nil {
		d.Logger = logging.Nop{}
	}
	logger := d.Logger.With("module", "http")

	r := gin.New()
	r.HandleMethodNotAllowed = true

	r.Use(requestID(), recovery(logger), accessLog(logger, d.Metrics))
	if policy := corsPolicy(d.AllowedOrigins); policy != nil {
		r.Use(policy)
	}
	r.Use(timeout(d.RequestTimeout), limitBody(maxBodyBytes))

	h := &handlers{
		auth:     d.Auth,
		register: d.Register,
		storage:  d.Storage,
		catalog:  d.Catalog,
		metrics:  d.Metrics,
	}

	api := r.Group("/api")
	api.POST("/auth/google", h.authGoogle)
	api.POST("/register", h.registerParticipant)
	api.GET("/events", h.listEvents)

	r.GET("/health", h.health)
	r.GET("/metrics", gin.WrapH(d.Metrics.Handler()))

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, errorResponse{Message: "not found"})
	})

	return r
}
