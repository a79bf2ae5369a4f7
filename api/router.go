package api

import (
	"io/fs"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/yourusername/tiktok-bulk-go/api/handlers"
	"github.com/yourusername/tiktok-bulk-go/api/middleware"
	"github.com/yourusername/tiktok-bulk-go/web"
)

// SetupRouter sets up the HTTP router
func SetupRouter(
	downloadHandler *handlers.DownloadHandler,
	healthHandler *handlers.HealthHandler,
	log *zap.Logger,
) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Middleware
	router.Use(middleware.Logger(log))
	router.Use(middleware.Recovery(log))
	router.Use(middleware.Metrics())

	// Health and metrics endpoints
	router.GET("/health", healthHandler.Health)
	router.GET("/ready", healthHandler.Ready)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API routes
	apiGroup := router.Group("/api")
	{
		apiGroup.POST("/download", downloadHandler.Download)
	}

	// Front end
	staticFS := web.GetStaticFS()
	router.GET("/", func(c *gin.Context) {
		serveIndexHTML(c, staticFS)
	})
	router.StaticFS("/static", http.FS(staticFS))

	return router
}

// serveIndexHTML serves the front-end document from the embedded filesystem
func serveIndexHTML(c *gin.Context, staticFS fs.FS) {
	data, err := fs.ReadFile(staticFS, "index.html")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "front-end document is missing"})
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", data)
}
