package server

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Skufu/heartcheck/internal/app"
	"github.com/Skufu/heartcheck/internal/logging"
)

//go:embed templates/*.html
var templateFS embed.FS

type Options struct {
	// StaticDir holds the page image. Empty means detect from the working directory.
	StaticDir string
}

// NewRouter wires every route against the application context.
func NewRouter(a *app.App, opts Options) (*gin.Engine, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	staticRoot := opts.StaticDir
	if staticRoot == "" {
		staticRoot = detectStaticRoot(a.Variant.Image)
	}

	h := &handler{
		app:         a,
		logger:      a.Logger,
		description: sanitizeDescription(a.Form.Description),
		image:       imageURL(staticRoot, a.Variant.Image),
	}
	if h.logger == nil {
		h.logger = zap.NewNop()
	}

	router := gin.New()
	router.SetHTMLTemplate(tmpl)
	router.Use(
		logging.GinLogger(h.logger),
		gin.Recovery(),
		limitBodySize(1<<20), // 1MB max body
		cors.New(cors.Config{
			AllowOrigins: []string{"*"},
			AllowMethods: []string{"GET", "POST", "OPTIONS"},
			AllowHeaders: []string{"Origin", "Content-Type"},
			MaxAge:       12 * time.Hour,
		}),
	)

	router.Static("/static", staticRoot)

	router.GET("/", h.page)
	router.POST("/predict", h.submit)

	api := router.Group("/api")
	{
		api.GET("/form", h.formDefinition)
		api.POST("/predict", h.predictJSON)
	}

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/readyz", h.ready)

	return router, nil
}

func (h *handler) ready(c *gin.Context) {
	body := gin.H{
		"status":       "ok",
		"classifier":   h.app.Predictor.Classifier().Name(),
		"dataset_rows": h.app.Dataset.Len(),
	}
	if rate, ok := h.app.Dataset.PositiveRate(); ok {
		body["dataset_positive_rate"] = rate
	}

	if h.app.DB == nil {
		body["db"] = "disabled"
		c.JSON(http.StatusOK, body)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.app.DB.Ping(ctx); err != nil {
		body["status"] = "degraded"
		body["db"] = fmt.Sprintf("unhealthy: %v", err)
		c.JSON(http.StatusServiceUnavailable, body)
		return
	}

	body["db"] = "ok"
	c.JSON(http.StatusOK, body)
}

func limitBodySize(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// detectStaticRoot looks for a static/ directory holding image next to the
// working directory or up to two levels above it.
func detectStaticRoot(image string) string {
	startDir, err := os.Getwd()
	if err != nil {
		return "static"
	}

	candidates := []string{
		startDir,
		filepath.Dir(startDir),
		filepath.Dir(filepath.Dir(startDir)),
	}

	for _, dir := range candidates {
		static := filepath.Join(dir, "static")
		if image != "" && fileExists(filepath.Join(static, image)) {
			return static
		}
	}

	return filepath.Join(startDir, "static")
}

func imageURL(staticRoot, image string) string {
	if image == "" || !fileExists(filepath.Join(staticRoot, image)) {
		return ""
	}
	return "/static/" + image
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
