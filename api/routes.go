package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	handlers "vibe_demo_server/internal/api"
)

// RegisterRoutes sets up the API endpoints and groups them logically.
func RegisterRoutes(router *gin.Engine, h *handlers.APIHandler) {
	apiGroup := router.Group("/api")

	// --- Demo pages ---
	demoGroup := apiGroup.Group("/demo")
	{
		demoGroup.POST("/generate", h.GenerateDemo) // create, or tweak when demoId is set
		demoGroup.GET("/:id", h.GetDemo)
	}

	// --- Scheduled cleanup (external cron) ---
	cronGroup := apiGroup.Group("/cron", h.CronAuth())
	{
		cronGroup.GET("/cleanup", h.CronCleanup)
		cronGroup.POST("/cleanup", h.CronCleanup)
	}

	// --- Prompt administration ---
	promptGroup := apiGroup.Group("/prompt", h.AdminAuth())
	{
		promptGroup.GET("/versions", h.ListPromptVersions)
		promptGroup.POST("/versions", h.SavePromptVersion)
	}

	// --- Tutorial and site content ---
	apiGroup.POST("/email/capture", h.CaptureEmail)
	apiGroup.GET("/tutorial", h.ListTutorial)
	apiGroup.GET("/tutorial/:stepId", h.GetTutorialStep)
	apiGroup.GET("/pushes", h.ListPushes)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}
