package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"vibe_demo_server/internal/ai/prompts"
	"vibe_demo_server/internal/demo"
	"vibe_demo_server/internal/session"
	"vibe_demo_server/internal/tutorial"
	"vibe_demo_server/internal/types"
)

// DemoService is the page pipeline.
type DemoService interface {
	Create(ctx context.Context, clientID, prompt string) (*types.DemoPage, error)
	Tweak(ctx context.Context, clientID string, ownedIDs []string, id, prompt string) (*types.DemoPage, error)
	View(ctx context.Context, ownedIDs []string, id string) (*demo.View, error)
	Sweep(ctx context.Context) (int64, error)
}

type PromptService interface {
	ListAll(ctx context.Context) ([]types.PromptVersion, error)
	Save(ctx context.Context, content string, label *string) (*types.PromptVersion, error)
	SeedIfEmpty(ctx context.Context, defaultContent string) error
}

type EmailStore interface {
	Capture(ctx context.Context, email, source string) (bool, error)
}

type PushStore interface {
	List(ctx context.Context, limit int) ([]types.Push, error)
}

// APIHandler holds dependencies for API endpoints.
type APIHandler struct {
	demos    DemoService
	prompts  PromptService
	emails   EmailStore
	pushes   PushStore
	sessions *session.Manager
	tutorial *tutorial.Outline
	log      zerolog.Logger

	cronSecret string
	adminToken string
}

type Deps struct {
	Demos    DemoService
	Prompts  PromptService
	Emails   EmailStore
	Pushes   PushStore
	Sessions *session.Manager
	Tutorial *tutorial.Outline
	Log      zerolog.Logger

	CronSecret string
	AdminToken string
}

func NewAPIHandler(d Deps) *APIHandler {
	return &APIHandler{
		demos:      d.Demos,
		prompts:    d.Prompts,
		emails:     d.Emails,
		pushes:     d.Pushes,
		sessions:   d.Sessions,
		tutorial:   d.Tutorial,
		log:        d.Log.With().Str("component", "api").Logger(),
		cronSecret: d.CronSecret,
		adminToken: d.AdminToken,
	}
}

// --- Structs for API Requests/Responses ---

type GenerateRequest struct {
	Prompt string `json:"prompt" binding:"required"`
	DemoID string `json:"demoId"`
}

type GenerateResponse struct {
	ID   string `json:"id"`
	HTML string `json:"html"`
}

type DemoResponse struct {
	ID              string     `json:"id"`
	HTML            string     `json:"html"`
	Prompt          string     `json:"prompt"`
	CanEdit         bool       `json:"canEdit"`
	Expired         bool       `json:"expired"`
	IterationCount  int        `json:"iterationCount"`
	TweaksRemaining *int       `json:"tweaksRemaining"`
	ExpiresAt       time.Time  `json:"expiresAt"`
	Share           demo.Share `json:"share"`
}

type CleanupResponse struct {
	Success   bool   `json:"success"`
	Deleted   int64  `json:"deleted"`
	DeletedAt string `json:"deletedAt"`
}

type SavePromptRequest struct {
	Content string  `json:"content" binding:"required"`
	Label   *string `json:"label"`
}

type EmailCaptureRequest struct {
	Email  string `json:"email" binding:"required,email"`
	Source string `json:"source"`
}

type TutorialStepResponse struct {
	Step tutorial.Step  `json:"step"`
	Prev *tutorial.Step `json:"prev"`
	Next *tutorial.Step `json:"next"`
}

// --- Demo pages ---

// POST /api/demo/generate
func (h *APIHandler) GenerateDemo(c *gin.Context) {
	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Prompt is required."})
		return
	}

	ctx := c.Request.Context()
	owned, _ := h.sessions.OwnedIDs(c.Request)

	if req.DemoID != "" {
		page, err := h.demos.Tweak(ctx, ExtractIP(c), owned, req.DemoID, req.Prompt)
		if err != nil {
			h.writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, GenerateResponse{ID: page.ID, HTML: page.HTML})
		return
	}

	page, err := h.demos.Create(ctx, ExtractIP(c), req.Prompt)
	if err != nil {
		h.writeError(c, err)
		return
	}

	owned = session.Append(owned, h.sessions.MaxIDs(), page.ID)
	if err := h.sessions.Write(c.Writer, owned); err != nil {
		// The page exists; the caller just can't edit it later.
		h.log.Error().Err(err).Str("id", page.ID).Msg("failed to write session cookie")
	}
	c.JSON(http.StatusOK, GenerateResponse{ID: page.ID, HTML: page.HTML})
}

// GET /api/demo/:id
func (h *APIHandler) GetDemo(c *gin.Context) {
	owned, _ := h.sessions.OwnedIDs(c.Request)
	v, err := h.demos.View(c.Request.Context(), owned, c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	if v.Expired {
		c.JSON(http.StatusGone, gin.H{"error": demo.ErrExpired.Error(), "expired": true})
		return
	}

	c.JSON(http.StatusOK, DemoResponse{
		ID:              v.Page.ID,
		HTML:            v.Page.HTML,
		Prompt:          v.Page.Prompt,
		CanEdit:         v.CanEdit,
		IterationCount:  v.Page.IterationCount,
		TweaksRemaining: v.TweaksRemaining,
		ExpiresAt:       v.Page.ExpiresAt,
		Share:           v.Share,
	})
}

// GET|POST /api/cron/cleanup
func (h *APIHandler) CronCleanup(c *gin.Context) {
	deleted, err := h.demos.Sweep(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("cleanup failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Cleanup failed."})
		return
	}
	c.JSON(http.StatusOK, CleanupResponse{
		Success:   true,
		Deleted:   deleted,
		DeletedAt: time.Now().UTC().Format(time.RFC3339Nano),
	})
}

// --- Prompt versions ---

// GET /api/prompt/versions
func (h *APIHandler) ListPromptVersions(c *gin.Context) {
	ctx := c.Request.Context()
	if err := h.prompts.SeedIfEmpty(ctx, prompts.DefaultSystemPrompt); err != nil {
		h.log.Error().Err(err).Msg("failed to seed prompt versions")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load prompt versions"})
		return
	}
	versions, err := h.prompts.ListAll(ctx)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to list prompt versions")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load prompt versions"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"versions": versions})
}

// POST /api/prompt/versions
func (h *APIHandler) SavePromptVersion(c *gin.Context) {
	var req SavePromptRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Content) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "content is required"})
		return
	}

	v, err := h.prompts.Save(c.Request.Context(), strings.TrimSpace(req.Content), req.Label)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to save prompt version")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save prompt version"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"version": v})
}

// --- Email capture ---

// POST /api/email/capture
func (h *APIHandler) CaptureEmail(c *gin.Context) {
	var req EmailCaptureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Valid email required."})
		return
	}
	source := req.Source
	if source == "" {
		source = "tutorial_completion"
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if _, err := h.emails.Capture(c.Request.Context(), email, source); err != nil {
		h.log.Error().Err(err).Msg("failed to save email")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save email."})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// --- Tutorial ---

// GET /api/tutorial
func (h *APIHandler) ListTutorial(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"sections": h.tutorial.Sections})
}

// GET /api/tutorial/:stepId
func (h *APIHandler) GetTutorialStep(c *gin.Context) {
	id := c.Param("stepId")
	step, ok := h.tutorial.Step(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Step not found."})
		return
	}
	prev, next := h.tutorial.Adjacent(id)
	c.JSON(http.StatusOK, TutorialStepResponse{Step: step, Prev: prev, Next: next})
}

// --- Push log ---

// GET /api/pushes
func (h *APIHandler) ListPushes(c *gin.Context) {
	pushes, err := h.pushes.List(c.Request.Context(), 50)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to list pushes")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load pushes."})
		return
	}
	c.JSON(http.StatusOK, gin.H{"pushes": pushes})
}

// writeError maps pipeline errors to HTTP responses. Anything unexpected is
// logged and hidden behind a generic 500.
func (h *APIHandler) writeError(c *gin.Context, err error) {
	var (
		modErr  *demo.ModerationError
		rateErr *demo.RateLimitError
	)
	switch {
	case errors.Is(err, demo.ErrInvalidPrompt):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, demo.ErrSessionExpired):
		c.JSON(http.StatusForbidden, gin.H{"error": "Session expired."})
	case errors.Is(err, demo.ErrNotOwner):
		c.JSON(http.StatusForbidden, gin.H{"error": "Not authorized."})
	case errors.Is(err, demo.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Demo not found."})
	case errors.Is(err, demo.ErrExpired):
		c.JSON(http.StatusGone, gin.H{"error": err.Error()})
	case errors.Is(err, demo.ErrTweaksExhausted):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": err.Error()})
	case errors.As(err, &modErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": modErr.Reason})
	case errors.As(err, &rateErr):
		c.Header("Retry-After", strconv.Itoa(rateErr.ResetInMinutes*60))
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error":          rateErr.Error(),
			"resetInMinutes": rateErr.ResetInMinutes,
			"limit":          rateErr.Max,
		})
	default:
		h.log.Error().Err(err).Str("request_id", RequestIDFromContext(c)).Msg("demo request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate demo. Please try again."})
	}
}

// CronAuth guards the cleanup endpoint with CRON_SECRET. Without a secret
// the endpoint is closed.
func (h *APIHandler) CronAuth() gin.HandlerFunc {
	return BearerAuth(h.cronSecret, false)
}

// AdminAuth guards prompt administration with ADMIN_TOKEN when one is set.
func (h *APIHandler) AdminAuth() gin.HandlerFunc {
	return BearerAuth(h.adminToken, true)
}
