package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Psianturi/flexifit/internal/coach"
	"github.com/Psianturi/flexifit/internal/gateway"
	"github.com/Psianturi/flexifit/internal/models"
)

// CoachService is the slice of the coach the handlers need; tests swap in
// a mock.
type CoachService interface {
	Negotiate(ctx context.Context, req coach.NegotiationRequest) (*coach.NegotiationResult, error)
	Progress(ctx context.Context, goal string, history []models.ChatMessage, language string) coach.ProgressSummary
	WeeklyMotivation(ctx context.Context, goal string, completionRate float64, days []coach.DayCompletion, language string) (string, error)
	Persona(ctx context.Context, req coach.PersonaRequest) (coach.Persona, error)
	PromptVersion() string
}

// HealthInfo is static service metadata surfaced by the health endpoint.
type HealthInfo struct {
	Provider       string
	Model          string
	RetryEnabled   bool
	RetryThreshold int
}

// Handler wires HTTP routes to the coaching service.
type Handler struct {
	coach  CoachService
	health HealthInfo
	logger *slog.Logger
}

func NewHandler(svc CoachService, health HealthInfo, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{coach: svc, health: health, logger: logger}
}

// RegisterRoutes attaches all HTTP routes to the router.
func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.GET("/", h.root)
	router.GET("/health", h.healthCheck)
	router.POST("/chat", h.chat)
	router.POST("/progress", h.progress)
	router.POST("/progress/motivation", h.weeklyMotivation)
	router.POST("/persona", h.persona)
}

func (h *Handler) root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message":     "FlexiFit Backend is running!",
		"status":      "healthy",
		"version":     "1.0.0",
		"methodology": "BJ Fogg Tiny Habits",
	})
}

func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":         "healthy",
		"provider":       h.health.Provider,
		"model":          h.health.Model,
		"prompt_version": h.coach.PromptVersion(),
		"evals": gin.H{
			"empathy_score": gin.H{
				"enabled":         true,
				"type":            "llm-as-judge",
				"scale":           "1-5",
				"retry_enabled":   h.health.RetryEnabled,
				"retry_threshold": h.health.RetryThreshold,
			},
		},
	})
}

type chatRequest struct {
	UserMessage string               `json:"user_message"`
	CurrentGoal string               `json:"current_goal"`
	ChatHistory []models.ChatMessage `json:"chat_history"`
	Language    string               `json:"language"`
}

type chatResponse struct {
	Response            string  `json:"response"`
	DealMade            bool    `json:"deal_made"`
	DealLabel           *string `json:"deal_label"`
	EmpathyScore        *int    `json:"empathy_score"`
	EmpathyRationale    *string `json:"empathy_rationale"`
	PromptVersion       string  `json:"prompt_version"`
	RetryUsed           bool    `json:"retry_used"`
	InitialEmpathyScore *int    `json:"initial_empathy_score"`
}

func (h *Handler) chat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if strings.TrimSpace(req.UserMessage) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message cannot be empty"})
		return
	}
	if strings.TrimSpace(req.CurrentGoal) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "goal must be set"})
		return
	}

	result, err := h.coach.Negotiate(c.Request.Context(), coach.NegotiationRequest{
		UserMessage: req.UserMessage,
		Goal:        req.CurrentGoal,
		History:     req.ChatHistory,
		Language:    req.Language,
	})
	if err != nil {
		h.respondUpstreamError(c, err)
		return
	}

	h.logger.Info("chat processed",
		"goal", req.CurrentGoal,
		"reply_len", len(result.Reply),
		"retry_used", result.RetryUsed,
	)

	resp := chatResponse{
		Response:            result.Reply,
		DealMade:            result.DealMade,
		EmpathyScore:        result.EmpathyScore,
		PromptVersion:       h.coach.PromptVersion(),
		RetryUsed:           result.RetryUsed,
		InitialEmpathyScore: result.InitialEmpathyScore,
	}
	if result.DealLabel != "" {
		resp.DealLabel = &result.DealLabel
	}
	if result.EmpathyRationale != "" {
		resp.EmpathyRationale = &result.EmpathyRationale
	}
	c.JSON(http.StatusOK, resp)
}

// respondUpstreamError maps gateway failures onto user-facing statuses.
// Only the primary negotiation call ever reaches here; evaluation
// failures are absorbed upstream.
func (h *Handler) respondUpstreamError(c *gin.Context, err error) {
	var upstream *gateway.UpstreamError
	switch {
	case errors.Is(err, gateway.ErrTimeout):
		h.logger.Error("model timeout", "error", err)
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": "AI response timeout. Please try again."})
	case errors.Is(err, gateway.ErrAuth):
		h.logger.Error("model auth failure", "error", err)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "AI authentication failed. Check API key."})
	case errors.As(err, &upstream):
		h.logger.Error("model upstream failure", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "AI processing failed: " + upstream.Message})
	default:
		h.logger.Error("unexpected chat failure", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func (h *Handler) progress(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if strings.TrimSpace(req.CurrentGoal) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "goal must be set"})
		return
	}

	summary := h.coach.Progress(c.Request.Context(), req.CurrentGoal, req.ChatHistory, req.Language)
	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data":   summary,
	})
}

type motivationRequest struct {
	Goal             string                `json:"goal"`
	CompletionRate7d float64               `json:"completion_rate_7d"`
	Last7Days        []coach.DayCompletion `json:"last7_days"`
	Language         string                `json:"language"`
}

func (h *Handler) weeklyMotivation(c *gin.Context) {
	var req motivationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if strings.TrimSpace(req.Goal) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "goal must be set"})
		return
	}

	rate := clampFloat(req.CompletionRate7d, 0, 100)
	motivation, err := h.coach.WeeklyMotivation(c.Request.Context(), req.Goal, rate, req.Last7Days, req.Language)
	if err != nil || strings.TrimSpace(motivation) == "" {
		if err != nil {
			h.logger.Warn("weekly motivation fallback", "error", err)
		}
		motivation = coach.FallbackMotivation
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data":   gin.H{"motivation": strings.TrimSpace(motivation)},
	})
}

type personaRequest struct {
	CurrentGoal      string                `json:"current_goal"`
	CompletionRate7d float64               `json:"completion_rate_7d"`
	Streak           int                   `json:"streak"`
	Last7Days        []coach.DayCompletion `json:"last7_days"`
	ChatHistory      []models.ChatMessage  `json:"chat_history"`
	Language         string                `json:"language"`
}

func (h *Handler) persona(c *gin.Context) {
	var req personaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if strings.TrimSpace(req.CurrentGoal) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "goal must be set"})
		return
	}

	persona, err := h.coach.Persona(c.Request.Context(), coach.PersonaRequest{
		Goal:             req.CurrentGoal,
		CompletionRate7d: clampFloat(req.CompletionRate7d, 0, 100),
		Streak:           clampInt(req.Streak, 0, 3650),
		Last7Days:        req.Last7Days,
		History:          req.ChatHistory,
		Language:         req.Language,
	})
	if err != nil {
		h.logger.Error("persona generation failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "persona generation failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data":   persona,
	})
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
