// Package handler exposes the webhook endpoints the chat front-end
// calls: one per intent plus the intake-progress and chat-mode helpers.
package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/soothe-labs/advicebot/internal/config"
	"github.com/soothe-labs/advicebot/internal/domain"
	"github.com/soothe-labs/advicebot/internal/middleware"
)

// Responder is what the handlers need from the orchestration core.
type Responder interface {
	Respond(ctx context.Context, sessionID, message string, profile domain.AssistantProfile) (domain.Reply, error)
}

// Handler holds the dependencies shared by all webhook handlers.
type Handler struct {
	advisor Responder
	cfg     *config.Config
}

// Deps contains everything required to construct a Handler.
type Deps struct {
	Advisor Responder
	Cfg     *config.Config
}

// New creates a Handler from the provided dependencies.
func New(deps Deps) *Handler {
	return &Handler{
		advisor: deps.Advisor,
		cfg:     deps.Cfg,
	}
}

// Register wires all routes onto the echo server. Everything except
// the health probe sits behind the shared-key check.
func (h *Handler) Register(e *echo.Echo) {
	e.GET("/health", h.Health)

	g := e.Group("", middleware.RequireKey(h.cfg.WebhookKey))
	g.POST("/intake", h.Intake)
	g.POST("/needs_more_data", h.NeedsMoreData)
	g.POST("/give_advice", h.GiveAdvice)
	g.POST("/evaluate_intake_progress", h.EvaluateIntakeProgress)
	g.POST("/switch_chat_mode", h.SwitchChatMode)
}

// Health returns liveness status.
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
