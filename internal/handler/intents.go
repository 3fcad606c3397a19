package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/soothe-labs/advicebot/internal/domain"
	"github.com/soothe-labs/advicebot/internal/service"
)

// apologyReply is the fixed user-facing message for any orchestration
// failure. Callers never see error details or partial state.
const apologyReply = "Lo siento, hay un problema técnico. Por favor, inténtalo de nuevo."

// Intake runs a plain intake turn. No structured result is requested.
// POST /intake
func (h *Handler) Intake(c echo.Context) error {
	req, ok := h.bindTurnRequest(c)
	if !ok {
		return nil
	}

	reply, err := h.advisor.Respond(c.Request().Context(), *req.SessionID, *req.Message,
		service.ProfileFor(service.IntentIntake, h.cfg))
	if err != nil {
		return h.respondFailure(c, service.IntentIntake, *req.SessionID, err, map[string]any{
			"reply":    apologyReply,
			"end_chat": false,
		})
	}

	return c.JSON(http.StatusOK, map[string]any{
		"reply":    reply.Text,
		"end_chat": false,
	})
}

// NeedsMoreData runs an intake turn with the needs_more_data function
// requested, merging its structured result into the response. The
// `need` field always comes back, defaulting to "no", and need=="yes"
// derives back_to_intake.
// POST /needs_more_data
func (h *Handler) NeedsMoreData(c echo.Context) error {
	req, ok := h.bindTurnRequest(c)
	if !ok {
		return nil
	}

	reply, err := h.advisor.Respond(c.Request().Context(), *req.SessionID, *req.Message,
		service.ProfileFor(service.IntentNeedsMoreData, h.cfg))
	if err != nil {
		return h.respondFailure(c, service.IntentNeedsMoreData, *req.SessionID, err, map[string]any{
			"reply":    apologyReply,
			"need":     "no",
			"end_chat": false,
		})
	}

	payload := map[string]any{
		"reply":    reply.Text,
		"end_chat": false,
	}
	if reply.Structured != nil {
		for k, v := range reply.Structured {
			payload[k] = v
		}
		if _, ok := payload["need"]; !ok {
			payload["need"] = "no"
		}
		if need, _ := payload["need"].(string); need == "yes" {
			payload["back_to_intake"] = true
		}
	} else {
		payload["need"] = "no"
	}

	return c.JSON(http.StatusOK, payload)
}

// GiveAdvice runs an advice turn. A structured need_intake signal from
// the assistant derives back_to_intake.
// POST /give_advice
func (h *Handler) GiveAdvice(c echo.Context) error {
	req, ok := h.bindTurnRequest(c)
	if !ok {
		return nil
	}

	reply, err := h.advisor.Respond(c.Request().Context(), *req.SessionID, *req.Message,
		service.ProfileFor(service.IntentGiveAdvice, h.cfg))
	if err != nil {
		return h.respondFailure(c, service.IntentGiveAdvice, *req.SessionID, err, map[string]any{
			"reply":    apologyReply,
			"end_chat": false,
		})
	}

	payload := map[string]any{
		"reply":    reply.Text,
		"end_chat": false,
	}
	if wantsIntake(reply.Structured) {
		payload["back_to_intake"] = true
	}

	return c.JSON(http.StatusOK, payload)
}

// respondFailure logs the orchestration error and returns the fixed
// apology with neutral defaults. Bad session input is the one case
// reported as a client error instead.
func (h *Handler) respondFailure(c echo.Context, intent service.Intent, sessionID string, err error, fallback map[string]any) error {
	if errors.Is(err, domain.ErrInvalidSession) {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	slog.Error("assistant call failed",
		"intent", string(intent),
		"session_id", sessionID,
		"error", err,
	)
	return c.JSON(http.StatusInternalServerError, fallback)
}

// wantsIntake interprets the advice assistant's need_intake signal.
func wantsIntake(structured map[string]any) bool {
	if structured == nil {
		return false
	}
	switch v := structured["need_intake"].(type) {
	case bool:
		return v
	case string:
		return v == "true" || v == "yes"
	default:
		return false
	}
}
