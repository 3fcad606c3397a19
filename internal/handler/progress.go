package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/soothe-labs/advicebot/internal/config"
)

// EvaluateIntakeProgress scores how many intake data categories the
// caller has collected so far and reports whether intake can end.
// POST /evaluate_intake_progress
func (h *Handler) EvaluateIntakeProgress(c echo.Context) error {
	var payload map[string]any
	if err := c.Bind(&payload); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid json payload"})
	}

	score := 0
	for _, category := range config.IntakeCategories {
		if present(payload[category]) {
			score++
		}
	}

	return c.JSON(http.StatusOK, map[string]any{
		"status":      "ok",
		"score":       score,
		"enough_data": score >= config.IntakeEnoughScore,
	})
}

// SwitchChatMode acknowledges a mode change requested by the
// front-end flow.
// POST /switch_chat_mode
func (h *Handler) SwitchChatMode(c echo.Context) error {
	var payload map[string]any
	if err := c.Bind(&payload); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid json payload"})
	}

	mode, _ := payload["requested_mode"].(string)
	if mode == "" {
		mode = "default"
	}

	return c.JSON(http.StatusOK, map[string]any{
		"status":   "ok",
		"new_mode": mode,
	})
}

// present reports whether a category value counts as collected: set,
// non-empty and not false.
func present(v any) bool {
	switch value := v.(type) {
	case nil:
		return false
	case bool:
		return value
	case string:
		return value != ""
	case float64:
		return value != 0
	case []any:
		return len(value) > 0
	case map[string]any:
		return len(value) > 0
	default:
		return true
	}
}
