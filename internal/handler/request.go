package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

// turnRequest is the payload every intent endpoint accepts. History
// and metadata are required by the contract but unused here: the
// remote thread is the source of truth for conversation state.
type turnRequest struct {
	Message   *string        `json:"message"`
	SessionID *string        `json:"session_id"`
	History   []any          `json:"history"`
	Metadata  map[string]any `json:"metadata"`
}

func (r *turnRequest) validate() error {
	if r.Message == nil {
		return errors.New("missing required field: message")
	}
	if r.SessionID == nil {
		return errors.New("missing required field: session_id")
	}
	if r.History == nil {
		return errors.New("missing required field: history")
	}
	if r.Metadata == nil {
		return errors.New("missing required field: metadata")
	}
	return nil
}

// bindTurnRequest decodes and validates the payload, writing the 400
// response itself on failure.
func (h *Handler) bindTurnRequest(c echo.Context) (*turnRequest, bool) {
	req := &turnRequest{}
	if err := c.Bind(req); err != nil {
		_ = c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid json payload"})
		return nil, false
	}
	if err := req.validate(); err != nil {
		_ = c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		return nil, false
	}
	return req, true
}
