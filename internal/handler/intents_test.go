package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soothe-labs/advicebot/internal/config"
	"github.com/soothe-labs/advicebot/internal/domain"
	"github.com/soothe-labs/advicebot/internal/middleware"
)

const testKey = "test-webhook-key"

// stubAdvisor returns a canned reply and records the call.
type stubAdvisor struct {
	reply domain.Reply
	err   error

	gotSession string
	gotMessage string
	gotProfile domain.AssistantProfile
}

func (s *stubAdvisor) Respond(_ context.Context, sessionID, message string, profile domain.AssistantProfile) (domain.Reply, error) {
	s.gotSession = sessionID
	s.gotMessage = message
	s.gotProfile = profile
	return s.reply, s.err
}

func newTestServer(advisor *stubAdvisor) *echo.Echo {
	cfg := &config.Config{
		AssistantIntakeID: "asst_intake",
		AssistantAdviceID: "asst_advice",
		WebhookKey:        testKey,
	}
	e := echo.New()
	New(Deps{Advisor: advisor, Cfg: cfg}).Register(e)
	return e
}

func doPost(e *echo.Echo, path, body string, withKey bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if withKey {
		req.Header.Set(middleware.HeaderAPIKey, testKey)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var payload map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	return payload
}

const validTurn = `{"message":"me duele la cabeza","session_id":"session-a","history":[],"metadata":{}}`

func TestIntakeSuccess(t *testing.T) {
	advisor := &stubAdvisor{reply: domain.Reply{Text: "cuéntame más"}}
	e := newTestServer(advisor)

	rec := doPost(e, "/intake", validTurn, true)

	require.Equal(t, http.StatusOK, rec.Code)
	payload := decodeBody(t, rec)
	assert.Equal(t, "cuéntame más", payload["reply"])
	assert.Equal(t, false, payload["end_chat"])

	assert.Equal(t, "session-a", advisor.gotSession)
	assert.Equal(t, "me duele la cabeza", advisor.gotMessage)
	assert.Equal(t, "asst_intake", advisor.gotProfile.AssistantID)
	assert.Empty(t, advisor.gotProfile.FunctionName)
}

func TestTurnRequestValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"missing message", `{"session_id":"s","history":[],"metadata":{}}`, "missing required field: message"},
		{"missing session_id", `{"message":"hola","history":[],"metadata":{}}`, "missing required field: session_id"},
		{"missing history", `{"message":"hola","session_id":"s","metadata":{}}`, "missing required field: history"},
		{"missing metadata", `{"message":"hola","session_id":"s","history":[]}`, "missing required field: metadata"},
	}

	e := newTestServer(&stubAdvisor{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doPost(e, "/intake", tt.body, true)
			require.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tt.want, decodeBody(t, rec)["error"])
		})
	}
}

func TestTurnRequestRejectsInvalidJSON(t *testing.T) {
	e := newTestServer(&stubAdvisor{})

	rec := doPost(e, "/intake", `{not json`, true)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid json payload", decodeBody(t, rec)["error"])
}

func TestIntakeFailureReturnsApology(t *testing.T) {
	advisor := &stubAdvisor{err: errors.New("assistant run failed: boom")}
	e := newTestServer(advisor)

	rec := doPost(e, "/intake", validTurn, true)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	payload := decodeBody(t, rec)
	assert.Equal(t, apologyReply, payload["reply"])
	assert.Equal(t, false, payload["end_chat"])
}

func TestIntakeInvalidSessionIsClientError(t *testing.T) {
	advisor := &stubAdvisor{err: domain.ErrInvalidSession}
	e := newTestServer(advisor)

	rec := doPost(e, "/intake", validTurn, true)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeBody(t, rec)["error"], "session")
}

func TestNeedsMoreDataMergesStructuredResult(t *testing.T) {
	advisor := &stubAdvisor{reply: domain.Reply{
		Text:       "necesito saber más",
		Structured: map[string]any{"need": "yes", "missing": "duration"},
	}}
	e := newTestServer(advisor)

	rec := doPost(e, "/needs_more_data", validTurn, true)

	require.Equal(t, http.StatusOK, rec.Code)
	payload := decodeBody(t, rec)
	assert.Equal(t, "necesito saber más", payload["reply"])
	assert.Equal(t, "yes", payload["need"])
	assert.Equal(t, "duration", payload["missing"])
	assert.Equal(t, true, payload["back_to_intake"])
	assert.Equal(t, "needs_more_data", advisor.gotProfile.FunctionName)
}

func TestNeedsMoreDataDefaultsNeedWhenAbsent(t *testing.T) {
	advisor := &stubAdvisor{reply: domain.Reply{
		Text:       "todo claro",
		Structured: map[string]any{"confidence": 0.9},
	}}
	e := newTestServer(advisor)

	rec := doPost(e, "/needs_more_data", validTurn, true)

	require.Equal(t, http.StatusOK, rec.Code)
	payload := decodeBody(t, rec)
	assert.Equal(t, "no", payload["need"])
	assert.Equal(t, 0.9, payload["confidence"])
	assert.NotContains(t, payload, "back_to_intake")
}

func TestNeedsMoreDataWithoutStructuredResult(t *testing.T) {
	advisor := &stubAdvisor{reply: domain.Reply{Text: "todo claro"}}
	e := newTestServer(advisor)

	rec := doPost(e, "/needs_more_data", validTurn, true)

	require.Equal(t, http.StatusOK, rec.Code)
	payload := decodeBody(t, rec)
	assert.Equal(t, "no", payload["need"])
	assert.NotContains(t, payload, "back_to_intake")
}

func TestNeedsMoreDataFailureFallback(t *testing.T) {
	advisor := &stubAdvisor{err: errors.New("timeout")}
	e := newTestServer(advisor)

	rec := doPost(e, "/needs_more_data", validTurn, true)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	payload := decodeBody(t, rec)
	assert.Equal(t, apologyReply, payload["reply"])
	assert.Equal(t, "no", payload["need"])
}

func TestGiveAdviceBackToIntake(t *testing.T) {
	tests := []struct {
		name       string
		structured map[string]any
		want       bool
	}{
		{"bool true", map[string]any{"need_intake": true}, true},
		{"string yes", map[string]any{"need_intake": "yes"}, true},
		{"string true", map[string]any{"need_intake": "true"}, true},
		{"bool false", map[string]any{"need_intake": false}, false},
		{"absent", map[string]any{}, false},
		{"no structured result", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			advisor := &stubAdvisor{reply: domain.Reply{Text: "descansa bien", Structured: tt.structured}}
			e := newTestServer(advisor)

			rec := doPost(e, "/give_advice", validTurn, true)

			require.Equal(t, http.StatusOK, rec.Code)
			payload := decodeBody(t, rec)
			assert.Equal(t, "descansa bien", payload["reply"])
			if tt.want {
				assert.Equal(t, true, payload["back_to_intake"])
			} else {
				assert.NotContains(t, payload, "back_to_intake")
			}
			assert.Equal(t, "asst_advice", advisor.gotProfile.AssistantID)
		})
	}
}

func TestWebhookKeyRequired(t *testing.T) {
	e := newTestServer(&stubAdvisor{reply: domain.Reply{Text: "hola"}})

	rec := doPost(e, "/intake", validTurn, false)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/intake", strings.NewReader(validTurn))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set(middleware.HeaderAPIKey, "wrong-key")
	wrong := httptest.NewRecorder()
	e.ServeHTTP(wrong, req)
	assert.Equal(t, http.StatusForbidden, wrong.Code)
}

func TestHealthIsOpen(t *testing.T) {
	e := newTestServer(&stubAdvisor{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decodeBody(t, rec)["status"])
}
