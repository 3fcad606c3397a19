package handler

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluateIntakeProgress(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantScore  float64
		wantEnough bool
	}{
		{
			"nothing collected",
			`{}`,
			0, false,
		},
		{
			"two categories",
			`{"symptoms":"dolor de cabeza","duration":"3 días"}`,
			2, false,
		},
		{
			"three categories reach the threshold",
			`{"symptoms":"dolor de cabeza","duration":"3 días","severity":7}`,
			3, true,
		},
		{
			"empty and false values do not count",
			`{"symptoms":"","duration":false,"severity":0,"triggers":[],"meds":"ibuprofeno"}`,
			1, false,
		},
		{
			"unknown fields are ignored",
			`{"symptoms":"tos","favorite_color":"azul"}`,
			1, false,
		},
	}

	e := newTestServer(&stubAdvisor{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doPost(e, "/evaluate_intake_progress", tt.body, true)

			require.Equal(t, http.StatusOK, rec.Code)
			payload := decodeBody(t, rec)
			assert.Equal(t, "ok", payload["status"])
			assert.Equal(t, tt.wantScore, payload["score"])
			assert.Equal(t, tt.wantEnough, payload["enough_data"])
		})
	}
}

func TestSwitchChatMode(t *testing.T) {
	e := newTestServer(&stubAdvisor{})

	rec := doPost(e, "/switch_chat_mode", `{"requested_mode":"advice"}`, true)
	require.Equal(t, http.StatusOK, rec.Code)
	payload := decodeBody(t, rec)
	assert.Equal(t, "ok", payload["status"])
	assert.Equal(t, "advice", payload["new_mode"])
}

func TestSwitchChatModeDefaults(t *testing.T) {
	e := newTestServer(&stubAdvisor{})

	rec := doPost(e, "/switch_chat_mode", `{}`, true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "default", decodeBody(t, rec)["new_mode"])
}
