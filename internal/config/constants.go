package config

import "time"

const (
	// Run polling
	RunPollInterval = 200 * time.Millisecond
	RunMaxWait      = 60 * time.Second

	// Per-run timeout passed to the remote service (seconds)
	RunRequestTimeout = 25

	// Retry policy for assistant calls
	RetryMaxAttempts = 3
	RetryBaseDelay   = 1 * time.Second
	RetryMaxDelay    = 10 * time.Second

	// Thread history limits
	HistoryFetchLimit = 100
	HistoryKeepMax    = 25

	// Thread binding expiry on the key-value backend
	BindingTTL = 24 * time.Hour

	// HTTP client timeout for assistant API calls
	AssistantRequestTimeout = 90 * time.Second

	// Intake assistant generation parameters
	IntakeTemperature = 0.2
	IntakeMaxTokens   = 200

	// Advice assistant generation parameters
	AdviceTemperature = 0.7
	AdviceMaxTokens   = 250

	// Graceful shutdown window
	ShutdownTimeout = 10 * time.Second
)

// IntakeCategories are the data points the intake assistant collects.
// Progress scoring counts how many are present.
var IntakeCategories = []string{"symptoms", "duration", "severity", "triggers", "meds"}

// IntakeEnoughScore is the minimum category count to leave intake.
const IntakeEnoughScore = 3
