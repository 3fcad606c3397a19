package service

import (
	"github.com/soothe-labs/advicebot/internal/config"
	"github.com/soothe-labs/advicebot/internal/domain"
)

// Intent identifies one caller-facing operation. Intents differ only
// in the assistant profile they run with and how the caller boundary
// post-processes the structured result.
type Intent string

const (
	IntentIntake        Intent = "intake"
	IntentNeedsMoreData Intent = "needs_more_data"
	IntentGiveAdvice    Intent = "give_advice"
)

// FunctionNeedsMoreData is the structured call the intake assistant
// emits to signal whether more data is required before giving advice.
const FunctionNeedsMoreData = "needs_more_data"

// ProfileFor maps an intent to the remote persona and generation
// parameters it is served with.
func ProfileFor(intent Intent, cfg *config.Config) domain.AssistantProfile {
	switch intent {
	case IntentNeedsMoreData:
		return domain.AssistantProfile{
			AssistantID:  cfg.AssistantIntakeID,
			Temperature:  config.IntakeTemperature,
			MaxTokens:    config.IntakeMaxTokens,
			FunctionName: FunctionNeedsMoreData,
		}
	case IntentGiveAdvice:
		return domain.AssistantProfile{
			AssistantID: cfg.AssistantAdviceID,
			Temperature: config.AdviceTemperature,
			MaxTokens:   config.AdviceMaxTokens,
		}
	default:
		return domain.AssistantProfile{
			AssistantID: cfg.AssistantIntakeID,
			Temperature: config.IntakeTemperature,
			MaxTokens:   config.IntakeMaxTokens,
		}
	}
}
