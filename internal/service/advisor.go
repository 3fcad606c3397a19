// Package service contains the assistant-call orchestration: thread
// resolution, history trimming, run driving and retry supervision.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/soothe-labs/advicebot/internal/assistant"
	"github.com/soothe-labs/advicebot/internal/config"
	"github.com/soothe-labs/advicebot/internal/domain"
	"github.com/soothe-labs/advicebot/internal/threadstore"
)

// AssistantAPI is what the advisor needs from the remote assistant
// service.
type AssistantAPI interface {
	CreateThread(ctx context.Context) (string, error)
	AddMessage(ctx context.Context, threadID, role, content string) error
	CreateRun(ctx context.Context, threadID string, params assistant.RunParams) (*assistant.Run, error)
	GetRun(ctx context.Context, threadID, runID string) (*assistant.Run, error)
	ListMessages(ctx context.Context, threadID string, limit int, order string) ([]assistant.Message, error)
	DeleteMessage(ctx context.Context, threadID, messageID string) error
	SubmitToolOutputs(ctx context.Context, threadID, runID string, outputs []assistant.ToolOutput) (*assistant.Run, error)
}

// AdvisorConfig tunes polling and retry. Zero values fall back to the
// deployment defaults in the config package.
type AdvisorConfig struct {
	PollInterval   time.Duration
	MaxWait        time.Duration
	RetryAttempts  int
	RetryBaseDelay time.Duration
	RetryMaxDelay  time.Duration
}

// Advisor composes thread resolution, history trimming and run driving
// into the single Respond operation. It holds no per-session state;
// concurrent turns for different sessions are independent.
type Advisor struct {
	api     AssistantAPI
	threads threadstore.Store
	logger  *slog.Logger

	pollInterval   time.Duration
	maxWait        time.Duration
	retryAttempts  int
	retryBaseDelay time.Duration
	retryMaxDelay  time.Duration

	// after is time.After, swappable in tests.
	after func(time.Duration) <-chan time.Time
}

func NewAdvisor(api AssistantAPI, threads threadstore.Store, logger *slog.Logger, cfg AdvisorConfig) *Advisor {
	if logger == nil {
		logger = slog.Default()
	}
	a := &Advisor{
		api:            api,
		threads:        threads,
		logger:         logger.With("component", "advisor"),
		pollInterval:   cfg.PollInterval,
		maxWait:        cfg.MaxWait,
		retryAttempts:  cfg.RetryAttempts,
		retryBaseDelay: cfg.RetryBaseDelay,
		retryMaxDelay:  cfg.RetryMaxDelay,
		after:          time.After,
	}
	if a.pollInterval <= 0 {
		a.pollInterval = config.RunPollInterval
	}
	if a.maxWait <= 0 {
		a.maxWait = config.RunMaxWait
	}
	if a.retryAttempts <= 0 {
		a.retryAttempts = config.RetryMaxAttempts
	}
	if a.retryBaseDelay <= 0 {
		a.retryBaseDelay = config.RetryBaseDelay
	}
	if a.retryMaxDelay <= 0 {
		a.retryMaxDelay = config.RetryMaxDelay
	}
	return a
}

// Respond runs one conversational turn for the session and returns the
// assistant's reply plus the structured function result, if the
// profile requested one and the assistant produced valid JSON for it.
func (a *Advisor) Respond(ctx context.Context, sessionID, message string, profile domain.AssistantProfile) (domain.Reply, error) {
	if strings.TrimSpace(sessionID) == "" {
		return domain.Reply{}, domain.ErrInvalidSession
	}

	var reply domain.Reply
	err := a.withRetry(ctx, func() error {
		r, err := a.runTurn(ctx, sessionID, message, profile)
		if err != nil {
			return err
		}
		reply = r
		return nil
	})
	return reply, err
}

// runTurn is one full run-driver invocation: resolve thread, trim,
// append, submit, poll to a terminal state, extract the reply.
func (a *Advisor) runTurn(ctx context.Context, sessionID, message string, profile domain.AssistantProfile) (domain.Reply, error) {
	threadID, err := a.resolveThread(ctx, sessionID)
	if err != nil {
		return domain.Reply{}, err
	}

	a.trimHistory(ctx, threadID)

	if err := a.api.AddMessage(ctx, threadID, "user", message); err != nil {
		return domain.Reply{}, err
	}

	run, err := a.api.CreateRun(ctx, threadID, assistant.RunParams{
		AssistantID:  profile.AssistantID,
		Temperature:  profile.Temperature,
		MaxTokens:    profile.MaxTokens,
		TimeoutSec:   config.RunRequestTimeout,
		FunctionName: profile.FunctionName,
	})
	if err != nil {
		return domain.Reply{}, err
	}

	// One deadline covers polling and any tool-output round trips.
	deadline := time.Now().Add(a.maxWait)

	run, err = a.awaitRun(ctx, threadID, run, deadline)
	if err != nil {
		return domain.Reply{}, err
	}

	var structured map[string]any
	for run.Status == assistant.RunRequiresAction {
		var parsed map[string]any
		run, parsed, err = a.submitToolResults(ctx, threadID, run, profile.FunctionName)
		if err != nil {
			return domain.Reply{}, err
		}
		if structured == nil {
			structured = parsed
		}
		run, err = a.awaitRun(ctx, threadID, run, deadline)
		if err != nil {
			return domain.Reply{}, err
		}
	}

	switch run.Status {
	case assistant.RunCompleted:
		if structured == nil {
			structured = parseFunctionArgs(run.ToolCalls(), profile.FunctionName, a.logger)
		}
		text, err := a.latestReply(ctx, threadID)
		if err != nil {
			return domain.Reply{}, err
		}
		a.logger.Info("run completed",
			"session_id", sessionID,
			"thread_id", threadID,
			"run_id", run.ID,
		)
		return domain.Reply{Text: text, Structured: structured}, nil

	case assistant.RunFailed:
		detail := "no failure detail"
		if run.LastError != nil {
			detail = run.LastError.Code + ": " + run.LastError.Message
		}
		return domain.Reply{}, fmt.Errorf("assistant run failed: %s", detail)

	default:
		return domain.Reply{}, fmt.Errorf("unexpected run status %q", run.Status)
	}
}

// resolveThread returns the session's bound thread, creating and
// binding a new remote thread when no usable binding exists. Store
// failures are absorbed: a failed lookup costs a fresh thread, a
// failed save costs another fresh thread next turn.
func (a *Advisor) resolveThread(ctx context.Context, sessionID string) (string, error) {
	threadID, err := a.threads.Get(ctx, sessionID)
	if err == nil {
		a.logger.Debug("reusing thread", "session_id", sessionID, "thread_id", threadID)
		return threadID, nil
	}
	if !errors.Is(err, domain.ErrBindingNotFound) {
		a.logger.Warn("thread binding lookup failed, creating new thread",
			"session_id", sessionID,
			"error", err,
		)
	}

	threadID, err = a.api.CreateThread(ctx)
	if err != nil {
		return "", err
	}
	if err := a.threads.Put(ctx, sessionID, threadID); err != nil {
		a.logger.Warn("thread binding save failed",
			"session_id", sessionID,
			"thread_id", threadID,
			"error", err,
		)
	}
	a.logger.Info("created new thread", "session_id", sessionID, "thread_id", threadID)
	return threadID, nil
}

// trimHistory caps the retained conversation at HistoryKeepMax
// messages, deleting the oldest excess rounded up to an even count so
// a user/assistant pair is never split. Every failure here is
// best-effort: trimming never aborts the turn.
func (a *Advisor) trimHistory(ctx context.Context, threadID string) {
	messages, err := a.api.ListMessages(ctx, threadID, config.HistoryFetchLimit, "asc")
	if err != nil {
		a.logger.Warn("history fetch failed, skipping trim", "thread_id", threadID, "error", err)
		return
	}
	if len(messages) <= config.HistoryKeepMax {
		return
	}

	toDelete := len(messages) - config.HistoryKeepMax
	if toDelete%2 != 0 {
		toDelete++
	}
	if toDelete > len(messages) {
		toDelete = len(messages)
	}

	deleted := 0
	for _, msg := range messages[:toDelete] {
		if err := a.api.DeleteMessage(ctx, threadID, msg.ID); err != nil {
			a.logger.Warn("message delete failed",
				"thread_id", threadID,
				"message_id", msg.ID,
				"error", err,
			)
			continue
		}
		deleted++
	}
	a.logger.Info("trimmed thread history", "thread_id", threadID, "deleted", deleted)
}

// awaitRun polls the run until it leaves the in-flight states or the
// deadline passes.
func (a *Advisor) awaitRun(ctx context.Context, threadID string, run *assistant.Run, deadline time.Time) (*assistant.Run, error) {
	for run.Status.InFlight() {
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("%w: run %s still %s", domain.ErrRunTimeout, run.ID, run.Status)
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-a.after(a.pollInterval):
		}

		updated, err := a.api.GetRun(ctx, threadID, run.ID)
		if err != nil {
			return nil, err
		}
		run = updated
	}
	return run, nil
}

// submitToolResults parses the expected function call out of a blocked
// run and acknowledges every pending tool call so the run can resume.
// The acknowledgement payload is the parsed result itself, or an empty
// object when there is none.
func (a *Advisor) submitToolResults(ctx context.Context, threadID string, run *assistant.Run, functionName string) (*assistant.Run, map[string]any, error) {
	calls := run.ToolCalls()
	structured := parseFunctionArgs(calls, functionName, a.logger)

	ack := "{}"
	if structured != nil {
		if data, err := json.Marshal(structured); err == nil {
			ack = string(data)
		}
	}

	outputs := make([]assistant.ToolOutput, 0, len(calls))
	for _, call := range calls {
		outputs = append(outputs, assistant.ToolOutput{ToolCallID: call.ID, Output: ack})
	}

	updated, err := a.api.SubmitToolOutputs(ctx, threadID, run.ID, outputs)
	if err != nil {
		return nil, nil, err
	}
	return updated, structured, nil
}

// latestReply reads the newest message of the thread, which must be
// the assistant's answer to the turn just completed.
func (a *Advisor) latestReply(ctx context.Context, threadID string) (string, error) {
	messages, err := a.api.ListMessages(ctx, threadID, 1, "desc")
	if err != nil {
		return "", err
	}
	if len(messages) == 0 || messages[0].Role != "assistant" {
		return "", domain.ErrNoReply
	}
	text := strings.TrimSpace(messages[0].Text())
	if text == "" {
		return "", domain.ErrNoReply
	}
	return text, nil
}

// parseFunctionArgs extracts the named function's arguments from the
// given tool calls. Malformed JSON collapses to nil, never to a
// partially built object or an error.
func parseFunctionArgs(calls []assistant.ToolCall, functionName string, logger *slog.Logger) map[string]any {
	if functionName == "" {
		return nil
	}
	for _, call := range calls {
		if call.Function.Name != functionName {
			continue
		}
		var parsed map[string]any
		if err := json.Unmarshal([]byte(call.Function.Arguments), &parsed); err != nil {
			logger.Warn("malformed function arguments",
				"function", functionName,
				"error", err,
			)
			return nil
		}
		return parsed
	}
	return nil
}
