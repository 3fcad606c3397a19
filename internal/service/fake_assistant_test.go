package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/soothe-labs/advicebot/internal/assistant"
)

// runScript is one scripted run state served by the fake. The last
// entry repeats once the script is exhausted.
type runScript struct {
	status    assistant.RunStatus
	calls     []assistant.ToolCall
	lastError *assistant.RunError
}

// fakeAssistant is an in-memory stand-in for the remote assistant
// service. Threads hold real message slices so trimming and reply
// extraction run against actual state; run lifecycles are scripted.
type fakeAssistant struct {
	mu sync.Mutex

	threadSeq int
	msgSeq    int
	threads   map[string][]assistant.Message
	deleted   map[string][]string

	script    []runScript
	scriptIdx int

	replyText string

	createdThreads int
	createdRuns    int
	submitted      [][]assistant.ToolOutput
}

func newFakeAssistant(reply string, script ...runScript) *fakeAssistant {
	return &fakeAssistant{
		threads:   make(map[string][]assistant.Message),
		deleted:   make(map[string][]string),
		replyText: reply,
		script:    script,
	}
}

func (f *fakeAssistant) CreateThread(_ context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.threadSeq++
	f.createdThreads++
	id := fmt.Sprintf("thread_%d", f.threadSeq)
	f.threads[id] = nil
	return id, nil
}

func (f *fakeAssistant) AddMessage(_ context.Context, threadID, role, content string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.appendMessage(threadID, role, content)
	return nil
}

func (f *fakeAssistant) CreateRun(_ context.Context, threadID string, _ assistant.RunParams) (*assistant.Run, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createdRuns++
	return f.nextRun(threadID), nil
}

func (f *fakeAssistant) GetRun(_ context.Context, threadID, _ string) (*assistant.Run, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.nextRun(threadID), nil
}

func (f *fakeAssistant) ListMessages(_ context.Context, threadID string, limit int, order string) ([]assistant.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	msgs := f.threads[threadID]
	out := make([]assistant.Message, len(msgs))
	copy(out, msgs)
	if order == "desc" {
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeAssistant) DeleteMessage(_ context.Context, threadID, messageID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	msgs := f.threads[threadID]
	for i, m := range msgs {
		if m.ID == messageID {
			f.threads[threadID] = append(msgs[:i:i], msgs[i+1:]...)
			f.deleted[threadID] = append(f.deleted[threadID], messageID)
			return nil
		}
	}
	return fmt.Errorf("message %s not found", messageID)
}

func (f *fakeAssistant) SubmitToolOutputs(_ context.Context, threadID, _ string, outputs []assistant.ToolOutput) (*assistant.Run, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.submitted = append(f.submitted, outputs)
	return f.nextRun(threadID), nil
}

func (f *fakeAssistant) appendMessage(threadID, role, content string) assistant.Message {
	f.msgSeq++
	msg := assistant.Message{
		ID:        fmt.Sprintf("msg_%d", f.msgSeq),
		Role:      role,
		CreatedAt: int64(f.msgSeq),
		Content: []assistant.ContentPart{
			{Type: "text", Text: &assistant.TextValue{Value: content}},
		},
	}
	f.threads[threadID] = append(f.threads[threadID], msg)
	return msg
}

// nextRun serves the next scripted state, appending the canned
// assistant reply to the thread whenever a run completes.
func (f *fakeAssistant) nextRun(threadID string) *assistant.Run {
	step := runScript{status: assistant.RunCompleted}
	if len(f.script) > 0 {
		if f.scriptIdx < len(f.script) {
			step = f.script[f.scriptIdx]
			f.scriptIdx++
		} else {
			step = f.script[len(f.script)-1]
		}
	}

	run := &assistant.Run{
		ID:        "run_1",
		ThreadID:  threadID,
		Status:    step.status,
		LastError: step.lastError,
	}
	if len(step.calls) > 0 {
		ra := &assistant.RequiredAction{Type: "submit_tool_outputs"}
		ra.SubmitToolOutputs.ToolCalls = step.calls
		run.RequiredAction = ra
	}
	if step.status == assistant.RunCompleted && f.replyText != "" {
		f.appendMessage(threadID, "assistant", f.replyText)
	}
	return run
}
