package assistant

// RunStatus is the remote lifecycle state of a run.
type RunStatus string

const (
	RunQueued         RunStatus = "queued"
	RunInProgress     RunStatus = "in_progress"
	RunCancelling     RunStatus = "cancelling"
	RunCompleted      RunStatus = "completed"
	RunFailed         RunStatus = "failed"
	RunRequiresAction RunStatus = "requires_action"
	RunCancelled      RunStatus = "cancelled"
	RunExpired        RunStatus = "expired"
)

// InFlight reports whether the run is still being composed and should
// keep being polled.
func (s RunStatus) InFlight() bool {
	switch s {
	case RunQueued, RunInProgress, RunCancelling:
		return true
	}
	return false
}

// Run is one remote execution attempt of an assistant against a thread.
type Run struct {
	ID             string          `json:"id"`
	ThreadID       string          `json:"thread_id"`
	Status         RunStatus       `json:"status"`
	RequiredAction *RequiredAction `json:"required_action,omitempty"`
	LastError      *RunError       `json:"last_error,omitempty"`
}

// ToolCalls returns the pending function calls the run is blocked on,
// if any.
func (r *Run) ToolCalls() []ToolCall {
	if r.RequiredAction == nil {
		return nil
	}
	return r.RequiredAction.SubmitToolOutputs.ToolCalls
}

type RequiredAction struct {
	Type              string `json:"type"`
	SubmitToolOutputs struct {
		ToolCalls []ToolCall `json:"tool_calls"`
	} `json:"submit_tool_outputs"`
}

type ToolCall struct {
	ID       string       `json:"id"`
	Type     string       `json:"type"`
	Function FunctionCall `json:"function"`
}

type FunctionCall struct {
	Name string `json:"name"`
	// Arguments is raw JSON as emitted by the model; it is not
	// guaranteed to parse.
	Arguments string `json:"arguments"`
}

type RunError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ToolOutput acknowledges one tool call when resuming a blocked run.
type ToolOutput struct {
	ToolCallID string `json:"tool_call_id"`
	Output     string `json:"output"`
}

// Message is one entry of a thread's conversation history.
type Message struct {
	ID        string        `json:"id"`
	Role      string        `json:"role"`
	CreatedAt int64         `json:"created_at"`
	Content   []ContentPart `json:"content"`
}

// Text returns the message's first text segment, or "".
func (m Message) Text() string {
	for _, part := range m.Content {
		if part.Type == "text" && part.Text != nil {
			return part.Text.Value
		}
	}
	return ""
}

type ContentPart struct {
	Type string     `json:"type"`
	Text *TextValue `json:"text,omitempty"`
}

type TextValue struct {
	Value string `json:"value"`
}
