package domain

// AssistantProfile selects which remote persona answers a turn and how.
// FunctionName, when set, names the single structured function call the
// assistant is expected to emit alongside its reply.
type AssistantProfile struct {
	AssistantID  string
	Temperature  float64
	MaxTokens    int
	FunctionName string
}

// Reply is the outcome of one orchestrated turn. Structured is nil
// unless the profile requested a function call and the assistant
// returned well-formed JSON arguments for it.
type Reply struct {
	Text       string
	Structured map[string]any
}
