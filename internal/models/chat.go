package models

// Message roles accepted by the completion provider.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message represents a single message in a conversation.
type Message struct {
	Role    string `json:"role"` // "system", "user" or "assistant"
	Content string `json:"content"`
}

// ChatRequest is the payload sent to the chat endpoint.
// Messages is a pointer so a missing field can be told apart from an empty list.
type ChatRequest struct {
	Messages *[]Message `json:"messages"`
}

// ChatReply is the single assistant utterance returned to the caller.
type ChatReply struct {
	Msg string `json:"msg"`
}

// TrialResult is the outcome of a single trial probe.
type TrialResult struct {
	Question string `json:"question"`
	Reply    string `json:"reply"`
	Correct  bool   `json:"correct"`
}

// TrialReport is the reply from the trial endpoint.
type TrialReport struct {
	Passed  bool          `json:"passed"`
	Results []TrialResult `json:"results"`
}
