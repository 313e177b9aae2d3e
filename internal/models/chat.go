package models

const (
	ChatRoleUser = "user"
	ChatRoleAI   = "ai"
)

// ChatMessage represents a single message in a conversation.
type ChatMessage struct {
	Role string `json:"role"` // "user" or "ai"
	Text string `json:"text"`
}

// ChatRequest is the payload sent to the chat endpoint.
type ChatRequest struct {
	Message string        `json:"message"`
	History []ChatMessage `json:"history"`
}

// ChatResponse is the reply from the AI chat.
type ChatResponse struct {
	Reply string `json:"reply"`
}
