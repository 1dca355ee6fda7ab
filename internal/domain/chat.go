package domain

// Roles used in conversation history and generation prompts.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage is the provider-agnostic chat message shape shared by
// session history and the LLM integration.
type ChatMessage struct {
	Role    string `json:"role" dynamodbav:"role"`
	Content string `json:"content" dynamodbav:"content"`
}
