package domain

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ChatMessage is one turn of the in-memory assistant transcript.
type ChatMessage struct {
	Role Role
	Text string
}
